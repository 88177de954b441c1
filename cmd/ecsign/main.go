// Command ecsign generates keys, signs, verifies and derives ECDH secrets
// from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
