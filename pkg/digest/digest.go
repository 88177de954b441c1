// Package digest exposes the message digests used by the signing engines
// behind a single Hasher type.
//
// The concrete algorithm is chosen once at construction. Fixed-size hashes
// and extendable-output functions share the same Write/Sum surface; for an
// XOF the output size is fixed by New.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm identifies a digest.
type Algorithm int

const (
	// SHA256 is FIPS 180-4 SHA-256.
	SHA256 Algorithm = iota + 1
	// SHA512 is FIPS 180-4 SHA-512.
	SHA512
	// SHA3_256 is FIPS 202 SHA3-256.
	SHA3_256
	// SHA3_512 is FIPS 202 SHA3-512.
	SHA3_512
	// Keccak256 is the pre-standard Keccak-256 used by Ethereum.
	Keccak256
	// Keccak512 is the pre-standard Keccak-512.
	Keccak512
	// SHAKE128 is the FIPS 202 XOF with 128-bit security.
	SHAKE128
	// SHAKE256 is the FIPS 202 XOF with 256-bit security.
	SHAKE256
	// BLAKE2b is RFC 7693 BLAKE2b with a selectable output size up to 64.
	BLAKE2b
)

var names = map[Algorithm]string{
	SHA256:    "sha256",
	SHA512:    "sha512",
	SHA3_256:  "sha3-256",
	SHA3_512:  "sha3-512",
	Keccak256: "keccak256",
	Keccak512: "keccak512",
	SHAKE128:  "shake128",
	SHAKE256:  "shake256",
	BLAKE2b:   "blake2b",
}

// String returns the lower-case algorithm name.
func (a Algorithm) String() string {
	if n, ok := names[a]; ok {
		return n
	}
	return fmt.Sprintf("digest(%d)", int(a))
}

// Parse resolves an algorithm name as returned by String.
func Parse(name string) (Algorithm, error) {
	for a, n := range names {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown digest %q", name)
}

// IsXOF reports whether the algorithm has an extendable output.
func (a Algorithm) IsXOF() bool {
	return a == SHAKE128 || a == SHAKE256
}

// Size returns the natural output size, or 0 for an XOF.
func (a Algorithm) Size() int {
	switch a {
	case SHA256, SHA3_256, Keccak256:
		return 32
	case SHA512, SHA3_512, Keccak512, BLAKE2b:
		return 64
	}
	return 0
}

// HashFunc returns a constructor suitable for crypto/hmac. XOFs have none.
func (a Algorithm) HashFunc() (func() hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	case SHA3_256:
		return sha3.New256, nil
	case SHA3_512:
		return sha3.New512, nil
	case Keccak256:
		return sha3.NewLegacyKeccak256, nil
	case Keccak512:
		return sha3.NewLegacyKeccak512, nil
	case BLAKE2b:
		return func() hash.Hash {
			h, _ := blake2b.New512(nil)
			return h
		}, nil
	}
	return nil, fmt.Errorf("%v has no fixed-size hash.Hash", a)
}

// Hasher is a running digest computation.
type Hasher struct {
	alg  Algorithm
	size int

	h   hash.Hash      // fixed-size algorithms
	xof sha3.ShakeHash // SHAKE128, SHAKE256
}

// New returns a Hasher for alg producing size bytes. A size of zero selects
// the natural size; an XOF requires an explicit size. BLAKE2b accepts any
// size in [1, 64]; the other fixed-size algorithms only their natural size.
func New(alg Algorithm, size int) (*Hasher, error) {
	d := &Hasher{alg: alg, size: size}
	switch alg {
	case SHAKE128, SHAKE256:
		if size <= 0 {
			return nil, fmt.Errorf("%v requires an output size", alg)
		}
		if alg == SHAKE128 {
			d.xof = sha3.NewShake128()
		} else {
			d.xof = sha3.NewShake256()
		}
		return d, nil
	case BLAKE2b:
		if size == 0 {
			d.size = blake2b.Size
		}
		h, err := blake2b.New(d.size, nil)
		if err != nil {
			return nil, fmt.Errorf("blake2b: %w", err)
		}
		d.h = h
		return d, nil
	}

	fn, err := alg.HashFunc()
	if err != nil {
		return nil, err
	}
	if size != 0 && size != alg.Size() {
		return nil, fmt.Errorf("%v output is %d bytes, not %d", alg, alg.Size(), size)
	}
	d.h = fn()
	d.size = alg.Size()
	return d, nil
}

// Algorithm returns the algorithm chosen at construction.
func (d *Hasher) Algorithm() Algorithm { return d.alg }

// Size returns the number of bytes Sum appends.
func (d *Hasher) Size() int { return d.size }

// Write absorbs p. It never returns an error.
func (d *Hasher) Write(p []byte) (int, error) {
	if d.xof != nil {
		return d.xof.Write(p)
	}
	return d.h.Write(p)
}

// Sum appends the digest to b without changing the running state.
func (d *Hasher) Sum(b []byte) []byte {
	if d.xof != nil {
		out := make([]byte, d.size)
		c := d.xof.Clone()
		c.Read(out)
		return append(b, out...)
	}
	return d.h.Sum(b)
}

// Reset clears the running state.
func (d *Hasher) Reset() {
	if d.xof != nil {
		d.xof.Reset()
		return
	}
	d.h.Reset()
}

// Sum computes alg over the concatenation of parts.
func Sum(alg Algorithm, size int, parts ...[]byte) ([]byte, error) {
	h, err := New(alg, size)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil), nil
}
