// Package retry runs the bounded nonce loop shared by the signing engines.
package retry

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

// Outcome is the result of one attempt.
type Outcome int

const (
	// Again asks for another attempt with a fresh nonce.
	Again Outcome = iota
	// Done ends the loop successfully.
	Done
)

// Run calls step with attempt = 0, 1, ... until it returns Done or an
// error, at most max times. With singleUse set the first degenerate attempt
// is fatal, since a caller-provided nonce cannot be replaced.
func Run(curve string, max int, singleUse bool, step func(attempt int) (Outcome, error)) error {
	if singleUse {
		max = 1
	}
	for attempt := 0; attempt < max; attempt++ {
		out, err := step(attempt)
		if err != nil {
			return err
		}
		if out == Done {
			return nil
		}
		ec.Logger().WithFields(logrus.Fields{
			"curve":   curve,
			"attempt": attempt,
		}).Debug("degenerate signature, retrying with a fresh nonce")
	}

	if singleUse {
		return ec.NewError(ec.ErrNonceRejected, "provided nonce yields a degenerate signature")
	}
	ec.Logger().WithFields(logrus.Fields{
		"curve":    curve,
		"attempts": max,
	}).Warn("signing retry limit reached")
	return ec.NewError(ec.ErrRetryExhausted, fmt.Sprintf("no valid signature after %d attempts", max))
}
