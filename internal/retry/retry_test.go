package retry

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

func TestRunStopsOnDone(t *testing.T) {
	calls := 0
	err := Run("secp256k1", ec.MaxTries, false, func(attempt int) (Outcome, error) {
		calls++
		if attempt == 2 {
			return Done, nil
		}
		return Again, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunExhausted(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ec.SetLogger(logger)
	defer ec.SetLogger(nil)

	calls := 0
	err := Run("secp256r1", 5, false, func(int) (Outcome, error) {
		calls++
		return Again, nil
	})
	assert.ErrorIs(t, err, ec.ErrRetryExhausted)
	assert.Equal(t, 5, calls)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "secp256r1", hook.LastEntry().Data["curve"])
	assert.Len(t, hook.AllEntries(), 6)
}

func TestRunSingleUse(t *testing.T) {
	calls := 0
	err := Run("secp256k1", ec.MaxTries, true, func(int) (Outcome, error) {
		calls++
		return Again, nil
	})
	assert.ErrorIs(t, err, ec.ErrNonceRejected)
	assert.Equal(t, 1, calls)
}

func TestRunPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := Run("ed25519", ec.MaxTries, false, func(int) (Outcome, error) {
		return Again, boom
	})
	assert.Equal(t, boom, err)
}
