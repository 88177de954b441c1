package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ecdh"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/schnorr"
)

func TestSignConfig(t *testing.T) {
	tests := []struct {
		name      string
		flags     Flags
		nonce     ec.NonceSource
		canonical bool
	}{
		{"rfc6979", Sign | RandomRFC6979, ec.NonceRFC6979, true},
		{"trng", Sign | RandomTRNG, ec.NonceRandom, true},
		{"prng", Sign | RandomPRNG | NoCanonical, ec.NonceRandom, false},
		{"provided", Sign | RandomProvided, ec.NonceProvided, true},
		// padding, chaining and last-block bits do not matter
		{"noise", Sign | Last | MaskPadding | MaskChaining | RandomRFC6979, ec.NonceRFC6979, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := test.flags.SignConfig()
			require.NoError(t, err)
			assert.Equal(t, test.nonce, cfg.Nonce)
			assert.Equal(t, test.canonical, cfg.Canonical)
			assert.True(t, test.flags.IsSign())
		})
	}

	_, err := Sign.SignConfig()
	assert.ErrorIs(t, err, ec.ErrInvalidParameter)
	_, err = (Sign | 7<<9).SignConfig()
	assert.ErrorIs(t, err, ec.ErrInvalidParameter)
	assert.False(t, Verify.IsSign())
}

func TestSchnorrVariant(t *testing.T) {
	want := map[Flags]schnorr.Variant{
		SchnorrBIP0340:    schnorr.BIP340,
		SchnorrISO14888XY: schnorr.ISO14888XY,
		SchnorrISO14888X:  schnorr.ISO14888X,
		SchnorrBSI03111:   schnorr.BSI03111,
		SchnorrLibSecp:    schnorr.LibSecp,
		SchnorrZ:          schnorr.Z,
	}
	for f, v := range want {
		got, err := (Sign | RandomRFC6979 | f).SchnorrVariant()
		require.NoError(t, err)
		assert.Equal(t, v, got)

		cfg, err := (Sign | RandomTRNG | NoCanonical | f).SchnorrConfig()
		require.NoError(t, err)
		assert.Equal(t, v, cfg.Variant)
		assert.Equal(t, ec.NonceRandom, cfg.Nonce)
		assert.False(t, cfg.Canonical)
	}
	_, err := (Sign | RandomRFC6979 | 6<<12).SchnorrVariant()
	assert.ErrorIs(t, err, ec.ErrInvalidParameter)
}

func TestECDHMode(t *testing.T) {
	m, err := ECDHPoint.ECDHMode()
	require.NoError(t, err)
	assert.Equal(t, ecdh.ModePoint, m)
	m, err = (Last | ECDHX).ECDHMode()
	require.NoError(t, err)
	assert.Equal(t, ecdh.ModeX, m)

	_, err = Flags(0).ECDHMode()
	assert.ErrorIs(t, err, ec.ErrInvalidParameter)
}

func TestFromSignConfig(t *testing.T) {
	for _, v := range []schnorr.Variant{schnorr.BIP340, schnorr.ISO14888X, schnorr.Z} {
		cfg := ec.DefaultSignConfig()
		cfg.Canonical = false
		f, err := FromSignConfig(cfg, v)
		require.NoError(t, err)

		back, err := f.SchnorrConfig()
		require.NoError(t, err)
		assert.Equal(t, v, back.Variant)
		assert.Equal(t, cfg.Nonce, back.Nonce)
		assert.False(t, back.Canonical)
	}

	_, err := FromSignConfig(ec.DefaultSignConfig(), schnorr.Variant(6))
	assert.ErrorIs(t, err, ec.ErrInvalidParameter)
	_, err = FromSignConfig(ec.SignConfig{Nonce: ec.NonceSource(9)}, schnorr.BIP340)
	assert.ErrorIs(t, err, ec.ErrInvalidParameter)
}

func TestString(t *testing.T) {
	assert.Equal(t, "mode(0x3604 op=sign rnd=rfc6979 ec=3 canonical=true)",
		(Sign | RandomRFC6979 | SchnorrBSI03111).String())
}
