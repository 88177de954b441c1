// Package mode translates the packed integer mode flags of the legacy
// signing API into the typed configuration of the engines.
//
// Layout, least significant bit first:
//
//	bit  0      last-block marker (ignored)
//	bits 1-2    operation: sign/encrypt or verify/decrypt
//	bits 3-5    padding (ignored)
//	bits 6-8    chaining (ignored)
//	bits 9-11   randomness source
//	bits 12-14  EC variant: Schnorr variant or ECDH output
//	bit  15     disable canonical signatures
package mode

import (
	"fmt"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ecdh"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/schnorr"
)

// Flags is a packed legacy mode word.
type Flags uint32

// Field masks.
const (
	MaskOperation Flags = 3 << 1
	MaskPadding   Flags = 7 << 3
	MaskChaining  Flags = 7 << 6
	MaskRandom    Flags = 7 << 9
	MaskEC        Flags = 7 << 12
)

// Operation selectors. Signing shares its value with encryption and
// verification with decryption.
const (
	Last    Flags = 1 << 0
	Decrypt Flags = 0 << 1
	Encrypt Flags = 2 << 1
	Verify        = Decrypt
	Sign          = Encrypt
)

// Randomness sources.
const (
	RandomPRNG     Flags = 1 << 9
	RandomTRNG     Flags = 2 << 9
	RandomRFC6979  Flags = 3 << 9
	RandomProvided Flags = 4 << 9
)

// Schnorr variants.
const (
	SchnorrBIP0340    Flags = 0 << 12
	SchnorrISO14888XY Flags = 1 << 12
	SchnorrISO14888X  Flags = 2 << 12
	SchnorrBSI03111   Flags = 3 << 12
	SchnorrLibSecp    Flags = 4 << 12
	SchnorrZ          Flags = 5 << 12
)

// ECDH outputs.
const (
	ECDHPoint Flags = 1 << 12
	ECDHX     Flags = 2 << 12
)

// NoCanonical disables low-S normalization.
const NoCanonical Flags = 1 << 15

func invalid(format string, args ...interface{}) error {
	return ec.NewError(ec.ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// IsSign reports whether the operation field selects signing.
func (f Flags) IsSign() bool {
	return f&MaskOperation == Sign
}

// Canonical reports whether low-S normalization is requested.
func (f Flags) Canonical() bool {
	return f&NoCanonical == 0
}

// NonceSource decodes the randomness field. Both random generators map to
// ec.NonceRandom.
func (f Flags) NonceSource() (ec.NonceSource, error) {
	switch f & MaskRandom {
	case RandomPRNG, RandomTRNG:
		return ec.NonceRandom, nil
	case RandomRFC6979:
		return ec.NonceRFC6979, nil
	case RandomProvided:
		return ec.NonceProvided, nil
	}
	return 0, invalid("mode %#04x selects no randomness source", uint32(f))
}

// SignConfig starts from ec.DefaultSignConfig and applies the randomness
// and canonical fields. The caller fills in K for RandomProvided.
func (f Flags) SignConfig() (ec.SignConfig, error) {
	cfg := ec.DefaultSignConfig()
	src, err := f.NonceSource()
	if err != nil {
		return cfg, err
	}
	cfg.Nonce = src
	cfg.Canonical = f.Canonical()
	return cfg, nil
}

// SchnorrVariant decodes the EC field as a Schnorr variant.
func (f Flags) SchnorrVariant() (schnorr.Variant, error) {
	switch f & MaskEC {
	case SchnorrBIP0340:
		return schnorr.BIP340, nil
	case SchnorrISO14888XY:
		return schnorr.ISO14888XY, nil
	case SchnorrISO14888X:
		return schnorr.ISO14888X, nil
	case SchnorrBSI03111:
		return schnorr.BSI03111, nil
	case SchnorrLibSecp:
		return schnorr.LibSecp, nil
	case SchnorrZ:
		return schnorr.Z, nil
	}
	return 0, invalid("mode %#04x selects no schnorr variant", uint32(f))
}

// SchnorrConfig combines SignConfig and SchnorrVariant.
func (f Flags) SchnorrConfig() (schnorr.Config, error) {
	sc, err := f.SignConfig()
	if err != nil {
		return schnorr.Config{}, err
	}
	v, err := f.SchnorrVariant()
	if err != nil {
		return schnorr.Config{}, err
	}
	return schnorr.Config{SignConfig: sc, Variant: v}, nil
}

// ECDHMode decodes the EC field as an ECDH output mode.
func (f Flags) ECDHMode() (ecdh.Mode, error) {
	switch f & MaskEC {
	case ECDHPoint:
		return ecdh.ModePoint, nil
	case ECDHX:
		return ecdh.ModeX, nil
	}
	return 0, invalid("mode %#04x selects no ecdh output", uint32(f))
}

// FromSignConfig packs a signing configuration and Schnorr variant back
// into legacy flags. Random nonces map to RandomTRNG.
func FromSignConfig(cfg ec.SignConfig, v schnorr.Variant) (Flags, error) {
	f := Sign
	switch cfg.Nonce {
	case ec.NonceRandom:
		f |= RandomTRNG
	case ec.NonceRFC6979:
		f |= RandomRFC6979
	case ec.NonceProvided:
		f |= RandomProvided
	default:
		return 0, invalid("unknown nonce source %v", cfg.Nonce)
	}
	if v < schnorr.BIP340 || Flags(v)<<12 > SchnorrZ {
		return 0, invalid("unknown schnorr variant %v", v)
	}
	f |= Flags(v) << 12
	if !cfg.Canonical {
		f |= NoCanonical
	}
	return f, nil
}

// String renders the decoded fields.
func (f Flags) String() string {
	op := "verify"
	if f.IsSign() {
		op = "sign"
	}
	rnd := "none"
	if src, err := f.NonceSource(); err == nil {
		rnd = src.String()
	}
	return fmt.Sprintf("mode(%#04x op=%s rnd=%s ec=%d canonical=%t)",
		uint32(f), op, rnd, uint32(f&MaskEC)>>12, f.Canonical())
}
