package ec

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/arith"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
)

// PrivateKey is a secret key bound to a curve.
//
// For Weierstrass and Montgomery curves D is the big-endian scalar on
// ByteLen bytes. For Edwards curves D is either an RFC 8032 seed of
// EncodedLen bytes or an expanded key of 2*EncodedLen bytes holding the
// clamped little-endian scalar followed by the nonce prefix.
type PrivateKey struct {
	Curve curves.ID
	D     []byte
}

// PublicKey is a public point bound to a curve. W holds one of the
// encodings accepted by DecodePoint.
type PublicKey struct {
	Curve curves.ID
	W     []byte
}

// Params returns the curve domain of the key.
func (k *PrivateKey) Params() (*curves.Params, error) {
	return lookup(k.Curve)
}

// Params returns the curve domain of the key.
func (k *PublicKey) Params() (*curves.Params, error) {
	return lookup(k.Curve)
}

func lookup(id curves.ID) (*curves.Params, error) {
	p, err := curves.Lookup(id)
	if err != nil {
		return nil, makeError(ErrUnsupportedCurve, err.Error())
	}
	return p, nil
}

// NewPrivateKey validates d for the curve and returns a key holding a copy
// of it.
func NewPrivateKey(curve curves.ID, d []byte) (*PrivateKey, error) {
	params, err := lookup(curve)
	if err != nil {
		return nil, err
	}
	k := &PrivateKey{Curve: curve, D: append([]byte(nil), d...)}
	if params.Family == curves.TwistedEdwards {
		if len(d) != params.EncodedLen && len(d) != 2*params.EncodedLen {
			return nil, makeError(ErrInvalidKeyLength, fmt.Sprintf(
				"%s private key must be %d or %d bytes, got %d",
				params.Name, params.EncodedLen, 2*params.EncodedLen, len(d)))
		}
		return k, nil
	}
	if _, err := k.scalar(params); err != nil {
		return nil, err
	}
	return k, nil
}

// scalar decodes and range checks a Weierstrass or Montgomery private key.
// The result is not tracked; callers holding an arena use Scalar.
func (k *PrivateKey) scalar(params *curves.Params) (*big.Int, error) {
	if params.Family == curves.TwistedEdwards {
		return nil, makeError(ErrUnsupportedCurve, params.Name+" keys are not plain scalars")
	}
	if len(k.D) != params.ByteLen {
		return nil, makeError(ErrInvalidKeyLength, fmt.Sprintf(
			"%s private key must be %d bytes, got %d", params.Name, params.ByteLen, len(k.D)))
	}
	d := new(big.Int).SetBytes(k.D)
	if d.Sign() == 0 || d.Cmp(params.N) >= 0 {
		arith.Wipe(d)
		return nil, makeError(ErrInvalidPrivateKey, "private scalar outside [1, n-1]")
	}
	return d, nil
}

// Scalar decodes the private scalar into an integer tracked by a.
func (k *PrivateKey) Scalar(a *arith.Arena) (*big.Int, error) {
	if a.Released() {
		return nil, makeError(ErrArenaReleased, "arena used after unlock")
	}
	d, err := k.scalar(a.Params())
	if err != nil {
		return nil, err
	}
	return a.Track(d), nil
}

// GenerateKey draws a fresh private key. Edwards curves get a random seed.
// A nil rand means crypto/rand.
func GenerateKey(curve curves.ID, rnd io.Reader) (*PrivateKey, error) {
	params, err := lookup(curve)
	if err != nil {
		return nil, err
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	if params.Family == curves.TwistedEdwards {
		seed := make([]byte, params.EncodedLen)
		if _, err := io.ReadFull(rnd, seed); err != nil {
			return nil, makeError(ErrInvalidParameter, "read seed: "+err.Error())
		}
		return &PrivateKey{Curve: curve, D: seed}, nil
	}
	d, err := arith.RandomScalar(rnd, params.N)
	if err != nil {
		return nil, makeError(ErrInvalidParameter, err.Error())
	}
	defer arith.Wipe(d)
	return &PrivateKey{Curve: curve, D: arith.FixedBytes(d, params.ByteLen)}, nil
}

// PublicKey derives the uncompressed public key of a Weierstrass or
// Montgomery private key. Edwards keys are derived by the eddsa package.
func (k *PrivateKey) PublicKey() (*PublicKey, error) {
	params, err := k.Params()
	if err != nil {
		return nil, err
	}
	a, err := arith.Lock(params)
	if err != nil {
		return nil, makeError(ErrUnsupportedCurve, err.Error())
	}
	defer a.Unlock()

	d, err := k.Scalar(a)
	if err != nil {
		return nil, err
	}
	w := a.Engine().ScalarBaseMult(d)
	return &PublicKey{Curve: k.Curve, W: arith.MarshalUncompressed(params, w)}, nil
}

// Zero overwrites the key material.
func (k *PrivateKey) Zero() {
	for i := range k.D {
		k.D[i] = 0
	}
}

// NewPublicKey validates w for the curve and returns a key holding a copy
// of it.
func NewPublicKey(curve curves.ID, w []byte) (*PublicKey, error) {
	params, err := lookup(curve)
	if err != nil {
		return nil, err
	}
	if _, err := DecodePoint(params, w); err != nil {
		return nil, err
	}
	return &PublicKey{Curve: curve, W: append([]byte(nil), w...)}, nil
}

// Point decodes the public point.
func (k *PublicKey) Point() (*arith.Point, error) {
	params, err := k.Params()
	if err != nil {
		return nil, err
	}
	return DecodePoint(params, k.W)
}

// DecodePoint parses a public point and checks it lies on the curve.
// Accepted forms are
//
//	0x04 || x || y        every family
//	0x02/0x03 || x        Weierstrass (SEC1 compressed)
//	0x02 || enc, enc      Edwards (RFC 8032 encoding)
//	x                     secp256k1 x-only (BIP-340, even y)
func DecodePoint(params *curves.Params, w []byte) (*arith.Point, error) {
	e, err := arith.EngineFor(params)
	if err != nil {
		return nil, makeError(ErrUnsupportedCurve, err.Error())
	}
	bad := func(what string) error {
		return makeError(ErrInvalidPublicKey, fmt.Sprintf("%s: %s", params.Name, what))
	}
	if len(w) == 0 {
		return nil, bad("empty key")
	}

	if len(w) == params.UncompressedLen() && w[0] == arith.PrefixUncompressed {
		p, ok := arith.UnmarshalUncompressed(e, w)
		if !ok {
			return nil, bad("point not on curve")
		}
		return p, nil
	}

	switch params.Family {
	case curves.Weierstrass:
		if len(w) == 1+params.ByteLen {
			p, ok := arith.UnmarshalCompressed(params, w)
			if !ok {
				return nil, bad("invalid compressed point")
			}
			return p, nil
		}
		if params.ID == curves.Secp256k1 && len(w) == 32 {
			p, ok := arith.LiftX(params, new(big.Int).SetBytes(w), false)
			if !ok {
				return nil, bad("x is not on the curve")
			}
			return p, nil
		}
	case curves.TwistedEdwards:
		enc := w
		if len(w) == 1+params.EncodedLen && w[0] == arith.PrefixCompressedEven {
			enc = w[1:]
		}
		if len(enc) == params.EncodedLen {
			p, ok := arith.DecodeEdwards(params, enc)
			if !ok {
				return nil, bad("invalid point encoding")
			}
			return p, nil
		}
	}
	if w[0] == arith.PrefixUncompressed {
		return nil, bad(fmt.Sprintf("uncompressed point of %d bytes, want %d",
			len(w), params.UncompressedLen()))
	}
	return nil, makeError(ErrInvalidKeyLength, fmt.Sprintf(
		"%s public key of %d bytes is not a supported encoding", params.Name, len(w)))
}
