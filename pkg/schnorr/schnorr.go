// Package schnorr signs and verifies Schnorr signatures over the short
// Weierstrass curves in six wire variants.
//
// Every variant shares the nonce and retry skeleton of the ECDSA engine:
// draw k, compute Q = [k]G, derive the challenge from Q and the message,
// then s. BIP-340 signatures are the raw 64-byte Rx || s; the other variants
// DER encode (r, s). The message is hashed inside the engine.
package schnorr

import (
	"fmt"
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/arith"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/nonce"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/retry"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/der"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/digest"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

// Variant selects the challenge and response equations.
type Variant int

const (
	// BIP340 is the Bitcoin Schnorr scheme with x-only keys.
	BIP340 Variant = iota
	// ISO14888XY hashes both nonce coordinates: r = H(Qx||Qy||M), s = k + rd.
	ISO14888XY
	// ISO14888X hashes the nonce abscissa: r = H(Qx||M), s = k + rd.
	ISO14888X
	// BSI03111 is BSI TR-03111: r = H(M||Qx), s = k - rd.
	BSI03111
	// LibSecp matches the legacy libsecp256k1 scheme: r = Qx with even Qy,
	// s = k - H(Qx||M)d.
	LibSecp
	// Z hashes compressed points: r = H(Q||W||M), s = k - rd.
	Z
)

var variantNames = map[Variant]string{
	BIP340:     "bip340",
	ISO14888XY: "iso14888-xy",
	ISO14888X:  "iso14888-x",
	BSI03111:   "bsi03111",
	LibSecp:    "libsecp",
	Z:          "z",
}

// String returns the variant name.
func (v Variant) String() string {
	if n, ok := variantNames[v]; ok {
		return n
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant resolves a name returned by String.
func ParseVariant(name string) (Variant, error) {
	for v, n := range variantNames {
		if n == name {
			return v, nil
		}
	}
	return 0, ec.NewError(ec.ErrInvalidParameter, fmt.Sprintf("unknown schnorr variant %q", name))
}

// Config configures signing and verification.
type Config struct {
	ec.SignConfig

	Variant Variant

	// Aux is the BIP-340 auxiliary randomness. When nil it is drawn from
	// Rand for NonceRandom and is all zero otherwise.
	Aux []byte
}

// DefaultConfig returns deterministic, canonical signing for v.
func DefaultConfig(v Variant) Config {
	return Config{SignConfig: ec.DefaultSignConfig(), Variant: v}
}

func curveParams(id curves.ID, v Variant) (*curves.Params, error) {
	params, err := curves.Lookup(id)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	if params.Family != curves.Weierstrass {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, "schnorr needs a weierstrass curve, not "+params.Name)
	}
	if v == BIP340 && id != curves.Secp256k1 {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, "bip340 is defined on secp256k1 only")
	}
	if _, ok := variantNames[v]; !ok {
		return nil, ec.NewError(ec.ErrInvalidParameter, "unknown schnorr variant "+v.String())
	}
	return params, nil
}

func messageHash(cfg Config) (digest.Algorithm, error) {
	alg := cfg.Hash
	if alg == 0 {
		alg = digest.SHA256
	}
	if alg.IsXOF() {
		return 0, ec.NewError(ec.ErrUnsupportedHash, alg.String()+" has no fixed output size")
	}
	if _, err := digest.New(alg, 0); err != nil {
		return 0, ec.NewError(ec.ErrUnsupportedHash, err.Error())
	}
	return alg, nil
}

// challenge evaluates the variant's hash over the nonce point. The result
// is not reduced.
func challenge(v Variant, alg digest.Algorithm, params *curves.Params, q, w *arith.Point, msg []byte) *big.Int {
	var parts [][]byte
	switch v {
	case ISO14888XY:
		parts = [][]byte{arith.FixedBytes(q.X, params.ByteLen), arith.FixedBytes(q.Y, params.ByteLen), msg}
	case ISO14888X, LibSecp:
		parts = [][]byte{arith.FixedBytes(q.X, params.ByteLen), msg}
	case BSI03111:
		parts = [][]byte{msg, arith.FixedBytes(q.X, params.ByteLen)}
	case Z:
		parts = [][]byte{arith.MarshalCompressed(params, q), arith.MarshalCompressed(params, w), msg}
	}
	h, err := digest.Sum(alg, 0, parts...)
	if err != nil {
		// alg was validated by messageHash
		panic(err)
	}
	return new(big.Int).SetBytes(h)
}

// Sign signs msg with priv.
func Sign(priv *ec.PrivateKey, msg []byte, cfg Config) (*ec.SignResult, error) {
	params, err := curveParams(priv.Curve, cfg.Variant)
	if err != nil {
		return nil, err
	}
	if cfg.Variant == BIP340 {
		return signBIP340(params, priv, msg, cfg)
	}
	alg, err := messageHash(cfg)
	if err != nil {
		return nil, err
	}

	a, err := arith.Lock(params)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	defer a.Unlock()

	d, err := priv.Scalar(a)
	if err != nil {
		return nil, err
	}
	h1, err := digest.Sum(alg, 0, msg)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedHash, err.Error())
	}
	src, err := nonce.New(a, cfg.SignConfig, d, h1)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var (
		e   = a.Engine()
		n   = params.N
		rnd = nonce.Rand(cfg.SignConfig)
		w   = e.ScalarBaseMult(d)

		r, s *big.Int
		info ec.Info
	)
	err = retry.Run(params.Name, ec.MaxTries, src.SingleUse(), func(int) (retry.Outcome, error) {
		k, err := src.Next()
		if err != nil {
			return retry.Again, err
		}
		q := e.ScalarBaseMult(k)
		if q.IsInfinity() {
			return retry.Again, nil
		}

		var c *big.Int
		if cfg.Variant == LibSecp {
			if q.Y.Bit(0) == 1 {
				k.Sub(n, k)
				q = e.Neg(q)
			}
			c = challenge(cfg.Variant, alg, params, q, w, msg)
			if c.Sign() == 0 || c.Cmp(n) >= 0 || q.X.Cmp(n) >= 0 {
				return retry.Again, nil
			}
			r = new(big.Int).Set(q.X)
		} else {
			c = challenge(cfg.Variant, alg, params, q, w, msg)
			c.Mod(c, n)
			r = c
		}
		if r.Sign() == 0 {
			return retry.Again, nil
		}
		info = ec.Info{OddY: q.Y.Bit(0) == 1}

		// c*d computed as c*v + c*t with d = v + t
		t, err := a.RandomScalar(rnd)
		if err != nil {
			return retry.Again, ec.NewError(ec.ErrInvalidParameter, err.Error())
		}
		v := a.Track(new(big.Int).Sub(d, t))
		v.Mod(v, n)
		cd := a.Track(new(big.Int).Mul(c, v))
		cd.Add(cd, a.Track(new(big.Int).Mul(c, t)))
		cd.Mod(cd, n)

		s = a.Track(new(big.Int).Set(k))
		if cfg.Variant == ISO14888XY || cfg.Variant == ISO14888X {
			s.Add(s, cd)
		} else {
			s.Sub(s, cd)
		}
		s.Mod(s, n)
		if s.Sign() == 0 {
			return retry.Again, nil
		}
		// n - s would not verify, so a high s costs a fresh nonce
		if cfg.Canonical && s.Cmp(params.HalfOrder()) > 0 {
			return retry.Again, nil
		}
		return retry.Done, nil
	})
	if err != nil {
		return nil, err
	}
	return &ec.SignResult{Signature: der.Marshal(r, s), Info: info}, nil
}

// Verify reports whether sig is a valid signature of msg under pub for the
// variant in cfg. Malformed signatures yield false with a nil error.
func Verify(pub *ec.PublicKey, msg, sig []byte, cfg Config) (bool, error) {
	params, err := curveParams(pub.Curve, cfg.Variant)
	if err != nil {
		return false, err
	}
	if cfg.Variant == BIP340 {
		return verifyBIP340(params, pub, msg, sig)
	}
	alg, err := messageHash(cfg)
	if err != nil {
		return false, err
	}
	w, err := ec.DecodePoint(params, pub.W)
	if err != nil {
		return false, err
	}

	a, err := arith.Lock(params)
	if err != nil {
		return false, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	defer a.Unlock()

	n := params.N
	r, s, err := der.Parse(sig, params.ByteLen)
	if err != nil {
		return false, nil
	}
	if r.Sign() == 0 || r.Cmp(n) >= 0 || s.Sign() == 0 || s.Cmp(n) >= 0 {
		return false, nil
	}

	e := a.Engine()
	switch cfg.Variant {
	case LibSecp:
		// Q = [s]G + [h]W with h = H(r||M)
		h := challenge(LibSecp, alg, params, &arith.Point{X: r, Y: new(big.Int)}, w, msg)
		if h.Sign() == 0 || h.Cmp(n) >= 0 {
			return false, nil
		}
		q := e.DoubleScalarMult(s, e.Generator(), h, w)
		if q.IsInfinity() || q.Y.Bit(0) == 1 {
			return false, nil
		}
		return q.X.Cmp(r) == 0, nil

	case ISO14888XY, ISO14888X:
		// Q = [s]G + [n-r]W
		q := e.DoubleScalarMult(s, e.Generator(), new(big.Int).Sub(n, r), w)
		if q.IsInfinity() {
			return false, nil
		}
		c := challenge(cfg.Variant, alg, params, q, w, msg)
		return c.Mod(c, n).Cmp(r) == 0, nil
	}

	// BSI and Z: Q = [s]G + [r]W
	q := e.DoubleScalarMult(s, e.Generator(), r, w)
	if q.IsInfinity() {
		return false, nil
	}
	c := challenge(cfg.Variant, alg, params, q, w, msg)
	return c.Mod(c, n).Cmp(r) == 0, nil
}
