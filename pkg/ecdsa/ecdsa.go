// Package ecdsa signs and verifies ECDSA signatures over the short
// Weierstrass curves.
//
// Signing draws its nonce from the source in ec.SignConfig, splits the
// private scalar additively as d = v + t with a fresh random t for every
// attempt, and by default produces low-S signatures. Signatures are DER
// encoded; the recovery flags of the nonce point are returned alongside.
package ecdsa

import (
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/arith"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/nonce"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/retry"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/der"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

func weierstrassParams(id curves.ID) (*curves.Params, error) {
	params, err := curves.Lookup(id)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	if params.Family != curves.Weierstrass {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, "ecdsa needs a weierstrass curve, not "+params.Name)
	}
	return params, nil
}

func lock(params *curves.Params) (*arith.Arena, error) {
	a, err := arith.Lock(params)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	return a, nil
}

// Sign signs the digest hash with priv.
func Sign(priv *ec.PrivateKey, hash []byte, cfg ec.SignConfig) (*ec.SignResult, error) {
	params, err := weierstrassParams(priv.Curve)
	if err != nil {
		return nil, err
	}
	if len(hash) == 0 {
		return nil, ec.NewError(ec.ErrInvalidParameter, "empty digest")
	}

	a, err := lock(params)
	if err != nil {
		return nil, err
	}
	defer a.Unlock()

	d, err := priv.Scalar(a)
	if err != nil {
		return nil, err
	}
	src, err := nonce.New(a, cfg, d, hash)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var (
		e   = a.Engine()
		n   = params.N
		rnd = nonce.Rand(cfg)
		h   = a.Track(arith.HashToInt(hash, n))

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
		r = new(big.Int).Mod(q.X, n)
		if r.Sign() == 0 {
			return retry.Again, nil
		}
		info = ec.Info{OddY: q.Y.Bit(0) == 1, ReducedX: q.X.Cmp(n) >= 0}

		t, err := a.RandomScalar(rnd)
		if err != nil {
			return retry.Again, ec.NewError(ec.ErrInvalidParameter, err.Error())
		}
		v := a.Track(new(big.Int).Sub(d, t))
		v.Mod(v, n)

		// r*d computed as r*v + r*t
		rd := a.Track(new(big.Int).Mul(r, v))
		rt := a.Track(new(big.Int).Mul(r, t))
		rd.Add(rd, rt)
		rd.Mod(rd, n)

		kinv := a.Track(new(big.Int).ModInverse(k, n))
		s = a.Track(new(big.Int).Add(h, rd))
		s.Mul(s, kinv)
		s.Mod(s, n)
		if s.Sign() == 0 {
			return retry.Again, nil
		}

		if cfg.Canonical && s.Cmp(params.HalfOrder()) > 0 {
			s.Sub(n, s)
			info.OddY = !info.OddY
		}
		return retry.Done, nil
	})
	if err != nil {
		return nil, err
	}

	return &ec.SignResult{Signature: der.Marshal(r, s), Info: info}, nil
}

// Verify reports whether sig is a valid DER signature of hash under pub.
// Malformed or out-of-range signatures yield false with a nil error; the
// error only reports unusable parameters such as an invalid key.
func Verify(pub *ec.PublicKey, hash, sig []byte) (bool, error) {
	params, err := weierstrassParams(pub.Curve)
	if err != nil {
		return false, err
	}
	w, err := ec.DecodePoint(params, pub.W)
	if err != nil {
		return false, err
	}

	a, err := lock(params)
	if err != nil {
		return false, err
	}
	defer a.Unlock()

	r, s, err := der.Parse(sig, (params.N.BitLen()+7)/8)
	if err != nil {
		return false, nil
	}
	n := params.N
	if r.Sign() == 0 || r.Cmp(n) >= 0 || s.Sign() == 0 || s.Cmp(n) >= 0 {
		return false, nil
	}

	h := arith.HashToInt(hash, n)
	c := new(big.Int).ModInverse(s, n)
	u1 := new(big.Int).Mul(h, c)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(r, c)
	u2.Mod(u2, n)

	e := a.Engine()
	R := e.DoubleScalarMult(u1, e.Generator(), u2, w)
	if R.IsInfinity() {
		return false, nil
	}
	return new(big.Int).Mod(R.X, n).Cmp(r) == 0, nil
}

// RecoverPublicKey reconstructs the signer's public key from a signature
// and the recovery flags returned by Sign (SEC 1 section 4.1.6).
func RecoverPublicKey(curve curves.ID, hash, sig []byte, info ec.Info) (*ec.PublicKey, error) {
	params, err := weierstrassParams(curve)
	if err != nil {
		return nil, err
	}
	n := params.N
	r, s, err := der.Parse(sig, (n.BitLen()+7)/8)
	if err != nil {
		return nil, ec.Error{Err: ec.ErrInvalidParameter, Description: "recover: " + err.Error()}
	}
	if r.Sign() == 0 || r.Cmp(n) >= 0 || s.Sign() == 0 || s.Cmp(n) >= 0 {
		return nil, ec.NewError(ec.ErrInvalidParameter, "recover: signature values out of range")
	}

	x := new(big.Int).Set(r)
	if info.ReducedX {
		x.Add(x, n)
	}
	R, ok := arith.LiftX(params, x, info.OddY)
	if !ok {
		return nil, ec.NewError(ec.ErrInvalidParameter, "recover: r is not the abscissa of a curve point")
	}

	a, err := lock(params)
	if err != nil {
		return nil, err
	}
	defer a.Unlock()
	e := a.Engine()

	// W = r^-1 (sR - hG)
	rinv := new(big.Int).ModInverse(r, n)
	u1 := new(big.Int).Mul(s, rinv)
	u1.Mod(u1, n)
	u2 := new(big.Int).Sub(n, arith.HashToInt(hash, n))
	u2.Mul(u2, rinv)
	u2.Mod(u2, n)

	w := e.DoubleScalarMult(u1, R, u2, e.Generator())
	if w.IsInfinity() {
		return nil, ec.NewError(ec.ErrInvalidParameter, "recover: public key is the point at infinity")
	}
	return &ec.PublicKey{Curve: curve, W: arith.MarshalUncompressed(params, w)}, nil
}
