package schnorr

import (
	"crypto/sha256"
	"io"
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/arith"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/nonce"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/retry"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

// BIP-340 tags.
const (
	tagAux       = "BIP0340/aux"
	tagNonce     = "BIP0340/nonce"
	tagChallenge = "BIP0340/challenge"
)

// SignatureSize is the length of a BIP-340 signature.
const SignatureSize = 64

// taggedHash is SHA256(SHA256(tag) || SHA256(tag) || parts...).
func taggedHash(tag string, parts ...[]byte) []byte {
	th := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(th[:])
	h.Write(th[:])
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// XOnly returns the 32-byte BIP-340 public key for a secp256k1 key in any
// accepted encoding.
func XOnly(pub *ec.PublicKey) ([]byte, error) {
	params, err := curveParams(pub.Curve, BIP340)
	if err != nil {
		return nil, err
	}
	p, err := ec.DecodePoint(params, pub.W)
	if err != nil {
		return nil, err
	}
	return arith.FixedBytes(p.X, 32), nil
}

func signBIP340(params *curves.Params, priv *ec.PrivateKey, msg []byte, cfg Config) (*ec.SignResult, error) {
	if cfg.Aux != nil && len(cfg.Aux) != 32 {
		return nil, ec.NewError(ec.ErrInvalidParameter, "bip340 aux randomness must be 32 bytes")
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
	var (
		e   = a.Engine()
		n   = params.N
		rnd = nonce.Rand(cfg.SignConfig)
	)
	p := e.ScalarBaseMult(d)
	if p.Y.Bit(0) == 1 {
		d.Sub(n, d)
	}
	px := arith.FixedBytes(p.X, 32)
	db := a.TrackBytes(arith.FixedBytes(d, 32))

	var provided *big.Int
	if cfg.Nonce == ec.NonceProvided {
		src, err := nonce.New(a, cfg.SignConfig, d, nil)
		if err != nil {
			return nil, err
		}
		if provided, err = src.Next(); err != nil {
			return nil, err
		}
	}

	var (
		sig  []byte
		info ec.Info
	)
	err = retry.Run(params.Name, ec.MaxTries, provided != nil, func(int) (retry.Outcome, error) {
		k := provided
		if k == nil {
			aux := cfg.Aux
			if aux == nil {
				aux = make([]byte, 32)
				if cfg.Nonce == ec.NonceRandom {
					if _, err := io.ReadFull(rnd, aux); err != nil {
						return retry.Again, ec.NewError(ec.ErrInvalidParameter, "read aux randomness: "+err.Error())
					}
				}
			}
			t := a.TrackBytes(taggedHash(tagAux, aux))
			for i := range t {
				t[i] ^= db[i]
			}
			k = a.Track(new(big.Int).SetBytes(a.TrackBytes(taggedHash(tagNonce, t, px, msg))))
			k.Mod(k, n)
		}
		if k.Sign() == 0 {
			return retry.Again, nil
		}

		R := e.ScalarBaseMult(k)
		info = ec.Info{OddY: R.Y.Bit(0) == 1}
		if info.OddY {
			k = a.Track(new(big.Int).Sub(n, k))
		}
		rx := arith.FixedBytes(R.X, 32)

		c := new(big.Int).SetBytes(taggedHash(tagChallenge, rx, px, msg))
		c.Mod(c, n)
		s := a.Track(new(big.Int).Mul(c, d))
		s.Add(s, k)
		s.Mod(s, n)

		sig = make([]byte, SignatureSize)
		copy(sig, rx)
		s.FillBytes(sig[32:])
		return retry.Done, nil
	})
	if err != nil {
		return nil, err
	}
	return &ec.SignResult{Signature: sig, Info: info}, nil
}

func verifyBIP340(params *curves.Params, pub *ec.PublicKey, msg, sig []byte) (bool, error) {
	// lift_x: the key is the even-y point with the same abscissa. An x-only
	// key that cannot be lifted, including x >= p, fails verification.
	var x *big.Int
	if len(pub.W) == 32 {
		x = new(big.Int).SetBytes(pub.W)
	} else {
		w, err := ec.DecodePoint(params, pub.W)
		if err != nil {
			return false, err
		}
		x = w.X
	}
	p, ok := arith.LiftX(params, x, false)
	if !ok {
		return false, nil
	}

	a, err := arith.Lock(params)
	if err != nil {
		return false, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	defer a.Unlock()

	if len(sig) != SignatureSize {
		return false, nil
	}
	n := params.N
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	if r.Cmp(params.P) >= 0 || s.Cmp(n) >= 0 {
		return false, nil
	}

	c := new(big.Int).SetBytes(taggedHash(tagChallenge, sig[:32], arith.FixedBytes(p.X, 32), msg))
	c.Mod(c, n)

	e := a.Engine()
	R := e.DoubleScalarMult(s, e.Generator(), new(big.Int).Sub(n, c), p)
	if R.IsInfinity() || R.Y.Bit(0) == 1 {
		return false, nil
	}
	return R.X.Cmp(r) == 0, nil
}
