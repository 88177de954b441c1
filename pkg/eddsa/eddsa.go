// Package eddsa implements RFC 8032 EdDSA over Ed25519 and Ed448.
//
// Private keys are either seeds, expanded with the configured hash and
// clamped, or already expanded keys holding the clamped scalar and the nonce
// prefix, which are used as given. Ed25519 may be paired with SHA-512 (the
// RFC default), SHA3-512, Keccak-512 or BLAKE2b-512; Ed448 uses SHAKE256.
package eddsa

import (
	"fmt"
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/arith"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/digest"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

// Config selects the hash. The zero value picks the RFC 8032 default for
// the curve.
type Config struct {
	Hash digest.Algorithm
}

// DefaultConfig returns the RFC 8032 hash for the curve.
func DefaultConfig(curve curves.ID) Config {
	if curve == curves.Ed448 {
		return Config{Hash: digest.SHAKE256}
	}
	return Config{Hash: digest.SHA512}
}

// ed448Dom is dom4(0, "") of RFC 8032 section 5.2.
var ed448Dom = []byte{'S', 'i', 'g', 'E', 'd', '4', '4', '8', 0x00, 0x00}

// ExpandedKey is the hashed and clamped form of a seed.
type ExpandedKey struct {
	Curve curves.ID
	// Scalar is the clamped secret scalar, little-endian.
	Scalar []byte
	// Prefix seeds the deterministic nonce.
	Prefix []byte
}

// Zero overwrites the key material.
func (k *ExpandedKey) Zero() {
	for _, b := range [][]byte{k.Scalar, k.Prefix} {
		for i := range b {
			b[i] = 0
		}
	}
}

// Bytes returns Scalar || Prefix, the layout NewPrivateKey accepts as an
// expanded key.
func (k *ExpandedKey) Bytes() []byte {
	return append(append([]byte(nil), k.Scalar...), k.Prefix...)
}

type suite struct {
	params *curves.Params
	alg    digest.Algorithm
	dom    []byte
}

func newSuite(id curves.ID, cfg Config) (*suite, error) {
	params, err := curves.Lookup(id)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	if params.Family != curves.TwistedEdwards {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, "eddsa needs an edwards curve, not "+params.Name)
	}
	alg := cfg.Hash
	if alg == 0 {
		alg = DefaultConfig(id).Hash
	}

	s := &suite{params: params, alg: alg}
	switch id {
	case curves.Ed25519:
		switch alg {
		case digest.SHA512, digest.SHA3_512, digest.Keccak512, digest.BLAKE2b:
			return s, nil
		}
	case curves.Ed448:
		if alg == digest.SHAKE256 {
			s.dom = ed448Dom
			return s, nil
		}
	}
	return nil, ec.NewError(ec.ErrUnsupportedHash,
		fmt.Sprintf("%v cannot be used with %s", alg, params.Name))
}

// hash returns H(parts...) on 2*EncodedLen bytes.
func (s *suite) hash(parts ...[]byte) []byte {
	out, err := digest.Sum(s.alg, 2*s.params.EncodedLen, parts...)
	if err != nil {
		// the algorithm and size were validated by newSuite
		panic(err)
	}
	return out
}

func (s *suite) clamp(b []byte) {
	switch s.params.ID {
	case curves.Ed25519:
		b[0] &= 248
		b[31] &= 127
		b[31] |= 64
	case curves.Ed448:
		b[0] &= 252
		b[56] = 0
		b[55] |= 128
	}
}

func (s *suite) expand(priv *ec.PrivateKey) (*ExpandedKey, error) {
	l := s.params.EncodedLen
	switch len(priv.D) {
	case l:
		h := s.hash(priv.D)
		s.clamp(h[:l])
		return &ExpandedKey{Curve: priv.Curve, Scalar: h[:l], Prefix: h[l:]}, nil
	case 2 * l:
		d := append([]byte(nil), priv.D...)
		return &ExpandedKey{Curve: priv.Curve, Scalar: d[:l], Prefix: d[l:]}, nil
	}
	return nil, ec.NewError(ec.ErrInvalidKeyLength, fmt.Sprintf(
		"%s private key must be %d or %d bytes, got %d", s.params.Name, l, 2*l, len(priv.D)))
}

// ExpandKey hashes and clamps a seed. An expanded key is returned as is.
func ExpandKey(priv *ec.PrivateKey, cfg Config) (*ExpandedKey, error) {
	s, err := newSuite(priv.Curve, cfg)
	if err != nil {
		return nil, err
	}
	return s.expand(priv)
}

// PublicKey derives [a]B and returns it uncompressed.
func PublicKey(priv *ec.PrivateKey, cfg Config) (*ec.PublicKey, error) {
	s, err := newSuite(priv.Curve, cfg)
	if err != nil {
		return nil, err
	}
	xk, err := s.expand(priv)
	if err != nil {
		return nil, err
	}

	a, err := arith.Lock(s.params)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	defer a.Unlock()
	a.TrackBytes(xk.Scalar)
	a.TrackBytes(xk.Prefix)

	scalar := a.Track(arith.FromLittleEndian(xk.Scalar))
	p := a.Engine().ScalarBaseMult(scalar)
	return &ec.PublicKey{Curve: priv.Curve, W: arith.MarshalUncompressed(s.params, p)}, nil
}

// Encode returns the RFC 8032 encoding of an Edwards public key.
func Encode(pub *ec.PublicKey) ([]byte, error) {
	params, err := pub.Params()
	if err != nil {
		return nil, err
	}
	if params.Family != curves.TwistedEdwards {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, params.Name+" is not an edwards curve")
	}
	p, err := ec.DecodePoint(params, pub.W)
	if err != nil {
		return nil, err
	}
	return arith.EncodeEdwards(params, p), nil
}

// Decode parses an RFC 8032 encoded public key into its uncompressed form.
func Decode(curve curves.ID, enc []byte) (*ec.PublicKey, error) {
	params, err := curves.Lookup(curve)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	if params.Family != curves.TwistedEdwards {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, params.Name+" is not an edwards curve")
	}
	if len(enc) != params.EncodedLen {
		return nil, ec.NewError(ec.ErrInvalidKeyLength, fmt.Sprintf(
			"%s encoding is %d bytes, got %d", params.Name, params.EncodedLen, len(enc)))
	}
	p, ok := arith.DecodeEdwards(params, enc)
	if !ok {
		return nil, ec.NewError(ec.ErrInvalidPublicKey, "invalid "+params.Name+" point encoding")
	}
	return &ec.PublicKey{Curve: curve, W: arith.MarshalUncompressed(params, p)}, nil
}

// Sign returns the RFC 8032 signature R || S of msg.
func Sign(priv *ec.PrivateKey, msg []byte, cfg Config) ([]byte, error) {
	s, err := newSuite(priv.Curve, cfg)
	if err != nil {
		return nil, err
	}
	xk, err := s.expand(priv)
	if err != nil {
		return nil, err
	}

	a, err := arith.Lock(s.params)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	defer a.Unlock()
	a.TrackBytes(xk.Scalar)
	a.TrackBytes(xk.Prefix)

	var (
		e = a.Engine()
		n = s.params.N
		l = s.params.EncodedLen
	)
	scalar := a.Track(arith.FromLittleEndian(xk.Scalar))
	pubEnc := arith.EncodeEdwards(s.params, e.ScalarBaseMult(scalar))

	rh := a.TrackBytes(s.hash(s.dom, xk.Prefix, msg))
	r := a.Track(arith.FromLittleEndian(rh))
	r.Mod(r, n)
	rEnc := arith.EncodeEdwards(s.params, e.ScalarBaseMult(r))

	k := arith.FromLittleEndian(s.hash(s.dom, rEnc, pubEnc, msg))
	k.Mod(k, n)

	S := a.Track(new(big.Int).Mul(k, scalar))
	S.Add(S, r)
	S.Mod(S, n)

	sig := make([]byte, 2*l)
	copy(sig, rEnc)
	arith.PutLittleEndian(sig[l:], S)
	return sig, nil
}

// Verify reports whether sig is a valid signature of msg under pub.
// Malformed signatures yield false with a nil error.
func Verify(pub *ec.PublicKey, msg, sig []byte, cfg Config) (bool, error) {
	s, err := newSuite(pub.Curve, cfg)
	if err != nil {
		return false, err
	}
	A, err := ec.DecodePoint(s.params, pub.W)
	if err != nil {
		return false, err
	}

	a, err := arith.Lock(s.params)
	if err != nil {
		return false, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	defer a.Unlock()

	l := s.params.EncodedLen
	n := s.params.N
	if len(sig) != 2*l {
		return false, nil
	}
	R, ok := arith.DecodeEdwards(s.params, sig[:l])
	if !ok {
		return false, nil
	}
	S := arith.FromLittleEndian(sig[l:])
	if S.Cmp(n) >= 0 {
		return false, nil
	}

	pubEnc := arith.EncodeEdwards(s.params, A)
	k := arith.FromLittleEndian(s.hash(s.dom, sig[:l], pubEnc, msg))
	k.Mod(k, n)

	// [S]B - [k]A; the engine switches to two separate multiplications
	// when A = B or A = -B.
	e := a.Engine()
	check := e.DoubleScalarMult(S, e.Generator(), k, e.Neg(A))
	return check.Equal(R), nil
}
