// Package ecdh derives Diffie-Hellman shared secrets on the short
// Weierstrass and Montgomery curves.
package ecdh

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/arith"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

// Mode selects the shape of the shared secret.
type Mode int

const (
	// ModePoint outputs the full shared point as 0x04 || x || y.
	ModePoint Mode = iota + 1
	// ModeX outputs the abscissa of the shared point only.
	ModeX
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePoint:
		return "point"
	case ModeX:
		return "x"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode resolves a name returned by String.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "point":
		return ModePoint, nil
	case "x":
		return ModeX, nil
	}
	return 0, ec.NewError(ec.ErrInvalidParameter, fmt.Sprintf("unknown ecdh mode %q", name))
}

func curveParams(id curves.ID) (*curves.Params, error) {
	params, err := curves.Lookup(id)
	if err != nil {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	if params.Family == curves.TwistedEdwards {
		return nil, ec.NewError(ec.ErrUnsupportedCurve, "ecdh is not defined on "+params.Name)
	}
	return params, nil
}

// OutputLen returns the number of bytes Derive writes for the curve.
func OutputLen(curve curves.ID, mode Mode) (int, error) {
	params, err := curveParams(curve)
	if err != nil {
		return 0, err
	}
	return outputLen(params, mode)
}

func outputLen(params *curves.Params, mode Mode) (int, error) {
	switch mode {
	case ModePoint:
		return params.UncompressedLen(), nil
	case ModeX:
		return params.ByteLen, nil
	}
	return 0, ec.NewError(ec.ErrInvalidParameter, "unknown ecdh mode "+mode.String())
}

// Derive computes [d]peer and writes it to dst in the requested mode,
// returning the number of bytes written. peer must be the uncompressed
// encoding 0x04 || x || y of a point on the key's curve. The scalar
// multiplication runs on randomized projective coordinates drawn from rnd,
// or crypto/rand when rnd is nil.
//
// On Montgomery curves the peer point is assumed to lie in the prime-order
// subgroup.
func Derive(dst []byte, priv *ec.PrivateKey, peer []byte, mode Mode, rnd io.Reader) (int, error) {
	params, err := curveParams(priv.Curve)
	if err != nil {
		return 0, err
	}
	size, err := outputLen(params, mode)
	if err != nil {
		return 0, err
	}
	if len(dst) < size {
		return 0, ec.NewError(ec.ErrBufferTooSmall, fmt.Sprintf(
			"ecdh output needs %d bytes, have %d", size, len(dst)))
	}
	if rnd == nil {
		rnd = rand.Reader
	}

	a, err := arith.Lock(params)
	if err != nil {
		return 0, ec.NewError(ec.ErrUnsupportedCurve, err.Error())
	}
	defer a.Unlock()

	d, err := priv.Scalar(a)
	if err != nil {
		return 0, err
	}
	if len(peer) != params.UncompressedLen() || peer[0] != arith.PrefixUncompressed {
		return 0, ec.NewError(ec.ErrInvalidPublicKey, fmt.Sprintf(
			"ecdh peer must be a %d-byte uncompressed point", params.UncompressedLen()))
	}
	e := a.Engine()
	p, ok := arith.UnmarshalUncompressed(e, peer)
	if !ok {
		return 0, ec.NewError(ec.ErrInvalidPublicKey, "ecdh peer is not on "+params.Name)
	}

	blind, ok := e.(arith.Randomizer)
	if !ok {
		return 0, ec.NewError(ec.ErrUnsupportedCurve, params.Name+" engine cannot randomize coordinates")
	}
	q, err := blind.ScalarMultRandomized(p, d, rnd)
	if err != nil {
		return 0, ec.NewError(ec.ErrInvalidParameter, err.Error())
	}
	if q.IsInfinity() {
		return 0, ec.NewError(ec.ErrInvalidPublicKey, "shared point is the identity")
	}
	a.Track(q.X, q.Y)

	if mode == ModeX {
		q.X.FillBytes(dst[:size])
		return size, nil
	}
	out := a.TrackBytes(arith.MarshalUncompressed(params, q))
	return copy(dst, out), nil
}

// SharedSecret is Derive into a freshly allocated buffer, with crypto/rand
// as the blinding source.
func SharedSecret(priv *ec.PrivateKey, peer *ec.PublicKey, mode Mode) ([]byte, error) {
	if peer.Curve != priv.Curve {
		return nil, ec.NewError(ec.ErrInvalidParameter, fmt.Sprintf(
			"peer key is on %v, private key on %v", peer.Curve, priv.Curve))
	}
	size, err := OutputLen(priv.Curve, mode)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	n, err := Derive(out, priv, peer.W, mode, nil)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// X25519 computes the RFC 7748 function on little-endian scalar and u
// coordinate strings of 32 bytes each. Low-order peers are rejected.
func X25519(scalar, peerU []byte) ([]byte, error) {
	if len(scalar) != curve25519.ScalarSize || len(peerU) != curve25519.PointSize {
		return nil, ec.NewError(ec.ErrInvalidKeyLength, fmt.Sprintf(
			"x25519 inputs must be %d bytes", curve25519.ScalarSize))
	}
	out, err := curve25519.X25519(scalar, peerU)
	if err != nil {
		return nil, ec.NewError(ec.ErrInvalidPublicKey, err.Error())
	}
	return out, nil
}
