package arith

import (
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
)

// Point encoding prefixes.
const (
	PrefixCompressedEven byte = 0x02
	PrefixCompressedOdd  byte = 0x03
	PrefixUncompressed   byte = 0x04
)

// MarshalUncompressed returns 0x04 || x || y with coordinates padded to the
// field byte length.
func MarshalUncompressed(params *curves.Params, p *Point) []byte {
	out := make([]byte, params.UncompressedLen())
	out[0] = PrefixUncompressed
	p.X.FillBytes(out[1 : 1+params.ByteLen])
	p.Y.FillBytes(out[1+params.ByteLen:])
	return out
}

// UnmarshalUncompressed parses 0x04 || x || y and checks the point lies on
// the curve.
func UnmarshalUncompressed(e Engine, b []byte) (*Point, bool) {
	params := e.Params()
	if len(b) != params.UncompressedLen() || b[0] != PrefixUncompressed {
		return nil, false
	}
	p := &Point{
		X: new(big.Int).SetBytes(b[1 : 1+params.ByteLen]),
		Y: new(big.Int).SetBytes(b[1+params.ByteLen:]),
	}
	if !e.IsOnCurve(p) {
		return nil, false
	}
	return p, true
}

// MarshalCompressed returns the SEC1 compressed form 0x02/0x03 || x.
func MarshalCompressed(params *curves.Params, p *Point) []byte {
	out := make([]byte, 1+params.ByteLen)
	out[0] = PrefixCompressedEven | byte(p.Y.Bit(0))
	p.X.FillBytes(out[1:])
	return out
}

// UnmarshalCompressed parses a SEC1 compressed Weierstrass point.
func UnmarshalCompressed(params *curves.Params, b []byte) (*Point, bool) {
	if params.Family != curves.Weierstrass || len(b) != 1+params.ByteLen {
		return nil, false
	}
	if b[0] != PrefixCompressedEven && b[0] != PrefixCompressedOdd {
		return nil, false
	}
	return LiftX(params, new(big.Int).SetBytes(b[1:]), b[0] == PrefixCompressedOdd)
}

// LiftX returns the Weierstrass point with abscissa x and the requested y
// parity.
func LiftX(params *curves.Params, x *big.Int, odd bool) (*Point, bool) {
	P := params.P
	if x.Sign() < 0 || x.Cmp(P) >= 0 {
		return nil, false
	}
	rhs := new(big.Int).Mul(x, x)
	rhs.Add(rhs, params.A)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, params.B)
	rhs.Mod(rhs, P)

	y := new(big.Int).ModSqrt(rhs, P)
	if y == nil {
		return nil, false
	}
	if (y.Bit(0) == 1) != odd {
		y.Sub(P, y)
		y.Mod(y, P)
	}
	return &Point{X: new(big.Int).Set(x), Y: y}, true
}

// HashToInt converts a digest to an integer using its leftmost bitlen(n)
// bits.
func HashToInt(hash []byte, n *big.Int) *big.Int {
	orderBits := n.BitLen()
	orderBytes := (orderBits + 7) / 8
	if len(hash) > orderBytes {
		hash = hash[:orderBytes]
	}
	v := new(big.Int).SetBytes(hash)
	if excess := len(hash)*8 - orderBits; excess > 0 {
		v.Rsh(v, uint(excess))
	}
	return v
}

// PutLittleEndian writes v into buf least significant byte first. The
// value must fit.
func PutLittleEndian(buf []byte, v *big.Int) {
	for i := range buf {
		buf[i] = 0
	}
	be := v.Bytes()
	for i, b := range be {
		buf[len(be)-1-i] = b
	}
	zeroBytes(be)
}

// FromLittleEndian decodes a little-endian integer.
func FromLittleEndian(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	v := new(big.Int).SetBytes(be)
	zeroBytes(be)
	return v
}

// FixedBytes returns v big-endian, left padded to size bytes.
func FixedBytes(v *big.Int, size int) []byte {
	out := make([]byte, size)
	v.FillBytes(out)
	return out
}

func reduce(k, n *big.Int) *big.Int {
	if k.Sign() >= 0 && k.Cmp(n) < 0 {
		return k
	}
	return new(big.Int).Mod(k, n)
}
