package arith

import (
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
)

// edwards implements a*x^2 + y^2 = 1 + d*x^2*y^2 with projective
// coordinates (X : Y : Z) and the unified addition law, which is complete
// when a is a square and d is not.
type edwards struct {
	params *curves.Params
	g      *Point
}

type projective struct {
	x, y, z *big.Int
}

func newEdwards(params *curves.Params) *edwards {
	return &edwards{params: params, g: NewPoint(params.Gx, params.Gy)}
}

func (c *edwards) Params() *curves.Params { return c.params }
func (c *edwards) Generator() *Point      { return c.g }
func (c *edwards) Identity() *Point       { return &Point{X: new(big.Int), Y: big.NewInt(1)} }

func (c *edwards) IsOnCurve(p *Point) bool {
	if p.IsInfinity() {
		return false
	}
	P := c.params.P
	if p.X.Sign() < 0 || p.X.Cmp(P) >= 0 || p.Y.Sign() < 0 || p.Y.Cmp(P) >= 0 {
		return false
	}
	x2 := new(big.Int).Mul(p.X, p.X)
	x2.Mod(x2, P)
	y2 := new(big.Int).Mul(p.Y, p.Y)
	y2.Mod(y2, P)

	lhs := new(big.Int).Mul(c.params.A, x2)
	lhs.Add(lhs, y2)
	lhs.Mod(lhs, P)

	rhs := new(big.Int).Mul(x2, y2)
	rhs.Mul(rhs, c.params.D)
	rhs.Add(rhs, big.NewInt(1))
	rhs.Mod(rhs, P)
	return lhs.Cmp(rhs) == 0
}

func (c *edwards) Neg(p *Point) *Point {
	x := new(big.Int).Neg(p.X)
	x.Mod(x, c.params.P)
	return &Point{X: x, Y: new(big.Int).Set(p.Y)}
}

func (c *edwards) toProjective(p *Point) *projective {
	return &projective{x: new(big.Int).Set(p.X), y: new(big.Int).Set(p.Y), z: big.NewInt(1)}
}

func (c *edwards) toAffine(q *projective) *Point {
	P := c.params.P
	zinv := new(big.Int).ModInverse(q.z, P)
	x := new(big.Int).Mul(q.x, zinv)
	x.Mod(x, P)
	y := new(big.Int).Mul(q.y, zinv)
	y.Mod(y, P)
	return &Point{X: x, Y: y}
}

// add is add-2008-bbjlp:
// A = Z1Z2, B = A^2, C = X1X2, D = Y1Y2, E = dCD, F = B - E, G = B + E,
// X3 = A*F*((X1+Y1)(X2+Y2) - C - D), Y3 = A*G*(D - aC), Z3 = F*G.
func (c *edwards) add(p, q *projective) *projective {
	P := c.params.P
	mod := func(v *big.Int) *big.Int { return v.Mod(v, P) }

	a := mod(new(big.Int).Mul(p.z, q.z))
	b := mod(new(big.Int).Mul(a, a))
	cc := mod(new(big.Int).Mul(p.x, q.x))
	d := mod(new(big.Int).Mul(p.y, q.y))
	e := mod(new(big.Int).Mul(c.params.D, new(big.Int).Mul(cc, d)))
	f := mod(new(big.Int).Sub(b, e))
	g := mod(new(big.Int).Add(b, e))

	t := new(big.Int).Mul(new(big.Int).Add(p.x, p.y), new(big.Int).Add(q.x, q.y))
	t.Sub(t, cc)
	t.Sub(t, d)
	x3 := mod(new(big.Int).Mul(mod(new(big.Int).Mul(a, f)), mod(t)))

	u := new(big.Int).Sub(d, new(big.Int).Mul(c.params.A, cc))
	y3 := mod(new(big.Int).Mul(mod(new(big.Int).Mul(a, g)), mod(u)))

	z3 := mod(new(big.Int).Mul(f, g))
	return &projective{x: x3, y: y3, z: z3}
}

func (c *edwards) Add(p, q *Point) *Point {
	return c.toAffine(c.add(c.toProjective(p), c.toProjective(q)))
}

func (c *edwards) mult(base *projective, k *big.Int) *projective {
	acc := &projective{x: new(big.Int), y: big.NewInt(1), z: big.NewInt(1)}
	for i := k.BitLen() - 1; i >= 0; i-- {
		acc = c.add(acc, acc)
		if k.Bit(i) == 1 {
			acc = c.add(acc, base)
		}
	}
	return acc
}

func (c *edwards) ScalarMult(p *Point, k *big.Int) *Point {
	return c.toAffine(c.mult(c.toProjective(p), reduce(k, c.params.N)))
}

func (c *edwards) ScalarBaseMult(k *big.Int) *Point {
	return c.ScalarMult(c.g, k)
}

func (c *edwards) DoubleScalarMult(a *big.Int, p *Point, b *big.Int, q *Point) *Point {
	if equalOrOpposite(c, p, q) {
		return sequentialDoubleMult(c, a, p, b, q)
	}
	a = reduce(a, c.params.N)
	b = reduce(b, c.params.N)
	pp, qq := c.toProjective(p), c.toProjective(q)
	pq := c.add(pp, qq)

	n := a.BitLen()
	if b.BitLen() > n {
		n = b.BitLen()
	}
	acc := &projective{x: new(big.Int), y: big.NewInt(1), z: big.NewInt(1)}
	for i := n - 1; i >= 0; i-- {
		acc = c.add(acc, acc)
		switch a.Bit(i)<<1 | b.Bit(i) {
		case 1:
			acc = c.add(acc, qq)
		case 2:
			acc = c.add(acc, pp)
		case 3:
			acc = c.add(acc, pq)
		}
	}
	return c.toAffine(acc)
}

// EncodeEdwards returns the RFC 8032 encoding of p: y little-endian on
// EncodedLen bytes with the parity of x in the top bit of the last byte.
func EncodeEdwards(params *curves.Params, p *Point) []byte {
	out := make([]byte, params.EncodedLen)
	PutLittleEndian(out, p.Y)
	if p.X.Bit(0) == 1 {
		out[len(out)-1] |= 0x80
	}
	return out
}

// DecodeEdwards parses an RFC 8032 point encoding. It rejects y >= p, a
// non-square x^2 and the encoding of -0.
func DecodeEdwards(params *curves.Params, enc []byte) (*Point, bool) {
	if len(enc) != params.EncodedLen {
		return nil, false
	}
	buf := make([]byte, len(enc))
	copy(buf, enc)
	sign := buf[len(buf)-1] >> 7
	buf[len(buf)-1] &= 0x7f

	P := params.P
	y := FromLittleEndian(buf)
	if y.Cmp(P) >= 0 {
		return nil, false
	}

	// x^2 = (y^2 - 1) / (d*y^2 - a)
	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, P)
	num := new(big.Int).Sub(y2, big.NewInt(1))
	num.Mod(num, P)
	den := new(big.Int).Mul(params.D, y2)
	den.Sub(den, params.A)
	den.Mod(den, P)
	if den.Sign() == 0 {
		return nil, false
	}
	den.ModInverse(den, P)
	x2 := num.Mul(num, den)
	x2.Mod(x2, P)

	x := new(big.Int).ModSqrt(x2, P)
	if x == nil {
		return nil, false
	}
	if x.Sign() == 0 && sign == 1 {
		return nil, false
	}
	if uint8(x.Bit(0)) != sign {
		x.Sub(P, x)
	}
	return &Point{X: x, Y: y}, true
}
