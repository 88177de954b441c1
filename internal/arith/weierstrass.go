package arith

import (
	"io"
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
)

// weierstrass implements y^2 = x^3 + a*x + b over math/big using Jacobian
// coordinates (X, Y, Z) ~ (X/Z^2, Y/Z^3). Z = 0 encodes the point at
// infinity.
type weierstrass struct {
	params *curves.Params
	g      *Point
}

type jacobian struct {
	x, y, z *big.Int
}

func newWeierstrass(params *curves.Params) *weierstrass {
	return &weierstrass{params: params, g: NewPoint(params.Gx, params.Gy)}
}

func (c *weierstrass) Params() *curves.Params { return c.params }
func (c *weierstrass) Generator() *Point      { return c.g }
func (c *weierstrass) Identity() *Point       { return &Point{} }

func (c *weierstrass) IsOnCurve(p *Point) bool {
	if p.IsInfinity() {
		return false
	}
	P := c.params.P
	if p.X.Sign() < 0 || p.X.Cmp(P) >= 0 || p.Y.Sign() < 0 || p.Y.Cmp(P) >= 0 {
		return false
	}
	y2 := new(big.Int).Mul(p.Y, p.Y)
	y2.Mod(y2, P)

	rhs := new(big.Int).Mul(p.X, p.X)
	rhs.Add(rhs, c.params.A)
	rhs.Mul(rhs, p.X)
	rhs.Add(rhs, c.params.B)
	rhs.Mod(rhs, P)
	return y2.Cmp(rhs) == 0
}

func (c *weierstrass) Neg(p *Point) *Point {
	if p.IsInfinity() {
		return &Point{}
	}
	y := new(big.Int).Neg(p.Y)
	y.Mod(y, c.params.P)
	return &Point{X: new(big.Int).Set(p.X), Y: y}
}

func (c *weierstrass) toJacobian(p *Point) *jacobian {
	if p.IsInfinity() {
		return &jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
	}
	return &jacobian{x: new(big.Int).Set(p.X), y: new(big.Int).Set(p.Y), z: big.NewInt(1)}
}

func (c *weierstrass) toAffine(j *jacobian) *Point {
	if j.z.Sign() == 0 {
		return &Point{}
	}
	P := c.params.P
	zinv := new(big.Int).ModInverse(j.z, P)
	zinv2 := new(big.Int).Mul(zinv, zinv)
	x := new(big.Int).Mul(j.x, zinv2)
	x.Mod(x, P)
	zinv2.Mul(zinv2, zinv)
	y := new(big.Int).Mul(j.y, zinv2)
	y.Mod(y, P)
	return &Point{X: x, Y: y}
}

// double uses S = 4XY^2, M = 3X^2 + aZ^4, X' = M^2 - 2S,
// Y' = M(S - X') - 8Y^4, Z' = 2YZ.
func (c *weierstrass) double(j *jacobian) *jacobian {
	if j.z.Sign() == 0 || j.y.Sign() == 0 {
		return &jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
	}
	P := c.params.P

	yy := new(big.Int).Mul(j.y, j.y)
	yy.Mod(yy, P)

	s := new(big.Int).Mul(j.x, yy)
	s.Lsh(s, 2)
	s.Mod(s, P)

	m := new(big.Int).Mul(j.x, j.x)
	m.Mul(m, big.NewInt(3))
	if c.params.A.Sign() != 0 {
		z4 := new(big.Int).Mul(j.z, j.z)
		z4.Mod(z4, P)
		z4.Mul(z4, z4)
		z4.Mul(z4, c.params.A)
		m.Add(m, z4)
	}
	m.Mod(m, P)

	x3 := new(big.Int).Mul(m, m)
	x3.Sub(x3, new(big.Int).Lsh(s, 1))
	x3.Mod(x3, P)

	y4 := new(big.Int).Mul(yy, yy)
	y4.Lsh(y4, 3)
	y3 := new(big.Int).Sub(s, x3)
	y3.Mul(y3, m)
	y3.Sub(y3, y4)
	y3.Mod(y3, P)

	z3 := new(big.Int).Mul(j.y, j.z)
	z3.Lsh(z3, 1)
	z3.Mod(z3, P)

	return &jacobian{x: x3, y: y3, z: z3}
}

// add handles every input combination, including doubling and inverse
// points.
func (c *weierstrass) add(a, b *jacobian) *jacobian {
	if a.z.Sign() == 0 {
		return &jacobian{x: new(big.Int).Set(b.x), y: new(big.Int).Set(b.y), z: new(big.Int).Set(b.z)}
	}
	if b.z.Sign() == 0 {
		return &jacobian{x: new(big.Int).Set(a.x), y: new(big.Int).Set(a.y), z: new(big.Int).Set(a.z)}
	}
	P := c.params.P

	z1z1 := new(big.Int).Mul(a.z, a.z)
	z1z1.Mod(z1z1, P)
	z2z2 := new(big.Int).Mul(b.z, b.z)
	z2z2.Mod(z2z2, P)

	u1 := new(big.Int).Mul(a.x, z2z2)
	u1.Mod(u1, P)
	u2 := new(big.Int).Mul(b.x, z1z1)
	u2.Mod(u2, P)

	s1 := new(big.Int).Mul(a.y, b.z)
	s1.Mul(s1, z2z2)
	s1.Mod(s1, P)
	s2 := new(big.Int).Mul(b.y, a.z)
	s2.Mul(s2, z1z1)
	s2.Mod(s2, P)

	h := new(big.Int).Sub(u2, u1)
	h.Mod(h, P)
	r := new(big.Int).Sub(s2, s1)
	r.Mod(r, P)

	if h.Sign() == 0 {
		if r.Sign() == 0 {
			return c.double(a)
		}
		return &jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
	}

	hh := new(big.Int).Mul(h, h)
	hh.Mod(hh, P)
	hhh := new(big.Int).Mul(hh, h)
	hhh.Mod(hhh, P)
	v := new(big.Int).Mul(u1, hh)
	v.Mod(v, P)

	x3 := new(big.Int).Mul(r, r)
	x3.Sub(x3, hhh)
	x3.Sub(x3, new(big.Int).Lsh(v, 1))
	x3.Mod(x3, P)

	y3 := new(big.Int).Sub(v, x3)
	y3.Mul(y3, r)
	y3.Sub(y3, new(big.Int).Mul(s1, hhh))
	y3.Mod(y3, P)

	z3 := new(big.Int).Mul(a.z, b.z)
	z3.Mul(z3, h)
	z3.Mod(z3, P)

	return &jacobian{x: x3, y: y3, z: z3}
}

func (c *weierstrass) Add(p, q *Point) *Point {
	return c.toAffine(c.add(c.toJacobian(p), c.toJacobian(q)))
}

func (c *weierstrass) mult(base *jacobian, k *big.Int) *jacobian {
	acc := &jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
	for i := k.BitLen() - 1; i >= 0; i-- {
		acc = c.double(acc)
		if k.Bit(i) == 1 {
			acc = c.add(acc, base)
		}
	}
	return acc
}

func (c *weierstrass) ScalarMult(p *Point, k *big.Int) *Point {
	if p.IsInfinity() {
		return &Point{}
	}
	return c.toAffine(c.mult(c.toJacobian(p), reduce(k, c.params.N)))
}

func (c *weierstrass) ScalarBaseMult(k *big.Int) *Point {
	return c.ScalarMult(c.g, k)
}

// ScalarMultRandomized blinds the input with a random lambda, replacing
// (x, y, 1) by (lambda^2 x, lambda^3 y, lambda) before the ladder.
func (c *weierstrass) ScalarMultRandomized(p *Point, k *big.Int, rand io.Reader) (*Point, error) {
	if p.IsInfinity() {
		return &Point{}, nil
	}
	P := c.params.P
	lambda, err := RandomFieldElement(rand, P)
	if err != nil {
		return nil, err
	}
	defer Wipe(lambda)

	l2 := new(big.Int).Mul(lambda, lambda)
	l2.Mod(l2, P)
	l3 := new(big.Int).Mul(l2, lambda)
	l3.Mod(l3, P)

	base := &jacobian{
		x: new(big.Int).Mod(new(big.Int).Mul(p.X, l2), P),
		y: new(big.Int).Mod(new(big.Int).Mul(p.Y, l3), P),
		z: new(big.Int).Set(lambda),
	}
	return c.toAffine(c.mult(base, reduce(k, c.params.N))), nil
}

// DoubleScalarMult runs a joint double-and-add over the bits of a and b
// (Shamir's trick), falling back to two sequential multiplications when P
// and Q coincide or are opposite.
func (c *weierstrass) DoubleScalarMult(a *big.Int, p *Point, b *big.Int, q *Point) *Point {
	if p.IsInfinity() {
		return c.ScalarMult(q, b)
	}
	if q.IsInfinity() {
		return c.ScalarMult(p, a)
	}
	if equalOrOpposite(c, p, q) {
		return sequentialDoubleMult(c, a, p, b, q)
	}
	return c.toAffine(c.shamir(a, c.toJacobian(p), b, c.toJacobian(q)))
}

func (c *weierstrass) shamir(a *big.Int, p *jacobian, b *big.Int, q *jacobian) *jacobian {
	a = reduce(a, c.params.N)
	b = reduce(b, c.params.N)
	pq := c.add(p, q)

	n := a.BitLen()
	if b.BitLen() > n {
		n = b.BitLen()
	}
	acc := &jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
	for i := n - 1; i >= 0; i-- {
		acc = c.double(acc)
		switch a.Bit(i)<<1 | b.Bit(i) {
		case 1:
			acc = c.add(acc, q)
		case 2:
			acc = c.add(acc, p)
		case 3:
			acc = c.add(acc, pq)
		}
	}
	return acc
}
