package arith

import (
	"io"
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
)

// montgomery handles B*v^2 = u^3 + A*u^2 + u by mapping points onto the
// short Weierstrass model
//
//	x = u/B + A/(3B),  y = v/B
//	a' = (3 - A^2)/(3B^2),  b' = (2A^3 - 9A)/(27B^3)
//
// and running the arithmetic there.
type montgomery struct {
	params *curves.Params
	inner  *weierstrass
	g      *Point

	binv  *big.Int // 1/B
	shift *big.Int // A/(3B)
}

func newMontgomery(params *curves.Params) *montgomery {
	P := params.P
	inv := func(v *big.Int) *big.Int { return new(big.Int).ModInverse(v, P) }
	mod := func(v *big.Int) *big.Int { return v.Mod(v, P) }

	A, B := params.A, params.B
	a2 := new(big.Int).Mul(A, A)
	b2 := new(big.Int).Mul(B, B)

	wa := new(big.Int).Sub(big.NewInt(3), a2)
	wa = mod(wa.Mul(wa, inv(mod(new(big.Int).Mul(big.NewInt(3), b2)))))

	wb := new(big.Int).Mul(a2, A)
	wb.Lsh(wb, 1)
	wb.Sub(wb, new(big.Int).Mul(big.NewInt(9), A))
	b3 := new(big.Int).Mul(b2, B)
	wb = mod(wb.Mul(wb, inv(mod(b3.Mul(b3, big.NewInt(27))))))

	m := &montgomery{
		params: params,
		g:      NewPoint(params.Gx, params.Gy),
		binv:   inv(B),
		shift:  mod(new(big.Int).Mul(A, inv(mod(new(big.Int).Mul(big.NewInt(3), B))))),
	}

	wp := &curves.Params{
		ID:      params.ID,
		Name:    params.Name,
		Family:  curves.Weierstrass,
		P:       P,
		N:       params.N,
		H:       params.H,
		A:       wa,
		B:       wb,
		BitSize: params.BitSize,
		ByteLen: params.ByteLen,
	}
	wg := m.forward(m.g)
	wp.Gx, wp.Gy = wg.X, wg.Y
	m.inner = newWeierstrass(wp)
	return m
}

func (c *montgomery) forward(p *Point) *Point {
	if p.IsInfinity() {
		return &Point{}
	}
	P := c.params.P
	x := new(big.Int).Mul(p.X, c.binv)
	x.Add(x, c.shift)
	x.Mod(x, P)
	y := new(big.Int).Mul(p.Y, c.binv)
	y.Mod(y, P)
	return &Point{X: x, Y: y}
}

func (c *montgomery) backward(p *Point) *Point {
	if p.IsInfinity() {
		return &Point{}
	}
	P := c.params.P
	B := c.params.B
	u := new(big.Int).Mul(p.X, B)
	u.Sub(u, new(big.Int).Mul(c.shift, B))
	u.Mod(u, P)
	v := new(big.Int).Mul(p.Y, B)
	v.Mod(v, P)
	return &Point{X: u, Y: v}
}

func (c *montgomery) Params() *curves.Params { return c.params }
func (c *montgomery) Generator() *Point      { return c.g }
func (c *montgomery) Identity() *Point       { return &Point{} }

func (c *montgomery) IsOnCurve(p *Point) bool {
	if p.IsInfinity() {
		return false
	}
	P := c.params.P
	if p.X.Sign() < 0 || p.X.Cmp(P) >= 0 || p.Y.Sign() < 0 || p.Y.Cmp(P) >= 0 {
		return false
	}
	return c.inner.IsOnCurve(c.forward(p))
}

func (c *montgomery) Add(p, q *Point) *Point {
	return c.backward(c.inner.Add(c.forward(p), c.forward(q)))
}

func (c *montgomery) Neg(p *Point) *Point {
	return c.backward(c.inner.Neg(c.forward(p)))
}

func (c *montgomery) ScalarMult(p *Point, k *big.Int) *Point {
	return c.backward(c.inner.ScalarMult(c.forward(p), k))
}

func (c *montgomery) ScalarBaseMult(k *big.Int) *Point {
	return c.ScalarMult(c.g, k)
}

func (c *montgomery) DoubleScalarMult(a *big.Int, p *Point, b *big.Int, q *Point) *Point {
	return c.backward(c.inner.DoubleScalarMult(a, c.forward(p), b, c.forward(q)))
}

func (c *montgomery) ScalarMultRandomized(p *Point, k *big.Int, rand io.Reader) (*Point, error) {
	r, err := c.inner.ScalarMultRandomized(c.forward(p), k, rand)
	if err != nil {
		return nil, err
	}
	return c.backward(r), nil
}
