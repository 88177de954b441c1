package arith

import (
	"math/big"

	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
)

// ed25519 runs scalar multiplications through filippo.io/edwards25519 and
// keeps the generic Edwards engine for anything that library refuses, such
// as points off the prime-order subgroup encoding rules.
type ed25519 struct {
	*edwards
}

func newEd25519(params *curves.Params) *ed25519 {
	return &ed25519{edwards: newEdwards(params)}
}

func (c *ed25519) scalar(k *big.Int) *edwards25519.Scalar {
	buf := make([]byte, 32)
	PutLittleEndian(buf, reduce(k, c.params.N))
	s, err := edwards25519.NewScalar().SetCanonicalBytes(buf)
	zeroBytes(buf)
	if err != nil {
		// unreachable for a reduced value
		panic("arith: ed25519 scalar out of range")
	}
	return s
}

func (c *ed25519) point(p *Point) (*edwards25519.Point, bool) {
	q, err := new(edwards25519.Point).SetBytes(EncodeEdwards(c.params, p))
	if err != nil {
		return nil, false
	}
	return q, true
}

func (c *ed25519) affine(q *edwards25519.Point) *Point {
	X, Y, Z, _ := q.ExtendedCoordinates()
	zinv := new(field.Element).Invert(Z)
	x := new(field.Element).Multiply(X, zinv)
	y := new(field.Element).Multiply(Y, zinv)
	return &Point{X: FromLittleEndian(x.Bytes()), Y: FromLittleEndian(y.Bytes())}
}

func (c *ed25519) ScalarBaseMult(k *big.Int) *Point {
	return c.affine(new(edwards25519.Point).ScalarBaseMult(c.scalar(k)))
}

func (c *ed25519) ScalarMult(p *Point, k *big.Int) *Point {
	q, ok := c.point(p)
	if !ok {
		return c.edwards.ScalarMult(p, k)
	}
	return c.affine(new(edwards25519.Point).ScalarMult(c.scalar(k), q))
}

func (c *ed25519) DoubleScalarMult(a *big.Int, p *Point, b *big.Int, q *Point) *Point {
	if equalOrOpposite(c, p, q) {
		return sequentialDoubleMult(c, a, p, b, q)
	}
	pp, ok1 := c.point(p)
	qq, ok2 := c.point(q)
	if !ok1 || !ok2 {
		return c.edwards.DoubleScalarMult(a, p, b, q)
	}
	r := new(edwards25519.Point).VarTimeMultiScalarMult(
		[]*edwards25519.Scalar{c.scalar(a), c.scalar(b)},
		[]*edwards25519.Point{pp, qq},
	)
	return c.affine(r)
}
