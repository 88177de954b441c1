package arith

import (
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
)

// koblitz routes the hot paths of secp256k1 through decred's optimised field
// and scalar types. Randomized multiplication, negation and the on-curve test
// come from the embedded generic engine.
type koblitz struct {
	*weierstrass
}

func newSecp256k1(params *curves.Params) *koblitz {
	return &koblitz{weierstrass: newWeierstrass(params)}
}

func toModN(k *big.Int, n *big.Int) *secp256k1.ModNScalar {
	var s secp256k1.ModNScalar
	r := reduce(k, n)
	buf := make([]byte, 32)
	r.FillBytes(buf)
	s.SetByteSlice(buf)
	zeroBytes(buf)
	return &s
}

func toDecred(p *Point) *secp256k1.JacobianPoint {
	var j secp256k1.JacobianPoint
	if p.IsInfinity() {
		return &j
	}
	var xb, yb [32]byte
	p.X.FillBytes(xb[:])
	p.Y.FillBytes(yb[:])
	j.X.SetByteSlice(xb[:])
	j.Y.SetByteSlice(yb[:])
	j.Z.SetInt(1)
	return &j
}

func fromDecred(j *secp256k1.JacobianPoint) *Point {
	if (j.X.IsZero() && j.Y.IsZero()) || j.Z.IsZero() {
		return &Point{}
	}
	j.ToAffine()
	x := j.X.Bytes()
	y := j.Y.Bytes()
	return &Point{X: new(big.Int).SetBytes(x[:]), Y: new(big.Int).SetBytes(y[:])}
}

func (c *koblitz) Add(p, q *Point) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.AddNonConst(toDecred(p), toDecred(q), &r)
	return fromDecred(&r)
}

func (c *koblitz) ScalarMult(p *Point, k *big.Int) *Point {
	if p.IsInfinity() {
		return &Point{}
	}
	s := toModN(k, c.params.N)
	defer s.Zero()
	var r secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(s, toDecred(p), &r)
	return fromDecred(&r)
}

func (c *koblitz) ScalarBaseMult(k *big.Int) *Point {
	s := toModN(k, c.params.N)
	defer s.Zero()
	var r secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(s, &r)
	return fromDecred(&r)
}

// DoubleScalarMult is the joint double-and-add of the generic engine run on
// decred's Jacobian points, with the same sequential fallback when P and Q
// coincide or are opposite.
func (c *koblitz) DoubleScalarMult(a *big.Int, p *Point, b *big.Int, q *Point) *Point {
	if p.IsInfinity() {
		return c.ScalarMult(q, b)
	}
	if q.IsInfinity() {
		return c.ScalarMult(p, a)
	}
	if equalOrOpposite(c, p, q) {
		return sequentialDoubleMult(c, a, p, b, q)
	}

	a = reduce(a, c.params.N)
	b = reduce(b, c.params.N)
	jp, jq := toDecred(p), toDecred(q)
	var pq secp256k1.JacobianPoint
	secp256k1.AddNonConst(jp, jq, &pq)

	n := a.BitLen()
	if b.BitLen() > n {
		n = b.BitLen()
	}
	// decred's point routines must not write to one of their inputs
	var r, t secp256k1.JacobianPoint
	for i := n - 1; i >= 0; i-- {
		secp256k1.DoubleNonConst(&r, &t)
		var add *secp256k1.JacobianPoint
		switch {
		case a.Bit(i) == 1 && b.Bit(i) == 1:
			add = &pq
		case a.Bit(i) == 1:
			add = jp
		case b.Bit(i) == 1:
			add = jq
		}
		if add == nil {
			r.Set(&t)
			continue
		}
		secp256k1.AddNonConst(&t, add, &r)
	}
	return fromDecred(&r)
}
