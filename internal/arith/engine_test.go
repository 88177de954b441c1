package arith

import (
	"bytes"
	"crypto/elliptic"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
)

func engine(t *testing.T, id curves.ID) Engine {
	t.Helper()
	params, err := curves.Lookup(id)
	require.NoError(t, err)
	e, err := EngineFor(params)
	require.NoError(t, err)
	return e
}

func TestGeneratorsOnCurve(t *testing.T) {
	for _, id := range curves.All() {
		t.Run(id.String(), func(t *testing.T) {
			e := engine(t, id)
			assert.True(t, e.IsOnCurve(e.Generator()))
		})
	}
}

func TestGeneratorOrder(t *testing.T) {
	for _, id := range curves.All() {
		t.Run(id.String(), func(t *testing.T) {
			e := engine(t, id)
			n := e.Params().N
			nm1 := new(big.Int).Sub(n, big.NewInt(1))
			// [n-1]G = -G
			assert.True(t, e.ScalarBaseMult(nm1).Equal(e.Neg(e.Generator())))
			assert.True(t, e.Add(e.ScalarBaseMult(nm1), e.Generator()).Equal(e.Identity()))
		})
	}
}

func TestScalarMultLinearity(t *testing.T) {
	for _, id := range curves.All() {
		t.Run(id.String(), func(t *testing.T) {
			e := engine(t, id)
			n := e.Params().N
			a, err := RandomScalar(rand.Reader, n)
			require.NoError(t, err)
			b, err := RandomScalar(rand.Reader, n)
			require.NoError(t, err)

			sum := new(big.Int).Add(a, b)
			want := e.ScalarBaseMult(sum)
			got := e.Add(e.ScalarBaseMult(a), e.ScalarBaseMult(b))
			assert.True(t, got.Equal(want))

			// [a]G + [b]([2]G) = [a + 2b]G
			g2 := e.Add(e.Generator(), e.Generator())
			want = e.ScalarBaseMult(new(big.Int).Add(a, new(big.Int).Lsh(b, 1)))
			assert.True(t, e.DoubleScalarMult(a, e.Generator(), b, g2).Equal(want))
		})
	}
}

func TestDoubleScalarMultDegenerate(t *testing.T) {
	for _, id := range curves.All() {
		t.Run(id.String(), func(t *testing.T) {
			e := engine(t, id)
			g := e.Generator()
			a := big.NewInt(7)
			b := big.NewInt(5)

			assert.True(t, e.DoubleScalarMult(a, g, b, g).Equal(e.ScalarBaseMult(big.NewInt(12))))
			assert.True(t, e.DoubleScalarMult(a, g, b, e.Neg(g)).Equal(e.ScalarBaseMult(big.NewInt(2))))
			assert.True(t, e.DoubleScalarMult(a, g, a, e.Neg(g)).Equal(e.Identity()))
		})
	}
}

func TestWeierstrassAgreesWithStdlib(t *testing.T) {
	for _, c := range []struct {
		id    curves.ID
		curve elliptic.Curve
	}{
		{curves.Secp256r1, elliptic.P256()},
		{curves.Secp384r1, elliptic.P384()},
		{curves.Secp521r1, elliptic.P521()},
	} {
		t.Run(c.id.String(), func(t *testing.T) {
			e := engine(t, c.id)
			k, err := RandomScalar(rand.Reader, e.Params().N)
			require.NoError(t, err)

			x, y := c.curve.ScalarBaseMult(k.Bytes())
			p := e.ScalarBaseMult(k)
			assert.Equal(t, 0, x.Cmp(p.X))
			assert.Equal(t, 0, y.Cmp(p.Y))
		})
	}
}

func TestSecp256k1MatchesGeneric(t *testing.T) {
	params, err := curves.Lookup(curves.Secp256k1)
	require.NoError(t, err)
	fast := engine(t, curves.Secp256k1)
	slow := newWeierstrass(params)

	k, err := RandomScalar(rand.Reader, params.N)
	require.NoError(t, err)
	p := fast.ScalarBaseMult(k)
	assert.True(t, p.Equal(slow.ScalarBaseMult(k)))

	j, err := RandomScalar(rand.Reader, params.N)
	require.NoError(t, err)
	assert.True(t, fast.ScalarMult(p, j).Equal(slow.ScalarMult(p, j)))
	assert.True(t, fast.DoubleScalarMult(k, p, j, fast.Generator()).
		Equal(slow.DoubleScalarMult(k, p, j, slow.Generator())))
}

func TestSecp256k1JointLadder(t *testing.T) {
	params, err := curves.Lookup(curves.Secp256k1)
	require.NoError(t, err)
	fast := newSecp256k1(params)
	g := fast.Generator()

	k, err := RandomScalar(rand.Reader, params.N)
	require.NoError(t, err)
	q := fast.ScalarBaseMult(k)

	scalars := [][2]*big.Int{
		{big.NewInt(1), big.NewInt(1)},
		{big.NewInt(3), new(big.Int).Sub(params.N, big.NewInt(1))},
		{new(big.Int).Sub(params.N, big.NewInt(2)), big.NewInt(5)},
		{big.NewInt(0), big.NewInt(9)},
	}
	for i := 0; i < 4; i++ {
		a, err := RandomScalar(rand.Reader, params.N)
		require.NoError(t, err)
		b, err := RandomScalar(rand.Reader, params.N)
		require.NoError(t, err)
		scalars = append(scalars, [2]*big.Int{a, b})
	}
	for _, s := range scalars {
		want := sequentialDoubleMult(fast, s[0], g, s[1], q)
		assert.True(t, fast.DoubleScalarMult(s[0], g, s[1], q).Equal(want), "a=%x b=%x", s[0], s[1])
	}

	// [1]G + [n-1]G sums to the identity through the fallback
	assert.True(t, fast.DoubleScalarMult(big.NewInt(1), g, new(big.Int).Sub(params.N, big.NewInt(1)), g).IsInfinity())
}

func TestEd25519MatchesGeneric(t *testing.T) {
	params, err := curves.Lookup(curves.Ed25519)
	require.NoError(t, err)
	fast := engine(t, curves.Ed25519)
	slow := newEdwards(params)

	k, err := RandomScalar(rand.Reader, params.N)
	require.NoError(t, err)
	p := fast.ScalarBaseMult(k)
	assert.True(t, p.Equal(slow.ScalarBaseMult(k)))
	assert.True(t, fast.IsOnCurve(p))

	j, err := RandomScalar(rand.Reader, params.N)
	require.NoError(t, err)
	assert.True(t, fast.ScalarMult(p, j).Equal(slow.ScalarMult(p, j)))
}

func TestRandomizedScalarMult(t *testing.T) {
	for _, id := range []curves.ID{curves.Secp256k1, curves.Secp256r1, curves.Secp521r1, curves.Curve25519} {
		t.Run(id.String(), func(t *testing.T) {
			e := engine(t, id)
			r, ok := e.(Randomizer)
			require.True(t, ok)

			k, err := RandomScalar(rand.Reader, e.Params().N)
			require.NoError(t, err)
			got, err := r.ScalarMultRandomized(e.Generator(), k, rand.Reader)
			require.NoError(t, err)
			assert.True(t, got.Equal(e.ScalarBaseMult(k)))
		})
	}
}

func TestEdwardsEncoding(t *testing.T) {
	for _, id := range []curves.ID{curves.Ed25519, curves.Ed448} {
		t.Run(id.String(), func(t *testing.T) {
			e := engine(t, id)
			params := e.Params()
			k, err := RandomScalar(rand.Reader, params.N)
			require.NoError(t, err)
			p := e.ScalarBaseMult(k)

			enc := EncodeEdwards(params, p)
			require.Len(t, enc, params.EncodedLen)
			q, ok := DecodeEdwards(params, enc)
			require.True(t, ok)
			assert.True(t, p.Equal(q))

			// y = p is out of range
			bad := make([]byte, params.EncodedLen)
			PutLittleEndian(bad, params.P)
			_, ok = DecodeEdwards(params, bad)
			assert.False(t, ok)
		})
	}
}

func TestEd25519BaseEncoding(t *testing.T) {
	params, err := curves.Lookup(curves.Ed25519)
	require.NoError(t, err)
	g := NewPoint(params.Gx, params.Gy)
	want := append([]byte{0x58}, bytes.Repeat([]byte{0x66}, 31)...)
	assert.Equal(t, want, EncodeEdwards(params, g))
}

func TestSEC1Compression(t *testing.T) {
	for _, id := range []curves.ID{curves.Secp256k1, curves.Secp256r1, curves.Secp384r1, curves.Secp521r1} {
		t.Run(id.String(), func(t *testing.T) {
			e := engine(t, id)
			params := e.Params()
			k, err := RandomScalar(rand.Reader, params.N)
			require.NoError(t, err)
			p := e.ScalarBaseMult(k)

			q, ok := UnmarshalCompressed(params, MarshalCompressed(params, p))
			require.True(t, ok)
			assert.True(t, p.Equal(q))

			q, ok = UnmarshalUncompressed(e, MarshalUncompressed(params, p))
			require.True(t, ok)
			assert.True(t, p.Equal(q))

			off := MarshalUncompressed(params, p)
			off[len(off)-1] ^= 1
			_, ok = UnmarshalUncompressed(e, off)
			assert.False(t, ok)
		})
	}
}

func TestHashToInt(t *testing.T) {
	n := big.NewInt(1000) // 10-bit order
	v := HashToInt([]byte{0xff, 0xff, 0xff}, n)
	assert.Equal(t, int64(0x3ff), v.Int64())

	short := HashToInt([]byte{0x01}, n)
	assert.Equal(t, int64(1), short.Int64())
}

func TestLittleEndian(t *testing.T) {
	buf := make([]byte, 4)
	PutLittleEndian(buf, big.NewInt(0x010203))
	assert.Equal(t, []byte{0x03, 0x02, 0x01, 0x00}, buf)
	assert.Equal(t, int64(0x010203), FromLittleEndian(buf).Int64())
}

func TestMontgomeryWithCoefficientB(t *testing.T) {
	params, err := curves.Lookup(curves.Curve25519)
	require.NoError(t, err)
	P := params.P

	// B' = B/4 turns (u, v) into (u, 2v) on an isomorphic curve
	scaled := *params
	scaled.B = new(big.Int).Mul(params.B, new(big.Int).ModInverse(big.NewInt(4), P))
	scaled.B.Mod(scaled.B, P)
	scaled.Gy = new(big.Int).Lsh(params.Gy, 1)
	scaled.Gy.Mod(scaled.Gy, P)

	m := newMontgomery(&scaled)
	std := newMontgomery(params)

	// B'*v^2 = u^3 + A*u^2 + u
	g := m.Generator()
	lhs := new(big.Int).Mul(scaled.B, new(big.Int).Mul(g.Y, g.Y))
	rhs := new(big.Int).Exp(g.X, big.NewInt(3), P)
	rhs.Add(rhs, new(big.Int).Mul(scaled.A, new(big.Int).Mul(g.X, g.X)))
	rhs.Add(rhs, g.X)
	require.Equal(t, 0, lhs.Mod(lhs, P).Cmp(rhs.Mod(rhs, P)))

	assert.True(t, m.IsOnCurve(g))
	assert.True(t, m.backward(m.forward(g)).Equal(g))

	k, err := RandomScalar(rand.Reader, params.N)
	require.NoError(t, err)
	got := m.ScalarBaseMult(k)
	want := std.ScalarBaseMult(k)
	assert.Equal(t, 0, got.X.Cmp(want.X))
	v := new(big.Int).Lsh(want.Y, 1)
	assert.Equal(t, 0, got.Y.Cmp(v.Mod(v, P)))
	assert.True(t, m.IsOnCurve(got))
}
