package eddsa

import (
	stded25519 "crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/arith"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/digest"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestRFC8032Ed25519(t *testing.T) {
	seed := hexBytes(t, "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")
	wantPub := hexBytes(t, "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a")
	wantSig := hexBytes(t, "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b")

	priv, err := ec.NewPrivateKey(curves.Ed25519, seed)
	require.NoError(t, err)
	cfg := DefaultConfig(curves.Ed25519)

	pub, err := PublicKey(priv, cfg)
	require.NoError(t, err)
	enc, err := Encode(pub)
	require.NoError(t, err)
	assert.Equal(t, wantPub, enc)

	sig, err := Sign(priv, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, wantSig, sig)

	ok, err := Verify(pub, nil, sig, cfg)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRFC8032Ed448(t *testing.T) {
	seed := hexBytes(t, "6c82a562cb808d10d632be89c8513ebf6c929f34ddfa8c9f63c9960ef6e348a3"+
		"528c8a3fcc2f044e39a3fc5b94492f8f032e7549a20098f95b")
	wantPub := hexBytes(t, "5fd7449b59b461fd2ce787ec616ad46a1da1342485a70e1f8a0ea75d80e96778"+
		"edf124769b46c7061bd6783df1e50f6cd1fa1abeafe8256180")
	wantSig := hexBytes(t, "533a37f6bbe457251f023c0d88f976ae2dfb504a843e34d2074fd823d41a591f"+
		"2b233f034f628281f2fd7a22ddd47d7828c59bd0a21bfd3980ff0d2028d4b18a"+
		"9df63e006c5d1c2d345b925d8dc00b4104852db99ac5c7cdda8530a113a0f4db"+
		"b61149f05a7363268c71d95808ff2e652600")

	priv, err := ec.NewPrivateKey(curves.Ed448, seed)
	require.NoError(t, err)
	cfg := DefaultConfig(curves.Ed448)

	pub, err := PublicKey(priv, cfg)
	require.NoError(t, err)
	enc, err := Encode(pub)
	require.NoError(t, err)
	assert.Equal(t, wantPub, enc)

	sig, err := Sign(priv, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, wantSig, sig)

	ok, err := Verify(pub, nil, sig, cfg)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAgreesWithStdlib(t *testing.T) {
	for i := 0; i < 4; i++ {
		stdPub, stdPriv, err := stded25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		msg := []byte{byte(i), 'e', 'd'}

		priv, err := ec.NewPrivateKey(curves.Ed25519, stdPriv.Seed())
		require.NoError(t, err)
		cfg := DefaultConfig(curves.Ed25519)

		pub, err := PublicKey(priv, cfg)
		require.NoError(t, err)
		enc, err := Encode(pub)
		require.NoError(t, err)
		assert.Equal(t, []byte(stdPub), enc)

		sig, err := Sign(priv, msg, cfg)
		require.NoError(t, err)
		assert.Equal(t, stded25519.Sign(stdPriv, msg), sig)
		assert.True(t, stded25519.Verify(stdPub, msg, sig))
	}
}

func TestRoundTripHashes(t *testing.T) {
	tests := []struct {
		curve curves.ID
		hash  digest.Algorithm
	}{
		{curves.Ed25519, digest.SHA512},
		{curves.Ed25519, digest.SHA3_512},
		{curves.Ed25519, digest.Keccak512},
		{curves.Ed25519, digest.BLAKE2b},
		{curves.Ed448, digest.SHAKE256},
	}
	for _, test := range tests {
		t.Run(test.curve.String()+"/"+test.hash.String(), func(t *testing.T) {
			priv, err := ec.GenerateKey(test.curve, rand.Reader)
			require.NoError(t, err)
			cfg := Config{Hash: test.hash}
			pub, err := PublicKey(priv, cfg)
			require.NoError(t, err)

			msg := []byte("edwards round trip")
			sig, err := Sign(priv, msg, cfg)
			require.NoError(t, err)

			ok, err := Verify(pub, msg, sig, cfg)
			require.NoError(t, err)
			assert.True(t, ok)

			sig[0] ^= 0x01
			ok, err = Verify(pub, msg, sig, cfg)
			require.NoError(t, err)
			assert.False(t, ok)
			sig[0] ^= 0x01

			ok, err = Verify(pub, []byte("edwards round trip!"), sig, cfg)
			require.NoError(t, err)
			assert.False(t, ok)

			// the same key under the RFC encoding
			enc, err := Encode(pub)
			require.NoError(t, err)
			raw := &ec.PublicKey{Curve: test.curve, W: enc}
			ok, err = Verify(raw, msg, sig, cfg)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

// expandedWithScalar builds an expanded key whose scalar is v.
func expandedWithScalar(t *testing.T, id curves.ID, v *big.Int) *ec.PrivateKey {
	t.Helper()
	params, err := curves.Lookup(id)
	require.NoError(t, err)
	d := make([]byte, 2*params.EncodedLen)
	arith.PutLittleEndian(d[:params.EncodedLen], v)
	for i := params.EncodedLen; i < len(d); i++ {
		d[i] = byte(i)
	}
	priv, err := ec.NewPrivateKey(id, d)
	require.NoError(t, err)
	return priv
}

func TestPublicKeyEqualsBase(t *testing.T) {
	for _, id := range []curves.ID{curves.Ed25519, curves.Ed448} {
		params, err := curves.Lookup(id)
		require.NoError(t, err)
		for name, v := range map[string]*big.Int{
			"one":     big.NewInt(1),
			"order-1": new(big.Int).Sub(params.N, big.NewInt(1)),
		} {
			t.Run(id.String()+"/"+name, func(t *testing.T) {
				priv := expandedWithScalar(t, id, v)
				cfg := DefaultConfig(id)
				pub, err := PublicKey(priv, cfg)
				require.NoError(t, err)

				A, err := pub.Point()
				require.NoError(t, err)
				g := arith.NewPoint(params.Gx, params.Gy)
				e, err := arith.EngineFor(params)
				require.NoError(t, err)
				require.True(t, A.Equal(g) || A.Equal(e.Neg(g)))

				msg := []byte("A = ±B")
				sig, err := Sign(priv, msg, cfg)
				require.NoError(t, err)
				ok, err := Verify(pub, msg, sig, cfg)
				require.NoError(t, err)
				assert.True(t, ok)
			})
		}
	}
}

func TestVerifyKeyWithTorsion(t *testing.T) {
	for _, id := range []curves.ID{curves.Ed25519, curves.Ed448} {
		t.Run(id.String(), func(t *testing.T) {
			params, err := curves.Lookup(id)
			require.NoError(t, err)
			e, err := arith.EngineFor(params)
			require.NoError(t, err)
			cfg := DefaultConfig(id)
			s, err := newSuite(id, cfg)
			require.NoError(t, err)

			// A = [x]B + T with T = (0, -1) of order 2
			x, err := arith.RandomScalar(rand.Reader, params.N)
			require.NoError(t, err)
			T := arith.NewPoint(new(big.Int), new(big.Int).Sub(params.P, big.NewInt(1)))
			require.True(t, e.IsOnCurve(T))
			aEnc := arith.EncodeEdwards(params, e.Add(e.ScalarBaseMult(x), T))
			pub := &ec.PublicKey{Curve: id, W: aEnc}
			msg := []byte("mixed order key")
			l := params.EncodedLen

			// with an even k, [k]T vanishes and [S]B - [k]A = R
			for i := 0; i < 64; i++ {
				r, err := arith.RandomScalar(rand.Reader, params.N)
				require.NoError(t, err)
				rEnc := arith.EncodeEdwards(params, e.ScalarBaseMult(r))
				k := arith.FromLittleEndian(s.hash(s.dom, rEnc, aEnc, msg))
				k.Mod(k, params.N)
				if k.Bit(0) == 1 {
					continue
				}
				S := new(big.Int).Mul(k, x)
				S.Add(S, r)
				S.Mod(S, params.N)
				sig := make([]byte, 2*l)
				copy(sig, rEnc)
				arith.PutLittleEndian(sig[l:], S)

				ok, err := Verify(pub, msg, sig, cfg)
				require.NoError(t, err)
				assert.True(t, ok)
				return
			}
			t.Fatal("no even challenge in 64 draws")
		})
	}
}

func TestRejectsMalleableS(t *testing.T) {
	for _, id := range []curves.ID{curves.Ed25519, curves.Ed448} {
		t.Run(id.String(), func(t *testing.T) {
			params, err := curves.Lookup(id)
			require.NoError(t, err)
			priv, err := ec.GenerateKey(id, rand.Reader)
			require.NoError(t, err)
			cfg := DefaultConfig(id)
			pub, err := PublicKey(priv, cfg)
			require.NoError(t, err)

			msg := []byte("malleability")
			sig, err := Sign(priv, msg, cfg)
			require.NoError(t, err)

			l := params.EncodedLen
			S := arith.FromLittleEndian(sig[l:])
			S.Add(S, params.N)
			forged := append([]byte(nil), sig...)
			arith.PutLittleEndian(forged[l:], S)

			ok, err := Verify(pub, msg, forged, cfg)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRejectsNonCanonicalR(t *testing.T) {
	params, err := curves.Lookup(curves.Ed25519)
	require.NoError(t, err)
	priv, err := ec.GenerateKey(curves.Ed25519, rand.Reader)
	require.NoError(t, err)
	cfg := DefaultConfig(curves.Ed25519)
	pub, err := PublicKey(priv, cfg)
	require.NoError(t, err)

	sig := make([]byte, 64)
	arith.PutLittleEndian(sig[:32], params.P)
	ok, err := Verify(pub, nil, sig, cfg)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Verify(pub, nil, sig[:63], cfg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpandKeyClamps(t *testing.T) {
	priv, err := ec.GenerateKey(curves.Ed25519, rand.Reader)
	require.NoError(t, err)
	xk, err := ExpandKey(priv, Config{})
	require.NoError(t, err)
	defer xk.Zero()

	assert.Zero(t, xk.Scalar[0]&7)
	assert.Equal(t, byte(0x40), xk.Scalar[31]&0xc0)
	assert.Len(t, xk.Prefix, 32)

	// an expanded key is used without re-clamping
	again, err := ExpandKey(&ec.PrivateKey{Curve: curves.Ed25519, D: xk.Bytes()}, Config{})
	require.NoError(t, err)
	assert.Equal(t, xk.Scalar, again.Scalar)
	assert.Equal(t, xk.Prefix, again.Prefix)

	p448, err := ec.GenerateKey(curves.Ed448, rand.Reader)
	require.NoError(t, err)
	x448, err := ExpandKey(p448, Config{})
	require.NoError(t, err)
	assert.Zero(t, x448.Scalar[0]&3)
	assert.Zero(t, x448.Scalar[56])
	assert.Equal(t, byte(0x80), x448.Scalar[55]&0x80)
}

func TestParameterErrors(t *testing.T) {
	priv, err := ec.GenerateKey(curves.Ed25519, rand.Reader)
	require.NoError(t, err)

	_, err = Sign(priv, nil, Config{Hash: digest.SHA256})
	assert.ErrorIs(t, err, ec.ErrUnsupportedHash)
	_, err = Sign(priv, nil, Config{Hash: digest.SHAKE256})
	assert.ErrorIs(t, err, ec.ErrUnsupportedHash)

	p448, err := ec.GenerateKey(curves.Ed448, rand.Reader)
	require.NoError(t, err)
	_, err = Sign(p448, nil, Config{Hash: digest.SHA512})
	assert.ErrorIs(t, err, ec.ErrUnsupportedHash)

	_, err = Sign(&ec.PrivateKey{Curve: curves.Ed25519, D: make([]byte, 33)}, nil, Config{})
	assert.ErrorIs(t, err, ec.ErrInvalidKeyLength)

	k1, err := ec.GenerateKey(curves.Secp256k1, rand.Reader)
	require.NoError(t, err)
	_, err = Sign(k1, nil, Config{})
	assert.ErrorIs(t, err, ec.ErrUnsupportedCurve)

	_, err = Decode(curves.Ed25519, make([]byte, 31))
	assert.ErrorIs(t, err, ec.ErrInvalidKeyLength)
}
