package digest

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownAnswers(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		size int
		msg  string
		want string
	}{
		{SHA256, 0, "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{SHA3_256, 0, "abc", "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
		{Keccak256, 0, "", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{SHAKE128, 32, "", "7f9c2ba4e88f827d616045507605853ed73b8093f6efbc88eb1a6eacfa66ef26"},
		{SHAKE256, 32, "", "46b9dd2b0ba88d13233b3feb743eeb243fcd52ea62b81b82b50c27646ed5762f"},
		{BLAKE2b, 0, "abc", "ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d1" +
			"7d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923"},
	}
	for _, test := range tests {
		t.Run(test.alg.String(), func(t *testing.T) {
			got, err := Sum(test.alg, test.size, []byte(test.msg))
			require.NoError(t, err)
			assert.Equal(t, test.want, hex.EncodeToString(got))
		})
	}
}

func TestSumOverParts(t *testing.T) {
	for a := range names {
		size := a.Size()
		if a.IsXOF() {
			size = 48
		}
		whole, err := Sum(a, size, []byte("hello world"))
		require.NoError(t, err)
		parts, err := Sum(a, size, []byte("hello"), []byte(" "), []byte("world"))
		require.NoError(t, err)
		assert.Equal(t, whole, parts, a.String())
		assert.Len(t, whole, size, a.String())
	}
}

func TestSumKeepsState(t *testing.T) {
	for _, a := range []Algorithm{SHA512, SHAKE256} {
		h, err := New(a, 64)
		require.NoError(t, err)
		h.Write([]byte("ab"))
		first := h.Sum(nil)
		assert.Equal(t, first, h.Sum(nil), a.String())

		h.Write([]byte("c"))
		want, err := Sum(a, 64, []byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, want, h.Sum(nil), a.String())

		h.Reset()
		empty, err := Sum(a, 64)
		require.NoError(t, err)
		assert.Equal(t, empty, h.Sum(nil), a.String())
	}
}

func TestSizes(t *testing.T) {
	_, err := New(SHAKE128, 0)
	assert.Error(t, err)

	_, err = New(SHA256, 64)
	assert.Error(t, err)

	h, err := New(SHA256, 32)
	require.NoError(t, err)
	assert.Equal(t, 32, h.Size())
	assert.Equal(t, SHA256, h.Algorithm())

	h, err = New(BLAKE2b, 32)
	require.NoError(t, err)
	assert.Equal(t, 32, h.Size())
	assert.Len(t, h.Sum(nil), 32)

	_, err = New(BLAKE2b, 65)
	assert.Error(t, err)

	assert.Zero(t, SHAKE256.Size())
	assert.True(t, SHAKE256.IsXOF())
	assert.False(t, BLAKE2b.IsXOF())
}

func TestHashFunc(t *testing.T) {
	fn, err := Keccak512.HashFunc()
	require.NoError(t, err)
	assert.Equal(t, 64, fn().Size())

	fn, err = BLAKE2b.HashFunc()
	require.NoError(t, err)
	assert.Equal(t, 64, fn().Size())

	_, err = SHAKE128.HashFunc()
	assert.Error(t, err)
	_, err = Algorithm(99).HashFunc()
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	for a, n := range names {
		got, err := Parse(n)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := Parse("md5")
	assert.Error(t, err)
	assert.Equal(t, "digest(42)", Algorithm(42).String())
}
