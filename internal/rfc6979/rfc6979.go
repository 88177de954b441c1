// Package rfc6979 generates deterministic ECDSA nonces as described in
// RFC 6979 section 3.2.
//
// A Stream is seeded from the private key and the message digest and yields
// successive candidates in [1, q-1]; the first candidate is the RFC nonce and
// later ones follow the section 3.2 step h.3 update.
package rfc6979

import (
	"crypto/hmac"
	"hash"
	"math/big"
)

// Stream is a keyed HMAC_DRBG instance. It is not safe for concurrent use.
type Stream struct {
	hashFn func() hash.Hash
	q      *big.Int
	qlen   int
	k, v   []byte
	primed bool
}

// New seeds a stream from the private scalar x, the message digest h1 and
// the group order q.
func New(hashFn func() hash.Hash, x *big.Int, h1 []byte, q *big.Int) *Stream {
	qlen := q.BitLen()
	rolen := (qlen + 7) / 8
	hlen := hashFn().Size()

	s := &Stream{hashFn: hashFn, q: q, qlen: qlen}

	xo := int2octets(x, rolen)
	ho := bits2octets(h1, q, qlen, rolen)
	defer wipe(xo)
	defer wipe(ho)

	s.v = make([]byte, hlen)
	for i := range s.v {
		s.v[i] = 0x01
	}
	s.k = make([]byte, hlen)

	// steps d through g
	s.k = s.mac(s.k, s.v, []byte{0x00}, xo, ho)
	s.v = s.mac(s.k, s.v)
	s.k = s.mac(s.k, s.v, []byte{0x01}, xo, ho)
	s.v = s.mac(s.k, s.v)
	return s
}

func (s *Stream) mac(key []byte, parts ...[]byte) []byte {
	m := hmac.New(s.hashFn, key)
	for _, p := range parts {
		m.Write(p)
	}
	return m.Sum(nil)
}

// Next returns the next candidate nonce in [1, q-1].
func (s *Stream) Next() *big.Int {
	for {
		if s.primed {
			s.k = s.mac(s.k, s.v, []byte{0x00})
			s.v = s.mac(s.k, s.v)
		}
		s.primed = true

		var t []byte
		for len(t)*8 < s.qlen {
			s.v = s.mac(s.k, s.v)
			t = append(t, s.v...)
		}
		k := bits2int(t, s.qlen)
		wipe(t)
		if k.Sign() > 0 && k.Cmp(s.q) < 0 {
			return k
		}
	}
}

// Wipe clears the DRBG state.
func (s *Stream) Wipe() {
	wipe(s.k)
	wipe(s.v)
}

func bits2int(b []byte, qlen int) *big.Int {
	v := new(big.Int).SetBytes(b)
	if blen := len(b) * 8; blen > qlen {
		v.Rsh(v, uint(blen-qlen))
	}
	return v
}

func int2octets(v *big.Int, rolen int) []byte {
	out := make([]byte, rolen)
	if v.BitLen() > rolen*8 {
		v = new(big.Int).Mod(v, new(big.Int).Lsh(big.NewInt(1), uint(rolen*8)))
	}
	v.FillBytes(out)
	return out
}

func bits2octets(b []byte, q *big.Int, qlen, rolen int) []byte {
	z1 := bits2int(b, qlen)
	z2 := new(big.Int).Sub(z1, q)
	if z2.Sign() < 0 {
		return int2octets(z1, rolen)
	}
	return int2octets(z2, rolen)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
