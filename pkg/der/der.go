// Package der encodes and strictly decodes ECDSA style signatures as the
// ASN.1 DER structure
//
//	SEQUENCE { r INTEGER, s INTEGER }
//
// Decoding never reads past the end of its input and rejects every
// non-canonical form: indefinite or non-minimal lengths, missing or excess
// sign padding, negative integers and trailing bytes.
package der

import (
	"fmt"
	"math/big"
)

const (
	asn1SequenceID = 0x30
	asn1IntegerID  = 0x02

	// 30 06 02 01 r 02 01 s
	minSigLen = 8
)

// trim strips leading zero bytes and prepends a single zero when the top
// bit of the remainder is set. Zero encodes as a single 0x00.
func trim(v []byte) (pad bool, body []byte) {
	for len(v) > 0 && v[0] == 0 {
		v = v[1:]
	}
	if len(v) == 0 {
		return true, nil
	}
	return v[0]&0x80 != 0, v
}

func intLen(v []byte) int {
	pad, body := trim(v)
	n := len(body)
	if pad {
		n++
	}
	return n
}

func lenLen(n int) int {
	switch {
	case n < 0x80:
		return 1
	case n <= 0xff:
		return 2
	}
	return 3
}

func putLen(dst []byte, n int) int {
	switch {
	case n < 0x80:
		dst[0] = byte(n)
		return 1
	case n <= 0xff:
		dst[0] = 0x81
		dst[1] = byte(n)
		return 2
	}
	dst[0] = 0x82
	dst[1] = byte(n >> 8)
	dst[2] = byte(n)
	return 3
}

// EncodedLen returns the number of bytes Encode writes for r and s.
func EncodedLen(r, s []byte) int {
	rl, sl := intLen(r), intLen(s)
	body := 1 + lenLen(rl) + rl + 1 + lenLen(sl) + sl
	return 1 + lenLen(body) + body
}

// Encode writes the DER encoding of the big-endian scalars r and s into dst
// and returns its length. It returns 0 and leaves dst untouched when dst is
// too small.
func Encode(dst, r, s []byte) int {
	total := EncodedLen(r, s)
	if len(dst) < total {
		return 0
	}
	rl, sl := intLen(r), intLen(s)
	body := 1 + lenLen(rl) + rl + 1 + lenLen(sl) + sl

	off := 0
	dst[off] = asn1SequenceID
	off++
	off += putLen(dst[off:], body)
	for _, v := range [][]byte{r, s} {
		pad, b := trim(v)
		n := len(b)
		if pad {
			n++
		}
		dst[off] = asn1IntegerID
		off++
		off += putLen(dst[off:], n)
		if pad {
			dst[off] = 0
			off++
		}
		off += copy(dst[off:], b)
	}
	return off
}

// Marshal returns the DER encoding of r and s.
func Marshal(r, s *big.Int) []byte {
	rb, sb := r.Bytes(), s.Bytes()
	out := make([]byte, EncodedLen(rb, sb))
	Encode(out, rb, sb)
	return out
}

// Decode parses sig and returns the magnitudes of r and s without sign
// padding. Integers longer than maxIntLen bytes are rejected. ok is false
// on any violation.
func Decode(sig []byte, maxIntLen int) (r, s []byte, ok bool) {
	r, s, err := decode(sig, maxIntLen)
	return r, s, err == nil
}

// Parse is Decode returning the values as integers and the first rule
// violated as an error.
func Parse(sig []byte, maxIntLen int) (r, s *big.Int, err error) {
	rb, sb, err := decode(sig, maxIntLen)
	if err != nil {
		return nil, nil, err
	}
	return new(big.Int).SetBytes(rb), new(big.Int).SetBytes(sb), nil
}

// readLen parses a definite length at b[0:] and returns it with the number
// of bytes consumed.
func readLen(b []byte) (int, int, error) {
	if len(b) == 0 {
		return 0, 0, signatureError(ErrSigInvalidDataLen, "missing length")
	}
	first := b[0]
	if first < 0x80 {
		return int(first), 1, nil
	}
	if first == 0x80 {
		return 0, 0, signatureError(ErrSigIndefiniteLen, "indefinite length")
	}
	n := int(first & 0x7f)
	if n > 2 {
		return 0, 0, signatureError(ErrSigInvalidDataLen,
			fmt.Sprintf("length of %d bytes is larger than any signature", n))
	}
	if len(b) < 1+n {
		return 0, 0, signatureError(ErrSigInvalidDataLen, "truncated length")
	}
	if b[1] == 0 {
		return 0, 0, signatureError(ErrSigNonMinimalLen, "length has a leading zero byte")
	}
	v := 0
	for _, c := range b[1 : 1+n] {
		v = v<<8 | int(c)
	}
	if v < 0x80 {
		return 0, 0, signatureError(ErrSigNonMinimalLen, "long form used for a short length")
	}
	return v, 1 + n, nil
}

func readInt(b []byte, name string, maxIntLen int) ([]byte, int, error) {
	if len(b) == 0 || b[0] != asn1IntegerID {
		return nil, 0, signatureError(ErrSigInvalidIntID,
			fmt.Sprintf("%s is not tagged INTEGER", name))
	}
	l, ll, err := readLen(b[1:])
	if err != nil {
		return nil, 0, err
	}
	off := 1 + ll
	if l == 0 {
		return nil, 0, signatureError(ErrSigZeroIntLen, name+" is empty")
	}
	if l > len(b)-off {
		return nil, 0, signatureError(ErrSigInvalidDataLen,
			fmt.Sprintf("%s length %d exceeds the remaining %d bytes", name, l, len(b)-off))
	}
	v := b[off : off+l]
	if v[0]&0x80 != 0 {
		return nil, 0, signatureError(ErrSigNegativeInt, name+" is negative")
	}
	if len(v) > 1 && v[0] == 0 && v[1]&0x80 == 0 {
		return nil, 0, signatureError(ErrSigTooMuchPadding, name+" has excess padding")
	}
	if v[0] == 0 {
		v = v[1:]
	}
	if len(v) > maxIntLen {
		return nil, 0, signatureError(ErrSigIntTooBig,
			fmt.Sprintf("%s is %d bytes, limit %d", name, len(v), maxIntLen))
	}
	return v, off + l, nil
}

func decode(sig []byte, maxIntLen int) ([]byte, []byte, error) {
	if len(sig) < minSigLen {
		return nil, nil, signatureError(ErrSigTooShort,
			fmt.Sprintf("signature is %d bytes, need at least %d", len(sig), minSigLen))
	}
	if sig[0] != asn1SequenceID {
		return nil, nil, signatureError(ErrSigInvalidSeqID,
			fmt.Sprintf("first byte is %#x, not SEQUENCE", sig[0]))
	}
	body, ll, err := readLen(sig[1:])
	if err != nil {
		return nil, nil, err
	}
	off := 1 + ll
	switch {
	case body > len(sig)-off:
		return nil, nil, signatureError(ErrSigInvalidDataLen,
			fmt.Sprintf("sequence length %d exceeds the remaining %d bytes", body, len(sig)-off))
	case body < len(sig)-off:
		return nil, nil, signatureError(ErrSigTrailingData, "bytes after the sequence")
	}

	content := sig[off:]
	r, n, err := readInt(content, "R", maxIntLen)
	if err != nil {
		return nil, nil, err
	}
	content = content[n:]
	s, n, err := readInt(content, "S", maxIntLen)
	if err != nil {
		return nil, nil, err
	}
	if n != len(content) {
		return nil, nil, signatureError(ErrSigTrailingData, "bytes after S inside the sequence")
	}
	return r, s, nil
}
