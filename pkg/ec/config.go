package ec

import (
	"fmt"
	"io"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/digest"
)

// MaxTries bounds the number of nonces a signing call draws before giving
// up with ErrRetryExhausted.
const MaxTries = 100

// NonceSource selects how the ephemeral nonce k is produced.
type NonceSource int

const (
	// NonceRFC6979 derives k deterministically from the key and digest.
	NonceRFC6979 NonceSource = iota
	// NonceRandom draws k from SignConfig.Rand.
	NonceRandom
	// NonceProvided uses SignConfig.K for a single attempt.
	NonceProvided
)

// String returns the source name.
func (n NonceSource) String() string {
	switch n {
	case NonceRFC6979:
		return "rfc6979"
	case NonceRandom:
		return "random"
	case NonceProvided:
		return "provided"
	}
	return fmt.Sprintf("nonce(%d)", int(n))
}

// ParseNonceSource resolves a name returned by String.
func ParseNonceSource(name string) (NonceSource, error) {
	for _, n := range []NonceSource{NonceRFC6979, NonceRandom, NonceProvided} {
		if n.String() == name {
			return n, nil
		}
	}
	return 0, makeError(ErrInvalidParameter, fmt.Sprintf("unknown nonce source %q", name))
}

// SignConfig configures a signing call.
type SignConfig struct {
	// Nonce selects the nonce source.
	Nonce NonceSource

	// Rand supplies randomness for NonceRandom and for the blinding
	// countermeasures. Nil means crypto/rand.
	Rand io.Reader

	// K is the big-endian nonce for NonceProvided.
	K []byte

	// Hash is the HMAC digest for RFC 6979 and the message digest of the
	// Schnorr variants that hash internally.
	Hash digest.Algorithm

	// Canonical requests low-S signatures.
	Canonical bool
}

// DefaultSignConfig returns deterministic, canonical signing with SHA-256.
func DefaultSignConfig() SignConfig {
	return SignConfig{
		Nonce:     NonceRFC6979,
		Hash:      digest.SHA256,
		Canonical: true,
	}
}

// Info carries the public-key recovery flags of an ECDSA or Schnorr
// signature.
type Info struct {
	// OddY is the parity of the y coordinate of the nonce point, after
	// canonicalization.
	OddY bool
	// ReducedX is set when the x coordinate of the nonce point was not
	// below the group order.
	ReducedX bool
}

// RecoveryID packs the flags as odd | reduced<<1.
func (i Info) RecoveryID() byte {
	var id byte
	if i.OddY {
		id |= 1
	}
	if i.ReducedX {
		id |= 2
	}
	return id
}

// InfoFromRecoveryID is the inverse of Info.RecoveryID.
func InfoFromRecoveryID(id byte) Info {
	return Info{OddY: id&1 != 0, ReducedX: id&2 != 0}
}

// SignResult is the output of a signing call.
type SignResult struct {
	Signature []byte
	Info      Info
}
