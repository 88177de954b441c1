// Package nonce draws the ephemeral scalar k for the signing engines from
// the source selected in ec.SignConfig.
package nonce

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/arith"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/rfc6979"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/digest"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

// Source yields nonces in [1, n-1]. Every nonce is tracked by the arena it
// was created with.
type Source struct {
	arena  *arith.Arena
	kind   ec.NonceSource
	rand   io.Reader
	k      []byte
	stream *rfc6979.Stream
}

// New prepares a nonce source. d is the private scalar and h1 the message
// digest; both only feed the RFC 6979 stream.
func New(a *arith.Arena, cfg ec.SignConfig, d *big.Int, h1 []byte) (*Source, error) {
	s := &Source{arena: a, kind: cfg.Nonce, rand: Rand(cfg)}
	n := a.Params().N

	switch cfg.Nonce {
	case ec.NonceRandom:
	case ec.NonceProvided:
		if len(cfg.K) == 0 {
			return nil, ec.NewError(ec.ErrInvalidNonce, "provided nonce is empty")
		}
		k := new(big.Int).SetBytes(cfg.K)
		defer arith.Wipe(k)
		if k.Sign() == 0 || k.Cmp(n) >= 0 {
			return nil, ec.NewError(ec.ErrInvalidNonce, "provided nonce outside [1, n-1]")
		}
		s.k = a.TrackBytes(append([]byte(nil), cfg.K...))
	case ec.NonceRFC6979:
		alg := cfg.Hash
		if alg == 0 {
			alg = digest.SHA256
		}
		fn, err := alg.HashFunc()
		if err != nil {
			return nil, ec.NewError(ec.ErrUnsupportedHash, err.Error())
		}
		s.stream = rfc6979.New(fn, d, h1, n)
	default:
		return nil, ec.NewError(ec.ErrInvalidParameter, "unknown nonce source "+cfg.Nonce.String())
	}
	return s, nil
}

// Rand returns the configured randomness source, defaulting to
// crypto/rand.
func Rand(cfg ec.SignConfig) io.Reader {
	if cfg.Rand != nil {
		return cfg.Rand
	}
	return rand.Reader
}

// SingleUse reports whether the source can produce only one nonce.
func (s *Source) SingleUse() bool {
	return s.kind == ec.NonceProvided
}

// Next returns a fresh nonce.
func (s *Source) Next() (*big.Int, error) {
	if s.arena.Released() {
		return nil, ec.NewError(ec.ErrArenaReleased, "nonce drawn after unlock")
	}
	switch s.kind {
	case ec.NonceProvided:
		return s.arena.Track(new(big.Int).SetBytes(s.k)), nil
	case ec.NonceRFC6979:
		return s.arena.Track(s.stream.Next()), nil
	}
	k, err := s.arena.RandomScalar(s.rand)
	if err != nil {
		return nil, ec.NewError(ec.ErrInvalidParameter, err.Error())
	}
	return k, nil
}

// Close wipes the deterministic stream state.
func (s *Source) Close() {
	if s.stream != nil {
		s.stream.Wipe()
	}
}
