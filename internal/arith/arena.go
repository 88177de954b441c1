package arith

import (
	"io"
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
)

// ErrReleased is returned by an Arena used after Unlock.
var ErrReleased = errors.New("arena already released")

// Arena scopes the secrets of one top-level operation. Every big integer and
// byte buffer registered with it is overwritten by Unlock, which callers
// reach through defer on every exit path.
//
//	a, err := arith.Lock(params)
//	if err != nil { ... }
//	defer a.Unlock()
type Arena struct {
	mu       sync.Mutex
	params   *curves.Params
	engine   Engine
	ints     []*big.Int
	bufs     [][]byte
	released bool
}

// Lock opens an arena for the given curve.
func Lock(params *curves.Params) (*Arena, error) {
	e, err := EngineFor(params)
	if err != nil {
		return nil, err
	}
	return &Arena{params: params, engine: e}, nil
}

// Params returns the curve the arena was opened for.
func (a *Arena) Params() *curves.Params { return a.params }

// Engine returns the point engine for the arena's curve.
func (a *Arena) Engine() Engine { return a.engine }

// Size is the field byte length the arena is sized to.
func (a *Arena) Size() int { return a.params.ByteLen }

// Track registers secret integers for wiping and returns the first one.
func (a *Arena) Track(vs ...*big.Int) *big.Int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ints = append(a.ints, vs...)
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

// TrackBytes registers a secret buffer for wiping and returns it.
func (a *Arena) TrackBytes(b []byte) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bufs = append(a.bufs, b)
	return b
}

// Int allocates a tracked integer.
func (a *Arena) Int() *big.Int {
	return a.Track(new(big.Int))
}

// ScalarFromBytes decodes a big-endian secret scalar into a tracked integer.
func (a *Arena) ScalarFromBytes(b []byte) (*big.Int, error) {
	if a.isReleased() {
		return nil, ErrReleased
	}
	return a.Track(new(big.Int).SetBytes(b)), nil
}

// RandomScalar draws a tracked uniform scalar in [1, n-1].
func (a *Arena) RandomScalar(rand io.Reader) (*big.Int, error) {
	if a.isReleased() {
		return nil, ErrReleased
	}
	k, err := RandomScalar(rand, a.params.N)
	if err != nil {
		return nil, err
	}
	return a.Track(k), nil
}

func (a *Arena) isReleased() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

// Released reports whether Unlock has run.
func (a *Arena) Released() bool { return a.isReleased() }

// Unlock wipes every tracked secret. It is safe to call more than once.
func (a *Arena) Unlock() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return
	}
	for _, v := range a.ints {
		Wipe(v)
	}
	for _, b := range a.bufs {
		zeroBytes(b)
	}
	a.ints, a.bufs = nil, nil
	a.released = true
}

// Wipe overwrites the words backing v and sets it to zero.
func Wipe(v *big.Int) {
	if v == nil {
		return
	}
	words := v.Bits()
	for i := range words {
		words[i] = 0
	}
	v.SetInt64(0)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// RandomScalar draws a value in [1, n-1] from rand. It reads eight bytes
// more than n needs so the reduction bias is negligible.
func RandomScalar(rand io.Reader, n *big.Int) (*big.Int, error) {
	buf := make([]byte, (n.BitLen()+7)/8+8)
	defer zeroBytes(buf)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, errors.Wrap(err, "read random scalar")
	}
	nm1 := new(big.Int).Sub(n, big.NewInt(1))
	k := new(big.Int).SetBytes(buf)
	k.Mod(k, nm1)
	return k.Add(k, big.NewInt(1)), nil
}

// RandomFieldElement draws a value in [1, p-1].
func RandomFieldElement(rand io.Reader, p *big.Int) (*big.Int, error) {
	return RandomScalar(rand, p)
}
