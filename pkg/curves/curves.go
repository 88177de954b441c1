// Package curves holds the elliptic curve domain parameters used by the
// signing engines.
//
// Parameters are immutable once the package is initialised. Callers must not
// modify the big integers reachable from a *Params.
package curves

import (
	"crypto/elliptic"
	"fmt"
	"math/big"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ID identifies a curve.
type ID int

const (
	// Secp256k1 is the SEC 2 Koblitz curve used by Bitcoin.
	Secp256k1 ID = iota + 1
	// Secp256r1 is NIST P-256.
	Secp256r1
	// Secp384r1 is NIST P-384.
	Secp384r1
	// Secp521r1 is NIST P-521.
	Secp521r1
	// Ed25519 is the twisted Edwards form of Curve25519.
	Ed25519
	// Ed448 is the untwisted Edwards curve Ed448-Goldilocks.
	Ed448
	// Curve25519 is the Montgomery curve of RFC 7748.
	Curve25519
)

// Family is the shape of the curve equation.
type Family int

const (
	// Weierstrass curves satisfy y^2 = x^3 + a*x + b.
	Weierstrass Family = iota + 1
	// TwistedEdwards curves satisfy a*x^2 + y^2 = 1 + d*x^2*y^2.
	TwistedEdwards
	// Montgomery curves satisfy b*y^2 = x^3 + a*x^2 + x.
	Montgomery
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case Weierstrass:
		return "weierstrass"
	case TwistedEdwards:
		return "twisted-edwards"
	case Montgomery:
		return "montgomery"
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// Params describes a curve domain.
type Params struct {
	ID     ID
	Name   string
	Family Family

	P *big.Int // field prime
	N *big.Int // order of the generator
	H int      // cofactor

	// A and B are the Weierstrass or Montgomery coefficients. For twisted
	// Edwards curves A is the x^2 coefficient and D the x^2*y^2 one.
	A *big.Int
	B *big.Int
	D *big.Int

	Gx, Gy *big.Int

	BitSize int // field bit length
	ByteLen int // field byte length

	// EncodedLen is the RFC 8032 point and scalar encoding length of an
	// Edwards curve. Zero for the other families.
	EncodedLen int

	halfN *big.Int
}

// HalfOrder returns floor(N/2).
func (p *Params) HalfOrder() *big.Int {
	return p.halfN
}

// UncompressedLen is the length of 0x04 || x || y.
func (p *Params) UncompressedLen() int {
	return 1 + 2*p.ByteLen
}

// String returns the curve name.
func (id ID) String() string {
	if p, ok := table[id]; ok {
		return p.Name
	}
	return fmt.Sprintf("curve(%d)", int(id))
}

var table = map[ID]*Params{}

func register(p *Params) {
	p.ByteLen = (p.BitSize + 7) / 8
	p.halfN = new(big.Int).Rsh(p.N, 1)
	table[p.ID] = p
}

func fromDec(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("curves: bad constant " + s)
	}
	return v
}

func fromStdlib(id ID, name string, c elliptic.Curve, a *big.Int) *Params {
	cp := c.Params()
	return &Params{
		ID:      id,
		Name:    name,
		Family:  Weierstrass,
		P:       cp.P,
		N:       cp.N,
		H:       1,
		A:       a,
		B:       cp.B,
		Gx:      cp.Gx,
		Gy:      cp.Gy,
		BitSize: cp.BitSize,
	}
}

func init() {
	k1 := fromStdlib(Secp256k1, "secp256k1", secp256k1.S256(), big.NewInt(0))
	register(k1)

	for _, c := range []struct {
		id    ID
		name  string
		curve elliptic.Curve
	}{
		{Secp256r1, "secp256r1", elliptic.P256()},
		{Secp384r1, "secp384r1", elliptic.P384()},
		{Secp521r1, "secp521r1", elliptic.P521()},
	} {
		p := c.curve.Params().P
		a := new(big.Int).Sub(p, big.NewInt(3))
		register(fromStdlib(c.id, c.name, c.curve, a))
	}

	p25519 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(19))
	n25519 := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 252),
		fromDec("27742317777372353535851937790883648493"))

	// d = -121665/121666
	d25519 := new(big.Int).ModInverse(big.NewInt(121666), p25519)
	d25519.Mul(d25519, big.NewInt(-121665))
	d25519.Mod(d25519, p25519)

	register(&Params{
		ID:         Ed25519,
		Name:       "ed25519",
		Family:     TwistedEdwards,
		P:          p25519,
		N:          n25519,
		H:          8,
		A:          new(big.Int).Sub(p25519, big.NewInt(1)),
		D:          d25519,
		Gx:         fromDec("15112221349535400772501151409588531511454012693041857206046113283949847762202"),
		Gy:         fromDec("46316835694926478169428394003475163141307993866256225615783033603165251855960"),
		BitSize:    255,
		EncodedLen: 32,
	})

	p448 := new(big.Int).Lsh(big.NewInt(1), 448)
	p448.Sub(p448, new(big.Int).Lsh(big.NewInt(1), 224))
	p448.Sub(p448, big.NewInt(1))
	n448 := new(big.Int).Lsh(big.NewInt(1), 446)
	n448.Sub(n448, fromDec("13818066809895115352007386748515426880336692474882178609894547503885"))

	register(&Params{
		ID:      Ed448,
		Name:    "ed448",
		Family:  TwistedEdwards,
		P:       p448,
		N:       n448,
		H:       4,
		A:       big.NewInt(1),
		D:       new(big.Int).Sub(p448, big.NewInt(39081)),
		Gx: fromDec("22458004029592430018760433409989603624678964163256413424612546168695041546740" +
			"6032909029192869357953282578032075146446173674602635247710"),
		Gy: fromDec("29881921007848149267601793044393067343754404015408024209592824137233150618983" +
			"5876003536878655418784733982303233503462500531545062832660"),
		BitSize:    448,
		EncodedLen: 57,
	})

	register(&Params{
		ID:      Curve25519,
		Name:    "curve25519",
		Family:  Montgomery,
		P:       p25519,
		N:       n25519,
		H:       8,
		A:       big.NewInt(486662),
		B:       big.NewInt(1),
		Gx:      big.NewInt(9),
		Gy:      montgomeryV(p25519, big.NewInt(486662), big.NewInt(9)),
		BitSize: 255,
	})
}

// montgomeryV returns the odd square root v of u^3 + a*u^2 + u, which for
// u = 9 on Curve25519 is the v coordinate listed in RFC 7748.
func montgomeryV(p, a, u *big.Int) *big.Int {
	u2 := new(big.Int).Mul(u, u)
	rhs := new(big.Int).Mul(u2, u)
	rhs.Add(rhs, new(big.Int).Mul(a, u2))
	rhs.Add(rhs, u)
	rhs.Mod(rhs, p)
	v := new(big.Int).ModSqrt(rhs, p)
	if v == nil {
		panic("curves: generator u has no v coordinate")
	}
	if v.Bit(0) == 0 {
		v.Sub(p, v)
	}
	return v
}

// Lookup returns the parameters of the given curve.
func Lookup(id ID) (*Params, error) {
	p, ok := table[id]
	if !ok {
		return nil, fmt.Errorf("unknown curve %d", int(id))
	}
	return p, nil
}

// ByName resolves a curve name such as "secp256k1", "P-256" or "ed25519".
func ByName(name string) (ID, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "p-256", "p256", "prime256v1":
		return Secp256r1, nil
	case "p-384", "p384":
		return Secp384r1, nil
	case "p-521", "p521":
		return Secp521r1, nil
	case "x25519":
		return Curve25519, nil
	}
	for id, p := range table {
		if p.Name == n {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown curve %q", name)
}

// All returns every supported curve ID in ascending order.
func All() []ID {
	return []ID{Secp256k1, Secp256r1, Secp384r1, Secp521r1, Ed25519, Ed448, Curve25519}
}
