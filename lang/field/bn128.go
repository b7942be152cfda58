package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

type bn128Curve struct{}

func (bn128Curve) Name() string      { return "bn128" }
func (bn128Curve) ID() [4]byte       { return [4]byte{'b', 'n', '2', '8'} }
func (bn128Curve) ByteLen() int      { return fr.Bytes }
func (bn128Curve) Bits() int         { return fr.Modulus().BitLen() }
func (bn128Curve) Modulus() *big.Int { return fr.Modulus() }

func (c bn128Curve) Zero() Element { return bn128Element{} }

func (c bn128Curve) One() Element {
	var e fr.Element
	e.SetOne()
	return bn128Element{e: e}
}

func (c bn128Curve) FromBytes(b []byte) (Element, error) {
	if len(b) != fr.Bytes {
		return nil, fmt.Errorf("invalid %s element: %d bytes, want %d", c.Name(), len(b), fr.Bytes)
	}
	var e fr.Element
	e.SetBytes(b)
	return bn128Element{e: e}, nil
}

func (c bn128Curve) FromBigInt(v *big.Int) Element {
	var e fr.Element
	e.SetBigInt(v)
	return bn128Element{e: e}
}

func (c bn128Curve) FromUint64(v uint64) Element {
	var e fr.Element
	e.SetUint64(v)
	return bn128Element{e: e}
}

type bn128Element struct {
	e fr.Element
}

func (e bn128Element) Curve() Curve   { return Bn128 }
func (e bn128Element) Bytes() []byte  { return e.e.Marshal() }
func (e bn128Element) String() string { return e.e.String() }
func (e bn128Element) IsZero() bool   { return e.e.IsZero() }
func (e bn128Element) IsOne() bool    { return e.e.IsOne() }

func (e bn128Element) BigInt() *big.Int {
	var v big.Int
	return e.e.BigInt(&v)
}

func (e bn128Element) Equal(o Element) bool {
	oe := o.(bn128Element)
	return e.e.Equal(&oe.e)
}

func (e bn128Element) Add(o Element) Element {
	oe := o.(bn128Element)
	var res fr.Element
	res.Add(&e.e, &oe.e)
	return bn128Element{e: res}
}

func (e bn128Element) Mul(o Element) Element {
	oe := o.(bn128Element)
	var res fr.Element
	res.Mul(&e.e, &oe.e)
	return bn128Element{e: res}
}

func (e bn128Element) Neg() Element {
	var res fr.Element
	res.Neg(&e.e)
	return bn128Element{e: res}
}
