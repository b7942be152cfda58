package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

type bls12377Curve struct{}

func (bls12377Curve) Name() string      { return "bls12-377" }
func (bls12377Curve) ID() [4]byte       { return [4]byte{'b', '3', '7', '7'} }
func (bls12377Curve) ByteLen() int      { return fr.Bytes }
func (bls12377Curve) Bits() int         { return fr.Modulus().BitLen() }
func (bls12377Curve) Modulus() *big.Int { return fr.Modulus() }

func (c bls12377Curve) Zero() Element { return bls12377Element{} }

func (c bls12377Curve) One() Element {
	var e fr.Element
	e.SetOne()
	return bls12377Element{e: e}
}

func (c bls12377Curve) FromBytes(b []byte) (Element, error) {
	if len(b) != fr.Bytes {
		return nil, fmt.Errorf("invalid %s element: %d bytes, want %d", c.Name(), len(b), fr.Bytes)
	}
	var e fr.Element
	e.SetBytes(b)
	return bls12377Element{e: e}, nil
}

func (c bls12377Curve) FromBigInt(v *big.Int) Element {
	var e fr.Element
	e.SetBigInt(v)
	return bls12377Element{e: e}
}

func (c bls12377Curve) FromUint64(v uint64) Element {
	var e fr.Element
	e.SetUint64(v)
	return bls12377Element{e: e}
}

type bls12377Element struct {
	e fr.Element
}

func (e bls12377Element) Curve() Curve   { return Bls12_377 }
func (e bls12377Element) Bytes() []byte  { return e.e.Marshal() }
func (e bls12377Element) String() string { return e.e.String() }
func (e bls12377Element) IsZero() bool   { return e.e.IsZero() }
func (e bls12377Element) IsOne() bool    { return e.e.IsOne() }

func (e bls12377Element) BigInt() *big.Int {
	var v big.Int
	return e.e.BigInt(&v)
}

func (e bls12377Element) Equal(o Element) bool {
	oe := o.(bls12377Element)
	return e.e.Equal(&oe.e)
}

func (e bls12377Element) Add(o Element) Element {
	oe := o.(bls12377Element)
	var res fr.Element
	res.Add(&e.e, &oe.e)
	return bls12377Element{e: res}
}

func (e bls12377Element) Mul(o Element) Element {
	oe := o.(bls12377Element)
	var res fr.Element
	res.Mul(&e.e, &oe.e)
	return bls12377Element{e: res}
}

func (e bls12377Element) Neg() Element {
	var res fr.Element
	res.Neg(&e.e)
	return bls12377Element{e: res}
}
