package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
)

type bw6761Curve struct{}

func (bw6761Curve) Name() string      { return "bw6-761" }
func (bw6761Curve) ID() [4]byte       { return [4]byte{'b', '7', '6', '1'} }
func (bw6761Curve) ByteLen() int      { return fr.Bytes }
func (bw6761Curve) Bits() int         { return fr.Modulus().BitLen() }
func (bw6761Curve) Modulus() *big.Int { return fr.Modulus() }

func (c bw6761Curve) Zero() Element { return bw6761Element{} }

func (c bw6761Curve) One() Element {
	var e fr.Element
	e.SetOne()
	return bw6761Element{e: e}
}

func (c bw6761Curve) FromBytes(b []byte) (Element, error) {
	if len(b) != fr.Bytes {
		return nil, fmt.Errorf("invalid %s element: %d bytes, want %d", c.Name(), len(b), fr.Bytes)
	}
	var e fr.Element
	e.SetBytes(b)
	return bw6761Element{e: e}, nil
}

func (c bw6761Curve) FromBigInt(v *big.Int) Element {
	var e fr.Element
	e.SetBigInt(v)
	return bw6761Element{e: e}
}

func (c bw6761Curve) FromUint64(v uint64) Element {
	var e fr.Element
	e.SetUint64(v)
	return bw6761Element{e: e}
}

type bw6761Element struct {
	e fr.Element
}

func (e bw6761Element) Curve() Curve   { return Bw6_761 }
func (e bw6761Element) Bytes() []byte  { return e.e.Marshal() }
func (e bw6761Element) String() string { return e.e.String() }
func (e bw6761Element) IsZero() bool   { return e.e.IsZero() }
func (e bw6761Element) IsOne() bool    { return e.e.IsOne() }

func (e bw6761Element) BigInt() *big.Int {
	var v big.Int
	return e.e.BigInt(&v)
}

func (e bw6761Element) Equal(o Element) bool {
	oe := o.(bw6761Element)
	return e.e.Equal(&oe.e)
}

func (e bw6761Element) Add(o Element) Element {
	oe := o.(bw6761Element)
	var res fr.Element
	res.Add(&e.e, &oe.e)
	return bw6761Element{e: res}
}

func (e bw6761Element) Mul(o Element) Element {
	oe := o.(bw6761Element)
	var res fr.Element
	res.Mul(&e.e, &oe.e)
	return bw6761Element{e: res}
}

func (e bw6761Element) Neg() Element {
	var res fr.Element
	res.Neg(&e.e)
	return bw6761Element{e: res}
}
