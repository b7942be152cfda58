package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

type bls12381Curve struct{}

func (bls12381Curve) Name() string      { return "bls12-381" }
func (bls12381Curve) ID() [4]byte       { return [4]byte{'b', '3', '8', '1'} }
func (bls12381Curve) ByteLen() int      { return fr.Bytes }
func (bls12381Curve) Bits() int         { return fr.Modulus().BitLen() }
func (bls12381Curve) Modulus() *big.Int { return fr.Modulus() }

func (c bls12381Curve) Zero() Element { return bls12381Element{} }

func (c bls12381Curve) One() Element {
	var e fr.Element
	e.SetOne()
	return bls12381Element{e: e}
}

func (c bls12381Curve) FromBytes(b []byte) (Element, error) {
	if len(b) != fr.Bytes {
		return nil, fmt.Errorf("invalid %s element: %d bytes, want %d", c.Name(), len(b), fr.Bytes)
	}
	var e fr.Element
	e.SetBytes(b)
	return bls12381Element{e: e}, nil
}

func (c bls12381Curve) FromBigInt(v *big.Int) Element {
	var e fr.Element
	e.SetBigInt(v)
	return bls12381Element{e: e}
}

func (c bls12381Curve) FromUint64(v uint64) Element {
	var e fr.Element
	e.SetUint64(v)
	return bls12381Element{e: e}
}

type bls12381Element struct {
	e fr.Element
}

func (e bls12381Element) Curve() Curve   { return Bls12_381 }
func (e bls12381Element) Bytes() []byte  { return e.e.Marshal() }
func (e bls12381Element) String() string { return e.e.String() }
func (e bls12381Element) IsZero() bool   { return e.e.IsZero() }
func (e bls12381Element) IsOne() bool    { return e.e.IsOne() }

func (e bls12381Element) BigInt() *big.Int {
	var v big.Int
	return e.e.BigInt(&v)
}

func (e bls12381Element) Equal(o Element) bool {
	oe := o.(bls12381Element)
	return e.e.Equal(&oe.e)
}

func (e bls12381Element) Add(o Element) Element {
	oe := o.(bls12381Element)
	var res fr.Element
	res.Add(&e.e, &oe.e)
	return bls12381Element{e: res}
}

func (e bls12381Element) Mul(o Element) Element {
	oe := o.(bls12381Element)
	var res fr.Element
	res.Mul(&e.e, &oe.e)
	return bls12381Element{e: res}
}

func (e bls12381Element) Neg() Element {
	var res fr.Element
	res.Neg(&e.e)
	return bls12381Element{e: res}
}
