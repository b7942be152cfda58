// Package field abstracts the prime fields attached to the supported
// elliptic curves. The flat IR stores its coefficients as field elements;
// the binary container encodes them as their canonical big-endian byte
// representation. Arithmetic is backed by gnark-crypto's fr packages, one
// per curve.
package field

import "math/big"

// A Curve describes the scalar field of a supported curve and constructs
// elements of it.
type Curve interface {
	// Name returns the canonical curve name.
	Name() string

	// ID returns the unique 4-byte tag identifying the curve in the binary
	// container.
	ID() [4]byte

	// ByteLen returns the length of the canonical byte representation of an
	// element.
	ByteLen() int

	// Bits returns the bit size of the field modulus.
	Bits() int

	// Modulus returns the field modulus.
	Modulus() *big.Int

	// Zero and One return the respective constants.
	Zero() Element
	One() Element

	// FromBytes decodes an element from its canonical big-endian bytes. It
	// fails when b does not have length ByteLen.
	FromBytes(b []byte) (Element, error)

	// FromBigInt reduces v into the field.
	FromBigInt(v *big.Int) Element

	// FromUint64 maps v into the field.
	FromUint64(v uint64) Element
}

// An Element is an element of the scalar field of one of the supported
// curves. Mixing elements of different curves is a programming error and
// panics.
type Element interface {
	// Curve returns the curve this element belongs to.
	Curve() Curve

	// Bytes returns the canonical big-endian representation, ByteLen bytes
	// long.
	Bytes() []byte

	// BigInt returns the element as an integer in [0, modulus).
	BigInt() *big.Int

	String() string
	Equal(o Element) bool
	IsZero() bool
	IsOne() bool

	Add(o Element) Element
	Mul(o Element) Element
	Neg() Element
}

// The supported curves.
var (
	Bn128     Curve = bn128Curve{}
	Bls12_381 Curve = bls12381Curve{}
	Bls12_377 Curve = bls12377Curve{}
	Bw6_761   Curve = bw6761Curve{}
)

// Curves returns all supported curves in a fixed order.
func Curves() []Curve {
	return []Curve{Bls12_381, Bn128, Bls12_377, Bw6_761}
}

// ByID returns the curve with the given container tag.
func ByID(id [4]byte) (Curve, bool) {
	for _, c := range Curves() {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// ByName returns the curve with the given canonical name.
func ByName(name string) (Curve, bool) {
	for _, c := range Curves() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
