// Package types defines the type lattice shared by every phase of the
// middle-end. A type is parametric over its array sizes: the same shape is
// instantiated with declaration sizes (literal or generic), concrete sizes
// (plain integers) and, in the ast package, symbolic sizes (unsigned integer
// expressions). Conversions towards the concrete instantiation are fallible
// and fail exactly when a size cannot be reduced to a literal.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is the constraint on the size parameter of the type lattice. Sizes
// must be comparable so that type equality can compare them directly, and
// must print themselves for display and slug encoding.
type Size interface {
	comparable
	fmt.Stringer
}

// U32 is the concrete size instantiation.
type U32 uint32

func (u U32) String() string { return strconv.FormatUint(uint64(u), 10) }

// Constant is the declaration size instantiation: either a literal value or
// a generic (named) size to be bound at call sites.
type Constant struct {
	// Name is the generic identifier, empty for a literal size.
	Name  string
	Value U32
}

// Generic returns a named declaration size.
func Generic(name string) Constant { return Constant{Name: name} }

// Literal returns a literal declaration size.
func Literal(v uint32) Constant { return Constant{Value: U32(v)} }

// IsGeneric returns true if the size is a named generic.
func (c Constant) IsGeneric() bool { return c.Name != "" }

func (c Constant) String() string {
	if c.IsGeneric() {
		return c.Name
	}
	return c.Value.String()
}

// Bitwidth is the width of an unsigned integer type.
type Bitwidth uint8

// Supported unsigned integer widths.
const (
	B8  Bitwidth = 8
	B16 Bitwidth = 16
	B32 Bitwidth = 32
)

func (b Bitwidth) String() string { return strconv.Itoa(int(b)) }

// Kind discriminates the variants of a type.
type Kind uint8

// List of type kinds.
const (
	FieldElement Kind = iota
	Boolean
	Uint
	Array
	Struct
)

// A GMember is a named member of a struct type.
type GMember[S Size] struct {
	ID   string
	Type *GType[S]
}

// A GType is a type of the language, parametric over its size instantiation.
// Exactly one variant is active, identified by Kind; the other fields are
// meaningful only for the variant that declares them.
type GType[S Size] struct {
	Kind Kind

	// Bitwidth is set for Uint.
	Bitwidth Bitwidth

	// Elem and Size are set for Array.
	Elem *GType[S]
	Size S

	// Module, Name and Members are set for Struct. Module and Name identify
	// the declaration site and do not take part in equality.
	Module  string
	Name    string
	Members []GMember[S]
}

// The declaration and concrete instantiations of the lattice. The third,
// typed (symbolic) instantiation lives in the ast package.
type (
	DeclarationType = GType[Constant]
	ConcreteType    = GType[U32]
)

// FieldType returns the field element type.
func FieldType[S Size]() *GType[S] { return &GType[S]{Kind: FieldElement} }

// BoolType returns the boolean type.
func BoolType[S Size]() *GType[S] { return &GType[S]{Kind: Boolean} }

// UintType returns the unsigned integer type of width b.
func UintType[S Size](b Bitwidth) *GType[S] { return &GType[S]{Kind: Uint, Bitwidth: b} }

// ArrayType returns the array type of size elements of elem.
func ArrayType[S Size](elem *GType[S], size S) *GType[S] {
	return &GType[S]{Kind: Array, Elem: elem, Size: size}
}

// StructType returns the struct type declared in module under name with the
// given ordered members.
func StructType[S Size](module, name string, members []GMember[S]) *GType[S] {
	return &GType[S]{Kind: Struct, Module: module, Name: name, Members: members}
}

// Equals reports whether two types are equal. Struct equality ignores the
// module and name and compares the ordered member lists; array equality
// requires equal sizes. The looser array equality of the symbolic
// instantiation is implemented in the ast package.
func (t *GType[S]) Equals(o *GType[S]) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case FieldElement, Boolean:
		return true
	case Uint:
		return t.Bitwidth == o.Bitwidth
	case Array:
		return t.Size == o.Size && t.Elem.Equals(o.Elem)
	case Struct:
		if len(t.Members) != len(o.Members) {
			return false
		}
		for i, m := range t.Members {
			if m.ID != o.Members[i].ID || !m.Type.Equals(o.Members[i].Type) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

func (t *GType[S]) String() string {
	switch t.Kind {
	case FieldElement:
		return "field"
	case Boolean:
		return "bool"
	case Uint:
		return "u" + t.Bitwidth.String()
	case Array:
		return fmt.Sprintf("%s[%s]", t.Elem, t.Size)
	case Struct:
		mems := make([]string, len(t.Members))
		for i, m := range t.Members {
			mems[i] = fmt.Sprintf("%s: %s", m.ID, m.Type)
		}
		return fmt.Sprintf("%s {%s}", t.Name, strings.Join(mems, ", "))
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

// Slug returns the deterministic textual encoding of the type:
//
//	f | b | u<width> | <slug>[<size>] | {<id>:<slug>,...}
func (t *GType[S]) Slug() string {
	switch t.Kind {
	case FieldElement:
		return "f"
	case Boolean:
		return "b"
	case Uint:
		return "u" + t.Bitwidth.String()
	case Array:
		return fmt.Sprintf("%s[%s]", t.Elem.Slug(), t.Size)
	case Struct:
		mems := make([]string, len(t.Members))
		for i, m := range t.Members {
			mems[i] = m.ID + ":" + m.Type.Slug()
		}
		return "{" + strings.Join(mems, ",") + "}"
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

// PrimitiveCount returns the number of field slots the concrete type
// occupies once flattened: scalars count for one, arrays for size times
// their element count and structs for the sum of their members.
func PrimitiveCount(t *ConcreteType) uint32 {
	switch t.Kind {
	case FieldElement, Boolean, Uint:
		return 1
	case Array:
		return uint32(t.Size) * PrimitiveCount(t.Elem)
	case Struct:
		var n uint32
		for _, m := range t.Members {
			n += PrimitiveCount(m.Type)
		}
		return n
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

// ConcreteFromDeclaration reduces a declaration type to a concrete type. It
// fails when a generic size remains unbound.
func ConcreteFromDeclaration(t *DeclarationType) (*ConcreteType, error) {
	switch t.Kind {
	case FieldElement, Boolean, Uint:
		return &ConcreteType{Kind: t.Kind, Bitwidth: t.Bitwidth}, nil
	case Array:
		if t.Size.IsGeneric() {
			return nil, fmt.Errorf("generic size %s is not reducible to a literal", t.Size.Name)
		}
		elem, err := ConcreteFromDeclaration(t.Elem)
		if err != nil {
			return nil, err
		}
		return ArrayType(elem, t.Size.Value), nil
	case Struct:
		members := make([]GMember[U32], len(t.Members))
		for i, m := range t.Members {
			mt, err := ConcreteFromDeclaration(m.Type)
			if err != nil {
				return nil, err
			}
			members[i] = GMember[U32]{ID: m.ID, Type: mt}
		}
		return StructType(t.Module, t.Name, members), nil
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

// DeclarationFromConcrete widens a concrete type into a declaration type.
func DeclarationFromConcrete(t *ConcreteType) *DeclarationType {
	switch t.Kind {
	case FieldElement, Boolean, Uint:
		return &DeclarationType{Kind: t.Kind, Bitwidth: t.Bitwidth}
	case Array:
		return ArrayType(DeclarationFromConcrete(t.Elem), Literal(uint32(t.Size)))
	case Struct:
		members := make([]GMember[Constant], len(t.Members))
		for i, m := range t.Members {
			members[i] = GMember[Constant]{ID: m.ID, Type: DeclarationFromConcrete(m.Type)}
		}
		return StructType(t.Module, t.Name, members)
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

// Matches reports whether a declaration type admits a concrete type: shapes
// must agree and every declaration size must either be generic or equal the
// concrete size.
func Matches(decl *DeclarationType, conc *ConcreteType) bool {
	if decl.Kind != conc.Kind {
		return false
	}
	switch decl.Kind {
	case FieldElement, Boolean:
		return true
	case Uint:
		return decl.Bitwidth == conc.Bitwidth
	case Array:
		if !decl.Size.IsGeneric() && decl.Size.Value != conc.Size {
			return false
		}
		return Matches(decl.Elem, conc.Elem)
	case Struct:
		if len(decl.Members) != len(conc.Members) {
			return false
		}
		for i, m := range decl.Members {
			if m.ID != conc.Members[i].ID || !Matches(m.Type, conc.Members[i].Type) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("unexpected type kind %d", decl.Kind))
	}
}
