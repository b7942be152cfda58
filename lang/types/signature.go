package types

import (
	"fmt"
	"strconv"
	"strings"
)

// A GSignature is the input and output type lists of a function, parametric
// over the size instantiation like GType.
type GSignature[S Size] struct {
	Inputs  []*GType[S]
	Outputs []*GType[S]
}

// The declaration and concrete signature instantiations.
type (
	DeclarationSignature = GSignature[Constant]
	ConcreteSignature    = GSignature[U32]
)

// Equals reports member-wise equality of two signatures.
func (s GSignature[S]) Equals(o GSignature[S]) bool {
	return typeListEquals(s.Inputs, o.Inputs) && typeListEquals(s.Outputs, o.Outputs)
}

func typeListEquals[S Size](a, b []*GType[S]) bool {
	if len(a) != len(b) {
		return false
	}
	for i, t := range a {
		if !t.Equals(b[i]) {
			return false
		}
	}
	return true
}

func (s GSignature[S]) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, t := range s.Inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteByte(')')
	switch len(s.Outputs) {
	case 0:
	case 1:
		b.WriteString(" -> ")
		b.WriteString(s.Outputs[0].String())
	default:
		b.WriteString(" -> (")
		for i, t := range s.Outputs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(t.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Slug returns the deterministic encoding i<inputs>o<outputs> where each
// type list compresses runs of equal types:
//
//	[field, field, field]        -> 3f
//	[field]                      -> f
//	[field, bool, field]         -> fbf
//	[field, field, bool, field]  -> 2fbf
//
// The encoding is injective over concrete signatures.
func (s GSignature[S]) Slug() string {
	return "i" + typeListSlug(s.Inputs) + "o" + typeListSlug(s.Outputs)
}

func typeListSlug[S Size](types []*GType[S]) string {
	type run struct {
		n int
		t *GType[S]
	}
	var runs []run
	for _, t := range types {
		if n := len(runs); n > 0 && runs[n-1].t.Equals(t) {
			runs[n-1].n++
			continue
		}
		runs = append(runs, run{n: 1, t: t})
	}

	var b strings.Builder
	for _, r := range runs {
		if r.n > 1 {
			b.WriteString(strconv.Itoa(r.n))
		}
		b.WriteString(r.t.Slug())
	}
	return b.String()
}

// ConcreteFromDeclarationSignature reduces a declaration signature to a
// concrete one, failing on any unbound generic size.
func ConcreteFromDeclarationSignature(s DeclarationSignature) (ConcreteSignature, error) {
	conv := func(list []*DeclarationType) ([]*ConcreteType, error) {
		res := make([]*ConcreteType, len(list))
		for i, t := range list {
			ct, err := ConcreteFromDeclaration(t)
			if err != nil {
				return nil, err
			}
			res[i] = ct
		}
		return res, nil
	}
	inputs, err := conv(s.Inputs)
	if err != nil {
		return ConcreteSignature{}, err
	}
	outputs, err := conv(s.Outputs)
	if err != nil {
		return ConcreteSignature{}, err
	}
	return ConcreteSignature{Inputs: inputs, Outputs: outputs}, nil
}

// DeclarationFromConcreteSignature widens a concrete signature.
func DeclarationFromConcreteSignature(s ConcreteSignature) DeclarationSignature {
	conv := func(list []*ConcreteType) []*DeclarationType {
		res := make([]*DeclarationType, len(list))
		for i, t := range list {
			res[i] = DeclarationFromConcrete(t)
		}
		return res
	}
	return DeclarationSignature{Inputs: conv(s.Inputs), Outputs: conv(s.Outputs)}
}

// SignatureMatches reports whether a declaration signature admits a concrete
// signature, type by type.
func SignatureMatches(decl DeclarationSignature, conc ConcreteSignature) bool {
	match := func(ds []*DeclarationType, cs []*ConcreteType) bool {
		if len(ds) != len(cs) {
			return false
		}
		for i, d := range ds {
			if !Matches(d, cs[i]) {
				return false
			}
		}
		return true
	}
	return match(decl.Inputs, conc.Inputs) && match(decl.Outputs, conc.Outputs)
}

// A GFunctionKey identifies a function by name and signature. Overloads of
// the same name are disambiguated by the signature slug.
type GFunctionKey[S Size] struct {
	ID        string
	Signature GSignature[S]
}

// The declaration and concrete key instantiations.
type (
	DeclarationFunctionKey = GFunctionKey[Constant]
	ConcreteFunctionKey    = GFunctionKey[U32]
)

// Slug returns the canonical string encoding of the key, <id>_<sigslug>.
// Concrete key slugs are injective and usable as map keys.
func (k GFunctionKey[S]) Slug() string {
	return k.ID + "_" + k.Signature.Slug()
}

func (k GFunctionKey[S]) String() string {
	return fmt.Sprintf("%s%s", k.ID, k.Signature)
}

// Equals reports whether two keys have the same id and signature.
func (k GFunctionKey[S]) Equals(o GFunctionKey[S]) bool {
	return k.ID == o.ID && k.Signature.Equals(o.Signature)
}

// ConcreteFromDeclarationKey reduces a declaration key, failing on unbound
// generic sizes.
func ConcreteFromDeclarationKey(k DeclarationFunctionKey) (ConcreteFunctionKey, error) {
	sig, err := ConcreteFromDeclarationSignature(k.Signature)
	if err != nil {
		return ConcreteFunctionKey{}, err
	}
	return ConcreteFunctionKey{ID: k.ID, Signature: sig}, nil
}

// DeclarationFromConcreteKey widens a concrete key.
func DeclarationFromConcreteKey(k ConcreteFunctionKey) DeclarationFunctionKey {
	return DeclarationFunctionKey{ID: k.ID, Signature: DeclarationFromConcreteSignature(k.Signature)}
}

// KeyMatches reports whether a declaration key admits a concrete key: the
// ids must be equal and the declaration signature must admit the concrete
// signature.
func KeyMatches(decl DeclarationFunctionKey, conc ConcreteFunctionKey) bool {
	return decl.ID == conc.ID && SignatureMatches(decl.Signature, conc.Signature)
}
