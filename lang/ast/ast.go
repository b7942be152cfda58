// Package ast defines the typed abstract syntax tree consumed by the
// middle-end passes. The tree is the output of the front-end's type
// inference: every expression carries its type, array sizes may still be
// symbolic expressions, and function calls reference functions by key
// across modules. The package also provides the folder framework used by
// the passes to rebuild programs while accumulating state.
package ast

import (
	"fmt"
	"strings"

	"github.com/calyx-zk/calyx/lang/types"
)

// A Dim is a possibly-symbolic array dimension: an unsigned integer
// expression that may or may not reduce to a literal.
type Dim struct {
	E Expr
}

// Const returns the literal value of the dimension, if it has one.
func (d Dim) Const() (uint32, bool) {
	if lit, ok := d.E.(*ULit); ok {
		return uint32(lit.Value), true
	}
	return 0, false
}

func (d Dim) String() string {
	if d.E == nil {
		return "?"
	}
	return d.E.String()
}

// The symbolic instantiations of the type lattice: array sizes are
// expressions.
type (
	Type        = types.GType[Dim]
	Signature   = types.GSignature[Dim]
	FunctionKey = types.GFunctionKey[Dim]
	Member      = types.GMember[Dim]
)

// TypesEqual reports the loose equality used on symbolic types: two arrays
// of equal element types are compatible whenever either size is not a
// literal. This is what makes generic function signatures match their call
// sites before sizes are propagated.
func TypesEqual(a, b *Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case types.FieldElement, types.Boolean:
		return true
	case types.Uint:
		return a.Bitwidth == b.Bitwidth
	case types.Array:
		if !TypesEqual(a.Elem, b.Elem) {
			return false
		}
		av, aok := a.Size.Const()
		bv, bok := b.Size.Const()
		if aok && bok {
			return av == bv
		}
		return true
	case types.Struct:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i, m := range a.Members {
			if m.ID != b.Members[i].ID || !TypesEqual(m.Type, b.Members[i].Type) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("unexpected type kind %d", a.Kind))
	}
}

// ConcreteType reduces a symbolic type to a concrete one. It fails when a
// dimension is not reducible to a literal.
func ConcreteType(t *Type) (*types.ConcreteType, error) {
	switch t.Kind {
	case types.FieldElement, types.Boolean, types.Uint:
		return &types.ConcreteType{Kind: t.Kind, Bitwidth: t.Bitwidth}, nil
	case types.Array:
		v, ok := t.Size.Const()
		if !ok {
			return nil, fmt.Errorf("size %s is not reducible to a literal", t.Size)
		}
		elem, err := ConcreteType(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.ArrayType(elem, types.U32(v)), nil
	case types.Struct:
		members := make([]types.GMember[types.U32], len(t.Members))
		for i, m := range t.Members {
			mt, err := ConcreteType(m.Type)
			if err != nil {
				return nil, err
			}
			members[i] = types.GMember[types.U32]{ID: m.ID, Type: mt}
		}
		return types.StructType(t.Module, t.Name, members), nil
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

// TypeFromConcrete widens a concrete type into a symbolic one; sizes become
// literal expressions.
func TypeFromConcrete(t *types.ConcreteType) *Type {
	switch t.Kind {
	case types.FieldElement, types.Boolean, types.Uint:
		return &Type{Kind: t.Kind, Bitwidth: t.Bitwidth}
	case types.Array:
		return types.ArrayType(TypeFromConcrete(t.Elem), Dim{E: &ULit{Value: uint64(t.Size), Bitwidth: types.B32}})
	case types.Struct:
		members := make([]Member, len(t.Members))
		for i, m := range t.Members {
			members[i] = Member{ID: m.ID, Type: TypeFromConcrete(m.Type)}
		}
		return types.StructType(t.Module, t.Name, members)
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

// TypeFromDeclaration widens a declaration type into a symbolic one;
// generic sizes become identifier expressions of type u32.
func TypeFromDeclaration(t *types.DeclarationType) *Type {
	switch t.Kind {
	case types.FieldElement, types.Boolean, types.Uint:
		return &Type{Kind: t.Kind, Bitwidth: t.Bitwidth}
	case types.Array:
		var size Dim
		if t.Size.IsGeneric() {
			size = Dim{E: &Ident{Id: Identifier{ID: Name(t.Size.Name)}, Ty: types.UintType[Dim](types.B32)}}
		} else {
			size = Dim{E: &ULit{Value: uint64(t.Size.Value), Bitwidth: types.B32}}
		}
		return types.ArrayType(TypeFromDeclaration(t.Elem), size)
	case types.Struct:
		members := make([]Member, len(t.Members))
		for i, m := range t.Members {
			members[i] = Member{ID: m.ID, Type: TypeFromDeclaration(m.Type)}
		}
		return types.StructType(t.Module, t.Name, members)
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

// ConcreteKey reduces a symbolic function key, failing when any size in the
// signature is not a literal.
func ConcreteKey(k FunctionKey) (types.ConcreteFunctionKey, error) {
	conv := func(list []*Type) ([]*types.ConcreteType, error) {
		res := make([]*types.ConcreteType, len(list))
		for i, t := range list {
			ct, err := ConcreteType(t)
			if err != nil {
				return nil, err
			}
			res[i] = ct
		}
		return res, nil
	}
	inputs, err := conv(k.Signature.Inputs)
	if err != nil {
		return types.ConcreteFunctionKey{}, err
	}
	outputs, err := conv(k.Signature.Outputs)
	if err != nil {
		return types.ConcreteFunctionKey{}, err
	}
	return types.ConcreteFunctionKey{
		ID:        k.ID,
		Signature: types.ConcreteSignature{Inputs: inputs, Outputs: outputs},
	}, nil
}

// KeyFromConcrete widens a concrete function key into a symbolic one.
func KeyFromConcrete(k types.ConcreteFunctionKey) FunctionKey {
	conv := func(list []*types.ConcreteType) []*Type {
		res := make([]*Type, len(list))
		for i, t := range list {
			res[i] = TypeFromConcrete(t)
		}
		return res
	}
	return FunctionKey{
		ID: k.ID,
		Signature: Signature{
			Inputs:  conv(k.Signature.Inputs),
			Outputs: conv(k.Signature.Outputs),
		},
	}
}

// A Frame is one entry of an identifier's call stack: the module and
// concrete key of the inlined function and the occurrence index of the
// call.
type Frame struct {
	Module ModuleID
	Key    types.ConcreteFunctionKey
	Count  uint32
}

func (f Frame) String() string {
	return fmt.Sprintf("%s.%s:%d", f.Module, f.Key.Slug(), f.Count)
}

// A CoreID is the base of an identifier: either a source-level name or the
// return of a call to the function identified by Call.
type CoreID struct {
	Name string
	Call *types.ConcreteFunctionKey
}

// Name returns a source-level core identifier.
func Name(n string) CoreID { return CoreID{Name: n} }

// CallID returns the core identifier of the return of a call to key.
func CallID(key types.ConcreteFunctionKey) CoreID { return CoreID{Call: &key} }

func (c CoreID) String() string {
	if c.Call != nil {
		return "#" + c.Call.Slug()
	}
	return c.Name
}

func (c CoreID) equals(o CoreID) bool {
	if (c.Call == nil) != (o.Call == nil) {
		return false
	}
	if c.Call != nil {
		return c.Call.Slug() == o.Call.Slug()
	}
	return c.Name == o.Name
}

// An Identifier names a value in the typed tree. The stack is the only
// source of alpha-renaming across inlined calls: the inliner mutates its
// own stack transiently and each emitted definition captures a snapshot.
type Identifier struct {
	ID      CoreID
	Version uint32
	Stack   []Frame
}

// Equals reports whether two identifiers are equal: base, version and the
// whole stack must match.
func (id Identifier) Equals(o Identifier) bool {
	if !id.ID.equals(o.ID) || id.Version != o.Version || len(id.Stack) != len(o.Stack) {
		return false
	}
	for i, f := range id.Stack {
		of := o.Stack[i]
		if f.Module != of.Module || f.Count != of.Count || f.Key.Slug() != of.Key.Slug() {
			return false
		}
	}
	return true
}

func (id Identifier) String() string {
	var b strings.Builder
	for _, f := range id.Stack {
		b.WriteString(f.String())
		b.WriteByte('/')
	}
	b.WriteString(id.ID.String())
	if id.Version > 0 {
		fmt.Fprintf(&b, "_%d", id.Version)
	}
	return b.String()
}

// A Variable is a typed identifier.
type Variable struct {
	ID   Identifier
	Type *Type
}

// FieldVariable returns a field-typed variable named n, a common case in
// tests and embeds.
func FieldVariable(n string) Variable {
	return Variable{ID: Identifier{ID: Name(n)}, Type: types.FieldType[Dim]()}
}

func (v Variable) String() string { return fmt.Sprintf("%s %s", v.Type, v.ID) }

// A Parameter is a function argument; private parameters are witness-only.
type Parameter struct {
	Variable Variable
	Private  bool
}

// A ModuleID identifies a module of the program.
type ModuleID = string

// A Program is a set of modules with a designated main module. The main
// module must contain a function named main.
type Program struct {
	Main    ModuleID
	Modules map[ModuleID]*Module
}

// A Module maps declaration function keys to function symbols. Symbols are
// kept in declaration order; Lookup resolves by key.
type Module struct {
	Symbols []*SymbolDecl
}

// A SymbolDecl binds a declaration key to its symbol.
type SymbolDecl struct {
	Key    types.DeclarationFunctionKey
	Symbol Symbol
}

// Lookup returns the symbol declared under key, or nil.
func (m *Module) Lookup(key types.DeclarationFunctionKey) Symbol {
	slug := key.Slug()
	for _, d := range m.Symbols {
		if d.Key.Slug() == slug {
			return d.Symbol
		}
	}
	return nil
}

// LookupConcrete returns the first symbol whose declaration key admits the
// concrete key, with its declaration key.
func (m *Module) LookupConcrete(key types.ConcreteFunctionKey) (*SymbolDecl, bool) {
	for _, d := range m.Symbols {
		if types.KeyMatches(d.Key, key) {
			return d, true
		}
	}
	return nil, false
}

// A Symbol is what a module declares under a function key: a local
// definition, a re-export from another module, or a flat embed.
type Symbol interface {
	symbol()
}

// Here is a function defined in the declaring module.
type Here struct {
	Fn *Function
}

// There is a re-export of a function declared in another module.
type There struct {
	Key    types.DeclarationFunctionKey
	Module ModuleID
}

// Flat is an intrinsic whose body is opaque below this layer.
type Flat struct {
	Embed Embed
}

func (*Here) symbol()  {}
func (*There) symbol() {}
func (*Flat) symbol()  {}

// A Function is a typed function body.
type Function struct {
	Arguments  []Parameter
	Statements []Stmt
	Signature  types.DeclarationSignature
}
