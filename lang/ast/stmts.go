package ast

import (
	"fmt"
	"strings"

	"github.com/calyx-zk/calyx/lang/types"
)

// A Stmt is a typed statement.
type Stmt interface {
	fmt.Stringer
	stmt()
}

type (
	// ReturnStmt terminates a function body with its return values.
	ReturnStmt struct {
		Exprs []Expr
	}

	// DefStmt binds the result of an expression or embed call to an
	// assignee.
	DefStmt struct {
		Assignee Assignee
		Rhs      Rhs
	}

	// MultiDefStmt binds the results of a multi-return function call.
	MultiDefStmt struct {
		Vars []Variable
		Call CallList
	}

	// ForStmt is a bounded loop; it must be unrolled before inlining can
	// complete.
	ForStmt struct {
		Var      Variable
		From, To Expr
		Body     []Stmt
	}

	// AssertStmt requires a boolean expression to hold.
	AssertStmt struct {
		Cond Expr
	}
)

// A CallList is the right-hand side of a multi-return definition.
type CallList struct {
	Key   FunctionKey
	Args  []Expr
	Types []*Type
}

func (*ReturnStmt) stmt()   {}
func (*DefStmt) stmt()      {}
func (*MultiDefStmt) stmt() {}
func (*ForStmt) stmt()      {}
func (*AssertStmt) stmt()   {}

func (s *ReturnStmt) String() string {
	exprs := make([]string, len(s.Exprs))
	for i, e := range s.Exprs {
		exprs[i] = e.String()
	}
	return "return " + strings.Join(exprs, ", ")
}

func (s *DefStmt) String() string {
	return fmt.Sprintf("%s = %s", s.Assignee, s.Rhs)
}

func (s *MultiDefStmt) String() string {
	vars := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		vars[i] = v.ID.String()
	}
	args := make([]string, len(s.Call.Args))
	for i, a := range s.Call.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s = %s(%s)", strings.Join(vars, ", "), s.Call.Key.ID, strings.Join(args, ", "))
}

func (s *ForStmt) String() string {
	return fmt.Sprintf("for %s in %s..%s do ... endfor", s.Var.ID, s.From, s.To)
}

func (s *AssertStmt) String() string { return fmt.Sprintf("assert(%s)", s.Cond) }

// An Assignee is the left-hand side of a definition.
type Assignee interface {
	fmt.Stringer
	assignee()
}

type (
	// VarAssignee assigns to a whole variable.
	VarAssignee struct {
		Var Variable
	}

	// SelectAssignee assigns to an array element.
	SelectAssignee struct {
		Assignee Assignee
		Index    Expr
	}

	// MemberAssignee assigns to a struct member.
	MemberAssignee struct {
		Assignee Assignee
		Field    string
	}
)

func (*VarAssignee) assignee()    {}
func (*SelectAssignee) assignee() {}
func (*MemberAssignee) assignee() {}

func (a *VarAssignee) String() string    { return a.Var.ID.String() }
func (a *SelectAssignee) String() string { return fmt.Sprintf("%s[%s]", a.Assignee, a.Index) }
func (a *MemberAssignee) String() string { return fmt.Sprintf("%s.%s", a.Assignee, a.Field) }

// An Rhs is the right-hand side of a definition: a plain expression or an
// embed call.
type Rhs interface {
	fmt.Stringer
	rhs()
}

// ExprRhs wraps an expression as a definition right-hand side.
type ExprRhs struct {
	E Expr
}

// An EmbedCall invokes a flat embed with optional generic arguments.
type EmbedCall struct {
	Embed    Embed
	Generics []uint32
	Args     []Expr
}

func (*ExprRhs) rhs()   {}
func (*EmbedCall) rhs() {}

func (r *ExprRhs) String() string { return r.E.String() }

func (c *EmbedCall) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Embed, strings.Join(args, ", "))
}

// An Embed is a primitive operation that the middle-end cannot lower
// further: it survives inlining as a recognizable call to be resolved by
// the flattening layers.
type Embed uint8

// List of embeds.
const (
	Unpack Embed = iota
	U8ToBits
	U16ToBits
	U32ToBits
	U8FromBits
	U16FromBits
	U32FromBits
	Sha256Round
	BitArrayLe
)

var embedNames = [...]string{
	Unpack:      "_UNPACK",
	U8ToBits:    "_U8_TO_BITS",
	U16ToBits:   "_U16_TO_BITS",
	U32ToBits:   "_U32_TO_BITS",
	U8FromBits:  "_U8_FROM_BITS",
	U16FromBits: "_U16_FROM_BITS",
	U32FromBits: "_U32_FROM_BITS",
	Sha256Round: "_SHA256_ROUND",
	BitArrayLe:  "_BIT_ARRAY_LE",
}

func (e Embed) String() string { return embedNames[e] }

// fieldBits is the number of bits a field element unpacks into.
const fieldBits = 254

// Key returns the concrete function key of the embed.
func (e Embed) Key() types.ConcreteFunctionKey {
	field := types.FieldType[types.U32]()
	boolT := types.BoolType[types.U32]()
	bits := func(n uint32) *types.ConcreteType { return types.ArrayType(boolT, types.U32(n)) }
	uint_ := func(b types.Bitwidth) *types.ConcreteType { return types.UintType[types.U32](b) }

	sig := func(in, out []*types.ConcreteType) types.ConcreteSignature {
		return types.ConcreteSignature{Inputs: in, Outputs: out}
	}

	var s types.ConcreteSignature
	switch e {
	case Unpack:
		s = sig([]*types.ConcreteType{field}, []*types.ConcreteType{bits(fieldBits)})
	case U8ToBits:
		s = sig([]*types.ConcreteType{uint_(types.B8)}, []*types.ConcreteType{bits(8)})
	case U16ToBits:
		s = sig([]*types.ConcreteType{uint_(types.B16)}, []*types.ConcreteType{bits(16)})
	case U32ToBits:
		s = sig([]*types.ConcreteType{uint_(types.B32)}, []*types.ConcreteType{bits(32)})
	case U8FromBits:
		s = sig([]*types.ConcreteType{bits(8)}, []*types.ConcreteType{uint_(types.B8)})
	case U16FromBits:
		s = sig([]*types.ConcreteType{bits(16)}, []*types.ConcreteType{uint_(types.B16)})
	case U32FromBits:
		s = sig([]*types.ConcreteType{bits(32)}, []*types.ConcreteType{uint_(types.B32)})
	case Sha256Round:
		s = sig([]*types.ConcreteType{bits(512), bits(256)}, []*types.ConcreteType{bits(256)})
	case BitArrayLe:
		s = sig([]*types.ConcreteType{bits(fieldBits), bits(fieldBits)}, []*types.ConcreteType{boolT})
	default:
		panic(fmt.Sprintf("unexpected embed %d", e))
	}
	return types.ConcreteFunctionKey{ID: e.String(), Signature: s}
}
