package ast

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/calyx-zk/calyx/lang/types"
)

// An Expr is a typed expression. Every expression knows its type; the five
// flavors of the tree (field, boolean, array, struct, unsigned integer)
// are the kinds of the expression's type.
type Expr interface {
	fmt.Stringer

	// Type returns the type of the expression.
	Type() *Type

	// IsConstant reports whether the expression is a literal constant:
	// literals are, and aggregates are when all their parts are.
	IsConstant() bool

	expr()
}

type (
	// Ident references a value by identifier.
	Ident struct {
		Id Identifier
		Ty *Type
	}

	// FieldLit is a field element literal. The value is kept as an integer
	// and mapped into a concrete field by the lowering layers.
	FieldLit struct {
		Value *big.Int
	}

	// BoolLit is a boolean literal.
	BoolLit struct {
		Value bool
	}

	// ULit is an unsigned integer literal of a given width.
	ULit struct {
		Value    uint64
		Bitwidth types.Bitwidth
	}

	// BinExpr is a binary operation; the operator set spans the field,
	// boolean and unsigned integer flavors.
	BinExpr struct {
		Op          BinOp
		Left, Right Expr
		Ty          *Type
	}

	// UnExpr is a unary operation.
	UnExpr struct {
		Op BinOp
		E  Expr
		Ty *Type
	}

	// CondExpr is a ternary conditional.
	CondExpr struct {
		Cond        Expr
		True, False Expr
		Ty          *Type
	}

	// ArrayLit is an array literal.
	ArrayLit struct {
		Elems []Expr
		Ty    *Type
	}

	// SelectExpr indexes into an array.
	SelectExpr struct {
		Array Expr
		Index Expr
		Ty    *Type
	}

	// StructLit is a struct literal; values are in member order.
	StructLit struct {
		Values []Expr
		Ty     *Type
	}

	// MemberExpr accesses a struct member.
	MemberExpr struct {
		Struct Expr
		Field  string
		Ty     *Type
	}

	// CallExpr is a function call in expression position; the callee has a
	// single return value of the expression's type.
	CallExpr struct {
		Key  FunctionKey
		Args []Expr
		Ty   *Type
	}
)

// BinOp is a binary or unary operator.
type BinOp uint8

// List of operators.
const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Pow
	And
	Or
	Not
	Xor
	LShift
	RShift
	BitAnd
	BitOr
	BitXor
	Lt
	Le
	Eq
	Ge
	Gt
	Neg
)

var binOpNames = [...]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Pow: "**",
	And: "&&", Or: "||", Not: "!", Xor: "^^",
	LShift: "<<", RShift: ">>", BitAnd: "&", BitOr: "|", BitXor: "^",
	Lt: "<", Le: "<=", Eq: "==", Ge: ">=", Gt: ">", Neg: "-",
}

func (op BinOp) String() string { return binOpNames[op] }

func (*Ident) expr()      {}
func (*FieldLit) expr()   {}
func (*BoolLit) expr()    {}
func (*ULit) expr()       {}
func (*BinExpr) expr()    {}
func (*UnExpr) expr()     {}
func (*CondExpr) expr()   {}
func (*ArrayLit) expr()   {}
func (*SelectExpr) expr() {}
func (*StructLit) expr()  {}
func (*MemberExpr) expr() {}
func (*CallExpr) expr()   {}

func (e *Ident) Type() *Type      { return e.Ty }
func (e *FieldLit) Type() *Type   { return types.FieldType[Dim]() }
func (e *BoolLit) Type() *Type    { return types.BoolType[Dim]() }
func (e *ULit) Type() *Type       { return types.UintType[Dim](e.Bitwidth) }
func (e *BinExpr) Type() *Type    { return e.Ty }
func (e *UnExpr) Type() *Type     { return e.Ty }
func (e *CondExpr) Type() *Type   { return e.Ty }
func (e *ArrayLit) Type() *Type   { return e.Ty }
func (e *SelectExpr) Type() *Type { return e.Ty }
func (e *StructLit) Type() *Type  { return e.Ty }
func (e *MemberExpr) Type() *Type { return e.Ty }
func (e *CallExpr) Type() *Type   { return e.Ty }

func (e *Ident) IsConstant() bool    { return false }
func (e *FieldLit) IsConstant() bool { return true }
func (e *BoolLit) IsConstant() bool  { return true }
func (e *ULit) IsConstant() bool     { return true }
func (e *BinExpr) IsConstant() bool  { return false }
func (e *UnExpr) IsConstant() bool   { return false }
func (e *CondExpr) IsConstant() bool { return false }
func (e *ArrayLit) IsConstant() bool {
	for _, el := range e.Elems {
		if !el.IsConstant() {
			return false
		}
	}
	return true
}
func (e *SelectExpr) IsConstant() bool { return false }
func (e *StructLit) IsConstant() bool {
	for _, v := range e.Values {
		if !v.IsConstant() {
			return false
		}
	}
	return true
}
func (e *MemberExpr) IsConstant() bool { return false }
func (e *CallExpr) IsConstant() bool   { return false }

func (e *Ident) String() string    { return e.Id.String() }
func (e *FieldLit) String() string { return e.Value.String() }
func (e *BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}
func (e *ULit) String() string { return fmt.Sprintf("%d", e.Value) }
func (e *BinExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}
func (e *UnExpr) String() string { return fmt.Sprintf("(%s%s)", e.Op, e.E) }
func (e *CondExpr) String() string {
	return fmt.Sprintf("if %s then %s else %s fi", e.Cond, e.True, e.False)
}
func (e *ArrayLit) String() string {
	elems := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		elems[i] = el.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}
func (e *SelectExpr) String() string { return fmt.Sprintf("%s[%s]", e.Array, e.Index) }
func (e *StructLit) String() string {
	vals := make([]string, len(e.Values))
	for i, v := range e.Values {
		vals[i] = v.String()
	}
	return fmt.Sprintf("%s {%s}", e.Ty.Name, strings.Join(vals, ", "))
}
func (e *MemberExpr) String() string { return fmt.Sprintf("%s.%s", e.Struct, e.Field) }
func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Key.ID, strings.Join(args, ", "))
}
