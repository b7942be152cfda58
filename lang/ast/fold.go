package ast

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/calyx-zk/calyx/lang/types"
)

// A Folder rebuilds a program. It has one method per node kind; a pass
// implements the kinds it cares about and delegates the rest to the
// package-level defaults, which recurse and reassemble the node from its
// folded children. Folding a statement may return several statements, which
// are spliced in order at the statement's position. Traversal is complete:
// every child of every node kind is visited.
type Folder interface {
	FoldProgram(*Program) *Program
	FoldModule(*Module) *Module
	FoldFunction(*Function) *Function
	FoldStmt(Stmt) []Stmt
	FoldExpr(Expr) Expr
	FoldAssignee(Assignee) Assignee
	FoldVariable(Variable) Variable
	FoldIdent(Identifier) Identifier
	FoldType(*Type) *Type
}

// FoldProgram is the default program fold: it folds every module, visiting
// them in deterministic order.
func FoldProgram(f Folder, p *Program) *Program {
	ids := maps.Keys(p.Modules)
	slices.Sort(ids)

	modules := make(map[ModuleID]*Module, len(p.Modules))
	for _, id := range ids {
		modules[id] = f.FoldModule(p.Modules[id])
	}
	return &Program{Main: p.Main, Modules: modules}
}

// FoldModule is the default module fold: local functions are folded,
// aliases and embeds pass through.
func FoldModule(f Folder, m *Module) *Module {
	symbols := make([]*SymbolDecl, len(m.Symbols))
	for i, d := range m.Symbols {
		sym := d.Symbol
		if h, ok := sym.(*Here); ok {
			sym = &Here{Fn: f.FoldFunction(h.Fn)}
		}
		symbols[i] = &SymbolDecl{Key: d.Key, Symbol: sym}
	}
	return &Module{Symbols: symbols}
}

// FoldFunction is the default function fold.
func FoldFunction(f Folder, fn *Function) *Function {
	args := make([]Parameter, len(fn.Arguments))
	for i, p := range fn.Arguments {
		args[i] = Parameter{Variable: f.FoldVariable(p.Variable), Private: p.Private}
	}
	var stmts []Stmt
	for _, s := range fn.Statements {
		stmts = append(stmts, f.FoldStmt(s)...)
	}
	return &Function{Arguments: args, Statements: stmts, Signature: fn.Signature}
}

// FoldStmt is the default statement fold.
func FoldStmt(f Folder, s Stmt) []Stmt {
	switch s := s.(type) {
	case *ReturnStmt:
		return []Stmt{&ReturnStmt{Exprs: foldExprs(f, s.Exprs)}}

	case *DefStmt:
		var rhs Rhs
		switch r := s.Rhs.(type) {
		case *ExprRhs:
			rhs = &ExprRhs{E: f.FoldExpr(r.E)}
		case *EmbedCall:
			rhs = &EmbedCall{Embed: r.Embed, Generics: r.Generics, Args: foldExprs(f, r.Args)}
		default:
			panic(fmt.Sprintf("unexpected rhs %T", s.Rhs))
		}
		return []Stmt{&DefStmt{Assignee: f.FoldAssignee(s.Assignee), Rhs: rhs}}

	case *MultiDefStmt:
		vars := make([]Variable, len(s.Vars))
		for i, v := range s.Vars {
			vars[i] = f.FoldVariable(v)
		}
		tys := make([]*Type, len(s.Call.Types))
		for i, t := range s.Call.Types {
			tys[i] = f.FoldType(t)
		}
		return []Stmt{&MultiDefStmt{
			Vars: vars,
			Call: CallList{Key: s.Call.Key, Args: foldExprs(f, s.Call.Args), Types: tys},
		}}

	case *ForStmt:
		var body []Stmt
		for _, bs := range s.Body {
			body = append(body, f.FoldStmt(bs)...)
		}
		return []Stmt{&ForStmt{
			Var:  f.FoldVariable(s.Var),
			From: f.FoldExpr(s.From),
			To:   f.FoldExpr(s.To),
			Body: body,
		}}

	case *AssertStmt:
		return []Stmt{&AssertStmt{Cond: f.FoldExpr(s.Cond)}}

	default:
		panic(fmt.Sprintf("unexpected stmt %T", s))
	}
}

// FoldExpr is the default expression fold.
func FoldExpr(f Folder, e Expr) Expr {
	switch e := e.(type) {
	case *Ident:
		return &Ident{Id: f.FoldIdent(e.Id), Ty: f.FoldType(e.Ty)}
	case *FieldLit, *BoolLit, *ULit:
		return e
	case *BinExpr:
		return &BinExpr{Op: e.Op, Left: f.FoldExpr(e.Left), Right: f.FoldExpr(e.Right), Ty: f.FoldType(e.Ty)}
	case *UnExpr:
		return &UnExpr{Op: e.Op, E: f.FoldExpr(e.E), Ty: f.FoldType(e.Ty)}
	case *CondExpr:
		return &CondExpr{Cond: f.FoldExpr(e.Cond), True: f.FoldExpr(e.True), False: f.FoldExpr(e.False), Ty: f.FoldType(e.Ty)}
	case *ArrayLit:
		return &ArrayLit{Elems: foldExprs(f, e.Elems), Ty: f.FoldType(e.Ty)}
	case *SelectExpr:
		return &SelectExpr{Array: f.FoldExpr(e.Array), Index: f.FoldExpr(e.Index), Ty: f.FoldType(e.Ty)}
	case *StructLit:
		return &StructLit{Values: foldExprs(f, e.Values), Ty: f.FoldType(e.Ty)}
	case *MemberExpr:
		return &MemberExpr{Struct: f.FoldExpr(e.Struct), Field: e.Field, Ty: f.FoldType(e.Ty)}
	case *CallExpr:
		return &CallExpr{Key: e.Key, Args: foldExprs(f, e.Args), Ty: f.FoldType(e.Ty)}
	default:
		panic(fmt.Sprintf("unexpected expr %T", e))
	}
}

// FoldAssignee is the default assignee fold.
func FoldAssignee(f Folder, a Assignee) Assignee {
	switch a := a.(type) {
	case *VarAssignee:
		return &VarAssignee{Var: f.FoldVariable(a.Var)}
	case *SelectAssignee:
		return &SelectAssignee{Assignee: f.FoldAssignee(a.Assignee), Index: f.FoldExpr(a.Index)}
	case *MemberAssignee:
		return &MemberAssignee{Assignee: f.FoldAssignee(a.Assignee), Field: a.Field}
	default:
		panic(fmt.Sprintf("unexpected assignee %T", a))
	}
}

// FoldVariable is the default variable fold.
func FoldVariable(f Folder, v Variable) Variable {
	return Variable{ID: f.FoldIdent(v.ID), Type: f.FoldType(v.Type)}
}

// FoldIdent is the default identifier fold, the identity.
func FoldIdent(_ Folder, id Identifier) Identifier { return id }

// FoldType is the default type fold: array sizes are expressions and get
// folded like any other.
func FoldType(f Folder, t *Type) *Type {
	switch t.Kind {
	case types.FieldElement, types.Boolean, types.Uint:
		return t
	case types.Array:
		size := t.Size
		if size.E != nil {
			size = Dim{E: f.FoldExpr(size.E)}
		}
		return types.ArrayType(f.FoldType(t.Elem), size)
	case types.Struct:
		members := make([]Member, len(t.Members))
		for i, m := range t.Members {
			members[i] = Member{ID: m.ID, Type: f.FoldType(m.Type)}
		}
		return types.StructType(t.Module, t.Name, members)
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

func foldExprs(f Folder, es []Expr) []Expr {
	res := make([]Expr, len(es))
	for i, e := range es {
		res[i] = f.FoldExpr(e)
	}
	return res
}
