package ast

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/calyx-zk/calyx/lang/types"
)

// An ErrFolder is the fallible counterpart of Folder: every fold may fail,
// and folding short-circuits on the first error at statement granularity.
type ErrFolder interface {
	ErrFoldProgram(*Program) (*Program, error)
	ErrFoldModule(*Module) (*Module, error)
	ErrFoldFunction(*Function) (*Function, error)
	ErrFoldStmt(Stmt) ([]Stmt, error)
	ErrFoldExpr(Expr) (Expr, error)
	ErrFoldAssignee(Assignee) (Assignee, error)
	ErrFoldVariable(Variable) (Variable, error)
	ErrFoldIdent(Identifier) (Identifier, error)
	ErrFoldType(*Type) (*Type, error)
}

// ErrFoldProgram is the default fallible program fold.
func ErrFoldProgram(f ErrFolder, p *Program) (*Program, error) {
	ids := maps.Keys(p.Modules)
	slices.Sort(ids)

	modules := make(map[ModuleID]*Module, len(p.Modules))
	for _, id := range ids {
		m, err := f.ErrFoldModule(p.Modules[id])
		if err != nil {
			return nil, err
		}
		modules[id] = m
	}
	return &Program{Main: p.Main, Modules: modules}, nil
}

// ErrFoldModule is the default fallible module fold.
func ErrFoldModule(f ErrFolder, m *Module) (*Module, error) {
	symbols := make([]*SymbolDecl, len(m.Symbols))
	for i, d := range m.Symbols {
		sym := d.Symbol
		if h, ok := sym.(*Here); ok {
			fn, err := f.ErrFoldFunction(h.Fn)
			if err != nil {
				return nil, err
			}
			sym = &Here{Fn: fn}
		}
		symbols[i] = &SymbolDecl{Key: d.Key, Symbol: sym}
	}
	return &Module{Symbols: symbols}, nil
}

// ErrFoldFunction is the default fallible function fold.
func ErrFoldFunction(f ErrFolder, fn *Function) (*Function, error) {
	args := make([]Parameter, len(fn.Arguments))
	for i, p := range fn.Arguments {
		v, err := f.ErrFoldVariable(p.Variable)
		if err != nil {
			return nil, err
		}
		args[i] = Parameter{Variable: v, Private: p.Private}
	}
	var stmts []Stmt
	for _, s := range fn.Statements {
		fs, err := f.ErrFoldStmt(s)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, fs...)
	}
	return &Function{Arguments: args, Statements: stmts, Signature: fn.Signature}, nil
}

// ErrFoldStmt is the default fallible statement fold.
func ErrFoldStmt(f ErrFolder, s Stmt) ([]Stmt, error) {
	switch s := s.(type) {
	case *ReturnStmt:
		exprs, err := errFoldExprs(f, s.Exprs)
		if err != nil {
			return nil, err
		}
		return []Stmt{&ReturnStmt{Exprs: exprs}}, nil

	case *DefStmt:
		var rhs Rhs
		switch r := s.Rhs.(type) {
		case *ExprRhs:
			e, err := f.ErrFoldExpr(r.E)
			if err != nil {
				return nil, err
			}
			rhs = &ExprRhs{E: e}
		case *EmbedCall:
			args, err := errFoldExprs(f, r.Args)
			if err != nil {
				return nil, err
			}
			rhs = &EmbedCall{Embed: r.Embed, Generics: r.Generics, Args: args}
		default:
			panic(fmt.Sprintf("unexpected rhs %T", s.Rhs))
		}
		a, err := f.ErrFoldAssignee(s.Assignee)
		if err != nil {
			return nil, err
		}
		return []Stmt{&DefStmt{Assignee: a, Rhs: rhs}}, nil

	case *MultiDefStmt:
		vars := make([]Variable, len(s.Vars))
		for i, v := range s.Vars {
			fv, err := f.ErrFoldVariable(v)
			if err != nil {
				return nil, err
			}
			vars[i] = fv
		}
		args, err := errFoldExprs(f, s.Call.Args)
		if err != nil {
			return nil, err
		}
		tys := make([]*Type, len(s.Call.Types))
		for i, t := range s.Call.Types {
			ft, err := f.ErrFoldType(t)
			if err != nil {
				return nil, err
			}
			tys[i] = ft
		}
		return []Stmt{&MultiDefStmt{
			Vars: vars,
			Call: CallList{Key: s.Call.Key, Args: args, Types: tys},
		}}, nil

	case *ForStmt:
		v, err := f.ErrFoldVariable(s.Var)
		if err != nil {
			return nil, err
		}
		from, err := f.ErrFoldExpr(s.From)
		if err != nil {
			return nil, err
		}
		to, err := f.ErrFoldExpr(s.To)
		if err != nil {
			return nil, err
		}
		var body []Stmt
		for _, bs := range s.Body {
			fs, err := f.ErrFoldStmt(bs)
			if err != nil {
				return nil, err
			}
			body = append(body, fs...)
		}
		return []Stmt{&ForStmt{Var: v, From: from, To: to, Body: body}}, nil

	case *AssertStmt:
		cond, err := f.ErrFoldExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		return []Stmt{&AssertStmt{Cond: cond}}, nil

	default:
		panic(fmt.Sprintf("unexpected stmt %T", s))
	}
}

// ErrFoldExpr is the default fallible expression fold.
func ErrFoldExpr(f ErrFolder, e Expr) (Expr, error) {
	switch e := e.(type) {
	case *Ident:
		id, err := f.ErrFoldIdent(e.Id)
		if err != nil {
			return nil, err
		}
		ty, err := f.ErrFoldType(e.Ty)
		if err != nil {
			return nil, err
		}
		return &Ident{Id: id, Ty: ty}, nil
	case *FieldLit, *BoolLit, *ULit:
		return e, nil
	case *BinExpr:
		l, err := f.ErrFoldExpr(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := f.ErrFoldExpr(e.Right)
		if err != nil {
			return nil, err
		}
		ty, err := f.ErrFoldType(e.Ty)
		if err != nil {
			return nil, err
		}
		return &BinExpr{Op: e.Op, Left: l, Right: r, Ty: ty}, nil
	case *UnExpr:
		x, err := f.ErrFoldExpr(e.E)
		if err != nil {
			return nil, err
		}
		ty, err := f.ErrFoldType(e.Ty)
		if err != nil {
			return nil, err
		}
		return &UnExpr{Op: e.Op, E: x, Ty: ty}, nil
	case *CondExpr:
		cond, err := f.ErrFoldExpr(e.Cond)
		if err != nil {
			return nil, err
		}
		tt, err := f.ErrFoldExpr(e.True)
		if err != nil {
			return nil, err
		}
		ff, err := f.ErrFoldExpr(e.False)
		if err != nil {
			return nil, err
		}
		ty, err := f.ErrFoldType(e.Ty)
		if err != nil {
			return nil, err
		}
		return &CondExpr{Cond: cond, True: tt, False: ff, Ty: ty}, nil
	case *ArrayLit:
		elems, err := errFoldExprs(f, e.Elems)
		if err != nil {
			return nil, err
		}
		ty, err := f.ErrFoldType(e.Ty)
		if err != nil {
			return nil, err
		}
		return &ArrayLit{Elems: elems, Ty: ty}, nil
	case *SelectExpr:
		arr, err := f.ErrFoldExpr(e.Array)
		if err != nil {
			return nil, err
		}
		ix, err := f.ErrFoldExpr(e.Index)
		if err != nil {
			return nil, err
		}
		ty, err := f.ErrFoldType(e.Ty)
		if err != nil {
			return nil, err
		}
		return &SelectExpr{Array: arr, Index: ix, Ty: ty}, nil
	case *StructLit:
		vals, err := errFoldExprs(f, e.Values)
		if err != nil {
			return nil, err
		}
		ty, err := f.ErrFoldType(e.Ty)
		if err != nil {
			return nil, err
		}
		return &StructLit{Values: vals, Ty: ty}, nil
	case *MemberExpr:
		st, err := f.ErrFoldExpr(e.Struct)
		if err != nil {
			return nil, err
		}
		ty, err := f.ErrFoldType(e.Ty)
		if err != nil {
			return nil, err
		}
		return &MemberExpr{Struct: st, Field: e.Field, Ty: ty}, nil
	case *CallExpr:
		args, err := errFoldExprs(f, e.Args)
		if err != nil {
			return nil, err
		}
		ty, err := f.ErrFoldType(e.Ty)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Key: e.Key, Args: args, Ty: ty}, nil
	default:
		panic(fmt.Sprintf("unexpected expr %T", e))
	}
}

// ErrFoldAssignee is the default fallible assignee fold.
func ErrFoldAssignee(f ErrFolder, a Assignee) (Assignee, error) {
	switch a := a.(type) {
	case *VarAssignee:
		v, err := f.ErrFoldVariable(a.Var)
		if err != nil {
			return nil, err
		}
		return &VarAssignee{Var: v}, nil
	case *SelectAssignee:
		inner, err := f.ErrFoldAssignee(a.Assignee)
		if err != nil {
			return nil, err
		}
		ix, err := f.ErrFoldExpr(a.Index)
		if err != nil {
			return nil, err
		}
		return &SelectAssignee{Assignee: inner, Index: ix}, nil
	case *MemberAssignee:
		inner, err := f.ErrFoldAssignee(a.Assignee)
		if err != nil {
			return nil, err
		}
		return &MemberAssignee{Assignee: inner, Field: a.Field}, nil
	default:
		panic(fmt.Sprintf("unexpected assignee %T", a))
	}
}

// ErrFoldVariable is the default fallible variable fold.
func ErrFoldVariable(f ErrFolder, v Variable) (Variable, error) {
	id, err := f.ErrFoldIdent(v.ID)
	if err != nil {
		return Variable{}, err
	}
	ty, err := f.ErrFoldType(v.Type)
	if err != nil {
		return Variable{}, err
	}
	return Variable{ID: id, Type: ty}, nil
}

// ErrFoldIdent is the default fallible identifier fold, the identity.
func ErrFoldIdent(_ ErrFolder, id Identifier) (Identifier, error) { return id, nil }

// ErrFoldType is the default fallible type fold.
func ErrFoldType(f ErrFolder, t *Type) (*Type, error) {
	switch t.Kind {
	case types.FieldElement, types.Boolean, types.Uint:
		return t, nil
	case types.Array:
		size := t.Size
		if size.E != nil {
			e, err := f.ErrFoldExpr(size.E)
			if err != nil {
				return nil, err
			}
			size = Dim{E: e}
		}
		elem, err := f.ErrFoldType(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.ArrayType(elem, size), nil
	case types.Struct:
		members := make([]Member, len(t.Members))
		for i, m := range t.Members {
			mt, err := f.ErrFoldType(m.Type)
			if err != nil {
				return nil, err
			}
			members[i] = Member{ID: m.ID, Type: mt}
		}
		return types.StructType(t.Module, t.Name, members), nil
	default:
		panic(fmt.Sprintf("unexpected type kind %d", t.Kind))
	}
}

func errFoldExprs(f ErrFolder, es []Expr) ([]Expr, error) {
	res := make([]Expr, len(es))
	for i, e := range es {
		fe, err := f.ErrFoldExpr(e)
		if err != nil {
			return nil, err
		}
		res[i] = fe
	}
	return res, nil
}
