package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calyx-zk/calyx/lang/analysis"
	"github.com/calyx-zk/calyx/lang/ast"
	"github.com/calyx-zk/calyx/lang/types"
)

// declaration and typed helpers for the ubiquitous field -> field shape

func declField() *types.DeclarationType { return types.FieldType[types.Constant]() }

func declSigFF() types.DeclarationSignature {
	return types.DeclarationSignature{
		Inputs:  []*types.DeclarationType{declField()},
		Outputs: []*types.DeclarationType{declField()},
	}
}

func declKeyFF(id string) types.DeclarationFunctionKey {
	return types.DeclarationFunctionKey{ID: id, Signature: declSigFF()}
}

func concKeyFF(id string) types.ConcreteFunctionKey {
	ck, err := types.ConcreteFromDeclarationKey(declKeyFF(id))
	if err != nil {
		panic(err)
	}
	return ck
}

func typedKeyFF(id string) ast.FunctionKey {
	return ast.KeyFromConcrete(concKeyFF(id))
}

func fieldTy() *ast.Type { return types.FieldType[ast.Dim]() }

func ident(name string) *ast.Ident {
	return &ast.Ident{Id: ast.Identifier{ID: ast.Name(name)}, Ty: fieldTy()}
}

func stackedIdent(name string, stack ...ast.Frame) *ast.Ident {
	return &ast.Ident{Id: ast.Identifier{ID: ast.Name(name), Stack: stack}, Ty: fieldTy()}
}

func fieldParam(name string) ast.Parameter {
	return ast.Parameter{Variable: ast.FieldVariable(name), Private: true}
}

func defStmt(v ast.Variable, e ast.Expr) *ast.DefStmt {
	return &ast.DefStmt{Assignee: &ast.VarAssignee{Var: v}, Rhs: &ast.ExprRhs{E: e}}
}

func stackedVar(name string, stack ...ast.Frame) ast.Variable {
	return ast.Variable{ID: ast.Identifier{ID: ast.Name(name), Stack: stack}, Type: fieldTy()}
}

func add(l, r ast.Expr) *ast.BinExpr {
	return &ast.BinExpr{Op: ast.Add, Left: l, Right: r, Ty: fieldTy()}
}

func mul(l, r ast.Expr) *ast.BinExpr {
	return &ast.BinExpr{Op: ast.Mul, Left: l, Right: r, Ty: fieldTy()}
}

func call(id string, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{Key: typedKeyFF(id), Args: args, Ty: fieldTy()}
}

// identityFn is `def <id>(a) -> field: return a`.
func identityFn() *ast.Function {
	return &ast.Function{
		Arguments:  []ast.Parameter{fieldParam("a")},
		Statements: []ast.Stmt{&ast.ReturnStmt{Exprs: []ast.Expr{ident("a")}}},
		Signature:  declSigFF(),
	}
}

func mainStatements(t *testing.T, res analysis.InlineResult) []ast.Stmt {
	t.Helper()

	require.Len(t, res.Program.Modules, 1)
	mod := res.Program.Modules[res.Program.Main]
	require.NotNil(t, mod)
	for _, d := range mod.Symbols {
		if d.Key.ID == "main" {
			return d.Symbol.(*ast.Here).Fn.Statements
		}
	}
	t.Fatal("no main function in the inlined program")
	return nil
}

func TestInlineMemoizeLocalCall(t *testing.T) {
	// def foo(a) -> field: return a
	// def main(a) -> field:
	//     b = foo(a) + foo(a)
	//     return b
	//
	// the second call must reuse the first expansion: a single parameter
	// binding is emitted
	program := &ast.Program{
		Main: "main",
		Modules: map[ast.ModuleID]*ast.Module{
			"main": {Symbols: []*ast.SymbolDecl{
				{Key: declKeyFF("main"), Symbol: &ast.Here{Fn: &ast.Function{
					Arguments: []ast.Parameter{fieldParam("a")},
					Statements: []ast.Stmt{
						defStmt(ast.FieldVariable("b"), add(call("foo", ident("a")), call("foo", ident("a")))),
						&ast.ReturnStmt{Exprs: []ast.Expr{ident("b")}},
					},
					Signature: declSigFF(),
				}}},
				{Key: declKeyFF("foo"), Symbol: &ast.Here{Fn: identityFn()}},
			}},
		},
	}

	res := analysis.Inline(program)
	require.True(t, res.Complete())

	frame := ast.Frame{Module: "main", Key: concKeyFF("foo"), Count: 1}
	want := []ast.Stmt{
		defStmt(stackedVar("a", frame), ident("a")),
		defStmt(ast.FieldVariable("b"), add(stackedIdent("a", frame), stackedIdent("a", frame))),
		&ast.ReturnStmt{Exprs: []ast.Expr{ident("b")}},
	}
	require.Equal(t, want, mainStatements(t, res))
}

func TestInlineNoMemoizationAcrossCallers(t *testing.T) {
	// def foo(a) -> field: return a
	// def bar(a) -> field: return foo(a)
	// def main(a) -> field:
	//     b = foo(a) + bar(a)
	//     return b
	//
	// the cache is scoped to the caller's location: main's direct call to
	// foo and bar's call to foo each get their own expansion
	program := &ast.Program{
		Main: "main",
		Modules: map[ast.ModuleID]*ast.Module{
			"main": {Symbols: []*ast.SymbolDecl{
				{Key: declKeyFF("main"), Symbol: &ast.Here{Fn: &ast.Function{
					Arguments: []ast.Parameter{fieldParam("a")},
					Statements: []ast.Stmt{
						defStmt(ast.FieldVariable("b"), add(call("foo", ident("a")), call("bar", ident("a")))),
						&ast.ReturnStmt{Exprs: []ast.Expr{ident("b")}},
					},
					Signature: declSigFF(),
				}}},
				{Key: declKeyFF("foo"), Symbol: &ast.Here{Fn: identityFn()}},
				{Key: declKeyFF("bar"), Symbol: &ast.Here{Fn: &ast.Function{
					Arguments:  []ast.Parameter{fieldParam("a")},
					Statements: []ast.Stmt{&ast.ReturnStmt{Exprs: []ast.Expr{call("foo", ident("a"))}}},
					Signature:  declSigFF(),
				}}},
			}},
		},
	}

	res := analysis.Inline(program)
	require.True(t, res.Complete())

	fooDirect := ast.Frame{Module: "main", Key: concKeyFF("foo"), Count: 1}
	bar := ast.Frame{Module: "main", Key: concKeyFF("bar"), Count: 1}
	fooInBar := ast.Frame{Module: "main", Key: concKeyFF("foo"), Count: 2}

	want := []ast.Stmt{
		defStmt(stackedVar("a", fooDirect), ident("a")),
		defStmt(stackedVar("a", bar), ident("a")),
		defStmt(stackedVar("a", bar, fooInBar), stackedIdent("a", bar)),
		defStmt(ast.FieldVariable("b"), add(stackedIdent("a", fooDirect), stackedIdent("a", bar, fooInBar))),
		&ast.ReturnStmt{Exprs: []ast.Expr{ident("b")}},
	}
	require.Equal(t, want, mainStatements(t, res))
}

func TestInlineCallOtherModule(t *testing.T) {
	// main module re-exports foo from the foo module; the inlined frame
	// carries the target module
	program := &ast.Program{
		Main: "main",
		Modules: map[ast.ModuleID]*ast.Module{
			"main": {Symbols: []*ast.SymbolDecl{
				{Key: declKeyFF("main"), Symbol: &ast.Here{Fn: &ast.Function{
					Arguments: []ast.Parameter{fieldParam("a")},
					Statements: []ast.Stmt{
						&ast.ReturnStmt{Exprs: []ast.Expr{mul(ident("a"), call("foo", ident("a")))}},
					},
					Signature: declSigFF(),
				}}},
				{Key: declKeyFF("foo"), Symbol: &ast.There{Key: declKeyFF("foo"), Module: "foo"}},
			}},
			"foo": {Symbols: []*ast.SymbolDecl{
				{Key: declKeyFF("foo"), Symbol: &ast.Here{Fn: &ast.Function{
					Arguments:  []ast.Parameter{fieldParam("a")},
					Statements: []ast.Stmt{&ast.ReturnStmt{Exprs: []ast.Expr{mul(ident("a"), ident("a"))}}},
					Signature:  declSigFF(),
				}}},
			}},
		},
	}

	res := analysis.Inline(program)
	require.True(t, res.Complete())
	require.Len(t, res.Program.Modules, 1)

	frame := ast.Frame{Module: "foo", Key: concKeyFF("foo"), Count: 1}
	want := []ast.Stmt{
		defStmt(stackedVar("a", frame), ident("a")),
		&ast.ReturnStmt{Exprs: []ast.Expr{
			mul(ident("a"), mul(stackedIdent("a", frame), stackedIdent("a", frame))),
		}},
	}
	require.Equal(t, want, mainStatements(t, res))
}

func TestInlineBlockedOnUnroll(t *testing.T) {
	loop := &ast.ForStmt{
		Var:  ast.Variable{ID: ast.Identifier{ID: ast.Name("i")}, Type: types.UintType[ast.Dim](types.B32)},
		From: &ast.ULit{Value: 0, Bitwidth: types.B32},
		To:   &ast.ULit{Value: 4, Bitwidth: types.B32},
		Body: []ast.Stmt{&ast.AssertStmt{Cond: &ast.BoolLit{Value: true}}},
	}
	program := &ast.Program{
		Main: "main",
		Modules: map[ast.ModuleID]*ast.Module{
			"main": {Symbols: []*ast.SymbolDecl{
				{Key: declKeyFF("main"), Symbol: &ast.Here{Fn: &ast.Function{
					Arguments:  []ast.Parameter{fieldParam("a")},
					Statements: []ast.Stmt{loop, &ast.ReturnStmt{Exprs: []ast.Expr{ident("a")}}},
					Signature:  declSigFF(),
				}}},
			}},
		},
	}

	res := analysis.Inline(program)
	require.False(t, res.Complete())
	require.Equal(t, analysis.BlockedUnroll, res.Reason)

	// the loop is left in place for the unroll pass
	stmts := mainStatements(t, res)
	require.Len(t, stmts, 2)
	require.Equal(t, loop, stmts[0])
}

func TestInlineBlockedOnNonConstantGenerics(t *testing.T) {
	// the callee takes an array of symbolic size: the key cannot be reduced
	// to a concrete key, so the call stays and the pass reports a block on
	// generic propagation
	symSize := ast.Dim{E: &ast.Ident{Id: ast.Identifier{ID: ast.Name("N")}, Ty: types.UintType[ast.Dim](types.B32)}}
	arrTy := types.ArrayType(fieldTy(), symSize)
	genericKey := ast.FunctionKey{
		ID: "sum",
		Signature: ast.Signature{
			Inputs:  []*ast.Type{arrTy},
			Outputs: []*ast.Type{fieldTy()},
		},
	}
	genericCall := &ast.MultiDefStmt{
		Vars: []ast.Variable{ast.FieldVariable("s")},
		Call: ast.CallList{
			Key:   genericKey,
			Args:  []ast.Expr{&ast.Ident{Id: ast.Identifier{ID: ast.Name("xs")}, Ty: arrTy}},
			Types: []*ast.Type{fieldTy()},
		},
	}

	program := &ast.Program{
		Main: "main",
		Modules: map[ast.ModuleID]*ast.Module{
			"main": {Symbols: []*ast.SymbolDecl{
				{Key: declKeyFF("main"), Symbol: &ast.Here{Fn: &ast.Function{
					Arguments:  []ast.Parameter{fieldParam("a")},
					Statements: []ast.Stmt{genericCall, &ast.ReturnStmt{Exprs: []ast.Expr{ident("s")}}},
					Signature:  declSigFF(),
				}}},
			}},
		},
	}

	res := analysis.Inline(program)
	require.False(t, res.Complete())
	require.Equal(t, analysis.BlockedInline, res.Reason)

	stmts := mainStatements(t, res)
	require.Len(t, stmts, 2)
	multi, ok := stmts[0].(*ast.MultiDefStmt)
	require.True(t, ok)
	require.Equal(t, "sum", multi.Call.Key.ID)
}

func TestInlineHoistsEmbedCalls(t *testing.T) {
	// two unpack calls with different arguments each get a hoisted
	// definition with a distinct version; only embed calls remain
	unpackKey := ast.Unpack.Key()
	unpackDecl := types.DeclarationFromConcreteKey(unpackKey)
	bitsTy := ast.TypeFromConcrete(unpackKey.Signature.Outputs[0])

	unpackCall := func(arg string) *ast.CallExpr {
		return &ast.CallExpr{
			Key:  ast.KeyFromConcrete(unpackKey),
			Args: []ast.Expr{ident(arg)},
			Ty:   bitsTy,
		}
	}
	bitsVar := func(name string) ast.Variable {
		return ast.Variable{ID: ast.Identifier{ID: ast.Name(name)}, Type: bitsTy}
	}

	mainSig := types.DeclarationSignature{
		Inputs:  []*types.DeclarationType{declField(), declField()},
		Outputs: []*types.DeclarationType{declField()},
	}
	program := &ast.Program{
		Main: "main",
		Modules: map[ast.ModuleID]*ast.Module{
			"main": {Symbols: []*ast.SymbolDecl{
				{Key: types.DeclarationFunctionKey{ID: "main", Signature: mainSig}, Symbol: &ast.Here{Fn: &ast.Function{
					Arguments: []ast.Parameter{fieldParam("x"), fieldParam("y")},
					Statements: []ast.Stmt{
						defStmt(bitsVar("bx"), unpackCall("x")),
						defStmt(bitsVar("by"), unpackCall("y")),
						&ast.ReturnStmt{Exprs: []ast.Expr{ident("x")}},
					},
					Signature: mainSig,
				}}},
				{Key: unpackDecl, Symbol: &ast.Flat{Embed: ast.Unpack}},
			}},
		},
	}

	res := analysis.Inline(program)
	require.True(t, res.Complete())

	stmts := mainStatements(t, res)
	require.Len(t, stmts, 5)

	first, ok := stmts[0].(*ast.MultiDefStmt)
	require.True(t, ok)
	second, ok := stmts[2].(*ast.MultiDefStmt)
	require.True(t, ok)

	// both hoisted definitions target the embed
	require.Equal(t, unpackKey.Slug(), first.Call.Key.Slug())
	require.Equal(t, unpackKey.Slug(), second.Call.Key.Slug())

	// their result identifiers are unique across call sites
	require.Equal(t, uint32(1), first.Vars[0].ID.Version)
	require.Equal(t, uint32(2), second.Vars[0].ID.Version)
	require.False(t, first.Vars[0].ID.Equals(second.Vars[0].ID))

	// the call sites reference the hoisted results
	def1, ok := stmts[1].(*ast.DefStmt)
	require.True(t, ok)
	require.Equal(t, first.Vars[0].ID, def1.Rhs.(*ast.ExprRhs).E.(*ast.Ident).Id)
}

func TestInlineMemoizesEmbedCalls(t *testing.T) {
	// the same unpack call twice: a single hoisted definition, both sites
	// reference the same identifier
	unpackKey := ast.Unpack.Key()
	unpackDecl := types.DeclarationFromConcreteKey(unpackKey)
	bitsTy := ast.TypeFromConcrete(unpackKey.Signature.Outputs[0])
	boolTy := types.BoolType[ast.Dim]()

	unpackBit := func() ast.Expr {
		return &ast.SelectExpr{
			Array: &ast.CallExpr{Key: ast.KeyFromConcrete(unpackKey), Args: []ast.Expr{ident("x")}, Ty: bitsTy},
			Index: &ast.ULit{Value: 0, Bitwidth: types.B32},
			Ty:    boolTy,
		}
	}

	mainSig := declSigFF()
	program := &ast.Program{
		Main: "main",
		Modules: map[ast.ModuleID]*ast.Module{
			"main": {Symbols: []*ast.SymbolDecl{
				{Key: types.DeclarationFunctionKey{ID: "main", Signature: mainSig}, Symbol: &ast.Here{Fn: &ast.Function{
					Arguments: []ast.Parameter{fieldParam("x")},
					Statements: []ast.Stmt{
						&ast.AssertStmt{Cond: &ast.BinExpr{Op: ast.Eq, Left: unpackBit(), Right: unpackBit(), Ty: boolTy}},
						&ast.ReturnStmt{Exprs: []ast.Expr{ident("x")}},
					},
					Signature: mainSig,
				}}},
				{Key: unpackDecl, Symbol: &ast.Flat{Embed: ast.Unpack}},
			}},
		},
	}

	res := analysis.Inline(program)
	require.True(t, res.Complete())

	stmts := mainStatements(t, res)
	require.Len(t, stmts, 3)

	var hoisted int
	for _, s := range stmts {
		if _, ok := s.(*ast.MultiDefStmt); ok {
			hoisted++
		}
	}
	require.Equal(t, 1, hoisted)

	assert, ok := stmts[1].(*ast.AssertStmt)
	require.True(t, ok)
	eq := assert.Cond.(*ast.BinExpr)
	l := eq.Left.(*ast.SelectExpr).Array.(*ast.Ident)
	r := eq.Right.(*ast.SelectExpr).Array.(*ast.Ident)
	require.True(t, l.Id.Equals(r.Id))
}

func TestInlineProgressIsMonotone(t *testing.T) {
	build := func(calls int) *ast.Program {
		var stmts []ast.Stmt
		var e ast.Expr = ident("a")
		for i := 0; i < calls; i++ {
			e = call("foo", e)
		}
		stmts = append(stmts,
			defStmt(ast.FieldVariable("b"), e),
			&ast.ReturnStmt{Exprs: []ast.Expr{ident("b")}},
		)
		return &ast.Program{
			Main: "main",
			Modules: map[ast.ModuleID]*ast.Module{
				"main": {Symbols: []*ast.SymbolDecl{
					{Key: declKeyFF("main"), Symbol: &ast.Here{Fn: &ast.Function{
						Arguments:  []ast.Parameter{fieldParam("a")},
						Statements: stmts,
						Signature:  declSigFF(),
					}}},
					{Key: declKeyFF("foo"), Symbol: &ast.Here{Fn: identityFn()}},
				}},
			},
		}
	}

	small := analysis.Inline(build(1))
	large := analysis.Inline(build(3))
	require.Greater(t, large.Progress, small.Progress)
}
