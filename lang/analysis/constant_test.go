package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calyx-zk/calyx/lang/analysis"
	"github.com/calyx-zk/calyx/lang/ast"
	"github.com/calyx-zk/calyx/lang/types"
)

func singleStmtProgram(s ast.Stmt) *ast.Program {
	return &ast.Program{
		Main: "main",
		Modules: map[ast.ModuleID]*ast.Module{
			"main": {Symbols: []*ast.SymbolDecl{
				{Key: declKeyFF("main"), Symbol: &ast.Here{Fn: &ast.Function{
					Arguments:  []ast.Parameter{fieldParam("a")},
					Statements: []ast.Stmt{s, &ast.ReturnStmt{Exprs: []ast.Expr{ident("a")}}},
					Signature:  declSigFF(),
				}}},
			}},
		},
	}
}

func TestCheckConstantArguments(t *testing.T) {
	boolTy := types.BoolType[ast.Dim]()
	bitArray := func(elems ...ast.Expr) *ast.ArrayLit {
		return &ast.ArrayLit{Elems: elems, Ty: types.ArrayType(boolTy, ast.Dim{E: &ast.ULit{Value: uint64(len(elems)), Bitwidth: types.B32}})}
	}
	rVar := ast.Variable{ID: ast.Identifier{ID: ast.Name("r")}, Type: boolTy}
	xs := &ast.Ident{Id: ast.Identifier{ID: ast.Name("x")}, Ty: bitArray(&ast.BoolLit{}).Ty}

	embedDef := func(embed ast.Embed, second ast.Expr) *ast.DefStmt {
		return &ast.DefStmt{
			Assignee: &ast.VarAssignee{Var: rVar},
			Rhs:      &ast.EmbedCall{Embed: embed, Args: []ast.Expr{xs, second}},
		}
	}

	cases := []struct {
		desc string
		in   ast.Stmt
		err  string
	}{
		{"bit array compare to constant", embedDef(ast.BitArrayLe,
			bitArray(&ast.BoolLit{Value: true}, &ast.BoolLit{Value: false})), ""},
		{"bit array compare to variable", embedDef(ast.BitArrayLe,
			&ast.Ident{Id: ast.Identifier{ID: ast.Name("y")}, Ty: xs.Ty}),
			"Cannot compare to a variable value, found `y`"},
		{"bit array compare to partially variable array", embedDef(ast.BitArrayLe,
			bitArray(&ast.BoolLit{Value: true}, &ast.Ident{Id: ast.Identifier{ID: ast.Name("y")}, Ty: boolTy})),
			"Cannot compare to a variable value"},
		{"other embeds accept variables", embedDef(ast.Sha256Round,
			&ast.Ident{Id: ast.Identifier{ID: ast.Name("y")}, Ty: xs.Ty}), ""},
		{"plain definitions pass", defStmt(ast.FieldVariable("b"), ident("a")), ""},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			in := singleStmtProgram(c.in)
			out, err := analysis.CheckConstantArguments(in)
			if c.err != "" {
				require.ErrorContains(t, err, c.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, in, out)
		})
	}
}
