// Package analysis implements the middle-end passes over the typed tree:
// the constant-argument checker and the inliner. Each pass is a folder over
// the program; all of its state lives on the pass value and dies with it.
package analysis

import (
	"fmt"

	"github.com/calyx-zk/calyx/lang/ast"
)

// A ConstantArgumentError reports an intrinsic call that requires a literal
// constant argument but received a variable expression.
type ConstantArgumentError struct {
	Msg string
}

func (e *ConstantArgumentError) Error() string { return e.Msg }

// CheckConstantArguments validates that every embed call receives literal
// constants at the positions the protocol requires: the right-hand side of
// a bit-array comparison must be constant. All other statements pass
// through unchanged.
func CheckConstantArguments(p *ast.Program) (*ast.Program, error) {
	var c constantArgumentChecker
	return c.ErrFoldProgram(p)
}

type constantArgumentChecker struct{}

// ErrFoldStmt checks embed-call definitions; everything else takes the
// default fold.
func (c *constantArgumentChecker) ErrFoldStmt(s ast.Stmt) ([]ast.Stmt, error) {
	def, ok := s.(*ast.DefStmt)
	if !ok {
		return ast.ErrFoldStmt(c, s)
	}
	call, ok := def.Rhs.(*ast.EmbedCall)
	if !ok || call.Embed != ast.BitArrayLe {
		return ast.ErrFoldStmt(c, s)
	}

	args := make([]ast.Expr, len(call.Args))
	for i, a := range call.Args {
		fa, err := c.ErrFoldExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = fa
	}
	if !args[1].IsConstant() {
		return nil, &ConstantArgumentError{
			Msg: fmt.Sprintf("Cannot compare to a variable value, found `%s`", args[1]),
		}
	}

	assignee, err := c.ErrFoldAssignee(def.Assignee)
	if err != nil {
		return nil, err
	}
	return []ast.Stmt{&ast.DefStmt{
		Assignee: assignee,
		Rhs:      &ast.EmbedCall{Embed: call.Embed, Generics: call.Generics, Args: args},
	}}, nil
}

func (c *constantArgumentChecker) ErrFoldProgram(p *ast.Program) (*ast.Program, error) {
	return ast.ErrFoldProgram(c, p)
}

func (c *constantArgumentChecker) ErrFoldModule(m *ast.Module) (*ast.Module, error) {
	return ast.ErrFoldModule(c, m)
}

func (c *constantArgumentChecker) ErrFoldFunction(fn *ast.Function) (*ast.Function, error) {
	return ast.ErrFoldFunction(c, fn)
}

func (c *constantArgumentChecker) ErrFoldExpr(e ast.Expr) (ast.Expr, error) {
	return ast.ErrFoldExpr(c, e)
}

func (c *constantArgumentChecker) ErrFoldAssignee(a ast.Assignee) (ast.Assignee, error) {
	return ast.ErrFoldAssignee(c, a)
}

func (c *constantArgumentChecker) ErrFoldVariable(v ast.Variable) (ast.Variable, error) {
	return ast.ErrFoldVariable(c, v)
}

func (c *constantArgumentChecker) ErrFoldIdent(id ast.Identifier) (ast.Identifier, error) {
	return ast.ErrFoldIdent(c, id)
}

func (c *constantArgumentChecker) ErrFoldType(t *ast.Type) (*ast.Type, error) {
	return ast.ErrFoldType(c, t)
}
