// Package ir defines the flat intermediate representation consumed by the
// proving backends: a program envelope (arguments and return count) over a
// stream of constraint statements, plus the solver table referenced by
// witness-generation directives. The package also implements the versioned
// binary container that serializes the stream.
package ir

import (
	"fmt"
	"strings"

	"github.com/calyx-zk/calyx/lang/field"
)

// A Variable is a wire of the constraint system, identified by a signed
// integer. Id 0 is the constant one; negative ids denote the program's
// outputs.
type Variable int64

// One is the constant-one variable.
const One Variable = 0

// Public returns the variable of the i-th program output.
func Public(i int) Variable { return Variable(-(i + 1)) }

// IsOutput reports whether the variable is a program output.
func (v Variable) IsOutput() bool { return v < 0 }

func (v Variable) String() string {
	switch {
	case v == One:
		return "~one"
	case v < 0:
		return fmt.Sprintf("~out_%d", -v-1)
	default:
		return fmt.Sprintf("_%d", int64(v))
	}
}

// A Term is one weighted variable of a linear combination.
type Term struct {
	Variable    Variable
	Coefficient field.Element
}

// A LinComb is a sparse weighted sum of variables.
type LinComb []Term

// LinCombOf returns the linear combination 1*v over the given curve.
func LinCombOf(c field.Curve, v Variable) LinComb {
	return LinComb{{Variable: v, Coefficient: c.One()}}
}

func (lc LinComb) String() string {
	if len(lc) == 0 {
		return "0"
	}
	terms := make([]string, len(lc))
	for i, t := range lc {
		terms[i] = fmt.Sprintf("%s * %s", t.Coefficient, t.Variable)
	}
	return strings.Join(terms, " + ")
}

// A Statement is one record of the flat program stream.
type Statement interface {
	fmt.Stringer
	irStmt()
}

type (
	// Constraint is a single R1CS-style equation between two linear
	// combinations. Only constraints are counted by serialization.
	Constraint struct {
		Left, Right LinComb
	}

	// Directive is a witness-generation hint: the referenced solver computes
	// the outputs from the input combinations. Directives do not constrain.
	Directive struct {
		Inputs  []LinComb
		Solver  SolverRef
		Outputs []Variable
	}

	// Block groups statements; a maintenance form kept for stream tooling.
	Block struct {
		Inner []Statement
	}
)

func (*Constraint) irStmt() {}
func (*Directive) irStmt()  {}
func (*Block) irStmt()      {}

func (s *Constraint) String() string {
	return fmt.Sprintf("%s == %s", s.Left, s.Right)
}

func (s *Directive) String() string {
	ins := make([]string, len(s.Inputs))
	for i, in := range s.Inputs {
		ins[i] = in.String()
	}
	outs := make([]string, len(s.Outputs))
	for i, o := range s.Outputs {
		outs[i] = o.String()
	}
	return fmt.Sprintf("# %s = %s(%s)", strings.Join(outs, ", "), s.Solver, strings.Join(ins, ", "))
}

func (s *Block) String() string {
	inner := make([]string, len(s.Inner))
	for i, st := range s.Inner {
		inner[i] = st.String()
	}
	return "{" + strings.Join(inner, "; ") + "}"
}

// A Solver is a named witness-computation procedure with fixed input and
// output arities. Solvers are opaque to the middle-end and interned during
// serialization.
type Solver struct {
	Name     string
	InCount  uint32
	OutCount uint32
}

func (s Solver) String() string { return s.Name }

// A SolverRef references a solver either inline (before indexing) or by its
// dense index in the program's solver table.
type SolverRef struct {
	// Inline is the solver definition, nil once indexed.
	Inline *Solver

	// Index is the position in the solver table, meaningful when Inline is
	// nil.
	Index uint32
}

// RefOf returns an inline reference to s.
func RefOf(s Solver) SolverRef { return SolverRef{Inline: &s} }

// RefAt returns an indexed reference.
func RefAt(i uint32) SolverRef { return SolverRef{Index: i} }

func (r SolverRef) String() string {
	if r.Inline != nil {
		return r.Inline.Name
	}
	return fmt.Sprintf("solver@%d", r.Index)
}

// A Parameter is a program argument; private parameters are witness-only.
type Parameter struct {
	Variable Variable
	Private  bool
}

func (p Parameter) String() string {
	vis := "public"
	if p.Private {
		vis = "private"
	}
	return fmt.Sprintf("%s %s", vis, p.Variable)
}

// A Prog is a fully materialized flat program.
type Prog struct {
	Curve       field.Curve
	Arguments   []Parameter
	ReturnCount int
	Statements  []Statement
	Solvers     []Solver
}

// Iterator returns a streaming view over the program.
func (p *Prog) Iterator() *ProgIterator {
	i := 0
	return &ProgIterator{
		Curve:       p.Curve,
		Arguments:   p.Arguments,
		ReturnCount: p.ReturnCount,
		Solvers:     p.Solvers,
		Statements: StatementIteratorFunc(func() (Statement, bool) {
			if i >= len(p.Statements) {
				return nil, false
			}
			s := p.Statements[i]
			i++
			return s, true
		}),
	}
}

// A StatementIterator yields statements strictly sequentially; it returns
// false at end of stream.
type StatementIterator interface {
	Next() (Statement, bool)
}

// StatementIteratorFunc adapts a function to a StatementIterator.
type StatementIteratorFunc func() (Statement, bool)

// Next implements StatementIterator.
func (f StatementIteratorFunc) Next() (Statement, bool) { return f() }

// A ProgIterator is a flat program whose statements are streamed rather
// than materialized. The underlying source must outlive the iterator.
type ProgIterator struct {
	Curve       field.Curve
	Arguments   []Parameter
	ReturnCount int
	Solvers     []Solver
	Statements  StatementIterator
}

// Collect drains the iterator into a materialized program.
func (pi *ProgIterator) Collect() *Prog {
	var stmts []Statement
	for {
		s, ok := pi.Statements.Next()
		if !ok {
			break
		}
		stmts = append(stmts, s)
	}
	return &Prog{
		Curve:       pi.Curve,
		Arguments:   pi.Arguments,
		ReturnCount: pi.ReturnCount,
		Statements:  stmts,
		Solvers:     pi.Solvers,
	}
}
