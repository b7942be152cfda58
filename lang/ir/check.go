package ir

import "github.com/dolthub/swiss"

// An UnconstrainedVariableDetector streams over a program's statements and
// tracks which of the variables declared by the header (arguments and
// outputs) appear in at least one constraint or as a directive output. The
// residual at end of stream is the set of unconstrained variables, a fatal
// serialization error.
type UnconstrainedVariableDetector struct {
	variables *swiss.Map[Variable, struct{}]
}

// NewUnconstrainedVariableDetector initializes the detector from the
// program header: every argument variable and every output variable must
// eventually be discharged.
func NewUnconstrainedVariableDetector(pi *ProgIterator) *UnconstrainedVariableDetector {
	d := &UnconstrainedVariableDetector{
		variables: swiss.NewMap[Variable, struct{}](uint32(len(pi.Arguments) + pi.ReturnCount)),
	}
	for _, p := range pi.Arguments {
		d.variables.Put(p.Variable, struct{}{})
	}
	for i := 0; i < pi.ReturnCount; i++ {
		d.variables.Put(Public(i), struct{}{})
	}
	return d
}

// FoldStatement implements Folder.
func (d *UnconstrainedVariableDetector) FoldStatement(s Statement) []Statement {
	switch s := s.(type) {
	case *Constraint:
		d.dischargeLinComb(s.Left)
		d.dischargeLinComb(s.Right)
	case *Directive:
		for _, o := range s.Outputs {
			d.variables.Delete(o)
		}
	}
	return FoldStatement(d, s)
}

func (d *UnconstrainedVariableDetector) dischargeLinComb(lc LinComb) {
	for _, t := range lc {
		d.variables.Delete(t.Variable)
	}
}

// Finalize reports the end-of-stream result: (0, true) when every tracked
// variable was discharged, otherwise the residual count and false.
func (d *UnconstrainedVariableDetector) Finalize() (int, bool) {
	if n := d.variables.Count(); n > 0 {
		return n, false
	}
	return 0, true
}

// FoldLinComb implements Folder.
func (d *UnconstrainedVariableDetector) FoldLinComb(lc LinComb) LinComb { return FoldLinComb(d, lc) }

// FoldVariable implements Folder.
func (d *UnconstrainedVariableDetector) FoldVariable(v Variable) Variable {
	return FoldVariable(d, v)
}

// FoldParameter implements Folder.
func (d *UnconstrainedVariableDetector) FoldParameter(p Parameter) Parameter {
	return FoldParameter(d, p)
}

// FoldSolverRef implements Folder.
func (d *UnconstrainedVariableDetector) FoldSolverRef(r SolverRef) SolverRef {
	return FoldSolverRef(d, r)
}
