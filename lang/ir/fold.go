package ir

import "fmt"

// A Folder rebuilds a flat statement stream, parallel to the typed-AST
// folder: one method per node kind, package-level defaults that recurse and
// reassemble, multi-statement folds spliced in order.
type Folder interface {
	FoldStatement(Statement) []Statement
	FoldLinComb(LinComb) LinComb
	FoldVariable(Variable) Variable
	FoldParameter(Parameter) Parameter
	FoldSolverRef(SolverRef) SolverRef
}

// FoldStatement is the default statement fold.
func FoldStatement(f Folder, s Statement) []Statement {
	switch s := s.(type) {
	case *Constraint:
		return []Statement{&Constraint{
			Left:  f.FoldLinComb(s.Left),
			Right: f.FoldLinComb(s.Right),
		}}
	case *Directive:
		inputs := make([]LinComb, len(s.Inputs))
		for i, in := range s.Inputs {
			inputs[i] = f.FoldLinComb(in)
		}
		outputs := make([]Variable, len(s.Outputs))
		for i, o := range s.Outputs {
			outputs[i] = f.FoldVariable(o)
		}
		return []Statement{&Directive{
			Inputs:  inputs,
			Solver:  f.FoldSolverRef(s.Solver),
			Outputs: outputs,
		}}
	case *Block:
		var inner []Statement
		for _, is := range s.Inner {
			inner = append(inner, f.FoldStatement(is)...)
		}
		return []Statement{&Block{Inner: inner}}
	default:
		panic(fmt.Sprintf("unexpected statement %T", s))
	}
}

// FoldLinComb is the default linear combination fold.
func FoldLinComb(f Folder, lc LinComb) LinComb {
	res := make(LinComb, len(lc))
	for i, t := range lc {
		res[i] = Term{Variable: f.FoldVariable(t.Variable), Coefficient: t.Coefficient}
	}
	return res
}

// FoldVariable is the default variable fold, the identity.
func FoldVariable(_ Folder, v Variable) Variable { return v }

// FoldParameter is the default parameter fold.
func FoldParameter(f Folder, p Parameter) Parameter {
	return Parameter{Variable: f.FoldVariable(p.Variable), Private: p.Private}
}

// FoldSolverRef is the default solver reference fold, the identity.
func FoldSolverRef(_ Folder, r SolverRef) SolverRef { return r }
