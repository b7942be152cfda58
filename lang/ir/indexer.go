package ir

import "github.com/dolthub/swiss"

// A SolverIndexer rewrites every directive to reference its solver by a
// dense index, interning unique solver definitions in first-occurrence
// order. Statement order is preserved bit for bit. Deduplication is by
// structural equality of the solver definition.
type SolverIndexer struct {
	// Solvers is the interned table, in first-occurrence order.
	Solvers []Solver

	index *swiss.Map[Solver, uint32]
}

// NewSolverIndexer returns a ready-to-use indexer.
func NewSolverIndexer() *SolverIndexer {
	return &SolverIndexer{index: swiss.NewMap[Solver, uint32](8)}
}

// FoldStatement implements Folder.
func (x *SolverIndexer) FoldStatement(s Statement) []Statement {
	return FoldStatement(x, s)
}

// FoldSolverRef implements Folder: inline references are interned and
// replaced by their index, indexed references pass through.
func (x *SolverIndexer) FoldSolverRef(r SolverRef) SolverRef {
	if r.Inline == nil {
		return r
	}
	ix, ok := x.index.Get(*r.Inline)
	if !ok {
		ix = uint32(len(x.Solvers))
		x.Solvers = append(x.Solvers, *r.Inline)
		x.index.Put(*r.Inline, ix)
	}
	return RefAt(ix)
}

// FoldLinComb implements Folder.
func (x *SolverIndexer) FoldLinComb(lc LinComb) LinComb { return FoldLinComb(x, lc) }

// FoldVariable implements Folder.
func (x *SolverIndexer) FoldVariable(v Variable) Variable { return FoldVariable(x, v) }

// FoldParameter implements Folder.
func (x *SolverIndexer) FoldParameter(p Parameter) Parameter { return FoldParameter(x, p) }
