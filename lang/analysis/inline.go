package analysis

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"

	"github.com/calyx-zk/calyx/lang/ast"
	"github.com/calyx-zk/calyx/lang/types"
)

// The inliner starts from the main function of the main module and inlines
// every call except those to flat embeds. The result is a single-module
// program where the only remaining calls target embeds, to be resolved by
// the flattening layers.
//
// Inlining may be unable to complete: a loop must be unrolled first, or a
// call still carries non-constant generic sizes. In both cases the pass
// returns the partial rewrite along with the reason, so that a driver can
// run the sibling pass and retry to a fixpoint.

// BlockReason is why an inlining pass could not complete.
type BlockReason uint8

// List of block reasons.
const (
	NotBlocked BlockReason = iota

	// BlockedUnroll means a loop must be unrolled before inlining its body.
	BlockedUnroll

	// BlockedInline means a call still has non-constant generic sizes and
	// must wait for propagation.
	BlockedInline
)

func (r BlockReason) String() string {
	switch r {
	case NotBlocked:
		return "not blocked"
	case BlockedUnroll:
		return "blocked on unroll"
	case BlockedInline:
		return "blocked on inline"
	default:
		panic(fmt.Sprintf("unexpected block reason %d", r))
	}
}

// An InlineResult is the outcome of an inlining pass: the rewritten program
// and, when the pass could not complete, the reason and a monotone progress
// counter (the number of statements emitted) for drivers iterating passes
// to a fixpoint.
type InlineResult struct {
	Program  *ast.Program
	Reason   BlockReason
	Progress int
}

// Complete reports whether inlining ran to completion.
func (r InlineResult) Complete() bool { return r.Reason == NotBlocked }

// maxCallDepth bounds the inliner's call stack; the function call graph is
// required to be acyclic, this guard turns a violation into a clear panic
// instead of unbounded recursion.
const maxCallDepth = 1024

// Inline rewrites p into a single-module program where only embed calls
// remain. The main module must declare a main function with a concrete
// signature.
func Inline(p *ast.Program) InlineResult {
	inl := newInliner(p)
	program := inl.run(p)
	return InlineResult{Program: program, Reason: inl.blocked, Progress: inl.emitted}
}

type location struct {
	module ast.ModuleID
	key    types.ConcreteFunctionKey
}

// An inliner holds the state of one inlining pass.
type inliner struct {
	// modules is an immutable snapshot of the input module table.
	modules map[ast.ModuleID]*ast.Module

	// location is the focus for cross-module calls: the module and function
	// currently being inlined into.
	location location

	// statementBuffer queues statements in front of the statement currently
	// being folded: parameter bindings and hoisted embed definitions.
	statementBuffer []ast.Stmt

	// stack is the active call stack; identifiers folded during an inline
	// capture a snapshot of it, which renames them without symbol tables.
	stack []ast.Frame

	// callCount counts the occurrences of each (module, function) call so
	// far, for unique naming of embed results.
	callCount *swiss.Map[string, uint32]

	// callCache memoizes inlined calls per caller location: two call sites
	// with the same location, callee and arguments reuse the first
	// expansion.
	callCache *swiss.Map[string, []ast.Expr]

	blocked BlockReason
	emitted int
}

func newInliner(p *ast.Program) *inliner {
	mainMod, ok := p.Modules[p.Main]
	if !ok {
		panic(fmt.Sprintf("no module %s", p.Main))
	}
	var mainKey types.ConcreteFunctionKey
	found := false
	for _, d := range mainMod.Symbols {
		if d.Key.ID == "main" {
			ck, err := types.ConcreteFromDeclarationKey(d.Key)
			if err != nil {
				panic(fmt.Sprintf("main has a generic signature: %s", err))
			}
			mainKey, found = ck, true
			break
		}
	}
	if !found {
		panic(fmt.Sprintf("no main function in module %s", p.Main))
	}

	return &inliner{
		modules:   p.Modules,
		location:  location{module: p.Main, key: mainKey},
		callCount: swiss.NewMap[string, uint32](16),
		callCache: swiss.NewMap[string, []ast.Expr](16),
	}
}

// run folds the main function of the main module and returns a program
// reduced to that single module.
func (inl *inliner) run(p *ast.Program) *ast.Program {
	mainMod := p.Modules[p.Main]

	symbols := make([]*ast.SymbolDecl, len(mainMod.Symbols))
	for i, d := range mainMod.Symbols {
		if h, ok := d.Symbol.(*ast.Here); ok && d.Key.ID == "main" {
			symbols[i] = &ast.SymbolDecl{Key: d.Key, Symbol: &ast.Here{Fn: inl.FoldFunction(h.Fn)}}
			continue
		}
		symbols[i] = d
	}

	return &ast.Program{
		Main:    p.Main,
		Modules: map[ast.ModuleID]*ast.Module{p.Main: {Symbols: symbols}},
	}
}

func (inl *inliner) module() *ast.Module {
	m, ok := inl.modules[inl.location.module]
	if !ok {
		panic(fmt.Sprintf("no module %s", inl.location.module))
	}
	return m
}

// changeContext focuses the inliner on another module and function and
// returns the previous focus.
func (inl *inliner) changeContext(module ast.ModuleID, key types.ConcreteFunctionKey) (ast.ModuleID, types.ConcreteFunctionKey) {
	prevM, prevK := inl.location.module, inl.location.key
	inl.location = location{module: module, key: key}
	return prevM, prevK
}

func (inl *inliner) drainBuffer() []ast.Stmt {
	out := inl.statementBuffer
	inl.statementBuffer = nil
	return out
}

func (inl *inliner) snapshotStack() []ast.Frame {
	if len(inl.stack) == 0 {
		return nil
	}
	return append([]ast.Frame(nil), inl.stack...)
}

func countKey(module ast.ModuleID, key types.ConcreteFunctionKey) string {
	return module + "\x1f" + key.Slug()
}

func (inl *inliner) bumpCount(module ast.ModuleID, key types.ConcreteFunctionKey) uint32 {
	k := countKey(module, key)
	n, _ := inl.callCount.Get(k)
	n++
	inl.callCount.Put(k, n)
	return n
}

func (inl *inliner) countOf(module ast.ModuleID, key types.ConcreteFunctionKey) uint32 {
	n, _ := inl.callCount.Get(countKey(module, key))
	return n
}

// cacheKey canonicalizes a call for memoization. The key is scoped to the
// caller's location: two different calling contexts never share entries.
func (inl *inliner) cacheKey(key types.ConcreteFunctionKey, args []ast.Expr) string {
	printed := make([]string, len(args))
	for i, a := range args {
		printed[i] = a.String()
	}
	return strings.Join([]string{
		inl.location.module,
		inl.location.key.Slug(),
		key.Slug(),
		strings.Join(printed, ","),
	}, "\x1f")
}

// An inlineError is the internal control signal of a failed inline attempt:
// either the call targets a flat embed (leave the call in place and hoist a
// definition) or it still carries non-constant generic sizes.
type inlineError struct {
	// flat is true for embed calls; key is then the embed's concrete key.
	flat bool
	key  types.ConcreteFunctionKey
	args []ast.Expr
}

// tryInlineCall attempts to inline a call. When the key cannot be reduced
// to a concrete key the pass becomes blocked on generic propagation and the
// call is left in place.
func (inl *inliner) tryInlineCall(key ast.FunctionKey, args []ast.Expr) ([]ast.Expr, *inlineError) {
	ck, err := ast.ConcreteKey(key)
	if err != nil {
		inl.blocked = BlockedInline
		return nil, &inlineError{args: args}
	}
	return inl.tryInlineConcrete(ck, args)
}

// tryInlineConcrete inlines a call to the function with the given concrete
// key in the current location. On success it returns the call's return
// expressions; for flat embeds it returns the embed key and arguments for
// the caller to hoist.
func (inl *inliner) tryInlineConcrete(ck types.ConcreteFunctionKey, args []ast.Expr) ([]ast.Expr, *inlineError) {
	memoKey := inl.cacheKey(ck, args)
	if res, ok := inl.callCache.Get(memoKey); ok {
		return res, nil
	}

	decl, ok := inl.module().LookupConcrete(ck)
	if !ok {
		panic(fmt.Sprintf("no function %s in module %s", ck, inl.location.module))
	}

	var rets []ast.Expr
	switch sym := decl.Symbol.(type) {
	case *ast.Here:
		if len(inl.stack) >= maxCallDepth {
			panic(fmt.Sprintf("call stack depth exceeded inlining %s: the call graph must be acyclic", ck))
		}

		prevM, prevK := inl.changeContext(inl.location.module, ck)
		count := inl.bumpCount(inl.location.module, ck)
		inl.stack = append(inl.stack, ast.Frame{Module: inl.location.module, Key: ck, Count: count})

		// bind the parameters to the evaluated arguments; folding the
		// assignee renames the parameter through the current stack
		for i, p := range sym.Fn.Arguments {
			inl.statementBuffer = append(inl.statementBuffer, &ast.DefStmt{
				Assignee: inl.FoldAssignee(&ast.VarAssignee{Var: p.Variable}),
				Rhs:      &ast.ExprRhs{E: args[i]},
			})
		}

		// fold the body, keeping the terminating return aside
		var body []ast.Stmt
		for _, s := range sym.Fn.Statements {
			for _, fs := range inl.FoldStmt(s) {
				if r, ok := fs.(*ast.ReturnStmt); ok {
					rets = r.Exprs
				} else {
					body = append(body, fs)
				}
			}
		}
		inl.statementBuffer = append(inl.statementBuffer, body...)

		inl.stack = inl.stack[:len(inl.stack)-1]
		inl.changeContext(prevM, prevK)

	case *ast.There:
		// switch focus to the target module, inline there, switch back
		target := types.ConcreteFunctionKey{ID: sym.Key.ID, Signature: ck.Signature}
		prevM, prevK := inl.changeContext(sym.Module, target)
		res, ierr := inl.tryInlineConcrete(target, args)
		inl.changeContext(prevM, prevK)
		if ierr != nil {
			return nil, ierr
		}
		rets = res

	case *ast.Flat:
		ek := sym.Embed.Key()
		inl.bumpCount(inl.location.module, ek)
		return nil, &inlineError{flat: true, key: ek, args: args}

	default:
		panic(fmt.Sprintf("unexpected symbol %T", decl.Symbol))
	}

	inl.callCache.Put(memoKey, rets)
	return rets, nil
}

// FoldStmt implements ast.Folder. Any statements queued while folding are
// spliced in front of the folded statement.
func (inl *inliner) FoldStmt(s ast.Stmt) []ast.Stmt {
	var folded []ast.Stmt
	switch s := s.(type) {
	case *ast.ForStmt:
		// loops must be unrolled by the sibling pass before inlining
		inl.blocked = BlockedUnroll
		folded = []ast.Stmt{s}

	case *ast.MultiDefStmt:
		vars := make([]ast.Variable, len(s.Vars))
		for i, v := range s.Vars {
			vars[i] = inl.FoldVariable(v)
		}
		args := make([]ast.Expr, len(s.Call.Args))
		for i, a := range s.Call.Args {
			args[i] = inl.FoldExpr(a)
		}

		rets, ierr := inl.tryInlineCall(s.Call.Key, args)
		if ierr == nil {
			folded = make([]ast.Stmt, len(vars))
			for i, v := range vars {
				folded[i] = &ast.DefStmt{
					Assignee: &ast.VarAssignee{Var: v},
					Rhs:      &ast.ExprRhs{E: rets[i]},
				}
			}
		} else {
			key := s.Call.Key
			if ierr.flat {
				key = ast.KeyFromConcrete(ierr.key)
			}
			folded = []ast.Stmt{&ast.MultiDefStmt{
				Vars: vars,
				Call: ast.CallList{Key: key, Args: ierr.args, Types: s.Call.Types},
			}}
		}

	default:
		folded = ast.FoldStmt(inl, s)
	}

	out := append(inl.drainBuffer(), folded...)
	// statements folded inside an inlined body are handed back to the
	// enclosing fold; only the outermost fold emits them
	if len(inl.stack) == 0 {
		inl.emitted += len(out)
	}
	return out
}

// FoldExpr implements ast.Folder: function calls in expression position are
// inlined; calls to flat embeds are hoisted into a definition binding a
// fresh identifier, and the call site becomes a reference to it.
func (inl *inliner) FoldExpr(e ast.Expr) ast.Expr {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return ast.FoldExpr(inl, e)
	}

	args := make([]ast.Expr, len(call.Args))
	for i, a := range call.Args {
		args[i] = inl.FoldExpr(a)
	}

	rets, ierr := inl.tryInlineCall(call.Key, args)
	if ierr == nil {
		return rets[len(rets)-1]
	}
	if !ierr.flat {
		return &ast.CallExpr{Key: call.Key, Args: ierr.args, Ty: inl.FoldType(call.Ty)}
	}

	// hoist the embed call into a definition; the result identifier is
	// unique across call sites thanks to the embed's call count and the
	// stack snapshot
	ek := ierr.key
	id := ast.Identifier{
		ID:      ast.CallID(ek),
		Version: inl.countOf(inl.location.module, ek),
		Stack:   inl.snapshotStack(),
	}
	outTypes := make([]*ast.Type, len(ek.Signature.Outputs))
	for i, t := range ek.Signature.Outputs {
		outTypes[i] = ast.TypeFromConcrete(t)
	}
	inl.statementBuffer = append(inl.statementBuffer, &ast.MultiDefStmt{
		Vars: []ast.Variable{{ID: id, Type: outTypes[0]}},
		Call: ast.CallList{Key: ast.KeyFromConcrete(ek), Args: ierr.args, Types: outTypes},
	})

	out := &ast.Ident{Id: id, Ty: inl.FoldType(call.Ty)}

	// memoize so that an identical call site reuses the hoisted result
	ck, err := ast.ConcreteKey(call.Key)
	if err == nil {
		inl.callCache.Put(inl.cacheKey(ck, ierr.args), []ast.Expr{out})
	}
	return out
}

// FoldIdent implements ast.Folder: every folded name captures the current
// stack, which alpha-renames inlined usages without symbol-table lookups.
func (inl *inliner) FoldIdent(id ast.Identifier) ast.Identifier {
	return ast.Identifier{ID: id.ID, Version: id.Version, Stack: inl.snapshotStack()}
}

// FoldProgram implements ast.Folder.
func (inl *inliner) FoldProgram(p *ast.Program) *ast.Program { return ast.FoldProgram(inl, p) }

// FoldModule implements ast.Folder.
func (inl *inliner) FoldModule(m *ast.Module) *ast.Module { return ast.FoldModule(inl, m) }

// FoldFunction implements ast.Folder.
func (inl *inliner) FoldFunction(fn *ast.Function) *ast.Function { return ast.FoldFunction(inl, fn) }

// FoldAssignee implements ast.Folder.
func (inl *inliner) FoldAssignee(a ast.Assignee) ast.Assignee { return ast.FoldAssignee(inl, a) }

// FoldVariable implements ast.Folder.
func (inl *inliner) FoldVariable(v ast.Variable) ast.Variable { return ast.FoldVariable(inl, v) }

// FoldType implements ast.Folder.
func (inl *inliner) FoldType(t *ast.Type) *ast.Type { return ast.FoldType(inl, t) }
