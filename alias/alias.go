// Package alias implements the Alias Analyzer (§4.D): a conservative,
// symmetric may-alias relation over Places in a CFG.
package alias

import (
	"github.com/aclements/focusslice/extract"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

// Analyzer holds the tracked alias edges discovered in one CFG. The
// relation is bidirectional and closed over the relationships added; it is
// not required to be globally transitive, but Aliases(p) always includes p.
type Analyzer struct {
	tracked map[string]map[string]place.Place
}

// New returns an empty Analyzer.
func New() *Analyzer {
	return &Analyzer{tracked: make(map[string]map[string]place.Place)}
}

// Build runs the alias-inducing rules of §4.D over every operation in g and
// returns the resulting Analyzer.
func Build(g ir.CFG) *Analyzer {
	a := New()
	for _, b := range g.Blocks() {
		for _, op := range b.Operations() {
			a.visit(op)
		}
		if branch, ok := b.BranchValue(); ok {
			a.visit(branch)
		}
	}
	return a
}

func (a *Analyzer) visit(op ir.Operation) {
	if op == nil {
		return
	}

	switch op.Kind() {
	case ir.OpAssign:
		a.maybeAdd(op.AssignTarget(), op.AssignValue())

	case ir.OpDeclareInit:
		if sym := op.DeclaredSymbol(); sym != nil {
			a.maybeAddSym(sym, op.Initializer())
		}

	case ir.OpCall:
		a.addCallSiteAliases(op.CallArgs())
	}

	for _, child := range op.Children() {
		a.visit(child)
	}
}

// maybeAdd adds alias(target, value) when value is reference-typed (or a
// by-reference parameter) and both sides extract to a Place.
func (a *Analyzer) maybeAdd(target, value ir.Operand) {
	if target.Expr == nil || value.Expr == nil {
		return
	}
	if !isReferenceLikeOperand(value.Expr) {
		return
	}
	tp, ok := extract.TryCreate(target.Expr)
	if !ok {
		return
	}
	vp, ok := extract.TryCreate(value.Expr)
	if !ok {
		return
	}
	a.Add(tp, vp)
}

// maybeAddSym adds alias(Place(sym), value) when value is reference-typed.
// Used for declarator initializers where the target is a bare Symbol, not
// yet an Operation.
func (a *Analyzer) maybeAddSym(sym ir.Symbol, value ir.Operand) {
	if sym == nil || value.Expr == nil {
		return
	}
	if !isReferenceLikeOperand(value.Expr) {
		return
	}
	vp, ok := extract.TryCreate(value.Expr)
	if !ok {
		return
	}
	a.Add(place.New(sym), vp)
}

func isReferenceLikeOperand(op ir.Operation) bool {
	p, ok := extract.TryCreate(op)
	if !ok {
		return false
	}
	if len(p.Path()) > 0 {
		return p.Path()[len(p.Path())-1].IsReferenceLike()
	}
	return p.Base().IsReferenceLike()
}

// addCallSiteAliases implements "call with any argument bound to a
// ref/out/in parameter: every pair of non-value arguments in the same call
// is may-aliased (conservative)".
func (a *Analyzer) addCallSiteAliases(args []ir.Operand) {
	var refArgs []ir.Operand
	hasRef := false
	for _, arg := range args {
		if arg.Ref != ir.ByValue {
			hasRef = true
			refArgs = append(refArgs, arg)
		}
	}
	if !hasRef {
		return
	}
	for i := 0; i < len(refArgs); i++ {
		for j := i + 1; j < len(refArgs); j++ {
			pi, ok1 := extract.TryCreate(refArgs[i].Expr)
			pj, ok2 := extract.TryCreate(refArgs[j].Expr)
			if ok1 && ok2 {
				a.Add(pi, pj)
			}
		}
	}
}

// Add records a symmetric alias edge between p and q.
func (a *Analyzer) Add(p, q place.Place) {
	if p.IsZero() || q.IsZero() || p.Equal(q) {
		return
	}
	a.addOne(p, q)
	a.addOne(q, p)
}

func (a *Analyzer) addOne(p, q place.Place) {
	k := p.Key()
	set, ok := a.tracked[k]
	if !ok {
		set = make(map[string]place.Place)
		a.tracked[k] = set
	}
	set[q.Key()] = q
}

// Aliases returns the may-alias closure of p: {p} union its tracked alias
// set, union, for every proper prefix b of p, the alias sets of b projected
// forward by p's remaining projection.
func (a *Analyzer) Aliases(p place.Place) []place.Place {
	if p.IsZero() {
		return nil
	}
	seen := make(map[string]place.Place)
	seen[p.Key()] = p

	for _, q := range a.tracked[p.Key()] {
		seen[q.Key()] = q
	}

	for _, prefix := range p.Prefixes() {
		rest := p.Remaining(prefix)
		for _, alias := range a.tracked[prefix.Key()] {
			projected := alias.WithPath(rest)
			seen[projected.Key()] = projected
		}
	}

	out := make([]place.Place, 0, len(seen))
	for _, q := range seen {
		out = append(out, q)
	}
	return out
}

// AreAliased reports whether l and r may refer to the same storage: equal,
// directly tracked as aliases of one another, or sharing a base symbol
// (conservative: projections may still overlap for arrays/indexers, since
// the place extractor is index-insensitive).
func (a *Analyzer) AreAliased(l, r place.Place) bool {
	if l.IsZero() || r.IsZero() {
		return false
	}
	if l.Equal(r) {
		return true
	}
	if set, ok := a.tracked[l.Key()]; ok {
		if _, ok := set[r.Key()]; ok {
			return true
		}
	}
	if set, ok := a.tracked[r.Key()]; ok {
		if _, ok := set[l.Key()]; ok {
			return true
		}
	}
	return l.Base() != nil && r.Base() != nil && l.Base().Equal(r.Base())
}
