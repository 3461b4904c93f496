package flow

import (
	"github.com/aclements/focusslice/alias"
	"github.com/aclements/focusslice/controldep"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/mutation"
	"github.com/aclements/focusslice/place"
)

// Tables are the per-location side tables the transfer function consults
// and that the cache entry builder (§4.H) later reads back: which Places a
// location reads, and which Mutations it performs.
type Tables struct {
	ReadsByLocation     map[place.ProgramLocation][]place.Place
	MutationsByLocation map[place.ProgramLocation][]place.Mutation
}

// BuildTables walks every operation of g once, computing both tables.
func BuildTables(g ir.CFG) *Tables {
	t := &Tables{
		ReadsByLocation:     make(map[place.ProgramLocation][]place.Place),
		MutationsByLocation: make(map[place.ProgramLocation][]place.Mutation),
	}
	for _, b := range g.Blocks() {
		for i, op := range b.Operations() {
			loc := place.NewLocation(b.Ordinal(), i)
			t.ReadsByLocation[loc] = RepresentativeReads(op)
			t.MutationsByLocation[loc] = mutation.ForOperation(loc, op)
		}
		if branch, ok := b.BranchValue(); ok {
			loc := place.NewLocation(b.Ordinal(), len(b.Operations()))
			t.ReadsByLocation[loc] = RepresentativeReads(branch)
			t.MutationsByLocation[loc] = mutation.ForOperation(loc, branch)
		}
	}
	return t
}

// Transfer is the per-location transfer function of §4.F: Apply(state, loc)
// computes the outgoing Domain from the incoming one.
type Transfer struct {
	tables  *Tables
	aliases *alias.Analyzer
	ctrl    *controldep.Analysis
}

// NewTransfer builds a Transfer over an already-analyzed CFG: tables,
// aliases, and control dependence are all computed up front so Apply stays
// a pure per-location function (the fixpoint engine calls it many times per
// location).
func NewTransfer(tables *Tables, aliases *alias.Analyzer, ctrl *controldep.Analysis) *Transfer {
	return &Transfer{tables: tables, aliases: aliases, ctrl: ctrl}
}

// Apply computes the outgoing Domain for loc given the incoming one, per
// §4.F:
//  1. I = {loc} ∪ (dependency sets of every Place loc reads) ∪ (the
//     "branch locations" of every block loc's block is control dependent
//     on).
//  2. If loc performs no mutation, the outgoing state is just a clone of
//     the incoming one (I is computed but unused).
//  3. For every mutation with target t: resolve A = aliases(t). A strong
//     update (state[t] = I, replacing) applies only when |A| == 1 and t is
//     a non-indexed, non-projected, non-reference-argument simple place;
//     otherwise every a in A gets state[a] = state[a] ∪ I (weak update).
//
// Apply also returns I itself, which engine.Run records per location in
// Results.IByLocation.
func (tr *Transfer) Apply(in Domain, loc place.ProgramLocation) (Domain, map[place.ProgramLocation]struct{}) {
	reads := tr.tables.ReadsByLocation[loc]
	muts := tr.tables.MutationsByLocation[loc]

	I := map[place.ProgramLocation]struct{}{loc: {}}
	for _, r := range reads {
		for l := range in.Get(r) {
			I[l] = struct{}{}
		}
	}
	for _, c := range tr.ctrl.GetControlDependencies(loc) {
		I[c] = struct{}{}
	}

	out := in.Clone()
	for _, m := range muts {
		closure := tr.aliases.Aliases(m.Target)
		if isSimpleTarget(m, closure) {
			out.setStrong(m.Target, I)
			continue
		}
		for _, a := range closure {
			out.unionWeak(a, I)
		}
	}
	return out, I
}

// isSimpleTarget decides whether m licenses a strong update: unaliased,
// unprojected, unindexed, and not a write through a by-reference call
// argument (whose true backing storage may have aliases this
// intra-procedural analysis cannot see, so it is always treated weakly,
// matching how ref/out arguments are handled elsewhere in the analysis).
func isSimpleTarget(m place.Mutation, closure []place.Place) bool {
	if len(closure) != 1 {
		return false
	}
	if len(m.Target.Path()) != 0 {
		return false
	}
	if m.Indexed {
		return false
	}
	if m.Kind == place.RefArgument || m.Kind == place.OutArgument {
		return false
	}
	return true
}
