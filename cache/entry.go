// Package cache implements the Cache Entry Builder (§4.H) and the
// per-member cache (§4.K): the bundle of analysis results kept for one
// member body, and the bounded, document-scoped store that holds one
// bundle per member until its document is edited.
package cache

import (
	"context"

	"github.com/aclements/focusslice/alias"
	"github.com/aclements/focusslice/controldep"
	"github.com/aclements/focusslice/engine"
	"github.com/aclements/focusslice/flow"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

// Entry is everything a slice request needs for one member: the CFG it was
// built from, the results of every analysis stage the fixpoint depends on,
// and the four projected tables of §4.H, so a cache hit skips straight to
// slice extraction without re-walking engine-internal state.
type Entry struct {
	Doc      string
	MemberID string
	CFG      ir.CFG
	Tables   *flow.Tables
	Aliases  *alias.Analyzer
	Control  *controldep.Analysis
	Flow     *engine.Results

	proj *projection
}

// Build runs the full C->D->E->F->G pipeline over g once, projects the
// result into the four §4.H tables, and packages everything into an Entry.
// Callers needing repeated slices of the same member body should route
// through MemberCache instead of calling Build directly.
func Build(ctx context.Context, doc, memberID string, g ir.CFG) (*Entry, error) {
	tables := flow.BuildTables(g)
	aliases := alias.Build(g)
	ctrl := controldep.Build(g)
	tr := flow.NewTransfer(tables, aliases, ctrl)
	results, err := engine.Run(ctx, g, tr)
	if err != nil {
		return nil, err
	}
	e := &Entry{
		Doc:      doc,
		MemberID: memberID,
		CFG:      g,
		Tables:   tables,
		Aliases:  aliases,
		Control:  ctrl,
		Flow:     results,
	}
	e.proj = buildProjection(e)
	return e, nil
}

// Dependencies returns dependencies[key(p)]: every location that may have
// contributed to p's value anywhere it was tracked, sorted by
// (block_ordinal, op_index). Returns nil if p was never tracked.
func (e *Entry) Dependencies(p place.Place) []place.ProgramLocation {
	return e.proj.dependencies[p.Key()]
}

// Reads returns reads[key(p)]: every location that reads p, sorted by
// (block_ordinal, op_index).
func (e *Entry) Reads(p place.Place) []place.ProgramLocation {
	return e.proj.reads[p.Key()]
}

// AliasesOf returns aliases[key(p)]: the may-alias closure of p, including
// p itself, in stable key order.
func (e *Entry) AliasesOf(p place.Place) []place.Place {
	return e.proj.aliases[p.Key()]
}

// MutationTargets returns mutation_targets[loc]: every place written at
// loc, in stable key order.
func (e *Entry) MutationTargets(loc place.ProgramLocation) []place.Place {
	return e.proj.mutationTargets[loc]
}
