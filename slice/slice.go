// Package slice implements the Backward Slice Extractor (§4.I) and the
// Forward Slice Extractor (§4.J): turning a seed (Place, ProgramLocation)
// plus a cache.Entry's projected tables into an ordered, classified list of
// slice members.
package slice

import (
	"context"
	"fmt"
	"strings"

	"github.com/eapache/queue"

	"github.com/aclements/focusslice/cache"
	"github.com/aclements/focusslice/extract"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

// Relation classifies one slice member: Source for a backward-slice
// contributor, Transform or Sink for a forward-slice consumer, per the
// GLOSSARY.
type Relation int

const (
	Source Relation = iota
	Transform
	Sink
)

func (r Relation) String() string {
	switch r {
	case Transform:
		return "transform"
	case Sink:
		return "sink"
	default:
		return "source"
	}
}

// maxSummaryTargets caps the number of propagation targets named in a
// Transform entry's summary before it falls back to "…".
const maxSummaryTargets = 3

// Entry is one member of a slice: a location, the Place the slicer judged
// responsible for it, the member's classification, and presentation detail
// a host can render without recomputing anything.
type Entry struct {
	Location      place.ProgramLocation
	Place         place.Place
	Relation      Relation
	OperationKind ir.OpKind
	Summary       string
	HasSpan       bool
	Start, End    int
}

// Backward returns the backward slice of seedPlace as observed at seedLoc:
// one Source entry per location in the cache entry's recorded dependency
// set for seedPlace (§4.I), in (block_ordinal, op_index) order. Returns ok
// == false if seedLoc does not address a real operation in e.CFG — a stale
// location applied to a different CFG degrades to "no result" rather than
// a wrong answer.
func Backward(ctx context.Context, e *cache.Entry, seedPlace place.Place, seedLoc place.ProgramLocation) ([]Entry, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	if seedPlace.IsZero() || place.OperationAt(e.CFG, seedLoc) == nil {
		return nil, false
	}

	deps := e.Dependencies(seedPlace)
	entries := make([]Entry, 0, len(deps))
	for _, loc := range deps {
		op := place.OperationAt(e.CFG, loc)
		if op == nil {
			// §7: missing operation syntax degrades the entry away,
			// not the whole slice.
			continue
		}
		contributing := representativePlace(e, loc, op)
		start, end, hasSpan := narrowSpan(op)
		entries = append(entries, Entry{
			Location:      loc,
			Place:         contributing,
			Relation:      Source,
			OperationKind: op.Kind(),
			Summary:       sourceSummary(contributing, seedPlace),
			HasSpan:       hasSpan,
			Start:         start,
			End:           end,
		})
	}
	return entries, true
}

// Forward returns the forward slice of seedPlace as observed at seedLoc
// (§4.J): a reverse reachability walk seeded at seedPlace, following
// aliases(p) to reads[key(alias)] and onward through mutation_targets,
// classifying each reached location Transform (it also writes somewhere,
// so the walk continues through its targets) or Sink (it doesn't). Results
// are returned in (block_ordinal, op_index) order. Returns ok == false
// under the same condition as Backward.
func Forward(ctx context.Context, e *cache.Entry, seedPlace place.Place, seedLoc place.ProgramLocation) ([]Entry, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	if seedPlace.IsZero() || place.OperationAt(e.CFG, seedLoc) == nil {
		return nil, false
	}

	type detail struct {
		op       ir.Operation
		relation Relation
		targets  []place.Place
	}

	processed := make(map[string]bool)
	details := make(map[place.ProgramLocation]*detail)
	var order []place.ProgramLocation

	q := queue.New()
	q.Add(seedPlace)

	for q.Length() > 0 {
		if ctx.Err() != nil {
			return nil, false
		}
		p := q.Peek().(place.Place)
		q.Remove()
		if processed[p.Key()] {
			continue
		}
		processed[p.Key()] = true

		for _, a := range e.AliasesOf(p) {
			for _, loc := range e.Reads(a) {
				d, ok := details[loc]
				if !ok {
					op := place.OperationAt(e.CFG, loc)
					if op == nil {
						continue
					}
					targets := e.MutationTargets(loc)
					rel := Sink
					if len(targets) > 0 {
						rel = Transform
					}
					d = &detail{op: op, relation: rel, targets: targets}
					details[loc] = d
					order = append(order, loc)
				}
				if d.relation == Transform {
					for _, t := range d.targets {
						if !processed[t.Key()] {
							q.Add(t)
						}
					}
				}
			}
		}
	}

	place.SortLocations(order)
	entries := make([]Entry, 0, len(order))
	for _, loc := range order {
		d := details[loc]
		subject := representativePlace(e, loc, d.op)
		start, end, hasSpan := narrowSpan(d.op)
		entries = append(entries, Entry{
			Location:      loc,
			Place:         subject,
			Relation:      d.relation,
			OperationKind: d.op.Kind(),
			Summary:       forwardSummary(d.relation, subject, d.targets),
			HasSpan:       hasSpan,
			Start:         start,
			End:           end,
		})
	}
	return entries, true
}

// representativePlace picks the Place a slice entry at loc should be
// attributed to (§4.I step 4, §4.J step 4): the location's recorded
// mutation target when it has one, falling back to the assignment target,
// the increment target, or the single declarator the operation itself
// names, and finally to whatever extract.TryCreate finds in the operation.
func representativePlace(e *cache.Entry, loc place.ProgramLocation, op ir.Operation) place.Place {
	if targets := e.MutationTargets(loc); len(targets) > 0 {
		return targets[0]
	}
	switch op.Kind() {
	case ir.OpAssign, ir.OpCompoundAssign:
		if p, ok := extract.TryCreate(op.AssignTarget().Expr); ok {
			return p
		}
	case ir.OpIncDec:
		if p, ok := extract.TryCreate(op.IncDecTarget().Expr); ok {
			return p
		}
	case ir.OpDeclareInit:
		if sym := op.DeclaredSymbol(); sym != nil {
			return place.New(sym)
		}
	}
	if p, ok := extract.TryCreate(op); ok {
		return p
	}
	return place.Place{}
}

// narrowSpan computes the "precise syntactic span" of §4.I step 3 / §4.J
// step 4: the narrowest token span identifying the construct an operation
// contributes through, rather than the operation's whole extent. An
// assignment narrows to its target identifier; an increment/decrement
// narrows to the operand it touches. Every other kind falls back to the
// operation's entire span, per the specification's own fallback clause.
func narrowSpan(op ir.Operation) (start, end int, ok bool) {
	switch op.Kind() {
	case ir.OpAssign, ir.OpCompoundAssign:
		if s, e, ok := operandSpan(op.AssignTarget()); ok {
			return s, e, true
		}
	case ir.OpIncDec:
		if s, e, ok := operandSpan(op.IncDecTarget()); ok {
			return s, e, true
		}
	}
	return op.Span()
}

func operandSpan(o ir.Operand) (start, end int, ok bool) {
	if o.Expr == nil {
		return 0, 0, false
	}
	return o.Expr.Span()
}

// sourceSummary renders §4.I step 4's human-readable summary for a Source
// entry.
func sourceSummary(contributing, seed place.Place) string {
	if contributing.Equal(seed) {
		return fmt.Sprintf("%s updates its value", seed)
	}
	return fmt.Sprintf("%s flows into %s", contributing, seed)
}

// forwardSummary renders §4.J step 4's human-readable summary for a
// Transform or Sink entry, capping the named targets at maxSummaryTargets.
func forwardSummary(rel Relation, subject place.Place, targets []place.Place) string {
	if rel == Sink {
		return fmt.Sprintf("%s consumes seed", subject)
	}
	names := make([]string, 0, maxSummaryTargets+1)
	for i, t := range targets {
		if i == maxSummaryTargets {
			names = append(names, "…")
			break
		}
		names = append(names, t.String())
	}
	return fmt.Sprintf("%s propagates seed into %s", subject, strings.Join(names, ", "))
}
