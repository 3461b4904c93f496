// Package analysis is the core: the orchestrator that wires the Mutation
// Detector through the Fixpoint Engine and the cache into the two external
// operations a host (an IDE, or cmd/sliceinspect) actually calls —
// ComputeSlice and InvalidateDocument — per §6.
package analysis

import (
	"context"

	"github.com/aclements/focusslice/cache"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
	"github.com/aclements/focusslice/slice"
)

// Direction selects which slice extractor ComputeSlice runs.
type Direction int

const (
	Backward Direction = iota
	Forward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// ResultPoint is one program point included in a slice, with enough
// presentation detail for a host IDE to highlight it without walking the
// CFG itself again.
type ResultPoint struct {
	Location      place.ProgramLocation
	Place         place.Place
	Relation      slice.Relation
	OperationKind ir.OpKind
	Summary       string
	Text          string
	HasSpan       bool
	Start         int
	End           int
}

// SliceResponse is ComputeSlice's successful result.
type SliceResponse struct {
	Seed         place.Place
	SeedLocation place.ProgramLocation
	Direction    Direction
	Points       []ResultPoint
}

// Core is the slicer's entry point: a member-scoped analysis cache plus the
// two operations a host calls. The zero Core is not usable; construct with
// NewCore.
type Core struct {
	mem *cache.MemberCache
}

// NewCore returns a Core whose cache holds at most capacity members.
func NewCore(capacity int) *Core {
	return &Core{mem: cache.New(capacity)}
}

// ComputeSlice resolves the backward or forward slice of seed as observed
// at seedLoc in member memberID of document doc, whose CFG is g. src is the
// source text the operations' spans index into; ResultPoint.Text is cut
// from src using the entry's (possibly narrowed) span, and falls back to
// the Operation's own Text() when src or the span is unavailable. A cached
// Entry is reused when one
// exists for memberID; otherwise the full C->D->E->F->G pipeline runs and
// the result is cached for subsequent requests.
//
// The specification names this operation with a single Place seed; a Place
// alone under-determines a location-scoped slice (the same Place can be
// mutated or read at many points in one member), so this rendering adds
// seedLoc as an explicit parameter rather than guessing which occurrence
// was meant.
func (c *Core) ComputeSlice(ctx context.Context, dir Direction, doc, memberID string, seed place.Place, seedLoc place.ProgramLocation, g ir.CFG, src []byte) (*SliceResponse, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	entry, ok := c.mem.Get(memberID)
	if !ok {
		built, err := cache.Build(ctx, doc, memberID, g)
		if err != nil {
			return nil, false
		}
		entry = built
		c.mem.Put(entry)
	}

	var slices []slice.Entry
	switch dir {
	case Forward:
		slices, ok = slice.Forward(ctx, entry, seed, seedLoc)
	default:
		slices, ok = slice.Backward(ctx, entry, seed, seedLoc)
	}
	if !ok {
		return nil, false
	}

	points := make([]ResultPoint, 0, len(slices))
	for _, se := range slices {
		p := ResultPoint{
			Location:      se.Location,
			Place:         se.Place,
			Relation:      se.Relation,
			OperationKind: se.OperationKind,
			Summary:       se.Summary,
			HasSpan:       se.HasSpan,
			Start:         se.Start,
			End:           se.End,
		}
		if se.HasSpan && src != nil && se.Start >= 0 && se.End <= len(src) && se.Start <= se.End {
			p.Text = string(src[se.Start:se.End])
		}
		if p.Text == "" {
			if op := place.OperationAt(entry.CFG, se.Location); op != nil {
				p.Text = op.Text()
			}
		}
		points = append(points, p)
	}

	return &SliceResponse{Seed: seed, SeedLocation: seedLoc, Direction: dir, Points: points}, true
}

// InvalidateDocument drops every cached member of doc, the response to an
// edit (§3, Lifecycles).
func (c *Core) InvalidateDocument(doc string) {
	c.mem.InvalidateDocument(doc)
}

// CacheStatistics returns cumulative hit/miss/eviction counters.
func (c *Core) CacheStatistics() cache.Statistics {
	return c.mem.Statistics()
}

