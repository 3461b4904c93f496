// Package engine implements the Fixpoint Engine (§4.G): a forward worklist
// that applies the transfer function block by block until no block's exit
// state changes, joining predecessor exit states at each block entry.
package engine

import (
	"context"

	"github.com/eapache/queue"

	"github.com/aclements/focusslice/flow"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

// Results is the fixpoint's output: the flow state after every location in
// the CFG, plus each block's entry state (the join of its predecessors'
// exit states) and exit state. The cache entry builder (§4.H) projects
// AtLocation into its tables; the slice extractors read those tables, not
// Results.
type Results struct {
	AtLocation map[place.ProgramLocation]flow.Domain
	// IByLocation is the incoming dependency set the transfer function
	// computed for each location on its last (stable) visit. No package
	// in this module reads it.
	IByLocation map[place.ProgramLocation]map[place.ProgramLocation]struct{}
	BlockEntry  map[int]flow.Domain
	BlockExit   map[int]flow.Domain
}

// Run iterates tr over g's blocks, in the worklist order popularized for
// BFS-style graph traversals, until every block's exit state stabilizes.
// Block order within the worklist does not affect the final fixpoint, only
// how many iterations it takes to reach it — the transfer function and join
// are monotone, so the loop always terminates.
func Run(ctx context.Context, g ir.CFG, tr *flow.Transfer) (*Results, error) {
	blocksByOrd := make(map[int]ir.Block)
	for _, b := range g.Blocks() {
		blocksByOrd[b.Ordinal()] = b
	}

	res := &Results{
		AtLocation:  make(map[place.ProgramLocation]flow.Domain),
		IByLocation: make(map[place.ProgramLocation]map[place.ProgramLocation]struct{}),
		BlockEntry:  make(map[int]flow.Domain),
		BlockExit:   make(map[int]flow.Domain),
	}
	for ord := range blocksByOrd {
		res.BlockExit[ord] = flow.Bottom()
	}

	visited := make(map[int]bool)
	q := queue.New()
	inQueue := make(map[int]bool)
	enqueue := func(ord int) {
		if !inQueue[ord] {
			inQueue[ord] = true
			q.Add(ord)
		}
	}
	for _, b := range g.Blocks() {
		enqueue(b.Ordinal())
	}

	for q.Length() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ord := q.Peek().(int)
		q.Remove()
		inQueue[ord] = false

		b := blocksByOrd[ord]
		entry := joinPredecessorExits(b, res.BlockExit)
		res.BlockEntry[ord] = entry

		state := entry
		var depSet map[place.ProgramLocation]struct{}
		ops := b.Operations()
		for i := range ops {
			loc := place.NewLocation(ord, i)
			state, depSet = tr.Apply(state, loc)
			res.AtLocation[loc] = state
			res.IByLocation[loc] = depSet
		}
		if _, ok := b.BranchValue(); ok {
			loc := place.NewLocation(ord, len(ops))
			state, depSet = tr.Apply(state, loc)
			res.AtLocation[loc] = state
			res.IByLocation[loc] = depSet
		}

		if !visited[ord] || !state.Equal(res.BlockExit[ord]) {
			visited[ord] = true
			res.BlockExit[ord] = state
			for _, s := range b.Successors() {
				enqueue(s.Ordinal())
			}
		}
	}
	return res, nil
}

func joinPredecessorExits(b ir.Block, exits map[int]flow.Domain) flow.Domain {
	preds := b.Predecessors()
	if len(preds) == 0 {
		return flow.Bottom()
	}
	domains := make([]flow.Domain, len(preds))
	for i, p := range preds {
		domains[i] = exits[p.Ordinal()]
	}
	return flow.Join(domains...)
}
