// Package controldep implements the Control-Dependence Analyzer (§4.E):
// dominators, post-dominators, immediate post-dominators, and the
// control-dependence relation derived from them.
package controldep

import (
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

type blockSet map[int]struct{}

func (s blockSet) has(b int) bool { _, ok := s[b]; return ok }

func (s blockSet) clone() blockSet {
	out := make(blockSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s blockSet) equal(o blockSet) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o.has(k) {
			return false
		}
	}
	return true
}

func intersect(sets []blockSet) blockSet {
	if len(sets) == 0 {
		return blockSet{}
	}
	out := sets[0].clone()
	for _, s := range sets[1:] {
		for k := range out {
			if !s.has(k) {
				delete(out, k)
			}
		}
	}
	return out
}

// Analysis is the derived set of tables described in §4.E, for one CFG.
type Analysis struct {
	g           ir.CFG
	dom         map[int]blockSet
	pdom        map[int]blockSet
	ipdom       map[int]int // -1 when no immediate post-dominator
	controllers map[int]blockSet
	blocksByOrd map[int]ir.Block
}

// Build computes dominators, post-dominators, immediate post-dominators,
// and control dependence for g.
func Build(g ir.CFG) *Analysis {
	a := &Analysis{g: g, blocksByOrd: make(map[int]ir.Block)}
	for _, b := range g.Blocks() {
		a.blocksByOrd[b.Ordinal()] = b
	}

	a.dom = a.fixpoint(g.Entry().Ordinal(), func(b ir.Block) []ir.Block { return b.Predecessors() })
	a.pdom = a.fixpoint(g.Exit().Ordinal(), func(b ir.Block) []ir.Block { return b.Successors() })
	a.ipdom = computeImmediate(a.pdom)
	a.controllers = a.buildControlDependence()
	return a
}

// fixpoint implements "Dom(entry) = {entry}; for every other block,
// Dom(B) = {B} ∪ ⋂_{p∈Pred(B)} Dom(p); iterate until no set changes" (and
// its symmetric post-dominator form when walk enumerates successors instead
// of predecessors, rooted at the exit block).
func (a *Analysis) fixpoint(root int, walk func(ir.Block) []ir.Block) map[int]blockSet {
	sets := make(map[int]blockSet)
	for ord := range a.blocksByOrd {
		sets[ord] = blockSet{}
	}
	sets[root] = blockSet{root: {}}

	changed := true
	for changed {
		changed = false
		for ord, b := range a.blocksByOrd {
			if ord == root {
				continue
			}
			preds := walk(b)
			var predSets []blockSet
			for _, p := range preds {
				if s, ok := sets[p.Ordinal()]; ok && len(s) > 0 {
					predSets = append(predSets, s)
				}
			}
			var newSet blockSet
			if len(predSets) == 0 {
				// No (yet-computed) predecessor: this block is not
				// reachable from root on this walk; conservatively
				// dominate only itself so callers never see an
				// out-of-range claim.
				newSet = blockSet{ord: {}}
			} else {
				newSet = intersect(predSets)
				newSet[ord] = struct{}{}
			}
			if !newSet.equal(sets[ord]) {
				sets[ord] = newSet
				changed = true
			}
		}
	}
	return sets
}

// computeImmediate picks, for each block, the element of its post-dominator
// set with the smallest post-dominator set, excluding the block itself.
func computeImmediate(pdom map[int]blockSet) map[int]int {
	ipdom := make(map[int]int, len(pdom))
	for b, set := range pdom {
		best := -1
		bestSize := -1
		for cand := range set {
			if cand == b {
				continue
			}
			size := len(pdom[cand])
			if best == -1 || size < bestSize {
				best, bestSize = cand, size
			}
		}
		ipdom[b] = best
	}
	return ipdom
}

// buildControlDependence implements the per-branch-block DFS of §4.E: for
// each successor S of a multi-successor block X, walk from S, stopping at
// ipdom(X) and at X itself; every block visited (excluding X) is control
// dependent on X.
func (a *Analysis) buildControlDependence() map[int]blockSet {
	controllers := make(map[int]blockSet)
	for ord := range a.blocksByOrd {
		controllers[ord] = blockSet{}
	}

	for ord, b := range a.blocksByOrd {
		succs := dedupSuccessors(b.Successors())
		if len(succs) <= 1 {
			continue
		}
		stop := a.ipdom[ord]
		for _, s := range succs {
			a.dfsMark(s.Ordinal(), ord, stop, controllers)
		}
	}
	return controllers
}

func (a *Analysis) dfsMark(start, branch, stop int, controllers map[int]blockSet) {
	visited := blockSet{}
	var walk func(n int)
	walk = func(n int) {
		if n == stop || n == branch || visited.has(n) {
			return
		}
		visited[n] = struct{}{}
		controllers[n][branch] = struct{}{}
		for _, s := range a.blocksByOrd[n].Successors() {
			walk(s.Ordinal())
		}
	}
	walk(start)
}

// dedupSuccessors collapses duplicate destination blocks, tolerating
// whatever mixture of conditional/fall-through/switch-case/unknown edge
// kinds the collaborator's CFG exposes (§9).
func dedupSuccessors(succs []ir.Block) []ir.Block {
	seen := make(map[int]struct{}, len(succs))
	out := make([]ir.Block, 0, len(succs))
	for _, s := range succs {
		if s == nil {
			continue
		}
		if _, ok := seen[s.Ordinal()]; ok {
			continue
		}
		seen[s.Ordinal()] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ControllingBlocks returns the ordinals of every block that blockOrd is
// control dependent on.
func (a *Analysis) ControllingBlocks(blockOrd int) []int {
	set := a.controllers[blockOrd]
	out := make([]int, 0, len(set))
	for ord := range set {
		out = append(out, ord)
	}
	return out
}

// GetControlDependencies returns, for each controlling block of loc's
// block, a single "branch location": the branch value's location when
// present, otherwise the last operation in the block.
func (a *Analysis) GetControlDependencies(loc place.ProgramLocation) []place.ProgramLocation {
	var out []place.ProgramLocation
	for _, ctrlOrd := range a.ControllingBlocks(loc.Block) {
		b := a.blocksByOrd[ctrlOrd]
		if _, ok := b.BranchValue(); ok {
			out = append(out, place.NewLocation(ctrlOrd, len(b.Operations())))
			continue
		}
		if n := len(b.Operations()); n > 0 {
			out = append(out, place.NewLocation(ctrlOrd, n-1))
		}
	}
	return out
}
