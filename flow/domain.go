// Package flow implements the Flow Domain and transfer function (§4.F): the
// per-Place dependency-set lattice the fixpoint engine iterates, and the
// rule that turns one operation plus an incoming state into an outgoing
// state.
package flow

import "github.com/aclements/focusslice/place"

// Domain is a partial map Place -> Set<ProgramLocation>: for every tracked
// Place, the set of locations that may have contributed to its current
// value. The zero Domain is the lattice bottom (nothing tracked).
type Domain struct {
	m map[string]domEntry
}

type domEntry struct {
	place place.Place
	locs  map[place.ProgramLocation]struct{}
}

// Bottom returns the empty Domain.
func Bottom() Domain {
	return Domain{m: map[string]domEntry{}}
}

// Clone returns a deep copy, safe to mutate independently of d.
func (d Domain) Clone() Domain {
	out := make(map[string]domEntry, len(d.m))
	for k, e := range d.m {
		locs := make(map[place.ProgramLocation]struct{}, len(e.locs))
		for l := range e.locs {
			locs[l] = struct{}{}
		}
		out[k] = domEntry{place: e.place, locs: locs}
	}
	return Domain{m: out}
}

// Get returns the tracked dependency set for p, or nil if p is untracked.
// The caller must not mutate the result.
func (d Domain) Get(p place.Place) map[place.ProgramLocation]struct{} {
	if e, ok := d.m[p.Key()]; ok {
		return e.locs
	}
	return nil
}

// GetSorted returns Get(p) as a sorted slice, for deterministic output.
func (d Domain) GetSorted(p place.Place) []place.ProgramLocation {
	locs := d.Get(p)
	out := make([]place.ProgramLocation, 0, len(locs))
	for l := range locs {
		out = append(out, l)
	}
	return place.SortLocations(out)
}

// Places returns every Place currently tracked in d.
func (d Domain) Places() []place.Place {
	out := make([]place.Place, 0, len(d.m))
	for _, e := range d.m {
		out = append(out, e.place)
	}
	return out
}

// setStrong replaces p's dependency set with locs (a copy of it).
func (d Domain) setStrong(p place.Place, locs map[place.ProgramLocation]struct{}) {
	cp := make(map[place.ProgramLocation]struct{}, len(locs))
	for l := range locs {
		cp[l] = struct{}{}
	}
	d.m[p.Key()] = domEntry{place: p, locs: cp}
}

// unionWeak adds every location in locs to p's existing dependency set
// (creating it if absent), rather than replacing it.
func (d Domain) unionWeak(p place.Place, locs map[place.ProgramLocation]struct{}) {
	e, ok := d.m[p.Key()]
	if !ok {
		e = domEntry{place: p, locs: make(map[place.ProgramLocation]struct{}, len(locs))}
	}
	for l := range locs {
		e.locs[l] = struct{}{}
	}
	d.m[p.Key()] = e
}

// Join computes the pointwise union of the given domains: the fixpoint
// engine's join-over-predecessors operator (§4.G).
func Join(domains ...Domain) Domain {
	out := Bottom()
	for _, d := range domains {
		for k, e := range d.m {
			existing, ok := out.m[k]
			if !ok {
				existing = domEntry{place: e.place, locs: make(map[place.ProgramLocation]struct{}, len(e.locs))}
			}
			for l := range e.locs {
				existing.locs[l] = struct{}{}
			}
			out.m[k] = existing
		}
	}
	return out
}

// Equal reports whether d and o track the same Places with identical
// dependency sets: the fixpoint engine's termination test.
func (d Domain) Equal(o Domain) bool {
	if len(d.m) != len(o.m) {
		return false
	}
	for k, e := range d.m {
		oe, ok := o.m[k]
		if !ok || len(e.locs) != len(oe.locs) {
			return false
		}
		for l := range e.locs {
			if _, ok := oe.locs[l]; !ok {
				return false
			}
		}
	}
	return true
}
