package cache

import (
	"sort"

	"github.com/aclements/focusslice/place"
)

// projection holds the four queryable tables the cache entry builder
// assembles over an analyzed member (§4.H): dependencies and reads keyed by
// Place.Key(), the alias closure keyed by Place.Key(), and mutation targets
// keyed by ProgramLocation. All value slices are sorted so two builds of
// the same CFG produce byte-identical tables.
type projection struct {
	dependencies    map[string][]place.ProgramLocation
	reads           map[string][]place.ProgramLocation
	aliases         map[string][]place.Place
	mutationTargets map[place.ProgramLocation][]place.Place
}

// buildProjection walks every location tracked by the fixpoint and every
// place its Domain tracks there, folding them into the four tables:
//
//   - For every (location, place) pair with a non-empty Domain entry, that
//     place's dependency set at that location is unioned into
//     dependencies[key(place)].
//   - aliases[key(place)] is seeded with place itself for every place ever
//     tracked, then the alias analyzer's closure is folded in.
//   - reads[key(place)] gains location for every place ReadsByLocation
//     records as read there.
//   - mutationTargets[location] gains every mutation target recorded there.
func buildProjection(e *Entry) *projection {
	p := &projection{
		dependencies:    make(map[string][]place.ProgramLocation),
		reads:           make(map[string][]place.ProgramLocation),
		aliases:         make(map[string][]place.Place),
		mutationTargets: make(map[place.ProgramLocation][]place.Place),
	}

	depSets := make(map[string]map[place.ProgramLocation]struct{})
	addDep := func(pl place.Place, loc place.ProgramLocation) {
		key := pl.Key()
		set, ok := depSets[key]
		if !ok {
			set = make(map[place.ProgramLocation]struct{})
			depSets[key] = set
		}
		set[loc] = struct{}{}
	}
	seenPlaces := make(map[string]place.Place)
	touch := func(pl place.Place) {
		if !pl.IsZero() {
			seenPlaces[pl.Key()] = pl
		}
	}

	for _, dom := range e.Flow.AtLocation {
		for _, pl := range dom.Places() {
			touch(pl)
			for l := range dom.Get(pl) {
				addDep(pl, l)
			}
		}
	}

	readSets := make(map[string]map[place.ProgramLocation]struct{})
	for loc, reads := range e.Tables.ReadsByLocation {
		for _, pl := range reads {
			touch(pl)
			key := pl.Key()
			set, ok := readSets[key]
			if !ok {
				set = make(map[place.ProgramLocation]struct{})
				readSets[key] = set
			}
			set[loc] = struct{}{}
		}
	}

	mutTargets := make(map[place.ProgramLocation]map[string]place.Place)
	for loc, muts := range e.Tables.MutationsByLocation {
		for _, m := range muts {
			touch(m.Target)
			set, ok := mutTargets[loc]
			if !ok {
				set = make(map[string]place.Place)
				mutTargets[loc] = set
			}
			set[m.Target.Key()] = m.Target
		}
	}

	for key, locs := range depSets {
		out := make([]place.ProgramLocation, 0, len(locs))
		for l := range locs {
			out = append(out, l)
		}
		p.dependencies[key] = place.SortLocations(out)
	}
	for key, locs := range readSets {
		out := make([]place.ProgramLocation, 0, len(locs))
		for l := range locs {
			out = append(out, l)
		}
		p.reads[key] = place.SortLocations(out)
	}
	for loc, set := range mutTargets {
		out := make([]place.Place, 0, len(set))
		for _, pl := range set {
			out = append(out, pl)
		}
		sortPlaces(out)
		p.mutationTargets[loc] = out
	}

	for key, pl := range seenPlaces {
		set := make(map[string]place.Place)
		set[key] = pl
		for _, a := range e.Aliases.Aliases(pl) {
			set[a.Key()] = a
		}
		out := make([]place.Place, 0, len(set))
		for _, a := range set {
			out = append(out, a)
		}
		sortPlaces(out)
		p.aliases[key] = out
	}

	return p
}

// sortPlaces sorts places by their Key(), the "stable string order" the
// specification requires for Place-valued table entries.
func sortPlaces(places []place.Place) {
	sort.Slice(places, func(i, j int) bool { return places[i].Key() < places[j].Key() })
}
