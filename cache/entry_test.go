package cache_test

import (
	"context"
	"testing"

	"github.com/aclements/focusslice/cache"
	"github.com/aclements/focusslice/internal/irtest"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

// chainCFG builds op0: a := <init>; op1: b = a; op2: c = b -- same shape
// as the slice package's straightLineChain, minus the trailing print.
func chainCFG() (*irtest.CFG, *irtest.Sym, *irtest.Sym, *irtest.Sym) {
	a := irtest.NewSym("a", ir.Local)
	b := irtest.NewSym("b", ir.Local)
	c := irtest.NewSym("c", ir.Local)

	op0 := &irtest.Op{K: ir.OpDeclareInit, DeclSym: a}
	op1 := &irtest.Op{K: ir.OpAssign,
		Target: irtest.Ref(irtest.LocalRef(b)),
		Value:  irtest.Ref(&irtest.Op{K: ir.OpOther, Kids: []ir.Operation{irtest.LocalRef(a)}}),
	}
	op2 := &irtest.Op{K: ir.OpAssign,
		Target: irtest.Ref(irtest.LocalRef(c)),
		Value:  irtest.Ref(&irtest.Op{K: ir.OpOther, Kids: []ir.Operation{irtest.LocalRef(b)}}),
	}

	var bld irtest.Builder
	bld.Block(op0, op1, op2)
	return bld.Build(), a, b, c
}

// TestDependenciesContainsTheMutationsOwnLocation checks testable property
// 3: every Mutation at L puts L in dependencies[key(target)].
func TestDependenciesContainsTheMutationsOwnLocation(t *testing.T) {
	g, a, b, c := chainCFG()
	e, err := cache.Build(context.Background(), "doc.go", "m", g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	loc0, loc1, loc2 := place.NewLocation(0, 0), place.NewLocation(0, 1), place.NewLocation(0, 2)
	cases := []struct {
		p   place.Place
		loc place.ProgramLocation
	}{
		{place.New(a), loc0},
		{place.New(b), loc1},
		{place.New(c), loc2},
	}
	for _, tc := range cases {
		deps := e.Dependencies(tc.p)
		if !containsLocation(deps, tc.loc) {
			t.Errorf("Dependencies(%v) = %v, want it to contain %s", tc.p, deps, tc.loc)
		}
	}
}

// TestReadsContainsEveryReadingLocation checks testable property 4.
func TestReadsContainsEveryReadingLocation(t *testing.T) {
	g, a, b, _ := chainCFG()
	e, err := cache.Build(context.Background(), "doc.go", "m", g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if reads := e.Reads(place.New(a)); !containsLocation(reads, place.NewLocation(0, 1)) {
		t.Errorf("Reads(a) = %v, want it to contain op1 (b = a)", reads)
	}
	if reads := e.Reads(place.New(b)); !containsLocation(reads, place.NewLocation(0, 2)) {
		t.Errorf("Reads(b) = %v, want it to contain op2 (c = b)", reads)
	}
}

// TestAliasesAlwaysContainsTheQueriedPlace checks testable property 5 and
// invariant 1: aliases[key(p)] always contains p itself, even with no
// alias edges recorded for it.
func TestAliasesAlwaysContainsTheQueriedPlace(t *testing.T) {
	g, a, _, _ := chainCFG()
	e, err := cache.Build(context.Background(), "doc.go", "m", g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	aliases := e.AliasesOf(place.New(a))
	found := false
	for _, al := range aliases {
		if al.Equal(place.New(a)) {
			found = true
		}
	}
	if !found {
		t.Errorf("AliasesOf(a) = %v, want it to contain a itself", aliases)
	}
}

// TestMutationTargetsMatchesRecordedMutations checks invariant 3 directly
// against each location's own mutation, per §4.H step 4.
func TestMutationTargetsMatchesRecordedMutations(t *testing.T) {
	g, a, b, c := chainCFG()
	e, err := cache.Build(context.Background(), "doc.go", "m", g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cases := []struct {
		loc  place.ProgramLocation
		want place.Place
	}{
		{place.NewLocation(0, 0), place.New(a)},
		{place.NewLocation(0, 1), place.New(b)},
		{place.NewLocation(0, 2), place.New(c)},
	}
	for _, tc := range cases {
		targets := e.MutationTargets(tc.loc)
		if len(targets) != 1 || !targets[0].Equal(tc.want) {
			t.Errorf("MutationTargets(%s) = %v, want [%v]", tc.loc, targets, tc.want)
		}
	}
}

func containsLocation(locs []place.ProgramLocation, loc place.ProgramLocation) bool {
	for _, l := range locs {
		if l == loc {
			return true
		}
	}
	return false
}
