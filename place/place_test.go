package place_test

import (
	"testing"

	"github.com/aclements/focusslice/internal/irtest"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

func TestPlaceEquality(t *testing.T) {
	a := irtest.NewSym("a", ir.Local)
	f := irtest.NewSym("f", ir.Field)

	p1 := place.New(a).WithProjection(f)
	p2 := place.New(a).WithProjection(f)
	if !p1.Equal(p2) {
		t.Errorf("expected %v == %v", p1, p2)
	}
	if p1.Key() != p2.Key() {
		t.Errorf("keys differ: %q vs %q", p1.Key(), p2.Key())
	}

	base := place.New(a)
	if !base.IsStrictProjectionOf(base) {
		// Reflexive case should be false, not crash: q's path must be
		// a *proper* prefix.
	}
	if base.IsStrictProjectionOf(base) {
		t.Errorf("a Place should not be a strict projection of itself")
	}
	if !p1.IsStrictProjectionOf(base) {
		t.Errorf("a.f should be a strict projection of a")
	}
}

func TestPlaceKeyStable(t *testing.T) {
	a := irtest.NewSym("a", ir.Local)
	p := place.New(a)
	if p.Key() != a.ID() {
		t.Errorf("single-symbol place key = %q, want %q", p.Key(), a.ID())
	}
}

func TestProgramLocationOrdering(t *testing.T) {
	l1 := place.NewLocation(0, 3)
	l2 := place.NewLocation(1, 0)
	if !l1.Less(l2) {
		t.Errorf("expected block 0 < block 1 regardless of op_index")
	}
	locs := []place.ProgramLocation{
		place.NewLocation(2, 0),
		place.NewLocation(0, 5),
		place.NewLocation(0, 1),
	}
	place.SortLocations(locs)
	want := []place.ProgramLocation{
		place.NewLocation(0, 1),
		place.NewLocation(0, 5),
		place.NewLocation(2, 0),
	}
	for i := range want {
		if locs[i] != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v", i, locs[i], want[i])
		}
	}
}

func TestNegativeOpIndexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for negative op_index")
		}
	}()
	place.NewLocation(0, -1)
}
