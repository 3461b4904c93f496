package alias_test

import (
	"testing"

	"github.com/aclements/focusslice/alias"
	"github.com/aclements/focusslice/internal/irtest"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

func TestReferenceAssignmentAliases(t *testing.T) {
	// y = x; where x is reference-typed.
	x := irtest.NewRefSym("x", ir.Local)
	y := irtest.NewRefSym("y", ir.Local)
	assign := &irtest.Op{K: ir.OpAssign, Target: irtest.Ref(irtest.LocalRef(y)), Value: irtest.Ref(irtest.LocalRef(x))}

	a := alias.New()
	// Exercise Build's per-op visit path directly via a one-block CFG.
	var b irtest.Builder
	b.Block(assign)
	a = alias.Build(b.Build())

	px, py := place.New(x), place.New(y)
	if !a.AreAliased(px, py) {
		t.Fatal("expected x and y to be aliased after y = x")
	}
	found := false
	for _, al := range a.Aliases(py) {
		if al.Equal(px) {
			found = true
		}
	}
	if !found {
		t.Fatalf("Aliases(y) = %v, want to include x", a.Aliases(py))
	}
}

func TestNonReferenceAssignmentDoesNotAlias(t *testing.T) {
	x := irtest.NewSym("x", ir.Local) // not reference-like
	y := irtest.NewSym("y", ir.Local)
	assign := &irtest.Op{K: ir.OpAssign, Target: irtest.Ref(irtest.LocalRef(y)), Value: irtest.Ref(irtest.LocalRef(x))}
	var b irtest.Builder
	b.Block(assign)
	a := alias.Build(b.Build())

	if a.AreAliased(place.New(x), place.New(y)) {
		t.Fatal("value-typed assignment should not create an alias")
	}
}

func TestRefCallArgumentsAlias(t *testing.T) {
	p := irtest.NewSym("p", ir.Local)
	q := irtest.NewSym("q", ir.Local)
	call := &irtest.Op{K: ir.OpCall, Args: []ir.Operand{
		irtest.RefByRef(irtest.LocalRef(p)),
		irtest.RefByOut(irtest.LocalRef(q)),
	}}
	var b irtest.Builder
	b.Block(call)
	a := alias.Build(b.Build())

	if !a.AreAliased(place.New(p), place.New(q)) {
		t.Fatal("two by-reference arguments of the same call should be may-aliased")
	}
}

func TestAliasesAlwaysIncludesSelf(t *testing.T) {
	a := alias.New()
	x := irtest.NewSym("x", ir.Local)
	px := place.New(x)
	found := false
	for _, al := range a.Aliases(px) {
		if al.Equal(px) {
			found = true
		}
	}
	if !found {
		t.Fatal("Aliases(p) must always include p")
	}
}

func TestPrefixProjection(t *testing.T) {
	// obj aliases other; Aliases(obj.f) must include other.f.
	obj := irtest.NewRefSym("obj", ir.Local)
	other := irtest.NewRefSym("other", ir.Local)
	f := irtest.NewSym("f", ir.Field)

	a := alias.New()
	a.Add(place.New(obj), place.New(other))

	objF := place.New(obj).WithProjection(f)
	otherF := place.New(other).WithProjection(f)

	found := false
	for _, al := range a.Aliases(objF) {
		if al.Equal(otherF) {
			found = true
		}
	}
	if !found {
		t.Fatalf("Aliases(obj.f) = %v, want to include other.f", a.Aliases(objF))
	}
}
