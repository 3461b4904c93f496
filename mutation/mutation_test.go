package mutation_test

import (
	"testing"

	"github.com/aclements/focusslice/internal/irtest"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/mutation"
	"github.com/aclements/focusslice/place"
)

func TestSimpleAssign(t *testing.T) {
	a := irtest.NewSym("a", ir.Local)
	op := &irtest.Op{K: ir.OpAssign, Target: irtest.Ref(irtest.LocalRef(a))}
	loc := place.NewLocation(0, 0)
	ms := mutation.ForOperation(loc, op)
	if len(ms) != 1 || ms[0].Kind != place.Assignment {
		t.Fatalf("got %+v", ms)
	}
	if !ms[0].Target.Equal(place.New(a)) {
		t.Errorf("target = %v, want a", ms[0].Target)
	}
}

func TestCompoundAssignAndIncDec(t *testing.T) {
	a := irtest.NewSym("a", ir.Local)
	loc := place.NewLocation(0, 0)

	compound := &irtest.Op{K: ir.OpCompoundAssign, Target: irtest.Ref(irtest.LocalRef(a))}
	ms := mutation.ForOperation(loc, compound)
	if len(ms) != 1 || ms[0].Kind != place.CompoundAssignment {
		t.Fatalf("compound: got %+v", ms)
	}

	inc := &irtest.Op{K: ir.OpIncDec, IncDec: irtest.Ref(irtest.LocalRef(a)), Increment: true}
	ms = mutation.ForOperation(loc, inc)
	if len(ms) != 1 || ms[0].Kind != place.Increment {
		t.Fatalf("inc: got %+v", ms)
	}

	dec := &irtest.Op{K: ir.OpIncDec, IncDec: irtest.Ref(irtest.LocalRef(a)), Increment: false}
	ms = mutation.ForOperation(loc, dec)
	if len(ms) != 1 || ms[0].Kind != place.Decrement {
		t.Fatalf("dec: got %+v", ms)
	}
}

func TestDeclareInit(t *testing.T) {
	a := irtest.NewSym("a", ir.Local)
	op := &irtest.Op{K: ir.OpDeclareInit, DeclSym: a}
	ms := mutation.ForOperation(place.NewLocation(0, 0), op)
	if len(ms) != 1 || ms[0].Kind != place.Initialization || !ms[0].Target.Equal(place.New(a)) {
		t.Fatalf("got %+v", ms)
	}
}

func TestRefAndOutArguments(t *testing.T) {
	n := irtest.NewSym("n", ir.Local)
	lit := &irtest.Op{K: ir.OpOther}
	call := &irtest.Op{
		K: ir.OpCall,
		Args: []ir.Operand{
			irtest.RefByRef(irtest.LocalRef(n)),
			irtest.Ref(lit), // by-value literal argument: no mutation
		},
	}
	ms := mutation.ForOperation(place.NewLocation(0, 1), call)
	if len(ms) != 1 || ms[0].Kind != place.RefArgument || !ms[0].Target.Equal(place.New(n)) {
		t.Fatalf("got %+v", ms)
	}

	out := irtest.NewSym("out", ir.Local)
	call2 := &irtest.Op{K: ir.OpCall, Args: []ir.Operand{irtest.RefByOut(irtest.LocalRef(out))}}
	ms = mutation.ForOperation(place.NewLocation(0, 1), call2)
	if len(ms) != 1 || ms[0].Kind != place.OutArgument {
		t.Fatalf("got %+v", ms)
	}
}

func TestRecursesIntoNestedCalls(t *testing.T) {
	// "Helper(out n);" as an expression statement — the call is a child
	// of the outer statement wrapper, and must still contribute a mutation.
	n := irtest.NewSym("n", ir.Local)
	innerCall := &irtest.Op{
		K: ir.OpCall,
		Args: []ir.Operand{
			irtest.RefByOut(irtest.LocalRef(n)),
		},
	}
	wrapperStmt := &irtest.Op{K: ir.OpOther, Kids: []ir.Operation{innerCall}}
	ms := mutation.ForOperation(place.NewLocation(0, 2), wrapperStmt)
	if len(ms) != 1 || ms[0].Kind != place.OutArgument {
		t.Fatalf("expected nested call mutation, got %+v", ms)
	}
}

func TestNoMutationWhenTargetNotExtractable(t *testing.T) {
	call := &irtest.Op{K: ir.OpCall}
	assign := &irtest.Op{K: ir.OpAssign, Target: irtest.Ref(call)}
	ms := mutation.ForOperation(place.NewLocation(0, 0), assign)
	if len(ms) != 0 {
		t.Fatalf("expected no mutation, got %+v", ms)
	}
}
