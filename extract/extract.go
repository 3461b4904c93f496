// Package extract implements the Place Extractor (§4.B): mapping an
// operation expression to the Place it denotes, if any.
package extract

import (
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

// TryCreate maps op to its underlying Place, following the recognition
// table of §4.B. It returns ok == false for shapes that don't denote a
// memory location (literals, calls used as values, binary operators, ...).
func TryCreate(op ir.Operation) (place.Place, bool) {
	if op == nil {
		return place.Place{}, false
	}

	switch op.Kind() {
	case ir.OpLocalRef, ir.OpParameterRef, ir.OpStaticFieldRef:
		sym := op.Symbol()
		if sym == nil {
			return place.Place{}, false
		}
		return place.New(sym), true

	case ir.OpFieldRef:
		sym := op.Symbol()
		if sym == nil {
			return place.Place{}, false
		}
		base := op.Base()
		if base.Expr == nil {
			// Static field ref with no instance operand.
			return place.New(sym), true
		}
		basePlace, ok := TryCreate(base.Expr)
		if !ok {
			// "if Obj not extractable, (f, [])".
			return place.New(sym), true
		}
		return basePlace.WithProjection(sym), true

	case ir.OpArrayElementRef:
		// Index-insensitive: extract the array base, stripping the
		// index entirely.
		base := op.Base()
		if base.Expr == nil {
			return place.Place{}, false
		}
		return TryCreate(base.Expr)

	case ir.OpWrapper:
		// Conversion / parenthesized / await / conditional-access:
		// recurse into the inner operand.
		base := op.Base()
		if base.Expr == nil {
			return place.Place{}, false
		}
		return TryCreate(base.Expr)

	default:
		return place.Place{}, false
	}
}

// IsIndexed reports whether op's Place (per TryCreate) was reached through
// an array-element or indexer projection anywhere along its base chain.
// Extraction is index-insensitive, so this is the only remaining trace of
// that once the Place itself is built; the transfer function (§4.F) uses it
// to rule out a strong update on an indexed target.
func IsIndexed(op ir.Operation) bool {
	if op == nil {
		return false
	}
	switch op.Kind() {
	case ir.OpArrayElementRef:
		return true
	case ir.OpFieldRef, ir.OpWrapper:
		base := op.Base()
		if base.Expr == nil {
			return false
		}
		return IsIndexed(base.Expr)
	default:
		return false
	}
}
