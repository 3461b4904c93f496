package astcfg

import (
	"fmt"
	"go/token"
	"go/types"

	"github.com/aclements/focusslice/ir"
)

// symbol adapts a go/types.Object to ir.Symbol. Identity is the underlying
// Object pointer: go/types interns one Object per declaration, so pointer
// equality already gives us "same declared entity."
type symbol struct {
	obj    types.Object
	kind   ir.SymbolKind
	fset   *token.FileSet
}

func newSymbol(fset *token.FileSet, obj types.Object, kind ir.SymbolKind) *symbol {
	return &symbol{obj: obj, kind: kind, fset: fset}
}

func (s *symbol) Name() string        { return s.obj.Name() }
func (s *symbol) Kind() ir.SymbolKind { return s.kind }

func (s *symbol) ID() string {
	pos := s.fset.Position(s.obj.Pos())
	return fmt.Sprintf("%s:%d:%d:%s:%s", pos.Filename, pos.Offset, len(s.obj.Name()), s.obj.Name(), s.kind)
}

func (s *symbol) Equal(o ir.Symbol) bool {
	other, ok := o.(*symbol)
	return ok && s.obj == other.obj
}

// IsReferenceLike reports whether s's static type is one assignment can
// alias through: pointers, slices, maps, channels, interfaces, and
// functions all share backing storage across assignment in Go.
func (s *symbol) IsReferenceLike() bool {
	return isReferenceLikeType(s.obj.Type())
}

func isReferenceLikeType(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Slice, *types.Map, *types.Chan, *types.Interface, *types.Signature:
		return true
	default:
		return false
	}
}
