// Package classsummary answers a narrower question than the core slicer:
// for one field of one type, which methods of that type read it, and
// which write it. It is a single pass over the declaring package's syntax
// trees, not a fixpoint — no CFG, no aliasing, no control dependence. A
// field seed is outside the core's scope (§1); this is what actually
// answers it.
package classsummary

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log"
	"sort"

	"github.com/aclements/focusslice/astcfg"
)

// Access records one read or write of the summarized field, inside one
// member of the declaring type.
type Access struct {
	Member string
	Pos    token.Position
	Write  bool
}

// Summary is the result of Summarize: every access to one field, grouped
// by the member it occurs in.
type Summary struct {
	Type     string
	Field    string
	Accesses []Access
}

// Members returns the distinct member names with at least one access to
// the field, sorted.
func (s *Summary) Members() []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range s.Accesses {
		if !seen[a.Member] {
			seen[a.Member] = true
			names = append(names, a.Member)
		}
	}
	sort.Strings(names)
	return names
}

// Summarize walks every function and method declared in pkg, recording
// every access to typeName's fieldName field. typeName must be declared in
// pkg; methods on *typeName and typeName are both considered. Plain
// functions (no receiver) are not inspected, even when they take a
// typeName (or *typeName) parameter.
func Summarize(pkg *astcfg.Package, typeName, fieldName string) (*Summary, error) {
	info := pkg.Pkg.TypesInfo
	fset := pkg.Fset

	obj := pkg.Pkg.Types.Scope().Lookup(typeName)
	if obj == nil {
		return nil, fmt.Errorf("classsummary: no type %q in package %s", typeName, pkg.Pkg.PkgPath)
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("classsummary: %q is not a named type", typeName)
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("classsummary: %q is not a struct type", typeName)
	}
	var field *types.Var
	for i := 0; i < st.NumFields(); i++ {
		if st.Field(i).Name() == fieldName {
			field = st.Field(i)
			break
		}
	}
	if field == nil {
		return nil, fmt.Errorf("classsummary: type %q has no field %q", typeName, fieldName)
	}

	sum := &Summary{Type: typeName, Field: fieldName}
	for _, file := range pkg.Pkg.Syntax {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Body == nil {
				continue
			}
			if !receiverMatches(fn, named) {
				continue
			}
			sum.Accesses = append(sum.Accesses, accessesIn(fn, field, info, fset)...)
		}
	}
	if len(sum.Accesses) == 0 {
		log.Printf("classsummary: %s.%s has no recorded accesses in %s", typeName, fieldName, pkg.Pkg.PkgPath)
	}
	return sum, nil
}

// receiverMatches reports whether fn is a method on named (by value or by
// pointer receiver). Plain functions (no receiver) never match: a field
// access can only be reached through a value of the declaring type.
func receiverMatches(fn *ast.FuncDecl, named *types.Named) bool {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return false
	}
	t := fn.Recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	ident, ok := t.(*ast.Ident)
	return ok && ident.Name == named.Obj().Name()
}

// accessesIn scans fn's body for selector expressions resolving to field,
// classifying each as a write when it is the direct target of an
// assignment or increment/decrement, and a read otherwise.
func accessesIn(fn *ast.FuncDecl, field *types.Var, info *types.Info, fset *token.FileSet) []Access {
	writes := make(map[*ast.SelectorExpr]bool)
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.AssignStmt:
			for _, lhs := range s.Lhs {
				if sel, ok := lhs.(*ast.SelectorExpr); ok {
					writes[sel] = true
				}
			}
		case *ast.IncDecStmt:
			if sel, ok := s.X.(*ast.SelectorExpr); ok {
				writes[sel] = true
			}
		case *ast.UnaryExpr:
			if s.Op == token.AND {
				if sel, ok := s.X.(*ast.SelectorExpr); ok {
					// &x.Field: the callee may write through the
					// pointer, so this counts as a write too.
					writes[sel] = true
				}
			}
		}
		return true
	})

	var accesses []Access
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		obj := info.Uses[sel.Sel]
		v, ok := obj.(*types.Var)
		if !ok || v != field {
			return true
		}
		accesses = append(accesses, Access{
			Member: fn.Name.Name,
			Pos:    fset.Position(sel.Pos()),
			Write:  writes[sel],
		})
		return true
	})
	return accesses
}
