package astcfg

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"

	"github.com/aclements/focusslice/extract"
	"github.com/aclements/focusslice/place"
)

// Package bundles one go/packages result with the pieces BuildCFG and
// ResolveSeed need: the type-checker's tables, the file set, and the
// package itself.
type Package struct {
	Fset *token.FileSet
	Pkg  *packages.Package
}

// Load loads pkgPath (and its syntax trees and type information) from dir,
// the way cmd/sliceinspect resolves a "-pkg" flag into something BuildCFG
// can consume.
func Load(dir, pkgPath string) (*Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedDeps,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, fmt.Errorf("astcfg: loading %s: %w", pkgPath, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("astcfg: no package found for %s", pkgPath)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("astcfg: %s has type errors", pkgPath)
	}
	return &Package{Fset: pkgs[0].Fset, Pkg: pkgs[0]}, nil
}

// FindFunc returns the *ast.FuncDecl named name in p, and the file it was
// found in (BuildCFG needs that file's source text for Operation.Text()).
func (p *Package) FindFunc(name string) (*ast.FuncDecl, *ast.File, error) {
	for _, file := range p.Pkg.Syntax {
		for _, decl := range file.Decls {
			if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == name {
				return fn, file, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("astcfg: no function %q in package %s", name, p.Pkg.PkgPath)
}

// ResolveSeed finds the innermost expression enclosing the byte offset
// pos in file, and extracts the Place it denotes: the editor-facing
// rendering of "a seed position resolves to a Place" (§3). ok is false
// when nothing at pos denotes a memory location (a keyword, a literal, a
// call expression itself, ...).
func ResolveSeed(fset *token.FileSet, file *ast.File, info *types.Info, pkg *types.Package, src []byte, pos int) (place.Place, bool) {
	tf := fset.File(file.Pos())
	if tf == nil || pos < 0 || pos >= tf.Size() {
		return place.Place{}, false
	}
	start := tf.Pos(pos)
	path, _ := astutil.PathEnclosingInterval(file, start, start)
	if len(path) == 0 {
		return place.Place{}, false
	}

	params := map[types.Object]bool{}
	for _, n := range path {
		if fn, ok := n.(*ast.FuncDecl); ok {
			params = paramSet(fn, info)
			break
		}
	}
	e := &env{fset: fset, info: info, src: src, pkg: pkg, params: params}
	for _, n := range path {
		expr, ok := n.(ast.Expr)
		if !ok {
			continue
		}
		op := wrap(expr, e)
		if p, ok := extract.TryCreate(op); ok {
			return p, true
		}
	}
	return place.Place{}, false
}
