// Command sliceinspect stands in for "the editor/IDE front-end": it loads
// a package, builds a CFG for one chosen function, resolves a seed
// position inside it, and prints either the backward/forward slice from
// that seed or a cross-method field summary.
//
// Usage:
//
//	sliceinspect -dir . -pkg ./foo -func Bar -seed 123 -direction backward
//	sliceinspect -dir . -pkg ./foo -field Counter.n
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aclements/focusslice/analysis"
	"github.com/aclements/focusslice/astcfg"
	"github.com/aclements/focusslice/classsummary"
)

func main() {
	var (
		dir       string
		pkgPath   string
		funcName  string
		seed      int
		direction string
		field     string
	)
	flag.StringVar(&dir, "dir", ".", "module directory to load -pkg from")
	flag.StringVar(&pkgPath, "pkg", "", "import path of the package to analyze")
	flag.StringVar(&funcName, "func", "", "name of the function or method to analyze")
	flag.IntVar(&seed, "seed", -1, "byte offset of the seed position within the function's file")
	flag.StringVar(&direction, "direction", "backward", "slice direction: backward or forward")
	flag.StringVar(&field, "field", "", "Type.Field to summarize across methods, instead of slicing")
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(2)
	}
	if pkgPath == "" {
		log.Fatal("sliceinspect: -pkg is required")
	}

	pkg, err := astcfg.Load(dir, pkgPath)
	if err != nil {
		log.Fatal(err)
	}

	if field != "" {
		runClassSummary(pkg, field)
		return
	}

	if funcName == "" {
		log.Fatal("sliceinspect: -func is required unless -field is given")
	}
	if seed < 0 {
		log.Fatal("sliceinspect: -seed is required unless -field is given")
	}
	runSlice(pkg, funcName, seed, direction)
}

func runClassSummary(pkg *astcfg.Package, field string) {
	typeName, fieldName, ok := strings.Cut(field, ".")
	if !ok {
		log.Fatalf("sliceinspect: -field must be Type.Field, got %q", field)
	}
	sum, err := classsummary.Summarize(pkg, typeName, fieldName)
	if err != nil {
		log.Fatal(err)
	}
	for _, m := range sum.Members() {
		fmt.Printf("%s:\n", m)
		for _, a := range sum.Accesses {
			if a.Member != m {
				continue
			}
			kind := "read"
			if a.Write {
				kind = "write"
			}
			fmt.Printf("  %s %s\n", a.Pos, kind)
		}
	}
}

func runSlice(pkg *astcfg.Package, funcName string, seed int, direction string) {
	fn, file, err := pkg.FindFunc(funcName)
	if err != nil {
		log.Fatal(err)
	}
	info := pkg.Pkg.TypesInfo
	filename := pkg.Fset.Position(file.Pos()).Filename
	src, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("sliceinspect: reading %s: %v", filename, err)
	}

	g, err := astcfg.BuildCFG(pkg.Fset, info, pkg.Pkg.Types, fn, src)
	if err != nil {
		log.Fatal(err)
	}

	seedPlace, ok := astcfg.ResolveSeed(pkg.Fset, file, info, pkg.Pkg.Types, src, seed)
	if !ok {
		log.Fatalf("sliceinspect: offset %d does not resolve to a place in %s", seed, funcName)
	}
	seedLoc, ok := astcfg.LocateOperation(g, seed)
	if !ok {
		log.Fatalf("sliceinspect: offset %d is not inside any operation in %s", seed, funcName)
	}

	dir := analysis.Backward
	if direction == "forward" {
		dir = analysis.Forward
	} else if direction != "backward" {
		log.Fatalf("sliceinspect: -direction must be backward or forward, got %q", direction)
	}

	core := analysis.NewCore(64)
	resp, ok := core.ComputeSlice(context.Background(), dir, filename, funcName, seedPlace, seedLoc, g, src)
	if !ok {
		log.Fatal("sliceinspect: no slice could be computed for the given seed")
	}

	fmt.Printf("%s slice of %s at offset %d:\n", resp.Direction, seedPlace, seed)
	for _, p := range resp.Points {
		text := p.Text
		if text == "" {
			text = "<no source>"
		}
		fmt.Printf("  %s [%s %s]: %s -- %s\n", p.Location, p.Relation, p.OperationKind, strings.TrimSpace(text), p.Summary)
	}
}
