package astcfg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aclements/focusslice/astcfg"
	"github.com/aclements/focusslice/mutation"
)

const sampleSource = `package sample

func Chain() int {
	a := 1
	b := a + 1
	c := b * 2
	return c
}
`

func loadSample(t *testing.T) (*astcfg.Package, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module sample\n\ngo 1.21\n"), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sample.go"), []byte(sampleSource), 0o644); err != nil {
		t.Fatalf("write sample.go: %v", err)
	}
	pkg, err := astcfg.Load(dir, "sample")
	if err != nil {
		t.Fatalf("astcfg.Load: %v", err)
	}
	return pkg, dir
}

func TestBuildCFGRecognizesSimpleAssignChain(t *testing.T) {
	pkg, _ := loadSample(t)
	fn, file, err := pkg.FindFunc("Chain")
	if err != nil {
		t.Fatalf("FindFunc: %v", err)
	}

	info := pkg.Pkg.TypesInfo
	g, err := astcfg.BuildCFG(pkg.Fset, info, pkg.Pkg.Types, fn, []byte(sampleSource))
	if err != nil {
		t.Fatalf("BuildCFG: %v", err)
	}

	muts := mutation.ForCFG(g)
	var names []string
	for _, m := range muts {
		names = append(names, m.Target.Base().Name())
	}
	want := map[string]bool{"a": true, "b": true, "c": true}
	if len(names) < 3 {
		t.Fatalf("mutation.ForCFG(g) = %v, want at least a, b, c", names)
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected mutation target %q", n)
		}
	}
	_ = file
}
