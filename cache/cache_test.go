package cache_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aclements/focusslice/cache"
	"github.com/aclements/focusslice/internal/irtest"
	"github.com/aclements/focusslice/ir"
)

func oneBlockCFG() *irtest.CFG {
	a := irtest.NewSym("a", ir.Local)
	var b irtest.Builder
	b.Block(&irtest.Op{K: ir.OpDeclareInit, DeclSym: a})
	return b.Build()
}

func TestPutThenGetHits(t *testing.T) {
	c := cache.New(4)
	e, err := cache.Build(context.Background(), "doc.go", "m1", oneBlockCFG())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c.Put(e)

	if _, ok := c.Get("m1"); !ok {
		t.Fatal("expected a hit after Put")
	}
	stats := c.Statistics()
	if stats.Hits != 1 {
		t.Fatalf("got %+v, want 1 hit", stats)
	}
}

func TestGetMissBeforePut(t *testing.T) {
	c := cache.New(4)
	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected a miss for an unpopulated key")
	}
	if c.Statistics().Misses != 1 {
		t.Fatalf("got %+v, want 1 miss", c.Statistics())
	}
}

func TestInvalidateDocumentDropsOnlyThatDocument(t *testing.T) {
	c := cache.New(4)
	e1, _ := cache.Build(context.Background(), "a.go", "m1", oneBlockCFG())
	e2, _ := cache.Build(context.Background(), "b.go", "m2", oneBlockCFG())
	c.Put(e1)
	c.Put(e2)

	c.InvalidateDocument("a.go")

	if _, ok := c.Get("m1"); ok {
		t.Fatal("expected m1 to be evicted along with its document")
	}
	if _, ok := c.Get("m2"); !ok {
		t.Fatal("expected m2 (a different document) to survive")
	}
}

func TestEvictionUpdatesStatistics(t *testing.T) {
	c := cache.New(1)
	e1, _ := cache.Build(context.Background(), "a.go", "m1", oneBlockCFG())
	e2, _ := cache.Build(context.Background(), "a.go", "m2", oneBlockCFG())
	c.Put(e1)
	c.Put(e2) // capacity 1: evicts m1

	if _, ok := c.Get("m1"); ok {
		t.Fatal("expected m1 to have been evicted for capacity")
	}
	if c.Statistics().Evictions != 1 {
		t.Fatalf("got %+v, want 1 eviction", c.Statistics())
	}
}

func TestStatisticsReflectHitsMissesAndEvictions(t *testing.T) {
	c := cache.New(1)
	c.Get("absent")
	e1, _ := cache.Build(context.Background(), "a.go", "m1", oneBlockCFG())
	e2, _ := cache.Build(context.Background(), "a.go", "m2", oneBlockCFG())
	c.Put(e1)
	c.Put(e2) // capacity 1: evicts m1
	c.Get("m2")

	want := cache.Statistics{Hits: 1, Misses: 1, Evictions: 1}
	if diff := cmp.Diff(want, c.Statistics()); diff != "" {
		t.Errorf("Statistics() mismatch (-want +got):\n%s", diff)
	}
}
