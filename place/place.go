// Package place defines the immutable identities the rest of the slicer
// operates over: Place (a memory location expressed as base.m1.m2...),
// ProgramLocation (a (block, op_index) pair), and Mutation (a write effect
// recorded at a location).
package place

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aclements/focusslice/ir"
)

// Place is an ordered pair (base symbol, projection path). It represents a
// memory location expressed as base.m1.m2.... Places are immutable;
// WithProjection returns a new value.
type Place struct {
	base ir.Symbol
	path []ir.Symbol
}

// New constructs a Place with an empty projection path. base must not be
// nil.
func New(base ir.Symbol) Place {
	if base == nil {
		panic("place: nil base symbol")
	}
	return Place{base: base}
}

// IsZero reports whether p is the zero Place (no base symbol), which is
// what PlaceExtractor-style functions return for "no place".
func (p Place) IsZero() bool {
	return p.base == nil
}

// Base returns the base symbol.
func (p Place) Base() ir.Symbol {
	return p.base
}

// Path returns the projection path. Callers must not mutate the result.
func (p Place) Path() []ir.Symbol {
	return p.path
}

// WithProjection returns a new Place extending p's path with m.
func (p Place) WithProjection(m ir.Symbol) Place {
	newPath := make([]ir.Symbol, len(p.path)+1)
	copy(newPath, p.path)
	newPath[len(p.path)] = m
	return Place{base: p.base, path: newPath}
}

// WithPath returns a new Place extending p's path with every symbol in
// rest, in order. An empty rest returns p unchanged.
func (p Place) WithPath(rest []ir.Symbol) Place {
	if len(rest) == 0 {
		return p
	}
	newPath := make([]ir.Symbol, len(p.path)+len(rest))
	copy(newPath, p.path)
	copy(newPath[len(p.path):], rest)
	return Place{base: p.base, path: newPath}
}

// Prefixes returns every proper prefix of p, from the base (empty
// projection) up to but not including p itself, in order of increasing
// length. Each returned Place pairs with the path suffix still needed to
// reach p, via Remaining.
func (p Place) Prefixes() []Place {
	if p.IsZero() {
		return nil
	}
	prefixes := make([]Place, len(p.path))
	for k := range p.path {
		prefixes[k] = Place{base: p.base, path: append([]ir.Symbol(nil), p.path[:k]...)}
	}
	return prefixes
}

// Remaining returns p's path with prefix's path length trimmed off the
// front: the projection still needed to get from prefix to p.
func (p Place) Remaining(prefix Place) []ir.Symbol {
	return p.path[len(prefix.path):]
}

// Equal reports whether p and q denote the same Place: equality and
// hashing ignore presentation and include every projection component.
func (p Place) Equal(q Place) bool {
	if p.IsZero() || q.IsZero() {
		return p.IsZero() == q.IsZero()
	}
	if !p.base.Equal(q.base) || len(p.path) != len(q.path) {
		return false
	}
	for i := range p.path {
		if !p.path[i].Equal(q.path[i]) {
			return false
		}
	}
	return true
}

// IsStrictProjectionOf reports whether p is a strict projection of q: q's
// path is a proper prefix of p's and they share a base.
func (p Place) IsStrictProjectionOf(q Place) bool {
	if p.IsZero() || q.IsZero() {
		return false
	}
	if !p.base.Equal(q.base) {
		return false
	}
	if len(q.path) >= len(p.path) {
		return false
	}
	for i := range q.path {
		if !q.path[i].Equal(p.path[i]) {
			return false
		}
	}
	return true
}

// Key returns a stable, cross-process deterministic string: the Cache key
// format of the specification, symbol_identity("|" symbol_identity)*.
func (p Place) Key() string {
	if p.IsZero() {
		return ""
	}
	parts := make([]string, 0, len(p.path)+1)
	parts = append(parts, p.base.ID())
	for _, m := range p.path {
		parts = append(parts, m.ID())
	}
	return strings.Join(parts, "|")
}

// String returns a human-readable "base.m1.m2" rendering for diagnostics.
func (p Place) String() string {
	if p.IsZero() {
		return "<none>"
	}
	var b strings.Builder
	b.WriteString(p.base.Name())
	for _, m := range p.path {
		b.WriteByte('.')
		b.WriteString(m.Name())
	}
	return b.String()
}

// ProgramLocation identifies one operation (or a block's terminator) inside
// a CFG: an ordered pair (block_id, op_index). op_index in [0, N] where N
// straight-line operations exist in the block: indices 0..N-1 address the
// straight-line operations and index N addresses the branch/terminator
// expression, when present.
type ProgramLocation struct {
	Block    int
	OpIndex  int
}

// NewLocation constructs a ProgramLocation. It panics if opIndex is negative, per
// the specification's "ProgramLocation rejects negative op_index."
func NewLocation(block, opIndex int) ProgramLocation {
	if opIndex < 0 {
		panic(fmt.Sprintf("place: negative op_index %d", opIndex))
	}
	return ProgramLocation{Block: block, OpIndex: opIndex}
}

// Less implements the total ordering: block ordinal first, then op_index.
func (l ProgramLocation) Less(m ProgramLocation) bool {
	if l.Block != m.Block {
		return l.Block < m.Block
	}
	return l.OpIndex < m.OpIndex
}

func (l ProgramLocation) String() string {
	return fmt.Sprintf("b%d:%d", l.Block, l.OpIndex)
}

// SortLocations sorts locs by (block_ordinal, op_index) in place and
// returns it, for callers that want to chain.
func SortLocations(locs []ProgramLocation) []ProgramLocation {
	sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })
	return locs
}

// MutationKind enumerates the write-effect shapes the mutation detector
// recognizes. All kinds are writes.
type MutationKind int

const (
	Assignment MutationKind = iota
	CompoundAssignment
	Initialization
	Increment
	Decrement
	RefArgument
	OutArgument
)

func (k MutationKind) String() string {
	switch k {
	case Assignment:
		return "assignment"
	case CompoundAssignment:
		return "compound-assignment"
	case Initialization:
		return "initialization"
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	case RefArgument:
		return "ref-argument"
	case OutArgument:
		return "out-argument"
	default:
		return "unknown"
	}
}

// OperationAt resolves loc against g: operations()[loc.OpIndex] for an
// op_index inside the block's straight-line run, or the block's branch
// value when op_index addresses it. Returns nil if loc's block doesn't
// exist in g or its op_index is out of range for it — the "out-of-range
// cached indices are silently dropped" failure mode (§7), since a stale
// ProgramLocation applied to a different CFG must degrade, not panic.
func OperationAt(g ir.CFG, loc ProgramLocation) ir.Operation {
	for _, b := range g.Blocks() {
		if b.Ordinal() != loc.Block {
			continue
		}
		ops := b.Operations()
		if loc.OpIndex < len(ops) {
			return ops[loc.OpIndex]
		}
		if branch, ok := b.BranchValue(); ok && loc.OpIndex == len(ops) {
			return branch
		}
		return nil
	}
	return nil
}

// Mutation is a write effect recorded at a program location.
type Mutation struct {
	Target   Place
	Location ProgramLocation
	Kind     MutationKind
	// Indexed is true when Target was reached through an array-element
	// or indexer projection (extraction is index-insensitive, so this
	// flag is the only remaining trace of that once Target is built).
	// The transfer function uses it to rule out a strong update.
	Indexed bool
}
