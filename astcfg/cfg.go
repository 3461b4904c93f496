// Package astcfg is the collaborator: it builds the ir.CFG, ir.Operation,
// and ir.Symbol values the core consumes from real Go source, using
// go/packages, go/ast, go/types, and golang.org/x/tools/go/cfg. Nothing
// outside this package knows go/ast exists.
package astcfg

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	gocfg "golang.org/x/tools/go/cfg"

	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

// BuildCFG constructs the CFG for fn's body. info must be the *types.Info
// produced by type-checking the file fn lives in (Defs and Uses at
// minimum); pkg is fn's package, used to recognize package-level
// declarations; src is fn's file's source text, used for Operation.Text().
func BuildCFG(fset *token.FileSet, info *types.Info, pkg *types.Package, fn *ast.FuncDecl, src []byte) (*CFG, error) {
	if fn.Body == nil {
		return nil, fmt.Errorf("astcfg: %s has no body", fn.Name)
	}

	e := &env{fset: fset, info: info, src: src, pkg: pkg, params: paramSet(fn, info)}

	// mayReturn is go/cfg's hook for pruning unreachable code after a
	// call that provably never returns (os.Exit, log.Fatal, ...). This
	// analysis has no such catalog, so every call conservatively may
	// return, matching "never remove a block the source could reach."
	mayReturn := func(*ast.CallExpr) bool { return true }
	raw := gocfg.New(fn.Body, mayReturn)

	blocks := make([]*block, len(raw.Blocks))
	for i := range raw.Blocks {
		blocks[i] = &block{ord: i}
	}
	for i, rb := range raw.Blocks {
		blocks[i].ops, blocks[i].branch, blocks[i].hasBranch = splitNodes(rb.Nodes, e)
		seen := make(map[int32]bool, len(rb.Succs))
		for _, s := range rb.Succs {
			if seen[s.Index] {
				continue
			}
			seen[s.Index] = true
			blocks[i].succs = append(blocks[i].succs, blocks[int(s.Index)])
		}
	}
	for _, b := range blocks {
		for _, s := range b.succs {
			sb := s.(*block)
			sb.preds = append(sb.preds, b)
		}
	}

	out := make([]ir.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b
	}
	return &CFG{blocks: out}, nil
}

// splitNodes separates a go/cfg Block's Nodes into straight-line operations
// and an optional trailing branch condition: go/cfg represents a block's
// terminator condition as a bare ast.Expr, the last element of Nodes, when
// the block has more than one successor.
func splitNodes(nodes []ast.Node, e *env) (ops []ir.Operation, branch ir.Operation, hasBranch bool) {
	n := len(nodes)
	straight := nodes
	if n > 0 {
		if expr, ok := nodes[n-1].(ast.Expr); ok {
			straight = nodes[:n-1]
			branch = wrap(expr, e)
			hasBranch = branch != nil
		}
	}
	for _, node := range straight {
		if op := wrap(node, e); op != nil {
			ops = append(ops, op)
		}
	}
	return ops, branch, hasBranch
}

// paramSet collects every go/types.Object bound as a parameter or receiver
// of fn: go/types does not itself distinguish a parameter Var from a local
// one, so the place extractor's Parameter/Local split has to be tracked
// separately, once, here.
func paramSet(fn *ast.FuncDecl, info *types.Info) map[types.Object]bool {
	params := make(map[types.Object]bool)
	add := func(fl *ast.FieldList) {
		if fl == nil {
			return
		}
		for _, f := range fl.List {
			for _, name := range f.Names {
				if obj := info.Defs[name]; obj != nil {
					params[obj] = true
				}
			}
		}
	}
	add(fn.Recv)
	if fn.Type != nil {
		add(fn.Type.Params)
		add(fn.Type.Results)
	}
	return params
}

// LocateOperation finds the tightest-enclosing operation in g whose Span
// contains offset (a byte offset into the source passed to BuildCFG), and
// returns the ProgramLocation that addresses it. This is how a host turns
// a seed byte offset (already resolved to a Place by ResolveSeed) into the
// seedLoc ComputeSlice also needs. Only block-level operations and branch
// values are candidates (a ProgramLocation cannot address a nested
// sub-operation), so a position inside a call argument resolves to the
// statement that contains it; when several candidates contain offset, the
// narrowest span wins.
func LocateOperation(g *CFG, offset int) (place.ProgramLocation, bool) {
	best := place.ProgramLocation{}
	bestLen := -1
	found := false

	consider := func(block, opIndex int, op ir.Operation) {
		start, end, ok := op.Span()
		if !ok || offset < start || offset > end {
			return
		}
		if n := end - start; bestLen == -1 || n < bestLen {
			best = place.NewLocation(block, opIndex)
			bestLen = n
			found = true
		}
	}

	for _, b := range g.Blocks() {
		ops := b.Operations()
		for i, op := range ops {
			consider(b.Ordinal(), i, op)
		}
		if branch, ok := b.BranchValue(); ok {
			consider(b.Ordinal(), len(ops), branch)
		}
	}
	return best, found
}
