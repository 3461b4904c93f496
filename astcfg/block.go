package astcfg

import "github.com/aclements/focusslice/ir"

// block is a fixed, precomputed ir.Block: every accessor just returns a
// slice built once while the CFG was constructed, the same shape irtest
// uses for its test fixtures.
type block struct {
	ord       int
	ops       []ir.Operation
	branch    ir.Operation
	hasBranch bool
	succs     []ir.Block
	preds     []ir.Block
}

func (b *block) Ordinal() int              { return b.ord }
func (b *block) Operations() []ir.Operation { return b.ops }
func (b *block) BranchValue() (ir.Operation, bool) {
	return b.branch, b.hasBranch
}
func (b *block) Successors() []ir.Block   { return b.succs }
func (b *block) Predecessors() []ir.Block { return b.preds }

// CFG is the astcfg-backed ir.CFG: one member body's blocks, built once by
// BuildCFG.
type CFG struct {
	blocks []ir.Block
}

func (c *CFG) Blocks() []ir.Block { return c.blocks }
func (c *CFG) Entry() ir.Block    { return c.blocks[0] }
func (c *CFG) Exit() ir.Block     { return c.blocks[len(c.blocks)-1] }
