// Package irtest provides a minimal, hand-built implementation of the ir
// contract for unit tests in flow, engine, slice, and cache. It lets the
// core's tests express the scenarios in the specification (S1-S6) directly,
// without depending on astcfg or go/cfg.
package irtest

import "github.com/aclements/focusslice/ir"

// Sym is a test Symbol: identity is by ID, which is the name with a
// kind-qualified suffix (unless IDStr overrides it) to keep keys readable
// in test failures.
type Sym struct {
	NameStr string
	KindVal ir.SymbolKind
	RefLike bool
	// IDStr overrides the derived ID, for symbols that must collide
	// on purpose (aliasing tests) or must differ despite the same name.
	IDStr string
}

func NewSym(name string, kind ir.SymbolKind) *Sym {
	return &Sym{NameStr: name, KindVal: kind}
}

func NewRefSym(name string, kind ir.SymbolKind) *Sym {
	return &Sym{NameStr: name, KindVal: kind, RefLike: true}
}

func (s *Sym) Name() string           { return s.NameStr }
func (s *Sym) Kind() ir.SymbolKind    { return s.KindVal }
func (s *Sym) IsReferenceLike() bool  { return s.RefLike }
func (s *Sym) ID() string {
	if s.IDStr != "" {
		return s.IDStr
	}
	return s.NameStr + ":" + s.KindVal.String()
}
func (s *Sym) Equal(o ir.Symbol) bool {
	other, ok := o.(*Sym)
	if !ok {
		return false
	}
	return s.ID() == other.ID()
}

// Op is a test Operation: a small struct literal tree mirroring the ir.Operation
// accessor surface. Only the fields relevant to a given Kind need be set.
type Op struct {
	K          ir.OpKind
	Sym        ir.Symbol
	BaseOp     ir.Operand
	Target     ir.Operand
	Value      ir.Operand
	IncDec     ir.Operand
	Increment  bool
	DeclSym    ir.Symbol
	Init       ir.Operand
	Args       []ir.Operand
	Kids       []ir.Operation
	SpanStart  int
	SpanEnd    int
	HasSpan    bool
	TextStr    string
}

func (o *Op) Kind() ir.OpKind              { return o.K }
func (o *Op) Symbol() ir.Symbol            { return o.Sym }
func (o *Op) Base() ir.Operand             { return o.BaseOp }
func (o *Op) AssignTarget() ir.Operand     { return o.Target }
func (o *Op) AssignValue() ir.Operand      { return o.Value }
func (o *Op) IncDecTarget() ir.Operand     { return o.IncDec }
func (o *Op) IsIncrement() bool            { return o.Increment }
func (o *Op) DeclaredSymbol() ir.Symbol    { return o.DeclSym }
func (o *Op) Initializer() ir.Operand      { return o.Init }
func (o *Op) CallArgs() []ir.Operand       { return o.Args }
func (o *Op) Children() []ir.Operation     { return o.Kids }
func (o *Op) Text() string                 { return o.TextStr }
func (o *Op) Span() (int, int, bool) {
	if !o.HasSpan {
		return 0, 0, false
	}
	return o.SpanStart, o.SpanEnd, true
}

// Ref wraps an Operation as a value-operand.
func Ref(op ir.Operation) ir.Operand {
	return ir.Operand{Expr: op}
}

// RefByRef wraps an Operation as a ref/in-bound call argument.
func RefByRef(op ir.Operation) ir.Operand {
	return ir.Operand{Expr: op, Ref: ir.ByRef}
}

// RefByOut wraps an Operation as an out-bound call argument.
func RefByOut(op ir.Operation) ir.Operand {
	return ir.Operand{Expr: op, Ref: ir.ByOut}
}

// LocalRef builds an OpLocalRef/OpParameterRef operation for sym.
func LocalRef(sym ir.Symbol) *Op {
	kind := ir.OpLocalRef
	if sym.Kind() == ir.Parameter {
		kind = ir.OpParameterRef
	}
	return &Op{K: kind, Sym: sym, TextStr: sym.Name(), HasSpan: true, SpanStart: 0, SpanEnd: len(sym.Name())}
}

// FieldRef builds an instance field reference base.field.
func FieldRef(base ir.Operation, field ir.Symbol) *Op {
	return &Op{K: ir.OpFieldRef, Sym: field, BaseOp: Ref(base), TextStr: field.Name()}
}

// Block is a test ir.Block.
type Block struct {
	Ord      int
	Ops      []ir.Operation
	Branch   ir.Operation
	HasBranc bool
	Succs    []ir.Block
	Preds    []ir.Block
}

func (b *Block) Ordinal() int                   { return b.Ord }
func (b *Block) Operations() []ir.Operation      { return b.Ops }
func (b *Block) BranchValue() (ir.Operation, bool) {
	return b.Branch, b.HasBranc
}
func (b *Block) Successors() []ir.Block   { return b.Succs }
func (b *Block) Predecessors() []ir.Block { return b.Preds }

// CFG is a test ir.CFG backed by a slice of *Block, linked by the builder.
type CFG struct {
	BlockList []ir.Block
}

func (c *CFG) Blocks() []ir.Block { return c.BlockList }
func (c *CFG) Entry() ir.Block    { return c.BlockList[0] }
func (c *CFG) Exit() ir.Block     { return c.BlockList[len(c.BlockList)-1] }

// Builder assembles a CFG one block at a time with Link for edges.
type Builder struct {
	blocks []*Block
}

func (b *Builder) Block(ops ...ir.Operation) *Block {
	blk := &Block{Ord: len(b.blocks), Ops: ops}
	b.blocks = append(b.blocks, blk)
	return blk
}

func (b *Builder) BlockWithBranch(branch ir.Operation, ops ...ir.Operation) *Block {
	blk := &Block{Ord: len(b.blocks), Ops: ops, Branch: branch, HasBranc: true}
	b.blocks = append(b.blocks, blk)
	return blk
}

func (b *Builder) Link(from, to *Block) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}

func (b *Builder) Build() *CFG {
	list := make([]ir.Block, len(b.blocks))
	for i, blk := range b.blocks {
		list[i] = blk
	}
	return &CFG{BlockList: list}
}
