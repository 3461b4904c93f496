// Package ir defines the contract the core consumes from its collaborators:
// a control-flow graph, the operations inside it, and the symbol identities
// those operations refer to. Nothing in this package is specific to Go
// source; astcfg is the only package in this module that builds concrete
// values of these interfaces from go/ast and go/types.
package ir

// SymbolKind classifies a Symbol for display and for recognition rules in
// the place extractor.
type SymbolKind int

const (
	Unknown SymbolKind = iota
	Local
	Parameter
	Field
	Property
	Event
	Method
)

func (k SymbolKind) String() string {
	switch k {
	case Local:
		return "local"
	case Parameter:
		return "parameter"
	case Field:
		return "field"
	case Property:
		return "property"
	case Event:
		return "event"
	case Method:
		return "method"
	default:
		return "unknown"
	}
}

// Symbol is an opaque, collaborator-supplied identity for a declared
// entity. Equality is semantic: two Symbol values obtained for the same
// declaration must be ==, or must satisfy Equal, so the core can use them
// as map keys without knowing how the collaborator represents them.
//
// The core never synthesizes a Symbol; it only composes Places out of
// Symbols handed to it by a collaborator.
type Symbol interface {
	// Name is the display name of the symbol.
	Name() string
	// Kind classifies the symbol.
	Kind() SymbolKind
	// ID is a stable, cross-process identifier, per the "Cache key
	// format" rules in the specification: a documentation-style id when
	// available, else "file:offset:length:name:kind", else
	// "[metadata]:displayname".
	ID() string
	// Equal reports whether two symbols denote the same declared entity.
	Equal(Symbol) bool
	// IsReferenceLike reports whether values of this symbol's static
	// type are reference types (or this symbol is itself a by-reference
	// parameter), which is what licenses an alias edge on assignment
	// (§4.D).
	IsReferenceLike() bool
}

// RefKind classifies how an argument is bound to a callee parameter.
type RefKind int

const (
	// ByValue arguments are passed by value; no Mutation is produced for
	// them and they do not participate in call-site aliasing.
	ByValue RefKind = iota
	// ByRef arguments are bound to a ref/in-like parameter: a Mutation
	// with kind RefArgument.
	ByRef
	// ByOut arguments are bound to an out-like parameter: a Mutation
	// with kind OutArgument.
	ByOut
)

// OpKind loosely classifies an Operation for the mutation detector and the
// transfer function. It is intentionally coarse: the extractor and the
// transfer function both look past OpKind into the Operation's structural
// accessors for the details that matter.
type OpKind int

const (
	OpOther OpKind = iota
	OpLocalRef
	OpParameterRef
	OpFieldRef
	OpStaticFieldRef
	OpArrayElementRef
	OpWrapper // conversion / parenthesized / await / conditional-access
	OpAssign
	OpCompoundAssign
	OpIncDec
	OpDeclareInit
	OpCall
	OpBranch
)

func (k OpKind) String() string {
	switch k {
	case OpLocalRef:
		return "local_ref"
	case OpParameterRef:
		return "parameter_ref"
	case OpFieldRef:
		return "field_ref"
	case OpStaticFieldRef:
		return "static_field_ref"
	case OpArrayElementRef:
		return "array_element_ref"
	case OpWrapper:
		return "wrapper"
	case OpAssign:
		return "assign"
	case OpCompoundAssign:
		return "compound_assign"
	case OpIncDec:
		return "inc_dec"
	case OpDeclareInit:
		return "declare_init"
	case OpCall:
		return "call"
	case OpBranch:
		return "branch"
	default:
		return "other"
	}
}

// Operand is one read or write-candidate position inside an Operation: an
// argument, an assignment side, an array base, etc.
type Operand struct {
	// Expr is the nested Operation at this operand position, or nil if
	// this operand is not itself an extractable sub-operation (e.g. a
	// numeric literal).
	Expr Operation
	// Ref classifies by-reference binding for call arguments; zero value
	// (ByValue) for every other operand kind.
	Ref RefKind
}

// Operation is one node in the collaborator's expression/statement tree:
// the unit the place extractor and mutation detector look at.
type Operation interface {
	Kind() OpKind

	// Symbol returns the referenced symbol for *Ref operations
	// (OpLocalRef, OpParameterRef, OpFieldRef, OpStaticFieldRef), or nil
	// otherwise.
	Symbol() Symbol

	// Base returns the base operand for array-element refs, instance
	// field refs, conversions, parenthesized expressions, awaits, and
	// conditional-access expressions (the "recurse into inner operand"
	// rule of §4.B). Returns a zero Operand (nil Expr) when not
	// applicable.
	Base() Operand

	// AssignTarget and AssignValue return the two sides of a simple or
	// compound assignment. Valid only when Kind is OpAssign or
	// OpCompoundAssign.
	AssignTarget() Operand
	AssignValue() Operand

	// IncDecTarget returns the target of an increment/decrement.
	// IsIncrement distinguishes ++ from --.
	IncDecTarget() Operand
	IsIncrement() bool

	// DeclaredSymbol and Initializer describe a variable declarator with
	// an initializer. DeclaredSymbol is nil when Kind != OpDeclareInit.
	DeclaredSymbol() Symbol
	Initializer() Operand

	// CallArgs returns every argument operand of a call, in source
	// order. Valid only when Kind is OpCall; returns nil otherwise.
	CallArgs() []Operand

	// Children returns every immediate sub-operation of this operation,
	// for the mutation detector's statement-wide recursion (§4.C: "must
	// also recurse into subexpressions of a statement"). It need not be
	// the same set as the operand accessors above — it exists so a
	// caller can walk an entire statement without knowing its shape.
	Children() []Operation

	// Span returns a best-effort textual span for this operation, used
	// by the slice extractors to compute a "precise syntactic span".
	// ok is false when no syntax is available (§7: missing operation
	// syntax degrades to "no result").
	Span() (start, end int, ok bool)

	// Text returns the source text for Span(), or "" if unavailable.
	Text() string
}

// Block is one basic block of a CFG: a straight-line run of Operations plus
// an optional terminator (branch) Operation.
type Block interface {
	// Ordinal is this block's position in CFG.Blocks(); ProgramLocation
	// block_id values are ordinals.
	Ordinal() int
	// Operations returns the N straight-line operations of the block, in
	// order. op_index 0..N-1 index into this slice.
	Operations() []Operation
	// BranchValue returns the block's terminator expression, if any.
	// When present, it is addressed by op_index == len(Operations()).
	BranchValue() (Operation, bool)
	// Successors returns every reachable successor block, deduplicated,
	// regardless of how the collaborator's CFG represents the edge kind
	// (conditional, fall-through, switch-case, or otherwise) — per §9,
	// the core depends only on the set of successor blocks.
	Successors() []Block
	// Predecessors returns every block with an edge to this one.
	Predecessors() []Block
}

// CFG is the control-flow graph for one member body.
type CFG interface {
	// Blocks returns every block, ordered by Ordinal (0..len-1, dense).
	Blocks() []Block
	// Entry is the unique entry block.
	Entry() Block
	// Exit is the block used as the starting point for post-dominator
	// computation: the CFG's highest-ordinal block, per the
	// specification's "exit block (last-ordinal block)" convention.
	Exit() Block
}
