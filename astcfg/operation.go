package astcfg

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/aclements/focusslice/ir"
)

// env is the shared context every operation in one member's CFG is built
// against: the position table, the type-checker's results, the member's
// source text (for Text()), and the set of objects bound as parameters
// (go/types does not itself distinguish a parameter Var from a local one).
type env struct {
	fset   *token.FileSet
	info   *types.Info
	src    []byte
	params map[types.Object]bool
	pkg    *types.Package
}

func (e *env) symbolFor(obj types.Object, kind ir.SymbolKind) *symbol {
	return newSymbol(e.fset, obj, kind)
}

// identKind classifies a go/types.Object referenced by an *ast.Ident as a
// local, a parameter, or a package-level declaration (rendered as a static
// field: no base operand, visible from anywhere in the package).
func (e *env) identKind(obj types.Object) ir.SymbolKind {
	if e.params[obj] {
		return ir.Parameter
	}
	if _, ok := obj.(*types.Var); ok && obj.Parent() == e.pkg.Scope() {
		return ir.Field // package-level var: OpStaticFieldRef, below
	}
	return ir.Local
}

// operation adapts one go/ast node to ir.Operation. Every accessor is
// populated once, in wrap, rather than recomputed per call.
type operation struct {
	kind         ir.OpKind
	sym          ir.Symbol
	base         ir.Operand
	target       ir.Operand
	value        ir.Operand
	incDec       ir.Operand
	isIncrement  bool
	declSym      ir.Symbol
	init         ir.Operand
	args         []ir.Operand
	children     []ir.Operation
	node         ast.Node
	e            *env
}

func (o *operation) Kind() ir.OpKind           { return o.kind }
func (o *operation) Symbol() ir.Symbol         { return o.sym }
func (o *operation) Base() ir.Operand          { return o.base }
func (o *operation) AssignTarget() ir.Operand  { return o.target }
func (o *operation) AssignValue() ir.Operand   { return o.value }
func (o *operation) IncDecTarget() ir.Operand  { return o.incDec }
func (o *operation) IsIncrement() bool         { return o.isIncrement }
func (o *operation) DeclaredSymbol() ir.Symbol { return o.declSym }
func (o *operation) Initializer() ir.Operand   { return o.init }
func (o *operation) CallArgs() []ir.Operand    { return o.args }
func (o *operation) Children() []ir.Operation  { return o.children }

func (o *operation) Span() (int, int, bool) {
	if o.node == nil {
		return 0, 0, false
	}
	start := o.e.fset.Position(o.node.Pos()).Offset
	end := o.e.fset.Position(o.node.End()).Offset
	if start < 0 || end < start || (o.e.src != nil && end > len(o.e.src)) {
		return 0, 0, false
	}
	return start, end, true
}

func (o *operation) Text() string {
	start, end, ok := o.Span()
	if !ok || o.e.src == nil {
		return ""
	}
	return string(o.e.src[start:end])
}

func operand(node ast.Node, e *env) ir.Operand {
	op := wrap(node, e)
	if op == nil {
		return ir.Operand{}
	}
	return ir.Operand{Expr: op}
}

// wrap builds the ir.Operation for node, or nil when node is nil. Node
// shapes with no dedicated case become OpOther.
func wrap(node ast.Node, e *env) ir.Operation {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *ast.Ident:
		return wrapIdent(n, e)
	case *ast.SelectorExpr:
		return wrapSelector(n, e)
	case *ast.IndexExpr:
		return &operation{kind: ir.OpArrayElementRef, base: operand(n.X, e), node: n, e: e}
	case *ast.ParenExpr:
		return &operation{kind: ir.OpWrapper, base: operand(n.X, e), node: n, e: e}
	case *ast.StarExpr:
		return &operation{kind: ir.OpWrapper, base: operand(n.X, e), node: n, e: e}
	case *ast.TypeAssertExpr:
		return &operation{kind: ir.OpWrapper, base: operand(n.X, e), node: n, e: e}
	case *ast.UnaryExpr:
		if n.Op == token.AND {
			return &operation{kind: ir.OpWrapper, base: operand(n.X, e), node: n, e: e}
		}
		return &operation{kind: ir.OpOther, children: childList(e, n.X), node: n, e: e}
	case *ast.BinaryExpr:
		return &operation{kind: ir.OpOther, children: childList(e, n.X, n.Y), node: n, e: e}
	case *ast.CallExpr:
		return wrapCall(n, e)
	case *ast.AssignStmt:
		return wrapAssign(n, e)
	case *ast.IncDecStmt:
		return &operation{
			kind:        ir.OpIncDec,
			incDec:      operand(n.X, e),
			isIncrement: n.Tok == token.INC,
			node:        n, e: e,
		}
	case *ast.DeclStmt:
		return wrapDecl(n, e)
	case *ast.ExprStmt:
		return &operation{kind: ir.OpOther, children: childList(e, n.X), node: n, e: e}
	case *ast.ReturnStmt:
		var kids []ast.Node
		for _, r := range n.Results {
			kids = append(kids, r)
		}
		return &operation{kind: ir.OpOther, children: childList(e, kids...), node: n, e: e}
	default:
		return &operation{kind: ir.OpOther, node: n, e: e}
	}
}

func childList(e *env, nodes ...ast.Node) []ir.Operation {
	var out []ir.Operation
	for _, n := range nodes {
		if op := wrap(n, e); op != nil {
			out = append(out, op)
		}
	}
	return out
}

func wrapIdent(n *ast.Ident, e *env) ir.Operation {
	obj := e.info.Uses[n]
	if obj == nil {
		obj = e.info.Defs[n]
	}
	if obj == nil {
		return &operation{kind: ir.OpOther, node: n, e: e}
	}
	kind := e.identKind(obj)
	switch kind {
	case ir.Parameter:
		return &operation{kind: ir.OpParameterRef, sym: e.symbolFor(obj, ir.Parameter), node: n, e: e}
	case ir.Field:
		return &operation{kind: ir.OpStaticFieldRef, sym: e.symbolFor(obj, ir.Field), node: n, e: e}
	default:
		return &operation{kind: ir.OpLocalRef, sym: e.symbolFor(obj, ir.Local), node: n, e: e}
	}
}

func wrapSelector(n *ast.SelectorExpr, e *env) ir.Operation {
	// A qualified identifier (pkg.Name, where pkg is a package name, not
	// a value) has no base place of its own.
	if ident, ok := n.X.(*ast.Ident); ok {
		if _, isPkg := e.info.Uses[ident].(*types.PkgName); isPkg {
			obj := e.info.Uses[n.Sel]
			if obj != nil {
				return &operation{kind: ir.OpStaticFieldRef, sym: e.symbolFor(obj, ir.Field), node: n, e: e}
			}
		}
	}
	obj := e.info.Uses[n.Sel]
	if obj == nil {
		return &operation{kind: ir.OpOther, children: childList(e, n.X), node: n, e: e}
	}
	kind := ir.Field
	if _, isFunc := obj.(*types.Func); isFunc {
		kind = ir.Method
	}
	return &operation{kind: ir.OpFieldRef, sym: e.symbolFor(obj, kind), base: operand(n.X, e), node: n, e: e}
}

func wrapCall(n *ast.CallExpr, e *env) ir.Operation {
	args := make([]ir.Operand, 0, len(n.Args))
	for _, a := range n.Args {
		ref := ir.ByValue
		expr := a
		if u, ok := a.(*ast.UnaryExpr); ok && u.Op == token.AND {
			// &x bound to a call argument: the callee may write
			// through the pointer, so this is treated as a
			// by-reference binding (Go has no separate "out"
			// parameter convention, so ByOut is never produced
			// here).
			ref = ir.ByRef
			expr = u.X
		}
		args = append(args, ir.Operand{Expr: wrap(expr, e), Ref: ref})
	}
	return &operation{kind: ir.OpCall, args: args, node: n, e: e}
}

func wrapAssign(n *ast.AssignStmt, e *env) ir.Operation {
	if len(n.Lhs) != 1 || len(n.Rhs) != 1 {
		// Multi-value assignment (a, b = x, y, or x, err := f() where one
		// right-hand side feeds every target): model each target as its
		// own pair and fold them into Children so the mutation detector
		// still finds them, even though they aren't exposed through
		// AssignTarget/AssignValue individually.
		var kids []ir.Operation
		for i := range n.Lhs {
			j := i
			if len(n.Rhs) == 1 {
				j = 0
			}
			if j >= len(n.Rhs) {
				break
			}
			kids = append(kids, wrapAssignPair(n, i, j, e))
		}
		return &operation{kind: ir.OpOther, children: kids, node: n, e: e}
	}
	return wrapAssignPair(n, 0, 0, e)
}

func wrapAssignPair(n *ast.AssignStmt, i, j int, e *env) ir.Operation {
	lhs, rhs := n.Lhs[i], n.Rhs[j]
	if n.Tok == token.DEFINE {
		if ident, ok := lhs.(*ast.Ident); ok {
			if obj := e.info.Defs[ident]; obj != nil {
				return &operation{
					kind:    ir.OpDeclareInit,
					declSym: e.symbolFor(obj, e.identKind(obj)),
					init:    operand(rhs, e),
					node:    n, e: e,
				}
			}
		}
		// := re-assigning an already-declared identifier (only other
		// names in the list are new): falls through to a plain
		// assignment below.
	}
	if n.Tok == token.ASSIGN || n.Tok == token.DEFINE {
		return &operation{kind: ir.OpAssign, target: operand(lhs, e), value: operand(rhs, e), node: n, e: e}
	}
	return &operation{kind: ir.OpCompoundAssign, target: operand(lhs, e), value: operand(rhs, e), node: n, e: e}
}

func wrapDecl(n *ast.DeclStmt, e *env) ir.Operation {
	gd, ok := n.Decl.(*ast.GenDecl)
	if !ok || gd.Tok != token.VAR {
		return &operation{kind: ir.OpOther, node: n, e: e}
	}
	var kids []ir.Operation
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for i, name := range vs.Names {
			obj := e.info.Defs[name]
			if obj == nil {
				continue
			}
			var init ir.Operand
			if i < len(vs.Values) {
				init = operand(vs.Values[i], e)
			}
			kids = append(kids, &operation{
				kind:    ir.OpDeclareInit,
				declSym: e.symbolFor(obj, e.identKind(obj)),
				init:    init,
				node:    name, e: e,
			})
		}
	}
	if len(kids) == 1 {
		return kids[0]
	}
	return &operation{kind: ir.OpOther, children: kids, node: n, e: e}
}
