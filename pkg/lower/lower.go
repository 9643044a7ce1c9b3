// Package lower implements spec §4.6: translating a well-formed *ast.Program
// into a structured *ir.Module. Every lexical scope in the source becomes a
// slot range in the function's flat local array (WASM has no block-scoped
// locals), and every source control construct becomes a nested ir.Region so
// pkg/wasm can emit it with WASM's structured block/loop/if.
package lower

import (
	"github.com/go-wacc/wacc/pkg/ast"
	"github.com/go-wacc/wacc/pkg/ir"
	"github.com/go-wacc/wacc/pkg/token"
)

// scope maps source names to local slots, mirroring pkg/semantic's Scope but
// carrying slot numbers instead of mere existence.
type scope struct {
	parent *scope
	slots  map[string]int
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, slots: make(map[string]int)}
}

func (s *scope) define(name string, slot int) {
	s.slots[name] = slot
}

func (s *scope) lookup(name string) (int, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if slot, ok := cur.slots[name]; ok {
			return slot, true
		}
	}
	return 0, false
}

// Lowerer threads the current function and scope through the recursive
// descent over the AST.
type Lowerer struct {
	fn    *ir.Function
	scope *scope
}

// Lower translates prog (already accepted by pkg/semantic) into an ir.Module
// containing its single function.
func Lower(prog *ast.Program) *ir.Module {
	mod := ir.NewModule("wacc")
	if prog == nil || prog.Function == nil {
		return mod
	}

	fn := ir.NewFunction(prog.Function.Name)
	l := &Lowerer{fn: fn, scope: newScope(nil)}
	l.lowerStmtList(prog.Function.Body, fn.Root)
	mod.AddFunction(fn)
	return mod
}

// lowerStmtList lowers a statement list into dst's instruction stream,
// without introducing a new scope (callers that need one, e.g. Compound,
// push it themselves).
func (l *Lowerer) lowerStmtList(stmts []ast.Statement, dst *ir.Region) {
	for _, stmt := range stmts {
		l.lowerStmt(stmt, dst)
	}
}

func (l *Lowerer) lowerStmt(stmt ast.Statement, dst *ir.Region) {
	switch s := stmt.(type) {
	case nil:
		return

	case *ast.VarDecl:
		slot := l.fn.AllocLocal(s.Name)
		l.scope.define(s.Name, slot)
		if s.Init != nil {
			l.lowerExpr(s.Init, dst)
			dst.EmitSlot(ir.OpStoreLocal, slot, ir.TypeVoid)
		}

	case *ast.ReturnStmt:
		l.lowerExpr(s.Value, dst)
		dst.Emit(ir.OpReturn, ir.TypeVoid)

	case *ast.ExprStmt:
		l.lowerExpr(s.X, dst)
		dst.Emit(ir.OpPop, ir.TypeVoid)

	case *ast.Assignment:
		l.lowerAssignment(s, dst)
		dst.Emit(ir.OpPop, ir.TypeVoid)

	case *ast.IfStmt:
		l.lowerIf(s, dst)

	case *ast.WhileStmt:
		l.lowerWhile(s, dst)

	case *ast.BreakStmt:
		dst.Emit(ir.OpBreak, ir.TypeVoid)

	case *ast.ContinueStmt:
		dst.Emit(ir.OpContinue, ir.TypeVoid)

	case *ast.Compound:
		outer := l.scope
		l.scope = newScope(outer)
		block := l.fn.NewChildRegion(ir.RegionBlock, dst)
		l.lowerStmtList(s.Stmts, block)
		dst.EmbedRegion(block, ir.TypeVoid)
		l.scope = outer

	default:
		// Unreachable for this subset's closed statement set.
	}
}

// lowerIf builds a RegionIf embedding Then/Else as child block regions.
// Condition evaluation stays in dst ahead of the embed, matching WASM's
// `if` which pops its condition off the stack immediately before entering
// the structured block.
func (l *Lowerer) lowerIf(s *ast.IfStmt, dst *ir.Region) {
	l.lowerExpr(s.Cond, dst)

	ifRegion := l.fn.NewChildRegion(ir.RegionIf, dst)
	ifRegion.Then = l.fn.NewChildRegion(ir.RegionBlock, ifRegion)
	l.lowerStmt(s.Then, ifRegion.Then)

	if s.Else != nil {
		ifRegion.Else = l.fn.NewChildRegion(ir.RegionBlock, ifRegion)
		l.lowerStmt(s.Else, ifRegion.Else)
	}

	dst.EmbedRegion(ifRegion, ir.TypeVoid)
}

// lowerWhile builds a RegionLoop with a separate Cond sub-region, the
// encoding spec §4.6/§4.7 describes directly: the emitter tests Cond every
// iteration and exits via a fixed-depth br_if, so break/continue inside the
// body still resolve through the general depth walk while the loop's own
// exit test never needs one.
func (l *Lowerer) lowerWhile(s *ast.WhileStmt, dst *ir.Region) {
	loop := l.fn.NewChildRegion(ir.RegionLoop, dst)
	cond := l.fn.NewChildRegion(ir.RegionBlock, loop)
	body := l.fn.NewChildRegion(ir.RegionBlock, loop)
	loop.Cond = cond
	loop.Body = body

	l.lowerExpr(s.Cond, cond)

	l.lowerStmt(s.Body, body)

	dst.EmbedRegion(loop, ir.TypeVoid)
}

func (l *Lowerer) lowerAssignment(a *ast.Assignment, dst *ir.Region) {
	l.lowerExpr(a.Value, dst)
	slot, ok := l.scope.lookup(a.Name)
	if !ok {
		// pkg/semantic already rejected this program; lowering a rejected
		// program is a driver-ordering bug, not a user-facing error.
		panic("lower: undefined variable '" + a.Name + "' reached lowering")
	}
	dst.EmitSlot(ir.OpStoreLocal, slot, ir.TypeVoid)
	l.lowerExpr(&ast.VarRef{Name: a.Name, StartPos: a.StartPos}, dst)
}

func (l *Lowerer) lowerExpr(expr ast.Expression, dst *ir.Region) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		dst.EmitImm(ir.OpConstInt, e.Value, ir.TypeI32)

	case *ast.VarRef:
		slot, ok := l.scope.lookup(e.Name)
		if !ok {
			panic("lower: undefined variable '" + e.Name + "' reached lowering")
		}
		dst.EmitSlot(ir.OpLoadLocal, slot, ir.TypeI32)

	case *ast.Assignment:
		l.lowerAssignment(e, dst)

	case *ast.UnaryOp:
		l.lowerUnary(e, dst)

	case *ast.BinaryOp:
		l.lowerBinary(e, dst)

	case *ast.Ternary:
		l.lowerTernary(e, dst)

	default:
		// Unreachable for this subset's closed expression set.
	}
}

func (l *Lowerer) lowerUnary(e *ast.UnaryOp, dst *ir.Region) {
	l.lowerExpr(e.Operand, dst)
	switch e.Op {
	case token.Minus:
		dst.Emit(ir.OpNeg, ir.TypeI32)
	case token.Bang:
		dst.Emit(ir.OpLogicalNot, ir.TypeI32)
	case token.Tilde:
		dst.Emit(ir.OpBitwiseNot, ir.TypeI32)
	}
}

// lowerBinary lowers every binary operator except the short-circuiting
// &&/||, which need control flow and are handled separately.
func (l *Lowerer) lowerBinary(e *ast.BinaryOp, dst *ir.Region) {
	if e.Op == token.AndAnd || e.Op == token.OrOr {
		l.lowerShortCircuit(e, dst)
		return
	}

	l.lowerExpr(e.Left, dst)
	l.lowerExpr(e.Right, dst)
	switch e.Op {
	case token.Plus:
		dst.Emit(ir.OpAdd, ir.TypeI32)
	case token.Minus:
		dst.Emit(ir.OpSub, ir.TypeI32)
	case token.Star:
		dst.Emit(ir.OpMul, ir.TypeI32)
	case token.Slash:
		dst.Emit(ir.OpDiv, ir.TypeI32)
	case token.Percent:
		dst.Emit(ir.OpMod, ir.TypeI32)
	case token.Eq:
		dst.Emit(ir.OpEq, ir.TypeI32)
	case token.Ne:
		dst.Emit(ir.OpNe, ir.TypeI32)
	case token.Lt:
		dst.Emit(ir.OpLt, ir.TypeI32)
	case token.Le:
		dst.Emit(ir.OpLe, ir.TypeI32)
	case token.Gt:
		dst.Emit(ir.OpGt, ir.TypeI32)
	case token.Ge:
		dst.Emit(ir.OpGe, ir.TypeI32)
	}
}

// lowerShortCircuit rewrites `a && b` as `a != 0 ? (b != 0) : 0` and
// `a || b` as `a != 0 ? 1 : (b != 0)`, each an expression-shaped RegionIf
// (spec §4.6's explicit rewrite rule for the two short-circuit operators).
func (l *Lowerer) lowerShortCircuit(e *ast.BinaryOp, dst *ir.Region) {
	l.lowerExpr(e.Left, dst)

	ifRegion := l.fn.NewChildRegion(ir.RegionIf, dst)
	ifRegion.IsExpression = true
	ifRegion.Then = l.fn.NewChildRegion(ir.RegionBlock, ifRegion)
	ifRegion.Else = l.fn.NewChildRegion(ir.RegionBlock, ifRegion)

	switch e.Op {
	case token.AndAnd:
		l.lowerExpr(e.Right, ifRegion.Then)
		ifRegion.Then.Emit(ir.OpLogicalNot, ir.TypeI32)
		ifRegion.Then.Emit(ir.OpLogicalNot, ir.TypeI32) // normalize to 0/1
		ifRegion.Else.EmitImm(ir.OpConstInt, 0, ir.TypeI32)
	case token.OrOr:
		ifRegion.Then.EmitImm(ir.OpConstInt, 1, ir.TypeI32)
		l.lowerExpr(e.Right, ifRegion.Else)
		ifRegion.Else.Emit(ir.OpLogicalNot, ir.TypeI32)
		ifRegion.Else.Emit(ir.OpLogicalNot, ir.TypeI32)
	}

	dst.EmbedRegion(ifRegion, ir.TypeI32)
}

func (l *Lowerer) lowerTernary(e *ast.Ternary, dst *ir.Region) {
	l.lowerExpr(e.Cond, dst)

	ifRegion := l.fn.NewChildRegion(ir.RegionIf, dst)
	ifRegion.IsExpression = true
	ifRegion.Then = l.fn.NewChildRegion(ir.RegionBlock, ifRegion)
	ifRegion.Else = l.fn.NewChildRegion(ir.RegionBlock, ifRegion)

	l.lowerExpr(e.Then, ifRegion.Then)
	l.lowerExpr(e.Else, ifRegion.Else)

	dst.EmbedRegion(ifRegion, ir.TypeI32)
}
