// Package semantic implements the single post-parse walk described in spec
// §4.5: scoped symbol resolution and the well-formedness rules that gate
// IR lowering.
package semantic

import (
	"github.com/go-wacc/wacc/pkg/ast"
	"github.com/go-wacc/wacc/pkg/diag"
)

// Analyzer walks a *ast.Program once, reporting every distinct violation it
// finds rather than aborting on the first one.
type Analyzer struct {
	diags   *diag.Collector
	scope   *Scope
	inLoop  int // depth counter; >0 means break/continue are legal here
}

// New creates an Analyzer reporting to diags.
func New(diags *diag.Collector) *Analyzer {
	return &Analyzer{diags: diags}
}

// Analyze walks the whole program. Callers should check diags.HasFatal()
// afterward before proceeding to IR lowering.
func (a *Analyzer) Analyze(prog *ast.Program) {
	if prog == nil || prog.Function == nil {
		return
	}
	a.scope = NewScope(nil)
	for _, stmt := range prog.Function.Body {
		a.analyzeStmt(stmt)
	}
}

func (a *Analyzer) analyzeStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case nil:
		return
	case *ast.VarDecl:
		if s.Init != nil {
			a.analyzeExpr(s.Init)
		}
		if a.scope.LookupLocal(s.Name) != nil {
			a.diags.Add(diag.ErrRedefinition, diag.LevelSemantic, s.Pos(), "choose a different name or remove the earlier declaration",
				"redefinition of '%s' in the same scope", s.Name)
			return
		}
		a.scope.Define(s.Name)

	case *ast.ReturnStmt:
		a.analyzeExpr(s.Value)

	case *ast.ExprStmt:
		a.analyzeExpr(s.X)

	case *ast.Assignment:
		a.analyzeExpr(s)

	case *ast.IfStmt:
		a.analyzeExpr(s.Cond)
		a.checkDependentDecl(s.Then)
		a.analyzeStmt(s.Then)
		if s.Else != nil {
			a.checkDependentDecl(s.Else)
			a.analyzeStmt(s.Else)
		}

	case *ast.WhileStmt:
		a.analyzeExpr(s.Cond)
		a.inLoop++
		a.analyzeStmt(s.Body)
		a.inLoop--

	case *ast.BreakStmt:
		if a.inLoop == 0 {
			a.diags.Add(diag.ErrBreakOutsideLoop, diag.LevelSemantic, s.Pos(), "move this inside a 'while' loop",
				"'break' used outside of any loop")
		}

	case *ast.ContinueStmt:
		if a.inLoop == 0 {
			a.diags.Add(diag.ErrContinueOutsideLoop, diag.LevelSemantic, s.Pos(), "move this inside a 'while' loop",
				"'continue' used outside of any loop")
		}

	case *ast.Compound:
		outer := a.scope
		a.scope = NewScope(outer)
		for _, child := range s.Stmts {
			a.analyzeStmt(child)
		}
		a.scope = outer

	default:
		// Unreachable for this subset's closed statement set.
	}
}

// checkDependentDecl enforces spec §4.5's rule 3009: the immediate
// then/else branch of an if cannot be a bare declaration.
func (a *Analyzer) checkDependentDecl(stmt ast.Statement) {
	if decl, ok := stmt.(*ast.VarDecl); ok {
		a.diags.Add(diag.ErrDependentDecl, diag.LevelSemantic, decl.Pos(),
			"wrap the declaration in braces {} to create a compound statement",
			"a variable declaration cannot be the direct body of 'if'/'else'")
	}
}

func (a *Analyzer) analyzeExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
		return
	case *ast.IntLiteral:
		// Always well-formed.
	case *ast.VarRef:
		if a.scope.Lookup(e.Name) == nil {
			a.diags.Add(diag.ErrUndefinedVariable, diag.LevelSemantic, e.Pos(), "declare it with 'int' before using it",
				"undefined variable '%s'", e.Name)
		}
	case *ast.Assignment:
		if a.scope.Lookup(e.Name) == nil {
			a.diags.Add(diag.ErrUndefinedVariable, diag.LevelSemantic, e.Pos(), "declare it with 'int' before assigning to it",
				"undefined variable '%s'", e.Name)
		}
		a.analyzeExpr(e.Value)
	case *ast.UnaryOp:
		a.analyzeExpr(e.Operand)
	case *ast.BinaryOp:
		a.analyzeExpr(e.Left)
		a.analyzeExpr(e.Right)
	case *ast.Ternary:
		a.analyzeExpr(e.Cond)
		a.analyzeExpr(e.Then)
		a.analyzeExpr(e.Else)
	default:
		// Unreachable for this subset's closed expression set.
	}
}
