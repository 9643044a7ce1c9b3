package parser

import (
	"testing"

	"github.com/go-wacc/wacc/pkg/arena"
	"github.com/go-wacc/wacc/pkg/ast"
	"github.com/go-wacc/wacc/pkg/diag"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.Collector) {
	t.Helper()
	diags := diag.New(arena.New())
	p := New("test.c", src, diags)
	return p.ParseProgram(), diags
}

func TestParseMinimalFunction(t *testing.T) {
	prog, diags := parse(t, "int main() { return 42; }")
	if diags.HasFatal() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	if prog.Function == nil || prog.Function.Name != "main" {
		t.Fatalf("got %+v", prog.Function)
	}
	if len(prog.Function.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Function.Body))
	}
	ret, ok := prog.Function.Body[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected ReturnStmt, got %T", prog.Function.Body[0])
	}
	lit, ok := ret.Value.(*ast.IntLiteral)
	if !ok || lit.Value != 42 {
		t.Fatalf("expected IntLiteral(42), got %#v", ret.Value)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3).
	prog, diags := parse(t, "int main() { return 1 + 2 * 3; }")
	if diags.HasFatal() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	ret := prog.Function.Body[0].(*ast.ReturnStmt)
	add, ok := ret.Value.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected top-level BinaryOp, got %T", ret.Value)
	}
	if _, ok := add.Left.(*ast.IntLiteral); !ok {
		t.Fatalf("expected left operand to be IntLiteral, got %T", add.Left)
	}
	mul, ok := add.Right.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected right operand to be a nested BinaryOp (the multiplication), got %T", add.Right)
	}
	_ = mul
}

func TestParseTernaryIsRightAssociative(t *testing.T) {
	// a ? b : c ? d : e  must parse as  a ? b : (c ? d : e)
	prog, diags := parse(t, "int main() { int a; int b; int c; int d; int e; return a ? b : c ? d : e; }")
	if diags.HasFatal() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	ret := prog.Function.Body[len(prog.Function.Body)-1].(*ast.ReturnStmt)
	outer, ok := ret.Value.(*ast.Ternary)
	if !ok {
		t.Fatalf("expected Ternary, got %T", ret.Value)
	}
	if _, ok := outer.Else.(*ast.Ternary); !ok {
		t.Fatalf("expected nested ternary in else branch, got %T", outer.Else)
	}
}

func TestParseAssignmentTargetMustBeVarRef(t *testing.T) {
	_, diags := parse(t, "int main() { return (1 + 2) = 3; }")
	found := false
	for _, e := range diags.Errors() {
		if e.ID == diag.ErrInvalidAssignTarget {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error %d, got %v", diag.ErrInvalidAssignTarget, diags.Errors())
	}
}

func TestParseMissingSemicolonRecovers(t *testing.T) {
	prog, diags := parse(t, "int main() { return 42 }")
	if !diags.HasFatal() {
		t.Fatal("expected a fatal diagnostic for the missing semicolon")
	}
	found := false
	for _, e := range diags.Errors() {
		if e.ID == diag.ErrMissingSemicolon {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error %d, got %v", diag.ErrMissingSemicolon, diags.Errors())
	}
	// Recovery must still reach the closing brace instead of looping forever.
	if prog.Function == nil {
		t.Fatal("expected a partial function despite the error")
	}
}

func TestParseIfElseChaining(t *testing.T) {
	prog, diags := parse(t, "int main() { if (1) return 1; else if (0) return 2; else return 3; }")
	if diags.HasFatal() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	outer, ok := prog.Function.Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", prog.Function.Body[0])
	}
	if _, ok := outer.Else.(*ast.IfStmt); !ok {
		t.Fatalf("expected else-if chained as nested IfStmt, got %T", outer.Else)
	}
}

func TestParseCompoundIntroducesBlock(t *testing.T) {
	prog, diags := parse(t, "int main() { { int x = 1; } return 0; }")
	if diags.HasFatal() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	if _, ok := prog.Function.Body[0].(*ast.Compound); !ok {
		t.Fatalf("expected Compound, got %T", prog.Function.Body[0])
	}
}
