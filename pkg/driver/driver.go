// Package driver orchestrates the compilation pipeline (component 8, spec
// §2/§6): parse, analyze, lower, emit, gating each phase on the diagnostics
// collector's sticky fatal flag so a broken tree never reaches lowering or
// emission.
package driver

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-wacc/wacc/pkg/arena"
	"github.com/go-wacc/wacc/pkg/ast"
	"github.com/go-wacc/wacc/pkg/diag"
	"github.com/go-wacc/wacc/pkg/ir"
	"github.com/go-wacc/wacc/pkg/lower"
	"github.com/go-wacc/wacc/pkg/parser"
	"github.com/go-wacc/wacc/pkg/semantic"
	"github.com/go-wacc/wacc/pkg/wasm"
)

// Options controls the optional debug-dump behavior the CLI exposes. Each
// flag dumps one phase's output and stops the pipeline after that phase
// (see Compile).
type Options struct {
	PrintAST bool
	PrintIR  bool
}

// Result carries every artifact a caller might want after Compile returns,
// even when compilation failed partway through.
type Result struct {
	Program *ast.Program
	Module  *ir.Module
	Binary  []byte
	Diags   *diag.Collector
	OK      bool
}

// Compile runs the full pipeline over src (filename is used only for
// diagnostic messages). It never panics on malformed source: every
// reachable error surfaces through the returned diagnostics collector.
//
// PrintAST stops the pipeline right after parsing, before semantic analysis
// or lowering ever run; PrintIR stops it right after lowering, before the
// binary is emitted (spec §6: the dump flags inspect a single phase's
// output, they don't assert anything about the phases after it).
func Compile(filename, src string, opts Options, dumpW io.Writer) Result {
	a := arena.New()
	defer a.Dispose()
	diags := diag.New(a)

	prog := parser.New(filename, src, diags).ParseProgram()
	if opts.PrintAST {
		if dumpW != nil {
			printAST(dumpW, prog)
		}
		return Result{Program: prog, Diags: diags, OK: !diags.HasFatal()}
	}
	if diags.HasFatal() {
		return Result{Program: prog, Diags: diags}
	}

	semantic.New(diags).Analyze(prog)
	if diags.HasFatal() {
		return Result{Program: prog, Diags: diags}
	}

	mod := lower.Lower(prog)
	if opts.PrintIR {
		if dumpW != nil {
			printIR(dumpW, mod)
		}
		return Result{Program: prog, Module: mod, Diags: diags, OK: !diags.HasFatal()}
	}
	if diags.HasFatal() {
		return Result{Program: prog, Module: mod, Diags: diags}
	}

	bin := wasm.Emit(mod)
	return Result{Program: prog, Module: mod, Binary: bin, Diags: diags, OK: true}
}

// PrintDiagnostics renders every collected diagnostic to w in the format
// spec §4.2 describes.
func PrintDiagnostics(w io.Writer, filename, src string, diags *diag.Collector) {
	bw := bufio.NewWriter(w)
	diags.Print(bw, filename, src)
}

func printAST(w io.Writer, prog *ast.Program) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()
	if prog == nil || prog.Function == nil {
		fmt.Fprintln(bw, "<empty program>")
		return
	}
	fmt.Fprintf(bw, "Program\n  Function %s\n", prog.Function.Name)
	for _, stmt := range prog.Function.Body {
		printStmt(bw, stmt, 2)
	}
}

func printStmt(w *bufio.Writer, stmt ast.Statement, indent int) {
	pad := indentStr(indent)
	switch s := stmt.(type) {
	case *ast.VarDecl:
		fmt.Fprintf(w, "%sVarDecl %s\n", pad, s.Name)
		if s.Init != nil {
			printExpr(w, s.Init, indent+1)
		}
	case *ast.ReturnStmt:
		fmt.Fprintf(w, "%sReturnStmt\n", pad)
		printExpr(w, s.Value, indent+1)
	case *ast.IfStmt:
		fmt.Fprintf(w, "%sIfStmt\n", pad)
		printExpr(w, s.Cond, indent+1)
		printStmt(w, s.Then, indent+1)
		if s.Else != nil {
			printStmt(w, s.Else, indent+1)
		}
	case *ast.WhileStmt:
		fmt.Fprintf(w, "%sWhileStmt\n", pad)
		printExpr(w, s.Cond, indent+1)
		printStmt(w, s.Body, indent+1)
	case *ast.Compound:
		fmt.Fprintf(w, "%sCompound\n", pad)
		for _, child := range s.Stmts {
			printStmt(w, child, indent+1)
		}
	case *ast.BreakStmt:
		fmt.Fprintf(w, "%sBreakStmt\n", pad)
	case *ast.ContinueStmt:
		fmt.Fprintf(w, "%sContinueStmt\n", pad)
	case *ast.ExprStmt:
		fmt.Fprintf(w, "%sExprStmt\n", pad)
		printExpr(w, s.X, indent+1)
	default:
		fmt.Fprintf(w, "%s<nil>\n", pad)
	}
}

func printExpr(w *bufio.Writer, expr ast.Expression, indent int) {
	pad := indentStr(indent)
	switch e := expr.(type) {
	case *ast.IntLiteral:
		fmt.Fprintf(w, "%sIntLiteral %d\n", pad, e.Value)
	case *ast.VarRef:
		fmt.Fprintf(w, "%sVarRef %s\n", pad, e.Name)
	case *ast.Assignment:
		fmt.Fprintf(w, "%sAssignment %s\n", pad, e.Name)
		printExpr(w, e.Value, indent+1)
	case *ast.UnaryOp:
		fmt.Fprintf(w, "%sUnaryOp %s\n", pad, e.Op)
		printExpr(w, e.Operand, indent+1)
	case *ast.BinaryOp:
		fmt.Fprintf(w, "%sBinaryOp %s\n", pad, e.Op)
		printExpr(w, e.Left, indent+1)
		printExpr(w, e.Right, indent+1)
	case *ast.Ternary:
		fmt.Fprintf(w, "%sTernary\n", pad)
		printExpr(w, e.Cond, indent+1)
		printExpr(w, e.Then, indent+1)
		printExpr(w, e.Else, indent+1)
	default:
		fmt.Fprintf(w, "%s<nil>\n", pad)
	}
}

func printIR(w io.Writer, mod *ir.Module) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()
	fmt.Fprintf(bw, "Module %s\n", mod.Name)
	for _, fn := range mod.Functions {
		fmt.Fprintf(bw, "  Function %s (locals=%d)\n", fn.Name, fn.NumLocals())
		printRegion(bw, fn.Root, 2)
	}
}

func printRegion(w *bufio.Writer, r *ir.Region, indent int) {
	pad := indentStr(indent)
	fmt.Fprintf(w, "%sRegion#%d %s\n", pad, r.ID, regionKindName(r.Kind))
	for _, instr := range r.Instructions {
		printInstr(w, instr, indent+1)
	}
	if r.Cond != nil {
		fmt.Fprintf(w, "%scond:\n", indentStr(indent+1))
		printRegion(w, r.Cond, indent+2)
	}
	if r.Body != nil {
		fmt.Fprintf(w, "%sbody:\n", indentStr(indent+1))
		printRegion(w, r.Body, indent+2)
	}
	if r.Then != nil {
		fmt.Fprintf(w, "%sthen:\n", indentStr(indent+1))
		printRegion(w, r.Then, indent+2)
	}
	if r.Else != nil {
		fmt.Fprintf(w, "%selse:\n", indentStr(indent+1))
		printRegion(w, r.Else, indent+2)
	}
}

func printInstr(w *bufio.Writer, instr ir.Instruction, indent int) {
	pad := indentStr(indent)
	switch instr.Op {
	case ir.OpConstInt:
		fmt.Fprintf(w, "%s%s %d\n", pad, instr.Op, instr.Imm)
	case ir.OpLoadLocal, ir.OpStoreLocal:
		fmt.Fprintf(w, "%s%s #%d\n", pad, instr.Op, instr.Slot)
	case ir.OpRegionEmbed:
		fmt.Fprintf(w, "%s%s ->\n", pad, instr.Op)
		printRegion(w, instr.Region, indent+1)
	default:
		fmt.Fprintf(w, "%s%s\n", pad, instr.Op)
	}
}

func regionKindName(k ir.RegionKind) string {
	switch k {
	case ir.RegionBlock:
		return "Block"
	case ir.RegionIf:
		return "If"
	case ir.RegionLoop:
		return "Loop"
	case ir.RegionFunction:
		return "Function"
	default:
		return "?"
	}
}

func indentStr(n int) string {
	b := make([]byte, n*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
