package main

import (
	"fmt"
	"os"

	"github.com/go-wacc/wacc/pkg/driver"
	"github.com/spf13/cobra"
)

var (
	outputFile string
	printAST   bool
	printIR    bool
)

var rootCmd = &cobra.Command{
	Use:   "wacc [source file]",
	Short: "wacc - ahead-of-time compiler to WebAssembly",
	Long: `wacc compiles a small subset of C to a self-contained WebAssembly
binary module: one parameter-less function returning a signed integer
expression, with local variables, unary/binary operators, short-circuiting
&&/||, the ternary operator, if/else, while loops, block scoping, and
break/continue.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "out.wasm", "output file path")
	rootCmd.Flags().BoolVar(&printAST, "print-ast", false, "dump the parsed tree to stdout")
	rootCmd.Flags().BoolVar(&printIR, "print-ir", false, "dump the lowered IR to stdout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(sourceFile string) error {
	src, err := os.ReadFile(sourceFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourceFile, err)
	}

	result := driver.Compile(sourceFile, string(src), driver.Options{
		PrintAST: printAST,
		PrintIR:  printIR,
	}, os.Stdout)

	if result.Diags.Count() > 0 {
		driver.PrintDiagnostics(os.Stdout, sourceFile, string(src), result.Diags)
	}

	// --print-ast/--print-ir are dump modes: once the requested phase has
	// run and printed, the command is done. It exits cleanly and never
	// writes an output file, regardless of what later phases would have
	// done with the source.
	if printAST || printIR {
		return nil
	}

	if !result.OK {
		return fmt.Errorf("compilation failed with %d diagnostic(s)", result.Diags.Count())
	}

	if err := os.WriteFile(outputFile, result.Binary, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputFile, err)
	}
	return nil
}
