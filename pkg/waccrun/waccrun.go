// Package waccrun loads a compiled module into a standards-conformant WASM
// runtime and calls its exported entry point, exercising the "round-trip
// execution" testable property (spec §8): the bytes pkg/wasm emits must be
// loadable and produce the program's expected result, not merely
// well-formed according to this repository's own reader.
package waccrun

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
)

// Run instantiates the given WASM binary and calls its export, returning
// the single i32 result as an int32. The caller's export is always named
// "main" in this subset (spec §4.7's binary-format convention).
func Run(ctx context.Context, binary []byte, export string) (int32, error) {
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	mod, err := r.Instantiate(ctx, binary)
	if err != nil {
		return 0, fmt.Errorf("waccrun: instantiate: %w", err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(export)
	if fn == nil {
		return 0, fmt.Errorf("waccrun: module has no exported function %q", export)
	}

	results, err := fn.Call(ctx)
	if err != nil {
		return 0, fmt.Errorf("waccrun: call %q: %w", export, err)
	}
	if len(results) != 1 {
		return 0, fmt.Errorf("waccrun: %q returned %d results, want 1", export, len(results))
	}
	return int32(uint32(results[0])), nil
}
