// Package wasm assembles an *ir.Module into a binary WASM module, the
// format spec §4.7 describes: magic header, then Type/Function/Export/Code
// sections, each a length-prefixed vector. Grounded on the binary-emission
// style of a from-scratch WASM backend in the reference pack (no teacher
// dependency fits this component directly — wazero is a runtime, not an
// encoder — so the byte-level sequencing here follows that reference
// backend's generator/emit* method split rather than a stdlib idiom).
package wasm

import "github.com/go-wacc/wacc/pkg/ir"

var magicAndVersion = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// frameKind tags one entry of the structured-label stack the emitter
// threads through region emission, used to resolve br/br_if depths for
// break/continue.
type frameKind byte

const (
	frameBlock     frameKind = iota // block, or one branch of an if
	frameLoopOuter                  // the synthetic block wrapping a loop (break target)
	frameLoopInner                  // the loop itself (continue target)
)

// Emit assembles mod into a complete binary WASM module. mod must contain
// exactly one function, this subset's only shape.
func Emit(mod *ir.Module) []byte {
	out := append([]byte{}, magicAndVersion...)
	out = append(out, typeSection(mod)...)
	out = append(out, functionSection(mod)...)
	out = append(out, exportSection(mod)...)
	out = append(out, codeSection(mod)...)
	return out
}

func section(id byte, body []byte) []byte {
	out := []byte{id}
	return append(out, prefixWithLength(body)...)
}

// typeSection emits one func type per function: no params, one i32 result.
// Every function in this subset has the identical signature; functionSection
// gives function i the type at index i.
func typeSection(mod *ir.Module) []byte {
	var body []byte
	body = appendUvarint(body, uint64(len(mod.Functions)))
	for range mod.Functions {
		body = append(body, funcTypeTag)
		body = appendUvarint(body, 0) // param count
		body = appendUvarint(body, 1) // result count
		body = append(body, valTypeI32)
	}
	return section(secType, body)
}

func functionSection(mod *ir.Module) []byte {
	var body []byte
	body = appendUvarint(body, uint64(len(mod.Functions)))
	for i := range mod.Functions {
		body = appendUvarint(body, uint64(i)) // type index == function index
	}
	return section(secFunction, body)
}

func exportSection(mod *ir.Module) []byte {
	var body []byte
	body = appendUvarint(body, uint64(len(mod.Functions)))
	for i := range mod.Functions {
		// The export is always named "main", whatever the source function
		// was called.
		body = appendString(body, "main")
		body = append(body, exportKindFunc)
		body = appendUvarint(body, uint64(i))
	}
	return section(secExport, body)
}

func appendString(buf []byte, s string) []byte {
	buf = appendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func codeSection(mod *ir.Module) []byte {
	var body []byte
	body = appendUvarint(body, uint64(len(mod.Functions)))
	for _, fn := range mod.Functions {
		body = append(body, funcBody(fn)...)
	}
	return section(secCode, body)
}

func funcBody(fn *ir.Function) []byte {
	var body []byte
	if n := fn.NumLocals(); n > 0 {
		body = appendUvarint(body, 1) // one run of locals: all i32
		body = appendUvarint(body, uint64(n))
		body = append(body, valTypeI32)
	} else {
		body = appendUvarint(body, 0)
	}

	code := emitRegionInstrs(fn.Root, nil, nil)
	// If control falls off the end of the body without an explicit return
	// (e.g. the source's last statement isn't a ReturnStmt), the function's
	// declared i32 result still must come from somewhere: pad with a
	// trailing zero return so the module validates regardless of how
	// control reaches `end`.
	code = append(code, opI32Const)
	code = appendVarint(code, 0)
	code = append(code, opReturn)
	code = append(code, opEnd)
	body = append(body, code...)
	return prefixWithLength(body)
}

// emitRegionInstrs appends the WASM bytes for r's own instruction stream
// (not the label-bearing wrapper of r itself, which emitEmbeddedRegion
// handles for Block/If/Loop children reached via OpRegionEmbed).
func emitRegionInstrs(r *ir.Region, code []byte, frames []frameKind) []byte {
	for _, instr := range r.Instructions {
		code = emitInstr(instr, code, frames)
	}
	return code
}

func emitInstr(instr ir.Instruction, code []byte, frames []frameKind) []byte {
	switch instr.Op {
	case ir.OpConstInt:
		code = append(code, opI32Const)
		code = appendVarint(code, instr.Imm)
	case ir.OpLoadLocal:
		code = append(code, opLocalGet)
		code = appendUvarint(code, uint64(instr.Slot))
	case ir.OpStoreLocal:
		code = append(code, opLocalSet)
		code = appendUvarint(code, uint64(instr.Slot))
	case ir.OpAdd:
		code = append(code, opI32Add)
	case ir.OpSub:
		code = append(code, opI32Sub)
	case ir.OpMul:
		code = append(code, opI32Mul)
	case ir.OpDiv:
		code = append(code, opI32DivS)
	case ir.OpMod:
		code = append(code, opI32RemS)
	case ir.OpNeg:
		code = append(code, opI32Const)
		code = appendVarint(code, -1)
		code = append(code, opI32Mul)
	case ir.OpBitwiseNot:
		code = append(code, opI32Const)
		code = appendVarint(code, -1)
		code = append(code, opI32Xor)
	case ir.OpEq:
		code = append(code, opI32Eq)
	case ir.OpNe:
		code = append(code, opI32Ne)
	case ir.OpLt:
		code = append(code, opI32LtS)
	case ir.OpLe:
		code = append(code, opI32LeS)
	case ir.OpGt:
		code = append(code, opI32GtS)
	case ir.OpGe:
		code = append(code, opI32GeS)
	case ir.OpLogicalNot:
		code = append(code, opI32Eqz)
	case ir.OpPop:
		code = append(code, opDrop)
	case ir.OpReturn:
		code = append(code, opReturn)
	case ir.OpBreak:
		code = append(code, opBr)
		code = appendUvarint(code, uint64(depthOf(frames, frameLoopOuter)))
	case ir.OpContinue:
		code = append(code, opBr)
		code = appendUvarint(code, uint64(depthOf(frames, frameLoopInner)))
	case ir.OpRegionEmbed:
		code = emitEmbeddedRegion(instr.Region, code, frames)
	}
	return code
}

// depthOf finds the nearest (topmost) frame of kind want and returns its
// WASM label depth, 0 being the innermost enclosing structured instruction.
// pkg/semantic already rejected any break/continue without an enclosing
// loop, so want is always found here.
func depthOf(frames []frameKind, want frameKind) int {
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i] == want {
			return len(frames) - 1 - i
		}
	}
	return 0
}

func emitEmbeddedRegion(r *ir.Region, code []byte, frames []frameKind) []byte {
	switch r.Kind {
	case ir.RegionBlock:
		code = append(code, opBlock, blockTypeVoid)
		code = emitRegionInstrs(r, code, append(frames, frameBlock))
		code = append(code, opEnd)

	case ir.RegionIf:
		bt := blockTypeVoid
		if r.IsExpression {
			bt = valTypeI32
		}
		code = append(code, opIf, bt)
		code = emitRegionInstrs(r.Then, code, append(frames, frameBlock))
		if r.Else != nil {
			code = append(code, opElse)
			code = emitRegionInstrs(r.Else, code, append(frames, frameBlock))
		}
		code = append(code, opEnd)

	case ir.RegionLoop:
		// Fixed structured frame per spec §4.7: block > loop { cond, eqz,
		// br_if 1 (exit to the outer block), body, br 0 (back to the loop
		// head) } end end. The br_if/br here target frames at a constant
		// depth because they sit directly in the loop's own frame, with
		// nothing emitted between them and the loop header; break/continue
		// appearing inside the body go through depthOf instead, since they
		// may be nested arbitrarily deep inside further blocks/ifs.
		code = append(code, opBlock, blockTypeVoid)
		inner := append(append(append([]frameKind{}, frames...), frameLoopOuter), frameLoopInner)
		code = append(code, opLoop, blockTypeVoid)

		condBody := r.Cond
		if r.IsDoWhile {
			code = emitRegionInstrs(r.Body, code, inner)
		}
		code = emitRegionInstrs(condBody, code, inner)
		code = append(code, opI32Eqz)
		code = append(code, opBrIf)
		code = appendUvarint(code, 1)
		if !r.IsDoWhile {
			code = emitRegionInstrs(r.Body, code, inner)
		}
		code = append(code, opBr)
		code = appendUvarint(code, 0)

		code = append(code, opEnd) // end loop
		code = append(code, opEnd) // end block
	}
	return code
}
