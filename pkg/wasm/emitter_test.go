package wasm

import (
	"bytes"
	"testing"

	"github.com/go-wacc/wacc/pkg/ir"
)

func TestAppendUvarint(t *testing.T) {
	cases := []struct {
		n    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
	}
	for _, c := range cases {
		got := appendUvarint(nil, c.n)
		if !bytes.Equal(got, c.want) {
			t.Errorf("appendUvarint(%d) = % x, want % x", c.n, got, c.want)
		}
	}
}

func TestAppendVarint(t *testing.T) {
	cases := []struct {
		n    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{-1, []byte{0x7f}},
		{63, []byte{0x3f}},
		{64, []byte{0xc0, 0x00}},
		{-64, []byte{0x40}},
		{-65, []byte{0xbf, 0x7f}},
	}
	for _, c := range cases {
		got := appendVarint(nil, c.n)
		if !bytes.Equal(got, c.want) {
			t.Errorf("appendVarint(%d) = % x, want % x", c.n, got, c.want)
		}
	}
}

func simpleModule() *ir.Module {
	mod := ir.NewModule("wacc")
	fn := ir.NewFunction("main")
	fn.Root.EmitImm(ir.OpConstInt, 42, ir.TypeI32)
	fn.Root.Emit(ir.OpReturn, ir.TypeVoid)
	mod.AddFunction(fn)
	return mod
}

func TestEmitHeader(t *testing.T) {
	bin := Emit(simpleModule())
	want := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(bin[:8], want) {
		t.Fatalf("got header % x, want % x", bin[:8], want)
	}
}

func TestEmitContainsExpectedSections(t *testing.T) {
	bin := Emit(simpleModule())
	for _, id := range []byte{secType, secFunction, secExport, secCode} {
		if !bytes.Contains(bin, []byte{id}) {
			t.Errorf("missing section id 0x%x in output", id)
		}
	}
}

func TestEmitExportsMain(t *testing.T) {
	bin := Emit(simpleModule())
	if !bytes.Contains(bin, []byte("main")) {
		t.Fatal("expected the export name \"main\" in the export section")
	}
}

func TestEmitTypeSectionShape(t *testing.T) {
	// type section: id, len-byte, count=1, 0x60, params=0, results=1, i32
	bin := Emit(simpleModule())
	// Search past the 8-byte header: its version byte is also 0x01.
	idx := bytes.IndexByte(bin[len(magicAndVersion):], secType)
	if idx < 0 {
		t.Fatal("type section not found")
	}
	idx += len(magicAndVersion)
	body := bin[idx+2:] // skip id + length byte (body is short enough for 1-byte LEB)
	want := []byte{0x01, funcTypeTag, 0x00, 0x01, valTypeI32}
	if !bytes.Equal(body[:len(want)], want) {
		t.Fatalf("got type section body % x, want % x", body[:len(want)], want)
	}
}

func TestEmitBreakUsesCorrectDepthInsideWhile(t *testing.T) {
	// while (1) { break; } -- the break sits inside the loop's own frame
	// (label depth 0) and must branch out past it to the outer block (label
	// depth 1), the frame the loop's synthetic break target occupies.
	mod := ir.NewModule("wacc")
	fn := ir.NewFunction("main")
	loop := fn.NewChildRegion(ir.RegionLoop, fn.Root)
	cond := fn.NewChildRegion(ir.RegionBlock, loop)
	body := fn.NewChildRegion(ir.RegionBlock, loop)
	loop.Cond = cond
	loop.Body = body
	cond.EmitImm(ir.OpConstInt, 1, ir.TypeI32)
	body.Emit(ir.OpBreak, ir.TypeVoid)
	fn.Root.EmbedRegion(loop, ir.TypeVoid)
	fn.Root.EmitImm(ir.OpConstInt, 0, ir.TypeI32)
	fn.Root.Emit(ir.OpReturn, ir.TypeVoid)
	mod.AddFunction(fn)

	bin := Emit(mod)
	// br (0x0c) with depth 1, for the explicit break statement.
	if !bytes.Contains(bin, []byte{opBr, 0x01}) {
		t.Fatalf("expected a br 1 for the explicit break, got % x", bin)
	}
}

// TestEmitDoWhileReordersBodyBeforeCond exercises the IsDoWhile variant of
// RegionLoop directly, since spec §4.4's grammar has no do-while production
// and so no parsed program ever reaches this path (see DESIGN.md's Open
// Questions). A marker constant (99) distinguishes the body from the
// condition (1) so their relative order in the emitted byte stream can be
// checked without disassembling the whole function.
func TestEmitDoWhileReordersBodyBeforeCond(t *testing.T) {
	mod := ir.NewModule("wacc")
	fn := ir.NewFunction("main")
	loop := fn.NewChildRegion(ir.RegionLoop, fn.Root)
	cond := fn.NewChildRegion(ir.RegionBlock, loop)
	body := fn.NewChildRegion(ir.RegionBlock, loop)
	loop.Cond = cond
	loop.Body = body
	loop.IsDoWhile = true
	body.EmitImm(ir.OpConstInt, 99, ir.TypeI32)
	body.Emit(ir.OpPop, ir.TypeVoid)
	cond.EmitImm(ir.OpConstInt, 1, ir.TypeI32)
	fn.Root.EmbedRegion(loop, ir.TypeVoid)
	fn.Root.EmitImm(ir.OpConstInt, 0, ir.TypeI32)
	fn.Root.Emit(ir.OpReturn, ir.TypeVoid)
	mod.AddFunction(fn)

	bin := Emit(mod)
	bodyMarker := []byte{opI32Const, 0xe3, 0x00} // 99 in signed LEB128
	condMarker := []byte{opI32Const, 1}
	bodyIdx := bytes.Index(bin, bodyMarker)
	condIdx := bytes.Index(bin, condMarker)
	if bodyIdx < 0 || condIdx < 0 {
		t.Fatalf("expected both markers in output, got % x", bin)
	}
	if bodyIdx >= condIdx {
		t.Fatalf("do-while must emit the body before the condition test: body at %d, cond at %d", bodyIdx, condIdx)
	}
}
