package classfile

import (
	"errors"
	"testing"
)

func TestDecodeInstructions(t *testing.T) {
	code := []byte{
		0x10, 0xFF, // bipush -1
		0x11, 0x80, 0x00, // sipush -32768
		0x12, 0x07, // ldc #7
		0x13, 0x01, 0x02, // ldc_w #258
		0xBB, 0x00, 0x03, // new #3
		0x59,             // dup
		0xB7, 0x00, 0x04, // invokespecial #4
		0xB9, 0x00, 0x05, 0x02, 0x00, // invokeinterface #5, 2
		0xB1, // return
	}

	got, err := DecodeInstructions(code)
	if err != nil {
		t.Fatalf("DecodeInstructions: %v", err)
	}

	want := []struct {
		offset int
		op     Opcode
		nops   int
	}{
		{0, OpBipush, 1},
		{2, OpSipush, 2},
		{5, OpLdc, 1},
		{7, OpLdcW, 2},
		{10, OpNew, 2},
		{13, OpDup, 0},
		{14, OpInvokespecial, 2},
		{17, 0xB9, 4},
		{22, OpReturn, 0},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Offset != w.offset || got[i].Opcode != w.op || len(got[i].Operands) != w.nops {
			t.Errorf("instruction %d = %v, want offset %d op %s with %d operand bytes", i, got[i], w.offset, w.op, w.nops)
		}
	}

	if got[0].S1() != -1 {
		t.Errorf("bipush operand = %d, want -1", got[0].S1())
	}
	if got[1].S2() != -32768 {
		t.Errorf("sipush operand = %d, want -32768", got[1].S2())
	}
	if got[2].PoolIndex() != 7 || got[3].PoolIndex() != 258 {
		t.Errorf("ldc indices = %d, %d", got[2].PoolIndex(), got[3].PoolIndex())
	}
}

func TestDecodeSwitches(t *testing.T) {
	code := []byte{
		0x1A,             // 0: iload_0
		0xAA, 0x00, 0x00, // 1: tableswitch, 2 bytes padding to offset 4
		0x00, 0x00, 0x00, 0x20, // default
		0x00, 0x00, 0x00, 0x01, // low
		0x00, 0x00, 0x00, 0x02, // high
		0x00, 0x00, 0x00, 0x10,
		0x00, 0x00, 0x00, 0x18,
		0xAB, 0x00, 0x00, 0x00, // 24: lookupswitch, 3 bytes padding to 28
		0x00, 0x00, 0x00, 0x08, // default
		0x00, 0x00, 0x00, 0x01, // npairs
		0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x0C,
		0xC4, 0x84, 0x01, 0x00, 0xFF, 0xFF, // 44: wide iinc 256, -1
		0xC4, 0x15, 0x01, 0x00, // 50: wide iload 256
		0xB1, // 54: return
	}

	got, err := DecodeInstructions(code)
	if err != nil {
		t.Fatalf("DecodeInstructions: %v", err)
	}

	wantOffsets := []int{0, 1, 24, 44, 50, 54}
	if len(got) != len(wantOffsets) {
		t.Fatalf("got %d instructions: %v", len(got), got)
	}
	for i, off := range wantOffsets {
		if got[i].Offset != off {
			t.Errorf("instruction %d at %d, want %d", i, got[i].Offset, off)
		}
	}
	if len(got[1].Operands) != 20 {
		t.Errorf("tableswitch operands = %d bytes, want 20", len(got[1].Operands))
	}
	if len(got[2].Operands) != 16 {
		t.Errorf("lookupswitch operands = %d bytes, want 16", len(got[2].Operands))
	}
	if !got[3].Wide || got[3].Opcode != OpIinc || len(got[3].Operands) != 4 {
		t.Errorf("wide iinc = %+v", got[3])
	}
	if got[3].Mnemonic() != "wide iinc" {
		t.Errorf("Mnemonic() = %q", got[3].Mnemonic())
	}
	if !got[4].Wide || got[4].U2() != 256 {
		t.Errorf("wide iload = %+v", got[4])
	}
}

func TestDecodeInstructionsErrors(t *testing.T) {
	tests := []struct {
		name     string
		code     []byte
		complete int
	}{
		{"truncated operand", []byte{0x01, 0x11, 0x00}, 1},
		{"unknown opcode", []byte{0x00, 0xCB}, 1},
		{"truncated wide", []byte{0xC4}, 0},
		{"truncated tableswitch", []byte{0xAA, 0, 0, 0, 0, 0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInstructions(tt.code)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
			if len(got) != tt.complete {
				t.Errorf("decoded %d instructions before the error, want %d", len(got), tt.complete)
			}
		})
	}
}

func TestOpcodeTable(t *testing.T) {
	if OpInvokespecial.String() != "invokespecial" {
		t.Errorf("String() = %q", OpInvokespecial.String())
	}
	if Opcode(0xCB).String() != "op_0xcb" {
		t.Errorf("unassigned opcode = %q", Opcode(0xCB).String())
	}
	if op, ok := OpcodeByName("ldc2_w"); !ok || op != OpLdc2W {
		t.Errorf("OpcodeByName(ldc2_w) = %v, %v", op, ok)
	}
	if _, ok := OpcodeByName(""); ok {
		t.Error("empty name should not match")
	}
	if n := len(Opcodes()); n != 205 {
		t.Errorf("Opcodes() has %d entries, want 205", n)
	}
	if w, fixed := OpTableswitch.OperandWidth(); fixed || w != 0 {
		t.Error("tableswitch should be variable width")
	}
}
