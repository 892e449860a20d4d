package classfile

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Instruction is one decoded bytecode instruction. Operands holds the raw
// operand bytes; switch padding is stripped.
type Instruction struct {
	Offset   int
	Opcode   Opcode
	Operands []byte
	// Wide is set when the instruction was prefixed by wide.
	Wide bool
}

func (i Instruction) U1() uint8 {
	if len(i.Operands) < 1 {
		return 0
	}
	return i.Operands[0]
}

func (i Instruction) U2() uint16 {
	if len(i.Operands) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(i.Operands)
}

func (i Instruction) S1() int8 { return int8(i.U1()) }

func (i Instruction) S2() int16 { return int16(i.U2()) }

// PoolIndex returns the constant pool index an ldc family, field, method,
// type or invoke instruction refers to.
func (i Instruction) PoolIndex() uint16 {
	if i.Opcode == OpLdc {
		return uint16(i.U1())
	}
	return i.U2()
}

func (i Instruction) Mnemonic() string {
	if i.Wide {
		return "wide " + i.Opcode.String()
	}
	return i.Opcode.String()
}

func (i Instruction) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(i.Offset))
	b.WriteString(": ")
	b.WriteString(i.Mnemonic())
	for _, op := range i.Operands {
		fmt.Fprintf(&b, " %02x", op)
	}
	return b.String()
}

// DecodeInstructions splits a Code attribute body into instructions. On
// truncated or unknown input it returns the instructions decoded so far
// together with an ErrMalformed error.
func DecodeInstructions(code []byte) ([]Instruction, error) {
	var out []Instruction
	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		if !op.Known() {
			return out, fmt.Errorf("%w: unknown opcode 0x%02x at %d", ErrMalformed, uint8(op), pc)
		}

		inst := Instruction{Offset: pc, Opcode: op}
		start := pc + 1
		var end int

		switch op {
		case OpTableswitch:
			base := start + padding(start)
			if base+12 > len(code) {
				return out, truncated(op, pc)
			}
			low := int32(binary.BigEndian.Uint32(code[base+4:]))
			high := int32(binary.BigEndian.Uint32(code[base+8:]))
			if high < low {
				return out, fmt.Errorf("%w: tableswitch at %d has high < low", ErrMalformed, pc)
			}
			end = base + 12 + int(int64(high)-int64(low)+1)*4
			start = base

		case OpLookupswitch:
			base := start + padding(start)
			if base+8 > len(code) {
				return out, truncated(op, pc)
			}
			npairs := int32(binary.BigEndian.Uint32(code[base+4:]))
			if npairs < 0 {
				return out, fmt.Errorf("%w: lookupswitch at %d has negative pair count", ErrMalformed, pc)
			}
			end = base + 8 + int(npairs)*8
			start = base

		case OpWide:
			if start >= len(code) {
				return out, truncated(op, pc)
			}
			inst.Opcode = Opcode(code[start])
			inst.Wide = true
			start++
			end = start + 2
			if inst.Opcode == OpIinc {
				end = start + 4
			}

		default:
			width, _ := op.OperandWidth()
			end = start + width
		}

		if end > len(code) {
			return out, truncated(op, pc)
		}
		if end > start {
			inst.Operands = code[start:end]
		}
		out = append(out, inst)
		pc = end
	}
	return out, nil
}

// padding returns the number of bytes that align pos to a multiple of four.
func padding(pos int) int {
	return (4 - pos%4) % 4
}

func truncated(op Opcode, pc int) error {
	return fmt.Errorf("%w: %s at %d runs past the end of the code", ErrMalformed, op, pc)
}
