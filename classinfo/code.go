package classinfo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/classinfo/classfile"
	"github.com/dhamidi/classinfo/descriptor"
)

// Opcodes whose first operand is a constant pool index.
var poolOperands = map[string]bool{
	"ldc": true, "ldc_w": true, "ldc2_w": true,
	"getstatic": true, "putstatic": true, "getfield": true, "putfield": true,
	"invokevirtual": true, "invokespecial": true, "invokestatic": true,
	"invokeinterface": true, "invokedynamic": true,
	"new": true, "anewarray": true, "checkcast": true, "instanceof": true,
	"multianewarray": true,
}

// describe renders one instruction of a listing, with pool operands
// resolved: "3: getstatic com.acme.Color.RED com.acme.Color".
func (a *assembler) describe(inst classfile.Instruction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s", inst.Offset, inst.Mnemonic())

	switch {
	case inst.Wide:
		// wide operands are a local slot and, for iinc, a signed increment
		fmt.Fprintf(&b, " %d", inst.U2())
		if inst.Opcode == classfile.OpIinc && len(inst.Operands) == 4 {
			fmt.Fprintf(&b, " %d", int16(uint16(inst.Operands[2])<<8|uint16(inst.Operands[3])))
		}
	case inst.Opcode == classfile.OpBipush:
		fmt.Fprintf(&b, " %d", inst.S1())
	case inst.Opcode == classfile.OpSipush:
		fmt.Fprintf(&b, " %d", inst.S2())
	case poolOperands[inst.Opcode.String()]:
		b.WriteByte(' ')
		b.WriteString(a.operand(inst.PoolIndex()))
	case inst.Opcode == classfile.OpTableswitch || inst.Opcode == classfile.OpLookupswitch:
		fmt.Fprintf(&b, " (%d bytes)", len(inst.Operands))
	default:
		for _, op := range inst.Operands {
			fmt.Fprintf(&b, " %d", op)
		}
	}
	return b.String()
}

func (a *assembler) operand(index uint16) string {
	v := a.cp.Resolve(index)
	switch v.Tag {
	case classfile.ConstantString:
		return strconv.Quote(v.Name)
	case classfile.ConstantClass:
		return v.Name
	case classfile.ConstantFieldref, classfile.ConstantMethodref, classfile.ConstantInterfaceMethodref:
		return v.Class + "." + v.Name + " " + descriptor.Name(v.Descriptor)
	case classfile.ConstantMethodHandle:
		return v.ReferenceKind.String() + " #" + strconv.Itoa(int(v.ReferenceIndex))
	case classfile.ConstantMethodType:
		return descriptor.Name(v.Descriptor)
	case 0:
		return "#" + strconv.Itoa(int(index))
	}
	return v.Name
}
