package classinfo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/classinfo/classfile"
	"github.com/dhamidi/classinfo/classfile/classfiletest"
)

const (
	colorClass = "com/acme/Color"
	colorDesc  = "Lcom/acme/Color;"
	colorArray = "[Lcom/acme/Color;"
	colorCtor  = "(Ljava/lang/String;IILjava/lang/String;)V"
)

func op(name string) classfile.Opcode {
	o, ok := classfile.OpcodeByName(name)
	if !ok {
		panic("unknown opcode " + name)
	}
	return o
}

func asm() *classfiletest.Asm { return new(classfiletest.Asm) }

// colorEnum assembles the class javac emits for
//
//	@Stable enum Color { RED(1, "r"), BLUE(2, "b"); ... Color(int code, String label) }
func colorEnum() *classfiletest.Builder {
	b := classfiletest.New(colorClass, "java/lang/Enum").
		SetAccess(classfile.AccPublic | classfile.AccFinal | classfile.AccSuper | classfile.AccEnum)

	constant := classfile.AccPublic | classfile.AccStatic | classfile.AccFinal | classfile.AccEnum
	b.AddField(constant, "RED", colorDesc)
	b.AddField(constant, "BLUE", colorDesc)
	b.AddField(classfile.AccPrivate|classfile.AccFinal, "code", "I")
	b.AddField(classfile.AccPrivate|classfile.AccFinal, "label", "Ljava/lang/String;")
	b.AddField(classfile.AccPrivate|classfile.AccStatic|classfile.AccFinal|classfile.AccSynthetic, "$VALUES", colorArray)

	valuesField := b.Fieldref(colorClass, "$VALUES", colorArray)
	values := asm().
		OpIndex(classfile.OpGetstatic, valuesField).
		OpIndex(classfile.OpInvokevirtual, b.Methodref(colorArray, "clone", "()Ljava/lang/Object;")).
		OpIndex(op("checkcast"), b.Class(colorArray)).
		Op(op("areturn"))
	b.AddMethod(classfile.AccPublic|classfile.AccStatic, "values", "()"+colorArray, b.Code(1, 0, values.Bytes()))
	b.AddMethod(classfile.AccPublic|classfile.AccStatic, "valueOf", "(Ljava/lang/String;)"+colorDesc,
		b.Code(1, 1, asm().Op(classfile.OpAconstNull).Op(op("areturn")).Bytes()))

	b.AddMethod(classfile.AccPrivate, "<init>", colorCtor,
		b.Code(3, 5, asm().Op(classfile.OpReturn).Bytes(),
			b.LocalVariableTable(
				classfiletest.LocalVar{Slot: 0, Name: "this", Desc: colorDesc},
				classfiletest.LocalVar{Slot: 4, Name: "label", Desc: "Ljava/lang/String;"},
				classfiletest.LocalVar{Slot: 3, Name: "code", Desc: "I"},
			)))

	getCode := asm().
		Op(op("aload_0")).
		OpIndex(op("getfield"), b.Fieldref(colorClass, "code", "I")).
		Op(op("ireturn"))
	b.AddMethod(classfile.AccPublic, "getCode", "()I",
		b.Code(1, 1, getCode.Bytes(),
			b.LineNumberTable([2]uint16{0, 12}),
			b.LocalVariableTable(classfiletest.LocalVar{Slot: 0, Name: "this", Desc: colorDesc})))

	ctor := b.Methodref(colorClass, "<init>", colorCtor)
	clinit := asm()
	for i, c := range []struct {
		name  string
		code  int
		label string
	}{{"RED", 1, "r"}, {"BLUE", 2, "b"}} {
		clinit.
			OpIndex(classfile.OpNew, b.Class(colorClass)).
			Op(classfile.OpDup).
			Ldc(b.String(c.name)).
			PushInt(i).
			PushInt(c.code).
			Ldc(b.String(c.label)).
			OpIndex(classfile.OpInvokespecial, ctor).
			OpIndex(classfile.OpPutstatic, b.Fieldref(colorClass, c.name, colorDesc))
	}
	clinit.
		OpIndex(classfile.OpInvokestatic, b.Methodref(colorClass, "$values", "()"+colorArray)).
		OpIndex(classfile.OpPutstatic, valuesField).
		Op(classfile.OpReturn)
	b.AddMethod(classfile.AccStatic, "<clinit>", "()V", b.Code(6, 0, clinit.Bytes()))

	b.AddAttribute(
		b.SourceFile("Color.java"),
		b.Annotations(true, b.Annotation("Lcom/acme/Stable;")),
	)
	return b
}

func parse(t *testing.T, b *classfiletest.Builder) *classfile.ClassFile {
	t.Helper()
	cf, err := classfile.ParseBytes(b.Bytes())
	require.NoError(t, err)
	return cf
}

func decode(t *testing.T, b *classfiletest.Builder, opts ...Option) *ClassDescriptor {
	t.Helper()
	desc, err := DecodeBytes(b.Bytes(), opts...)
	require.NoError(t, err)
	return desc
}

func findMethod(t *testing.T, desc *ClassDescriptor, name string) MethodInfo {
	t.Helper()
	for _, m := range desc.MethodsInfo {
		if m.MethodName == name {
			return m
		}
	}
	t.Fatalf("method %s not found", name)
	return MethodInfo{}
}

func findField(t *testing.T, desc *ClassDescriptor, name string) FieldInfo {
	t.Helper()
	for _, f := range desc.FieldsInfo {
		if f.FieldName == name {
			return f
		}
	}
	t.Fatalf("field %s not found", name)
	return FieldInfo{}
}

func methodNames(desc *ClassDescriptor) []string {
	names := make([]string, len(desc.MethodsInfo))
	for i, m := range desc.MethodsInfo {
		names[i] = m.MethodName
	}
	return names
}

func fieldNames(desc *ClassDescriptor) []string {
	names := make([]string, len(desc.FieldsInfo))
	for i, f := range desc.FieldsInfo {
		names[i] = f.FieldName
	}
	return names
}
