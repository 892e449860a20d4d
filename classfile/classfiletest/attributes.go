package classfiletest

import "github.com/dhamidi/classinfo/classfile"

// LocalVar is one LocalVariableTable row.
type LocalVar struct {
	Slot uint16
	Name string
	Desc string
}

// Element is an encoded annotation element value.
type Element []byte

// Pair is one annotation element name/value pair.
type Pair struct {
	Name  string
	Value Element
}

// Code builds a Code attribute around already assembled bytecode.
func (b *Builder) Code(maxStack, maxLocals uint16, code []byte, attrs ...Attribute) Attribute {
	body := cat(u2(maxStack), u2(maxLocals), u4(uint32(len(code))), code)
	body = append(body, u2(0)...) // exception table
	body = append(body, u2(uint16(len(attrs)))...)
	for _, a := range attrs {
		body = append(body, b.attribute(a)...)
	}
	return Attribute{Name: "Code", Body: body}
}

func (b *Builder) LocalVariableTable(vars ...LocalVar) Attribute {
	body := u2(uint16(len(vars)))
	for _, v := range vars {
		body = append(body, cat(u2(0), u2(0xFFFF), u2(b.Utf8(v.Name)), u2(b.Utf8(v.Desc)), u2(v.Slot))...)
	}
	return Attribute{Name: "LocalVariableTable", Body: body}
}

// LocalVariableTypeTable takes generic signatures in Desc.
func (b *Builder) LocalVariableTypeTable(vars ...LocalVar) Attribute {
	lvt := b.LocalVariableTable(vars...)
	return Attribute{Name: "LocalVariableTypeTable", Body: lvt.Body}
}

// LineNumberTable takes (startPC, line) pairs.
func (b *Builder) LineNumberTable(pairs ...[2]uint16) Attribute {
	body := u2(uint16(len(pairs)))
	for _, p := range pairs {
		body = append(body, cat(u2(p[0]), u2(p[1]))...)
	}
	return Attribute{Name: "LineNumberTable", Body: body}
}

// StackMapTable takes already encoded frames.
func (b *Builder) StackMapTable(frames ...[]byte) Attribute {
	body := u2(uint16(len(frames)))
	for _, f := range frames {
		body = append(body, f...)
	}
	return Attribute{Name: "StackMapTable", Body: body}
}

func (b *Builder) Signature(sig string) Attribute {
	return Attribute{Name: "Signature", Body: u2(b.Utf8(sig))}
}

func (b *Builder) SourceFile(name string) Attribute {
	return Attribute{Name: "SourceFile", Body: u2(b.Utf8(name))}
}

func (b *Builder) ConstantValue(index uint16) Attribute {
	return Attribute{Name: "ConstantValue", Body: u2(index)}
}

func (b *Builder) Exceptions(classes ...string) Attribute {
	body := u2(uint16(len(classes)))
	for _, c := range classes {
		body = append(body, u2(b.Class(c))...)
	}
	return Attribute{Name: "Exceptions", Body: body}
}

func (b *Builder) MethodParameters(names ...string) Attribute {
	body := []byte{byte(len(names))}
	for _, n := range names {
		body = append(body, cat(u2(b.Utf8(n)), u2(0))...)
	}
	return Attribute{Name: "MethodParameters", Body: body}
}

// Annotation encodes one annotation; typeDesc is a field descriptor such as
// "Lcom/acme/Marker;".
func (b *Builder) Annotation(typeDesc string, pairs ...Pair) []byte {
	out := cat(u2(b.Utf8(typeDesc)), u2(uint16(len(pairs))))
	for _, p := range pairs {
		out = append(out, u2(b.Utf8(p.Name))...)
		out = append(out, p.Value...)
	}
	return out
}

func (b *Builder) Annotations(visible bool, annotations ...[]byte) Attribute {
	name := "RuntimeInvisibleAnnotations"
	if visible {
		name = "RuntimeVisibleAnnotations"
	}
	body := u2(uint16(len(annotations)))
	for _, a := range annotations {
		body = append(body, a...)
	}
	return Attribute{Name: name, Body: body}
}

func (b *Builder) ParameterAnnotations(visible bool, params ...[][]byte) Attribute {
	name := "RuntimeInvisibleParameterAnnotations"
	if visible {
		name = "RuntimeVisibleParameterAnnotations"
	}
	body := []byte{byte(len(params))}
	for _, anns := range params {
		body = append(body, u2(uint16(len(anns)))...)
		for _, a := range anns {
			body = append(body, a...)
		}
	}
	return Attribute{Name: name, Body: body}
}

func (b *Builder) IntValue(v int32) Element {
	return cat([]byte{'I'}, u2(b.Integer(v)))
}

func (b *Builder) LongValue(v int64) Element {
	return cat([]byte{'J'}, u2(b.Long(v)))
}

func (b *Builder) BoolValue(v bool) Element {
	i := int32(0)
	if v {
		i = 1
	}
	return cat([]byte{'Z'}, u2(b.Integer(i)))
}

func (b *Builder) CharValue(c rune) Element {
	return cat([]byte{'C'}, u2(b.Integer(int32(c))))
}

func (b *Builder) StringValue(s string) Element {
	return cat([]byte{'s'}, u2(b.Utf8(s)))
}

func (b *Builder) EnumValue(typeDesc, name string) Element {
	return cat([]byte{'e'}, u2(b.Utf8(typeDesc)), u2(b.Utf8(name)))
}

func (b *Builder) ClassValue(desc string) Element {
	return cat([]byte{'c'}, u2(b.Utf8(desc)))
}

func (b *Builder) AnnotationValue(annotation []byte) Element {
	return cat([]byte{'@'}, annotation)
}

func (b *Builder) ArrayValue(values ...Element) Element {
	out := cat([]byte{'['}, u2(uint16(len(values))))
	for _, v := range values {
		out = append(out, v...)
	}
	return out
}

// Asm assembles bytecode.
type Asm struct {
	buf []byte
}

func (a *Asm) Op(op classfile.Opcode, operands ...byte) *Asm {
	a.buf = append(a.buf, byte(op))
	a.buf = append(a.buf, operands...)
	return a
}

// OpIndex emits op followed by a u2 pool index.
func (a *Asm) OpIndex(op classfile.Opcode, index uint16) *Asm {
	return a.Op(op, u2(index)...)
}

// Ldc picks ldc or ldc_w depending on the index.
func (a *Asm) Ldc(index uint16) *Asm {
	if index <= 0xFF {
		return a.Op(classfile.OpLdc, byte(index))
	}
	return a.OpIndex(classfile.OpLdcW, index)
}

// PushInt emits the shortest push for v: iconst_*, bipush or sipush.
func (a *Asm) PushInt(v int) *Asm {
	switch {
	case v >= -1 && v <= 5:
		return a.Op(classfile.OpIconst0 + classfile.Opcode(v))
	case v >= -128 && v <= 127:
		return a.Op(classfile.OpBipush, byte(int8(v)))
	default:
		s := uint16(int16(v))
		return a.Op(classfile.OpSipush, u2(s)...)
	}
}

func (a *Asm) Bytes() []byte { return a.buf }
