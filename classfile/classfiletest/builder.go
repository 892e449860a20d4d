// Package classfiletest assembles class files in memory for tests.
package classfiletest

import (
	"encoding/binary"
	"math"
	"unicode/utf16"

	"github.com/dhamidi/classinfo/classfile"
)

// Attribute is an encoded attribute ready to attach to a class, field,
// method or Code attribute.
type Attribute struct {
	Name string
	Body []byte
}

type member struct {
	access classfile.AccessFlags
	name   uint16
	desc   uint16
	attrs  []Attribute
}

// Builder accumulates a constant pool and class structure. Pool helpers
// deduplicate Utf8 and Class entries and return 1-based indices.
type Builder struct {
	pool  []byte
	next  uint16
	utf8s map[string]uint16
	class map[string]uint16

	access     classfile.AccessFlags
	this       uint16
	super      uint16
	interfaces []uint16
	fields     []member
	methods    []member
	attrs      []Attribute
}

// New starts a public class with internal name name extending super. An
// empty super leaves super_class at 0.
func New(name, super string) *Builder {
	b := &Builder{
		next:   1,
		utf8s:  make(map[string]uint16),
		class:  make(map[string]uint16),
		access: classfile.AccPublic | classfile.AccSuper,
	}
	b.this = b.Class(name)
	if super != "" {
		b.super = b.Class(super)
	}
	return b
}

func (b *Builder) SetAccess(flags classfile.AccessFlags) *Builder {
	b.access = flags
	return b
}

func (b *Builder) AddInterface(name string) *Builder {
	b.interfaces = append(b.interfaces, b.Class(name))
	return b
}

// Entry appends a raw pool entry. Long and Double take two slots.
func (b *Builder) Entry(tag classfile.ConstantTag, payload ...byte) uint16 {
	idx := b.next
	b.pool = append(b.pool, byte(tag))
	b.pool = append(b.pool, payload...)
	b.next++
	if tag == classfile.ConstantLong || tag == classfile.ConstantDouble {
		b.next++
	}
	return idx
}

// RawUtf8 appends a Utf8 entry holding raw bytes without re-encoding.
func (b *Builder) RawUtf8(raw []byte) uint16 {
	return b.Entry(classfile.ConstantUtf8, append(u2(uint16(len(raw))), raw...)...)
}

func (b *Builder) Utf8(s string) uint16 {
	if idx, ok := b.utf8s[s]; ok {
		return idx
	}
	idx := b.RawUtf8(EncodeModifiedUTF8(s))
	b.utf8s[s] = idx
	return idx
}

func (b *Builder) Class(internal string) uint16 {
	if idx, ok := b.class[internal]; ok {
		return idx
	}
	idx := b.Entry(classfile.ConstantClass, u2(b.Utf8(internal))...)
	b.class[internal] = idx
	return idx
}

func (b *Builder) String(s string) uint16 {
	return b.Entry(classfile.ConstantString, u2(b.Utf8(s))...)
}

func (b *Builder) Integer(v int32) uint16 {
	return b.Entry(classfile.ConstantInteger, u4(uint32(v))...)
}

func (b *Builder) Float(v float32) uint16 {
	return b.Entry(classfile.ConstantFloat, u4(math.Float32bits(v))...)
}

func (b *Builder) Long(v int64) uint16 {
	return b.Entry(classfile.ConstantLong, u8(uint64(v))...)
}

func (b *Builder) Double(v float64) uint16 {
	return b.Entry(classfile.ConstantDouble, u8(math.Float64bits(v))...)
}

func (b *Builder) NameAndType(name, desc string) uint16 {
	return b.Entry(classfile.ConstantNameAndType, cat(u2(b.Utf8(name)), u2(b.Utf8(desc)))...)
}

func (b *Builder) Fieldref(class, name, desc string) uint16 {
	return b.Entry(classfile.ConstantFieldref, cat(u2(b.Class(class)), u2(b.NameAndType(name, desc)))...)
}

func (b *Builder) Methodref(class, name, desc string) uint16 {
	return b.Entry(classfile.ConstantMethodref, cat(u2(b.Class(class)), u2(b.NameAndType(name, desc)))...)
}

func (b *Builder) InterfaceMethodref(class, name, desc string) uint16 {
	return b.Entry(classfile.ConstantInterfaceMethodref, cat(u2(b.Class(class)), u2(b.NameAndType(name, desc)))...)
}

func (b *Builder) MethodHandle(kind classfile.MethodHandleKind, ref uint16) uint16 {
	return b.Entry(classfile.ConstantMethodHandle, cat([]byte{byte(kind)}, u2(ref))...)
}

func (b *Builder) MethodType(desc string) uint16 {
	return b.Entry(classfile.ConstantMethodType, u2(b.Utf8(desc))...)
}

func (b *Builder) InvokeDynamic(bootstrap uint16, name, desc string) uint16 {
	return b.Entry(classfile.ConstantInvokeDynamic, cat(u2(bootstrap), u2(b.NameAndType(name, desc)))...)
}

func (b *Builder) AddField(access classfile.AccessFlags, name, desc string, attrs ...Attribute) *Builder {
	b.fields = append(b.fields, member{access, b.Utf8(name), b.Utf8(desc), attrs})
	return b
}

func (b *Builder) AddMethod(access classfile.AccessFlags, name, desc string, attrs ...Attribute) *Builder {
	b.methods = append(b.methods, member{access, b.Utf8(name), b.Utf8(desc), attrs})
	return b
}

func (b *Builder) AddAttribute(attrs ...Attribute) *Builder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// Bytes serialises the class file, Java 8 version numbers.
func (b *Builder) Bytes() []byte {
	// Resolve attribute names first so the pool is complete.
	encAttrs := func(attrs []Attribute) []byte {
		out := u2(uint16(len(attrs)))
		for _, a := range attrs {
			out = append(out, b.attribute(a)...)
		}
		return out
	}
	encMembers := func(members []member) []byte {
		out := u2(uint16(len(members)))
		for _, m := range members {
			out = append(out, u2(uint16(m.access))...)
			out = append(out, u2(m.name)...)
			out = append(out, u2(m.desc)...)
			out = append(out, encAttrs(m.attrs)...)
		}
		return out
	}

	var body []byte
	body = append(body, u2(uint16(b.access))...)
	body = append(body, u2(b.this)...)
	body = append(body, u2(b.super)...)
	body = append(body, u2(uint16(len(b.interfaces)))...)
	for _, i := range b.interfaces {
		body = append(body, u2(i)...)
	}
	body = append(body, encMembers(b.fields)...)
	body = append(body, encMembers(b.methods)...)
	body = append(body, encAttrs(b.attrs)...)

	out := u4(classfile.Magic)
	out = append(out, u2(0)...)
	out = append(out, u2(52)...)
	out = append(out, u2(b.next)...)
	out = append(out, b.pool...)
	return append(out, body...)
}

func (b *Builder) attribute(a Attribute) []byte {
	out := u2(b.Utf8(a.Name))
	out = append(out, u4(uint32(len(a.Body)))...)
	return append(out, a.Body...)
}

// EncodeModifiedUTF8 encodes s the way CONSTANT_Utf8 stores strings.
func EncodeModifiedUTF8(s string) []byte {
	var out []byte
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = append(out, enc3(r)...)
		default:
			hi, lo := utf16.EncodeRune(r)
			out = append(out, enc3(hi)...)
			out = append(out, enc3(lo)...)
		}
	}
	return out
}

func enc3(r rune) []byte {
	return []byte{0xE0 | byte(r>>12), 0x80 | byte((r>>6)&0x3F), 0x80 | byte(r&0x3F)}
}

func u2(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func u4(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func u8(v uint64) []byte { return binary.BigEndian.AppendUint64(nil, v) }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
