package classfile

import (
	"strconv"

	"github.com/dhamidi/classinfo/descriptor"
)

// ClassRef is a resolved CONSTANT_Class used as a value, for example the
// operand of ldc Foo.class.
type ClassRef struct {
	Name string `json:"class" yaml:"class"`
}

func (c ClassRef) String() string { return c.Name + ".class" }

// ResolvedValue is the semantic value of one constant pool entry. Fields that
// do not apply to the entry's tag are left empty; the zero value means the
// index did not resolve.
type ResolvedValue struct {
	Tag            ConstantTag
	Name           string
	Class          string
	Descriptor     string
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
	// Value is the typed literal of loadable constants: int32, float32,
	// int64, float64, string or ClassRef.
	Value any
}

func (v ResolvedValue) IsEmpty() bool { return v.Tag == 0 }

// Resolve turns the entry at a 1-based index into its semantic value. An
// index of 0, an index past the end, an unused slot or a broken indirection
// yields the empty value.
func (cp ConstantPool) Resolve(index uint16) ResolvedValue {
	switch e := cp.Entry(index).(type) {
	case *ConstantUtf8Info:
		s := e.String()
		return ResolvedValue{Tag: ConstantUtf8, Name: s, Value: s}

	case *ConstantIntegerInfo:
		return ResolvedValue{Tag: ConstantInteger, Name: strconv.FormatInt(int64(e.Value), 10), Value: e.Value}

	case *ConstantFloatInfo:
		return ResolvedValue{Tag: ConstantFloat, Name: strconv.FormatFloat(float64(e.Value), 'g', -1, 32), Value: e.Value}

	case *ConstantLongInfo:
		v := e.Value()
		return ResolvedValue{Tag: ConstantLong, Name: strconv.FormatInt(v, 10), Value: v}

	case *ConstantDoubleInfo:
		v := e.Value()
		return ResolvedValue{Tag: ConstantDouble, Name: strconv.FormatFloat(v, 'g', -1, 64), Value: v}

	case *ConstantClassInfo:
		raw, ok := cp.utf8(e.NameIndex)
		if !ok {
			return ResolvedValue{}
		}
		name := descriptor.ClassName(raw)
		return ResolvedValue{Tag: ConstantClass, Name: name, Value: ClassRef{Name: name}}

	case *ConstantStringInfo:
		s, ok := cp.utf8(e.StringIndex)
		if !ok {
			return ResolvedValue{}
		}
		return ResolvedValue{Tag: ConstantString, Name: s, Value: s}

	case *ConstantFieldrefInfo:
		return cp.resolveMemberRef(ConstantFieldref, e.ClassIndex, e.NameAndTypeIndex)

	case *ConstantMethodrefInfo:
		return cp.resolveMemberRef(ConstantMethodref, e.ClassIndex, e.NameAndTypeIndex)

	case *ConstantInterfaceMethodrefInfo:
		return cp.resolveMemberRef(ConstantInterfaceMethodref, e.ClassIndex, e.NameAndTypeIndex)

	case *ConstantNameAndTypeInfo:
		name, desc, ok := cp.nameAndType(index)
		if !ok {
			return ResolvedValue{}
		}
		return ResolvedValue{Tag: ConstantNameAndType, Name: name, Descriptor: desc}

	case *ConstantMethodHandleInfo:
		return ResolvedValue{
			Tag:            ConstantMethodHandle,
			ReferenceKind:  e.ReferenceKind,
			ReferenceIndex: e.ReferenceIndex,
		}

	case *ConstantMethodTypeInfo:
		desc, ok := cp.utf8(e.DescriptorIndex)
		if !ok {
			return ResolvedValue{}
		}
		return ResolvedValue{Tag: ConstantMethodType, Descriptor: desc}

	case *ConstantInvokeDynamicInfo:
		name, _, ok := cp.nameAndType(e.NameAndTypeIndex)
		if !ok {
			return ResolvedValue{}
		}
		return ResolvedValue{Tag: ConstantInvokeDynamic, Name: name}
	}

	// Dynamic, Module, Package and unused slots.
	return ResolvedValue{}
}

// ResolveTag resolves index only when the entry carries the expected tag.
func (cp ConstantPool) ResolveTag(index uint16, tag ConstantTag) ResolvedValue {
	entry := cp.Entry(index)
	if entry == nil || entry.Tag() != tag {
		return ResolvedValue{}
	}
	return cp.Resolve(index)
}

// ClassName resolves a Class entry into its dotted source name.
func (cp ConstantPool) ClassName(index uint16) string {
	return cp.ResolveTag(index, ConstantClass).Name
}

// Literal returns the typed value of a loadable constant.
func (cp ConstantPool) Literal(index uint16) (any, bool) {
	v := cp.Resolve(index)
	return v.Value, v.Value != nil
}

func (cp ConstantPool) utf8(index uint16) (string, bool) {
	entry, ok := cp.Entry(index).(*ConstantUtf8Info)
	if !ok {
		return "", false
	}
	return entry.String(), true
}

func (cp ConstantPool) nameAndType(index uint16) (name, desc string, ok bool) {
	entry, isNat := cp.Entry(index).(*ConstantNameAndTypeInfo)
	if !isNat {
		return "", "", false
	}
	name, nameOK := cp.utf8(entry.NameIndex)
	desc, descOK := cp.utf8(entry.DescriptorIndex)
	if !nameOK || !descOK {
		return "", "", false
	}
	return name, desc, true
}

func (cp ConstantPool) resolveMemberRef(tag ConstantTag, classIndex, natIndex uint16) ResolvedValue {
	class, isClass := cp.Entry(classIndex).(*ConstantClassInfo)
	if !isClass {
		return ResolvedValue{}
	}
	owner, ok := cp.utf8(class.NameIndex)
	if !ok {
		return ResolvedValue{}
	}
	name, desc, ok := cp.nameAndType(natIndex)
	if !ok {
		return ResolvedValue{}
	}
	return ResolvedValue{
		Tag:        tag,
		Class:      descriptor.ClassName(owner),
		Name:       name,
		Descriptor: desc,
	}
}
