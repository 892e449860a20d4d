package classfile

type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (f *FieldInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(f.NameIndex)
}

func (f *FieldInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(f.DescriptorIndex)
}

func (f *FieldInfo) GetAttribute(name string) *AttributeInfo {
	return findAttribute(f.Attributes, name)
}

// ConstantValue returns the pool index of the field's ConstantValue
// attribute, or 0.
func (f *FieldInfo) ConstantValue() uint16 {
	if cv := f.GetAttribute("ConstantValue").AsConstantValue(); cv != nil {
		return cv.ConstantValueIndex
	}
	return 0
}

// Signature returns the pool index of the field's generic signature, or 0.
func (f *FieldInfo) Signature() uint16 {
	return signatureIndex(f.Attributes)
}
