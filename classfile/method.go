package classfile

type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *MethodInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MethodInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MethodInfo) GetAttribute(name string) *AttributeInfo {
	return findAttribute(m.Attributes, name)
}

func (m *MethodInfo) GetCodeAttribute() *CodeAttribute {
	return m.GetAttribute("Code").AsCode()
}

// Signature returns the pool index of the method's generic signature, or 0.
func (m *MethodInfo) Signature() uint16 {
	return signatureIndex(m.Attributes)
}

// Exceptions returns the pool indices of the declared thrown classes.
func (m *MethodInfo) Exceptions() []uint16 {
	if ex := m.GetAttribute("Exceptions").AsExceptions(); ex != nil {
		return ex.ExceptionIndexTable
	}
	return nil
}

// LocalVariables returns the entries of every LocalVariableTable attached to
// the method's Code attribute, in attribute order.
func (m *MethodInfo) LocalVariables() []LocalVariableEntry {
	code := m.GetCodeAttribute()
	if code == nil {
		return nil
	}
	var entries []LocalVariableEntry
	for i := range code.Attributes {
		if lvt := code.Attributes[i].AsLocalVariableTable(); lvt != nil {
			entries = append(entries, lvt.LocalVariableTable...)
		}
	}
	return entries
}

// LocalVariableTypes returns the LocalVariableTypeTable entries of the
// method's Code attribute. DescriptorIndex points at a generic signature.
func (m *MethodInfo) LocalVariableTypes() []LocalVariableEntry {
	code := m.GetCodeAttribute()
	if code == nil {
		return nil
	}
	var entries []LocalVariableEntry
	for i := range code.Attributes {
		if lvtt := code.Attributes[i].AsLocalVariableTypeTable(); lvtt != nil {
			entries = append(entries, lvtt.LocalVariableTypeTable...)
		}
	}
	return entries
}

func (m *MethodInfo) IsStatic() bool { return m.AccessFlags.IsStatic() }

func (m *MethodInfo) IsConstructor(cp ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MethodInfo) IsStaticInitializer(cp ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}
