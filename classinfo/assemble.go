package classinfo

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/classinfo/classfile"
	"github.com/dhamidi/classinfo/descriptor"
)

var log = commonlog.GetLogger("classinfo")

func DecodeFile(path string, opts ...Option) (*ClassDescriptor, error) {
	cf, err := classfile.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return Assemble(cf, opts...), nil
}

func DecodeReader(r io.Reader, opts ...Option) (*ClassDescriptor, error) {
	cf, err := classfile.Parse(r)
	if err != nil {
		return nil, err
	}
	return Assemble(cf, opts...), nil
}

func DecodeBytes(b []byte, opts ...Option) (*ClassDescriptor, error) {
	cf, err := classfile.ParseBytes(b)
	if err != nil {
		return nil, err
	}
	return Assemble(cf, opts...), nil
}

// Assemble builds the description of a parsed class file. Unresolvable
// references and unrecognised bytecode degrade to empty values; Assemble
// itself never fails.
func Assemble(cf *classfile.ClassFile, opts ...Option) *ClassDescriptor {
	a := &assembler{
		cf:      cf,
		cp:      cf.ConstantPool,
		options: newOptions(opts),
		name:    cf.ClassName(),
		isEnum:  cf.IsEnum(),
	}
	return a.assemble()
}

type assembler struct {
	cf      *classfile.ClassFile
	cp      classfile.ConstantPool
	options Options
	name    string
	isEnum  bool

	// annotation type names in first-seen order
	annotationTypes []string
	enumConstants   []EnumConstant
}

func (a *assembler) assemble() *ClassDescriptor {
	pkg, _ := splitClassName(a.name)
	desc := &ClassDescriptor{
		Package:            pkg,
		FullyQualifiedName: a.name,
		SuperClass:         a.cf.SuperClassName(),
		InterfaceName:      a.cf.InterfaceNames(),
		ClassInfo:          a.classInfo(),
		MethodsInfo:        []MethodInfo{},
		FieldsInfo:         []FieldInfo{},
	}

	if a.isEnum {
		desc.EnumInfos, desc.EnumFieldsInfo = ReconstructEnum(a.cf)
		a.enumConstants = desc.EnumInfos
	}

	for i := range a.cf.Fields {
		field := &a.cf.Fields[i]
		if a.isEnum && a.enumSyntheticField(field) {
			continue
		}
		desc.FieldsInfo = append(desc.FieldsInfo, a.field(field))
	}

	for i := range a.cf.Methods {
		method := &a.cf.Methods[i]
		if a.isEnum && a.enumSyntheticMethod(method) {
			continue
		}
		desc.MethodsInfo = append(desc.MethodsInfo, a.method(method))
	}

	desc.DependClass = a.dependencies()
	return desc
}

// enumSyntheticMethod matches the values, valueOf and $values methods the
// compiler adds to every enum. Overloads declared in source are kept.
func (a *assembler) enumSyntheticMethod(m *classfile.MethodInfo) bool {
	self := "L" + a.cp.GetClassName(a.cf.ThisClass) + ";"
	desc := m.Descriptor(a.cp)
	switch m.Name(a.cp) {
	case "values", "$values":
		return desc == "()["+self
	case "valueOf":
		return desc == "(Ljava/lang/String;)"+self
	}
	return false
}

func (a *assembler) enumSyntheticField(f *classfile.FieldInfo) bool {
	self := "L" + a.cp.GetClassName(a.cf.ThisClass) + ";"
	return f.Name(a.cp) == "$VALUES" && f.Descriptor(a.cp) == "["+self
}

func (a *assembler) classInfo() ClassInfo {
	info := ClassInfo{
		ACC:        a.cf.AccessFlags.Names(),
		SourceFile: a.cf.SourceFile(),
		Major:      a.cf.MajorVersion,
		Minor:      a.cf.MinorVersion,
	}
	info.Annotations = a.annotations(a.cf.Attributes)

	if idx := a.cf.Signature(); idx != 0 {
		raw := a.cp.GetUtf8(idx)
		if sig := descriptor.ParseClassSignature(raw); sig != nil {
			info.Signature = sig.String()
		} else {
			log.Debugf("%s: malformed class signature %q", a.name, raw)
			info.Signature = raw
		}
	}
	return info
}

func (a *assembler) annotations(attrs []classfile.AttributeInfo) Annotations {
	annotations, types := annotationsOf(a.cp, attrs)
	a.annotationTypes = append(a.annotationTypes, types...)
	return annotations
}

func (a *assembler) field(f *classfile.FieldInfo) FieldInfo {
	info := FieldInfo{
		FieldName:   f.Name(a.cp),
		Type:        descriptor.Name(f.Descriptor(a.cp)),
		ACC:         f.AccessFlags.Names(),
		Annotations: a.annotations(f.Attributes),
	}
	if idx := f.Signature(); idx != 0 {
		info.Type = descriptor.Name(a.cp.GetUtf8(idx))
	}
	if idx := f.ConstantValue(); idx != 0 {
		if value, ok := a.cp.Literal(idx); ok {
			info.ConstantValue = value
		}
	}
	return info
}

func (a *assembler) method(m *classfile.MethodInfo) MethodInfo {
	name := m.Name(a.cp)
	desc := m.Descriptor(a.cp)
	isEnumCtor := a.isEnum && m.IsConstructor(a.cp)

	info := MethodInfo{
		MethodName:  name,
		ParamTypes:  []string{},
		ACC:         m.AccessFlags.Names(),
		Annotations: a.annotations(m.Attributes),
	}

	if parsed := descriptor.ParseMethod(desc); parsed != nil {
		info.ParamTypes = parsed.ParamNames()
		info.ReturnType = parsed.ReturnName()
	} else {
		log.Debugf("%s.%s: malformed method descriptor %q", a.name, name, desc)
		info.ReturnType = descriptor.Name(desc)
	}
	if isEnumCtor && len(info.ParamTypes) >= 2 {
		info.ParamTypes = info.ParamTypes[2:]
	}

	paramAnnotations, types := parameterAnnotationsOf(a.cp, m.Attributes)
	info.ParameterAnnotations = paramAnnotations
	a.annotationTypes = append(a.annotationTypes, types...)

	for _, idx := range m.Exceptions() {
		info.Exception = append(info.Exception, a.cp.ClassName(idx))
	}

	if idx := m.Signature(); idx != 0 {
		info.ParamDetailTypes = a.methodSignature(name, a.cp.GetUtf8(idx))
	}

	if code := m.GetCodeAttribute(); code != nil {
		a.code(&info, m, code, isEnumCtor)
		if a.isEnum && m.IsStaticInitializer(a.cp) {
			info.Enum = a.enumConstants
		}
	}
	if names := a.parameterNames(m, isEnumCtor); names != nil {
		a.nameParameters(&info, names)
	}
	return info
}

func (a *assembler) methodSignature(method, raw string) *MethodSignature {
	sig := descriptor.ParseMethod(raw)
	if sig == nil {
		log.Debugf("%s.%s: malformed method signature %q", a.name, method, raw)
		return nil
	}
	result := &MethodSignature{
		ParamTypes: sig.ParamNames(),
		ReturnType: sig.ReturnName(),
	}
	for _, tp := range sig.TypeParams {
		result.TypeParameters = append(result.TypeParameters, tp.Name+" extends "+tp.String())
	}
	for _, t := range sig.Throws {
		result.Throws = append(result.Throws, t.String())
	}
	return result
}

func (a *assembler) code(info *MethodInfo, m *classfile.MethodInfo, code *classfile.CodeAttribute, isEnumCtor bool) {
	for i := range code.Attributes {
		attr := &code.Attributes[i]
		if lnt := attr.AsLineNumberTable(); lnt != nil {
			for _, e := range lnt.LineNumberTable {
				info.LineNumberTable = append(info.LineNumberTable, LineNumber{StartPC: e.StartPC, Line: e.LineNumber})
			}
		}
		if smt := attr.AsStackMapTable(); smt != nil {
			for _, f := range smt.Entries {
				info.Entries = append(info.Entries, Frame{Kind: f.Kind(), OffsetDelta: f.OffsetDelta})
			}
		}
	}

	if locals := m.LocalVariables(); len(locals) > 0 {
		vars := sortedLocals(a.cp, locals)
		a.genericLocals(vars, m.LocalVariableTypes())
		var start uint16
		switch {
		case isEnumCtor:
			start = 3
		case !m.IsStatic():
			start = 1
		}
		info.LocalVariableTable = &LocalVariableTable{
			Variable:   vars,
			Parameters: attributeParameters(vars, start, len(info.ParamTypes)),
		}
	}
	if a.options.Code {
		info.Codes = make([]string, len(code.Instructions))
		for i, inst := range code.Instructions {
			info.Codes[i] = a.describe(inst)
		}
	}
}

// genericLocals replaces erased local types with the signatures recorded
// in the LocalVariableTypeTable.
func (a *assembler) genericLocals(vars []Variable, types []classfile.LocalVariableEntry) {
	for _, t := range types {
		name := a.cp.GetUtf8(t.NameIndex)
		for i := range vars {
			if vars[i].Slot == t.Index && vars[i].Name == name {
				vars[i].Type = descriptor.Name(a.cp.GetUtf8(t.DescriptorIndex))
				break
			}
		}
	}
}

// attributeParameters picks the first n locals at or after the start slot.
func attributeParameters(vars []Variable, start uint16, n int) []Variable {
	params := make([]Variable, 0, n)
	for _, v := range vars {
		if len(params) == n {
			break
		}
		if v.Slot >= start {
			params = append(params, v)
		}
	}
	return params
}

// parameterNames returns the MethodParameters names with the enum
// constructor's name and ordinal removed, or nil without the attribute.
func (a *assembler) parameterNames(m *classfile.MethodInfo, isEnumCtor bool) []string {
	mp := m.GetAttribute("MethodParameters").AsMethodParameters()
	if mp == nil {
		return nil
	}
	names := make([]string, len(mp.Parameters))
	for i, p := range mp.Parameters {
		names[i] = a.cp.GetUtf8(p.NameIndex)
	}
	if isEnumCtor && len(names) >= 2 {
		names = names[2:]
	}
	return names
}

// nameParameters lets MethodParameters names override the names found in
// the LocalVariableTable.
func (a *assembler) nameParameters(info *MethodInfo, names []string) {
	if info.LocalVariableTable == nil {
		info.LocalVariableTable = &LocalVariableTable{Variable: []Variable{}}
	}
	lvt := info.LocalVariableTable
	params := make([]Variable, len(info.ParamTypes))
	for i := range params {
		params[i].Type = info.ParamTypes[i]
		if i < len(lvt.Parameters) {
			params[i] = lvt.Parameters[i]
		}
		if i < len(names) && names[i] != "" {
			params[i].Name = names[i]
		}
	}
	lvt.Parameters = params
}

// dependencies merges pool class references with annotation types, sorted
// and free of the class itself and noise.
func (a *assembler) dependencies() []string {
	var names []string
	for _, idx := range a.cp.ClassIndices() {
		names = append(names, a.cp.ClassName(idx))
	}
	names = append(names, a.annotationTypes...)

	self := map[string]bool{a.name: true, a.name + "[]": true, "": true}
	deps := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if self[name] || seen[name] || a.options.isNoise(name) {
			continue
		}
		seen[name] = true
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

func splitClassName(fullName string) (pkg, simpleName string) {
	lastDot := strings.LastIndex(fullName, ".")
	if lastDot == -1 {
		return "", fullName
	}
	return fullName[:lastDot], fullName[lastDot+1:]
}
