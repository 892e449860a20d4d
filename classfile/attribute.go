package classfile

type AttributeInfo struct {
	Name      string
	NameIndex uint16
	Info      []byte
	// Parsed holds the decoded body for recognised attributes. It is nil
	// for unknown attributes, for module attributes (kept as raw bytes) and
	// for bodies that failed to decode.
	Parsed any
}

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	Instructions   []Instruction
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type LocalVariableTypeTableAttribute struct {
	LocalVariableTypeTable []LocalVariableEntry
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

type StackMapTableAttribute struct {
	Entries []StackMapFrame
}

type StackMapFrame struct {
	FrameType   uint8
	OffsetDelta uint16
	Data        []byte
}

// Kind names the frame layout selected by FrameType.
func (f StackMapFrame) Kind() string {
	switch t := f.FrameType; {
	case t <= 63:
		return "same_frame"
	case t <= 127:
		return "same_locals_1_stack_item_frame"
	case t == 247:
		return "same_locals_1_stack_item_frame_extended"
	case t >= 248 && t <= 250:
		return "chop_frame"
	case t == 251:
		return "same_frame_extended"
	case t >= 252 && t <= 254:
		return "append_frame"
	case t == 255:
		return "full_frame"
	}
	return "reserved"
}

type Annotation struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue is one annotation element value. Which field is set depends
// on Tag: constants and 'c' use ConstIndex, 'e' uses Enum, '@' uses
// Annotation and '[' uses Array.
type ElementValue struct {
	Tag        byte
	ConstIndex uint16
	Enum       *EnumConstValue
	Annotation *Annotation
	Array      []ElementValue
}

type EnumConstValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

type AnnotationsAttribute struct {
	Annotations []Annotation
}

type ParameterAnnotationsAttribute struct {
	ParameterAnnotations [][]Annotation
}

func (a *AttributeInfo) AsCode() *CodeAttribute {
	if a == nil {
		return nil
	}
	code, _ := a.Parsed.(*CodeAttribute)
	return code
}

func (a *AttributeInfo) AsLineNumberTable() *LineNumberTableAttribute {
	if a == nil {
		return nil
	}
	lnt, _ := a.Parsed.(*LineNumberTableAttribute)
	return lnt
}

func (a *AttributeInfo) AsLocalVariableTable() *LocalVariableTableAttribute {
	if a == nil {
		return nil
	}
	lvt, _ := a.Parsed.(*LocalVariableTableAttribute)
	return lvt
}

func (a *AttributeInfo) AsLocalVariableTypeTable() *LocalVariableTypeTableAttribute {
	if a == nil {
		return nil
	}
	lvtt, _ := a.Parsed.(*LocalVariableTypeTableAttribute)
	return lvtt
}

func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute {
	if a == nil {
		return nil
	}
	sf, _ := a.Parsed.(*SourceFileAttribute)
	return sf
}

func (a *AttributeInfo) AsConstantValue() *ConstantValueAttribute {
	if a == nil {
		return nil
	}
	cv, _ := a.Parsed.(*ConstantValueAttribute)
	return cv
}

func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute {
	if a == nil {
		return nil
	}
	ex, _ := a.Parsed.(*ExceptionsAttribute)
	return ex
}

func (a *AttributeInfo) AsSignature() *SignatureAttribute {
	if a == nil {
		return nil
	}
	sig, _ := a.Parsed.(*SignatureAttribute)
	return sig
}

func (a *AttributeInfo) AsMethodParameters() *MethodParametersAttribute {
	if a == nil {
		return nil
	}
	mp, _ := a.Parsed.(*MethodParametersAttribute)
	return mp
}

func (a *AttributeInfo) AsStackMapTable() *StackMapTableAttribute {
	if a == nil {
		return nil
	}
	smt, _ := a.Parsed.(*StackMapTableAttribute)
	return smt
}

// AsAnnotations covers RuntimeVisibleAnnotations and
// RuntimeInvisibleAnnotations.
func (a *AttributeInfo) AsAnnotations() *AnnotationsAttribute {
	if a == nil {
		return nil
	}
	ann, _ := a.Parsed.(*AnnotationsAttribute)
	return ann
}

// AsParameterAnnotations covers the visible and invisible parameter
// annotation attributes.
func (a *AttributeInfo) AsParameterAnnotations() *ParameterAnnotationsAttribute {
	if a == nil {
		return nil
	}
	pa, _ := a.Parsed.(*ParameterAnnotationsAttribute)
	return pa
}

func findAttribute(attrs []AttributeInfo, name string) *AttributeInfo {
	for i := range attrs {
		if attrs[i].Name == name {
			return &attrs[i]
		}
	}
	return nil
}

func signatureIndex(attrs []AttributeInfo) uint16 {
	if sig := findAttribute(attrs, "Signature").AsSignature(); sig != nil {
		return sig.SignatureIndex
	}
	return 0
}

// newAttribute decodes the body of a recognised attribute. A body that does
// not decode leaves Parsed nil; the rest of the class is unaffected.
func newAttribute(cp ConstantPool, nameIndex uint16, info []byte) AttributeInfo {
	attr := AttributeInfo{
		Name:      cp.GetUtf8(nameIndex),
		NameIndex: nameIndex,
		Info:      info,
	}

	var parsed any
	var err error
	switch attr.Name {
	case "Code":
		parsed, err = parseCodeAttribute(info, cp)
	case "LineNumberTable":
		parsed, err = parseLineNumberTableAttribute(info)
	case "LocalVariableTable":
		parsed, err = parseLocalVariableTableAttribute(info)
	case "LocalVariableTypeTable":
		parsed, err = parseLocalVariableTypeTableAttribute(info)
	case "SourceFile":
		parsed, err = parseSourceFileAttribute(info)
	case "ConstantValue":
		parsed, err = parseConstantValueAttribute(info)
	case "Exceptions":
		parsed, err = parseExceptionsAttribute(info)
	case "Signature":
		parsed, err = parseSignatureAttribute(info)
	case "MethodParameters":
		parsed, err = parseMethodParametersAttribute(info)
	case "StackMapTable":
		parsed, err = parseStackMapTableAttribute(info)
	case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
		parsed, err = parseAnnotationsAttribute(info)
	case "RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations":
		parsed, err = parseParameterAnnotationsAttribute(info)
	default:
		return attr
	}
	if err != nil {
		log.Debugf("skipping %s attribute: %s", attr.Name, err)
		return attr
	}
	attr.Parsed = parsed
	return attr
}

func parseCodeAttribute(info []byte, cp ConstantPool) (any, error) {
	r := newByteReader(info)
	code := &CodeAttribute{
		MaxStack:  r.readU2(),
		MaxLocals: r.readU2(),
	}
	codeLength := r.readU4()
	code.Code = r.readBytes(int(codeLength))

	exceptionTableLength := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	code.ExceptionTable = make([]ExceptionTableEntry, exceptionTableLength)
	for i := range code.ExceptionTable {
		code.ExceptionTable[i] = ExceptionTableEntry{
			StartPC:   r.readU2(),
			EndPC:     r.readU2(),
			HandlerPC: r.readU2(),
			CatchType: r.readU2(),
		}
	}

	attrs, err := readAttributes(r, cp)
	if err != nil {
		return nil, err
	}
	code.Attributes = attrs

	instructions, err := DecodeInstructions(code.Code)
	if err != nil {
		// Keep what decoded; consumers stop where the stream broke.
		log.Debugf("partial bytecode: %s", err)
	}
	code.Instructions = instructions

	return code, nil
}

func parseLineNumberTableAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	lnt := &LineNumberTableAttribute{
		LineNumberTable: make([]LineNumberEntry, r.readU2()),
	}
	for i := range lnt.LineNumberTable {
		lnt.LineNumberTable[i] = LineNumberEntry{
			StartPC:    r.readU2(),
			LineNumber: r.readU2(),
		}
	}
	return lnt, r.err
}

func readLocalVariables(r *reader) []LocalVariableEntry {
	entries := make([]LocalVariableEntry, r.readU2())
	for i := range entries {
		entries[i] = LocalVariableEntry{
			StartPC:         r.readU2(),
			Length:          r.readU2(),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
			Index:           r.readU2(),
		}
	}
	return entries
}

func parseLocalVariableTableAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	lvt := &LocalVariableTableAttribute{LocalVariableTable: readLocalVariables(r)}
	return lvt, r.err
}

// The type table shares the layout of the variable table; DescriptorIndex
// holds the signature index.
func parseLocalVariableTypeTableAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	lvtt := &LocalVariableTypeTableAttribute{LocalVariableTypeTable: readLocalVariables(r)}
	return lvtt, r.err
}

func parseSourceFileAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	sf := &SourceFileAttribute{SourceFileIndex: r.readU2()}
	return sf, r.err
}

func parseConstantValueAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	cv := &ConstantValueAttribute{ConstantValueIndex: r.readU2()}
	return cv, r.err
}

func parseExceptionsAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	count := r.readU2()
	ex := &ExceptionsAttribute{ExceptionIndexTable: r.readU2s(int(count))}
	return ex, r.err
}

func parseSignatureAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	sig := &SignatureAttribute{SignatureIndex: r.readU2()}
	return sig, r.err
}

func parseMethodParametersAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	mp := &MethodParametersAttribute{
		Parameters: make([]MethodParameter, r.readU1()),
	}
	for i := range mp.Parameters {
		mp.Parameters[i] = MethodParameter{
			NameIndex:   r.readU2(),
			AccessFlags: AccessFlags(r.readU2()),
		}
	}
	return mp, r.err
}

func parseStackMapTableAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	count := r.readU2()
	smt := &StackMapTableAttribute{
		Entries: make([]StackMapFrame, 0, count),
	}

	// Track the absolute position to slice out each frame's raw bytes.
	pos := 2
	for i := uint16(0); i < count && r.err == nil; i++ {
		start := pos
		frame := StackMapFrame{FrameType: r.readU1()}
		pos++

		skipVerificationTypes := func(n int) {
			for k := 0; k < n; k++ {
				tag := r.readU1()
				pos++
				// Object and Uninitialized carry a u2 payload.
				if tag == 7 || tag == 8 {
					r.readU2()
					pos += 2
				}
			}
		}

		switch t := frame.FrameType; {
		case t <= 63:
			frame.OffsetDelta = uint16(t)
		case t <= 127:
			frame.OffsetDelta = uint16(t - 64)
			skipVerificationTypes(1)
		case t == 247:
			frame.OffsetDelta = r.readU2()
			pos += 2
			skipVerificationTypes(1)
		case t >= 248 && t <= 251:
			frame.OffsetDelta = r.readU2()
			pos += 2
		case t >= 252 && t <= 254:
			frame.OffsetDelta = r.readU2()
			pos += 2
			skipVerificationTypes(int(t) - 251)
		case t == 255:
			frame.OffsetDelta = r.readU2()
			locals := r.readU2()
			pos += 4
			skipVerificationTypes(int(locals))
			stack := r.readU2()
			pos += 2
			skipVerificationTypes(int(stack))
		}

		if r.err == nil && pos <= len(info) {
			frame.Data = info[start:pos]
		}
		smt.Entries = append(smt.Entries, frame)
	}
	return smt, r.err
}

func readElementValue(r *reader) ElementValue {
	ev := ElementValue{Tag: r.readU1()}
	switch ev.Tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		ev.ConstIndex = r.readU2()
	case 'e':
		ev.Enum = &EnumConstValue{
			TypeNameIndex:  r.readU2(),
			ConstNameIndex: r.readU2(),
		}
	case '@':
		ann := readAnnotation(r)
		ev.Annotation = &ann
	case '[':
		n := r.readU2()
		for i := uint16(0); i < n && r.err == nil; i++ {
			ev.Array = append(ev.Array, readElementValue(r))
		}
	}
	return ev
}

func readAnnotation(r *reader) Annotation {
	ann := Annotation{TypeIndex: r.readU2()}
	numPairs := r.readU2()
	for i := uint16(0); i < numPairs && r.err == nil; i++ {
		pair := ElementValuePair{ElementNameIndex: r.readU2()}
		pair.Value = readElementValue(r)
		ann.ElementValuePairs = append(ann.ElementValuePairs, pair)
	}
	return ann
}

func readAnnotations(r *reader) []Annotation {
	n := r.readU2()
	var annotations []Annotation
	for i := uint16(0); i < n && r.err == nil; i++ {
		annotations = append(annotations, readAnnotation(r))
	}
	return annotations
}

func parseAnnotationsAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	attr := &AnnotationsAttribute{Annotations: readAnnotations(r)}
	return attr, r.err
}

func parseParameterAnnotationsAttribute(info []byte) (any, error) {
	r := newByteReader(info)
	attr := &ParameterAnnotationsAttribute{
		ParameterAnnotations: make([][]Annotation, r.readU1()),
	}
	for i := range attr.ParameterAnnotations {
		attr.ParameterAnnotations[i] = readAnnotations(r)
	}
	return attr, r.err
}
