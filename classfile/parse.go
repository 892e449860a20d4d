package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tliron/commonlog"
)

// ErrMalformed marks structurally invalid class-file input: bad magic,
// truncation, unknown constant tags or undecodable bytecode.
var ErrMalformed = errors.New("malformed class file")

var log = commonlog.GetLogger("classinfo.classfile")

type reader struct {
	r   io.Reader
	err error
}

func newByteReader(b []byte) *reader {
	return &reader{r: bytes.NewReader(b)}
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	// Copy instead of preallocating so a corrupt length cannot force a
	// huge allocation.
	var buf bytes.Buffer
	_, r.err = io.CopyN(&buf, r.r, int64(n))
	if r.err == io.EOF {
		r.err = io.ErrUnexpectedEOF
	}
	return buf.Bytes()
}

func (r *reader) readU2s(n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = r.readU2()
	}
	return out
}

// malformed wraps a read failure so callers can match ErrMalformed.
func malformed(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMalformed, what, err)
}

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseBytes parses an in-memory class file.
func ParseBytes(b []byte) (*ClassFile, error) {
	return Parse(bytes.NewReader(b))
}

func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, malformed("failed to read magic", r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: invalid magic number: 0x%X (expected 0xCAFEBABE)", ErrMalformed, magic)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, malformed("failed to read version", r.err)
	}

	constantPoolCount := r.readU2()
	if r.err != nil {
		return nil, malformed("failed to read constant pool count", r.err)
	}
	if constantPoolCount == 0 {
		return nil, fmt.Errorf("%w: constant pool count is 0", ErrMalformed)
	}

	cf.ConstantPool = make(ConstantPool, constantPoolCount-1)
	for i := uint16(1); i < constantPoolCount; i++ {
		entry, wide, err := readConstantPoolEntry(r)
		if err != nil {
			return nil, malformed(fmt.Sprintf("failed to read constant pool entry %d", i), err)
		}
		cf.ConstantPool[i-1] = entry
		if wide {
			// Long and Double take two slots; the second stays nil.
			i++
		}
	}

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()

	interfacesCount := r.readU2()
	if r.err != nil {
		return nil, malformed("failed to read class info", r.err)
	}

	cf.Interfaces = r.readU2s(int(interfacesCount))
	if r.err != nil {
		return nil, malformed("failed to read interfaces", r.err)
	}

	fieldsCount := r.readU2()
	if r.err != nil {
		return nil, malformed("failed to read fields count", r.err)
	}

	cf.Fields = make([]FieldInfo, fieldsCount)
	for i := range cf.Fields {
		member, err := readMember(r, cf.ConstantPool)
		if err != nil {
			return nil, malformed(fmt.Sprintf("failed to read field %d", i), err)
		}
		cf.Fields[i] = FieldInfo(member)
	}

	methodsCount := r.readU2()
	if r.err != nil {
		return nil, malformed("failed to read methods count", r.err)
	}

	cf.Methods = make([]MethodInfo, methodsCount)
	for i := range cf.Methods {
		member, err := readMember(r, cf.ConstantPool)
		if err != nil {
			return nil, malformed(fmt.Sprintf("failed to read method %d", i), err)
		}
		cf.Methods[i] = MethodInfo(member)
	}

	attrs, err := readAttributes(r, cf.ConstantPool)
	if err != nil {
		return nil, malformed("failed to read class attributes", err)
	}
	cf.Attributes = attrs

	return cf, nil
}

func readConstantPoolEntry(r *reader) (ConstantPoolEntry, bool, error) {
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, false, r.err
	}

	var entry ConstantPoolEntry
	wide := false

	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		entry = &ConstantUtf8Info{Bytes: r.readBytes(int(length))}

	case ConstantInteger:
		entry = &ConstantIntegerInfo{Value: int32(r.readU4())}

	case ConstantFloat:
		entry = &ConstantFloatInfo{Value: math.Float32frombits(r.readU4())}

	case ConstantLong:
		entry = &ConstantLongInfo{HighBytes: r.readU4(), LowBytes: r.readU4()}
		wide = true

	case ConstantDouble:
		entry = &ConstantDoubleInfo{HighBytes: r.readU4(), LowBytes: r.readU4()}
		wide = true

	case ConstantClass:
		entry = &ConstantClassInfo{NameIndex: r.readU2()}

	case ConstantString:
		entry = &ConstantStringInfo{StringIndex: r.readU2()}

	case ConstantFieldref:
		entry = &ConstantFieldrefInfo{ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantMethodref:
		entry = &ConstantMethodrefInfo{ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantInterfaceMethodref:
		entry = &ConstantInterfaceMethodrefInfo{ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantNameAndType:
		entry = &ConstantNameAndTypeInfo{NameIndex: r.readU2(), DescriptorIndex: r.readU2()}

	case ConstantMethodHandle:
		entry = &ConstantMethodHandleInfo{ReferenceKind: MethodHandleKind(r.readU1()), ReferenceIndex: r.readU2()}

	case ConstantMethodType:
		entry = &ConstantMethodTypeInfo{DescriptorIndex: r.readU2()}

	case ConstantDynamic:
		entry = &ConstantDynamicInfo{BootstrapMethodAttrIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantInvokeDynamic:
		entry = &ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantModule:
		entry = &ConstantModuleInfo{NameIndex: r.readU2()}

	case ConstantPackage:
		entry = &ConstantPackageInfo{NameIndex: r.readU2()}

	default:
		return nil, false, fmt.Errorf("unknown constant pool tag: %d", tag)
	}

	if r.err != nil {
		return nil, false, r.err
	}
	return entry, wide, nil
}

// member is the shared layout of field_info and method_info.
type member struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func readMember(r *reader, cp ConstantPool) (member, error) {
	m := member{
		AccessFlags:     AccessFlags(r.readU2()),
		NameIndex:       r.readU2(),
		DescriptorIndex: r.readU2(),
	}
	if r.err != nil {
		return m, r.err
	}
	attrs, err := readAttributes(r, cp)
	if err != nil {
		return m, err
	}
	m.Attributes = attrs
	return m, nil
}

func readAttributes(r *reader, cp ConstantPool) ([]AttributeInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}

	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		nameIndex := r.readU2()
		length := r.readU4()
		info := r.readBytes(int(length))
		if r.err != nil {
			return nil, r.err
		}
		attrs[i] = newAttribute(cp, nameIndex, info)
	}
	return attrs, nil
}
