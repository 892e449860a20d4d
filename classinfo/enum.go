package classinfo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/classinfo/classfile"
	"github.com/dhamidi/classinfo/descriptor"
)

// ReadMap names the values an enum constructor receives, by argument
// position. Index 0 and 1 are always "name" and "ordinal".
type ReadMap []string

// Arg returns the name at position i, or a synthesised argN name for the
// extra arguments the map does not cover.
func (r ReadMap) Arg(i int) string {
	if i < len(r) && r[i] != "" {
		return r[i]
	}
	return fmt.Sprintf("arg%d", i-2)
}

// BuildReadMap derives the read map of one enum constructor from its
// LocalVariableTable. Slots 0 to 2 hold this, the name and the ordinal; the
// remaining named locals are taken in slot order, at most one per declared
// parameter.
func BuildReadMap(cp classfile.ConstantPool, ctor *classfile.MethodInfo) ReadMap {
	params := -1
	if m := descriptor.ParseMethod(ctor.Descriptor(cp)); m != nil {
		params = len(m.Params)
	}

	readMap := ReadMap{"name", "ordinal"}
	for _, v := range sortedLocals(cp, ctor.LocalVariables()) {
		if v.Slot < 3 {
			continue
		}
		if params >= 0 && len(readMap) >= params {
			break
		}
		readMap = append(readMap, v.Name)
	}
	for i := len(readMap); i < params; i++ {
		readMap = append(readMap, fmt.Sprintf("arg%d", i-2))
	}
	return readMap
}

type enumState int

const (
	stateIdle enumState = iota
	stateReading
)

func (s enumState) String() string {
	if s == stateReading {
		return "reading"
	}
	return "idle"
}

// EnumMachine recognises the compiler generated construction of enum
// constants in a static initializer: NEW, DUP, a run of constant pushes
// and the INVOKESPECIAL of the constructor. Everything else is skipped.
type EnumMachine struct {
	pool      classfile.ConstantPool
	class     string
	readMaps  map[string]ReadMap
	state     enumState
	acc       []any
	constants []EnumConstant
}

// NewEnumMachine returns a machine for the enum class with the given dotted
// name. readMaps is keyed by constructor descriptor.
func NewEnumMachine(cp classfile.ConstantPool, class string, readMaps map[string]ReadMap) *EnumMachine {
	return &EnumMachine{
		pool:      cp,
		class:     class,
		readMaps:  readMaps,
		constants: []EnumConstant{},
	}
}

// Reading reports whether a constant is being accumulated.
func (m *EnumMachine) Reading() bool { return m.state == stateReading }

// Pending returns the values accumulated for the constant under
// construction.
func (m *EnumMachine) Pending() []any { return m.acc }

// Constants returns the constants emitted so far, in emission order.
func (m *EnumMachine) Constants() []EnumConstant { return m.constants }

// Step feeds one instruction to the machine.
func (m *EnumMachine) Step(inst classfile.Instruction) {
	if inst.Opcode == classfile.OpNew {
		if m.ownsClass(m.pool.ClassName(inst.PoolIndex())) {
			m.state = stateReading
			m.acc = m.acc[:0]
		}
		return
	}
	if m.state != stateReading {
		return
	}

	if value, ok := m.push(inst); ok {
		m.acc = append(m.acc, value)
		return
	}

	if inst.Opcode == classfile.OpInvokespecial {
		ref := m.pool.Resolve(inst.PoolIndex())
		if ref.Name == "<init>" && m.ownsClass(ref.Class) {
			m.emit(ref.Descriptor)
		}
	}
}

func (m *EnumMachine) push(inst classfile.Instruction) (any, bool) {
	switch op := inst.Opcode; {
	case op == classfile.OpAconstNull:
		return nil, true
	case op >= classfile.OpIconstM1 && op <= classfile.OpIconst5:
		return int32(op) - int32(classfile.OpIconst0), true
	case op == classfile.OpLconst0 || op == classfile.OpLconst1:
		return int64(op - classfile.OpLconst0), true
	case op >= classfile.OpFconst0 && op <= classfile.OpFconst2:
		return float32(op - classfile.OpFconst0), true
	case op == classfile.OpDconst0 || op == classfile.OpDconst1:
		return float64(op - classfile.OpDconst0), true
	case op == classfile.OpBipush:
		return int32(inst.S1()), true
	case op == classfile.OpSipush:
		return int32(inst.S2()), true
	case op == classfile.OpLdc || op == classfile.OpLdcW || op == classfile.OpLdc2W:
		value, ok := m.pool.Literal(inst.PoolIndex())
		if !ok {
			log.Debugf("%s at %d: pool entry %d is not a literal", inst.Mnemonic(), inst.Offset, inst.PoolIndex())
		}
		return value, true
	}
	return nil, false
}

func (m *EnumMachine) emit(ctorDescriptor string) {
	constant := EnumConstant{
		Ordinal: len(m.constants),
		Args:    []EnumArgument{},
	}
	if len(m.acc) > 0 {
		if name, ok := m.acc[0].(string); ok {
			constant.Name = name
		} else {
			log.Debugf("enum constant %d of %s has no literal name", constant.Ordinal, m.class)
		}
	}

	readMap := m.readMaps[ctorDescriptor]
	for i := 2; i < len(m.acc); i++ {
		constant.Args = append(constant.Args, EnumArgument{Name: readMap.Arg(i), Value: m.acc[i]})
	}

	m.constants = append(m.constants, constant)
	m.acc = m.acc[:0]
	m.state = stateIdle
}

// ownsClass accepts the enum itself and its constant body classes.
func (m *EnumMachine) ownsClass(name string) bool {
	return name == m.class || strings.HasPrefix(name, m.class+"$")
}

// ReconstructEnum recovers the constants of an enum class from its static
// initializer, and the extra constructor parameters every constant carries.
func ReconstructEnum(cf *classfile.ClassFile) ([]EnumConstant, []EnumField) {
	cp := cf.ConstantPool

	readMaps := map[string]ReadMap{}
	var fields []EnumField
	for _, ctor := range cf.GetMethods("<init>") {
		desc := ctor.Descriptor(cp)
		readMap := BuildReadMap(cp, ctor)
		readMaps[desc] = readMap
		if fields == nil {
			fields = enumFields(desc, readMap)
		}
	}

	machine := NewEnumMachine(cp, cf.ClassName(), readMaps)
	if clinit := cf.GetMethod("<clinit>", ""); clinit != nil {
		if code := clinit.GetCodeAttribute(); code != nil {
			for _, inst := range code.Instructions {
				machine.Step(inst)
			}
		}
	}
	return machine.Constants(), fields
}

func enumFields(ctorDescriptor string, readMap ReadMap) []EnumField {
	m := descriptor.ParseMethod(ctorDescriptor)
	if m == nil {
		log.Debugf("malformed enum constructor descriptor %q", ctorDescriptor)
		return []EnumField{}
	}
	types := m.ParamNames()
	fields := []EnumField{}
	for i := 2; i < len(types); i++ {
		fields = append(fields, EnumField{Name: readMap.Arg(i), Type: types[i]})
	}
	return fields
}

// sortedLocals resolves local variable entries and orders them by slot. For
// a slot that appears more than once the first entry wins.
func sortedLocals(cp classfile.ConstantPool, entries []classfile.LocalVariableEntry) []Variable {
	seen := make(map[uint16]bool, len(entries))
	vars := make([]Variable, 0, len(entries))
	for _, e := range entries {
		if seen[e.Index] {
			continue
		}
		seen[e.Index] = true
		vars = append(vars, Variable{
			Name: cp.GetUtf8(e.NameIndex),
			Type: descriptor.Name(cp.GetUtf8(e.DescriptorIndex)),
			Slot: e.Index,
		})
	}
	sort.SliceStable(vars, func(i, j int) bool { return vars[i].Slot < vars[j].Slot })
	return vars
}
