package classinfo

// Annotations maps an annotation type name to its element values. Values
// are typed literals (int32, int64, float32, float64, bool, string), enum
// constants rendered as "Type.NAME", class names, nested Annotations or
// []any for arrays.
type Annotations map[string]map[string]any

// ClassDescriptor is the structured description of one class file.
type ClassDescriptor struct {
	Package            string         `json:"package" yaml:"package"`
	FullyQualifiedName string         `json:"fullyQualifiedName" yaml:"fullyQualifiedName"`
	SuperClass         string         `json:"superClass,omitempty" yaml:"superClass,omitempty"`
	InterfaceName      []string       `json:"interfaceName" yaml:"interfaceName"`
	DependClass        []string       `json:"dependClass" yaml:"dependClass"`
	ClassInfo          ClassInfo      `json:"classInfo" yaml:"classInfo"`
	MethodsInfo        []MethodInfo   `json:"methodsInfo" yaml:"methodsInfo"`
	FieldsInfo         []FieldInfo    `json:"fieldsInfo" yaml:"fieldsInfo"`
	EnumFieldsInfo     []EnumField    `json:"enumFieldsInfo,omitempty" yaml:"enumFieldsInfo,omitempty"`
	EnumInfos          []EnumConstant `json:"enumInfos,omitempty" yaml:"enumInfos,omitempty"`
}

// IsEnum reports whether enum constants were reconstructed.
func (c *ClassDescriptor) IsEnum() bool { return c.EnumInfos != nil }

type ClassInfo struct {
	ACC         []string    `json:"ACC" yaml:"ACC"`
	Annotations Annotations `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	// Signature is the generic class signature rendered as source, e.g.
	// "<T extends java.lang.Object> extends java.util.AbstractList<java.lang.Object>".
	Signature  string `json:"Signature,omitempty" yaml:"Signature,omitempty"`
	SourceFile string `json:"SourceFile,omitempty" yaml:"SourceFile,omitempty"`
	Major      uint16 `json:"majorVersion" yaml:"majorVersion"`
	Minor      uint16 `json:"minorVersion" yaml:"minorVersion"`
}

type MethodInfo struct {
	MethodName           string              `json:"methodName" yaml:"methodName"`
	ParamTypes           []string            `json:"paramTypes" yaml:"paramTypes"`
	ReturnType           string              `json:"returnType" yaml:"returnType"`
	ACC                  []string            `json:"ACC" yaml:"ACC"`
	Annotations          Annotations         `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	ParameterAnnotations []Annotations       `json:"parameterAnnotations,omitempty" yaml:"parameterAnnotations,omitempty"`
	Exception            []string            `json:"exception,omitempty" yaml:"exception,omitempty"`
	ParamDetailTypes     *MethodSignature    `json:"paramDetailTypes,omitempty" yaml:"paramDetailTypes,omitempty"`
	LineNumberTable      []LineNumber        `json:"LineNumberTable,omitempty" yaml:"LineNumberTable,omitempty"`
	Entries              []Frame             `json:"entries,omitempty" yaml:"entries,omitempty"`
	LocalVariableTable   *LocalVariableTable `json:"LocalVariableTable,omitempty" yaml:"LocalVariableTable,omitempty"`
	Enum                 []EnumConstant      `json:"enum,omitempty" yaml:"enum,omitempty"`
	Codes                []string            `json:"codes,omitempty" yaml:"codes,omitempty"`
}

// MethodSignature is a parsed generic method Signature attribute.
type MethodSignature struct {
	TypeParameters []string `json:"typeParameters,omitempty" yaml:"typeParameters,omitempty"`
	ParamTypes     []string `json:"paramTypes" yaml:"paramTypes"`
	ReturnType     string   `json:"returnType" yaml:"returnType"`
	Throws         []string `json:"throws,omitempty" yaml:"throws,omitempty"`
}

type LineNumber struct {
	StartPC uint16 `json:"startPc" yaml:"startPc"`
	Line    uint16 `json:"line" yaml:"line"`
}

// Frame is one StackMapTable entry.
type Frame struct {
	Kind        string `json:"kind" yaml:"kind"`
	OffsetDelta uint16 `json:"offsetDelta" yaml:"offsetDelta"`
}

type LocalVariableTable struct {
	Variable   []Variable `json:"variable" yaml:"variable"`
	Parameters []Variable `json:"parameters" yaml:"parameters"`
}

type Variable struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Slot uint16 `json:"slot" yaml:"slot"`
}

type FieldInfo struct {
	FieldName     string      `json:"fieldName" yaml:"fieldName"`
	Type          string      `json:"type" yaml:"type"`
	ACC           []string    `json:"ACC" yaml:"ACC"`
	ConstantValue any         `json:"ConstantValue,omitempty" yaml:"ConstantValue,omitempty"`
	Annotations   Annotations `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// EnumField is an extra constructor parameter of an enum, the per-constant
// data every EnumConstant carries.
type EnumField struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type EnumConstant struct {
	Ordinal int            `json:"ordinal" yaml:"ordinal"`
	Name    string         `json:"name" yaml:"name"`
	Args    []EnumArgument `json:"args" yaml:"args"`
}

// Values returns the argument values in constructor order.
func (c EnumConstant) Values() []any {
	values := make([]any, len(c.Args))
	for i, a := range c.Args {
		values[i] = a.Value
	}
	return values
}

type EnumArgument struct {
	Name string `json:"name" yaml:"name"`
	// Value is an int32, int64, float32, float64, string, classfile.ClassRef
	// or nil.
	Value any `json:"value" yaml:"value"`
}
