// Package descriptor parses JVM type descriptors and generic signatures into
// structured types.
//
// The parser never fails: input that matches no production is returned as a
// Class whose name is the input with '/' replaced by '.'.
package descriptor

import "strings"

// ObjectClass is the implicit bound of an unbounded type variable.
const ObjectClass = "java.lang.Object"

// EnumClass is the superclass of every enum type.
const EnumClass = "java.lang.Enum"

// Type is a parsed descriptor or signature.
type Type interface {
	// String renders the type the way Java source names it, e.g.
	// "java.util.List<java.lang.String>[]".
	String() string
	// Descriptor renders the type back into JVM form.
	Descriptor() string
	isType()
}

type Primitive struct {
	Name string
}

type Array struct {
	Elem Type
}

type Class struct {
	Name string
}

// Generic is a parameterised class. When the base name ends in "Map" and the
// instantiation has exactly two arguments, Key and Value are set instead of
// Args.
type Generic struct {
	Owner Type
	Base  string
	Args  []Type
	Key   Type
	Value Type
}

// TypeVariable is a reference to a declared type parameter. Bound is the
// declared bound, or java.lang.Object when the declaration is not in scope.
type TypeVariable struct {
	Name  string
	Bound Type
}

// WildcardKind is the bound direction of a wildcard type argument.
type WildcardKind byte

const (
	WildcardAny     WildcardKind = '*'
	WildcardExtends WildcardKind = '+'
	WildcardSuper   WildcardKind = '-'
)

type Wildcard struct {
	Kind  WildcardKind
	Bound Type
}

// Method is a method descriptor or generic method signature.
type Method struct {
	TypeParams []TypeVariable
	Params     []Type
	Return     Type
	Throws     []Type
}

// ClassSignature is the Signature attribute of a generic class.
type ClassSignature struct {
	TypeParams []TypeVariable
	Super      Type
	Interfaces []Type
}

func (Primitive) isType()      {}
func (Array) isType()          {}
func (Class) isType()          {}
func (Generic) isType()        {}
func (TypeVariable) isType()   {}
func (Wildcard) isType()       {}
func (Method) isType()         {}
func (ClassSignature) isType() {}

var primitives = map[byte]string{
	'Z': "boolean",
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'V': "void",
}

var primitiveCodes = func() map[string]byte {
	codes := make(map[string]byte, len(primitives))
	for code, name := range primitives {
		codes[name] = code
	}
	return codes
}()

// Void is the return type of methods that return nothing.
var Void = Primitive{Name: "void"}

func (p Primitive) String() string { return p.Name }

func (p Primitive) Descriptor() string {
	if code, ok := primitiveCodes[p.Name]; ok {
		return string(code)
	}
	return p.Name
}

// IsVoid reports whether the primitive is the void pseudo-type.
func (p Primitive) IsVoid() bool { return p.Name == "void" }

func (a Array) String() string { return typeString(a.Elem) + "[]" }

func (a Array) Descriptor() string { return "[" + typeDescriptor(a.Elem) }

// Dims returns the number of array dimensions and the innermost element.
func (a Array) Dims() (int, Type) {
	n := 1
	elem := a.Elem
	for {
		inner, ok := elem.(Array)
		if !ok {
			return n, elem
		}
		n++
		elem = inner.Elem
	}
}

func (c Class) String() string { return c.Name }

func (c Class) Descriptor() string { return "L" + InternalName(c.Name) + ";" }

func (g Generic) String() string {
	var sb strings.Builder
	if g.Owner != nil {
		sb.WriteString(g.Owner.String())
		sb.WriteByte('.')
	}
	sb.WriteString(g.Base)
	args := g.Arguments()
	if len(args) == 0 {
		return sb.String()
	}
	sb.WriteByte('<')
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(typeString(arg))
	}
	sb.WriteByte('>')
	return sb.String()
}

func (g Generic) Descriptor() string {
	var sb strings.Builder
	if g.Owner != nil {
		owner := g.Owner.Descriptor()
		sb.WriteString(strings.TrimSuffix(owner, ";"))
		sb.WriteByte('.')
		sb.WriteString(g.Base)
	} else {
		sb.WriteByte('L')
		sb.WriteString(InternalName(g.Base))
	}
	if args := g.Arguments(); len(args) > 0 {
		sb.WriteByte('<')
		for _, arg := range args {
			sb.WriteString(typeDescriptor(arg))
		}
		sb.WriteByte('>')
	}
	sb.WriteByte(';')
	return sb.String()
}

// Arguments returns the type arguments in declaration order, whether they
// were split into a key/value pair or not.
func (g Generic) Arguments() []Type {
	if g.Key != nil || g.Value != nil {
		return []Type{g.Key, g.Value}
	}
	return g.Args
}

// IsKeyValue reports whether the arguments were split into Key and Value.
func (g Generic) IsKeyValue() bool { return g.Key != nil || g.Value != nil }

func (v TypeVariable) String() string {
	if v.Bound == nil {
		return ObjectClass
	}
	return v.Bound.String()
}

func (v TypeVariable) Descriptor() string { return "T" + v.Name + ";" }

func (w Wildcard) String() string {
	switch w.Kind {
	case WildcardExtends:
		return "? extends " + typeString(w.Bound)
	case WildcardSuper:
		return "? super " + typeString(w.Bound)
	}
	return "?"
}

func (w Wildcard) Descriptor() string {
	if w.Kind == WildcardAny || w.Bound == nil {
		return "*"
	}
	return string(w.Kind) + w.Bound.Descriptor()
}

func (m Method) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(strings.Join(m.ParamNames(), ","))
	sb.WriteByte(')')
	sb.WriteString(typeString(m.returnType()))
	return sb.String()
}

func (m Method) Descriptor() string {
	var sb strings.Builder
	writeTypeParams(&sb, m.TypeParams)
	sb.WriteByte('(')
	for _, p := range m.Params {
		sb.WriteString(typeDescriptor(p))
	}
	sb.WriteByte(')')
	sb.WriteString(typeDescriptor(m.returnType()))
	for _, t := range m.Throws {
		sb.WriteByte('^')
		sb.WriteString(typeDescriptor(t))
	}
	return sb.String()
}

// ParamNames renders every parameter with String.
func (m Method) ParamNames() []string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = typeString(p)
	}
	return names
}

// ReturnName renders the return type, "void" when absent.
func (m Method) ReturnName() string { return typeString(m.returnType()) }

func (m Method) returnType() Type {
	if m.Return == nil {
		return Void
	}
	return m.Return
}

func (s ClassSignature) String() string {
	var sb strings.Builder
	if len(s.TypeParams) > 0 {
		sb.WriteByte('<')
		for i, tp := range s.TypeParams {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(tp.Name)
			sb.WriteString(" extends ")
			sb.WriteString(tp.String())
		}
		sb.WriteString("> ")
	}
	sb.WriteString("extends ")
	sb.WriteString(typeString(s.Super))
	if len(s.Interfaces) > 0 {
		sb.WriteString(" implements ")
		for i, iface := range s.Interfaces {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(typeString(iface))
		}
	}
	return sb.String()
}

func (s ClassSignature) Descriptor() string {
	var sb strings.Builder
	writeTypeParams(&sb, s.TypeParams)
	sb.WriteString(typeDescriptor(s.Super))
	for _, iface := range s.Interfaces {
		sb.WriteString(typeDescriptor(iface))
	}
	return sb.String()
}

func writeTypeParams(sb *strings.Builder, params []TypeVariable) {
	if len(params) == 0 {
		return
	}
	sb.WriteByte('<')
	for _, tp := range params {
		sb.WriteString(tp.Name)
		sb.WriteByte(':')
		if tp.Bound != nil {
			sb.WriteString(tp.Bound.Descriptor())
		}
	}
	sb.WriteByte('>')
}

func typeString(t Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func typeDescriptor(t Type) string {
	if t == nil {
		return ""
	}
	return t.Descriptor()
}

// SourceName turns an internal binary name into a dotted name. '$' is kept.
func SourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// InternalName turns a dotted name into an internal binary name.
func InternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
