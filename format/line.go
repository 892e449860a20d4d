package format

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dhamidi/classinfo/classinfo"
)

// LineEncoder writes one tab separated record per line, first column the
// record kind. "-" stands for an empty column.
type LineEncoder struct {
	w    io.Writer
	desc *classinfo.ClassDescriptor
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(desc *classinfo.ClassDescriptor) error {
	e.desc = desc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	d := e.desc

	fmt.Fprintf(&sb, "%s\t%s\t%s\n", e.classKind(), d.FullyQualifiedName, list(d.ClassInfo.ACC))
	if d.SuperClass != "" {
		fmt.Fprintf(&sb, "extends\t%s\n", d.SuperClass)
	}
	for _, iface := range d.InterfaceName {
		fmt.Fprintf(&sb, "implements\t%s\n", iface)
	}
	for _, dep := range d.DependClass {
		fmt.Fprintf(&sb, "depends\t%s\n", dep)
	}
	writeAnnotations(&sb, "class", d.ClassInfo.Annotations)

	for _, f := range d.FieldsInfo {
		constant := "-"
		if f.ConstantValue != nil {
			constant = fmt.Sprint(f.ConstantValue)
		}
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n", f.FieldName, f.Type, list(f.ACC), constant)
		writeAnnotations(&sb, f.FieldName, f.Annotations)
	}

	for _, m := range d.MethodsInfo {
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\n",
			m.MethodName,
			m.ReturnType,
			parameters(m),
			list(m.ACC),
		)
		writeAnnotations(&sb, m.MethodName, m.Annotations)
		for _, ex := range m.Exception {
			fmt.Fprintf(&sb, "throws\t%s\t%s\n", m.MethodName, ex)
		}
	}

	for _, c := range d.EnumInfos {
		args := make([]string, len(c.Args))
		for i, a := range c.Args {
			args[i] = fmt.Sprintf("%s=%v", a.Name, a.Value)
		}
		fmt.Fprintf(&sb, "constant\t%d\t%s\t%s\n", c.Ordinal, c.Name, list(args))
	}

	return []byte(sb.String()), nil
}

func (e *LineEncoder) classKind() string {
	d := e.desc
	switch {
	case d.IsEnum():
		return "enum"
	case contains(d.ClassInfo.ACC, "annotation"):
		return "annotation"
	default:
		return "class"
	}
}

// parameters renders "type name" pairs when parameter names are known.
func parameters(m classinfo.MethodInfo) string {
	if len(m.ParamTypes) == 0 {
		return "-"
	}
	var named []classinfo.Variable
	if m.LocalVariableTable != nil {
		named = m.LocalVariableTable.Parameters
	}
	parts := make([]string, len(m.ParamTypes))
	for i, t := range m.ParamTypes {
		parts[i] = t
		if i < len(named) && named[i].Name != "" {
			parts[i] += " " + named[i].Name
		}
	}
	return strings.Join(parts, ",")
}

func writeAnnotations(sb *strings.Builder, owner string, annotations classinfo.Annotations) {
	names := make([]string, 0, len(annotations))
	for name := range annotations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		values := annotations[name]
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%v", k, values[k])
		}
		fmt.Fprintf(sb, "annotation\t%s\t%s\t%s\n", owner, name, list(pairs))
	}
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
