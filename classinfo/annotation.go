package classinfo

import (
	"github.com/dhamidi/classinfo/classfile"
	"github.com/dhamidi/classinfo/descriptor"
)

// DecodeAnnotations resolves annotations into a map keyed by annotation
// type name. A later annotation of the same type replaces an earlier one.
func DecodeAnnotations(cp classfile.ConstantPool, annotations []classfile.Annotation) Annotations {
	if len(annotations) == 0 {
		return nil
	}
	result := make(Annotations, len(annotations))
	for _, a := range annotations {
		name, values := decodeAnnotation(cp, a)
		result[name] = values
	}
	return result
}

func decodeAnnotation(cp classfile.ConstantPool, a classfile.Annotation) (string, map[string]any) {
	typeName := descriptor.Name(cp.GetUtf8(a.TypeIndex))
	values := make(map[string]any, len(a.ElementValuePairs))
	for _, pair := range a.ElementValuePairs {
		values[cp.GetUtf8(pair.ElementNameIndex)] = decodeElementValue(cp, pair.Value)
	}
	return typeName, values
}

func decodeElementValue(cp classfile.ConstantPool, v classfile.ElementValue) any {
	switch v.Tag {
	case 'B', 'S', 'I', 'J', 'F', 'D':
		value, _ := cp.Literal(v.ConstIndex)
		return value

	case 'Z':
		value, _ := cp.Literal(v.ConstIndex)
		i, _ := value.(int32)
		return i != 0

	case 'C':
		value, _ := cp.Literal(v.ConstIndex)
		i, _ := value.(int32)
		return string(rune(i))

	case 's':
		return cp.GetUtf8(v.ConstIndex)

	case 'e':
		if v.Enum == nil {
			return nil
		}
		return descriptor.Name(cp.GetUtf8(v.Enum.TypeNameIndex)) + "." + cp.GetUtf8(v.Enum.ConstNameIndex)

	case 'c':
		return descriptor.Name(cp.GetUtf8(v.ConstIndex))

	case '@':
		if v.Annotation == nil {
			return nil
		}
		name, values := decodeAnnotation(cp, *v.Annotation)
		return Annotations{name: values}

	case '[':
		items := make([]any, len(v.Array))
		for i, item := range v.Array {
			items[i] = decodeElementValue(cp, item)
		}
		return items
	}

	log.Debugf("unknown element value tag %q", v.Tag)
	return nil
}

// annotationsOf merges the visible and invisible annotations of an
// attribute list.
func annotationsOf(cp classfile.ConstantPool, attrs []classfile.AttributeInfo) (Annotations, []string) {
	var all []classfile.Annotation
	for _, name := range []string{"RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations"} {
		for i := range attrs {
			if attrs[i].Name == name {
				if parsed := attrs[i].AsAnnotations(); parsed != nil {
					all = append(all, parsed.Annotations...)
				}
			}
		}
	}
	return DecodeAnnotations(cp, all), annotationTypes(cp, all)
}

// parameterAnnotationsOf returns one Annotations per parameter, or nil when
// no parameter is annotated.
func parameterAnnotationsOf(cp classfile.ConstantPool, attrs []classfile.AttributeInfo) ([]Annotations, []string) {
	var perParam [][]classfile.Annotation
	for _, name := range []string{"RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations"} {
		for i := range attrs {
			if attrs[i].Name != name {
				continue
			}
			parsed := attrs[i].AsParameterAnnotations()
			if parsed == nil {
				continue
			}
			for p, anns := range parsed.ParameterAnnotations {
				for len(perParam) <= p {
					perParam = append(perParam, nil)
				}
				perParam[p] = append(perParam[p], anns...)
			}
		}
	}

	var (
		result    []Annotations
		types     []string
		annotated bool
	)
	for _, anns := range perParam {
		decoded := DecodeAnnotations(cp, anns)
		if decoded != nil {
			annotated = true
		}
		result = append(result, decoded)
		types = append(types, annotationTypes(cp, anns)...)
	}
	if !annotated {
		return nil, nil
	}
	return result, types
}

func annotationTypes(cp classfile.ConstantPool, annotations []classfile.Annotation) []string {
	names := make([]string, 0, len(annotations))
	for _, a := range annotations {
		names = append(names, descriptor.Name(cp.GetUtf8(a.TypeIndex)))
	}
	return names
}
