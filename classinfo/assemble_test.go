package classinfo

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/classinfo/classfile"
	"github.com/dhamidi/classinfo/classfile/classfiletest"
)

func TestAssembleEnum(t *testing.T) {
	desc := decode(t, colorEnum())

	assert.Equal(t, "com.acme", desc.Package)
	assert.Equal(t, "com.acme.Color", desc.FullyQualifiedName)
	assert.Equal(t, "java.lang.Enum", desc.SuperClass)
	assert.Equal(t, "Color.java", desc.ClassInfo.SourceFile)
	assert.True(t, desc.IsEnum())

	assert.Equal(t, []string{"<init>", "getCode", "<clinit>"}, methodNames(desc))
	assert.Equal(t, []string{"RED", "BLUE", "code", "label"}, fieldNames(desc))

	require.Len(t, desc.EnumInfos, 2)
	assert.Equal(t, "RED", desc.EnumInfos[0].Name)
	assert.Equal(t, []any{int32(1), "r"}, desc.EnumInfos[0].Values())
	assert.Equal(t, "BLUE", desc.EnumInfos[1].Name)
	assert.Equal(t, 1, desc.EnumInfos[1].Ordinal)
	assert.Equal(t, []any{int32(2), "b"}, desc.EnumInfos[1].Values())
	assert.Equal(t, desc.EnumInfos, findMethod(t, desc, "<clinit>").Enum)
	assert.Len(t, desc.EnumFieldsInfo, 2)

	ctor := findMethod(t, desc, "<init>")
	assert.Equal(t, []string{"int", "java.lang.String"}, ctor.ParamTypes)
	assert.Equal(t, "void", ctor.ReturnType)
	assert.Equal(t, []string{"private"}, ctor.ACC)
	require.NotNil(t, ctor.LocalVariableTable)
	assert.Equal(t, []Variable{
		{Name: "code", Type: "int", Slot: 3},
		{Name: "label", Type: "java.lang.String", Slot: 4},
	}, ctor.LocalVariableTable.Parameters)
	assert.Equal(t, []Variable{
		{Name: "this", Type: "com.acme.Color", Slot: 0},
		{Name: "code", Type: "int", Slot: 3},
		{Name: "label", Type: "java.lang.String", Slot: 4},
	}, ctor.LocalVariableTable.Variable)

	getCode := findMethod(t, desc, "getCode")
	assert.Equal(t, []LineNumber{{StartPC: 0, Line: 12}}, getCode.LineNumberTable)
	assert.Empty(t, getCode.LocalVariableTable.Parameters)
	assert.Nil(t, getCode.Codes)

	red := findField(t, desc, "RED")
	assert.Equal(t, "com.acme.Color", red.Type)
	assert.Equal(t, []string{"public", "static", "final", "enum"}, red.ACC)
}

func TestEnumKeepsDeclaredOverloads(t *testing.T) {
	b := colorEnum()
	ret := asm().Op(classfile.OpAconstNull).Op(op("areturn")).Bytes()
	b.AddMethod(classfile.AccPublic|classfile.AccStatic, "valueOf", "(I)"+colorDesc, b.Code(1, 1, ret))
	b.AddMethod(classfile.AccPublic|classfile.AccStatic, "values", "(I)"+colorArray, b.Code(1, 1, ret))
	b.AddField(classfile.AccPrivate|classfile.AccStatic, "$VALUES", "I")

	desc := decode(t, b)
	assert.Equal(t, []string{"<init>", "getCode", "<clinit>", "valueOf", "values"}, methodNames(desc))
	assert.Equal(t, []string{"int"}, findMethod(t, desc, "valueOf").ParamTypes)
	assert.Equal(t, []string{"RED", "BLUE", "code", "label", "$VALUES"}, fieldNames(desc))
}

func TestEnumConstantBodyIsPlainClass(t *testing.T) {
	b := classfiletest.New("com/acme/Color$1", colorClass).
		SetAccess(classfile.AccFinal | classfile.AccSuper | classfile.AccEnum)
	b.AddMethod(0, "<init>", "(Ljava/lang/String;I)V",
		b.Code(3, 3, asm().Op(classfile.OpReturn).Bytes()))
	b.AddMethod(classfile.AccPublic, "label", "()Ljava/lang/String;",
		b.Code(1, 1, asm().Op(classfile.OpAconstNull).Op(op("areturn")).Bytes()))

	desc := decode(t, b)
	assert.False(t, desc.IsEnum())
	assert.Nil(t, desc.EnumInfos)
	assert.Nil(t, desc.EnumFieldsInfo)
	assert.Equal(t, "com.acme.Color", desc.SuperClass)
	assert.Equal(t, []string{"<init>", "label"}, methodNames(desc))
	assert.Equal(t, []string{"java.lang.String", "int"}, findMethod(t, desc, "<init>").ParamTypes)
}

func TestDependencies(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want []string
	}{
		{"default noise filter", nil, []string{"com.acme.Stable"}},
		{"without filter", []Option{WithoutNoiseFilter()}, []string{"com.acme.Stable", "java.lang.Enum"}},
		{"custom prefixes", []Option{WithNoisePrefixes("com.acme.")}, []string{"java.lang.Enum"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := decode(t, colorEnum(), tt.opts...)
			assert.Equal(t, tt.want, desc.DependClass)
			assert.NotContains(t, desc.DependClass, "com.acme.Color")
			assert.NotContains(t, desc.DependClass, "com.acme.Color[]")
		})
	}
}

func TestDependenciesSortedAndUnique(t *testing.T) {
	b := classfiletest.New("com/acme/Service", "com/acme/Base")
	b.AddInterface("com/acme/Api")
	b.Methodref("org/slf4j/Logger", "info", "(Ljava/lang/String;)V")
	b.Class("java/util/List")
	b.AddAttribute(b.Annotations(true,
		b.Annotation("Lcom/acme/Api;"),
		b.Annotation("Lorg/junit/Tag;"),
	))

	desc := decode(t, b)
	assert.Equal(t, []string{"com.acme.Api", "com.acme.Base", "org.junit.Tag", "org.slf4j.Logger"}, desc.DependClass)
	assert.Equal(t, []string{"com.acme.Api"}, desc.InterfaceName)
}

func TestAnnotations(t *testing.T) {
	b := classfiletest.New("com/acme/Service", "java/lang/Object")
	inner := b.Annotation("Lcom/acme/Inner;", classfiletest.Pair{Name: "id", Value: b.LongValue(7)})
	route := b.Annotation("Lcom/acme/Route;",
		classfiletest.Pair{Name: "path", Value: b.StringValue("/x")},
		classfiletest.Pair{Name: "methods", Value: b.ArrayValue(b.StringValue("GET"), b.StringValue("POST"))},
		classfiletest.Pair{Name: "level", Value: b.EnumValue("Lcom/acme/Level;", "HIGH")},
		classfiletest.Pair{Name: "retries", Value: b.IntValue(3)},
		classfiletest.Pair{Name: "enabled", Value: b.BoolValue(true)},
		classfiletest.Pair{Name: "target", Value: b.ClassValue("Ljava/lang/String;")},
		classfiletest.Pair{Name: "nested", Value: b.AnnotationValue(inner)},
		classfiletest.Pair{Name: "sep", Value: b.CharValue('x')},
	)
	b.AddAttribute(
		b.Annotations(true, route, b.Annotation("Lcom/acme/Marker;")),
		b.Annotations(false, b.Annotation("Lcom/acme/Marker;", classfiletest.Pair{Name: "value", Value: b.IntValue(2)})),
	)

	desc := decode(t, b)
	assert.Equal(t, Annotations{
		"com.acme.Route": {
			"path":    "/x",
			"methods": []any{"GET", "POST"},
			"level":   "com.acme.Level.HIGH",
			"retries": int32(3),
			"enabled": true,
			"target":  "java.lang.String",
			"nested":  Annotations{"com.acme.Inner": {"id": int64(7)}},
			"sep":     "x",
		},
		"com.acme.Marker": {"value": int32(2)},
	}, desc.ClassInfo.Annotations)
	assert.Equal(t, []string{"com.acme.Marker", "com.acme.Route"}, desc.DependClass)
}

func TestAnnotationWithTwoPairs(t *testing.T) {
	b := classfiletest.New("com/acme/Service", "java/lang/Object")
	ann := b.Annotation("Lcom/acme/Cache;",
		classfiletest.Pair{Name: "name", Value: b.StringValue("users")},
		classfiletest.Pair{Name: "ttl", Value: b.IntValue(60)},
	)
	b.AddAttribute(b.Annotations(true, ann))
	cf := parse(t, b)

	got := DecodeAnnotations(cf.ConstantPool, cf.GetAttribute("RuntimeVisibleAnnotations").AsAnnotations().Annotations)
	assert.Equal(t, Annotations{"com.acme.Cache": {"name": "users", "ttl": int32(60)}}, got)
}

func TestMarkerAnnotationHasEmptyValues(t *testing.T) {
	b := classfiletest.New("com/acme/Service", "java/lang/Object")
	b.AddMethod(classfile.AccPublic, "run", "()V", b.Annotations(true, b.Annotation("Ljava/lang/Deprecated;")))

	run := findMethod(t, decode(t, b), "run")
	require.Contains(t, run.Annotations, "java.lang.Deprecated")
	assert.NotNil(t, run.Annotations["java.lang.Deprecated"])
	assert.Empty(t, run.Annotations["java.lang.Deprecated"])
}

func TestParameterAttribution(t *testing.T) {
	b := classfiletest.New("com/acme/Calc", "java/lang/Object").
		SetAccess(classfile.AccPublic | classfile.AccSuper | classfile.AccAbstract)
	ret := asm().Op(classfile.OpReturn).Bytes()

	b.AddMethod(classfile.AccPublic|classfile.AccStatic, "add", "(II)I", b.Code(2, 3, ret,
		b.LocalVariableTable(
			classfiletest.LocalVar{Slot: 2, Name: "sum", Desc: "I"},
			classfiletest.LocalVar{Slot: 0, Name: "a", Desc: "I"},
			classfiletest.LocalVar{Slot: 1, Name: "b", Desc: "I"},
		)))
	b.AddMethod(classfile.AccPublic, "put", "(Ljava/lang/String;J)V", b.Code(3, 5, ret,
		b.LocalVariableTable(
			classfiletest.LocalVar{Slot: 0, Name: "this", Desc: "Lcom/acme/Calc;"},
			classfiletest.LocalVar{Slot: 1, Name: "key", Desc: "Ljava/lang/String;"},
			classfiletest.LocalVar{Slot: 2, Name: "value", Desc: "J"},
			classfiletest.LocalVar{Slot: 4, Name: "tmp", Desc: "I"},
		)))
	b.AddMethod(classfile.AccPublic, "named", "(I)V",
		b.Code(1, 2, ret, b.LocalVariableTable(
			classfiletest.LocalVar{Slot: 0, Name: "this", Desc: "Lcom/acme/Calc;"},
			classfiletest.LocalVar{Slot: 1, Name: "arg", Desc: "I"},
		)),
		b.MethodParameters("count"))
	b.AddMethod(classfile.AccPublic|classfile.AccAbstract, "resize", "(I)V", b.MethodParameters("size"))

	desc := decode(t, b)

	add := findMethod(t, desc, "add")
	assert.Equal(t, []Variable{{"a", "int", 0}, {"b", "int", 1}}, add.LocalVariableTable.Parameters)
	assert.Len(t, add.LocalVariableTable.Variable, 3)
	assert.Equal(t, []string{"public", "static"}, add.ACC)

	put := findMethod(t, desc, "put")
	assert.Equal(t, []Variable{{"key", "java.lang.String", 1}, {"value", "long", 2}}, put.LocalVariableTable.Parameters)

	named := findMethod(t, desc, "named")
	assert.Equal(t, []Variable{{"count", "int", 1}}, named.LocalVariableTable.Parameters)

	resize := findMethod(t, desc, "resize")
	require.NotNil(t, resize.LocalVariableTable)
	assert.Equal(t, []Variable{{"size", "int", 0}}, resize.LocalVariableTable.Parameters)
	assert.Empty(t, resize.LocalVariableTable.Variable)
}

func TestGenericLocals(t *testing.T) {
	b := classfiletest.New("com/acme/Repo", "java/lang/Object")
	b.AddMethod(classfile.AccPublic|classfile.AccStatic, "first", "(Ljava/util/List;)Ljava/lang/Object;",
		b.Code(1, 2, asm().Op(classfile.OpAconstNull).Op(op("areturn")).Bytes(),
			b.LocalVariableTable(
				classfiletest.LocalVar{Slot: 0, Name: "items", Desc: "Ljava/util/List;"},
				classfiletest.LocalVar{Slot: 1, Name: "n", Desc: "I"},
			),
			b.LocalVariableTypeTable(
				classfiletest.LocalVar{Slot: 0, Name: "items", Desc: "Ljava/util/List<Ljava/lang/String;>;"},
			)))

	first := findMethod(t, decode(t, b), "first")
	assert.Equal(t, []string{"java.util.List"}, first.ParamTypes)
	assert.Equal(t, []Variable{
		{"items", "java.util.List<java.lang.String>", 0},
		{"n", "int", 1},
	}, first.LocalVariableTable.Variable)
	assert.Equal(t, []Variable{{"items", "java.util.List<java.lang.String>", 0}}, first.LocalVariableTable.Parameters)
}

func TestMembers(t *testing.T) {
	b := classfiletest.New("com/acme/Repo", "java/lang/Object")
	b.AddField(classfile.AccPublic|classfile.AccStatic|classfile.AccFinal, "MAX", "I", b.ConstantValue(b.Integer(10)))
	b.AddField(classfile.AccPrivate, "names", "Ljava/util/List;", b.Signature("Ljava/util/List<Ljava/lang/String;>;"))
	b.AddMethod(classfile.AccPublic, "first", "(Ljava/util/List;)Ljava/lang/Number;",
		b.Signature("<T:Ljava/lang/Number;>(Ljava/util/List<TT;>;)TT;"),
		b.Exceptions("java/io/IOException"),
		b.ParameterAnnotations(true, [][]byte{b.Annotation("Lcom/acme/NotNull;")}),
	)
	b.AddAttribute(b.Signature("<K:Ljava/lang/Object;>Ljava/lang/Object;Lcom/acme/Store<TK;>;"))

	desc := decode(t, b)

	maxField := findField(t, desc, "MAX")
	assert.Equal(t, "int", maxField.Type)
	assert.Equal(t, int32(10), maxField.ConstantValue)

	names := findField(t, desc, "names")
	assert.Equal(t, "java.util.List<java.lang.String>", names.Type)
	assert.Nil(t, names.ConstantValue)

	first := findMethod(t, desc, "first")
	assert.Equal(t, []string{"java.util.List"}, first.ParamTypes)
	assert.Equal(t, "java.lang.Number", first.ReturnType)
	assert.Equal(t, []string{"java.io.IOException"}, first.Exception)
	assert.Equal(t, &MethodSignature{
		TypeParameters: []string{"T extends java.lang.Number"},
		ParamTypes:     []string{"java.util.List<java.lang.Number>"},
		ReturnType:     "java.lang.Number",
	}, first.ParamDetailTypes)
	assert.Equal(t, []Annotations{{"com.acme.NotNull": {}}}, first.ParameterAnnotations)
	assert.Nil(t, first.LocalVariableTable)

	assert.NotEmpty(t, desc.ClassInfo.Signature)
	assert.Contains(t, desc.DependClass, "com.acme.NotNull")
	assert.Contains(t, desc.DependClass, "java.io.IOException")
	assert.False(t, desc.IsEnum())
}

func TestWithCode(t *testing.T) {
	plain := decode(t, colorEnum())
	assert.Nil(t, findMethod(t, plain, "<clinit>").Codes)

	desc := decode(t, colorEnum(), WithCode())
	codes := findMethod(t, desc, "<clinit>").Codes
	require.NotEmpty(t, codes)
	assert.Equal(t, "0: new com.acme.Color", codes[0])
	assert.Equal(t, "3: dup", codes[1])
	assert.Equal(t, `4: ldc "RED"`, codes[2])
	assert.Equal(t, "6: iconst_0", codes[3])
	assert.Equal(t, "10: invokespecial com.acme.Color.<init> (java.lang.String,int,int,java.lang.String)void", codes[6])
	assert.Equal(t, "13: putstatic com.acme.Color.RED com.acme.Color", codes[7])
	assert.True(t, strings.HasSuffix(codes[len(codes)-1], ": return"))
}

func TestDecodeSources(t *testing.T) {
	data := colorEnum().Bytes()
	fromBytes, err := DecodeBytes(data)
	require.NoError(t, err)

	fromReader, err := DecodeReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, fromBytes, fromReader)

	path := filepath.Join(t.TempDir(), "Color.class")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	fromFile, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, fromBytes, fromFile)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "Missing.class"))
	assert.ErrorContains(t, err, "Missing.class")
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeBytes([]byte{0xCA, 0xFE})
	assert.ErrorIs(t, err, classfile.ErrMalformed)

	_, err = DecodeFile("testdata/does-not-exist.class")
	assert.Error(t, err)
}

func TestUnresolvableReferencesDegrade(t *testing.T) {
	b := classfiletest.New("com/acme/Broken", "java/lang/Object")
	b.AddMethod(classfile.AccPublic, "odd", "not a descriptor")

	desc := decode(t, b)
	odd := findMethod(t, desc, "odd")
	assert.Empty(t, odd.ParamTypes)
	assert.NotEmpty(t, odd.ReturnType)
}
