package classfile_test

import (
	"math"
	"testing"

	"github.com/dhamidi/classinfo/classfile"
	"github.com/dhamidi/classinfo/classfile/classfiletest"
)

func TestResolveAbsentReferences(t *testing.T) {
	b := classfiletest.New("com/acme/Pool", "java/lang/Object")
	str := b.String("hello")
	long := b.Long(7)

	cf, err := classfile.ParseBytes(b.Bytes())
	if err != nil {
		t.Fatalf("Failed to parse class file: %v", err)
	}
	cp := cf.ConstantPool

	tests := []struct {
		name  string
		index uint16
	}{
		{"zero", 0},
		{"one past the end", uint16(len(cp) + 1)},
		{"far out of range", 0xFFFF},
		{"second slot of long", long + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := cp.Resolve(tt.index); !v.IsEmpty() {
				t.Errorf("Resolve(%d) = %+v, want empty", tt.index, v)
			}
		})
	}

	t.Run("tag mismatch", func(t *testing.T) {
		if v := cp.ResolveTag(str, classfile.ConstantClass); !v.IsEmpty() {
			t.Errorf("ResolveTag(String as Class) = %+v, want empty", v)
		}
		if v := cp.ResolveTag(str, classfile.ConstantString); v.Name != "hello" {
			t.Errorf("ResolveTag(String) = %+v", v)
		}
	})
}

func TestResolveEntries(t *testing.T) {
	b := classfiletest.New("com/acme/Pool", "java/lang/Object")
	i := b.Integer(-5)
	f := b.Float(1.5)
	l := b.Long(math.MaxInt64)
	neg := b.Long(-1)
	d := b.Double(-0.25)
	s := b.String("text")
	arr := b.Class("[Lcom/acme/Pool;")
	field := b.Fieldref("com/acme/Pool", "count", "I")
	method := b.Methodref("java/lang/Object", "toString", "()Ljava/lang/String;")
	iface := b.InterfaceMethodref("java/lang/Runnable", "run", "()V")
	nat := b.NameAndType("run", "()V")
	handle := b.MethodHandle(classfile.RefInvokeStatic, method)
	mtype := b.MethodType("(I)V")
	indy := b.InvokeDynamic(0, "makeConcat", "(I)Ljava/lang/String;")
	dyn := b.Entry(classfile.ConstantDynamic, 0, 0, byte(nat>>8), byte(nat))
	mod := b.Entry(classfile.ConstantModule, 0, 1)
	pkg := b.Entry(classfile.ConstantPackage, 0, 1)

	cf, err := classfile.ParseBytes(b.Bytes())
	if err != nil {
		t.Fatalf("Failed to parse class file: %v", err)
	}
	cp := cf.ConstantPool

	t.Run("numbers", func(t *testing.T) {
		cases := []struct {
			index uint16
			name  string
			value any
		}{
			{i, "-5", int32(-5)},
			{f, "1.5", float32(1.5)},
			{l, "9223372036854775807", int64(math.MaxInt64)},
			{neg, "-1", int64(-1)},
			{d, "-0.25", -0.25},
		}
		for _, c := range cases {
			v := cp.Resolve(c.index)
			if v.Name != c.name || v.Value != c.value {
				t.Errorf("Resolve(%d) = %q/%v, want %q/%v", c.index, v.Name, v.Value, c.name, c.value)
			}
		}
	})

	t.Run("string and class", func(t *testing.T) {
		if v := cp.Resolve(s); v.Name != "text" || v.Value != "text" {
			t.Errorf("string = %+v", v)
		}
		v := cp.Resolve(arr)
		if v.Name != "com.acme.Pool[]" {
			t.Errorf("array class = %q", v.Name)
		}
		if ref, ok := v.Value.(classfile.ClassRef); !ok || ref.Name != "com.acme.Pool[]" {
			t.Errorf("array class value = %#v", v.Value)
		}
	})

	t.Run("member references", func(t *testing.T) {
		cases := []struct {
			index             uint16
			tag               classfile.ConstantTag
			class, name, desc string
		}{
			{field, classfile.ConstantFieldref, "com.acme.Pool", "count", "I"},
			{method, classfile.ConstantMethodref, "java.lang.Object", "toString", "()Ljava/lang/String;"},
			{iface, classfile.ConstantInterfaceMethodref, "java.lang.Runnable", "run", "()V"},
		}
		for _, c := range cases {
			v := cp.Resolve(c.index)
			if v.Tag != c.tag || v.Class != c.class || v.Name != c.name || v.Descriptor != c.desc {
				t.Errorf("Resolve(%d) = %+v", c.index, v)
			}
		}
	})

	t.Run("name and type", func(t *testing.T) {
		v := cp.Resolve(nat)
		if v.Name != "run" || v.Descriptor != "()V" || v.Class != "" {
			t.Errorf("NameAndType = %+v", v)
		}
	})

	t.Run("method handle carries only the reference", func(t *testing.T) {
		v := cp.Resolve(handle)
		if v.ReferenceKind != classfile.RefInvokeStatic || v.ReferenceIndex != method {
			t.Errorf("MethodHandle = %+v", v)
		}
		if v.Name != "" || v.Class != "" || v.Descriptor != "" {
			t.Errorf("MethodHandle should not resolve names: %+v", v)
		}
		if v.ReferenceKind.String() != "REF_invokeStatic" {
			t.Errorf("kind = %s", v.ReferenceKind)
		}
	})

	t.Run("method type", func(t *testing.T) {
		if v := cp.Resolve(mtype); v.Descriptor != "(I)V" || v.Name != "" {
			t.Errorf("MethodType = %+v", v)
		}
	})

	t.Run("invokedynamic resolves only the name", func(t *testing.T) {
		v := cp.Resolve(indy)
		if v.Name != "makeConcat" || v.Descriptor != "" || v.Class != "" {
			t.Errorf("InvokeDynamic = %+v", v)
		}
	})

	t.Run("dynamic module package are empty", func(t *testing.T) {
		for _, idx := range []uint16{dyn, mod, pkg} {
			if v := cp.Resolve(idx); !v.IsEmpty() {
				t.Errorf("Resolve(%d) = %+v, want empty", idx, v)
			}
		}
	})

	t.Run("resolution is repeatable", func(t *testing.T) {
		first := cp.Resolve(field)
		second := cp.Resolve(field)
		if first != second {
			t.Errorf("Resolve not idempotent: %+v vs %+v", first, second)
		}
	})
}

func TestResolveBrokenIndirection(t *testing.T) {
	b := classfiletest.New("com/acme/Broken", "java/lang/Object")
	// A String pointing at an Integer and a Fieldref pointing at a Utf8.
	num := b.Integer(3)
	badString := b.Entry(classfile.ConstantString, byte(num>>8), byte(num))
	name := b.Utf8("x")
	badField := b.Entry(classfile.ConstantFieldref, byte(name>>8), byte(name), byte(name>>8), byte(name))

	cf, err := classfile.ParseBytes(b.Bytes())
	if err != nil {
		t.Fatalf("Failed to parse class file: %v", err)
	}
	for _, idx := range []uint16{badString, badField} {
		if v := cf.ConstantPool.Resolve(idx); !v.IsEmpty() {
			t.Errorf("Resolve(%d) = %+v, want empty", idx, v)
		}
	}
}
