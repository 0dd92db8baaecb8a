// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTripAttribute(t *testing.T, a Attribute) Attribute {
	t.Helper()
	pool := newPool()
	raw := unresolveAttribute(a, pool)

	got, err := resolveAttribute(raw, pool)
	require.NoError(t, err)
	return got
}

func TestConstantValueAttrRoundTrip(t *testing.T) {
	a := Attribute{Value: ConstantValueAttr{Value: ConstantValue{Tag: TagInteger, Int: 42}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestConstantValueAttrStringRoundTrip(t *testing.T) {
	a := Attribute{Value: ConstantValueAttr{Value: ConstantValue{Tag: TagString, String: "hello"}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestSourceFileAttrRoundTrip(t *testing.T) {
	a := Attribute{Value: SourceFileAttr{Name: "Widget.java"}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestSyntheticAndDeprecatedRoundTrip(t *testing.T) {
	require.Equal(t, Attribute{Value: SyntheticAttr{}}, roundTripAttribute(t, Attribute{Value: SyntheticAttr{}}))
	require.Equal(t, Attribute{Value: DeprecatedAttr{}}, roundTripAttribute(t, Attribute{Value: DeprecatedAttr{}}))
}

func TestSignatureAttrRoundTrip(t *testing.T) {
	a := Attribute{Value: SignatureAttr{Signature: "Ljava/util/List<Ljava/lang/String;>;"}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestLineNumberTableAttrRoundTrip(t *testing.T) {
	a := Attribute{Value: LineNumberTableAttr{Entries: []LineNumberEntry{
		{StartPC: 0, LineNumber: 10},
		{StartPC: 4, LineNumber: 11},
	}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestLocalVariableTableAttrRoundTrip(t *testing.T) {
	a := Attribute{Value: LocalVariableTableAttr{Entries: []LocalVariableEntry{
		{StartPC: 0, Length: 8, Name: "this", Descriptor: "Lcom/example/Widget;", Index: 0},
	}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestMethodParametersAttrRoundTrip(t *testing.T) {
	name := "count"
	a := Attribute{Value: MethodParametersAttr{Parameters: []MethodParameterEntry{
		{Name: &name, Flags: DecodeFlags(ScopeMethodParameter, AccFinal)},
		{Name: nil, Flags: DecodeFlags(ScopeMethodParameter, 0)},
	}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestExceptionsAttrRoundTrip(t *testing.T) {
	a := Attribute{Value: ExceptionsAttr{Exceptions: []string{"java/io/IOException"}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestInnerClassesAttrRoundTrip(t *testing.T) {
	outer := "com/example/Widget"
	innerName := "Inner"
	a := Attribute{Value: InnerClassesAttr{Classes: []InnerClassEntry{
		{
			InnerClass:      "com/example/Widget$Inner",
			OuterClass:      &outer,
			InnerName:       &innerName,
			InnerAccessFlag: DecodeFlags(ScopeClass, AccPublic|AccStatic),
		},
	}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestEnclosingMethodAttrRoundTrip(t *testing.T) {
	nat := NameAndType{Name: "run", Descriptor: "()V"}
	a := Attribute{Value: EnclosingMethodAttr{Class: "com/example/Widget", Method: &nat}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestEnclosingMethodAttrNilMethodRoundTrip(t *testing.T) {
	a := Attribute{Value: EnclosingMethodAttr{Class: "com/example/Widget", Method: nil}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestBootstrapMethodsAttrRoundTrip(t *testing.T) {
	a := Attribute{Value: BootstrapMethodsAttr{Methods: []BootstrapMethodEntry{
		{
			Handle: MethodHandle{
				ReferenceKind:  6, // REF_invokeStatic
				ReferenceClass: "com/example/Bootstrap",
				ReferenceName:  "make",
				ReferenceDesc:  "()Ljava/lang/Object;",
			},
			Arguments: []ConstantValue{
				{Tag: TagString, String: "arg"},
				{Tag: TagInteger, Int: 7},
			},
		},
	}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestBootstrapMethodsAttrRoundTripFieldHandle(t *testing.T) {
	a := Attribute{Value: BootstrapMethodsAttr{Methods: []BootstrapMethodEntry{
		{
			Handle: MethodHandle{
				ReferenceKind:  1, // REF_getField
				ReferenceClass: "com/example/Widget",
				ReferenceName:  "count",
				ReferenceDesc:  "I",
			},
		},
	}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestCodeAttrRoundTrip(t *testing.T) {
	a := Attribute{Value: CodeAttr{Code: Code{
		MaxStack:  2,
		MaxLocals: 1,
		Instructions: []Opcode{
			{Tag: 0x2a, Mnemonic: "aload_0"},
			{Tag: 0xb1, Mnemonic: "return"},
		},
		ExceptionTable: nil,
		Attributes: []Attribute{
			{Value: LineNumberTableAttr{Entries: []LineNumberEntry{{StartPC: 0, LineNumber: 5}}}},
		},
	}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestUnknownAttrRoundTrip(t *testing.T) {
	a := Attribute{Value: UnknownAttr{Name: "VendorSpecific", Info: []byte{0x01, 0x02, 0x03}}}
	got := roundTripAttribute(t, a)
	require.Equal(t, a, got)
}

func TestResolveAttributeUnknownName(t *testing.T) {
	pool := newPool()
	nameIdx := pool.PushUtf8("TotallyMadeUp")
	got, err := resolveAttribute(rawAttribute{nameIndex: nameIdx, info: []byte{9, 9}}, pool)
	require.NoError(t, err)
	require.Equal(t, UnknownAttr{Name: "TotallyMadeUp", Info: []byte{9, 9}}, got.Value)
}

func TestAttributeNamePanicsOnUnregisteredType(t *testing.T) {
	require.Panics(t, func() {
		attributeName(struct{ AttributeValue }{})
	})
}
