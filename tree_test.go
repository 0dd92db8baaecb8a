// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassToFromTreeRoundTrip(t *testing.T) {
	super := "java/lang/Object"
	c := &Class{
		Version:     Version{Magic: MagicNumber, Minor: 0, Major: 61},
		AccessFlags: DecodeFlags(ScopeClass, AccPublic|AccSuper),
		ThisClass:   "com/example/Widget",
		SuperClass:  &super,
		Interfaces:  []string{"java/io/Serializable"},
		Fields: []Field{
			{AccessFlags: DecodeFlags(ScopeField, AccPrivate), Name: "count", Descriptor: "I"},
		},
		Methods: []Method{
			{
				AccessFlags: DecodeFlags(ScopeMethod, AccPublic),
				Name:        "run",
				Descriptor:  "()V",
				Attributes: []Attribute{
					{Value: CodeAttr{Code: Code{
						MaxStack:  1,
						MaxLocals: 1,
						Instructions: []Opcode{
							{Tag: 0x2a, Mnemonic: "aload_0"},
							{Tag: 0xb1, Mnemonic: "return"},
						},
					}}},
				},
			},
		},
		Attributes: []Attribute{
			{Value: SourceFileAttr{Name: "Widget.java"}},
		},
		Anomalies: []string{AnoEmptyConstantPool},
	}

	got, err := ClassFromTree(c.ToTree())
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestClassToFromTreeNilSuperclass(t *testing.T) {
	c := &Class{
		Version:     Version{Magic: MagicNumber, Major: 61},
		AccessFlags: DecodeFlags(ScopeClass, AccPublic),
		ThisClass:   "java/lang/Object",
	}
	got, err := ClassFromTree(c.ToTree())
	require.NoError(t, err)
	require.Nil(t, got.SuperClass)
}

func TestOpcodeToFromTreeNoOperand(t *testing.T) {
	op := Opcode{Tag: 0xb1, Mnemonic: "return"}
	got, err := opcodeFromTree(opcodeToTree(op))
	require.NoError(t, err)
	require.Equal(t, op, got)
}

func TestOpcodeToFromTreeWithArgs(t *testing.T) {
	op := Opcode{Tag: 0x10, Mnemonic: "bipush", Ints: []int32{-7}}
	got, err := opcodeFromTree(opcodeToTree(op))
	require.NoError(t, err)
	require.Equal(t, op, got)
}

func TestOpcodeToFromTreeWithClassRef(t *testing.T) {
	op := Opcode{Tag: 0xbb, Mnemonic: "new", Class: &ClassRef{Name: "com/example/Widget"}}
	got, err := opcodeFromTree(opcodeToTree(op))
	require.NoError(t, err)
	require.Equal(t, op, got)
}

func TestOpcodeToFromTreeUnrecognisedMnemonic(t *testing.T) {
	_, err := opcodeFromTree(map[string]Tree{"not_a_real_mnemonic": nil})
	require.Error(t, err)
}

func TestConstantValueToFromTreeAllTags(t *testing.T) {
	cases := []ConstantValue{
		{Tag: TagInteger, Int: 42},
		{Tag: TagLong, Long: 1 << 40},
		{Tag: TagFloat, Float: 1.5},
		{Tag: TagDouble, Double: 2.25},
		{Tag: TagString, String: "hi"},
	}
	for _, cv := range cases {
		got, err := constantValueFromTree(constantValueToTree(cv))
		require.NoError(t, err)
		require.Equal(t, cv, got)
	}
}

func TestAttributeToFromTreeUnknownIsKeyedByName(t *testing.T) {
	a := Attribute{Value: UnknownAttr{Name: "VendorSpecific", Info: []byte{1, 2, 3}}}
	tree := attributeToTree(a)
	m, ok := tree.(map[string]Tree)
	require.True(t, ok)
	_, has := m["VendorSpecific"]
	require.True(t, has)

	got, err := attributeFromTree(tree)
	require.NoError(t, err)
	require.Equal(t, a, got)
}

func TestAttributeFromTreeRejectsMultiKeyObject(t *testing.T) {
	_, err := attributeFromTree(map[string]Tree{"SourceFile": "a.java", "Synthetic": nil})
	require.Error(t, err)
}
