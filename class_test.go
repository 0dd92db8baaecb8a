// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func minimalClass() *Class {
	super := "java/lang/Object"
	return &Class{
		Version:     Version{Magic: MagicNumber, Minor: 0, Major: 61},
		AccessFlags: DecodeFlags(ScopeClass, AccPublic|AccSuper),
		ThisClass:   "com/example/Widget",
		SuperClass:  &super,
		Interfaces:  []string{"java/io/Serializable"},
		Fields: []Field{
			{
				AccessFlags: DecodeFlags(ScopeField, AccPrivate),
				Name:        "count",
				Descriptor:  "I",
			},
		},
		Methods: []Method{
			{
				AccessFlags: DecodeFlags(ScopeMethod, AccPublic),
				Name:        "<init>",
				Descriptor:  "()V",
			},
		},
		Attributes: []Attribute{
			{Value: SourceFileAttr{Name: "Widget.java"}},
		},
	}
}

func TestParseTooSmall(t *testing.T) {
	_, err := Parse([]byte{0xCA, 0xFE, 0xBA, 0xBE}, nil)
	require.ErrorIs(t, err, ErrTooSmall)
}

func TestParseBadMagic(t *testing.T) {
	data := make([]byte, minClassFileSize)
	_, err := Parse(data, nil)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestWriteParseRoundTrip(t *testing.T) {
	c := minimalClass()
	data := Write(c)

	got, err := Parse(data, nil)
	require.NoError(t, err)

	require.Equal(t, c.Version, got.Version)
	require.Equal(t, c.AccessFlags.Encode(), got.AccessFlags.Encode())
	require.Equal(t, c.ThisClass, got.ThisClass)
	require.Equal(t, *c.SuperClass, *got.SuperClass)
	require.Equal(t, c.Interfaces, got.Interfaces)
	require.Equal(t, c.Fields, got.Fields)
	require.Equal(t, c.Methods, got.Methods)
	require.Equal(t, c.Attributes, got.Attributes)
	require.Empty(t, got.Anomalies)
}

func TestParseObjectHasNoSuperclassAnomaly(t *testing.T) {
	c := &Class{
		Version:     Version{Magic: MagicNumber, Major: 61},
		AccessFlags: DecodeFlags(ScopeClass, AccPublic),
		ThisClass:   "java/lang/Object",
	}
	got, err := Parse(Write(c), nil)
	require.NoError(t, err)
	require.Nil(t, got.SuperClass)
	require.NotContains(t, got.Anomalies, AnoMissingSuperclass)
}

func TestParseMissingSuperclassAnomaly(t *testing.T) {
	c := &Class{
		Version:     Version{Magic: MagicNumber, Major: 61},
		AccessFlags: DecodeFlags(ScopeClass, AccPublic),
		ThisClass:   "com/example/Orphan",
	}
	got, err := Parse(Write(c), nil)
	require.NoError(t, err)
	require.Contains(t, got.Anomalies, AnoMissingSuperclass)
}
