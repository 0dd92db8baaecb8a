// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveUnresolveFieldRoundTrip(t *testing.T) {
	f := Field{
		AccessFlags: DecodeFlags(ScopeField, AccPrivate|AccFinal),
		Name:        "count",
		Descriptor:  "I",
		Attributes: []Attribute{
			{Value: ConstantValueAttr{Value: ConstantValue{Tag: TagInteger, Int: 0}}},
		},
	}

	pool := newPool()
	raw := unresolveField(f, pool)
	got, err := resolveField(raw, pool)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestResolveUnresolveMethodRoundTrip(t *testing.T) {
	m := Method{
		AccessFlags: DecodeFlags(ScopeMethod, AccPublic|AccStatic),
		Name:        "main",
		Descriptor:  "([Ljava/lang/String;)V",
	}

	pool := newPool()
	raw := unresolveMethod(m, pool)
	got, err := resolveMethod(raw, pool)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestReadWriteRawMembersRoundTrip(t *testing.T) {
	pool := newPool()
	members := []rawMember{
		unresolveField(Field{Name: "a", Descriptor: "I"}, pool),
		unresolveField(Field{Name: "b", Descriptor: "J"}, pool),
	}

	w := NewWriter()
	writeRawMembers(w, members)

	r := NewReader(w.Bytes())
	got, err := readRawMembers(r)
	require.NoError(t, err)
	require.Equal(t, members, got)
	require.True(t, r.IsEmpty())
}

func TestReadRawMembersEmpty(t *testing.T) {
	w := NewWriter()
	writeRawMembers(w, nil)

	r := NewReader(w.Bytes())
	got, err := readRawMembers(r)
	require.NoError(t, err)
	require.Empty(t, got)
}
