// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "fmt"

// rawMember is the wire shape shared by field_info and method_info (JVMS
// 4.5 / 4.6): access_flags, name_index, descriptor_index, then an
// attribute_count-prefixed attribute list. The two structures are
// byte-identical; only the attributes that are meaningful in each scope
// differ, which attribute.go's name dispatch already handles uniformly.
type rawMember struct {
	accessFlags uint16
	nameIndex   uint16
	descIndex   uint16
	attributes  []rawAttribute
}

// Field is the resolved field_info: access flags plus literal name and
// descriptor strings, plus its attribute list (most commonly
// ConstantValue, Synthetic, Deprecated, Signature).
type Field struct {
	AccessFlags Flags
	Name        string
	Descriptor  string
	Attributes  []Attribute
}

// Method is the resolved method_info. Code is the most important attribute
// here but is not special-cased on this type — like any other attribute, a
// method's bytecode body lives in its Attributes slice as an Attribute
// carrying a Code payload.
type Method struct {
	AccessFlags Flags
	Name        string
	Descriptor  string
	Attributes  []Attribute
}

func readRawMember(r *Reader) (rawMember, error) {
	var m rawMember
	var err error
	if m.accessFlags, err = r.U2(); err != nil {
		return m, err
	}
	if m.nameIndex, err = r.U2(); err != nil {
		return m, err
	}
	if m.descIndex, err = r.U2(); err != nil {
		return m, err
	}
	m.attributes, err = readRawAttributes(r)
	return m, err
}

func (m rawMember) write(w *Writer) {
	w.PutU2(m.accessFlags)
	w.PutU2(m.nameIndex)
	w.PutU2(m.descIndex)
	writeRawAttributes(w, m.attributes)
}

func (m rawMember) resolve(scope Scope, pool *Pool) (name, descriptor string, flags Flags, attrs []Attribute, err error) {
	flags = DecodeFlags(scope, m.accessFlags)
	name, err = pool.GetUtf8(m.nameIndex)
	if err != nil {
		return "", "", Flags{}, nil, fmt.Errorf("member name: %w", err)
	}
	descriptor, err = pool.GetUtf8(m.descIndex)
	if err != nil {
		return "", "", Flags{}, nil, fmt.Errorf("member descriptor: %w", err)
	}
	attrs, err = resolveAttributes(m.attributes, pool)
	if err != nil {
		return "", "", Flags{}, nil, fmt.Errorf("member attributes: %w", err)
	}
	return name, descriptor, flags, attrs, nil
}

func resolveField(raw rawMember, pool *Pool) (Field, error) {
	name, descriptor, flags, attrs, err := raw.resolve(ScopeField, pool)
	if err != nil {
		return Field{}, err
	}
	return Field{AccessFlags: flags, Name: name, Descriptor: descriptor, Attributes: attrs}, nil
}

func resolveMethod(raw rawMember, pool *Pool) (Method, error) {
	name, descriptor, flags, attrs, err := raw.resolve(ScopeMethod, pool)
	if err != nil {
		return Method{}, err
	}
	return Method{AccessFlags: flags, Name: name, Descriptor: descriptor, Attributes: attrs}, nil
}

func unresolveField(f Field, pool *Pool) rawMember {
	return rawMember{
		accessFlags: f.AccessFlags.Encode(),
		nameIndex:   pool.PushUtf8(f.Name),
		descIndex:   pool.PushUtf8(f.Descriptor),
		attributes:  unresolveAttributes(f.Attributes, pool),
	}
}

func unresolveMethod(m Method, pool *Pool) rawMember {
	return rawMember{
		accessFlags: m.AccessFlags.Encode(),
		nameIndex:   pool.PushUtf8(m.Name),
		descIndex:   pool.PushUtf8(m.Descriptor),
		attributes:  unresolveAttributes(m.Attributes, pool),
	}
}

func readRawMembers(r *Reader) ([]rawMember, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	members := make([]rawMember, 0, count)
	for i := uint16(0); i < count; i++ {
		m, err := readRawMember(r)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		members = append(members, m)
	}
	return members, nil
}

func writeRawMembers(w *Writer, members []rawMember) {
	w.PutU2(uint16(len(members)))
	for _, m := range members {
		m.write(w)
	}
}
