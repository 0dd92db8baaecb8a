// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// minClassFileSize is the smallest a legal class file header can be: magic
// (4) + minor (2) + major (2) + constant_pool_count (2).
const minClassFileSize = 10

// Class is the fully resolved top-level structure of a .class file (JVMS
// 4.1). The constant pool that produced it is not retained: every string
// and reference here is already dereferenced into a literal value.
type Class struct {
	Version     Version
	AccessFlags Flags
	ThisClass   string
	SuperClass  *string
	Interfaces  []string
	Fields      []Field
	Methods     []Method
	Attributes  []Attribute
	Anomalies   []string
}

// Options configures Open and Parse.
type Options struct {
	// Logger receives structured Warn/Debug records for non-fatal parse
	// anomalies. Defaults to a stderr logger filtered to Error if nil.
	Logger Logger
}

// Open memory-maps path and parses it as a class file. The map is released
// before Open returns; the resolved Class retains no reference to the
// backing file, mirroring the teacher's pe.New except that there is no
// persistent handle to keep open afterwards.
func Open(path string, opts *Options) (*Class, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer data.Unmap()

	return Parse(data, opts)
}

// Parse decodes a complete class file per the read order fixed by JVMS 4.1:
// version, constant pool, access flags, this_class, super_class, interfaces,
// fields, methods, attributes.
func Parse(data []byte, opts *Options) (*Class, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := newDiagLogger(opts.Logger)

	if len(data) < minClassFileSize {
		return nil, ErrTooSmall
	}

	r := NewReader(data)

	version, err := readVersion(r)
	if err != nil {
		return nil, err
	}

	pool, err := readPool(r)
	if err != nil {
		return nil, err
	}

	rawAccessFlags, err := r.U2()
	if err != nil {
		return nil, err
	}
	accessFlags := DecodeFlags(ScopeClass, rawAccessFlags)

	thisClassIdx, err := r.U2()
	if err != nil {
		return nil, err
	}
	thisClass, err := pool.GetClassName(thisClassIdx)
	if err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}

	superClassIdx, err := r.U2()
	if err != nil {
		return nil, err
	}
	var superClass *string
	if superClassIdx != 0 {
		name, err := pool.GetClassName(superClassIdx)
		if err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
		superClass = &name
	}

	interfaceCount, err := r.U2()
	if err != nil {
		return nil, err
	}
	interfaces := make([]string, 0, interfaceCount)
	for i := uint16(0); i < interfaceCount; i++ {
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		name, err := pool.GetClassName(idx)
		if err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}
		interfaces = append(interfaces, name)
	}

	rawFields, err := readRawMembers(r)
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	fields, err := resolveAll(rawFields, func(m rawMember) (Field, error) { return resolveField(m, pool) })
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}

	rawMethods, err := readRawMembers(r)
	if err != nil {
		return nil, fmt.Errorf("methods: %w", err)
	}
	methods, err := resolveAll(rawMethods, func(m rawMember) (Method, error) { return resolveMethod(m, pool) })
	if err != nil {
		return nil, fmt.Errorf("methods: %w", err)
	}

	rawAttrs, err := readRawAttributes(r)
	if err != nil {
		return nil, fmt.Errorf("class attributes: %w", err)
	}
	attrs, err := resolveAttributes(rawAttrs, pool)
	if err != nil {
		return nil, fmt.Errorf("class attributes: %w", err)
	}

	c := &Class{
		Version:     version,
		AccessFlags: accessFlags,
		ThisClass:   thisClass,
		SuperClass:  superClass,
		Interfaces:  interfaces,
		Fields:      fields,
		Methods:     methods,
		Attributes:  attrs,
	}
	c.collectAnomalies(rawAccessFlags, pool.Len())
	for _, a := range c.Anomalies {
		logger.Warnf("classfile: %s: %s", c.ThisClass, a)
	}
	return c, nil
}

// Write serialises c back to wire bytes. Per the write order fixed by JVMS
// 4.1, every entity is interned into a fresh pool before anything is
// emitted, so the pool is already complete by the time its own bytes are
// written — the tail is buffered and appended after the pool.
func Write(c *Class) []byte {
	pool := newPool()

	thisClassIdx := pool.PushClass(c.ThisClass)
	var superClassIdx uint16
	if c.SuperClass != nil {
		superClassIdx = pool.PushClass(*c.SuperClass)
	}
	interfaceIdxs := make([]uint16, len(c.Interfaces))
	for i, name := range c.Interfaces {
		interfaceIdxs[i] = pool.PushClass(name)
	}

	rawFields := unresolveAll(c.Fields, func(f Field) rawMember { return unresolveField(f, pool) })
	rawMethods := unresolveAll(c.Methods, func(m Method) rawMember { return unresolveMethod(m, pool) })
	rawAttrs := unresolveAttributes(c.Attributes, pool)

	tail := NewWriter()
	tail.PutU2(c.AccessFlags.Encode())
	tail.PutU2(thisClassIdx)
	tail.PutU2(superClassIdx)
	tail.PutU2(uint16(len(interfaceIdxs)))
	for _, idx := range interfaceIdxs {
		tail.PutU2(idx)
	}
	writeRawMembers(tail, rawFields)
	writeRawMembers(tail, rawMethods)
	writeRawAttributes(tail, rawAttrs)

	w := NewWriter()
	c.Version.write(w)
	pool.write(w)
	w.WriteBytes(tail.Bytes())
	return w.Bytes()
}
