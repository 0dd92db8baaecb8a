// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "fmt"

// rawAttribute is the wire shape of attribute_info (JVMS 4.7): a name
// index, a byte length, and exactly that many info bytes. Decoding never
// looks past attribute_length; a known attribute whose decoder doesn't
// consume all of info is a malformed attribute (tolerated: see
// resolveAttribute).
type rawAttribute struct {
	nameIndex uint16
	info      []byte
}

func readRawAttributes(r *Reader) ([]rawAttribute, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	attrs := make([]rawAttribute, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIndex, err := r.U2()
		if err != nil {
			return nil, fmt.Errorf("attribute %d name index: %w", i, err)
		}
		length, err := r.U4()
		if err != nil {
			return nil, fmt.Errorf("attribute %d length: %w", i, err)
		}
		info, err := r.TakeBytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("attribute %d info: %w", i, err)
		}
		attrs = append(attrs, rawAttribute{nameIndex: nameIndex, info: info})
	}
	return attrs, nil
}

func writeRawAttributes(w *Writer, attrs []rawAttribute) {
	w.PutU2(uint16(len(attrs)))
	for _, a := range attrs {
		w.PutU2(a.nameIndex)
		w.PutU4(uint32(len(a.info)))
		w.WriteBytes(a.info)
	}
}

// AttributeValue is implemented by every known attribute payload type, plus
// UnknownAttr for names this codec doesn't recognise. It is the sum-type
// member of Attribute; tree.go renders it as the single-key object
// {"<VariantName>": <payload-or-null>}.
type AttributeValue interface{ isAttributeValue() }

// Attribute is one resolved attribute_info: a dispatch-by-name decode of a
// known attribute, or an opaque passthrough for anything this codec does
// not parse.
type Attribute struct {
	Value AttributeValue
}

type ConstantValueAttr struct{ Value ConstantValue }

func (ConstantValueAttr) isAttributeValue() {}

type CodeAttr struct{ Code Code }

func (CodeAttr) isAttributeValue() {}

type SourceFileAttr struct{ Name string }

func (SourceFileAttr) isAttributeValue() {}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LineNumberTableAttr struct{ Entries []LineNumberEntry }

func (LineNumberTableAttr) isAttributeValue() {}

type LocalVariableEntry struct {
	StartPC    uint16
	Length     uint16
	Name       string
	Descriptor string
	Index      uint16
}

type LocalVariableTableAttr struct{ Entries []LocalVariableEntry }

func (LocalVariableTableAttr) isAttributeValue() {}

type MethodParameterEntry struct {
	Name  *string // nil when name_index is 0, i.e. unnamed/unset
	Flags Flags
}

type MethodParametersAttr struct{ Parameters []MethodParameterEntry }

func (MethodParametersAttr) isAttributeValue() {}

type SyntheticAttr struct{}

func (SyntheticAttr) isAttributeValue() {}

type DeprecatedAttr struct{}

func (DeprecatedAttr) isAttributeValue() {}

// SignatureAttr stores the dereferenced literal signature string, not the
// raw signature_index the source repository keeps: storing an index here
// would be the only attribute in this codec that leaks an unresolved pool
// reference into the resolved tree. See DESIGN.md's open-question log.
type SignatureAttr struct{ Signature string }

func (SignatureAttr) isAttributeValue() {}

// UnknownAttr preserves an unrecognised attribute name and its raw info
// bytes opaquely, so a class carrying tool- or vendor-specific attributes
// still round-trips byte for byte.
type UnknownAttr struct {
	Name string
	Info []byte
}

func (UnknownAttr) isAttributeValue() {}

// ExceptionsAttr is the method's checked-exception list (JVMS 4.7.5).
type ExceptionsAttr struct{ Exceptions []string }

func (ExceptionsAttr) isAttributeValue() {}

type InnerClassEntry struct {
	InnerClass      string
	OuterClass      *string
	InnerName       *string
	InnerAccessFlag Flags
}

// InnerClassesAttr records the nested-class relationships for a class
// (JVMS 4.7.6).
type InnerClassesAttr struct{ Classes []InnerClassEntry }

func (InnerClassesAttr) isAttributeValue() {}

// EnclosingMethodAttr names the method that lexically encloses a local or
// anonymous class (JVMS 4.7.7).
type EnclosingMethodAttr struct {
	Class  string
	Method *NameAndType // nil when method_index is 0
}

func (EnclosingMethodAttr) isAttributeValue() {}

// NameAndType is a resolved (name, descriptor) pair, used wherever a
// NameAndType constant is dereferenced outside of a Fieldref/Methodref
// chain (e.g. EnclosingMethod).
type NameAndType struct {
	Name       string
	Descriptor string
}

type BootstrapMethodEntry struct {
	Handle    MethodHandle
	Arguments []ConstantValue
}

// BootstrapMethodsAttr backs every Dynamic/InvokeDynamic constant-pool
// entry (JVMS 4.7.23). The codec retains it opaquely-typed (fully decoded,
// but not cross-checked against invokedynamic call sites, since
// invokedynamic itself is outside the supported opcode set).
type BootstrapMethodsAttr struct{ Methods []BootstrapMethodEntry }

func (BootstrapMethodsAttr) isAttributeValue() {}

// MethodHandle is the resolved form of a CONSTANT_MethodHandle (JVMS 4.4.8).
type MethodHandle struct {
	ReferenceKind  uint8
	ReferenceClass string
	ReferenceName  string
	ReferenceDesc  string
}

// attributeCodec pairs a decoder and encoder for one known attribute name.
type attributeCodec struct {
	decode func(info []byte, pool *Pool) (AttributeValue, error)
	encode func(v AttributeValue, pool *Pool) []byte
}

var attributeCodecs = map[string]attributeCodec{
	"ConstantValue":      {decodeConstantValueAttr, encodeConstantValueAttr},
	"Code":               {decodeCodeAttr, encodeCodeAttr},
	"SourceFile":         {decodeSourceFileAttr, encodeSourceFileAttr},
	"LineNumberTable":    {decodeLineNumberTableAttr, encodeLineNumberTableAttr},
	"LocalVariableTable": {decodeLocalVariableTableAttr, encodeLocalVariableTableAttr},
	"MethodParameters":   {decodeMethodParametersAttr, encodeMethodParametersAttr},
	"Synthetic":          {decodeSyntheticAttr, encodeSyntheticAttr},
	"Deprecated":         {decodeDeprecatedAttr, encodeDeprecatedAttr},
	"Signature":          {decodeSignatureAttr, encodeSignatureAttr},
	"Exceptions":         {decodeExceptionsAttr, encodeExceptionsAttr},
	"InnerClasses":       {decodeInnerClassesAttr, encodeInnerClassesAttr},
	"EnclosingMethod":    {decodeEnclosingMethodAttr, encodeEnclosingMethodAttr},
	"BootstrapMethods":   {decodeBootstrapMethodsAttr, encodeBootstrapMethodsAttr},
}

func resolveAttribute(raw rawAttribute, pool *Pool) (Attribute, error) {
	name, err := pool.GetUtf8(raw.nameIndex)
	if err != nil {
		return Attribute{}, fmt.Errorf("attribute name: %w", err)
	}

	codec, known := attributeCodecs[name]
	if !known {
		return Attribute{Value: UnknownAttr{Name: name, Info: raw.info}}, nil
	}

	value, err := codec.decode(raw.info, pool)
	if err != nil {
		return Attribute{}, fmt.Errorf("attribute %q: %w", name, err)
	}
	return Attribute{Value: value}, nil
}

func resolveAttributes(raw []rawAttribute, pool *Pool) ([]Attribute, error) {
	return resolveAll(raw, func(a rawAttribute) (Attribute, error) { return resolveAttribute(a, pool) })
}

func unresolveAttribute(a Attribute, pool *Pool) rawAttribute {
	name := attributeName(a.Value)
	nameIndex := pool.PushUtf8(name)

	if unknown, ok := a.Value.(UnknownAttr); ok {
		return rawAttribute{nameIndex: nameIndex, info: unknown.Info}
	}

	codec := attributeCodecs[name]
	return rawAttribute{nameIndex: nameIndex, info: codec.encode(a.Value, pool)}
}

func unresolveAttributes(attrs []Attribute, pool *Pool) []rawAttribute {
	return unresolveAll(attrs, func(a Attribute) rawAttribute { return unresolveAttribute(a, pool) })
}

func attributeName(v AttributeValue) string {
	switch v.(type) {
	case ConstantValueAttr:
		return "ConstantValue"
	case CodeAttr:
		return "Code"
	case SourceFileAttr:
		return "SourceFile"
	case LineNumberTableAttr:
		return "LineNumberTable"
	case LocalVariableTableAttr:
		return "LocalVariableTable"
	case MethodParametersAttr:
		return "MethodParameters"
	case SyntheticAttr:
		return "Synthetic"
	case DeprecatedAttr:
		return "Deprecated"
	case SignatureAttr:
		return "Signature"
	case ExceptionsAttr:
		return "Exceptions"
	case InnerClassesAttr:
		return "InnerClasses"
	case EnclosingMethodAttr:
		return "EnclosingMethod"
	case BootstrapMethodsAttr:
		return "BootstrapMethods"
	case UnknownAttr:
		return v.(UnknownAttr).Name
	default:
		panic(fmt.Sprintf("classfile: unregistered attribute value type %T", v))
	}
}

// --- ConstantValue --------------------------------------------------------

// ConstantValue is the sum of the five constant kinds a field's
// ConstantValue attribute (and a BootstrapMethods argument) may carry. Tag
// identifies which field is populated.
type ConstantValue struct {
	Tag    uint8 // TagInteger, TagLong, TagFloat, TagDouble or TagString
	Int    int32
	Long   int64
	Float  float32
	Double float64
	String string // literal text, not a pool index, for TagString
}

func decodeConstantValueAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	idx, err := r.U2()
	if err != nil {
		return nil, err
	}
	cv, err := pool.getConstantValue(idx)
	if err != nil {
		return nil, err
	}
	return ConstantValueAttr{Value: cv}, nil
}

func encodeConstantValueAttr(v AttributeValue, pool *Pool) []byte {
	cv := v.(ConstantValueAttr).Value
	w := NewWriter()
	w.PutU2(pool.pushConstantValue(cv))
	return w.Bytes()
}

// getConstantValue dereferences index into a typed literal ConstantValue,
// following through to the Utf8 literal for the String case.
func (p *Pool) getConstantValue(index uint16) (ConstantValue, error) {
	c, err := p.at(index)
	if err != nil {
		return ConstantValue{}, err
	}
	switch c.tag {
	case TagInteger:
		return ConstantValue{Tag: TagInteger, Int: c.i32}, nil
	case TagLong:
		return ConstantValue{Tag: TagLong, Long: c.i64}, nil
	case TagFloat:
		return ConstantValue{Tag: TagFloat, Float: c.f32}, nil
	case TagDouble:
		return ConstantValue{Tag: TagDouble, Double: c.f64}, nil
	case TagString:
		s, err := p.GetUtf8(c.nameIndex)
		if err != nil {
			return ConstantValue{}, err
		}
		return ConstantValue{Tag: TagString, String: s}, nil
	default:
		return ConstantValue{}, &WrongTagError{Index: index, Expected: "a ConstantValue", Found: tagName(c.tag)}
	}
}

func (p *Pool) pushConstantValue(cv ConstantValue) uint16 {
	switch cv.Tag {
	case TagInteger:
		return p.PushInteger(cv.Int)
	case TagLong:
		return p.PushLong(cv.Long)
	case TagFloat:
		return p.PushFloat(cv.Float)
	case TagDouble:
		return p.PushDouble(cv.Double)
	case TagString:
		return p.PushString(cv.String)
	default:
		panic(fmt.Sprintf("classfile: invalid ConstantValue tag %d", cv.Tag))
	}
}

// --- Code ------------------------------------------------------------------

func decodeCodeAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	maxStack, err := r.U2()
	if err != nil {
		return nil, err
	}
	maxLocals, err := r.U2()
	if err != nil {
		return nil, err
	}
	codeLength, err := r.U4()
	if err != nil {
		return nil, err
	}
	codeBytes, err := r.TakeBytes(int(codeLength))
	if err != nil {
		return nil, err
	}
	instructions, err := decodeOpcodes(codeBytes, pool)
	if err != nil {
		return nil, fmt.Errorf("code body: %w", err)
	}

	excCount, err := r.U2()
	if err != nil {
		return nil, err
	}
	var excTable []ExceptionTableEntry
	for i := uint16(0); i < excCount; i++ {
		startPC, err := r.U2()
		if err != nil {
			return nil, err
		}
		endPC, err := r.U2()
		if err != nil {
			return nil, err
		}
		handlerPC, err := r.U2()
		if err != nil {
			return nil, err
		}
		catchTypeIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		var catchType *string
		if catchTypeIdx != 0 {
			s, err := pool.GetClassName(catchTypeIdx)
			if err != nil {
				return nil, err
			}
			catchType = &s
		}
		excTable = append(excTable, ExceptionTableEntry{
			StartPC: startPC, EndPC: endPC, HandlerPC: handlerPC, CatchType: catchType,
		})
	}

	rawAttrs, err := readRawAttributes(r)
	if err != nil {
		return nil, fmt.Errorf("code attributes: %w", err)
	}
	attrs, err := resolveAttributes(rawAttrs, pool)
	if err != nil {
		return nil, fmt.Errorf("code attributes: %w", err)
	}

	return CodeAttr{Code: Code{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Instructions:   instructions,
		ExceptionTable: excTable,
		Attributes:     attrs,
	}}, nil
}

func encodeCodeAttr(v AttributeValue, pool *Pool) []byte {
	code := v.(CodeAttr).Code

	codeBody := NewWriter()
	encodeOpcodes(codeBody, code.Instructions, pool)

	w := NewWriter()
	w.PutU2(code.MaxStack)
	w.PutU2(code.MaxLocals)
	w.PutU4(uint32(codeBody.Len()))
	w.WriteBytes(codeBody.Bytes())

	w.PutU2(uint16(len(code.ExceptionTable)))
	for _, e := range code.ExceptionTable {
		w.PutU2(e.StartPC)
		w.PutU2(e.EndPC)
		w.PutU2(e.HandlerPC)
		var catchIdx uint16
		if e.CatchType != nil {
			catchIdx = pool.PushClass(*e.CatchType)
		}
		w.PutU2(catchIdx)
	}

	rawAttrs := unresolveAttributes(code.Attributes, pool)
	writeRawAttributes(w, rawAttrs)

	return w.Bytes()
}

// --- SourceFile / Synthetic / Deprecated / Signature ----------------------

func decodeSourceFileAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	idx, err := r.U2()
	if err != nil {
		return nil, err
	}
	name, err := pool.GetUtf8(idx)
	if err != nil {
		return nil, err
	}
	return SourceFileAttr{Name: name}, nil
}

func encodeSourceFileAttr(v AttributeValue, pool *Pool) []byte {
	w := NewWriter()
	w.PutU2(pool.PushUtf8(v.(SourceFileAttr).Name))
	return w.Bytes()
}

func decodeSyntheticAttr(info []byte, pool *Pool) (AttributeValue, error) {
	return SyntheticAttr{}, nil
}

func encodeSyntheticAttr(v AttributeValue, pool *Pool) []byte { return nil }

func decodeDeprecatedAttr(info []byte, pool *Pool) (AttributeValue, error) {
	return DeprecatedAttr{}, nil
}

func encodeDeprecatedAttr(v AttributeValue, pool *Pool) []byte { return nil }

func decodeSignatureAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	idx, err := r.U2()
	if err != nil {
		return nil, err
	}
	sig, err := pool.GetUtf8(idx)
	if err != nil {
		return nil, err
	}
	return SignatureAttr{Signature: sig}, nil
}

func encodeSignatureAttr(v AttributeValue, pool *Pool) []byte {
	w := NewWriter()
	w.PutU2(pool.PushUtf8(v.(SignatureAttr).Signature))
	return w.Bytes()
}

// --- LineNumberTable / LocalVariableTable ---------------------------------

func decodeLineNumberTableAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	entries := make([]LineNumberEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := r.U2()
		if err != nil {
			return nil, err
		}
		line, err := r.U2()
		if err != nil {
			return nil, err
		}
		entries = append(entries, LineNumberEntry{StartPC: startPC, LineNumber: line})
	}
	return LineNumberTableAttr{Entries: entries}, nil
}

func encodeLineNumberTableAttr(v AttributeValue, pool *Pool) []byte {
	entries := v.(LineNumberTableAttr).Entries
	w := NewWriter()
	w.PutU2(uint16(len(entries)))
	for _, e := range entries {
		w.PutU2(e.StartPC)
		w.PutU2(e.LineNumber)
	}
	return w.Bytes()
}

func decodeLocalVariableTableAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	entries := make([]LocalVariableEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := r.U2()
		if err != nil {
			return nil, err
		}
		length, err := r.U2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		index, err := r.U2()
		if err != nil {
			return nil, err
		}
		name, err := pool.GetUtf8(nameIdx)
		if err != nil {
			return nil, err
		}
		descriptor, err := pool.GetUtf8(descIdx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LocalVariableEntry{
			StartPC: startPC, Length: length, Name: name, Descriptor: descriptor, Index: index,
		})
	}
	return LocalVariableTableAttr{Entries: entries}, nil
}

func encodeLocalVariableTableAttr(v AttributeValue, pool *Pool) []byte {
	entries := v.(LocalVariableTableAttr).Entries
	w := NewWriter()
	w.PutU2(uint16(len(entries)))
	for _, e := range entries {
		w.PutU2(e.StartPC)
		w.PutU2(e.Length)
		w.PutU2(pool.PushUtf8(e.Name))
		w.PutU2(pool.PushUtf8(e.Descriptor))
		w.PutU2(e.Index)
	}
	return w.Bytes()
}

// --- MethodParameters ------------------------------------------------------

func decodeMethodParametersAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	count, err := r.U1()
	if err != nil {
		return nil, err
	}
	params := make([]MethodParameterEntry, 0, count)
	for i := uint8(0); i < count; i++ {
		nameIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		flagsRaw, err := r.U2()
		if err != nil {
			return nil, err
		}
		var name *string
		if nameIdx != 0 {
			s, err := pool.GetUtf8(nameIdx)
			if err != nil {
				return nil, err
			}
			name = &s
		}
		params = append(params, MethodParameterEntry{
			Name:  name,
			Flags: DecodeFlags(ScopeMethodParameter, flagsRaw),
		})
	}
	return MethodParametersAttr{Parameters: params}, nil
}

func encodeMethodParametersAttr(v AttributeValue, pool *Pool) []byte {
	params := v.(MethodParametersAttr).Parameters
	w := NewWriter()
	w.PutU1(uint8(len(params)))
	for _, p := range params {
		var nameIdx uint16
		if p.Name != nil {
			nameIdx = pool.PushUtf8(*p.Name)
		}
		w.PutU2(nameIdx)
		w.PutU2(p.Flags.Encode())
	}
	return w.Bytes()
}

// --- Exceptions / InnerClasses / EnclosingMethod --------------------------

func decodeExceptionsAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := uint16(0); i < count; i++ {
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		name, err := pool.GetClassName(idx)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return ExceptionsAttr{Exceptions: names}, nil
}

func encodeExceptionsAttr(v AttributeValue, pool *Pool) []byte {
	names := v.(ExceptionsAttr).Exceptions
	w := NewWriter()
	w.PutU2(uint16(len(names)))
	for _, n := range names {
		w.PutU2(pool.PushClass(n))
	}
	return w.Bytes()
}

func decodeInnerClassesAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	classes := make([]InnerClassEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		innerIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		outerIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		innerNameIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		flagsRaw, err := r.U2()
		if err != nil {
			return nil, err
		}
		inner, err := pool.GetClassName(innerIdx)
		if err != nil {
			return nil, err
		}
		var outer, innerName *string
		if outerIdx != 0 {
			s, err := pool.GetClassName(outerIdx)
			if err != nil {
				return nil, err
			}
			outer = &s
		}
		if innerNameIdx != 0 {
			s, err := pool.GetUtf8(innerNameIdx)
			if err != nil {
				return nil, err
			}
			innerName = &s
		}
		classes = append(classes, InnerClassEntry{
			InnerClass: inner, OuterClass: outer, InnerName: innerName,
			InnerAccessFlag: DecodeFlags(ScopeClass, flagsRaw),
		})
	}
	return InnerClassesAttr{Classes: classes}, nil
}

func encodeInnerClassesAttr(v AttributeValue, pool *Pool) []byte {
	classes := v.(InnerClassesAttr).Classes
	w := NewWriter()
	w.PutU2(uint16(len(classes)))
	for _, c := range classes {
		w.PutU2(pool.PushClass(c.InnerClass))
		var outerIdx uint16
		if c.OuterClass != nil {
			outerIdx = pool.PushClass(*c.OuterClass)
		}
		w.PutU2(outerIdx)
		var innerNameIdx uint16
		if c.InnerName != nil {
			innerNameIdx = pool.PushUtf8(*c.InnerName)
		}
		w.PutU2(innerNameIdx)
		w.PutU2(c.InnerAccessFlag.Encode())
	}
	return w.Bytes()
}

func decodeEnclosingMethodAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	classIdx, err := r.U2()
	if err != nil {
		return nil, err
	}
	methodIdx, err := r.U2()
	if err != nil {
		return nil, err
	}
	class, err := pool.GetClassName(classIdx)
	if err != nil {
		return nil, err
	}
	var method *NameAndType
	if methodIdx != 0 {
		name, descriptor, err := pool.GetNameAndType(methodIdx)
		if err != nil {
			return nil, err
		}
		method = &NameAndType{Name: name, Descriptor: descriptor}
	}
	return EnclosingMethodAttr{Class: class, Method: method}, nil
}

func encodeEnclosingMethodAttr(v AttributeValue, pool *Pool) []byte {
	e := v.(EnclosingMethodAttr)
	w := NewWriter()
	w.PutU2(pool.PushClass(e.Class))
	var methodIdx uint16
	if e.Method != nil {
		methodIdx = pool.PushNameAndType(e.Method.Name, e.Method.Descriptor)
	}
	w.PutU2(methodIdx)
	return w.Bytes()
}

// --- BootstrapMethods ------------------------------------------------------

func decodeBootstrapMethodsAttr(info []byte, pool *Pool) (AttributeValue, error) {
	r := NewReader(info)
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	methods := make([]BootstrapMethodEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		handleIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		handle, err := pool.getMethodHandle(handleIdx)
		if err != nil {
			return nil, err
		}
		argCount, err := r.U2()
		if err != nil {
			return nil, err
		}
		var args []ConstantValue
		for j := uint16(0); j < argCount; j++ {
			argIdx, err := r.U2()
			if err != nil {
				return nil, err
			}
			cv, err := pool.getConstantValue(argIdx)
			if err != nil {
				return nil, err
			}
			args = append(args, cv)
		}
		methods = append(methods, BootstrapMethodEntry{Handle: handle, Arguments: args})
	}
	return BootstrapMethodsAttr{Methods: methods}, nil
}

func encodeBootstrapMethodsAttr(v AttributeValue, pool *Pool) []byte {
	methods := v.(BootstrapMethodsAttr).Methods
	w := NewWriter()
	w.PutU2(uint16(len(methods)))
	for _, m := range methods {
		w.PutU2(pool.pushMethodHandle(m.Handle))
		w.PutU2(uint16(len(m.Arguments)))
		for _, a := range m.Arguments {
			w.PutU2(pool.pushConstantValue(a))
		}
	}
	return w.Bytes()
}

func (p *Pool) getMethodHandle(index uint16) (MethodHandle, error) {
	c, err := p.at(index)
	if err != nil {
		return MethodHandle{}, err
	}
	if c.tag != TagMethodHandle {
		return MethodHandle{}, &WrongTagError{Index: index, Expected: "MethodHandle", Found: tagName(c.tag)}
	}
	refConst, err := p.at(c.refIndex)
	if err != nil {
		return MethodHandle{}, err
	}
	var class, name, descriptor string
	switch refConst.tag {
	case TagFieldref:
		class, name, descriptor, err = p.refTarget(c.refIndex, TagFieldref, "Fieldref")
	case TagMethodref:
		class, name, descriptor, err = p.refTarget(c.refIndex, TagMethodref, "Methodref")
	case TagInterfaceMethodref:
		class, name, descriptor, err = p.refTarget(c.refIndex, TagInterfaceMethodref, "InterfaceMethodref")
	default:
		return MethodHandle{}, &WrongTagError{Index: c.refIndex, Expected: "a method handle referent", Found: tagName(refConst.tag)}
	}
	if err != nil {
		return MethodHandle{}, err
	}
	return MethodHandle{ReferenceKind: c.refKind, ReferenceClass: class, ReferenceName: name, ReferenceDesc: descriptor}, nil
}

func (p *Pool) pushMethodHandle(h MethodHandle) uint16 {
	var refIdx uint16
	switch {
	case h.ReferenceKind >= 1 && h.ReferenceKind <= 4:
		refIdx = p.PushFieldref(h.ReferenceClass, h.ReferenceName, h.ReferenceDesc)
	case h.ReferenceKind == 9:
		refIdx = p.PushInterfaceMethodref(h.ReferenceClass, h.ReferenceName, h.ReferenceDesc)
	default:
		refIdx = p.PushMethodref(h.ReferenceClass, h.ReferenceName, h.ReferenceDesc)
	}
	return p.push(&constant{tag: TagMethodHandle, refKind: h.ReferenceKind, refIndex: refIdx})
}
