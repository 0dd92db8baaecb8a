// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"encoding/base64"
	"fmt"
)

// Tree is the neutral, JSON-shaped value every resolved node can convert
// to and from: one of map[string]Tree, []Tree, string, float64, bool or
// nil. encoding/json marshals a Tree directly with no custom MarshalJSON
// methods anywhere in this codec — ToTree/FromTree build the shape, the
// standard library writes the bytes.
type Tree interface{}

// ToTree renders c as a neutral document: version, access flag names,
// this_class/super_class, interfaces, fields, methods, attributes and any
// collected anomalies.
func (c *Class) ToTree() Tree {
	return map[string]Tree{
		"version":      versionToTree(c.Version),
		"access_flags": flagsToTree(c.AccessFlags),
		"this_class":   c.ThisClass,
		"super_class":  stringPtrToTree(c.SuperClass),
		"interfaces":   stringsToTree(c.Interfaces),
		"fields":       membersToTree(c.Fields, fieldToTree),
		"methods":      membersToTree(c.Methods, methodToTree),
		"attributes":   attributesToTree(c.Attributes),
		"anomalies":    stringsToTree(c.Anomalies),
	}
}

// ClassFromTree is ToTree's inverse.
func ClassFromTree(t Tree) (*Class, error) {
	m, err := asMap(t, "class")
	if err != nil {
		return nil, err
	}
	version, err := versionFromTree(m["version"])
	if err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	accessFlags, err := flagsFromTree(ScopeClass, m["access_flags"])
	if err != nil {
		return nil, fmt.Errorf("access_flags: %w", err)
	}
	thisClass, err := asString(m["this_class"], "this_class")
	if err != nil {
		return nil, err
	}
	superClass, err := stringPtrFromTree(m["super_class"])
	if err != nil {
		return nil, fmt.Errorf("super_class: %w", err)
	}
	interfaces, err := stringsFromTree(m["interfaces"])
	if err != nil {
		return nil, fmt.Errorf("interfaces: %w", err)
	}
	fields, err := sliceFromTree(m["fields"], fieldFromTree)
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	methods, err := sliceFromTree(m["methods"], methodFromTree)
	if err != nil {
		return nil, fmt.Errorf("methods: %w", err)
	}
	attrs, err := attributesFromTree(m["attributes"])
	if err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	anomalies, err := stringsFromTree(m["anomalies"])
	if err != nil {
		return nil, fmt.Errorf("anomalies: %w", err)
	}
	return &Class{
		Version:     version,
		AccessFlags: accessFlags,
		ThisClass:   thisClass,
		SuperClass:  superClass,
		Interfaces:  interfaces,
		Fields:      fields,
		Methods:     methods,
		Attributes:  attrs,
		Anomalies:   anomalies,
	}, nil
}

// --- version / flags -------------------------------------------------------

func versionToTree(v Version) Tree {
	return map[string]Tree{
		"magic": float64(v.Magic),
		"minor": float64(v.Minor),
		"major": float64(v.Major),
	}
}

func versionFromTree(t Tree) (Version, error) {
	m, err := asMap(t, "version")
	if err != nil {
		return Version{}, err
	}
	magic, err := asFloat(m["magic"], "magic")
	if err != nil {
		return Version{}, err
	}
	minor, err := asFloat(m["minor"], "minor")
	if err != nil {
		return Version{}, err
	}
	major, err := asFloat(m["major"], "major")
	if err != nil {
		return Version{}, err
	}
	return Version{Magic: uint32(magic), Minor: uint16(minor), Major: uint16(major)}, nil
}

func flagsToTree(f Flags) Tree {
	return stringsToTree(f.Names())
}

func flagsFromTree(scope Scope, t Tree) (Flags, error) {
	names, err := stringsFromTree(t)
	if err != nil {
		return Flags{}, err
	}
	return flagsFromNames(scope, names), nil
}

// --- members (fields / methods share one shape) -----------------------------

func fieldToTree(f Field) Tree {
	return map[string]Tree{
		"access_flags": flagsToTree(f.AccessFlags),
		"name":         f.Name,
		"descriptor":   f.Descriptor,
		"attributes":   attributesToTree(f.Attributes),
	}
}

func fieldFromTree(t Tree) (Field, error) {
	m, err := asMap(t, "field")
	if err != nil {
		return Field{}, err
	}
	flags, err := flagsFromTree(ScopeField, m["access_flags"])
	if err != nil {
		return Field{}, err
	}
	name, err := asString(m["name"], "name")
	if err != nil {
		return Field{}, err
	}
	descriptor, err := asString(m["descriptor"], "descriptor")
	if err != nil {
		return Field{}, err
	}
	attrs, err := attributesFromTree(m["attributes"])
	if err != nil {
		return Field{}, err
	}
	return Field{AccessFlags: flags, Name: name, Descriptor: descriptor, Attributes: attrs}, nil
}

func methodToTree(m Method) Tree {
	return map[string]Tree{
		"access_flags": flagsToTree(m.AccessFlags),
		"name":         m.Name,
		"descriptor":   m.Descriptor,
		"attributes":   attributesToTree(m.Attributes),
	}
}

func methodFromTree(t Tree) (Method, error) {
	m, err := asMap(t, "method")
	if err != nil {
		return Method{}, err
	}
	flags, err := flagsFromTree(ScopeMethod, m["access_flags"])
	if err != nil {
		return Method{}, err
	}
	name, err := asString(m["name"], "name")
	if err != nil {
		return Method{}, err
	}
	descriptor, err := asString(m["descriptor"], "descriptor")
	if err != nil {
		return Method{}, err
	}
	attrs, err := attributesFromTree(m["attributes"])
	if err != nil {
		return Method{}, err
	}
	return Method{AccessFlags: flags, Name: name, Descriptor: descriptor, Attributes: attrs}, nil
}

func membersToTree[T any](members []T, toTree func(T) Tree) Tree {
	out := make([]Tree, len(members))
	for i, m := range members {
		out[i] = toTree(m)
	}
	return out
}

func sliceFromTree[T any](t Tree, fromTree func(Tree) (T, error)) ([]T, error) {
	if t == nil {
		return nil, nil
	}
	s, err := asSlice(t, "slice")
	if err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(s))
	for i, item := range s {
		v, err := fromTree(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// --- attributes (sum type, single-key object) -------------------------------

func attributesToTree(attrs []Attribute) Tree {
	out := make([]Tree, len(attrs))
	for i, a := range attrs {
		out[i] = attributeToTree(a)
	}
	return out
}

func attributesFromTree(t Tree) ([]Attribute, error) {
	return sliceFromTree(t, attributeFromTree)
}

func attributeToTree(a Attribute) Tree {
	switch v := a.Value.(type) {
	case ConstantValueAttr:
		return map[string]Tree{"ConstantValue": constantValueToTree(v.Value)}
	case CodeAttr:
		return map[string]Tree{"Code": codeToTree(v.Code)}
	case SourceFileAttr:
		return map[string]Tree{"SourceFile": v.Name}
	case LineNumberTableAttr:
		entries := make([]Tree, len(v.Entries))
		for i, e := range v.Entries {
			entries[i] = map[string]Tree{
				"start_pc":    float64(e.StartPC),
				"line_number": float64(e.LineNumber),
			}
		}
		return map[string]Tree{"LineNumberTable": entries}
	case LocalVariableTableAttr:
		entries := make([]Tree, len(v.Entries))
		for i, e := range v.Entries {
			entries[i] = map[string]Tree{
				"start_pc":   float64(e.StartPC),
				"length":     float64(e.Length),
				"name":       e.Name,
				"descriptor": e.Descriptor,
				"index":      float64(e.Index),
			}
		}
		return map[string]Tree{"LocalVariableTable": entries}
	case MethodParametersAttr:
		params := make([]Tree, len(v.Parameters))
		for i, p := range v.Parameters {
			params[i] = map[string]Tree{
				"name":  stringPtrToTree(p.Name),
				"flags": flagsToTree(p.Flags),
			}
		}
		return map[string]Tree{"MethodParameters": params}
	case SyntheticAttr:
		return map[string]Tree{"Synthetic": nil}
	case DeprecatedAttr:
		return map[string]Tree{"Deprecated": nil}
	case SignatureAttr:
		return map[string]Tree{"Signature": v.Signature}
	case ExceptionsAttr:
		return map[string]Tree{"Exceptions": stringsToTree(v.Exceptions)}
	case InnerClassesAttr:
		classes := make([]Tree, len(v.Classes))
		for i, ic := range v.Classes {
			classes[i] = map[string]Tree{
				"inner_class":       ic.InnerClass,
				"outer_class":       stringPtrToTree(ic.OuterClass),
				"inner_name":        stringPtrToTree(ic.InnerName),
				"inner_access_flag": flagsToTree(ic.InnerAccessFlag),
			}
		}
		return map[string]Tree{"InnerClasses": classes}
	case EnclosingMethodAttr:
		var method Tree
		if v.Method != nil {
			method = nameAndTypeToTree(*v.Method)
		}
		return map[string]Tree{"EnclosingMethod": map[string]Tree{
			"class":  v.Class,
			"method": method,
		}}
	case BootstrapMethodsAttr:
		methods := make([]Tree, len(v.Methods))
		for i, bm := range v.Methods {
			args := make([]Tree, len(bm.Arguments))
			for j, arg := range bm.Arguments {
				args[j] = constantValueToTree(arg)
			}
			methods[i] = map[string]Tree{
				"handle":    methodHandleToTree(bm.Handle),
				"arguments": args,
			}
		}
		return map[string]Tree{"BootstrapMethods": methods}
	case UnknownAttr:
		return map[string]Tree{v.Name: base64.StdEncoding.EncodeToString(v.Info)}
	default:
		panic(fmt.Sprintf("classfile: unregistered attribute value type %T", v))
	}
}

func attributeFromTree(t Tree) (Attribute, error) {
	m, err := asMap(t, "attribute")
	if err != nil {
		return Attribute{}, err
	}
	if len(m) != 1 {
		return Attribute{}, fmt.Errorf("attribute: expected exactly one variant key, got %d", len(m))
	}
	var name string
	var payload Tree
	for k, v := range m {
		name, payload = k, v
	}

	switch name {
	case "ConstantValue":
		cv, err := constantValueFromTree(payload)
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: ConstantValueAttr{Value: cv}}, nil
	case "Code":
		code, err := codeFromTree(payload)
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: CodeAttr{Code: code}}, nil
	case "SourceFile":
		s, err := asString(payload, "SourceFile")
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: SourceFileAttr{Name: s}}, nil
	case "LineNumberTable":
		entries, err := sliceFromTree(payload, func(t Tree) (LineNumberEntry, error) {
			m, err := asMap(t, "LineNumberTable entry")
			if err != nil {
				return LineNumberEntry{}, err
			}
			startPC, err := asFloat(m["start_pc"], "start_pc")
			if err != nil {
				return LineNumberEntry{}, err
			}
			lineNumber, err := asFloat(m["line_number"], "line_number")
			if err != nil {
				return LineNumberEntry{}, err
			}
			return LineNumberEntry{StartPC: uint16(startPC), LineNumber: uint16(lineNumber)}, nil
		})
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: LineNumberTableAttr{Entries: entries}}, nil
	case "LocalVariableTable":
		entries, err := sliceFromTree(payload, func(t Tree) (LocalVariableEntry, error) {
			m, err := asMap(t, "LocalVariableTable entry")
			if err != nil {
				return LocalVariableEntry{}, err
			}
			startPC, err := asFloat(m["start_pc"], "start_pc")
			if err != nil {
				return LocalVariableEntry{}, err
			}
			length, err := asFloat(m["length"], "length")
			if err != nil {
				return LocalVariableEntry{}, err
			}
			name, err := asString(m["name"], "name")
			if err != nil {
				return LocalVariableEntry{}, err
			}
			descriptor, err := asString(m["descriptor"], "descriptor")
			if err != nil {
				return LocalVariableEntry{}, err
			}
			index, err := asFloat(m["index"], "index")
			if err != nil {
				return LocalVariableEntry{}, err
			}
			return LocalVariableEntry{
				StartPC: uint16(startPC), Length: uint16(length),
				Name: name, Descriptor: descriptor, Index: uint16(index),
			}, nil
		})
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: LocalVariableTableAttr{Entries: entries}}, nil
	case "MethodParameters":
		params, err := sliceFromTree(payload, func(t Tree) (MethodParameterEntry, error) {
			m, err := asMap(t, "MethodParameters entry")
			if err != nil {
				return MethodParameterEntry{}, err
			}
			namePtr, err := stringPtrFromTree(m["name"])
			if err != nil {
				return MethodParameterEntry{}, err
			}
			flags, err := flagsFromTree(ScopeMethodParameter, m["flags"])
			if err != nil {
				return MethodParameterEntry{}, err
			}
			return MethodParameterEntry{Name: namePtr, Flags: flags}, nil
		})
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: MethodParametersAttr{Parameters: params}}, nil
	case "Synthetic":
		return Attribute{Value: SyntheticAttr{}}, nil
	case "Deprecated":
		return Attribute{Value: DeprecatedAttr{}}, nil
	case "Signature":
		s, err := asString(payload, "Signature")
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: SignatureAttr{Signature: s}}, nil
	case "Exceptions":
		exceptions, err := stringsFromTree(payload)
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: ExceptionsAttr{Exceptions: exceptions}}, nil
	case "InnerClasses":
		classes, err := sliceFromTree(payload, func(t Tree) (InnerClassEntry, error) {
			m, err := asMap(t, "InnerClasses entry")
			if err != nil {
				return InnerClassEntry{}, err
			}
			inner, err := asString(m["inner_class"], "inner_class")
			if err != nil {
				return InnerClassEntry{}, err
			}
			outer, err := stringPtrFromTree(m["outer_class"])
			if err != nil {
				return InnerClassEntry{}, err
			}
			innerName, err := stringPtrFromTree(m["inner_name"])
			if err != nil {
				return InnerClassEntry{}, err
			}
			flags, err := flagsFromTree(ScopeClass, m["inner_access_flag"])
			if err != nil {
				return InnerClassEntry{}, err
			}
			return InnerClassEntry{
				InnerClass: inner, OuterClass: outer, InnerName: innerName, InnerAccessFlag: flags,
			}, nil
		})
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: InnerClassesAttr{Classes: classes}}, nil
	case "EnclosingMethod":
		m, err := asMap(payload, "EnclosingMethod")
		if err != nil {
			return Attribute{}, err
		}
		class, err := asString(m["class"], "class")
		if err != nil {
			return Attribute{}, err
		}
		var method *NameAndType
		if m["method"] != nil {
			nt, err := nameAndTypeFromTree(m["method"])
			if err != nil {
				return Attribute{}, err
			}
			method = &nt
		}
		return Attribute{Value: EnclosingMethodAttr{Class: class, Method: method}}, nil
	case "BootstrapMethods":
		methods, err := sliceFromTree(payload, func(t Tree) (BootstrapMethodEntry, error) {
			m, err := asMap(t, "BootstrapMethods entry")
			if err != nil {
				return BootstrapMethodEntry{}, err
			}
			handle, err := methodHandleFromTree(m["handle"])
			if err != nil {
				return BootstrapMethodEntry{}, err
			}
			args, err := sliceFromTree(m["arguments"], constantValueFromTree)
			if err != nil {
				return BootstrapMethodEntry{}, err
			}
			return BootstrapMethodEntry{Handle: handle, Arguments: args}, nil
		})
		if err != nil {
			return Attribute{}, err
		}
		return Attribute{Value: BootstrapMethodsAttr{Methods: methods}}, nil
	default:
		s, err := asString(payload, name)
		if err != nil {
			return Attribute{}, fmt.Errorf("unknown attribute %q: %w", name, err)
		}
		info, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return Attribute{}, fmt.Errorf("unknown attribute %q: %w", name, err)
		}
		return Attribute{Value: UnknownAttr{Name: name, Info: info}}, nil
	}
}

// --- Code / opcodes ---------------------------------------------------------

func codeToTree(c Code) Tree {
	excs := make([]Tree, len(c.ExceptionTable))
	for i, e := range c.ExceptionTable {
		excs[i] = map[string]Tree{
			"start_pc":   float64(e.StartPC),
			"end_pc":     float64(e.EndPC),
			"handler_pc": float64(e.HandlerPC),
			"catch_type": stringPtrToTree(e.CatchType),
		}
	}
	instrs := make([]Tree, len(c.Instructions))
	for i, op := range c.Instructions {
		instrs[i] = opcodeToTree(op)
	}
	return map[string]Tree{
		"max_stack":       float64(c.MaxStack),
		"max_locals":      float64(c.MaxLocals),
		"instructions":    instrs,
		"exception_table": excs,
		"attributes":      attributesToTree(c.Attributes),
	}
}

func codeFromTree(t Tree) (Code, error) {
	m, err := asMap(t, "Code")
	if err != nil {
		return Code{}, err
	}
	maxStack, err := asFloat(m["max_stack"], "max_stack")
	if err != nil {
		return Code{}, err
	}
	maxLocals, err := asFloat(m["max_locals"], "max_locals")
	if err != nil {
		return Code{}, err
	}
	instructions, err := sliceFromTree(m["instructions"], opcodeFromTree)
	if err != nil {
		return Code{}, fmt.Errorf("instructions: %w", err)
	}
	excTable, err := sliceFromTree(m["exception_table"], func(t Tree) (ExceptionTableEntry, error) {
		m, err := asMap(t, "exception_table entry")
		if err != nil {
			return ExceptionTableEntry{}, err
		}
		startPC, err := asFloat(m["start_pc"], "start_pc")
		if err != nil {
			return ExceptionTableEntry{}, err
		}
		endPC, err := asFloat(m["end_pc"], "end_pc")
		if err != nil {
			return ExceptionTableEntry{}, err
		}
		handlerPC, err := asFloat(m["handler_pc"], "handler_pc")
		if err != nil {
			return ExceptionTableEntry{}, err
		}
		catchType, err := stringPtrFromTree(m["catch_type"])
		if err != nil {
			return ExceptionTableEntry{}, err
		}
		return ExceptionTableEntry{
			StartPC: uint16(startPC), EndPC: uint16(endPC), HandlerPC: uint16(handlerPC), CatchType: catchType,
		}, nil
	})
	if err != nil {
		return Code{}, fmt.Errorf("exception_table: %w", err)
	}
	attrs, err := attributesFromTree(m["attributes"])
	if err != nil {
		return Code{}, fmt.Errorf("attributes: %w", err)
	}
	return Code{
		MaxStack: uint16(maxStack), MaxLocals: uint16(maxLocals),
		Instructions: instructions, ExceptionTable: excTable, Attributes: attrs,
	}, nil
}

func opcodeToTree(op Opcode) Tree {
	payload := map[string]Tree{}
	if len(op.Ints) > 0 {
		args := make([]Tree, len(op.Ints))
		for i, v := range op.Ints {
			args[i] = float64(v)
		}
		payload["args"] = args
	}
	if op.Class != nil {
		payload["class"] = classRefToTree(*op.Class)
	}
	if op.Field != nil {
		payload["field"] = fieldRefToTree(*op.Field)
	}
	if op.Method != nil {
		payload["method"] = methodRefToTree(*op.Method)
	}
	if op.InterfaceMethod != nil {
		payload["interface_method"] = interfaceMethodRefToTree(*op.InterfaceMethod)
		payload["count"] = float64(op.InterfaceCount)
	}
	if op.Dimensions != 0 {
		payload["dimensions"] = float64(op.Dimensions)
	}
	if len(payload) == 0 {
		return map[string]Tree{op.Mnemonic: nil}
	}
	return map[string]Tree{op.Mnemonic: payload}
}

func opcodeFromTree(t Tree) (Opcode, error) {
	m, err := asMap(t, "opcode")
	if err != nil {
		return Opcode{}, err
	}
	if len(m) != 1 {
		return Opcode{}, fmt.Errorf("opcode: expected exactly one mnemonic key, got %d", len(m))
	}
	var mnemonic string
	var payload Tree
	for k, v := range m {
		mnemonic, payload = k, v
	}
	tag, ok := mnemonicToTag[mnemonic]
	if !ok {
		return Opcode{}, fmt.Errorf("opcode: unrecognised mnemonic %q", mnemonic)
	}
	op := Opcode{Tag: tag, Mnemonic: mnemonic}
	if payload == nil {
		return op, nil
	}
	pm, err := asMap(payload, mnemonic)
	if err != nil {
		return Opcode{}, err
	}
	if args, ok := pm["args"]; ok {
		s, err := asSlice(args, "args")
		if err != nil {
			return Opcode{}, err
		}
		op.Ints = make([]int32, len(s))
		for i, v := range s {
			f, err := asFloat(v, "args")
			if err != nil {
				return Opcode{}, err
			}
			op.Ints[i] = int32(f)
		}
	}
	if cls, ok := pm["class"]; ok {
		cr, err := classRefFromTree(cls)
		if err != nil {
			return Opcode{}, err
		}
		op.Class = &cr
	}
	if f, ok := pm["field"]; ok {
		fr, err := fieldRefFromTree(f)
		if err != nil {
			return Opcode{}, err
		}
		op.Field = &fr
	}
	if meth, ok := pm["method"]; ok {
		mr, err := methodRefFromTree(meth)
		if err != nil {
			return Opcode{}, err
		}
		op.Method = &mr
	}
	if im, ok := pm["interface_method"]; ok {
		imr, err := interfaceMethodRefFromTree(im)
		if err != nil {
			return Opcode{}, err
		}
		op.InterfaceMethod = &imr
		count, err := asFloat(pm["count"], "count")
		if err != nil {
			return Opcode{}, err
		}
		op.InterfaceCount = uint8(count)
	}
	if dims, ok := pm["dimensions"]; ok {
		f, err := asFloat(dims, "dimensions")
		if err != nil {
			return Opcode{}, err
		}
		op.Dimensions = uint8(f)
	}
	return op, nil
}

// --- refs / constants --------------------------------------------------------

func classRefToTree(c ClassRef) Tree { return map[string]Tree{"name": c.Name} }

func classRefFromTree(t Tree) (ClassRef, error) {
	m, err := asMap(t, "class ref")
	if err != nil {
		return ClassRef{}, err
	}
	name, err := asString(m["name"], "name")
	if err != nil {
		return ClassRef{}, err
	}
	return ClassRef{Name: name}, nil
}

func fieldRefToTree(f FieldRef) Tree {
	return map[string]Tree{
		"class":      classRefToTree(f.Class),
		"name":       f.Name,
		"descriptor": f.Descriptor,
	}
}

func fieldRefFromTree(t Tree) (FieldRef, error) {
	m, err := asMap(t, "field ref")
	if err != nil {
		return FieldRef{}, err
	}
	class, err := classRefFromTree(m["class"])
	if err != nil {
		return FieldRef{}, err
	}
	name, err := asString(m["name"], "name")
	if err != nil {
		return FieldRef{}, err
	}
	descriptor, err := asString(m["descriptor"], "descriptor")
	if err != nil {
		return FieldRef{}, err
	}
	return FieldRef{Class: class, Name: name, Descriptor: descriptor}, nil
}

func methodRefToTree(mr MethodRef) Tree {
	return map[string]Tree{
		"class":      classRefToTree(mr.Class),
		"name":       mr.Name,
		"descriptor": mr.Descriptor,
	}
}

func methodRefFromTree(t Tree) (MethodRef, error) {
	m, err := asMap(t, "method ref")
	if err != nil {
		return MethodRef{}, err
	}
	class, err := classRefFromTree(m["class"])
	if err != nil {
		return MethodRef{}, err
	}
	name, err := asString(m["name"], "name")
	if err != nil {
		return MethodRef{}, err
	}
	descriptor, err := asString(m["descriptor"], "descriptor")
	if err != nil {
		return MethodRef{}, err
	}
	return MethodRef{Class: class, Name: name, Descriptor: descriptor}, nil
}

func interfaceMethodRefToTree(mr InterfaceMethodRef) Tree {
	return map[string]Tree{
		"class":      classRefToTree(mr.Class),
		"name":       mr.Name,
		"descriptor": mr.Descriptor,
	}
}

func interfaceMethodRefFromTree(t Tree) (InterfaceMethodRef, error) {
	m, err := asMap(t, "interface method ref")
	if err != nil {
		return InterfaceMethodRef{}, err
	}
	class, err := classRefFromTree(m["class"])
	if err != nil {
		return InterfaceMethodRef{}, err
	}
	name, err := asString(m["name"], "name")
	if err != nil {
		return InterfaceMethodRef{}, err
	}
	descriptor, err := asString(m["descriptor"], "descriptor")
	if err != nil {
		return InterfaceMethodRef{}, err
	}
	return InterfaceMethodRef{Class: class, Name: name, Descriptor: descriptor}, nil
}

func nameAndTypeToTree(nt NameAndType) Tree {
	return map[string]Tree{"name": nt.Name, "descriptor": nt.Descriptor}
}

func nameAndTypeFromTree(t Tree) (NameAndType, error) {
	m, err := asMap(t, "name and type")
	if err != nil {
		return NameAndType{}, err
	}
	name, err := asString(m["name"], "name")
	if err != nil {
		return NameAndType{}, err
	}
	descriptor, err := asString(m["descriptor"], "descriptor")
	if err != nil {
		return NameAndType{}, err
	}
	return NameAndType{Name: name, Descriptor: descriptor}, nil
}

func methodHandleToTree(h MethodHandle) Tree {
	return map[string]Tree{
		"reference_kind":       float64(h.ReferenceKind),
		"reference_class":      h.ReferenceClass,
		"reference_name":       h.ReferenceName,
		"reference_descriptor": h.ReferenceDesc,
	}
}

func methodHandleFromTree(t Tree) (MethodHandle, error) {
	m, err := asMap(t, "method handle")
	if err != nil {
		return MethodHandle{}, err
	}
	kind, err := asFloat(m["reference_kind"], "reference_kind")
	if err != nil {
		return MethodHandle{}, err
	}
	class, err := asString(m["reference_class"], "reference_class")
	if err != nil {
		return MethodHandle{}, err
	}
	name, err := asString(m["reference_name"], "reference_name")
	if err != nil {
		return MethodHandle{}, err
	}
	descriptor, err := asString(m["reference_descriptor"], "reference_descriptor")
	if err != nil {
		return MethodHandle{}, err
	}
	return MethodHandle{
		ReferenceKind: uint8(kind), ReferenceClass: class, ReferenceName: name, ReferenceDesc: descriptor,
	}, nil
}

// constantValueToTree renders a loadable constant as a single-key object
// keyed by its tag name. Long values beyond ±2^53 lose precision once
// folded into the tree's float64 number type (Double is already a float64
// and passes through unchanged); this is the tree
// format's own stated shape (Tree's number case is float64), not a defect
// introduced here.
func constantValueToTree(cv ConstantValue) Tree {
	switch cv.Tag {
	case TagInteger:
		return map[string]Tree{"Integer": float64(cv.Int)}
	case TagLong:
		return map[string]Tree{"Long": float64(cv.Long)}
	case TagFloat:
		return map[string]Tree{"Float": float64(cv.Float)}
	case TagDouble:
		return map[string]Tree{"Double": cv.Double}
	default:
		return map[string]Tree{"String": cv.String}
	}
}

func constantValueFromTree(t Tree) (ConstantValue, error) {
	m, err := asMap(t, "constant value")
	if err != nil {
		return ConstantValue{}, err
	}
	if len(m) != 1 {
		return ConstantValue{}, fmt.Errorf("constant value: expected exactly one tag key, got %d", len(m))
	}
	for tag, payload := range m {
		switch tag {
		case "Integer":
			f, err := asFloat(payload, "Integer")
			if err != nil {
				return ConstantValue{}, err
			}
			return ConstantValue{Tag: TagInteger, Int: int32(f)}, nil
		case "Long":
			f, err := asFloat(payload, "Long")
			if err != nil {
				return ConstantValue{}, err
			}
			return ConstantValue{Tag: TagLong, Long: int64(f)}, nil
		case "Float":
			f, err := asFloat(payload, "Float")
			if err != nil {
				return ConstantValue{}, err
			}
			return ConstantValue{Tag: TagFloat, Float: float32(f)}, nil
		case "Double":
			f, err := asFloat(payload, "Double")
			if err != nil {
				return ConstantValue{}, err
			}
			return ConstantValue{Tag: TagDouble, Double: f}, nil
		case "String":
			s, err := asString(payload, "String")
			if err != nil {
				return ConstantValue{}, err
			}
			return ConstantValue{Tag: TagString, String: s}, nil
		default:
			return ConstantValue{}, fmt.Errorf("constant value: unrecognised tag %q", tag)
		}
	}
	panic("unreachable")
}

// --- scalar conversion helpers -----------------------------------------------

func stringPtrToTree(s *string) Tree {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtrFromTree(t Tree) (*string, error) {
	if t == nil {
		return nil, nil
	}
	s, ok := t.(string)
	if !ok {
		return nil, fmt.Errorf("expected string or null, got %T", t)
	}
	return &s, nil
}

func stringsToTree(ss []string) Tree {
	out := make([]Tree, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func stringsFromTree(t Tree) ([]string, error) {
	if t == nil {
		return nil, nil
	}
	s, err := asSlice(t, "string list")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(s))
	for _, item := range s {
		str, err := asString(item, "string list entry")
		if err != nil {
			return nil, err
		}
		out = append(out, str)
	}
	return out, nil
}

func asMap(t Tree, what string) (map[string]Tree, error) {
	m, ok := t.(map[string]Tree)
	if !ok {
		return nil, fmt.Errorf("%s: expected an object, got %T", what, t)
	}
	return m, nil
}

func asSlice(t Tree, what string) ([]Tree, error) {
	s, ok := t.([]Tree)
	if !ok {
		return nil, fmt.Errorf("%s: expected an array, got %T", what, t)
	}
	return s, nil
}

func asString(t Tree, what string) (string, error) {
	s, ok := t.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a string, got %T", what, t)
	}
	return s, nil
}

func asFloat(t Tree, what string) (float64, error) {
	f, ok := t.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: expected a number, got %T", what, t)
	}
	return f, nil
}
