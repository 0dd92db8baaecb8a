// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "fmt"

// ClassRef is a pool-dereferenced class reference, as carried by opcodes
// like new, checkcast, instanceof and as the receiver class of a field or
// method reference.
type ClassRef struct {
	Name string
}

// FieldRef is a pool-dereferenced CONSTANT_Fieldref: the two-hop chain
// (Fieldref -> Class + NameAndType -> Utf8, Utf8) collapsed into literal
// strings.
type FieldRef struct {
	Class      ClassRef
	Name       string
	Descriptor string
}

// MethodRef is FieldRef's CONSTANT_Methodref counterpart.
type MethodRef struct {
	Class      ClassRef
	Name       string
	Descriptor string
}

// InterfaceMethodRef is FieldRef's CONSTANT_InterfaceMethodref counterpart.
// The argument-count byte invokeinterface carries alongside it is kept on
// Opcode.InterfaceCount, not here.
type InterfaceMethodRef struct {
	Class      ClassRef
	Name       string
	Descriptor string
}

// Code is the resolved payload of a Code attribute (JVMS 4.7.3): a decoded
// instruction stream plus its exception handlers and any nested attributes
// (e.g. LineNumberTable, LocalVariableTable, StackMapTable).
type Code struct {
	MaxStack       uint16
	MaxLocals      uint16
	Instructions   []Opcode
	ExceptionTable []ExceptionTableEntry
	Attributes     []Attribute
}

// ExceptionTableEntry is one row of a Code attribute's exception_table.
// start_pc/end_pc/handler_pc are raw byte offsets into the instruction
// stream, never recomputed by this codec (see OP-I1 and the Non-goals: no
// bytecode verification).
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType *string
}

// Opcode is one decoded JVM instruction. Mnemonic and Tag identify which
// instruction it is; only the operand fields relevant to that instruction
// are populated. This flat-struct shape (rather than one Go type per
// instruction) mirrors how the rest of the example pack's disassemblers
// represent a decoded instruction — a tag plus a small fixed set of operand
// slots dispatched through a table, not one struct per mnemonic.
type Opcode struct {
	Tag      byte
	Mnemonic string

	// Operands, populated according to the instruction's schema.
	Ints            []int32
	Class           *ClassRef
	Field           *FieldRef
	Method          *MethodRef
	InterfaceMethod *InterfaceMethodRef
	InterfaceCount  uint8 // invokeinterface's count byte
	Dimensions      uint8 // multianewarray's dimensions byte
}

type operandKind uint8

const (
	opNone operandKind = iota
	opU1               // unsigned byte literal
	opU2               // unsigned short literal
	opI1               // signed byte literal (bipush)
	opI2               // signed short literal (sipush, branch offset)
	opClassRef
	opFieldRef
	opMethodRef
	opInterfaceMethodRef // invokeinterface: ref + count + reserved zero byte
	opClassRefWithDims   // multianewarray: class ref + dimensions byte
)

type opSpec struct {
	mnemonic string
	operands []operandKind
}

// opcodeTable lists every opcode this codec supports, keyed by tag byte.
// tableswitch (0xAA), lookupswitch (0xAB), wide (0xC4), invokedynamic
// (0xBA) and any tag absent from this table are not required by this
// specification and decode as UnknownOpcode.
var opcodeTable = map[byte]opSpec{
	0x00: {"nop", nil},
	0x01: {"aconst_null", nil},
	0x02: {"iconst_m1", nil},
	0x03: {"iconst_0", nil},
	0x04: {"iconst_1", nil},
	0x05: {"iconst_2", nil},
	0x06: {"iconst_3", nil},
	0x07: {"iconst_4", nil},
	0x08: {"iconst_5", nil},
	0x09: {"lconst_0", nil},
	0x0a: {"lconst_1", nil},
	0x0b: {"fconst_0", nil},
	0x0c: {"fconst_1", nil},
	0x0d: {"fconst_2", nil},
	0x0e: {"dconst_0", nil},
	0x0f: {"dconst_1", nil},
	0x10: {"bipush", []operandKind{opI1}},
	0x11: {"sipush", []operandKind{opI2}},
	0x12: {"ldc", []operandKind{opU1}},
	0x13: {"ldc_w", []operandKind{opU2}},
	0x14: {"ldc2_w", []operandKind{opU2}},
	0x15: {"iload", []operandKind{opU1}},
	0x16: {"lload", []operandKind{opU1}},
	0x17: {"fload", []operandKind{opU1}},
	0x18: {"dload", []operandKind{opU1}},
	0x19: {"aload", []operandKind{opU1}},
	0x1a: {"iload_0", nil},
	0x1b: {"iload_1", nil},
	0x1c: {"iload_2", nil},
	0x1d: {"iload_3", nil},
	0x1e: {"lload_0", nil},
	0x1f: {"lload_1", nil},
	0x20: {"lload_2", nil},
	0x21: {"lload_3", nil},
	0x22: {"fload_0", nil},
	0x23: {"fload_1", nil},
	0x24: {"fload_2", nil},
	0x25: {"fload_3", nil},
	0x26: {"dload_0", nil},
	0x27: {"dload_1", nil},
	0x28: {"dload_2", nil},
	0x29: {"dload_3", nil},
	0x2a: {"aload_0", nil},
	0x2b: {"aload_1", nil},
	0x2c: {"aload_2", nil},
	0x2d: {"aload_3", nil},
	0x2e: {"iaload", nil},
	0x2f: {"laload", nil},
	0x30: {"faload", nil},
	0x31: {"daload", nil},
	0x32: {"aaload", nil},
	0x33: {"baload", nil},
	0x34: {"caload", nil},
	0x35: {"saload", nil},
	0x36: {"istore", []operandKind{opU1}},
	0x37: {"lstore", []operandKind{opU1}},
	0x38: {"fstore", []operandKind{opU1}},
	0x39: {"dstore", []operandKind{opU1}},
	0x3a: {"astore", []operandKind{opU1}},
	0x3b: {"istore_0", nil},
	0x3c: {"istore_1", nil},
	0x3d: {"istore_2", nil},
	0x3e: {"istore_3", nil},
	0x3f: {"lstore_0", nil},
	0x40: {"lstore_1", nil},
	0x41: {"lstore_2", nil},
	0x42: {"lstore_3", nil},
	0x43: {"fstore_0", nil},
	0x44: {"fstore_1", nil},
	0x45: {"fstore_2", nil},
	0x46: {"fstore_3", nil},
	0x47: {"dstore_0", nil},
	0x48: {"dstore_1", nil},
	0x49: {"dstore_2", nil},
	0x4a: {"dstore_3", nil},
	0x4b: {"astore_0", nil},
	0x4c: {"astore_1", nil},
	0x4d: {"astore_2", nil},
	0x4e: {"astore_3", nil},
	0x4f: {"iastore", nil},
	0x50: {"lastore", nil},
	0x51: {"fastore", nil},
	0x52: {"dastore", nil},
	0x53: {"aastore", nil},
	0x54: {"bastore", nil},
	0x55: {"castore", nil},
	0x56: {"sastore", nil},
	0x57: {"pop", nil},
	0x58: {"pop2", nil},
	0x59: {"dup", nil},
	0x5a: {"dup_x1", nil},
	0x5b: {"dup_x2", nil},
	0x5c: {"dup2", nil},
	0x5d: {"dup2_x1", nil},
	0x5e: {"dup2_x2", nil},
	0x5f: {"swap", nil},
	0x60: {"iadd", nil},
	0x61: {"ladd", nil},
	0x62: {"fadd", nil},
	0x63: {"dadd", nil},
	0x64: {"isub", nil},
	0x65: {"lsub", nil},
	0x66: {"fsub", nil},
	0x67: {"dsub", nil},
	0x68: {"imul", nil},
	0x69: {"lmul", nil},
	0x6a: {"fmul", nil},
	0x6b: {"dmul", nil},
	0x6c: {"idiv", nil},
	0x6d: {"ldiv", nil},
	0x6e: {"fdiv", nil},
	0x6f: {"ddiv", nil},
	0x70: {"irem", nil},
	0x71: {"lrem", nil},
	0x72: {"frem", nil},
	0x73: {"drem", nil},
	0x74: {"ineg", nil},
	0x75: {"lneg", nil},
	0x76: {"fneg", nil},
	0x77: {"dneg", nil},
	0x78: {"ishl", nil},
	0x79: {"lshl", nil},
	0x7a: {"ishr", nil},
	0x7b: {"lshr", nil},
	0x7c: {"iushr", nil},
	0x7d: {"lushr", nil},
	0x7e: {"iand", nil},
	0x7f: {"land", nil},
	0x80: {"ior", nil},
	0x81: {"lor", nil},
	0x82: {"ixor", nil},
	0x83: {"lxor", nil},
	0x84: {"iinc", []operandKind{opU1, opI1}},
	0x85: {"i2l", nil},
	0x86: {"i2f", nil},
	0x87: {"i2d", nil},
	0x88: {"l2i", nil},
	0x89: {"l2f", nil},
	0x8a: {"l2d", nil},
	0x8b: {"f2i", nil},
	0x8c: {"f2l", nil},
	0x8d: {"f2d", nil},
	0x8e: {"d2i", nil},
	0x8f: {"d2l", nil},
	0x90: {"d2f", nil},
	0x91: {"i2b", nil},
	0x92: {"i2c", nil},
	0x93: {"i2s", nil},
	0x94: {"lcmp", nil},
	0x95: {"fcmpl", nil},
	0x96: {"fcmpg", nil},
	0x97: {"dcmpl", nil},
	0x98: {"dcmpg", nil},
	0x99: {"ifeq", []operandKind{opI2}},
	0x9a: {"ifne", []operandKind{opI2}},
	0x9b: {"iflt", []operandKind{opI2}},
	0x9c: {"ifge", []operandKind{opI2}},
	0x9d: {"ifgt", []operandKind{opI2}},
	0x9e: {"ifle", []operandKind{opI2}},
	0x9f: {"if_icmpeq", []operandKind{opI2}},
	0xa0: {"if_icmpne", []operandKind{opI2}},
	0xa1: {"if_icmplt", []operandKind{opI2}},
	0xa2: {"if_icmpge", []operandKind{opI2}},
	0xa3: {"if_icmpgt", []operandKind{opI2}},
	0xa4: {"if_icmple", []operandKind{opI2}},
	0xa5: {"if_acmpeq", []operandKind{opI2}},
	0xa6: {"if_acmpne", []operandKind{opI2}},
	0xa7: {"goto", []operandKind{opI2}},
	0xa8: {"jsr", []operandKind{opI2}},
	0xa9: {"ret", []operandKind{opU1}},
	0xac: {"ireturn", nil},
	0xad: {"lreturn", nil},
	0xae: {"freturn", nil},
	0xaf: {"dreturn", nil},
	0xb0: {"areturn", nil},
	0xb1: {"return", nil},
	0xb2: {"getstatic", []operandKind{opFieldRef}},
	0xb3: {"putstatic", []operandKind{opFieldRef}},
	0xb4: {"getfield", []operandKind{opFieldRef}},
	0xb5: {"putfield", []operandKind{opFieldRef}},
	0xb6: {"invokevirtual", []operandKind{opMethodRef}},
	0xb7: {"invokespecial", []operandKind{opMethodRef}},
	0xb8: {"invokestatic", []operandKind{opMethodRef}},
	0xb9: {"invokeinterface", []operandKind{opInterfaceMethodRef}},
	0xbb: {"new", []operandKind{opClassRef}},
	0xbc: {"newarray", []operandKind{opU1}},
	0xbd: {"anewarray", []operandKind{opClassRef}},
	0xbe: {"arraylength", nil},
	0xbf: {"athrow", nil},
	0xc0: {"checkcast", []operandKind{opClassRef}},
	0xc1: {"instanceof", []operandKind{opClassRef}},
	0xc2: {"monitorenter", nil},
	0xc3: {"monitorexit", nil},
	0xc5: {"multianewarray", []operandKind{opClassRefWithDims}},
	0xc6: {"ifnull", []operandKind{opI2}},
	0xc7: {"ifnonnull", []operandKind{opI2}},
}

// mnemonicToTag is opcodeTable's reverse index, used by tree.go to rebuild
// an Opcode's tag byte from its mnemonic when parsing a structured document.
var mnemonicToTag = func() map[string]byte {
	m := make(map[string]byte, len(opcodeTable))
	for tag, spec := range opcodeTable {
		m[spec.mnemonic] = tag
	}
	return m
}()

// decodeOpcodes decodes a Code attribute's instruction stream until the
// sub-reader is drained (JVMS 4.7.3: code_length bytes, no trailer).
func decodeOpcodes(code []byte, pool *Pool) ([]Opcode, error) {
	r := NewReader(code)
	var instrs []Opcode
	for !r.IsEmpty() {
		offset := len(code) - r.Len()
		tag, err := r.U1()
		if err != nil {
			return nil, err
		}
		spec, ok := opcodeTable[tag]
		if !ok {
			return nil, &UnknownOpcodeError{Offset: offset, Opcode: tag}
		}
		op, err := decodeOperands(r, pool, tag, spec)
		if err != nil {
			return nil, fmt.Errorf("opcode %s at offset %d: %w", spec.mnemonic, offset, err)
		}
		instrs = append(instrs, op)
	}
	return instrs, nil
}

func decodeOperands(r *Reader, pool *Pool, tag byte, spec opSpec) (Opcode, error) {
	op := Opcode{Tag: tag, Mnemonic: spec.mnemonic}
	for _, kind := range spec.operands {
		switch kind {
		case opU1:
			v, err := r.U1()
			if err != nil {
				return Opcode{}, err
			}
			op.Ints = append(op.Ints, int32(v))
		case opU2:
			v, err := r.U2()
			if err != nil {
				return Opcode{}, err
			}
			op.Ints = append(op.Ints, int32(v))
		case opI1:
			v, err := r.U1()
			if err != nil {
				return Opcode{}, err
			}
			op.Ints = append(op.Ints, int32(int8(v)))
		case opI2:
			v, err := r.U2()
			if err != nil {
				return Opcode{}, err
			}
			op.Ints = append(op.Ints, int32(int16(v)))
		case opClassRef:
			idx, err := r.U2()
			if err != nil {
				return Opcode{}, err
			}
			name, err := pool.GetClassName(idx)
			if err != nil {
				return Opcode{}, err
			}
			op.Class = &ClassRef{Name: name}
		case opFieldRef:
			idx, err := r.U2()
			if err != nil {
				return Opcode{}, err
			}
			class, name, descriptor, err := pool.refTarget(idx, TagFieldref, "Fieldref")
			if err != nil {
				return Opcode{}, err
			}
			op.Field = &FieldRef{Class: ClassRef{Name: class}, Name: name, Descriptor: descriptor}
		case opMethodRef:
			idx, err := r.U2()
			if err != nil {
				return Opcode{}, err
			}
			class, name, descriptor, err := pool.refTarget(idx, TagMethodref, "Methodref")
			if err != nil {
				return Opcode{}, err
			}
			op.Method = &MethodRef{Class: ClassRef{Name: class}, Name: name, Descriptor: descriptor}
		case opInterfaceMethodRef:
			idx, err := r.U2()
			if err != nil {
				return Opcode{}, err
			}
			count, err := r.U1()
			if err != nil {
				return Opcode{}, err
			}
			if _, err := r.U1(); err != nil { // reserved, always zero
				return Opcode{}, err
			}
			class, name, descriptor, err := pool.refTarget(idx, TagInterfaceMethodref, "InterfaceMethodref")
			if err != nil {
				return Opcode{}, err
			}
			op.InterfaceMethod = &InterfaceMethodRef{Class: ClassRef{Name: class}, Name: name, Descriptor: descriptor}
			op.InterfaceCount = count
		case opClassRefWithDims:
			idx, err := r.U2()
			if err != nil {
				return Opcode{}, err
			}
			dims, err := r.U1()
			if err != nil {
				return Opcode{}, err
			}
			name, err := pool.GetClassName(idx)
			if err != nil {
				return Opcode{}, err
			}
			op.Class = &ClassRef{Name: name}
			op.Dimensions = dims
		}
	}
	return op, nil
}

// encodeOpcodes re-encodes a decoded instruction stream, re-interning every
// class/field/method/interface-method reference into pool. Per OP-I1, the
// encoded length of each instruction matches its original width for every
// opcode in opcodeTable, so the sum of encoded lengths always reproduces
// code_length.
func encodeOpcodes(w *Writer, instrs []Opcode, pool *Pool) {
	for _, op := range instrs {
		w.PutU1(op.Tag)
		spec := opcodeTable[op.Tag]
		encodeOperands(w, pool, op, spec)
	}
}

func encodeOperands(w *Writer, pool *Pool, op Opcode, spec opSpec) {
	intIdx := 0
	nextInt := func() int32 {
		v := op.Ints[intIdx]
		intIdx++
		return v
	}
	for _, kind := range spec.operands {
		switch kind {
		case opU1:
			w.PutU1(uint8(nextInt()))
		case opU2:
			w.PutU2(uint16(nextInt()))
		case opI1:
			w.PutU1(uint8(int8(nextInt())))
		case opI2:
			w.PutU2(uint16(int16(nextInt())))
		case opClassRef:
			w.PutU2(pool.PushClass(op.Class.Name))
		case opFieldRef:
			f := op.Field
			w.PutU2(pool.PushFieldref(f.Class.Name, f.Name, f.Descriptor))
		case opMethodRef:
			m := op.Method
			w.PutU2(pool.PushMethodref(m.Class.Name, m.Name, m.Descriptor))
		case opInterfaceMethodRef:
			m := op.InterfaceMethod
			w.PutU2(pool.PushInterfaceMethodref(m.Class.Name, m.Name, m.Descriptor))
			w.PutU1(op.InterfaceCount)
			w.PutU1(0)
		case opClassRefWithDims:
			w.PutU2(pool.PushClass(op.Class.Name))
			w.PutU1(op.Dimensions)
		}
	}
}
