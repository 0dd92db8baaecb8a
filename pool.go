// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"fmt"
	"math"
)

// Constant pool tags (JVMS 4.4, table 4.4-A).
const (
	TagUtf8               uint8 = 1
	TagInteger            uint8 = 3
	TagFloat              uint8 = 4
	TagLong               uint8 = 5
	TagDouble             uint8 = 6
	TagClass              uint8 = 7
	TagString             uint8 = 8
	TagFieldref           uint8 = 9
	TagMethodref          uint8 = 10
	TagInterfaceMethodref uint8 = 11
	TagNameAndType        uint8 = 12
	TagMethodHandle       uint8 = 15
	TagMethodType         uint8 = 16
	TagDynamic            uint8 = 17
	TagInvokeDynamic      uint8 = 18
	TagModule             uint8 = 19
	TagPackage            uint8 = 20
)

func tagName(tag uint8) string {
	switch tag {
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldref:
		return "Fieldref"
	case TagMethodref:
		return "Methodref"
	case TagInterfaceMethodref:
		return "InterfaceMethodref"
	case TagNameAndType:
		return "NameAndType"
	case TagMethodHandle:
		return "MethodHandle"
	case TagMethodType:
		return "MethodType"
	case TagDynamic:
		return "Dynamic"
	case TagInvokeDynamic:
		return "InvokeDynamic"
	case TagModule:
		return "Module"
	case TagPackage:
		return "Package"
	default:
		return fmt.Sprintf("tag(%d)", tag)
	}
}

// constant is one occupied constant-pool slot. It is the raw, index-bearing
// form; Pool.get* methods dereference it into resolved values.
type constant struct {
	tag uint8

	utf8 string // Utf8

	i32 int32   // Integer
	f32 float32 // Float
	i64 int64   // Long
	f64 float64 // Double

	nameIndex     uint16 // Class.name_index, String.string_index, NameAndType.name_index, MethodType/Module/Package.*_index
	classIndex    uint16 // Fieldref/Methodref/InterfaceMethodref.class_index
	natIndex      uint16 // Fieldref/Methodref/InterfaceMethodref.name_and_type_index, Dynamic/InvokeDynamic.name_and_type_index
	descIndex     uint16 // NameAndType.descriptor_index
	refKind       uint8  // MethodHandle.reference_kind
	refIndex      uint16 // MethodHandle.reference_index
	bootstrapAttr uint16 // Dynamic/InvokeDynamic.bootstrap_method_attr_index
}

// Pool is the 1-based sparse constant pool. Slot 0 and the second slot of
// every Long/Double are nil sentinels. A Pool only lives for the duration of
// one read or one write; the resolved Class tree is what persists.
type Pool struct {
	slots []*constant // slots[0] is always nil
}

func newPool() *Pool {
	return &Pool{slots: []*constant{nil}}
}

// readPool parses the constant_pool_count + entries that open every class
// file (JVMS 4.4).
func readPool(r *Reader) (*Pool, error) {
	count, err := r.U2()
	if err != nil {
		return nil, malformed("constant pool count", err)
	}

	p := &Pool{slots: make([]*constant, 1, max(int(count), 1))}

	for i := 1; i < int(count); i++ {
		tag, err := r.U1()
		if err != nil {
			return nil, malformed(fmt.Sprintf("constant pool tag at index %d", i), err)
		}

		c, err := readConstant(r, tag)
		if err != nil {
			return nil, malformed(fmt.Sprintf("constant pool entry at index %d", i), err)
		}
		p.slots = append(p.slots, c)

		if tag == TagLong || tag == TagDouble {
			p.slots = append(p.slots, nil) // CP-I1: wide constants reserve the next slot
			i++
		}
	}
	return p, nil
}

func readConstant(r *Reader, tag uint8) (*constant, error) {
	switch tag {
	case TagUtf8:
		length, err := r.U2()
		if err != nil {
			return nil, err
		}
		raw, err := r.TakeBytes(int(length))
		if err != nil {
			return nil, err
		}
		s, err := decodeModifiedUTF8(raw)
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, utf8: s}, nil

	case TagInteger:
		v, err := r.U4()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, i32: int32(v)}, nil

	case TagFloat:
		v, err := r.U4()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, f32: math.Float32frombits(v)}, nil

	case TagLong:
		v, err := r.U8()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, i64: int64(v)}, nil

	case TagDouble:
		v, err := r.U8()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, f64: math.Float64frombits(v)}, nil

	case TagClass, TagMethodType, TagModule, TagPackage:
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, nameIndex: idx}, nil

	case TagString:
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, nameIndex: idx}, nil

	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		classIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		natIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, classIndex: classIdx, natIndex: natIdx}, nil

	case TagNameAndType:
		nameIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, nameIndex: nameIdx, descIndex: descIdx}, nil

	case TagMethodHandle:
		kind, err := r.U1()
		if err != nil {
			return nil, err
		}
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, refKind: kind, refIndex: idx}, nil

	case TagDynamic, TagInvokeDynamic:
		bootstrapIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		natIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		return &constant{tag: tag, bootstrapAttr: bootstrapIdx, natIndex: natIdx}, nil

	default:
		return nil, &BadTagError{Where: "constant pool", Value: tag}
	}
}

// write emits the pool body (tag + payload per occupied slot, skipping
// empty slots) preceded by the constants_pool_count header, per JVMS 4.4.
// The count is len(slots), so write must only be called once every entity
// has been interned: Write buffers the class file's tail separately and
// appends it after the pool.
func (p *Pool) write(w *Writer) {
	w.PutU2(uint16(len(p.slots)))
	for _, c := range p.slots {
		if c == nil {
			continue
		}
		w.PutU1(c.tag)
		switch c.tag {
		case TagUtf8:
			raw := encodeModifiedUTF8(c.utf8)
			w.PutU2(uint16(len(raw)))
			w.WriteBytes(raw)
		case TagInteger:
			w.PutU4(uint32(c.i32))
		case TagFloat:
			w.PutU4(math.Float32bits(c.f32))
		case TagLong:
			w.PutU8(uint64(c.i64))
		case TagDouble:
			w.PutU8(math.Float64bits(c.f64))
		case TagClass, TagMethodType, TagModule, TagPackage, TagString:
			w.PutU2(c.nameIndex)
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			w.PutU2(c.classIndex)
			w.PutU2(c.natIndex)
		case TagNameAndType:
			w.PutU2(c.nameIndex)
			w.PutU2(c.descIndex)
		case TagMethodHandle:
			w.PutU1(c.refKind)
			w.PutU2(c.refIndex)
		case TagDynamic, TagInvokeDynamic:
			w.PutU2(c.bootstrapAttr)
			w.PutU2(c.natIndex)
		}
	}
}

// --- lookups ------------------------------------------------------------

func (p *Pool) at(index uint16) (*constant, error) {
	if int(index) >= len(p.slots) || p.slots[index] == nil {
		return nil, &InvalidIndexError{Index: index}
	}
	return p.slots[index], nil
}

// GetUtf8 dereferences index as a Utf8 constant.
func (p *Pool) GetUtf8(index uint16) (string, error) {
	c, err := p.at(index)
	if err != nil {
		return "", err
	}
	if c.tag != TagUtf8 {
		return "", &WrongTagError{Index: index, Expected: "Utf8", Found: tagName(c.tag)}
	}
	return c.utf8, nil
}

// GetClassName dereferences index as a Class constant, then its name_index
// as Utf8.
func (p *Pool) GetClassName(index uint16) (string, error) {
	c, err := p.at(index)
	if err != nil {
		return "", err
	}
	if c.tag != TagClass {
		return "", &WrongTagError{Index: index, Expected: "Class", Found: tagName(c.tag)}
	}
	return p.GetUtf8(c.nameIndex)
}

// GetNameAndType dereferences index as a NameAndType constant, returning the
// (name, descriptor) pair of literal strings.
func (p *Pool) GetNameAndType(index uint16) (name, descriptor string, err error) {
	c, err := p.at(index)
	if err != nil {
		return "", "", err
	}
	if c.tag != TagNameAndType {
		return "", "", &WrongTagError{Index: index, Expected: "NameAndType", Found: tagName(c.tag)}
	}
	name, err = p.GetUtf8(c.nameIndex)
	if err != nil {
		return "", "", err
	}
	descriptor, err = p.GetUtf8(c.descIndex)
	if err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// refTarget resolves a Fieldref/Methodref/InterfaceMethodref's two-hop chain
// into (class name, member name, descriptor).
func (p *Pool) refTarget(index uint16, wantTag uint8, wantName string) (class, name, descriptor string, err error) {
	c, err := p.at(index)
	if err != nil {
		return "", "", "", err
	}
	if c.tag != wantTag {
		return "", "", "", &WrongTagError{Index: index, Expected: wantName, Found: tagName(c.tag)}
	}
	class, err = p.GetClassName(c.classIndex)
	if err != nil {
		return "", "", "", err
	}
	name, descriptor, err = p.GetNameAndType(c.natIndex)
	if err != nil {
		return "", "", "", err
	}
	return class, name, descriptor, nil
}

// GetConstantAsString renders a loadable constant (tags 3,4,5,6,8) as a
// display literal: quoted for String, plain text otherwise.
func (p *Pool) GetConstantAsString(index uint16) (string, error) {
	c, err := p.at(index)
	if err != nil {
		return "", err
	}
	switch c.tag {
	case TagString:
		s, err := p.GetUtf8(c.nameIndex)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", s), nil
	case TagInteger:
		return fmt.Sprintf("%d", c.i32), nil
	case TagLong:
		return fmt.Sprintf("%d", c.i64), nil
	case TagFloat:
		return fmt.Sprintf("%g", c.f32), nil
	case TagDouble:
		return fmt.Sprintf("%g", c.f64), nil
	default:
		return "", &WrongTagError{Index: index, Expected: "a loadable constant", Found: tagName(c.tag)}
	}
}

// --- interning (push) ----------------------------------------------------

// push appends c and returns its new 1-based index. Long/Double pushes also
// append the reserved sentinel slot. Pool.push never deduplicates: two
// identical pushes yield two distinct indices, which is fine — constant
// pool deduplication is explicitly out of scope (see Non-goals).
func (p *Pool) push(c *constant) uint16 {
	idx := uint16(len(p.slots))
	p.slots = append(p.slots, c)
	if c.tag == TagLong || c.tag == TagDouble {
		p.slots = append(p.slots, nil)
	}
	return idx
}

// PushUtf8 interns s as a Utf8 constant and returns its index.
func (p *Pool) PushUtf8(s string) uint16 {
	return p.push(&constant{tag: TagUtf8, utf8: s})
}

// PushClass interns name as a Utf8 then a Class constant, returning the
// Class constant's index.
func (p *Pool) PushClass(name string) uint16 {
	nameIdx := p.PushUtf8(name)
	return p.push(&constant{tag: TagClass, nameIndex: nameIdx})
}

// PushString interns s as a Utf8 then a String constant.
func (p *Pool) PushString(s string) uint16 {
	nameIdx := p.PushUtf8(s)
	return p.push(&constant{tag: TagString, nameIndex: nameIdx})
}

// PushInteger interns an Integer constant.
func (p *Pool) PushInteger(v int32) uint16 { return p.push(&constant{tag: TagInteger, i32: v}) }

// PushFloat interns a Float constant.
func (p *Pool) PushFloat(v float32) uint16 { return p.push(&constant{tag: TagFloat, f32: v}) }

// PushLong interns a Long constant (and its reserved slot).
func (p *Pool) PushLong(v int64) uint16 { return p.push(&constant{tag: TagLong, i64: v}) }

// PushDouble interns a Double constant (and its reserved slot).
func (p *Pool) PushDouble(v float64) uint16 { return p.push(&constant{tag: TagDouble, f64: v}) }

// PushNameAndType interns a NameAndType constant from literal strings.
func (p *Pool) PushNameAndType(name, descriptor string) uint16 {
	nameIdx := p.PushUtf8(name)
	descIdx := p.PushUtf8(descriptor)
	return p.push(&constant{tag: TagNameAndType, nameIndex: nameIdx, descIndex: descIdx})
}

// PushFieldref interns class, name and descriptor, then a Fieldref tying
// them together, returning the Fieldref's index.
func (p *Pool) PushFieldref(class, name, descriptor string) uint16 {
	classIdx := p.PushClass(class)
	natIdx := p.PushNameAndType(name, descriptor)
	return p.push(&constant{tag: TagFieldref, classIndex: classIdx, natIndex: natIdx})
}

// PushMethodref is PushFieldref's Methodref counterpart.
func (p *Pool) PushMethodref(class, name, descriptor string) uint16 {
	classIdx := p.PushClass(class)
	natIdx := p.PushNameAndType(name, descriptor)
	return p.push(&constant{tag: TagMethodref, classIndex: classIdx, natIndex: natIdx})
}

// PushInterfaceMethodref is PushFieldref's InterfaceMethodref counterpart.
func (p *Pool) PushInterfaceMethodref(class, name, descriptor string) uint16 {
	classIdx := p.PushClass(class)
	natIdx := p.PushNameAndType(name, descriptor)
	return p.push(&constant{tag: TagInterfaceMethodref, classIndex: classIdx, natIndex: natIdx})
}

// Len reports the on-disk constant_pool_count (CP-I3): the slot count
// including the sentinel and every wide constant's reserved slot.
func (p *Pool) Len() int { return len(p.slots) }
