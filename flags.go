// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Scope distinguishes the four places access_flags appears in a class file.
// The same bit means different things in different scopes (0x0020 is SUPER
// for a class but SYNCHRONIZED for a method), so each scope carries its own
// name table; there is deliberately no single shared enum across scopes.
type Scope uint8

const (
	ScopeClass Scope = iota
	ScopeField
	ScopeMethod
	ScopeMethodParameter
)

// Class access flags (JVMS 4.1 table 4.1-A).
const (
	AccPublic     uint16 = 0x0001
	AccFinal      uint16 = 0x0010
	AccSuper      uint16 = 0x0020
	AccInterface  uint16 = 0x0200
	AccAbstract   uint16 = 0x0400
	AccSynthetic  uint16 = 0x1000
	AccAnnotation uint16 = 0x2000
	AccEnum       uint16 = 0x4000
	AccModule     uint16 = 0x8000
)

// Field access flags (JVMS 4.5 table 4.5-A).
const (
	AccPrivate   uint16 = 0x0002
	AccProtected uint16 = 0x0004
	AccStatic    uint16 = 0x0008
	AccVolatile  uint16 = 0x0040
	AccTransient uint16 = 0x0080
)

// Method access flags (JVMS 4.6 table 4.6-A).
const (
	AccSynchronized uint16 = 0x0020
	AccBridge       uint16 = 0x0040
	AccVarargs      uint16 = 0x0080
	AccNative       uint16 = 0x0100
	AccStrict       uint16 = 0x0800
)

// MethodParameters access flags (JVMS 4.7.24).
const (
	AccMandated uint16 = 0x8000
)

type flagBit struct {
	name string
	bit  uint16
}

// Declaration order is also display order, matching the teacher's
// SectionAttributeDescription-style name tables.
var classFlagTable = []flagBit{
	{"PUBLIC", AccPublic},
	{"FINAL", AccFinal},
	{"SUPER", AccSuper},
	{"INTERFACE", AccInterface},
	{"ABSTRACT", AccAbstract},
	{"SYNTHETIC", AccSynthetic},
	{"ANNOTATION", AccAnnotation},
	{"ENUM", AccEnum},
	{"MODULE", AccModule},
}

var fieldFlagTable = []flagBit{
	{"PUBLIC", AccPublic},
	{"PRIVATE", AccPrivate},
	{"PROTECTED", AccProtected},
	{"STATIC", AccStatic},
	{"FINAL", AccFinal},
	{"VOLATILE", AccVolatile},
	{"TRANSIENT", AccTransient},
	{"SYNTHETIC", AccSynthetic},
	{"ENUM", AccEnum},
}

var methodFlagTable = []flagBit{
	{"PUBLIC", AccPublic},
	{"PRIVATE", AccPrivate},
	{"PROTECTED", AccProtected},
	{"STATIC", AccStatic},
	{"FINAL", AccFinal},
	{"SYNCHRONIZED", AccSynchronized},
	{"BRIDGE", AccBridge},
	{"VARARGS", AccVarargs},
	{"NATIVE", AccNative},
	{"ABSTRACT", AccAbstract},
	{"STRICT", AccStrict},
	{"SYNTHETIC", AccSynthetic},
}

var methodParameterFlagTable = []flagBit{
	{"FINAL", AccFinal},
	{"SYNTHETIC", AccSynthetic},
	{"MANDATED", AccMandated},
}

func tableFor(scope Scope) []flagBit {
	switch scope {
	case ScopeClass:
		return classFlagTable
	case ScopeField:
		return fieldFlagTable
	case ScopeMethod:
		return methodFlagTable
	case ScopeMethodParameter:
		return methodParameterFlagTable
	default:
		return nil
	}
}

// Flags is the resolved set of access modifiers for one scope: the bits the
// scope's flag table recognises, decoded from a raw access_flags word. Bits
// outside the table are dropped silently on decode (JVMS does not mandate
// rejecting reserved bits, and real-world class files set vendor bits the
// parser has no business failing on); see DESIGN.md for the open question
// this resolves.
type Flags struct {
	scope Scope
	bits  uint16
}

// DecodeFlags builds a Flags set from a raw access_flags word, keeping only
// the bits valid in scope.
func DecodeFlags(scope Scope, raw uint16) Flags {
	var kept uint16
	for _, fb := range tableFor(scope) {
		kept |= raw & fb.bit
	}
	return Flags{scope: scope, bits: kept}
}

// Has reports whether bit is set.
func (f Flags) Has(bit uint16) bool { return f.bits&bit != 0 }

// Encode returns the raw access_flags word for writing.
func (f Flags) Encode() uint16 { return f.bits }

// Names lists the set flags in the scope's declaration order, e.g.
// ["PUBLIC", "FINAL"].
func (f Flags) Names() []string {
	names := make([]string, 0, 4)
	for _, fb := range tableFor(f.scope) {
		if f.bits&fb.bit != 0 {
			names = append(names, fb.name)
		}
	}
	return names
}

// flagsFromNames is the inverse of Names, used when building a Flags value
// from a structured-document tree.
func flagsFromNames(scope Scope, names []string) Flags {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var bits uint16
	for _, fb := range tableFor(scope) {
		if want[fb.name] {
			bits |= fb.bit
		}
	}
	return Flags{scope: scope, bits: bits}
}
