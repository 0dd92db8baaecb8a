// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the byte framer and class file reader. Wrap
// these with fmt.Errorf("...: %w", err) when adding context so callers can
// still errors.Is/errors.As through to the root cause.
var (
	// ErrUnexpectedEnd is returned when a read runs past the end of the
	// buffer supplied to a Reader.
	ErrUnexpectedEnd = errors.New("unexpected end of class file data")

	// ErrBadMagic is returned when the version header's magic number is not
	// 0xCAFEBABE.
	ErrBadMagic = errors.New("not a class file: bad magic number")

	// ErrTooSmall is returned when the input is shorter than
	// minClassFileSize; the smallest legal class file (empty pool, no
	// members) is still larger than that.
	ErrTooSmall = errors.New("not a class file: smaller than the minimum header size")
)

// BadTagError reports an unrecognised constant-pool tag byte or an invalid
// byte in a modified UTF-8 string. Unsupported opcodes are reported with
// UnknownOpcodeError instead.
type BadTagError struct {
	Where string
	Value byte
}

func (e *BadTagError) Error() string {
	return fmt.Sprintf("%s: unknown tag byte 0x%02x", e.Where, e.Value)
}

// WrongTagError reports a constant-pool lookup that landed on a slot with
// a tag different from the one the caller expected.
type WrongTagError struct {
	Index    uint16
	Expected string
	Found    string
}

func (e *WrongTagError) Error() string {
	return fmt.Sprintf("constant pool index %d: expected %s, found %s",
		e.Index, e.Expected, e.Found)
}

// InvalidIndexError reports a constant-pool index that is out of range or
// points at an empty (sentinel) slot.
type InvalidIndexError struct {
	Index uint16
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("invalid constant pool index %d", e.Index)
}

// UnknownOpcodeError reports an opcode byte this codec does not decode,
// e.g. tableswitch, lookupswitch or wide.
type UnknownOpcodeError struct {
	Offset int
	Opcode byte
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unsupported opcode 0x%02x at code offset %d", e.Opcode, e.Offset)
}

// MalformedError wraps a generic structural mismatch with the context in
// which it was detected, e.g. a constant pool entry or a modified UTF-8
// string that fails to decode.
type MalformedError struct {
	Context string
	Cause   error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

func (e *MalformedError) Unwrap() error { return e.Cause }

func malformed(context string, cause error) error {
	return &MalformedError{Context: context, Cause: cause}
}
