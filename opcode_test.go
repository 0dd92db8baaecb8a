// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeOpcodesNoOperand(t *testing.T) {
	pool := newPool()
	instrs, err := decodeOpcodes([]byte{0x2a, 0xb1}, pool) // aload_0, return
	require.NoError(t, err)
	require.Len(t, instrs, 2)
	require.Equal(t, "aload_0", instrs[0].Mnemonic)
	require.Equal(t, "return", instrs[1].Mnemonic)
}

func TestDecodeOpcodesBipush(t *testing.T) {
	pool := newPool()
	instrs, err := decodeOpcodes([]byte{0x10, 0xFF}, pool) // bipush -1
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	require.Equal(t, "bipush", instrs[0].Mnemonic)
	require.Equal(t, []int32{-1}, instrs[0].Ints)
}

func TestDecodeOpcodesSipushPositiveAndNegative(t *testing.T) {
	pool := newPool()
	instrs, err := decodeOpcodes([]byte{0x11, 0x7F, 0xFF, 0x11, 0x80, 0x00}, pool) // sipush 32767; sipush -32768
	require.NoError(t, err)
	require.Equal(t, []int32{32767}, instrs[0].Ints)
	require.Equal(t, []int32{-32768}, instrs[1].Ints)
}

func TestDecodeOpcodesIinc(t *testing.T) {
	pool := newPool()
	instrs, err := decodeOpcodes([]byte{0x84, 0x01, 0xFF}, pool) // iinc 1, -1
	require.NoError(t, err)
	require.Equal(t, []int32{1, -1}, instrs[0].Ints)
}

func TestDecodeOpcodesUnknownOpcode(t *testing.T) {
	pool := newPool()
	_, err := decodeOpcodes([]byte{0xAA}, pool) // tableswitch, unsupported
	var unknown *UnknownOpcodeError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, byte(0xAA), unknown.Opcode)
}

func TestOpcodeClassRefRoundTrip(t *testing.T) {
	pool := newPool()
	idx := pool.PushClass("com/example/Widget")
	w := NewWriter()
	w.PutU1(0xbb) // new
	w.PutU2(idx)

	instrs, err := decodeOpcodes(w.Bytes(), pool)
	require.NoError(t, err)
	require.Equal(t, "new", instrs[0].Mnemonic)
	require.Equal(t, "com/example/Widget", instrs[0].Class.Name)

	out := NewWriter()
	encodeOpcodes(out, instrs, newPool())
	require.Equal(t, w.Bytes()[0], out.Bytes()[0])
}

func TestOpcodeFieldRefRoundTrip(t *testing.T) {
	encodePool := newPool()
	fieldIdx := encodePool.PushFieldref("com/example/Widget", "count", "I")
	w := NewWriter()
	w.PutU1(0xb2) // getstatic
	w.PutU2(fieldIdx)

	decodePool := encodePool
	instrs, err := decodeOpcodes(w.Bytes(), decodePool)
	require.NoError(t, err)
	require.Equal(t, "getstatic", instrs[0].Mnemonic)
	require.Equal(t, "com/example/Widget", instrs[0].Field.Class.Name)
	require.Equal(t, "count", instrs[0].Field.Name)
	require.Equal(t, "I", instrs[0].Field.Descriptor)

	reencodePool := newPool()
	out := NewWriter()
	encodeOpcodes(out, instrs, reencodePool)
	reDecoded, err := decodeOpcodes(out.Bytes(), reencodePool)
	require.NoError(t, err)
	require.Equal(t, instrs, reDecoded)
}

func TestOpcodeInvokeInterfaceRoundTrip(t *testing.T) {
	pool := newPool()
	idx := pool.PushInterfaceMethodref("com/example/Widget", "run", "()V")
	w := NewWriter()
	w.PutU1(0xb9) // invokeinterface
	w.PutU2(idx)
	w.PutU1(1) // count
	w.PutU1(0) // reserved

	instrs, err := decodeOpcodes(w.Bytes(), pool)
	require.NoError(t, err)
	require.Equal(t, "invokeinterface", instrs[0].Mnemonic)
	require.Equal(t, uint8(1), instrs[0].InterfaceCount)
	require.Equal(t, "run", instrs[0].InterfaceMethod.Name)

	reencodePool := newPool()
	out := NewWriter()
	encodeOpcodes(out, instrs, reencodePool)
	reDecoded, err := decodeOpcodes(out.Bytes(), reencodePool)
	require.NoError(t, err)
	require.Equal(t, instrs, reDecoded)
}

func TestOpcodeMultianewarrayRoundTrip(t *testing.T) {
	pool := newPool()
	idx := pool.PushClass("[[Ljava/lang/String;")
	w := NewWriter()
	w.PutU1(0xc5) // multianewarray
	w.PutU2(idx)
	w.PutU1(2) // dimensions

	instrs, err := decodeOpcodes(w.Bytes(), pool)
	require.NoError(t, err)
	require.Equal(t, uint8(2), instrs[0].Dimensions)
	require.Equal(t, "[[Ljava/lang/String;", instrs[0].Class.Name)

	reencodePool := newPool()
	out := NewWriter()
	encodeOpcodes(out, instrs, reencodePool)
	reDecoded, err := decodeOpcodes(out.Bytes(), reencodePool)
	require.NoError(t, err)
	require.Equal(t, instrs, reDecoded)
}

func TestMnemonicToTagCoversOpcodeTable(t *testing.T) {
	for tag, spec := range opcodeTable {
		got, ok := mnemonicToTag[spec.mnemonic]
		require.True(t, ok, "mnemonic %s missing from reverse index", spec.mnemonic)
		require.Equal(t, tag, got)
	}
}
