// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderFixedWidth(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x12, 0x34, 0x56, 0x78, 0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x01})

	u1, err := r.U1()
	require.NoError(t, err)
	require.Equal(t, uint8(0x01), u1)

	u2, err := r.U2()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0203), u2)

	u4, err := r.U4()
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), u4)

	u8, err := r.U8()
	require.NoError(t, err)
	require.Equal(t, uint64(0xCAFEBABE00000001), u8)

	require.True(t, r.IsEmpty())
}

func TestReaderUnexpectedEnd(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.U2()
	require.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestReaderTakeBytesAndDrain(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	got, err := r.TakeBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, got)

	rest := r.Drain()
	require.Equal(t, []byte{3, 4, 5}, rest)
	require.True(t, r.IsEmpty())
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutU1(0x01)
	w.PutU2(0x0203)
	w.PutU4(0x12345678)
	w.PutU8(0xCAFEBABE00000001)

	r := NewReader(w.Bytes())
	u1, _ := r.U1()
	u2, _ := r.U2()
	u4, _ := r.U4()
	u8, _ := r.U8()

	require.Equal(t, uint8(0x01), u1)
	require.Equal(t, uint16(0x0203), u2)
	require.Equal(t, uint32(0x12345678), u4)
	require.Equal(t, uint64(0xCAFEBABE00000001), u8)
}

// TestWriterPutU8LowHalfMask guards against the 0xFFFF masking bug: a Long
// whose low 32 bits exceed 0xFFFF must not be truncated.
func TestWriterPutU8LowHalfMask(t *testing.T) {
	w := NewWriter()
	const v = uint64(0x00000000_ABCD1234)
	w.PutU8(v)

	r := NewReader(w.Bytes())
	got, err := r.U8()
	require.NoError(t, err)
	require.Equal(t, v, got)
}
