// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "encoding/binary"

// Reader is a finite byte buffer plus a read cursor, advanced left to right.
// It has no seek/rewind operation by design: the resolve/unresolve protocol
// always walks a class file or a nested attribute blob forward, once. To
// start over, construct a new Reader over the same bytes.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential big-endian reads. The Reader does not
// copy data; callers must not mutate the slice while a Reader is in use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len reports how many bytes remain unread.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// IsEmpty reports whether the cursor has reached the end of the buffer.
func (r *Reader) IsEmpty() bool { return r.Len() == 0 }

// TakeBytes reads exactly n bytes and advances the cursor, or fails with
// ErrUnexpectedEnd if fewer than n bytes remain.
func (r *Reader) TakeBytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, ErrUnexpectedEnd
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Drain returns every remaining byte and empties the reader.
func (r *Reader) Drain() []byte {
	b := r.data[r.pos:]
	r.pos = len(r.data)
	return b
}

// U1 reads one big-endian byte.
func (r *Reader) U1() (uint8, error) {
	b, err := r.TakeBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U2 reads a big-endian 16-bit unsigned integer.
func (r *Reader) U2() (uint16, error) {
	b, err := r.TakeBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U4 reads a big-endian 32-bit unsigned integer.
func (r *Reader) U4() (uint32, error) {
	b, err := r.TakeBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// U8 reads high/low 32-bit halves and combines them the way the JVM spec
// lays out Long and Double constants: (high << 32) | low.
func (r *Reader) U8() (uint64, error) {
	hi, err := r.U4()
	if err != nil {
		return 0, err
	}
	lo, err := r.U4()
	if err != nil {
		return 0, err
	}
	return (uint64(hi) << 32) | uint64(lo), nil
}

// Writer is an append-only big-endian byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteByte appends a single byte. Present to satisfy io.ByteWriter.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutU1 appends one byte.
func (w *Writer) PutU1(v uint8) {
	w.buf = append(w.buf, v)
}

// PutU2 appends a big-endian 16-bit unsigned integer.
func (w *Writer) PutU2(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutU4 appends a big-endian 32-bit unsigned integer.
func (w *Writer) PutU4(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutU8 splits v into high/low 32-bit halves, JVM Long/Double style.
//
// The low half must be masked with 0xFFFFFFFF, not 0xFFFF: a narrower mask
// truncates any Long/Double whose low 32 bits exceed 0xFFFF, corrupting the
// written value. See DESIGN.md for the source of this caveat.
func (w *Writer) PutU8(v uint64) {
	hi := uint32((v >> 32) & 0xFFFFFFFF)
	lo := uint32(v & 0xFFFFFFFF)
	w.PutU4(hi)
	w.PutU4(lo)
}

// Bytes finalizes the writer and returns the accumulated byte vector. The
// Writer remains usable afterwards; Bytes does not reset it.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }
