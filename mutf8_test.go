// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModifiedUTF8NullByteEncoding(t *testing.T) {
	encoded := encodeModifiedUTF8("a\x00b")
	require.Equal(t, []byte{'a', 0xC0, 0x80, 'b'}, encoded)

	decoded, err := decodeModifiedUTF8(encoded)
	require.NoError(t, err)
	require.Equal(t, "a\x00b", decoded)
}

func TestModifiedUTF8ASCIIRoundTrip(t *testing.T) {
	s := "hello, world"
	decoded, err := decodeModifiedUTF8(encodeModifiedUTF8(s))
	require.NoError(t, err)
	require.Equal(t, s, decoded)
}

func TestModifiedUTF8TwoByteRangeRoundTrip(t *testing.T) {
	s := "café" // e-acute, U+00E9, needs the 2-byte form
	decoded, err := decodeModifiedUTF8(encodeModifiedUTF8(s))
	require.NoError(t, err)
	require.Equal(t, s, decoded)
}

func TestModifiedUTF8BMPThreeByteRoundTrip(t *testing.T) {
	s := "中文" // Chinese characters, 3-byte range
	decoded, err := decodeModifiedUTF8(encodeModifiedUTF8(s))
	require.NoError(t, err)
	require.Equal(t, s, decoded)
}

func TestModifiedUTF8SupplementaryCharSurrogatePair(t *testing.T) {
	s := "\U0001F600" // outside the BMP, must become two 3-byte surrogate halves
	encoded := encodeModifiedUTF8(s)
	require.Len(t, encoded, 6) // two 3-byte sequences, not one 4-byte one

	decoded, err := decodeModifiedUTF8(encoded)
	require.NoError(t, err)
	require.Equal(t, s, decoded)
}

func TestModifiedUTF8TruncatedTwoByteSequence(t *testing.T) {
	_, err := decodeModifiedUTF8([]byte{0xC2})
	require.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestModifiedUTF8TruncatedThreeByteSequence(t *testing.T) {
	_, err := decodeModifiedUTF8([]byte{0xE4, 0xB8})
	require.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestModifiedUTF8BadLeadByte(t *testing.T) {
	_, err := decodeModifiedUTF8([]byte{0xFF})
	var badTag *BadTagError
	require.ErrorAs(t, err, &badTag)
}

func TestModifiedUTF8UnpairedSurrogateHalf(t *testing.T) {
	// 0xED 0xA0 0x80 is the 3-byte encoding of U+D800, a lone high surrogate
	// with no low-surrogate partner following it.
	_, err := decodeModifiedUTF8([]byte{0xED, 0xA0, 0x80})
	var badTag *BadTagError
	require.ErrorAs(t, err, &badTag)
}
