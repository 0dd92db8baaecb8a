// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// FuzzParseClassRoundTrip replaces the teacher pack's go-fuzz-based corpus
// driver with Go's native fuzzing support: seed with a handful of valid
// class files built through Write, then let the fuzzer mutate the bytes.
// Parse must never panic on malformed input; when it succeeds, Write(Parse(x))
// must itself parse back without error and with the same this_class.
import "testing"

func FuzzParseClassRoundTrip(f *testing.F) {
	f.Add(Write(minimalClass()))
	f.Add(Write(&Class{
		Version:     Version{Magic: MagicNumber, Major: 61},
		AccessFlags: DecodeFlags(ScopeClass, AccPublic),
		ThisClass:   "java/lang/Object",
	}))
	f.Add([]byte{0xCA, 0xFE, 0xBA, 0xBE})

	f.Fuzz(func(t *testing.T, data []byte) {
		c, err := Parse(data, nil)
		if err != nil {
			return
		}
		rewritten := Write(c)
		again, err := Parse(rewritten, nil)
		if err != nil {
			t.Fatalf("Parse(Write(Parse(data))) failed: %v", err)
		}
		if again.ThisClass != c.ThisClass {
			t.Fatalf("this_class drifted across round trip: %q vs %q", again.ThisClass, c.ThisClass)
		}
	})
}
