// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// This file is the Go expression of the resolve/unresolve protocol: "to
// decode a raw, index-bearing record I need a shared *Pool; decoding yields
// a self-contained resolved record. To encode the resolved record I need a
// mutable *Pool to intern into, which yields a fresh raw record." Go has no
// trait system to declare this as a single generic interface method pair
// across unrelated concrete types (Field, Method, Attribute, Opcode each
// resolve against the pool differently), so each concrete pair gets its own
// resolve<Type>/unresolve<Type> function — a table-driven dispatcher, per
// the design notes, playing the role the source's macro/derive plays.
//
// What generics over Go *do* buy us is the "lifted automatically over
// ordered sequences" half of the protocol: resolving or unresolving a slice
// is the same shape regardless of element type.

// resolveAll resolves every element of raw in order, stopping at the first
// error. Interning order on the reverse path is caller-visible (it affects
// the indices a fresh pool assigns) but never affects round-trip
// correctness, per the design notes on deduplication.
func resolveAll[T any, R any](raw []T, resolve func(T) (R, error)) ([]R, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]R, 0, len(raw))
	for _, item := range raw {
		r, err := resolve(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// unresolveAll unresolves every element of resolved in order (left to
// right), interning each into the pool as it goes.
func unresolveAll[T any, R any](resolved []T, unresolve func(T) R) []R {
	out := make([]R, 0, len(resolved))
	for _, item := range resolved {
		out = append(out, unresolve(item))
	}
	return out
}
