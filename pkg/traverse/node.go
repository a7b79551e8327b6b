// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package traverse

import (
	"iter"
	"reflect"
	"slices"
)

// ChildrenFunc returns the immediate successors of node, in the order they
// should be visited. A nil or empty slice means node is a leaf.
//
// The function is called once per expanded node on every traversal. It is
// never called with a nil node.
type ChildrenFunc[T any] func(node T) []T

// SeqChildren adapts an accessor that produces a lazy sequence of children.
//
// The sequence is drained into a slice when a node is expanded, since the
// depth-first order needs the children in reverse.
func SeqChildren[T any](fn func(T) iter.Seq[T]) ChildrenFunc[T] {
	if fn == nil {
		return nil
	}
	return func(node T) []T {
		seq := fn(node)
		if seq == nil {
			return nil
		}
		return slices.Collect(seq)
	}
}

// isNil reports whether v is the nil value of a nilable kind.
// Values of non-nilable kinds are never nil.
func isNil[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
