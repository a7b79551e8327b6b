// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package traverse

import "iter"

// FindAll searches below source and keeps the nodes whose dynamic type is U.
//
// U is usually a concrete type or a narrower interface than T:
//
//	buttons, err := traverse.FindAll[*Button](window, widgetChildren, traverse.DepthFirstSearch)
//
// Nodes that are not a U are still expanded, so matches deeper in the tree
// are found. An unsupported algorithm returns ErrUnsupportedAlgorithm.
func FindAll[U any, T any](source T, getChildren ChildrenFunc[T], algorithm Algorithm) (iter.Seq[U], error) {
	seq, err := Search(source, getChildren, algorithm)
	if err != nil {
		return nil, err
	}
	return func(yield func(U) bool) {
		for node := range seq {
			match, ok := any(node).(U)
			if !ok {
				continue
			}
			if !yield(match) {
				return
			}
		}
	}, nil
}

// Ancestors follows getParent upwards from start, yielding each parent.
//
// start itself is not yielded. The sequence ends at the first nil parent,
// so T must be a nilable type for it to terminate.
func Ancestors[T any](start T, getParent func(T) T) iter.Seq[T] {
	return func(yield func(T) bool) {
		if isNil(start) {
			return
		}
		for parent := getParent(start); !isNil(parent); parent = getParent(parent) {
			if !yield(parent) {
				return
			}
		}
	}
}

// FindAncestor returns the nearest ancestor of start whose dynamic type is U.
func FindAncestor[U any, T any](start T, getParent func(T) T) (U, bool) {
	for parent := range Ancestors(start, getParent) {
		if match, ok := any(parent).(U); ok {
			return match, true
		}
	}
	var zero U
	return zero, false
}
