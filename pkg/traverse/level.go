// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package traverse

import "iter"

// Leveled pairs a node with its distance from the root it was reached from.
// Roots have depth 0.
type Leveled[T any] struct {
	Node  T
	Depth int
}

// Level wraps each root at depth 0.
func Level[T any](roots iter.Seq[T]) iter.Seq[Leveled[T]] {
	if roots == nil {
		return nil
	}
	return func(yield func(Leveled[T]) bool) {
		for root := range roots {
			if !yield(Leveled[T]{Node: root}) {
				return
			}
		}
	}
}

// WithDepth lifts getChildren to Leveled nodes, so a traversal can report
// how deep each node sits without changing the visiting order.
//
// Leveled is a struct and therefore never nil. To keep nil handling
// identical to the unwrapped traversal, nil children are dropped and a
// wrapped nil node has no children.
func WithDepth[T any](getChildren ChildrenFunc[T]) ChildrenFunc[Leveled[T]] {
	if getChildren == nil {
		return nil
	}
	return func(parent Leveled[T]) []Leveled[T] {
		if isNil(parent.Node) {
			return nil
		}
		children := getChildren(parent.Node)
		leveled := make([]Leveled[T], 0, len(children))
		for _, child := range children {
			if isNil(child) {
				continue
			}
			leveled = append(leveled, Leveled[T]{Node: child, Depth: parent.Depth + 1})
		}
		return leveled
	}
}
