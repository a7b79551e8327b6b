// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package traverse

import (
	"fmt"
	"iter"
)

// SearchBreadthFirst walks the graph below source in level order.
//
// Description:
//
//	Seeds a FIFO queue with the children of source, then repeatedly takes
//	the front node, yields it and appends its children to the queue. All
//	children of source come before any grandchild, and siblings keep the
//	order getChildren returned them in. source itself is not yielded.
//
// Inputs:
//
//	source - Starting node. A nil source yields an empty sequence.
//	getChildren - Children accessor. Calling the sequence with a nil
//	    getChildren panics on first use.
//
// Outputs:
//
//	iter.Seq[T] - Lazy sequence of reachable nodes. Each range over it
//	    performs a fresh traversal.
//
// Example:
//
//	for n := range traverse.SearchBreadthFirst(root, children) {
//	    if n.Name == target {
//	        break // no further children are requested
//	    }
//	}
//
// Limitations:
//
//	No visited set is kept; see the package documentation on cycles.
func SearchBreadthFirst[T any](source T, getChildren ChildrenFunc[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		if isNil(source) {
			return
		}

		queue := append([]T(nil), getChildren(source)...)
		for len(queue) > 0 {
			current := queue[0]
			var zero T
			queue[0] = zero
			queue = queue[1:]

			// nil occupies a slot but is never expanded
			if isNil(current) {
				continue
			}
			if !yield(current) {
				return
			}

			queue = append(queue, getChildren(current)...)
		}
	}
}

// SearchDepthFirst walks the graph below source in pre-order.
//
// Description:
//
//	Pushes the children of source onto a LIFO stack in reverse so the first
//	child is on top, then repeatedly pops a node, yields it and pushes its
//	children the same way. A node's whole subtree is yielded before its next
//	sibling. source itself is not yielded.
//
// Inputs:
//
//	source - Starting node. A nil source yields an empty sequence.
//	getChildren - Children accessor. Calling the sequence with a nil
//	    getChildren panics on first use.
//
// Outputs:
//
//	iter.Seq[T] - Lazy sequence of reachable nodes. Each range over it
//	    performs a fresh traversal.
func SearchDepthFirst[T any](source T, getChildren ChildrenFunc[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		if isNil(source) {
			return
		}

		stack := pushReversed(nil, getChildren(source))
		for len(stack) > 0 {
			top := len(stack) - 1
			current := stack[top]
			var zero T
			stack[top] = zero
			stack = stack[:top]

			if isNil(current) {
				continue
			}
			if !yield(current) {
				return
			}

			stack = pushReversed(stack, getChildren(current))
		}
	}
}

// Search walks the graph below source with the given algorithm.
//
// An algorithm other than BreadthFirstSearch or DepthFirstSearch is rejected
// immediately with ErrUnsupportedAlgorithm.
func Search[T any](source T, getChildren ChildrenFunc[T], algorithm Algorithm) (iter.Seq[T], error) {
	switch algorithm {
	case BreadthFirstSearch:
		return SearchBreadthFirst(source, getChildren), nil
	case DepthFirstSearch:
		return SearchDepthFirst(source, getChildren), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
}

func pushReversed[T any](stack []T, children []T) []T {
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, children[i])
	}
	return stack
}
