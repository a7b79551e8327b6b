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
	"slices"
)

// Walk is a re-runnable traversal over a forest of roots.
//
// Created by Recursive or RecursiveWith. Every call to All starts a new
// traversal from the roots; nothing from an earlier run is reused.
//
// # Thread Safety
//
// A Walk is meant for one consumer at a time. Err reports the outcome of
// the most recent iteration, so concurrent iterations would race on it.
type Walk[T any] struct {
	source      iter.Seq[T]
	getChildren ChildrenFunc[T]
	algorithm   Algorithm
	err         error
}

// Recursive enumerates every root of source followed by its descendants,
// depth-first.
//
// It is RecursiveWith(source, getChildren, DepthFirstSearch).
func Recursive[T any](source iter.Seq[T], getChildren ChildrenFunc[T]) (*Walk[T], error) {
	return RecursiveWith(source, getChildren, DepthFirstSearch)
}

// RecursiveWith enumerates every root of source together with everything
// reachable from it.
//
// Description:
//
//	DepthFirstSearch: for each root in input order, yields the root and
//	then its complete SearchDepthFirst expansion before moving on to the
//	next root.
//
//	BreadthFirstSearch: yields all roots in input order first, then the
//	complete SearchBreadthFirst expansion of each root in turn. This is
//	not a level-order walk of the whole forest; the second level of root
//	two comes after every level of root one.
//
// Inputs:
//
//	source - Roots to start from. A nil source is an empty forest. Roots
//	    are yielded even when nil; a nil root simply has no descendants.
//	getChildren - Children accessor. Must not be nil.
//	algorithm - Search order. Checked when the walk is iterated.
//
// Outputs:
//
//	*Walk[T] - The walk. Range over Walk.All to consume it.
//	error - ErrNilChildren when getChildren is nil. Reported here, before
//	    any iteration.
//
// Example:
//
//	walk, err := traverse.RecursiveWith(slices.Values(roots), children, traverse.BreadthFirstSearch)
//	if err != nil {
//	    return fmt.Errorf("build walk: %w", err)
//	}
//	for n := range walk.All() {
//	    fmt.Println(n.Name)
//	}
//	if err := walk.Err(); err != nil {
//	    return err
//	}
//
// Limitations:
//
//	In breadth-first mode source is ranged over once; the roots are kept
//	in memory until their expansions have been produced.
func RecursiveWith[T any](source iter.Seq[T], getChildren ChildrenFunc[T], algorithm Algorithm) (*Walk[T], error) {
	if getChildren == nil {
		return nil, ErrNilChildren
	}
	return &Walk[T]{
		source:      source,
		getChildren: getChildren,
		algorithm:   algorithm,
	}, nil
}

// Algorithm returns the search order of the walk.
func (w *Walk[T]) Algorithm() Algorithm {
	return w.algorithm
}

// All returns the lazy sequence of roots and descendants.
//
// An unsupported algorithm produces an empty sequence and sets Err to
// ErrUnsupportedAlgorithm once the sequence is ranged over.
func (w *Walk[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		w.err = nil
		switch w.algorithm {
		case BreadthFirstSearch:
			w.breadthFirst(yield)
		case DepthFirstSearch:
			w.depthFirst(yield)
		default:
			w.err = fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, w.algorithm)
		}
	}
}

// Err returns the error from the most recent iteration of All, if any.
func (w *Walk[T]) Err() error {
	return w.err
}

// Collect drains the walk into a slice.
func (w *Walk[T]) Collect() ([]T, error) {
	nodes := slices.Collect(w.All())
	return nodes, w.err
}

func (w *Walk[T]) depthFirst(yield func(T) bool) {
	if w.source == nil {
		return
	}
	for root := range w.source {
		if !yield(root) {
			return
		}
		for node := range SearchDepthFirst(root, w.getChildren) {
			if !yield(node) {
				return
			}
		}
	}
}

func (w *Walk[T]) breadthFirst(yield func(T) bool) {
	if w.source == nil {
		return
	}
	var roots []T
	for root := range w.source {
		if !yield(root) {
			return
		}
		roots = append(roots, root)
	}
	for _, root := range roots {
		for node := range SearchBreadthFirst(root, w.getChildren) {
			if !yield(node) {
				return
			}
		}
	}
}
