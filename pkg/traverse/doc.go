// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package traverse provides lazy breadth-first and depth-first traversal
// over implicit graphs.
//
// A graph is never materialised. It is described by a ChildrenFunc that maps
// a node to its immediate successors, and every traversal pulls nodes on
// demand through an iter.Seq:
//
//	for n := range traverse.SearchDepthFirst(root, func(n *Node) []*Node {
//	    return n.Children
//	}) {
//	    fmt.Println(n.Name)
//	}
//
// # Operations
//
//   - SearchBreadthFirst / SearchDepthFirst: every node reachable from a
//     source, excluding the source itself.
//   - Recursive / RecursiveWith: every root of a sequence followed by its
//     reachable descendants.
//   - FindAll, Ancestors, FindAncestor: typed lookups in both directions.
//
// # Laziness
//
// A node's children are requested only after the consumer has accepted that
// node. Breaking out of a range loop stops the traversal and no further
// ChildrenFunc calls happen. Ranging over the same sequence again repeats
// the whole traversal; nothing is cached.
//
// # Cycles
//
// Visited nodes are not tracked. A node reachable along several paths is
// yielded once per path, and a cyclic graph produces an infinite sequence.
// Callers walking graphs that may contain cycles must bound consumption.
//
// # Null Nodes
//
// For nilable node types (pointers, interfaces, maps, slices, channels,
// functions) a nil node is a dead end: a nil source yields nothing, and a
// nil child is skipped without its children being requested.
//
// # Thread Safety
//
// Every sequence owns its queue or stack, so independent sequences may be
// consumed from different goroutines. A single Walk must not be iterated
// concurrently because it records the error of its latest iteration.
package traverse
