// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package traverse

import (
	"fmt"
	"strings"
)

// Algorithm selects the order in which a graph is searched.
type Algorithm int

const (
	// BreadthFirstSearch yields nodes level by level.
	BreadthFirstSearch Algorithm = iota

	// DepthFirstSearch yields nodes in pre-order; a node's whole subtree is
	// yielded before its next sibling.
	DepthFirstSearch
)

// String returns the human-readable name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case BreadthFirstSearch:
		return "breadth-first"
	case DepthFirstSearch:
		return "depth-first"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// Valid reports whether a is one of the defined algorithms.
func (a Algorithm) Valid() bool {
	return a == BreadthFirstSearch || a == DepthFirstSearch
}

// ParseAlgorithm converts a name into an Algorithm.
//
// Accepted names, compared case-insensitively after trimming spaces:
//
//	bfs, breadth-first, breadthfirst
//	dfs, depth-first, depthfirst
//
// Any other name returns ErrUnsupportedAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bfs", "breadth-first", "breadthfirst":
		return BreadthFirstSearch, nil
	case "dfs", "depth-first", "depthfirst":
		return DepthFirstSearch, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
}
