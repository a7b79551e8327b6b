// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package traverse

import "errors"

// Sentinel errors for traversal operations.
var (
	// ErrNilChildren is returned when a traversal is constructed without a
	// ChildrenFunc. It is reported before any node is produced.
	ErrNilChildren = errors.New("children function is nil")

	// ErrUnsupportedAlgorithm is returned for an Algorithm value other than
	// BreadthFirstSearch or DepthFirstSearch.
	ErrUnsupportedAlgorithm = errors.New("unsupported search algorithm")
)
