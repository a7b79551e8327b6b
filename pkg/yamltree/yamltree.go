// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package yamltree exposes YAML documents as trees for package traverse.
//
// Documents are decoded into yaml.v3 node trees. Mapping nodes list keys and
// values as alternating children, the same layout yaml.Node.Content uses.
// Alias nodes are treated as leaves so anchors that refer back to an
// enclosing node cannot make a traversal loop.
package yamltree

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoDocuments is returned by Load when the input holds no YAML document.
var ErrNoDocuments = errors.New("no yaml documents")

// Load decodes every document in r.
//
// Each returned node is a yaml.DocumentNode. An input that is empty or only
// holds comments returns ErrNoDocuments.
func Load(r io.Reader) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(r)

	var docs []*yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode yaml document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, &doc)
	}

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// Children returns the content nodes of n. Scalars and aliases have none.
func Children(n *yaml.Node) []*yaml.Node {
	if n == nil || n.Kind == yaml.AliasNode {
		return nil
	}
	return n.Content
}

// Label describes n on a single line for listings.
//
//	mapping (2:1)
//	scalar "name" !!str (2:1)
//	alias *defaults (9:5)
func Label(n *yaml.Node) string {
	if n == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString(KindName(n.Kind))

	switch n.Kind {
	case yaml.ScalarNode:
		b.WriteString(" ")
		b.WriteString(strconv.Quote(truncate(n.Value, 60)))
		if n.Tag != "" {
			b.WriteString(" ")
			b.WriteString(n.ShortTag())
		}
	case yaml.AliasNode:
		b.WriteString(" *")
		b.WriteString(n.Value)
	}
	if n.Anchor != "" {
		b.WriteString(" &")
		b.WriteString(n.Anchor)
	}

	fmt.Fprintf(&b, " (%d:%d)", n.Line, n.Column)
	return b.String()
}

// KindName returns the lower-case name of a node kind.
func KindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
