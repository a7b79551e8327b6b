// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package yamltree

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/treewalk/pkg/traverse"
)

const sample = `name: app
ports:
  - 80
  - 443
`

func values(seq func(func(*yaml.Node) bool)) []string {
	var out []string
	for n := range seq {
		if n.Kind == yaml.ScalarNode {
			out = append(out, n.Value)
		} else {
			out = append(out, KindName(n.Kind))
		}
	}
	return out
}

func TestLoad(t *testing.T) {
	t.Run("single document", func(t *testing.T) {
		docs, err := Load(strings.NewReader(sample))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, yaml.DocumentNode, docs[0].Kind)
	})

	t.Run("multiple documents", func(t *testing.T) {
		docs, err := Load(strings.NewReader("a: 1\n---\nb: 2\n"))
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Load(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrNoDocuments)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(strings.NewReader("a: [1, 2\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode yaml document 1")
	})
}

func TestTraversal(t *testing.T) {
	docs, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	t.Run("depth-first", func(t *testing.T) {
		walk, err := traverse.Recursive(slices.Values(docs), Children)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"document", "mapping", "name", "app", "ports", "sequence", "80", "443",
		}, values(walk.All()))
	})

	t.Run("breadth-first", func(t *testing.T) {
		assert.Equal(t, []string{
			"mapping", "name", "app", "ports", "sequence", "80", "443",
		}, values(traverse.SearchBreadthFirst(docs[0], Children)))
	})
}

func TestChildren_AliasIsLeaf(t *testing.T) {
	docs, err := Load(strings.NewReader("base: &b\n  x: 1\nother: *b\n"))
	require.NoError(t, err)

	var aliases int
	for n := range traverse.SearchDepthFirst(docs[0], Children) {
		if n.Kind == yaml.AliasNode {
			aliases++
			assert.Empty(t, Children(n))
		}
	}
	assert.Equal(t, 1, aliases)
	assert.Nil(t, Children(nil))
}

func TestLabel(t *testing.T) {
	docs, err := Load(strings.NewReader("base: &b\n  x: 1\nother: *b\n"))
	require.NoError(t, err)

	mapping := docs[0].Content[0]
	assert.Equal(t, "mapping (1:1)", Label(mapping))
	assert.Equal(t, `scalar "base" !!str (1:1)`, Label(mapping.Content[0]))
	assert.True(t, strings.HasPrefix(Label(mapping.Content[1]), "mapping &b ("))
	assert.True(t, strings.HasPrefix(Label(mapping.Content[3]), "alias *b (3:"))
	assert.Equal(t, "<nil>", Label(nil))

	long := &yaml.Node{Kind: yaml.ScalarNode, Value: strings.Repeat("x", 80), Line: 1, Column: 1}
	assert.Contains(t, Label(long), "…")
}
