// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fstree

import (
	"io/fs"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/treewalk/pkg/traverse"
)

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		"README.md":         {Data: []byte("# hi")},
		"cmd/app/main.go":   {Data: []byte("package main")},
		"pkg/a/a.go":        {Data: []byte("package a")},
		"pkg/b.go":          {Data: []byte("package pkg")},
		".git/HEAD":         {Data: []byte("ref")},
		"pkg/a/.a.go.swp":   {Data: []byte("x")},
		"node_modules/x.js": {Data: []byte("x")},
	}
}

func paths(seq func(func(Entry) bool)) []string {
	var out []string
	for e := range seq {
		out = append(out, e.Path)
	}
	return out
}

func TestTree_DepthFirst(t *testing.T) {
	tree := NewTree(sampleFS())

	assert.Equal(t, []string{
		"README.md",
		"cmd", "cmd/app", "cmd/app/main.go",
		"pkg", "pkg/a", "pkg/a/a.go", "pkg/b.go",
	}, paths(traverse.SearchDepthFirst(tree.Root(), tree.Children)))
	assert.NoError(t, tree.Err())
}

func TestTree_BreadthFirst(t *testing.T) {
	tree := NewTree(sampleFS())

	assert.Equal(t, []string{
		"README.md", "cmd", "pkg",
		"cmd/app", "pkg/a", "pkg/b.go",
		"cmd/app/main.go", "pkg/a/a.go",
	}, paths(traverse.SearchBreadthFirst(tree.Root(), tree.Children)))
}

func TestTree_Recursive(t *testing.T) {
	tree := NewTree(sampleFS())
	walk, err := traverse.Recursive(slices.Values([]Entry{tree.Root()}), tree.Children)
	require.NoError(t, err)

	got, err := walk.Collect()
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, ".", got[0].Path)
	assert.Len(t, got, 9)
}

func TestTree_CustomIgnore(t *testing.T) {
	tree := NewTree(sampleFS(), WithIgnorePatterns("*.go"))

	got := paths(traverse.SearchDepthFirst(tree.Root(), tree.Children))
	assert.Contains(t, got, ".git/HEAD")
	assert.NotContains(t, got, "pkg/b.go")
}

func TestTree_ReadErrorsAreCollected(t *testing.T) {
	tree := NewTree(sampleFS())

	children := tree.Children(Entry{Path: "missing", Name: "missing", Dir: true})
	assert.Empty(t, children)

	err := tree.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	tree.Reset()
	assert.NoError(t, tree.Err())
}

func TestEntry_Depth(t *testing.T) {
	assert.Equal(t, 0, Entry{Path: "."}.Depth())
	assert.Equal(t, 1, Entry{Path: "pkg"}.Depth())
	assert.Equal(t, 3, Entry{Path: "pkg/a/a.go"}.Depth())
}
