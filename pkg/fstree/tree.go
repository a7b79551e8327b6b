// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fstree exposes directory hierarchies to package traverse and
// watches them for changes.
//
// A Tree is read lazily: a directory is listed only when a traversal expands
// it. Read failures cannot travel through a children function, so Tree
// collects them and reports them through Err.
package fstree

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"
)

// DefaultIgnorePatterns are skipped by NewTree unless overridden.
var DefaultIgnorePatterns = []string{".git", "node_modules", ".idea", "*.swp", "*.tmp", "__pycache__"}

// Entry is a file or directory inside a Tree.
type Entry struct {
	// Path is slash-separated and relative to the tree root; the root is ".".
	Path string

	// Name is the base name. The root's name is ".".
	Name string

	// Dir is true for directories.
	Dir bool
}

// Depth returns how many directories separate e from the root.
func (e Entry) Depth() int {
	if e.Path == "." || e.Path == "" {
		return 0
	}
	return strings.Count(e.Path, "/") + 1
}

// Tree lists directories of a file system on demand.
//
// # Thread Safety
//
// Children may be called from several goroutines; the error list is
// guarded by a mutex.
type Tree struct {
	fsys   fs.FS
	ignore []string
	logger *slog.Logger

	mu   sync.Mutex
	errs []error
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithIgnorePatterns replaces the ignore list. Patterns are matched against
// base names with path.Match.
func WithIgnorePatterns(patterns ...string) TreeOption {
	return func(t *Tree) {
		t.ignore = patterns
	}
}

// WithLogger sets the logger used to report unreadable directories.
func WithLogger(logger *slog.Logger) TreeOption {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTree creates a tree over fsys.
func NewTree(fsys fs.FS, opts ...TreeOption) *Tree {
	t := &Tree{
		fsys:   fsys,
		ignore: DefaultIgnorePatterns,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the entry for the tree root.
func (t *Tree) Root() Entry {
	return Entry{Path: ".", Name: ".", Dir: true}
}

// Children lists the entries of a directory in name order.
//
// Files have no children. Ignored names are left out. A directory that
// cannot be read contributes the entries returned before the failure, and
// the failure is recorded for Err.
func (t *Tree) Children(e Entry) []Entry {
	if !e.Dir {
		return nil
	}

	dirEntries, err := fs.ReadDir(t.fsys, e.Path)
	if err != nil {
		t.logger.Warn("read directory failed",
			slog.String("path", e.Path),
			slog.String("error", err.Error()))
		t.mu.Lock()
		t.errs = append(t.errs, fmt.Errorf("read %s: %w", e.Path, err))
		t.mu.Unlock()
	}

	children := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		if t.Ignored(d.Name()) {
			continue
		}
		children = append(children, Entry{
			Path: path.Join(e.Path, d.Name()),
			Name: d.Name(),
			Dir:  d.IsDir(),
		})
	}
	return children
}

// Ignored reports whether a base name matches an ignore pattern.
func (t *Tree) Ignored(name string) bool {
	for _, pattern := range t.ignore {
		if name == pattern {
			return true
		}
		if matched, _ := path.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// Err returns every read failure recorded since the last Reset.
func (t *Tree) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return errors.Join(t.errs...)
}

// Reset clears recorded failures before a new traversal.
func (t *Tree) Reset() {
	t.mu.Lock()
	t.errs = nil
	t.mu.Unlock()
}
