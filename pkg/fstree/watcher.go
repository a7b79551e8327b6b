// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fstree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/treewalk/pkg/traverse"
)

// ErrWatcherClosed is returned by Run after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// Op is the kind of change observed on a path.
type Op int

const (
	// OpCreate indicates a file or directory was created.
	OpCreate Op = iota

	// OpWrite indicates a file was modified.
	OpWrite

	// OpRemove indicates a path was deleted.
	OpRemove

	// OpRename indicates a path was renamed away.
	OpRename
)

// String returns the string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is a single observed change.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// ChangeHandler receives a debounced batch, one Change per path.
type ChangeHandler func(ctx context.Context, changes []Change)

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Debounce is how long the directory must stay quiet before a batch is
	// delivered. Default: 200ms
	Debounce time.Duration

	// MinInterval is the minimum time between two handler calls.
	// Default: 1s
	MinInterval time.Duration

	// IgnorePatterns are base-name patterns that are neither watched nor
	// reported. Default: DefaultIgnorePatterns
	IgnorePatterns []string

	// Logger receives watch errors. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultWatcherOptions returns sensible defaults.
func DefaultWatcherOptions() WatcherOptions {
	return WatcherOptions{
		Debounce:       200 * time.Millisecond,
		MinInterval:    time.Second,
		IgnorePatterns: DefaultIgnorePatterns,
		Logger:         slog.Default(),
	}
}

// Watcher reports changes below a directory in debounced batches.
//
// # Description
//
// Every non-ignored directory below root is registered with fsnotify. The
// directories are discovered with the same lazy Tree traversal the CLI
// prints, and directories created later are added as they appear. Events
// are collected until the debounce window passes without new events, then
// handed to the handler. A rate limiter keeps handler calls at least
// MinInterval apart.
//
// # Thread Safety
//
// Run must be called once. The handler is called from the Run goroutine.
type Watcher struct {
	root    string
	opts    WatcherOptions
	handler ChangeHandler
	watcher *fsnotify.Watcher
	tree    *Tree
	limiter *rate.Limiter
}

// NewWatcher creates a watcher for root.
//
// # Inputs
//
//   - root: Directory to watch.
//   - handler: Called with each debounced batch. Must not be nil.
//   - opts: Zero fields take their defaults.
//
// # Outputs
//
//   - *Watcher: Ready to Run. Call Close when done.
//   - error: Non-nil if root is not a directory or fsnotify fails.
func NewWatcher(root string, handler ChangeHandler, opts WatcherOptions) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("change handler is nil")
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	defaults := DefaultWatcherOptions()
	if opts.Debounce <= 0 {
		opts.Debounce = defaults.Debounce
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = defaults.MinInterval
	}
	if opts.IgnorePatterns == nil {
		opts.IgnorePatterns = defaults.IgnorePatterns
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:    root,
		opts:    opts,
		handler: handler,
		watcher: fsw,
		tree:    NewTree(os.DirFS(root), WithIgnorePatterns(opts.IgnorePatterns...), WithLogger(opts.Logger)),
		limiter: rate.NewLimiter(rate.Every(opts.MinInterval), 1),
	}, nil
}

// Close releases the fsnotify watcher. Run returns shortly after.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run watches until ctx is done or the watcher is closed.
//
// A pending batch is dropped on shutdown. Run returns ctx.Err() on
// cancellation and ErrWatcherClosed after Close.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addDirs(w.tree.Root()); err != nil {
		return err
	}

	pending := make(map[string]Change)
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if w.tree.Ignored(filepath.Base(event.Name)) {
				continue
			}

			change := Change{Path: event.Name, Op: convertOp(event.Op), Time: time.Now()}
			pending[change.Path] = change

			if change.Op == OpCreate {
				w.addCreatedDir(event.Name)
			}

			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			w.opts.Logger.Warn("watch error", slog.String("error", err.Error()))

		case <-timerC:
			timer = nil
			timerC = nil

			batch := make([]Change, 0, len(pending))
			for _, c := range pending {
				batch = append(batch, c)
			}
			clear(pending)
			slices.SortFunc(batch, func(a, b Change) int { return a.Time.Compare(b.Time) })

			if err := w.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			w.handler(ctx, batch)
		}
	}
}

// addDirs registers start and every directory below it.
func (w *Watcher) addDirs(start Entry) error {
	w.tree.Reset()
	dirs, err := traverse.Recursive(
		func(yield func(Entry) bool) { yield(start) },
		func(e Entry) []Entry {
			var subdirs []Entry
			for _, c := range w.tree.Children(e) {
				if c.Dir {
					subdirs = append(subdirs, c)
				}
			}
			return subdirs
		},
	)
	if err != nil {
		return err
	}

	for dir := range dirs.All() {
		full := filepath.Join(w.root, filepath.FromSlash(dir.Path))
		if err := w.watcher.Add(full); err != nil {
			return fmt.Errorf("watch %s: %w", full, err)
		}
	}
	if err := w.tree.Err(); err != nil {
		w.opts.Logger.Warn("some directories are not watched", slog.String("error", err.Error()))
	}
	return nil
}

func (w *Watcher) addCreatedDir(name string) {
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return
	}
	entry := Entry{Path: filepath.ToSlash(rel), Name: filepath.Base(name), Dir: true}
	if err := w.addDirs(entry); err != nil {
		w.opts.Logger.Warn("watch new directory failed",
			slog.String("path", name),
			slog.String("error", err.Error()))
	}
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Write):
		return OpWrite
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return OpWrite
	}
}
