// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/treewalk/pkg/fstree"
	"github.com/AleutianAI/treewalk/pkg/telemetry"
)

func newDirCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "dir [PATH]",
		Short: "Walk a directory tree",
		Long: `Walk the files and directories below PATH (default ".").

Names matching the ignore patterns (watch.ignore in the config file) are
skipped. With --watch the tree is printed again after every batch of
changes until interrupted.`,
		Example: `  treewalk dir
  treewalk --order bfs --limit 50 dir ./src
  treewalk dir . --watch --metrics-addr 127.0.0.1:9464`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return &usageError{err: fmt.Errorf("dir: expected at most 1 PATH, got %d", len(args))}
			}
			return nil
		},
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return a.runDir(cmd.Context(), root, watch)
		}),
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "print the tree again whenever it changes")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address while watching")
	return cmd
}

func (a *app) runDir(ctx context.Context, root string, watch bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &usageError{err: fmt.Errorf("dir: %s is not a directory", root)}
	}

	tree := fstree.NewTree(os.DirFS(root),
		fstree.WithIgnorePatterns(a.cfg.Watch.Ignore...),
		fstree.WithLogger(a.logger.Slog()))

	if err := a.printTree(ctx, root, tree); err != nil {
		return err
	}
	if !watch {
		if a.cfg.Watch.MetricsAddr != "" {
			a.logger.Warn("metrics address ignored without --watch", "addr", a.cfg.Watch.MetricsAddr)
		}
		return nil
	}
	return a.watchDir(ctx, root, tree)
}

// printTree prints one walk of tree. Unreadable directories are reported
// after the listing and do not fail the walk.
func (a *app) printTree(ctx context.Context, root string, tree *fstree.Tree) error {
	tree.Reset()
	label := func(e fstree.Entry) string {
		switch {
		case e.Path == ".":
			return root
		case e.Dir:
			return e.Name + "/"
		default:
			return e.Name
		}
	}

	roots := slices.Values([]fstree.Entry{tree.Root()})
	if _, err := printWalk(ctx, a, "dir", roots, tree.Children, label); err != nil {
		return err
	}
	if err := tree.Err(); err != nil {
		a.logger.Warn("some directories could not be read", "error", err)
	}
	return nil
}

func (a *app) watchDir(ctx context.Context, root string, tree *fstree.Tree) error {
	handler := func(ctx context.Context, changes []fstree.Change) {
		a.logger.Info("tree changed", "changes", len(changes), "first", changes[0].Path, "op", changes[0].Op.String())
		if err := a.printer.Heading(fmt.Sprintf("%s (%d changes)", time.Now().Format(time.TimeOnly), len(changes))); err != nil {
			a.logger.Error("write output failed", "error", err)
			return
		}
		if err := a.printTree(ctx, root, tree); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("walk failed", "error", err)
		}
	}

	watcher, err := fstree.NewWatcher(root, handler, fstree.WatcherOptions{
		Debounce:       a.cfg.Watch.Debounce,
		MinInterval:    a.cfg.Watch.MinInterval,
		IgnorePatterns: a.cfg.Watch.Ignore,
		Logger:         a.logger.Slog(),
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	g, ctx := errgroup.WithContext(ctx)

	if addr := a.cfg.Watch.MetricsAddr; addr != "" {
		srv, ln, err := a.metricsServer(addr)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		a.logger.Info("watching", "root", root)
		return watcher.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// metricsServer listens on addr before returning so bind errors surface
// immediately.
func (a *app) metricsServer(addr string) (*http.Server, net.Listener, error) {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		return nil, nil, errors.New("metrics server: prometheus exporter is not initialized")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics server: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", handler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	a.logger.Info("serving metrics", "addr", ln.Addr().String())
	return &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, ln, nil
}
