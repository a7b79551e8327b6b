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
	"io"
	"os"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/treewalk/pkg/yamltree"
)

func newYAMLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "yaml FILE...",
		Short: "Walk the nodes of YAML documents",
		Long: `Walk every document in each FILE. Use "-" to read standard input.

Files are parsed concurrently and printed in argument order.`,
		Example: `  treewalk yaml deploy.yaml
  treewalk --order bfs --limit 10 yaml a.yaml b.yaml
  kubectl get pod -o yaml | treewalk yaml -`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &usageError{err: errors.New("yaml: at least one FILE is required")}
			}
			return nil
		},
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.runYAML(cmd.Context(), cmd.InOrStdin(), args)
		}),
	}
}

// loadYAMLFiles parses every file concurrently. The result is indexed like
// paths.
func loadYAMLFiles(ctx context.Context, stdin io.Reader, paths []string) ([][]*yaml.Node, error) {
	docs := make([][]*yaml.Node, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var r io.Reader = stdin
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			nodes, err := yamltree.Load(r)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			docs[i] = nodes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (a *app) runYAML(ctx context.Context, stdin io.Reader, paths []string) error {
	if n := slices.Index(paths, "-"); n >= 0 && slices.Index(paths[n+1:], "-") >= 0 {
		return &usageError{err: errors.New(`yaml: "-" may be given only once`)}
	}

	docs, err := loadYAMLFiles(ctx, stdin, paths)
	if err != nil {
		return err
	}

	for i, path := range paths {
		if len(paths) > 1 {
			if err := a.printer.Heading(path); err != nil {
				return err
			}
		}
		a.logger.Debug("walking yaml", "path", path, "documents", len(docs[i]))
		if _, err := printWalk(ctx, a, "yaml", slices.Values(docs[i]), yamltree.Children, yamltree.Label); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
