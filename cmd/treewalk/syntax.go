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
	"os"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/treewalk/pkg/syntaxtree"
)

func newSyntaxCmd(a *app) *cobra.Command {
	var (
		lang  string
		named bool
	)

	cmd := &cobra.Command{
		Use:   "syntax FILE",
		Short: "Walk the syntax tree of a source file",
		Long: fmt.Sprintf(`Parse FILE with tree-sitter and walk its syntax tree.

The language is taken from --lang or detected from the file extension.
Supported languages: %s.`, strings.Join(syntaxtree.Languages(), ", ")),
		Example: `  treewalk syntax main.go
  treewalk --order bfs syntax --named=false --lang python script`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{err: fmt.Errorf("syntax: expected 1 FILE, got %d", len(args))}
			}
			return nil
		},
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.runSyntax(cmd.Context(), args[0], lang, named)
		}),
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "source language (default: detect from extension)")
	cmd.Flags().BoolVar(&named, "named", true, "only walk named nodes, skipping punctuation")
	return cmd
}

func (a *app) runSyntax(ctx context.Context, path, lang string, named bool) error {
	if lang == "" {
		detected, ok := syntaxtree.DetectLanguage(path)
		if !ok {
			return &usageError{err: fmt.Errorf("syntax: cannot detect language of %s, use --lang", path)}
		}
		lang = detected
	}
	lang = strings.ToLower(lang)
	if _, err := syntaxtree.Grammar(lang); err != nil {
		return &usageError{err: err}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tree, err := syntaxtree.Parse(ctx, lang, content)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	defer tree.Close()

	a.logger.Debug("walking syntax tree", "path", path, "lang", lang, "named", named, "bytes", len(content))

	root := tree.RootNode()
	label := func(n *sitter.Node) string {
		return syntaxtree.Label(n, content)
	}
	_, err = printWalk(ctx, a, "syntax", slices.Values([]*sitter.Node{root}), syntaxtree.Children(named), label)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
