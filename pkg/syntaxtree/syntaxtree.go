// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package syntaxtree exposes tree-sitter syntax trees to package traverse.
//
// # Thread Safety
//
// Parse creates a new parser per call and is safe for concurrent use. A
// returned tree must be closed by the caller and must not be walked after
// Close.
package syntaxtree

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/AleutianAI/treewalk/pkg/traverse"
)

// Supported language names.
const (
	LangGo         = "go"
	LangPython     = "python"
	LangJavaScript = "javascript"
)

var (
	// ErrUnsupportedLanguage is returned for a language without a grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrEmptyTree is returned when the parser produced no root node.
	ErrEmptyTree = errors.New("parser returned no root node")
)

// Languages lists the supported language names.
func Languages() []string {
	return []string{LangGo, LangPython, LangJavaScript}
}

// Grammar returns the tree-sitter grammar for a language name.
func Grammar(lang string) (*sitter.Language, error) {
	switch strings.ToLower(lang) {
	case LangGo, "golang":
		return golang.GetLanguage(), nil
	case LangPython, "py":
		return python.GetLanguage(), nil
	case LangJavaScript, "js":
		return javascript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
}

// DetectLanguage infers the language from a file extension.
func DetectLanguage(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return LangGo, true
	case ".py", ".pyi":
		return LangPython, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	default:
		return "", false
	}
}

// Parse builds a syntax tree for content.
//
// Description:
//
//	Source with syntax errors still parses; the affected ranges show up as
//	ERROR nodes and the root reports HasError.
//
// Inputs:
//
//	ctx - Cancels a long parse.
//	lang - Language name, see Languages.
//	content - Source text. Must stay alive while the tree is walked since
//	    Label reads node text from it.
//
// Outputs:
//
//	*sitter.Tree - The tree. Caller must call Close.
//	error - ErrUnsupportedLanguage, ErrEmptyTree or a parser failure.
func Parse(ctx context.Context, lang string, content []byte) (*sitter.Tree, error) {
	grammar, err := Grammar(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	if tree.RootNode() == nil {
		tree.Close()
		return nil, ErrEmptyTree
	}
	return tree, nil
}

// Children returns a children function over syntax nodes.
//
// With named set, anonymous nodes such as punctuation and keywords are
// skipped and only named nodes are visited.
func Children(named bool) traverse.ChildrenFunc[*sitter.Node] {
	if named {
		return func(n *sitter.Node) []*sitter.Node {
			count := int(n.NamedChildCount())
			children := make([]*sitter.Node, 0, count)
			for i := 0; i < count; i++ {
				children = append(children, n.NamedChild(i))
			}
			return children
		}
	}
	return func(n *sitter.Node) []*sitter.Node {
		count := int(n.ChildCount())
		children := make([]*sitter.Node, 0, count)
		for i := 0; i < count; i++ {
			children = append(children, n.Child(i))
		}
		return children
	}
}

// Parent returns the parent of n, for use with traverse.Ancestors.
func Parent(n *sitter.Node) *sitter.Node {
	return n.Parent()
}

// Label describes n on a single line, e.g. `identifier "main" (3:6)`.
// Leaf text is included and truncated; positions are 1-based.
func Label(n *sitter.Node, content []byte) string {
	if n == nil {
		return "<nil>"
	}

	start := n.StartPoint()
	label := n.Type()
	if n.ChildCount() == 0 {
		label += fmt.Sprintf(" %q", truncate(n.Content(content), 40))
	}
	return fmt.Sprintf("%s (%d:%d)", label, start.Row+1, start.Column+1)
}

// truncate shortens s to limit runes so multi-byte characters stay whole.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
