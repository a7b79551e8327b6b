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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var positionSuffix = regexp.MustCompile(` \(\d+:\d+\)$`)

// isolateEnv keeps the developer's config file and environment out of the
// command under test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"TREEWALK_ORDER", "TREEWALK_LIMIT", "TREEWALK_LOG_LEVEL", "TREEWALK_LOG_JSON",
		"TREEWALK_COLOR", "TREEWALK_METRICS_ADDR",
		"OTEL_TRACES_EXPORTER", "OTEL_METRICS_EXPORTER", "NO_COLOR",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	isolateEnv(t)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// listing returns the node lines of out without positions or the summary.
func listing(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if strings.Contains(line, " nodes in ") || strings.HasPrefix(line, "== ") {
			continue
		}
		lines = append(lines, positionSuffix.ReplaceAllString(line, ""))
	}
	return lines
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const nestedYAML = "a:\n  b: 1\nc: 2\n"

func TestYAML_DepthFirst(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nested.yaml", nestedYAML)

	out, _, err := run(t, "yaml", path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"document",
		"  mapping",
		`    scalar "a" !!str`,
		"    mapping",
		`      scalar "b" !!str`,
		`      scalar "1" !!int`,
		`    scalar "c" !!str`,
		`    scalar "2" !!int`,
	}, listing(out))
	assert.Contains(t, out, "8 nodes in ")
}

func TestYAML_BreadthFirst(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nested.yaml", nestedYAML)

	out, _, err := run(t, "--order", "bfs", "yaml", path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"document",
		"  mapping",
		`    scalar "a" !!str`,
		"    mapping",
		`    scalar "c" !!str`,
		`    scalar "2" !!int`,
		`      scalar "b" !!str`,
		`      scalar "1" !!int`,
	}, listing(out))
}

func TestYAML_Limit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nested.yaml", nestedYAML)

	out, _, err := run(t, "--limit", "3", "yaml", path)
	require.NoError(t, err)

	assert.Len(t, listing(out), 3)
	assert.Contains(t, out, "3 nodes in ")
	assert.Contains(t, out, "(limit reached)")
}

func TestYAML_MultipleFilesKeepArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.yaml", "one\n")
	second := writeFile(t, dir, "second.yaml", "two\n---\nthree\n")

	out, _, err := run(t, "yaml", first, second)
	require.NoError(t, err)

	firstAt := strings.Index(out, "== "+first)
	secondAt := strings.Index(out, "== "+second)
	require.GreaterOrEqual(t, firstAt, 0)
	require.Greater(t, secondAt, firstAt)

	assert.Equal(t, []string{
		"document",
		`  scalar "one" !!str`,
		"document",
		`  scalar "two" !!str`,
		"document",
		`  scalar "three" !!str`,
	}, listing(out))
}

func TestYAML_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "a: [1, 2\n")

	_, _, err := run(t, "yaml", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")

	_, _, err = run(t, "yaml", filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = run(t, "yaml")
	var usage *usageError
	assert.ErrorAs(t, err, &usage)
}

func TestSyntax_Go(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.go", "package main\n")

	out, _, err := run(t, "syntax", path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"source_file",
		"  package_clause",
		`    package_identifier "main"`,
	}, listing(out))
}

func TestSyntax_UnknownLanguage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "hello\n")

	_, _, err := run(t, "syntax", path)
	var usage *usageError
	require.ErrorAs(t, err, &usage)
	assert.Contains(t, err.Error(), "--lang")

	_, _, err = run(t, "syntax", "--lang", "cobol", path)
	require.ErrorAs(t, err, &usage)
}

func TestDir_SkipsIgnoredNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/x.txt", "x")
	writeFile(t, dir, "b.txt", "b")
	writeFile(t, dir, ".git/config", "")

	out, _, err := run(t, "dir", dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		dir,
		"  a/",
		"    x.txt",
		"  b.txt",
	}, listing(out))

	out, _, err = run(t, "--order", "bfs", "dir", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		dir,
		"  a/",
		"  b.txt",
		"    x.txt",
	}, listing(out))
}

func TestDir_NotADirectory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "file.txt", "")

	_, _, err := run(t, "dir", path)
	var usage *usageError
	assert.ErrorAs(t, err, &usage)
}

func TestRoot_ConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nested.yaml", nestedYAML)
	cfg := writeFile(t, dir, "config.yaml", "order: bfs\nlimit: 2\noutput:\n  indent: 4\n")

	out, _, err := run(t, "--config", cfg, "yaml", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"document", "    mapping"}, listing(out))

	out, _, err = run(t, "--config", cfg, "--limit", "0", "--order", "dfs", "yaml", path)
	require.NoError(t, err)
	assert.Len(t, listing(out), 8)
	assert.Equal(t, `        scalar "a" !!str`, listing(out)[2])
}

func TestRoot_InvalidSettings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.yaml", "a: 1\n")
	var usage *usageError

	_, _, err := run(t, "--order", "sideways", "yaml", path)
	assert.ErrorAs(t, err, &usage)

	_, _, err = run(t, "--limit", "-1", "yaml", path)
	assert.ErrorAs(t, err, &usage)

	_, _, err = run(t, "yaml", "--no-such-flag", path)
	assert.ErrorAs(t, err, &usage)
}

func TestRoot_DebugLogsCarryRunID(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.yaml", "a: 1\n")

	_, logs, err := run(t, "--log-level", "debug", "--log-json", "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, logs, `"run_id":"`)
	assert.Contains(t, logs, `"msg":"walk complete"`)
	assert.Contains(t, logs, `"service":"treewalk"`)
}

func TestRoot_AcceptsLibraryAlgorithmNames(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nested.yaml", nestedYAML)

	dfs, _, err := run(t, "--order", "depthfirst", "yaml", path)
	require.NoError(t, err)
	bfs, _, err := run(t, "--order", "BreadthFirst", "yaml", path)
	require.NoError(t, err)

	assert.Equal(t, `    scalar "a" !!str`, listing(dfs)[2])
	assert.Equal(t, `    scalar "c" !!str`, listing(bfs)[4])
}
