// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command treewalk prints the nodes of a tree in depth-first or
// breadth-first order.
//
// Supported trees:
//   - YAML documents (treewalk yaml)
//   - Source files parsed with tree-sitter (treewalk syntax)
//   - Directories, optionally re-walked on change (treewalk dir --watch)
//
// Usage:
//
//	treewalk yaml deploy.yaml values.yaml
//	treewalk --order bfs --limit 20 syntax main.go
//	treewalk dir . --watch --metrics-addr :9464
//
// Configuration is read from $XDG_CONFIG_HOME/treewalk/config.yaml (or
// --config), then TREEWALK_* environment variables, then flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "treewalk: %v\n", err)
		var usage *usageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
