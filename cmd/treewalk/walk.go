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
	"fmt"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/treewalk/pkg/telemetry"
	"github.com/AleutianAI/treewalk/pkg/traverse"
)

const tracerName = "treewalk.cmd"

// walkResult summarizes one printed walk.
type walkResult struct {
	Nodes     int
	Truncated bool
	Elapsed   time.Duration
}

// printWalk enumerates roots and their descendants in the configured order
// and prints one indented line per node.
//
// Children are only requested for nodes that were printed, so a --limit
// stops expansion as well as output.
func printWalk[T any](
	ctx context.Context,
	a *app,
	name string,
	roots iter.Seq[T],
	getChildren traverse.ChildrenFunc[T],
	label func(T) string,
) (walkResult, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "walk."+name)
	defer span.End()
	span.SetAttributes(
		attribute.String("walk.order", a.algorithm.String()),
		attribute.Int("walk.limit", a.cfg.Limit),
		attribute.String("run_id", a.runID),
	)

	walk, err := traverse.RecursiveWith(
		traverse.Level(roots),
		traverse.WithDepth(traverse.Instrument(ctx, name, getChildren)),
		a.algorithm,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return walkResult{}, fmt.Errorf("walk %s: %w", name, err)
	}

	start := time.Now()
	var result walkResult
	for n := range walk.All() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := a.printer.Node(n.Depth, label(n.Node)); err != nil {
			telemetry.RecordError(span, err)
			return result, fmt.Errorf("write output: %w", err)
		}
		result.Nodes++
		if a.cfg.Limit > 0 && result.Nodes >= a.cfg.Limit {
			result.Truncated = true
			break
		}
	}
	result.Elapsed = time.Since(start)

	if err := walk.Err(); err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("walk %s: %w", name, err)
	}

	span.SetAttributes(
		attribute.Int("walk.nodes", result.Nodes),
		attribute.Bool("walk.truncated", result.Truncated),
	)
	a.logger.Debug("walk complete",
		"walk", name,
		"nodes", result.Nodes,
		"truncated", result.Truncated,
		"elapsed", result.Elapsed,
		"trace_id", telemetry.TraceID(ctx))

	if err := a.printer.Summary(result.Nodes, result.Truncated, result.Elapsed); err != nil {
		return result, fmt.Errorf("write output: %w", err)
	}
	return result, nil
}
