// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package traverse

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("treewalk.traverse")

// Metrics for node expansion.
var (
	expansionsTotal metric.Int64Counter
	fanout          metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		expansionsTotal, err = meter.Int64Counter(
			"traverse_expansions_total",
			metric.WithDescription("Number of times a node's children were requested"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		fanout, err = meter.Int64Histogram(
			"traverse_fanout",
			metric.WithDescription("Number of children returned per expanded node"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// Instrument wraps getChildren so every expansion is recorded on the
// traverse_expansions_total counter and the traverse_fanout histogram,
// tagged with walk=name.
//
// A nil getChildren is returned unchanged so Recursive still rejects it. If
// the instruments cannot be created the original function is returned and a
// warning is logged.
func Instrument[T any](ctx context.Context, name string, getChildren ChildrenFunc[T]) ChildrenFunc[T] {
	if getChildren == nil {
		return nil
	}
	if err := initMetrics(); err != nil {
		slog.Warn("traverse metrics unavailable", slog.String("error", err.Error()))
		return getChildren
	}

	attrs := metric.WithAttributes(attribute.String("walk", name))
	return func(node T) []T {
		children := getChildren(node)
		expansionsTotal.Add(ctx, 1, attrs)
		fanout.Record(ctx, int64(len(children)), attrs)
		return children
	}
}
