// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tree

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for parse operations.
var meter = otel.Meter("aleutian.surf.tree")

// Metrics for forest parsing.
var (
	parseLatency    metric.Float64Histogram
	parseTotal      metric.Int64Counter
	injectionsFound metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"surf_parse_duration_seconds",
			metric.WithDescription("Duration of forest parse operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"surf_parse_total",
			metric.WithDescription("Total number of forest parse operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		injectionsFound, err = meter.Int64Histogram(
			"surf_parse_injections",
			metric.WithDescription("Number of injected sub-trees per parse"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordParseMetrics records metrics for one forest parse.
func recordParseMetrics(ctx context.Context, language string, duration time.Duration, injections int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	)

	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)

	if success {
		injectionsFound.Record(ctx, int64(injections),
			metric.WithAttributes(attribute.String("language", language)),
		)
	}
}
