// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package surf

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for the surf service.
var (
	tracer = otel.Tracer("aleutian.surf")
	meter  = otel.Meter("aleutian.surf")
)

// Metrics for session operations.
var (
	movesTotal     metric.Int64Counter
	swapsTotal     metric.Int64Counter
	swapLatency    metric.Float64Histogram
	sessionsOpened metric.Int64Counter
	sessionsClosed metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		movesTotal, err = meter.Int64Counter(
			"surf_moves_total",
			metric.WithDescription("Total movement operations by operator and outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		swapsTotal, err = meter.Int64Counter(
			"surf_swaps_total",
			metric.WithDescription("Total swap operations by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		swapLatency, err = meter.Float64Histogram(
			"surf_swap_duration_seconds",
			metric.WithDescription("Duration of swap operations including reparse"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sessionsOpened, err = meter.Int64Counter(
			"surf_sessions_opened_total",
			metric.WithDescription("Total sessions opened"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sessionsClosed, err = meter.Int64Counter(
			"surf_sessions_closed_total",
			metric.WithDescription("Total sessions closed"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordMove records one movement operation.
func recordMove(ctx context.Context, op string, moved bool) {
	if err := initMetrics(); err != nil {
		return
	}
	movesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("moved", moved),
	))
}

// recordSwap records one swap operation.
func recordSwap(ctx context.Context, outcome string, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	swapsTotal.Add(ctx, 1, attrs)
	swapLatency.Record(ctx, duration.Seconds(), attrs)
}

// recordSessionOpened records a session open.
func recordSessionOpened(ctx context.Context, language string) {
	if err := initMetrics(); err != nil {
		return
	}
	sessionsOpened.Add(ctx, 1, metric.WithAttributes(attribute.String("language", language)))
}

// recordSessionClosed records a session close.
func recordSessionClosed(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	sessionsClosed.Add(ctx, 1)
}

// startOpSpan creates a span for one session operation.
func startOpSpan(ctx context.Context, op, sessionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Service."+op,
		trace.WithAttributes(
			attribute.String("surf.session_id", sessionID),
		),
	)
}
