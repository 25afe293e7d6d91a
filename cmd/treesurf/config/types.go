// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the treesurf CLI configuration file.
package config

// TreesurfConfig is the on-disk configuration for the treesurf CLI.
//
// The file lives at ~/.treesurf/treesurf.yaml and is created with
// defaults on first run.
type TreesurfConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Surf    SurfConfig    `yaml:"surf"`
}

// ServerConfig configures the HTTP server started by `treesurf serve`.
type ServerConfig struct {
	// Port is the listen port. Default: 8080
	Port int `yaml:"port"`

	// MaxSessions caps concurrently open navigation sessions.
	// Default: 64
	MaxSessions int `yaml:"max_sessions"`

	// TraceExporter selects the trace exporter: "otlp", "stdout", "none".
	TraceExporter string `yaml:"trace_exporter"`

	// MetricExporter selects the metric exporter: "prometheus", "stdout", "none".
	MetricExporter string `yaml:"metric_exporter"`

	// OTLPEndpoint is the OTLP receiver for traces.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// LoggingConfig configures log output for all commands.
type LoggingConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Dir enables file logging when set. Supports ~ expansion.
	Dir string `yaml:"dir"`

	// JSON switches stderr output to JSON format.
	JSON bool `yaml:"json"`
}

// SurfConfig configures the interactive TUI started by `treesurf surf`.
type SurfConfig struct {
	// Watch reloads the buffer when the file changes on disk.
	// Default: true
	Watch bool `yaml:"watch"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() TreesurfConfig {
	return TreesurfConfig{
		Server: ServerConfig{
			Port:           8080,
			MaxSessions:    64,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Surf: SurfConfig{
			Watch: true,
		},
	}
}
