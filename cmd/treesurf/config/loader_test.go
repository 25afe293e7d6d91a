// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestCreateDefault verifies default config creation.
func TestCreateDefault(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".treesurf", "treesurf.yaml")

	if err := createDefault(configPath); err != nil {
		t.Fatalf("createDefault() failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	var cfg TreesurfConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	// Verify some defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.MaxSessions != 64 {
		t.Errorf("Server.MaxSessions = %d, want 64", cfg.Server.MaxSessions)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if !cfg.Surf.Watch {
		t.Error("Surf.Watch = false, want true")
	}
}

// TestCreateDefault_DirectoryCreation verifies directory is created.
func TestCreateDefault_DirectoryCreation(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "deep", "nested", "path", "treesurf.yaml")

	if err := createDefault(configPath); err != nil {
		t.Fatalf("createDefault() failed with nested path: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(configPath)); os.IsNotExist(err) {
		t.Fatal("nested directories were not created")
	}
}

// TestResolvePath_EnvOverride verifies TREESURF_CONFIG wins over the
// home-directory default.
func TestResolvePath_EnvOverride(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "alt.yaml")
	t.Setenv("TREESURF_CONFIG", custom)

	path, err := resolvePath()
	if err != nil {
		t.Fatalf("resolvePath() failed: %v", err)
	}
	if path != custom {
		t.Errorf("resolvePath() = %q, want %q", path, custom)
	}
}

// TestReadInto_SeedsDefaults verifies a missing file is created and its
// defaults are loaded in the same call.
func TestReadInto_SeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".treesurf", "treesurf.yaml")

	var cfg TreesurfConfig
	if err := readInto(path, &cfg); err != nil {
		t.Fatalf("readInto() failed: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("loaded config = %+v, want defaults", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not seeded: %v", err)
	}
}

func TestReadInto_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treesurf.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}

	var cfg TreesurfConfig
	if err := readInto(path, &cfg); err == nil {
		t.Error("readInto() succeeded on malformed yaml, want error")
	}
}

// TestDefaultConfig_RoundTrip verifies defaults survive a marshal cycle.
func TestDefaultConfig_RoundTrip(t *testing.T) {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var cfg TreesurfConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("round trip = %+v, want %+v", cfg, DefaultConfig())
	}
}
