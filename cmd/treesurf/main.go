// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command treesurf navigates and restructures syntax trees.
//
// The binary has two modes:
//
//	treesurf surf <file>     Interactive tree surfing in the terminal.
//	treesurf serve           HTTP API for navigation sessions.
//
// Usage:
//
//	# Surf a Go file starting at line 12
//	treesurf surf --row 11 main.go
//
//	# Start the API server on port 9090
//	treesurf serve --port 9090
//
// Example requests against the server:
//
//	# Open a session
//	curl -X POST http://localhost:8080/v1/surf/sessions \
//	  -H "Content-Type: application/json" \
//	  -d '{"content": "package main\nfunc f(a, b int) {}\n", "language": "go", "cursor": {"row": 1, "col": 7}}'
//
//	# Move to the parent node
//	curl -X POST http://localhost:8080/v1/surf/sessions/<id>/move \
//	  -H "Content-Type: application/json" -d '{"op": "parent"}'
//
//	# Swap the current node with its next sibling
//	curl -X POST http://localhost:8080/v1/surf/sessions/<id>/swap \
//	  -H "Content-Type: application/json" -d '{"direction": "next"}'
package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/treesurf/cmd/treesurf/config"
)

func main() {
	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return config.Load()
	}
}
