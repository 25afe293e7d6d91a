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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/treesurf/cmd/treesurf/config"
	"github.com/AleutianAI/treesurf/pkg/logging"
	"github.com/AleutianAI/treesurf/services/surf"
	"github.com/AleutianAI/treesurf/services/surf/source"
	"github.com/AleutianAI/treesurf/services/surf/telemetry"
	"github.com/AleutianAI/treesurf/services/surf/tree"
	"github.com/AleutianAI/treesurf/services/surf/tui"
)

var (
	rootCmd = &cobra.Command{
		Use:   "treesurf",
		Short: "Navigate and restructure syntax trees",
		Long: `Treesurf parses source files with tree-sitter and lets you move
through the syntax tree with vim-like keys, swap sibling nodes, and
serve the same operations over an HTTP API.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the treesurf HTTP API server",
		Long:  `Starts the navigation session API with Prometheus metrics and optional OTLP tracing.`,
		RunE:  runServe,
	}
	servePort  int
	serveDebug bool

	surfCmd = &cobra.Command{
		Use:   "surf [file]",
		Short: "Surf a source file interactively in the terminal",
		Long: `Opens a file in the tree-surfing TUI. The trail starts at the node
under --row/--col, expanded to the largest ancestor spanning the same
lines. HTML files get embedded script and style regions parsed as
JavaScript and CSS.`,
		Args: cobra.ExactArgs(1),
		RunE: runSurf,
	}
	surfRow     uint32
	surfCol     uint32
	surfNoWatch bool

	languagesCmd = &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Run:   runLanguages,
	}
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug mode")

	surfCmd.Flags().Uint32Var(&surfRow, "row", 0, "Cursor row to start at (0-based)")
	surfCmd.Flags().Uint32Var(&surfCol, "col", 0, "Cursor column to start at (0-based byte offset)")
	surfCmd.Flags().BoolVar(&surfNoWatch, "no-watch", false, "Disable reload on external file changes")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(surfCmd)
	rootCmd.AddCommand(languagesCmd)
}

// runServe starts the HTTP API with telemetry and graceful shutdown.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Global
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logLevel := cfg.Logging.Level
	if serveDebug {
		logLevel = "debug"
	}
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(logLevel),
		LogDir:  cfg.Logging.Dir,
		Service: "server",
		JSON:    cfg.Logging.JSON,
	})
	defer logger.Close()
	logger.Install()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telCfg := telemetry.DefaultConfig()
	if cfg.Server.TraceExporter != "" {
		telCfg.TraceExporter = cfg.Server.TraceExporter
	}
	if cfg.Server.MetricExporter != "" {
		telCfg.MetricExporter = cfg.Server.MetricExporter
	}
	if cfg.Server.OTLPEndpoint != "" {
		telCfg.OTLPEndpoint = cfg.Server.OTLPEndpoint
	}
	shutdownTel, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTel(context.Background()); err != nil {
			slog.Warn("Telemetry shutdown failed", "error", err)
		}
	}()

	if serveDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	service := surf.NewService(surf.ServiceConfig{
		MaxSessions: cfg.Server.MaxSessions,
	})
	handlers := surf.NewHandlers(service)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("treesurf"))
	if serveDebug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	surf.RegisterRoutes(v1, handlers)

	if mh := telemetry.MetricsHandler(); mh != nil {
		router.GET("/metrics", gin.WrapH(mh))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting treesurf server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down treesurf server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// runSurf opens the file in the interactive TUI.
func runSurf(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	// Quiet: the TUI owns the terminal, logs go to file only.
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "tui",
		Quiet:   true,
	})
	defer logger.Close()
	logger.Install()

	ws, err := source.OpenFile(context.Background(), args[0])
	if err != nil {
		return err
	}

	model, err := tui.New(ws, tree.Point{Row: surfRow, Col: surfCol}, tui.Config{
		Watch: cfg.Surf.Watch && !surfNoWatch,
	})
	if err != nil {
		ws.Close()
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// runLanguages prints the supported languages and their extensions.
func runLanguages(cmd *cobra.Command, args []string) {
	for _, lang := range tree.SupportedLanguages() {
		fmt.Println(lang)
	}
}
