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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// Handlers holds the HTTP handlers for the surf service.
type Handlers struct {
	service *Service
}

// NewHandlers creates handlers backed by the given service.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleOpenSession handles POST /v1/surf/sessions.
//
// Description:
//
//	Parses the submitted content and opens a navigation session seeded
//	from the cursor position, expanded to the largest ancestor spanning
//	the same lines.
//
// Response:
//
//	200 OK: SessionResponse
//	400 Bad Request: Validation, language, or parse error
//	429 Too Many Requests: Session limit reached
func (h *Handlers) HandleOpenSession(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleOpenSession")

	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp, err := h.service.Open(c.Request.Context(), req)
	if err != nil {
		statusCode := http.StatusBadRequest
		errCode := "OPEN_FAILED"

		switch {
		case errors.Is(err, ErrTooManySessions):
			statusCode = http.StatusTooManyRequests
			errCode = "TOO_MANY_SESSIONS"
		case errors.Is(err, tree.ErrUnsupportedLanguage):
			errCode = "UNSUPPORTED_LANGUAGE"
		case errors.Is(err, tree.ErrSourceTooLarge):
			errCode = "SOURCE_TOO_LARGE"
		case errors.Is(err, ErrNoNodeAtCursor):
			errCode = "NO_NODE_AT_CURSOR"
		}

		logger.Warn("Open session failed", "error", err)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}

	logger.Info("Session opened",
		"session_id", resp.SessionID,
		"language", resp.Language,
		"node_type", resp.Node.Type)
	c.JSON(http.StatusOK, resp)
}

// HandleMove handles POST /v1/surf/sessions/:id/move.
//
// Response:
//
//	200 OK: MoveResponse (Moved=false for a no-op)
//	400 Bad Request: Unknown operator
//	404 Not Found: Unknown session
func (h *Handlers) HandleMove(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleMove")

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp, err := h.service.Move(c.Request.Context(), c.Param("id"), req.Op)
	if err != nil {
		h.writeSessionError(c, logger, err)
		return
	}

	logger.Debug("Move applied", "op", req.Op, "moved", resp.Moved)
	c.JSON(http.StatusOK, resp)
}

// HandleSetMode handles POST /v1/surf/sessions/:id/mode.
//
// Response:
//
//	200 OK: SessionResponse
//	400 Bad Request: Missing named flag
//	404 Not Found: Unknown session
func (h *Handlers) HandleSetMode(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSetMode")

	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Named == nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Field 'named' is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp, err := h.service.SetMode(c.Request.Context(), c.Param("id"), *req.Named)
	if err != nil {
		h.writeSessionError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleSwap handles POST /v1/surf/sessions/:id/swap.
//
// Response:
//
//	200 OK: SwapResponse (Resolved=false when post-swap lookup failed)
//	400 Bad Request: Unknown direction
//	404 Not Found: Unknown session
//	500 Internal Server Error: Reparse failure
func (h *Handlers) HandleSwap(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSwap")

	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	resp, err := h.service.Swap(c.Request.Context(), c.Param("id"), req.Direction)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "SESSION_NOT_FOUND"})
		case errors.Is(err, ErrUnknownDirection):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "UNKNOWN_DIRECTION"})
		default:
			logger.Error("Swap failed", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "SWAP_FAILED"})
		}
		return
	}

	logger.Info("Swap applied",
		"session_id", c.Param("id"),
		"direction", req.Direction,
		"swapped", resp.Swapped,
		"resolved", resp.Resolved)
	c.JSON(http.StatusOK, resp)
}

// HandleGetSession handles GET /v1/surf/sessions/:id.
func (h *Handlers) HandleGetSession(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetSession")

	resp, err := h.service.Get(c.Param("id"))
	if err != nil {
		h.writeSessionError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCloseSession handles DELETE /v1/surf/sessions/:id.
func (h *Handlers) HandleCloseSession(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCloseSession")

	if err := h.service.Close(c.Request.Context(), c.Param("id")); err != nil {
		h.writeSessionError(c, logger, err)
		return
	}
	logger.Info("Session closed", "session_id", c.Param("id"))
	c.Status(http.StatusNoContent)
}

// HandleHealth handles GET /v1/surf/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReady handles GET /v1/surf/ready.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"open_sessions": h.service.SessionCount(),
	})
}

// writeSessionError maps common service errors to HTTP responses.
func (h *Handlers) writeSessionError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "SESSION_NOT_FOUND"})
	case errors.Is(err, ErrUnknownOp):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "UNKNOWN_OP"})
	default:
		logger.Error("Session operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL_ERROR"})
	}
}

// getOrCreateRequestID returns the request's correlation ID, minting
// one when the client did not supply X-Request-ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
