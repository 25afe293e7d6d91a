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
	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// NodeInfo describes the session's current node to API clients.
type NodeInfo struct {
	// Type is the grammar's string tag for the node.
	Type string `json:"type"`

	// Named reports whether the node is grammar-significant.
	Named bool `json:"named"`

	// Range is the node's span, zero-based, stop exclusive.
	Range tree.Range `json:"range"`

	// Text is the node's source text, capped at MaxNodeTextBytes.
	Text string `json:"text,omitempty"`
}

// OpenSessionRequest opens a navigation session over source content.
type OpenSessionRequest struct {
	// Content is the raw source text.
	Content string `json:"content" binding:"required"`

	// Language selects the host grammar (go, javascript, html, css).
	Language string `json:"language" binding:"required"`

	// Cursor seeds the session: the smallest node containing this
	// position, expanded to the largest same-line ancestor.
	Cursor tree.Point `json:"cursor"`

	// Unnamed starts the session in unnamed (all-nodes) mode.
	Unnamed bool `json:"unnamed,omitempty"`
}

// SessionResponse describes a session and its current node.
type SessionResponse struct {
	SessionID      string    `json:"session_id"`
	Node           *NodeInfo `json:"node"`
	NamedMode      bool      `json:"named_mode"`
	Language       string    `json:"language"`
	CreatedAtMilli int64     `json:"created_at_milli"`
}

// MoveRequest applies one movement operator to a session.
type MoveRequest struct {
	// Op is one of: parent, parent-linewise, child, child-linewise,
	// next, prev, first, last, outermost, innermost.
	Op string `json:"op" binding:"required"`
}

// MoveResponse reports the session position after a move.
type MoveResponse struct {
	// Node is the current node after the move.
	Node *NodeInfo `json:"node"`

	// Moved is false when the requested relation did not exist and
	// the session stayed put.
	Moved bool `json:"moved"`
}

// ModeRequest switches the session's traversal mode.
type ModeRequest struct {
	Named *bool `json:"named" binding:"required"`
}

// SwapRequest swaps the current node with a sibling.
type SwapRequest struct {
	// Direction is "next" or "prev".
	Direction string `json:"direction" binding:"required"`
}

// SwapResponse reports the result of a swap.
type SwapResponse struct {
	// Node is the re-anchored current node. Nil when resolution
	// failed and the session was re-seeded from position.
	Node *NodeInfo `json:"node,omitempty"`

	// Content is the full buffer text after the swap.
	Content string `json:"content"`

	// Swapped is false when no sibling existed in the direction.
	Swapped bool `json:"swapped"`

	// Resolved is false when the post-swap lookup found no node
	// exactly covering the swapped text.
	Resolved bool `json:"resolved"`
}

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
