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
	"errors"
	"strings"
	"testing"

	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// surfSrc places a two-argument call on row 3: alpha at cols 3-8, beta
// at cols 10-14.
const surfSrc = `package main

func main() {
	h(alpha, beta)
}
`

func openSession(t *testing.T, svc *Service) *SessionResponse {
	t.Helper()
	resp, err := svc.Open(context.Background(), OpenSessionRequest{
		Content:  surfSrc,
		Language: "go",
		Cursor:   tree.Point{Row: 3, Col: 4},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close(context.Background(), resp.SessionID) })
	return resp
}

// descendToArgument walks the session to the "alpha" argument.
func descendToArgument(t *testing.T, svc *Service, id string) {
	t.Helper()
	for _, op := range []string{"child", "child", "next", "child"} {
		resp, err := svc.Move(context.Background(), id, op)
		if err != nil {
			t.Fatalf("Move(%q): %v", op, err)
		}
		if !resp.Moved {
			t.Fatalf("Move(%q) did not move, at %v", op, resp.Node)
		}
	}
}

// =============================================================================
// Open Tests
// =============================================================================

func TestOpen(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	resp := openSession(t, svc)

	if resp.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if !resp.NamedMode {
		t.Error("NamedMode = false, want named by default")
	}
	if resp.Language != "go" {
		t.Errorf("Language = %q, want go", resp.Language)
	}
	// The cursor sat inside "alpha"; the seed expands to the whole
	// statement, the largest node confined to that line.
	if resp.Node.Type != "expression_statement" {
		t.Errorf("node type = %q, want expression_statement", resp.Node.Type)
	}
	if resp.Node.Text != "h(alpha, beta)" {
		t.Errorf("node text = %q, want %q", resp.Node.Text, "h(alpha, beta)")
	}
	if svc.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", svc.SessionCount())
	}
}

func TestOpen_UnnamedMode(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	resp, err := svc.Open(context.Background(), OpenSessionRequest{
		Content:  surfSrc,
		Language: "go",
		Cursor:   tree.Point{Row: 3, Col: 4},
		Unnamed:  true,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = svc.Close(context.Background(), resp.SessionID) }()

	if resp.NamedMode {
		t.Error("NamedMode = true, want unnamed")
	}
}

func TestOpen_SourceTooLarge(t *testing.T) {
	svc := NewService(ServiceConfig{MaxSourceBytes: 4})
	_, err := svc.Open(context.Background(), OpenSessionRequest{
		Content:  surfSrc,
		Language: "go",
	})
	if !errors.Is(err, tree.ErrSourceTooLarge) {
		t.Errorf("error = %v, want ErrSourceTooLarge", err)
	}
}

func TestOpen_UnsupportedLanguage(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	_, err := svc.Open(context.Background(), OpenSessionRequest{
		Content:  "print(1)",
		Language: "python",
	})
	if !errors.Is(err, tree.ErrUnsupportedLanguage) {
		t.Errorf("error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestOpen_NoNodeAtCursor(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	_, err := svc.Open(context.Background(), OpenSessionRequest{
		Content:  surfSrc,
		Language: "go",
		Cursor:   tree.Point{Row: 99, Col: 0},
	})
	if !errors.Is(err, ErrNoNodeAtCursor) {
		t.Errorf("error = %v, want ErrNoNodeAtCursor", err)
	}
	if svc.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d after failed open, want 0", svc.SessionCount())
	}
}

func TestOpen_TooManySessions(t *testing.T) {
	svc := NewService(ServiceConfig{MaxSessions: 1})
	openSession(t, svc)

	_, err := svc.Open(context.Background(), OpenSessionRequest{
		Content:  surfSrc,
		Language: "go",
		Cursor:   tree.Point{Row: 3, Col: 4},
	})
	if !errors.Is(err, ErrTooManySessions) {
		t.Errorf("error = %v, want ErrTooManySessions", err)
	}
	if svc.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", svc.SessionCount())
	}
}

// =============================================================================
// Move Tests
// =============================================================================

func TestMove_Child(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)

	resp, err := svc.Move(context.Background(), sess.SessionID, "child")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !resp.Moved {
		t.Error("Moved = false")
	}
	if resp.Node.Type != "call_expression" {
		t.Errorf("node type = %q, want call_expression", resp.Node.Type)
	}
}

func TestMove_NoSibling(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)

	// The statement is alone in its block.
	resp, err := svc.Move(context.Background(), sess.SessionID, "next")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if resp.Moved {
		t.Error("Moved = true for a nonexistent sibling")
	}
	if resp.Node.Type != "expression_statement" {
		t.Errorf("node type = %q, session moved on a no-op", resp.Node.Type)
	}
}

func TestMove_SiblingArguments(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)
	descendToArgument(t, svc, sess.SessionID)

	resp, err := svc.Move(context.Background(), sess.SessionID, "next")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !resp.Moved || resp.Node.Text != "beta" {
		t.Errorf("Move(next) = %+v, want beta", resp.Node)
	}

	resp, err = svc.Move(context.Background(), sess.SessionID, "first")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !resp.Moved || resp.Node.Text != "alpha" {
		t.Errorf("Move(first) = %+v, want alpha", resp.Node)
	}
}

func TestMove_UnknownOp(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)

	_, err := svc.Move(context.Background(), sess.SessionID, "sideways")
	if !errors.Is(err, ErrUnknownOp) {
		t.Errorf("error = %v, want ErrUnknownOp", err)
	}
}

func TestMove_SessionNotFound(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	_, err := svc.Move(context.Background(), "nope", "child")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

// =============================================================================
// Mode Tests
// =============================================================================

func TestSetMode(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)

	resp, err := svc.SetMode(context.Background(), sess.SessionID, false)
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if resp.NamedMode {
		t.Error("NamedMode = true after switching to unnamed")
	}

	resp, err = svc.SetMode(context.Background(), sess.SessionID, true)
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if !resp.NamedMode {
		t.Error("NamedMode = false after switching back")
	}
}

// =============================================================================
// Swap Tests
// =============================================================================

func TestSwap(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)
	descendToArgument(t, svc, sess.SessionID)

	resp, err := svc.Swap(context.Background(), sess.SessionID, "next")
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !resp.Swapped || !resp.Resolved {
		t.Fatalf("Swapped=%v Resolved=%v, want both true", resp.Swapped, resp.Resolved)
	}
	if !strings.Contains(resp.Content, "h(beta, alpha)") {
		t.Errorf("content = %q, want swapped arguments", resp.Content)
	}
	// The session follows the moved text.
	if resp.Node.Text != "alpha" {
		t.Errorf("node text = %q, want alpha", resp.Node.Text)
	}
	want := tree.Range{Start: tree.Point{Row: 3, Col: 9}, Stop: tree.Point{Row: 3, Col: 14}}
	if resp.Node.Range != want {
		t.Errorf("node range = %v, want %v", resp.Node.Range, want)
	}
}

// Swapping twice restores the original content.
func TestSwap_RoundTrip(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)
	descendToArgument(t, svc, sess.SessionID)

	if _, err := svc.Swap(context.Background(), sess.SessionID, "next"); err != nil {
		t.Fatalf("first swap: %v", err)
	}
	resp, err := svc.Swap(context.Background(), sess.SessionID, "prev")
	if err != nil {
		t.Fatalf("second swap: %v", err)
	}
	if !strings.Contains(resp.Content, "h(alpha, beta)") {
		t.Errorf("content = %q, want original argument order", resp.Content)
	}
}

func TestSwap_NoSibling(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)

	resp, err := svc.Swap(context.Background(), sess.SessionID, "next")
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if resp.Swapped {
		t.Error("Swapped = true with no sibling")
	}
	if !resp.Resolved {
		t.Error("Resolved = false for a no-op swap")
	}
	if resp.Node == nil || resp.Node.Type != "expression_statement" {
		t.Errorf("node = %+v, want unchanged expression_statement", resp.Node)
	}
}

func TestSwap_UnknownDirection(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)

	_, err := svc.Swap(context.Background(), sess.SessionID, "up")
	if !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("error = %v, want ErrUnknownDirection", err)
	}
}

// =============================================================================
// Get / Close Tests
// =============================================================================

func TestGet(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)

	resp, err := svc.Get(sess.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.SessionID != sess.SessionID {
		t.Errorf("SessionID = %q, want %q", resp.SessionID, sess.SessionID)
	}
	if resp.Node.Type != sess.Node.Type {
		t.Errorf("node type = %q, want %q", resp.Node.Type, sess.Node.Type)
	}
}

func TestClose(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	sess := openSession(t, svc)

	if err := svc.Close(context.Background(), sess.SessionID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if svc.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d after close, want 0", svc.SessionCount())
	}
	if err := svc.Close(context.Background(), sess.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second close error = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.Get(sess.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after close error = %v, want ErrSessionNotFound", err)
	}
}
