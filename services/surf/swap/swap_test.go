// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package swap

import (
	"errors"
	"testing"

	"github.com/AleutianAI/treesurf/services/surf/buffer"
	"github.com/AleutianAI/treesurf/services/surf/tree"
	"github.com/AleutianAI/treesurf/services/surf/tree/treetest"
)

// fakeHost backs a swap with a real line buffer and a canned resolver,
// recording the target range the swap asks for.
type fakeHost struct {
	buf        *buffer.Buffer
	reparses   int
	reparseErr error
	resolveNil bool
	target     tree.Range
}

func newFakeHost(content string) *fakeHost {
	return &fakeHost{buf: buffer.New([]byte(content))}
}

func (h *fakeHost) Text(r tree.Range) []string          { return h.buf.GetText(r) }
func (h *fakeHost) SetText(r tree.Range, text []string) { h.buf.SetText(r, text) }

func (h *fakeHost) Reparse() error {
	h.reparses++
	return h.reparseErr
}

func (h *fakeHost) DescendantForRange(r tree.Range) tree.Node {
	h.target = r
	if h.resolveNil {
		return nil
	}
	return treetest.NewNode("resolved", true, r)
}

func node(startRow, startCol, stopRow, stopCol uint32) tree.Node {
	return treetest.NewNode("node", true, treetest.R(startRow, startCol, stopRow, stopCol))
}

// =============================================================================
// Basic Swaps
// =============================================================================

func TestSwap_AdjacentArguments(t *testing.T) {
	h := newFakeHost("f(a, b)\n")
	a := node(0, 2, 0, 3)
	b := node(0, 5, 0, 6)

	resolved, err := Swap(h, a, b)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := h.buf.String(); got != "f(b, a)" {
		t.Errorf("buffer = %q, want %q", got, "f(b, a)")
	}
	// a's text now occupies b's old slot.
	want := treetest.R(0, 5, 0, 6)
	if resolved.Range() != want {
		t.Errorf("resolved range = %v, want %v", resolved.Range(), want)
	}
	if h.reparses != 1 {
		t.Errorf("reparses = %d, want 1", h.reparses)
	}
}

// Swapping back restores the original buffer byte for byte.
func TestSwap_RoundTrip(t *testing.T) {
	h := newFakeHost("f(a, b)\n")
	before := h.buf.String()

	if _, err := Swap(h, node(0, 2, 0, 3), node(0, 5, 0, 6)); err != nil {
		t.Fatalf("first swap: %v", err)
	}
	if _, err := Swap(h, node(0, 2, 0, 3), node(0, 5, 0, 6)); err != nil {
		t.Fatalf("second swap: %v", err)
	}
	if got := h.buf.String(); got != before {
		t.Errorf("round trip = %q, want %q", got, before)
	}
}

func TestSwap_UnequalLengths(t *testing.T) {
	h := newFakeHost("f(alpha, b)\n")
	a := node(0, 2, 0, 7) // alpha
	b := node(0, 9, 0, 10)

	resolved, err := Swap(h, a, b)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := h.buf.String(); got != "f(b, alpha)" {
		t.Errorf("buffer = %q, want %q", got, "f(b, alpha)")
	}
	want := treetest.R(0, 5, 0, 10)
	if resolved.Range() != want {
		t.Errorf("resolved range = %v, want %v", resolved.Range(), want)
	}
}

// Passing the nodes in reverse document order must behave identically:
// the later-starting range is still written first.
func TestSwap_ReverseOrder(t *testing.T) {
	h := newFakeHost("f(a, b)\n")
	a := node(0, 5, 0, 6) // b, the later node, swapped "prev"
	b := node(0, 2, 0, 3)

	resolved, err := Swap(h, a, b)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := h.buf.String(); got != "f(b, a)" {
		t.Errorf("buffer = %q, want %q", got, "f(b, a)")
	}
	// a's text ("b") went to b's old start.
	want := treetest.R(0, 2, 0, 3)
	if resolved.Range() != want {
		t.Errorf("resolved range = %v, want %v", resolved.Range(), want)
	}
}

// =============================================================================
// Multi-line Relocation
// =============================================================================

func TestSwap_MultiLineBeforeSingleLine(t *testing.T) {
	h := newFakeHost("alpha\nbeta\nmid\ngamma\n")
	a := node(0, 0, 1, 4) // alpha\nbeta
	b := node(3, 0, 3, 5) // gamma

	resolved, err := Swap(h, a, b)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := h.buf.String(); got != "gamma\nmid\nalpha\nbeta" {
		t.Errorf("buffer = %q", got)
	}
	// b's row shifted up by one (a shrank from two lines to one).
	want := treetest.R(2, 0, 3, 4)
	if resolved.Range() != want {
		t.Errorf("resolved range = %v, want %v", resolved.Range(), want)
	}
}

func TestSwap_SingleLineBeforeMultiLine(t *testing.T) {
	h := newFakeHost("gamma\nmid\nalpha\nbeta\n")
	a := node(0, 0, 0, 5) // gamma
	b := node(2, 0, 3, 4) // alpha\nbeta

	resolved, err := Swap(h, a, b)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := h.buf.String(); got != "alpha\nbeta\nmid\ngamma" {
		t.Errorf("buffer = %q", got)
	}
	// a grew the prefix by one line: b's start row shifts down.
	want := treetest.R(3, 0, 3, 5)
	if resolved.Range() != want {
		t.Errorf("resolved range = %v, want %v", resolved.Range(), want)
	}
}

// =============================================================================
// Whitespace Trimming
// =============================================================================

func TestSwap_TrimsWhitespace(t *testing.T) {
	h := newFakeHost("  foo  , bar\n")
	a := node(0, 0, 0, 7) // "  foo  " with padding
	b := node(0, 9, 0, 12)

	resolved, err := Swap(h, a, b)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	// Only the content moved; the padding stayed in place.
	if got := h.buf.String(); got != "  bar  , foo" {
		t.Errorf("buffer = %q, want %q", got, "  bar  , foo")
	}
	want := treetest.R(0, 9, 0, 12)
	if resolved.Range() != want {
		t.Errorf("resolved range = %v, want %v", resolved.Range(), want)
	}
}

// =============================================================================
// Failure Modes
// =============================================================================

func TestSwap_NilNode(t *testing.T) {
	h := newFakeHost("x\n")
	if _, err := Swap(h, nil, node(0, 0, 0, 1)); !errors.Is(err, ErrNilNode) {
		t.Errorf("error = %v, want ErrNilNode", err)
	}
	if _, err := Swap(h, node(0, 0, 0, 1), nil); !errors.Is(err, ErrNilNode) {
		t.Errorf("error = %v, want ErrNilNode", err)
	}
}

func TestSwap_Unresolved(t *testing.T) {
	h := newFakeHost("f(a, b)\n")
	h.resolveNil = true

	_, err := Swap(h, node(0, 2, 0, 3), node(0, 5, 0, 6))
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("error = %v, want ErrUnresolved", err)
	}
	// The mutation stands even though resolution failed.
	if got := h.buf.String(); got != "f(b, a)" {
		t.Errorf("buffer = %q, want mutation kept", got)
	}
}

func TestSwap_ReparseFailure(t *testing.T) {
	h := newFakeHost("f(a, b)\n")
	h.reparseErr = errors.New("boom")

	_, err := Swap(h, node(0, 2, 0, 3), node(0, 5, 0, 6))
	if err == nil || errors.Is(err, ErrUnresolved) {
		t.Fatalf("error = %v, want wrapped reparse failure", err)
	}
}
