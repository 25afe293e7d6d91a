// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package swap exchanges the text spanned by two syntax nodes.
//
// A swap trims each node's range down to its non-whitespace content,
// writes the two texts into each other's ranges, reparses the buffer,
// and resolves the node that now occupies the first node's text. The
// later-starting range is always rewritten first; writing the earlier
// range first would shift the later range's coordinates and corrupt
// the buffer.
//
// A swap invalidates every node handle against the old parse, not just
// the two inputs. Callers must re-anchor any trail session with the
// resolved node (or re-seed from a position) before navigating again.
package swap

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// Sentinel errors.
var (
	// ErrNilNode is returned when either input node is nil.
	ErrNilNode = errors.New("swap: nil node")

	// ErrUnresolved is returned when no node exactly covers the
	// swapped text after the reparse, e.g. because the grammar
	// reshaped the surrounding nodes. The buffer mutation stands;
	// callers fall back to re-seeding from a cursor position.
	ErrUnresolved = errors.New("swap: no node found at swapped range")
)

// Host is the mutable buffer a swap operates on. Implementations pair
// a line buffer with a parser (see the source package).
type Host interface {
	// Text returns the exact text within the range, split into lines.
	Text(r tree.Range) []string

	// SetText replaces the text within the range.
	SetText(r tree.Range, text []string)

	// Reparse rebuilds the syntax tree from the mutated buffer.
	Reparse() error

	// DescendantForRange returns the smallest node exactly covering
	// the range in the freshly parsed tree, or nil.
	DescendantForRange(r tree.Range) tree.Node
}

// Swap exchanges the text of nodes a and b and returns the node that
// occupies a's text after the reparse.
//
// Inputs:
//   - h: The buffer host. Mutated even when resolution fails.
//   - a, b: Non-overlapping nodes from the current parse. Sibling
//     ranges never overlap; overlapping inputs are a caller error with
//     undefined results.
//
// Outputs:
//   - tree.Node: The node now spanning a's text.
//   - error: ErrNilNode, ErrUnresolved, or a wrapped reparse failure.
func Swap(h Host, a, b tree.Node) (tree.Node, error) {
	if a == nil || b == nil {
		return nil, ErrNilNode
	}

	ra, textA := trimmed(h, a.Range())
	rb, textB := trimmed(h, b.Range())

	// Later-starting range first, so the earlier range's coordinates
	// stay valid for the second write.
	if rb.Start.Before(ra.Start) {
		h.SetText(ra, textB)
		h.SetText(rb, textA)
	} else {
		h.SetText(rb, textA)
		h.SetText(ra, textB)
	}

	target := relocated(ra, rb, textA, textB)

	if err := h.Reparse(); err != nil {
		return nil, fmt.Errorf("reparse after swap: %w", err)
	}
	n := h.DescendantForRange(target)
	if n == nil {
		return nil, ErrUnresolved
	}
	return n, nil
}

// relocated computes where a's text lives after both writes.
//
// When a preceded b, replacing a's span with textB moved everything
// after it: b's start row shifts by the row delta between a's old stop
// and textB's stop, and when b started on the same row a ended on, its
// column shifts by the column delta as well. When a followed b, a's
// text went to b's original start and nothing before it moved.
func relocated(ra, rb tree.Range, textA, textB []string) tree.Range {
	start := rb.Start
	if ra.Start.Before(rb.Start) {
		newStop := textExtent(ra.Start, textB)
		start.Row = uint32(int(start.Row) + int(newStop.Row) - int(ra.Stop.Row))
		if rb.Start.Row == ra.Stop.Row {
			start.Col = uint32(int(start.Col) + int(newStop.Col) - int(ra.Stop.Col))
		}
	}
	return tree.Range{Start: start, Stop: textExtent(start, textA)}
}

// textExtent returns the exclusive stop position of text placed at start.
func textExtent(start tree.Point, text []string) tree.Point {
	if len(text) <= 1 {
		var width int
		if len(text) == 1 {
			width = len(text[0])
		}
		return tree.Point{Row: start.Row, Col: start.Col + uint32(width)}
	}
	return tree.Point{
		Row: start.Row + uint32(len(text)-1),
		Col: uint32(len(text[len(text)-1])),
	}
}

// trimmed tightens a range so its first and last characters are
// non-whitespace and returns the trimmed range with its text. A range
// of pure whitespace degenerates to a zero-length span at the original
// start.
func trimmed(h Host, r tree.Range) (tree.Range, []string) {
	text := h.Text(r)

	start, ok := firstContent(r, text)
	if !ok {
		empty := tree.Range{Start: r.Start, Stop: r.Start}
		return empty, []string{""}
	}
	stop := lastContent(r, text)

	tight := tree.Range{Start: start, Stop: stop}
	return tight, h.Text(tight)
}

// firstContent locates the first non-whitespace character in the
// range's text, in absolute buffer coordinates.
func firstContent(r tree.Range, text []string) (tree.Point, bool) {
	for i, line := range text {
		idx := strings.IndexFunc(line, notSpace)
		if idx < 0 {
			continue
		}
		col := uint32(idx)
		if i == 0 {
			col += r.Start.Col
		}
		return tree.Point{Row: r.Start.Row + uint32(i), Col: col}, true
	}
	return tree.Point{}, false
}

// lastContent locates the exclusive stop just past the last
// non-whitespace character. Callers guarantee at least one exists.
func lastContent(r tree.Range, text []string) tree.Point {
	for i := len(text) - 1; i >= 0; i-- {
		line := text[i]
		idx := strings.LastIndexFunc(line, notSpace)
		if idx < 0 {
			continue
		}
		_, size := utf8.DecodeRuneInString(line[idx:])
		col := uint32(idx + size)
		if i == 0 {
			col += r.Start.Col
		}
		return tree.Point{Row: r.Start.Row + uint32(i), Col: col}
	}
	return r.Stop
}

func notSpace(ch rune) bool { return !unicode.IsSpace(ch) }
