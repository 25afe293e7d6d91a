// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package buffer provides an in-memory line buffer with editor-style
// range reads and writes.
//
// Ranges follow the tree package's convention: zero-based rows, byte
// columns, exclusive stop. GetText and SetText operate on partial
// first/last lines the way an editor's set-text API does; GetLines
// returns whole lines.
//
// Thread Safety:
//
//	Buffer is not synchronized. The navigation core is single-threaded
//	per buffer; callers that share a Buffer across goroutines must
//	serialize access themselves.
package buffer

import (
	"strings"

	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// Buffer holds source text as lines without trailing newlines.
type Buffer struct {
	lines []string
}

// New creates a Buffer from raw content. The final newline, if any,
// does not produce a trailing empty line.
func New(content []byte) *Buffer {
	s := string(content)
	s = strings.TrimSuffix(s, "\n")
	return &Buffer{lines: strings.Split(s, "\n")}
}

// FromLines creates a Buffer from pre-split lines. The slice is copied.
func FromLines(lines []string) *Buffer {
	b := &Buffer{lines: make([]string, len(lines))}
	copy(b.lines, lines)
	return b
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the line at the given row, or "" if out of range.
func (b *Buffer) Line(row int) string {
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return b.lines[row]
}

// Bytes renders the buffer back to raw content with a trailing newline.
func (b *Buffer) Bytes() []byte {
	return []byte(strings.Join(b.lines, "\n") + "\n")
}

// String renders the buffer without a trailing newline.
func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n")
}

// GetLines returns the whole lines touched by the range.
func (b *Buffer) GetLines(r tree.Range) []string {
	start, stop := b.clampRow(int(r.Start.Row)), b.clampRow(int(r.Stop.Row))
	out := make([]string, 0, stop-start+1)
	for row := start; row <= stop; row++ {
		out = append(out, b.lines[row])
	}
	return out
}

// GetText returns the exact text within the range, split into lines.
// The first and last entries are partial lines when the range starts or
// stops mid-line. An empty range yields a single empty string.
func (b *Buffer) GetText(r tree.Range) []string {
	startRow := b.clampRow(int(r.Start.Row))
	stopRow := b.clampRow(int(r.Stop.Row))

	if startRow == stopRow {
		line := b.lines[startRow]
		return []string{line[clampCol(line, r.Start.Col):clampCol(line, r.Stop.Col)]}
	}

	out := make([]string, 0, stopRow-startRow+1)
	first := b.lines[startRow]
	out = append(out, first[clampCol(first, r.Start.Col):])
	for row := startRow + 1; row < stopRow; row++ {
		out = append(out, b.lines[row])
	}
	last := b.lines[stopRow]
	out = append(out, last[:clampCol(last, r.Stop.Col)])
	return out
}

// SetText replaces the text within the range with the given lines,
// preserving the partial line content before the start and after the
// stop. An empty replacement deletes the range.
func (b *Buffer) SetText(r tree.Range, text []string) {
	startRow := b.clampRow(int(r.Start.Row))
	stopRow := b.clampRow(int(r.Stop.Row))

	firstLine := b.lines[startRow]
	lastLine := b.lines[stopRow]
	prefix := firstLine[:clampCol(firstLine, r.Start.Col)]
	suffix := lastLine[clampCol(lastLine, r.Stop.Col):]

	if len(text) == 0 {
		text = []string{""}
	}

	block := make([]string, 0, len(text))
	if len(text) == 1 {
		block = append(block, prefix+text[0]+suffix)
	} else {
		block = append(block, prefix+text[0])
		block = append(block, text[1:len(text)-1]...)
		block = append(block, text[len(text)-1]+suffix)
	}

	rebuilt := make([]string, 0, len(b.lines)-(stopRow-startRow+1)+len(block))
	rebuilt = append(rebuilt, b.lines[:startRow]...)
	rebuilt = append(rebuilt, block...)
	rebuilt = append(rebuilt, b.lines[stopRow+1:]...)
	b.lines = rebuilt
}

// clampRow clamps a row index into the valid line range.
func (b *Buffer) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row >= len(b.lines) {
		return len(b.lines) - 1
	}
	return row
}

// clampCol clamps a byte column into a line's bounds.
func clampCol(line string, col uint32) int {
	if int(col) > len(line) {
		return len(line)
	}
	return int(col)
}
