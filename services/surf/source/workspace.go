// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package source pairs an editable line buffer with its parsed forest.
//
// A Workspace is the concrete host the navigation core runs against:
// it serves node lookups (tree.Document), takes swap mutations
// (swap.Host), and rebuilds its trees after any text change.
package source

import (
	"context"
	"fmt"
	"os"

	"github.com/AleutianAI/treesurf/services/surf/buffer"
	"github.com/AleutianAI/treesurf/services/surf/swap"
	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// Workspace is one buffer plus its current parse.
//
// Thread Safety:
//
//	Workspace is not synchronized. One active session per workspace;
//	callers sharing a workspace across goroutines must serialize.
type Workspace struct {
	lang   tree.Language
	buf    *buffer.Buffer
	forest *tree.Forest
	path   string
}

// Open parses content and returns a ready workspace.
//
// Outputs:
//   - *Workspace: The workspace with a fresh parse.
//   - error: Parse or validation failure from the tree package.
func Open(ctx context.Context, content []byte, lang tree.Language) (*Workspace, error) {
	forest, err := tree.ParseForest(ctx, content, lang)
	if err != nil {
		return nil, err
	}
	return &Workspace{
		lang:   lang,
		buf:    buffer.New(content),
		forest: forest,
	}, nil
}

// OpenFile reads a file, derives its language from the extension, and
// opens a workspace over its content.
func OpenFile(ctx context.Context, path string) (*Workspace, error) {
	lang, err := tree.LanguageForPath(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ws, err := Open(ctx, content, lang)
	if err != nil {
		return nil, err
	}
	ws.path = path
	return ws, nil
}

// Close releases the parsed trees.
func (w *Workspace) Close() {
	if w.forest != nil {
		w.forest.Close()
	}
}

// Language returns the host language.
func (w *Workspace) Language() tree.Language { return w.lang }

// Path returns the backing file path, or "" for in-memory content.
func (w *Workspace) Path() string { return w.path }

// Root returns the host tree's root node.
func (w *Workspace) Root() tree.Node { return w.forest.Root() }

// InjectionCount returns the number of embedded-language trees.
func (w *Workspace) InjectionCount() int { return w.forest.InjectionCount() }

// Bytes returns the current buffer content.
func (w *Workspace) Bytes() []byte { return w.buf.Bytes() }

// String returns the current buffer content without a trailing newline.
func (w *Workspace) String() string { return w.buf.String() }

// LineCount returns the number of buffer lines.
func (w *Workspace) LineCount() int { return w.buf.LineCount() }

// Line returns one buffer line.
func (w *Workspace) Line(row int) string { return w.buf.Line(row) }

// Text returns the exact text within the range, split into lines.
func (w *Workspace) Text(r tree.Range) []string { return w.buf.GetText(r) }

// Lines returns the whole lines touched by the range.
func (w *Workspace) Lines(r tree.Range) []string { return w.buf.GetLines(r) }

// SetText replaces the text within the range. The current parse is
// stale afterwards; callers run Reparse before resolving nodes.
func (w *Workspace) SetText(r tree.Range, text []string) {
	w.buf.SetText(r, text)
}

// Reparse rebuilds the forest from the mutated buffer. Every node
// handle issued before the reparse is invalid afterwards.
func (w *Workspace) Reparse() error {
	forest, err := tree.ParseForest(context.Background(), w.buf.Bytes(), w.lang)
	if err != nil {
		return fmt.Errorf("reparse: %w", err)
	}
	if w.forest != nil {
		w.forest.Close()
	}
	w.forest = forest
	return nil
}

// Reload replaces the buffer content wholesale and reparses. Used when
// the backing file changed outside the workspace.
func (w *Workspace) Reload(content []byte) error {
	forest, err := tree.ParseForest(context.Background(), content, w.lang)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if w.forest != nil {
		w.forest.Close()
	}
	w.forest = forest
	w.buf = buffer.New(content)
	return nil
}

// WriteFile writes the buffer content back to the backing file.
func (w *Workspace) WriteFile() error {
	if w.path == "" {
		return fmt.Errorf("workspace has no backing file")
	}
	if err := os.WriteFile(w.path, w.buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return nil
}

// SmallestNodeAt returns the smallest named node containing the point.
func (w *Workspace) SmallestNodeAt(p tree.Point, ignoreInjections bool) tree.Node {
	return w.forest.SmallestNodeAt(p, ignoreInjections)
}

// DescendantForRange returns the smallest node exactly covering r.
func (w *Workspace) DescendantForRange(r tree.Range) tree.Node {
	return w.forest.DescendantForRange(r)
}

// Compile-time interface compliance checks.
var (
	_ tree.Document = (*Workspace)(nil)
	_ swap.Host     = (*Workspace)(nil)
)
