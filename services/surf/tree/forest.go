// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tree

import (
	"context"
	"fmt"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
)

// ForestOption configures ParseForest.
type ForestOption func(*forestConfig)

type forestConfig struct {
	maxSourceSize int64
}

// WithMaxSourceSize sets the maximum source size ParseForest will accept.
func WithMaxSourceSize(bytes int64) ForestOption {
	return func(c *forestConfig) {
		if bytes > 0 {
			c.maxSourceSize = bytes
		}
	}
}

// Forest is one parse of a buffer: the host tree plus any injected
// sub-trees for embedded languages. A Forest is an immutable snapshot;
// after the buffer text changes, parse a fresh Forest and re-resolve
// any node handles by range.
//
// Thread Safety:
//
//	A Forest is read-only after construction and safe for concurrent
//	reads. Close must not race with readers.
type Forest struct {
	lang     Language
	host     *parsedTree
	injected []*parsedTree
}

// ParseForest parses content as lang, then parses every embedded
// injection region (e.g. <script> bodies in HTML) with its own grammar.
// Injected trees keep whole-buffer coordinates, so node ranges from any
// tree in the forest address the same buffer.
//
// Inputs:
//   - ctx: Context for cancellation. Tree-sitter cannot be interrupted
//     mid-parse, but cancellation is honored between parses.
//   - content: Raw source bytes. Must be valid UTF-8.
//   - lang: Host language.
//
// Outputs:
//   - *Forest: The parsed forest. Never nil on success.
//   - error: ErrSourceTooLarge, ErrInvalidContent,
//     ErrUnsupportedLanguage, or a wrapped parse failure.
func ParseForest(ctx context.Context, content []byte, lang Language, opts ...ForestOption) (*Forest, error) {
	cfg := forestConfig{maxSourceSize: DefaultMaxSourceSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateSource(content, cfg.maxSourceSize); err != nil {
		return nil, err
	}

	start := time.Now()

	host, err := parseRegion(ctx, content, lang, nil)
	if err != nil {
		recordParseMetrics(ctx, string(lang), time.Since(start), 0, false)
		return nil, fmt.Errorf("parse host tree: %w", err)
	}

	f := &Forest{lang: lang, host: host}
	for _, region := range scanInjections(host) {
		if err := ctx.Err(); err != nil {
			f.Close()
			return nil, fmt.Errorf("parse canceled during injections: %w", err)
		}
		sub, err := parseRegion(ctx, content, region.lang, []sitter.Range{region.span})
		if err != nil {
			// A broken injection region never fails the host parse.
			continue
		}
		f.injected = append(f.injected, sub)
	}

	recordParseMetrics(ctx, string(lang), time.Since(start), len(f.injected), true)
	return f, nil
}

// Close releases every tree-sitter tree in the forest.
func (f *Forest) Close() {
	if f.host != nil {
		f.host.Close()
	}
	for _, t := range f.injected {
		t.Close()
	}
}

// Language returns the host language.
func (f *Forest) Language() Language { return f.lang }

// Root returns the host tree's root node.
func (f *Forest) Root() Node { return f.host.Root() }

// InjectionCount returns the number of injected sub-trees.
func (f *Forest) InjectionCount() int { return len(f.injected) }

// SmallestNodeAt returns the smallest named node containing the point.
//
// With ignoreInjections set, only the host tree is consulted; this is
// how navigation escapes an injected region back into its host
// document. Otherwise injected trees take precedence, which is how
// navigation descends into an embedded language at a leaf.
func (f *Forest) SmallestNodeAt(p Point, ignoreInjections bool) Node {
	if !ignoreInjections {
		if t := f.injectedTreeAt(p); t != nil {
			if n := t.smallestAt(p); n != nil {
				return n
			}
		}
	}
	return f.host.smallestAt(p)
}

// DescendantForRange returns the smallest named node whose range
// exactly equals r, searching injected trees before the host.
func (f *Forest) DescendantForRange(r Range) Node {
	for _, t := range f.injected {
		root := t.Root()
		if root == nil || !rangeCovers(root.Range(), r) {
			continue
		}
		if n := t.DescendantForRange(r); n != nil {
			return n
		}
	}
	return f.host.DescendantForRange(r)
}

// injectedTreeAt returns the injected tree containing the point, or nil.
func (f *Forest) injectedTreeAt(p Point) *parsedTree {
	for _, t := range f.injected {
		root := t.Root()
		if root != nil && root.Range().Contains(p) {
			return t
		}
	}
	return nil
}

// Compile-time interface compliance check.
var _ Document = (*Forest)(nil)
