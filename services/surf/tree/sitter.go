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
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Source size constants for input validation.
const (
	// DefaultMaxSourceSize is the maximum source size the parser will accept (10MB).
	DefaultMaxSourceSize = 10 * 1024 * 1024
)

// Sentinel errors for parse input validation.
var (
	// ErrSourceTooLarge is returned when input exceeds the size limit.
	ErrSourceTooLarge = errors.New("source exceeds maximum size limit")

	// ErrInvalidContent is returned when input is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")
)

// parsedTree is one tree-sitter parse of a buffer region.
type parsedTree struct {
	lang Language
	tree *sitter.Tree
}

// parseRegion parses content with the given grammar. A non-empty ranges
// slice restricts parsing to those regions while keeping all node
// coordinates relative to the whole buffer, which is how injected
// sub-trees stay aligned with their host document.
func parseRegion(ctx context.Context, content []byte, lang Language, ranges []sitter.Range) (*parsedTree, error) {
	grammar, err := Grammar(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	if len(ranges) > 0 {
		parser.SetIncludedRanges(ranges)
	}

	t, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	return &parsedTree{lang: lang, tree: t}, nil
}

// validateSource applies the size and encoding guards shared by every parse.
func validateSource(content []byte, maxSize int64) error {
	if int64(len(content)) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrSourceTooLarge, len(content), maxSize)
	}
	if !utf8.Valid(content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}
	return nil
}

// Close releases the underlying tree-sitter tree.
func (t *parsedTree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Root returns the tree's root node.
func (t *parsedTree) Root() Node {
	if t.tree == nil {
		return nil
	}
	return t.wrap(t.tree.RootNode())
}

// DescendantForRange returns the smallest named node whose range
// exactly equals r, or nil if no node spans exactly that text.
func (t *parsedTree) DescendantForRange(r Range) Node {
	if t.tree == nil {
		return nil
	}
	cur := t.tree.RootNode()
	if cur == nil || !rangeCovers(nodeRange(cur), r) {
		return nil
	}

	// Descend while any named child still covers the target span. This
	// lands on the smallest covering node, which also skips past
	// range-identical wrapper nodes.
descend:
	for {
		for i := 0; i < int(cur.NamedChildCount()); i++ {
			c := cur.NamedChild(i)
			if rangeCovers(nodeRange(c), r) {
				cur = c
				continue descend
			}
		}
		break
	}

	if nodeRange(cur) != r {
		return nil
	}
	return t.wrap(cur)
}

// smallestAt returns the smallest named node containing the point, or
// nil if the point lies outside the tree.
func (t *parsedTree) smallestAt(p Point) Node {
	if t.tree == nil {
		return nil
	}
	root := t.tree.RootNode()
	if root == nil || !nodeRange(root).Contains(p) {
		return nil
	}
	pt := sitter.Point{Row: p.Row, Column: p.Col}
	return t.wrap(root.NamedDescendantForPointRange(pt, pt))
}

// wrap converts a raw tree-sitter node into a Node handle. A nil input
// yields a true nil interface, never a typed nil.
func (t *parsedTree) wrap(n *sitter.Node) Node {
	if n == nil {
		return nil
	}
	return &sitterNode{n: n, owner: t}
}

// nodeRange converts tree-sitter points into a Range.
func nodeRange(n *sitter.Node) Range {
	return Range{
		Start: Point{Row: n.StartPoint().Row, Col: n.StartPoint().Column},
		Stop:  Point{Row: n.EndPoint().Row, Col: n.EndPoint().Column},
	}
}

// rangeCovers reports whether outer fully contains inner.
func rangeCovers(outer, inner Range) bool {
	startOK := outer.Start == inner.Start || outer.Start.Before(inner.Start)
	stopOK := outer.Stop == inner.Stop || inner.Stop.Before(outer.Stop)
	return startOK && stopOK
}

// sitterNode adapts a tree-sitter node to the Node interface.
type sitterNode struct {
	n     *sitter.Node
	owner *parsedTree
}

func (s *sitterNode) Type() string { return s.n.Type() }

func (s *sitterNode) Named() bool { return s.n.IsNamed() }

func (s *sitterNode) Range() Range { return nodeRange(s.n) }

func (s *sitterNode) Parent() Node { return s.owner.wrap(s.n.Parent()) }

func (s *sitterNode) Child(i int) Node {
	if i < 0 || i >= int(s.n.ChildCount()) {
		return nil
	}
	return s.owner.wrap(s.n.Child(i))
}

func (s *sitterNode) ChildCount() int { return int(s.n.ChildCount()) }

func (s *sitterNode) NamedChild(i int) Node {
	if i < 0 || i >= int(s.n.NamedChildCount()) {
		return nil
	}
	return s.owner.wrap(s.n.NamedChild(i))
}

func (s *sitterNode) NamedChildCount() int { return int(s.n.NamedChildCount()) }

func (s *sitterNode) NextSibling() Node { return s.owner.wrap(s.n.NextSibling()) }

func (s *sitterNode) PrevSibling() Node { return s.owner.wrap(s.n.PrevSibling()) }

func (s *sitterNode) NextNamedSibling() Node { return s.owner.wrap(s.n.NextNamedSibling()) }

func (s *sitterNode) PrevNamedSibling() Node { return s.owner.wrap(s.n.PrevNamedSibling()) }

func (s *sitterNode) Tree() Tree { return s.owner }

func (s *sitterNode) Equal(other Node) bool {
	o, ok := other.(*sitterNode)
	if !ok {
		return false
	}
	return s.owner == o.owner && s.n.Equal(o.n)
}

// Compile-time interface compliance checks.
var (
	_ Node = (*sitterNode)(nil)
	_ Tree = (*parsedTree)(nil)
)
