// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tree adapts parsed syntax trees for interactive navigation.
//
// This package defines the node and tree abstractions the navigation,
// trail, and swap packages operate on, plus a concrete tree-sitter
// implementation (see Forest). Node handles are valid only against one
// immutable tree snapshot: any mutation of the underlying text
// invalidates every handle, and callers must re-resolve nodes by range
// after a reparse.
//
// Design principles:
//   - Absence of a relation is a nil return, never an error
//   - Row/column coordinates only; stop positions are exclusive
//   - Injection lookup is a narrow capability (Document), keeping the
//     navigation algorithms host-agnostic
package tree

// Point is a zero-based row/column position in the source text.
// Columns count bytes within the row.
type Point struct {
	Row uint32 `json:"row"`
	Col uint32 `json:"col"`
}

// Before reports whether p is strictly before q in document order.
func (p Point) Before(q Point) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Col < q.Col
}

// Range is a span of source text. Stop is exclusive.
type Range struct {
	Start Point `json:"start"`
	Stop  Point `json:"stop"`
}

// Contains reports whether the point lies within the range
// (start inclusive, stop exclusive).
func (r Range) Contains(p Point) bool {
	return !p.Before(r.Start) && p.Before(r.Stop)
}

// Empty reports whether the range spans no text.
func (r Range) Empty() bool {
	return r.Start == r.Stop
}

// Position is a plain value copy of a node's range. Unlike a Node
// handle it survives text mutations, so callers hold a Position across
// a reparse and re-resolve the node afterwards.
type Position struct {
	Range Range `json:"range"`
}

// Node is a handle to a single syntax-tree node.
//
// Two nodes can be range-equal without being the same node (a node and
// its sole child often span identical text), so identity checks go
// through Equal, never through range comparison.
//
// All relation accessors return nil when the relation does not exist.
type Node interface {
	// Type returns the grammar's string tag for this node.
	Type() string

	// Named reports whether the node is grammar-significant, as
	// opposed to anonymous syntax such as punctuation.
	Named() bool

	// Range returns the text span covered by the node.
	Range() Range

	// Parent returns the direct ancestor, or nil at the root.
	Parent() Node

	// Child returns the i-th child counting both named and anonymous
	// children, or nil if out of range.
	Child(i int) Node

	// ChildCount returns the number of children, named and anonymous.
	ChildCount() int

	// NamedChild returns the i-th named child, or nil if out of range.
	NamedChild(i int) Node

	// NamedChildCount returns the number of named children.
	NamedChildCount() int

	// NextSibling returns the following sibling, named or not.
	NextSibling() Node

	// PrevSibling returns the preceding sibling, named or not.
	PrevSibling() Node

	// NextNamedSibling returns the following named sibling.
	NextNamedSibling() Node

	// PrevNamedSibling returns the preceding named sibling.
	PrevNamedSibling() Node

	// Tree returns the owning tree. Nodes from different trees occupy
	// the same buffer when language injections are present.
	Tree() Tree

	// Equal reports node identity: same tree, same structural
	// position. Range equality is not sufficient.
	Equal(other Node) bool
}

// Tree is one immutable parse of a region of the buffer.
type Tree interface {
	// Root returns the tree's root node.
	Root() Node

	// DescendantForRange returns the smallest node whose range exactly
	// equals r, or nil if no node covers exactly that span.
	DescendantForRange(r Range) Node
}

// Document resolves buffer positions to nodes across every tree in the
// buffer, including injected sub-trees. This is the only seam through
// which navigation crosses injection boundaries.
type Document interface {
	// SmallestNodeAt returns the smallest named node containing the
	// point. With ignoreInjections set, only the host tree is
	// consulted; otherwise injected trees take precedence.
	SmallestNodeAt(p Point, ignoreInjections bool) Node
}

// SameTree reports whether two nodes belong to the same tree.
func SameTree(a, b Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Tree() == b.Tree()
}
