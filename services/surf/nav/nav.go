// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package nav computes movement destinations over a syntax tree.
//
// Every operation is a pure function of a node and the navigator's
// named/unnamed mode: given a node, it returns the destination node or
// nil when no such relation exists. Nil is the only absence signal;
// callers treat it as "stay put".
//
// The mode is owned by the Navigator rather than living in package
// state, so all lookups within one movement step observe a single mode
// value and independent navigators cannot interfere.
package nav

import (
	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// SiblingOp selects which sibling a sibling move targets.
type SiblingOp string

// Sibling operators.
const (
	SiblingFirst SiblingOp = "first"
	SiblingLast  SiblingOp = "last"
	SiblingNext  SiblingOp = "next"
	SiblingPrev  SiblingOp = "prev"
)

// Navigator computes movement destinations under a named/unnamed mode.
//
// The optional Document enables crossing language-injection boundaries:
// descending into an embedded tree at a leaf, and ascending back out of
// one at a root. Without a Document those moves simply return nil.
//
// Thread Safety:
//
//	Navigator is not synchronized; the core is single-threaded per
//	buffer. Sharing one Navigator between sessions of the same buffer
//	is intended (they observe one mode), but callers must serialize.
type Navigator struct {
	doc   tree.Document
	named bool
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithUnnamedMode starts the navigator in unnamed (all-nodes) mode.
func WithUnnamedMode() Option {
	return func(n *Navigator) { n.named = false }
}

// New creates a Navigator over the given document. The document may be
// nil, which disables injection crossing. Named mode is the default.
func New(doc tree.Document, opts ...Option) *Navigator {
	n := &Navigator{doc: doc, named: true}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetNamedMode switches between named and unnamed traversal. The switch
// affects the destination of subsequent calls only; nothing already
// computed is revisited.
func (nv *Navigator) SetNamedMode(named bool) { nv.named = named }

// NamedMode reports whether the navigator is in named mode.
func (nv *Navigator) NamedMode() bool { return nv.named }

// Sibling returns the sibling of n selected by op, or nil when the
// node has no parent (first/last) or sits at the end of the chain
// (next/prev).
func (nv *Navigator) Sibling(n tree.Node, op SiblingOp) tree.Node {
	if n == nil {
		return nil
	}
	switch op {
	case SiblingFirst, SiblingLast:
		parent := n.Parent()
		if parent == nil {
			return nil
		}
		if op == SiblingFirst {
			return nv.childAt(parent, 0)
		}
		return nv.childAt(parent, nv.childCount(parent)-1)
	case SiblingNext:
		if nv.named {
			return n.NextNamedSibling()
		}
		return n.NextSibling()
	case SiblingPrev:
		if nv.named {
			return n.PrevNamedSibling()
		}
		return n.PrevSibling()
	}
	return nil
}

// Child returns the first child of n under the active mode.
//
// At a leaf, Child attempts to descend across an injection boundary:
// if the smallest node at n's start position belongs to a different
// tree (an embedded language parsed separately), that node is the
// destination. The tree-identity check keeps the descent from looping
// on n itself.
func (nv *Navigator) Child(n tree.Node) tree.Node {
	if n == nil {
		return nil
	}
	if c := nv.childAt(n, 0); c != nil {
		return c
	}
	if nv.doc == nil {
		return nil
	}
	injected := nv.doc.SmallestNodeAt(n.Range().Start, false)
	if injected != nil && !tree.SameTree(injected, n) {
		return injected
	}
	return nil
}

// Parent returns the nearest ancestor of n under the active mode,
// skipping useless wrappers: an ancestor with exactly n's range is not
// a meaningful target when n also has no navigable sibling, since
// moving there would neither change the selection nor open any new
// sideways move. Skipping stops at the first ancestor with a different
// range; if every ancestor is range-identical, Parent returns nil.
//
// When n has no ancestor in its own tree at all, Parent attempts to
// escape an injected region: the smallest host-tree node at n's start
// position is the synthetic parent if it belongs to a different tree.
func (nv *Navigator) Parent(n tree.Node) tree.Node {
	if n == nil {
		return nil
	}
	p := nv.modeParent(n)
	if p == nil {
		return nv.escapeInjection(n)
	}
	if nv.hasNavigableSibling(n) {
		return p
	}
	r := n.Range()
	for p != nil && p.Range() == r {
		p = nv.modeParent(p)
	}
	return p
}

// modeParent returns the direct ancestor under the active mode: the
// nearest named ancestor in named mode, any direct ancestor otherwise.
func (nv *Navigator) modeParent(n tree.Node) tree.Node {
	p := n.Parent()
	if !nv.named {
		return p
	}
	for p != nil && !p.Named() {
		p = p.Parent()
	}
	return p
}

// hasNavigableSibling reports whether n has a next or previous sibling
// reachable under the active mode.
func (nv *Navigator) hasNavigableSibling(n tree.Node) bool {
	return nv.Sibling(n, SiblingNext) != nil || nv.Sibling(n, SiblingPrev) != nil
}

// escapeInjection resolves the enclosing outer tree's node at n's
// position, ignoring injections. Returns nil when n already belongs to
// the outermost tree.
func (nv *Navigator) escapeInjection(n tree.Node) tree.Node {
	if nv.doc == nil {
		return nil
	}
	outer := nv.doc.SmallestNodeAt(n.Range().Start, true)
	if outer != nil && !tree.SameTree(outer, n) {
		return outer
	}
	return nil
}

// childAt returns the i-th child of n under the active mode.
func (nv *Navigator) childAt(n tree.Node, i int) tree.Node {
	if nv.named {
		return n.NamedChild(i)
	}
	return n.Child(i)
}

// childCount returns n's child count under the active mode.
func (nv *Navigator) childCount(n tree.Node) int {
	if nv.named {
		return n.NamedChildCount()
	}
	return n.ChildCount()
}

// Children enumerates n's children under the active mode, in order.
// Used by linewise descent to walk a subtree without re-deriving
// sibling chains node by node.
func (nv *Navigator) Children(n tree.Node) []tree.Node {
	if n == nil {
		return nil
	}
	count := nv.childCount(n)
	out := make([]tree.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := nv.childAt(n, i); c != nil {
			out = append(out, c)
		}
	}
	return out
}
