// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package trail tracks a user's path through a syntax tree.
//
// A Session is a zipper over the tree: it holds the current node plus
// cached parent/child links discovered during the interactive session,
// so that ascending to a parent and descending again restores exactly
// the node that was current before the ascent instead of re-deriving
// the default first child. Sideways movement discards the vertical
// cache, since a sibling's ancestry is unrelated to what was cached.
//
// The structure is acyclic by construction: links are only added going
// strictly up or down from the current position, forming two chains
// that meet at the current node.
//
// Every operation returns the new current node, or nil when the
// requested relation does not exist; nil means the session stayed put.
package trail

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/treesurf/services/surf/nav"
	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// ErrNilSeed is returned when a session is started without a node.
var ErrNilSeed = errors.New("trail: nil seed node")

// step is one position on the trail: a node plus the cached links to
// the steps above and below it.
type step struct {
	node   tree.Node
	parent *step
	child  *step
}

// Session is one interactive navigation session over a single buffer.
//
// Thread Safety:
//
//	Session is not synchronized; the core is single-threaded per
//	buffer and callers running sessions from multiple goroutines must
//	serialize access.
type Session struct {
	// ID uniquely identifies the session.
	ID string

	// CreatedAt is when the session was opened.
	CreatedAt time.Time

	navigator *nav.Navigator
	current   *step
}

// Start opens a session anchored at the seed node, expanded to the
// largest ancestor spanning exactly the seed's set of lines. The
// navigator is shared state: its mode applies to every move the
// session makes.
//
// Outputs:
//   - *Session: The new session, anchored post-expansion.
//   - error: ErrNilSeed if seed is nil.
func Start(navigator *nav.Navigator, seed tree.Node) (*Session, error) {
	if seed == nil {
		return nil, ErrNilSeed
	}
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		navigator: navigator,
		current:   &step{node: LinewiseAncestor(seed)},
	}, nil
}

// Current returns the node at the present position.
func (s *Session) Current() tree.Node { return s.current.node }

// Navigator returns the session's shared navigator.
func (s *Session) Navigator() *nav.Navigator { return s.navigator }

// AscendToParent moves to the current node's parent.
//
// The freshly computed parent replaces the cached parent link when the
// cache is absent or holds a different node; otherwise the cached link
// is reused, preserving any deeper descent history hanging off it.
// Returns the new current node, or nil (no-op) at the top.
func (s *Session) AscendToParent() tree.Node {
	return s.ascend(s.navigator.Parent(s.current.node))
}

// AscendToLinewise moves to the current node's parent expanded to the
// largest ancestor spanning the same set of lines. Returns the new
// current node, or nil (no-op) at the top.
func (s *Session) AscendToLinewise() tree.Node {
	p := s.navigator.Parent(s.current.node)
	if p == nil {
		return nil
	}
	return s.ascend(LinewiseAncestor(p))
}

// ascend enters the parent node, refreshing the cached link if stale.
func (s *Session) ascend(parent tree.Node) tree.Node {
	if parent == nil {
		return nil
	}
	if s.current.parent == nil || !s.current.parent.node.Equal(parent) {
		s.current.parent = &step{node: parent, child: s.current}
	}
	s.current = s.current.parent
	return s.current.node
}

// DescendToChild moves to the cached child if one exists (restoring
// the previously visited node), otherwise to the first child under the
// active mode. Returns the new current node, or nil (no-op) at a leaf.
func (s *Session) DescendToChild() tree.Node {
	if s.current.child != nil {
		s.current = s.current.child
		return s.current.node
	}
	c := s.navigator.Child(s.current.node)
	if c == nil {
		return nil
	}
	s.current.child = &step{node: c, parent: s.current}
	s.current = s.current.child
	return s.current.node
}

// DescendToLinewise searches the current subtree in breadth order for
// the first node whose rows lie strictly inside the current node's
// rows, pre-seeds the child cache with it, and descends. When no
// descendant is strictly nested by line, it behaves exactly like
// DescendToChild.
func (s *Session) DescendToLinewise() tree.Node {
	if found := s.linewiseDescendant(); found != nil {
		s.current.child = &step{node: found, parent: s.current}
	}
	return s.DescendToChild()
}

// linewiseDescendant finds the first breadth-order descendant whose
// row range is strictly inside the current node's row range.
func (s *Session) linewiseDescendant() tree.Node {
	r := s.current.node.Range()

	var queue []tree.Node
	if s.current.child != nil {
		queue = append(queue, s.current.child.node)
	} else {
		queue = append(queue, s.navigator.Children(s.current.node)...)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		nr := n.Range()
		if nr.Start.Row > r.Start.Row && nr.Stop.Row < r.Stop.Row {
			return n
		}
		queue = append(queue, s.navigator.Children(n)...)
	}
	return nil
}

// MoveSibling moves sideways to the sibling selected by op. The new
// position carries no cached links: the sibling's ancestry and
// descendants are unrelated to what was cached. Returns the new
// current node, or nil (no-op) when no such sibling exists.
func (s *Session) MoveSibling(op nav.SiblingOp) tree.Node {
	sib := s.navigator.Sibling(s.current.node, op)
	if sib == nil {
		return nil
	}
	s.current = &step{node: sib}
	return s.current.node
}

// Outermost ascends until no parent remains, then descends exactly one
// level back down. The true root spans the whole document and is never
// a useful selection, so outermost means the top-level construct
// containing the starting position. Returns the resulting node.
func (s *Session) Outermost() tree.Node {
	for s.AscendToParent() != nil {
	}
	if n := s.DescendToChild(); n != nil {
		return n
	}
	return s.current.node
}

// Innermost replays cached child links down to the deepest previously
// visited node. It never consults the navigator; positions that were
// never visited are not discovered here. Returns the resulting node.
func (s *Session) Innermost() tree.Node {
	for s.current.child != nil {
		s.current = s.current.child
	}
	return s.current.node
}

// SetCurrentNode re-anchors the session at node, discarding the entire
// cached trail, unless node is already the current node (by identity,
// not just range), in which case nothing changes. Used after external
// mutations such as a swap, which invalidate every cached handle.
func (s *Session) SetCurrentNode(node tree.Node) {
	if node == nil || s.current.node.Equal(node) {
		return
	}
	s.current = &step{node: node}
}

// LinewiseAncestor expands seed to the largest ancestor spanning
// exactly the same set of lines. A candidate whose range stops at
// column 0 merely touches that row without content on it, so it is
// treated as ending on the previous row for the comparison. Returns
// seed itself when it has no parent or when any parent would span
// additional lines.
func LinewiseAncestor(seed tree.Node) tree.Node {
	node := seed
	seedStart, seedStop := rowSpan(seed.Range())
	for {
		p := node.Parent()
		if p == nil {
			return node
		}
		start, stop := rowSpan(p.Range())
		if start < seedStart || stop > seedStop {
			return node
		}
		node = p
	}
}

// rowSpan returns the inclusive row band a range occupies.
func rowSpan(r tree.Range) (start, stop uint32) {
	start, stop = r.Start.Row, r.Stop.Row
	if r.Stop.Col == 0 && stop > start {
		stop--
	}
	return start, stop
}
