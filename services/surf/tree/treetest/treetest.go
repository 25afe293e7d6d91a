// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package treetest provides hand-built in-memory trees for testing the
// navigation core without a real parser.
//
// Nodes are constructed explicitly with their type, named flag, and
// range, then linked into a Tree that sets parent pointers. A Document
// combines a host tree with optional injected trees to exercise the
// injection-crossing paths.
package treetest

import (
	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// Node is an in-memory syntax node.
type Node struct {
	typ      string
	named    bool
	rng      tree.Range
	parent   *Node
	children []*Node
	owner    *Tree
}

// NewNode creates a node with explicit children. Parent and tree links
// are established by NewTree.
func NewNode(typ string, named bool, r tree.Range, children ...*Node) *Node {
	return &Node{typ: typ, named: named, rng: r, children: children}
}

// R builds a range from row/col pairs; stop is exclusive.
func R(startRow, startCol, stopRow, stopCol uint32) tree.Range {
	return tree.Range{
		Start: tree.Point{Row: startRow, Col: startCol},
		Stop:  tree.Point{Row: stopRow, Col: stopCol},
	}
}

func (n *Node) Type() string      { return n.typ }
func (n *Node) Named() bool       { return n.named }
func (n *Node) Range() tree.Range { return n.rng }

func (n *Node) Parent() tree.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Child(i int) tree.Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *Node) ChildCount() int { return len(n.children) }

func (n *Node) NamedChild(i int) tree.Node {
	count := 0
	for _, c := range n.children {
		if c.named {
			if count == i {
				return c
			}
			count++
		}
	}
	return nil
}

func (n *Node) NamedChildCount() int {
	count := 0
	for _, c := range n.children {
		if c.named {
			count++
		}
	}
	return count
}

func (n *Node) NextSibling() tree.Node { return n.sibling(1, false) }
func (n *Node) PrevSibling() tree.Node { return n.sibling(-1, false) }

func (n *Node) NextNamedSibling() tree.Node { return n.sibling(1, true) }
func (n *Node) PrevNamedSibling() tree.Node { return n.sibling(-1, true) }

func (n *Node) sibling(dir int, namedOnly bool) tree.Node {
	if n.parent == nil {
		return nil
	}
	sibs := n.parent.children
	idx := -1
	for i, c := range sibs {
		if c == n {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	for i := idx + dir; i >= 0 && i < len(sibs); i += dir {
		if !namedOnly || sibs[i].named {
			return sibs[i]
		}
	}
	return nil
}

func (n *Node) Tree() tree.Tree {
	if n.owner == nil {
		return nil
	}
	return n.owner
}

func (n *Node) Equal(other tree.Node) bool {
	o, ok := other.(*Node)
	return ok && o == n
}

// Tree is an in-memory tree over explicitly constructed nodes.
type Tree struct {
	root *Node
}

// NewTree links the node graph rooted at root into a Tree, setting
// parent and owner pointers throughout.
func NewTree(root *Node) *Tree {
	t := &Tree{root: root}
	var link func(n *Node)
	link = func(n *Node) {
		n.owner = t
		for _, c := range n.children {
			c.parent = n
			link(c)
		}
	}
	link(root)
	return t
}

// Root returns the tree's root node.
func (t *Tree) Root() tree.Node { return t.root }

// DescendantForRange returns the smallest node exactly covering r.
func (t *Tree) DescendantForRange(r tree.Range) tree.Node {
	var best *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !covers(n.rng, r) {
			return
		}
		if n.rng == r {
			best = n
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	if best == nil {
		return nil
	}
	return best
}

// smallestAt returns the deepest named node containing the point.
func (t *Tree) smallestAt(p tree.Point) *Node {
	if !t.root.rng.Contains(p) {
		return nil
	}
	cur := t.root
descend:
	for {
		for _, c := range cur.children {
			if c.named && c.rng.Contains(p) {
				cur = c
				continue descend
			}
		}
		break
	}
	return cur
}

// Document combines a host tree with injected trees for testing the
// injection seam.
type Document struct {
	Host     *Tree
	Injected []*Tree
}

// SmallestNodeAt implements tree.Document over the fake trees.
func (d *Document) SmallestNodeAt(p tree.Point, ignoreInjections bool) tree.Node {
	if !ignoreInjections {
		for _, t := range d.Injected {
			if n := t.smallestAt(p); n != nil {
				return n
			}
		}
	}
	if n := d.Host.smallestAt(p); n != nil {
		return n
	}
	return nil
}

// DescendantForRange searches injected trees before the host.
func (d *Document) DescendantForRange(r tree.Range) tree.Node {
	for _, t := range d.Injected {
		if n := t.DescendantForRange(r); n != nil {
			return n
		}
	}
	return d.Host.DescendantForRange(r)
}

func covers(outer, inner tree.Range) bool {
	startOK := outer.Start == inner.Start || outer.Start.Before(inner.Start)
	stopOK := outer.Stop == inner.Stop || inner.Stop.Before(outer.Stop)
	return startOK && stopOK
}

// Compile-time interface compliance checks.
var (
	_ tree.Node     = (*Node)(nil)
	_ tree.Tree     = (*Tree)(nil)
	_ tree.Document = (*Document)(nil)
)
