// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package trail

import (
	"testing"

	"github.com/AleutianAI/treesurf/services/surf/nav"
	"github.com/AleutianAI/treesurf/services/surf/tree"
	"github.com/AleutianAI/treesurf/services/surf/tree/treetest"
)

// fixture models:
//
//	func f() {
//	  x = 1
//	}
//	var v = 1
//
// The assignment "x = 1" sits alone on row 1, strictly inside the
// function's rows.
type fixture struct {
	root   *treetest.Node
	fn     *treetest.Node
	block  *treetest.Node
	assign *treetest.Node
	x      *treetest.Node
	one    *treetest.Node
	varDcl *treetest.Node
}

func newFixture() *fixture {
	f := &fixture{}
	f.x = treetest.NewNode("identifier", true, treetest.R(1, 2, 1, 3))
	f.one = treetest.NewNode("int_literal", true, treetest.R(1, 6, 1, 7))
	f.assign = treetest.NewNode("assignment", true, treetest.R(1, 2, 1, 7), f.x, f.one)
	f.block = treetest.NewNode("block", true, treetest.R(0, 9, 2, 1), f.assign)
	f.fn = treetest.NewNode("function_declaration", true, treetest.R(0, 0, 2, 1), f.block)
	f.varDcl = treetest.NewNode("var_declaration", true, treetest.R(3, 0, 3, 9))
	f.root = treetest.NewNode("source_file", true, treetest.R(0, 0, 4, 0), f.fn, f.varDcl)
	treetest.NewTree(f.root)
	return f
}

func start(t *testing.T, seed tree.Node) *Session {
	t.Helper()
	s, err := Start(nav.New(nil), seed)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

// =============================================================================
// Start Tests
// =============================================================================

func TestStart_NilSeed(t *testing.T) {
	if _, err := Start(nav.New(nil), nil); err != ErrNilSeed {
		t.Errorf("Start(nil) error = %v, want ErrNilSeed", err)
	}
}

// Seeding at "x" expands to the assignment: the largest ancestor still
// confined to row 1.
func TestStart_LinewiseExpansion(t *testing.T) {
	f := newFixture()
	s := start(t, f.x)
	if got := s.Current(); got != tree.Node(f.assign) {
		t.Errorf("Current() = %v, want assign", got)
	}
}

func TestStart_AssignsID(t *testing.T) {
	f := newFixture()
	s := start(t, f.x)
	if s.ID == "" {
		t.Error("session ID is empty")
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

// =============================================================================
// Ascend / Descend Tests
// =============================================================================

func TestAscendDescend_RoundTrip(t *testing.T) {
	f := newFixture()
	s := start(t, f.x)

	// assign -> block -> back down must land on assign, not a default
	// first child.
	if got := s.AscendToParent(); got != tree.Node(f.block) {
		t.Fatalf("AscendToParent() = %v, want block", got)
	}
	if got := s.DescendToChild(); got != tree.Node(f.assign) {
		t.Errorf("DescendToChild() = %v, want cached assign", got)
	}
}

func TestAscend_DeepRoundTrip(t *testing.T) {
	f := newFixture()
	s := start(t, f.x)

	s.AscendToParent() // block
	s.AscendToParent() // fn
	s.AscendToParent() // root

	// Replay down the whole cached chain.
	if got := s.DescendToChild(); got != tree.Node(f.fn) {
		t.Fatalf("first descent = %v, want fn", got)
	}
	if got := s.DescendToChild(); got != tree.Node(f.block) {
		t.Fatalf("second descent = %v, want block", got)
	}
	if got := s.DescendToChild(); got != tree.Node(f.assign) {
		t.Errorf("third descent = %v, want assign", got)
	}
}

func TestAscend_AtTop(t *testing.T) {
	f := newFixture()
	s := start(t, f.root)
	if got := s.AscendToParent(); got != nil {
		t.Errorf("AscendToParent() at root = %v, want nil", got)
	}
	if got := s.Current(); got != tree.Node(f.root) {
		t.Errorf("no-op moved the session to %v", got)
	}
}

func TestDescend_AtLeaf(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)
	s.DescendToChild() // x
	if got := s.DescendToChild(); got != nil {
		t.Errorf("DescendToChild() at leaf = %v, want nil", got)
	}
}

// =============================================================================
// Sideways Tests
// =============================================================================

func TestMoveSibling_DiscardsCache(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)

	// Build descent history: assign -> x.
	s.DescendToChild()
	s.AscendToParent()

	// Sideways within the assignment's children after descending again
	// would be on fresh nodes; instead move the whole selection.
	s.AscendToParent() // block
	s.AscendToParent() // fn
	if got := s.MoveSibling(nav.SiblingNext); got != tree.Node(f.varDcl) {
		t.Fatalf("MoveSibling(next) = %v, want varDcl", got)
	}

	// The old vertical cache is gone: descending explores fresh.
	if got := s.DescendToChild(); got != nil {
		t.Errorf("descend into leaf varDcl = %v, want nil", got)
	}
}

func TestMoveSibling_NoSibling(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)
	if got := s.MoveSibling(nav.SiblingNext); got != nil {
		t.Errorf("MoveSibling with no sibling = %v, want nil", got)
	}
	if got := s.Current(); got != tree.Node(f.assign) {
		t.Errorf("failed move changed position to %v", got)
	}
}

// =============================================================================
// Stale Cache Tests
// =============================================================================

// Ascending from a node whose cached parent no longer matches the
// computed parent replaces the link instead of reusing it.
func TestAscend_StaleParentReplaced(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)

	s.AscendToParent()                // block, cached both ways
	s.MoveSibling(nav.SiblingNext)    // no sibling: no-op, cache kept
	s.DescendToChild()                // assign again via cache
	s.AscendToParent()                // block via cache
	if got := s.Current(); got != tree.Node(f.block) {
		t.Fatalf("Current() = %v, want block", got)
	}

	// Jump the session elsewhere, then ascend: the stale child link of
	// the new position must not leak.
	s.SetCurrentNode(f.x)
	if got := s.AscendToParent(); got != tree.Node(f.assign) {
		t.Errorf("AscendToParent() after re-anchor = %v, want assign", got)
	}
}

// =============================================================================
// Linewise Tests
// =============================================================================

func TestDescendToLinewise(t *testing.T) {
	f := newFixture()
	s := start(t, f.fn)

	// fn spans rows 0..2; the assignment on row 1 is the first node
	// strictly inside, two levels down.
	if got := s.DescendToLinewise(); got != tree.Node(f.assign) {
		t.Errorf("DescendToLinewise() = %v, want assign", got)
	}
}

func TestDescendToLinewise_FallsBackToChild(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)

	// No descendant of the single-row assignment is strictly nested by
	// line; plain first-child descent applies.
	if got := s.DescendToLinewise(); got != tree.Node(f.x) {
		t.Errorf("DescendToLinewise() = %v, want x", got)
	}
}

func TestAscendToLinewise(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)

	// Parent of assign is the block; linewise expansion grows it to the
	// function, which spans the same rows 0..2.
	if got := s.AscendToLinewise(); got != tree.Node(f.fn) {
		t.Errorf("AscendToLinewise() = %v, want fn", got)
	}
}

func TestLinewiseAncestor_ColZeroStop(t *testing.T) {
	// A node ending at col 0 of the next row occupies only its start
	// row for linewise purposes.
	leaf := treetest.NewNode("statement", true, treetest.R(0, 0, 0, 5))
	wrap := treetest.NewNode("line", true, treetest.R(0, 0, 1, 0), leaf)
	root := treetest.NewNode("source_file", true, treetest.R(0, 0, 3, 0), wrap)
	treetest.NewTree(root)

	if got := LinewiseAncestor(leaf); got != tree.Node(wrap) {
		t.Errorf("LinewiseAncestor() = %v, want wrap", got)
	}
}

// =============================================================================
// Outermost / Innermost Tests
// =============================================================================

func TestOutermost(t *testing.T) {
	f := newFixture()
	s := start(t, f.x)

	// The document root is never a useful selection: outermost is the
	// top-level construct containing the start.
	if got := s.Outermost(); got != tree.Node(f.fn) {
		t.Errorf("Outermost() = %v, want fn", got)
	}
}

func TestInnermost_ReplaysCache(t *testing.T) {
	f := newFixture()
	s := start(t, f.x) // anchored at assign after expansion

	s.DescendToChild() // x
	s.AscendToParent() // assign
	s.AscendToParent() // block

	if got := s.Innermost(); got != tree.Node(f.x) {
		t.Errorf("Innermost() = %v, want x", got)
	}
}

func TestInnermost_NoCache(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)
	if got := s.Innermost(); got != tree.Node(f.assign) {
		t.Errorf("Innermost() with no history = %v, want current", got)
	}
}

// Outermost then Innermost round-trips back to the deepest visited node.
func TestOutermostInnermost_RoundTrip(t *testing.T) {
	f := newFixture()
	s := start(t, f.x)

	s.DescendToChild() // x
	if got := s.Outermost(); got != tree.Node(f.fn) {
		t.Fatalf("Outermost() = %v, want fn", got)
	}
	if got := s.Innermost(); got != tree.Node(f.x) {
		t.Errorf("Innermost() = %v, want x", got)
	}
}

// =============================================================================
// SetCurrentNode Tests
// =============================================================================

func TestSetCurrentNode(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)
	s.AscendToParent()

	s.SetCurrentNode(f.varDcl)
	if got := s.Current(); got != tree.Node(f.varDcl) {
		t.Fatalf("Current() = %v, want varDcl", got)
	}
	// Cache discarded along with the old position.
	if got := s.DescendToChild(); got != nil {
		t.Errorf("descend after re-anchor = %v, want nil", got)
	}
}

func TestSetCurrentNode_SameNodeKeepsCache(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)
	s.DescendToChild() // x
	s.AscendToParent() // assign, child cache points at x

	s.SetCurrentNode(f.assign)
	if got := s.DescendToChild(); got != tree.Node(f.x) {
		t.Errorf("descend after same-node re-anchor = %v, want cached x", got)
	}
}

func TestSetCurrentNode_Nil(t *testing.T) {
	f := newFixture()
	s := start(t, f.assign)
	s.SetCurrentNode(nil)
	if got := s.Current(); got != tree.Node(f.assign) {
		t.Errorf("Current() after nil re-anchor = %v", got)
	}
}
