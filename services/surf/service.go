// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package surf provides the tree-surfing HTTP service.
//
// The service manages interactive navigation sessions over parsed
// source text: each session holds a buffer, its parse, and a trail
// through the tree. Clients open a session from content and a cursor
// position, issue movement operators against it, toggle the traversal
// mode, and swap sibling nodes. The navigation core is single-threaded
// per buffer, so the service serializes all operations on one session
// behind a per-session mutex.
package surf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AleutianAI/treesurf/services/surf/nav"
	"github.com/AleutianAI/treesurf/services/surf/source"
	"github.com/AleutianAI/treesurf/services/surf/swap"
	"github.com/AleutianAI/treesurf/services/surf/trail"
	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// MaxNodeTextBytes caps the node text echoed in responses.
const MaxNodeTextBytes = 4096

// Sentinel errors for session operations.
var (
	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the session limit is reached.
	ErrTooManySessions = errors.New("too many open sessions")

	// ErrNoNodeAtCursor is returned when the cursor lies outside the tree.
	ErrNoNodeAtCursor = errors.New("no node at cursor position")

	// ErrUnknownOp is returned for unrecognized movement operators.
	ErrUnknownOp = errors.New("unknown movement operator")

	// ErrUnknownDirection is returned for unrecognized swap directions.
	ErrUnknownDirection = errors.New("unknown swap direction")
)

// ServiceConfig configures the surf service.
type ServiceConfig struct {
	// MaxSessions is the maximum number of concurrently open sessions.
	// Default: 64
	MaxSessions int

	// MaxSourceBytes is the maximum source size per session.
	// Default: tree.DefaultMaxSourceSize
	MaxSourceBytes int64
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxSessions:    64,
		MaxSourceBytes: tree.DefaultMaxSourceSize,
	}
}

// session is the server-side state for one navigation session. All
// operations on it run under mu.
type session struct {
	mu    sync.Mutex
	ws    *source.Workspace
	nav   *nav.Navigator
	trail *trail.Session
}

// Service is the surf session service.
//
// Thread Safety:
//
//	Service is safe for concurrent use. The registry is guarded by a
//	read-write mutex and each session serializes its own operations.
type Service struct {
	config   ServiceConfig
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewService creates a surf service with the given configuration.
func NewService(config ServiceConfig) *Service {
	if config.MaxSessions <= 0 {
		config.MaxSessions = DefaultServiceConfig().MaxSessions
	}
	if config.MaxSourceBytes <= 0 {
		config.MaxSourceBytes = DefaultServiceConfig().MaxSourceBytes
	}
	return &Service{
		config:   config,
		sessions: make(map[string]*session),
	}
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Open parses the content and starts a navigation session seeded from
// the cursor position.
//
// Outputs:
//   - *SessionResponse: The session ID and expanded seed node.
//   - error: ErrTooManySessions, ErrNoNodeAtCursor, or a parse error
//     from the tree package (including tree.ErrUnsupportedLanguage and
//     tree.ErrSourceTooLarge).
func (s *Service) Open(ctx context.Context, req OpenSessionRequest) (*SessionResponse, error) {
	ctx, span := startOpSpan(ctx, "Open", "")
	defer span.End()

	if int64(len(req.Content)) > s.config.MaxSourceBytes {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d",
			tree.ErrSourceTooLarge, len(req.Content), s.config.MaxSourceBytes)
	}

	ws, err := source.Open(ctx, []byte(req.Content), tree.Language(req.Language))
	if err != nil {
		return nil, err
	}

	seed := ws.SmallestNodeAt(req.Cursor, false)
	if seed == nil {
		ws.Close()
		return nil, fmt.Errorf("%w: %d:%d", ErrNoNodeAtCursor, req.Cursor.Row, req.Cursor.Col)
	}

	opts := []nav.Option{}
	if req.Unnamed {
		opts = append(opts, nav.WithUnnamedMode())
	}
	navigator := nav.New(ws, opts...)

	t, err := trail.Start(navigator, seed)
	if err != nil {
		ws.Close()
		return nil, err
	}

	st := &session{ws: ws, nav: navigator, trail: t}

	s.mu.Lock()
	if len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		ws.Close()
		return nil, fmt.Errorf("%w: limit %d", ErrTooManySessions, s.config.MaxSessions)
	}
	s.sessions[t.ID] = st
	s.mu.Unlock()

	recordSessionOpened(ctx, req.Language)
	return s.snapshot(st), nil
}

// Move applies one movement operator to the session.
//
// Outputs:
//   - *MoveResponse: The position after the move; Moved is false for a
//     no-op (the relation did not exist).
//   - error: ErrSessionNotFound or ErrUnknownOp.
func (s *Service) Move(ctx context.Context, id, op string) (*MoveResponse, error) {
	st, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	ctx, span := startOpSpan(ctx, "Move", id)
	defer span.End()

	st.mu.Lock()
	defer st.mu.Unlock()

	var dest tree.Node
	switch op {
	case "parent":
		dest = st.trail.AscendToParent()
	case "parent-linewise":
		dest = st.trail.AscendToLinewise()
	case "child":
		dest = st.trail.DescendToChild()
	case "child-linewise":
		dest = st.trail.DescendToLinewise()
	case "next", "prev", "first", "last":
		dest = st.trail.MoveSibling(nav.SiblingOp(op))
	case "outermost":
		dest = st.trail.Outermost()
	case "innermost":
		dest = st.trail.Innermost()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}

	moved := dest != nil
	recordMove(ctx, op, moved)
	return &MoveResponse{
		Node:  s.nodeInfo(st, st.trail.Current()),
		Moved: moved,
	}, nil
}

// SetMode switches the session's named/unnamed traversal mode.
func (s *Service) SetMode(ctx context.Context, id string, named bool) (*SessionResponse, error) {
	st, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	_, span := startOpSpan(ctx, "SetMode", id)
	defer span.End()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.nav.SetNamedMode(named)
	return s.snapshot(st), nil
}

// Swap exchanges the current node's text with its next or previous
// sibling and re-anchors the session at the node now holding the
// current node's text.
//
// When the post-swap lookup cannot resolve an exact node (the grammar
// reshaped the surroundings), the buffer mutation stands, the session
// is re-seeded from the swapped position, and the response carries
// Resolved=false.
//
// Outputs:
//   - *SwapResponse: Swap outcome plus the full mutated content.
//   - error: ErrSessionNotFound, ErrUnknownDirection, or a wrapped
//     reparse failure.
func (s *Service) Swap(ctx context.Context, id, direction string) (*SwapResponse, error) {
	st, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	ctx, span := startOpSpan(ctx, "Swap", id)
	defer span.End()

	var op nav.SiblingOp
	switch direction {
	case "next":
		op = nav.SiblingNext
	case "prev":
		op = nav.SiblingPrev
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	cur := st.trail.Current()
	other := st.nav.Sibling(cur, op)
	if other == nil {
		recordSwap(ctx, "no_sibling", 0)
		return &SwapResponse{
			Node:     s.nodeInfo(st, cur),
			Content:  st.ws.String(),
			Swapped:  false,
			Resolved: true,
		}, nil
	}

	seedPos := cur.Range().Start
	start := time.Now()
	resolved, err := swap.Swap(st.ws, cur, other)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		st.trail.SetCurrentNode(resolved)
		recordSwap(ctx, "ok", elapsed)
		return &SwapResponse{
			Node:     s.nodeInfo(st, resolved),
			Content:  st.ws.String(),
			Swapped:  true,
			Resolved: true,
		}, nil

	case errors.Is(err, swap.ErrUnresolved):
		// The mutation stands; re-seed the trail from position.
		if seed := st.ws.SmallestNodeAt(seedPos, false); seed != nil {
			st.trail.SetCurrentNode(seed)
		}
		recordSwap(ctx, "unresolved", elapsed)
		return &SwapResponse{
			Content:  st.ws.String(),
			Swapped:  true,
			Resolved: false,
		}, nil

	default:
		recordSwap(ctx, "error", elapsed)
		return nil, err
	}
}

// Get returns the session's current state.
func (s *Service) Get(id string) (*SessionResponse, error) {
	st, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return s.snapshot(st), nil
}

// Close tears down a session and releases its parse.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	st, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	st.mu.Lock()
	st.ws.Close()
	st.mu.Unlock()
	recordSessionClosed(ctx)
	return nil
}

// lookup resolves a session by ID.
func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	st, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return st, nil
}

// snapshot renders a session's current state. Callers hold st.mu.
func (s *Service) snapshot(st *session) *SessionResponse {
	return &SessionResponse{
		SessionID:      st.trail.ID,
		Node:           s.nodeInfo(st, st.trail.Current()),
		NamedMode:      st.nav.NamedMode(),
		Language:       string(st.ws.Language()),
		CreatedAtMilli: st.trail.CreatedAt.UnixMilli(),
	}
}

// nodeInfo renders one node for API responses. Callers hold st.mu.
func (s *Service) nodeInfo(st *session, n tree.Node) *NodeInfo {
	if n == nil {
		return nil
	}
	r := n.Range()
	text := ""
	for i, line := range st.ws.Text(r) {
		if i > 0 {
			text += "\n"
		}
		text += line
		if len(text) > MaxNodeTextBytes {
			text = text[:MaxNodeTextBytes]
			break
		}
	}
	return &NodeInfo{
		Type:  n.Type(),
		Named: n.Named(),
		Range: r,
		Text:  text,
	}
}
