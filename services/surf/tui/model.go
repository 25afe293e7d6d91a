// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tui provides the interactive tree-surfing terminal interface.
//
// # Description
//
// This package implements the file surfing TUI using bubbletea. It
// renders the buffer in a scrolling viewport with the current node's
// extent highlighted, and maps keys to tree movement and swap
// operations. The underlying file is watched with fsnotify; external
// edits trigger a reload that re-anchors the trail at the old position.
//
// # Thread Safety
//
// TUI components are designed for single-threaded use within the
// bubbletea event loop. Do not access TUI state from multiple
// goroutines.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/treesurf/services/surf/nav"
	"github.com/AleutianAI/treesurf/services/surf/source"
	"github.com/AleutianAI/treesurf/services/surf/swap"
	"github.com/AleutianAI/treesurf/services/surf/trail"
	"github.com/AleutianAI/treesurf/services/surf/tree"
)

// =============================================================================
// Messages
// =============================================================================

// fileChangedMsg signals the watched file was modified externally.
type fileChangedMsg struct{}

// watchErrMsg carries a watcher failure.
type watchErrMsg struct{ err error }

// =============================================================================
// Config
// =============================================================================

// Config configures the surf TUI.
type Config struct {
	// Watch enables fsnotify-based reload on external file changes.
	Watch bool

	// Width overrides terminal width (0 = auto-detect).
	Width int

	// Height overrides terminal height (0 = auto-detect).
	Height int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Watch: true}
}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model for interactive tree surfing.
//
// # Description
//
// Manages one open workspace, its navigator, and the trail through
// the tree. Every movement key delegates to the trail; the view
// re-renders the highlighted extent afterward.
type Model struct {
	config Config

	ws    *source.Workspace
	nav   *nav.Navigator
	trail *trail.Session

	viewport viewport.Model
	watcher  *fsnotify.Watcher

	width  int
	height int

	ready    bool
	showHelp bool
	quitting bool
	dirty    bool

	status string
	err    error
}

// New creates a surf model over an opened workspace.
//
// # Inputs
//
//   - ws: The workspace to surf. The model takes ownership and closes
//     it on quit.
//   - seed: The cursor position to anchor the trail at.
//   - config: Configuration options.
//
// # Outputs
//
//   - Model: Ready-to-use model for tea.NewProgram.
//   - error: Non-nil if no node exists at the seed position.
func New(ws *source.Workspace, seed tree.Point, config Config) (Model, error) {
	node := ws.SmallestNodeAt(seed, false)
	if node == nil {
		return Model{}, fmt.Errorf("no node at %d:%d", seed.Row, seed.Col)
	}

	navigator := nav.New(ws)
	t, err := trail.Start(navigator, node)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		config: config,
		ws:     ws,
		nav:    navigator,
		trail:  t,
		status: "surfing " + ws.Path(),
	}

	if config.Watch && ws.Path() != "" {
		watcher, err := fsnotify.NewWatcher()
		if err == nil && watcher.Add(ws.Path()) == nil {
			m.watcher = watcher
		}
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return waitForChange(m.watcher)
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight

		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.refresh()

	case tea.KeyMsg:
		if m.showHelp {
			if s := msg.String(); s == "q" || s == "?" || s == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		return m.handleKey(msg)

	case fileChangedMsg:
		m.reload()
		if m.watcher != nil {
			cmds = append(cmds, waitForChange(m.watcher))
		}

	case watchErrMsg:
		m.err = msg.err
		m.status = "watch error: " + msg.err.Error()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey maps one keypress to a trail or swap operation.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.watcher != nil {
			m.watcher.Close()
		}
		m.ws.Close()
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	// Vertical movement through the tree.
	case "k", "up":
		m.report("parent", m.trail.AscendToParent())
	case "K":
		m.report("parent-linewise", m.trail.AscendToLinewise())
	case "j", "down":
		m.report("child", m.trail.DescendToChild())
	case "J":
		m.report("child-linewise", m.trail.DescendToLinewise())

	// Sibling movement.
	case "l", "right":
		m.report("next", m.trail.MoveSibling(nav.SiblingNext))
	case "h", "left":
		m.report("prev", m.trail.MoveSibling(nav.SiblingPrev))
	case "g":
		m.report("first", m.trail.MoveSibling(nav.SiblingFirst))
	case "G":
		m.report("last", m.trail.MoveSibling(nav.SiblingLast))

	// Trail extremes.
	case "o":
		m.report("outermost", m.trail.Outermost())
	case "i":
		m.report("innermost", m.trail.Innermost())

	// Mode toggle.
	case "m":
		named := !m.nav.NamedMode()
		m.nav.SetNamedMode(named)
		if named {
			m.status = "mode: named"
		} else {
			m.status = "mode: unnamed"
		}

	// Restructuring.
	case ">":
		m.swapSibling(nav.SiblingNext)
	case "<":
		m.swapSibling(nav.SiblingPrev)

	// Persistence.
	case "w":
		if err := m.ws.WriteFile(); err != nil {
			m.status = "write failed: " + err.Error()
		} else {
			m.dirty = false
			m.status = "wrote " + m.ws.Path()
		}
	case "r":
		m.reload()

	// Plain scrolling.
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	}

	m.refresh()
	return m, nil
}

// report sets the status line after a movement attempt.
func (m *Model) report(op string, dest tree.Node) {
	if dest == nil {
		m.status = op + ": no move"
		return
	}
	r := dest.Range()
	m.status = fmt.Sprintf("%s -> %s [%d:%d-%d:%d]",
		op, dest.Type(), r.Start.Row, r.Start.Col, r.Stop.Row, r.Stop.Col)
}

// swapSibling exchanges the current node with a sibling and re-anchors.
func (m *Model) swapSibling(op nav.SiblingOp) {
	cur := m.trail.Current()
	other := m.nav.Sibling(cur, op)
	if other == nil {
		m.status = "swap: no sibling"
		return
	}

	seedPos := cur.Range().Start
	resolved, err := swap.Swap(m.ws, cur, other)
	switch {
	case err == nil:
		m.trail.SetCurrentNode(resolved)
		m.dirty = true
		m.status = "swapped " + resolved.Type()
	case errors.Is(err, swap.ErrUnresolved):
		if seed := m.ws.SmallestNodeAt(seedPos, false); seed != nil {
			m.trail.SetCurrentNode(seed)
		}
		m.dirty = true
		m.status = "swapped (node reshaped)"
	default:
		m.err = err
		m.status = "swap failed: " + err.Error()
	}
}

// reload re-reads the file and re-anchors the trail at the old position.
func (m *Model) reload() {
	pos := m.trail.Current().Range().Start

	content, err := readFile(m.ws.Path())
	if err != nil {
		m.status = "reload failed: " + err.Error()
		return
	}
	if err := m.ws.Reload(content); err != nil {
		m.status = "reload failed: " + err.Error()
		return
	}

	seed := m.ws.SmallestNodeAt(pos, false)
	if seed == nil {
		seed = m.ws.Root()
	}
	if t, err := trail.Start(m.nav, seed); err == nil {
		m.trail = t
	}
	m.dirty = false
	m.status = "reloaded " + m.ws.Path()
	m.refresh()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.renderHelp())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// =============================================================================
// Rendering
// =============================================================================

// refresh re-renders the buffer with the current node highlighted and
// scrolls the viewport to keep it visible.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	cur := m.trail.Current()
	m.viewport.SetContent(renderHighlighted(m.ws, cur.Range()))

	// Keep the highlight on screen.
	top := int(cur.Range().Start.Row)
	if top < m.viewport.YOffset || top >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(top - m.viewport.Height/3)
	}
}

// renderHighlighted renders every buffer line, applying the highlight
// style to the byte span covered by r.
func renderHighlighted(ws *source.Workspace, r tree.Range) string {
	var b strings.Builder
	last := ws.LineCount() - 1
	for row := 0; row <= last; row++ {
		line := ws.Line(row)
		switch {
		case uint32(row) < r.Start.Row || uint32(row) > r.Stop.Row:
			b.WriteString(sourceStyle.Render(line))
		case uint32(row) == r.Start.Row && uint32(row) == r.Stop.Row:
			start := clampIndex(line, int(r.Start.Col))
			stop := clampIndex(line, int(r.Stop.Col))
			b.WriteString(sourceStyle.Render(line[:start]))
			b.WriteString(highlightStyle.Render(line[start:stop]))
			b.WriteString(sourceStyle.Render(line[stop:]))
		case uint32(row) == r.Start.Row:
			start := clampIndex(line, int(r.Start.Col))
			b.WriteString(sourceStyle.Render(line[:start]))
			b.WriteString(highlightStyle.Render(line[start:]))
		case uint32(row) == r.Stop.Row:
			stop := clampIndex(line, int(r.Stop.Col))
			b.WriteString(highlightStyle.Render(line[:stop]))
			b.WriteString(sourceStyle.Render(line[stop:]))
		default:
			b.WriteString(highlightStyle.Render(line))
		}
		if row < last {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// clampIndex bounds a byte column to the line length.
func clampIndex(line string, i int) int {
	if i < 0 {
		return 0
	}
	if i > len(line) {
		return len(line)
	}
	return i
}

func (m Model) renderHeader() string {
	cur := m.trail.Current()
	mode := "named"
	if !m.nav.NamedMode() {
		mode = "unnamed"
	}
	marker := ""
	if m.dirty {
		marker = " [+]"
	}
	title := titleStyle.Render("treesurf") + " " +
		filePathStyle.Render(m.ws.Path()+marker)
	info := nodeTypeStyle.Render(cur.Type()) + " " +
		statsStyle.Render(fmt.Sprintf("(%s, %d injections)", mode, m.ws.InjectionCount()))
	return title + "  " + info
}

func (m Model) renderFooter() string {
	help := helpDescStyle.Render("k/j parent/child · h/l siblings · K/J linewise · m mode · </> swap · w write · ? help · q quit")
	return statusStyle.Render(m.status) + "\n" + help
}

func (m Model) renderHelp() string {
	rows := []struct{ key, desc string }{
		{"k / up", "move to parent"},
		{"K", "move to linewise parent (spans more lines)"},
		{"j / down", "move to child"},
		{"J", "move to linewise child (spans fewer lines)"},
		{"h / left", "previous sibling"},
		{"l / right", "next sibling"},
		{"g", "first sibling"},
		{"G", "last sibling"},
		{"o", "outermost visited ancestor"},
		{"i", "innermost visited descendant"},
		{"m", "toggle named/unnamed traversal"},
		{">", "swap with next sibling"},
		{"<", "swap with previous sibling"},
		{"w", "write buffer to file"},
		{"r", "reload from disk"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Key Bindings"))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Render(fmt.Sprintf("%-9s", row.key)),
			helpDescStyle.Render(row.desc)))
	}
	return b.String()
}

// =============================================================================
// Styles
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	nodeTypeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("24"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))
)
