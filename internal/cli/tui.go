package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/observability"
	"github.com/matzehuels/conceptgraph/pkg/outline"
	"github.com/matzehuels/conceptgraph/pkg/tour"
)

// Outline pane styles
var (
	listSelectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listDropStyle     = lipgloss.NewStyle().Foreground(colorPink)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// Screen rows above and below the outline pane.
const (
	headerRows = 3
	detailRows = 7
)

// =============================================================================
// TourModel - Interactive tour and outline
// =============================================================================

// tourModel is the bubbletea model of the tour command. The left gutter
// shows the tour cursor, the selection follows the keyboard and the mouse.
// Rows are dragged with the mouse; categories carry their content rows.
type tourModel struct {
	ctx   context.Context
	title string

	graph    *graph.Graph
	assign   tour.Assignment
	ctrl     *tour.Controller
	reorder  *outline.Reorderer
	scroller outline.Scroller

	selected int
	offset   int
	height   int

	focus     string
	detail    bool
	status    string
	pressRow  int
	lastY     int
	dropAt    int
	hasDropAt bool

	orderChanged bool
	graphChanged bool
}

// tourModelOptions tunes the interactive tour.
type tourModelOptions struct {
	Title           string
	ScrollThreshold float64
	ScrollMaxStep   float64
	Start           bool
}

func newTourModel(ctx context.Context, g *graph.Graph, path []string, opts tourModelOptions) *tourModel {
	m := &tourModel{
		ctx:      ctx,
		title:    opts.Title,
		graph:    g,
		assign:   tour.AssignAnchors(g),
		height:   20,
		pressRow: -1,
		scroller: outline.Scroller{Threshold: opts.ScrollThreshold, MaxStep: opts.ScrollMaxStep},
	}
	m.ctrl = tour.NewController(nil, tour.ListenerFuncs{
		OnFocus:       m.onFocus,
		OnCloseDetail: func() { m.detail = false },
		OnResetCamera: func() { m.focus = "" },
		OnPathChanged: func([]string) { m.orderChanged = true },
	})
	m.ctrl.ReplacePath(path)
	m.orderChanged = false
	m.reorder = outline.NewReorderer(m.ctrl, g.Types())
	if opts.Start {
		m.ctrl.StartPath(path)
	}
	return m
}

func (m *tourModel) onFocus(id string) {
	m.focus = id
	if i, ok := m.ctrl.Cursor(); ok {
		m.selected = i
		m.ensureVisible()
	}
}

func (m *tourModel) Init() tea.Cmd {
	return nil
}

func (m *tourModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - headerRows - detailRows
		if m.height < 5 {
			m.height = 5
		}
		m.ensureVisible()
	}
	return m, nil
}

func (m *tourModel) handleKey(key string) tea.Cmd {
	m.status = ""
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		switch {
		case m.dragging():
			m.endDrag()
			m.reorder.Cancel()
		case m.detail:
			m.detail = false
		default:
			m.step("stop")
		}
	case "n", "right", "l", " ":
		m.step("next")
	case "p", "left", "h":
		m.step("prev")
	case "s":
		if m.ctrl.Active() {
			m.step("stop")
		} else {
			m.step("start")
		}
	case "up", "k":
		m.selectRow(m.selected - 1)
	case "down", "j":
		m.selectRow(m.selected + 1)
	case "home", "g":
		m.selectRow(0)
	case "end", "G":
		m.selectRow(m.ctrl.Len() - 1)
	case "enter":
		m.jump(m.selected)
	case "i":
		if m.focus != "" || m.ctrl.Len() > 0 {
			m.detail = !m.detail
		}
	case "K", "shift+up":
		m.moveSelected(-1)
	case "J", "shift+down":
		m.moveSelected(+1)
	case "d", "delete":
		m.deleteSelected()
	}
	return nil
}

// step runs one controller transition and reports it.
func (m *tourModel) step(op string) {
	switch op {
	case "next":
		if !m.ctrl.Active() {
			m.ctrl.StartPath(m.ctrl.Path())
		} else if !m.ctrl.Next() {
			m.status = "Tour finished"
		}
	case "prev":
		if !m.ctrl.Active() {
			return
		}
		m.ctrl.Prev()
	case "start":
		if !m.ctrl.StartPath(m.ctrl.Path()) {
			m.status = "Nothing to tour"
		}
	case "stop":
		if !m.ctrl.Active() {
			return
		}
		m.ctrl.Stop()
		m.status = "Tour stopped"
	}
	cur, active := m.ctrl.Cursor()
	observability.Tour().OnStep(m.ctx, op, cur, active)
}

func (m *tourModel) jump(i int) {
	if err := m.ctrl.Jump(i); err != nil {
		if errors.Is(err, tour.ErrIndexOutOfRange) {
			m.status = "No such stop"
		}
		return
	}
	observability.Tour().OnStep(m.ctx, "jump", i, true)
}

func (m *tourModel) selectRow(i int) {
	n := m.ctrl.Len()
	if n == 0 {
		m.selected = 0
		return
	}
	m.selected = min(max(i, 0), n-1)
	m.ensureVisible()
}

func (m *tourModel) ensureVisible() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
	m.offset = min(m.offset, max(m.ctrl.Len()-m.height, 0))
	m.offset = max(m.offset, 0)
}

// moveSelected moves the selection past its neighbour using the same
// gesture path as a mouse drag. A structural block steps over the whole
// neighbouring block so every content row keeps its group. A content row
// moves one row and crosses a header into the adjacent group.
func (m *tourModel) moveSelected(dir int) {
	start := m.selected
	if !m.reorder.DragStart(start) {
		return
	}
	d, _ := m.reorder.Dragging()
	path := m.ctrl.Path()
	types := m.graph.Types()
	structural := types[path[start]].IsStructural()

	if dir < 0 {
		target := start - 1
		if structural {
			for p := start - 1; p >= 0; p-- {
				if types[path[p]].IsStructural() {
					target = p
					break
				}
			}
		}
		m.reorder.DragOver(target, 0.25, 0, 1)
	} else {
		target := start + d.Size
		if structural {
			target += max(outline.BlockSize(path, types, target), 1) - 1
		}
		m.reorder.DragOver(target, 0.75, 0, 1)
	}
	m.drop(d)
}

// drop finishes a gesture started with DragStart and keeps the moved block
// selected.
func (m *tourModel) drop(d outline.Drag) bool {
	target, _ := m.reorder.Dragging()
	id := m.ctrl.Path()[d.Start]
	path, ok := m.reorder.Drop()
	if !ok {
		return false
	}
	observability.Tour().OnReorder(m.ctx, d.Start, d.Size, target.Insert)
	m.selectRow(slices.Index(path, id))
	return true
}

func (m *tourModel) deleteSelected() {
	path := m.ctrl.Path()
	if m.selected < 0 || m.selected >= len(path) {
		return
	}
	id := path[m.selected]
	if n, ok := m.graph.NodeByID(id); ok && n.Type == graph.TypeRoot {
		m.status = "The root cannot be deleted"
		return
	}
	label := id
	if n, ok := m.graph.NodeByID(id); ok {
		label = n.DisplayLabel()
	}

	m.graph.RemoveNode(id)
	m.ctrl.RemoveNode(id)
	m.reorder.SetTypes(m.graph.Types())
	m.assign = tour.AssignAnchors(m.graph)
	m.graphChanged = true
	if m.focus == id {
		m.focus, _ = m.ctrl.Current()
	}
	observability.Tour().OnNodeRemoved(m.ctx, id, m.ctrl.Len())
	m.selectRow(m.selected)
	m.status = fmt.Sprintf("Deleted %s", label)
}

// =============================================================================
// Mouse
// =============================================================================

// rowAt maps a screen row to an outline row.
func (m *tourModel) rowAt(y int) (int, bool) {
	if y < headerRows || y >= headerRows+m.height {
		return 0, false
	}
	i := m.offset + y - headerRows
	return i, i < m.ctrl.Len()
}

func (m *tourModel) dragging() bool {
	_, ok := m.reorder.Dragging()
	return ok
}

func (m *tourModel) handleMouse(msg tea.MouseMsg) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scrollBy(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scrollBy(1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		i, ok := m.rowAt(msg.Y)
		if !ok {
			return
		}
		m.selected = i
		m.pressRow = i
		m.lastY = msg.Y
		m.reorder.DragStart(i)
	case msg.Action == tea.MouseActionMotion:
		if !m.dragging() {
			return
		}
		m.dragOver(msg.Y)
	case msg.Action == tea.MouseActionRelease:
		if !m.dragging() {
			return
		}
		d, _ := m.reorder.Dragging()
		press := m.pressRow
		if !m.drop(d) {
			if i, ok := m.rowAt(msg.Y); ok && i == press {
				m.jump(i)
			}
		}
		m.endDrag()
	}
}

// dragOver updates the drop target and auto-scrolls near the pane edges.
// A cell has no sub-row position, so the pointer counts as being in the
// upper half of a row when moving up and the lower half when moving down.
func (m *tourModel) dragOver(y int) {
	top, bottom := float64(headerRows), float64(headerRows+m.height)
	m.scroller.Max = m.ctrl.Len() - m.height
	m.scroller.Offset = m.offset
	m.offset = m.scroller.Nudge(float64(y)+0.5, top, bottom)

	frac := 0.75
	if y < m.lastY {
		frac = 0.25
	}
	m.lastY = y

	i, ok := m.rowAt(y)
	if !ok {
		return
	}
	insert, ok := m.reorder.DragOver(i, float64(y)+frac, float64(y), 1)
	m.dropAt, m.hasDropAt = insert, ok
}

func (m *tourModel) endDrag() {
	m.scroller.Stop()
	m.pressRow = -1
	m.hasDropAt = false
}

func (m *tourModel) scrollBy(n int) {
	m.offset = min(max(m.offset+n, 0), max(m.ctrl.Len()-m.height, 0))
}

// =============================================================================
// View
// =============================================================================

func (m *tourModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(m.position())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("n/p step  s start/stop  ⏎ jump  i info  J/K or drag move  d delete  q quit"))
	b.WriteString("\n\n")

	path := m.ctrl.Path()
	cur, active := m.ctrl.Cursor()
	d, dragging := m.reorder.Dragging()
	idx := m.graph.Index()

	end := min(m.offset+m.height, len(path))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.dropMarker(i, len(path)))
		b.WriteString(m.row(i, path[i], idx, active && i == cur, dragging && d.Contains(i)))
		b.WriteString("\n")
	}
	for i := end - m.offset; i < m.height; i++ {
		b.WriteString("\n")
	}

	if m.detail {
		b.WriteString(m.detailView(idx))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(StyleDim.Render(m.status))
	}
	return b.String()
}

// dropMarker marks the row the dragged block will land before, or the last
// row when it lands at the end.
func (m *tourModel) dropMarker(i, n int) string {
	switch {
	case m.hasDropAt && m.dropAt == i:
		return listDropStyle.Render("┬")
	case m.hasDropAt && m.dropAt == n && i == n-1:
		return listDropStyle.Render("┴")
	default:
		return " "
	}
}

func (m *tourModel) position() string {
	cur, active := m.ctrl.Cursor()
	if !active {
		return listDimStyle.Render(fmt.Sprintf("inactive · %d stops", m.ctrl.Len()))
	}
	return StyleNumber.Render(fmt.Sprintf("%d/%d", cur+1, m.ctrl.Len()))
}

func (m *tourModel) row(i int, id string, idx map[string]*graph.Node, current, inDrag bool) string {
	gutter := "  "
	if current {
		gutter = styleCursor.Render(iconCursor) + " "
	}
	label := id
	if n, ok := idx[id]; ok {
		label = outlineLabel(n)
	}
	line := gutter + label
	switch {
	case inDrag:
		line = listDimStyle.Render(gutter + strings.Repeat("  ", indentOf(idx, id)) + idLabel(idx, id))
	case i == m.selected:
		line = listSelectedStyle.Render(line)
	}
	return line
}

func indentOf(idx map[string]*graph.Node, id string) int {
	if n, ok := idx[id]; ok {
		return outline.Indent(n.Type)
	}
	return outline.Indent(graph.TypeConcept)
}

func idLabel(idx map[string]*graph.Node, id string) string {
	if n, ok := idx[id]; ok {
		return n.DisplayLabel()
	}
	return id
}

// detailView shows the focused node, or the selection when nothing is focused.
func (m *tourModel) detailView(idx map[string]*graph.Node) string {
	id := m.focus
	if id == "" {
		path := m.ctrl.Path()
		if m.selected < len(path) {
			id = path[m.selected]
		}
	}
	n, ok := idx[id]
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(styleForType(n.Type).Render(n.DisplayLabel()))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · %s", n.Type, n.ID)))
	b.WriteString("\n")
	if !m.assign.Orphan(id) {
		anchor := m.assign.Anchor[id]
		if a, ok := idx[anchor]; ok {
			anchor = a.DisplayLabel()
		}
		b.WriteString(fmt.Sprintf("under %s, %d hop(s)\n", StyleHighlight.Render(anchor), m.assign.Distance[id]))
	} else if n.Type.IsContent() {
		b.WriteString(StyleWarning.Render("not reachable from any category") + "\n")
	}
	names := make([]string, 0, len(n.Connections))
	for _, c := range n.Connections {
		names = append(names, idLabel(idx, c))
	}
	if len(names) > 0 {
		b.WriteString(listDimStyle.Render("connected to ") + strings.Join(names, ", "))
	} else {
		b.WriteString(listDimStyle.Render("no connections"))
	}
	return detailBoxStyle.Render(b.String())
}
