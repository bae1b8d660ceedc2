package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/spendwatch/paygraph/pkg/client"
	"github.com/spendwatch/paygraph/pkg/errors"
	"github.com/spendwatch/paygraph/pkg/interact"
	"github.com/spendwatch/paygraph/pkg/paygraph"
	"github.com/spendwatch/paygraph/pkg/scene"
	"github.com/spendwatch/paygraph/pkg/viewport"
)

// Terminal cells are not square; these factors map cells to the screen
// coordinate space the viewport transform works in, keeping the aspect
// ratio of the underlying layout roughly intact.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	frameInterval = time.Second / 30
	panStep       = 40.0
	zoomInFactor  = 1.2
	zoomOutFactor = 1 / 1.2

	headerLines = 2
	footerLines = 2
)

// viewCommand creates the interactive terminal view.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		configPath string
		baseURL    string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore the payment graph interactively in the terminal",
		Long: `Open a live force-directed view of the payment network.

Drag nodes with the mouse to reposition them, drag the background to pan,
and use the wheel to zoom toward the cursor. Changing the minimum-amount
filter re-fetches the network in the background while the current graph
stays interactive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.API.BaseURL = baseURL
			}

			loader := client.New(cfg.API.BaseURL, client.WithCache(c.newCache(cfg, noCache), cfg.cacheTTL()))
			m := newViewModel(c, cfg, loader)

			p := tea.NewProgram(m,
				tea.WithContext(cmd.Context()),
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
			)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	cmd.Flags().StringVar(&baseURL, "base", "", "API base URL (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the payload cache")

	return cmd
}

// =============================================================================
// Messages
// =============================================================================

// frameMsg schedules one simulation tick.
type frameMsg time.Time

// payloadMsg carries a completed background fetch.
type payloadMsg struct{ res *client.Result }

// fetchErrMsg reports a failed background fetch. The current graph stays.
type fetchErrMsg struct{ err error }

// =============================================================================
// Model
// =============================================================================

// viewModel is the bubbletea model wrapping a scene. All interaction and
// ticking happens on the bubbletea update loop, so the scene's
// single-threaded contract holds.
type viewModel struct {
	cli    *CLI
	scene  *scene.Scene
	loader *client.Loader
	query  client.Query

	width  int
	height int

	animating bool // a frameMsg is scheduled
	fetching  bool
	status    string
}

func newViewModel(c *CLI, cfg Config, loader *client.Loader) *viewModel {
	return &viewModel{
		cli:    c,
		scene:  scene.New(cfg.bounds(), cfg.forceConfig(), cfg.transform(), c.Logger),
		loader: loader,
		query:  cfg.query(),
		status: "loading…",
	}
}

func (m *viewModel) Init() tea.Cmd {
	// Mark the first frame as scheduled up front, otherwise a fetch that
	// completes before it lands (a payload-cache hit does) would make
	// resume start a second self-perpetuating frame stream.
	m.animating = true
	return tea.Batch(m.fetchCmd(), scheduleFrame())
}

func scheduleFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// fetchCmd starts a background fetch for the current query. The sequence
// token inside the loader guards against a slow old response overwriting a
// newer graph.
func (m *viewModel) fetchCmd() tea.Cmd {
	m.fetching = true
	query := m.query
	return func() tea.Msg {
		res, err := m.loader.Fetch(context.Background(), query)
		if err != nil {
			return fetchErrMsg{err}
		}
		return payloadMsg{res}
	}
}

// resume makes sure a frame is scheduled after an interaction reheated the
// simulation. Scheduling while already animating would double the tick rate.
func (m *viewModel) resume() tea.Cmd {
	if m.animating {
		return nil
	}
	m.animating = true
	return scheduleFrame()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if m.scene.Frame() {
			m.animating = true
			return m, scheduleFrame()
		}
		m.animating = false
		return m, nil

	case payloadMsg:
		m.fetching = false
		if m.loader.Apply(msg.res, m.scene.Replace) {
			m.status = fmt.Sprintf("%d nodes · %d edges", len(m.scene.Graph().Nodes), len(m.scene.Graph().Edges))
		} else {
			m.status = "stale response discarded"
		}
		return m, m.resume()

	case fetchErrMsg:
		m.fetching = false
		m.cli.Logger.Error("background fetch failed", "err", msg.err)
		m.status = "fetch failed: " + errors.UserMessage(msg.err)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleMouse translates terminal mouse events into controller calls.
func (m *viewModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x, y := m.mouseToScreen(msg.X, msg.Y)
	ctrl := m.scene.Controller()

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			ctrl.PointerDown(x, y)
			return m, m.resume()
		case tea.MouseButtonWheelUp:
			ctrl.Wheel(x, y, zoomInFactor)
			return m, nil
		case tea.MouseButtonWheelDown:
			ctrl.Wheel(x, y, zoomOutFactor)
			return m, nil
		}

	case tea.MouseActionMotion:
		if ctrl.Dragging() != "" || ctrl.Panning() {
			ctrl.PointerMove(x, y)
			return m, m.resume()
		}
		ctrl.Hover(x, y)
		return m, nil

	case tea.MouseActionRelease:
		if msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone {
			ctrl.PointerUp(x, y)
			return m, m.resume()
		}
	}
	return m, nil
}

// handleKey translates key presses into viewport and filter changes.
func (m *viewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.scene.View()
	cx, cy := m.canvasCenter()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		view.PanBy(panStep, 0)
	case "right", "l":
		view.PanBy(-panStep, 0)
	case "up", "k":
		view.PanBy(0, panStep)
	case "down", "j":
		view.PanBy(0, -panStep)
	case "+", "=":
		m.scene.Controller().Wheel(cx, cy, zoomInFactor)
	case "-", "_":
		m.scene.Controller().Wheel(cx, cy, zoomOutFactor)
	case "r":
		m.scene.ResetView()
	case "[":
		m.query.MinAmount = math.Max(0, m.query.MinAmount/2)
		m.status = "fetching " + m.query.String()
		return m, m.fetchCmd()
	case "]":
		if m.query.MinAmount == 0 {
			m.query.MinAmount = client.DefaultMinAmount / 2
		}
		m.query.MinAmount *= 2
		m.status = "fetching " + m.query.String()
		return m, m.fetchCmd()
	}
	return m, nil
}

// =============================================================================
// Coordinates
// =============================================================================

// mouseToScreen maps a terminal cell to the screen coordinate space, using
// the cell's center so small nodes remain hittable.
func (m *viewModel) mouseToScreen(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * cellWidth, (float64(row-headerLines) + 0.5) * cellHeight
}

// canvasCenter returns the screen-space center of the drawable area.
func (m *viewModel) canvasCenter() (x, y float64) {
	return float64(m.width) * cellWidth / 2, float64(m.canvasRows()) * cellHeight / 2
}

func (m *viewModel) canvasRows() int {
	rows := m.height - headerLines - footerLines
	if rows < 1 {
		rows = 1
	}
	return rows
}

// =============================================================================
// Rendering
// =============================================================================

// Cell kinds for the character canvas.
const (
	cellEmpty = iota
	cellEdge
	cellOrg
	cellContractor
	cellPinned
)

var (
	viewOrgStyle    = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	viewConStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	viewPinStyle    = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	viewEdgeStyle   = lipgloss.NewStyle().Foreground(colorDim)
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
)

func (m *viewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}

	snap := m.scene.Snapshot()
	cols, rows := m.width, m.canvasRows()
	grid := make([][]byte, rows)
	for i := range grid {
		grid[i] = make([]byte, cols)
	}

	view := m.scene.View()
	project := func(wx, wy float64) (int, int) {
		p := view.WorldToScreen(viewport.Point{X: wx, Y: wy})
		return int(p.X / cellWidth), int(p.Y / cellHeight)
	}

	for _, e := range snap.Edges {
		x1, y1 := project(e.X1, e.Y1)
		x2, y2 := project(e.X2, e.Y2)
		plotLine(grid, x1, y1, x2, y2)
	}
	for _, n := range snap.Nodes {
		x, y := project(n.X, n.Y)
		if x < 0 || y < 0 || x >= cols || y >= rows {
			continue
		}
		switch {
		case n.Pinned:
			grid[y][x] = cellPinned
		case n.Kind == paygraph.KindOrg:
			grid[y][x] = cellOrg
		default:
			grid[y][x] = cellContractor
		}
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("paygraph"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.query.String()))
	if m.fetching {
		b.WriteString(StyleDim.Render("  ·  fetching…"))
	}
	b.WriteString("\n")
	b.WriteString(m.tooltipLine(snap.Tooltip))
	b.WriteString("\n")

	for _, row := range grid {
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}

	b.WriteString(viewStatusStyle.Render(m.statusLine(snap)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("drag: move/pan  wheel/±: zoom  arrows: pan  [ ]: filter  r: reset  q: quit"))
	return b.String()
}

// tooltipLine shows the hovered node, or a blank placeholder so the canvas
// never jumps vertically.
func (m *viewModel) tooltipLine(tip *interact.Tooltip) string {
	if tip == nil {
		return ""
	}
	return StyleHighlight.Render(tip.NodeID) +
		StyleDim.Render(fmt.Sprintf("  %s  ", tip.Kind)) +
		StyleValue.Render(tip.FormattedTotal)
}

func (m *viewModel) statusLine(snap scene.Snapshot) string {
	state := "settled"
	if !snap.Settled {
		state = "running"
	}
	return fmt.Sprintf("%s  ·  zoom %.2fx  ·  %s", m.status, snap.Transform.K, state)
}

// renderRow converts one canvas row to a styled string, batching runs of
// equal cell kind to keep the escape-sequence overhead down.
func renderRow(row []byte) string {
	var b strings.Builder
	i := 0
	for i < len(row) {
		j := i
		for j < len(row) && row[j] == row[i] {
			j++
		}
		run := j - i
		switch row[i] {
		case cellEmpty:
			b.WriteString(strings.Repeat(" ", run))
		case cellEdge:
			b.WriteString(viewEdgeStyle.Render(strings.Repeat("·", run)))
		case cellOrg:
			b.WriteString(viewOrgStyle.Render(strings.Repeat("●", run)))
		case cellContractor:
			b.WriteString(viewConStyle.Render(strings.Repeat("○", run)))
		case cellPinned:
			b.WriteString(viewPinStyle.Render(strings.Repeat("◉", run)))
		}
		i = j
	}
	return b.String()
}

// plotLine draws a straight edge on the canvas with Bresenham stepping,
// skipping cells outside the grid.
func plotLine(grid [][]byte, x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	x, y := x1, y1
	for {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) && grid[y][x] == cellEmpty {
			grid[y][x] = cellEdge
		}
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
