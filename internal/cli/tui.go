package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pinwheel/pkg/render/sink"
	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/source"
)

const (
	minInterval = 10 * time.Millisecond
	maxInterval = 5 * time.Second

	// cellAspect is the height of a terminal cell relative to its width.
	cellAspect = 2.0

	// chromeRows is the number of rows used by the header and footer.
	chromeRows = 4
)

var (
	animTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	animStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	animHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	animErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// AnimateModel - live spiral in the terminal
// =============================================================================

type tickMsg time.Time

type stepMsg struct {
	step   source.Step
	err    error
	manual bool
}

// AnimateModel is the bubbletea model behind `pinwheel animate`. Each tick
// pulls one box from the player; space pauses, n steps once, +/- change speed.
type AnimateModel struct {
	ctx      context.Context
	player   *source.Player
	interval time.Duration

	paused bool
	done   bool
	err    error
	status string

	width, height int
	styles        map[string]lipgloss.Style
}

// NewAnimateModel creates a model advancing player every interval.
func NewAnimateModel(ctx context.Context, player *source.Player, interval time.Duration) AnimateModel {
	return AnimateModel{
		ctx:      ctx,
		player:   player,
		interval: clampInterval(interval),
		width:    80,
		height:   24,
		styles:   make(map[string]lipgloss.Style),
		status:   "waiting for the first box",
	}
}

// Scene returns everything placed so far.
func (m AnimateModel) Scene() scene.Scene { return m.player.Scene() }

// Err returns the error that stopped the animation, if any.
func (m AnimateModel) Err() error { return m.err }

func (m AnimateModel) Init() tea.Cmd {
	return m.tick()
}

func (m AnimateModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m AnimateModel) step(manual bool) tea.Cmd {
	return func() tea.Msg {
		st, err := m.player.Step(m.ctx)
		return stepMsg{step: st, err: err, manual: manual}
	}
}

func (m AnimateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		case "n", "enter":
			if !m.done && m.err == nil {
				return m, m.step(true)
			}
		case "+", "=":
			m.interval = clampInterval(m.interval / 2)
		case "-", "_":
			m.interval = clampInterval(m.interval * 2)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		if m.done || m.err != nil {
			return m, nil
		}
		if m.paused {
			return m, m.tick()
		}
		return m, m.step(false)
	case stepMsg:
		m = m.apply(msg)
		if msg.manual || m.done || m.err != nil {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func (m AnimateModel) apply(msg stepMsg) AnimateModel {
	switch {
	case msg.err != nil:
		m.err = msg.err
		m.status = "stopped"
	case msg.step.Done:
		m.done = true
		m.status = "source exhausted"
	case msg.step.Skipped != nil:
		sk := msg.step.Skipped
		m.status = fmt.Sprintf("skipped %gx%g: no free side", sk.Width, sk.Height)
	case msg.step.Block != nil:
		b := msg.step.Block
		if b.Parent < 0 {
			m.status = fmt.Sprintf("placed %s at origin", b.DisplayLabel())
		} else {
			m.status = fmt.Sprintf("placed %s %s of #%d", b.DisplayLabel(), b.Direction, b.Parent)
		}
	}
	return m
}

func (m AnimateModel) View() string {
	s := m.player.Scene()
	st := s.Stats()

	var b strings.Builder
	b.WriteString(animTitleStyle.Render("pinwheel"))
	b.WriteString(animStatusStyle.Render(fmt.Sprintf("  %d placed  %d skipped  %gx%g  next: %s  every %s",
		st.Blocks, st.Skipped, st.Width, st.Height, m.player.Hint(), m.interval)))
	b.WriteString("\n\n")

	rows := max(m.height-chromeRows, 1)
	b.WriteString(m.drawGrid(s, m.width, rows))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(animErrorStyle.Render("error: " + m.err.Error()))
	} else {
		status := m.status
		if m.paused {
			status = "paused · " + status
		}
		b.WriteString(animStatusStyle.Render(status))
	}
	b.WriteString("\n")
	b.WriteString(animHelpStyle.Render("space pause  n step  +/- speed  q quit"))
	return b.String()
}

// drawGrid renders the scene into cols x rows terminal cells.
func (m AnimateModel) drawGrid(s scene.Scene, cols, rows int) string {
	grid := rasterize(s, cols, rows)
	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < len(row); {
			end := x + 1
			for end < len(row) && row[end] == row[x] {
				end++
			}
			if idx := row[x]; idx < 0 {
				b.WriteString(strings.Repeat(" ", end-x))
			} else {
				glyph := "█"
				if idx%2 == 1 {
					glyph = "▓"
				}
				b.WriteString(m.blockStyle(idx).Render(strings.Repeat(glyph, end-x)))
			}
			x = end
		}
	}
	return b.String()
}

func (m AnimateModel) blockStyle(idx int) lipgloss.Style {
	hex := sink.DefaultPalette(idx).Hex()
	if st, ok := m.styles[hex]; ok {
		return st
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	m.styles[hex] = st
	return st
}

// rasterize maps the scene onto a cols x rows cell grid. Each cell holds the
// index of the block covering its centre, or -1. The scene is scaled
// uniformly to fit, accounting for the cell aspect.
func rasterize(s scene.Scene, cols, rows int) [][]int {
	grid := make([][]int, rows)
	for y := range grid {
		grid[y] = make([]int, cols)
		for x := range grid[y] {
			grid[y][x] = -1
		}
	}
	w, h := s.Width(), s.Height()
	if len(s.Blocks) == 0 || w <= 0 || h <= 0 || cols <= 0 || rows <= 0 {
		return grid
	}

	unit := math.Max(w/float64(cols), h/(float64(rows)*cellAspect))
	origin := s.Bounds.Min
	for _, blk := range s.Blocks {
		x0 := int(math.Floor((blk.X - origin.X) / unit))
		x1 := int(math.Ceil((blk.X + blk.Width - origin.X) / unit))
		y0 := int(math.Floor((blk.Y - origin.Y) / (unit * cellAspect)))
		y1 := int(math.Ceil((blk.Y + blk.Height - origin.Y) / (unit * cellAspect)))
		covered := false
		for y := max(y0, 0); y < min(y1, rows); y++ {
			cy := (float64(y)+0.5)*unit*cellAspect + origin.Y
			if cy < blk.Y || cy > blk.Y+blk.Height {
				continue
			}
			for x := max(x0, 0); x < min(x1, cols); x++ {
				cx := (float64(x)+0.5)*unit + origin.X
				if cx >= blk.X && cx <= blk.X+blk.Width {
					grid[y][x] = blk.Index
					covered = true
				}
			}
		}
		// Boxes smaller than a cell still get one.
		if !covered {
			grid[min(max(y0, 0), rows-1)][min(max(x0, 0), cols-1)] = blk.Index
		}
	}
	return grid
}

func clampInterval(d time.Duration) time.Duration {
	return max(minInterval, min(d, maxInterval))
}
