// Package tui is an interactive render context for the water strip. It
// polls the shared motion state on its own tick; physics keeps running in
// its own goroutine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/watersim/internal/engine"
	"github.com/san-kum/watersim/internal/motion"
	"github.com/san-kum/watersim/internal/render"
	"github.com/san-kum/watersim/internal/strip"
)

const (
	historyCapacity = 240
	gaugeWidth      = 40
	graphWidth      = 60
)

type TickMsg time.Time

type Model struct {
	state     *motion.State
	intensity *render.IntensityMapper
	buckets   *render.BucketMapper
	rng       *rand.Rand
	period    time.Duration
	length    int

	snap    motion.Snapshot
	profile render.Profile
	history []float64
	frames  int
	frozen  bool
	theme   Theme
	styles  styles

	spring harmonica.Spring
	level  float64
	levelV float64
}

// NewModel builds the view over an engine's shared state.
func NewModel(e *engine.Engine, rng *rand.Rand, theme Theme) Model {
	state := e.State()
	fps := int(time.Second / e.RenderPeriod())
	if fps < 1 {
		fps = 1
	}
	return Model{
		state:     state,
		intensity: e.Intensity(),
		buckets:   e.Buckets(),
		rng:       rng,
		period:    e.RenderPeriod(),
		length:    state.TrackLength(),
		snap:      state.Snapshot(),
		history:   make([]float64, 0, historyCapacity),
		theme:     theme,
		styles:    theme.styles(),
		spring:    harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.5),
		level:     float64(state.Position()),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.period, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.frozen = !m.frozen
		case "t":
			m.theme = nextTheme(m.theme)
			m.styles = m.theme.styles()
		}
	case TickMsg:
		if !m.frozen {
			m.sample()
		}
		return m, m.tick()
	}
	return m, nil
}

// sample takes one best-effort snapshot and derives everything the view
// needs from it.
func (m *Model) sample() {
	m.snap = m.state.Snapshot()
	m.profile = m.intensity.Map(m.snap, m.rng)
	m.frames++

	m.history = append(m.history, float64(m.snap.Position))
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	m.level, m.levelV = m.spring.Update(m.level, m.levelV, float64(m.snap.Position))
}

func (m Model) stripRow() string {
	frame := make([]render.RGB, m.length)
	lit := make([]bool, m.length)
	for i, v := range m.profile {
		if v == 0 {
			continue
		}
		frame[i] = m.intensity.Color(v)
		lit[i] = true
	}
	return strip.Row(frame, lit)
}

// gauge is a smoothed marker of where the water sits along the strip.
func (m Model) gauge() string {
	span := float64(m.length - 1)
	at := int(m.level / span * float64(gaugeWidth-1))
	if at < 0 {
		at = 0
	}
	if at >= gaugeWidth {
		at = gaugeWidth - 1
	}
	return "[" + strings.Repeat("─", at) + m.styles.gauge.Render("◆") + strings.Repeat("─", gaugeWidth-1-at) + "]"
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(m.styles.header.Render("WATER STRIP") + "\n")

	source := "demo"
	if m.snap.SourceAvailable {
		source = "sensor"
	}
	status := "LIVE"
	if m.frozen {
		status = "FROZEN"
	}
	s.WriteString(fmt.Sprintf("%s  source=%s  frames=%d\n\n", status, source, m.frames))

	s.WriteString(m.stripRow() + "\n")
	s.WriteString(m.buckets.Line(m.snap) + "\n\n")

	s.WriteString(m.styles.label.Render("position") + m.styles.value.Render(fmt.Sprintf("%.2f", m.snap.Position)) + "\n")
	s.WriteString(m.styles.label.Render("velocity") + m.styles.value.Render(fmt.Sprintf("%.3f", m.snap.Velocity)) + "\n")
	s.WriteString(m.styles.label.Render("level") + m.gauge() + "\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(6),
			asciigraph.Width(graphWidth),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(float64(m.length-1)),
			asciigraph.Caption("position"),
		)
		s.WriteString(m.styles.graph.Render(chart) + "\n")
	}

	s.WriteString(m.styles.help.Render("SP:Freeze  T:Theme  Q:Quit"))
	return s.String()
}

// Run drives physics in the background and the view in the foreground
// until the user quits or ctx ends.
func Run(ctx context.Context, e *engine.Engine, rng *rand.Rand, theme Theme) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.RunPhysics(ctx) }()

	p := tea.NewProgram(NewModel(e, rng, theme), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	cancel()
	if perr := <-done; perr != nil && err == nil {
		err = perr
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	return err
}
