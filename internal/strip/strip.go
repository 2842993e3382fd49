// Package strip provides light-strip and text collaborators for the render
// loop.
package strip

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/watersim/internal/render"
)

const (
	litCell   = "█"
	unlitCell = "·"
)

var unlitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1c1c2e"))

// Terminal draws the strip as one row of coloured blocks per flush.
type Terminal struct {
	w      io.Writer
	frame  []render.RGB
	lit    []bool
	prefix string
}

func NewTerminal(w io.Writer, length int) *Terminal {
	return &Terminal{
		w:      w,
		frame:  make([]render.RGB, length),
		lit:    make([]bool, length),
		prefix: "  ",
	}
}

func (t *Terminal) SetPixel(i int, c render.RGB) {
	if i < 0 || i >= len(t.frame) {
		return
	}
	t.frame[i] = c
	t.lit[i] = true
}

func (t *Terminal) Flush() error {
	_, err := io.WriteString(t.w, t.prefix+Row(t.frame, t.lit)+"\n")
	clear(t.lit)
	return err
}

// Row renders a frame with lipgloss; unlit elements are drawn dim.
func Row(frame []render.RGB, lit []bool) string {
	var b strings.Builder
	for i, c := range frame {
		if !lit[i] {
			b.WriteString(unlitStyle.Render(unlitCell))
			continue
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(Hex(c)))
		b.WriteString(style.Render(litCell))
	}
	return b.String()
}

func Hex(c render.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Memory keeps the last flushed frame. Safe for one writer and concurrent
// readers of Last.
type Memory struct {
	mu      sync.Mutex
	pending []render.RGB
	lit     []bool
	last    []render.RGB
	lastLit []bool
	flushes int
}

func NewMemory(length int) *Memory {
	return &Memory{
		pending: make([]render.RGB, length),
		lit:     make([]bool, length),
		last:    make([]render.RGB, length),
		lastLit: make([]bool, length),
	}
}

func (m *Memory) SetPixel(i int, c render.RGB) {
	if i < 0 || i >= len(m.pending) {
		return
	}
	m.pending[i] = c
	m.lit[i] = true
}

func (m *Memory) Flush() error {
	m.mu.Lock()
	copy(m.last, m.pending)
	copy(m.lastLit, m.lit)
	m.flushes++
	m.mu.Unlock()
	clear(m.pending)
	clear(m.lit)
	return nil
}

// Last returns a copy of the last flushed frame and which elements were lit.
func (m *Memory) Last() ([]render.RGB, []bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]render.RGB(nil), m.last...), append([]bool(nil), m.lastLit...)
}

func (m *Memory) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Discard drops every frame.
type Discard struct{}

func (Discard) SetPixel(int, render.RGB) {}
func (Discard) Flush() error             { return nil }

// LineWriter is a render.TextSink over an io.Writer.
type LineWriter struct {
	w io.Writer
}

func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

func (l *LineWriter) WriteLine(text string) error {
	_, err := io.WriteString(l.w, text+"\n")
	return err
}
