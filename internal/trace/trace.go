// Package trace drives the integrator headlessly on a logical clock and
// records every tick for plotting and export.
package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/watersim/internal/config"
	"github.com/san-kum/watersim/internal/motion"
	"github.com/san-kum/watersim/internal/physics"
	"github.com/san-kum/watersim/internal/tilt"
)

type Sample struct {
	Tick     int
	Tilt     float32
	Position float32
	Velocity float32
}

type Record struct {
	Params    physics.Params
	Period    time.Duration
	Samples   []Sample
	WallHits  int
	PeakSpeed float32
}

// LogicalClock advances by a fixed step per tick, making the synthetic
// source reproducible.
type LogicalClock struct {
	now  time.Time
	step time.Duration
}

func NewLogicalClock(step time.Duration) *LogicalClock {
	return &LogicalClock{now: time.Unix(0, 0), step: step}
}

func (c *LogicalClock) Now() time.Time { return c.now }
func (c *LogicalClock) Advance()       { c.now = c.now.Add(c.step) }

// DemoSource returns the synthetic tilt driven by a logical clock.
func DemoSource(demo config.DemoConfig, period time.Duration) (tilt.Source, *LogicalClock) {
	clock := NewLogicalClock(period)
	return tilt.NewSyntheticClock(demo, clock.Now), clock
}

// Run performs ticks steps from rest at the midpoint. clock may be nil for
// sources that do not depend on time.
func Run(p physics.Params, src tilt.Source, clock *LogicalClock, period time.Duration, ticks int) *Record {
	state := motion.New(p.TrackLength, false)
	in := physics.NewIntegrator(p, state)

	rec := &Record{
		Params:  p,
		Period:  period,
		Samples: make([]Sample, 0, ticks),
	}
	for i := 0; i < ticks; i++ {
		a := src.Sample()
		snap := in.Tick(a)
		if snap.Position == 0 || snap.Position == p.Max() {
			rec.WallHits++
		}
		if speed := float32(math.Abs(float64(snap.Velocity))); speed > rec.PeakSpeed {
			rec.PeakSpeed = speed
		}
		rec.Samples = append(rec.Samples, Sample{Tick: i + 1, Tilt: a, Position: snap.Position, Velocity: snap.Velocity})
		if clock != nil {
			clock.Advance()
		}
	}
	return rec
}

// Series extracts one field ("position", "velocity" or "tilt") as float64.
func (r *Record) Series(field string) ([]float64, error) {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		switch field {
		case "position":
			out[i] = float64(s.Position)
		case "velocity":
			out[i] = float64(s.Velocity)
		case "tilt":
			out[i] = float64(s.Tilt)
		default:
			return nil, fmt.Errorf("trace: unknown field %q", field)
		}
	}
	return out, nil
}

func (r *Record) Plot(field string, width, height int) (string, error) {
	data, err := r.Series(field)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("trace: no samples to plot")
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s over %d ticks", field, len(data))),
	), nil
}

func (r *Record) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tick", "time_ms", "tilt", "position", "velocity"}); err != nil {
		return err
	}
	ms := float64(r.Period) / float64(time.Millisecond)
	for _, s := range r.Samples {
		row := []string{
			strconv.Itoa(s.Tick),
			strconv.FormatFloat(float64(s.Tick)*ms, 'f', 1, 64),
			strconv.FormatFloat(float64(s.Tilt), 'f', 4, 32),
			strconv.FormatFloat(float64(s.Position), 'f', 4, 32),
			strconv.FormatFloat(float64(s.Velocity), 'f', 4, 32),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
