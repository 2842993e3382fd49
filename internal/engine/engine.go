// Package engine runs the physics loop and the render loop side by side.
// The loops share only the motion.State; neither waits for the other.
package engine

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/watersim/internal/config"
	"github.com/san-kum/watersim/internal/motion"
	"github.com/san-kum/watersim/internal/physics"
	"github.com/san-kum/watersim/internal/render"
	"github.com/san-kum/watersim/internal/tilt"
)

// errorLogEvery limits repeated output failures in the log.
const errorLogEvery = 200

type Engine struct {
	state      *motion.State
	source     tilt.Source
	integrator *physics.Integrator
	intensity  *render.IntensityMapper
	buckets    *render.BucketMapper
	strip      render.Strip
	text       render.TextSink
	rng        *rand.Rand
	logger     *log.Logger

	physicsPeriod time.Duration
	renderPeriod  time.Duration

	stats Stats
}

// Options carries the collaborators. Nil Strip or Text disables that output.
type Options struct {
	Source          tilt.Source
	SourceAvailable bool
	Strip           render.Strip
	Text            render.TextSink
	Logger          *log.Logger
}

// New validates cfg and wires the components. A config error is returned
// unchanged so callers can match it with errors.Is.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	source := opts.Source
	if source == nil {
		source = tilt.NewSynthetic(cfg.Demo)
	}

	state := motion.New(cfg.StripLength, opts.SourceAvailable)
	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Engine{
		state:         state,
		source:        source,
		integrator:    physics.NewIntegrator(physics.ParamsFrom(cfg), state),
		intensity:     render.NewIntensityMapper(cfg.StripLength, cfg.MaxBrightness, cfg.Intensity),
		buckets:       render.NewBucketMapper(cfg.StripLength, cfg.ASCII),
		strip:         opts.Strip,
		text:          opts.Text,
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger:        logger,
		physicsPeriod: cfg.PhysicsPeriod(),
		renderPeriod:  cfg.RenderPeriod(),
	}, nil
}

func (e *Engine) State() *motion.State               { return e.state }
func (e *Engine) Stats() *Stats                      { return &e.stats }
func (e *Engine) Intensity() *render.IntensityMapper { return e.intensity }
func (e *Engine) Buckets() *render.BucketMapper      { return e.buckets }
func (e *Engine) RenderPeriod() time.Duration        { return e.renderPeriod }

// Run starts both loops and blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.RunPhysics(ctx) })
	g.Go(func() error { return e.RunRender(ctx) })
	err := g.Wait()
	e.logger.Info("stopped",
		"ticks", e.stats.Ticks.Load(),
		"frames", e.stats.Frames.Load(),
		"overruns", e.stats.Overruns.Load(),
		"output_errors", e.stats.OutputErrors.Load())
	return err
}

// RunPhysics samples the tilt and advances the integrator once per period.
// It is the only goroutine that writes the motion state.
func (e *Engine) RunPhysics(ctx context.Context) error {
	return pace(ctx, e.physicsPeriod, &e.stats, func() {
		e.integrator.Tick(e.source.Sample())
		e.stats.Ticks.Add(1)
	})
}

// RunRender maps the current state to the strip and the text sink once per
// period. Output failures are counted and logged, never returned.
func (e *Engine) RunRender(ctx context.Context) error {
	return pace(ctx, e.renderPeriod, &e.stats, e.Frame)
}

// Frame renders one snapshot to every configured output.
func (e *Engine) Frame() {
	snap := e.state.Snapshot()
	if e.strip != nil {
		profile := e.intensity.Map(snap, e.rng)
		if err := e.intensity.Draw(profile, e.strip); err != nil {
			e.outputError("strip", err)
		}
	}
	if e.text != nil {
		if err := e.text.WriteLine(e.buckets.Line(snap)); err != nil {
			e.outputError("text", err)
		}
	}
	e.stats.Frames.Add(1)
}

func (e *Engine) outputError(output string, err error) {
	n := e.stats.OutputErrors.Add(1)
	if n == 1 || n%errorLogEvery == 0 {
		e.logger.Error("output failed", "output", output, "count", n, "err", err)
	}
}

// pace runs work, then sleeps for the fixed period. Work that overran its
// period is counted but not compensated.
func pace(ctx context.Context, period time.Duration, stats *Stats, work func()) error {
	timer := time.NewTimer(period)
	defer timer.Stop()
	for {
		start := time.Now()
		work()
		if time.Since(start) > period {
			stats.Overruns.Add(1)
		}

		timer.Reset(period)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}
