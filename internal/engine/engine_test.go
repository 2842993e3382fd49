package engine_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/watersim/internal/config"
	"github.com/san-kum/watersim/internal/engine"
	"github.com/san-kum/watersim/internal/render"
	"github.com/san-kum/watersim/internal/strip"
	"github.com/san-kum/watersim/internal/tilt"
)

type lineSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *lineSink) WriteLine(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, text)
	return nil
}

func (s *lineSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *lineSink) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return ""
	}
	return s.lines[len(s.lines)-1]
}

type brokenStrip struct{}

func (brokenStrip) SetPixel(int, render.RGB) {}
func (brokenStrip) Flush() error             { return errors.New("strip: transmission failed") }

func fastConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.PhysicsPeriodMs = 1
	cfg.RenderPeriodMs = 3
	cfg.Seed = 7
	return cfg
}

func quiet() *log.Logger { return log.New(io.Discard) }

var _ = Describe("Engine", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		done   chan error
	)

	start := func(e *engine.Engine) {
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- e.Run(ctx) }()
	}

	AfterEach(func() {
		if cancel != nil {
			cancel()
			Eventually(done, time.Second).Should(Receive(BeNil()))
			cancel = nil
		}
	})

	It("rejects a configuration that would gain energy", func() {
		cfg := fastConfig()
		cfg.WallDamping = 1.1
		_, err := engine.New(cfg, engine.Options{Logger: quiet()})
		Expect(errors.Is(err, config.ErrDampingRange)).To(BeTrue())
	})

	It("rejects a one-element strip", func() {
		cfg := fastConfig()
		cfg.StripLength = 1
		_, err := engine.New(cfg, engine.Options{Logger: quiet()})
		Expect(err).To(MatchError(config.ErrTrackTooShort))
	})

	It("starts at the midpoint at rest", func() {
		e, err := engine.New(fastConfig(), engine.Options{Logger: quiet(), SourceAvailable: true})
		Expect(err).NotTo(HaveOccurred())
		snap := e.State().Snapshot()
		Expect(snap.Position).To(BeNumerically("==", 14.5))
		Expect(snap.Velocity).To(BeZero())
		Expect(snap.SourceAvailable).To(BeTrue())
	})

	It("runs physics faster than rendering and feeds both outputs", func() {
		mem := strip.NewMemory(30)
		sink := &lineSink{}
		e, err := engine.New(fastConfig(), engine.Options{
			Source: tilt.Constant(-50),
			Strip:  mem,
			Text:   sink,
			Logger: quiet(),
		})
		Expect(err).NotTo(HaveOccurred())
		start(e)

		Eventually(func() int64 { return e.Stats().Frames.Load() }, time.Second).Should(BeNumerically(">=", 10))
		Expect(e.Stats().Ticks.Load()).To(BeNumerically(">", e.Stats().Frames.Load()))
		Expect(mem.Flushes()).To(BeNumerically(">=", 1))
		Expect(sink.Count()).To(BeNumerically(">=", 1))
		Expect(sink.Last()).To(ContainSubstring("pos="))

		Eventually(func() float32 { return e.State().Position() }, time.Second).Should(BeNumerically("==", 29))
	})

	It("never exposes an out-of-range position to a concurrent reader", func() {
		e, err := engine.New(fastConfig(), engine.Options{Logger: quiet()})
		Expect(err).NotTo(HaveOccurred())
		start(e)

		deadline := time.Now().Add(200 * time.Millisecond)
		for time.Now().Before(deadline) {
			p := e.State().Snapshot().Position
			Expect(p).To(And(BeNumerically(">=", 0), BeNumerically("<=", 29)))
		}
	})

	It("keeps the physics loop running when the strip fails", func() {
		sink := &lineSink{}
		e, err := engine.New(fastConfig(), engine.Options{
			Source: tilt.Constant(30),
			Strip:  brokenStrip{},
			Text:   sink,
			Logger: quiet(),
		})
		Expect(err).NotTo(HaveOccurred())
		start(e)

		Eventually(func() int64 { return e.Stats().OutputErrors.Load() }, time.Second).Should(BeNumerically(">=", 3))
		ticks := e.Stats().Ticks.Load()
		Eventually(func() int64 { return e.Stats().Ticks.Load() }, time.Second).Should(BeNumerically(">", ticks+20))
		Expect(sink.Count()).To(BeNumerically(">=", 3))
	})

	It("renders a single frame on demand", func() {
		sink := &lineSink{}
		e, err := engine.New(fastConfig(), engine.Options{Text: sink, Logger: quiet()})
		Expect(err).NotTo(HaveOccurred())

		e.Frame()
		Expect(sink.Count()).To(Equal(1))
		Expect(strings.HasSuffix(sink.Last(), "pos=14.50 vel=0.000")).To(BeTrue())
	})
})
