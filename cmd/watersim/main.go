package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/watersim/internal/config"
	"github.com/san-kum/watersim/internal/engine"
	"github.com/san-kum/watersim/internal/export"
	"github.com/san-kum/watersim/internal/physics"
	"github.com/san-kum/watersim/internal/render"
	"github.com/san-kum/watersim/internal/sensor"
	"github.com/san-kum/watersim/internal/storage"
	"github.com/san-kum/watersim/internal/strip"
	"github.com/san-kum/watersim/internal/tilt"
	"github.com/san-kum/watersim/internal/trace"
	"github.com/san-kum/watersim/internal/tui"
)

var version = "dev"

var (
	configFile string
	preset     string
	logLevel   string
	demo       bool
	iioPath    string
	iioName    string
	stripMode  string
	quietText  bool
	seed       int64
	length     int
	theme      string
	// trace
	ticks     int
	traceTilt float64
	field     string
	csvPath   string
	svgPath   string
	save      bool
	replay    string
	runsDir   string
	width     int
	height    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "watersim",
		Short:        "tilt-driven water on a light strip",
		Version:      version,
		SilenceUsage: true,
		RunE:         runStrip,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, error")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "shimmer seed (0 = time based)")
	rootCmd.PersistentFlags().IntVar(&length, "length", 0, "strip length override")
	rootCmd.PersistentFlags().StringVar(&runsDir, "runs-dir", ".watersim/runs", "directory for saved trace runs")

	addSensorFlags := func(cmd *cobra.Command) {
		cmd.Flags().BoolVar(&demo, "demo", false, "skip the sensor and run the synthetic tilt")
		cmd.Flags().StringVar(&iioPath, "iio-path", "", "explicit /sys/bus/iio/devices/iio:deviceN path")
		cmd.Flags().StringVar(&iioName, "iio-name", "", "iio device name to look for")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run physics and rendering until interrupted",
		RunE:  runStrip,
	}
	addSensorFlags(runCmd)
	addSensorFlags(rootCmd)
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVar(&stripMode, "strip", "auto", "strip output: auto, terminal, none")
		cmd.Flags().BoolVar(&quietText, "no-text", false, "suppress the ascii diagnostic line")
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal view",
		RunE:  runTUI,
	}
	addSensorFlags(tuiCmd)
	tuiCmd.Flags().StringVar(&theme, "theme", "ocean", "theme: "+strings.Join(tui.ThemeNames(), ", "))

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "run the integrator headlessly and plot the result",
		RunE:  runTrace,
	}
	traceCmd.Flags().IntVar(&ticks, "ticks", 600, "number of physics ticks")
	traceCmd.Flags().Float64Var(&traceTilt, "tilt", 0, "constant tilt in degrees (default: demo signal)")
	traceCmd.Flags().StringVar(&field, "field", "position", "field to plot: position, velocity, tilt")
	traceCmd.Flags().StringVar(&csvPath, "csv", "", "write the trace to a csv file")
	traceCmd.Flags().StringVar(&svgPath, "svg", "", "write the plotted field to an svg file")
	traceCmd.Flags().BoolVar(&save, "save", false, "keep the run in the runs directory")
	traceCmd.Flags().StringVar(&replay, "replay", "", "plot a saved run instead of simulating")
	traceCmd.Flags().IntVar(&width, "width", 80, "plot width")
	traceCmd.Flags().IntVar(&height, "height", 12, "plot height")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved trace runs",
		RunE:  listRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return yaml.NewEncoder(os.Stdout).Encode(cfg)
		},
	}

	rootCmd.AddCommand(runCmd, tuiCmd, traceCmd, runsCmd, presetsCmd, configCmd)

	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "watersim",
	})
	if lvl, err := log.ParseLevel(logLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unknown log level, using info", "level", logLevel)
	}
	return logger
}

// loadConfig applies, in order: defaults or preset, config file, flags.
// Validation failures are fatal.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if length != 0 {
		cfg.StripLength = length
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if iioPath != "" {
		cfg.Sensor.IIOPath = iioPath
	}
	if iioName != "" {
		cfg.Sensor.Name = iioName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func selectSource(cfg *config.Config, logger *log.Logger) (tilt.Source, bool) {
	var s tilt.Sensor = sensor.None{}
	if !demo {
		s = sensor.NewIIO(cfg.Sensor.IIOPath, cfg.Sensor.Name, logger)
	}
	return tilt.Select(s, cfg.Demo, logger)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runStrip(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	source, available := selectSource(cfg, logger)

	var out render.Strip
	switch stripMode {
	case "terminal":
		out = strip.NewTerminal(os.Stdout, cfg.StripLength)
	case "auto":
		if term.IsTerminal(int(os.Stdout.Fd())) {
			out = strip.NewTerminal(os.Stdout, cfg.StripLength)
		}
	case "none":
		out = strip.Discard{}
	default:
		return fmt.Errorf("unknown strip mode: %s (available: auto, terminal, none)", stripMode)
	}
	var text render.TextSink
	if !quietText {
		text = strip.NewLineWriter(os.Stdout)
	}

	e, err := engine.New(cfg, engine.Options{
		Source:          source,
		SourceAvailable: available,
		Strip:           out,
		Text:            text,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	logger.Info("running",
		"length", cfg.StripLength,
		"physics", cfg.PhysicsPeriod(),
		"render", cfg.RenderPeriod(),
		"sensor", available)
	return e.Run(ctx)
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	source, available := selectSource(cfg, logger)

	e, err := engine.New(cfg, engine.Options{
		Source:          source,
		SourceAvailable: available,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	s := uint64(cfg.Seed)
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	ctx, cancel := signalContext()
	defer cancel()
	return tui.Run(ctx, e, rand.New(rand.NewPCG(s, s>>1)), tui.GetTheme(theme))
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := storage.New(runsDir)

	var rec *trace.Record
	source := "demo"
	switch {
	case replay != "":
		rec, err = st.LoadRecord(replay)
		if err != nil {
			return fmt.Errorf("failed to load run %s: %w", replay, err)
		}
		source = "replay"
	case ticks <= 0:
		return fmt.Errorf("ticks must be positive, got %d", ticks)
	case cmd.Flags().Changed("tilt"):
		rec = trace.Run(physics.ParamsFrom(cfg), tilt.Constant(traceTilt), nil, cfg.PhysicsPeriod(), ticks)
		source = "constant"
	default:
		period := cfg.PhysicsPeriod()
		src, clock := trace.DemoSource(cfg.Demo, period)
		rec = trace.Run(physics.ParamsFrom(cfg), src, clock, period, ticks)
	}

	graph, err := rec.Plot(field, width, height)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	fmt.Println()
	fmt.Printf("ticks: %d (%.2fs)\n", len(rec.Samples), (time.Duration(len(rec.Samples)) * rec.Period).Seconds())
	fmt.Printf("wall contacts: %d\n", rec.WallHits)
	fmt.Printf("peak speed: %.3f\n", rec.PeakSpeed)

	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := rec.WriteCSV(f); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvPath)
	}

	if svgPath != "" {
		svg, err := export.TraceToSVG(rec, field, 800, 240, string(tui.ThemeOcean.Graph))
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	if save && source != "replay" {
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(source, rec)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Printf("saved run %s\n", id)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(runsDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%-28s %s  ticks=%d  walls=%d  peak=%.3f\n",
			r.ID, r.Timestamp.Format(time.DateTime), r.Ticks, r.WallHits, r.PeakSpeed)
	}
	return nil
}
