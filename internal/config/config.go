package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultStripLength     = 30
	DefaultTiltSensitivity = 0.018
	DefaultFriction        = 0.06
	DefaultWallDamping     = 0.68
	DefaultMaxBrightness   = 255
	DefaultPhysicsPeriodMs = 10
	DefaultRenderPeriodMs  = 45
	DefaultDemoAmplitude   = 65.0
	DefaultDemoRate        = 0.0012
)

type Config struct {
	StripLength     int             `yaml:"strip_length"`
	TiltSensitivity float32         `yaml:"tilt_sensitivity"`
	Friction        float32         `yaml:"friction"`
	WallDamping     float32         `yaml:"wall_damping"`
	MaxBrightness   int             `yaml:"max_brightness"`
	PhysicsPeriodMs int             `yaml:"physics_period_ms"`
	RenderPeriodMs  int             `yaml:"render_period_ms"`
	Seed            int64           `yaml:"seed"`
	Demo            DemoConfig      `yaml:"demo"`
	Intensity       IntensityConfig `yaml:"intensity"`
	ASCII           ASCIIConfig     `yaml:"ascii"`
	Sensor          SensorConfig    `yaml:"sensor"`
}

// DemoConfig drives the synthetic tilt used when no sensor answers.
type DemoConfig struct {
	Amplitude   float32 `yaml:"amplitude"`
	AngularRate float32 `yaml:"angular_rate"` // rad/ms
}

type Band struct {
	MaxDist float32 `yaml:"max_dist"`
	Level   float32 `yaml:"level"` // fraction of max brightness
}

type ShimmerConfig struct {
	Radius      float32 `yaml:"radius"`
	Probability float32 `yaml:"probability"`
	Boost       int     `yaml:"boost"`
}

type IntensityConfig struct {
	Bands      []Band        `yaml:"bands"`
	Shimmer    ShimmerConfig `yaml:"shimmer"`
	MinVisible int           `yaml:"min_visible"`
	GreenRatio float32       `yaml:"green_ratio"`
}

type Bucket struct {
	Name    string  `yaml:"name"`
	MaxDist float32 `yaml:"max_dist"`
	Glyph   string  `yaml:"glyph"`
}

type ASCIIConfig struct {
	Buckets []Bucket `yaml:"buckets"`
	Empty   string   `yaml:"empty"`
}

type SensorConfig struct {
	IIOPath string `yaml:"iio_path"`
	Name    string `yaml:"name"`
}

func DefaultIntensity() IntensityConfig {
	return IntensityConfig{
		Bands: []Band{
			{MaxDist: 0.6, Level: 1.0},
			{MaxDist: 1.5, Level: 0.7},
			{MaxDist: 2.5, Level: 0.42},
			{MaxDist: 3.5, Level: 0.22},
			{MaxDist: 5.0, Level: 0.1},
		},
		Shimmer: ShimmerConfig{
			Radius:      3.0,
			Probability: 0.15,
			Boost:       40,
		},
		MinVisible: 8,
		GreenRatio: 0.35,
	}
}

func DefaultASCII() ASCIIConfig {
	return ASCIIConfig{
		Buckets: []Bucket{
			{Name: "solid", MaxDist: 1.0, Glyph: "##"},
			{Name: "dense", MaxDist: 2.5, Glyph: "%%"},
			{Name: "medium", MaxDist: 4.0, Glyph: "=="},
			{Name: "faint", MaxDist: 6.0, Glyph: "--"},
		},
		Empty: "  ",
	}
}

func DefaultConfig() *Config {
	return &Config{
		StripLength:     DefaultStripLength,
		TiltSensitivity: DefaultTiltSensitivity,
		Friction:        DefaultFriction,
		WallDamping:     DefaultWallDamping,
		MaxBrightness:   DefaultMaxBrightness,
		PhysicsPeriodMs: DefaultPhysicsPeriodMs,
		RenderPeriodMs:  DefaultRenderPeriodMs,
		Demo: DemoConfig{
			Amplitude:   DefaultDemoAmplitude,
			AngularRate: DefaultDemoRate,
		},
		Intensity: DefaultIntensity(),
		ASCII:     DefaultASCII(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) PhysicsPeriod() time.Duration {
	return time.Duration(c.PhysicsPeriodMs) * time.Millisecond
}

func (c *Config) RenderPeriod() time.Duration {
	return time.Duration(c.RenderPeriodMs) * time.Millisecond
}

// Validate checks the physical preconditions of the simulation. A config
// that fails here must not be run.
func (c *Config) Validate() error {
	if c.StripLength < 2 {
		return fmt.Errorf("%w: got %d", ErrTrackTooShort, c.StripLength)
	}
	if c.WallDamping <= 0 || c.WallDamping >= 1 {
		return fmt.Errorf("%w: got %g", ErrDampingRange, c.WallDamping)
	}
	if c.Friction <= 0 || c.Friction >= 1 {
		return fmt.Errorf("%w: got %g", ErrFrictionRange, c.Friction)
	}
	if c.TiltSensitivity <= 0 {
		return fmt.Errorf("%w: tilt_sensitivity %g", ErrParameterBounds, c.TiltSensitivity)
	}
	if c.MaxBrightness < 1 || c.MaxBrightness > 255 {
		return fmt.Errorf("%w: max_brightness %d", ErrParameterBounds, c.MaxBrightness)
	}
	if c.PhysicsPeriodMs <= 0 || c.RenderPeriodMs <= 0 {
		return fmt.Errorf("%w: physics %dms, render %dms", ErrPeriod, c.PhysicsPeriodMs, c.RenderPeriodMs)
	}
	if c.Demo.AngularRate <= 0 {
		return fmt.Errorf("%w: demo angular_rate %g", ErrParameterBounds, c.Demo.AngularRate)
	}
	if err := validateBands(c.Intensity); err != nil {
		return err
	}
	return validateBuckets(c.ASCII)
}

func validateBands(ic IntensityConfig) error {
	if len(ic.Bands) == 0 {
		return fmt.Errorf("%w: no intensity bands", ErrBands)
	}
	prev := float32(0)
	for i, b := range ic.Bands {
		if b.MaxDist <= prev {
			return fmt.Errorf("%w: band %d max_dist %g not above %g", ErrBands, i, b.MaxDist, prev)
		}
		if b.Level < 0 || b.Level > 1 {
			return fmt.Errorf("%w: band %d level %g outside [0,1]", ErrBands, i, b.Level)
		}
		prev = b.MaxDist
	}
	s := ic.Shimmer
	if s.Probability < 0 || s.Probability > 1 || s.Boost < 0 || s.Radius < 0 {
		return fmt.Errorf("%w: shimmer %+v", ErrParameterBounds, s)
	}
	if ic.MinVisible < 0 || ic.GreenRatio < 0 || ic.GreenRatio > 1 {
		return fmt.Errorf("%w: min_visible %d green_ratio %g", ErrParameterBounds, ic.MinVisible, ic.GreenRatio)
	}
	return nil
}

func validateBuckets(ac ASCIIConfig) error {
	if len(ac.Buckets) == 0 {
		return fmt.Errorf("%w: no ascii buckets", ErrBands)
	}
	prev := float32(0)
	for i, b := range ac.Buckets {
		if b.MaxDist <= prev {
			return fmt.Errorf("%w: bucket %q max_dist %g not above %g", ErrBands, b.Name, b.MaxDist, prev)
		}
		if b.Glyph == "" {
			return fmt.Errorf("%w: bucket %d has no glyph", ErrBands, i)
		}
		prev = b.MaxDist
	}
	return nil
}
