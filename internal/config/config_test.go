package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.StripLength != 30 {
		t.Errorf("expected strip length 30, got %d", cfg.StripLength)
	}
	if cfg.PhysicsPeriod() != 10*time.Millisecond {
		t.Errorf("expected 10ms physics period, got %v", cfg.PhysicsPeriod())
	}
	if cfg.RenderPeriod() != 45*time.Millisecond {
		t.Errorf("expected 45ms render period, got %v", cfg.RenderPeriod())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"track length 1", func(c *Config) { c.StripLength = 1 }, ErrTrackTooShort},
		{"damping 1", func(c *Config) { c.WallDamping = 1 }, ErrDampingRange},
		{"damping above 1", func(c *Config) { c.WallDamping = 1.2 }, ErrDampingRange},
		{"damping 0", func(c *Config) { c.WallDamping = 0 }, ErrDampingRange},
		{"friction 0", func(c *Config) { c.Friction = 0 }, ErrFrictionRange},
		{"friction 1", func(c *Config) { c.Friction = 1 }, ErrFrictionRange},
		{"zero physics period", func(c *Config) { c.PhysicsPeriodMs = 0 }, ErrPeriod},
		{"negative render period", func(c *Config) { c.RenderPeriodMs = -1 }, ErrPeriod},
		{"brightness too high", func(c *Config) { c.MaxBrightness = 300 }, ErrParameterBounds},
		{"no bands", func(c *Config) { c.Intensity.Bands = nil }, ErrBands},
		{"unordered bands", func(c *Config) {
			c.Intensity.Bands = []Band{{MaxDist: 2, Level: 1}, {MaxDist: 1, Level: 0.5}}
		}, ErrBands},
		{"band level above 1", func(c *Config) { c.Intensity.Bands[0].Level = 1.5 }, ErrBands},
		{"shimmer probability", func(c *Config) { c.Intensity.Shimmer.Probability = 2 }, ErrParameterBounds},
		{"empty glyph", func(c *Config) { c.ASCII.Buckets[0].Glyph = "" }, ErrBands},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.yaml")
	data := []byte("strip_length: 44\nwall_damping: 0.5\ndemo:\n  amplitude: 30\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.StripLength != 44 {
		t.Errorf("expected strip length 44, got %d", cfg.StripLength)
	}
	if cfg.WallDamping != 0.5 {
		t.Errorf("expected damping 0.5, got %g", cfg.WallDamping)
	}
	if cfg.Demo.Amplitude != 30 {
		t.Errorf("expected amplitude 30, got %g", cfg.Demo.Amplitude)
	}
	if cfg.Demo.AngularRate != DefaultDemoRate {
		t.Errorf("angular rate should keep default, got %g", cfg.Demo.AngularRate)
	}
	if cfg.Friction != DefaultFriction {
		t.Errorf("friction should keep default, got %g", cfg.Friction)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("strip_length: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.StripLength = 12
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.StripLength != 12 || len(loaded.Intensity.Bands) != len(cfg.Intensity.Bands) {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestGetPreset(t *testing.T) {
	cfg, err := GetPreset("sloshy")
	if err != nil {
		t.Fatalf("expected preset, got %v", err)
	}
	if cfg.WallDamping != 0.85 {
		t.Errorf("expected damping 0.85, got %g", cfg.WallDamping)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset invalid: %v", err)
	}

	if _, err := GetPreset("nonexistent"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		cfg, err := GetPreset(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestGetPresetDoesNotShareState(t *testing.T) {
	a, _ := GetPreset("calm")
	a.Intensity.Bands[0].Level = 0.1
	b, _ := GetPreset("calm")
	if b.Intensity.Bands[0].Level != 1.0 {
		t.Error("presets share band slices")
	}
}
