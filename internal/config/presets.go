package config

import (
	"fmt"
	"sort"
)

type preset func(c *Config)

var Presets = map[string]preset{
	"default": func(c *Config) {},
	"calm": func(c *Config) {
		c.TiltSensitivity = 0.009
		c.Friction = 0.1
		c.WallDamping = 0.4
		c.Intensity.Shimmer.Probability = 0.05
	},
	"sloshy": func(c *Config) {
		c.TiltSensitivity = 0.03
		c.Friction = 0.03
		c.WallDamping = 0.85
		c.Intensity.Shimmer.Probability = 0.3
		c.Intensity.Shimmer.Boost = 60
	},
	"long": func(c *Config) {
		c.StripLength = 60
		c.TiltSensitivity = 0.025
	},
}

// GetPreset returns a fresh default config with the named preset applied.
func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
