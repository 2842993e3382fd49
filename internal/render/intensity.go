// Package render maps a motion snapshot onto the light strip and onto a
// one-line text view. Both mappers are pure functions of the snapshot and
// never write back into it.
package render

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/watersim/internal/config"
	"github.com/san-kum/watersim/internal/motion"
)

// Profile holds one brightness per strip element.
type Profile []uint8

type RGB struct {
	R, G, B uint8
}

// IntensityMapper turns the distance from the water's centre into a
// brightness with a stepped falloff, then adds shimmer near the centre.
type IntensityMapper struct {
	length     int
	max        int
	bands      []config.Band
	shimmer    config.ShimmerConfig
	minVisible int
	greenRatio float32
}

func NewIntensityMapper(length, maxBrightness int, ic config.IntensityConfig) *IntensityMapper {
	return &IntensityMapper{
		length:     length,
		max:        maxBrightness,
		bands:      append([]config.Band(nil), ic.Bands...),
		shimmer:    ic.Shimmer,
		minVisible: ic.MinVisible,
		greenRatio: ic.GreenRatio,
	}
}

func dist(i int, pos float32) float32 {
	return float32(math.Abs(float64(float32(i) - pos)))
}

func (m *IntensityMapper) level(d float32) int {
	for _, b := range m.bands {
		if d < b.MaxDist {
			return int(b.Level*float32(m.max) + 0.5)
		}
	}
	return 0
}

// Map computes the profile for one frame. rng drives the shimmer; the same
// seed and snapshot always give the same profile.
func (m *IntensityMapper) Map(s motion.Snapshot, rng *rand.Rand) Profile {
	out := make(Profile, m.length)
	for i := range out {
		d := dist(i, s.Position)
		v := m.level(d)
		if d < m.shimmer.Radius && rng.Float32() < m.shimmer.Probability {
			v += m.shimmer.Boost
		}
		if v > m.max {
			v = m.max
		}
		if v < m.minVisible {
			v = 0
		}
		out[i] = uint8(v)
	}
	return out
}

// Color biases toward blue; green follows the intensity, red stays off.
func (m *IntensityMapper) Color(v uint8) RGB {
	return RGB{G: uint8(float32(v)*m.greenRatio + 0.5), B: v}
}

// Draw sends the lit elements of p to the strip and flushes once.
func (m *IntensityMapper) Draw(p Profile, s Strip) error {
	for i, v := range p {
		if v == 0 {
			continue
		}
		s.SetPixel(i, m.Color(v))
	}
	return s.Flush()
}
