package render

import (
	"fmt"
	"strings"

	"github.com/san-kum/watersim/internal/config"
	"github.com/san-kum/watersim/internal/motion"
)

// BucketMapper is the text counterpart of IntensityMapper with its own,
// coarser breakpoints.
type BucketMapper struct {
	length  int
	buckets []config.Bucket
	empty   string
}

func NewBucketMapper(length int, ac config.ASCIIConfig) *BucketMapper {
	empty := ac.Empty
	if empty == "" {
		empty = "  "
	}
	return &BucketMapper{
		length:  length,
		buckets: append([]config.Bucket(nil), ac.Buckets...),
		empty:   empty,
	}
}

// Bucket returns the bucket name for element i, "empty" past the last one.
func (m *BucketMapper) Bucket(i int, pos float32) string {
	d := dist(i, pos)
	for _, b := range m.buckets {
		if d < b.MaxDist {
			return b.Name
		}
	}
	return "empty"
}

func (m *BucketMapper) glyph(i int, pos float32) string {
	d := dist(i, pos)
	for _, b := range m.buckets {
		if d < b.MaxDist {
			return b.Glyph
		}
	}
	return m.empty
}

// Glyphs renders the strip without the numeric suffix.
func (m *BucketMapper) Glyphs(s motion.Snapshot) string {
	var b strings.Builder
	b.Grow(m.length * 2)
	for i := 0; i < m.length; i++ {
		b.WriteString(m.glyph(i, s.Position))
	}
	return b.String()
}

// Line is the diagnostic frame: glyphs, position to two places, velocity to three.
func (m *BucketMapper) Line(s motion.Snapshot) string {
	return fmt.Sprintf("|%s| pos=%.2f vel=%.3f", m.Glyphs(s), s.Position, s.Velocity)
}
