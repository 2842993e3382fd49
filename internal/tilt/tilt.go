// Package tilt produces one tilt angle, in degrees, per physics tick.
package tilt

import (
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/watersim/internal/config"
)

// Source yields the tilt for the current tick. Sample never fails.
type Source interface {
	Sample() float32
}

// Sensor is the accelerometer collaborator. TryInitialize is called once;
// ReadAcceleration only after it returned true.
type Sensor interface {
	TryInitialize() bool
	ReadAcceleration() (x, y, z float32)
}

const radToDeg = 180 / math.Pi

// Roll converts an acceleration vector into a roll angle in degrees. atan2
// keeps the full ±180° range and is defined when the device is edge-on.
func Roll(x, z float32) float32 {
	return float32(math.Atan2(float64(x), float64(z)) * radToDeg)
}

type SensorSource struct {
	sensor Sensor
}

func NewSensorSource(s Sensor) *SensorSource {
	return &SensorSource{sensor: s}
}

func (s *SensorSource) Sample() float32 {
	x, _, z := s.sensor.ReadAcceleration()
	return Roll(x, z)
}

// Synthetic is the demo-mode tilt: amplitude·sin(elapsedMs·rate).
type Synthetic struct {
	amplitude float64
	rate      float64 // rad/ms
	now       func() time.Time
	start     time.Time
}

func NewSynthetic(demo config.DemoConfig) *Synthetic {
	return NewSyntheticClock(demo, time.Now)
}

// NewSyntheticClock uses now as its time base; tests and headless traces pass
// a logical clock.
func NewSyntheticClock(demo config.DemoConfig, now func() time.Time) *Synthetic {
	return &Synthetic{
		amplitude: float64(demo.Amplitude),
		rate:      float64(demo.AngularRate),
		now:       now,
		start:     now(),
	}
}

func (s *Synthetic) Sample() float32 {
	return s.At(s.now().Sub(s.start))
}

// At evaluates the signal at an elapsed time.
func (s *Synthetic) At(elapsed time.Duration) float32 {
	ms := float64(elapsed) / float64(time.Millisecond)
	return float32(s.amplitude * math.Sin(ms*s.rate))
}

// Period is 2π/rate, in milliseconds.
func (s *Synthetic) Period() float64 {
	return 2 * math.Pi / s.rate
}

func (s *Synthetic) Restart() {
	s.start = s.now()
}

// Constant always reports the same angle.
type Constant float32

func (c Constant) Sample() float32 { return float32(c) }

// Select probes the sensor exactly once. When it does not answer the demo
// source is used for the rest of the process; there is no retry. The bool
// reports whether the sensor is in use.
func Select(sensor Sensor, demo config.DemoConfig, logger *log.Logger) (Source, bool) {
	if sensor != nil && sensor.TryInitialize() {
		logger.Info("tilt sensor online")
		return NewSensorSource(sensor), true
	}
	logger.Warn("tilt sensor unavailable, running demo mode",
		"amplitude", demo.Amplitude, "rate", demo.AngularRate)
	return NewSynthetic(demo), false
}
