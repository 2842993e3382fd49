package physics

import (
	"github.com/san-kum/watersim/internal/config"
	"github.com/san-kum/watersim/internal/motion"
)

// Params are the constants of the water column. Callers guarantee
// TrackLength >= 2, WallDamping and Friction in (0,1); config.Validate
// checks this before anything is built.
type Params struct {
	TiltSensitivity float32
	Friction        float32
	WallDamping     float32
	TrackLength     int
}

func ParamsFrom(cfg *config.Config) Params {
	return Params{
		TiltSensitivity: cfg.TiltSensitivity,
		Friction:        cfg.Friction,
		WallDamping:     cfg.WallDamping,
		TrackLength:     cfg.StripLength,
	}
}

func (p Params) Max() float32 { return float32(p.TrackLength - 1) }

// Step advances one tick. Positive tilt pushes the mass toward position 0.
// Both walls are checked every tick.
func Step(p Params, pos, vel, tilt float32) (float32, float32) {
	accel := -tilt * p.TiltSensitivity
	vel += accel
	vel *= 1 - p.Friction
	pos += vel

	if pos <= 0 {
		pos = 0
		vel = -vel * p.WallDamping
	}
	if top := p.Max(); pos >= top {
		pos = top
		vel = -vel * p.WallDamping
	}
	return pos, vel
}

// Integrator is the only writer of a motion.State.
type Integrator struct {
	params Params
	state  *motion.State
}

func NewIntegrator(p Params, state *motion.State) *Integrator {
	return &Integrator{params: p, state: state}
}

func (in *Integrator) Params() Params { return in.params }

// Tick runs one fixed step against the tilt sample and publishes the result.
// The time base is the tick itself; late ticks are not compensated.
func (in *Integrator) Tick(tilt float32) motion.Snapshot {
	pos, vel := Step(in.params, in.state.Position(), in.state.Velocity(), tilt)
	in.state.Publish(pos, vel)
	return motion.Snapshot{Position: pos, Velocity: vel, SourceAvailable: in.state.SourceAvailable()}
}
