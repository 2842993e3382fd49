package physics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/san-kum/watersim/internal/config"
	"github.com/san-kum/watersim/internal/motion"
)

func defaultParams() Params {
	return ParamsFrom(config.DefaultConfig())
}

func near(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func TestStepBoundedForRandomTilt(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	tests := []struct {
		name   string
		params Params
	}{
		{"default", defaultParams()},
		{"short track", Params{TiltSensitivity: 0.018, Friction: 0.06, WallDamping: 0.68, TrackLength: 2}},
		{"violent", Params{TiltSensitivity: 5, Friction: 0.001, WallDamping: 0.99, TrackLength: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := tt.params.Max()/2, float32(0)
			for i := 0; i < 20000; i++ {
				tilt := float32(rng.Float64()*180 - 90)
				pos, vel = Step(tt.params, pos, vel, tilt)
				if pos < 0 || pos > tt.params.Max() {
					t.Fatalf("tick %d: position %g outside [0, %g]", i, pos, tt.params.Max())
				}
			}
		})
	}
}

func TestSpeedDecaysAtRest(t *testing.T) {
	p := defaultParams()
	p.TrackLength = 100000

	pos, vel := float32(50000), float32(3)
	prev := float32(math.Abs(float64(vel)))
	for i := 0; i < 200; i++ {
		pos, vel = Step(p, pos, vel, 0)
		speed := float32(math.Abs(float64(vel)))
		if speed >= prev {
			t.Fatalf("tick %d: speed %g did not decrease from %g", i, speed, prev)
		}
		prev = speed
	}

	pos, vel = Step(p, pos, 0, 0)
	if vel != 0 {
		t.Errorf("zero velocity should stay zero, got %g", vel)
	}
}

func TestBounceKeepsDampedSpeed(t *testing.T) {
	tests := []struct {
		name     string
		pos, vel float32
		wall     float32
	}{
		{"lower wall", 0.5, -3, 0},
		{"upper wall", 28.5, 3, 29},
	}

	p := defaultParams()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pre := tt.vel * (1 - p.Friction)
			pos, vel := Step(p, tt.pos, tt.vel, 0)
			if pos != tt.wall {
				t.Errorf("position = %g, want %g", pos, tt.wall)
			}
			if !near(vel, -pre*p.WallDamping, 1e-6) {
				t.Errorf("velocity = %g, want %g", vel, -pre*p.WallDamping)
			}
			if (vel > 0) == (tt.vel > 0) {
				t.Errorf("velocity sign did not flip: %g -> %g", tt.vel, vel)
			}
		})
	}
}

func TestWallBounceScenario(t *testing.T) {
	p := Params{TiltSensitivity: 0.018, Friction: 0, WallDamping: 0.68, TrackLength: 30}

	pos, vel := Step(p, 0, -2.0, 0)
	if pos != 0 {
		t.Errorf("position = %g, want 0", pos)
	}
	if !near(vel, 1.36, 1e-6) {
		t.Errorf("velocity = %g, want 1.36", vel)
	}

	// with the default friction the speed is reduced before it reaches the wall
	p.Friction = 0.06
	_, vel = Step(p, 0, -2.0, 0)
	if !near(vel, 2.0*0.94*0.68, 1e-6) {
		t.Errorf("velocity = %g, want %g", vel, 2.0*0.94*0.68)
	}
}

func TestConstantTiltScenario(t *testing.T) {
	p := defaultParams()
	pos, vel := float32(14.5), float32(0)

	touched := false
	prev := pos
	for i := 0; i < 50; i++ {
		pos, vel = Step(p, pos, vel, -50)
		if pos > 29 {
			t.Fatalf("tick %d: position %g exceeds 29", i, pos)
		}
		if !touched && pos < prev {
			t.Fatalf("tick %d: position fell from %g to %g before reaching the wall", i, prev, pos)
		}
		if pos == 29 {
			touched = true
		}
		prev = pos
	}

	if !touched {
		t.Error("mass never reached the upper wall")
	}
	if pos < 28.9 {
		t.Errorf("expected mass pressed against the wall, got %g", pos)
	}
}

func TestPositiveTiltMovesTowardZero(t *testing.T) {
	p := defaultParams()
	pos, _ := Step(p, 14.5, 0, 30)
	if pos >= 14.5 {
		t.Errorf("positive tilt should decrease position, got %g", pos)
	}
}

func TestIntegratorPublishes(t *testing.T) {
	state := motion.New(30, false)
	in := NewIntegrator(defaultParams(), state)

	snap := in.Tick(-50)
	got := state.Snapshot()
	if got != snap {
		t.Errorf("published %+v, returned %+v", got, snap)
	}
	if got.Position <= 14.5 {
		t.Errorf("expected position to move up, got %g", got.Position)
	}
	if got.SourceAvailable {
		t.Error("integrator must not change source availability")
	}
}
