package config

import "errors"

// Configuration errors. All of them are fatal at startup.
var (
	// ErrTrackTooShort indicates a strip with fewer than two addressable elements.
	ErrTrackTooShort = errors.New("config: strip_length must be at least 2")

	// ErrDampingRange indicates a wall damping that would not dissipate energy.
	ErrDampingRange = errors.New("config: wall_damping must be in (0,1)")

	// ErrFrictionRange indicates a friction coefficient outside (0,1).
	ErrFrictionRange = errors.New("config: friction must be in (0,1)")

	ErrPeriod = errors.New("config: loop periods must be positive")

	// ErrBands indicates unordered or empty intensity/ascii breakpoints.
	ErrBands = errors.New("config: breakpoints must be non-empty and ascending")

	ErrParameterBounds = errors.New("config: parameter out of valid bounds")

	ErrMalformed = errors.New("config: malformed yaml")

	ErrUnknownPreset = errors.New("config: unknown preset")
)
