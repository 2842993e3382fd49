// Package physics advances the water mass along the strip.
//
// One [Step] is a unit-time explicit update: tilt becomes acceleration,
// friction scales velocity, then position moves and is clamped to the
// track. Hitting either end reflects velocity scaled by the wall damping.
//
//	p := physics.ParamsFrom(config.DefaultConfig())
//	pos, vel := physics.Step(p, 14.5, 0, -10)
//
// [Integrator] wraps Step around a [motion.State] and publishes each tick.
package physics
