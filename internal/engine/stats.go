package engine

import "sync/atomic"

// Stats are written by the loops and may be read at any time.
type Stats struct {
	Ticks        atomic.Int64
	Frames       atomic.Int64
	Overruns     atomic.Int64
	OutputErrors atomic.Int64
}
