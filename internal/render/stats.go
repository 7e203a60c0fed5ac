package render

import (
	"log/slog"
	"sync/atomic"
)

// Event is the outcome of one path segment.
type Event uint8

const (
	Escape      Event = iota // left the scene without hitting anything
	Absorb                   // absorbed by the material roll
	NoMaterial               // hit a face without material outside any medium
	BounceLimit              // still alive after MaxBounces
	LowEnergy                // throughput fell below MinEnergy
	Terminated               // neither refracted nor reflected
	Scatter                  // scattered inside a medium
	Reflect                  // reflected off a face
	Refract                  // refracted through a face
	numEvents
)

var eventNames = [numEvents]string{
	"escape", "absorb", "no_material", "bounce_limit", "low_energy",
	"terminated", "scatter", "reflect", "refract",
}

func (e Event) String() string {
	if e < numEvents {
		return eventNames[e]
	}
	return "unknown"
}

// Stats counts path events across all render workers. A nil *Stats ignores
// every event.
type Stats struct {
	counts [numEvents]atomic.Int64
}

func (s *Stats) add(e Event) {
	if s != nil {
		s.counts[e].Add(1)
	}
}

// Count returns how many times e happened.
func (s *Stats) Count(e Event) int64 { return s.counts[e].Load() }

// Paths returns the number of finished paths.
func (s *Stats) Paths() int64 {
	n := int64(0)
	for e := Escape; e <= Terminated; e++ {
		n += s.Count(e)
	}
	return n
}

func (s *Stats) Reset() {
	for i := range s.counts {
		s.counts[i].Store(0)
	}
}

// LogValue makes Stats printable as one structured log group.
func (s *Stats) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, numEvents+1)
	attrs = append(attrs, slog.Int64("paths", s.Paths()))
	for e := Event(0); e < numEvents; e++ {
		attrs = append(attrs, slog.Int64(e.String(), s.Count(e)))
	}
	return slog.GroupValue(attrs...)
}
