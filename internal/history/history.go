// Package history keeps the last few minutes of a reading in memory for
// the sparklines, with min/peak/avg statistics. Nothing is persisted.
package history

import (
	"math"
	"time"

	"github.com/asecurityteam/rolling"
)

// Point is one sample.
type Point struct {
	Value float64
	Time  time.Time
}

// Buffer is a ring buffer of samples for one series. Min, Peak and Avg
// describe the retained samples only.
type Buffer struct {
	Points []Point
	Max    int // capacity
	Min    float64
	Peak   float64

	window *rolling.PointPolicy
}

// NewBuffer creates an empty buffer holding at most capacity samples.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		Points: make([]Point, 0, capacity),
		Max:    capacity,
		Min:    math.MaxFloat64,
		Peak:   -math.MaxFloat64,
		window: rolling.NewPointPolicy(rolling.NewWindow(capacity)),
	}
}

// Push appends a sample, evicting the oldest one when full.
func (b *Buffer) Push(v float64, t time.Time) {
	p := Point{Value: v, Time: t}
	evicted := false
	var old float64
	if len(b.Points) >= b.Max {
		old = b.Points[0].Value
		evicted = true
		copy(b.Points, b.Points[1:])
		b.Points[len(b.Points)-1] = p
	} else {
		b.Points = append(b.Points, p)
	}
	b.window.Append(v)

	if evicted && (old == b.Min || old == b.Peak) {
		b.rescan()
		return
	}
	if v < b.Min {
		b.Min = v
	}
	if v > b.Peak {
		b.Peak = v
	}
}

func (b *Buffer) rescan() {
	b.Min, b.Peak = math.MaxFloat64, -math.MaxFloat64
	for _, p := range b.Points {
		b.Min = math.Min(b.Min, p.Value)
		b.Peak = math.Max(b.Peak, p.Value)
	}
}

// Len is the number of stored samples.
func (b *Buffer) Len() int { return len(b.Points) }

// Last returns the newest value, or 0 if empty.
func (b *Buffer) Last() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	return b.Points[len(b.Points)-1].Value
}

// Avg is the mean of the stored samples. Buckets of the window that were
// never written hold 0, so the sum is divided by the sample count rather
// than reduced with rolling.Avg.
func (b *Buffer) Avg() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	return b.window.Reduce(rolling.Sum) / float64(len(b.Points))
}

// LastN returns up to n of the newest values, oldest first.
func (b *Buffer) LastN(n int) []float64 {
	pts := b.LastNPoints(n)
	if pts == nil {
		return nil
	}
	vals := make([]float64, len(pts))
	for i, p := range pts {
		vals[i] = p.Value
	}
	return vals
}

// LastNPoints returns a copy of up to n of the newest samples.
func (b *Buffer) LastNPoints(n int) []Point {
	if n <= 0 || len(b.Points) == 0 {
		return nil
	}
	start := len(b.Points) - n
	if start < 0 {
		start = 0
	}
	out := make([]Point, len(b.Points[start:]))
	copy(out, b.Points[start:])
	return out
}

// Store holds one buffer per series key.
type Store struct {
	Data     map[string]*Buffer
	Capacity int
}

// NewStore creates a store whose buffers hold capacity samples each.
func NewStore(capacity int) *Store {
	return &Store{
		Data:     make(map[string]*Buffer),
		Capacity: capacity,
	}
}

// CapacityFor is the number of samples taken at interval over span.
func CapacityFor(span, interval time.Duration) int {
	if interval <= 0 {
		return 1
	}
	n := int(span / interval)
	if n < 1 {
		return 1
	}
	return n
}

// Record appends v to the series key, creating it on first use.
func (s *Store) Record(key string, v float64, t time.Time) {
	b, ok := s.Data[key]
	if !ok {
		b = NewBuffer(s.Capacity)
		s.Data[key] = b
	}
	b.Push(v, t)
}

// Get returns the buffer for key, or nil.
func (s *Store) Get(key string) *Buffer {
	return s.Data[key]
}
