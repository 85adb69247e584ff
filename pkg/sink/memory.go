package sink

import (
	"context"
	"sync"
)

// MemorySink is an in-process WritePoints implementation for tests.
// It appends to an internal, mutex-protected list.
type MemorySink struct {
	mu     sync.Mutex
	points []Point
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// WritePoints appends points to the internal buffer. It never fails.
func (s *MemorySink) WritePoints(_ context.Context, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, points...)
	return nil
}

// Snapshot returns a non-destructive copy of everything written so far.
func (s *MemorySink) Snapshot() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Drain returns everything written so far and clears the buffer.
func (s *MemorySink) Drain() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.points
	s.points = nil
	return out
}
