// Package sink provides the polymorphic time-series write capability
// used by the ingest processor: a WritePoints method shared by a
// memory-backed implementation (tests) and a remote InfluxDB line
// protocol implementation (production). Writes are best-effort —
// callers treat a returned error as non-fatal.
package sink

import "context"

// Point is a single normalized measurement ready for the time-series
// store. TimestampNs of zero means "let the server assign the time".
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]float64
	TimestampNs int64
}

// WritePoints is the capability the ingest processor depends on. Both
// the memory sink and the remote InfluxDB sink satisfy it; callers
// select an implementation at startup from configuration.
type WritePoints interface {
	WritePoints(ctx context.Context, points []Point) error
}
