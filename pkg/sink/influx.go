package sink

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// InfluxSink is the production WritePoints implementation. It builds
// line-protocol text per BuildLine/BuildLines (the spec-exact
// escaping rules) and hands the lines to the official InfluxDB client
// for the actual HTTP write, the same split the rest of this
// codebase's teacher uses for driving that client.
type InfluxSink struct {
	client influxdb2.Client
	org    string
	bucket string
}

// NewInfluxSink constructs a sink bound to one InfluxDB v2 org/bucket.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	return &InfluxSink{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
	}
}

// WritePoints serializes points to line protocol and POSTs them via
// the blocking write API. Errors are returned to the caller, who is
// expected to treat them as non-fatal.
func (s *InfluxSink) WritePoints(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	writeAPI := s.client.WriteAPIBlocking(s.org, s.bucket)
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = BuildLine(p)
	}
	if err := writeAPI.WriteRecord(ctx, lines...); err != nil {
		return fmt.Errorf("influxdb write failed: %w", err)
	}
	return nil
}

// Close releases the underlying HTTP client's idle connections.
func (s *InfluxSink) Close() {
	s.client.Close()
}
