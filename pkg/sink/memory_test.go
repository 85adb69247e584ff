package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySinkSnapshotAndDrain(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, s.WritePoints(ctx, []Point{{Measurement: "m1"}}))
	require.NoError(t, s.WritePoints(ctx, []Point{{Measurement: "m2"}}))

	snap := s.Snapshot()
	assert.Len(t, snap, 2)

	drained := s.Drain()
	assert.Len(t, drained, 2)
	assert.Empty(t, s.Snapshot())
}
