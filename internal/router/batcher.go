package router

import (
	"context"
	"time"

	"github.com/plantwatch/telemetry-pipeline/internal/ingest"
	"github.com/plantwatch/telemetry-pipeline/pkg/log"
)

// DefaultBatchSize is the default cap on envelopes per forwarded batch.
const DefaultBatchSize = 64

// SoftDeadline bounds how long one batch cycle waits to fill before
// forwarding whatever it has.
const SoftDeadline = 100 * time.Millisecond

// Forwarder is the capability the batcher hands completed batches to:
// the HTTP client side of the Ingest RPC.
type Forwarder interface {
	ForwardBatch(ctx context.Context, envelopes []ingest.Envelope) error
}

// Batcher drains a Receiver's queue into size/time-bounded batches and
// hands each to a Forwarder. It returns once the queue is closed.
type Batcher struct {
	queue     <-chan ingest.Envelope
	forwarder Forwarder
	batchSize int
}

func NewBatcher(queue <-chan ingest.Envelope, forwarder Forwarder, batchSize int) *Batcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Batcher{queue: queue, forwarder: forwarder, batchSize: batchSize}
}

// Run loops forever, each cycle collecting up to batchSize envelopes
// or until SoftDeadline elapses, then forwarding the batch. It returns
// when the queue channel is closed.
func (b *Batcher) Run(ctx context.Context) {
	for {
		batch, ok := b.collect(ctx)
		if len(batch) > 0 {
			if err := b.forwarder.ForwardBatch(ctx, batch); err != nil {
				log.Errorf("router: batch forward failed: %v", err)
			}
		}
		if !ok {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// collect pulls envelopes until the batch is full or the soft
// deadline elapses. ok is false once the queue has been closed and
// drained.
func (b *Batcher) collect(ctx context.Context) (batch []ingest.Envelope, ok bool) {
	deadline := time.NewTimer(SoftDeadline)
	defer deadline.Stop()

	for len(batch) < b.batchSize {
		select {
		case env, open := <-b.queue:
			if !open {
				return batch, false
			}
			batch = append(batch, env)
		case <-deadline.C:
			return batch, true
		case <-ctx.Done():
			return batch, true
		}
	}
	return batch, true
}
