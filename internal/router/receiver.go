// Package router implements the UDP-facing half of the pipeline: the
// receiver loop that decodes and fingerprints datagrams, and the
// batcher that drains the resulting queue into size/time-bounded
// batches for the Ingest RPC.
package router

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/plantwatch/telemetry-pipeline/internal/ingest"
	"github.com/plantwatch/telemetry-pipeline/pkg/log"
)

// QueueCapacity is the bounded queue's depth. Filling it causes the
// receiver to drop further datagrams rather than block.
const QueueCapacity = 1024

// maxPacketSize bounds the receive buffer; packets larger than this
// are truncated by ReadFromUDP, which will generally fail decoding.
const maxPacketSize = 4096

// Receiver binds a UDP socket and pushes decoded envelopes onto a
// bounded channel. It never blocks on a full queue: it drops the
// packet and logs instead.
type Receiver struct {
	conn  *net.UDPConn
	queue chan ingest.Envelope

	dropped  atomic.Uint64
	enqueued atomic.Uint64

	closeOnce sync.Once
	closeErr  error
}

// Dropped returns the number of datagrams dropped so far due to a
// full queue.
func (r *Receiver) Dropped() uint64 { return r.dropped.Load() }

// Enqueued returns the number of datagrams successfully enqueued so far.
func (r *Receiver) Enqueued() uint64 { return r.enqueued.Load() }

// NewReceiver binds addr and returns a Receiver ready for Run.
func NewReceiver(addr string) (*Receiver, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &Receiver{
		conn:  conn,
		queue: make(chan ingest.Envelope, QueueCapacity),
	}, nil
}

// Queue exposes the receive channel for the Batcher to drain.
func (r *Receiver) Queue() <-chan ingest.Envelope {
	return r.queue
}

// Close closes the underlying socket and the queue, which in turn
// ends the batcher's drain loop. Safe to call more than once; only
// the first call closes anything.
func (r *Receiver) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.conn.Close()
		close(r.queue)
	})
	return r.closeErr
}

// Run reads datagrams until ctx is cancelled or the socket errors.
// Never blocks: enqueue attempts use a non-blocking select. Closing
// the socket (e.g. via Close, triggered from ctx.Done elsewhere) is
// what unblocks a pending ReadFromUDP so cancellation is observed
// promptly.
func (r *Receiver) Run(ctx context.Context) error {
	buf := make([]byte, maxPacketSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		env, err := ingest.NewEnvelope(buf[:n])
		if err != nil {
			log.Warnf("router: malformed packet: %v", err)
			continue
		}

		select {
		case r.queue <- env:
			r.enqueued.Add(1)
		default:
			r.dropped.Add(1)
			log.Warnf("router: queue full, dropping envelope %s", env.IngestID)
		}
	}
}
