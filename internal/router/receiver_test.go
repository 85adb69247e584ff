package router

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plantwatch/telemetry-pipeline/pkg/telemetry"
)

func TestReceiver_QueueOverflowDropsExcess(t *testing.T) {
	r, err := NewReceiver("127.0.0.1:0")
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	raddr := r.conn.LocalAddr().(*net.UDPAddr)
	sender, err := net.DialUDP("udp", nil, raddr)
	require.NoError(t, err)
	defer sender.Close()

	const total = QueueCapacity + 1
	for i := 0; i < total; i++ {
		msg := telemetry.Message{
			Version:     telemetry.SupportedVersion,
			DeviceUID:   "device-001",
			PlantID:     "11111111-1111-1111-1111-111111111111",
			Seq:         uint32(i),
			TimestampNs: int64(i),
		}
		payload, err := json.Marshal(msg)
		require.NoError(t, err)
		_, err = sender.Write(payload)
		require.NoError(t, err)
	}

	// Give the receiver loop time to drain the socket into the queue
	// without anyone draining the queue itself.
	require.Eventually(t, func() bool {
		return r.Enqueued()+r.Dropped() == uint64(total)
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, uint64(QueueCapacity), r.Enqueued())
	require.Equal(t, uint64(1), r.Dropped())
}

func TestReceiver_RejectsMalformedPacket(t *testing.T) {
	r, err := NewReceiver("127.0.0.1:0")
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	raddr := r.conn.LocalAddr().(*net.UDPAddr)
	sender, err := net.DialUDP("udp", nil, raddr)
	require.NoError(t, err)
	defer sender.Close()

	_, err = sender.Write([]byte("not json"))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, uint64(0), r.Enqueued())
	require.Equal(t, uint64(0), r.Dropped())
}
