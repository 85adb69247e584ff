package bus

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/plantwatch/telemetry-pipeline/pkg/log"
)

var (
	clientOnce     sync.Once
	clientInstance *Client
)

// Client wraps a NATS connection for publish-only use by the ingest
// processor. Subscription management from the teacher's client was
// dropped: the supervisor never consumes bus messages, only emits them.
type Client struct {
	conn *nats.Conn
	mu   sync.Mutex
}

// Connect initializes the singleton client. If addr is empty the bus
// is left disconnected and callers should use NoopPublisher instead.
func Connect(addr string) (*Client, error) {
	if addr == "" {
		return nil, nil
	}

	var err error
	clientOnce.Do(func() {
		var nc *nats.Conn
		nc, err = nats.Connect(addr,
			nats.DisconnectErrHandler(func(_ *nats.Conn, derr error) {
				if derr != nil {
					log.Warnf("bus: disconnected: %v", derr)
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				log.Infof("bus: reconnected to %s", c.ConnectedUrl())
			}),
		)
		if err != nil {
			err = fmt.Errorf("bus: connect failed: %w", err)
			return
		}
		log.Infof("bus: connected to %s", addr)
		clientInstance = &Client{conn: nc}
	})
	return clientInstance, err
}

// GetClient returns the singleton client, or nil if Connect was never
// called or was called with an empty address.
func GetClient() *Client {
	return clientInstance
}

// PublishStatusChange satisfies Publisher.
func (c *Client) PublishStatusChange(sc StatusChange) error {
	return publish(sc, func(subject string, data []byte) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.conn.Publish(subject, data)
	})
}

// Close flushes and closes the underlying connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Flush()
		c.conn.Close()
	}
}
