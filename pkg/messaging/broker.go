package messaging

import (
	"context"
)

// Broker defines the interface for message brokers. Subscribe returns a
// channel of raw payloads; the channel is closed when the context is
// cancelled or the underlying transport fails.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
