package messaging

import (
	"context"
)

// Broker defines the interface for the operational event stream. Handler
// invocations publish fan-out summaries for dashboards and debugging;
// nothing is ever read back by this service.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
