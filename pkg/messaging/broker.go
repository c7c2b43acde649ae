package messaging

import (
	"context"
)

// Broker is the interface integration events are published through.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope published for every integration event.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
