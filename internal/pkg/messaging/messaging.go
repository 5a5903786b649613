package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrDestinationRequired is returned when Publish gets an empty topic or subject.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrClosed is returned when publishing on a closed publisher.
	ErrClosed = errors.New("messaging: publisher is closed")
)

// Publisher sends messages to a destination (topic or subject).
type Publisher interface {
	io.Closer

	Publish(ctx context.Context, destination string, msg Message) (Result, error)
}

// Message is a broker-agnostic outgoing message.
type Message struct {
	// Key is used for partitioning (Kafka) and ordering (Pub/Sub).
	Key []byte
	// Body is the payload.
	Body []byte
	// Headers are sent as broker headers or attributes where supported.
	Headers map[string]string
}

// Result carries whatever the broker reports about an accepted message.
type Result struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// Noop discards messages. It is the default driver.
type Noop struct{}

// Publish accepts msg without sending it.
func (Noop) Publish(ctx context.Context, destination string, _ Message) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if destination == "" {
		return Result{}, ErrDestinationRequired
	}
	return Result{Topic: destination, Timestamp: time.Now()}, nil
}

// Close is a no-op.
func (Noop) Close() error { return nil }

func checkPublish(ctx context.Context, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}
	return nil
}
