package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
)

// ErrKafkaBrokersRequired is returned when no Kafka brokers are configured.
var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	// Brokers lists broker addresses.
	Brokers []string
	// Transport overrides the default kafka transport (TLS, SASL).
	Transport kafka.RoundTripper
}

// Kafka publishes through a single kafka.Writer; the topic is set per message.
type Kafka struct {
	writer *kafka.Writer

	mu     sync.RWMutex
	closed bool
}

// NewKafka creates a writer for cfg.Brokers.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	brokers := lo.Compact(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			Transport:              cfg.Transport,
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

// Publish writes msg to the topic synchronously.
func (k *Kafka) Publish(ctx context.Context, destination string, msg Message) (Result, error) {
	if err := checkPublish(ctx, destination); err != nil {
		return Result{}, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return Result{}, ErrClosed
	}

	kmsg := kafka.Message{
		Topic: destination,
		Key:   msg.Key,
		Value: msg.Body,
		Time:  time.Now(),
		Headers: lo.MapToSlice(msg.Headers, func(k, v string) kafka.Header {
			return kafka.Header{Key: k, Value: []byte(v)}
		}),
	}

	if err := k.writer.WriteMessages(ctx, kmsg); err != nil {
		return Result{}, fmt.Errorf("messaging: kafka publish: %w", err)
	}

	return Result{Topic: destination, Timestamp: kmsg.Time}, nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	return k.writer.Close()
}
