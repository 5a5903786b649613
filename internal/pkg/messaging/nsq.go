package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

// ErrNSQProducerAddrRequired is returned when the nsqd address is missing.
var ErrNSQProducerAddrRequired = errors.New("messaging: nsq producer address is required")

// NSQConfig configures the NSQ publisher.
type NSQConfig struct {
	// ProducerAddr is the nsqd TCP address.
	ProducerAddr string
	// ProducerConfig overrides nsq.NewConfig().
	ProducerConfig *nsq.Config
}

// NSQ publishes to NSQ topics. NSQ has no headers, so when a message carries
// any the body is wrapped as {"headers":{...},"body":<raw json>}.
type NSQ struct {
	producer *nsq.Producer

	once sync.Once
}

// NewNSQ creates a producer for cfg.ProducerAddr.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.ProducerAddr == "" {
		return nil, ErrNSQProducerAddrRequired
	}

	pcfg := cfg.ProducerConfig
	if pcfg == nil {
		pcfg = nsq.NewConfig()
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, pcfg)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{producer: p}, nil
}

// Publish sends msg to the topic.
func (n *NSQ) Publish(ctx context.Context, destination string, msg Message) (Result, error) {
	if err := checkPublish(ctx, destination); err != nil {
		return Result{}, err
	}

	body, err := nsqBody(msg)
	if err != nil {
		return Result{}, err
	}

	if err := n.producer.Publish(destination, body); err != nil {
		return Result{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return Result{Topic: destination, Timestamp: time.Now()}, nil
}

// Close stops the producer.
func (n *NSQ) Close() error {
	n.once.Do(n.producer.Stop)
	return nil
}

func nsqBody(msg Message) ([]byte, error) {
	if len(msg.Headers) == 0 {
		return msg.Body, nil
	}

	env := struct {
		Headers map[string]string `json:"headers"`
		Body    json.RawMessage   `json:"body"`
	}{Headers: msg.Headers, Body: msg.Body}

	if !json.Valid(msg.Body) {
		raw, err := json.Marshal(string(msg.Body))
		if err != nil {
			return nil, err
		}
		env.Body = raw
	}

	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq envelope: %w", err)
	}
	return out, nil
}
