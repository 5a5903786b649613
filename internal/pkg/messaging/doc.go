// Package messaging publishes domain events to a broker chosen by
// configuration: NATS, NSQ, Kafka, Google Pub/Sub, or a noop sink.
//
// Only the publish side is provided; this service never consumes.
package messaging
