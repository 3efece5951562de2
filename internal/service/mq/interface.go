package mq

import "context"

// Topics carried over the wallet event bus.
const (
	TopicSubmission = "wallet_events_submission"
	TopicReconcile  = "wallet_events_reconcile"
)

// Message is one wallet event in transit.
type Message struct {
	ID       string            // broker message id (e.g. Redis Stream ID)
	Topic    string            // event topic
	Key      string            // partition key (account address)
	Payload  []byte            // JSON body
	Metadata map[string]string // broker metadata
}

// Producer publishes wallet events.
type Producer interface {
	// Publish sends one message.
	// key is the partition key; messages sharing a key stay ordered.
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// Consumer subscribes to wallet events.
type Consumer interface {
	// Subscribe consumes topic; handler errors leave the message
	// unacknowledged so it is redelivered.
	Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error

	// Close shuts the consumer down.
	Close() error
}
