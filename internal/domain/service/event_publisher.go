package service

import (
	"context"
)

// EmailEvent is an outbound email handed to the mail relay through the message queue.
type EmailEvent struct {
	MessageID string `json:"message_id"`
	RequestID string `json:"request_id,omitempty"` // For distributed tracing
	To        string `json:"to"`
	From      string `json:"from,omitempty"`
	Subject   string `json:"subject"`
	Text      string `json:"text"`
	HTML      string `json:"html"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishEmailEvent publishes an email for asynchronous delivery
	PublishEmailEvent(ctx context.Context, event *EmailEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
