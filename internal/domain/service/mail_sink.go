package service

import "context"

// MailSink delivers a rendered email on the relay side of the message queue.
type MailSink interface {
	Deliver(ctx context.Context, event *EmailEvent) error
}
