package notification

import (
	"context"
	"log/slog"

	"energyfit/internal/domain/service"
)

// logMailSink records deliveries instead of talking to an SMTP server.
// Bodies hold recovery tokens and are never written out.
type logMailSink struct {
	logger *slog.Logger
}

// NewLogMailSink returns the development MailSink.
func NewLogMailSink(logger *slog.Logger) service.MailSink {
	return &logMailSink{logger: logger}
}

func (s *logMailSink) Deliver(ctx context.Context, event *service.EmailEvent) error {
	s.logger.InfoContext(ctx, "[MailSink] Email accepted",
		slog.String("message_id", event.MessageID),
		slog.String("to", event.To),
		slog.String("subject", event.Subject),
		slog.Int("html_bytes", len(event.HTML)),
	)

	return nil
}
