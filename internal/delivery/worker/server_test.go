package worker

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyfit/config"
	"energyfit/internal/delivery/worker/handler"
	"energyfit/internal/domain/service"
	"energyfit/internal/infra/pubsub"
)

type recordingSink struct {
	mu     sync.Mutex
	events []service.EmailEvent
}

func (s *recordingSink) Deliver(_ context.Context, event *service.EmailEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, *event)

	return nil
}

func (s *recordingSink) delivered() []service.EmailEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]service.EmailEvent(nil), s.events...)
}

func TestRelayAcceptsLocalPublisher(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	sink := &recordingSink{}

	e := newEcho(cfg, logger, handler.NewPushHandler(handler.PushHandlerParams{Config: cfg, Logger: logger, Sink: sink}))
	relay := httptest.NewServer(e)
	defer relay.Close()

	publisher := pubsub.NewLocalHTTPPublisher(relay.URL+PushPath, logger)
	err := publisher.PublishEmailEvent(context.Background(), &service.EmailEvent{
		MessageID: "m-1",
		RequestID: "req-1",
		To:        "ana@x.com",
		Subject:   "Instruções de recuperação de senha - EnergyFit",
		Text:      "Instruções enviadas.",
		HTML:      "<h2>Olá, Ana!</h2>",
	})
	require.NoError(t, err)

	events := sink.delivered()
	require.Len(t, events, 1)
	assert.Equal(t, "ana@x.com", events[0].To)
	assert.Equal(t, "<h2>Olá, Ana!</h2>", events[0].HTML)
}
