// Package sink provides EventSink implementations bridging the delivery
// router to concrete transports.
package sink

import (
	"context"
	"log/slog"
	"time"

	"github.com/Mohammad-Harkous/chat-app/domain/event"
)

// ChannelSink buffers events for one live connection. The websocket handler
// drains Events and writes them to the wire. When the buffer is full the
// event is dropped after deliveryTimeout rather than stalling the router: a
// slow client loses events, never the whole process.
type ChannelSink struct {
	Events chan event.DomainEvent

	log             *slog.Logger
	deliveryTimeout time.Duration
}

func NewChannelSink(log *slog.Logger, bufferSize int, deliveryTimeout time.Duration) *ChannelSink {
	return &ChannelSink{
		Events:          make(chan event.DomainEvent, bufferSize),
		log:             log,
		deliveryTimeout: deliveryTimeout,
	}
}

func (s *ChannelSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.deliveryTimeout):
		s.log.Debug("event dropped for slow consumer", "event", e.EventName())
		return nil
	}
}
