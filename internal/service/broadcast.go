package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// BroadcastService relays every domain event to a redis pub/sub channel for
// real-time UI consumers. Delivery is best-effort; publish failures are
// logged and swallowed.
type BroadcastService struct {
	dispatcher events.Dispatcher
	redis      *persistence.Redis
	channel    string
	logger     *zap.Logger
}

// NewBroadcastService creates the service.
func NewBroadcastService(dispatcher events.Dispatcher, redis *persistence.Redis, channel string, logger *zap.Logger) *BroadcastService {
	return &BroadcastService{
		dispatcher: dispatcher,
		redis:      redis,
		channel:    channel,
		logger:     logger,
	}
}

// RegisterHandlers subscribes the relay to every event type.
func (b *BroadcastService) RegisterHandlers() {
	if b.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketPriorityChanged,
		events.EventTicketAssigned,
		events.EventTicketUnassigned,
		events.EventTicketCommentAdded,
		events.EventTicketDeleted,
	} {
		b.dispatcher.Subscribe(eventType, b.relay)
	}
}

func (b *BroadcastService) relay(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Warn("broadcast marshal failed", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}
	if err := b.redis.Publish(ctx, b.channel, payload); err != nil {
		b.logger.Warn("broadcast publish failed",
			zap.String("event_id", event.ID),
			zap.String("channel", b.channel),
			zap.Error(err))
	}
	return nil
}
