package service

import (
	"context"
	"fmt"
	"strings"

	"agora-be/internal/pkg/logger"
	"agora-be/pkg/events"
	pktNats "agora-be/pkg/nats"
)

// IEventRelayService bridges durable bus events to connected clients.
// The in-process hub covers progress updates; the relay covers events
// that must survive a restart, like ingestion completion.
type IEventRelayService interface {
	Start()
}

type eventRelayService struct {
	subscriber *pktNats.Subscriber
	delivery   IngestNotifier
	logger     logger.ILogger
}

func NewEventRelayService(sub *pktNats.Subscriber, delivery IngestNotifier, log logger.ILogger) IEventRelayService {
	return &eventRelayService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *eventRelayService) Start() {
	err := s.subscriber.Subscribe("events.>", "event-relay-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("EventRelayService", "Failed to start event subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("EventRelayService", "Event relay started, listening to events.>", nil)
}

func (s *eventRelayService) handleEvent(ctx context.Context, event events.Event) error {
	// NATS subjects carry the stream prefix
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	payload := event.Payload()

	s.logger.Info("EventRelayService", fmt.Sprintf("Processing event: %s", typeCode), map[string]interface{}{"type": typeCode})

	userID, _ := payload["user_id"].(string)
	if userID == "" {
		s.logger.Warn("EventRelayService", "Event without user_id, skipping delivery", map[string]interface{}{"type": typeCode})
		return nil
	}

	if s.delivery != nil {
		s.delivery.NotifyUser(userID, strings.ToLower(typeCode), payload)
	}
	return nil
}
