package services

import (
	"context"
	"log"

	"github.com/you/staysvc/domain"
)

// publish delivers an event without failing the calling operation
func publish(ctx context.Context, pub domain.EventPublisher, event *domain.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Printf("EVENT_PUBLISH_FAILED: type=%s aggregate=%s error=%v", event.Type, event.AggregateID, err)
	}
}
