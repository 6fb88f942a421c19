package domain

import (
	"context"
	"time"
)

// EventType defines the type of marketplace event
type EventType string

const (
	AccountRegisteredEvent EventType = "account.registered"

	ListingCreatedEvent  EventType = "listing.created"
	ListingUpdatedEvent  EventType = "listing.updated"
	ListingDeletedEvent  EventType = "listing.deleted"
	ListingReviewedEvent EventType = "listing.reviewed"

	BookingConfirmedEvent EventType = "booking.confirmed"
)

// Event represents a business event that occurred in the system
type Event struct {
	Type        EventType              `json:"type"`
	AggregateID string                 `json:"aggregate_id"`
	ActorID     string                 `json:"actor_id"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// EventPublisher delivers events to interested consumers. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
}

// NewEvent creates a new event with common fields populated
func NewEvent(eventType EventType, aggregateID, actorID string, at time.Time) *Event {
	return &Event{
		Type:        eventType,
		AggregateID: aggregateID,
		ActorID:     actorID,
		Timestamp:   at.UTC(),
		Metadata:    make(map[string]interface{}),
	}
}

// WithMetadata adds metadata to the event
func (e *Event) WithMetadata(key string, value interface{}) *Event {
	e.Metadata[key] = value
	return e
}
