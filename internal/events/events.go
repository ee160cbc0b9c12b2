package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ItemEventType names the kind of change an ItemEvent reports.
type ItemEventType string

// Item event types.
const (
	ItemCreated ItemEventType = "item.created"
	ItemUpdated ItemEventType = "item.updated"
	ItemDeleted ItemEventType = "item.deleted"
)

// ItemEvent reports that a vocabulary item was created, changed or removed.
type ItemEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened to the item
	Type ItemEventType `json:"type"`

	// ItemID identifies the affected item
	ItemID uuid.UUID `json:"item_id"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewItemEvent creates a new ItemEvent with the specified type and item.
func NewItemEvent(eventType ItemEventType, itemID uuid.UUID) *ItemEvent {
	return &ItemEvent{
		ID:        uuid.New(),
		Type:      eventType,
		ItemID:    itemID,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ItemEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the repository to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ItemEvent) error
}

// HandlerFunc adapts a plain function to EventHandler.
type HandlerFunc func(ctx context.Context, event *ItemEvent) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ItemEvent) error {
	return f(ctx, event)
}
