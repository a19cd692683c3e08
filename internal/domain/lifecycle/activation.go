package lifecycle

import (
	"fmt"
	"time"
)

// ActivationEvent is one append-only row of the activation log. At most
// one row exists per (user, event name); the first write wins and every
// later write returns the original row unchanged. The existence of any
// row marks the user activated.
type ActivationEvent struct {
	id        uint
	userID    string
	tenantKey string
	eventName string
	metadata  map[string]any
	createdAt time.Time
}

// NewActivationEvent creates an activation event row.
func NewActivationEvent(userID, tenantKey, eventName string, metadata map[string]any) (*ActivationEvent, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	if eventName == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &ActivationEvent{
		userID:    userID,
		tenantKey: tenantKey,
		eventName: eventName,
		metadata:  metadata,
		createdAt: time.Now(),
	}, nil
}

// ReconstructActivationEvent reconstructs an activation event from persistence.
func ReconstructActivationEvent(id uint, userID, tenantKey, eventName string, metadata map[string]any, createdAt time.Time) (*ActivationEvent, error) {
	if id == 0 {
		return nil, fmt.Errorf("activation event ID cannot be zero")
	}
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &ActivationEvent{
		id:        id,
		userID:    userID,
		tenantKey: tenantKey,
		eventName: eventName,
		metadata:  metadata,
		createdAt: createdAt,
	}, nil
}

// ID returns the event row ID
func (e *ActivationEvent) ID() uint { return e.id }

// UserID returns the activated user
func (e *ActivationEvent) UserID() string { return e.userID }

// TenantKey returns the owning tenant key
func (e *ActivationEvent) TenantKey() string { return e.tenantKey }

// EventName returns the activation event name
func (e *ActivationEvent) EventName() string { return e.eventName }

// Metadata returns the event metadata
func (e *ActivationEvent) Metadata() map[string]any { return e.metadata }

// CreatedAt returns when the event was first recorded
func (e *ActivationEvent) CreatedAt() time.Time { return e.createdAt }

// SetID sets the event row ID (only for persistence layer use)
func (e *ActivationEvent) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("activation event ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("activation event ID cannot be zero")
	}
	e.id = id
	return nil
}
