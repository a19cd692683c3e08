// Package abuse provides fraud/abuse signals: append-only fraud events
// and the account lockout record that overrides entitlement state.
package abuse

import (
	"fmt"
	"time"
)

// EventType classifies a fraud event
type EventType string

const (
	// EventTypeAIAbuse flags excessive AI call volume in a trailing window
	EventTypeAIAbuse EventType = "ai_abuse"
	// EventTypeAPIAbuse flags a projected month-end usage blowout
	EventTypeAPIAbuse EventType = "api_abuse"
	// EventTypePaymentFraud flags a payment-processor fraud signal
	EventTypePaymentFraud EventType = "payment_fraud"
)

// IsValid checks if the event type is known
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeAIAbuse, EventTypeAPIAbuse, EventTypePaymentFraud:
		return true
	default:
		return false
	}
}

// String returns the string representation of the event type
func (t EventType) String() string {
	return string(t)
}

// Severity grades a fraud event
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValid checks if the severity is known
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// FraudEvent is one append-only abuse signal row. Advisory: an event
// never blocks access by itself, only a lockout does.
type FraudEvent struct {
	id        uint
	userID    string
	tenantKey string
	eventType EventType
	severity  Severity
	detail    map[string]any
	resolved  bool
	createdAt time.Time
	updatedAt time.Time
}

// NewFraudEvent creates an unresolved fraud event.
func NewFraudEvent(userID, tenantKey string, eventType EventType, severity Severity, detail map[string]any) (*FraudEvent, error) {
	if userID == "" && tenantKey == "" {
		return nil, fmt.Errorf("fraud event needs a user or tenant subject")
	}
	if !eventType.IsValid() {
		return nil, fmt.Errorf("invalid fraud event type: %s", eventType)
	}
	if !severity.IsValid() {
		return nil, fmt.Errorf("invalid fraud event severity: %s", severity)
	}
	if detail == nil {
		detail = make(map[string]any)
	}
	now := time.Now()
	return &FraudEvent{
		userID:    userID,
		tenantKey: tenantKey,
		eventType: eventType,
		severity:  severity,
		detail:    detail,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructFraudEvent reconstructs a fraud event from persistence.
func ReconstructFraudEvent(id uint, userID, tenantKey string, eventType EventType, severity Severity, detail map[string]any, resolved bool, createdAt, updatedAt time.Time) (*FraudEvent, error) {
	if id == 0 {
		return nil, fmt.Errorf("fraud event ID cannot be zero")
	}
	if detail == nil {
		detail = make(map[string]any)
	}
	return &FraudEvent{
		id:        id,
		userID:    userID,
		tenantKey: tenantKey,
		eventType: eventType,
		severity:  severity,
		detail:    detail,
		resolved:  resolved,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the event row ID
func (f *FraudEvent) ID() uint { return f.id }

// UserID returns the flagged user, empty for tenant-level events
func (f *FraudEvent) UserID() string { return f.userID }

// TenantKey returns the flagged tenant
func (f *FraudEvent) TenantKey() string { return f.tenantKey }

// EventType returns the event classification
func (f *FraudEvent) EventType() EventType { return f.eventType }

// Severity returns the event severity
func (f *FraudEvent) Severity() Severity { return f.severity }

// Detail returns the free-form detail payload
func (f *FraudEvent) Detail() map[string]any { return f.detail }

// IsResolved reports whether the event was triaged
func (f *FraudEvent) IsResolved() bool { return f.resolved }

// CreatedAt returns when the event was recorded
func (f *FraudEvent) CreatedAt() time.Time { return f.createdAt }

// UpdatedAt returns when the event was last updated
func (f *FraudEvent) UpdatedAt() time.Time { return f.updatedAt }

// SetID sets the event row ID (only for persistence layer use)
func (f *FraudEvent) SetID(id uint) error {
	if f.id != 0 {
		return fmt.Errorf("fraud event ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("fraud event ID cannot be zero")
	}
	f.id = id
	return nil
}

// Resolve marks the event triaged. Idempotent.
func (f *FraudEvent) Resolve() {
	if f.resolved {
		return
	}
	f.resolved = true
	f.updatedAt = time.Now()
}
