// Package notification defines the best-effort outbound collaborator
// interfaces. Implementations live in infrastructure; every caller
// isolates failures by logging and discarding them, so a broken SMTP
// server or analytics endpoint can never roll back a primary write.
package notification

import "time"

// Notifier sends lifecycle emails.
type Notifier interface {
	// SendClosureNotice notifies the user that their account is scheduled
	// for purge at the given deadline
	SendClosureNotice(userID string, purgeAt time.Time) error

	// SendTrialExpiryWarning warns the user that their trial ends soon
	SendTrialExpiryWarning(userID string, endAt time.Time) error
}

// Events emits analytics events.
type Events interface {
	// Emit publishes one named event with free-form fields
	Emit(name string, fields map[string]any) error
}

// NopNotifier discards all notifications. Used when email is disabled.
type NopNotifier struct{}

func (NopNotifier) SendClosureNotice(string, time.Time) error      { return nil }
func (NopNotifier) SendTrialExpiryWarning(string, time.Time) error { return nil }

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) Emit(string, map[string]any) error { return nil }
