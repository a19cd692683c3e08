package lifecycle

import (
	"fmt"
	"time"
)

// Trial represents a user's one-and-only trial record.
// trial_end_at is fixed at creation (start + trialDays) and never
// recomputed; crossing it does not flip the status by itself, which is
// why IsActive checks both status and clock.
type Trial struct {
	id         uint
	userID     string
	tenantKey  string
	status     TrialStatus
	startedAt  time.Time
	endAt      time.Time
	resolvedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewTrial starts a trial for the user lasting trialDays.
func NewTrial(userID, tenantKey string, trialDays int) (*Trial, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	if trialDays <= 0 {
		return nil, fmt.Errorf("trial days must be positive")
	}
	now := time.Now()
	return &Trial{
		userID:    userID,
		tenantKey: tenantKey,
		status:    TrialStatusActive,
		startedAt: now,
		endAt:     now.Add(time.Duration(trialDays) * 24 * time.Hour),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructTrial reconstructs a trial from persistence.
func ReconstructTrial(id uint, userID, tenantKey string, status TrialStatus, startedAt, endAt time.Time, resolvedAt *time.Time, createdAt, updatedAt time.Time) (*Trial, error) {
	if id == 0 {
		return nil, fmt.Errorf("trial ID cannot be zero")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid trial status: %s", status)
	}
	return &Trial{
		id:         id,
		userID:     userID,
		tenantKey:  tenantKey,
		status:     status,
		startedAt:  startedAt,
		endAt:      endAt,
		resolvedAt: resolvedAt,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

// ID returns the trial ID
func (t *Trial) ID() uint { return t.id }

// UserID returns the trial owner
func (t *Trial) UserID() string { return t.userID }

// TenantKey returns the owning tenant key
func (t *Trial) TenantKey() string { return t.tenantKey }

// Status returns the trial status
func (t *Trial) Status() TrialStatus { return t.status }

// StartedAt returns when the trial started
func (t *Trial) StartedAt() time.Time { return t.startedAt }

// EndAt returns the fixed trial end instant
func (t *Trial) EndAt() time.Time { return t.endAt }

// ResolvedAt returns when the trial reached a terminal state
func (t *Trial) ResolvedAt() *time.Time { return t.resolvedAt }

// CreatedAt returns when the row was created
func (t *Trial) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns when the row was last updated
func (t *Trial) UpdatedAt() time.Time { return t.updatedAt }

// SetID sets the trial ID (only for persistence layer use)
func (t *Trial) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("trial ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("trial ID cannot be zero")
	}
	t.id = id
	return nil
}

// IsActive reports whether the trial is usable right now: the status must
// be active AND the end date must not have passed. A record can sit at
// status=active past its end date and must read as inactive.
func (t *Trial) IsActive() bool {
	return t.status == TrialStatusActive && time.Now().Before(t.endAt)
}

func (t *Trial) transition(to TrialStatus) error {
	if t.status.IsTerminal() {
		return fmt.Errorf("%w: trial is already %s", ErrTrialAlreadyResolved, t.status)
	}
	now := time.Now()
	t.status = to
	t.resolvedAt = &now
	t.updatedAt = now
	return nil
}

// Convert marks the trial converted to a paid subscription. Terminal.
func (t *Trial) Convert() error {
	return t.transition(TrialStatusConverted)
}

// Expire marks the trial expired. Terminal.
func (t *Trial) Expire() error {
	return t.transition(TrialStatusExpired)
}

// Cancel marks the trial cancelled by the user. Terminal.
func (t *Trial) Cancel() error {
	return t.transition(TrialStatusCancelled)
}
