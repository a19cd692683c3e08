package retention

import (
	"fmt"
	"time"
)

// DeletionStatus tracks a GDPR erasure request
type DeletionStatus string

const (
	DeletionStatusPending    DeletionStatus = "pending"
	DeletionStatusInProgress DeletionStatus = "in_progress"
	DeletionStatusCompleted  DeletionStatus = "completed"
	DeletionStatusFailed     DeletionStatus = "failed"
)

// IsValid checks if the deletion status is valid
func (s DeletionStatus) IsValid() bool {
	switch s {
	case DeletionStatusPending, DeletionStatusInProgress, DeletionStatusCompleted, DeletionStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the deletion status
func (s DeletionStatus) String() string {
	return string(s)
}

// DeletionRequest is one GDPR erasure request with a fixed-offset SLA
// deadline used to detect overdue work.
type DeletionRequest struct {
	id          uint
	requestID   string
	userID      string
	tenantKey   string
	status      DeletionStatus
	requestedAt time.Time
	dueAt       time.Time
	completedAt *time.Time
	failReason  string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewDeletionRequest opens an erasure request with an slaDays deadline.
func NewDeletionRequest(requestID, userID, tenantKey string, slaDays int) (*DeletionRequest, error) {
	if requestID == "" {
		return nil, fmt.Errorf("request ID is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if slaDays <= 0 {
		return nil, fmt.Errorf("SLA days must be positive")
	}
	now := time.Now()
	return &DeletionRequest{
		requestID:   requestID,
		userID:      userID,
		tenantKey:   tenantKey,
		status:      DeletionStatusPending,
		requestedAt: now,
		dueAt:       now.Add(time.Duration(slaDays) * 24 * time.Hour),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructDeletionRequest reconstructs a deletion request from persistence.
func ReconstructDeletionRequest(id uint, requestID, userID, tenantKey string, status DeletionStatus, requestedAt, dueAt time.Time, completedAt *time.Time, failReason string, createdAt, updatedAt time.Time) (*DeletionRequest, error) {
	if id == 0 {
		return nil, fmt.Errorf("deletion request ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid deletion status: %s", status)
	}
	return &DeletionRequest{
		id:          id,
		requestID:   requestID,
		userID:      userID,
		tenantKey:   tenantKey,
		status:      status,
		requestedAt: requestedAt,
		dueAt:       dueAt,
		completedAt: completedAt,
		failReason:  failReason,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the request row ID
func (r *DeletionRequest) ID() uint { return r.id }

// RequestID returns the external request identifier
func (r *DeletionRequest) RequestID() string { return r.requestID }

// UserID returns the user to be erased
func (r *DeletionRequest) UserID() string { return r.userID }

// TenantKey returns the user's tenant
func (r *DeletionRequest) TenantKey() string { return r.tenantKey }

// Status returns the request status
func (r *DeletionRequest) Status() DeletionStatus { return r.status }

// RequestedAt returns when the request was opened
func (r *DeletionRequest) RequestedAt() time.Time { return r.requestedAt }

// DueAt returns the SLA deadline
func (r *DeletionRequest) DueAt() time.Time { return r.dueAt }

// CompletedAt returns when the request completed
func (r *DeletionRequest) CompletedAt() *time.Time { return r.completedAt }

// FailReason returns the failure detail for failed requests
func (r *DeletionRequest) FailReason() string { return r.failReason }

// SetID sets the request row ID (only for persistence layer use)
func (r *DeletionRequest) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("deletion request ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("deletion request ID cannot be zero")
	}
	r.id = id
	return nil
}

// IsOverdue reports whether the SLA deadline passed without completion.
func (r *DeletionRequest) IsOverdue() bool {
	if r.status == DeletionStatusCompleted {
		return false
	}
	return time.Now().After(r.dueAt)
}

// Start transitions pending → in_progress.
func (r *DeletionRequest) Start() error {
	if r.status != DeletionStatusPending {
		return fmt.Errorf("%w: request is %s", ErrDeletionNotPending, r.status)
	}
	r.status = DeletionStatusInProgress
	r.updatedAt = time.Now()
	return nil
}

// Complete transitions in_progress → completed. Completing an
// already-completed request fails rather than silently re-running.
func (r *DeletionRequest) Complete() error {
	if r.status == DeletionStatusCompleted {
		return fmt.Errorf("%w", ErrDeletionAlreadyCompleted)
	}
	if r.status != DeletionStatusInProgress {
		return fmt.Errorf("%w: request is %s", ErrDeletionNotInProgress, r.status)
	}
	now := time.Now()
	r.status = DeletionStatusCompleted
	r.completedAt = &now
	r.updatedAt = now
	return nil
}

// Fail marks the request failed with a reason.
func (r *DeletionRequest) Fail(reason string) error {
	if r.status == DeletionStatusCompleted {
		return fmt.Errorf("%w", ErrDeletionAlreadyCompleted)
	}
	r.status = DeletionStatusFailed
	r.failReason = reason
	r.updatedAt = time.Now()
	return nil
}
