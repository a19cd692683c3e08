package usage

import (
	"fmt"
	"time"
)

// CostLogEntry is one row of the AI cost log: the append-only financial
// audit trail of every metered AI call. These rows are never deleted by
// account purge, only by the long compliance retention window.
type CostLogEntry struct {
	id         uint
	userID     string
	tenantKey  string
	model      string
	tokensUsed int64
	costCents  int64
	createdAt  time.Time
}

// NewCostLogEntry creates a cost log row for a completed AI call.
func NewCostLogEntry(userID, tenantKey, model string, tokensUsed, costCents int64) (*CostLogEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	if tokensUsed < 0 || costCents < 0 {
		return nil, fmt.Errorf("tokens and cost cannot be negative")
	}
	return &CostLogEntry{
		userID:     userID,
		tenantKey:  tenantKey,
		model:      model,
		tokensUsed: tokensUsed,
		costCents:  costCents,
		createdAt:  time.Now(),
	}, nil
}

// ReconstructCostLogEntry reconstructs a cost log row from persistence.
func ReconstructCostLogEntry(id uint, userID, tenantKey, model string, tokensUsed, costCents int64, createdAt time.Time) (*CostLogEntry, error) {
	if id == 0 {
		return nil, fmt.Errorf("cost log ID cannot be zero")
	}
	return &CostLogEntry{
		id:         id,
		userID:     userID,
		tenantKey:  tenantKey,
		model:      model,
		tokensUsed: tokensUsed,
		costCents:  costCents,
		createdAt:  createdAt,
	}, nil
}

// ID returns the row ID
func (e *CostLogEntry) ID() uint { return e.id }

// UserID returns the calling user
func (e *CostLogEntry) UserID() string { return e.userID }

// TenantKey returns the owning tenant key
func (e *CostLogEntry) TenantKey() string { return e.tenantKey }

// Model returns the AI model name billed against
func (e *CostLogEntry) Model() string { return e.model }

// TokensUsed returns the token count of the call
func (e *CostLogEntry) TokensUsed() int64 { return e.tokensUsed }

// CostCents returns the call cost in cents
func (e *CostLogEntry) CostCents() int64 { return e.costCents }

// CreatedAt returns when the call was recorded
func (e *CostLogEntry) CreatedAt() time.Time { return e.createdAt }

// SetID sets the row ID (only for persistence layer use)
func (e *CostLogEntry) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("cost log ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("cost log ID cannot be zero")
	}
	e.id = id
	return nil
}
