package retention

import (
	"fmt"
	"time"
)

// Policy overrides the hardcoded default retention window for one data
// type. One row per data type.
type Policy struct {
	id            uint
	dataTypeName  string
	retentionDays int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPolicy creates a retention override for a registered data type.
func NewPolicy(dataTypeName string, retentionDays int) (*Policy, error) {
	if _, ok := Lookup(dataTypeName); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataType, dataTypeName)
	}
	if retentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive")
	}
	now := time.Now()
	return &Policy{
		dataTypeName:  dataTypeName,
		retentionDays: retentionDays,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructPolicy reconstructs a policy from persistence.
func ReconstructPolicy(id uint, dataTypeName string, retentionDays int, createdAt, updatedAt time.Time) (*Policy, error) {
	if id == 0 {
		return nil, fmt.Errorf("policy ID cannot be zero")
	}
	return &Policy{
		id:            id,
		dataTypeName:  dataTypeName,
		retentionDays: retentionDays,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

// ID returns the policy row ID
func (p *Policy) ID() uint { return p.id }

// DataTypeName returns the governed data type name
func (p *Policy) DataTypeName() string { return p.dataTypeName }

// RetentionDays returns the override window in days
func (p *Policy) RetentionDays() int { return p.retentionDays }

// Retention returns the override window as a duration
func (p *Policy) Retention() time.Duration {
	return time.Duration(p.retentionDays) * 24 * time.Hour
}
