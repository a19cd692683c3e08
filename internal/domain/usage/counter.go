package usage

import (
	"fmt"
	"time"
)

// Counter represents the monotonic usage counter for a single
// (tenant, feature, period) triple. The period key is a coarse monthly
// bucket recomputed from wall-clock time, never backdated.
type Counter struct {
	id        uint
	tenantKey string
	feature   string
	periodKey string
	count     int64
	createdAt time.Time
	updatedAt time.Time
}

// NewCounter creates a zero counter for the triple.
func NewCounter(tenantKey, feature, periodKey string) (*Counter, error) {
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	if feature == "" {
		return nil, fmt.Errorf("feature is required")
	}
	if periodKey == "" {
		return nil, fmt.Errorf("period key is required")
	}
	now := time.Now()
	return &Counter{
		tenantKey: tenantKey,
		feature:   feature,
		periodKey: periodKey,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructCounter reconstructs a counter from persistence.
func ReconstructCounter(id uint, tenantKey, feature, periodKey string, count int64, createdAt, updatedAt time.Time) (*Counter, error) {
	if id == 0 {
		return nil, fmt.Errorf("counter ID cannot be zero")
	}
	if count < 0 {
		return nil, fmt.Errorf("counter value cannot be negative")
	}
	return &Counter{
		id:        id,
		tenantKey: tenantKey,
		feature:   feature,
		periodKey: periodKey,
		count:     count,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the counter ID
func (c *Counter) ID() uint { return c.id }

// TenantKey returns the owning tenant key
func (c *Counter) TenantKey() string { return c.tenantKey }

// Feature returns the metered feature
func (c *Counter) Feature() string { return c.feature }

// PeriodKey returns the monthly bucket key
func (c *Counter) PeriodKey() string { return c.periodKey }

// Count returns the current counter value
func (c *Counter) Count() int64 { return c.count }

// WouldExceed reports whether one more increment would pass the ceiling.
// A counter at the ceiling is already full: the check fails at the
// boundary without incrementing.
func (c *Counter) WouldExceed(ceiling int64) bool {
	if ceiling == Unlimited {
		return false
	}
	return c.count >= ceiling
}
