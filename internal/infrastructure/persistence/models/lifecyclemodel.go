package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/veyra-inc/veyra/internal/shared/constants"
)

// TrialRecordModel represents the database persistence model for trials.
// The unique user index enforces one trial per user ever.
type TrialRecordModel struct {
	ID         uint   `gorm:"primarykey"`
	UserID     string `gorm:"not null;size:64;uniqueIndex:idx_unique_trial"`
	TenantKey  string `gorm:"not null;size:64;index:idx_trial_tenant"`
	Status     string `gorm:"not null;size:20;default:active;index:idx_trial_status_end,priority:1"`
	StartedAt  time.Time `gorm:"not null"`
	EndAt      time.Time `gorm:"not null;index:idx_trial_status_end,priority:2"`
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (TrialRecordModel) TableName() string {
	return constants.TableTrialRecords
}

// ActivationEventModel represents the database persistence model for the
// activation log. The unique (user, event) index backs first-write-wins
// idempotency.
type ActivationEventModel struct {
	ID        uint   `gorm:"primarykey"`
	UserID    string `gorm:"not null;size:64;uniqueIndex:idx_unique_activation,priority:1"`
	TenantKey string `gorm:"not null;size:64;index:idx_activation_tenant"`
	EventName string `gorm:"not null;size:64;uniqueIndex:idx_unique_activation,priority:2"`
	Metadata  datatypes.JSON
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (ActivationEventModel) TableName() string {
	return constants.TableActivationEvents
}

// OnboardingStateModel represents the database persistence model for
// onboarding progress. Steps are a JSON array; JSON text exists only at
// this persistence boundary.
type OnboardingStateModel struct {
	ID          uint   `gorm:"primarykey"`
	UserID      string `gorm:"not null;size:64;uniqueIndex:idx_unique_onboarding"`
	TenantKey   string `gorm:"not null;size:64;index:idx_onboarding_tenant"`
	Steps       datatypes.JSON
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (OnboardingStateModel) TableName() string {
	return constants.TableOnboardingStates
}

// OffboardingRecordModel represents the database persistence model for
// offboarding history. Append-only per user; at most one row with
// CompletedAt NULL at a time, enforced by the application path.
type OffboardingRecordModel struct {
	ID          uint   `gorm:"primarykey"`
	UserID      string `gorm:"not null;size:64;index:idx_offboarding_user"`
	TenantKey   string `gorm:"not null;size:64"`
	Reason      string `gorm:"not null;size:30"`
	Feedback    string `gorm:"type:text"`
	InitiatedAt time.Time `gorm:"not null"`
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (OffboardingRecordModel) TableName() string {
	return constants.TableOffboardingRecords
}

// AccountClosureModel represents the database persistence model for
// account closures. PendingKey mirrors UserID while the closure is
// pending_purge and is NULL once resolved, so the unique index allows
// closure history but only one pending record per user.
type AccountClosureModel struct {
	ID          uint    `gorm:"primarykey"`
	UserID      string  `gorm:"not null;size:64;index:idx_closure_user"`
	TenantKey   string  `gorm:"not null;size:64"`
	Status      string  `gorm:"not null;size:20;default:pending_purge;index:idx_closure_status_purge,priority:1"`
	PendingKey  *string `gorm:"size:64;uniqueIndex:idx_unique_pending_closure"`
	RequestedAt time.Time `gorm:"not null"`
	PurgeAt     time.Time `gorm:"not null;index:idx_closure_status_purge,priority:2"`
	PurgedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (AccountClosureModel) TableName() string {
	return constants.TableAccountClosures
}
