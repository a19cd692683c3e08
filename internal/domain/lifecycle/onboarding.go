package lifecycle

import (
	"fmt"
	"time"
)

// Onboarding holds a user's onboarding progress: an ordered set of
// completed step names from the fixed vocabulary. Steps are never
// removed except by an explicit reset, and completed_at is stamped
// exactly once when the final missing step lands.
type Onboarding struct {
	id          uint
	userID      string
	tenantKey   string
	steps       []OnboardingStep
	completedAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewOnboarding creates an empty onboarding state for the user.
func NewOnboarding(userID, tenantKey string) (*Onboarding, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	now := time.Now()
	return &Onboarding{
		userID:    userID,
		tenantKey: tenantKey,
		steps:     []OnboardingStep{},
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructOnboarding reconstructs onboarding state from persistence.
func ReconstructOnboarding(id uint, userID, tenantKey string, steps []OnboardingStep, completedAt *time.Time, createdAt, updatedAt time.Time) (*Onboarding, error) {
	if id == 0 {
		return nil, fmt.Errorf("onboarding ID cannot be zero")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if steps == nil {
		steps = []OnboardingStep{}
	}
	return &Onboarding{
		id:          id,
		userID:      userID,
		tenantKey:   tenantKey,
		steps:       steps,
		completedAt: completedAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the onboarding row ID
func (o *Onboarding) ID() uint { return o.id }

// UserID returns the onboarding owner
func (o *Onboarding) UserID() string { return o.userID }

// TenantKey returns the owning tenant key
func (o *Onboarding) TenantKey() string { return o.tenantKey }

// Steps returns the completed steps in completion order
func (o *Onboarding) Steps() []OnboardingStep { return o.steps }

// CompletedAt returns when onboarding finished, nil while in progress
func (o *Onboarding) CompletedAt() *time.Time { return o.completedAt }

// CreatedAt returns when the row was created
func (o *Onboarding) CreatedAt() time.Time { return o.createdAt }

// UpdatedAt returns when the row was last updated
func (o *Onboarding) UpdatedAt() time.Time { return o.updatedAt }

// SetID sets the onboarding row ID (only for persistence layer use)
func (o *Onboarding) SetID(id uint) error {
	if o.id != 0 {
		return fmt.Errorf("onboarding ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("onboarding ID cannot be zero")
	}
	o.id = id
	return nil
}

// IsComplete reports whether every step of the vocabulary is done.
func (o *Onboarding) IsComplete() bool {
	return o.completedAt != nil
}

// HasStep reports whether the given step is already marked complete.
func (o *Onboarding) HasStep(step OnboardingStep) bool {
	for _, s := range o.steps {
		if s == step {
			return true
		}
	}
	return false
}

// MarkStepComplete marks a step complete. Set semantics: re-marking a
// completed step changes nothing, and re-marking after completion never
// re-stamps completed_at.
func (o *Onboarding) MarkStepComplete(step OnboardingStep) error {
	if !step.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidOnboardingStep, step)
	}
	if o.HasStep(step) {
		return nil
	}

	now := time.Now()
	o.steps = append(o.steps, step)
	o.updatedAt = now

	if o.completedAt == nil && len(o.steps) == len(AllOnboardingSteps()) {
		o.completedAt = &now
	}
	return nil
}

// Reset clears all completed steps and the completion stamp.
func (o *Onboarding) Reset() {
	o.steps = []OnboardingStep{}
	o.completedAt = nil
	o.updatedAt = time.Now()
}
