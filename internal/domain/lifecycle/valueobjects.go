// Package lifecycle provides the per-user lifecycle state machines:
// trial, activation log, onboarding, offboarding, and account closure.
// Each record is independent; closure composes them into the purge.
package lifecycle

// TrialStatus represents the status of a trial record
type TrialStatus string

const (
	// TrialStatusActive is the initial state of every trial
	TrialStatusActive TrialStatus = "active"
	// TrialStatusConverted marks a trial that became a paid subscription (terminal)
	TrialStatusConverted TrialStatus = "converted"
	// TrialStatusExpired marks a trial that ran out (terminal)
	TrialStatusExpired TrialStatus = "expired"
	// TrialStatusCancelled marks a trial the user ended early (terminal)
	TrialStatusCancelled TrialStatus = "cancelled"
)

// IsValid checks if the trial status is valid
func (s TrialStatus) IsValid() bool {
	switch s {
	case TrialStatusActive, TrialStatusConverted, TrialStatusExpired, TrialStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the trial status
func (s TrialStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status permits no further transition
func (s TrialStatus) IsTerminal() bool {
	return s != TrialStatusActive
}

// OnboardingStep represents one step of the fixed onboarding vocabulary
type OnboardingStep string

const (
	StepProfileSetup OnboardingStep = "profile_setup"
	StepFirstProject OnboardingStep = "first_project"
	StepFirstAICall  OnboardingStep = "first_ai_call"
)

// IsValid checks if the step is part of the vocabulary
func (s OnboardingStep) IsValid() bool {
	switch s {
	case StepProfileSetup, StepFirstProject, StepFirstAICall:
		return true
	default:
		return false
	}
}

// String returns the string representation of the step
func (s OnboardingStep) String() string {
	return string(s)
}

// AllOnboardingSteps returns the full fixed step vocabulary.
func AllOnboardingSteps() []OnboardingStep {
	return []OnboardingStep{StepProfileSetup, StepFirstProject, StepFirstAICall}
}

// OffboardingReason represents the enumerated cancellation reason set
type OffboardingReason string

const (
	ReasonTooExpensive      OffboardingReason = "too_expensive"
	ReasonMissingFeatures   OffboardingReason = "missing_features"
	ReasonNotUseful         OffboardingReason = "not_useful"
	ReasonSwitchingProvider OffboardingReason = "switching_provider"
	ReasonOther             OffboardingReason = "other"
)

// IsValid checks if the reason is part of the enumerated set
func (r OffboardingReason) IsValid() bool {
	switch r {
	case ReasonTooExpensive, ReasonMissingFeatures, ReasonNotUseful, ReasonSwitchingProvider, ReasonOther:
		return true
	default:
		return false
	}
}

// String returns the string representation of the reason
func (r OffboardingReason) String() string {
	return string(r)
}

// ClosureStatus represents the status of an account closure record
type ClosureStatus string

const (
	// ClosureStatusPendingPurge means the grace period is running
	ClosureStatusPendingPurge ClosureStatus = "pending_purge"
	// ClosureStatusPurged means the purge executed (terminal)
	ClosureStatusPurged ClosureStatus = "purged"
	// ClosureStatusReactivated means the user cancelled the closure (terminal)
	ClosureStatusReactivated ClosureStatus = "reactivated"
)

// IsValid checks if the closure status is valid
func (s ClosureStatus) IsValid() bool {
	switch s {
	case ClosureStatusPendingPurge, ClosureStatusPurged, ClosureStatusReactivated:
		return true
	default:
		return false
	}
}

// String returns the string representation of the closure status
func (s ClosureStatus) String() string {
	return string(s)
}
