package lifecycle

import "errors"

var (
	// ErrTrialAlreadyExists is returned when a user attempts a second trial.
	// There is no trial renewal path; one trial per user ever.
	ErrTrialAlreadyExists = errors.New("trial already exists")

	// ErrTrialNotFound is returned when no trial record exists for the user
	ErrTrialNotFound = errors.New("trial not found")

	// ErrTrialAlreadyResolved is returned on a transition from a terminal state
	ErrTrialAlreadyResolved = errors.New("trial already resolved")

	// ErrOnboardingNotFound is returned when no onboarding state exists for the user
	ErrOnboardingNotFound = errors.New("onboarding state not found")

	// ErrInvalidOnboardingStep is returned for a step outside the vocabulary
	ErrInvalidOnboardingStep = errors.New("invalid onboarding step")

	// ErrInvalidOffboardingReason is returned for a reason outside the vocabulary
	ErrInvalidOffboardingReason = errors.New("invalid offboarding reason")

	// ErrOffboardingActive is returned when an uncompleted offboarding record
	// already exists for the user
	ErrOffboardingActive = errors.New("offboarding already in progress")

	// ErrOffboardingNotActive is returned when completing with no active record
	ErrOffboardingNotActive = errors.New("no active offboarding record")

	// ErrClosurePending is returned when a pending_purge record already exists
	ErrClosurePending = errors.New("account closure already pending")

	// ErrClosureNotFound is returned when no closure record exists for the user
	ErrClosureNotFound = errors.New("account closure not found")

	// ErrClosureNotPending is returned on a transition from a terminal closure state
	ErrClosureNotPending = errors.New("account closure is not pending")
)
