package lifecycle

import (
	"errors"
	"testing"
)

func TestOnboarding_MarkStepComplete(t *testing.T) {
	ob, err := NewOnboarding("user-1", "acme")
	if err != nil {
		t.Fatalf("NewOnboarding() error = %v", err)
	}

	if err := ob.MarkStepComplete(StepProfileSetup); err != nil {
		t.Fatalf("MarkStepComplete() error = %v", err)
	}
	if !ob.HasStep(StepProfileSetup) {
		t.Error("HasStep() = false after marking step")
	}
	if ob.IsComplete() {
		t.Error("IsComplete() = true with steps remaining")
	}
}

func TestOnboarding_MarkStepComplete_Idempotent(t *testing.T) {
	ob, _ := NewOnboarding("user-1", "acme")

	for i := 0; i < 3; i++ {
		if err := ob.MarkStepComplete(StepFirstProject); err != nil {
			t.Fatalf("MarkStepComplete() error = %v", err)
		}
	}
	if got := len(ob.Steps()); got != 1 {
		t.Errorf("len(Steps()) = %d after repeated marks, want 1", got)
	}
}

func TestOnboarding_MarkStepComplete_InvalidStep(t *testing.T) {
	ob, _ := NewOnboarding("user-1", "acme")

	err := ob.MarkStepComplete(OnboardingStep("made_up_step"))
	if !errors.Is(err, ErrInvalidOnboardingStep) {
		t.Errorf("MarkStepComplete() error = %v, want ErrInvalidOnboardingStep", err)
	}
	if got := len(ob.Steps()); got != 0 {
		t.Errorf("len(Steps()) = %d after invalid step, want 0", got)
	}
}

func TestOnboarding_CompletionStampedExactlyOnce(t *testing.T) {
	ob, _ := NewOnboarding("user-1", "acme")

	for _, step := range AllOnboardingSteps() {
		if err := ob.MarkStepComplete(step); err != nil {
			t.Fatalf("MarkStepComplete(%s) error = %v", step, err)
		}
	}
	if !ob.IsComplete() {
		t.Fatal("IsComplete() = false after all steps")
	}
	first := ob.CompletedAt()
	if first == nil {
		t.Fatal("CompletedAt() = nil after all steps")
	}

	// Re-marking a step after completion must not re-stamp.
	stamped := *first
	if err := ob.MarkStepComplete(StepFirstAICall); err != nil {
		t.Fatalf("MarkStepComplete() error = %v", err)
	}
	if !ob.CompletedAt().Equal(stamped) {
		t.Errorf("CompletedAt() re-stamped: %v, want %v", ob.CompletedAt(), stamped)
	}
}

func TestOnboarding_Reset(t *testing.T) {
	ob, _ := NewOnboarding("user-1", "acme")
	for _, step := range AllOnboardingSteps() {
		_ = ob.MarkStepComplete(step)
	}

	ob.Reset()

	if len(ob.Steps()) != 0 {
		t.Errorf("len(Steps()) = %d after reset, want 0", len(ob.Steps()))
	}
	if ob.IsComplete() {
		t.Error("IsComplete() = true after reset")
	}
	if ob.CompletedAt() != nil {
		t.Error("CompletedAt() != nil after reset")
	}
}
