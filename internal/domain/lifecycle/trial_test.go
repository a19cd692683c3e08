package lifecycle

import (
	"errors"
	"testing"
	"time"
)

func TestNewTrial(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		tenantKey string
		trialDays int
		wantError bool
	}{
		{"valid", "user-1", "acme", 14, false},
		{"missing user", "", "acme", 14, true},
		{"missing tenant", "user-1", "", 14, true},
		{"zero days", "user-1", "acme", 0, true},
		{"negative days", "user-1", "acme", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trial, err := NewTrial(tt.userID, tt.tenantKey, tt.trialDays)
			if (err != nil) != tt.wantError {
				t.Fatalf("NewTrial() error = %v, wantError %v", err, tt.wantError)
			}
			if err != nil {
				return
			}
			if trial.Status() != TrialStatusActive {
				t.Errorf("Status() = %s, want %s", trial.Status(), TrialStatusActive)
			}
			wantEnd := trial.StartedAt().Add(time.Duration(tt.trialDays) * 24 * time.Hour)
			if !trial.EndAt().Equal(wantEnd) {
				t.Errorf("EndAt() = %v, want %v", trial.EndAt(), wantEnd)
			}
			if !trial.IsActive() {
				t.Error("IsActive() = false for a fresh trial")
			}
		})
	}
}

func TestTrial_IsActive_PastEndDate(t *testing.T) {
	// A record stuck at status=active past its end date must read inactive.
	past := time.Now().Add(-48 * time.Hour)
	trial, err := ReconstructTrial(1, "user-1", "acme", TrialStatusActive, past.Add(-14*24*time.Hour), past, nil, past, past)
	if err != nil {
		t.Fatalf("ReconstructTrial() error = %v", err)
	}
	if trial.IsActive() {
		t.Error("IsActive() = true for an active-status trial past its end date")
	}
}

func TestTrial_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		transition func(*Trial) error
		wantStatus TrialStatus
	}{
		{"convert", (*Trial).Convert, TrialStatusConverted},
		{"expire", (*Trial).Expire, TrialStatusExpired},
		{"cancel", (*Trial).Cancel, TrialStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trial, _ := NewTrial("user-1", "acme", 14)
			if err := tt.transition(trial); err != nil {
				t.Fatalf("transition error = %v", err)
			}
			if trial.Status() != tt.wantStatus {
				t.Errorf("Status() = %s, want %s", trial.Status(), tt.wantStatus)
			}
			if trial.ResolvedAt() == nil {
				t.Error("ResolvedAt() = nil after terminal transition")
			}
			if trial.IsActive() {
				t.Error("IsActive() = true after terminal transition")
			}
		})
	}
}

func TestTrial_TransitionFromTerminalState(t *testing.T) {
	trial, _ := NewTrial("user-1", "acme", 14)
	if err := trial.Convert(); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	for _, transition := range []func(*Trial) error{(*Trial).Convert, (*Trial).Expire, (*Trial).Cancel} {
		if err := transition(trial); !errors.Is(err, ErrTrialAlreadyResolved) {
			t.Errorf("transition from terminal state error = %v, want ErrTrialAlreadyResolved", err)
		}
	}
	if trial.Status() != TrialStatusConverted {
		t.Errorf("Status() = %s after rejected transitions, want %s", trial.Status(), TrialStatusConverted)
	}
}

func TestTrialStatus_IsTerminal(t *testing.T) {
	if TrialStatusActive.IsTerminal() {
		t.Error("active status reported terminal")
	}
	for _, s := range []TrialStatus{TrialStatusConverted, TrialStatusExpired, TrialStatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s not reported terminal", s)
		}
	}
}
