package usage

import "testing"

func TestCounter_WouldExceed(t *testing.T) {
	tests := []struct {
		name    string
		count   int64
		ceiling int64
		want    bool
	}{
		{"below ceiling", 49, 50, false},
		{"at ceiling", 50, 50, true},
		{"above ceiling", 51, 50, true},
		{"zero ceiling blocks everything", 0, 0, true},
		{"unlimited never exceeds", 1 << 40, Unlimited, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter, err := ReconstructCounter(1, "acme", "ai_calls", "2026-08", tt.count, now(), now())
			if err != nil {
				t.Fatalf("ReconstructCounter() error = %v", err)
			}
			if got := counter.WouldExceed(tt.ceiling); got != tt.want {
				t.Errorf("WouldExceed(%d) with count %d = %v, want %v", tt.ceiling, tt.count, got, tt.want)
			}
		})
	}
}

func TestNewCounter_Validation(t *testing.T) {
	tests := []struct {
		name      string
		tenantKey string
		feature   string
		periodKey string
		wantError bool
	}{
		{"valid", "acme", "ai_calls", "2026-08", false},
		{"missing tenant", "", "ai_calls", "2026-08", true},
		{"missing feature", "acme", "", "2026-08", true},
		{"missing period", "acme", "ai_calls", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter, err := NewCounter(tt.tenantKey, tt.feature, tt.periodKey)
			if (err != nil) != tt.wantError {
				t.Fatalf("NewCounter() error = %v, wantError %v", err, tt.wantError)
			}
			if err == nil && counter.Count() != 0 {
				t.Errorf("Count() = %d for a new counter, want 0", counter.Count())
			}
		})
	}
}

func TestReconstructCounter_RejectsNegativeCount(t *testing.T) {
	if _, err := ReconstructCounter(1, "acme", "ai_calls", "2026-08", -1, now(), now()); err == nil {
		t.Error("ReconstructCounter() error = nil for negative count, want error")
	}
}
