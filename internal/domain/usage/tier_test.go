package usage

import (
	"testing"
	"time"
)

func now() time.Time { return time.Now() }

func TestTier_Ceiling(t *testing.T) {
	tests := []struct {
		name    string
		tier    Tier
		feature string
		want    int64
	}{
		{"free ai_calls", TierFree, "ai_calls", 50},
		{"free projects", TierFree, "projects", 3},
		{"starter ai_calls", TierStarter, "ai_calls", 1000},
		{"pro exports", TierPro, "exports", 500},
		{"enterprise is unlimited", TierEnterprise, "ai_calls", Unlimited},
		{"enterprise unknown feature still unlimited", TierEnterprise, "made_up", Unlimited},
		{"unknown feature defaults to zero", TierFree, "made_up", 0},
		{"unknown tier defaults to zero", Tier("platinum"), "ai_calls", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tier.Ceiling(tt.feature); got != tt.want {
				t.Errorf("%s.Ceiling(%q) = %d, want %d", tt.tier, tt.feature, got, tt.want)
			}
		})
	}
}

func TestTier_IsValid(t *testing.T) {
	for _, tier := range []Tier{TierFree, TierStarter, TierPro, TierEnterprise} {
		if !tier.IsValid() {
			t.Errorf("%s.IsValid() = false", tier)
		}
	}
	if Tier("platinum").IsValid() {
		t.Error(`Tier("platinum").IsValid() = true`)
	}
}
