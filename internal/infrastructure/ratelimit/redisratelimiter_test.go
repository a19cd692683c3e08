package ratelimit

import (
	"strings"
	"testing"
	"time"
)

func TestWindowKey_NamespacedPerService(t *testing.T) {
	tests := []struct {
		name   string
		window time.Duration
		want   string
	}{
		{"minute window", time.Minute, "veyra:ratelimit:client-1:1m0s"},
		{"hour window", time.Hour, "veyra:ratelimit:client-1:1h0m0s"},
		{"day window", 24 * time.Hour, "veyra:ratelimit:client-1:24h0m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := windowKey("client-1", tt.window)
			if got != tt.want {
				t.Errorf("windowKey() = %q, want %q", got, tt.want)
			}
			if !strings.HasPrefix(got, keyPrefix+":") {
				t.Errorf("windowKey() = %q, missing service prefix %q", got, keyPrefix)
			}
		})
	}
}

func TestWindowKey_DistinctPerWindow(t *testing.T) {
	if windowKey("client-1", time.Minute) == windowKey("client-1", time.Hour) {
		t.Error("minute and hour windows share a redis key")
	}
	if windowKey("client-1", time.Minute) == windowKey("client-2", time.Minute) {
		t.Error("different clients share a redis key")
	}
}
