package consent

import "testing"

func TestNewUserConsent(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		docType   DocType
		version   string
		wantError bool
	}{
		{"valid terms", "user-1", DocTypeTerms, "2026-01", false},
		{"valid privacy", "user-1", DocTypePrivacy, "2026-01", false},
		{"missing user", "", DocTypeTerms, "2026-01", true},
		{"unknown doc type", "user-1", DocType("eula"), "2026-01", true},
		{"missing version", "user-1", DocTypeTerms, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consent, err := NewUserConsent(tt.userID, "acme", tt.docType, tt.version)
			if (err != nil) != tt.wantError {
				t.Fatalf("NewUserConsent() error = %v, wantError %v", err, tt.wantError)
			}
			if err == nil && consent.Version() != tt.version {
				t.Errorf("Version() = %q, want %q", consent.Version(), tt.version)
			}
		})
	}
}

func TestUserConsent_Accept(t *testing.T) {
	consent, _ := NewUserConsent("user-1", "acme", DocTypeTerms, "2026-01")
	firstAccepted := consent.AcceptedAt()

	if err := consent.Accept("2026-02"); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if consent.Version() != "2026-02" {
		t.Errorf("Version() = %q after re-acceptance, want 2026-02", consent.Version())
	}
	if consent.AcceptedAt().Before(firstAccepted) {
		t.Error("AcceptedAt() moved backwards on re-acceptance")
	}

	if err := consent.Accept(""); err == nil {
		t.Error("Accept(\"\") error = nil, want error")
	}
}

func TestNewAuditEntry(t *testing.T) {
	client := ClientMeta{IPAddress: "203.0.113.9", UserAgent: "veyra-cli/1.2"}

	entry, err := NewAuditEntry("user-1", "acme", DocTypePrivacy, "2026-01", client)
	if err != nil {
		t.Fatalf("NewAuditEntry() error = %v", err)
	}
	if entry.Client() != client {
		t.Errorf("Client() = %+v, want %+v", entry.Client(), client)
	}

	if _, err := NewAuditEntry("user-1", "acme", DocType("eula"), "2026-01", client); err == nil {
		t.Error("NewAuditEntry() error = nil for unknown doc type, want error")
	}
}

func TestDocType_IsValid(t *testing.T) {
	for _, d := range []DocType{DocTypeTerms, DocTypePrivacy} {
		if !d.IsValid() {
			t.Errorf("%s.IsValid() = false", d)
		}
	}
	if DocType("eula").IsValid() {
		t.Error(`DocType("eula").IsValid() = true`)
	}
}
