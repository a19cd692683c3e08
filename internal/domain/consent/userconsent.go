package consent

import (
	"fmt"
	"time"
)

// UserConsent holds the single latest accepted version per
// (user, doc type); re-acceptance mutates it in place. Every consent
// event additionally appends an immutable AuditEntry.
type UserConsent struct {
	id         uint
	userID     string
	tenantKey  string
	docType    DocType
	version    string
	acceptedAt time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewUserConsent records a user's first acceptance of a document version.
func NewUserConsent(userID, tenantKey string, docType DocType, version string) (*UserConsent, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if !docType.IsValid() {
		return nil, fmt.Errorf("invalid document type: %s", docType)
	}
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}
	now := time.Now()
	return &UserConsent{
		userID:     userID,
		tenantKey:  tenantKey,
		docType:    docType,
		version:    version,
		acceptedAt: now,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructUserConsent reconstructs a consent row from persistence.
func ReconstructUserConsent(id uint, userID, tenantKey string, docType DocType, version string, acceptedAt, createdAt, updatedAt time.Time) (*UserConsent, error) {
	if id == 0 {
		return nil, fmt.Errorf("consent ID cannot be zero")
	}
	if !docType.IsValid() {
		return nil, fmt.Errorf("invalid document type: %s", docType)
	}
	return &UserConsent{
		id:         id,
		userID:     userID,
		tenantKey:  tenantKey,
		docType:    docType,
		version:    version,
		acceptedAt: acceptedAt,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

// ID returns the consent row ID
func (c *UserConsent) ID() uint { return c.id }

// UserID returns the consenting user
func (c *UserConsent) UserID() string { return c.userID }

// TenantKey returns the user's tenant
func (c *UserConsent) TenantKey() string { return c.tenantKey }

// DocType returns the document type
func (c *UserConsent) DocType() DocType { return c.docType }

// Version returns the latest accepted version
func (c *UserConsent) Version() string { return c.version }

// AcceptedAt returns when the latest acceptance happened
func (c *UserConsent) AcceptedAt() time.Time { return c.acceptedAt }

// SetID sets the consent row ID (only for persistence layer use)
func (c *UserConsent) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("consent ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("consent ID cannot be zero")
	}
	c.id = id
	return nil
}

// Accept updates the row to a newly accepted version.
func (c *UserConsent) Accept(version string) error {
	if version == "" {
		return fmt.Errorf("version is required")
	}
	now := time.Now()
	c.version = version
	c.acceptedAt = now
	c.updatedAt = now
	return nil
}

// ClientMeta captures the client metadata evidence attached to a consent
// event (audit trail).
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// AuditEntry is one immutable row of the consent audit log: one per
// consent event, including re-acceptance of the same version.
type AuditEntry struct {
	id        uint
	userID    string
	tenantKey string
	docType   DocType
	version   string
	client    ClientMeta
	createdAt time.Time
}

// NewAuditEntry creates an audit row for a consent event.
func NewAuditEntry(userID, tenantKey string, docType DocType, version string, client ClientMeta) (*AuditEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if !docType.IsValid() {
		return nil, fmt.Errorf("invalid document type: %s", docType)
	}
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}
	return &AuditEntry{
		userID:    userID,
		tenantKey: tenantKey,
		docType:   docType,
		version:   version,
		client:    client,
		createdAt: time.Now(),
	}, nil
}

// ReconstructAuditEntry reconstructs an audit row from persistence.
func ReconstructAuditEntry(id uint, userID, tenantKey string, docType DocType, version string, client ClientMeta, createdAt time.Time) (*AuditEntry, error) {
	if id == 0 {
		return nil, fmt.Errorf("audit entry ID cannot be zero")
	}
	return &AuditEntry{
		id:        id,
		userID:    userID,
		tenantKey: tenantKey,
		docType:   docType,
		version:   version,
		client:    client,
		createdAt: createdAt,
	}, nil
}

// ID returns the audit row ID
func (a *AuditEntry) ID() uint { return a.id }

// UserID returns the consenting user
func (a *AuditEntry) UserID() string { return a.userID }

// TenantKey returns the user's tenant
func (a *AuditEntry) TenantKey() string { return a.tenantKey }

// DocType returns the document type
func (a *AuditEntry) DocType() DocType { return a.docType }

// Version returns the accepted version
func (a *AuditEntry) Version() string { return a.version }

// Client returns the captured client metadata
func (a *AuditEntry) Client() ClientMeta { return a.client }

// CreatedAt returns when the consent event happened
func (a *AuditEntry) CreatedAt() time.Time { return a.createdAt }
