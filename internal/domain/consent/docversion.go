// Package consent provides versioned legal-document acceptance tracking
// and the enforcement predicate behind the consent gate.
package consent

import (
	"fmt"
	"time"
)

// DocType identifies a legal document class
type DocType string

const (
	// DocTypeTerms is the terms of service
	DocTypeTerms DocType = "terms"
	// DocTypePrivacy is the privacy policy
	DocTypePrivacy DocType = "privacy"
)

// IsValid checks if the document type is known
func (d DocType) IsValid() bool {
	switch d {
	case DocTypeTerms, DocTypePrivacy:
		return true
	default:
		return false
	}
}

// String returns the string representation of the document type
func (d DocType) String() string {
	return string(d)
}

// DocVersion is one published version of a legal document. Per document
// type exactly one row carries is_current=true at any moment; prior
// versions persist for historical lookup.
type DocVersion struct {
	id          uint
	docType     DocType
	version     string
	current     bool
	publishedAt time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewDocVersion publishes a document version.
func NewDocVersion(docType DocType, version string, current bool) (*DocVersion, error) {
	if !docType.IsValid() {
		return nil, fmt.Errorf("invalid document type: %s", docType)
	}
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}
	now := time.Now()
	return &DocVersion{
		docType:     docType,
		version:     version,
		current:     current,
		publishedAt: now,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructDocVersion reconstructs a document version from persistence.
func ReconstructDocVersion(id uint, docType DocType, version string, current bool, publishedAt, createdAt, updatedAt time.Time) (*DocVersion, error) {
	if id == 0 {
		return nil, fmt.Errorf("doc version ID cannot be zero")
	}
	if !docType.IsValid() {
		return nil, fmt.Errorf("invalid document type: %s", docType)
	}
	return &DocVersion{
		id:          id,
		docType:     docType,
		version:     version,
		current:     current,
		publishedAt: publishedAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the version row ID
func (v *DocVersion) ID() uint { return v.id }

// DocType returns the document type
func (v *DocVersion) DocType() DocType { return v.docType }

// Version returns the version label
func (v *DocVersion) Version() string { return v.version }

// IsCurrent reports whether this is the enforced version
func (v *DocVersion) IsCurrent() bool { return v.current }

// PublishedAt returns when the version was published
func (v *DocVersion) PublishedAt() time.Time { return v.publishedAt }
