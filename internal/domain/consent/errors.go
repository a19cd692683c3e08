package consent

import "errors"

var (
	// ErrInvalidDocType is returned for an unknown document type
	ErrInvalidDocType = errors.New("invalid document type")

	// ErrVersionNotFound is returned when a document version is not found
	ErrVersionNotFound = errors.New("document version not found")

	// ErrReacceptanceRequired is the legal-hold signal: the user must
	// re-accept one or more current document versions before proceeding
	ErrReacceptanceRequired = errors.New("consent re-acceptance required")
)
