package entitlement

// Feature represents a named capability a user can be entitled to.
type Feature string

const (
	// FeatureAICalls gates the metered AI completion endpoint
	FeatureAICalls Feature = "ai_calls"
	// FeatureProjects gates project creation
	FeatureProjects Feature = "projects"
	// FeatureExports gates data export
	FeatureExports Feature = "exports"
	// FeatureAPIAccess gates programmatic API access
	FeatureAPIAccess Feature = "api_access"
)

// IsValid checks if the feature is part of the known vocabulary
func (f Feature) IsValid() bool {
	switch f {
	case FeatureAICalls, FeatureProjects, FeatureExports, FeatureAPIAccess:
		return true
	default:
		return false
	}
}

// String returns the string representation of the feature
func (f Feature) String() string {
	return string(f)
}

// AllFeatures returns the full feature vocabulary.
func AllFeatures() []Feature {
	return []Feature{FeatureAICalls, FeatureProjects, FeatureExports, FeatureAPIAccess}
}

// SourceType represents the source of the entitlement
type SourceType string

const (
	// SourceTypeSubscription indicates entitlement from a paid subscription
	SourceTypeSubscription SourceType = "subscription"
	// SourceTypeTrial indicates entitlement from a trial
	SourceTypeTrial SourceType = "trial"
	// SourceTypeDirect indicates a direct admin grant
	SourceTypeDirect SourceType = "direct"
)

// IsValid checks if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case SourceTypeSubscription, SourceTypeTrial, SourceTypeDirect:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source type
func (st SourceType) String() string {
	return string(st)
}
