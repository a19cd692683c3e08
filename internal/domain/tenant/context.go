package tenant

import "errors"

// Context carries the resolved identity for a single request: the active
// tenant and the acting user. It is passed explicitly into every core
// operation instead of living in ambient request state, so the core stays
// testable without an HTTP framework.
type Context struct {
	TenantKey string
	UserID    string
}

// NewContext builds a request context, rejecting empty identifiers.
func NewContext(tenantKey, userID string) (Context, error) {
	if tenantKey == "" {
		return Context{}, errors.New("tenant key is required")
	}
	if userID == "" {
		return Context{}, errors.New("user ID is required")
	}
	return Context{TenantKey: tenantKey, UserID: userID}, nil
}
