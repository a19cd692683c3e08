// Package handlers contains the gin HTTP handlers for every API
// surface: user-facing lifecycle routes, metered AI routes, consent and
// privacy routes, billing webhooks, and the admin plane.
package handlers

import (
	"github.com/veyra-inc/veyra/internal/domain/tenant"
)

// adminTenantContext builds an identity from admin-supplied request
// fields. Admin routes act on behalf of arbitrary users, so the
// identity comes from the body rather than the resolution middleware.
func adminTenantContext(tenantKey, userID string) (tenant.Context, error) {
	return tenant.NewContext(tenantKey, userID)
}
