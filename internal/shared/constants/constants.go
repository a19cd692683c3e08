package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderUserAgent     = "User-Agent"
	HeaderXTenantKey    = "X-Tenant-Key"
	HeaderXUserID       = "X-User-ID"

	// Context keys
	ContextKeyUserID        = "user_id"
	ContextKeyTenantContext = "tenant_context"
	ContextKeyRequestID     = "request_id"
)
