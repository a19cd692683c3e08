// Package constants defines shared constant values, including the table
// names used by the persistence models and the retention registry.
package constants

const (
	TableTenants              = "tenants"
	TableUserEntitlements     = "user_entitlements"
	TableUsageCounters        = "usage_counters"
	TableTrialRecords         = "trial_records"
	TableActivationEvents     = "activation_events"
	TableOnboardingStates     = "onboarding_states"
	TableOffboardingRecords   = "offboarding_records"
	TableAccountClosures      = "account_closures"
	TableFraudEvents          = "fraud_events"
	TableAccountLockouts      = "account_lockouts"
	TableLegalDocVersions     = "legal_doc_versions"
	TableUserConsents         = "user_consents"
	TableConsentAuditLogs     = "consent_audit_logs"
	TableRetentionPolicies    = "retention_policies"
	TableArchivedRecords      = "archived_records"
	TableDataDeletionRequests = "data_deletion_requests"
	TableAICostLogs           = "ai_cost_logs"
	TableQuotaOverrides       = "tenant_quota_overrides"
)
