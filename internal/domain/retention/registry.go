// Package retention provides the data retention and deletion engine:
// a typed registry of purgeable data types, per-type retention policies,
// cold-storage archival, and GDPR deletion requests.
package retention

import (
	"time"

	"github.com/veyra-inc/veyra/internal/shared/constants"
)

// Class separates short-window operational data from long-window
// compliance data. The purge mechanism is identical; only the targeted
// subset differs.
type Class string

const (
	ClassOperational Class = "operational"
	ClassCompliance  Class = "compliance"
)

// DataType is one registered purgeable data type: an explicit tagged
// variant carrying its own table and column routing, instead of runtime
// attribute lookup by string. TenantColumn is empty for user-keyed
// tables, which archival skips and reports as zero.
type DataType struct {
	Name             string
	Table            string
	DateColumn       string
	TenantColumn     string
	Class            Class
	DefaultRetention time.Duration
}

// IsTenantScoped reports whether rows can be selected by tenant.
func (d DataType) IsTenantScoped() bool {
	return d.TenantColumn != ""
}

const day = 24 * time.Hour

// registry is the full set of purgeable data types. The AI cost log is
// deliberately compliance-class with the longest window: it is the
// accounting source of truth and survives account purge.
var registry = []DataType{
	{
		Name:             "fraud_events",
		Table:            constants.TableFraudEvents,
		DateColumn:       "created_at",
		TenantColumn:     "tenant_key",
		Class:            ClassOperational,
		DefaultRetention: 365 * day,
	},
	{
		Name:             "activation_events",
		Table:            constants.TableActivationEvents,
		DateColumn:       "created_at",
		TenantColumn:     "tenant_key",
		Class:            ClassOperational,
		DefaultRetention: 365 * day,
	},
	{
		Name:             "usage_counters",
		Table:            constants.TableUsageCounters,
		DateColumn:       "created_at",
		TenantColumn:     "tenant_key",
		Class:            ClassOperational,
		DefaultRetention: 90 * day,
	},
	{
		Name:             "consent_audit_logs",
		Table:            constants.TableConsentAuditLogs,
		DateColumn:       "created_at",
		TenantColumn:     "tenant_key",
		Class:            ClassCompliance,
		DefaultRetention: 7 * 365 * day,
	},
	{
		Name:             "ai_cost_logs",
		Table:            constants.TableAICostLogs,
		DateColumn:       "created_at",
		TenantColumn:     "tenant_key",
		Class:            ClassCompliance,
		DefaultRetention: 7 * 365 * day,
	},
	{
		Name:             "offboarding_records",
		Table:            constants.TableOffboardingRecords,
		DateColumn:       "created_at",
		TenantColumn:     "",
		Class:            ClassOperational,
		DefaultRetention: 365 * day,
	},
}

// Registry returns all registered data types.
func Registry() []DataType {
	out := make([]DataType, len(registry))
	copy(out, registry)
	return out
}

// RegistryByClass returns the data types of one class.
func RegistryByClass(class Class) []DataType {
	var out []DataType
	for _, dt := range registry {
		if dt.Class == class {
			out = append(out, dt)
		}
	}
	return out
}

// Lookup returns the data type registered under name.
func Lookup(name string) (DataType, bool) {
	for _, dt := range registry {
		if dt.Name == name {
			return dt, true
		}
	}
	return DataType{}, false
}
