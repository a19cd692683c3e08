// Package usage provides the usage-quota ledger domain: per-period
// counters checked against plan-tier ceilings, and the AI cost log that
// is the platform's financial source of truth.
package usage

// Unlimited is the sentinel ceiling that always passes the quota check.
const Unlimited int64 = -1

// Tier represents a plan tier with static per-feature ceilings.
type Tier string

const (
	TierFree       Tier = "free"
	TierStarter    Tier = "starter"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// IsValid checks if the tier is known
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierStarter, TierPro, TierEnterprise:
		return true
	default:
		return false
	}
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

// tierCeilings is the static per-tier, per-feature monthly ceiling table.
// Per-tenant overrides are resolved ahead of this table.
var tierCeilings = map[Tier]map[string]int64{
	TierFree: {
		"ai_calls": 50,
		"projects": 3,
		"exports":  5,
	},
	TierStarter: {
		"ai_calls": 1000,
		"projects": 20,
		"exports":  50,
	},
	TierPro: {
		"ai_calls": 10000,
		"projects": 200,
		"exports":  500,
	},
	TierEnterprise: {
		"ai_calls": Unlimited,
		"projects": Unlimited,
		"exports":  Unlimited,
	},
}

// Ceiling returns the monthly ceiling for a feature on a tier. Unknown
// features on a known tier default to zero (nothing allowed until the
// table says otherwise); the enterprise tier is always unlimited.
func (t Tier) Ceiling(feature string) int64 {
	if t == TierEnterprise {
		return Unlimited
	}
	features, ok := tierCeilings[t]
	if !ok {
		return 0
	}
	limit, ok := features[feature]
	if !ok {
		return 0
	}
	return limit
}
