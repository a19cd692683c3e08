package migration

import (
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.TenantModel{},
		&models.QuotaOverrideModel{},
		&models.UserEntitlementModel{},
		&models.UsageCounterModel{},
		&models.AICostLogModel{},
		&models.TrialRecordModel{},
		&models.ActivationEventModel{},
		&models.OnboardingStateModel{},
		&models.OffboardingRecordModel{},
		&models.AccountClosureModel{},
		&models.FraudEventModel{},
		&models.AccountLockoutModel{},
		&models.LegalDocVersionModel{},
		&models.UserConsentModel{},
		&models.ConsentAuditLogModel{},
		&models.RetentionPolicyModel{},
		&models.ArchivedRecordModel{},
		&models.DataDeletionRequestModel{},
	}
}
