package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/constants"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// PurgeRepositoryImpl implements the lifecycle.PurgeRepository
// interface: the hard-delete step of account purge. Usage counters are
// deleted by tenant key because that table is tenant-keyed, not
// user-keyed; the AI cost log is deliberately absent from this list.
type PurgeRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewPurgeRepository creates a new purge repository instance
func NewPurgeRepository(gdb *gorm.DB, logger logger.Interface) lifecycle.PurgeRepository {
	return &PurgeRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// PurgeUserData hard-deletes the user's rows from every per-user table
// plus the tenant's usage counters, returning a per-table deleted-count
// map. Runs on the caller's transaction; deleting from already-empty
// tables reports zero rather than erroring.
func (r *PurgeRepositoryImpl) PurgeUserData(ctx context.Context, userID, tenantKey string) (map[string]int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	counts := make(map[string]int64)

	userScoped := []struct {
		table string
		model interface{}
	}{
		{constants.TableUserEntitlements, &models.UserEntitlementModel{}},
		{constants.TableTrialRecords, &models.TrialRecordModel{}},
		{constants.TableActivationEvents, &models.ActivationEventModel{}},
		{constants.TableOnboardingStates, &models.OnboardingStateModel{}},
		{constants.TableOffboardingRecords, &models.OffboardingRecordModel{}},
		{constants.TableUserConsents, &models.UserConsentModel{}},
		{constants.TableConsentAuditLogs, &models.ConsentAuditLogModel{}},
		{constants.TableFraudEvents, &models.FraudEventModel{}},
		{constants.TableAccountLockouts, &models.AccountLockoutModel{}},
	}

	for _, target := range userScoped {
		result := tx.Where("user_id = ?", userID).Delete(target.model)
		if result.Error != nil {
			r.logger.Errorw("failed to purge table", "error", result.Error, "table", target.table, "user_id", userID)
			return nil, fmt.Errorf("failed to purge %s: %w", target.table, result.Error)
		}
		counts[target.table] = result.RowsAffected
	}

	result := tx.Where("tenant_key = ?", tenantKey).Delete(&models.UsageCounterModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to purge usage counters", "error", result.Error, "tenant_key", tenantKey)
		return nil, fmt.Errorf("failed to purge %s: %w", constants.TableUsageCounters, result.Error)
	}
	counts[constants.TableUsageCounters] = result.RowsAffected

	return counts, nil
}
