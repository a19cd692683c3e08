package repository

import (
	"context"
	goerrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/abuse"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// LockoutRepositoryImpl implements the abuse.LockoutRepository
// interface. The active-key mirror column plus its unique index is what
// enforces at most one active lockout per user at the store level.
type LockoutRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewLockoutRepository creates a new lockout repository instance
func NewLockoutRepository(gdb *gorm.DB, logger logger.Interface) abuse.LockoutRepository {
	return &LockoutRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create creates a lockout row; a concurrent second active lock
// surfaces as a conflict
func (r *LockoutRepositoryImpl) Create(ctx context.Context, l *abuse.Lockout) error {
	model := &models.AccountLockoutModel{
		UserID:     l.UserID(),
		TenantKey:  l.TenantKey(),
		Reason:     l.Reason(),
		Active:     l.IsActive(),
		ActiveKey:  activeKeyFor(l),
		LockedAt:   l.LockedAt(),
		UnlockedAt: l.UnlockedAt(),
		CreatedAt:  l.CreatedAt(),
		UpdatedAt:  l.UpdatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("account already locked")
		}
		r.logger.Errorw("failed to create lockout", "error", err, "user_id", l.UserID())
		return fmt.Errorf("failed to create lockout: %w", err)
	}

	if err := l.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set lockout ID: %w", err)
	}
	return nil
}

// Update persists an unlock
func (r *LockoutRepositoryImpl) Update(ctx context.Context, l *abuse.Lockout) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.AccountLockoutModel{}).
		Where("id = ?", l.ID()).
		Updates(map[string]interface{}{
			"active":      l.IsActive(),
			"active_key":  activeKeyFor(l),
			"unlocked_at": l.UnlockedAt(),
			"updated_at":  l.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update lockout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("lockout not found")
	}
	return nil
}

// GetActiveByUser returns the user's active lockout, or nil
func (r *LockoutRepositoryImpl) GetActiveByUser(ctx context.Context, userID string) (*abuse.Lockout, error) {
	var model models.AccountLockoutModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND active = ?", userID, true).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active lockout: %w", err)
	}
	return r.toDomain(&model)
}

// IsLocked reports whether an active lockout exists for the user
func (r *LockoutRepositoryImpl) IsLocked(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.AccountLockoutModel{}).
		Where("user_id = ? AND active = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check lockout: %w", err)
	}
	return count > 0, nil
}

// activeKeyFor mirrors the user ID while the lock is active so the
// unique index enforces one active lock per user.
func activeKeyFor(l *abuse.Lockout) *string {
	if l.IsActive() {
		userID := l.UserID()
		return &userID
	}
	return nil
}

func (r *LockoutRepositoryImpl) toDomain(model *models.AccountLockoutModel) (*abuse.Lockout, error) {
	l, err := abuse.ReconstructLockout(
		model.ID,
		model.UserID,
		model.TenantKey,
		model.Reason,
		model.Active,
		model.LockedAt,
		model.UnlockedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct lockout: %w", err)
	}
	return l, nil
}
