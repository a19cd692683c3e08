package http

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	abuseApp "github.com/veyra-inc/veyra/internal/application/abuse"
	billingApp "github.com/veyra-inc/veyra/internal/application/billing"
	consentApp "github.com/veyra-inc/veyra/internal/application/consent"
	entitlementApp "github.com/veyra-inc/veyra/internal/application/entitlement"
	lifecycleApp "github.com/veyra-inc/veyra/internal/application/lifecycle"
	"github.com/veyra-inc/veyra/internal/application/notification"
	retentionApp "github.com/veyra-inc/veyra/internal/application/retention"
	tenantApp "github.com/veyra-inc/veyra/internal/application/tenant"
	usageApp "github.com/veyra-inc/veyra/internal/application/usage"
	"github.com/veyra-inc/veyra/internal/infrastructure/config"
	"github.com/veyra-inc/veyra/internal/infrastructure/email"
	"github.com/veyra-inc/veyra/internal/infrastructure/pubsub"
	"github.com/veyra-inc/veyra/internal/infrastructure/repository"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Container wires repositories and services for the HTTP surface and
// the background workers. Construction is explicit rather than
// generated; the dependency graph is small enough to read top to
// bottom.
type Container struct {
	Tenants      *tenantApp.Service
	Entitlements *entitlementApp.Service
	Usage        *usageApp.Service
	Trials       *lifecycleApp.TrialService
	Activations  *lifecycleApp.ActivationService
	Onboarding   *lifecycleApp.OnboardingService
	Offboarding  *lifecycleApp.OffboardingService
	Closures     *lifecycleApp.ClosureService
	Abuse        *abuseApp.Service
	Consent      *consentApp.Service
	Retention    *retentionApp.Service
	Billing      *billingApp.Service
}

// NewContainer builds the full service graph from the database handle
// and configuration. A nil redis client downgrades the event bus to a
// no-op emitter.
func NewContainer(gdb *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Container {
	txManager := db.NewTransactionManager(gdb)

	tenantRepo := repository.NewTenantRepository(gdb, log)
	entitlementRepo := repository.NewEntitlementRepository(gdb, log)
	counterRepo := repository.NewUsageCounterRepository(gdb, log)
	costLogRepo := repository.NewCostLogRepository(gdb, log)
	trialRepo := repository.NewTrialRepository(gdb, log)
	activationRepo := repository.NewActivationRepository(gdb, log)
	onboardingRepo := repository.NewOnboardingRepository(gdb, log)
	offboardingRepo := repository.NewOffboardingRepository(gdb, log)
	closureRepo := repository.NewClosureRepository(gdb, log)
	purgeRepo := repository.NewPurgeRepository(gdb, log)
	fraudRepo := repository.NewFraudEventRepository(gdb, log)
	lockoutRepo := repository.NewLockoutRepository(gdb, log)
	consentRepo := repository.NewConsentRepository(gdb, log)
	policyRepo := repository.NewRetentionPolicyRepository(gdb, log)
	sweepRepo := repository.NewSweepRepository(gdb, log)
	archiveRepo := repository.NewArchiveRepository(gdb, log)
	deletionRepo := repository.NewDeletionRequestRepository(gdb, log)

	var notifier notification.Notifier = notification.NopNotifier{}
	if cfg.Email.Enabled {
		notifier = email.NewSMTPNotifier(email.SMTPConfig{
			Host:        cfg.Email.Host,
			Port:        cfg.Email.Port,
			Username:    cfg.Email.Username,
			Password:    cfg.Email.Password,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
		})
	}

	var events notification.Events = notification.NopEvents{}
	if redisClient != nil {
		events = pubsub.NewRedisEventBus(redisClient, log)
	}

	tenants := tenantApp.NewService(tenantRepo, log)
	entitlements := entitlementApp.NewService(entitlementRepo, log)
	usage := usageApp.NewService(counterRepo, costLogRepo, tenantRepo, log)
	abuse := abuseApp.NewService(fraudRepo, lockoutRepo, costLogRepo, usage, log)

	trials := lifecycleApp.NewTrialService(trialRepo, entitlementRepo, txManager, notifier, log, cfg.Lifecycle.TrialDays)
	activations := lifecycleApp.NewActivationService(activationRepo, events, log)
	onboarding := lifecycleApp.NewOnboardingService(onboardingRepo, log)
	offboarding := lifecycleApp.NewOffboardingService(offboardingRepo, log)
	closures := lifecycleApp.NewClosureService(
		closureRepo, purgeRepo, tenantRepo, entitlementRepo,
		txManager, notifier, log, cfg.Lifecycle.ClosureGraceDays,
	)

	consent := consentApp.NewService(consentRepo, txManager, log)
	retention := retentionApp.NewService(
		policyRepo, sweepRepo, archiveRepo, deletionRepo, purgeRepo,
		txManager, log, cfg.Lifecycle.DeletionSLADays,
	)
	billing := billingApp.NewService(entitlements, trials, tenants, abuse, log)

	return &Container{
		Tenants:      tenants,
		Entitlements: entitlements,
		Usage:        usage,
		Trials:       trials,
		Activations:  activations,
		Onboarding:   onboarding,
		Offboarding:  offboarding,
		Closures:     closures,
		Abuse:        abuse,
		Consent:      consent,
		Retention:    retention,
		Billing:      billing,
	}
}
