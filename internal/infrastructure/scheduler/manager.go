// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/veyra-inc/veyra/internal/domain/retention"
	"github.com/veyra-inc/veyra/internal/shared/biztime"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// PurgeRunner executes due account purges and returns the number purged.
type PurgeRunner interface {
	RunPurgeSweep(ctx context.Context) (int, error)
}

// TrialScanner sends expiry warnings for trials ending inside window and
// returns the number of warnings sent.
type TrialScanner interface {
	ScanExpiring(ctx context.Context, window time.Duration) (int, error)
}

// RetentionSweeper hard-deletes rows past their retention window,
// split by data class.
type RetentionSweeper interface {
	PurgeExpiredLogs(ctx context.Context) (map[string]int64, error)
	PurgeComplianceData(ctx context.Context) (map[string]int64, error)
}

// DeletionMonitor surfaces erasure requests past their SLA deadline.
type DeletionMonitor interface {
	GetOverdueDeletions(ctx context.Context) ([]*retention.DeletionRequest, error)
}

// SchedulerManager manages all scheduled jobs using gocron v2 in a
// single scheduler instance.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterPurgeJobs registers the account purge sweep:
// - Execute due purges every hour, starting immediately
func (m *SchedulerManager) RegisterPurgeJobs(runner PurgeRunner) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.runPurgeSweep(ctx, runner)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("lifecycle", "purge"),
		gocron.WithName("account-purge-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered purge jobs", "interval", "1h")
	return nil
}

func (m *SchedulerManager) runPurgeSweep(ctx context.Context, runner PurgeRunner) {
	m.logger.Debugw("account purge sweep started")

	startTime := biztime.NowUTC()
	purged, err := runner.RunPurgeSweep(ctx)
	if err != nil {
		m.logger.Errorw("account purge sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if purged > 0 {
		m.logger.Infow("account purge sweep completed",
			"purged", purged,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no due purges to process",
			"duration", time.Since(startTime),
		)
	}
}

// RegisterTrialJobs registers the expiring-trial warning scan:
// - Scan trials ending inside warnWindow every 6 hours, starting immediately
func (m *SchedulerManager) RegisterTrialJobs(scanner TrialScanner, warnWindow time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.scanExpiringTrials(ctx, scanner, warnWindow)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("lifecycle", "trial"),
		gocron.WithName("trial-expiry-scan"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered trial jobs", "interval", "6h", "warn_window", warnWindow)
	return nil
}

func (m *SchedulerManager) scanExpiringTrials(ctx context.Context, scanner TrialScanner, warnWindow time.Duration) {
	m.logger.Debugw("trial expiry scan started")

	warned, err := scanner.ScanExpiring(ctx, warnWindow)
	if err != nil {
		// Don't log error if context was cancelled (graceful shutdown)
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("trial expiry scan failed", "error", err)
		return
	}

	if warned > 0 {
		m.logger.Infow("trial expiry warnings sent", "count", warned)
	}
}

// RegisterRetentionJobs registers retention sweeps:
// - Operational sweep: runs at 03:00 business timezone every day
// - Compliance sweep: runs at 04:00 business timezone on the 1st of each month
func (m *SchedulerManager) RegisterRetentionJobs(sweeper RetentionSweeper) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob("0 3 * * *", false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.sweepOperational(ctx, sweeper)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("retention", "operational"),
		gocron.WithName("retention-operational-sweep"),
	)
	if err != nil {
		return err
	}

	_, err = m.scheduler.NewJob(
		gocron.CronJob("0 4 1 * *", false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			m.sweepCompliance(ctx, sweeper)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("retention", "compliance"),
		gocron.WithName("retention-compliance-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered retention jobs",
		"operational_sweep", "03:00",
		"compliance_sweep", "04:00 on 1st",
	)
	return nil
}

func (m *SchedulerManager) sweepOperational(ctx context.Context, sweeper RetentionSweeper) {
	m.logger.Debugw("operational retention sweep started")

	startTime := biztime.NowUTC()
	counts, err := sweeper.PurgeExpiredLogs(ctx)
	if err != nil {
		m.logger.Errorw("operational retention sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("operational retention sweep completed",
		"counts", counts,
		"duration", time.Since(startTime),
	)
}

func (m *SchedulerManager) sweepCompliance(ctx context.Context, sweeper RetentionSweeper) {
	m.logger.Debugw("compliance retention sweep started")

	startTime := biztime.NowUTC()
	counts, err := sweeper.PurgeComplianceData(ctx)
	if err != nil {
		m.logger.Errorw("compliance retention sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("compliance retention sweep completed",
		"counts", counts,
		"duration", time.Since(startTime),
	)
}

// RegisterDeletionJobs registers the overdue erasure-request alert:
// - Check SLA deadlines at 08:00 business timezone daily
func (m *SchedulerManager) RegisterDeletionJobs(monitor DeletionMonitor) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob("0 8 * * *", false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.checkOverdueDeletions(ctx, monitor)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("retention", "deletion-sla"),
		gocron.WithName("deletion-sla-check"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered deletion jobs", "sla_check", "08:00")
	return nil
}

func (m *SchedulerManager) checkOverdueDeletions(ctx context.Context, monitor DeletionMonitor) {
	overdue, err := monitor.GetOverdueDeletions(ctx)
	if err != nil {
		m.logger.Errorw("failed to check overdue deletion requests", "error", err)
		return
	}

	if len(overdue) == 0 {
		m.logger.Debugw("no overdue deletion requests")
		return
	}

	for _, req := range overdue {
		m.logger.Warnw("deletion request past SLA deadline",
			"request_id", req.RequestID(),
			"user_id", req.UserID(),
			"status", req.Status(),
			"due_at", req.DueAt(),
		)
	}
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
