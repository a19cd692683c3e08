package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/veyra-inc/veyra/internal/infrastructure/config"
	"github.com/veyra-inc/veyra/internal/infrastructure/database"
	"github.com/veyra-inc/veyra/internal/infrastructure/pubsub"
	"github.com/veyra-inc/veyra/internal/infrastructure/scheduler"
	httpRouter "github.com/veyra-inc/veyra/internal/interfaces/http"
	"github.com/veyra-inc/veyra/internal/shared/biztime"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Trials expiring within this window get a warning email from the scan job.
const trialWarnWindow = 72 * time.Hour

var env string

// NewCommand builds the worker command, which runs the recurring
// lifecycle jobs without serving HTTP. Deploy it alongside servers
// started with --no-scheduler so the sweeps run exactly once.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the background lifecycle jobs",
		Long:  `Run the purge sweep, trial scan, retention sweeps and deletion monitor without the HTTP server.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	biztime.MustInit(cfg.Lifecycle.Timezone)

	log.Infow("starting worker", "environment", env, "timezone", cfg.Lifecycle.Timezone)

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	container := httpRouter.NewContainer(database.Get(), redisClient, cfg, log)

	// The worker doubles as the analytics consumer for lifecycle events
	// published by the servers. Today it only records them in the logs.
	subCtx, stopSubscriber := context.WithCancel(context.Background())
	defer stopSubscriber()
	if redisClient != nil {
		bus := pubsub.NewRedisEventBus(redisClient, log)
		go func() {
			err := bus.Subscribe(subCtx, func(ctx context.Context, event pubsub.LifecycleEvent) {
				log.Infow("lifecycle event received",
					"event", event.Name,
					"fields", event.Fields,
				)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("lifecycle event subscriber exited", "error", err)
			}
		}()
	}

	jobs, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if err := jobs.RegisterPurgeJobs(container.Closures); err != nil {
		return fmt.Errorf("failed to register purge jobs: %w", err)
	}
	if err := jobs.RegisterTrialJobs(container.Trials, trialWarnWindow); err != nil {
		return fmt.Errorf("failed to register trial jobs: %w", err)
	}
	if err := jobs.RegisterRetentionJobs(container.Retention); err != nil {
		return fmt.Errorf("failed to register retention jobs: %w", err)
	}
	if err := jobs.RegisterDeletionJobs(container.Retention); err != nil {
		return fmt.Errorf("failed to register deletion jobs: %w", err)
	}

	jobs.Start()
	log.Infow("worker started", "jobs", len(jobs.Jobs()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down worker")

	if err := jobs.Stop(); err != nil {
		log.Errorw("failed to stop scheduler", "error", err)
		return err
	}

	log.Infow("worker exited gracefully")
	return nil
}
