package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/veyra-inc/veyra/internal/infrastructure/config"
	"github.com/veyra-inc/veyra/internal/infrastructure/database"
	"github.com/veyra-inc/veyra/internal/infrastructure/migration"
	"github.com/veyra-inc/veyra/internal/infrastructure/scheduler"
	httpRouter "github.com/veyra-inc/veyra/internal/interfaces/http"
	"github.com/veyra-inc/veyra/internal/shared/biztime"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Trials expiring within this window get a warning email from the scan job.
const trialWarnWindow = 72 * time.Hour

var (
	env         string
	autoMigrate bool
	noScheduler bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Veyra HTTP server together with the in-process lifecycle jobs.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run schema migration on startup (not recommended for production)")
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "Disable the in-process background jobs (run them in a dedicated worker instead)")

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

	log.Infow("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
		"timezone", cfg.Lifecycle.Timezone,
	)

	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		if env == "production" {
			log.Warnw("auto-migration enabled in production environment")
		}
		if err := migration.Run(database.Get(), log); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	router := httpRouter.NewRouter(database.Get(), redisClient, cfg, log)
	router.SetupRoutes()

	var jobs *scheduler.SchedulerManager
	if !noScheduler {
		jobs, err = registerJobs(router.Container(), log)
		if err != nil {
			return fmt.Errorf("failed to register background jobs: %w", err)
		}
		jobs.Start()
		defer func() {
			if err := jobs.Stop(); err != nil {
				log.Errorw("failed to stop scheduler", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

// registerJobs wires every recurring lifecycle job onto one scheduler.
func registerJobs(c *httpRouter.Container, log logger.Interface) (*scheduler.SchedulerManager, error) {
	jobs, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return nil, err
	}

	if err := jobs.RegisterPurgeJobs(c.Closures); err != nil {
		return nil, err
	}
	if err := jobs.RegisterTrialJobs(c.Trials, trialWarnWindow); err != nil {
		return nil, err
	}
	if err := jobs.RegisterRetentionJobs(c.Retention); err != nil {
		return nil, err
	}
	if err := jobs.RegisterDeletionJobs(c.Retention); err != nil {
		return nil, err
	}

	return jobs, nil
}
