package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/auth"
	"github.com/cuidarbem/cuidarbem-api/config"
	"github.com/cuidarbem/cuidarbem-api/cron"
	"github.com/cuidarbem/cuidarbem-api/db"
	"github.com/cuidarbem/cuidarbem-api/logger"
	"github.com/cuidarbem/cuidarbem-api/notify"
	"github.com/cuidarbem/cuidarbem-api/redis"
	"github.com/cuidarbem/cuidarbem-api/repository"
	"github.com/cuidarbem/cuidarbem-api/server"
	"github.com/cuidarbem/cuidarbem-api/storage"
)

func main() {
	root := &cobra.Command{
		Use:           "cuidarbem",
		Short:         "CuidarBem caregiver marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			gdb, err := db.Open(cfg.DatabaseURL, db.Options{MaxOpenConns: 2}, log)
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			return serve(cmd.Context(), cfg, log, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg.DatabaseURL, db.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		Debug:        cfg.IsDevelopment() && cfg.LogLevel == "debug",
	}, log)
	if err != nil {
		return err
	}
	if migrate {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
	}

	var revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	client, err := redis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
		revocations = auth.NewRedisRevocationStore(client)
	} else {
		log.Warn("REDIS_ADDR not set; logouts are kept in memory")
	}

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.MailEnabled() {
		notifier = notify.NewMailNotifier(notify.MailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			From:     cfg.EmailUser,
		})
	}

	deps := server.Deps{
		Store:       repository.NewGormStore(gdb, log),
		Tokens:      auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Revocations: revocations,
		Notifier:    notifier,
		Location:    cfg.Location(),
		Log:         log,
		CORSOrigins: cfg.CORSAllowOrigins(),
	}
	if cfg.CloudinaryEnabled() {
		documents, err := storage.NewCloudinaryStore(storage.CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		})
		if err != nil {
			return err
		}
		deps.Documents = documents
	} else {
		deps.Documents = storage.NewDiskStore(cfg.UploadDir, server.UploadsPrefix)
		deps.UploadDir = cfg.UploadDir
	}

	svc := server.NewServices(deps)

	jobs := cron.Jobs{Reminders: svc.Appointments, Offers: svc.Offers}
	if cfg.RemindersEnabled {
		jobs.ReminderSchedule = cfg.ReminderSchedule
	}
	if cfg.OfferSweepEnabled {
		jobs.OfferSweepSchedule = cfg.OfferSweepSchedule
	}
	scheduler, err := cron.Start(jobs, log)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	app := server.New(deps, svc)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.Shutdown()
}
