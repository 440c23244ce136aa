package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/config"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/email"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository/postgres"
	auditService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	notificationService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/notification"
	internalworker "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/worker"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/messaging/redis"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/metrics"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/worker"
)

func main() {
	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("mentalhealth_worker")

	patientRepo := postgres.NewPatientRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.RedisURL}, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	var emailSvc email.Service
	if cfg.EmailEnabled {
		emailSvc = email.NewSMTPService(email.Config{
			Host:     cfg.EmailHost,
			Port:     cfg.EmailPort,
			Username: cfg.EmailUsername,
			Password: cfg.EmailPassword,
			From:     cfg.EmailFrom,
		}, appLogger)
	} else {
		emailSvc = &email.NoopService{Logger: appLogger}
	}

	auditSvc := auditService.NewService(auditRepo, appLogger)
	notificationSvc := notificationService.NewService(notificationRepo, staffRepo, appLogger)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
	}, appLogger, m)

	notifier := internalworker.NewNotifier(broker, notificationSvc, emailSvc, staffRepo, patientRepo, appLogger)
	retention := internalworker.NewRetentionJob(auditSvc, outboxRepo, cfg.RetentionEvery, cfg.RetentionPeriod, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)
	go retention.Start(ctx)
	go func() {
		if err := notifier.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("notifier failed")
		}
	}()

	log.Info().Msg("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}
