package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/config"
	appointmentHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/appointment"
	auditHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/audit"
	authHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/auth"
	dischargeHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/discharge"
	healthHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/health"
	notificationHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/notification"
	patientHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/patient"
	reportHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/report"
	staffHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/staff"
	treatmentHandler "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/handler/treatment"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/middleware"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository/postgres"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/router"
	appointmentService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/appointment"
	auditService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	authService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/auth"
	dischargeService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/discharge"
	notificationService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/notification"
	patientService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/patient"
	reportService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/report"
	staffService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/staff"
	treatmentService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/treatment"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/auth"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/messaging/redis"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/metrics"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/security"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("mentalhealth")

	patientRepo := postgres.NewPatientRepository(db)
	dischargeRepo := postgres.NewDischargeRequestRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	treatmentRepo := postgres.NewTreatmentRecordRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})
	hasher := security.NewBcryptHasher(0)

	auditSvc := auditService.NewService(auditRepo, appLogger)
	authSvc := authService.NewService(staffRepo, jwtSvc, hasher, auditSvc)
	patientSvc := patientService.NewService(patientRepo, outboxRepo, auditSvc, m, appLogger)
	dischargeSvc := dischargeService.NewService(
		patientRepo,
		dischargeRepo,
		appointmentRepo,
		treatmentRepo,
		outboxRepo,
		auditSvc,
		m,
		appLogger,
		dischargeService.Config{
			MinCompletedSessions: cfg.Discharge.MinCompletedSessions,
			InactivityDays:       cfg.Discharge.InactivityDays,
			TokenTTL:             cfg.Discharge.TokenTTL(),
		},
	)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, auditSvc)
	treatmentSvc := treatmentService.NewService(treatmentRepo, patientRepo, auditSvc)
	staffSvc := staffService.NewService(staffRepo, hasher, auditSvc)
	notificationSvc := notificationService.NewService(notificationRepo, staffRepo, appLogger)
	reportSvc := reportService.NewService(reportRepo)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(patientSvc),
		dischargeHandler.NewHandler(dischargeSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		treatmentHandler.NewHandler(treatmentSvc),
		staffHandler.NewHandler(staffSvc),
		notificationHandler.NewHandler(notificationSvc),
		reportHandler.NewHandler(reportSvc),
		auditHandler.NewHandler(auditSvc),
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst: cfg.RateLimit.Burst,
			Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORS:           middleware.DefaultCORSConfig(),
			MetricsPrefix:  "mentalhealth_http",
		},
	)
	r.Setup()

	// Relay committed outbox rows to Redis so the worker sees them.
	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL}, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{}, appLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go processor.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
