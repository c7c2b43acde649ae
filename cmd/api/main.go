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

	"github.com/medlinx/clinic-api/internal/config"
	"github.com/medlinx/clinic-api/internal/handler"
	appointmentHandler "github.com/medlinx/clinic-api/internal/handler/appointment"
	billingHandler "github.com/medlinx/clinic-api/internal/handler/billing"
	clinicHandler "github.com/medlinx/clinic-api/internal/handler/clinic"
	evolutionHandler "github.com/medlinx/clinic-api/internal/handler/evolution"
	patientHandler "github.com/medlinx/clinic-api/internal/handler/patient"
	professionalHandler "github.com/medlinx/clinic-api/internal/handler/professional"
	"github.com/medlinx/clinic-api/internal/middleware"
	"github.com/medlinx/clinic-api/internal/repository/postgres"
	"github.com/medlinx/clinic-api/internal/router"
	appointmentService "github.com/medlinx/clinic-api/internal/service/appointment"
	billingService "github.com/medlinx/clinic-api/internal/service/billing"
	clinicService "github.com/medlinx/clinic-api/internal/service/clinic"
	evolutionService "github.com/medlinx/clinic-api/internal/service/evolution"
	patientService "github.com/medlinx/clinic-api/internal/service/patient"
	professionalService "github.com/medlinx/clinic-api/internal/service/professional"
	"github.com/medlinx/clinic-api/pkg/auth"
	"github.com/medlinx/clinic-api/pkg/logger"
	"github.com/medlinx/clinic-api/pkg/metrics"
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

	appMetrics := metrics.New("clinic_api")

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	professionalRepo := postgres.NewProfessionalRepository(db)
	clinicRepo := postgres.NewClinicRepository(db)
	evolutionRepo := postgres.NewEvolutionRepository(db)
	billingRepo := postgres.NewBillingRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, patientRepo, professionalRepo, clinicRepo,
		outboxRepo, appLogger, appMetrics,
	)
	patientSvc := patientService.NewService(patientRepo, clinicRepo)
	professionalSvc := professionalService.NewService(professionalRepo, clinicRepo)
	clinicSvc := clinicService.NewService(clinicRepo)
	evolutionSvc := evolutionService.NewService(evolutionRepo, patientRepo, professionalRepo, appointmentRepo)
	billingSvc := billingService.NewService(billingRepo, patientRepo, appointmentRepo)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(auth.NewTokenVerifier(cfg.JWT.Secret))

	// Router
	r := router.NewRouter(
		authMiddleware,
		handler.NewHandler(db),
		appointmentHandler.NewHandler(appointmentSvc),
		patientHandler.NewHandler(patientSvc),
		professionalHandler.NewHandler(professionalSvc),
		clinicHandler.NewHandler(clinicSvc),
		evolutionHandler.NewHandler(evolutionSvc),
		billingHandler.NewHandler(billingSvc),
		router.Config{
			RateLimitRPS:   cfg.API.RateLimitRPS,
			RateLimitBurst: cfg.API.RateLimitBurst,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "clinic_api_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}
