package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/application"
	"github.com/gason-app/service-booking/internal/auth"
	"github.com/gason-app/service-booking/internal/config"
	"github.com/gason-app/service-booking/internal/database"
	"github.com/gason-app/service-booking/internal/events"
	"github.com/gason-app/service-booking/internal/handler"
	"github.com/gason-app/service-booking/internal/health"
	"github.com/gason-app/service-booking/internal/kafka"
	"github.com/gason-app/service-booking/internal/logger"
	"github.com/gason-app/service-booking/internal/middleware"
	"github.com/gason-app/service-booking/internal/repository"
)

const serviceName = "service-booking"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("starting booking service",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.CylinderModel{},
			&repository.CustomerModel{},
		); err != nil {
			log.Fatal("failed to auto-migrate schema", zap.Error(err))
		}
	} else {
		if err := database.RunMigrations(cfg.DB.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, 24*time.Hour)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	bookingRepo := repository.NewGormBookingRepository(db)
	lifecycleRepo := repository.NewGormLifecycleRepository(db, log)
	cylinderRepo := repository.NewGormCylinderRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)

	bookingService := application.NewBookingService(bookingRepo, lifecycleRepo, cylinderRepo, customerRepo, producer, log)
	inventoryService := application.NewInventoryService(cylinderRepo, log)
	customerService := application.NewCustomerService(customerRepo, jwtManager, log)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := inventoryService.SeedCatalogue(seedCtx); err != nil {
		log.Warn("catalogue seeding failed", zap.Error(err))
	}
	seedCancel()

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	deliveryConsumer := events.NewDeliveryConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.GroupPrefix+serviceName,
		deliveryProgress{bookingService},
		log,
	)
	defer deliveryConsumer.Close()

	go func() {
		if err := deliveryConsumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("delivery consumer stopped", zap.Error(err))
		}
	}()

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RecoveryMiddleware(log))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(db, serviceName).RegisterRoutes(r)

	handler.NewCustomerHandler(customerService, log).RegisterRoutes(r, jwtManager)
	handler.NewCylinderHandler(inventoryService, log).RegisterRoutes(r)
	handler.NewBookingHandler(bookingService, log).RegisterRoutes(r, jwtManager)
	handler.NewAdminHandler(bookingService, inventoryService, log).RegisterRoutes(r, jwtManager)
	handler.NewWebhookHandler(bookingService, cfg.Razorpay.WebhookSecret, log).RegisterRoutes(r)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	consumerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// deliveryProgress adapts BookingService to the delivery consumer, which only
// needs the transitions and not the DTOs.
type deliveryProgress struct {
	svc *application.BookingService
}

func (d deliveryProgress) MarkOutForDelivery(ctx context.Context, orderID string) error {
	_, err := d.svc.MarkOutForDelivery(ctx, orderID)
	return err
}

func (d deliveryProgress) MarkDelivered(ctx context.Context, orderID string) error {
	_, err := d.svc.MarkDelivered(ctx, orderID)
	return err
}
