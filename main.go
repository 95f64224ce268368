package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seulch/campushub/internal/di"
	"github.com/seulch/campushub/internal/metrics"
	"github.com/seulch/campushub/internal/service"
	"github.com/seulch/campushub/pkg/config"
	"github.com/seulch/campushub/pkg/database"
	"github.com/seulch/campushub/pkg/logger"
	"github.com/seulch/campushub/pkg/middleware"
	pkgredis "github.com/seulch/campushub/pkg/redis"
	"github.com/seulch/campushub/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting CampusHub admission service...")

	ctx := context.Background()

	// Initialize tracing
	if err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, continuing without tracing: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Snapshot store is optional; the service runs from memory without it
	var db *database.PostgresDB
	db, err = database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     cfg.OTel.ServiceName,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Database connection failed, running without snapshots: %v", err))
		db = nil
	} else {
		appLog.Info("Database connected")
	}

	// Redis backs the notifier and idempotency; also optional
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, notifications disabled: %v", err))
		redisClient = nil
	} else {
		appLog.Info("Redis connected")
	}

	var notifier service.Notifier
	if redisClient != nil {
		notifier = service.NewRedisNotifier(redisClient, cfg.Notify.Channel)
	} else {
		notifier = service.NewNoOpNotifier()
	}

	var publisher service.LifecyclePublisher
	publisher, err = service.NewKafkaLifecyclePublisher(ctx, &service.LifecyclePublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		publisher = service.NewNoOpLifecyclePublisher()
	} else {
		appLog.Info("Kafka lifecycle publisher connected")
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		Notifier:  notifier,
		Publisher: publisher,
	})
	defer container.Close()

	// Repopulate the in-memory stores from snapshots
	if container.EventRepo != nil {
		if err := container.EventRepo.EnsureSchema(ctx); err != nil {
			appLog.Warn(fmt.Sprintf("Event snapshot schema setup failed: %v", err))
		}
		events, errs := container.EventRepo.LoadEvents(ctx)
		for _, loadErr := range errs {
			appLog.Warn(fmt.Sprintf("Event snapshot load: %v", loadErr))
		}
		for _, e := range events {
			container.EventStore.Put(e)
		}
		appLog.Info(fmt.Sprintf("Restored %d events from snapshots", len(events)))
	}
	if container.VenueRepo != nil {
		if err := container.VenueRepo.EnsureSchema(ctx); err != nil {
			appLog.Warn(fmt.Sprintf("Venue snapshot schema setup failed: %v", err))
		}
		venues, errs := container.VenueRepo.LoadVenues(ctx)
		for _, loadErr := range errs {
			appLog.Warn(fmt.Sprintf("Venue snapshot load: %v", loadErr))
		}
		for _, v := range venues {
			container.VenueStore.Put(v)
		}
		appLog.Info(fmt.Sprintf("Restored %d venues from snapshots", len(venues)))
	}

	// Start the deadline sweep
	if err := container.DeadlineWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Deadline worker failed to start: %v", err))
	}

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	router.Use(middleware.UserIdentity())

	// Health endpoints
	router.GET("/health", container.HealthHandler.Live)
	router.GET("/health/ready", container.HealthHandler.Ready)

	// Idempotency guards write operations when Redis is up
	writeGuard := func(c *gin.Context) { c.Next() }
	if redisClient != nil {
		idemCfg := middleware.DefaultIdempotencyConfig(redisClient.Client())
		idemCfg.SkipPaths = []string{"/health", "/health/ready"}
		writeGuard = middleware.IdempotencyMiddleware(idemCfg)
	}

	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events")
		{
			events.POST("", middleware.RequireUserID(), writeGuard, container.EventHandler.CreateEvent)
			events.GET("", container.EventHandler.ListEvents)
			events.GET("/:id", container.EventHandler.GetEvent)
			events.PATCH("/:id", writeGuard, container.EventHandler.UpdateEvent)
			events.DELETE("/:id", container.EventHandler.DeleteEvent)

			events.POST("/:id/publish", writeGuard, container.EventHandler.PublishEvent)
			events.POST("/:id/activate", writeGuard, container.EventHandler.ActivateEvent)
			events.POST("/:id/complete", writeGuard, container.EventHandler.CompleteEvent)
			events.POST("/:id/archive", writeGuard, container.EventHandler.ArchiveEvent)
			events.POST("/:id/cancel", writeGuard, container.EventHandler.CancelEvent)
			events.POST("/:id/reschedule", writeGuard, container.EventHandler.RescheduleEvent)

			events.POST("/:id/registrations", middleware.RequireUserID(), writeGuard, container.EventHandler.RegisterAttendee)
			events.GET("/:id/registrations", container.EventHandler.ListRegistrations)
			events.DELETE("/:id/registrations/:registration_id", container.EventHandler.CancelRegistration)
			events.POST("/:id/registrations/:registration_id/attendance", writeGuard, container.EventHandler.MarkAttendance)
			events.GET("/:id/waitlist", container.EventHandler.WaitlistStats)

			events.POST("/:id/venue", writeGuard, container.VenueHandler.BookVenue)
			events.PUT("/:id/venue", writeGuard, container.VenueHandler.ChangeVenue)
			events.DELETE("/:id/venue", container.VenueHandler.ReleaseVenue)

			events.POST("/:id/deadline/extend", writeGuard, container.DeadlineHandler.ExtendDeadline)
			events.POST("/:id/deadline/process", writeGuard, container.DeadlineHandler.ProcessDeadline)
		}

		venues := v1.Group("/venues")
		{
			venues.POST("", writeGuard, container.VenueHandler.CreateVenue)
			venues.GET("", container.VenueHandler.ListVenues)
			venues.GET("/available", container.VenueHandler.FindAvailableVenues)
			venues.GET("/:id", container.VenueHandler.GetVenue)
			venues.GET("/:id/conflicts", container.VenueHandler.VenueConflicts)
			venues.DELETE("/:id", container.VenueHandler.DeactivateVenue)
		}

		v1.GET("/deadlines/stats", container.DeadlineHandler.Statistics)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info(fmt.Sprintf("CampusHub admission service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
