package di

import (
	"github.com/seulch/campushub/internal/handler"
	"github.com/seulch/campushub/internal/repository"
	"github.com/seulch/campushub/internal/service"
	"github.com/seulch/campushub/internal/store"
	"github.com/seulch/campushub/internal/worker"
	"github.com/seulch/campushub/pkg/config"
	"github.com/seulch/campushub/pkg/database"
	"github.com/seulch/campushub/pkg/redis"
)

// Container holds all dependencies for the admission service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Stores
	EventStore *store.EventStore
	VenueStore *store.VenueStore

	// Repositories
	EventRepo *repository.PostgresEventRepository
	VenueRepo *repository.PostgresVenueRepository

	// Collaborators
	Notifier  service.Notifier
	Publisher service.LifecyclePublisher

	// Services
	ScheduleValidator   service.ScheduleValidator
	WaitlistService     service.WaitlistService
	VenueBookingService service.VenueBookingService
	EventService        service.EventService

	// Workers
	DeadlineWorker *worker.DeadlineWorker

	// Handlers
	HealthHandler   *handler.HealthHandler
	EventHandler    *handler.EventHandler
	VenueHandler    *handler.VenueHandler
	DeadlineHandler *handler.DeadlineHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config    *config.Config
	DB        *database.PostgresDB
	Redis     *redis.Client
	Notifier  service.Notifier
	Publisher service.LifecyclePublisher
}

// NewContainer creates a new dependency injection container. DB, Redis,
// Notifier and Publisher may be nil; services fall back to no-op
// collaborators and skip snapshot persistence.
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Notifier:  cfg.Notifier,
		Publisher: cfg.Publisher,
	}

	c.EventStore = store.NewEventStore()
	c.VenueStore = store.NewVenueStore()

	// Snapshot repositories only exist with a database
	var (
		eventSaver service.EventSaver
		venueSaver service.VenueSaver
	)
	if c.DB != nil {
		c.EventRepo = repository.NewPostgresEventRepository(c.DB.Pool())
		c.VenueRepo = repository.NewPostgresVenueRepository(c.DB.Pool())
		eventSaver = c.EventRepo
		venueSaver = c.VenueRepo
	}

	// Initialize services
	c.ScheduleValidator = service.NewScheduleValidator(c.EventStore)
	c.WaitlistService = service.NewWaitlistService(c.EventStore, c.Notifier, c.Publisher, eventSaver)
	c.VenueBookingService = service.NewVenueBookingService(c.EventStore, c.VenueStore, eventSaver, venueSaver)
	c.EventService = service.NewEventService(
		c.EventStore,
		c.ScheduleValidator,
		c.WaitlistService,
		c.VenueBookingService,
		c.Notifier,
		c.Publisher,
		eventSaver,
	)

	// Initialize workers
	c.DeadlineWorker = worker.NewDeadlineWorker(
		c.EventStore,
		c.Notifier,
		c.Publisher,
		c.WaitlistService,
		eventSaver,
		&worker.DeadlineWorkerConfig{
			SweepInterval: cfg.Config.Deadline.SweepInterval,
			WarningLead:   cfg.Config.Deadline.WarningLead,
		},
	)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis, cfg.Config.App.Version)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.WaitlistService)
	c.VenueHandler = handler.NewVenueHandler(c.VenueBookingService)
	c.DeadlineHandler = handler.NewDeadlineHandler(c.DeadlineWorker)

	return c
}

// Close releases container-owned resources
func (c *Container) Close() {
	if c.DeadlineWorker != nil {
		c.DeadlineWorker.Stop()
	}
	if c.Publisher != nil {
		_ = c.Publisher.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
