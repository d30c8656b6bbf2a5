// Package app assembles the storage, coordination and service graph shared by the HTTP server
// and the operator CLI.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seat-api/internal/events"
	"github.com/noah-isme/exam-seat-api/internal/repository"
	"github.com/noah-isme/exam-seat-api/internal/service"
	"github.com/noah-isme/exam-seat-api/pkg/broker"
	"github.com/noah-isme/exam-seat-api/pkg/cache"
	"github.com/noah-isme/exam-seat-api/pkg/config"
	"github.com/noah-isme/exam-seat-api/pkg/database"
	"github.com/noah-isme/exam-seat-api/pkg/jobs"
	"github.com/noah-isme/exam-seat-api/pkg/lock"
)

const lockPrefix = "seating:lock:"

// Options selects optional runtime pieces.
type Options struct {
	// Background enables the regeneration queue. The queue is started by Start.
	Background bool
}

// App holds every long-lived dependency.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	Redis   *redis.Client
	Metrics *service.MetricsService

	Allocations *service.AllocationService
	Exams       *service.ExamScheduleService
	Halls       *service.HallService

	publisher broker.Publisher
	cacheRepo *repository.CacheRepository
	queue     *jobs.Queue
}

// New connects to Postgres and, when enabled, Redis and RabbitMQ, then wires the services.
func New(cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Redis:     redisClient,
		Metrics:   service.NewMetricsService(),
		publisher: newPublisher(cfg.Events, logger),
		cacheRepo: repository.NewCacheRepository(redisClient, logger),
	}
	a.wire(opts)
	return a, nil
}

func (a *App) wire(opts Options) {
	cfg := a.Config
	validate := validator.New()

	examRepo := repository.NewExamRepository(a.DB)
	hallRepo := repository.NewHallRepository(a.DB)
	studentRepo := repository.NewEligibleStudentRepository(a.DB)
	allocationRepo := repository.NewAllocationRepository(a.DB)

	var locker lock.Locker = lock.NewLocal(cfg.Allocation.LockWait)
	if a.Redis != nil {
		locker = lock.NewRedis(a.Redis, lockPrefix, cfg.Allocation.LockTTL, cfg.Allocation.LockWait, a.Logger)
	}

	cacheSvc := service.NewCacheService(a.cacheRepo, a.Metrics, cfg.Cache.TTL, a.Logger, cfg.Cache.Enabled && a.Redis != nil)

	a.Allocations = service.NewAllocationService(
		examRepo,
		hallRepo,
		studentRepo,
		allocationRepo,
		a.DB,
		locker,
		cacheSvc,
		a.Metrics,
		events.NewEmitter(a.publisher, a.Logger),
		validate,
		a.Logger,
		service.AllocationConfig{
			SeatsPerBench: cfg.Allocation.SeatsPerBench,
			RetryBackoff:  50 * time.Millisecond,
			CacheTTL:      cfg.Cache.TTL,
		},
	)

	if opts.Background {
		a.queue = jobs.NewQueue("allocation-regenerate", a.Allocations.HandleRegenerateJob, jobs.QueueConfig{
			Workers:    cfg.Allocation.Workers,
			MaxRetries: cfg.Allocation.WorkerRetries,
			RetryDelay: 2 * time.Second,
			Logger:     a.Logger,
			Retryable:  service.RetryableJobError,
		})
		a.Allocations.AttachQueue(a.queue)
	}

	a.Exams = service.NewExamScheduleService(
		examRepo,
		allocationRepo,
		a.Allocations,
		a.DB,
		locker,
		validate,
		a.Logger,
		cfg.Allocation.AutoRegenerate && opts.Background,
	)

	a.Halls = service.NewHallService(hallRepo, service.HallDefaults{
		Capacity:       cfg.Allocation.DefaultHallCapacity,
		BenchesPerHall: cfg.Allocation.BenchesPerHall,
		SeatsPerBench:  cfg.Allocation.SeatsPerBench,
	}, validate, a.Logger)
}

// Start launches background workers.
func (a *App) Start(ctx context.Context) {
	if a.queue != nil {
		a.queue.Start(ctx)
	}
}

// PingCache checks Redis. It is nil-safe when Redis is disabled.
func (a *App) PingCache(ctx context.Context) error {
	return a.cacheRepo.Ping(ctx)
}

// Close stops workers and releases every connection.
func (a *App) Close() error {
	if a.queue != nil {
		a.queue.Stop()
	}
	var errs []error
	if err := a.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.cacheRepo.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func newPublisher(cfg config.EventsConfig, logger *zap.Logger) broker.Publisher {
	if !cfg.Enabled {
		return broker.Nop{}
	}
	publisher, err := broker.NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange, logger)
	if err != nil {
		logger.Warn("allocation events disabled", zap.Error(err))
		return broker.Nop{}
	}
	return publisher
}
