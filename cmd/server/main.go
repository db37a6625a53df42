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

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"vendex/internal/config"
	"vendex/internal/extraction"
	"vendex/internal/handler"
	"vendex/internal/queue"
	"vendex/internal/repository/postgres"
	"vendex/internal/router"
	"vendex/internal/service"
	s3storage "vendex/internal/storage/s3"
	"vendex/internal/taskctx"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	// Initialize repositories
	vendorRepo := postgres.NewVendorRepo(db)
	batchRepo := postgres.NewBatchRepo(db)
	productRepo := postgres.NewProductRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage and external clients
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	extractionClient := extraction.NewHTTPClient(&cfg.Extraction)
	contextStore := taskctx.NewRedisStore(rdb)

	// Initialize queue infrastructure
	dispatcher := queue.NewDispatcher(redisOpt, cfg.Queue)
	scheduler := queue.NewScheduler(redisOpt, cfg.Batching, cfg.Queue)

	// Initialize services
	batchingSvc := service.NewBatchingService(vendorRepo, batchRepo, dispatcher, scheduler, cfg.Batching)
	submissionSvc := service.NewSubmissionService(batchRepo, contextStore, s3Client, extractionClient, cfg)
	callbackSvc := service.NewCallbackService(contextStore, vendorRepo, batchRepo, productRepo)
	statsSvc := service.NewStatsService(statsRepo, dispatcher)
	batchReader := service.NewBatchReader(batchRepo)
	vendorReader := service.NewVendorReader(vendorRepo)

	// Initialize handlers
	callbackH := handler.NewCallbackHandler(callbackSvc)
	batchH := handler.NewBatchHandler(batchingSvc, batchReader)
	vendorH := handler.NewVendorHandler(vendorReader)
	schedulerH := handler.NewSchedulerHandler(batchingSvc, scheduler)
	statsH := handler.NewStatsHandler(statsSvc)
	healthH := handler.NewHealthHandler(db, rdb)

	// Submission workers consume batch jobs from the priority queues.
	submissionSrv, submissionMux := queue.NewSubmissionServer(redisOpt, cfg.Queue, submissionSvc)
	if err := submissionSrv.Start(submissionMux); err != nil {
		return fmt.Errorf("failed to start submission workers: %w", err)
	}

	// A separate single-worker server runs the scheduled passes, so a pass
	// never overlaps another.
	schedulerSrv, schedulerMux := queue.NewSchedulerServer(redisOpt, batchingSvc, batchingSvc)
	if err := schedulerSrv.Start(schedulerMux); err != nil {
		return fmt.Errorf("failed to start scheduler worker: %w", err)
	}

	if err := scheduler.Initialize(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Setup router and HTTP server
	r := router.Setup(callbackH, batchH, vendorH, schedulerH, statsH, healthH)
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	// Stop producing new work first, then drain workers, then the HTTP
	// server so late callbacks still land.
	scheduler.Shutdown()
	submissionSrv.Shutdown()
	schedulerSrv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Printf("Shutdown complete")
	return nil
}
