package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delivery-report-service/internal/archive"
	"delivery-report-service/internal/cache"
	"delivery-report-service/internal/config"
	"delivery-report-service/internal/db"
	httpapi "delivery-report-service/internal/http"
	"delivery-report-service/internal/http/handlers"
	"delivery-report-service/internal/logger"
	"delivery-report-service/internal/queue"
	"delivery-report-service/internal/report"
	"delivery-report-service/internal/storage"
	"delivery-report-service/internal/timewindow"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, err := timewindow.New(cfg.BusinessTZOffset, cfg.HistoryFloor)
	if err != nil {
		log.Fatal("invalid business calendar", zap.String("offset", cfg.BusinessTZOffset), zap.String("floor", cfg.HistoryFloor), zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal("database migration failed", zap.Error(err))
		}
		log.Info("database migrations applied")
	}

	store := db.NewReportStore(pool)
	h := &handlers.Handler{
		Logger:    log,
		Config:    cfg,
		Reports:   report.NewAssembler(store),
		Workbooks: report.NewPartitioner(store, resolver),
		Cache:     cache.NewMemory(),
	}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable; using in-process report cache", zap.Error(err))
		} else {
			defer rc.Close()
			h.Cache = rc
			log.Info("redis report cache enabled")
		}
	}

	if cfg.ObjectStoreEnabled() {
		objects, err := storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
		})
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("object store init failed", zap.Error(err))
			}
			log.Warn("object store init failed; workbook archiving disabled", zap.Error(err))
		} else {
			h.Archiver = archive.New(h.Workbooks, objects)
			h.Archives = objects
		}
	} else {
		log.Info("workbook archiving disabled (OBJECT_STORE_ENDPOINT is empty)")
	}

	if cfg.RabbitMQURL != "" {
		qc := connectQueue(log, cfg)
		if qc != nil {
			defer qc.Close()
			h.Queue = qc
			startArchiveWorker(ctx, log, cfg, qc, h.Archiver)
		}
	} else {
		log.Info("archive queue disabled (RABBITMQ_URL is empty)")
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("report api ready", zap.String("base", "/api/admin/reports"))
		log.Info("report service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

// connectQueue returns nil when RabbitMQ is unreachable outside production.
func connectQueue(log *zap.Logger, cfg config.Config) *queue.Client {
	qc, err := queue.New(cfg.RabbitMQURL)
	if err != nil {
		if cfg.Env == "production" {
			log.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		log.Warn("rabbitmq connection failed; archives run inline", zap.Error(err))
		return nil
	}
	if err := queue.EnsureWorkbookArchiveTopology(qc); err != nil {
		if cfg.Env == "production" {
			log.Fatal("rabbitmq workbook archive topology failed", zap.Error(err))
		}
		log.Warn("rabbitmq workbook archive topology failed; archives run inline", zap.Error(err))
		_ = qc.Close()
		return nil
	}
	log.Info("rabbitmq enabled", zap.String("queue", queue.WorkbookQueue))
	return qc
}

func startArchiveWorker(ctx context.Context, log *zap.Logger, cfg config.Config, qc *queue.Client, archiver *archive.Archiver) {
	if cfg.RabbitMQWorkerMode != "daemon" {
		log.Info("archive worker disabled", zap.String("mode", cfg.RabbitMQWorkerMode))
		return
	}
	if archiver == nil {
		log.Warn("archive worker disabled; object store is not configured")
		return
	}

	log.Info("archive worker enabled", zap.String("mode", "daemon"))
	go func() {
		err := qc.ConsumeWithRetry(ctx, queue.WorkbookQueue, queue.WorkbookArchiveHandler(archiver, log), int(cfg.ArchiveJobRetries), cfg.ArchiveJobBackoff)
		if err != nil && ctx.Err() == nil {
			log.Error("archive consumer stopped", zap.Error(err))
		}
	}()
}
