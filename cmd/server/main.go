package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/member-directory/adapters/event"
	httpAdapter "github.com/khoahotran/member-directory/adapters/http"
	"github.com/khoahotran/member-directory/adapters/media_storage"
	"github.com/khoahotran/member-directory/adapters/persistence"
	"github.com/khoahotran/member-directory/internal/application/service"
	achievementUC "github.com/khoahotran/member-directory/internal/application/usecase/achievement"
	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	institutionUC "github.com/khoahotran/member-directory/internal/application/usecase/institution"
	profileUC "github.com/khoahotran/member-directory/internal/application/usecase/profile"
	"github.com/khoahotran/member-directory/internal/config"
	"github.com/khoahotran/member-directory/pkg/logger"
	"github.com/khoahotran/member-directory/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting member-directory API server...", zap.String("env", cfg.App.Env))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewTracerProvider(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracing", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", err)
		}
	}()

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	checks := map[string]httpAdapter.HealthCheck{"postgres": dbPool.Ping}

	var locker service.Locker
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Redis", err)
		}
		defer redisClient.Close()
		locker = persistence.NewRedisLocker(redisClient)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		appLogger.Warn("Redis not configured, slug allocation relies on the unique index only")
	}

	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		appLogger.Warn("Kafka not configured, profile events are not published")
	}

	store, err := media_storage.NewBlobStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize blob store", err)
	}

	// Repositories
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	institutionRepo := persistence.NewPostgresInstitutionRepo(dbPool, appLogger)
	achievementRepo := persistence.NewPostgresAchievementRepo(dbPool, appLogger)

	// Services
	uploader := attachment.NewUploader(store, cfg.Storage.Prefix, cfg.Upload.Concurrency, appLogger)
	slugs := profileUC.NewSlugAllocator(profileRepo, locker, profileUC.DefaultLockTTL, appLogger)
	notifier := profileUC.NewNotifier(publisher, cfg.Upload.CleanupOrphans, appLogger)
	limits := profileUC.DecodeLimits{MaxCertificates: cfg.Upload.MaxCertificates}

	// Use Cases
	submitUC := profileUC.NewSubmitProfileUseCase(profileRepo, uploader, slugs, notifier, limits, appLogger)
	updateUC := profileUC.NewUpdateProfileUseCase(profileRepo, uploader, slugs, notifier, limits, appLogger)
	deleteUC := profileUC.NewDeleteProfileUseCase(profileRepo, notifier, appLogger)
	getUC := profileUC.NewGetProfileUseCase(profileRepo)
	listUC := profileUC.NewListProfilesUseCase(profileRepo)
	exportUC := profileUC.NewExportProfilesUseCase(profileRepo, appLogger)
	institutionUseCase := institutionUC.NewInstitutionUseCase(institutionRepo, profileRepo, uploader, appLogger)
	achievementUseCase := achievementUC.NewAchievementUseCase(achievementRepo, uploader, cfg.Upload.MaxAchievementImages, appLogger)

	// HTTP
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Members:            httpAdapter.NewMemberHandler(submitUC, updateUC, deleteUC, getUC, listUC, exportUC),
		Institutions:       httpAdapter.NewInstitutionHandler(institutionUseCase),
		Achievements:       httpAdapter.NewAchievementHandler(achievementUseCase),
		Logger:             appLogger,
		AllowedOrigins:     cfg.App.AllowedOrigins,
		RequestTimeout:     cfg.App.RequestTimeout,
		MaxMultipartMemory: cfg.Upload.MaxMemoryBytes,
		Checks:             checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", err)
		return
	}
	appLogger.Info("Server stopped")
}
