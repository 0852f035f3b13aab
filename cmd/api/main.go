package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"mangareader/internal/adapter/api"
	"mangareader/internal/adapter/api/handler"
	apimiddleware "mangareader/internal/adapter/api/middleware"
	"mangareader/internal/adapter/api/router"
	"mangareader/internal/adapter/repository"
	"mangareader/internal/infrastructure/cache"
	"mangareader/internal/infrastructure/firebase"
	"mangareader/internal/infrastructure/ratelimit"
	"mangareader/internal/infrastructure/storage"
	"mangareader/internal/infrastructure/websocket"
	"mangareader/internal/usecase"
	"mangareader/pkg/config"
	"mangareader/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Environment)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("Server stopped: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt, err := firebase.CredentialsOption(cfg.FirebaseCredentialsJSON, cfg.FirebaseCredentialsPath)
	if err != nil {
		return err
	}

	app, err := firebase.NewApp(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		return err
	}
	defer app.Close()

	firebaseAuthClient, err := firebase.NewFirebaseAuthClient(ctx, app.Auth, cfg.FirebaseApiKey)
	if err != nil {
		return err
	}
	if cfg.FirebaseApiKey == "" {
		logger.Warn("FIREBASE_API_KEY is not set: password sign-in and reset are disabled")
	}

	healthChecks := map[string]handler.HealthCheck{
		"firestore": app.PingFirestore,
	}

	var images usecase.ImageStore
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, app.Option)
		if err != nil {
			return err
		}
		defer storageClient.Close()
		images = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET is not set: avatar and page uploads are disabled")
	}

	var catalogCache usecase.CatalogCache = cache.NoopCache{}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		catalogCache = cache.NewRedisCache(rdb, cfg.CatalogCacheTTL, cfg.ViewDedupWindow)
		healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	userRepo := repository.NewFirestoreUserRepository(app.Firestore)
	mangaRepo := repository.NewFirestoreMangaRepository(app.Firestore)
	commentRepo := repository.NewFirestoreCommentRepository(app.Firestore)
	notificationRepo := repository.NewFirestoreNotificationRepository(app.Firestore)
	ratingRepo := repository.NewFirestoreRatingRepository(app.Firestore)

	submitLimiter := ratelimit.NewRateLimiter(cfg.SubmitRatePerMinute, cfg.SubmitBurst)
	submitLimiter.StartCleanupRoutine(ctx)
	authLimiter := ratelimit.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthBurst)
	authLimiter.StartCleanupRoutine(ctx)

	liveUseCase := usecase.NewLiveUseCase(commentRepo, notificationRepo)
	wsManager := websocket.NewManager(liveUseCase)
	wsManager.Start(ctx)

	useCases := handler.UseCases{
		Auth:         usecase.NewAuthUseCase(userRepo, firebaseAuthClient, wsManager),
		User:         usecase.NewUserUseCase(userRepo, firebaseAuthClient, images),
		Catalog:      usecase.NewCatalogUseCase(mangaRepo, ratingRepo, catalogCache).WithImages(images),
		Comment:      usecase.NewCommentUseCase(commentRepo, userRepo, notificationRepo, submitLimiter),
		Notification: usecase.NewNotificationUseCase(notificationRepo),
		Rating:       usecase.NewRatingUseCase(ratingRepo, mangaRepo, catalogCache, submitLimiter),
	}
	handlers := handler.Setup(useCases, handler.NewHealthHandler(healthChecks))

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Validator = api.NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(apimiddleware.RequestLogger())
	e.Use(middleware.CORS())

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	router.Setup(e, handlers, authMiddleware, adminMiddleware, authLimiter)
	router.SetupWebSocketRouter(e, handler.NewWebSocketHandler(wsManager, authMiddleware, cfg.AllowedOrigins))
	router.SetupDevRouter(e, cfg.Environment, handler.NewDevTokenHandler(firebaseAuthClient, userRepo))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
