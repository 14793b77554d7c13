// Package server initializes and runs the application server. It selects the
// user store and blob storage backends from configuration, wires the services,
// and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avolkov/filevault/internal/common"
	"github.com/avolkov/filevault/internal/logging"
	"github.com/avolkov/filevault/internal/server/auth"
	"github.com/avolkov/filevault/internal/server/config"
	"github.com/avolkov/filevault/internal/server/httpapi"
	"github.com/avolkov/filevault/internal/server/services"
	"github.com/avolkov/filevault/internal/server/shared/db"
	"github.com/avolkov/filevault/internal/server/storage"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repoManager db.RepositoryManager
	userService *services.UserService
	fileService *services.FileService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout)

	rm, err := newRepositoryManager(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	secret := []byte(cfg.SecretKey)
	if len(secret) == 0 {
		secret = common.GenerateRandByteArray(32)
		logger.Warn(ctx, "no secret key configured, generated a random one; tokens will not survive a restart")
	}

	issuer := auth.NewTokenIssuer(secret, cfg.AccessTokenValidityDuration)
	hasher := auth.NewPBKDF2Hasher()

	us, err := services.NewUserService(rm.Users(), hasher, issuer)
	if err != nil {
		return nil, fmt.Errorf("user service init error: %w", err)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	return &App{
		config:      cfg,
		logger:      logger,
		repoManager: rm,
		userService: us,
		fileService: services.NewFileService(blobs),
	}, nil
}

func newRepositoryManager(ctx context.Context, cfg *config.Config, logger logging.Logger) (db.RepositoryManager, error) {
	if cfg.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, using in-memory user store")
		return db.NewInMemoryRepositoryManager(), nil
	}
	return db.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendLocal:
		return storage.NewLocalStore(cfg.UploadDir)
	case config.StorageBackendS3:
		return storage.NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.fileService, app.config.CORSAllowedOrigins, app.config.RequestTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app",
		"addr", app.config.EndpointAddrHTTP,
		"storage", app.config.StorageBackend,
	)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repoManager.Close(); err != nil {
		app.logger.Error(ctx, "error closing repository manager", "error", err)
	}
}
