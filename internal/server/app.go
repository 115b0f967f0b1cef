// Package server initializes and runs the time-capsule application server.
// It opens the database, builds the storage/notifier backends and the
// services on top of them, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echi/timecapsule/internal/logging"
	"github.com/echi/timecapsule/internal/server/config"
	"github.com/echi/timecapsule/internal/server/db"
	"github.com/echi/timecapsule/internal/server/httpapi"
	"github.com/echi/timecapsule/internal/server/notifier"
	"github.com/echi/timecapsule/internal/server/repositories/capsules"
	"github.com/echi/timecapsule/internal/server/services"
	"github.com/echi/timecapsule/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *http.Server
	close  func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	conn, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	blobs, err := storage.NewS3Storage(ctx, storage.S3Options{
		User:         cfg.S3RootUser,
		Password:     cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("blob storage init error: %w", err)
	}

	mailer := notifier.NewResendNotifier(notifier.ResendOptions{
		Endpoint: cfg.EmailEndpoint,
		APIKey:   cfg.EmailAPIKey,
		From:     cfg.EmailFrom,
		Timeout:  cfg.EmailTimeout,
	})

	repo := capsules.NewPostgresRepository(conn)

	capsuleService := services.NewCapsuleService(repo, blobs, loc, logger)
	sweepService := services.NewSweepService(repo, mailer, cfg.BaseURL, loc, cfg.SweepParallelism, logger)

	api := httpapi.NewAPI(capsuleService, sweepService, cfg.CronSecret, loc, logger)

	return &App{
		config: cfg,
		logger: logger,
		server: httpapi.NewServer(cfg.EndpointAddr, api),
		close:  conn.Close,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := httpapi.Run(ctx, app.server, app.logger); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if err := app.close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
