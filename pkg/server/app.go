package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "VolumeScope/internal/domain/repository"
	"VolumeScope/internal/usecase"
	pkgcache "VolumeScope/pkg/cache"
	pkgch "VolumeScope/pkg/clickhouse"
	"VolumeScope/pkg/config"
	xhttp "VolumeScope/pkg/http"
	"VolumeScope/pkg/http/middleware"
	applogger "VolumeScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	collector *usecase.CandleCollector
	handler   xhttp.Handler
	chClient  *pkgch.Client
	journal   domrepo.SignalJournal
	cacheSvc  pkgcache.Service

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.CandleCollector,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	journal domrepo.SignalJournal,
	cacheSvc pkgcache.Service,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		handler:   handler,
		chClient:  chClient,
		journal:   journal,
		cacheSvc:  cacheSvc,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if a.cfg.Metrics.Enabled {
		a.httpServer.Echo().Use(echo.WrapMiddleware(middleware.Metrics(a.logger, 500*time.Millisecond)))
	}
	a.registerHealth()

	// Start collector (warmup + feed loops)
	if err := a.collector.Start(ctx); err != nil {
		a.logger.Error("collector start error", applogger.Error(err))
		return err
	}
	a.logger.Info("collector started", applogger.Strings("symbols", a.cfg.Feed.Symbols))

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) registerHealth() {
	e := a.httpServer.Echo()
	e.GET("/healthz", func(c echo.Context) error {
		if a.chClient != nil {
			if err := a.chClient.Health(c.Request().Context()); err != nil {
				return xhttp.AppErrorResponse(c, xhttp.InternalError("clickhouse unavailable").WithError(err))
			}
		}
		return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
	})
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// Stop collector (feed loops + pipeline + final flush)
	if err := a.collector.Shutdown(ctx); err != nil {
		a.logger.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	// Close signal journal (flushes Kafka writer when used)
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn("journal close error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
