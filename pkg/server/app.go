package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CountrySwipe/internal/usecase"
	"CountrySwipe/pkg/config"
	xhttp "CountrySwipe/pkg/http"
	applogger "CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/tracing"
)

// Session is the part of the swipe session the app drives at start.
type Session interface {
	LoadFeed(ctx context.Context) (usecase.DeckView, error)
}

// Runner is a set of background loops started with the app.
type Runner interface {
	Start(ctx context.Context)
	Stop()
}

// Closer releases one infrastructure client on shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	session    Session
	pollers    Runner
	bg         *usecase.Background
	tracer     *tracing.Provider
	closers    []Closer
}

// New creates a new App instance with all dependencies. Closers run in order on shutdown.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	session Session,
	pollers Runner,
	bg *usecase.Background,
	tracer *tracing.Provider,
	closers ...Closer,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		session:    session,
		pollers:    pollers,
		bg:         bg,
		tracer:     tracer,
		closers:    closers,
	}
}

// Run starts the application and blocks until ctx ends or an interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loadCtx, cancel := context.WithTimeout(ctx, a.cfg.News.Timeout)
	view, err := a.session.LoadFeed(loadCtx)
	cancel()
	if err != nil {
		a.log.Warn("initial news load failed, deck starts empty", applogger.Error(err))
	} else {
		a.log.Info("deck loaded", applogger.Int("cards", view.Total), applogger.Strings("countries", view.Countries))
	}

	a.pollers.Start(ctx)
	a.log.Info("pollers started")

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		a.pollers.Stop()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	a.pollers.Stop()

	// in-flight trades and collateral moves observe the cancelled session context
	a.bg.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// flush aggregated error logs while the producer is still open
	a.log.RemoveCollector()

	for _, c := range a.closers {
		if c.Close == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("component", c.Name), applogger.Error(err))
		}
	}

	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFlush()
	if err := a.tracer.Shutdown(flushCtx); err != nil {
		a.log.Warn("tracing shutdown error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
