package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"renthub/pkg/config"
	"renthub/pkg/contracts"
	"renthub/pkg/events"
	"renthub/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

const idempotencyHeader = "X-Idempotency-Key"

// Application owns the HTTP server, its middleware chain, and the
// background resources that need an orderly shutdown.
type Application struct {
	cfg              *config.Config
	router           *httprouter.Router
	server           *http.Server
	limiter          *middleware.UserRateLimiter
	idempotencyStore *middleware.InMemoryIdempotencyStore
	publisher        events.Publisher
}

func New(cfg *config.Config, publisher events.Publisher, handlers ...contracts.Handler) *Application {
	router := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	limiter := middleware.NewUserRateLimiter(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		middleware.DefaultUserExtractor,
		cfg.Log,
	)
	idempotencyStore := middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)

	// Outermost first. Recovery wraps everything so a panic in any
	// later layer still becomes a 500; identity runs before rate
	// limiting so limits key on the caller rather than the connection.
	var handler http.Handler = router
	handler = middleware.Idempotency(idempotencyStore, idempotencyHeader)(handler)
	handler = middleware.RequestTimeout(cfg.RequestTimeout)(handler)
	handler = middleware.UserRateLimit(limiter)(handler)
	handler = middleware.WithIdentity(handler)
	handler = middleware.ContentTypeValidation(cfg.Log)(handler)
	handler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(handler)
	handler = middleware.RequestLogging(cfg.Log)(handler)
	handler = middleware.Recovery(cfg.Log)(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Application{
		cfg:              cfg,
		router:           router,
		server:           server,
		limiter:          limiter,
		idempotencyStore: idempotencyStore,
		publisher:        publisher,
	}
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests and
// releases background resources.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.cfg.Log.Info("HTTP server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.shutdownResources()
		return err
	case sig := <-stop:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("HTTP server shutdown failed", "error", err)
	}

	a.shutdownResources()
	a.cfg.Log.Info("Shutdown complete")
	return nil
}

func (a *Application) shutdownResources() {
	a.limiter.Stop()
	a.idempotencyStore.Stop()
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.cfg.Log.Error("Event publisher close failed", "error", err)
		}
	}
	a.cfg.GracefulShutdown()
}
