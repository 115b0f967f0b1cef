// Package httpapi exposes the service's HTTP surfaces: capsule creation,
// the time-gated capsule view and the cron-triggered delivery sweep.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/echi/timecapsule/internal/logging"
	"github.com/echi/timecapsule/internal/server/models"
	"github.com/echi/timecapsule/internal/server/services"
)

// CapsuleOperations is the slice of the capsule service the API needs.
type CapsuleOperations interface {
	Create(ctx context.Context, now time.Time, req services.CreateRequest) (string, error)
	View(ctx context.Context, id string, now time.Time) (services.ViewResult, error)
}

// SweepRunner runs one delivery sweep.
type SweepRunner interface {
	Run(ctx context.Context, now time.Time) (*models.SweepReport, error)
}

// API holds the HTTP handlers and their dependencies.
type API struct {
	capsules   CapsuleOperations
	sweep      SweepRunner
	logger     logging.Logger
	cronSecret string
	loc        *time.Location

	// now is the wall clock; injectable so handler tests can pin dates.
	now func() time.Time
}

func NewAPI(capsules CapsuleOperations, sweep SweepRunner, cronSecret string, loc *time.Location, logger logging.Logger) *API {
	return &API{
		capsules:   capsules,
		sweep:      sweep,
		logger:     logger.With("module", "httpapi"),
		cronSecret: cronSecret,
		loc:        loc,
		now:        time.Now,
	}
}

// Routes builds the route table using Go 1.22 method patterns.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/capsules", a.handleCreateCapsule)
	mux.HandleFunc("GET /v1/capsules/{id}", a.handleViewCapsule)
	mux.Handle("POST /v1/sweep", a.withCronAuth(http.HandlerFunc(a.handleSweep)))

	return mux
}

// NewServer wraps the API routes into an http.Server bound to addr.
func NewServer(addr string, a *API) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: a.Routes(),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
