// Package server exposes the HTTP API: health, metrics, log correlation and the
// last-record slot used to prefill the moderation form. It injects correlation
// IDs into request contexts for consistent logging and tracing.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CasualConversation/casualbotler/config"
	"github.com/CasualConversation/casualbotler/db"
	"github.com/CasualConversation/casualbotler/modaction"
	"github.com/CasualConversation/casualbotler/telemetry"
)

// RecordStore keeps the last correlated record per session.
type RecordStore interface {
	SaveLast(ctx context.Context, session string, rec modaction.Record, corr string) error
	Last(ctx context.Context, session string) (db.Entry, error)
	History(ctx context.Context, limit int) ([]db.Entry, error)
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers run against.
type Deps struct {
	Correlator *modaction.Correlator
	Store      RecordStore
	Config     *config.Config
}

// NewMux returns the HTTP handler with all routes.
// The provided context bounds the rate limiter cleanup goroutine.
func NewMux(ctx context.Context, deps Deps) http.Handler {
	authCfg := newAuthConfig(deps.Config)
	limiter := newIPRateLimiter(ctx, newRateLimiterConfig(deps.Config))
	handlers := NewHandlers(deps)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handlers.HandleHealthz)
	mux.HandleFunc("/readyz", handlers.HandleReadyz)

	// moderator endpoints; the bot only answered these in admin channels
	mux.Handle("/log", adminAuth(rateLimitMiddleware(http.HandlerFunc(handlers.HandleLog), limiter), authCfg))
	mux.Handle("/form", adminAuth(http.HandlerFunc(handlers.HandleForm), authCfg))
	mux.Handle("/records/last", adminAuth(http.HandlerFunc(handlers.HandleLastRecord), authCfg))
	mux.Handle("/records/history", adminAuth(http.HandlerFunc(handlers.HandleHistory), authCfg))

	return withCorrelation(mux)
}

// withCorrelation injects a correlation id, starts a server span and records
// the response status on it.
func withCorrelation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reuse corr header if provided else generate
		corr := r.Header.Get("X-Correlation-ID")
		if corr == "" {
			corr = uuid.New().String()
		}
		ctx := telemetry.WithCorrelation(r.Context(), corr)
		w.Header().Set("X-Correlation-ID", corr)

		ctx, span := telemetry.StartSpan(ctx, "http-server", r.Method+" "+r.URL.Path,
			telemetry.HTTPMethodAttr(r.Method),
			telemetry.HTTPRouteAttr(r.URL.Path),
		)
		defer span.End()

		telemetry.LoggerWithCorr(ctx).Debug("request start", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("component", "http"))

		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		telemetry.SetSpanHTTPStatus(span, rec.statusCode)
	})
}

// statusRecorder wraps ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Start runs the HTTP server and shuts down gracefully on context cancellation.
func Start(ctx context.Context, deps Deps, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewMux(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		// WithoutCancel keeps context values while letting shutdown finish
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", slog.Any("err", err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server error", slog.Any("err", err))
		return err
	}
	return nil
}
