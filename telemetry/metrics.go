// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CorrelationsTotal *prometheus.CounterVec // labels: mode, outcome
	SuppressedActions *prometheus.CounterVec // labels: rule
	MacroAttributions prometheus.Counter
	DegradedWindows   prometheus.Counter
	RecordsSaved      prometheus.Counter
	FormsServed       prometheus.Counter
	HistoryPruned     prometheus.Counter

	// Histograms (seconds)
	CorrelationDuration prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CorrelationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "banlog_correlations_total", Help: "Correlation runs by mode and outcome"}, []string{"mode", "outcome"})
		SuppressedActions = promauto.NewCounterVec(prometheus.CounterOpts{Name: "banlog_suppressed_actions_total", Help: "Actions discarded as bot noise, by rule"}, []string{"rule"})
		MacroAttributions = promauto.NewCounter(prometheus.CounterOpts{Name: "banlog_macro_attributions_total", Help: "Banner bot actions credited to a human operator via a macro command"})
		DegradedWindows = promauto.NewCounter(prometheus.CounterOpts{Name: "banlog_degraded_windows_total", Help: "Transcripts cut without finding the user's join line"})
		RecordsSaved = promauto.NewCounter(prometheus.CounterOpts{Name: "banlog_records_saved_total", Help: "Action records written to the last-record slot"})
		FormsServed = promauto.NewCounter(prometheus.CounterOpts{Name: "banlog_forms_served_total", Help: "Prefilled form links served"})
		HistoryPruned = promauto.NewCounter(prometheus.CounterOpts{Name: "banlog_history_pruned_total", Help: "History rows removed by the retention job"})
		CorrelationDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "banlog_correlation_duration_seconds", Help: "Correlation duration seconds including transcript read", Buckets: prometheus.DefBuckets})
	})
}

// ObserveCorrelation counts one run and records its duration. No-op before Init.
func ObserveCorrelation(mode, outcome string, d time.Duration) {
	if CorrelationsTotal != nil {
		CorrelationsTotal.WithLabelValues(mode, outcome).Inc()
	}
	if CorrelationDuration != nil {
		CorrelationDuration.Observe(d.Seconds())
	}
}

// CountSuppressed records an action discarded by the named rule.
func CountSuppressed(rule string) {
	if SuppressedActions != nil {
		SuppressedActions.WithLabelValues(rule).Inc()
	}
}

// CountMacroAttribution records an action credited through a macro command.
func CountMacroAttribution() { inc(MacroAttributions) }

// CountDegradedWindow records a transcript cut without a join line.
func CountDegradedWindow() { inc(DegradedWindows) }

// CountRecordSaved records a write to the last-record slot.
func CountRecordSaved() { inc(RecordsSaved) }

// CountFormServed records a served form link.
func CountFormServed() { inc(FormsServed) }

// CountHistoryPruned records n history rows removed by retention.
func CountHistoryPruned(n int64) {
	if HistoryPruned != nil && n > 0 {
		HistoryPruned.Add(float64(n))
	}
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context carrying the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
