package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestMetricsInitialized(t *testing.T) {
	Init()

	if CorrelationsTotal == nil || SuppressedActions == nil {
		t.Fatal("counter vectors not initialized")
	}
	if MacroAttributions == nil || DegradedWindows == nil || RecordsSaved == nil || FormsServed == nil {
		t.Fatal("counters not initialized")
	}
	if CorrelationDuration == nil {
		t.Fatal("CorrelationDuration histogram not initialized")
	}
	// second call must not panic on duplicate registration
	Init()
}

func TestObserveCorrelationCounts(t *testing.T) {
	Init()

	c := CorrelationsTotal.WithLabelValues("auto", "fatal")
	before := counterValue(t, c)
	ObserveCorrelation("auto", "fatal", 5*time.Millisecond)
	if got := counterValue(t, c); got != before+1 {
		t.Errorf("correlations counter = %v, want %v", got, before+1)
	}
}

func TestCountSuppressedByRule(t *testing.T) {
	Init()

	c := SuppressedActions.WithLabelValues("duckhunt")
	before := counterValue(t, c)
	CountSuppressed("duckhunt")
	CountSuppressed("duckhunt")
	if got := counterValue(t, c); got != before+2 {
		t.Errorf("suppressed counter = %v, want %v", got, before+2)
	}
}

func TestSimpleCounters(t *testing.T) {
	Init()

	tests := []struct {
		name    string
		counter prometheus.Counter
		fn      func()
	}{
		{"macro", MacroAttributions, CountMacroAttribution},
		{"degraded", DegradedWindows, CountDegradedWindow},
		{"saved", RecordsSaved, CountRecordSaved},
		{"forms", FormsServed, CountFormServed},
		{"pruned", HistoryPruned, func() { CountHistoryPruned(1); CountHistoryPruned(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counterValue(t, tt.counter)
			tt.fn()
			if got := counterValue(t, tt.counter); got != before+1 {
				t.Errorf("%s = %v, want %v", tt.name, got, before+1)
			}
		})
	}
}

func TestTimeFuncRecordsObservation(t *testing.T) {
	testHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_duration_seconds",
		Help:    "Test duration",
		Buckets: prometheus.DefBuckets,
	})

	executed := false
	duration := TimeFunc(testHistogram, func() {
		time.Sleep(10 * time.Millisecond)
		executed = true
	})

	if !executed {
		t.Error("TimeFunc did not execute provided function")
	}
	if duration < 10*time.Millisecond {
		t.Errorf("TimeFunc duration = %v, want >= 10ms", duration)
	}

	metric := &dto.Metric{}
	if err := testHistogram.Write(metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.GetHistogram().GetSampleCount() == 0 {
		t.Error("TimeFunc did not record observation in histogram")
	}
}

func TestCorrelationContext(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelation(ctx); got != "" {
		t.Errorf("GetCorrelation(empty) = %q", got)
	}
	ctx = WithCorrelation(ctx, "abc-123")
	if got := GetCorrelation(ctx); got != "abc-123" {
		t.Errorf("GetCorrelation = %q, want abc-123", got)
	}
	if LoggerWithCorr(ctx) == nil {
		t.Error("LoggerWithCorr returned nil")
	}
}
