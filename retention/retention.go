// Package retention trims the action history on a schedule. The last-record
// slots are never touched; only the append-only history is pruned.
package retention

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/CasualConversation/casualbotler/telemetry"
)

// Policy defines which history rows to keep.
type Policy struct {
	// KeepLastNDays: rows newer than this many days are kept (0 = disabled)
	KeepLastNDays int
	// KeepLastN: the N most recent rows are kept (0 = disabled)
	KeepLastN int
	// DryRun: count prunable rows but don't delete them
	DryRun bool
	// Interval: how often to run the job
	Interval time.Duration
}

// Enabled reports whether any keep rule is set.
func (p Policy) Enabled() bool { return p.KeepLastNDays > 0 || p.KeepLastN > 0 }

// Pruner removes history rows outside a policy.
type Pruner interface {
	PruneHistory(ctx context.Context, cutoff time.Time, keep int, dryRun bool) (int64, error)
}

// LoadPolicy reads the policy from RETENTION_KEEP_DAYS, RETENTION_KEEP_COUNT,
// RETENTION_DRY_RUN and RETENTION_INTERVAL. Malformed values are ignored.
func LoadPolicy() Policy {
	policy := Policy{Interval: 6 * time.Hour}

	if s := os.Getenv("RETENTION_KEEP_DAYS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			policy.KeepLastNDays = n
		}
	}
	if s := os.Getenv("RETENTION_KEEP_COUNT"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			policy.KeepLastN = n
		}
	}
	if os.Getenv("RETENTION_DRY_RUN") == "1" {
		policy.DryRun = true
	}
	if s := os.Getenv("RETENTION_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			policy.Interval = d
		}
	}
	return policy
}

// Start prunes immediately and then every policy.Interval until ctx is done.
// It returns at once when the policy is disabled.
func Start(ctx context.Context, p Pruner, policy Policy) {
	if !policy.Enabled() {
		slog.Info("retention job disabled (no policy configured)")
		return
	}
	slog.Info("retention job starting",
		slog.Int("keep_days", policy.KeepLastNDays),
		slog.Int("keep_count", policy.KeepLastN),
		slog.Bool("dry_run", policy.DryRun),
		slog.Duration("interval", policy.Interval))

	if _, err := RunOnce(ctx, p, policy, time.Now()); err != nil {
		slog.Warn("retention cleanup failed", slog.Any("err", err))
	}

	ticker := time.NewTicker(policy.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("retention job stopped")
			return
		case t := <-ticker.C:
			if _, err := RunOnce(ctx, p, policy, t); err != nil {
				slog.Warn("retention cleanup failed", slog.Any("err", err))
			}
		}
	}
}

// RunOnce performs a single cleanup cycle as of now and returns the number of
// rows removed, or that would be removed in dry-run mode.
func RunOnce(ctx context.Context, p Pruner, policy Policy, now time.Time) (int64, error) {
	logger := slog.Default().With(slog.String("component", "retention_cleanup"), slog.Bool("dry_run", policy.DryRun))

	var cutoff time.Time
	if policy.KeepLastNDays > 0 {
		cutoff = now.Add(-time.Duration(policy.KeepLastNDays) * 24 * time.Hour)
	}
	n, err := p.PruneHistory(ctx, cutoff, policy.KeepLastN, policy.DryRun)
	if err != nil {
		return 0, err
	}
	if policy.DryRun {
		logger.Info("retention dry run", slog.Int64("prunable", n))
		return n, nil
	}
	telemetry.CountHistoryPruned(n)
	logger.Info("retention cleanup completed", slog.Int64("pruned", n))
	return n, nil
}
