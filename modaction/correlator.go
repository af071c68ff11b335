package modaction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/CasualConversation/casualbotler/telemetry"
)

// Source reads the newest n lines of a channel log, oldest first.
type Source interface {
	ReadTail(ctx context.Context, channel string, n int) ([]string, error)
}

// Mode selects how much work Run does.
type Mode string

const (
	// ModeRecent returns the last Lines lines as is, with a best-effort record.
	ModeRecent Mode = "recent"
	// ModeAuto locates the action and cuts the transcript around it.
	ModeAuto Mode = "auto"
)

// Request limits, inclusive.
const (
	MaxLines          = 4000
	MaxFollowingLines = 100
	MaxSkip           = 10
)

// Request describes one correlation. Zero limits are replaced by the
// defaults from DefaultRequest before validation.
type Request struct {
	Channel string `json:"channel"`
	Mode    Mode   `json:"mode"`
	// Lines is the transcript length in recent mode.
	Lines int `json:"lines"`
	// MaxAutoLines bounds how far back auto mode searches.
	MaxAutoLines int `json:"max_auto_lines"`
	// MaxLogAutoLines bounds the returned transcript in auto mode.
	MaxLogAutoLines int `json:"max_log_auto_lines"`
	// FollowingLines are kept after the action line in auto mode.
	FollowingLines int `json:"following_lines"`
	// Skip selects the (Skip+1)-th most recent action.
	Skip int `json:"skip"`
}

// DefaultRequest returns an auto-mode request with the bot's usual limits.
func DefaultRequest(channel string) Request {
	return Request{
		Channel:         channel,
		Mode:            ModeAuto,
		Lines:           100,
		MaxAutoLines:    MaxLines,
		MaxLogAutoLines: 400,
		FollowingLines:  2,
	}
}

func (r Request) withDefaults() Request {
	def := DefaultRequest(r.Channel)
	if r.Mode == "" {
		r.Mode = def.Mode
	}
	if r.Lines == 0 {
		r.Lines = def.Lines
	}
	if r.MaxAutoLines == 0 {
		r.MaxAutoLines = def.MaxAutoLines
	}
	if r.MaxLogAutoLines == 0 {
		r.MaxLogAutoLines = def.MaxLogAutoLines
	}
	r.Channel = strings.ToLower(r.Channel)
	return r
}

// Validate checks the request limits.
func (r Request) Validate() error {
	switch {
	case r.Mode != ModeRecent && r.Mode != ModeAuto:
		return fmt.Errorf("%w: mode must be %q or %q", ErrInvalidRequest, ModeRecent, ModeAuto)
	case r.Channel == "":
		return fmt.Errorf("%w: channel is required", ErrInvalidRequest)
	case r.Lines < 1 || r.Lines > MaxLines:
		return fmt.Errorf("%w: lines must be in [1-%d]", ErrInvalidRequest, MaxLines)
	case r.MaxAutoLines < 1 || r.MaxAutoLines > MaxLines:
		return fmt.Errorf("%w: max auto lines must be in [1-%d]", ErrInvalidRequest, MaxLines)
	case r.MaxLogAutoLines < 1 || r.MaxLogAutoLines > MaxLines:
		return fmt.Errorf("%w: max log auto lines must be in [1-%d]", ErrInvalidRequest, MaxLines)
	case r.FollowingLines < 0 || r.FollowingLines > MaxFollowingLines:
		return fmt.Errorf("%w: following lines must be in [0-%d]", ErrInvalidRequest, MaxFollowingLines)
	case r.Skip < 0 || r.Skip > MaxSkip:
		return fmt.Errorf("%w: skip must be in [0-%d]", ErrInvalidRequest, MaxSkip)
	}
	return nil
}

// Config holds the tables and knobs a Correlator runs with.
type Config struct {
	Rules Rules
	// Channels maps each loggable channel (lower case, with #) to the name
	// written into records. An empty map accepts any channel.
	Channels       map[string]string
	BacktrackLines int
	DurationStyle  DurationStyle
}

// Correlation is the outcome of one Run.
type Correlation struct {
	Record Record `json:"record"`
	// Found is false in recent mode when no action was in the transcript.
	Found       bool `json:"found"`
	ActionIndex int  `json:"action_index"`
	// Start and End bound the returned lines within the transcript read.
	Start int `json:"start"`
	End   int `json:"end"`
	// Lines is the prettified transcript window.
	Lines   []string `json:"lines"`
	Notices []string `json:"notices,omitempty"`
	// Degraded is set when the user's join line was not found.
	Degraded bool `json:"degraded"`
}

// Transcript joins the window into one text block.
func (c *Correlation) Transcript() string { return strings.Join(c.Lines, "\n") }

// Correlator runs the pipeline against a transcript source.
type Correlator struct {
	src Source
	cfg Config
}

// NewCorrelator returns a Correlator reading from src.
func NewCorrelator(src Source, cfg Config) *Correlator {
	if cfg.BacktrackLines <= 0 {
		cfg.BacktrackLines = DefaultBacktrackLines
	}
	return &Correlator{src: src, cfg: cfg}
}

// Run executes req. In auto mode ErrNoAction and ErrIncompleteIdentity are
// returned as errors; a missing join line only degrades the result.
func (c *Correlator) Run(ctx context.Context, req Request) (*Correlation, error) {
	req = req.withDefaults()
	ctx, span := telemetry.StartSpan(ctx, "modaction", "correlate",
		attribute.String("channel", req.Channel),
		attribute.String("mode", string(req.Mode)),
		attribute.Int("skip", req.Skip),
	)
	defer span.End()
	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "correlator"), slog.String("channel", req.Channel))

	start := time.Now()
	out, err := c.run(ctx, logger, req)
	telemetry.ObserveCorrelation(string(req.Mode), Classify(err).String(), time.Since(start))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return out, nil
}

func (c *Correlator) run(ctx context.Context, logger *slog.Logger, req Request) (*Correlation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	display, err := c.displayName(req.Channel)
	if err != nil {
		return nil, err
	}

	n := req.MaxAutoLines
	if req.Mode == ModeRecent {
		n = req.Lines
	}
	lines, err := c.src.ReadTail(ctx, req.Channel, n)
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", req.Channel, err)
	}

	out := &Correlation{ActionIndex: -1, End: len(lines)}
	idx, found := locate(lines, req.Skip, c.cfg.Rules, telemetry.CountSuppressed)
	if !found && req.Mode == ModeAuto {
		return nil, fmt.Errorf("%w in the past %d lines", ErrNoAction, n)
	}
	if found {
		rec, err := c.identify(lines, idx)
		if err != nil {
			return nil, err
		}
		out.Record, out.Found, out.ActionIndex = rec, true, idx
		logger.Debug("action identified",
			slog.Int("index", idx),
			slog.String("result", string(rec.Result)),
			slog.String("operator", rec.Operator))
	}

	if req.Mode == ModeAuto {
		if !out.Record.Complete() {
			return nil, fmt.Errorf("%w: line %d", ErrIncompleteIdentity, idx)
		}
		out.End = min(len(lines), idx+req.FollowingLines+1)
		if join, ok := FindJoin(lines[:idx], out.Record.Host); ok {
			out.Start = join
		} else {
			out.Degraded = true
			out.Notices = append(out.Notices, "could not find join of user, log may miss some context")
			telemetry.CountDegradedWindow()
			logger.Warn("join line not found", slog.String("host", out.Record.Host), slog.Any("err", ErrNoJoin))
		}
		if out.End-out.Start > req.MaxLogAutoLines {
			out.Notices = append(out.Notices, fmt.Sprintf("only using %d lines, raise the log line limit if needed", req.MaxLogAutoLines))
			out.Start = out.End - req.MaxLogAutoLines
		}
	}

	out.Record.Channel = display
	out.Lines = Prettify(lines[out.Start:out.End])
	return out, nil
}

// identify runs Extract, Resolve and Backtrack on the action at idx.
func (c *Correlator) identify(lines []string, idx int) (Record, error) {
	rec, err := Extract(lines[idx])
	if err != nil {
		return Record{}, fmt.Errorf("line %d: %w", idx, err)
	}
	rec = Resolve(lines[:idx], rec)
	before := rec.Operator
	rec = Backtrack(BacktrackWindow(lines, idx, c.cfg.BacktrackLines), rec, c.cfg.Rules, c.cfg.DurationStyle)
	if rec.Operator != before {
		telemetry.CountMacroAttribution()
	}
	return rec, nil
}

func (c *Correlator) displayName(channel string) (string, error) {
	if len(c.cfg.Channels) == 0 {
		return channel, nil
	}
	name, ok := c.cfg.Channels[channel]
	if !ok {
		return "", fmt.Errorf("%w: channel %s is not loggable", ErrInvalidRequest, channel)
	}
	return name, nil
}
