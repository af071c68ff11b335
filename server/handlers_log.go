package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CasualConversation/casualbotler/modaction"
	"github.com/CasualConversation/casualbotler/telemetry"
	"github.com/CasualConversation/casualbotler/transcript"
)

type logResponse struct {
	*modaction.Correlation
	Session       string `json:"session"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// HandleLog correlates the latest moderation action in a channel and saves
// the record as the session's last record.
//
// Query parameters follow the bot's log command: mode (recent|auto),
// channel, lines, maxautolines, maxlogautolines, followinglines, skip.
func (h *Handlers) HandleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	mode := modaction.Mode(strings.ToLower(q.Get("mode")))
	if mode == "" {
		mode = modaction.ModeAuto
	}
	req := h.cfg.Request(q.Get("channel"), mode)
	for key, dst := range map[string]*int{
		"lines":           &req.Lines,
		"maxautolines":    &req.MaxAutoLines,
		"maxlogautolines": &req.MaxLogAutoLines,
		"followinglines":  &req.FollowingLines,
		"skip":            &req.Skip,
	} {
		if err := queryInt(q, key, dst); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
	}

	ctx := r.Context()
	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "http_log"))
	res, err := h.correlator.Run(ctx, req)
	if err != nil {
		status := correlationStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("correlation failed", slog.Any("err", err))
		}
		writeError(w, status, err.Error(), modaction.Classify(err).String())
		return
	}

	session := sessionID(r)
	corr := telemetry.GetCorrelation(ctx)
	if err := h.store.SaveLast(ctx, session, res.Record, corr); err != nil {
		logger.Error("save last record", slog.Any("err", err), slog.String("session", session))
		writeError(w, http.StatusInternalServerError, "could not save record", "")
		return
	}
	telemetry.CountRecordSaved()
	logger.Info("action logged",
		slog.String("session", session),
		slog.String("result", string(res.Record.Result)),
		slog.String("channel", res.Record.Channel),
		slog.Bool("degraded", res.Degraded))
	writeJSON(w, http.StatusOK, logResponse{Correlation: res, Session: session, CorrelationID: corr})
}

// correlationStatus maps pipeline errors to HTTP statuses.
func correlationStatus(err error) int {
	switch {
	case errors.Is(err, modaction.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, modaction.ErrNoAction), errors.Is(err, transcript.ErrNoTranscript):
		return http.StatusNotFound
	case errors.Is(err, modaction.ErrIncompleteIdentity), errors.Is(err, modaction.ErrMalformedLine):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
