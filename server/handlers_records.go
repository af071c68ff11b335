package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/CasualConversation/casualbotler/db"
	"github.com/CasualConversation/casualbotler/form"
	"github.com/CasualConversation/casualbotler/telemetry"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// HandleLastRecord returns the session's last saved record.
func (h *Handlers) HandleLastRecord(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lastEntry(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleForm returns the moderation form link prefilled with the session's
// last record.
func (h *Handlers) HandleForm(w http.ResponseWriter, r *http.Request) {
	if h.cfg.FormBaseURL == "" {
		writeError(w, http.StatusServiceUnavailable, "FORM_BASE_URL not configured", "")
		return
	}
	entry, ok := h.lastEntry(w, r)
	if !ok {
		return
	}
	telemetry.CountFormServed()
	writeJSON(w, http.StatusOK, map[string]string{"url": form.Build(h.cfg.FormBaseURL, entry.Record)})
}

// HandleHistory lists recently saved records, newest first.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if err := queryInt(r.URL.Query(), "limit", &limit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if limit < 1 || limit > maxHistoryLimit {
		writeError(w, http.StatusBadRequest, "limit must be in [1-500]", "")
		return
	}
	entries, err := h.store.History(r.Context(), limit)
	if err != nil {
		telemetry.LoggerWithCorr(r.Context()).Error("load history", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "could not load history", "")
		return
	}
	if entries == nil {
		entries = []db.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handlers) lastEntry(w http.ResponseWriter, r *http.Request) (db.Entry, bool) {
	session := sessionID(r)
	entry, err := h.store.Last(r.Context(), session)
	switch {
	case errors.Is(err, db.ErrNoRecord):
		writeError(w, http.StatusNotFound, "nothing logged yet for session "+session, "")
		return db.Entry{}, false
	case err != nil:
		telemetry.LoggerWithCorr(r.Context()).Error("load last record", slog.Any("err", err), slog.String("session", session))
		writeError(w, http.StatusInternalServerError, "could not load record", "")
		return db.Entry{}, false
	}
	return entry, true
}
