package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/CasualConversation/casualbotler/config"
	"github.com/CasualConversation/casualbotler/db"
	"github.com/CasualConversation/casualbotler/modaction"
)

func TestLastRecordAndForm(t *testing.T) {
	env := newTestEnv(t, nil)

	if rr := env.do(t, http.MethodGet, "/records/last?session=mod1", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before logging, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/form?session=mod1", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before logging, got %d", rr.Code)
	}

	if rr := env.do(t, http.MethodGet, "/log?skip=1&session=mod1", nil); rr.Code != http.StatusOK {
		t.Fatalf("log: expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}

	rr := env.do(t, http.MethodGet, "/records/last?session=mod1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	entry := decode[db.Entry](t, rr)
	if entry.Record.Nick != "Troll" || entry.Record.Result != modaction.ResultTimedBan {
		t.Errorf("entry = %+v", entry)
	}

	rr = env.do(t, http.MethodGet, "/form?session=mod1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	url := decode[map[string]string](t, rr)["url"]
	for _, part := range []string{testFormBase, "&entry.1999262323=Troll", "&entry.1898835520=Timed+Ban", "&entry.400563484=9.9.9.9"} {
		if !strings.Contains(url, part) {
			t.Errorf("form url %q missing %q", url, part)
		}
	}

	// another session's slot is independent
	if rr := env.do(t, http.MethodGet, "/records/last?session=mod2", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for other session, got %d", rr.Code)
	}
}

func TestFormWithoutBaseURL(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.FormBaseURL = "" })
	if rr := env.do(t, http.MethodGet, "/form", nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rr.Code)
	}
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	for i := range 3 {
		target := fmt.Sprintf("/log?skip=%d&session=s%d", i%2, i)
		if rr := env.do(t, http.MethodGet, target, nil); rr.Code != http.StatusOK {
			t.Fatalf("log %d: expected 200, got %d", i, rr.Code)
		}
	}

	rr := env.do(t, http.MethodGet, "/records/history?limit=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	entries := decode[[]db.Entry](t, rr)
	if len(entries) != 2 || entries[0].Session != "s2" || entries[1].Session != "s1" {
		t.Errorf("history = %+v", entries)
	}

	for _, bad := range []string{"0", "501", "x"} {
		if rr := env.do(t, http.MethodGet, "/records/history?limit="+bad, nil); rr.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", bad, rr.Code)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/records/history", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}
