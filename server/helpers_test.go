package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CasualConversation/casualbotler/config"
	"github.com/CasualConversation/casualbotler/db"
	"github.com/CasualConversation/casualbotler/modaction"
	"github.com/CasualConversation/casualbotler/testutil"
)

const (
	testChannel  = "#casualconversation"
	testFormBase = "https://forms.example/viewform?usp=pp_url"
)

type testEnv struct {
	handler http.Handler
	source  *testutil.StaticSource
	store   *db.MemoryStore
	cfg     *config.Config
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ChanlogsDir:       t.TempDir(),
		DefaultChannel:    testChannel,
		FormBaseURL:       testFormBase,
		BacktrackLines:    modaction.DefaultBacktrackLines,
		MaxAutoLines:      4000,
		MaxLogAutoLines:   400,
		FollowingLines:    2,
		RecentLines:       100,
		RateLimitRequests: 10,
		RateLimitWindow:   time.Minute,
	}
}

func newTestEnv(t *testing.T, edit func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	if edit != nil {
		edit(cfg)
	}
	src := testutil.NewStaticSource(testChannel, testutil.BanTranscript(testChannel))
	store := db.NewMemoryStore(0)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewMux(ctx, Deps{
		Correlator: modaction.NewCorrelator(src, cfg.Correlator(config.DefaultModeration())),
		Store:      store,
		Config:     cfg,
	})
	return &testEnv{handler: h, source: src, store: store, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rr.Body.String())
	}
	return v
}
