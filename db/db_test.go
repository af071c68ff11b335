package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CasualConversation/casualbotler/modaction"
	"github.com/CasualConversation/casualbotler/testutil"
)

func TestConnectRejectsEmptyDSN(t *testing.T) {
	if _, err := Connect(context.Background(), ""); err == nil {
		t.Error("Connect(\"\") error = nil")
	}
}

func TestMigrate(t *testing.T) {
	dsn := testutil.PostgresDSN(t)
	dbx, err := Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer dbx.Close()
	for i := range 2 {
		if err := Migrate(context.Background(), dbx); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}
}

func TestPGStore(t *testing.T) {
	ctx := context.Background()
	conn, err := Connect(ctx, testutil.PostgresDSN(t))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()
	if err := Migrate(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := conn.ExecContext(ctx, `TRUNCATE last_records, action_history`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	sealer := testutil.NewSealer(t)
	store := NewPGStore(conn, sealer)
	exerciseStore(t, store)

	// hosts are sealed at rest
	var raw string
	var version int
	if err := conn.QueryRowContext(ctx, `SELECT host, host_enc_version FROM last_records WHERE session = 'alice'`).Scan(&raw, &version); err != nil {
		t.Fatalf("select: %v", err)
	}
	if version != 1 || raw == "9.9.9.9" {
		t.Errorf("host stored as %q (version %d), want sealed", raw, version)
	}

	// a store without the key cannot read sealed rows
	if _, err := NewPGStore(conn, nil).Last(ctx, "alice"); err == nil {
		t.Error("Last() without sealer error = nil")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(0))
}

func TestMemoryStoreHistoryCap(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(2)
	for _, nick := range []string{"a", "b", "c"} {
		if err := m.SaveLast(ctx, "s", modaction.Record{Nick: nick}, ""); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := m.History(ctx, 10)
	if len(got) != 2 || got[0].Record.Nick != "c" || got[1].Record.Nick != "b" {
		t.Errorf("History() = %+v, want c then b", got)
	}
}

type recordStore interface {
	SaveLast(ctx context.Context, session string, rec modaction.Record, corr string) error
	Last(ctx context.Context, session string) (Entry, error)
	History(ctx context.Context, limit int) ([]Entry, error)
	Ping(ctx context.Context) error
}

func exerciseStore(t *testing.T, s recordStore) {
	t.Helper()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
	if _, err := s.Last(ctx, "alice"); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("Last() on empty store error = %v, want ErrNoRecord", err)
	}

	first := modaction.Record{Result: modaction.ResultKick, Nick: "Spammer", Operator: "Mod"}
	second := modaction.Record{
		Result: modaction.ResultTimedBan, Nick: "Troll", Host: "9.9.9.9",
		Operator: "Mod", Reason: "spamming", Length: "2 days", Channel: "#Casualconversation",
	}
	if err := s.SaveLast(ctx, "alice", first, "corr-1"); err != nil {
		t.Fatalf("SaveLast() error: %v", err)
	}
	if err := s.SaveLast(ctx, "alice", second, "corr-2"); err != nil {
		t.Fatalf("SaveLast() error: %v", err)
	}
	if err := s.SaveLast(ctx, "bob", first, "corr-3"); err != nil {
		t.Fatalf("SaveLast() error: %v", err)
	}

	got, err := s.Last(ctx, "alice")
	if err != nil {
		t.Fatalf("Last() error: %v", err)
	}
	if got.Record != second || got.CorrelationID != "corr-2" || got.SavedAt.IsZero() {
		t.Errorf("Last(alice) = %+v, want %+v", got, second)
	}

	hist, err := s.History(ctx, 2)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(hist) != 2 || hist[0].Session != "bob" || hist[1].Record != second {
		t.Errorf("History(2) = %+v", hist)
	}
}

func TestPGStorePruneHistory(t *testing.T) {
	ctx := context.Background()
	conn, err := Connect(ctx, testutil.PostgresDSN(t))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()
	if err := Migrate(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := conn.ExecContext(ctx, `TRUNCATE last_records, action_history`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	store := NewPGStore(conn, nil)
	for _, nick := range []string{"a", "b", "c"} {
		if err := store.SaveLast(ctx, "s", modaction.Record{Nick: nick}, ""); err != nil {
			t.Fatal(err)
		}
	}

	if n, err := store.PruneHistory(ctx, time.Time{}, 0, false); err != nil || n != 0 {
		t.Fatalf("PruneHistory(disabled) = %d, %v", n, err)
	}
	future := time.Now().Add(time.Hour)
	if n, err := store.PruneHistory(ctx, future, 1, true); err != nil || n != 2 {
		t.Fatalf("PruneHistory(dry run) = %d, %v, want 2", n, err)
	}
	if n, err := store.PruneHistory(ctx, future, 1, false); err != nil || n != 2 {
		t.Fatalf("PruneHistory() = %d, %v, want 2", n, err)
	}
	hist, err := store.History(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Record.Nick != "c" {
		t.Errorf("History() = %+v, want only c", hist)
	}
}

func TestMemoryStorePruneHistory(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0)
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	for i, nick := range []string{"a", "b", "c"} {
		now = now.Add(time.Duration(i) * time.Hour)
		if err := m.SaveLast(ctx, "s", modaction.Record{Nick: nick}, ""); err != nil {
			t.Fatal(err)
		}
	}
	// a at 00:00, b at 01:00, c at 03:00; keep everything from 01:00 on
	n, err := m.PruneHistory(ctx, time.Date(2020, 1, 1, 1, 0, 0, 0, time.UTC), 0, false)
	if err != nil || n != 1 {
		t.Fatalf("PruneHistory() = %d, %v, want 1", n, err)
	}
	hist, _ := m.History(ctx, 10)
	if len(hist) != 2 || hist[1].Record.Nick != "b" {
		t.Errorf("History() = %+v", hist)
	}
}
