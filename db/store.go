package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/CasualConversation/casualbotler/crypto"
	"github.com/CasualConversation/casualbotler/modaction"
)

// ErrNoRecord is returned when a session has not saved a record yet.
var ErrNoRecord = errors.New("no record saved for session")

// hostField is the associated data used when sealing hosts.
const hostField = "host"

// Entry is a record saved by a session.
type Entry struct {
	Session       string           `json:"session"`
	Record        modaction.Record `json:"record"`
	CorrelationID string           `json:"correlation_id,omitempty"`
	SavedAt       time.Time        `json:"saved_at"`
}

// PGStore keeps the last record per session in last_records and appends
// every save to action_history. When a Sealer is set, hosts are sealed at
// rest (host_enc_version 1); plaintext rows (version 0) stay readable.
type PGStore struct {
	db     *sql.DB
	sealer crypto.Sealer
}

// NewPGStore returns a store on db. sealer may be nil.
func NewPGStore(db *sql.DB, sealer crypto.Sealer) *PGStore {
	return &PGStore{db: db, sealer: sealer}
}

// SaveLast replaces the session's last record and adds a history row.
func (s *PGStore) SaveLast(ctx context.Context, session string, rec modaction.Record, corr string) error {
	host, encVersion, err := s.sealHost(rec.Host)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO last_records(session, result, nick, host, host_enc_version, operator, reason, length, channel, correlation_id, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
		 ON CONFLICT(session) DO UPDATE SET
		   result=EXCLUDED.result,
		   nick=EXCLUDED.nick,
		   host=EXCLUDED.host,
		   host_enc_version=EXCLUDED.host_enc_version,
		   operator=EXCLUDED.operator,
		   reason=EXCLUDED.reason,
		   length=EXCLUDED.length,
		   channel=EXCLUDED.channel,
		   correlation_id=EXCLUDED.correlation_id,
		   updated_at=NOW()`,
		session, string(rec.Result), rec.Nick, host, encVersion, rec.Operator, rec.Reason, rec.Length, rec.Channel, corr)
	if err != nil {
		return fmt.Errorf("upsert last record: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO action_history(session, result, nick, host, host_enc_version, operator, reason, length, channel, correlation_id)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		session, string(rec.Result), rec.Nick, host, encVersion, rec.Operator, rec.Reason, rec.Length, rec.Channel, corr)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return tx.Commit()
}

// Last returns the session's most recent record or ErrNoRecord.
func (s *PGStore) Last(ctx context.Context, session string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session, result, nick, host, host_enc_version, operator, reason, length, channel, correlation_id, updated_at
		 FROM last_records WHERE session = $1`, session)
	e, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNoRecord
	}
	return e, err
}

// History returns up to limit saved records, newest first.
func (s *PGStore) History(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session, result, nick, host, host_enc_version, operator, reason, length, channel, correlation_id, created_at
		 FROM action_history ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Ping checks the database connection.
func (s *PGStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// PruneHistory removes history rows that are neither newer than cutoff nor
// among the newest keep rows. A zero cutoff or keep disables that half of the
// policy; with both disabled nothing is removed. In dry-run mode the rows are
// only counted.
func (s *PGStore) PruneHistory(ctx context.Context, cutoff time.Time, keep int, dryRun bool) (int64, error) {
	var retain []string
	var args []any
	if !cutoff.IsZero() {
		args = append(args, cutoff)
		retain = append(retain, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if keep > 0 {
		args = append(args, keep)
		retain = append(retain, fmt.Sprintf("id IN (SELECT id FROM action_history ORDER BY created_at DESC, id DESC LIMIT $%d)", len(args)))
	}
	if len(retain) == 0 {
		return 0, nil
	}
	where := "NOT (" + strings.Join(retain, " OR ") + ")"

	if dryRun {
		var n int64
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_history WHERE `+where, args...).Scan(&n); err != nil {
			return 0, fmt.Errorf("count prunable history: %w", err)
		}
		return n, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM action_history WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *PGStore) scan(sc scanner) (Entry, error) {
	var (
		e          Entry
		result     string
		encVersion int
	)
	err := sc.Scan(&e.Session, &result, &e.Record.Nick, &e.Record.Host, &encVersion,
		&e.Record.Operator, &e.Record.Reason, &e.Record.Length, &e.Record.Channel, &e.CorrelationID, &e.SavedAt)
	if err != nil {
		return Entry{}, err
	}
	e.Record.Result = modaction.Result(result)
	if encVersion == 1 {
		if s.sealer == nil {
			return Entry{}, fmt.Errorf("host is sealed but ENCRYPTION_KEY not configured")
		}
		host, err := s.sealer.Open(hostField, e.Record.Host)
		if err != nil {
			return Entry{}, fmt.Errorf("open host: %w", err)
		}
		e.Record.Host = host
	}
	return e, nil
}

func (s *PGStore) sealHost(host string) (string, int, error) {
	if s.sealer == nil || host == "" {
		return host, 0, nil
	}
	sealed, err := s.sealer.Seal(hostField, host)
	if err != nil {
		return "", 0, fmt.Errorf("seal host: %w", err)
	}
	return sealed, 1, nil
}

// MemoryStore is the process-local store used when no database is
// configured. History keeps the newest historyCap entries.
type MemoryStore struct {
	mu         sync.RWMutex
	last       map[string]Entry
	history    []Entry
	historyCap int
	now        func() time.Time
}

// NewMemoryStore returns an empty MemoryStore keeping up to historyCap
// history entries (default 1000 when historyCap <= 0).
func NewMemoryStore(historyCap int) *MemoryStore {
	if historyCap <= 0 {
		historyCap = 1000
	}
	return &MemoryStore{last: make(map[string]Entry), historyCap: historyCap, now: time.Now}
}

func (m *MemoryStore) SaveLast(_ context.Context, session string, rec modaction.Record, corr string) error {
	e := Entry{Session: session, Record: rec, CorrelationID: corr, SavedAt: m.now().UTC()}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[session] = e
	m.history = append(m.history, e)
	if over := len(m.history) - m.historyCap; over > 0 {
		m.history = append(m.history[:0], m.history[over:]...)
	}
	return nil
}

func (m *MemoryStore) Last(_ context.Context, session string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.last[session]
	if !ok {
		return Entry{}, ErrNoRecord
	}
	return e, nil
}

func (m *MemoryStore) History(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := min(limit, len(m.history))
	out := make([]Entry, 0, n)
	for i := len(m.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.history[i])
	}
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// PruneHistory applies the same policy as PGStore.PruneHistory.
func (m *MemoryStore) PruneHistory(_ context.Context, cutoff time.Time, keep int, dryRun bool) (int64, error) {
	if cutoff.IsZero() && keep <= 0 {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]Entry, 0, len(m.history))
	for i, e := range m.history {
		newest := len(m.history) - 1 - i
		if (!cutoff.IsZero() && !e.SavedAt.Before(cutoff)) || (keep > 0 && newest < keep) {
			kept = append(kept, e)
		}
	}
	pruned := int64(len(m.history) - len(kept))
	if !dryRun {
		m.history = kept
	}
	return pruned, nil
}
