// Package sessionlog records symbol search activity per debug
// session in SQLite: every store search attempt in order, plus the
// batch telemetry counters from module loads. Reads are deterministic
// so a session's history renders identically on every machine.
package sessionlog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/isabella232/gamesym/internal/modules"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added covering index on attempts(session, seq)
const currentSchemaVersion = 1

// Store provides durable storage for session search logs.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and
// applies pragmas and migrations. Idempotent.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return runMigrations(db)
}

// runMigrations applies incremental schema migrations based on
// user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		// New databases get this from schema.sql; databases created
		// before v1 need the index added explicitly.
		if _, err := db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_attempts_session
			ON attempts(session, seq)
		`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
		version = 1
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Session is one recorded debug session.
type Session struct {
	Token     string
	Label     string
	StartedAt time.Time
}

// Attempt is one store search attempt within a session. Seq orders
// attempts within their session.
type Attempt struct {
	ID       string
	Session  string
	Seq      int64
	Module   string
	Store    string
	Filename string
	BuildID  string
	Outcome  string
	Detail   string
}

// Search attempt outcomes.
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeError    = "error"
	OutcomeSkipped  = "skipped"
	OutcomeCanceled = "canceled"
)

// Telemetry is one recorded batch of module load counters.
type Telemetry struct {
	ID      string
	Session string
	Seq     int64
	modules.LoadTelemetry
}

// BeginSession creates a new session with a time-ordered unique
// token.
func (s *Store) BeginSession(ctx context.Context, label string) (Session, error) {
	sess := Session{
		Token:     uuid.Must(uuid.NewV7()).String(),
		Label:     label,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, label, started_at)
		VALUES (?, ?, ?)
	`, sess.Token, sess.Label, sess.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Session{}, fmt.Errorf("begin session: %w", err)
	}
	return sess, nil
}

// RecordAttempt inserts a search attempt. The id is content-addressed
// from the attempt's identifying fields, so replaying the same search
// writes the same record; duplicates are silently ignored.
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) (string, error) {
	id, err := attemptID(a.Session, a.Seq, a.Module, a.Store, a.Filename, a.BuildID, a.Outcome)
	if err != nil {
		return "", fmt.Errorf("record attempt: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO attempts
		(id, session, seq, module, store, filename, build_id, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, a.Session, a.Seq, a.Module, a.Store, a.Filename, a.BuildID, a.Outcome, a.Detail)
	if err != nil {
		return "", fmt.Errorf("record attempt: %w", err)
	}
	return id, nil
}

// RecordTelemetry inserts one batch counter record for the session.
func (s *Store) RecordTelemetry(ctx context.Context, session string, seq int64, t modules.LoadTelemetry) (string, error) {
	id, err := telemetryID(session, seq, t.ModulesCount,
		t.BinariesLoadedBeforeCount, t.BinariesLoadedAfterCount,
		t.SymbolsLoadedBeforeCount, t.SymbolsLoadedAfterCount)
	if err != nil {
		return "", fmt.Errorf("record telemetry: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO telemetry
		(id, session, seq, modules, binaries_before, binaries_after, symbols_before, symbols_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, session, seq, t.ModulesCount,
		t.BinariesLoadedBeforeCount, t.BinariesLoadedAfterCount,
		t.SymbolsLoadedBeforeCount, t.SymbolsLoadedAfterCount)
	if err != nil {
		return "", fmt.Errorf("record telemetry: %w", err)
	}
	return id, nil
}

// Sessions returns all recorded sessions, oldest first. UUIDv7 tokens
// sort by creation time, so ordering by token is chronological and
// total.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, label, started_at FROM sessions ORDER BY token ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var started string
		if err := rows.Scan(&sess.Token, &sess.Label, &started); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse session start time: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Attempts returns a session's search attempts in deterministic
// order.
func (s *Store) Attempts(ctx context.Context, session string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, seq, module, store, filename, build_id, outcome, detail
		FROM attempts
		WHERE session = ?
		ORDER BY seq ASC, id ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.Session, &a.Seq, &a.Module, &a.Store,
			&a.Filename, &a.BuildID, &a.Outcome, &a.Detail); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// TelemetryRecords returns a session's batch counters in
// deterministic order.
func (s *Store) TelemetryRecords(ctx context.Context, session string) ([]Telemetry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, seq, modules, binaries_before, binaries_after, symbols_before, symbols_after
		FROM telemetry
		WHERE session = ?
		ORDER BY seq ASC, id ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("read telemetry: %w", err)
	}
	defer rows.Close()

	var records []Telemetry
	for rows.Next() {
		var t Telemetry
		if err := rows.Scan(&t.ID, &t.Session, &t.Seq, &t.ModulesCount,
			&t.BinariesLoadedBeforeCount, &t.BinariesLoadedAfterCount,
			&t.SymbolsLoadedBeforeCount, &t.SymbolsLoadedAfterCount); err != nil {
			return nil, fmt.Errorf("scan telemetry: %w", err)
		}
		records = append(records, t)
	}
	return records, rows.Err()
}
