package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/tnicklin/keystonescan/blizzard"
	"github.com/tnicklin/keystonescan/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var _ blizzard.TokenCache = (*SQLiteStore)(nil)

// ErrClosed is returned when the store is used before Open or after Close.
var ErrClosed = errors.New("store: not open")

// ScanStatus is the terminal state of a scan.
type ScanStatus string

const (
	ScanSucceeded ScanStatus = "succeeded"
	ScanFailed    ScanStatus = "failed"
)

// ScanRecord is one row of the scan audit log.
type ScanRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Characters int
	Skipped    int
	Status     ScanStatus
	Error      string
}

type Params struct {
	Path   string
	Logger logger.Logger
}

// SQLiteStore persists OAuth tokens and the scan audit log.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	logger logger.Logger
}

func NewSQLiteStore(p Params) *SQLiteStore {
	return &SQLiteStore{
		path:   p.Path,
		logger: p.Logger,
	}
}

func (s *SQLiteStore) log() logger.Logger {
	if s.logger == nil {
		return nopLogger{}
	}
	return s.logger
}

// nopLogger is a no-op logger for when no logger is configured.
type nopLogger struct{}

func (nopLogger) DebugW(_ string, _ ...any) {}
func (nopLogger) InfoW(_ string, _ ...any)  {}
func (nopLogger) WarnW(_ string, _ ...any)  {}
func (nopLogger) ErrorW(_ string, _ ...any) {}
func (nopLogger) Sync() error               { return nil }

func (n nopLogger) With(_ ...any) logger.Logger { return n }

func dsn(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?_busy_timeout=5000"
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
}

// Open connects to the database and applies pending migrations.
func (s *SQLiteStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if s.path != "" && s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", dsn(s.path))
	if err != nil {
		return err
	}
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)

	if err = database.PingContext(ctx); err != nil {
		_ = database.Close()
		return err
	}
	if err = migrate(database); err != nil {
		_ = database.Close()
		return err
	}

	s.db = database
	s.log().DebugW("store opened", "path", s.path)
	return nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

// LoadToken returns the cached token for clientID. The bool is false when no
// token has been stored.
func (s *SQLiteStore) LoadToken(ctx context.Context, clientID string) (blizzard.Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return blizzard.Token{}, false, err
	}

	var (
		tok      blizzard.Token
		issuedAt string
	)
	err = db.QueryRowContext(ctx,
		`SELECT access_token, token_type, expires_in, issued_at FROM oauth_tokens WHERE client_id = ?`,
		clientID,
	).Scan(&tok.AccessToken, &tok.TokenType, &tok.ExpiresIn, &issuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blizzard.Token{}, false, nil
	}
	if err != nil {
		return blizzard.Token{}, false, err
	}

	tok.IssuedAt, err = time.Parse(time.RFC3339Nano, issuedAt)
	if err != nil {
		s.log().WarnW("discarding token with bad issued_at", "client_id", clientID, "error", err)
		return blizzard.Token{}, false, nil
	}
	return tok, true, nil
}

func (s *SQLiteStore) SaveToken(ctx context.Context, clientID string, token blizzard.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
INSERT INTO oauth_tokens (client_id, access_token, token_type, expires_in, issued_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(client_id) DO UPDATE SET
    access_token = excluded.access_token,
    token_type   = excluded.token_type,
    expires_in   = excluded.expires_in,
    issued_at    = excluded.issued_at`,
		clientID, token.AccessToken, token.TokenType, token.ExpiresIn,
		token.IssuedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// RecordScan appends a scan to the audit log.
func (s *SQLiteStore) RecordScan(ctx context.Context, rec ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
INSERT INTO scans (id, started_at, finished_at, characters, skipped, status, error)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Characters, rec.Skipped, string(rec.Status), rec.Error,
	)
	return err
}

// ListScans returns the most recent scans, newest first.
func (s *SQLiteStore) ListScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, started_at, finished_at, characters, skipped, status, error
FROM scans ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		var (
			rec             ScanRecord
			started, finish string
			status          string
		)
		if err := rows.Scan(&rec.ID, &started, &finish, &rec.Characters, &rec.Skipped, &status, &rec.Error); err != nil {
			return nil, err
		}
		rec.Status = ScanStatus(status)
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("scan %s started_at: %w", rec.ID, err)
		}
		if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finish); err != nil {
			return nil, fmt.Errorf("scan %s finished_at: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
