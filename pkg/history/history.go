// Package history keeps a local SQLite log of generation reports.
//
// Only report metadata is stored: mode, length, entropy, score and the
// fired deductions. The password and anything derived from it (hashes,
// prefixes) are never written.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/policy"
	"github.com/forest6511/passforge/pkg/strength"
)

// FileName is the database file name inside the history directory.
const FileName = "history.db"

// Sources recorded with each entry.
const (
	SourceCLI = "cli"
	SourceMCP = "mcp"
)

// ErrInvalidLimit is returned by List for a negative limit.
var ErrInvalidLimit = errors.New("history limit must not be negative")

// Entry is one recorded generation.
type Entry struct {
	ID          uuid.UUID            `json:"id"`
	CreatedAt   time.Time            `json:"created_at"`
	Source      string               `json:"source"`
	Mode        policy.Mode          `json:"mode"`
	Length      int                  `json:"length"`
	EntropyBits float64              `json:"entropy_bits"`
	Score       int                  `json:"score"`
	Label       strength.Label       `json:"label"`
	Deductions  []strength.Deduction `json:"deductions"`
}

// NewEntry builds an entry from a generation result. The password value
// is dropped here and goes no further.
func NewEntry(source string, r *generator.Result) Entry {
	return Entry{
		ID:          uuid.New(),
		CreatedAt:   time.Now().UTC(),
		Source:      source,
		Mode:        r.Password.Mode,
		Length:      len(r.Password.Value),
		EntropyBits: r.Report.EntropyBits,
		Score:       r.Report.Score,
		Label:       r.Report.Label,
		Deductions:  r.Report.Deductions,
	}
}

// Store is a SQLite-backed history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the history database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, dbPath: dbPath}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := os.Chmod(dbPath, 0600); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set history database permissions: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL,
		source TEXT NOT NULL,
		mode TEXT NOT NULL,
		length INTEGER NOT NULL,
		entropy_bits REAL NOT NULL,
		score INTEGER NOT NULL,
		label TEXT NOT NULL,
		deductions TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Record stores e. A zero ID or CreatedAt is filled in.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	deductions := e.Deductions
	if deductions == nil {
		deductions = []strength.Deduction{}
	}
	deductionsJSON, err := json.Marshal(deductions)
	if err != nil {
		return fmt.Errorf("failed to serialize deductions: %w", err)
	}

	query := `
	INSERT INTO entries (id, created_at, source, mode, length, entropy_bits, score, label, deductions)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		e.ID.String(),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		e.Source,
		e.Mode.String(),
		e.Length,
		e.EntropyBits,
		e.Score,
		e.Label.String(),
		string(deductionsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. A limit of 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	query := `
	SELECT id, created_at, source, mode, length, entropy_bits, score, label, deductions
	FROM entries
	ORDER BY seq DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e              Entry
			id             string
			createdAt      string
			mode           string
			label          string
			deductionsJSON string
		)

		if err := rows.Scan(&id, &createdAt, &e.Source, &mode, &e.Length, &e.EntropyBits, &e.Score, &label, &deductionsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid history entry id %q: %w", id, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("invalid history timestamp %q: %w", createdAt, err)
		}
		if e.Mode, err = policy.ParseMode(mode); err != nil {
			return nil, err
		}
		if e.Label, err = strength.ParseLabel(label); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(deductionsJSON), &e.Deductions); err != nil {
			return nil, fmt.Errorf("failed to parse deductions: %w", err)
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return count, nil
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM entries")
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return result.RowsAffected()
}
