package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one synchronization run.
type Record struct {
	ID            string
	CreatedAt     time.Time
	MediaPath     string
	SubtitlePath  string
	Method        string
	OffsetSeconds float64
	Clamped       bool
	Unavailable   bool
	SegmentCount  int
	SampleRate    uint32
	DurationMS    int64
	Status        string
	ErrorMessage  string
}

// Statuses a record can carry.
const (
	StatusApplied     = "applied"
	StatusUnavailable = "unavailable"
	StatusFailed      = "failed"
	StatusDryRun      = "dry-run"
)

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database inside dir and
// applies the schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}
	dbPath := filepath.Join(dir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk database location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    media_path TEXT NOT NULL,
    subtitle_path TEXT NOT NULL,
    method TEXT NOT NULL,
    offset_seconds REAL NOT NULL DEFAULT 0,
    clamped INTEGER NOT NULL DEFAULT 0,
    unavailable INTEGER NOT NULL DEFAULT 0,
    segment_count INTEGER NOT NULL DEFAULT 0,
    sample_rate INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    error_message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sync_runs_created_at ON sync_runs (created_at);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply journal schema: %w", err)
	}
	return nil
}

// Insert stores a record, assigning an ID and timestamp when absent, and
// returns the stored record.
func (s *Store) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sync_runs (
            id, created_at, media_path, subtitle_path, method,
            offset_seconds, clamped, unavailable, segment_count,
            sample_rate, duration_ms, status, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CreatedAt.Format(time.RFC3339Nano),
		rec.MediaPath,
		rec.SubtitlePath,
		rec.Method,
		rec.OffsetSeconds,
		boolToInt(rec.Clamped),
		boolToInt(rec.Unavailable),
		rec.SegmentCount,
		rec.SampleRate,
		rec.DurationMS,
		rec.Status,
		rec.ErrorMessage,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert journal record: %w", err)
	}
	return rec, nil
}

// List returns the most recent records, newest first. A non-positive
// limit returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, created_at, media_path, subtitle_path, method,
        offset_seconds, clamped, unavailable, segment_count,
        sample_rate, duration_ms, status, error_message
        FROM sync_runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		var clamped, unavailable int
		if err := rows.Scan(
			&rec.ID, &createdAt, &rec.MediaPath, &rec.SubtitlePath, &rec.Method,
			&rec.OffsetSeconds, &clamped, &unavailable, &rec.SegmentCount,
			&rec.SampleRate, &rec.DurationMS, &rec.Status, &rec.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan journal record: %w", err)
		}
		rec.Clamped = clamped != 0
		rec.Unavailable = unavailable != 0
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal records: %w", err)
	}
	return records, nil
}

// Prune deletes everything but the newest keep records.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sync_runs WHERE id NOT IN (
            SELECT id FROM sync_runs ORDER BY created_at DESC, id DESC LIMIT ?
        )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return affected, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
