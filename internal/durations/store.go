package durations

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"bookreel/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; the index is regenerable, so users delete the database and
// re-run the analyzer to adopt a new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Flag values recorded per chapter.
const (
	// FlagOK marks a clip that passed every sanity check.
	FlagOK = ""
	// FlagSuspect marks a clip whose duration or size fails a sanity
	// check; it exists but must not be trusted without regeneration.
	FlagSuspect = "suspect"
	// FlagFailed marks a chapter with no usable clip at all.
	FlagFailed = "failed"
)

// Record is one row of the duration index.
type Record struct {
	Chapter         int
	Title           string
	DurationSeconds float64
	SizeBytes       int64
	WordCount       int
	Flag            string
	UpdatedAt       time.Time
}

// Store manages duration index persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the duration index database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StagingDir, "durations.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
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

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s and re-run the analyzer)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Upsert writes or replaces the record for a chapter. Re-analyzing a
// chapter is idempotent: same input, same row.
func (s *Store) Upsert(ctx context.Context, record Record) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chapter_durations (chapter, title, duration_seconds, size_bytes, word_count, flag, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(chapter) DO UPDATE SET
             title = excluded.title,
             duration_seconds = excluded.duration_seconds,
             size_bytes = excluded.size_bytes,
             word_count = excluded.word_count,
             flag = excluded.flag,
             updated_at = excluded.updated_at`,
		record.Chapter, record.Title, record.DurationSeconds, record.SizeBytes, record.WordCount, record.Flag, timestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert chapter %d: %w", record.Chapter, err)
	}
	return nil
}

// Get returns the record for one chapter.
func (s *Store) Get(ctx context.Context, chapter int) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT chapter, title, duration_seconds, size_bytes, word_count, flag, updated_at
         FROM chapter_durations WHERE chapter = ?`, chapter)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("chapter %d not indexed", chapter)
	}
	return record, err
}

// List returns all records in ascending chapter order.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chapter, title, duration_seconds, size_bytes, word_count, flag, updated_at
         FROM chapter_durations ORDER BY chapter ASC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Flagged returns records carrying the given flag, ascending by chapter.
func (s *Store) Flagged(ctx context.Context, flag string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chapter, title, duration_seconds, size_bytes, word_count, flag, updated_at
         FROM chapter_durations WHERE flag = ? ORDER BY chapter ASC`, flag)
	if err != nil {
		return nil, fmt.Errorf("list flagged records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Stats returns counts per flag value.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT flag, COUNT(1) FROM chapter_durations GROUP BY flag")
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var flag string
		var count int
		if err := rows.Scan(&flag, &count); err != nil {
			return nil, err
		}
		stats[flag] = count
	}
	return stats, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (Record, error) {
	var record Record
	var updatedAt string
	if err := row.Scan(&record.Chapter, &record.Title, &record.DurationSeconds, &record.SizeBytes, &record.WordCount, &record.Flag, &updatedAt); err != nil {
		return Record{}, err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		record.UpdatedAt = parsed
	}
	return record, nil
}
