// Package store persists analysis runs in SQLite so past markups can
// be retrieved and aggregated without re-running the pipeline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abdulachik/cinemark/internal/book"
)

// ErrNotFound is returned when no analysis matches the query.
var ErrNotFound = errors.New("store: analysis not found")

// Analysis is a stored pipeline run.
type Analysis struct {
	ID           string
	BookTitle    string
	Theme        string
	Status       string
	EffectCount  int
	SegmentCount int
	Markup       *book.Markup
	CreatedAt    time.Time
}

// Stats aggregates the stored analyses.
type Stats struct {
	TotalAnalyses  int
	TotalEffects   int
	AverageDensity float64
	ThemeCounts    map[string]int
}

// Store wraps the database connection.
type Store struct {
	db *sql.DB
}

// Open creates the database connection and initializes the schema.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1) // SQLite doesn't handle concurrent writes well

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: sqlDB}
	if err := s.initSchema(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			book_title TEXT NOT NULL,
			theme TEXT NOT NULL,
			status TEXT NOT NULL,
			effect_count INTEGER NOT NULL,
			segment_count INTEGER NOT NULL,
			markup TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_analyses_book_title
			ON analyses(book_title, created_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveAnalysis stores a markup and returns its generated id.
func (s *Store) SaveAnalysis(ctx context.Context, m *book.Markup) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal markup: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, book_title, theme, status, effect_count, segment_count, markup, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.BookTitle, m.Theme, m.Analysis.Status,
		m.EffectCount(), m.TotalSegments(), string(data),
		time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}

	slog.Debug("analysis saved", "id", id, "book", m.BookTitle)
	return id, nil
}

// LatestAnalysis returns the most recent stored analysis for a book.
func (s *Store) LatestAnalysis(ctx context.Context, bookTitle string) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, book_title, theme, status, effect_count, segment_count, markup, created_at
		FROM analyses
		WHERE book_title = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		bookTitle,
	)
	return scanAnalysis(row)
}

// GetAnalysis returns a stored analysis by id.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, book_title, theme, status, effect_count, segment_count, markup, created_at
		FROM analyses
		WHERE id = ?`,
		id,
	)
	return scanAnalysis(row)
}

func scanAnalysis(row *sql.Row) (*Analysis, error) {
	var a Analysis
	var raw string
	var createdAt int64
	err := row.Scan(&a.ID, &a.BookTitle, &a.Theme, &a.Status,
		&a.EffectCount, &a.SegmentCount, &raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan analysis: %w", err)
	}
	a.CreatedAt = time.Unix(0, createdAt)

	a.Markup = &book.Markup{}
	if err := json.Unmarshal([]byte(raw), a.Markup); err != nil {
		return nil, fmt.Errorf("unmarshal markup: %w", err)
	}
	return &a, nil
}

// Stats aggregates counts over all stored analyses.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ThemeCounts: map[string]int{}}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(effect_count), 0),
		       COALESCE(AVG(CAST(effect_count AS REAL) / NULLIF(segment_count, 0)), 0)
		FROM analyses`,
	).Scan(&stats.TotalAnalyses, &stats.TotalEffects, &stats.AverageDensity)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT theme, COUNT(*) FROM analyses GROUP BY theme`)
	if err != nil {
		return Stats{}, fmt.Errorf("query theme counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var theme string
		var count int
		if err := rows.Scan(&theme, &count); err != nil {
			return Stats{}, fmt.Errorf("scan theme count: %w", err)
		}
		stats.ThemeCounts[theme] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate theme counts: %w", err)
	}
	return stats, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
