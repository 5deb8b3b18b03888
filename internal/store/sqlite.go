package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/moonlitlabs/oneiro/internal/types"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore represents the SQLite-backed dream database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore instance.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable pragmas for performance and safety
	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	// Run goose migrations
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const dreamColumns = "id, user_id, title, content, analysis, category, image_url, created_at"

// ListDreams returns every dream recorded by the given user, newest first.
// The response order is the gateway's contract; callers do not re-sort.
func (s *SQLiteStore) ListDreams(ctx context.Context, userID string) ([]types.Dream, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+dreamColumns+`
		FROM dreams
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list dreams: %w", err)
	}
	defer rows.Close()

	var dreams []types.Dream
	for rows.Next() {
		dream, err := scanDream(rows)
		if err != nil {
			return nil, err
		}
		dreams = append(dreams, *dream)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dreams: %w", err)
	}

	return dreams, nil
}

// GetDream returns a single dream by id, scoped to the user.
func (s *SQLiteStore) GetDream(ctx context.Context, userID, dreamID string) (*types.Dream, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+dreamColumns+`
		FROM dreams
		WHERE user_id = ? AND id = ?
	`, userID, dreamID)

	dream, err := scanDream(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return dream, nil
}

// AddDream persists a new dream record and returns its generated id.
// A nil DreamDate stores the current server time at full precision; a set
// DreamDate backdates the record to that calendar day with no time component.
func (s *SQLiteStore) AddDream(ctx context.Context, userID string, dream types.NewDream) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}

	createdAt := time.Now().UTC()
	if dream.DreamDate != nil {
		d := dream.DreamDate.UTC()
		createdAt = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}

	category := dream.Category
	if category == "" {
		category = types.CategoryOther
	}

	id := ulid.Make().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dreams (id, user_id, title, content, analysis, category, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, '', ?)
	`, id, userID, dream.Title, dream.Content, dream.Analysis, string(category), createdAt.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("add dream: %w", err)
	}

	return id, nil
}

// UpdateDreamImage records the illustration reference for a dream.
// A dream's image is set at most once; overwriting is rejected.
func (s *SQLiteStore) UpdateDreamImage(ctx context.Context, userID, dreamID, imageURL string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	var existing string
	err := s.db.QueryRowContext(ctx,
		"SELECT image_url FROM dreams WHERE user_id = ? AND id = ?",
		userID, dreamID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update dream image: %w", err)
	}
	if existing != "" {
		return ErrImageAlreadySet
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE dreams SET image_url = ? WHERE user_id = ? AND id = ?",
		imageURL, userID, dreamID)
	if err != nil {
		return fmt.Errorf("update dream image: %w", err)
	}
	return nil
}

// DeleteDream removes a dream record permanently.
func (s *SQLiteStore) DeleteDream(ctx context.Context, userID, dreamID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM dreams WHERE user_id = ? AND id = ?",
		userID, dreamID)
	if err != nil {
		return fmt.Errorf("delete dream: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dream: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountDreams returns the total number of dreams across all users.
func (s *SQLiteStore) CountDreams(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dreams").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count dreams: %w", err)
	}
	return count, nil
}

// ExportAll returns every dream record in the database, oldest first.
// Used by the backup worker and the export command.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]types.Dream, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+dreamColumns+`
		FROM dreams
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("export dreams: %w", err)
	}
	defer rows.Close()

	var dreams []types.Dream
	for rows.Next() {
		dream, err := scanDream(rows)
		if err != nil {
			return nil, err
		}
		dreams = append(dreams, *dream)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("export dreams: %w", err)
	}

	return dreams, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanDream.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDream(row rowScanner) (*types.Dream, error) {
	var dream types.Dream
	var category, createdAt string

	err := row.Scan(&dream.ID, &dream.UserID, &dream.Title, &dream.Content,
		&dream.Analysis, &category, &dream.ImageURL, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan dream: %w", err)
	}

	dream.Category = types.Category(category)
	dream.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &dream, nil
}
