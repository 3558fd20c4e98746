package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pausetrim/internal/config"
)

// Store manages queue persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ErrItemNotFound indicates a lookup for a queue item that does not exist.
var ErrItemNotFound = errors.New("queue item not found")

// Open initializes or connects to the queue database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.QueueDBPath()
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

// Close releases the underlying database handle.
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

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

const itemColumns = "id, job_id, source_path, output_path, status, error_message, " +
	"duration_seconds, silences_json, keep_ranges_json, filter_complex, " +
	"progress_stage, progress_message, created_at, updated_at"

func scanItem(row interface{ Scan(...any) error }) (*Item, error) {
	var item Item
	var status string
	var createdAt, updatedAt string
	err := row.Scan(
		&item.ID, &item.JobID, &item.SourcePath, &item.OutputPath, &status,
		&item.ErrorMessage, &item.DurationSeconds, &item.SilencesJSON,
		&item.KeepRangesJSON, &item.FilterComplex, &item.ProgressStage,
		&item.ProgressMessage, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Status = Status(status)
	if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		item.CreatedAt = parsed
	}
	if parsed, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
		item.UpdatedAt = parsed
	}
	return &item, nil
}

// Add inserts a new pending item for the given source file.
func (s *Store) Add(ctx context.Context, sourcePath, outputPath string) (*Item, error) {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	item := &Item{
		JobID:      uuid.NewString(),
		SourcePath: sourcePath,
		OutputPath: outputPath,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var result sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx,
			"INSERT INTO queue_items (job_id, source_path, output_path, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			item.JobID, item.SourcePath, item.OutputPath, string(item.Status),
			now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("insert queue item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}
	item.ID = id
	return item, nil
}

// ByID fetches a single item.
func (s *Store) ByID(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM queue_items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrItemNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query queue item: %w", err)
	}
	return item, nil
}

// List returns all items, oldest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	ctx = ensureContext(ctx)

	query := "SELECT " + itemColumns + " FROM queue_items"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan queue item: %w", scanErr)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update persists all mutable fields of the item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("nil queue item")
	}
	if !IsValidStatus(item.Status) {
		return fmt.Errorf("unknown status %q", item.Status)
	}
	item.UpdatedAt = time.Now().UTC()
	return s.execWithRetry(ensureContext(ctx),
		`UPDATE queue_items SET output_path = ?, status = ?, error_message = ?,
			duration_seconds = ?, silences_json = ?, keep_ranges_json = ?,
			filter_complex = ?, progress_stage = ?, progress_message = ?,
			updated_at = ?
		WHERE id = ?`,
		item.OutputPath, string(item.Status), item.ErrorMessage,
		item.DurationSeconds, item.SilencesJSON, item.KeepRangesJSON,
		item.FilterComplex, item.ProgressStage, item.ProgressMessage,
		item.UpdatedAt.Format(time.RFC3339Nano), item.ID,
	)
}

// NextActionable returns the oldest item in a stable state the processor
// can advance, or nil when the queue is drained.
func (s *Store) NextActionable(ctx context.Context) (*Item, error) {
	items, err := s.List(ensureContext(ctx), actionableStatuses...)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ResetProcessing rolls interrupted processing states back to their last
// stable state. Called on processor startup.
func (s *Store) ResetProcessing(ctx context.Context) error {
	ctx = ensureContext(ctx)
	for _, transition := range processingRollbacks {
		if err := s.execWithRetry(ctx,
			"UPDATE queue_items SET status = ?, updated_at = ? WHERE status = ?",
			string(transition.to), time.Now().UTC().Format(time.RFC3339Nano), string(transition.from),
		); err != nil {
			return fmt.Errorf("roll back %s items: %w", transition.from, err)
		}
	}
	return nil
}

// RetryFailed moves failed items back to pending and clears their error.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var affected int64
	err := retryOnBusy(ctx, func() error {
		result, execErr := s.db.ExecContext(ctx,
			"UPDATE queue_items SET status = ?, error_message = '', updated_at = ? WHERE status = ?",
			string(StatusPending), time.Now().UTC().Format(time.RFC3339Nano), string(StatusFailed),
		)
		if execErr != nil {
			return execErr
		}
		affected, execErr = result.RowsAffected()
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	return affected, nil
}

// Clear deletes items in the given statuses, or every item when none are
// given.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	ctx = ensureContext(ctx)

	query := "DELETE FROM queue_items"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}

	var affected int64
	err := retryOnBusy(ctx, func() error {
		result, execErr := s.db.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = result.RowsAffected()
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return affected, nil
}
