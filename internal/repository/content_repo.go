package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"englishexplorer/internal/database"
	"englishexplorer/internal/models"
)

// DefaultArchiveLimit caps archive listings when no limit is given
const DefaultArchiveLimit = 20

// ContentRepository stores generated content and generation attempts
type ContentRepository struct {
	db *database.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *database.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// RecordFetch stores the outcome of one generation attempt, usually a
// failure; successes go through RecordGenerated
func (r *ContentRepository) RecordFetch(kind, outcome, errMsg string, duration time.Duration) error {
	return recordFetch(r.db, kind, outcome, errMsg, duration)
}

// RecordGenerated archives a successful payload together with its fetch
// outcome, so the stats never count a success whose content was lost.
func (r *ContentRepository) RecordGenerated(kind, title string, payload any, duration time.Duration) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := archiveContent(tx, kind, title, payload)
	if err != nil {
		return 0, err
	}
	if err := recordFetch(tx, kind, "success", "", duration); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

func archiveContent(q database.DBTX, kind, title string, payload any) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s content: %w", kind, err)
	}

	query := "INSERT INTO content_archive (kind, title, payload) VALUES (?, ?, ?)"
	id, err := q.ExecReturningID(query, kind, title, string(data))
	if err != nil {
		return 0, fmt.Errorf("failed to archive content: %w", err)
	}
	return id, nil
}

func recordFetch(q database.DBTX, kind, outcome, errMsg string, duration time.Duration) error {
	query := "INSERT INTO content_fetches (kind, outcome, error, duration_ms) VALUES (?, ?, ?, ?)"
	if _, err := q.Exec(query, kind, outcome, errMsg, duration.Milliseconds()); err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}

// GetArchived retrieves one archived item, or nil when it does not exist
func (r *ContentRepository) GetArchived(id int64) (*models.ArchivedContent, error) {
	query := `
		SELECT id, kind, title, payload, created_at
		FROM content_archive
		WHERE id = ?
	`
	item, err := scanArchived(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get archived content: %w", err)
	}
	return item, nil
}

// ListArchived returns the newest archived items, optionally of one kind
func (r *ContentRepository) ListArchived(kind string, limit int) ([]models.ArchivedContent, error) {
	if limit <= 0 {
		limit = DefaultArchiveLimit
	}

	query := `
		SELECT id, kind, title, payload, created_at
		FROM content_archive
	`
	args := []any{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	items := []models.ArchivedContent{}
	for rows.Next() {
		item, err := scanArchived(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archived content: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// FetchStats aggregates generation attempts per kind
func (r *ContentRepository) FetchStats() ([]models.FetchStats, error) {
	query := `
		SELECT kind,
			SUM(CASE WHEN outcome = 'success' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'success' THEN 0 ELSE 1 END),
			AVG(duration_ms)
		FROM content_fetches
		GROUP BY kind
		ORDER BY kind
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch stats: %w", err)
	}
	defer rows.Close()

	stats := []models.FetchStats{}
	for rows.Next() {
		var s models.FetchStats
		if err := rows.Scan(&s.Kind, &s.Successes, &s.Failures, &s.AvgDurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan fetch stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArchived(row rowScanner) (*models.ArchivedContent, error) {
	var (
		item    models.ArchivedContent
		payload string
	)
	if err := row.Scan(&item.ID, &item.Kind, &item.Title, &payload, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.Payload = json.RawMessage(payload)
	return &item, nil
}
