package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fliptrack/compliance"
	"fliptrack/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var mediaColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s",
	columnID, columnProjectID, columnType, columnStage, columnNotes,
	columnURL, columnThumbnailURL, columnUploadedBy, columnTimestamp)

// CreateMedia saves a media record and, in the same transaction, stamps the
// project's last update date and resets its compliance record as of now.
// A sweep that read the old record cannot overwrite the reset; see
// SaveComplianceBatch.
func (db *DB) CreateMedia(ctx context.Context, m models.Media, now time.Time) (*models.Media, *models.ComplianceStatus, error) {
	defer db.track("CreateMedia", "media_updates", time.Now(), zap.Int64("project_id", m.ProjectID))

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	result, err := tx.Exec(ctx,
		`UPDATE projects SET last_update_date = $2, updated_at = NOW() WHERE id = $1`,
		m.ProjectID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to touch project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, nil, fmt.Errorf("project %d: %w", m.ProjectID, ErrNotFound)
	}

	query := fmt.Sprintf(`
		INSERT INTO media_updates (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, columnProjectID, columnType, columnStage, columnNotes, columnURL,
		columnThumbnailURL, columnUploadedBy, columnTimestamp, mediaColumns)

	saved, err := scanMedia(tx.QueryRow(ctx, query,
		m.ProjectID, m.Type, m.Stage, m.Notes, m.URL, m.ThumbnailURL, m.UploadedBy, m.Timestamp))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert media: %w", err)
	}

	status := compliance.MarkUpdated(compliance.DefaultStatus(m.ProjectID, now), now)
	if err := upsertCompliance(ctx, tx, status); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit media: %w", err)
	}

	db.logger.Info("Media saved",
		zap.Int64("media_id", saved.ID),
		zap.Int64("project_id", saved.ProjectID),
		zap.String("type", saved.Type),
		zap.String("stage", saved.Stage),
	)
	return saved, &status, nil
}

// ListMedia retrieves media for a project with optional filtering and pagination.
// If params.Search is provided, delegates to SearchMedia for full-text search on notes.
// Uses COUNT(*) OVER() window function to get total count in single query.
// Returns media ordered by timestamp DESC (newest first), total count, and any error.
//
// Filters applied:
//   - Stage: exact stage key (e.g., "Demo")
//   - Type: "photo" or "video"
//   - StartTime/EndTime: inclusive range, RFC3339 or YYYY-MM-DD
//   - Limit: max results (default 50, max 500)
//   - Offset: pagination offset (default 0)
//
// Returns empty slice (not nil) if no media match.
func (db *DB) ListMedia(ctx context.Context, projectID int64, params models.MediaQuery) ([]models.Media, int64, error) {
	if params.Search != "" {
		return db.SearchMedia(ctx, projectID, params)
	}

	defer db.track("ListMedia", "media_updates", time.Now(),
		zap.Int64("project_id", projectID), zap.String("stage", params.Stage), zap.String("type", params.Type))

	qb := NewQueryBuilder()
	qb.AddCondition(columnProjectID, projectID)

	if params.Stage != "" {
		qb.AddCondition(columnStage, params.Stage)
	}
	if params.Type != "" {
		qb.AddCondition(columnType, params.Type)
	}
	if err := qb.AddTimeRange(columnTimestamp, params.StartTime, params.EndTime); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	page, args := qb.Paginate(params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT
			%s,
			COUNT(*) OVER() as total_count
		FROM media_updates
		%s
		ORDER BY %s DESC, %s DESC
		%s
	`, mediaColumns, qb.WhereClause(), columnTimestamp, columnID, page)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query media: %w", err)
	}
	defer rows.Close()

	return scanMediaPage(rows, false)
}

// ListProjectMedia returns every media record of a project, newest first.
// Used for reports and the timeline, which need the whole history.
func (db *DB) ListProjectMedia(ctx context.Context, projectID int64) ([]models.Media, error) {
	defer db.track("ListProjectMedia", "media_updates", time.Now(), zap.Int64("project_id", projectID))

	query := fmt.Sprintf(`
		SELECT %s
		FROM media_updates
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
	`, mediaColumns, columnProjectID, columnTimestamp, columnID)

	rows, err := db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project media: %w", err)
	}
	defer rows.Close()

	media := []models.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		media = append(media, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media: %w", err)
	}

	return media, nil
}

func (db *DB) GetMedia(ctx context.Context, mediaID int64) (*models.Media, error) {
	defer db.track("GetMedia", "media_updates", time.Now(), zap.Int64("media_id", mediaID))

	query := fmt.Sprintf(`SELECT %s FROM media_updates WHERE %s = $1`, mediaColumns, columnID)

	m, err := scanMedia(db.Pool.QueryRow(ctx, query, mediaID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("media %d: %w", mediaID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}

	return m, nil
}

// UpdateMedia edits notes and stage. Editing media is not a new update,
// so compliance is left alone.
func (db *DB) UpdateMedia(ctx context.Context, mediaID int64, req models.UpdateMediaRequest) (*models.Media, error) {
	defer db.track("UpdateMedia", "media_updates", time.Now(), zap.Int64("media_id", mediaID))

	query := fmt.Sprintf(`
		UPDATE media_updates SET
			%[1]s = COALESCE($2, %[1]s),
			%[2]s = COALESCE($3, %[2]s)
		WHERE %[3]s = $1
		RETURNING %[4]s
	`, columnNotes, columnStage, columnID, mediaColumns)

	m, err := scanMedia(db.Pool.QueryRow(ctx, query, mediaID, req.Notes, req.Stage))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("media %d: %w", mediaID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update media: %w", err)
	}

	return m, nil
}

func (db *DB) DeleteMedia(ctx context.Context, mediaID int64) error {
	defer db.track("DeleteMedia", "media_updates", time.Now(), zap.Int64("media_id", mediaID))

	result, err := db.Pool.Exec(ctx, `DELETE FROM media_updates WHERE id = $1`, mediaID)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("media %d: %w", mediaID, ErrNotFound)
	}

	db.logger.Info("Deleted media", zap.Int64("media_id", mediaID))
	return nil
}

// Helper functions

func scanMedia(row rowScanner) (*models.Media, error) {
	var m models.Media
	err := row.Scan(
		&m.ID, &m.ProjectID, &m.Type, &m.Stage, &m.Notes,
		&m.URL, &m.ThumbnailURL, &m.UploadedBy, &m.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMediaRow(row rowScanner, includeRank bool) (*models.Media, int64, error) {
	var m models.Media
	var total int64
	var rank float64

	if includeRank {
		err := row.Scan(
			&m.ID, &m.ProjectID, &m.Type, &m.Stage, &m.Notes,
			&m.URL, &m.ThumbnailURL, &m.UploadedBy, &m.Timestamp, &rank, &total,
		)
		if err != nil {
			return nil, 0, err
		}
		m.Rank = &rank
	} else {
		err := row.Scan(
			&m.ID, &m.ProjectID, &m.Type, &m.Stage, &m.Notes,
			&m.URL, &m.ThumbnailURL, &m.UploadedBy, &m.Timestamp, &total,
		)
		if err != nil {
			return nil, 0, err
		}
	}

	return &m, total, nil
}

func scanMediaPage(rows rowsScanner, includeRank bool) ([]models.Media, int64, error) {
	media := []models.Media{}
	var total int64

	for rows.Next() {
		m, t, err := scanMediaRow(rows, includeRank)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan media: %w", err)
		}
		total = t
		media = append(media, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating media: %w", err)
	}

	return media, total, nil
}
