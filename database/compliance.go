package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fliptrack/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const complianceColumns = `project_id, is_compliant, days_since_update, requires_update, last_notification_date`

// pgForeignKeyViolation is the SQLSTATE raised when project_id has no project.
const pgForeignKeyViolation = "23503"

// BatchSaveError indicates which record failed during a batch save.
type BatchSaveError struct {
	FailedIndex int
	Total       int
	Err         error
}

func (e *BatchSaveError) Error() string {
	return fmt.Sprintf("failed to save compliance record at index %d/%d: %v", e.FailedIndex, e.Total, e.Err)
}

func (e *BatchSaveError) Unwrap() error {
	return e.Err
}

type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ListCompliance returns every stored compliance record ordered by project.
func (db *DB) ListCompliance(ctx context.Context) ([]models.ComplianceStatus, error) {
	defer db.track("ListCompliance", "compliance_statuses", time.Now())

	rows, err := db.Pool.Query(ctx, `SELECT `+complianceColumns+` FROM compliance_statuses ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance: %w", err)
	}
	defer rows.Close()

	statuses := []models.ComplianceStatus{}
	for rows.Next() {
		s, err := scanCompliance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance: %w", err)
		}
		statuses = append(statuses, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compliance: %w", err)
	}

	return statuses, nil
}

// GetCompliance returns the stored record for a project. found is false
// when the project has no record yet; that is not an error.
func (db *DB) GetCompliance(ctx context.Context, projectID int64) (status models.ComplianceStatus, found bool, err error) {
	defer db.track("GetCompliance", "compliance_statuses", time.Now(), zap.Int64("project_id", projectID))

	s, err := scanCompliance(db.Pool.QueryRow(ctx,
		`SELECT `+complianceColumns+` FROM compliance_statuses WHERE project_id = $1`, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ComplianceStatus{}, false, nil
		}
		return models.ComplianceStatus{}, false, fmt.Errorf("failed to get compliance: %w", err)
	}

	return *s, true, nil
}

// UpsertCompliance writes status unconditionally, creating the record if
// needed. Returns ErrNotFound if the project does not exist.
func (db *DB) UpsertCompliance(ctx context.Context, status models.ComplianceStatus) (*models.ComplianceStatus, error) {
	defer db.track("UpsertCompliance", "compliance_statuses", time.Now(), zap.Int64("project_id", status.ProjectID))

	if err := upsertCompliance(ctx, db.Pool, status); err != nil {
		return nil, err
	}
	return &status, nil
}

// EnsureCompliance stores status only if the project has no record yet,
// then returns whatever record is stored. An existing record always wins.
func (db *DB) EnsureCompliance(ctx context.Context, status models.ComplianceStatus) (*models.ComplianceStatus, error) {
	defer db.track("EnsureCompliance", "compliance_statuses", time.Now(), zap.Int64("project_id", status.ProjectID))

	query := `
		WITH inserted AS (
			INSERT INTO compliance_statuses (` + complianceColumns + `)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (project_id) DO NOTHING
			RETURNING ` + complianceColumns + `
		)
		SELECT ` + complianceColumns + ` FROM inserted
		UNION ALL
		SELECT ` + complianceColumns + ` FROM compliance_statuses WHERE project_id = $1
		LIMIT 1
	`

	s, err := scanCompliance(db.Pool.QueryRow(ctx, query,
		status.ProjectID, status.IsCompliant, status.DaysSinceUpdate, status.RequiresUpdate, status.LastNotificationDate))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, fmt.Errorf("project %d: %w", status.ProjectID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to ensure compliance: %w", err)
	}

	return s, nil
}

// SaveComplianceBatch writes evaluated records back in one round trip.
// Each row is only updated if its last_notification_date still matches the
// value that was evaluated, so a record refreshed by a media save in the
// meantime is left alone. Records without a row are skipped.
func (db *DB) SaveComplianceBatch(ctx context.Context, statuses []models.ComplianceStatus) error {
	if len(statuses) == 0 {
		return nil
	}

	defer db.track("SaveComplianceBatch", "compliance_statuses", time.Now(), zap.Int("count", len(statuses)))

	query := `
		UPDATE compliance_statuses
		SET is_compliant = $2, days_since_update = $3, requires_update = $4, updated_at = NOW()
		WHERE project_id = $1 AND last_notification_date = $5
	`

	batch := &pgx.Batch{}
	for _, s := range statuses {
		batch.Queue(query, s.ProjectID, s.IsCompliant, s.DaysSinceUpdate, s.RequiresUpdate, s.LastNotificationDate)
	}

	results := db.Pool.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()

	for i := 0; i < len(statuses); i++ {
		_, err := results.Exec()
		if err != nil {
			return &BatchSaveError{
				FailedIndex: i,
				Total:       len(statuses),
				Err:         err,
			}
		}
	}

	return nil
}

func upsertCompliance(ctx context.Context, q execQuerier, s models.ComplianceStatus) error {
	query := `
		INSERT INTO compliance_statuses (` + complianceColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id) DO UPDATE SET
			is_compliant = EXCLUDED.is_compliant,
			days_since_update = EXCLUDED.days_since_update,
			requires_update = EXCLUDED.requires_update,
			last_notification_date = EXCLUDED.last_notification_date,
			updated_at = NOW()
	`

	_, err := q.Exec(ctx, query, s.ProjectID, s.IsCompliant, s.DaysSinceUpdate, s.RequiresUpdate, s.LastNotificationDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("project %d: %w", s.ProjectID, ErrNotFound)
		}
		return fmt.Errorf("failed to upsert compliance: %w", err)
	}
	return nil
}

func scanCompliance(row rowScanner) (*models.ComplianceStatus, error) {
	var s models.ComplianceStatus
	err := row.Scan(
		&s.ProjectID,
		&s.IsCompliant,
		&s.DaysSinceUpdate,
		&s.RequiresUpdate,
		&s.LastNotificationDate,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
