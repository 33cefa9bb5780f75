package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fliptrack/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const projectColumns = `id, name, address, start_date, target_date, current_stage, status,
		lockbox_code, notes, thumbnail_url, last_update_date, created_at, updated_at`

// CreateProject inserts p and returns the stored row. ID and timestamps
// are assigned by the database.
func (db *DB) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	defer db.track("CreateProject", "projects", time.Now())

	query := `
		INSERT INTO projects (name, address, start_date, target_date, current_stage, status,
			lockbox_code, notes, thumbnail_url, last_update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query,
		p.Name, p.Address, p.StartDate, p.TargetDate, p.CurrentStage, p.Status,
		p.LockboxCode, p.Notes, p.ThumbnailURL, p.LastUpdateDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	db.logger.Info("Created project", zap.String("name", project.Name), zap.Int64("project_id", project.ID))
	return project, nil
}

// ListProjects returns projects newest first, optionally filtered by stage
// and status.
func (db *DB) ListProjects(ctx context.Context, params models.ProjectQuery) ([]models.Project, error) {
	defer db.track("ListProjects", "projects", time.Now(),
		zap.String("stage", params.Stage), zap.String("status", params.Status))

	qb := NewQueryBuilder()
	if params.Stage != "" {
		qb.AddCondition(columnCurrentStage, params.Stage)
	}
	qb.AddAnyOf(columnStatus, splitCSV(params.Status))

	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		%s
		ORDER BY created_at DESC, id DESC
	`, projectColumns, qb.WhereClause())

	rows, err := db.Pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (db *DB) GetProject(ctx context.Context, projectID int64) (*models.Project, error) {
	defer db.track("GetProject", "projects", time.Now(), zap.Int64("project_id", projectID))

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// UpdateProject applies the non-nil fields of patch.
func (db *DB) UpdateProject(ctx context.Context, projectID int64, patch models.ProjectPatch) (*models.Project, error) {
	defer db.track("UpdateProject", "projects", time.Now(), zap.Int64("project_id", projectID))

	query := `
		UPDATE projects SET
			name          = COALESCE($2, name),
			address       = COALESCE($3, address),
			target_date   = COALESCE($4, target_date),
			status        = COALESCE($5, status),
			lockbox_code  = COALESCE($6, lockbox_code),
			notes         = COALESCE($7, notes),
			thumbnail_url = COALESCE($8, thumbnail_url),
			updated_at    = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID,
		patch.Name, patch.Address, patch.TargetDate, patch.Status,
		patch.LockboxCode, patch.Notes, patch.ThumbnailURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// UpdateStage moves a project to stage and stamps its last update date.
// The caller validates stage.
func (db *DB) UpdateStage(ctx context.Context, projectID int64, stage string, today time.Time) (*models.Project, error) {
	defer db.track("UpdateStage", "projects", time.Now(),
		zap.Int64("project_id", projectID), zap.String("stage", stage))

	query := `
		UPDATE projects
		SET current_stage = $2, last_update_date = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID, stage, today))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}

	db.logger.Info("Project stage changed", zap.Int64("project_id", projectID), zap.String("stage", stage))
	return project, nil
}

// DeleteProject removes a project. Media and compliance rows cascade.
func (db *DB) DeleteProject(ctx context.Context, projectID int64) error {
	defer db.track("DeleteProject", "projects", time.Now(), zap.Int64("project_id", projectID))

	result, err := db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}

	db.logger.Info("Deleted project", zap.Int64("project_id", projectID))
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Address,
		&project.StartDate,
		&project.TargetDate,
		&project.CurrentStage,
		&project.Status,
		&project.LockboxCode,
		&project.Notes,
		&project.ThumbnailURL,
		&project.LastUpdateDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func scanProjects(rows rowsScanner) ([]models.Project, error) {
	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}
