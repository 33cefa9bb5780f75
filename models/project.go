package models

import (
	"time"

	"fliptrack/progress"
)

const (
	StatusInProgress = "In Progress"
	StatusComplete   = "Complete"
	StatusSold       = "Sold"
)

// ValidProjectStatus reports whether s is one of the known project statuses.
func ValidProjectStatus(s string) bool {
	switch s {
	case StatusInProgress, StatusComplete, StatusSold:
		return true
	}
	return false
}

// Project is a single fix & flip property being renovated.
// CurrentStage only changes through an explicit stage update.
type Project struct {
	ID             int64      `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Address        string     `json:"address" db:"address"`
	StartDate      time.Time  `json:"start_date" db:"start_date"`
	TargetDate     *time.Time `json:"target_date" db:"target_date"`
	CurrentStage   string     `json:"current_stage" db:"current_stage"`
	Status         string     `json:"status" db:"status"`
	LockboxCode    string     `json:"lockbox_code" db:"lockbox_code"`
	Notes          string     `json:"notes" db:"notes"`
	ThumbnailURL   string     `json:"thumbnail_url" db:"thumbnail_url"`
	LastUpdateDate time.Time  `json:"last_update_date" db:"last_update_date"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateProjectRequest is the payload for creating a new project.
// Dates use the YYYY-MM-DD layout; StartDate defaults to today.
type CreateProjectRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=255"`
	Address      string `json:"address" binding:"required,min=1,max=500"`
	StartDate    string `json:"start_date"`
	TargetDate   string `json:"target_date"`
	LockboxCode  string `json:"lockbox_code" binding:"max=32"`
	Notes        string `json:"notes"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// UpdateProjectRequest is a partial update. Nil fields are left untouched.
// The stage is not patchable here; see UpdateStageRequest.
type UpdateProjectRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=255"`
	Address      *string `json:"address" binding:"omitempty,min=1,max=500"`
	TargetDate   *string `json:"target_date"`
	Status       *string `json:"status"`
	LockboxCode  *string `json:"lockbox_code" binding:"omitempty,max=32"`
	Notes        *string `json:"notes"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// ProjectPatch is the parsed form of UpdateProjectRequest handed to the store.
type ProjectPatch struct {
	Name         *string
	Address      *string
	TargetDate   *time.Time
	Status       *string
	LockboxCode  *string
	Notes        *string
	ThumbnailURL *string
}

type UpdateStageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// ProjectQuery filters project listings. Status may list several
// comma-separated statuses, e.g. "Complete,Sold".
type ProjectQuery struct {
	Stage  string `form:"stage"`
	Status string `form:"status"`
}

// ProjectView is a project plus the values derived from its stage and dates.
type ProjectView struct {
	Project
	Stage       progress.View `json:"stage"`
	DaysElapsed int           `json:"days_elapsed"`
}

type ProjectsResponse struct {
	Projects []ProjectView `json:"projects"`
	Total    int           `json:"total"`
}
