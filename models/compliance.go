package models

import "time"

// ComplianceStatus tracks whether a project has been documented recently.
// RequiresUpdate is always the negation of IsCompliant.
type ComplianceStatus struct {
	ProjectID            int64     `json:"project_id"`
	IsCompliant          bool      `json:"is_compliant"`
	DaysSinceUpdate      int       `json:"days_since_update"`
	RequiresUpdate       bool      `json:"requires_update"`
	LastNotificationDate time.Time `json:"last_notification_date"`
}

// ComplianceUpdateRequest carries the last documented update time.
// Accepts RFC3339 or YYYY-MM-DD; anything else counts as now.
type ComplianceUpdateRequest struct {
	LastNotificationDate string `json:"last_notification_date"`
}

type ComplianceResponse struct {
	Statuses       []ComplianceStatus `json:"statuses"`
	Total          int                `json:"total"`
	RequiresUpdate int                `json:"requires_update"`
}
