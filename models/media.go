package models

import "time"

const (
	MediaPhoto = "photo"
	MediaVideo = "video"

	DefaultUploader = "Field Manager"
)

// Media is a photo or video documenting a project at a given stage.
type Media struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Type         string    `json:"type"`
	Stage        string    `json:"stage"`
	Notes        string    `json:"notes"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	UploadedBy   string    `json:"uploaded_by"`
	Timestamp    time.Time `json:"timestamp"`
	Rank         *float64  `json:"rank,omitempty"` // Only populated for search results
}

type CreateMediaRequest struct {
	Type         string     `json:"type" binding:"required,oneof=photo video"`
	Stage        string     `json:"stage" binding:"required"`
	Notes        string     `json:"notes"`
	URL          string     `json:"url" binding:"required"`
	ThumbnailURL string     `json:"thumbnail_url"`
	UploadedBy   string     `json:"uploaded_by"`
	Timestamp    *time.Time `json:"timestamp"`
}

type UpdateMediaRequest struct {
	Notes *string `json:"notes"`
	Stage *string `json:"stage"`
}

type MediaQuery struct {
	Stage     string `form:"stage"`
	Type      string `form:"type"`
	StartTime string `form:"start_time"`
	EndTime   string `form:"end_time"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
	Search    string `form:"search"`
}

type MediaResponse struct {
	Media   []Media `json:"media"`
	Total   int64   `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
	HasMore bool    `json:"has_more"`
}

// CreateMediaResponse returns the saved media together with the compliance
// record it refreshed.
type CreateMediaResponse struct {
	Media      Media            `json:"media"`
	Compliance ComplianceStatus `json:"compliance"`
}
