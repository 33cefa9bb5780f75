package handlers

import (
	"net/http"
	"strings"

	"fliptrack/metrics"
	"fliptrack/models"
	"fliptrack/progress"
	"fliptrack/reports"

	"github.com/gin-gonic/gin"
)

// CreateMedia records a photo or video for a project. Saving media counts
// as a documented update, so the response carries the refreshed compliance
// record.
func CreateMedia(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req models.CreateMediaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !progress.IsValid(req.Stage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "unknown stage",
				"stages": progress.Keys(),
			})
			return
		}

		now := d.Now()
		m := models.Media{
			ProjectID:    projectID,
			Type:         req.Type,
			Stage:        req.Stage,
			Notes:        strings.TrimSpace(req.Notes),
			URL:          req.URL,
			ThumbnailURL: req.ThumbnailURL,
			UploadedBy:   strings.TrimSpace(req.UploadedBy),
			Timestamp:    now,
		}
		if m.UploadedBy == "" {
			m.UploadedBy = models.DefaultUploader
		}
		if req.Timestamp != nil && !req.Timestamp.IsZero() {
			m.Timestamp = *req.Timestamp
		}

		media, status, err := d.Store.CreateMedia(c.Request.Context(), m, now)
		if err != nil {
			respondError(c, d.Logger, err, "failed to save media")
			return
		}

		metrics.IncrementMediaCreated(media.Type)

		c.JSON(http.StatusCreated, models.CreateMediaResponse{
			Media:      *media,
			Compliance: *status,
		})
	}
}

func ListMedia(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		var params models.MediaQuery
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if params.Type != "" && params.Type != models.MediaPhoto && params.Type != models.MediaVideo {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be photo or video"})
			return
		}

		ctx := c.Request.Context()
		if _, err := d.Store.GetProject(ctx, projectID); err != nil {
			respondError(c, d.Logger, err, "failed to list media")
			return
		}

		media, total, err := d.Store.ListMedia(ctx, projectID, params)
		if err != nil {
			respondError(c, d.Logger, err, "failed to list media")
			return
		}

		limit := params.Limit
		if limit <= 0 {
			limit = 50
		} else if limit > 500 {
			limit = 500
		}
		offset := params.Offset
		if offset < 0 {
			offset = 0
		}

		c.JSON(http.StatusOK, models.MediaResponse{
			Media:   media,
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+len(media)) < total,
		})
	}
}

func GetMedia(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		mediaID, ok := parseID(c, "id")
		if !ok {
			return
		}

		media, err := d.Store.GetMedia(c.Request.Context(), mediaID)
		if err != nil {
			respondError(c, d.Logger, err, "failed to get media")
			return
		}

		c.JSON(http.StatusOK, media)
	}
}

// UpdateMedia edits notes or the stage tag. Editing does not count as a
// new update for compliance.
func UpdateMedia(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		mediaID, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req models.UpdateMediaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Stage != nil && !progress.IsValid(*req.Stage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "unknown stage",
				"stages": progress.Keys(),
			})
			return
		}

		media, err := d.Store.UpdateMedia(c.Request.Context(), mediaID, req)
		if err != nil {
			respondError(c, d.Logger, err, "failed to update media")
			return
		}

		c.JSON(http.StatusOK, media)
	}
}

func DeleteMedia(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		mediaID, ok := parseID(c, "id")
		if !ok {
			return
		}

		if err := d.Store.DeleteMedia(c.Request.Context(), mediaID); err != nil {
			respondError(c, d.Logger, err, "failed to delete media")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "media deleted"})
	}
}

// GetTimeline returns the project's media grouped by calendar day.
func GetTimeline(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if _, err := d.Store.GetProject(ctx, projectID); err != nil {
			respondError(c, d.Logger, err, "failed to build timeline")
			return
		}

		media, err := d.Store.ListProjectMedia(ctx, projectID)
		if err != nil {
			respondError(c, d.Logger, err, "failed to build timeline")
			return
		}

		days := reports.GroupTimeline(media, d.Now().Location())
		c.JSON(http.StatusOK, gin.H{
			"project_id": projectID,
			"days":       days,
			"total":      len(media),
		})
	}
}
