package handlers

import (
	"net/http"

	"fliptrack/compliance"
	"fliptrack/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GetCompliance(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if _, err := d.Store.GetProject(ctx, projectID); err != nil {
			respondError(c, d.Logger, err, "failed to get compliance")
			return
		}

		status, err := currentCompliance(ctx, d.Store, projectID, d.Now())
		if err != nil {
			respondError(c, d.Logger, err, "failed to get compliance")
			return
		}

		c.JSON(http.StatusOK, status)
	}
}

// UpdateCompliance sets the last documented update time and stores the
// re-evaluated record. Only last_notification_date is taken from the
// request; the derived fields are always recomputed.
func UpdateCompliance(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req models.ComplianceUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := d.Now()
		last, parsed := compliance.ParseTimestamp(req.LastNotificationDate, now)
		if !parsed {
			d.Logger.Warn("Unparseable last_notification_date, using now",
				zap.Int64("project_id", projectID),
				zap.String("value", req.LastNotificationDate),
			)
		}

		status := compliance.Evaluate(models.ComplianceStatus{
			ProjectID:            projectID,
			LastNotificationDate: last,
		}, now)

		saved, err := d.Store.UpsertCompliance(c.Request.Context(), status)
		if err != nil {
			respondError(c, d.Logger, err, "failed to update compliance")
			return
		}

		c.JSON(http.StatusOK, saved)
	}
}

// MarkUpdated records that the project was documented just now.
func MarkUpdated(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		now := d.Now()
		status := compliance.MarkUpdated(compliance.DefaultStatus(projectID, now), now)

		saved, err := d.Store.UpsertCompliance(c.Request.Context(), status)
		if err != nil {
			respondError(c, d.Logger, err, "failed to mark project updated")
			return
		}

		d.Logger.Info("Project marked updated", zap.Int64("project_id", projectID))
		c.JSON(http.StatusOK, saved)
	}
}

// ListCompliance evaluates every stored record against now without
// writing anything back.
func ListCompliance(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses, err := d.Store.ListCompliance(c.Request.Context())
		if err != nil {
			respondError(c, d.Logger, err, "failed to list compliance")
			return
		}

		evaluated := compliance.EvaluateAll(statuses, d.Now())
		if onlyFlagged := c.Query("requires_update"); onlyFlagged == "true" {
			flagged := make([]models.ComplianceStatus, 0, len(evaluated))
			for _, s := range evaluated {
				if s.RequiresUpdate {
					flagged = append(flagged, s)
				}
			}
			evaluated = flagged
		}

		c.JSON(http.StatusOK, models.ComplianceResponse{
			Statuses:       evaluated,
			Total:          len(evaluated),
			RequiresUpdate: compliance.CountRequiringUpdate(evaluated),
		})
	}
}

// CheckCompliance runs a sweep now and returns the persisted results.
func CheckCompliance(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		evaluated, err := d.Sweeper.Sweep(c.Request.Context())
		if err != nil {
			respondError(c, d.Logger, err, "compliance check failed")
			return
		}

		c.JSON(http.StatusOK, models.ComplianceResponse{
			Statuses:       evaluated,
			Total:          len(evaluated),
			RequiresUpdate: compliance.CountRequiringUpdate(evaluated),
		})
	}
}
