package handlers

import (
	"net/http"

	"fliptrack/compliance"
	"fliptrack/models"
	"fliptrack/reports"

	"github.com/gin-gonic/gin"
)

// GetReport summarises one project. ?format=text returns the plain-text
// rendering used for sharing.
func GetReport(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		project, err := d.Store.GetProject(ctx, projectID)
		if err != nil {
			respondError(c, d.Logger, err, "failed to build report")
			return
		}

		media, err := d.Store.ListProjectMedia(ctx, projectID)
		if err != nil {
			respondError(c, d.Logger, err, "failed to build report")
			return
		}

		now := d.Now()
		status, err := currentCompliance(ctx, d.Store, projectID, now)
		if err != nil {
			respondError(c, d.Logger, err, "failed to build report")
			return
		}

		report := reports.BuildReport(*project, media, status, now)
		if c.Query("format") == "text" {
			c.String(http.StatusOK, report.Text())
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func GetStats(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		projects, err := d.Store.ListProjects(ctx, models.ProjectQuery{})
		if err != nil {
			respondError(c, d.Logger, err, "failed to compute stats")
			return
		}

		statuses, err := d.Store.ListCompliance(ctx)
		if err != nil {
			respondError(c, d.Logger, err, "failed to compute stats")
			return
		}

		stats := reports.BuildStats(projects, compliance.EvaluateAll(statuses, d.Now()))
		c.JSON(http.StatusOK, stats)
	}
}
