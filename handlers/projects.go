package handlers

import (
	"net/http"
	"strings"
	"time"

	"fliptrack/compliance"
	"fliptrack/models"
	"fliptrack/progress"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func toView(p models.Project, now time.Time) models.ProjectView {
	return models.ProjectView{
		Project:     p,
		Stage:       progress.Describe(p.CurrentStage),
		DaysElapsed: compliance.DaysSinceDate(p.StartDate, now),
	}
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
}

func ListStages() gin.HandlerFunc {
	type stageEntry struct {
		progress.Stage
		Percent float64 `json:"progressPercent"`
	}

	return func(c *gin.Context) {
		stages := progress.All()
		out := make([]stageEntry, len(stages))
		for i, s := range stages {
			out[i] = stageEntry{Stage: s, Percent: progress.Percent(s.Key)}
		}
		c.JSON(http.StatusOK, gin.H{"stages": out})
	}
}

func ListProjects(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params models.ProjectQuery
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		projects, err := d.Store.ListProjects(c.Request.Context(), params)
		if err != nil {
			respondError(c, d.Logger, err, "failed to list projects")
			return
		}

		now := d.Now()
		views := make([]models.ProjectView, len(projects))
		for i, p := range projects {
			views[i] = toView(p, now)
		}

		c.JSON(http.StatusOK, models.ProjectsResponse{
			Projects: views,
			Total:    len(views),
		})
	}
}

func CreateProject(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := d.Now()
		y, m, day := now.Date()
		today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())

		p := models.Project{
			Name:           strings.TrimSpace(req.Name),
			Address:        strings.TrimSpace(req.Address),
			StartDate:      today,
			CurrentStage:   progress.FirstKey(),
			Status:         models.StatusInProgress,
			LockboxCode:    strings.TrimSpace(req.LockboxCode),
			Notes:          strings.TrimSpace(req.Notes),
			ThumbnailURL:   req.ThumbnailURL,
			LastUpdateDate: today,
		}
		if p.Name == "" || p.Address == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and address are required"})
			return
		}

		if req.StartDate != "" {
			start, err := parseDate(req.StartDate, now.Location())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date (expected YYYY-MM-DD)"})
				return
			}
			p.StartDate = start
		}
		if req.TargetDate != "" {
			target, err := parseDate(req.TargetDate, now.Location())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_date (expected YYYY-MM-DD)"})
				return
			}
			if target.Before(p.StartDate) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "target date cannot be before start date"})
				return
			}
			p.TargetDate = &target
		}

		project, err := d.Store.CreateProject(c.Request.Context(), p)
		if err != nil {
			respondError(c, d.Logger, err, "failed to create project")
			return
		}

		c.JSON(http.StatusCreated, toView(*project, now))
	}
}

func GetProject(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		project, err := d.Store.GetProject(c.Request.Context(), projectID)
		if err != nil {
			respondError(c, d.Logger, err, "failed to get project")
			return
		}

		c.JSON(http.StatusOK, toView(*project, d.Now()))
	}
}

func UpdateProject(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req models.UpdateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Status != nil && !models.ValidProjectStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		now := d.Now()
		patch := models.ProjectPatch{
			Name:         req.Name,
			Address:      req.Address,
			Status:       req.Status,
			LockboxCode:  req.LockboxCode,
			Notes:        req.Notes,
			ThumbnailURL: req.ThumbnailURL,
		}
		if req.TargetDate != nil && *req.TargetDate != "" {
			target, err := parseDate(*req.TargetDate, now.Location())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_date (expected YYYY-MM-DD)"})
				return
			}
			patch.TargetDate = &target
		}

		ctx := c.Request.Context()
		if patch.TargetDate != nil {
			current, err := d.Store.GetProject(ctx, projectID)
			if err != nil {
				respondError(c, d.Logger, err, "failed to update project")
				return
			}
			y, m, day := current.StartDate.Date()
			if patch.TargetDate.Before(time.Date(y, m, day, 0, 0, 0, 0, now.Location())) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "target date cannot be before start date"})
				return
			}
		}

		project, err := d.Store.UpdateProject(ctx, projectID, patch)
		if err != nil {
			respondError(c, d.Logger, err, "failed to update project")
			return
		}

		c.JSON(http.StatusOK, toView(*project, now))
	}
}

// UpdateStage is the only way a project's stage changes. Unknown stage keys
// are rejected here rather than stored.
func UpdateStage(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req models.UpdateStageRequest
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
		project, err := d.Store.UpdateStage(c.Request.Context(), projectID, req.Stage, now)
		if err != nil {
			respondError(c, d.Logger, err, "failed to update stage")
			return
		}

		d.Logger.Info("Stage updated", zap.Int64("project_id", projectID), zap.String("stage", req.Stage))
		c.JSON(http.StatusOK, toView(*project, now))
	}
}

func DeleteProject(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id")
		if !ok {
			return
		}

		if err := d.Store.DeleteProject(c.Request.Context(), projectID); err != nil {
			respondError(c, d.Logger, err, "failed to delete project")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}
