package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fliptrack/compliance"
	"fliptrack/database"
	"fliptrack/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProjectStore interface {
	ListProjects(ctx context.Context, params models.ProjectQuery) ([]models.Project, error)
	GetProject(ctx context.Context, projectID int64) (*models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (*models.Project, error)
	UpdateProject(ctx context.Context, projectID int64, patch models.ProjectPatch) (*models.Project, error)
	UpdateStage(ctx context.Context, projectID int64, stage string, today time.Time) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID int64) error
}

type MediaStore interface {
	CreateMedia(ctx context.Context, m models.Media, now time.Time) (*models.Media, *models.ComplianceStatus, error)
	ListMedia(ctx context.Context, projectID int64, params models.MediaQuery) ([]models.Media, int64, error)
	ListProjectMedia(ctx context.Context, projectID int64) ([]models.Media, error)
	GetMedia(ctx context.Context, mediaID int64) (*models.Media, error)
	UpdateMedia(ctx context.Context, mediaID int64, req models.UpdateMediaRequest) (*models.Media, error)
	DeleteMedia(ctx context.Context, mediaID int64) error
}

type ComplianceStore interface {
	compliance.Store
	GetCompliance(ctx context.Context, projectID int64) (models.ComplianceStatus, bool, error)
	UpsertCompliance(ctx context.Context, status models.ComplianceStatus) (*models.ComplianceStatus, error)
	EnsureCompliance(ctx context.Context, status models.ComplianceStatus) (*models.ComplianceStatus, error)
}

// Store is everything the HTTP layer needs from persistence.
// *database.DB satisfies it.
type Store interface {
	ProjectStore
	MediaStore
	ComplianceStore
	Ping(ctx context.Context) error
}

// Deps are shared by all handlers.
type Deps struct {
	Store   Store
	Sweeper *compliance.Sweeper
	Now     func() time.Time
	Logger  *zap.Logger
}

// respondError maps store errors onto HTTP statuses. Anything that is not
// a not-found or a rejected query is logged and reported as msg.
func respondError(c *gin.Context, logger *zap.Logger, err error, msg string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// currentCompliance returns the project's record evaluated against now.
// A project queried for the first time gets the default record stored.
func currentCompliance(ctx context.Context, store ComplianceStore, projectID int64, now time.Time) (models.ComplianceStatus, error) {
	status, found, err := store.GetCompliance(ctx, projectID)
	if err != nil {
		return models.ComplianceStatus{}, err
	}
	if !found {
		created, err := store.EnsureCompliance(ctx, compliance.DefaultStatus(projectID, now))
		if err != nil {
			return models.ComplianceStatus{}, err
		}
		status = *created
	}
	return compliance.Evaluate(status, now), nil
}

func HealthCheck(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r gin.IRouter, d Deps) {
	r.GET("/health", HealthCheck(d))

	api := r.Group("/api")
	api.GET("/stages", ListStages())
	api.GET("/stats", GetStats(d))

	api.GET("/projects", ListProjects(d))
	api.POST("/projects", CreateProject(d))
	api.GET("/projects/:id", GetProject(d))
	api.PATCH("/projects/:id", UpdateProject(d))
	api.PUT("/projects/:id/stage", UpdateStage(d))
	api.DELETE("/projects/:id", DeleteProject(d))

	api.GET("/projects/:id/media", ListMedia(d))
	api.POST("/projects/:id/media", CreateMedia(d))
	api.GET("/projects/:id/timeline", GetTimeline(d))
	api.GET("/projects/:id/report", GetReport(d))

	api.GET("/projects/:id/compliance", GetCompliance(d))
	api.PUT("/projects/:id/compliance", UpdateCompliance(d))
	api.POST("/projects/:id/compliance/mark-updated", MarkUpdated(d))
	api.GET("/compliance", ListCompliance(d))
	api.POST("/compliance/check", CheckCompliance(d))

	api.GET("/media/:id", GetMedia(d))
	api.PATCH("/media/:id", UpdateMedia(d))
	api.DELETE("/media/:id", DeleteMedia(d))
}
