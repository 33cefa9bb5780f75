package handlers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fliptrack/compliance"
	"fliptrack/database"
	"fliptrack/models"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	projects   map[int64]models.Project
	media      map[int64]models.Media
	compliance map[int64]models.ComplianceStatus
	pingErr    error
	listErr    error
}

func newMemStore() *memStore {
	return &memStore{
		projects:   make(map[int64]models.Project),
		media:      make(map[int64]models.Media),
		compliance: make(map[int64]models.ComplianceStatus),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, database.ErrNotFound)
}

func (s *memStore) Ping(ctx context.Context) error { return s.pingErr }

func (s *memStore) ListProjects(ctx context.Context, params models.ProjectQuery) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}

	out := []models.Project{}
	for _, p := range s.projects {
		if params.Stage != "" && p.CurrentStage != params.Stage {
			continue
		}
		if params.Status != "" && p.Status != params.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetProject(ctx context.Context, projectID int64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil, notFound("project", projectID)
	}
	return &p, nil
}

func (s *memStore) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.projects[p.ID] = p
	return &p, nil
}

func (s *memStore) UpdateProject(ctx context.Context, projectID int64, patch models.ProjectPatch) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil, notFound("project", projectID)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.TargetDate != nil {
		p.TargetDate = patch.TargetDate
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.LockboxCode != nil {
		p.LockboxCode = *patch.LockboxCode
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	if patch.ThumbnailURL != nil {
		p.ThumbnailURL = *patch.ThumbnailURL
	}
	s.projects[projectID] = p
	return &p, nil
}

func (s *memStore) UpdateStage(ctx context.Context, projectID int64, stage string, today time.Time) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil, notFound("project", projectID)
	}
	p.CurrentStage = stage
	p.LastUpdateDate = today
	s.projects[projectID] = p
	return &p, nil
}

func (s *memStore) DeleteProject(ctx context.Context, projectID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[projectID]; !ok {
		return notFound("project", projectID)
	}
	delete(s.projects, projectID)
	delete(s.compliance, projectID)
	for id, m := range s.media {
		if m.ProjectID == projectID {
			delete(s.media, id)
		}
	}
	return nil
}

func (s *memStore) CreateMedia(ctx context.Context, m models.Media, now time.Time) (*models.Media, *models.ComplianceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[m.ProjectID]; !ok {
		return nil, nil, notFound("project", m.ProjectID)
	}
	m.ID = s.id()
	s.media[m.ID] = m

	status := compliance.MarkUpdated(compliance.DefaultStatus(m.ProjectID, now), now)
	s.compliance[m.ProjectID] = status
	return &m, &status, nil
}

func (s *memStore) projectMedia(projectID int64) []models.Media {
	out := []models.Media{}
	for _, m := range s.media {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (s *memStore) ListMedia(ctx context.Context, projectID int64, params models.MediaQuery) ([]models.Media, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if params.StartTime == "bogus" {
		return nil, 0, fmt.Errorf("invalid start_time: %w", database.ErrInvalidQuery)
	}

	out := []models.Media{}
	for _, m := range s.projectMedia(projectID) {
		if params.Stage != "" && m.Stage != params.Stage {
			continue
		}
		if params.Type != "" && m.Type != params.Type {
			continue
		}
		out = append(out, m)
	}
	total := int64(len(out))
	if params.Limit > 0 && params.Limit < len(out) {
		out = out[:params.Limit]
	}
	return out, total, nil
}

func (s *memStore) ListProjectMedia(ctx context.Context, projectID int64) ([]models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectMedia(projectID), nil
}

func (s *memStore) GetMedia(ctx context.Context, mediaID int64) (*models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[mediaID]
	if !ok {
		return nil, notFound("media", mediaID)
	}
	return &m, nil
}

func (s *memStore) UpdateMedia(ctx context.Context, mediaID int64, req models.UpdateMediaRequest) (*models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[mediaID]
	if !ok {
		return nil, notFound("media", mediaID)
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}
	if req.Stage != nil {
		m.Stage = *req.Stage
	}
	s.media[mediaID] = m
	return &m, nil
}

func (s *memStore) DeleteMedia(ctx context.Context, mediaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.media[mediaID]; !ok {
		return notFound("media", mediaID)
	}
	delete(s.media, mediaID)
	return nil
}

func (s *memStore) ListCompliance(ctx context.Context) ([]models.ComplianceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ComplianceStatus{}
	for _, c := range s.compliance {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}

func (s *memStore) SaveComplianceBatch(ctx context.Context, statuses []models.ComplianceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range statuses {
		cur, ok := s.compliance[st.ProjectID]
		if ok && cur.LastNotificationDate.Equal(st.LastNotificationDate) {
			s.compliance[st.ProjectID] = st
		}
	}
	return nil
}

func (s *memStore) GetCompliance(ctx context.Context, projectID int64) (models.ComplianceStatus, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.compliance[projectID]
	return c, ok, nil
}

func (s *memStore) UpsertCompliance(ctx context.Context, status models.ComplianceStatus) (*models.ComplianceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[status.ProjectID]; !ok {
		return nil, notFound("project", status.ProjectID)
	}
	s.compliance[status.ProjectID] = status
	return &status, nil
}

func (s *memStore) EnsureCompliance(ctx context.Context, status models.ComplianceStatus) (*models.ComplianceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[status.ProjectID]; !ok {
		return nil, notFound("project", status.ProjectID)
	}
	if cur, ok := s.compliance[status.ProjectID]; ok {
		return &cur, nil
	}
	s.compliance[status.ProjectID] = status
	return &status, nil
}

var _ Store = (*memStore)(nil)
var _ Store = (*database.DB)(nil)
