package reports

import (
	"testing"
	"time"

	"fliptrack/compliance"
	"fliptrack/models"
	"fliptrack/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC)

func sampleProject() models.Project {
	target := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	return models.Project{
		ID:           7,
		Name:         "Maple Street Flip",
		Address:      "123 Main St, City, State",
		StartDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TargetDate:   &target,
		CurrentStage: progress.Demo,
		Status:       models.StatusInProgress,
	}
}

func sampleMedia() []models.Media {
	return []models.Media{
		{ID: 1, ProjectID: 7, Type: models.MediaPhoto, Stage: progress.Planning, Timestamp: time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)},
		{ID: 2, ProjectID: 7, Type: models.MediaPhoto, Stage: progress.Demo, Timestamp: time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)},
		{ID: 3, ProjectID: 7, Type: models.MediaVideo, Stage: progress.Demo, Timestamp: time.Date(2024, 1, 20, 17, 0, 0, 0, time.UTC)},
		{ID: 4, ProjectID: 7, Type: models.MediaPhoto, Stage: "Framing", Timestamp: time.Date(2024, 1, 18, 9, 0, 0, 0, time.UTC)},
	}
}

func TestBuildReport(t *testing.T) {
	status := compliance.Evaluate(models.ComplianceStatus{
		ProjectID:            7,
		LastNotificationDate: time.Date(2024, 1, 20, 17, 0, 0, 0, time.UTC),
	}, now)

	r := BuildReport(sampleProject(), sampleMedia(), status, now)

	assert.Equal(t, "Demolition", r.Stage.Current.Label)
	assert.InDelta(t, 40, r.Stage.Percent, 1e-9)
	assert.Equal(t, 26, r.DaysElapsed)
	assert.Equal(t, 3, r.PhotoCount)
	assert.Equal(t, 1, r.VideoCount)
	require.NotNil(t, r.LatestUpdate)
	assert.Equal(t, time.Date(2024, 1, 20, 17, 0, 0, 0, time.UTC), *r.LatestUpdate)

	require.Len(t, r.MediaByStage, progress.Count())
	counts := map[string]int{}
	for _, sc := range r.MediaByStage {
		counts[sc.Stage.Key] = sc.Count
	}
	// Unknown stage keys are counted under the first stage.
	assert.Equal(t, 2, counts[progress.Planning])
	assert.Equal(t, 2, counts[progress.Demo])
	assert.Equal(t, 0, counts[progress.Complete])

	assert.True(t, r.Compliance.RequiresUpdate)
	assert.Equal(t, r.Text(), r.ReportSummary)
}

func TestBuildReport_NoMedia(t *testing.T) {
	status := compliance.DefaultStatus(7, now)
	r := BuildReport(sampleProject(), nil, status, now)

	assert.Zero(t, r.PhotoCount)
	assert.Zero(t, r.VideoCount)
	assert.Nil(t, r.LatestUpdate)
	assert.Len(t, r.MediaByStage, progress.Count())
	assert.NotContains(t, r.Text(), "Last update")
}

func TestReport_Text(t *testing.T) {
	status := compliance.Evaluate(models.ComplianceStatus{ProjectID: 7, LastNotificationDate: now.AddDate(0, 0, -2)}, now)
	text := BuildReport(sampleProject(), sampleMedia(), status, now).Text()

	assert.Contains(t, text, "Maple Street Flip - Project Report")
	assert.Contains(t, text, "Stage: Demolition (40% complete)")
	assert.Contains(t, text, "Next stage: Rough-In")
	assert.Contains(t, text, "Started: Jan 15, 2024 (26 days elapsed)")
	assert.Contains(t, text, "Target: Apr 15, 2024")
	assert.Contains(t, text, "Media: 3 photos, 1 videos")
	assert.Contains(t, text, "Compliance: OK (2 days since last update)")
}

func TestReport_Text_MissingStartDate(t *testing.T) {
	p := sampleProject()
	p.StartDate = time.Time{}
	p.TargetDate = nil
	text := BuildReport(p, nil, compliance.DefaultStatus(7, now), now).Text()

	assert.Contains(t, text, "Started: N/A (0 days elapsed)")
	assert.NotContains(t, text, "Target:")
}

func TestBuildStats(t *testing.T) {
	projects := []models.Project{
		{ID: 1, Status: models.StatusInProgress},
		{ID: 2, Status: models.StatusInProgress},
		{ID: 3, Status: models.StatusComplete},
		{ID: 4, Status: models.StatusSold},
	}
	statuses := []models.ComplianceStatus{
		{ProjectID: 1, RequiresUpdate: true},
		{ProjectID: 2, IsCompliant: true},
		{ProjectID: 3, RequiresUpdate: true},
	}

	s := BuildStats(projects, statuses)

	assert.Equal(t, Stats{TotalProjects: 4, ActiveProjects: 2, CompletedProjects: 2, NeedUpdates: 2}, s)
	assert.Equal(t, Stats{}, BuildStats(nil, nil))
}

func TestGroupTimeline(t *testing.T) {
	days := GroupTimeline(sampleMedia(), time.UTC)

	require.Len(t, days, 3)
	assert.Equal(t, "2024-01-20", days[0].Date)
	assert.Equal(t, "Jan 20, 2024", days[0].Label)
	require.Len(t, days[0].Items, 2)
	assert.Equal(t, int64(3), days[0].Items[0].ID)
	assert.Equal(t, int64(2), days[0].Items[1].ID)
	assert.Equal(t, "2024-01-18", days[1].Date)
	assert.Equal(t, "2024-01-16", days[2].Date)
}

func TestGroupTimeline_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	media := []models.Media{
		{ID: 1, Timestamp: time.Date(2024, 1, 20, 3, 0, 0, 0, time.UTC)}, // Jan 19 locally
		{ID: 2, Timestamp: time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)},
	}

	days := GroupTimeline(media, loc)

	require.Len(t, days, 2)
	assert.Equal(t, "2024-01-20", days[0].Date)
	assert.Equal(t, "2024-01-19", days[1].Date)
}

func TestGroupTimeline_Empty(t *testing.T) {
	days := GroupTimeline(nil, time.UTC)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}
