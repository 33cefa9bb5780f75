// Package reports assembles project summaries, dashboard stats and the
// media timeline from already-loaded records.
package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fliptrack/compliance"
	"fliptrack/models"
	"fliptrack/progress"
)

const dateLayout = "Jan 02, 2006"

// StageCount is the number of media items captured at one stage.
type StageCount struct {
	Stage progress.Stage `json:"stage"`
	Count int            `json:"count"`
}

type Report struct {
	Project       models.Project          `json:"project"`
	Stage         progress.View           `json:"stage"`
	DaysElapsed   int                     `json:"days_elapsed"`
	PhotoCount    int                     `json:"photo_count"`
	VideoCount    int                     `json:"video_count"`
	MediaByStage  []StageCount            `json:"media_by_stage"`
	LatestUpdate  *time.Time              `json:"latest_update"`
	Compliance    models.ComplianceStatus `json:"compliance"`
	GeneratedAt   time.Time               `json:"generated_at"`
	ReportSummary string                  `json:"summary"`
}

// BuildReport summarises a project and its media as of now.
// status must already be evaluated.
func BuildReport(p models.Project, media []models.Media, status models.ComplianceStatus, now time.Time) Report {
	r := Report{
		Project:     p,
		Stage:       progress.Describe(p.CurrentStage),
		DaysElapsed: compliance.DaysSinceDate(p.StartDate, now),
		Compliance:  status,
		GeneratedAt: now,
	}

	byStage := make(map[string]int)
	for _, m := range media {
		switch m.Type {
		case models.MediaPhoto:
			r.PhotoCount++
		case models.MediaVideo:
			r.VideoCount++
		}
		byStage[progress.Info(m.Stage).Key]++

		if r.LatestUpdate == nil || m.Timestamp.After(*r.LatestUpdate) {
			ts := m.Timestamp
			r.LatestUpdate = &ts
		}
	}

	for _, stage := range progress.All() {
		r.MediaByStage = append(r.MediaByStage, StageCount{Stage: stage, Count: byStage[stage.Key]})
	}

	r.ReportSummary = r.Text()
	return r
}

// Text renders the report as plain text.
func (r Report) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s - Project Report\n", r.Project.Name)
	fmt.Fprintf(&b, "Address: %s\n", r.Project.Address)
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format(dateLayout))

	fmt.Fprintf(&b, "Stage: %s (%.0f%% complete)\n", r.Stage.Current.Label, r.Stage.Percent)
	if r.Stage.Next != nil {
		fmt.Fprintf(&b, "Next stage: %s\n", r.Stage.Next.Label)
	}
	fmt.Fprintf(&b, "Started: %s (%d days elapsed)\n", formatDate(r.Project.StartDate), r.DaysElapsed)
	if r.Project.TargetDate != nil {
		fmt.Fprintf(&b, "Target: %s\n", formatDate(*r.Project.TargetDate))
	}

	fmt.Fprintf(&b, "\nMedia: %d photos, %d videos\n", r.PhotoCount, r.VideoCount)
	for _, sc := range r.MediaByStage {
		fmt.Fprintf(&b, "  %-12s %d\n", sc.Stage.Label, sc.Count)
	}
	if r.LatestUpdate != nil {
		fmt.Fprintf(&b, "Last update: %s\n", r.LatestUpdate.Format(dateLayout))
	}

	if r.Compliance.RequiresUpdate {
		fmt.Fprintf(&b, "\nCompliance: UPDATE REQUIRED (%d days since last update)\n", r.Compliance.DaysSinceUpdate)
	} else {
		fmt.Fprintf(&b, "\nCompliance: OK (%d days since last update)\n", r.Compliance.DaysSinceUpdate)
	}

	return b.String()
}

// formatDate mirrors the client's display helper: zero dates render as N/A.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(dateLayout)
}

type Stats struct {
	TotalProjects     int `json:"total_projects"`
	ActiveProjects    int `json:"active_projects"`
	CompletedProjects int `json:"completed_projects"`
	NeedUpdates       int `json:"need_updates"`
}

// BuildStats computes the dashboard counters. Completed covers both
// Complete and Sold projects.
func BuildStats(projects []models.Project, statuses []models.ComplianceStatus) Stats {
	s := Stats{TotalProjects: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case models.StatusInProgress:
			s.ActiveProjects++
		case models.StatusComplete, models.StatusSold:
			s.CompletedProjects++
		}
	}
	s.NeedUpdates = compliance.CountRequiringUpdate(statuses)
	return s
}

// TimelineDay is every media item captured on one calendar day.
type TimelineDay struct {
	Date  string         `json:"date"`
	Label string         `json:"label"`
	Items []models.Media `json:"items"`
}

// GroupTimeline buckets media by calendar day in loc, newest day first,
// newest item first within a day.
func GroupTimeline(media []models.Media, loc *time.Location) []TimelineDay {
	sorted := append([]models.Media(nil), media...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	days := []TimelineDay{}
	index := make(map[string]int)
	for _, m := range sorted {
		local := m.Timestamp.In(loc)
		key := local.Format("2006-01-02")

		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, TimelineDay{Date: key, Label: local.Format(dateLayout)})
		}
		days[i].Items = append(days[i].Items, m)
	}
	return days
}
