// Package compliance decides whether a project has gone too long without a
// documented update.
//
// The evaluator is stateless: every function takes the record and the
// current time as parameters and returns a new record. Persistence and
// scheduling live in the callers (see Sweeper and the database package).
package compliance

import (
	"time"

	"fliptrack/models"
)

// StalenessThresholdDays is the number of days without an update after
// which a project requires one.
const StalenessThresholdDays = 7

// DefaultStatus is the record used for a project that has none yet.
func DefaultStatus(projectID int64, now time.Time) models.ComplianceStatus {
	return models.ComplianceStatus{
		ProjectID:            projectID,
		IsCompliant:          true,
		DaysSinceUpdate:      0,
		RequiresUpdate:       false,
		LastNotificationDate: now,
	}
}

// Evaluate recomputes the derived fields of status against now.
// LastNotificationDate is returned unchanged; a zero value counts as now.
func Evaluate(status models.ComplianceStatus, now time.Time) models.ComplianceStatus {
	days := DaysBetween(status.LastNotificationDate, now)

	status.DaysSinceUpdate = days
	status.IsCompliant = days < StalenessThresholdDays
	status.RequiresUpdate = !status.IsCompliant
	return status
}

// MarkUpdated resets status to compliant as of now.
func MarkUpdated(status models.ComplianceStatus, now time.Time) models.ComplianceStatus {
	status.IsCompliant = true
	status.DaysSinceUpdate = 0
	status.RequiresUpdate = false
	status.LastNotificationDate = now
	return status
}

// EvaluateAll applies Evaluate to every record, preserving order.
func EvaluateAll(statuses []models.ComplianceStatus, now time.Time) []models.ComplianceStatus {
	out := make([]models.ComplianceStatus, len(statuses))
	for i, s := range statuses {
		out[i] = Evaluate(s, now)
	}
	return out
}

// DaysBetween returns the number of calendar days from from to to, using
// the calendar of to's location. Time of day and DST shifts do not matter.
// A zero from, or a from later than to, gives 0.
func DaysBetween(from, to time.Time) int {
	if from.IsZero() {
		return 0
	}

	fy, fm, fd := from.In(to.Location()).Date()
	ty, tm, td := to.Date()

	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)

	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// DaysSinceDate is DaysBetween for calendar dates such as DATE columns.
// The year, month and day of date are used as-is, whatever its location.
func DaysSinceDate(date, now time.Time) int {
	if date.IsZero() {
		return 0
	}
	y, m, d := date.Date()
	return DaysBetween(time.Date(y, m, d, 0, 0, 0, 0, now.Location()), now)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses s as RFC3339 or a plain date in now's location.
// Empty or unparseable input yields now and ok=false.
func ParseTimestamp(s string, now time.Time) (t time.Time, ok bool) {
	if s == "" {
		return now, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return parsed, true
		}
	}
	return now, false
}
