package compliance

import (
	"testing"
	"time"
	_ "time/tzdata"

	"fliptrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 11, 22, 10, 30, 0, 0, time.UTC)

func daysAgo(n int) models.ComplianceStatus {
	return models.ComplianceStatus{
		ProjectID:            1,
		IsCompliant:          true,
		LastNotificationDate: fixedNow.AddDate(0, 0, -n),
	}
}

func assertConsistent(t *testing.T, s models.ComplianceStatus) {
	t.Helper()
	assert.Equal(t, !s.IsCompliant, s.RequiresUpdate, "requires_update must negate is_compliant")
}

func TestDefaultStatus(t *testing.T) {
	s := DefaultStatus(42, fixedNow)

	assert.Equal(t, int64(42), s.ProjectID)
	assert.True(t, s.IsCompliant)
	assert.False(t, s.RequiresUpdate)
	assert.Zero(t, s.DaysSinceUpdate)
	assert.Equal(t, fixedNow, s.LastNotificationDate)
	assertConsistent(t, s)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name           string
		age            int
		wantDays       int
		wantCompliant  bool
		wantNeedUpdate bool
	}{
		{name: "same day", age: 0, wantDays: 0, wantCompliant: true},
		{name: "three days", age: 3, wantDays: 3, wantCompliant: true},
		{name: "six days", age: 6, wantDays: 6, wantCompliant: true},
		{name: "exactly seven days", age: 7, wantDays: 7, wantCompliant: false, wantNeedUpdate: true},
		{name: "ten days", age: 10, wantDays: 10, wantCompliant: false, wantNeedUpdate: true},
		{name: "long neglect", age: 400, wantDays: 400, wantCompliant: false, wantNeedUpdate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := daysAgo(tt.age)
			got := Evaluate(in, fixedNow)

			assert.Equal(t, tt.wantDays, got.DaysSinceUpdate)
			assert.Equal(t, tt.wantCompliant, got.IsCompliant)
			assert.Equal(t, tt.wantNeedUpdate, got.RequiresUpdate)
			assert.Equal(t, in.LastNotificationDate, got.LastNotificationDate)
			assertConsistent(t, got)
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	in := daysAgo(9)
	first := Evaluate(in, fixedNow)
	second := Evaluate(first, fixedNow)

	assert.Equal(t, first, second)
	assert.Equal(t, first, Evaluate(in, fixedNow))
}

func TestEvaluate_MissingTimestampCountsAsNow(t *testing.T) {
	in := models.ComplianceStatus{ProjectID: 3, IsCompliant: false, RequiresUpdate: true, DaysSinceUpdate: 30}
	got := Evaluate(in, fixedNow)

	assert.Zero(t, got.DaysSinceUpdate)
	assert.True(t, got.IsCompliant)
	assert.False(t, got.RequiresUpdate)
}

func TestEvaluate_FutureTimestampIsZeroDays(t *testing.T) {
	in := models.ComplianceStatus{ProjectID: 1, LastNotificationDate: fixedNow.Add(72 * time.Hour)}
	got := Evaluate(in, fixedNow)

	assert.Zero(t, got.DaysSinceUpdate)
	assert.True(t, got.IsCompliant)
}

func TestEvaluate_RecoversFromInconsistentInput(t *testing.T) {
	in := daysAgo(2)
	in.IsCompliant = false
	in.RequiresUpdate = false

	got := Evaluate(in, fixedNow)
	assert.True(t, got.IsCompliant)
	assertConsistent(t, got)
}

func TestMarkUpdated(t *testing.T) {
	stale := Evaluate(daysAgo(15), fixedNow)
	require.Equal(t, 15, stale.DaysSinceUpdate)
	require.True(t, stale.RequiresUpdate)

	got := MarkUpdated(stale, fixedNow)

	assert.Equal(t, stale.ProjectID, got.ProjectID)
	assert.Zero(t, got.DaysSinceUpdate)
	assert.True(t, got.IsCompliant)
	assert.False(t, got.RequiresUpdate)
	assert.Equal(t, fixedNow, got.LastNotificationDate)
	assertConsistent(t, got)
}

func TestMarkUpdated_RepeatedCallsRestamp(t *testing.T) {
	later := fixedNow.Add(time.Second)
	first := MarkUpdated(daysAgo(1), fixedNow)
	second := MarkUpdated(first, later)

	assert.Equal(t, later, second.LastNotificationDate)
	assert.Zero(t, second.DaysSinceUpdate)
}

func TestEvaluateAll(t *testing.T) {
	in := []models.ComplianceStatus{daysAgo(2), daysAgo(8), daysAgo(7)}
	in[0].ProjectID, in[1].ProjectID, in[2].ProjectID = 10, 20, 30

	got := EvaluateAll(in, fixedNow)

	require.Len(t, got, 3)
	assert.Equal(t, []int64{10, 20, 30}, []int64{got[0].ProjectID, got[1].ProjectID, got[2].ProjectID})
	assert.Equal(t, []bool{false, true, true}, []bool{got[0].RequiresUpdate, got[1].RequiresUpdate, got[2].RequiresUpdate})
	for _, s := range got {
		assertConsistent(t, s)
	}
}

func TestEvaluateAll_KeepsDuplicatesAndEmpty(t *testing.T) {
	dup := daysAgo(3)
	got := EvaluateAll([]models.ComplianceStatus{dup, dup}, fixedNow)
	assert.Len(t, got, 2)

	assert.Empty(t, EvaluateAll(nil, fixedNow))
}

func TestDaysBetween_CalendarDays(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{
			name:     "late evening to early morning is one day",
			from:     time.Date(2024, 3, 1, 23, 50, 0, 0, loc),
			to:       time.Date(2024, 3, 2, 0, 10, 0, 0, loc),
			expected: 1,
		},
		{
			name:     "early morning to late evening same day is zero",
			from:     time.Date(2024, 3, 2, 0, 5, 0, 0, loc),
			to:       time.Date(2024, 3, 2, 23, 55, 0, 0, loc),
			expected: 0,
		},
		{
			name:     "across spring forward",
			from:     time.Date(2024, 3, 9, 12, 0, 0, 0, loc),
			to:       time.Date(2024, 3, 16, 1, 0, 0, 0, loc),
			expected: 7,
		},
		{
			name:     "from in another zone is read in the calendar of to",
			from:     time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC), // 22:00 on Mar 1 in New York
			to:       time.Date(2024, 3, 2, 8, 0, 0, 0, loc),
			expected: 1,
		},
		{
			name:     "zero from",
			from:     time.Time{},
			to:       time.Date(2024, 3, 2, 8, 0, 0, 0, loc),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.from, tt.to))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   time.Time
	}{
		{name: "RFC3339", input: "2024-11-20T08:00:00Z", wantOK: true, want: time.Date(2024, 11, 20, 8, 0, 0, 0, time.UTC)},
		{name: "with milliseconds", input: "2024-11-20T08:00:00.123Z", wantOK: true, want: time.Date(2024, 11, 20, 8, 0, 0, 123000000, time.UTC)},
		{name: "date only", input: "2024-11-20", wantOK: true, want: time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "not-a-date", wantOK: false, want: fixedNow},
		{name: "empty", input: "", wantOK: false, want: fixedNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input, fixedNow)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestDaysSinceDate_IgnoresDateLocation(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*3600)
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC) // as scanned from a DATE column
	now := time.Date(2024, 1, 20, 8, 0, 0, 0, loc)

	assert.Equal(t, 5, DaysSinceDate(start, now))
	assert.Equal(t, 6, DaysBetween(start, now), "instant arithmetic reads midnight UTC as the previous evening")
	assert.Zero(t, DaysSinceDate(time.Time{}, now))
}
