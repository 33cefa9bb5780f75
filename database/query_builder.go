package database

import (
	"fmt"
	"strings"
	"time"
)

const (
	columnID           = "id"
	columnProjectID    = "project_id"
	columnType         = "type"
	columnStage        = "stage"
	columnNotes        = "notes"
	columnURL          = "url"
	columnThumbnailURL = "thumbnail_url"
	columnUploadedBy   = "uploaded_by"
	columnTimestamp    = "timestamp"

	columnCurrentStage = "current_stage"
	columnStatus       = "status"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// QueryBuilder accumulates parameterized WHERE conditions. Column names
// must come from the constants above, never from user input.
type QueryBuilder struct {
	conditions []string
	args       []any
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// placeholder binds value and returns its $n.
func (qb *QueryBuilder) placeholder(value any) string {
	qb.args = append(qb.args, value)
	return fmt.Sprintf("$%d", len(qb.args))
}

func (qb *QueryBuilder) where(format string, a ...any) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(format, a...))
}

func (qb *QueryBuilder) AddCondition(column string, value any) {
	qb.where("%s = %s", column, qb.placeholder(value))
}

// AddAnyOf matches column against any of values. A single value is
// rendered as a plain equality.
func (qb *QueryBuilder) AddAnyOf(column string, values []string) {
	switch len(values) {
	case 0:
		return
	case 1:
		qb.AddCondition(column, values[0])
	default:
		qb.where("%s = ANY(%s)", column, qb.placeholder(values))
	}
}

// AddTimeRange bounds column by start and end, both optional. Bounds are
// RFC3339 timestamps or YYYY-MM-DD dates (UTC); a date end includes that
// whole day.
func (qb *QueryBuilder) AddTimeRange(column, start, end string) error {
	if start != "" {
		from, _, err := parseTimeBound(start)
		if err != nil {
			return fmt.Errorf("invalid start_time: %w", err)
		}
		qb.where("%s >= %s", column, qb.placeholder(from))
	}

	if end != "" {
		to, dateOnly, err := parseTimeBound(end)
		if err != nil {
			return fmt.Errorf("invalid end_time: %w", err)
		}
		if dateOnly {
			qb.where("%s < %s", column, qb.placeholder(to.AddDate(0, 0, 1)))
		} else {
			qb.where("%s <= %s", column, qb.placeholder(to))
		}
	}

	return nil
}

// AddFullTextSearch matches column against a tsquery built by
// SearchQueryParser.
func (qb *QueryBuilder) AddFullTextSearch(column, tsQuery string) {
	qb.where("to_tsvector('english', %s) @@ to_tsquery('english', %s)", column, qb.placeholder(tsQuery))
}

func (qb *QueryBuilder) WhereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

func (qb *QueryBuilder) Args() []any {
	return qb.args
}

// NextArgNum is the placeholder number the next bound value will get.
func (qb *QueryBuilder) NextArgNum() int {
	return len(qb.args) + 1
}

// Paginate appends LIMIT and OFFSET placeholders for a media page and
// returns the clause plus the full argument list.
func (qb *QueryBuilder) Paginate(limit, offset int) (string, []any) {
	limit, offset = pageBounds(limit, offset)
	args := append(append([]any(nil), qb.args...), limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func parseTimeBound(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err = time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", s)
}

// pageBounds clamps limit to (0, maxLimit], defaulting to defaultLimit,
// and offset to >= 0.
func pageBounds(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
