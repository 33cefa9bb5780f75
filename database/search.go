package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fliptrack/models"

	"go.uber.org/zap"
)

// SearchQueryParser validates and transforms user search queries to PostgreSQL tsquery format.
// Enforces minimum/maximum length and sanitizes special characters.
type SearchQueryParser struct {
	minLength int
	maxLength int
}

// NewSearchQueryParser creates a SearchQueryParser with default limits.
// Default: minimum 3 characters, maximum 200 characters.
func NewSearchQueryParser() *SearchQueryParser {
	return &SearchQueryParser{
		minLength: 3,
		maxLength: 200,
	}
}

// Parse converts a search query to PostgreSQL tsquery format.
// Performs the following transformations:
//  1. Trims whitespace
//  2. Validates length (min 3, max 200 chars)
//  3. Removes characters with tsquery meaning (quotes, parentheses, operators)
//  4. Splits into words
//  5. Filters out single-character words
//  6. Converts to lowercase
//  7. Joins with " & " (AND operator)
//
// Examples:
//
//	"Kitchen Tile" → "kitchen & tile"
//	"drywall (patched)" → "drywall & patched"
//	"a new roof" → "new & roof"
func (p *SearchQueryParser) Parse(query string) (string, error) {
	query = strings.TrimSpace(query)

	if len(query) < p.minLength {
		return "", fmt.Errorf("search query must be at least %d characters", p.minLength)
	}

	if len(query) > p.maxLength {
		return "", fmt.Errorf("search query too long (max %d characters)", p.maxLength)
	}

	query = p.sanitize(query)

	words := strings.Fields(query)
	if len(words) == 0 {
		return "", fmt.Errorf("search query is empty")
	}

	validWords := p.filterValidWords(words)
	if len(validWords) == 0 {
		return "", fmt.Errorf("no valid search terms")
	}

	return strings.Join(validWords, " & "), nil
}

var tsqueryReplacer = strings.NewReplacer(
	`"`, "",
	"'", "",
	"(", "",
	")", "",
	"&", " ",
	"|", " ",
	"!", " ",
	":", " ",
	"<", " ",
	">", " ",
)

func (p *SearchQueryParser) sanitize(query string) string {
	return tsqueryReplacer.Replace(query)
}

func (p *SearchQueryParser) filterValidWords(words []string) []string {
	valid := []string{}
	for _, word := range words {
		if len(word) >= 2 {
			valid = append(valid, strings.ToLower(word))
		}
	}
	return valid
}

// SearchMedia performs full-text search on media notes using the GIN index.
// Results are ranked by relevance (ts_rank) and timestamp (DESC), limited to
// one project, and support the same stage/type/time filters as ListMedia.
func (db *DB) SearchMedia(ctx context.Context, projectID int64, params models.MediaQuery) ([]models.Media, int64, error) {
	defer db.track("SearchMedia", "media_updates", time.Now(),
		zap.Int64("project_id", projectID), zap.String("query", params.Search))

	parser := NewSearchQueryParser()
	tsQuery, err := parser.Parse(params.Search)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: search: %v", ErrInvalidQuery, err)
	}

	// project_id is $1 and the tsquery is $2; ts_rank below relies on that.
	qb := NewQueryBuilder()
	qb.AddCondition(columnProjectID, projectID)
	qb.AddFullTextSearch(columnNotes, tsQuery)

	if params.Stage != "" {
		qb.AddCondition(columnStage, params.Stage)
	}
	if params.Type != "" {
		qb.AddCondition(columnType, params.Type)
	}
	if err := qb.AddTimeRange(columnTimestamp, params.StartTime, params.EndTime); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	page, args := qb.Paginate(params.Limit, params.Offset)

	// SAFETY: All user input is parameterized. whereClause only contains safe SQL.
	query := fmt.Sprintf(`
		SELECT
			%s,
			ts_rank(to_tsvector('english', %s), to_tsquery('english', $2)) as rank,
			COUNT(*) OVER() as total_count
		FROM media_updates
		%s
		ORDER BY rank DESC, %s DESC
		%s
	`, mediaColumns, columnNotes, qb.WhereClause(), columnTimestamp, page)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search media: %w", err)
	}
	defer rows.Close()

	return scanMediaPage(rows, true)
}
