package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vulntagger/models"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// SearchQueryParser validates and transforms user search input into
// PostgreSQL tsquery format. Length limits guard against abuse; quotes
// and parentheses are stripped so user text cannot alter the tsquery
// structure.
type SearchQueryParser struct {
	minLength int
	maxLength int
}

func NewSearchQueryParser() *SearchQueryParser {
	return &SearchQueryParser{
		minLength: 3,
		maxLength: 1000,
	}
}

// Parse trims, sanitizes and lowercases the query, drops
// single-character words, and joins the remaining terms with the AND
// operator. "Reflected XSS" becomes "reflected & xss".
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

func (p *SearchQueryParser) sanitize(query string) string {
	for _, ch := range []string{`"`, "'", "(", ")"} {
		query = strings.ReplaceAll(query, ch, "")
	}
	return query
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

// SearchVulns performs full-text search over vuln descriptions and
// reproduction steps, scoped to a single project. Results carry a Rank
// and are ordered by relevance first, newest id second. Exact-match
// filters from params still apply on top of the text match.
func (db *DB) SearchVulns(ctx context.Context, projectID string, params models.VulnQueryParams) ([]models.Vuln, error) {
	start := time.Now()
	defer func() {
		slog.Debug("SearchVulns", "duration", time.Since(start), "project_id", projectID, "query", params.Search)
	}()

	parser := NewSearchQueryParser()
	tsQuery, err := parser.Parse(params.Search)
	if err != nil {
		return nil, fmt.Errorf("invalid search query: %w", err)
	}

	limit := validateLimit(params.Limit, defaultLimit, maxLimit)
	offset := validateOffset(params.Offset)

	qb := NewQueryBuilder()
	qb.AddCondition(columnProjectID, projectID)
	qb.AddFullTextSearch(tsQuery)

	if params.PageURL != "" {
		qb.AddCondition(columnPageURL, params.PageURL)
	}
	if params.Type != "" {
		qb.AddCondition(columnType, params.Type)
	}
	if params.Severity != "" {
		qb.AddCondition(columnSeverity, params.Severity)
	}
	if params.Status != "" {
		qb.AddCondition(columnStatus, params.Status)
	}
	if err := qb.AddTimeRange(columnCreatedAt, params.StartTime, params.EndTime); err != nil {
		return nil, err
	}

	// SAFETY: the tsquery text is parameterized as $2; WhereClause only
	// contains column names and SQL operators.
	query := fmt.Sprintf(`
		SELECT %s,
			ts_rank(to_tsvector('english', %s), to_tsquery('english', $2)) AS rank
		FROM vulns
		%s
		ORDER BY rank DESC, %s DESC
		LIMIT $%d OFFSET $%d
	`, vulnColumns, searchDocument, qb.WhereClause(), columnID, qb.NextArgNum(), qb.NextArgNum()+1)

	args := append(qb.Args(), limit, offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search vulns: %w", err)
	}
	defer rows.Close()

	return scanVulns(rows, true)
}
