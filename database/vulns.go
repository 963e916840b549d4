package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"vulntagger/models"
)

const vulnColumns = "id, project_id, page_url, selector, type, severity, status, description, steps, payload, created_at"

// CreateVuln persists a new vuln bound to the given project. The id
// and created_at are assigned server-side; optional fields arrive as
// empty strings from the input layer.
func (db *DB) CreateVuln(ctx context.Context, projectID string, input models.VulnInput) (*models.Vuln, error) {
	query := `
		INSERT INTO vulns (project_id, page_url, selector, type, severity, status, description, steps, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + vulnColumns

	vuln, err := scanVuln(db.Pool.QueryRow(ctx, query,
		projectID, input.PageURL, input.Selector, input.Type,
		input.Severity, input.Status, input.Description, input.Steps, input.Payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create vuln: %w", err)
	}

	return vuln, nil
}

// ListVulns returns the project's vulns, newest first (descending id,
// a stable surrogate for creation order). Filters are exact matches
// ANDed together; a search query delegates to SearchVulns instead.
// Returns an empty slice, not an error, when nothing matches.
func (db *DB) ListVulns(ctx context.Context, projectID string, params models.VulnQueryParams) ([]models.Vuln, error) {
	start := time.Now()
	defer func() {
		slog.Debug("ListVulns", "duration", time.Since(start), "project_id", projectID,
			"page_url", params.PageURL, "severity", params.Severity)
	}()

	if params.Search != "" {
		return db.SearchVulns(ctx, projectID, params)
	}

	qb := NewQueryBuilder()
	qb.AddCondition(columnProjectID, projectID)

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

	// SAFETY: All user input is parameterized via $N placeholders.
	// WhereClause only contains column names and SQL operators.
	query := fmt.Sprintf(`
		SELECT %s
		FROM vulns
		%s
		ORDER BY %s DESC
	`, vulnColumns, qb.WhereClause(), columnID)

	rows, err := db.Pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vulns: %w", err)
	}
	defer rows.Close()

	return scanVulns(rows, false)
}

// UpdateVuln replaces every mutable field of the vuln wholesale; id,
// project_id and created_at are untouched. The ownership predicate
// makes records under other projects invisible: same identifier space,
// no cross-project leakage, so a foreign id reports ErrVulnNotFound.
func (db *DB) UpdateVuln(ctx context.Context, projectID string, vulnID int64, input models.VulnInput) (*models.Vuln, error) {
	query := `
		UPDATE vulns
		SET page_url = $1, selector = $2, type = $3, severity = $4,
			status = $5, description = $6, steps = $7, payload = $8
		WHERE id = $9 AND project_id = $10
		RETURNING ` + vulnColumns

	vuln, err := scanVuln(db.Pool.QueryRow(ctx, query,
		input.PageURL, input.Selector, input.Type, input.Severity,
		input.Status, input.Description, input.Steps, input.Payload,
		vulnID, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVulnNotFound
		}
		return nil, fmt.Errorf("failed to update vuln: %w", err)
	}

	return vuln, nil
}

// DeleteVuln permanently removes the vuln under the same ownership
// predicate as UpdateVuln. Deleting an already-deleted id reports
// ErrVulnNotFound, not success.
func (db *DB) DeleteVuln(ctx context.Context, projectID string, vulnID int64) error {
	query := `DELETE FROM vulns WHERE id = $1 AND project_id = $2`

	result, err := db.Pool.Exec(ctx, query, vulnID, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete vuln: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrVulnNotFound
	}

	slog.Info("deleted vuln", "vuln_id", vulnID, "project_id", projectID)
	return nil
}

// Helper functions

func scanVuln(row rowScanner) (*models.Vuln, error) {
	var vuln models.Vuln
	err := row.Scan(
		&vuln.ID,
		&vuln.ProjectID,
		&vuln.PageURL,
		&vuln.Selector,
		&vuln.Type,
		&vuln.Severity,
		&vuln.Status,
		&vuln.Description,
		&vuln.Steps,
		&vuln.Payload,
		&vuln.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &vuln, nil
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanVulns(rows rowsScanner, withRank bool) ([]models.Vuln, error) {
	vulns := []models.Vuln{}
	for rows.Next() {
		var vuln models.Vuln
		dest := []interface{}{
			&vuln.ID,
			&vuln.ProjectID,
			&vuln.PageURL,
			&vuln.Selector,
			&vuln.Type,
			&vuln.Severity,
			&vuln.Status,
			&vuln.Description,
			&vuln.Steps,
			&vuln.Payload,
			&vuln.CreatedAt,
		}
		if withRank {
			vuln.Rank = new(float64)
			dest = append(dest, vuln.Rank)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan vuln row: %w", err)
		}
		vulns = append(vulns, vuln)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vulns: %w", err)
	}

	return vulns, nil
}
