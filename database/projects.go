package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"vulntagger/auth"
	"vulntagger/models"
)

const projectColumns = "id, name, base_url, secret_hash, created_at"

// CreateProject generates a fresh project id and secret key, persists
// the project with the salted hash of the key, and returns both. The
// plaintext key is returned exactly once, here; it is never stored and
// must never be logged.
func (db *DB) CreateProject(ctx context.Context, kc *auth.Keychain, name, baseURL string) (*models.Project, string, error) {
	projectID, err := auth.NewProjectID()
	if err != nil {
		return nil, "", err
	}

	key, err := auth.NewProjectKey()
	if err != nil {
		return nil, "", err
	}

	query := `
		INSERT INTO projects (id, name, base_url, secret_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID, name, baseURL, kc.Hash(key)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create project: %w", err)
	}

	slog.Info("created project", "project_id", project.ID, "name", project.Name)
	return project, key, nil
}

// GetProject looks up a project by its public id.
func (db *DB) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1
	`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// ResolveProject recovers the project a key belongs to by re-deriving
// the hash and matching it against the stored value. Read-only; lets a
// caller who holds only the key find its project id.
func (db *DB) ResolveProject(ctx context.Context, kc *auth.Keychain, key string) (*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE secret_hash = $1
	`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, kc.Hash(key)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to resolve project: %w", err)
	}

	return project, nil
}

// AuthenticateProject is the sole authorization gate for vuln
// operations: the claimed project must exist (ErrProjectNotFound) and
// the presented key must hash to the stored value
// (ErrInvalidProjectKey). The key is always checked against the
// claimed id, never accepted on its own.
func (db *DB) AuthenticateProject(ctx context.Context, kc *auth.Keychain, projectID, key string) (*models.Project, error) {
	project, err := db.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !kc.Verify(key, project.SecretHash) {
		return nil, ErrInvalidProjectKey
	}

	return project, nil
}

// Helper functions

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.BaseURL,
		&project.SecretHash,
		&project.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}
