package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vulntagger/auth"
	"vulntagger/database"
	"vulntagger/models"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// CreateProject issues a new project identity. The response carries
// the plaintext key; this is the only time the server ever produces
// it, so it must not appear in any log line.
func CreateProject(db *database.DB, kc *auth.Keychain) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		project, key, err := db.CreateProject(ctx, kc, req.Name, req.BaseURL)
		if err != nil {
			slog.Error("failed to create project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
			return
		}

		c.JSON(http.StatusCreated, models.ProjectResponse{
			ID:      project.ID,
			Name:    project.Name,
			BaseURL: project.BaseURL,
			Key:     key,
		})
	}
}

// ResolveProject returns the project a key belongs to, for callers who
// hold only the key. The key arrives in the request body.
func ResolveProject(db *database.DB, kc *auth.Keychain) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ResolveProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		project, err := db.ResolveProject(ctx, kc, req.Key)
		if err != nil {
			if errors.Is(err, database.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found for this key"})
				return
			}
			slog.Error("failed to resolve project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve project"})
			return
		}

		c.JSON(http.StatusOK, models.ProjectResponse{
			ID:      project.ID,
			Name:    project.Name,
			BaseURL: project.BaseURL,
			Key:     req.Key,
		})
	}
}
