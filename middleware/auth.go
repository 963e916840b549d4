package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vulntagger/auth"
	"vulntagger/database"
)

// ProjectKeyHeader carries the plaintext key on authenticated
// requests. The key travels in a header, never in the URL, so it does
// not end up in access logs.
const ProjectKeyHeader = "X-Project-Key"

// ProjectAuth authenticates the key presented in the X-Project-Key
// header against the project id claimed in the URL path. The key is
// only ever accepted together with a claimed id. On success the
// authenticated project is stored in the gin context for handlers.
func ProjectAuth(db *database.DB, kc *auth.Keychain) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(ProjectKeyHeader)
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "project key required"})
			c.Abort()
			return
		}

		projectID := c.Param("project_id")

		ctx := c.Request.Context()
		project, err := db.AuthenticateProject(ctx, kc, projectID, key)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrProjectNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			case errors.Is(err, database.ErrInvalidProjectKey):
				c.JSON(http.StatusForbidden, gin.H{"error": "invalid project key"})
			default:
				slog.Error("project authentication failed", "error", err, "project_id", projectID)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
			}
			c.Abort()
			return
		}

		c.Set("project", project)

		c.Next()
	}
}
