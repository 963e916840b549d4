package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vulntagger/database"
	"vulntagger/models"
)

// projectFromContext returns the project stored by the auth
// middleware. Routes using these handlers must be behind ProjectAuth.
func projectFromContext(c *gin.Context) (*models.Project, bool) {
	value, ok := c.Get("project")
	if !ok {
		return nil, false
	}
	project, ok := value.(*models.Project)
	return project, ok
}

func ListVulns(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := projectFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "missing authenticated project"})
			return
		}

		var params models.VulnQueryParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		vulns, err := db.ListVulns(ctx, project.ID, params)
		if err != nil {
			slog.Error("failed to list vulns", "error", err, "project_id", project.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list vulns"})
			return
		}

		c.JSON(http.StatusOK, models.VulnsResponse{
			Vulns: vulns,
			Total: len(vulns),
		})
	}
}

func CreateVuln(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.VulnInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		project, ok := projectFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "missing authenticated project"})
			return
		}

		ctx := c.Request.Context()
		vuln, err := db.CreateVuln(ctx, project.ID, input)
		if err != nil {
			slog.Error("failed to create vuln", "error", err, "project_id", project.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create vuln"})
			return
		}

		c.JSON(http.StatusCreated, vuln)
	}
}

func UpdateVuln(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		vulnID, err := strconv.ParseInt(c.Param("vuln_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vuln ID"})
			return
		}

		var input models.VulnInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		project, ok := projectFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "missing authenticated project"})
			return
		}

		ctx := c.Request.Context()
		vuln, err := db.UpdateVuln(ctx, project.ID, vulnID, input)
		if err != nil {
			if errors.Is(err, database.ErrVulnNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vuln not found"})
				return
			}
			slog.Error("failed to update vuln", "error", err, "project_id", project.ID, "vuln_id", vulnID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update vuln"})
			return
		}

		c.JSON(http.StatusOK, vuln)
	}
}

func DeleteVuln(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		vulnID, err := strconv.ParseInt(c.Param("vuln_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vuln ID"})
			return
		}

		project, ok := projectFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "missing authenticated project"})
			return
		}

		ctx := c.Request.Context()
		if err := db.DeleteVuln(ctx, project.ID, vulnID); err != nil {
			if errors.Is(err, database.ErrVulnNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vuln not found"})
				return
			}
			slog.Error("failed to delete vuln", "error", err, "project_id", project.ID, "vuln_id", vulnID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete vuln"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
