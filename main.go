package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"vulntagger/auth"
	"vulntagger/database"
	"vulntagger/handlers"
	"vulntagger/middleware"
)

func initLogger() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}),
	))
}

func main() {
	godotenv.Load()
	initLogger()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		slog.Error("DATABASE_URL not set")
		os.Exit(1)
	}

	// The salt comes from configuration, never from source. Changing it
	// invalidates every key issued so far.
	kc, err := auth.NewKeychain(os.Getenv("PROJECT_KEY_SALT"))
	if err != nil {
		slog.Error("PROJECT_KEY_SALT not set", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, databaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	r := gin.Default()
	r.Use(middleware.RequestID())

	r.GET("/health", handlers.HealthCheck)
	r.POST("/projects/create", handlers.CreateProject(db, kc))
	r.POST("/projects/resolve", handlers.ResolveProject(db, kc))

	vulns := r.Group("/projects/:project_id/vulns", middleware.ProjectAuth(db, kc))
	vulns.GET("", handlers.ListVulns(db))
	vulns.POST("", handlers.CreateVuln(db))
	vulns.PUT("/:vuln_id", handlers.UpdateVuln(db))
	vulns.DELETE("/:vuln_id", handlers.DeleteVuln(db))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	slog.Info("server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
