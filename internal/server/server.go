// Package server exposes a small operator HTTP endpoint with liveness and
// storage counters.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"weather-news-bot/internal/repository"
)

// Stats is the payload of GET /stats.
type Stats struct {
	Users      int64 `json:"users"`
	Subscribed int64 `json:"subscribed"`
	Logs       int64 `json:"logs"`
}

// CollectStats counts users, subscribers and log entries in one session.
func CollectStats(ctx context.Context, store *repository.Store) (Stats, error) {
	var stats Stats
	err := store.Session(ctx, func(s *repository.Session) error {
		var err error
		if stats.Users, err = s.Users.Count(ctx); err != nil {
			return err
		}
		if stats.Subscribed, err = s.Users.CountSubscribed(ctx); err != nil {
			return err
		}
		stats.Logs, err = s.Logs.Count(ctx)
		return err
	})
	return stats, err
}

// NewRouter builds the gin engine.
func NewRouter(store *repository.Store, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/stats", func(c *gin.Context) {
		stats, err := CollectStats(c.Request.Context(), store)
		if err != nil {
			logger.Error("collect stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	return router
}

// Run serves the router on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, router http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("operator endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
