package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/taskleaf/taskleaf/api"
	"github.com/taskleaf/taskleaf/config"
	"github.com/taskleaf/taskleaf/db"
	"github.com/taskleaf/taskleaf/log"
)

func main() {
	cfg := config.Get()
	log.Setup(cfg.IsDevelopment())
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		log.SetLevel(level)
	}

	// Initialize database (runs migrations)
	_ = db.GetDB()
	if version, err := db.GetCurrentVersion(); err == nil {
		log.Info().Str("path", cfg.DatabasePath).Int("schemaVersion", version).Msg("database initialized")
	}

	if n, err := db.DeleteExpiredSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to purge expired sessions")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("purged expired sessions")
	}

	// Gin's own debug logging is replaced by the zerolog request logger
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	if cfg.IsDevelopment() {
		r.Use(api.CORSMiddleware())
	}

	r.SetTrustedProxies(nil)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Todo API is running"})
	})

	api.SetupRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:     addr,
		Handler:  r,
		ErrorLog: log.StdErrorLogger(),
	}

	go func() {
		log.Info().
			Str("addr", addr).
			Str("env", cfg.Env).
			Str("authMode", cfg.AuthMode).
			Msg("server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("database close error")
	}

	log.Info().Msg("server stopped")
}
