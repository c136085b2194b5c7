// Package server exposes the conversation backend over HTTP: thread
// creation, an SSE chat surface, and upload management for the remote file
// store.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/zulandar/fishbuddy/internal/assistant"
	"github.com/zulandar/fishbuddy/internal/session"
)

// StartOpts holds configuration for the backend HTTP server.
type StartOpts struct {
	Client assistant.Client
	Driver *session.Driver

	// MessagePage is the extractor page size per chat request.
	MessagePage int
	// Files is the upload registry shared with the pruning job.
	Files *FileStore
	// UploadTTL bounds the lifetime of upload registry entries.
	UploadTTL time.Duration

	Port          int
	AllowedOrigin string
	Out           io.Writer
}

// Start launches the backend HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Client == nil {
		return fmt.Errorf("server: assistant client is required")
	}
	if opts.Driver == nil {
		return fmt.Errorf("server: driver is required")
	}
	if opts.Files == nil {
		opts.Files = NewFileStore()
	}
	if opts.Port <= 0 {
		opts.Port = 5000
	}
	if opts.MessagePage <= 0 {
		opts.MessagePage = 20
	}

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(opts)

	// Prune stale upload registry entries hourly.
	if opts.UploadTTL > 0 {
		c := cron.New()
		c.AddFunc("@hourly", func() {
			if n := opts.Files.Prune(time.Now().Add(-opts.UploadTTL)); n > 0 {
				log.Printf("server: pruned %d stale upload entries", n)
			}
		})
		c.Start()
		defer c.Stop()
	}

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "FishBuddy backend running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// newRouter builds the gin engine with middleware and routes.
func newRouter(opts StartOpts) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(opts.AllowedOrigin))
	registerRoutes(router, opts)
	return router
}

// corsMiddleware allows the configured frontend origin. An empty origin
// disables the headers entirely.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
