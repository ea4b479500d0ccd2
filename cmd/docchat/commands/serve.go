// ABOUTME: Serve command runs the local development HTTP server
// ABOUTME: Mirrors the deployed API with SSE streaming against local storage
package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/documentgpt/docchat/internal/cache"
	"github.com/documentgpt/docchat/internal/ratelimit"
	"github.com/documentgpt/docchat/internal/server"
)

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local development server",
		Long: `Run the local development HTTP server.

Serves the same chat and index endpoints as the deployed backend,
including SSE streaming, against local storage. The frontend dev
setup points at this server.

Examples:
  docchat serve
  docchat serve --addr :9000`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: configured, :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.Close()

	answerCache, err := cache.New(s.cfg.CacheSize, s.cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("creating answer cache: %w", err)
	}
	limiter, err := ratelimit.New(ratelimit.Config{
		ChatPerMinute:  s.cfg.ChatPerMinute,
		IndexPerMinute: s.cfg.IndexPerMinute,
	})
	if err != nil {
		return fmt.Errorf("creating rate limiter: %w", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = s.cfg.ListenAddr
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: server.New(s.composer, s.indexer, answerCache, limiter).Handler(),
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	if !quiet {
		log.Printf("DocChat dev server listening on %s", addr)
	}

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
