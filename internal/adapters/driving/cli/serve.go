package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/folio/internal/logger"
)

var (
	serveAddr    string
	serveWithMCP bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve upload sessions over HTTP.

  POST   /v1/sessions                    create a session
  GET    /v1/sessions/{id}               show a session
  DELETE /v1/sessions/{id}               delete a session, its files and index
  POST   /v1/sessions/{id}/documents     upload PDFs (multipart field "pdfs") and index them
  GET    /v1/sessions/{id}/search?q=...  search the session's index
  GET    /v1/runs                        recent indexing runs

With --mcp the MCP streamable HTTP endpoint is also served at /mcp.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveWithMCP, "mcp", false, "also serve MCP at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}
	if indexService == nil {
		return errUnavailable("index service")
	}
	if searchService == nil {
		return errUnavailable("search service")
	}

	addr := serveAddr
	var maxUpload int64
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			if addr == "" {
				addr = settings.Server.Addr
			}
			maxUpload = settings.Server.MaxUploadBytes
		}
	}
	if addr == "" {
		addr = ":8080"
	}

	cfg := httpapi.Config{MaxUploadBytes: maxUpload}
	if serveWithMCP {
		mcpServer, err := newMCPServer()
		if err != nil {
			return err
		}
		cfg.MCP = mcpServer.Handler()
	}

	log := logger.JSON()
	api, err := httpapi.NewServer(httpapi.Ports{
		Sessions: sessionService,
		Index:    indexService,
		Search:   searchService,
		Runs:     runService,
	}, cfg, log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	log.Info("starting folio api", "addr", addr)
	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
