package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/search"
	"github.com/kozaktomas/photo-librarian/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search API server",
	Long: `Start the HTTP API server. It exposes text, image, and fused search
endpoints plus library stats under /api/v1.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "Listen address (overrides LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	if addr := mustGetString(cmd, "listen"); addr != "" {
		cfg.Web.ListenAddr = addr
	}

	pool, records, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := signalContext()
	defer cancel()

	embedder, err := newTextEmbedder(cfg)
	if err != nil {
		return err
	}
	gemini, err := newGeminiClient(ctx, cfg)
	if err != nil {
		return err
	}

	engine := search.New(records, newClipClient(cfg), embedder, gemini, gemini, log)
	server := web.NewServer(cfg, engine, records, log)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
