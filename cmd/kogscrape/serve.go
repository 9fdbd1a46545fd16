package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kazantsevivan2813-art/kogscrape/internal/archive"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the downloads tree with the navigation page at /",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog := setupLogger(cfg)
			defer closeLog()

			// Regenerate the index so the landing page matches the tree.
			scan, err := archive.Scan(cfg.Scrape.OutputDir, logger)
			if err != nil {
				return err
			}
			if err := writeNavigationPages(cfg, scan, logger); err != nil {
				return err
			}

			root := cfg.Scrape.OutputDir
			mux := http.NewServeMux()
			mux.Handle("/", http.FileServer(http.Dir(root)))
			mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
				http.ServeFile(w, r, filepath.Join(root, "navigation.html"))
			})
			mux.HandleFunc("/sections", func(w http.ResponseWriter, r *http.Request) {
				http.ServeFile(w, r, filepath.Join(root, "section_navigation.html"))
			})

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			logger.Info("serving downloads", "addr", addr, "root", root)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
