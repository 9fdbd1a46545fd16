package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kazantsevivan2813-art/kogscrape/internal/archive"
	"github.com/kazantsevivan2813-art/kogscrape/internal/browser"
	"github.com/kazantsevivan2813-art/kogscrape/internal/capture"
	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/locator"
	"github.com/kazantsevivan2813-art/kogscrape/internal/navigator"
	"github.com/kazantsevivan2813-art/kogscrape/internal/orchestrator"
	"github.com/kazantsevivan2813-art/kogscrape/internal/selectors"
	"github.com/kazantsevivan2813-art/kogscrape/internal/session"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Log in and capture the content of every allowed class",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := config.ValidateSite(cfg); err != nil {
				return err
			}
			if err := config.ValidateCredentials(cfg); err != nil {
				return err
			}

			logger, closeLog := setupLogger(cfg)
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := browser.Launch(cfg.Browser, logger)
			if err != nil {
				return err
			}
			defer b.Close()

			loc := buildLocator(cfg, logger)
			store := session.NewStore(cfg.Auth.CookieFile, cfg.Auth.CookieExpiry, logger)
			nav := navigator.New(b, loc, store, cfg, logger)

			page, err := nav.EnsureAuthenticated(ctx)
			if err != nil {
				return err
			}

			cap := capture.NewService(cfg.Scrape.PageSettle, logger)
			site := orchestrator.NewRodSite(page, b, loc, nav, cap, cfg, logger)
			summary, runErr := orchestrator.New(site, cfg.Scrape, logger).Run(ctx)
			if summary != nil {
				fmt.Fprint(cmd.OutOrStdout(), summary.Render())
				logger.Info("run complete",
					"processed", len(summary.Processed),
					"filtered", len(summary.Filtered),
					"failed", len(summary.Failed),
				)
			}
			if runErr != nil {
				return runErr
			}

			// Refresh the browsable index over whatever the run produced.
			scan, err := archive.Scan(cfg.Scrape.OutputDir, logger)
			if err != nil {
				logger.Warn("archive scan failed, navigation pages not refreshed", "error", err)
				return nil
			}
			if err := writeNavigationPages(cfg, scan, logger); err != nil {
				logger.Warn("navigation pages not refreshed", "error", err)
			}
			return nil
		},
	}
}

// buildLocator assembles the selector table, applying config overrides as
// CSS candidate lists over the built-in defaults.
func buildLocator(cfg *config.Config, logger *slog.Logger) *locator.Locator {
	table := selectors.Default()
	for target, exprs := range cfg.Selectors {
		queries := make([]selectors.Query, 0, len(exprs))
		for _, expr := range exprs {
			queries = append(queries, selectors.CSS(expr))
		}
		table.Override(target, queries)
	}
	return locator.New(table, cfg.Scrape.ElementTimeout, logger)
}
