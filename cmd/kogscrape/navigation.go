package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kazantsevivan2813-art/kogscrape/internal/archive"
	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/report"
)

func newNavigationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "navigation",
		Short: "Regenerate the navigation pages over the downloads tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog := setupLogger(cfg)
			defer closeLog()

			scan, err := archive.Scan(cfg.Scrape.OutputDir, logger)
			if err != nil {
				return err
			}
			return writeNavigationPages(cfg, scan, logger)
		},
	}
}

func writeNavigationPages(cfg *config.Config, scan *archive.ScanResult, logger *slog.Logger) error {
	gen := report.NewGenerator(logger)
	if _, err := gen.Navigation(cfg.Scrape.OutputDir, scan); err != nil {
		return err
	}
	if _, err := gen.SectionNavigation(cfg.Scrape.OutputDir, scan); err != nil {
		return err
	}
	return nil
}
