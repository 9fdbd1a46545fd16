// Command kogscrape archives a Kognity account: browser-driven capture of
// the content hierarchy, REST fetches of the question banks, and static
// report pages over the result.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kazantsevivan2813-art/kogscrape/internal/archive"
	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kogscrape",
		Short:         "Archive a Kognity account to browsable local files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./kogscrape.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newScrapeCmd(),
		newAssignmentsCmd(),
		newAssessmentCmd(),
		newNavigationCmd(),
		newServeCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kogscrape %s\n", config.Version)
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			// Never echo the password.
			cfg.Site.Password = ""
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write(out)
			return nil
		},
	}
}

// loadConfig reads the config and validates the parts every command needs.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger builds the run logger: text handler teed to stderr and the
// durable run log under the output dir. The returned closer flushes the
// file; logging never fails the run, a broken log file degrades to stderr.
func setupLogger(cfg *config.Config) (*slog.Logger, func()) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = filepath.Join(cfg.Scrape.OutputDir, "scraper_log.txt")
	}

	var w io.Writer = os.Stderr
	closer := func() {}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			w = io.MultiWriter(os.Stderr, f)
			closer = func() { f.Close() }
		}
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closer
}

// classDir is one archived class folder carrying a subject id.
type classDir struct {
	Path string
	Info archive.Info
}

// classDirs lists the tagged class folders under the output dir, applying
// the same subject allow-list the scrape run uses.
func classDirs(cfg *config.Config) ([]classDir, error) {
	entries, err := os.ReadDir(cfg.Scrape.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	var dirs []classDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, ok := archive.ParseFolderName(e.Name())
		if !ok || info.SID == "" {
			continue
		}
		if !subjectAllowed(cfg.Scrape.Subjects, info.Name) {
			continue
		}
		dirs = append(dirs, classDir{
			Path: filepath.Join(cfg.Scrape.OutputDir, e.Name()),
			Info: info,
		})
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no tagged class folders under %s; run `kogscrape scrape` first", cfg.Scrape.OutputDir)
	}
	return dirs, nil
}

func subjectAllowed(allow []string, name string) bool {
	if len(allow) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, want := range allow {
		if strings.Contains(lower, strings.ToLower(want)) {
			return true
		}
	}
	return false
}
