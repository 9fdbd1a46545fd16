package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/report"
	"github.com/kazantsevivan2813-art/kogscrape/internal/storage"
)

func newAssignmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assignments",
		Short: "Fetch the exam-style question bank of every archived class",
		Long: `Fetches the full exam-style question set for each tagged class folder
under the output dir, saves the raw payload through the configured storage
backend, and writes the "Exam-style assignment" page next to it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := config.ValidateSite(cfg); err != nil {
				return err
			}

			logger, closeLog := setupLogger(cfg)
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dirs, err := classDirs(cfg)
			if err != nil {
				return err
			}
			client, err := apiClient(ctx, cfg, logger)
			if err != nil {
				return err
			}
			store, err := storage.New(cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			gen := report.NewGenerator(logger)
			failed := 0
			for _, d := range dirs {
				if err := ctx.Err(); err != nil {
					return err
				}
				logger.Info("fetching exam questions", "class", d.Info.Name, "sid", d.Info.SID)

				tree, err := client.SubjectTree(ctx, d.Info.SID)
				if err != nil {
					logger.Error("subject tree fetch failed", "class", d.Info.Name, "error", err)
					failed++
					continue
				}
				rootID, ok := tree.RootNodeID()
				if !ok {
					logger.Warn("subject tree empty", "class", d.Info.Name)
					failed++
					continue
				}

				set, err := client.ExamStyleQuestions(ctx, d.Info.SID, rootID)
				if err != nil {
					logger.Error("exam questions fetch failed", "class", d.Info.Name, "error", err)
					failed++
					continue
				}

				if err := store.SaveExamQuestions(ctx, d.Path, d.Info.SID, set); err != nil {
					logger.Error("question set save failed", "class", d.Info.Name, "error", err)
				}

				pageDir := filepath.Join(d.Path, "assignments")
				if err := os.MkdirAll(pageDir, 0o755); err != nil {
					logger.Error("assignments dir", "class", d.Info.Name, "error", err)
					failed++
					continue
				}
				if _, err := gen.ExamAssignment(pageDir, d.Info.Name, d.Info.SID, set); err != nil {
					logger.Error("assignment page failed", "class", d.Info.Name, "error", err)
					failed++
				}
			}

			if failed == len(dirs) {
				return fmt.Errorf("all %d classes failed", failed)
			}
			logger.Info("assignments done", "classes", len(dirs), "failed", failed)
			return nil
		},
	}
}
