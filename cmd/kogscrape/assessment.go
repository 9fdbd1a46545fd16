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
)

func newAssessmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assessment",
		Short: "Fetch practice questions per curriculum node for archived classes",
		Long: `Walks the subject tree of each tagged class folder, fetches the practice
questions under every main-topic node, and writes the "Question assignment"
page with all questions ordered by difficulty.`,
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

			gen := report.NewGenerator(logger)
			failed := 0
			for _, d := range dirs {
				if err := ctx.Err(); err != nil {
					return err
				}
				logger.Info("fetching practice questions", "class", d.Info.Name, "sid", d.Info.SID)

				tree, err := client.SubjectTree(ctx, d.Info.SID)
				if err != nil {
					logger.Error("subject tree fetch failed", "class", d.Info.Name, "error", err)
					failed++
					continue
				}

				var nodes []report.NodeQuestions
				for _, node := range tree.Children() {
					qs, err := client.QuestionsForNode(ctx, d.Info.SID, d.Info.CID, node.ID)
					if err != nil {
						logger.Warn("node questions fetch failed",
							"class", d.Info.Name, "node", node.Name, "error", err)
						continue
					}
					logger.Debug("node questions fetched", "node", node.Name, "count", len(qs))
					nodes = append(nodes, report.NodeQuestions{NodeName: node.Name, Questions: qs})
				}
				if len(nodes) == 0 {
					logger.Warn("no questions for any node", "class", d.Info.Name)
					failed++
					continue
				}

				pageDir := filepath.Join(d.Path, "assignments")
				if err := os.MkdirAll(pageDir, 0o755); err != nil {
					logger.Error("assignments dir", "class", d.Info.Name, "error", err)
					failed++
					continue
				}
				if _, err := gen.QuestionAssessment(pageDir, d.Info.Name, d.Info.SID, d.Info.CID, nodes); err != nil {
					logger.Error("assessment page failed", "class", d.Info.Name, "error", err)
					failed++
				}
			}

			if failed == len(dirs) {
				return fmt.Errorf("all %d classes failed", failed)
			}
			logger.Info("assessment done", "classes", len(dirs), "failed", failed)
			return nil
		},
	}
}
