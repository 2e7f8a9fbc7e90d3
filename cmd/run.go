package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"referralflow/internal/config"
	"referralflow/pkg/domain"
	"referralflow/pkg/logger"
	"referralflow/pkg/storage/postgres"
	"referralflow/pkg/textextract"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runCommand constructs the 'run' subcommand that executes one pipeline run
// in the foreground for a local résumé file and prints its report.
func runCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the pipeline once for a local résumé file",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			file, _ := cmd.Flags().GetString("file")
			email, _ := cmd.Flags().GetString("email")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			data, err := os.ReadFile(file)
			if err != nil {
				logger.Fatal(ctx, "could not read résumé file", zap.Error(err))
			}
			text, err := textextract.Extract(data, filepath.Base(file))
			if err != nil {
				logger.Fatal(ctx, "could not extract résumé text", zap.Error(err))
			}

			var strg *postgres.PgSQL
			if cfg.Credentials.EncryptionKey != "" {
				var closeStrg func()
				strg, closeStrg = getPostgres(ctx, cfg)
				defer closeStrg()
			}

			orchestrator, err := newOrchestrator(ctx, cfg, strg, !dryRun)
			if err != nil {
				logger.Fatal(ctx, "could not create pipeline", zap.Error(err))
			}

			report := orchestrator.Run(ctx, domain.ResumePayload{
				RunID: domain.NewRunID(),
				Text:  text,
				Email: email,
			})

			//nolint: forbidigo
			{
				fmt.Printf("run %s finished in %s\n", report.RunID, report.Duration)
				fmt.Printf("profile (%s): %s, %s, %s years, skills: %s\n", report.Profile.Source,
					report.Profile.CandidateName, report.Profile.PrimaryPosition(),
					report.Profile.YearsOfExperience, strings.Join(report.Profile.TopSkills, ", "))
				if report.ExtractionError != "" {
					fmt.Printf("extraction failed: %s\n", report.ExtractionError)
				}
				for _, q := range report.Queries {
					fmt.Printf("searched %s\n", q)
				}
				for _, o := range report.Outcomes {
					status := "sent"
					if !o.Sent {
						status = "not sent: " + o.Error
					}
					fmt.Printf("- %s at %s (%s): %s\n", o.Job.Title, o.Job.Company, o.Job.URL, status)
				}
				fmt.Printf("%d of %d applications sent\n", report.Sent(), len(report.Outcomes))
			}
		},
	}

	cmd.Flags().StringP("file", "f", "", "Résumé file (PDF, DOCX or plain text)")
	cmd.Flags().String("email", "", "Candidate e-mail address drafts are delivered to")
	cmd.Flags().Bool("dry-run", false, "Draft applications without sending them")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
