package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scagate/scagate/internal/action"
	"github.com/scagate/scagate/internal/artifact"
	"github.com/scagate/scagate/internal/cienv"
	"github.com/scagate/scagate/internal/comment"
	"github.com/scagate/scagate/internal/github"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Post or update the PR comment from a recorded run summary",
	Long: `Replay the run summary artifact written by a previous 'scagate run' and
post (or update) the pull-request comment from it. Useful when commenting was
disabled during the run, or failed and needs a retry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		summaryPath, _ := cmd.Flags().GetString("summary")
		if summaryPath == "" {
			summaryPath = cfg.SummaryFile
		}
		summary, err := artifact.ReadSummary(summaryPath)
		if err != nil {
			return fmt.Errorf("read run summary: %w", err)
		}

		repo, _ := cmd.Flags().GetString("repo")
		pr, _ := cmd.Flags().GetInt("pr")
		if repo == "" || pr == 0 {
			ci := cienv.FromOS()
			if repo == "" {
				repo = ci.Repo
			}
			if pr == 0 {
				pr = ci.PR
			}
		}
		if repo == "" {
			repo = summary.Repo
		}
		if pr == 0 {
			pr = summary.PR
		}
		if repo == "" || pr == 0 {
			return fmt.Errorf("no repository/PR context: pass --repo and --pr")
		}

		body, err := action.BuildBody(cfg, summary)
		if err != nil {
			return err
		}

		client := github.NewClient(&github.ExecRunner{})
		created, err := client.UpsertComment(repo, pr, comment.Marker, body)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created comment on %s#%d\n", repo, pr)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "updated comment on %s#%d\n", repo, pr)
		}
		return nil
	},
}

func init() {
	commentCmd.Flags().String("summary", "", "Path to the run summary JSON (default: config summary_file)")
	commentCmd.Flags().String("repo", "", "Repository slug owner/name (default: CI context)")
	commentCmd.Flags().Int("pr", 0, "Pull request number (default: CI context)")
}
