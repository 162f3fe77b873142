package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show recorded run history and stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := openHistoryDB(cfg)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer database.Close()

		repo, _ := cmd.Flags().GetString("repo")
		pr, _ := cmd.Flags().GetInt("pr")
		limit, _ := cmd.Flags().GetInt("limit")

		stats, err := database.GetStats(repo)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "runs: %d  pass rate: %.0f%%  URL recovery: %.0f%%  mean duration: %dms\n\n",
			stats.Runs, stats.PassRate()*100, stats.URLRecoveryRate()*100, stats.MeanDurationMs)

		runs, err := database.Runs(repo, pr, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "no runs recorded")
			return nil
		}
		for _, r := range runs {
			result := "FAIL"
			if r.Passed {
				result = "PASS"
			}
			url := r.ReportURL
			if url == "" {
				url = "-"
			}
			fmt.Fprintf(out, "%-5d %-20s %-6s %s  exit=%d  %dms  %s\n",
				r.ID, r.Repo, result, r.Timestamp, r.ExitCode, r.DurationMs, url)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().String("repo", "", "Filter by repository slug")
	reportCmd.Flags().Int("pr", 0, "Filter by pull request number")
	reportCmd.Flags().Int("limit", 20, "Maximum runs to show")
}
