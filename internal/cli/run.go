package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/scagate/scagate/internal/action"
	"github.com/scagate/scagate/internal/artifact"
	"github.com/scagate/scagate/internal/cienv"
	"github.com/scagate/scagate/internal/config"
	"github.com/scagate/scagate/internal/db"
	"github.com/scagate/scagate/internal/extract"
	"github.com/scagate/scagate/internal/github"
	"github.com/scagate/scagate/internal/scan"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Invoke the scanner and run the full gate pipeline",
	Long: `Run the scanner command, capture its combined output, extract the report
URL (with the sidecar JSON fallback), write artifacts and named CI outputs,
post or update the pull-request comment, record history, and apply the
on-failure policy to decide the exit code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, cfg)

		if errs := config.Validate(cfg); len(errs) > 0 {
			joined := make([]error, len(errs))
			for i, e := range errs {
				joined[i] = e
			}
			return fmt.Errorf("invalid configuration: %w", errors.Join(joined...))
		}

		logger := slog.Default()
		ci := cienv.FromOS()
		logger.Info("CI context", "platform", string(ci.Platform), "repo", ci.Repo, "pr", ci.PR)

		if cfg.Mode == "" {
			cfg.Mode = string(scan.DefaultMode(runtime.GOOS))
		}
		invoker := scan.NewInvoker(scan.Opts{
			Mode:       scan.Mode(cfg.Mode),
			Limit:      cfg.LimitBytes,
			ResultPath: cfg.ResultFile,
		}, logger)
		if scan.Mode(cfg.Mode) == scan.ModeStreaming {
			// Surface scanner output live in the CI log.
			invoker.ObserverOut = cmd.OutOrStdout()
			invoker.ObserverErr = cmd.ErrOrStderr()
		}

		runner := &action.Runner{
			Config:    cfg,
			CI:        ci,
			Invoker:   invoker,
			Extractor: extract.New(cfg.SidecarFile, logger),
			Outputs:   artifact.NewOutputWriter(ci, cmd.OutOrStdout(), logger),
			Logger:    logger,
		}
		if cfg.Comment.Enabled {
			runner.Commenter = github.NewClient(&github.ExecRunner{})
		}
		if cfg.History.Enabled {
			database, err := openHistoryDB(cfg)
			if err != nil {
				// History is an observability aid, never a gate on the gate.
				logger.Warn("run history unavailable", "error", err)
			} else {
				defer database.Close()
				runner.History = database
			}
		}

		res, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Summary.ReportURL != "" {
			fmt.Fprintf(out, "report URL: %s (via %s)\n", res.Summary.ReportURL, res.Summary.URLSource)
		} else {
			fmt.Fprintln(out, "report URL: not found")
		}
		if !res.Verdict.Passed {
			return fmt.Errorf("gate failed: %s", res.Verdict.Reason)
		}
		fmt.Fprintf(out, "gate passed: %s\n", res.Verdict.Reason)
		return nil
	},
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	var o config.Overrides
	o.Command, _ = cmd.Flags().GetString("command")
	o.Mode, _ = cmd.Flags().GetString("mode")
	o.OnFailure, _ = cmd.Flags().GetString("on-failure")
	cfg.ApplyOverrides(o)

	if noComment, _ := cmd.Flags().GetBool("no-comment"); noComment {
		cfg.Comment.Enabled = false
	}
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		cfg.History.Enabled = false
	}
}

func openHistoryDB(cfg *config.Config) (*db.DB, error) {
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = db.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func init() {
	runCmd.Flags().String("command", "", "Scanner shell command (overrides config)")
	runCmd.Flags().String("mode", "", "Capture mode: buffered or streaming (default: platform choice)")
	runCmd.Flags().String("on-failure", "", "Gate policy on non-zero exit: fail or warn")
	runCmd.Flags().Bool("no-comment", false, "Skip the pull-request comment")
	runCmd.Flags().Bool("no-history", false, "Skip recording the run in the history database")
}
