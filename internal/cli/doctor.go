package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scagate/scagate/internal/cienv"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate the environment before a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		failed := false

		check := func(name string, err error) {
			if err != nil {
				failed = true
				fmt.Fprintf(out, "fail  %-24s %v\n", name, err)
				return
			}
			fmt.Fprintf(out, "ok    %s\n", name)
		}
		warn := func(name, msg string) {
			fmt.Fprintf(out, "warn  %-24s %s\n", name, msg)
		}

		// Scanner binary: first token of the configured command.
		if cfg.Command == "" {
			warn("scanner command", "not configured (set command in scagate.yaml or SCAGATE_COMMAND)")
		} else {
			bin := strings.Fields(cfg.Command)[0]
			_, err := exec.LookPath(bin)
			check(fmt.Sprintf("scanner binary (%s)", bin), err)
		}

		if cfg.Comment.Enabled {
			_, err := exec.LookPath("gh")
			check("gh CLI", err)
		}

		ci := cienv.FromOS()
		if ci.Platform == cienv.PlatformNone {
			warn("CI context", "no CI platform detected (local run)")
		} else {
			fmt.Fprintf(out, "ok    CI context (%s, repo=%s, pr=%d)\n", ci.Platform, ci.Repo, ci.PR)
		}

		check("result file directory", probeWritable(filepath.Dir(cfg.ResultFile)))

		if cfg.History.Enabled {
			database, err := openHistoryDB(cfg)
			if err == nil {
				database.Close()
			}
			check("history database", err)
		}

		if failed {
			return fmt.Errorf("environment validation failed")
		}
		return nil
	},
}

func probeWritable(dir string) error {
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, ".scagate-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
