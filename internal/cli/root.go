package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scagate/scagate/internal/cienv"
	"github.com/scagate/scagate/internal/config"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "scagate",
	Short: "scagate — CI gate around an external SCA scanner",
	Long: `scagate runs a software-composition-analysis scanner inside a CI job,
captures its output, extracts the report URL, publishes artifacts and named
outputs, posts a pull-request comment, and applies the pass/fail policy.

Configuration comes from scagate.yaml, SCAGATE_* environment variables, and
flags, in increasing precedence.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug-level diagnostics")
	rootCmd.PersistentFlags().String("config", "", "Path to scagate.yaml (default: search standard locations)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(serveCmd)
}

// setupLogging installs the diagnostic channel: a text slog handler on
// stderr, so stdout stays clean for command output and CI logging commands.
func setupLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// loadConfig loads the config file, then merges the env file and SCAGATE_*
// environment variables. Flags are merged by each command on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	env := processEnv()
	if cfg.EnvFile != "" {
		fileVars, err := cienv.LoadEnvFile(cfg.EnvFile)
		if err != nil {
			return nil, err
		}
		// Real environment wins over the .env file.
		for k, v := range env {
			fileVars[k] = v
		}
		env = fileVars
	}
	cfg.ApplyEnv(env)
	return cfg, nil
}

func processEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
