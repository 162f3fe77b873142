package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/scagate/scagate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local run-history dashboard",
	Long:  `Start a read-only browser UI on localhost showing recorded scan runs, report URLs, and pass/fail history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetInt("port")

		database, err := openHistoryDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		return web.NewServer(database, port, slog.Default()).Start()
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
}
