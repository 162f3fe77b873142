package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scagate/scagate/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "History database management",
}

var dbPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the history database path",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.History.Path
		if path == "" {
			path, err = db.DefaultDBPath()
			if err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the history tables (destructive!)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := openHistoryDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "history database reset")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbPathCmd)
	dbCmd.AddCommand(dbResetCmd)
}
