package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scagate/scagate/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Run report-URL extraction against a file or stdin",
	Long: `Debugging aid: run the extraction patterns (and the sidecar fallback)
against a captured output file, or stdin when no file is given. Prints the
URL on stdout; exits non-zero when nothing is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text []byte
		var err error
		if len(args) == 1 {
			text, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
		} else {
			text, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
		}

		sidecar, _ := cmd.Flags().GetString("sidecar")
		res, ok := extract.New(sidecar, slog.Default()).Extract(string(text))
		if !ok {
			return fmt.Errorf("no report URL found")
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.URL)
		return nil
	},
}

func init() {
	extractCmd.Flags().String("sidecar", "", "Path to the sidecar JSON file (default: no sidecar fallback)")
}
