package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pixprobe/pkg/report"
)

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <report.json>",
		Short: "Re-verify the evidence hashes recorded in a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}

			var rep report.Report
			if err := json.Unmarshal(data, &rep); err != nil {
				return fmt.Errorf("failed to parse report: %w", err)
			}
			if rep.Evidence == nil {
				return fmt.Errorf("report carries no evidence record (run without --skip-acquire)")
			}

			if err := rep.Evidence.Verify(); err != nil {
				printAlert("%v", err)
				return err
			}
			printSuccess("Working copy %s matches recorded sha256", rep.Evidence.WorkingCopy)
			return nil
		},
	}
}
