package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HaiFongPan/reconsole/internal/values"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [config-path]",
	Short: "Check a configuration record against the device limits",
	Long: `Load a configuration record and report every problem that would stop a
reconstruction from starting.

Examples:
  reconsole validate bench.yaml`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         validateRecord,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateRecord(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	path := recordPath(cfg, args)

	rec, err := loadRecord(cmd.Context(), cfg, path)
	if err != nil {
		return err
	}

	// the record as written, before the model clamps anything
	err = rec.Validate(cfg.Limits())
	var ve *values.ValidationError
	if errors.As(err, &ve) {
		for _, p := range ve.Problems {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %s\n", p.Field, p.Reason)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	return nil
}
