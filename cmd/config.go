package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/HaiFongPan/reconsole/internal/store"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// configCmd groups the configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration records and show the application config",
}

var configInitCmd = &cobra.Command{
	Use:   "init [config-path]",
	Short: "Write a default configuration record",
	Long: `Write a configuration record holding the device defaults. The record
goes through the configured store, so with store.backend = "r2" it is
uploaded to the bucket.

Examples:
  reconsole config init              # Write store.default_path
  reconsole config init bench.yaml`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         initRecord,
}

var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print the effective application configuration",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         showConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
}

func initRecord(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	path := recordPath(cfg, args)

	st, err := store.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if err := st.Save(cmd.Context(), path, values.DefaultScanConfig(cfg.Limits())); err != nil {
		return err
	}
	logrus.Infof("Wrote default record to %s", path)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(GetConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
