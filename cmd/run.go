package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/reconsole/internal/config"
	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/engine/sim"
	"github.com/HaiFongPan/reconsole/internal/store"
	"github.com/HaiFongPan/reconsole/internal/utils"
	"github.com/HaiFongPan/reconsole/internal/values"
)

var runNoProgress bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [config-path]",
	Short: "Run a reconstruction without the console",
	Long: `Load a configuration record and reconstruct it on the simulated bench,
showing a progress bar. Interrupt (ctrl+c) cancels the run.

Examples:
  reconsole run                  # Use store.default_path
  reconsole run bench.yaml       # Use a specific record
  reconsole run --no-progress    # No progress bar`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runReconstruction,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runNoProgress, "no-progress", false, "disable progress bar")
}

// loadRecord reads the record at path through the configured store
func loadRecord(ctx context.Context, cfg *config.Config, path string) (values.ScanConfig, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return values.ScanConfig{}, err
	}
	return st.Load(ctx, path)
}

// loadSnapshot applies the record at path to a fresh model, the way Open
// does in the console, and validates the result
func loadSnapshot(ctx context.Context, cfg *config.Config, path string) (values.Snapshot, error) {
	rec, err := loadRecord(ctx, cfg, path)
	if err != nil {
		return values.Snapshot{}, err
	}

	model, err := values.New(cfg.Limits())
	if err != nil {
		return values.Snapshot{}, err
	}
	if err := model.ApplyScan(rec); err != nil {
		return values.Snapshot{}, fmt.Errorf("configuration %s: %w", path, err)
	}
	snap := model.Snapshot()
	if err := snap.Validate(); err != nil {
		return values.Snapshot{}, fmt.Errorf("configuration %s: %w", path, err)
	}
	return snap, nil
}

func recordPath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Store.DefaultPath
}

func runReconstruction(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	path := recordPath(cfg, args)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	snap, err := loadSnapshot(ctx, cfg, path)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if runNoProgress || quiet {
		w = io.Discard
	}
	bar := utils.NewRunProgress(w, fmt.Sprintf("Reconstructing %s", path))

	logrus.Infof("Headless run of %s", path)
	res := sim.NewEngine(simOptions(cfg)).Run(ctx, snap, bar.Report)
	logrus.Infof("Run finished: %s %s", res.Status, res.Reason)

	switch res.Status {
	case engine.Completed:
		if err := bar.Finish(); err != nil {
			logrus.Debugf("progress bar: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "completed, %d slices\n", res.Slices)
		return nil
	case engine.Cancelled:
		bar.Stop("cancelled")
		fmt.Fprintln(w)
		return fmt.Errorf("reconstruction cancelled after %d slices", res.Slices)
	default:
		bar.Stop("failed")
		fmt.Fprintln(w)
		return res.Err()
	}
}
