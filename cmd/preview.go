package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/engine/sim"
	"github.com/HaiFongPan/reconsole/internal/tui/preview"
	"github.com/HaiFongPan/reconsole/internal/values"
)

var (
	previewPage     string
	previewProtocol string
	previewCols     int
	previewRows     int
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview [config-path]",
	Short: "Render one notebook page to the terminal",
	Long: `Render a preview page of the simulated bench with the terminal's graphics
protocol (kitty, iTerm2 or sixel), falling back to shaded text cells.
Without a path the device defaults are used.

Examples:
  reconsole preview                        # Slice page, detected protocol
  reconsole preview bench.yaml --page sinogram
  reconsole preview --protocol text --cols 60`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         renderPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewPage, "page", "p", "slice", "page to render (slice, projection, sinogram)")
	previewCmd.Flags().StringVar(&previewProtocol, "protocol", "", "graphics protocol (auto, kitty, iterm2, sixel, text; overrides ui.preview)")
	previewCmd.Flags().IntVar(&previewCols, "cols", preview.DefaultCols, "width in terminal cells")
	previewCmd.Flags().IntVar(&previewRows, "rows", preview.DefaultRows, "height in terminal cells")
}

func parsePage(name string) (engine.Page, error) {
	for _, p := range engine.Pages {
		if strings.EqualFold(p.String(), name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown page %q (valid: slice, projection, sinogram)", name)
}

func renderPreview(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	page, err := parsePage(previewPage)
	if err != nil {
		return err
	}

	name := cfg.UI.Preview
	if cmd.Flags().Changed("protocol") {
		name = previewProtocol
	}
	proto, err := preview.ParseProtocol(name, os.Getenv)
	if err != nil {
		return err
	}

	var snap values.Snapshot
	if len(args) > 0 {
		if snap, err = loadSnapshot(cmd.Context(), cfg, args[0]); err != nil {
			return err
		}
	} else {
		model, err := values.New(cfg.Limits())
		if err != nil {
			return err
		}
		snap = model.Snapshot()
	}

	frame, err := sim.NewEngine(simOptions(cfg)).Refresh(cmd.Context(), snap, page)
	if err != nil {
		return err
	}

	r := preview.NewRenderer(proto)
	r.SetCellSize(previewCols, previewRows)
	out, err := r.Render(frame.Image)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
