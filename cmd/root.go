package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/reconsole/internal/config"
	"github.com/HaiFongPan/reconsole/internal/console"
	"github.com/HaiFongPan/reconsole/internal/controls"
	"github.com/HaiFongPan/reconsole/internal/engine/sim"
	"github.com/HaiFongPan/reconsole/internal/store"
	"github.com/HaiFongPan/reconsole/internal/tui"
)

// Version is set at build time
var Version = "dev"

var (
	cfgFile      string
	verbose      bool
	quiet        bool
	globalConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconsole",
	Short: "Operator console for a tomography reconstruction bench",
	Long: `reconsole is a terminal operator console for a tomography bench. It
adjusts acquisition and display parameters, edits configuration records,
and starts and cancels reconstruction runs.

Configuration is read from TOML files, environment variables (RECON_*) and
CLI flags.

Example usage:
  reconsole                       # Interactive console
  reconsole run bench.yaml        # Headless reconstruction
  reconsole validate bench.yaml   # Check a configuration record
  reconsole preview --page sinogram`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// When called without subcommands, open the console
		return runConsole(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", fmt.Sprintf("config file (default is %s)", config.GetDefaultConfigPath()))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	globalConfig, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Configure logging
	setupLogging()

	return nil
}

// setupLogging configures the global logger based on config and flags
func setupLogging() {
	// Set log level
	level := globalConfig.Log.Level
	if verbose {
		level = "debug"
	} else if quiet {
		level = "error"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid log level %s, using info", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	// Redirect all logs to file to prevent UI interference
	logFile := globalConfig.Log.File
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		// Fallback to stderr if can't create log directory
		logrus.Warnf("Failed to create log directory %s: %v", filepath.Dir(logFile), err)
	} else {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logrus.Warnf("Failed to open log file %s: %v", logFile, err)
		} else {
			logrus.SetOutput(file)
		}
	}

	// Set log format
	if globalConfig.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: quiet,
			FullTimestamp:    verbose,
		})
	}
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return globalConfig
}

// simOptions maps the engine section onto the simulated bench
func simOptions(cfg *config.Config) sim.Options {
	return sim.Options{
		Steps:         cfg.Engine.Steps,
		Interval:      time.Duration(cfg.Engine.StepIntervalMS) * time.Millisecond,
		PreviewSize:   cfg.Engine.PreviewSize,
		FocusDistance: cfg.Engine.FocusDistance,
		Magnification: cfg.Engine.Magnification,
		Seed:          cfg.Engine.Seed,
	}
}

// runConsole wires the console to the simulated bench and the configured
// store, then runs the terminal UI until Quit
func runConsole(ctx context.Context) error {
	cfg := globalConfig

	userData, err := config.LoadUserData()
	if err != nil {
		logrus.Warnf("Failed to load user data: %v", err)
		userData = &config.UserData{}
	}
	// reopen the last record; a fresh install starts untitled
	startPath := userData.LastConfig

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	build := func(post func(any)) (*console.Console, error) {
		return console.New(ctx, console.Options{
			Limits: cfg.Limits(),
			Capabilities: controls.Capabilities{
				AutoFocus: cfg.Device.AutoFocus,
				AutoLight: cfg.Device.AutoLight,
			},
			LogLines: cfg.UI.LogLines,
			Version:  Version,
			Path:     startPath,
			Remember: func(path string) {
				if err := userData.Remember(path); err != nil {
					logrus.Warnf("Failed to save user data: %v", err)
				}
			},
		}, console.Deps{
			Engine:   sim.NewEngine(simOptions(cfg)),
			Hardware: sim.NewHardware(simOptions(cfg)),
			Store:    st,
			Post:     post,
		})
	}

	logrus.Infof("Starting console, store=%s path=%s", cfg.Store.Backend, startPath)
	return tui.Run(ctx, build, opts...)
}
