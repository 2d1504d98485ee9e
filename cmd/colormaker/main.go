package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"colormaker/internal/config"
	"colormaker/internal/logging"
	"colormaker/internal/mixer"
	"colormaker/internal/prefs"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	storePath   string
	backendName string

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "colormaker",
	Short: "colormaker - mix an RGB color from three channels",
	Long: `colormaker mixes a color from red, green and blue channels.

Each channel has a level between 0 and 1 and can be switched off without
losing its level. The mix is saved after every change and restored on the
next start.

Run without arguments to start the interactive mixer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c
		return initLogging(cfg, cmd == cmd.Root())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
	RunE: runInteractive,
}

// showCmd prints the current mix
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current channels and composed color",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

// setCmd sets a channel level from text
var setCmd = &cobra.Command{
	Use:   "set [channel] [value]",
	Short: "Set a channel level (0 to 1)",
	Long: `Sets the level of one channel. The channel is red, green or blue (or r, g, b).
The value must be a decimal number between 0 and 1.

Example:
  colormaker set red 0.25
  colormaker set g .5`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

var enableCmd = &cobra.Command{
	Use:   "enable [channel]",
	Short: "Switch a channel on, restoring its last level",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnable,
}

var disableCmd = &cobra.Command{
	Use:   "disable [channel]",
	Short: "Switch a channel off, remembering its level",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisable,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset every channel to fully on (white)",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

// configCmd groups config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the colormaker config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Preference store path override")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Preference backend: sqlite, file, memory")

	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Print markdown without terminal styling")
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file and layers the global flags on top.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, err
	}
	if storePath != "" {
		c.Store.Path = storePath
	}
	if backendName != "" {
		c.Store.Backend = backendName
	}
	if verbose {
		c.Logging.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// initLogging starts the logger. The interactive mixer owns the terminal,
// so it logs to a file unless one is configured.
func initLogging(c *config.Config, interactive bool) error {
	opts := c.Logging.Options()
	if interactive && opts.File == "" {
		opts.File = filepath.Join(config.DefaultDir(), "colormaker.log")
	}
	if err := logging.Initialize(opts); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openStore opens the configured backend and hydrates a store from it. The
// returned close func flushes the last write, closes the backend, and
// reports a failed final save.
func openStore(ctx context.Context) (*mixer.Store, func() error, error) {
	backend, err := prefs.OpenBackend(cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open preference store: %w", err)
	}
	if sb, ok := backend.(*prefs.SQLiteBackend); ok {
		logging.BootDebug("session %s on %s", sb.SessionID(), sb.Path())
	}

	store, err := mixer.Open(ctx, backend, mixer.WithWriteTimeout(cfg.GetWriteTimeout()))
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	closeFn := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.GetWriteTimeout()+time.Second)
		defer cancel()

		flushErr := store.Close(ctx)
		if err := backend.Close(); err != nil {
			logging.Get(logging.CategoryStore).Warn("failed to close backend: %v", err)
		}
		if flushErr != nil {
			return flushErr
		}
		if st := store.Stats().Saves; st.LastError != nil {
			return fmt.Errorf("failed to save preferences: %w", st.LastError)
		}
		return nil
	}
	return store, closeFn, nil
}
