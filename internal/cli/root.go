package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/evrenbal/mlforge/internal/backend"
	"github.com/evrenbal/mlforge/internal/config"
	"github.com/evrenbal/mlforge/internal/console"
	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/handoff"
	"github.com/evrenbal/mlforge/internal/logger"
	"github.com/evrenbal/mlforge/internal/session"
)

var (
	cfgFile   string
	serverURL string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mlforge",
		Short: "Interactive ML dataset workbench",
		Long: `mlforge is a client for a dataset/model service: upload a tabular
dataset, inspect and clean it, encode and scale features, split it, then
train, evaluate, and predict with a model.

Run "mlforge dashboard" for the interactive TUI, or use the subcommands
for headless pipeline steps.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "dataset service base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (table, json, csv)")

	// Add subcommands
	rootCmd.AddCommand(newDashboardCommand())
	rootCmd.AddCommand(newLoadCommand())
	rootCmd.AddCommand(newDataCommands()...)
	rootCmd.AddCommand(newPreprocessCommand())
	rootCmd.AddCommand(newModelCommand())
	rootCmd.AddCommand(newProjectCommand())
	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			fmt.Printf("mlforge %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig loads the effective configuration and applies global flag
// overrides.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if outputFmt != "" {
		cfg.Output.DefaultFormat = outputFmt
	}
	return cfg, nil
}

// newConsoleBus creates a bus whose messages are echoed to stderr, so
// headless commands still surface server notifications.
func newConsoleBus() *console.Bus {
	bus := console.NewBus()
	bus.Subscribe(func(msg console.Message) {
		fmt.Fprintf(os.Stderr, "%s %s\n", emoji.GetEmoji("console"), msg.Text)
	})
	return bus
}

// newSession builds a dataset session from the effective config.
func newSession(cfg *config.Config, bus *console.Bus) (*session.Session, error) {
	log := logger.NewWithCallback("backend", isVerbose)
	client, err := backend.New(cfg.Server.BaseURL, bus,
		backend.WithTimeout(cfg.Server.Timeout),
		backend.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create service client: %w", err)
	}
	return session.New(client), nil
}

// newHandoffStore builds the split artifact store from the config.
func newHandoffStore(cfg *config.Config) *handoff.Store {
	return handoff.NewStore(config.ExpandPath(cfg.Storage.StateDir))
}

// Global helpers
func isVerbose() bool {
	return verbose
}
