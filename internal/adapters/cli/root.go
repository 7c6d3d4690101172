package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	socketPath string
	noColor    bool
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "colony",
		Short: "Colony CLI - Plan worker populations and schedule spawns",
		Long: `Colony CLI evaluates population targets and spawn decisions for managed sites.
Snapshots can be evaluated locally or by the planner daemon over its Unix socket.

Examples:
  colony plan -f snapshot.yaml
  colony plan -f snapshot.json --remote
  colony simulate --steps 500 --seed 7
  colony import -f snapshot.yaml
  colony report --site W1N1
  colony logs --site W1N1 --level warning
  colony config show`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: search ./colony.yaml, ./configs, /etc/colony)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to planner daemon Unix socket")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable coloured output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewReportCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// getDefaultSocketPath returns the default socket path
func getDefaultSocketPath() string {
	if path := os.Getenv("COLONY_SOCKET"); path != "" {
		return path
	}
	return "/tmp/colony-planner.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
