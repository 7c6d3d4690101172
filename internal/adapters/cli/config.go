package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect the Colony configuration.

Configuration is loaded from multiple sources with priority:
1. Environment variables (COLONY_* prefix, DATABASE_URL)
2. Config file (colony.yaml)
3. Default values

Examples:
  colony config show
  colony config validate --config ./configs/colony.yaml
  colony config loadouts`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigValidateCommand())
	cmd.AddCommand(newConfigLoadoutsCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Database.URL = redact(cfg.Database.URL)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the configuration loads and converts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := NewPipelineFromConfig(cfg); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
}

// newConfigLoadoutsCommand creates the config loadouts subcommand
func newConfigLoadoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "loadouts",
		Short: "List the loadout tiers and static ranks in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			table, err := cfg.Spawn.ToLoadoutTable()
			if err != nil {
				return err
			}
			ranks, err := cfg.Spawn.ToStaticRanks()
			if err != nil {
				return err
			}
			printLoadouts(cmd.OutOrStdout(), table, ranks)
			return nil
		},
	}
}

func printLoadouts(out io.Writer, table *colony.LoadoutTable, ranks colony.StaticRanks) {
	t := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Role", "Rank", "Threshold", "Parts", "Cost", "Spawn ticks"}),
	)
	for _, role := range colony.AllRoles() {
		tiers := table.Tiers(role)
		if len(tiers) == 0 {
			_ = t.Append([]string{role.String(), fmt.Sprintf("%d", ranks.Rank(role)), "-", "unconfigured", "-", "-"})
			continue
		}
		sort.Slice(tiers, func(i, j int) bool { return tiers[i].Threshold < tiers[j].Threshold })
		for _, tier := range tiers {
			_ = t.Append([]string{
				role.String(),
				fmt.Sprintf("%d", ranks.Rank(role)),
				fmt.Sprintf("%d", tier.Threshold),
				tier.Parts.String(),
				fmt.Sprintf("%d", tier.Parts.Cost()),
				fmt.Sprintf("%d", tier.Parts.SpawnTicks()),
			})
		}
	}
	_ = t.Render()
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
