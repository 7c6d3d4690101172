package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning/queries"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
)

// NewReportCommand creates the report command
func NewReportCommand() *cobra.Command {
	var siteID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the population needs of stored sites",
		Long: `Show target and current population, deficits, warnings and suggestions
for sites stored in the database (see 'colony import' and
'colony simulate --persist'). Without --site every stored site is reported.

Examples:
  colony report
  colony report --site W1N1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), siteID)
		},
	}

	cmd.Flags().StringVar(&siteID, "site", "", "Site to report (default: all sites)")

	return cmd
}

func runReport(ctx context.Context, out io.Writer, siteID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, err := NewPipelineFromConfig(cfg)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sites := persistence.NewGormSiteRepository(db, nil)
	workers := persistence.NewGormWorkerRepository(db, nil)

	med := common.NewMediator()
	if err := common.RegisterHandler[*queries.GetPopulationReportQuery](med, queries.NewGetPopulationReportHandler(pipeline, sites, workers)); err != nil {
		return fmt.Errorf("failed to register GetPopulationReport handler: %w", err)
	}

	siteIDs := []string{siteID}
	if siteID == "" {
		siteIDs, err = sites.ListSiteIDs(ctx)
		if err != nil {
			return err
		}
		if len(siteIDs) == 0 {
			fmt.Fprintln(out, "No sites stored")
			return nil
		}
	}

	for _, id := range siteIDs {
		resp, err := med.Send(ctx, &queries.GetPopulationReportQuery{SiteID: id})
		if err != nil {
			return err
		}
		printReport(out, resp.(*queries.GetPopulationReportResponse))
		if err := printWorkers(ctx, out, workers, id); err != nil {
			return err
		}
	}
	return nil
}

// printWorkers lists the stored workers of siteID with their loadouts
func printWorkers(ctx context.Context, out io.Writer, workers *persistence.GormWorkerRepository, siteID string) error {
	all, err := workers.ListWorkers(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Worker", "Role", "Loadout", "Cost"}),
	)
	rows := 0
	for _, w := range all {
		if w.SiteID != siteID {
			continue
		}
		body, err := workers.Body(ctx, w.Name)
		if err != nil {
			return err
		}
		_ = table.Append([]string{w.Name, w.Role, body.String(), fmt.Sprintf("%d", body.Cost())})
		rows++
	}
	if rows == 0 {
		return nil
	}
	return table.Render()
}

func printReport(out io.Writer, r *queries.GetPopulationReportResponse) {
	titleColor := color.New(color.FgCyan, color.Bold)
	warnColor := color.New(color.FgYellow)
	errorColor := color.New(color.FgRed, color.Bold)
	infoColor := color.New(color.FgCyan)

	titleColor.Fprintf(out, "\nSite %s (%s)\n", r.SiteID, r.Tier)
	if r.RatioKnown {
		fmt.Fprintf(out, "Energy ratio: %.2f", r.EnergyRatio)
		if r.Scarcity {
			warnColor.Fprint(out, " (scarce)")
		}
		fmt.Fprintln(out)
	}

	deficits := map[colony.Role]int{}
	for _, d := range r.Needs.Deficits {
		deficits[d.Role] = d.Amount
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Role", "Target", "Current", "Deficit"}),
	)
	for _, role := range colony.AllRoles() {
		deficit := "-"
		if n, ok := deficits[role]; ok {
			deficit = fmt.Sprintf("%d", n)
		}
		_ = table.Append([]string{
			role.String(),
			fmt.Sprintf("%d", r.Needs.Target.Get(role)),
			fmt.Sprintf("%d", r.Needs.Current.Get(role)),
			deficit,
		})
	}
	_ = table.Render()

	for _, w := range r.Needs.Warnings {
		if w == colony.WarningNoHarvesters {
			errorColor.Fprintln(out, w)
		} else {
			warnColor.Fprintln(out, w)
		}
	}
	for _, s := range r.Needs.Suggestions {
		infoColor.Fprintf(out, "Suggestion: %s\n", s)
	}
}
