package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/adapters/simulation"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning/commands"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
)

type simulateOptions struct {
	steps   int
	seed    int64
	tps     float64
	persist bool
	quiet   bool
}

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the spawn loop against a simulated site",
		Long: `Run the spawn step once per tick against an in-process site with energy
income, worker ageing and a single production slot. The site is taken from
the simulation section of the configuration.

With --persist the step logs, the final site snapshot and the surviving
workers are written to the configured database, where 'colony report' and
'colony logs' can read them.

Examples:
  colony simulate --steps 300
  colony simulate --steps 2000 --seed 42 --quiet
  colony simulate --steps 600 --tps 20 --persist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("tps") {
				opts.tps = -1
			}
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.steps, "steps", 300, "Number of ticks to simulate")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Energy noise seed (default from config)")
	cmd.Flags().Float64Var(&opts.tps, "tps", 0, "Ticks per second, 0 for unpaced (default from config)")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "Write logs, site and workers to the database")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only print the summary")

	return cmd
}

func runSimulate(ctx context.Context, out io.Writer, opts simulateOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.seed != 0 {
		cfg.Simulation.Seed = opts.seed
	}
	if opts.tps >= 0 {
		cfg.Simulation.TicksPerSecond = opts.tps
	}

	pipeline, err := NewPipelineFromConfig(cfg)
	if err != nil {
		return err
	}

	site := siteFromConfig(cfg.Simulation.Site)
	world := simulation.NewWorld(site, simulation.Options{
		Seed:           cfg.Simulation.Seed,
		IncomePerWork:  cfg.Simulation.IncomePerWork,
		WorkerLifetime: cfg.Simulation.WorkerLifetime,
	})

	persist := opts.persist || cfg.Logging.Persist
	var logRepo *persistence.GormStepLogRepository
	var store *siteStore
	if persist {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)
		logRepo = persistence.NewGormStepLogRepository(db, nil)
		store = newSiteStore(db)
	}

	logOut := out
	if opts.quiet {
		logOut = nil
	}
	logger := newStepLogger(cfg, logRepo, logOut, site.SiteID)

	med := common.NewMediator()
	med.Use(common.TimingMiddleware(time.Now))
	handler := commands.NewRunSpawnStepHandler(pipeline, world, world, world, nil)
	if err := common.RegisterHandler[*commands.RunSpawnStepCommand](med, handler); err != nil {
		return fmt.Errorf("failed to register RunSpawnStep handler: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = common.WithLogger(ctx, logger)

	runner := simulation.NewRunner(world, med, site.SiteID, cfg.Simulation.TicksPerSecond)
	tally := map[string]int{}
	ticks := 0
	err = runner.Run(ctx, opts.steps, func(r simulation.StepReport) {
		ticks++
		tally[r.Response.Result]++
	})
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}

	printSimulationSummary(out, runner.RunID(), ticks, world, tally)
	if interrupted {
		color.New(color.FgYellow).Fprintln(out, "Interrupted")
	}

	if store != nil {
		// The run context may be cancelled already
		if err := store.saveWorld(context.Background(), world, site.SiteID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved site %s to %s database\n", site.SiteID, cfg.Database.Type)
	}
	return nil
}

func siteFromConfig(sc config.SiteConfig) colony.RoomState {
	return colony.RoomState{
		SiteID:                sc.ID,
		DevelopmentLevel:      sc.DevelopmentLevel,
		SourceCount:           sc.SourceCount,
		EnergyAvailable:       sc.EnergyAvailable,
		EnergyCapacity:        sc.EnergyCapacity,
		ConstructionSiteCount: sc.ConstructionSiteCount,
		DamagedStructureCount: sc.DamagedStructureCount,
	}
}

func printSimulationSummary(out io.Writer, runID string, ticks int, world *simulation.World, tally map[string]int) {
	titleColor := color.New(color.FgCyan, color.Bold)
	successColor := color.New(color.FgGreen, color.Bold)

	titleColor.Fprintf(out, "\nSimulation %s: %d ticks\n", runID, ticks)

	results := make([]string, 0, len(tally))
	for result := range tally {
		results = append(results, result)
	}
	sort.Strings(results)

	outcomes := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Step result", "Count"}),
	)
	for _, result := range results {
		_ = outcomes.Append([]string{result, fmt.Sprintf("%d", tally[result])})
	}
	_ = outcomes.Render()

	alive := map[colony.Role]int{}
	for _, w := range world.Workers() {
		alive[w.Role]++
	}
	population := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Role", "Alive"}),
	)
	for _, role := range colony.AllRoles() {
		_ = population.Append([]string{role.String(), fmt.Sprintf("%d", alive[role])})
	}
	_ = population.Render()

	successColor.Fprintf(out, "Spawned %d workers\n", tally[string(colony.OutcomeAccepted)])
}
