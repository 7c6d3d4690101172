package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/application/spawning/queries"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	var (
		file    string
		remote  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Evaluate one spawn step for a snapshot",
		Long: `Evaluate the population target, deficits, priorities and the spawn
decision for a site snapshot. Nothing is produced.

The snapshot is YAML (or JSON when the file ends in .json):

  site:
    id: W1N1
    development_level: 3
    source_count: 2
    energy_available: 550
    energy_capacity: 800
    construction_site_count: 2
  energy_available: 550   # budget re-read, defaults to site energy
  slot_free: true         # defaults to true
  workers:
    - {name: harvester_10, role: harvester}
    - {name: hauler_22, role: hauler}

Examples:
  colony plan -f snapshot.yaml
  colony plan -f snapshot.json --remote --socket /tmp/colony-planner.sock`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), cmd.OutOrStdout(), file, remote, timeout)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Snapshot file (YAML or JSON) [required]")
	cmd.Flags().BoolVar(&remote, "remote", false, "Evaluate on the planner daemon instead of locally")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Timeout of a remote evaluation")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runPlan(ctx context.Context, out io.Writer, file string, remote bool, timeout time.Duration) error {
	snap, err := LoadSnapshot(file)
	if err != nil {
		return err
	}
	input := snap.StepInput()

	var view *planView
	if remote {
		view, err = evaluateRemote(ctx, input, timeout)
	} else {
		view, err = evaluateLocal(ctx, out, input)
	}
	if err != nil {
		return err
	}

	printPlan(out, view)
	return nil
}

func evaluateLocal(ctx context.Context, out io.Writer, input spawning.StepInput) (*planView, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	pipeline, err := NewPipelineFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	med := common.NewMediator()
	if err := common.RegisterHandler[*queries.EvaluateStepQuery](med, queries.NewEvaluateStepHandler(pipeline)); err != nil {
		return nil, fmt.Errorf("failed to register EvaluateStep handler: %w", err)
	}

	ctx = common.WithLogger(ctx, newStepLogger(cfg, nil, out, input.State.SiteID))
	resp, err := med.Send(ctx, &queries.EvaluateStepQuery{Input: input})
	if err != nil {
		return nil, err
	}
	return localPlanView(resp.(*spawning.StepPlan)), nil
}

func evaluateRemote(ctx context.Context, input spawning.StepInput, timeout time.Duration) (*planView, error) {
	client, err := grpcAdapter.NewPlannerClient(socketPath)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	plan, err := client.EvaluateStep(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("planner daemon at %s: %w", socketPath, err)
	}
	return remotePlanView(plan), nil
}

// planView is what the plan command prints, whichever side evaluated it
type planView struct {
	SiteID       string
	Tier         string
	EnergyRatio  float64
	RatioKnown   bool
	Scarcity     bool
	Target       map[string]int
	Current      map[string]int
	Deficits     map[string]int
	Priorities   map[string]string
	ZeroPrimary  bool
	BelowSources bool
	Request      *colony.ProductionRequest
	Error        string
	Deferred     bool
}

func localPlanView(plan *spawning.StepPlan) *planView {
	v := &planView{
		SiteID:       plan.SiteID,
		Tier:         plan.Notes.Tier.String(),
		EnergyRatio:  plan.Notes.EnergyRatio,
		RatioKnown:   plan.Notes.RatioKnown,
		Scarcity:     plan.Notes.ScarcityApplied,
		Target:       plan.Target.AsMap(),
		Current:      plan.Current.AsMap(),
		Deficits:     map[string]int{},
		Priorities:   map[string]string{},
		ZeroPrimary:  plan.Report.ZeroPrimary,
		BelowSources: plan.Report.PrimaryBelowSources,
		Request:      plan.Request,
	}
	for _, d := range plan.Report.Deficits {
		v.Deficits[d.Role.String()] = d.Amount
		v.Priorities[d.Role.String()] = plan.Priorities.Get(d.Role).String()
	}
	if plan.Err != nil {
		v.Error = plan.Err.Error()
		v.Deferred = colony.IsDeferred(plan.Err)
	}
	return v
}

func remotePlanView(plan *grpcAdapter.RemotePlan) *planView {
	v := &planView{
		SiteID:       plan.SiteID,
		Tier:         plan.Tier,
		EnergyRatio:  plan.EnergyRatio,
		RatioKnown:   plan.RatioKnown,
		Scarcity:     plan.ScarcityApplied,
		Target:       plan.Target,
		Current:      plan.Current,
		Deficits:     map[string]int{},
		Priorities:   map[string]string{},
		ZeroPrimary:  plan.ZeroPrimary,
		BelowSources: plan.PrimaryBelowSources,
		Request:      plan.Request,
		Error:        plan.Error,
		Deferred:     plan.Deferred,
	}
	for _, d := range plan.Deficits {
		v.Deficits[d.Role.String()] = d.Amount
		v.Priorities[d.Role.String()] = scoreLabel(plan.Priorities[d.Role.String()])
	}
	return v
}

// scoreLabel renders a wire score the way Priority.String does
func scoreLabel(score float64) string {
	switch score {
	case 0:
		return "critical-zero"
	case 0.5:
		return "critical-low"
	default:
		return fmt.Sprintf("static(%d)", int(score))
	}
}

func printPlan(out io.Writer, v *planView) {
	titleColor := color.New(color.FgCyan, color.Bold)
	successColor := color.New(color.FgGreen, color.Bold)
	warnColor := color.New(color.FgYellow)
	errorColor := color.New(color.FgRed, color.Bold)

	titleColor.Fprintf(out, "\nSite %s (%s)\n", v.SiteID, v.Tier)
	if v.RatioKnown {
		fmt.Fprintf(out, "Energy ratio: %.2f\n", v.EnergyRatio)
	} else {
		fmt.Fprintln(out, "Energy ratio: unknown (no capacity)")
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Role", "Target", "Current", "Deficit", "Priority"}),
	)
	for _, role := range colony.AllRoles() {
		name := role.String()
		deficit, priority := "-", "-"
		if n, ok := v.Deficits[name]; ok {
			deficit = fmt.Sprintf("%d", n)
			priority = v.Priorities[name]
		}
		_ = table.Append([]string{
			name,
			fmt.Sprintf("%d", v.Target[name]),
			fmt.Sprintf("%d", v.Current[name]),
			deficit,
			priority,
		})
	}
	_ = table.Render()

	if v.ZeroPrimary {
		errorColor.Fprintln(out, colony.WarningNoHarvesters)
	} else if v.BelowSources {
		warnColor.Fprintln(out, colony.WarningHarvestersBelowSrc)
	}
	if v.Scarcity {
		warnColor.Fprintln(out, "Low energy: upgraders halved, builders shed")
	}

	switch {
	case v.Request != nil:
		successColor.Fprintf(out, "Spawn %s: %s (cost %d)\n", v.Request.Role, v.Request.Loadout, v.Request.Cost)
	case v.Error != "" && v.Deferred:
		warnColor.Fprintf(out, "Deferred: %s\n", v.Error)
	case v.Error != "":
		errorColor.Fprintf(out, "Error: %s\n", v.Error)
	default:
		fmt.Fprintln(out, "No deficits, nothing to spawn")
	}
}
