package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
)

// NewLogsCommand creates the logs command
func NewLogsCommand() *cobra.Command {
	var (
		siteID string
		level  string
		limit  int
		since  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show persisted spawn step logs",
		Long: `Show spawn step logs stored by 'colony simulate --persist' or by any run
with logging.persist enabled, newest first.

Levels: debug, info, warning, error

Examples:
  colony logs --site W1N1
  colony logs --level warning --limit 20
  colony logs --since 10m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd.Context(), cmd.OutOrStdout(), siteID, level, limit, since)
		},
	}

	cmd.Flags().StringVar(&siteID, "site", "", "Filter by site")
	cmd.Flags().StringVar(&level, "level", "", "Filter by level")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries")
	cmd.Flags().DurationVar(&since, "since", 0, "Only entries newer than this age")

	return cmd
}

func runLogs(ctx context.Context, out io.Writer, siteID, level string, limit int, since time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	q := persistence.StepLogQuery{
		SiteID: siteID,
		Level:  strings.ToUpper(level),
		Limit:  limit,
	}
	if since > 0 {
		cutoff := time.Now().UTC().Add(-since)
		q.Since = &cutoff
	}

	entries, err := persistence.NewGormStepLogRepository(db, nil).GetLogs(ctx, q)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No log entries")
		return nil
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Time", "Site", "Level", "Message", "Details"}),
	)
	for _, e := range entries {
		_ = table.Append([]string{
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.SiteID,
			levelColor(e.Level).Sprint(e.Level),
			e.Message,
			formatDetails(e.Metadata),
		})
	}
	_ = table.Render()
	return nil
}

func levelColor(level string) *color.Color {
	switch level {
	case "ERROR":
		return color.New(color.FgRed, color.Bold)
	case "WARNING":
		return color.New(color.FgYellow)
	case "DEBUG":
		return color.New(color.FgHiBlack)
	default:
		return color.New(color.FgGreen)
	}
}

// formatDetails renders metadata as sorted key=value pairs, without the site
func formatDetails(metadata map[string]interface{}) string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		if k != "site_id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, metadata[k])
	}
	return strings.Join(pairs, " ")
}
