package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/adapters/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
)

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store a snapshot in the database",
		Long: `Store the site and the workers of a snapshot in the configured database.
The workers of the site are replaced; workers listed for other sites are
skipped.

Example:
  colony import -f snapshot.yaml
  colony report --site W1N1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Snapshot file (YAML or JSON) [required]")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, file string) error {
	snap, err := LoadSnapshot(file)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	imported, skipped, err := newSiteStore(db).saveSnapshot(ctx, snap)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "Imported site %s with %d workers\n", snap.Site.ID, imported)
	if skipped > 0 {
		color.New(color.FgYellow).Fprintf(out, "Skipped %d workers of other sites\n", skipped)
	}
	return nil
}

// siteStore writes sites and their workers through the gorm repositories
type siteStore struct {
	sites   *persistence.GormSiteRepository
	workers *persistence.GormWorkerRepository
}

func newSiteStore(db *gorm.DB) *siteStore {
	return &siteStore{
		sites:   persistence.NewGormSiteRepository(db, nil),
		workers: persistence.NewGormWorkerRepository(db, nil),
	}
}

// saveSnapshot stores the snapshot site and the workers that belong to it
func (s *siteStore) saveSnapshot(ctx context.Context, snap *Snapshot) (imported, skipped int, err error) {
	state := snap.RoomState()
	if err := s.sites.Save(ctx, state); err != nil {
		return 0, 0, err
	}

	var workers []persistence.RegisteredWorker
	for _, w := range snap.RegistryWorkers() {
		if w.SiteID != state.SiteID {
			skipped++
			continue
		}
		workers = append(workers, persistence.RegisteredWorker{Worker: w})
	}
	if err := s.workers.ReplaceSite(ctx, state.SiteID, workers); err != nil {
		return 0, 0, err
	}
	return len(workers), skipped, nil
}

// saveWorld stores the current state of a simulated site
func (s *siteStore) saveWorld(ctx context.Context, world *simulation.World, siteID string) error {
	state, err := world.ReadState(ctx, siteID)
	if err != nil {
		return fmt.Errorf("failed to read simulated site: %w", err)
	}
	if err := s.sites.Save(ctx, state); err != nil {
		return err
	}

	live := world.Workers()
	workers := make([]persistence.RegisteredWorker, 0, len(live))
	for _, w := range live {
		workers = append(workers, persistence.RegisteredWorker{
			Worker: colony.Worker{Name: w.Name, Role: w.Role.String(), SiteID: w.SiteID},
			Body:   w.Body,
		})
	}
	return s.workers.ReplaceSite(ctx, siteID, workers)
}
