package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory database that lives as long as t.
// Any sites given are stored before it is returned.
func NewTestDB(t testing.TB, sites ...colony.RoomState) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() {
		assert.NoError(t, database.Close(db))
	})

	if len(sites) > 0 {
		repo := persistence.NewGormSiteRepository(db, nil)
		for _, site := range sites {
			require.NoError(t, repo.Save(context.Background(), site), "failed to seed site %s", site.SiteID)
		}
	}

	return db
}
