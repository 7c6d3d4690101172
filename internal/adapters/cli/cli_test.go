package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/adapters/cli"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

const emptySiteSnapshot = `
site:
  id: W1N1
  development_level: 1
  source_count: 2
  energy_available: 300
  energy_capacity: 300
workers:
  - {name: upgrader_4, role: upgrader}
  - {name: harvester_9, role: harvester, site_id: W7N7}
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// writeSQLiteConfig points the CLI at a throwaway sqlite file
func writeSQLiteConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "colony.yaml", "database:\n  type: sqlite\n  path: "+filepath.Join(dir, "colony.db")+"\nlogging:\n  no_color: true\n")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--no-color"))
	err := root.Execute()
	return out.String(), err
}

func TestLoadSnapshot_YAMLDefaults(t *testing.T) {
	// Arrange
	path := writeFile(t, t.TempDir(), "snap.yaml", emptySiteSnapshot)

	// Act
	snap, err := cli.LoadSnapshot(path)

	// Assert
	require.NoError(t, err)
	in := snap.StepInput()
	assert.Equal(t, "W1N1", in.State.SiteID)
	assert.Equal(t, 300, in.Budget)
	assert.Equal(t, colony.SlotFree, in.Slot)
	assert.Equal(t, []colony.Worker{
		{Name: "upgrader_4", Role: "upgrader", SiteID: "W1N1"},
		{Name: "harvester_9", Role: "harvester", SiteID: "W7N7"},
	}, in.Workers)
}

func TestLoadSnapshot_JSONWithBudgetAndBusySlot(t *testing.T) {
	// Arrange
	path := writeFile(t, t.TempDir(), "snap.json", `{
  "site": {"id": "E2S3", "development_level": 4, "source_count": 2, "energy_available": 900, "energy_capacity": 1300},
  "energy_available": 640,
  "slot_free": false,
  "workers": [{"name": "hauler_1", "role": "hauler"}]
}`)

	// Act
	snap, err := cli.LoadSnapshot(path)

	// Assert
	require.NoError(t, err)
	in := snap.StepInput()
	assert.Equal(t, 640, in.Budget)
	assert.Equal(t, 900, in.State.EnergyAvailable)
	assert.Equal(t, colony.SlotOccupied, in.Slot)
	assert.Equal(t, 4, in.State.DevelopmentLevel)
}

func TestLoadSnapshot_RejectsMissingSiteID(t *testing.T) {
	path := writeFile(t, t.TempDir(), "snap.yaml", "site:\n  development_level: 2\n")

	_, err := cli.LoadSnapshot(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid snapshot")
}

func TestLoadSnapshot_RejectsNegativeBudget(t *testing.T) {
	path := writeFile(t, t.TempDir(), "snap.yaml", "site:\n  id: W1N1\nenergy_available: -5\n")

	_, err := cli.LoadSnapshot(path)

	require.Error(t, err)
}

func TestPlanCommand_EmptySiteSpawnsHarvester(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "snap.yaml", emptySiteSnapshot)
	cfg := writeSQLiteConfig(t, dir)

	// Act
	out, err := execute(t, "plan", "-f", snapshot, "--config", cfg)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Site W1N1")
	assert.Contains(t, out, colony.WarningNoHarvesters)
	assert.Contains(t, out, "Spawn harvester")
	assert.Contains(t, out, "critical-zero")
}

func TestPlanCommand_BusySlotIsDeferred(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "snap.yaml", emptySiteSnapshot+"slot_free: false\n")
	cfg := writeSQLiteConfig(t, dir)

	// Act
	out, err := execute(t, "plan", "-f", snapshot, "--config", cfg)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Deferred")
	assert.NotContains(t, out, "Spawn harvester")
}

func TestPlanCommand_RequiresFile(t *testing.T) {
	_, err := execute(t, "plan")

	require.Error(t, err)
}

func TestImportThenReport_ShowsNeeds(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "snap.yaml", emptySiteSnapshot)
	cfg := writeSQLiteConfig(t, dir)

	// Act
	importOut, importErr := execute(t, "import", "-f", snapshot, "--config", cfg)
	reportOut, reportErr := execute(t, "report", "--site", "W1N1", "--config", cfg)

	// Assert
	require.NoError(t, importErr)
	assert.Contains(t, importOut, "Imported site W1N1 with 1 workers")
	assert.Contains(t, importOut, "Skipped 1 workers")

	require.NoError(t, reportErr)
	assert.Contains(t, reportOut, "Site W1N1")
	assert.Contains(t, reportOut, colony.WarningNoHarvesters)
	assert.Contains(t, reportOut, colony.SuggestMoreUpgraders)
	assert.Contains(t, reportOut, "upgrader_4")
	assert.NotContains(t, reportOut, "harvester_9")
}

func TestReport_UnknownSiteFails(t *testing.T) {
	dir := t.TempDir()
	cfg := writeSQLiteConfig(t, dir)

	_, err := execute(t, "report", "--site", "NOPE", "--config", cfg)

	require.Error(t, err)
}

func TestSimulateWithPersist_LogsAreQueryable(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	cfg := writeSQLiteConfig(t, dir)

	// Act
	simOut, simErr := execute(t, "simulate", "--steps", "40", "--seed", "3", "--quiet", "--persist", "--config", cfg)
	logsOut, logsErr := execute(t, "logs", "--site", "W1N1", "--config", cfg)
	reportOut, reportErr := execute(t, "report", "--config", cfg)

	// Assert
	require.NoError(t, simErr)
	assert.Contains(t, simOut, "40 ticks")
	assert.Contains(t, simOut, "Saved site W1N1")

	require.NoError(t, logsErr)
	assert.Contains(t, logsOut, "spawning new worker")

	require.NoError(t, reportErr)
	assert.Contains(t, reportOut, "Site W1N1")
	assert.Contains(t, reportOut, "harvester_0")
	assert.Contains(t, reportOut, "[work,carry,move,move]")
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	cfg := writeSQLiteConfig(t, dir)

	showOut, err := execute(t, "config", "show", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, showOut, "scarcity_ratio: 0.3")

	validateOut, err := execute(t, "config", "validate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, validateOut, "Configuration is valid")

	loadoutsOut, err := execute(t, "config", "loadouts", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, loadoutsOut, "[work,carry,move,move]")
	assert.Contains(t, loadoutsOut, "[carry,carry,move,move]")
}
