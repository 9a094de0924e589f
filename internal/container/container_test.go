package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"causalnotes/adapters/postgres"
	"causalnotes/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Simulation: config.SimulationConfig{
			Seed:        42,
			SampleSize:  500,
			Alpha:       0.05,
			MaxParallel: 2,
		},
		LogLevel: "ERROR",
	}
}

func TestNew_InMemory(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	require.NoError(t, c.Connect(context.Background()))
	assert.Nil(t, c.DB)
	assert.Len(t, c.Catalog.Names(), 5)

	res, err := c.Experiments.RunNamed(context.Background(), "confounder", nil, 0)
	require.NoError(t, err)
	got, err := c.Ledger.Get(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "confounder", got.Scenario)
}

func TestNew_SimulationDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.Seed = 7
	cfg.Simulation.SampleSize = 300
	c, err := New(cfg)
	require.NoError(t, err)

	res, err := c.Experiments.RunNamed(context.Background(), "confounder", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Dataset.Seed)
	assert.Equal(t, 300, res.Dataset.Len())
}

func TestNew_ScenarioDir(t *testing.T) {
	dir := t.TempDir()
	doc := `
name: two_step
structure:
  exogenous: [{name: X, std_dev: 1}]
  endogenous:
    - {name: Y, parents: [{parent: X, weight: 2}], noise_std_dev: 1}
outcome: Y
base: [X]
control: X
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(doc), 0o644))

	cfg := testConfig()
	cfg.Paths.ScenarioDir = dir
	_, err := New(cfg)
	assert.Error(t, err, "control already in base")

	cfg.Paths.ScenarioDir = filepath.Join(dir, "missing")
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestInitWithDatabase(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	c, err := New(testConfig())
	require.NoError(t, err)

	require.NoError(t, c.InitWithDatabase(sqlx.NewDb(raw, "sqlmock")))
	assert.NotNil(t, c.DB)
	assert.IsType(t, &postgres.RunRepositoryImpl{}, c.Ledger)

	require.NoError(t, c.Shutdown(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Error(t, c.InitWithDatabase(nil))
}
