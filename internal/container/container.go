package container

import (
	"context"
	"fmt"

	"causalnotes/adapters/chart"
	"causalnotes/adapters/excel"
	"causalnotes/adapters/postgres"
	"causalnotes/adapters/stats/ols"
	"causalnotes/adapters/stats/synth"
	"causalnotes/app"
	"causalnotes/internal"
	"causalnotes/internal/config"
	"causalnotes/internal/errors"
	"causalnotes/internal/migration"
	"causalnotes/internal/power"
	"causalnotes/internal/scenarios"
	"causalnotes/internal/testkit"
	"causalnotes/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB      *sqlx.DB
	TestKit *testkit.TestKit

	// Adapters
	Estimator ports.Estimator
	Generator ports.DatasetGenerator
	Ledger    ports.RunLedger
	Charts    ports.ChartRenderer
	Reader    *excel.DataReader
	Writer    *excel.DatasetWriter

	// Services
	Catalog     *scenarios.Catalog
	Experiments *app.ExperimentService
	Energy      *app.EnergyService
	Simulator   *power.Simulator

	logger *internal.Logger
}

// New wires the in-process components. The ledger is in-memory until
// InitWithDatabase swaps in PostgreSQL.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.DefaultLogger
	logger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	kit := testkit.NewTestKit()
	c := &Container{
		Config:    cfg,
		TestKit:   kit,
		Estimator: ols.NewEstimator(),
		Generator: synth.NewGenerator(kit.RNGAdapter()),
		Ledger:    kit.LedgerAdapter(),
		Charts:    chart.NewRenderer(),
		Reader:    excel.NewDataReader(excel.DefaultReaderConfig()),
		Writer:    excel.NewDatasetWriter(),
		Catalog:   scenarios.NewCatalogWithDefaults(cfg.Simulation.Seed, cfg.Simulation.SampleSize),
		logger:    logger,
	}

	if err := c.Catalog.LoadDir(cfg.Paths.ScenarioDir); err != nil {
		return nil, errors.Wrap(err, "failed to load scenario directory")
	}

	c.initServices()
	return c, nil
}

// initServices (re)builds the services over the current adapters.
func (c *Container) initServices() {
	stages := app.NewStageRunner(c.Generator, c.Estimator)
	c.Experiments = app.NewExperimentService(stages, c.Ledger, c.Catalog, c.Config.Simulation.MaxParallel)
	c.Energy = app.NewEnergyService(c.Reader, c.Estimator, c.Charts)
	c.Simulator = power.NewSimulator(c.TestKit.RNGAdapter(), c.Estimator)
}

// Connect opens the configured database, creates the schema and switches
// the ledger to PostgreSQL. Without DATABASE_URL it is a no-op.
func (c *Container) Connect(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.logger.Debug("no DATABASE_URL, keeping runs in memory")
		return nil
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}
	return c.InitWithDatabase(db)
}

// InitWithDatabase switches the run ledger to db.
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.DB = db
	c.Ledger = postgres.NewRunRepository(db)
	c.initServices()

	c.logger.Info("run ledger: postgres")
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return errors.DatabaseError("failed to close database", err)
		}
	}
	return nil
}
