package main

import (
	"fmt"
	"os"

	"causalnotes/internal/config"
	"causalnotes/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Warning.Render(err.Error()))
		os.Exit(1)
	}
}

// cliApp holds the container shared by every subcommand. It is built on
// first use unless a test injects one.
type cliApp struct {
	container *container.Container
}

func (a *cliApp) init(cmd *cobra.Command) error {
	if a.container != nil {
		return nil
	}
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	if err := c.Connect(cmd.Context()); err != nil {
		return err
	}
	a.container = c
	return nil
}

func newRootCmd(c *container.Container) *cobra.Command {
	a := &cliApp{container: c}

	rootCmd := &cobra.Command{
		Use:           "causalnotes",
		Short:         "Simulate causal structures and compare regressions with and without a control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.AddCommand(
		newScenariosCmd(a),
		newRunCmd(a),
		newRunAllCmd(a),
		newSummaryCmd(a),
		newMDECmd(a),
		newEnergyCmd(a),
		newExportCmd(a),
		newRunsCmd(a),
	)
	return rootCmd
}
