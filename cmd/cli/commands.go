package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"causalnotes/adapters/stats/describe"
	"causalnotes/domain/energy"
	"causalnotes/internal/power"
	"causalnotes/internal/report"
	"causalnotes/ports"

	"github.com/spf13/cobra"
)

func newScenariosCmd(a *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			heading(out, "Scenarios")
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, sc := range a.container.Catalog.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s ~ %s + [%s]\n", sc.Name, sc.Title, sc.Outcome, strings.Join(sc.Base, " + "), sc.Control)
			}
			return tw.Flush()
		},
	}
}

// seedFlags registers --seed and --n; seedPtr returns nil when --seed was
// not given so the scenario keeps its own.
type seedFlags struct {
	seed int64
	n    int
}

func (f *seedFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Override the scenario seed")
	cmd.Flags().IntVar(&f.n, "n", 0, "Override the sample size")
}

func (f *seedFlags) seedPtr(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("seed") {
		return nil
	}
	return &f.seed
}

// writeOutput renders into path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, render func(io.Writer) error) error {
	if path == "" {
		return render(cmd.OutOrStdout())
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), styles.Muted.Render("wrote "+path))
	return nil
}

func newRunCmd(a *cliApp) *cobra.Command {
	var flags seedFlags
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "run <name|file.yaml>",
		Short: "Run one scenario and print the comparison",
		Long: `Generate the scenario's dataset, fit the outcome with and without the
candidate control, and print both models side by side.

Example: causalnotes run confounder --seed 7 --n 2000 --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			res, err := a.container.Experiments.RunNamed(cmd.Context(), args[0], flags.seedPtr(cmd), flags.n)
			if err != nil {
				return err
			}
			return writeOutput(cmd, outPath, func(w io.Writer) error {
				return report.Render(w, f, res.Report())
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown, html, json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newRunAllCmd(a *cliApp) *cobra.Command {
	var format, outDir string
	var save bool

	cmd := &cobra.Command{
		Use:   "run-all",
		Short: "Run every scenario concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			results, err := a.container.Experiments.RunAll(cmd.Context(), a.container.Catalog.List())
			if err != nil {
				return err
			}
			if save && outDir == "" {
				outDir = a.container.Config.Paths.OutputDir
			}
			for _, res := range results {
				path := ""
				if outDir != "" {
					path = filepath.Join(outDir, res.Scenario.Name+"."+extension(f))
				}
				err := writeOutput(cmd, path, func(w io.Writer) error {
					return report.Render(w, f, res.Report())
				})
				if err != nil {
					return err
				}
				if path == "" {
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown, html, json")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Write one file per scenario into this directory")
	cmd.Flags().BoolVar(&save, "save", false, "Write one file per scenario into OUTPUT_DIR")
	return cmd
}

func extension(f report.Format) string {
	switch f {
	case report.FormatMarkdown:
		return "md"
	case report.FormatText:
		return "txt"
	}
	return string(f)
}

func newSummaryCmd(a *cliApp) *cobra.Command {
	var flags seedFlags

	cmd := &cobra.Command{
		Use:   "summary <name|file.yaml>",
		Short: "Describe a scenario's dataset and its omitted-variable bias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.container.Catalog.Resolve(args[0])
			if err != nil {
				return err
			}
			seed := sc.Seed
			if p := flags.seedPtr(cmd); p != nil {
				seed = *p
			}
			sc = sc.With(seed, flags.n)

			ds, err := a.container.Experiments.Generate(cmd.Context(), sc)
			if err != nil {
				return err
			}
			sum, err := describe.Summarize(ds)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			heading(out, fmt.Sprintf("%s (seed %d, N %d)", sc.Name, ds.Seed, ds.Len()))
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "\tmean\tsd\tmin\tmedian\tmax\t")
			for _, v := range sum.Variables {
				fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t\n", v.Name, v.Mean, v.StdDev, v.Min, v.Median, v.Max)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			heading(out, "Correlations")
			tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "\t"+strings.Join(sum.Names, "\t")+"\t")
			for i, name := range sum.Names {
				row := make([]string, len(sum.Names))
				for j := range sum.Names {
					row[j] = fmt.Sprintf("%.3f", sum.Correlations[i][j])
				}
				fmt.Fprintln(tw, name+"\t"+strings.Join(row, "\t")+"\t")
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if sc.Treatment == "" {
				return nil
			}
			long, err := a.container.Experiments.Fit(cmd.Context(), ds, sc.Outcome, append(append([]string(nil), sc.Base...), sc.Control))
			if err != nil {
				return err
			}
			if long.RankDeficient {
				warn(out, "%s is rank deficient; omitted-variable bias undefined", long.Formula())
				return nil
			}
			ovb, err := a.container.Experiments.OmittedVariableBias(cmd.Context(), ds, sc, long)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			keyValues(out, [][2]string{
				{"Leaving out", sc.Control},
				{"Bias on " + sc.Treatment, fmt.Sprintf("%+.4f", ovb)},
			})
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newMDECmd(a *cliApp) *cobra.Command {
	d := power.DefaultDesign()
	var effect float64
	var sims int
	var seed int64

	cmd := &cobra.Command{
		Use:   "mde",
		Short: "Minimum detectable effect and sample size of an A/B test",
		Long: `Compute the minimum detectable effect of a two-arm experiment. With
--effect, also print the sample size needed to detect it and the power at
the current N; --sims adds a Monte Carlo power estimate.

Example: causalnotes mde --n 2000 --sd 12 --effect 1.5 --sims 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("alpha") {
				d.Alpha = a.container.Config.Simulation.Alpha
			}
			if !cmd.Flags().Changed("seed") {
				seed = a.container.Config.Simulation.Seed
			}
			mde, err := power.MDE(d)
			if err != nil {
				return err
			}
			pairs := [][2]string{
				{"alpha", fmt.Sprintf("%g (two-sided)", d.Alpha)},
				{"power", fmt.Sprintf("%g", d.Power)},
				{"std dev", fmt.Sprintf("%g", d.StdDev)},
				{"N", fmt.Sprintf("%d (%.0f%% treated)", d.NTotal, 100*d.TreatShare)},
				{"MDE", fmt.Sprintf("%.4f", mde)},
			}
			if cmd.Flags().Changed("effect") {
				n, err := power.SampleSize(d, effect)
				if err != nil {
					return err
				}
				p, err := power.AnalyticPower(d, effect)
				if err != nil {
					return err
				}
				pairs = append(pairs,
					[2]string{"effect", fmt.Sprintf("%g", effect)},
					[2]string{"N needed", fmt.Sprintf("%d", n)},
					[2]string{"power at N", fmt.Sprintf("%.3f", p)},
				)
				if sims > 0 {
					sim, err := a.container.Simulator.SimulatePower(cmd.Context(), d, effect, sims, seed)
					if err != nil {
						return err
					}
					pairs = append(pairs, [2]string{"simulated", fmt.Sprintf("%.3f (%d runs)", sim, sims)})
				}
			}
			keyValues(cmd.OutOrStdout(), pairs)
			return nil
		},
	}
	cmd.Flags().Float64Var(&d.Alpha, "alpha", d.Alpha, "Two-sided significance level (default ALPHA)")
	cmd.Flags().Float64Var(&d.Power, "power", d.Power, "Target power")
	cmd.Flags().Float64Var(&d.StdDev, "sd", d.StdDev, "Outcome standard deviation")
	cmd.Flags().IntVar(&d.NTotal, "n", d.NTotal, "Total units across both arms")
	cmd.Flags().Float64Var(&d.TreatShare, "share", d.TreatShare, "Share of units treated")
	cmd.Flags().Float64Var(&effect, "effect", 0, "Effect size to size the test for")
	cmd.Flags().IntVar(&sims, "sims", 0, "Monte Carlo replicates for simulated power")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for the simulation (default SEED)")
	return cmd
}

func newEnergyCmd(a *cliApp) *cobra.Command {
	var filter energy.Filter
	var chartPath, title string

	cmd := &cobra.Command{
		Use:   "energy [file.csv|file.xlsx]",
		Short: "Per-country energy-use trends, optionally charted",
		Long: `Read country/year/primary-energy-per-capita data (CSV or XLSX), fit a
linear trend per country and optionally draw a line chart.

Example: causalnotes energy owid-energy.csv --country Norway --country India --from 1990 --chart energy.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.container.Config.Paths.EnergyFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no energy file given and ENERGY_FILE is not set")
			}

			svc := a.container.Energy
			series, err := svc.Load(cmd.Context(), path, filter)
			if err != nil {
				return err
			}
			trends, err := svc.Trends(cmd.Context(), series)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			heading(out, "Energy use per person (kWh)")
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "country\tyears\tlatest\tkWh/yr\tse\tR²\t")
			for _, t := range trends {
				fmt.Fprintf(tw, "%s\t%d-%d\t%.0f\t%+.1f\t%.1f\t%.3f\t\n", t.Country, t.FirstYear, t.LastYear, t.Latest, t.SlopePerYr, t.SlopeStdErr, t.RSquared)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if chartPath == "" {
				return nil
			}
			format := strings.TrimPrefix(filepath.Ext(chartPath), ".")
			return writeOutput(cmd, chartPath, func(w io.Writer) error {
				return svc.Chart(w, format, series, title)
			})
		},
	}
	cmd.Flags().StringSliceVar(&filter.Countries, "country", nil, "Countries to include (repeatable)")
	cmd.Flags().IntVar(&filter.FromYear, "from", 0, "First year to include")
	cmd.Flags().IntVar(&filter.ToYear, "to", 0, "Last year to include")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a line chart (.png, .svg, .pdf)")
	cmd.Flags().StringVar(&title, "title", "Primary energy consumption per person", "Chart title")
	return cmd
}

func newExportCmd(a *cliApp) *cobra.Command {
	var flags seedFlags

	cmd := &cobra.Command{
		Use:   "export <name|file.yaml> [out.csv|out.xlsx]",
		Short: "Write a scenario's generated dataset to CSV or XLSX",
		Long: `Write a scenario's generated dataset to CSV or XLSX. Without an output
path the file is OUTPUT_DIR/<scenario>.csv.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.container.Catalog.Resolve(args[0])
			if err != nil {
				return err
			}
			seed := sc.Seed
			if p := flags.seedPtr(cmd); p != nil {
				seed = *p
			}
			ds, err := a.container.Experiments.Generate(cmd.Context(), sc.With(seed, flags.n))
			if err != nil {
				return err
			}
			path := filepath.Join(a.container.Config.Paths.OutputDir, sc.Name+".csv")
			if len(args) == 2 {
				path = args[1]
			}
			if err := a.container.Writer.Write(path, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, fingerprint %s\n", path, ds.Len(), ds.Fingerprint().Short())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newRunsCmd(a *cliApp) *cobra.Command {
	var filters ports.RunFilters

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := a.container.Experiments.Runs(cmd.Context(), filters)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, styles.Muted.Render("no runs recorded"))
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "id\tscenario\tseed\tn\tfingerprint\tshift\tcreated")
			for _, r := range runs {
				shift := "-"
				if r.Comparison != nil {
					shift = fmt.Sprintf("%+.4f", r.Comparison.Shift())
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n", r.ID, r.Scenario, r.Seed, r.N, r.Fingerprint.Short(), shift, r.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&filters.Scenario, "scenario", "", "Only runs of this scenario")
	cmd.Flags().IntVar(&filters.Limit, "limit", 20, "Maximum number of runs")
	return cmd
}
