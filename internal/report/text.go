package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"causalnotes/domain/regression"
)

// Text writes a plain-text report: the two models side by side, the bias
// annotations, then a full coefficient table per model.
func Text(w io.Writer, r *Report) error {
	c := r.Comparison
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.Title)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", len(r.Title)))
	fmt.Fprintf(&b, "scenario %s, seed %d, N %d\n", r.Scenario, r.Seed, r.N)
	if r.RunID != "" {
		fmt.Fprintf(&b, "run %s\n", r.RunID)
	}
	if r.Note != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Note)
	}
	b.WriteString("\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\t%s (+%s)\n", c.Without.Formula(), c.With.Formula(), c.Candidate)
	for _, name := range c.Names() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, cell(c.Without, name), cell(c.With, name))
	}
	fmt.Fprintf(tw, "R²\t%s\t%s\n", num(c.Without.RSquared), num(c.With.RSquared))
	fmt.Fprintf(tw, "Adj. R²\t%s\t%s\n", num(c.Without.AdjRSquared), num(c.With.AdjRSquared))
	fmt.Fprintf(tw, "N\t%d\t%d\n", c.Without.N, c.With.N)
	if err := tw.Flush(); err != nil {
		return err
	}

	if lines := annotations(r); len(lines) > 0 {
		b.WriteString("\n")
		for _, l := range lines {
			fmt.Fprintf(&b, "%s\n", l)
		}
	}

	for i, res := range []*regression.Result{c.Without, c.With} {
		fmt.Fprintf(&b, "\nModel %d: %s\n", i+1, res.Formula())
		if err := coefficientTable(&b, res); err != nil {
			return err
		}
	}

	if r.Summary != nil {
		b.WriteString("\nVariables\n")
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "\tmean\tstd\tmin\tmedian\tmax\t\n")
		for _, v := range r.Summary.Variables {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", v.Name, num(v.Mean), num(v.StdDev), num(v.Min), num(v.Median), num(v.Max))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// coefficientTable prints coef, std err, t and P>|t| per regressor.
func coefficientTable(w io.Writer, res *regression.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\tcoef\tstd err\tt\tP>|t|\t\t\n")
	for _, c := range res.Coefficients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", c.Name, num(c.Estimate), num(c.StdErr), num(c.TStat), pval(c.PValue), stars(c.PValue))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "R² %s, F %s (p %s), df %d\n", num(res.RSquared), num(res.FStat), pval(res.FPValue), res.DF)
	return err
}
