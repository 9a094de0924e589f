// Package report renders with/without-control comparisons as text,
// Markdown, HTML and JSON.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"causalnotes/adapters/stats/describe"
	"causalnotes/domain/regression"
	"causalnotes/internal/errors"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or a common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown report format %q", s))
}

// Report is everything one scenario run prints.
type Report struct {
	Title      string                 `json:"title"`
	Scenario   string                 `json:"scenario"`
	Note       string                 `json:"note,omitempty"`
	RunID      string                 `json:"run_id,omitempty"`
	Seed       int64                  `json:"seed"`
	N          int                    `json:"n"`
	Comparison *regression.Comparison `json:"comparison"`
	Summary    *describe.Summary      `json:"summary,omitempty"`
	// OVB is the closed-form omitted-variable bias of leaving out the control.
	OVB *float64 `json:"omitted_variable_bias,omitempty"`
}

// Render writes r in format f.
func Render(w io.Writer, f Format, r *Report) error {
	if r == nil || r.Comparison == nil || r.Comparison.Without == nil || r.Comparison.With == nil {
		return errors.InvalidInput("report has no comparison")
	}
	switch f {
	case FormatText:
		return Text(w, r)
	case FormatMarkdown:
		return Markdown(w, r)
	case FormatHTML:
		return HTML(w, r)
	case FormatJSON:
		return JSON(w, r)
	}
	return errors.InvalidInput(fmt.Sprintf("unknown report format %q", f))
}

// Annotations are the bias lines shared by the text and Markdown renderers.
func annotations(r *Report) []string {
	c := r.Comparison
	var lines []string
	if c.Treatment != "" {
		lines = append(lines, fmt.Sprintf("Adding %s moves the %s coefficient by %s.", c.Candidate, c.Treatment, signed(c.Shift())))
	}
	if c.TrueEffect != nil {
		without, with := c.Bias()
		lines = append(lines, fmt.Sprintf("True effect of %s: %s. Bias without %s: %s, with %s: %s.",
			c.Treatment, num(*c.TrueEffect), c.Candidate, signed(without), c.Candidate, signed(with)))
	}
	if r.OVB != nil {
		lines = append(lines, fmt.Sprintf("Omitted-variable bias formula: %s.", signed(*r.OVB)))
	}
	for _, res := range []*regression.Result{c.Without, c.With} {
		if res.RankDeficient {
			lines = append(lines, fmt.Sprintf("%s is rank deficient; its coefficients are undefined.", res.Formula()))
		}
	}
	return lines
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "nan"
	}
	return fmt.Sprintf("%.4f", v)
}

func signed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "nan"
	}
	return fmt.Sprintf("%+.4f", v)
}

func pval(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case v < 0.001:
		return "<0.001"
	}
	return fmt.Sprintf("%.3f", v)
}

// cell is "estimate (se)" or blank when the model does not carry name.
func cell(res *regression.Result, name string) string {
	c, ok := res.Coefficient(name)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s (%s)", num(c.Estimate), num(c.StdErr))
}

func stars(p float64) string {
	switch {
	case math.IsNaN(p):
		return ""
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	}
	return ""
}
