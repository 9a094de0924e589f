package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"causalnotes/domain/regression"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown writes the report as GitHub-style Markdown tables.
func Markdown(w io.Writer, r *Report) error {
	_, err := io.WriteString(w, markdownString(r))
	return err
}

func markdownString(r *Report) string {
	c := r.Comparison
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "Scenario `%s`, seed %d, N = %d.\n\n", r.Scenario, r.Seed, r.N)
	if r.Note != "" {
		fmt.Fprintf(&b, "> %s\n\n", r.Note)
	}

	fmt.Fprintf(&b, "| | `%s` | `%s` |\n", c.Without.Formula(), c.With.Formula())
	b.WriteString("|---|---:|---:|\n")
	for _, name := range c.Names() {
		label := name
		if name == c.Candidate {
			label = "**" + name + "** (added)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", label, cell(c.Without, name), cell(c.With, name))
	}
	fmt.Fprintf(&b, "| R² | %s | %s |\n\n", num(c.Without.RSquared), num(c.With.RSquared))

	for _, l := range annotations(r) {
		fmt.Fprintf(&b, "- %s\n", l)
	}

	for _, res := range []*regression.Result{c.Without, c.With} {
		fmt.Fprintf(&b, "\n## `%s`\n\n", res.Formula())
		b.WriteString("| | coef | std err | t | p-value |\n")
		b.WriteString("|---|---:|---:|---:|---:|\n")
		for _, co := range res.Coefficients {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s%s |\n", co.Name, num(co.Estimate), num(co.StdErr), num(co.TStat), pval(co.PValue), stars(co.PValue))
		}
	}
	return b.String()
}

// HTML renders the Markdown report through gomarkdown into a standalone page.
func HTML(w io.Writer, r *Report) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(markdownString(r)))
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: r.Title,
	})
	_, err := w.Write(markdown.Render(doc, renderer))
	return err
}

// JSON writes the report as indented JSON. Undefined statistics are null.
func JSON(w io.Writer, r *Report) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
