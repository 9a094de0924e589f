package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"causalnotes/adapters/stats/describe"
	"causalnotes/domain/regression"
	"causalnotes/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	truth := 3.0
	ovb := 1.5
	return &Report{
		Title:    "Controlling for a confounder",
		Scenario: "confounder",
		Seed:     42,
		N:        500,
		OVB:      &ovb,
		Comparison: &regression.Comparison{
			Outcome:    "Y",
			Treatment:  "T",
			Candidate:  "Z",
			TrueEffect: &truth,
			Without: &regression.Result{
				Outcome: "Y", Regressors: []string{"T"}, N: 500, DF: 498, RSquared: 0.96,
				Coefficients: []regression.Coefficient{
					{Name: regression.InterceptName, Estimate: 0.01, StdErr: 0.09, TStat: 0.11, PValue: 0.91},
					{Name: "T", Estimate: 4.6, StdErr: 0.04, TStat: 115, PValue: 0},
				},
			},
			With: &regression.Result{
				Outcome: "Y", Regressors: []string{"T", "Z"}, N: 500, DF: 497, RSquared: 0.99,
				Coefficients: []regression.Coefficient{
					{Name: regression.InterceptName, Estimate: 0.02, StdErr: 0.04, TStat: 0.5, PValue: 0.6},
					{Name: "T", Estimate: 3.1, StdErr: 0.04, TStat: 70, PValue: 0},
					{Name: "Z", Estimate: 3.9, StdErr: 0.1, TStat: 39, PValue: 0},
				},
			},
		},
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "Controlling for a confounder\n============================")
	assert.Contains(t, out, "Y ~ T + Z (+Z)")
	assert.Contains(t, out, "4.6000 (0.0400)")
	assert.Contains(t, out, "Adding Z moves the T coefficient by -1.5000.")
	assert.Contains(t, out, "Bias without Z: +1.6000, with Z: +0.1000.")
	assert.Contains(t, out, "Omitted-variable bias formula: +1.5000.")
	assert.Contains(t, out, "Model 2: Y ~ T + Z")
	assert.Contains(t, out, "<0.001")
	assert.Contains(t, out, "***")

	// the Z row of the side-by-side table is blank for the short model
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Z ") {
			assert.True(t, strings.HasSuffix(line, "3.9000 (0.1000)"), line)
			break
		}
	}
}

func TestText_RankDeficientAndSummary(t *testing.T) {
	r := sampleReport()
	nan := math.NaN()
	r.Comparison.With.RankDeficient = true
	for i := range r.Comparison.With.Coefficients {
		r.Comparison.With.Coefficients[i].Estimate = nan
		r.Comparison.With.Coefficients[i].PValue = nan
	}
	r.Summary = &describe.Summary{N: 500, Names: []string{"Y"}, Variables: []describe.VariableSummary{{Name: "Y", Mean: 1, StdDev: 2}}}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "Y ~ T + Z is rank deficient")
	assert.Contains(t, out, "nan")
	assert.Contains(t, out, "Variables")
}

func TestMarkdownAndHTML(t *testing.T) {
	var md bytes.Buffer
	require.NoError(t, Render(&md, FormatMarkdown, sampleReport()))
	assert.Contains(t, md.String(), "# Controlling for a confounder")
	assert.Contains(t, md.String(), "| **Z** (added) |  | 3.9000 (0.1000) |")

	var page bytes.Buffer
	require.NoError(t, Render(&page, FormatHTML, sampleReport()))
	assert.Contains(t, page.String(), "<title>Controlling for a confounder</title>")
	assert.Contains(t, page.String(), "<table>")
	assert.Contains(t, page.String(), "<strong>Z</strong> (added)")
}

func TestJSON(t *testing.T) {
	r := sampleReport()
	r.Comparison.With.FStat = math.NaN()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, r))

	var back Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "confounder", back.Scenario)
	assert.Equal(t, 3.1, back.Comparison.With.Estimate("T"))
	assert.True(t, math.IsNaN(back.Comparison.With.FStat))
	require.NotNil(t, back.OVB)
	assert.Equal(t, 1.5, *back.OVB)
}

func TestRender_Invalid(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Format("pdf"), sampleReport())
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	err = Render(&buf, FormatText, &Report{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":      FormatText,
		"txt":   FormatText,
		".md":   FormatMarkdown,
		"HTML":  FormatHTML,
		"json":  FormatJSON,
		".json": FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("docx")
	assert.Error(t, err)
}
