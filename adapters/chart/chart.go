// Package chart draws the energy line chart and the scatter-with-fit plots
// with gonum/plot.
package chart

import (
	"fmt"
	"io"
	"strings"

	"causalnotes/domain/energy"
	"causalnotes/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var formats = []string{"png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps"}

// Renderer draws charts at a fixed canvas size.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer creates a renderer with an 8x5 inch canvas.
func NewRenderer() *Renderer {
	return &Renderer{Width: 8 * vg.Inch, Height: 5 * vg.Inch}
}

// EnergyLines draws one line per country, years on x, kWh per person on y.
func (r *Renderer) EnergyLines(w io.Writer, format string, series []energy.Series, title string) error {
	format, err := checkFormat(format)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return errors.InvalidInput("no series to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "kWh per person"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts := make(plotter.XYs, len(s.Records))
		for j, rec := range s.Records {
			pts[j].X = float64(rec.Year)
			pts[j].Y = rec.KWhPerCapita
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "line for %s", s.Country)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Country, line)
	}

	return r.write(w, p, format)
}

// ScatterWithFit draws the points and the fitted line intercept + slope·x.
func (r *Renderer) ScatterWithFit(w io.Writer, format string, x, y []float64, xLabel, yLabel string, intercept, slope float64) error {
	format, err := checkFormat(format)
	if err != nil {
		return err
	}
	if len(x) != len(y) {
		return errors.InvalidInput(fmt.Sprintf("x has %d points, y has %d", len(x), len(y)))
	}
	if len(x) == 0 {
		return errors.InvalidInput("no points to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", yLabel, xLabel)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X, pts[i].Y = x[i], y[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = plotutil.Color(0)

	fit := plotter.NewFunction(func(v float64) float64 { return intercept + slope*v })
	fit.Color = plotutil.Color(1)
	fit.Width = vg.Points(2)

	p.Add(scatter, fit)
	p.Legend.Add("observed", scatter)
	p.Legend.Add(fmt.Sprintf("fit: %.3g + %.3g·x", intercept, slope), fit)
	p.Legend.Top = true

	return r.write(w, p, format)
}

func (r *Renderer) write(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(r.Width, r.Height, format)
	if err != nil {
		return errors.Wrapf(err, "render %s", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write chart")
	}
	return nil
}

// checkFormat normalizes "PNG" or ".png" to "png".
func checkFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	for _, known := range formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.InvalidInput(fmt.Sprintf("unsupported chart format %q", format))
}
