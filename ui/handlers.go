package ui

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"causalnotes/app"
	"causalnotes/domain/core"
	"causalnotes/domain/regression"
	"causalnotes/internal/errors"
	"causalnotes/internal/power"
	"causalnotes/internal/report"
	"causalnotes/internal/scenarios"
	"causalnotes/ports"

	"github.com/gin-gonic/gin"
)

const (
	defaultRunLimit = 50
	maxSimulations  = 5000
	maxSampleSize   = 100_000
)

// statusFor maps domain and application errors onto HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	}
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case core.IsStructureError(err),
		stderrors.Is(err, core.ErrInvalidComparison),
		stderrors.Is(err, core.ErrInsufficientData),
		stderrors.Is(err, core.ErrMalformedInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleIndex(c *gin.Context) {
	runs, err := s.experiments.Runs(c.Request.Context(), ports.RunFilters{})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	err = s.templates.ExecuteTemplate(c.Writer, "index.html", gin.H{
		"Scenarios": s.experiments.Catalog().List(),
		"RunCount":  len(runs),
	})
	if err != nil {
		s.logger.Error("render index: %v", err)
	}
}

func (s *Server) handleListScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"scenarios": s.experiments.Catalog().List(),
	})
}

// scenarioFromRequest looks up a registered scenario (never a file path) and
// applies optional ?seed= and ?n= overrides.
func (s *Server) scenarioFromRequest(c *gin.Context) (scenarios.Scenario, error) {
	sc, err := s.experiments.Catalog().Get(c.Param("name"))
	if err != nil {
		return scenarios.Scenario{}, err
	}
	seed := sc.Seed
	if raw := c.Query("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return scenarios.Scenario{}, errors.InvalidInput(fmt.Sprintf("seed %q is not an integer", raw))
		}
		seed = v
	}
	n := 0
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 2 || v > maxSampleSize {
			return scenarios.Scenario{}, errors.InvalidInput(fmt.Sprintf("n %q must be an integer between 2 and %d", raw, maxSampleSize))
		}
		n = v
	}
	return sc.With(seed, n), nil
}

// runFromRequest runs the requested scenario and records it in the ledger.
func (s *Server) runFromRequest(c *gin.Context) (*app.RunResult, error) {
	sc, err := s.scenarioFromRequest(c)
	if err != nil {
		return nil, err
	}
	return s.experiments.RunScenario(c.Request.Context(), sc)
}

func (s *Server) handleRunScenario(c *gin.Context) {
	res, err := s.runFromRequest(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Type", "application/json; charset=utf-8")
	if err := report.Render(c.Writer, report.FormatJSON, res.Report()); err != nil {
		s.logger.Error("render json: %v", err)
	}
}

func (s *Server) handleReport(c *gin.Context) {
	res, err := s.runFromRequest(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := report.Render(c.Writer, report.FormatHTML, res.Report()); err != nil {
		s.logger.Error("render html: %v", err)
	}
}

// handleScatter plots outcome against treatment with the unadjusted fit. The
// image is a view of a run, so nothing is recorded.
func (s *Server) handleScatter(c *gin.Context) {
	sc, err := s.scenarioFromRequest(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.experiments.Evaluate(c.Request.Context(), sc)
	if err != nil {
		s.fail(c, err)
		return
	}
	cmp := res.Comparison
	if cmp.Treatment == "" {
		s.fail(c, errors.InvalidInput(fmt.Sprintf("scenario %s has no treatment to plot", res.Scenario.Name)))
		return
	}
	x, _ := res.Dataset.Column(cmp.Treatment)
	y, _ := res.Dataset.Column(cmp.Outcome)

	var buf bytes.Buffer
	err = s.charts.ScatterWithFit(&buf, "png", x, y, cmp.Treatment, cmp.Outcome,
		cmp.Without.Estimate(regression.InterceptName), cmp.Without.Estimate(cmp.Treatment))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			s.fail(c, errors.InvalidInput(fmt.Sprintf("limit %q must be a positive integer", raw)))
			return
		}
		limit = v
	}
	runs, err := s.experiments.Runs(c.Request.Context(), ports.RunFilters{
		Scenario: c.Query("scenario"),
		Limit:    limit,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		s.fail(c, errors.InvalidInput(err.Error()))
		return
	}
	run, err := s.experiments.Run(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// handleMDE reports the minimum detectable effect of a design given by
// query parameters, and optionally the power at ?effect= (analytic, plus
// simulated when ?sims= is set).
func (s *Server) handleMDE(c *gin.Context) {
	d := power.DefaultDesign()
	d.Alpha = s.settings.Alpha
	fields := []struct {
		key string
		dst *float64
	}{
		{"alpha", &d.Alpha},
		{"power", &d.Power},
		{"sd", &d.StdDev},
		{"share", &d.TreatShare},
	}
	for _, f := range fields {
		if raw := c.Query(f.key); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				s.fail(c, errors.InvalidInput(fmt.Sprintf("%s %q is not a number", f.key, raw)))
				return
			}
			*f.dst = v
		}
	}
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v > maxSampleSize {
			s.fail(c, errors.InvalidInput(fmt.Sprintf("n %q must be an integer of at most %d", raw, maxSampleSize)))
			return
		}
		d.NTotal = v
	}

	mde, err := power.MDE(d)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := gin.H{
		"design": d,
		"mde":    mde,
	}

	if raw := c.Query("effect"); raw != "" {
		effect, err := strconv.ParseFloat(raw, 64)
		if err != nil || effect <= 0 {
			s.fail(c, errors.InvalidInput(fmt.Sprintf("effect %q must be a positive number", raw)))
			return
		}
		analytic, err := power.AnalyticPower(d, effect)
		if err != nil {
			s.fail(c, err)
			return
		}
		needed, err := power.SampleSize(d, effect)
		if err != nil {
			s.fail(c, err)
			return
		}
		out["effect"] = effect
		out["power"] = analytic
		out["sample_size"] = needed

		if raw := c.Query("sims"); raw != "" {
			sims, err := strconv.Atoi(raw)
			if err != nil || sims < 1 || sims > maxSimulations {
				s.fail(c, errors.InvalidInput(fmt.Sprintf("sims must be between 1 and %d", maxSimulations)))
				return
			}
			simulated, err := s.simulator.SimulatePower(c.Request.Context(), d, effect, sims, s.settings.SimSeed)
			if err != nil {
				s.fail(c, err)
				return
			}
			out["simulated_power"] = simulated
		}
	}
	c.JSON(http.StatusOK, out)
}
