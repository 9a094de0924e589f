package regression

import (
	"encoding/json"
	"math"
)

// JSON has no NaN or Inf, so undefined statistics travel as null.

type coefficientJSON struct {
	Name     string   `json:"name"`
	Estimate *float64 `json:"estimate"`
	StdErr   *float64 `json:"std_err"`
	TStat    *float64 `json:"t_stat"`
	PValue   *float64 `json:"p_value"`
}

type resultJSON struct {
	Outcome          string        `json:"outcome"`
	Regressors       []string      `json:"regressors"`
	N                int           `json:"n"`
	DF               int           `json:"df_resid"`
	Coefficients     []Coefficient `json:"coefficients"`
	RSquared         *float64      `json:"r_squared"`
	AdjRSquared      *float64      `json:"adj_r_squared"`
	ResidualStdError *float64      `json:"residual_std_error"`
	FStat            *float64      `json:"f_stat"`
	FPValue          *float64      `json:"f_p_value"`
	RankDeficient    bool          `json:"rank_deficient"`
}

func (c Coefficient) MarshalJSON() ([]byte, error) {
	return json.Marshal(coefficientJSON{
		Name:     c.Name,
		Estimate: nullable(c.Estimate),
		StdErr:   nullable(c.StdErr),
		TStat:    nullable(c.TStat),
		PValue:   nullable(c.PValue),
	})
}

func (c *Coefficient) UnmarshalJSON(data []byte) error {
	var raw coefficientJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Coefficient{
		Name:     raw.Name,
		Estimate: orNaN(raw.Estimate),
		StdErr:   orNaN(raw.StdErr),
		TStat:    orNaN(raw.TStat),
		PValue:   orNaN(raw.PValue),
	}
	return nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Outcome:          r.Outcome,
		Regressors:       r.Regressors,
		N:                r.N,
		DF:               r.DF,
		Coefficients:     r.Coefficients,
		RSquared:         nullable(r.RSquared),
		AdjRSquared:      nullable(r.AdjRSquared),
		ResidualStdError: nullable(r.ResidualStdError),
		FStat:            nullable(r.FStat),
		FPValue:          nullable(r.FPValue),
		RankDeficient:    r.RankDeficient,
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{
		Outcome:          raw.Outcome,
		Regressors:       raw.Regressors,
		N:                raw.N,
		DF:               raw.DF,
		Coefficients:     raw.Coefficients,
		RSquared:         orNaN(raw.RSquared),
		AdjRSquared:      orNaN(raw.AdjRSquared),
		ResidualStdError: orNaN(raw.ResidualStdError),
		FStat:            orNaN(raw.FStat),
		FPValue:          orNaN(raw.FPValue),
		RankDeficient:    raw.RankDeficient,
	}
	return nil
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
