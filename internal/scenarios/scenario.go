// Package scenarios holds the simulated setups behind each article and loads
// custom ones from YAML.
package scenarios

import (
	"fmt"
	"slices"

	"causalnotes/domain/causal"
	"causalnotes/domain/core"
)

// Kind names the lesson a scenario illustrates.
type Kind string

const (
	KindConfounder        Kind = "confounder"
	KindMediator          Kind = "mediator"
	KindCollider          Kind = "collider"
	KindMBias             Kind = "m_bias"
	KindBiasAmplification Kind = "bias_amplification"
	KindCustom            Kind = "custom"
)

const (
	DefaultSeed int64 = 42
	DefaultN          = 500
)

// Scenario is one "generate, fit with and without a control, compare" setup.
type Scenario struct {
	Name      string           `yaml:"name" json:"name"`
	Title     string           `yaml:"title" json:"title"`
	Kind      Kind             `yaml:"kind" json:"kind"`
	Note      string           `yaml:"note,omitempty" json:"note,omitempty"`
	Seed      int64            `yaml:"seed" json:"seed"`
	N         int              `yaml:"n" json:"n"`
	Structure causal.Structure `yaml:"structure" json:"structure"`
	Outcome   string           `yaml:"outcome" json:"outcome"`
	Treatment string           `yaml:"treatment,omitempty" json:"treatment,omitempty"`
	// Base regressors appear in both fits; Control is added to the second.
	Base    []string `yaml:"base" json:"base"`
	Control string   `yaml:"control" json:"control"`
	// TrueEffect is the causal effect of Treatment on Outcome, when known.
	TrueEffect *float64 `yaml:"true_effect,omitempty" json:"true_effect,omitempty"`
}

// Validate checks the scenario against its own structure.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return core.NewValidationError("name", "scenario name cannot be empty")
	}
	if s.N <= 0 {
		return fmt.Errorf("%w: scenario %s has n=%d", core.ErrInsufficientData, s.Name, s.N)
	}
	if err := s.Structure.Validate(); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	declared := s.Structure.Variables()
	known := func(field, name string) error {
		if !slices.Contains(declared, name) {
			return fmt.Errorf("scenario %s: %s: %w: %s", s.Name, field, core.ErrVariableNotFound, name)
		}
		return nil
	}
	if err := known("outcome", s.Outcome); err != nil {
		return err
	}
	if err := known("control", s.Control); err != nil {
		return err
	}
	for _, b := range s.Base {
		if err := known("base", b); err != nil {
			return err
		}
	}
	if s.Treatment != "" {
		if err := known("treatment", s.Treatment); err != nil {
			return err
		}
		if !slices.Contains(s.Base, s.Treatment) {
			return core.NewValidationError("treatment", fmt.Sprintf("%s must be one of the base regressors", s.Treatment))
		}
	}
	if slices.Contains(s.Base, s.Control) {
		return core.NewValidationError("control", fmt.Sprintf("%s is already a base regressor", s.Control))
	}
	if s.Control == s.Outcome || slices.Contains(s.Base, s.Outcome) {
		return core.NewValidationError("outcome", "outcome cannot also be a regressor")
	}
	return nil
}

// With returns a copy using a different seed and sample size. Zero n keeps
// the scenario's own.
func (s Scenario) With(seed int64, n int) Scenario {
	out := s
	out.Seed = seed
	if n > 0 {
		out.N = n
	}
	out.Base = append([]string(nil), s.Base...)
	return out
}

func (s *Scenario) applyDefaults(n int) {
	if s.Kind == "" {
		s.Kind = KindCustom
	}
	if s.N == 0 {
		s.N = n
	}
	if s.Title == "" {
		s.Title = s.Name
	}
}
