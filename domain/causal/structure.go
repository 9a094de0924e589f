package causal

import (
	"fmt"
	"math"
	"strings"

	"causalnotes/domain/core"
)

// Validate checks names, scales, weights and parent references, and that the
// graph is acyclic. It never touches a random stream.
func (s Structure) Validate() error {
	_, err := s.Order()
	return err
}

// Order returns a topological order of all variables: exogenous variables in
// declaration order, then endogenous variables in Kahn order with declaration
// order breaking ties. The order is deterministic for a given structure.
func (s Structure) Order() ([]string, error) {
	if len(s.Exogenous)+len(s.Endogenous) == 0 {
		return nil, core.NewValidationError("structure", "no variables declared")
	}

	declared := make(map[string]bool, len(s.Exogenous)+len(s.Endogenous))
	declare := func(name string) error {
		if strings.TrimSpace(name) == "" {
			return core.NewValidationError("name", "variable name cannot be empty")
		}
		if declared[name] {
			return core.NewValidationError(name, "declared more than once")
		}
		declared[name] = true
		return nil
	}

	for _, ex := range s.Exogenous {
		if err := declare(ex.Name); err != nil {
			return nil, err
		}
		if !isFinite(ex.Mean) {
			return nil, core.NewValidationError(ex.Name, "mean must be finite")
		}
		if !isFinite(ex.StdDev) || ex.StdDev < 0 {
			return nil, core.NewValidationError(ex.Name, "standard deviation must be finite and non-negative")
		}
	}
	for _, en := range s.Endogenous {
		if err := declare(en.Name); err != nil {
			return nil, err
		}
		if !isFinite(en.Intercept) {
			return nil, core.NewValidationError(en.Name, "intercept must be finite")
		}
		if !isFinite(en.NoiseStdDev) || en.NoiseStdDev < 0 {
			return nil, core.NewValidationError(en.Name, "noise standard deviation must be finite and non-negative")
		}
	}

	// References are checked only after every name is known, so forward
	// references are fine and only truly undefined parents fail.
	indegree := make(map[string]int, len(s.Endogenous))
	children := make(map[string][]int)
	for _, en := range s.Endogenous {
		seen := make(map[string]bool, len(en.Parents))
		for _, term := range en.Parents {
			if !declared[term.Parent] {
				return nil, core.NewUndefinedVariableError(en.Name, term.Parent)
			}
			if term.Parent == en.Name {
				return nil, fmt.Errorf("%w: %s depends on itself", core.ErrCyclicStructure, en.Name)
			}
			if seen[term.Parent] {
				return nil, core.NewValidationError(en.Name, fmt.Sprintf("parent %q listed twice", term.Parent))
			}
			if !isFinite(term.Weight) {
				return nil, core.NewValidationError(en.Name, fmt.Sprintf("weight on %q must be finite", term.Parent))
			}
			seen[term.Parent] = true
		}
		indegree[en.Name] = 0
	}

	endoIndex := make(map[string]int, len(s.Endogenous))
	for i, en := range s.Endogenous {
		endoIndex[en.Name] = i
	}
	for i, en := range s.Endogenous {
		for _, term := range en.Parents {
			if _, isEndo := endoIndex[term.Parent]; isEndo {
				indegree[en.Name]++
				children[term.Parent] = append(children[term.Parent], i)
			}
		}
	}

	order := make([]string, 0, len(declared))
	for _, ex := range s.Exogenous {
		order = append(order, ex.Name)
	}

	placed := make([]bool, len(s.Endogenous))
	for count := 0; count < len(s.Endogenous); count++ {
		next := -1
		for i, en := range s.Endogenous {
			if !placed[i] && indegree[en.Name] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, fmt.Errorf("%w among %s", core.ErrCyclicStructure, strings.Join(unplaced(s.Endogenous, placed), ", "))
		}
		placed[next] = true
		name := s.Endogenous[next].Name
		order = append(order, name)
		for _, child := range children[name] {
			indegree[s.Endogenous[child].Name]--
		}
	}

	return order, nil
}

// Lookup returns the declaration of a variable: exactly one of the two pointers is non-nil.
func (s Structure) Lookup(name string) (*ExogenousSpec, *EndogenousSpec) {
	for i := range s.Exogenous {
		if s.Exogenous[i].Name == name {
			return &s.Exogenous[i], nil
		}
	}
	for i := range s.Endogenous {
		if s.Endogenous[i].Name == name {
			return nil, &s.Endogenous[i]
		}
	}
	return nil, nil
}

func unplaced(specs []EndogenousSpec, placed []bool) []string {
	var names []string
	for i, en := range specs {
		if !placed[i] {
			names = append(names, en.Name)
		}
	}
	return names
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
