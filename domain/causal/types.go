// Package causal holds the linear-Gaussian causal structures used to
// simulate the datasets behind each article, and the generated datasets.
package causal

import (
	"fmt"

	"causalnotes/domain/core"
)

// Term is one weighted parent of an endogenous variable.
type Term struct {
	Parent string  `json:"parent" yaml:"parent"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// ExogenousSpec is a root variable drawn from N(Mean, StdDev²).
type ExogenousSpec struct {
	Name   string  `json:"name" yaml:"name"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

// EndogenousSpec is Intercept + Σ Weight·Parent + N(0, NoiseStdDev²).
type EndogenousSpec struct {
	Name        string  `json:"name" yaml:"name"`
	Intercept   float64 `json:"intercept,omitempty" yaml:"intercept,omitempty"`
	Parents     []Term  `json:"parents" yaml:"parents"`
	NoiseStdDev float64 `json:"noise_std_dev" yaml:"noise_std_dev"`
}

// Structure is a fixed DAG over variables. It is configuration, never runtime state.
type Structure struct {
	Exogenous  []ExogenousSpec  `json:"exogenous" yaml:"exogenous"`
	Endogenous []EndogenousSpec `json:"endogenous" yaml:"endogenous"`
}

// Variables returns every declared variable name, exogenous first.
func (s Structure) Variables() []string {
	names := make([]string, 0, len(s.Exogenous)+len(s.Endogenous))
	for _, ex := range s.Exogenous {
		names = append(names, ex.Name)
	}
	for _, en := range s.Endogenous {
		names = append(names, en.Name)
	}
	return names
}

// Parents returns the direct causes of a variable, or nil for exogenous ones.
func (s Structure) Parents(name string) []string {
	for _, en := range s.Endogenous {
		if en.Name == name {
			parents := make([]string, len(en.Parents))
			for i, term := range en.Parents {
				parents[i] = term.Parent
			}
			return parents
		}
	}
	return nil
}

// Weight returns the direct path weight parent -> child, if the edge exists.
func (s Structure) Weight(parent, child string) (float64, bool) {
	for _, en := range s.Endogenous {
		if en.Name != child {
			continue
		}
		for _, term := range en.Parents {
			if term.Parent == parent {
				return term.Weight, true
			}
		}
	}
	return 0, false
}

// Dataset is one generated table. All columns share length N and the same
// seeded draw context.
type Dataset struct {
	N       int                  `json:"n"`
	Seed    int64                `json:"seed"`
	Names   []string             `json:"names"`
	columns map[string][]float64 // never mutated after construction
}

// NewDataset builds a dataset from columns, validating equal lengths.
// The column slices are copied.
func NewDataset(seed int64, names []string, columns map[string][]float64) (*Dataset, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: dataset has no columns", core.ErrInsufficientData)
	}
	n := -1
	owned := make(map[string][]float64, len(names))
	for _, name := range names {
		col, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrVariableNotFound, name)
		}
		if _, dup := owned[name]; dup {
			return nil, core.NewValidationError(name, "duplicate column")
		}
		if n == -1 {
			n = len(col)
		} else if len(col) != n {
			return nil, core.NewValidationError(name, fmt.Sprintf("length %d, expected %d", len(col), n))
		}
		owned[name] = append([]float64(nil), col...)
	}
	return &Dataset{
		N:       n,
		Seed:    seed,
		Names:   append([]string(nil), names...),
		columns: owned,
	}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.N }

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]float64, bool) {
	col, ok := d.columns[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), col...), true
}

// At returns one cell without copying the column.
func (d *Dataset) At(name string, row int) (float64, bool) {
	col, ok := d.columns[name]
	if !ok || row < 0 || row >= len(col) {
		return 0, false
	}
	return col[row], true
}

// Has reports whether the dataset carries the named column.
func (d *Dataset) Has(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// Fingerprint hashes the exact bit pattern of every column.
func (d *Dataset) Fingerprint() core.Hash {
	return core.ComputeColumnsHash(d.columns)
}
