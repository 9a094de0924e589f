package ports

import (
	"context"

	"causalnotes/domain/regression"
)

// ColumnSource is anything that exposes equal-length named numeric columns.
type ColumnSource interface {
	Len() int
	Column(name string) ([]float64, bool)
}

// Estimator fits Outcome on an implicit intercept plus regressors.
type Estimator interface {
	Fit(ctx context.Context, data ColumnSource, outcome string, regressors []string) (*regression.Result, error)
}
