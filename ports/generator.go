package ports

import (
	"context"

	"causalnotes/domain/causal"
)

// DatasetGenerator simulates one dataset from a causal structure.
type DatasetGenerator interface {
	Generate(ctx context.Context, structure causal.Structure, n int, seed int64) (*causal.Dataset, error)
}
