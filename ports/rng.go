package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream derives an independent stream for one replicate of a run, so
	// concurrent replicates never share generator state.
	Stream(ctx context.Context, runName string, replicate int, baseSeed int64) (*rand.Rand, error)
}
