package ports

import (
	"context"
	"time"

	"causalnotes/domain/core"
	"causalnotes/domain/regression"
)

// RunRecord is the audit entry written after each scenario run.
type RunRecord struct {
	ID          core.RunID             `json:"id" db:"id"`
	Scenario    string                 `json:"scenario" db:"scenario"`
	Seed        int64                  `json:"seed" db:"seed"`
	N           int                    `json:"n" db:"n"`
	Fingerprint core.Hash              `json:"fingerprint" db:"fingerprint"`
	Comparison  *regression.Comparison `json:"comparison" db:"-"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}

// RunFilters narrows ledger queries
type RunFilters struct {
	Scenario string
	Limit    int
}

// RunLedger stores run records. Writes are append-only.
type RunLedger interface {
	Store(ctx context.Context, record RunRecord) error
	Get(ctx context.Context, id core.RunID) (*RunRecord, error)
	List(ctx context.Context, filters RunFilters) ([]RunRecord, error)
}
