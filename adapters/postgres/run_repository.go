package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"causalnotes/domain/core"
	"causalnotes/domain/regression"
	"causalnotes/internal/errors"
	"causalnotes/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// ComparisonJSONB stores a comparison in a JSONB column.
type ComparisonJSONB struct {
	*regression.Comparison
}

// Value implements driver.Valuer interface
func (c ComparisonJSONB) Value() (driver.Value, error) {
	if c.Comparison == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.Comparison)
}

// Scan implements sql.Scanner interface
func (c *ComparisonJSONB) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		c.Comparison = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into comparison", value)
	}
	if len(raw) == 0 || string(raw) == "null" {
		c.Comparison = nil
		return nil
	}
	var cmp regression.Comparison
	if err := json.Unmarshal(raw, &cmp); err != nil {
		return err
	}
	c.Comparison = &cmp
	return nil
}

type runRow struct {
	ports.RunRecord
	Payload ComparisonJSONB `db:"comparison"`
}

func (r runRow) record() ports.RunRecord {
	rec := r.RunRecord
	rec.Comparison = r.Payload.Comparison
	return rec
}

// RunRepositoryImpl implements ports.RunLedger for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run ledger
func NewRunRepository(db *sqlx.DB) ports.RunLedger {
	return &RunRepositoryImpl{db: db}
}

// Store inserts one run. Reusing an ID is rejected.
func (r *RunRepositoryImpl) Store(ctx context.Context, record ports.RunRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, seed, n, fingerprint, comparison, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.Scenario, record.Seed, record.N, record.Fingerprint, ComparisonJSONB{record.Comparison}, record.CreatedAt)

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return core.NewValidationError("id", fmt.Sprintf("run %s already stored", record.ID))
	}
	if err != nil {
		return errors.DatabaseError("failed to store run", err)
	}
	return nil
}

// Get retrieves a run by ID
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, scenario, seed, n, fingerprint, comparison, created_at
		FROM runs
		WHERE id = $1
	`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound(core.ErrRunNotFound, id.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get run", err)
	}
	rec := row.record()
	return &rec, nil
}

// List returns runs newest first, optionally for one scenario
func (r *RunRepositoryImpl) List(ctx context.Context, filters ports.RunFilters) ([]ports.RunRecord, error) {
	query, args := buildListQuery(filters)

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}
	out := make([]ports.RunRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}
	return out, nil
}

func buildListQuery(filters ports.RunFilters) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(`SELECT id, scenario, seed, n, fingerprint, comparison, created_at FROM runs`)

	var args []interface{}
	if filters.Scenario != "" {
		args = append(args, filters.Scenario)
		fmt.Fprintf(&b, " WHERE scenario = $%d", len(args))
	}
	b.WriteString(" ORDER BY created_at DESC")
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}
