package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"causalnotes/domain/core"
	"causalnotes/internal/errors"
	"causalnotes/ports"
)

// TestKit bundles the in-process adapters used when no database is configured
// and by package tests.
type TestKit struct {
	ledger *InMemoryLedgerAdapter
	rng    *RNGAdapter
}

// NewTestKit creates a new test kit instance
func NewTestKit() *TestKit {
	return &TestKit{
		ledger: NewInMemoryLedgerAdapter(),
		rng:    &RNGAdapter{},
	}
}

// RNGAdapter returns an RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return t.rng
}

// LedgerAdapter returns the shared in-memory run ledger
func (t *TestKit) LedgerAdapter() ports.RunLedger {
	return t.ledger
}

// RNGAdapter implements the RNGPort interface with math/rand sources.
type RNGAdapter struct{}

// SeededStream creates a deterministic random number generator for a named operation.
// The name is informational; equal seeds always give equal streams.
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Stream creates a deterministic RNG stream for one replicate of a named run
func (r *RNGAdapter) Stream(ctx context.Context, runName string, replicate int, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if replicate < 0 {
		return nil, fmt.Errorf("replicate must be non-negative, got %d", replicate)
	}
	seed := baseSeed
	if runName != "" {
		seed = int64(hashString(runName)) + seed
	}
	seed = seed*1_000_003 + int64(replicate)
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}

// DefaultLedgerCapacity bounds the in-memory ledger of a long-running server.
const DefaultLedgerCapacity = 10_000

// InMemoryLedgerAdapter is a mutex-guarded run ledger holding the most recent
// capacity records. Older records are evicted first.
type InMemoryLedgerAdapter struct {
	mu       sync.RWMutex
	records  []ports.RunRecord
	first    int // sequence number of records[0]
	byID     map[core.RunID]int
	capacity int
}

// NewInMemoryLedgerAdapter creates an empty ledger of DefaultLedgerCapacity
func NewInMemoryLedgerAdapter() *InMemoryLedgerAdapter {
	return NewBoundedLedgerAdapter(DefaultLedgerCapacity)
}

// NewBoundedLedgerAdapter creates an empty ledger keeping at most capacity
// records; capacity < 1 means unbounded.
func NewBoundedLedgerAdapter(capacity int) *InMemoryLedgerAdapter {
	return &InMemoryLedgerAdapter{byID: make(map[core.RunID]int), capacity: capacity}
}

// Store appends a record. Storing the same ID twice is an error.
func (s *InMemoryLedgerAdapter) Store(ctx context.Context, record ports.RunRecord) error {
	if record.ID.String() == "" {
		return fmt.Errorf("run record has no ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[record.ID]; exists {
		return fmt.Errorf("run %s already stored", record.ID)
	}
	s.byID[record.ID] = s.first + len(s.records)
	s.records = append(s.records, record)
	if s.capacity > 0 && len(s.records) > s.capacity {
		delete(s.byID, s.records[0].ID)
		s.records[0] = ports.RunRecord{}
		s.records = s.records[1:]
		s.first++
	}
	return nil
}

// Get returns a stored record
func (s *InMemoryLedgerAdapter) Get(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq, ok := s.byID[id]
	if !ok {
		return nil, errors.NotFound(core.ErrRunNotFound, id.String())
	}
	record := s.records[seq-s.first]
	return &record, nil
}

// List returns records newest first
func (s *InMemoryLedgerAdapter) List(ctx context.Context, filters ports.RunFilters) ([]ports.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ports.RunRecord
	for _, r := range s.records {
		if filters.Scenario != "" && r.Scenario != filters.Scenario {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}
