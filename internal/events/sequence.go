package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Sequencer hands out a monotonically increasing number per partition key.
type Sequencer interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type MemorySequencer struct {
	mu   sync.Mutex
	last map[string]int64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{last: make(map[string]int64)}
}

func (s *MemorySequencer) NextSequence(_ context.Context, partitionKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[partitionKey]++
	return s.last[partitionKey], nil
}

type SequenceStore interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresSequencer struct {
	store SequenceStore
}

func NewPostgresSequencer(store SequenceStore) *PostgresSequencer {
	return &PostgresSequencer{store: store}
}

// NextSequence atomically increments and returns the next sequence for a partition.
func (s *PostgresSequencer) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	var seq int64
	err := s.store.QueryRow(ctx, `
		INSERT INTO event_sequence (partition_key, last_sequence)
		VALUES ($1, 1)
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequence.last_sequence + 1, updated_at = now()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
