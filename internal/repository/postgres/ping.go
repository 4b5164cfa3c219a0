package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

type pinger struct{ pool *pgxpool.Pool }

// NewPinger adapts pgxpool to the repository.Pinger interface.
func NewPinger(pool *pgxpool.Pool) repository.Pinger { return &pinger{pool: pool} }

func (p *pinger) Ping(ctx context.Context) error {
	if err := ensurePool(p.pool); err != nil {
		return err
	}
	return p.pool.Ping(ctx)
}

type sequenceAllocator struct{ pool *pgxpool.Pool }

// NewSequenceAllocator returns a counter-table backed allocator; inside a transaction the
// increment commits or rolls back with it.
func NewSequenceAllocator(pool *pgxpool.Pool) repository.SequenceAllocator {
	return &sequenceAllocator{pool: pool}
}

func (s *sequenceAllocator) Next(ctx context.Context, name string) (int64, error) {
	if err := ensurePool(s.pool); err != nil {
		return 0, err
	}
	var next int64
	err := getQ(ctx, s.pool).QueryRow(ctx,
		`INSERT INTO sequences (name, value) VALUES ($1, 1)
		 ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		 RETURNING value`, name,
	).Scan(&next)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return next, nil
}

var (
	_ repository.Pinger            = (*pinger)(nil)
	_ repository.SequenceAllocator = (*sequenceAllocator)(nil)
)
