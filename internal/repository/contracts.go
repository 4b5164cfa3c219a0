package repository

import (
	"context"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// A WithinTx call made with a context that already carries a transaction joins it.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// SequenceAllocator hands out monotonically increasing ids per named counter.
type SequenceAllocator interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Sequence names used by the lifecycle services.
const (
	PlayerSequence = "players_sequence"
	TeamSequence   = "teams_sequence"
	MatchSequence  = "matches_sequence"
)

// TeamRepository declares persistence operations for teams.
// Update is a full overwrite guarded by Version: a stale version yields ErrConflict.
type TeamRepository interface {
	Create(ctx context.Context, t model.Team) (model.Team, error)
	GetByID(ctx context.Context, id int64) (model.Team, error)
	// FindByName matches team_name case-insensitively.
	FindByName(ctx context.Context, name string) (model.Team, error)
	Update(ctx context.Context, t model.Team) (model.Team, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Team, error)
}

// PlayerRepository declares persistence operations for players.
type PlayerRepository interface {
	Create(ctx context.Context, p model.Player) (model.Player, error)
	GetByID(ctx context.Context, id int64) (model.Player, error)
	// GetByIDs skips ids that do not exist; result order follows ids.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Player, error)
	// FindByName returns every player whose name matches case-insensitively; names are unique per team only.
	FindByName(ctx context.Context, name string) ([]model.Player, error)
	ListByTeam(ctx context.Context, teamID int64) ([]model.Player, error)
	Update(ctx context.Context, p model.Player) (model.Player, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Player, error)
}

// MatchRepository declares persistence operations for matches.
type MatchRepository interface {
	Create(ctx context.Context, m model.Match) (model.Match, error)
	GetByID(ctx context.Context, id int64) (model.Match, error)
	Update(ctx context.Context, m model.Match) (model.Match, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Match, error)
}
