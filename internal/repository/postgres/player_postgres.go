package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

const playerColumns = `id, team_id, name, role, batting_style, bowling_style, has_stats,
	matches_played, runs_scored, wickets_taken, catches_taken, version, created_at, updated_at`

type playerRepository struct{ pool *pgxpool.Pool }

func NewPlayerRepository(pool *pgxpool.Pool) repository.PlayerRepository {
	return &playerRepository{pool: pool}
}

func scanPlayer(row scanner) (model.Player, error) {
	var (
		p            model.Player
		role         string
		battingStyle string
		bowlingStyle *string
		hasStats     bool
		st           model.Stats
	)
	err := row.Scan(&p.ID, &p.TeamID, &p.Name, &role, &battingStyle, &bowlingStyle, &hasStats,
		&st.MatchesPlayed, &st.RunsScored, &st.WicketsTaken, &st.CatchesTaken,
		&p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Player{}, err
	}
	p.Role = model.PlayerRole(role)
	p.BattingStyle = model.BattingStyle(battingStyle)
	if bowlingStyle != nil {
		bs := model.BowlingStyle(*bowlingStyle)
		p.BowlingStyle = &bs
	}
	// has_stats distinguishes "no stats recorded" from all-zero counters
	if hasStats {
		p.Stats = &st
	}
	return p, nil
}

// playerArgs returns bowling_style, has_stats and the four counters in column order.
func playerArgs(p model.Player) []any {
	var bowling *string
	if p.BowlingStyle != nil {
		s := string(*p.BowlingStyle)
		bowling = &s
	}
	var st model.Stats
	if p.Stats != nil {
		st = *p.Stats
	}
	return []any{bowling, p.Stats != nil, st.MatchesPlayed, st.RunsScored, st.WicketsTaken, st.CatchesTaken}
}

func (r *playerRepository) Create(ctx context.Context, p model.Player) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	args := append([]any{p.ID, p.TeamID, p.Name, string(p.Role), string(p.BattingStyle)}, playerArgs(p)...)
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO players (id, team_id, name, role, batting_style, bowling_style, has_stats,
			matches_played, runs_scored, wickets_taken, catches_taken)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+playerColumns,
		args...,
	)
	out, err := scanPlayer(row)
	if err != nil {
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) GetByID(ctx context.Context, id int64) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	out, err := scanPlayer(getQ(ctx, r.pool).QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, repository.ErrNotFound
		}
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

// GetByIDs fetches the batch in one round trip and restores the caller's order.
func (r *playerRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Player, error) {
	if len(ids) == 0 {
		return []model.Player{}, nil
	}
	found, err := r.query(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Player, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]model.Player, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *playerRepository) FindByName(ctx context.Context, name string) ([]model.Player, error) {
	return r.query(ctx, `SELECT `+playerColumns+` FROM players WHERE lower(name) = lower($1) ORDER BY id`, name)
}

func (r *playerRepository) ListByTeam(ctx context.Context, teamID int64) ([]model.Player, error) {
	return r.query(ctx, `SELECT `+playerColumns+` FROM players WHERE team_id = $1 ORDER BY id`, teamID)
}

func (r *playerRepository) List(ctx context.Context) ([]model.Player, error) {
	return r.query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY id`)
}

func (r *playerRepository) query(ctx context.Context, sql string, args ...any) ([]model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Player, 0, 8)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, p)
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *playerRepository) Update(ctx context.Context, p model.Player) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	exec := getQ(ctx, r.pool)
	args := append([]any{p.ID, p.TeamID, p.Name, string(p.Role), string(p.BattingStyle)}, playerArgs(p)...)
	args = append(args, p.Version)
	row := exec.QueryRow(ctx,
		`UPDATE players
		 SET team_id = $2, name = $3, role = $4, batting_style = $5, bowling_style = $6, has_stats = $7,
		     matches_played = $8, runs_scored = $9, wickets_taken = $10, catches_taken = $11,
		     version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $12
		 RETURNING `+playerColumns,
		args...,
	)
	out, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, versionMiss(ctx, exec, "players", p.ID)
		}
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) Delete(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return deleteByID(ctx, getQ(ctx, r.pool), "players", id)
}

var _ repository.PlayerRepository = (*playerRepository)(nil)
