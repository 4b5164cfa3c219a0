package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

const teamColumns = `id, team_name, home_ground, coach, captain_id, player_ids, version, created_at, updated_at`

type teamRepository struct{ pool *pgxpool.Pool }

func NewTeamRepository(pool *pgxpool.Pool) repository.TeamRepository {
	return &teamRepository{pool: pool}
}

func scanTeam(row scanner) (model.Team, error) {
	var t model.Team
	if err := row.Scan(&t.ID, &t.TeamName, &t.HomeGround, &t.Coach, &t.CaptainID, &t.PlayerIDs, &t.Version, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return model.Team{}, err
	}
	if t.PlayerIDs == nil {
		t.PlayerIDs = []int64{}
	}
	return t, nil
}

func rosterArg(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func (r *teamRepository) Create(ctx context.Context, t model.Team) (model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Team{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO teams (id, team_name, home_ground, coach, captain_id, player_ids)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+teamColumns,
		t.ID, t.TeamName, t.HomeGround, t.Coach, t.CaptainID, rosterArg(t.PlayerIDs),
	)
	out, err := scanTeam(row)
	if err != nil {
		return model.Team{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *teamRepository) GetByID(ctx context.Context, id int64) (model.Team, error) {
	return r.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

func (r *teamRepository) FindByName(ctx context.Context, name string) (model.Team, error) {
	return r.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE lower(team_name) = lower($1)`, name)
}

func (r *teamRepository) getOne(ctx context.Context, sql string, arg any) (model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Team{}, err
	}
	out, err := scanTeam(getQ(ctx, r.pool).QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Team{}, repository.ErrNotFound
		}
		return model.Team{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *teamRepository) Update(ctx context.Context, t model.Team) (model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Team{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE teams
		 SET team_name = $2, home_ground = $3, coach = $4, captain_id = $5, player_ids = $6,
		     version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $7
		 RETURNING `+teamColumns,
		t.ID, t.TeamName, t.HomeGround, t.Coach, t.CaptainID, rosterArg(t.PlayerIDs), t.Version,
	)
	out, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Team{}, versionMiss(ctx, exec, "teams", t.ID)
		}
		return model.Team{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *teamRepository) Delete(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return deleteByID(ctx, getQ(ctx, r.pool), "teams", id)
}

func (r *teamRepository) List(ctx context.Context) ([]model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Team, 0, 16)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, t)
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.TeamRepository = (*teamRepository)(nil)
