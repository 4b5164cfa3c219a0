package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

const matchColumns = `id, venue, match_date, first_team_id, second_team_id, status,
	winner_team_id, margin, man_of_the_match_id, version, created_at, updated_at`

type matchRepository struct{ pool *pgxpool.Pool }

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool}
}

func scanMatch(row scanner) (model.Match, error) {
	var (
		m      model.Match
		status string
		winner *int64
		margin *string
		motmID *int64
	)
	err := row.Scan(&m.ID, &m.Venue, &m.Date, &m.FirstTeamID, &m.SecondTeamID, &status,
		&winner, &margin, &motmID, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Match{}, err
	}
	m.Status = model.MatchStatus(status)
	if winner != nil {
		res := model.Result{WinnerID: *winner}
		if margin != nil {
			res.Margin = *margin
		}
		if motmID != nil {
			res.ManOfTheMatchID = *motmID
		}
		m.Result = &res
	}
	return m, nil
}

// resultArgs returns winner_team_id, margin and man_of_the_match_id, all NULL without a result.
func resultArgs(r *model.Result) []any {
	if r == nil {
		return []any{nil, nil, nil}
	}
	return []any{r.WinnerID, r.Margin, r.ManOfTheMatchID}
}

func (r *matchRepository) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	args := append([]any{m.ID, m.Venue, m.Date, m.FirstTeamID, m.SecondTeamID, string(m.Status)}, resultArgs(m.Result)...)
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO matches (id, venue, match_date, first_team_id, second_team_id, status,
			winner_team_id, margin, man_of_the_match_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+matchColumns,
		args...,
	)
	out, err := scanMatch(row)
	if err != nil {
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id int64) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	out, err := scanMatch(getQ(ctx, r.pool).QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) Update(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	args := append([]any{m.ID, m.Venue, m.Date, m.FirstTeamID, m.SecondTeamID, string(m.Status)}, resultArgs(m.Result)...)
	args = append(args, m.Version)
	row := exec.QueryRow(ctx,
		`UPDATE matches
		 SET venue = $2, match_date = $3, first_team_id = $4, second_team_id = $5, status = $6,
		     winner_team_id = $7, margin = $8, man_of_the_match_id = $9,
		     version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $10
		 RETURNING `+matchColumns,
		args...,
	)
	out, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, versionMiss(ctx, exec, "matches", m.ID)
		}
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) Delete(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return deleteByID(ctx, getQ(ctx, r.pool), "matches", id)
}

func (r *matchRepository) List(ctx context.Context) ([]model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY match_date DESC, id DESC`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Match, 0, 16)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, m)
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.MatchRepository = (*matchRepository)(nil)
