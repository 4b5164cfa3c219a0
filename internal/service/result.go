package service

import (
	"context"
	"errors"
	"strings"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

// ResultResolver turns a name-based result into ids checked against the two teams playing.
type ResultResolver struct {
	players repository.PlayerRepository
}

func NewResultResolver(players repository.PlayerRepository) *ResultResolver {
	return &ResultResolver{players: players}
}

// Resolve validates the winner and the man of the match against first and second.
// When the man-of-the-match name is shared, a player of the winning side is preferred.
func (r *ResultResolver) Resolve(ctx context.Context, in ResultInput, first, second model.Team) (model.Result, error) {
	var winnerID int64
	switch {
	case sameName(in.Winner, first.TeamName):
		winnerID = first.ID
	case sameName(in.Winner, second.TeamName):
		winnerID = second.ID
	default:
		return model.Result{}, ruleErr(ErrInvalidResult, "result.winner",
			"winner must be either '%s' or '%s'", first.TeamName, second.TeamName)
	}

	mom := strings.TrimSpace(in.ManOfTheMatch)
	if mom == "" {
		return model.Result{}, ruleErr(ErrInvalidResult, "result.manOfTheMatch", "man of the match must not be empty")
	}
	candidates, err := r.players.FindByName(ctx, mom)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return model.Result{}, err
	}
	if len(candidates) == 0 {
		return model.Result{}, ruleErr(ErrInvalidResult, "result.manOfTheMatch", "player '%s' does not exist", mom)
	}

	var picked *model.Player
	for i := range candidates {
		c := &candidates[i]
		if c.TeamID == nil || (*c.TeamID != first.ID && *c.TeamID != second.ID) {
			continue
		}
		if picked == nil || *c.TeamID == winnerID {
			picked = c
		}
		if *c.TeamID == winnerID {
			break
		}
	}
	if picked == nil {
		return model.Result{}, ruleErr(ErrInvalidResult, "result.manOfTheMatch",
			"player '%s' does not play for '%s' or '%s'", mom, first.TeamName, second.TeamName)
	}

	return model.Result{
		WinnerID:        winnerID,
		Margin:          strings.TrimSpace(in.Margin),
		ManOfTheMatchID: picked.ID,
	}, nil
}

// Fits reports whether a stored result still references the given pairing.
func (r *ResultResolver) Fits(ctx context.Context, res model.Result, firstID, secondID int64) (bool, error) {
	if res.WinnerID != firstID && res.WinnerID != secondID {
		return false, nil
	}
	p, err := r.players.GetByID(ctx, res.ManOfTheMatchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.TeamID != nil && (*p.TeamID == firstID || *p.TeamID == secondID), nil
}
