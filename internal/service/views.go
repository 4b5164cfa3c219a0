package service

import (
	"context"
	"errors"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

func toPlayerView(p model.Player, teamName *string) model.PlayerView {
	return model.PlayerView{
		ID:           p.ID,
		Name:         p.Name,
		TeamName:     teamName,
		Role:         p.Role,
		BattingStyle: p.BattingStyle,
		BowlingStyle: p.BowlingStyle,
		Stats:        p.Stats,
	}
}

func toTeamView(t model.Team) model.TeamView {
	ids := t.PlayerIDs
	if ids == nil {
		ids = []int64{}
	}
	return model.TeamView{
		ID:         t.ID,
		TeamName:   t.TeamName,
		HomeGround: t.HomeGround,
		Coach:      t.Coach,
		CaptainID:  t.CaptainID,
		PlayerIDs:  ids,
	}
}

// teamNameOf resolves a player's team back-reference; a dangling reference renders as no team.
func teamNameOf(ctx context.Context, teams repository.TeamRepository, teamID *int64) (*string, error) {
	if teamID == nil {
		return nil, nil
	}
	t, err := teams.GetByID(ctx, *teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	name := t.TeamName
	return &name, nil
}

// teamNameIndex loads every team once for list views.
func teamNameIndex(ctx context.Context, teams repository.TeamRepository) (map[int64]string, error) {
	all, err := teams.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[int64]string, len(all))
	for _, t := range all {
		idx[t.ID] = t.TeamName
	}
	return idx, nil
}

func lookupName(idx map[int64]string, id *int64) *string {
	if id == nil {
		return nil
	}
	name, ok := idx[*id]
	if !ok {
		return nil
	}
	return &name
}

// toMatchView renders ids as names; teams or players deleted since the match was stored render empty.
func toMatchView(m model.Match, teamNames map[int64]string, playerNames map[int64]string) model.MatchView {
	v := model.MatchView{
		ID:         m.ID,
		Venue:      m.Venue,
		Date:       m.Date,
		FirstTeam:  teamNames[m.FirstTeamID],
		SecondTeam: teamNames[m.SecondTeamID],
		Status:     m.Status,
	}
	if m.Result != nil {
		v.Result = &model.ResultView{
			Winner:        teamNames[m.Result.WinnerID],
			Margin:        m.Result.Margin,
			ManOfTheMatch: playerNames[m.Result.ManOfTheMatchID],
		}
	}
	return v
}
