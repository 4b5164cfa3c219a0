package service

import (
	"context"
	"errors"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
	"github.com/rs/zerolog"
)

// Roster change actions reported to a RosterRecorder.
const (
	RosterJoin  = "join"
	RosterLeave = "leave"
)

// RosterRecorder observes roster membership changes (metrics).
type RosterRecorder interface {
	RosterChanged(action string)
}

type nopRecorder struct{}

func (nopRecorder) RosterChanged(string) {}

// RosterManager is the only writer of Team.PlayerIDs, Team.CaptainID (on departure) and Player.TeamID.
// Callers run it inside a transaction so both sides of the link commit together.
type RosterManager struct {
	teams   repository.TeamRepository
	players repository.PlayerRepository
	rec     RosterRecorder
	log     zerolog.Logger
}

func NewRosterManager(teams repository.TeamRepository, players repository.PlayerRepository, rec RosterRecorder, logger zerolog.Logger) *RosterManager {
	if rec == nil {
		rec = nopRecorder{}
	}
	l := logger.With().Str("module", "service").Str("component", "roster").Logger()
	return &RosterManager{teams: teams, players: players, rec: rec, log: l}
}

// ValidateCapacity fails with ErrRosterFull when team cannot take another player.
func (m *RosterManager) ValidateCapacity(team model.Team) error {
	if len(team.PlayerIDs) >= model.MaxRosterSize {
		return ruleErr(ErrRosterFull, "teamName", "team '%s' already has the maximum of %d players", team.TeamName, model.MaxRosterSize)
	}
	return nil
}

// Transfer removes playerID from fromTeamID (when given) and appends it to to's roster.
// The caller sets the player's TeamID. Returns the persisted destination team.
func (m *RosterManager) Transfer(ctx context.Context, playerID int64, fromTeamID *int64, to model.Team) (model.Team, error) {
	if fromTeamID != nil && *fromTeamID != to.ID {
		if err := m.Detach(ctx, playerID, *fromTeamID); err != nil {
			return model.Team{}, err
		}
	}
	if to.HasPlayer(playerID) {
		return to, nil
	}
	if err := m.ValidateCapacity(to); err != nil {
		return model.Team{}, err
	}
	to.PlayerIDs = append(append([]int64{}, to.PlayerIDs...), playerID)
	out, err := m.teams.Update(ctx, to)
	if err != nil {
		m.log.Error().Err(err).Int64("team_id", to.ID).Int64("player_id", playerID).Msg("append to roster failed")
		return model.Team{}, err
	}
	m.rec.RosterChanged(RosterJoin)
	m.log.Debug().Int64("team_id", to.ID).Int64("player_id", playerID).Msg("player joined roster")
	return out, nil
}

// Detach removes playerID from the team's roster and clears the captaincy if it pointed at the player.
// A team that no longer exists counts as already detached.
func (m *RosterManager) Detach(ctx context.Context, playerID, teamID int64) error {
	team, err := m.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	changed := false
	kept := make([]int64, 0, len(team.PlayerIDs))
	for _, id := range team.PlayerIDs {
		if id == playerID {
			changed = true
			continue
		}
		kept = append(kept, id)
	}
	if team.CaptainID != nil && *team.CaptainID == playerID {
		team.CaptainID = nil
		changed = true
	}
	if !changed {
		return nil
	}
	team.PlayerIDs = kept
	if _, err := m.teams.Update(ctx, team); err != nil {
		m.log.Error().Err(err).Int64("team_id", teamID).Int64("player_id", playerID).Msg("detach from roster failed")
		return err
	}
	m.rec.RosterChanged(RosterLeave)
	m.log.Debug().Int64("team_id", teamID).Int64("player_id", playerID).Msg("player left roster")
	return nil
}

// DetachAll clears the team back-reference on every player pointing at teamID.
func (m *RosterManager) DetachAll(ctx context.Context, teamID int64) (int, error) {
	members, err := m.players.ListByTeam(ctx, teamID)
	if err != nil {
		return 0, err
	}
	for _, p := range members {
		p.TeamID = nil
		if _, err := m.players.Update(ctx, p); err != nil {
			m.log.Error().Err(err).Int64("team_id", teamID).Int64("player_id", p.ID).Msg("clear team reference failed")
			return 0, err
		}
		m.rec.RosterChanged(RosterLeave)
	}
	return len(members), nil
}

// SyncRoster brings Player.TeamID in line with a freshly persisted roster. Players new to the
// roster leave their previous team; players dropped from previous lose their team reference.
func (m *RosterManager) SyncRoster(ctx context.Context, team model.Team, previous []int64) error {
	for _, id := range team.PlayerIDs {
		p, err := m.players.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Player", id)
		}
		if p.TeamID != nil && *p.TeamID == team.ID {
			continue
		}
		if p.TeamID != nil {
			if err := m.Detach(ctx, id, *p.TeamID); err != nil {
				return err
			}
		}
		p.TeamID = &team.ID
		if _, err := m.players.Update(ctx, p); err != nil {
			return err
		}
		m.rec.RosterChanged(RosterJoin)
	}

	for _, id := range previous {
		if team.HasPlayer(id) {
			continue
		}
		p, err := m.players.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return err
		}
		if p.TeamID == nil || *p.TeamID != team.ID {
			continue
		}
		p.TeamID = nil
		if _, err := m.players.Update(ctx, p); err != nil {
			return err
		}
		m.rec.RosterChanged(RosterLeave)
	}
	return nil
}
