package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
	"github.com/rs/zerolog"
)

// Stores groups the storage collaborators shared by the lifecycle services.
type Stores struct {
	Teams   repository.TeamRepository
	Players repository.PlayerRepository
	Matches repository.MatchRepository
	Tx      repository.TxManager
	Seq     repository.SequenceAllocator
}

type playerService struct {
	players repository.PlayerRepository
	teams   repository.TeamRepository
	seq     repository.SequenceAllocator
	roster  *RosterManager
	uow     unitOfWork
	log     zerolog.Logger
}

func NewPlayerService(st Stores, roster *RosterManager, logger zerolog.Logger) PlayerService {
	l := logger.With().Str("module", "service").Str("component", "player").Logger()
	return &playerService{
		players: st.Players,
		teams:   st.Teams,
		seq:     st.Seq,
		roster:  roster,
		uow:     unitOfWork{tx: st.Tx, log: l},
		log:     l,
	}
}

func (s *playerService) ListPlayers(ctx context.Context) ([]model.PlayerView, error) {
	all, err := s.players.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list players failed")
		return nil, err
	}
	names, err := teamNameIndex(ctx, s.teams)
	if err != nil {
		return nil, err
	}
	out := make([]model.PlayerView, 0, len(all))
	for _, p := range all {
		out = append(out, toPlayerView(p, lookupName(names, p.TeamID)))
	}
	return out, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int64) (model.PlayerView, error) {
	if err := validID("id", id); err != nil {
		return model.PlayerView{}, err
	}
	p, err := s.players.GetByID(ctx, id)
	if err != nil {
		return model.PlayerView{}, orNotFound(err, "Player", id)
	}
	name, err := teamNameOf(ctx, s.teams, p.TeamID)
	if err != nil {
		return model.PlayerView{}, err
	}
	return toPlayerView(p, name), nil
}

// buildPlayer validates a full payload. Absent stats become nil unless defaultStats is set;
// absent counters inside a supplied stats object become zero.
func buildPlayer(in PlayerInput, defaultStats bool) (model.Player, []FieldError) {
	var ferrs []FieldError
	p := model.Player{Name: strings.TrimSpace(in.Name)}
	if p.Name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	}
	p.Role = parseRole(in.Role, &ferrs)
	p.BattingStyle = parseBatting(in.BattingStyle, &ferrs)
	if in.BowlingStyle != nil && !isBlank(*in.BowlingStyle) {
		p.BowlingStyle = parseBowling(*in.BowlingStyle, &ferrs)
	}
	checkStats(in.Stats, &ferrs)
	switch {
	case in.Stats != nil:
		p.Stats = mergeStats(nil, *in.Stats)
	case defaultStats:
		p.Stats = &model.Stats{}
	}
	return p, ferrs
}

func (s *playerService) CreatePlayer(ctx context.Context, in PlayerInput) (model.PlayerView, error) {
	start := time.Now()
	draft, ferrs := buildPlayer(in, true)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Str("name_raw", in.Name).Msg("player validation failed")
		return model.PlayerView{}, err
	}
	teamName := strings.TrimSpace(in.TeamName)

	var out model.PlayerView
	err := s.uow.run(ctx, "create_player", func(ctx context.Context) error {
		var team *model.Team
		if teamName != "" {
			t, err := s.resolveTeam(ctx, teamName, "teamName")
			if err != nil {
				return err
			}
			if t, err = s.checkUniqueName(ctx, t, draft.Name, 0); err != nil {
				return err
			}
			if err := s.roster.ValidateCapacity(t); err != nil {
				return err
			}
			team = &t
		}

		id, err := s.seq.Next(ctx, repository.PlayerSequence)
		if err != nil {
			return err
		}
		p := draft
		p.ID = id
		if team != nil {
			p.TeamID = &team.ID
		}
		created, err := s.players.Create(ctx, p)
		if err != nil {
			return err
		}

		var name *string
		if team != nil {
			if _, err := s.roster.Transfer(ctx, id, nil, *team); err != nil {
				return err
			}
			name = &team.TeamName
		}
		out = toPlayerView(created, name)
		return nil
	})
	if err != nil {
		logFailure(s.log, err, "create player failed", "player_id", 0)
		return model.PlayerView{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("player_id", out.ID).Msg("player created")
	return out, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int64, in PlayerInput) (model.PlayerView, error) {
	if err := validID("id", id); err != nil {
		return model.PlayerView{}, err
	}
	draft, ferrs := buildPlayer(in, false)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Int64("player_id", id).Msg("player validation failed")
		return model.PlayerView{}, err
	}
	teamName := strings.TrimSpace(in.TeamName)

	var out model.PlayerView
	err := s.uow.run(ctx, "update_player", func(ctx context.Context) error {
		cur, err := s.players.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Player", id)
		}
		var target *model.Team
		if teamName != "" {
			t, err := s.resolveTeam(ctx, teamName, "teamName")
			if err != nil {
				return err
			}
			if t, err = s.checkUniqueName(ctx, t, draft.Name, cur.ID); err != nil {
				return err
			}
			target = &t
		}
		if err := s.moveTo(ctx, cur, target); err != nil {
			return err
		}

		next := draft
		next.ID, next.Version, next.CreatedAt = cur.ID, cur.Version, cur.CreatedAt
		var name *string
		if target != nil {
			next.TeamID = &target.ID
			name = &target.TeamName
		}
		updated, err := s.players.Update(ctx, next)
		if err != nil {
			return err
		}
		out = toPlayerView(updated, name)
		return nil
	})
	if err != nil {
		logFailure(s.log, err, "update player failed", "player_id", id)
		return model.PlayerView{}, err
	}
	s.log.Info().Int64("player_id", id).Msg("player updated")
	return out, nil
}

func (s *playerService) PatchPlayer(ctx context.Context, id int64, patch PlayerPatch) (model.PlayerView, error) {
	if err := validID("id", id); err != nil {
		return model.PlayerView{}, err
	}

	var ferrs []FieldError
	newName, nameSet := present(patch.Name)
	var role *model.PlayerRole
	if raw, ok := present(patch.Role); ok {
		r := parseRole(raw, &ferrs)
		role = &r
	}
	var batting *model.BattingStyle
	if raw, ok := present(patch.BattingStyle); ok {
		b := parseBatting(raw, &ferrs)
		batting = &b
	}
	clearBowling := patch.BowlingStyle.IsNull()
	var bowling *model.BowlingStyle
	if raw, ok := present(patch.BowlingStyle); ok {
		bowling = parseBowling(raw, &ferrs)
	}
	stats, statsSet := patch.Stats.Get()
	if statsSet {
		checkStats(&stats, &ferrs)
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Int64("player_id", id).Msg("player patch validation failed")
		return model.PlayerView{}, err
	}
	teamName, teamSet := present(patch.TeamName)

	var out model.PlayerView
	err := s.uow.run(ctx, "patch_player", func(ctx context.Context) error {
		cur, err := s.players.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Player", id)
		}
		next := cur
		if nameSet {
			next.Name = newName
		}
		if role != nil {
			next.Role = *role
		}
		if batting != nil {
			next.BattingStyle = *batting
		}
		switch {
		case clearBowling:
			next.BowlingStyle = nil
		case bowling != nil:
			next.BowlingStyle = bowling
		}
		if statsSet {
			next.Stats = mergeStats(cur.Stats, stats)
		}

		// effective team after the patch
		var team *model.Team
		if teamSet {
			t, err := s.resolveTeam(ctx, teamName, "teamName")
			if err != nil {
				return err
			}
			team = &t
		} else if cur.TeamID != nil {
			t, err := s.teams.GetByID(ctx, *cur.TeamID)
			switch {
			case err == nil:
				team = &t
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}
		}

		teamChanged := teamSet && (cur.TeamID == nil || *cur.TeamID != team.ID)
		if team != nil && (teamChanged || (nameSet && !sameName(newName, cur.Name))) {
			claimed, err := s.checkUniqueName(ctx, *team, next.Name, cur.ID)
			if err != nil {
				return err
			}
			team = &claimed
		}
		if teamSet {
			if err := s.moveTo(ctx, cur, team); err != nil {
				return err
			}
			next.TeamID = &team.ID
		}

		updated, err := s.players.Update(ctx, next)
		if err != nil {
			return err
		}
		var name *string
		if team != nil {
			name = &team.TeamName
		}
		out = toPlayerView(updated, name)
		return nil
	})
	if err != nil {
		logFailure(s.log, err, "patch player failed", "player_id", id)
		return model.PlayerView{}, err
	}
	s.log.Info().Int64("player_id", id).Msg("player patched")
	return out, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int64) (model.PlayerView, error) {
	if err := validID("id", id); err != nil {
		return model.PlayerView{}, err
	}
	var out model.PlayerView
	err := s.uow.run(ctx, "delete_player", func(ctx context.Context) error {
		cur, err := s.players.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Player", id)
		}
		name, err := teamNameOf(ctx, s.teams, cur.TeamID)
		if err != nil {
			return err
		}
		if cur.TeamID != nil {
			if err := s.roster.Detach(ctx, cur.ID, *cur.TeamID); err != nil {
				return err
			}
		}
		if err := s.players.Delete(ctx, cur.ID); err != nil {
			return err
		}
		out = toPlayerView(cur, name)
		return nil
	})
	if err != nil {
		logFailure(s.log, err, "delete player failed", "player_id", id)
		return model.PlayerView{}, err
	}
	s.log.Info().Int64("player_id", id).Msg("player deleted")
	return out, nil
}

// moveTo routes a membership change through the roster manager. target nil means no team.
func (s *playerService) moveTo(ctx context.Context, cur model.Player, target *model.Team) error {
	if target == nil {
		if cur.TeamID == nil {
			return nil
		}
		return s.roster.Detach(ctx, cur.ID, *cur.TeamID)
	}
	if cur.TeamID != nil && *cur.TeamID == target.ID && target.HasPlayer(cur.ID) {
		return nil
	}
	_, err := s.roster.Transfer(ctx, cur.ID, cur.TeamID, *target)
	return err
}

func (s *playerService) resolveTeam(ctx context.Context, name, field string) (model.Team, error) {
	return resolveTeamByName(ctx, s.teams, name, field)
}

// checkUniqueName rejects name when another member of team already carries it, ignoring case.
// On success the team row is rewritten to bump its version, so two checks against the same roster
// cannot both commit. The returned team replaces the caller's copy.
func (s *playerService) checkUniqueName(ctx context.Context, team model.Team, name string, exceptID int64) (model.Team, error) {
	members, err := s.players.GetByIDs(ctx, team.PlayerIDs)
	if err != nil {
		return model.Team{}, err
	}
	for _, m := range members {
		if m.ID != exceptID && sameName(m.Name, name) {
			return model.Team{}, ruleErr(ErrDuplicateName, "name", "player named '%s' already exists in team '%s'", name, team.TeamName)
		}
	}
	return s.teams.Update(ctx, team)
}

// resolveTeamByName maps a client-supplied team name to its record.
func resolveTeamByName(ctx context.Context, teams repository.TeamRepository, name, field string) (model.Team, error) {
	t, err := teams.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Team{}, ruleErr(ErrInvalidTeam, field, "team '%s' does not exist", strings.TrimSpace(name))
		}
		return model.Team{}, err
	}
	return t, nil
}
