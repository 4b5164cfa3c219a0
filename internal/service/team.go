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

// teamService holds team use-case logic: validation + orchestration, no transport / SQL details.
type teamService struct {
	teams   repository.TeamRepository
	players repository.PlayerRepository
	seq     repository.SequenceAllocator
	roster  *RosterManager
	uow     unitOfWork
	log     zerolog.Logger
}

func NewTeamService(st Stores, roster *RosterManager, logger zerolog.Logger) TeamService {
	l := logger.With().Str("module", "service").Str("component", "team").Logger()
	return &teamService{
		teams:   st.Teams,
		players: st.Players,
		seq:     st.Seq,
		roster:  roster,
		uow:     unitOfWork{tx: st.Tx, log: l},
		log:     l,
	}
}

func (s *teamService) ListTeams(ctx context.Context) ([]model.TeamView, error) {
	all, err := s.teams.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list teams failed")
		return nil, err
	}
	out := make([]model.TeamView, 0, len(all))
	for _, t := range all {
		out = append(out, toTeamView(t))
	}
	return out, nil
}

func (s *teamService) GetTeam(ctx context.Context, id int64) (model.TeamView, error) {
	if err := validID("id", id); err != nil {
		return model.TeamView{}, err
	}
	t, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return model.TeamView{}, orNotFound(err, "Team", id)
	}
	return toTeamView(t), nil
}

// GetTeamDetails resolves the captain and roster into player views with one batch fetch.
func (s *teamService) GetTeamDetails(ctx context.Context, id int64) (model.TeamDetails, error) {
	if err := validID("id", id); err != nil {
		return model.TeamDetails{}, err
	}
	t, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return model.TeamDetails{}, orNotFound(err, "Team", id)
	}
	members, err := s.players.GetByIDs(ctx, t.PlayerIDs)
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", id).Msg("load roster failed")
		return model.TeamDetails{}, err
	}
	out := model.TeamDetails{TeamView: toTeamView(t), Players: make([]model.PlayerView, 0, len(members))}
	name := t.TeamName
	for _, p := range members {
		v := toPlayerView(p, &name)
		out.Players = append(out.Players, v)
		if t.CaptainID != nil && *t.CaptainID == p.ID {
			captain := v
			out.Captain = &captain
		}
	}
	return out, nil
}

func checkTeamName(name string) []FieldError {
	if ln := len([]rune(name)); ln == 0 {
		return []FieldError{{Field: "teamName", Message: "must not be empty"}}
	} else if ln > 100 {
		return []FieldError{{Field: "teamName", Message: "length must be <= 100"}}
	}
	return nil
}

func teamFromInput(in TeamInput) model.Team {
	ids := append([]int64{}, in.PlayerIDs...)
	return model.Team{
		TeamName:   strings.TrimSpace(in.TeamName),
		HomeGround: strings.TrimSpace(in.HomeGround),
		Coach:      strings.TrimSpace(in.Coach),
		CaptainID:  in.CaptainID,
		PlayerIDs:  ids,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, in TeamInput) (model.TeamView, error) {
	start := time.Now()
	draft := teamFromInput(in)
	if err := newInvalidInput(checkTeamName(draft.TeamName)); err != nil {
		s.log.Debug().Str("name_raw", in.TeamName).Msg("team validation failed")
		return model.TeamView{}, err
	}

	var created model.Team
	err := s.uow.run(ctx, "create_team", func(ctx context.Context) error {
		if err := s.validate(ctx, draft, 0); err != nil {
			return err
		}
		t := draft
		id, err := s.seq.Next(ctx, repository.TeamSequence)
		if err != nil {
			return err
		}
		t.ID = id
		if created, err = s.teams.Create(ctx, t); err != nil {
			return mapTeamNameTaken(err, t.TeamName)
		}
		return s.roster.SyncRoster(ctx, created, nil)
	})
	if err != nil {
		logFailure(s.log, err, "create team failed", "team_id", 0)
		return model.TeamView{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("team_id", created.ID).Int("roster", len(created.PlayerIDs)).Msg("team created")
	return toTeamView(created), nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id int64, in TeamInput) (model.TeamView, error) {
	if err := validID("id", id); err != nil {
		return model.TeamView{}, err
	}
	draft := teamFromInput(in)
	if err := newInvalidInput(checkTeamName(draft.TeamName)); err != nil {
		s.log.Debug().Str("name_raw", in.TeamName).Int64("team_id", id).Msg("team validation failed")
		return model.TeamView{}, err
	}

	var updated model.Team
	err := s.uow.run(ctx, "update_team", func(ctx context.Context) error {
		cur, err := s.teams.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Team", id)
		}
		next := draft
		next.ID, next.Version, next.CreatedAt = cur.ID, cur.Version, cur.CreatedAt
		updated, err = s.replace(ctx, cur, next)
		return err
	})
	if err != nil {
		logFailure(s.log, err, "update team failed", "team_id", id)
		return model.TeamView{}, err
	}
	s.log.Info().Int64("team_id", id).Msg("team updated")
	return toTeamView(updated), nil
}

func (s *teamService) PatchTeam(ctx context.Context, id int64, patch TeamPatch) (model.TeamView, error) {
	if err := validID("id", id); err != nil {
		return model.TeamView{}, err
	}
	name, nameSet := present(patch.TeamName)
	if nameSet {
		if err := newInvalidInput(checkTeamName(name)); err != nil {
			return model.TeamView{}, err
		}
	}

	var updated model.Team
	err := s.uow.run(ctx, "patch_team", func(ctx context.Context) error {
		cur, err := s.teams.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Team", id)
		}
		next := cur
		if nameSet {
			next.TeamName = name
		}
		if v, ok := patch.HomeGround.Get(); ok {
			next.HomeGround = strings.TrimSpace(v)
		}
		if v, ok := patch.Coach.Get(); ok {
			next.Coach = strings.TrimSpace(v)
		}
		if ids, ok := patch.PlayerIDs.Get(); ok {
			next.PlayerIDs = append([]int64{}, ids...)
		}
		if v, ok := patch.CaptainID.Get(); ok {
			next.CaptainID = &v
		} else if next.CaptainID != nil && !next.HasPlayer(*next.CaptainID) {
			// the captain left with this roster change
			next.CaptainID = nil
		}
		updated, err = s.replace(ctx, cur, next)
		return err
	})
	if err != nil {
		logFailure(s.log, err, "patch team failed", "team_id", id)
		return model.TeamView{}, err
	}
	s.log.Info().Int64("team_id", id).Msg("team patched")
	return toTeamView(updated), nil
}

// replace validates next, persists it over cur and resynchronises the players on either roster.
func (s *teamService) replace(ctx context.Context, cur, next model.Team) (model.Team, error) {
	if err := s.validate(ctx, next, cur.ID); err != nil {
		return model.Team{}, err
	}
	updated, err := s.teams.Update(ctx, next)
	if err != nil {
		return model.Team{}, mapTeamNameTaken(err, next.TeamName)
	}
	if err := s.roster.SyncRoster(ctx, updated, cur.PlayerIDs); err != nil {
		return model.Team{}, err
	}
	return updated, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int64) (model.TeamView, error) {
	if err := validID("id", id); err != nil {
		return model.TeamView{}, err
	}
	var (
		out      model.TeamView
		detached int
	)
	err := s.uow.run(ctx, "delete_team", func(ctx context.Context) error {
		cur, err := s.teams.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Team", id)
		}
		if detached, err = s.roster.DetachAll(ctx, cur.ID); err != nil {
			return err
		}
		if err := s.teams.Delete(ctx, cur.ID); err != nil {
			return err
		}
		out = toTeamView(cur)
		return nil
	})
	if err != nil {
		logFailure(s.log, err, "delete team failed", "team_id", id)
		return model.TeamView{}, err
	}
	s.log.Info().Int64("team_id", id).Int("detached_players", detached).Msg("team deleted")
	return out, nil
}

// validate enforces the roster rules on a team about to be written: unique name,
// known and distinct players, capacity, captain on the roster, unique player names.
func (s *teamService) validate(ctx context.Context, t model.Team, selfID int64) error {
	existing, err := s.teams.FindByName(ctx, t.TeamName)
	switch {
	case err == nil && existing.ID != selfID:
		return ruleErr(ErrDuplicateName, "teamName", "team '%s' already exists", t.TeamName)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}

	seen := make(map[int64]struct{}, len(t.PlayerIDs))
	for _, id := range t.PlayerIDs {
		if _, dup := seen[id]; dup {
			return ruleErr(ErrInvalidRequest, "playerIds", "player id %d is listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	if len(t.PlayerIDs) > model.MaxRosterSize {
		return ruleErr(ErrRosterFull, "playerIds", "a team can have at most %d players, got %d", model.MaxRosterSize, len(t.PlayerIDs))
	}

	members, err := s.players.GetByIDs(ctx, t.PlayerIDs)
	if err != nil {
		return err
	}
	if len(members) != len(t.PlayerIDs) {
		found := make(map[int64]struct{}, len(members))
		for _, p := range members {
			found[p.ID] = struct{}{}
		}
		var missing []int64
		for _, id := range t.PlayerIDs {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		return ruleErr(ErrInvalidRequest, "playerIds", "players do not exist with ids: %s", joinIDs(missing))
	}

	if t.CaptainID != nil {
		if _, err := s.players.GetByID(ctx, *t.CaptainID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ruleErr(ErrInvalidRequest, "captainId", "captain with id %d does not exist", *t.CaptainID)
			}
			return err
		}
		if !t.HasPlayer(*t.CaptainID) {
			return ruleErr(ErrInvalidRequest, "captainId", "captain with id %d is not on the roster", *t.CaptainID)
		}
	}

	for i := range members {
		for j := i + 1; j < len(members); j++ {
			if sameName(members[i].Name, members[j].Name) {
				return ruleErr(ErrDuplicateName, "playerIds", "roster lists two players named '%s'", members[j].Name)
			}
		}
	}
	return nil
}

// mapTeamNameTaken turns a unique-index hit that slipped past validate into a rule error.
func mapTeamNameTaken(err error, name string) error {
	if errors.Is(err, repository.ErrAlreadyExists) {
		return ruleErr(ErrDuplicateName, "teamName", "team '%s' already exists", name)
	}
	return err
}
