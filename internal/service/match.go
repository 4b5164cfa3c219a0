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

type matchService struct {
	matches  repository.MatchRepository
	teams    repository.TeamRepository
	players  repository.PlayerRepository
	seq      repository.SequenceAllocator
	resolver *ResultResolver
	uow      unitOfWork
	log      zerolog.Logger
}

func NewMatchService(st Stores, resolver *ResultResolver, logger zerolog.Logger) MatchService {
	l := logger.With().Str("module", "service").Str("component", "match").Logger()
	return &matchService{
		matches:  st.Matches,
		teams:    st.Teams,
		players:  st.Players,
		seq:      st.Seq,
		resolver: resolver,
		uow:      unitOfWork{tx: st.Tx, log: l},
		log:      l,
	}
}

func (s *matchService) ListMatches(ctx context.Context) ([]model.MatchView, error) {
	all, err := s.matches.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list matches failed")
		return nil, err
	}
	teamNames, err := teamNameIndex(ctx, s.teams)
	if err != nil {
		return nil, err
	}
	var momIDs []int64
	for _, m := range all {
		if m.Result != nil {
			momIDs = append(momIDs, m.Result.ManOfTheMatchID)
		}
	}
	playerNames, err := s.playerNames(ctx, momIDs)
	if err != nil {
		return nil, err
	}
	out := make([]model.MatchView, 0, len(all))
	for _, m := range all {
		out = append(out, toMatchView(m, teamNames, playerNames))
	}
	return out, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int64) (model.MatchView, error) {
	if err := validID("id", id); err != nil {
		return model.MatchView{}, err
	}
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return model.MatchView{}, orNotFound(err, "Match", id)
	}
	return s.view(ctx, m)
}

// matchDraft holds the context-free part of a full payload, validated up front.
type matchDraft struct {
	venue  string
	date   time.Time
	first  string
	second string
	status model.MatchStatus
	result *ResultInput
}

func checkMatchInput(in MatchInput) (matchDraft, []FieldError) {
	var ferrs []FieldError
	d := matchDraft{
		venue:  strings.TrimSpace(in.Venue),
		date:   in.Date,
		first:  strings.TrimSpace(in.FirstTeamName),
		second: strings.TrimSpace(in.SecondTeamName),
		result: in.Result,
	}
	if d.venue == "" {
		ferrs = append(ferrs, FieldError{Field: "venue", Message: "must not be empty"})
	}
	if d.date.IsZero() {
		ferrs = append(ferrs, FieldError{Field: "date", Message: "must be set"})
	}
	if d.first == "" {
		ferrs = append(ferrs, FieldError{Field: "firstTeamName", Message: "must not be empty"})
	}
	if d.second == "" {
		ferrs = append(ferrs, FieldError{Field: "secondTeamName", Message: "must not be empty"})
	}
	d.status = parseStatus(in.Status, &ferrs)
	return d, ferrs
}

// assemble resolves names and enforces the pairing and status/result rules of a full payload.
func (s *matchService) assemble(ctx context.Context, d matchDraft) (model.Match, error) {
	first, err := resolveTeamByName(ctx, s.teams, d.first, "firstTeamName")
	if err != nil {
		return model.Match{}, err
	}
	second, err := resolveTeamByName(ctx, s.teams, d.second, "secondTeamName")
	if err != nil {
		return model.Match{}, err
	}
	if first.ID == second.ID {
		return model.Match{}, ruleErr(ErrInvalidMatch, "secondTeamName", "first and second team must be different")
	}

	m := model.Match{
		Venue:        d.venue,
		Date:         d.date,
		FirstTeamID:  first.ID,
		SecondTeamID: second.ID,
		Status:       d.status,
	}
	switch {
	case d.status == model.StatusCompleted && d.result == nil:
		return model.Match{}, ruleErr(ErrInvalidMatch, "result", "a COMPLETED match requires a result")
	case d.status == model.StatusScheduled && d.result != nil:
		return model.Match{}, ruleErr(ErrInvalidMatch, "result", "a SCHEDULED match cannot have a result")
	case d.result != nil:
		res, err := s.resolver.Resolve(ctx, *d.result, first, second)
		if err != nil {
			return model.Match{}, err
		}
		m.Result = &res
	}
	return m, nil
}

func (s *matchService) CreateMatch(ctx context.Context, in MatchInput) (model.MatchView, error) {
	start := time.Now()
	d, ferrs := checkMatchInput(in)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("match validation failed")
		return model.MatchView{}, err
	}

	var created model.Match
	err := s.uow.run(ctx, "create_match", func(ctx context.Context) error {
		m, err := s.assemble(ctx, d)
		if err != nil {
			return err
		}
		if m.ID, err = s.seq.Next(ctx, repository.MatchSequence); err != nil {
			return err
		}
		created, err = s.matches.Create(ctx, m)
		return err
	})
	if err != nil {
		logFailure(s.log, err, "create match failed", "match_id", 0)
		return model.MatchView{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("match_id", created.ID).Str("status", string(created.Status)).Msg("match created")
	return s.view(ctx, created)
}

func (s *matchService) UpdateMatch(ctx context.Context, id int64, in MatchInput) (model.MatchView, error) {
	if err := validID("id", id); err != nil {
		return model.MatchView{}, err
	}
	d, ferrs := checkMatchInput(in)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Int64("match_id", id).Msg("match validation failed")
		return model.MatchView{}, err
	}

	var updated model.Match
	err := s.uow.run(ctx, "update_match", func(ctx context.Context) error {
		cur, err := s.matches.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Match", id)
		}
		m, err := s.assemble(ctx, d)
		if err != nil {
			return err
		}
		m.ID, m.Version, m.CreatedAt = cur.ID, cur.Version, cur.CreatedAt
		updated, err = s.matches.Update(ctx, m)
		return err
	})
	if err != nil {
		logFailure(s.log, err, "update match failed", "match_id", id)
		return model.MatchView{}, err
	}
	s.log.Info().Int64("match_id", id).Msg("match updated")
	return s.view(ctx, updated)
}

func (s *matchService) PatchMatch(ctx context.Context, id int64, patch MatchPatch) (model.MatchView, error) {
	if err := validID("id", id); err != nil {
		return model.MatchView{}, err
	}

	var ferrs []FieldError
	venue, venueSet := present(patch.Venue)
	date, dateSet := patch.Date.Get()
	if dateSet && date.IsZero() {
		dateSet = false
	}
	var status *model.MatchStatus
	if raw, ok := present(patch.Status); ok {
		st := parseStatus(raw, &ferrs)
		status = &st
	}
	firstName, firstSet := present(patch.FirstTeamName)
	secondName, secondSet := present(patch.SecondTeamName)
	result, resultSet := patch.Result.Get()
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Int64("match_id", id).Msg("match patch validation failed")
		return model.MatchView{}, err
	}

	var updated model.Match
	err := s.uow.run(ctx, "patch_match", func(ctx context.Context) error {
		cur, err := s.matches.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Match", id)
		}
		next := cur

		var first, second *model.Team
		if firstSet {
			t, err := resolveTeamByName(ctx, s.teams, firstName, "firstTeamName")
			if err != nil {
				return err
			}
			first, next.FirstTeamID = &t, t.ID
		}
		if secondSet {
			t, err := resolveTeamByName(ctx, s.teams, secondName, "secondTeamName")
			if err != nil {
				return err
			}
			second, next.SecondTeamID = &t, t.ID
		}
		// compare the pairing as it will be after this patch
		if next.FirstTeamID == next.SecondTeamID {
			return ruleErr(ErrInvalidMatch, "secondTeamName", "first and second team must be different")
		}
		if venueSet {
			next.Venue = venue
		}
		if dateSet {
			next.Date = date
		}

		effective := cur.Status
		if status != nil {
			effective = *status
		}
		next.Status = effective

		switch {
		case resultSet && effective != model.StatusCompleted:
			return ruleErr(ErrInvalidMatch, "result", "a result can only be recorded for a COMPLETED match")
		case effective == model.StatusScheduled:
			next.Result = nil
		case resultSet:
			if first == nil {
				if first, err = s.pairedTeam(ctx, next.FirstTeamID, "firstTeamName"); err != nil {
					return err
				}
			}
			if second == nil {
				if second, err = s.pairedTeam(ctx, next.SecondTeamID, "secondTeamName"); err != nil {
					return err
				}
			}
			res, err := s.resolver.Resolve(ctx, result, *first, *second)
			if err != nil {
				return err
			}
			next.Result = &res
		case cur.Result == nil:
			return ruleErr(ErrInvalidMatch, "result", "a COMPLETED match requires a result")
		case firstSet || secondSet:
			ok, err := s.resolver.Fits(ctx, *cur.Result, next.FirstTeamID, next.SecondTeamID)
			if err != nil {
				return err
			}
			if !ok {
				return ruleErr(ErrInvalidMatch, "result", "the existing result does not fit the new teams; supply a new result")
			}
		}

		updated, err = s.matches.Update(ctx, next)
		return err
	})
	if err != nil {
		logFailure(s.log, err, "patch match failed", "match_id", id)
		return model.MatchView{}, err
	}
	s.log.Info().Int64("match_id", id).Str("status", string(updated.Status)).Msg("match patched")
	return s.view(ctx, updated)
}

func (s *matchService) DeleteMatch(ctx context.Context, id int64) (model.MatchView, error) {
	if err := validID("id", id); err != nil {
		return model.MatchView{}, err
	}
	var out model.MatchView
	err := s.uow.run(ctx, "delete_match", func(ctx context.Context) error {
		cur, err := s.matches.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Match", id)
		}
		if out, err = s.view(ctx, cur); err != nil {
			return err
		}
		return s.matches.Delete(ctx, cur.ID)
	})
	if err != nil {
		logFailure(s.log, err, "delete match failed", "match_id", id)
		return model.MatchView{}, err
	}
	s.log.Info().Int64("match_id", id).Msg("match deleted")
	return out, nil
}

// pairedTeam loads a team already referenced by the match.
func (s *matchService) pairedTeam(ctx context.Context, id int64, field string) (*model.Team, error) {
	t, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ruleErr(ErrInvalidMatch, field, "team with id %d no longer exists", id)
		}
		return nil, err
	}
	return &t, nil
}

func (s *matchService) view(ctx context.Context, m model.Match) (model.MatchView, error) {
	teamNames := make(map[int64]string, 2)
	for _, id := range []int64{m.FirstTeamID, m.SecondTeamID} {
		t, err := s.teams.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return model.MatchView{}, err
		}
		teamNames[id] = t.TeamName
	}
	var momIDs []int64
	if m.Result != nil {
		momIDs = []int64{m.Result.ManOfTheMatchID}
	}
	playerNames, err := s.playerNames(ctx, momIDs)
	if err != nil {
		return model.MatchView{}, err
	}
	return toMatchView(m, teamNames, playerNames), nil
}

func (s *matchService) playerNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	found, err := s.players.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		names[p.ID] = p.Name
	}
	return names, nil
}
