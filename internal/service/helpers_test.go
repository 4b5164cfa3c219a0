package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
	"github.com/maxviazov/cricket-tournament-service/internal/repository/memory"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
)

type countingRecorder struct{ counts map[string]int }

func (r *countingRecorder) RosterChanged(action string) { r.counts[action]++ }

type testEnv struct {
	store   *memory.Store
	stores  service.Stores
	rec     *countingRecorder
	roster  *service.RosterManager
	teams   service.TeamService
	players service.PlayerService
	matches service.MatchService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	s := memory.NewStore()
	return newEnvWithTx(t, s, s)
}

func newEnvWithTx(t *testing.T, s *memory.Store, tx repository.TxManager) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)
	st := service.Stores{Teams: s.Teams(), Players: s.Players(), Matches: s.Matches(), Tx: tx, Seq: s}
	rec := &countingRecorder{counts: map[string]int{}}
	roster := service.NewRosterManager(st.Teams, st.Players, rec, logger)
	return &testEnv{
		store:   s,
		stores:  st,
		rec:     rec,
		roster:  roster,
		teams:   service.NewTeamService(st, roster, logger),
		players: service.NewPlayerService(st, roster, logger),
		matches: service.NewMatchService(st, service.NewResultResolver(st.Players), logger),
	}
}

func (e *testEnv) team(t *testing.T, name string) model.TeamView {
	t.Helper()
	out, err := e.teams.CreateTeam(context.Background(), service.TeamInput{TeamName: name, HomeGround: name + " Ground", Coach: "Coach " + name})
	require.NoError(t, err)
	return out
}

func (e *testEnv) player(t *testing.T, name, teamName string) model.PlayerView {
	t.Helper()
	out, err := e.players.CreatePlayer(context.Background(), service.PlayerInput{
		Name:         name,
		TeamName:     teamName,
		Role:         "BATSMAN",
		BattingStyle: "RIGHT_HANDED",
	})
	require.NoError(t, err)
	return out
}

func (e *testEnv) rawTeam(t *testing.T, id int64) model.Team {
	t.Helper()
	out, err := e.stores.Teams.GetByID(context.Background(), id)
	require.NoError(t, err)
	return out
}

func (e *testEnv) rawPlayer(t *testing.T, id int64) model.Player {
	t.Helper()
	out, err := e.stores.Players.GetByID(context.Background(), id)
	require.NoError(t, err)
	return out
}

// requireConsistent checks both directions of the roster link and captain membership.
func (e *testEnv) requireConsistent(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	teams, err := e.stores.Teams.List(ctx)
	require.NoError(t, err)
	players, err := e.stores.Players.List(ctx)
	require.NoError(t, err)

	byID := make(map[int64]model.Team, len(teams))
	for _, tm := range teams {
		byID[tm.ID] = tm
		if tm.CaptainID != nil {
			require.Truef(t, tm.HasPlayer(*tm.CaptainID), "captain %d not on roster of %q", *tm.CaptainID, tm.TeamName)
		}
		for _, pid := range tm.PlayerIDs {
			p, err := e.stores.Players.GetByID(ctx, pid)
			require.NoError(t, err)
			require.NotNil(t, p.TeamID, "rostered player %d has no team", pid)
			require.Equal(t, tm.ID, *p.TeamID)
		}
	}
	for _, p := range players {
		if p.TeamID == nil {
			continue
		}
		tm, ok := byID[*p.TeamID]
		require.Truef(t, ok, "player %d points at missing team %d", p.ID, *p.TeamID)
		require.Truef(t, tm.HasPlayer(p.ID), "team %q does not list player %d", tm.TeamName, p.ID)
	}
}

func requireRule(t *testing.T, err error, kind error, field string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	require.ErrorIs(t, err, service.ErrInvalidRequest)
	var re *service.RuleError
	require.True(t, errors.As(err, &re), "expected RuleError, got %T", err)
	require.Equal(t, field, re.Field)
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	require.ErrorIs(t, err, service.ErrInvalidInput)
	for _, fe := range service.FieldErrors(err) {
		if fe.Field == field {
			return
		}
	}
	t.Fatalf("expected field error on %q, got %+v", field, service.FieldErrors(err))
}

func str(s string) *string { return &s }

func num(n int) *int { return &n }

func id64(n int64) *int64 { return &n }
