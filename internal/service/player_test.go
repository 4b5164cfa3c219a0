package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
)

func TestPlayerService_CreatePlayer_Validation(t *testing.T) {
	env := newEnv(t)
	ok := service.PlayerInput{Name: "Virat Kohli", Role: "BATSMAN", BattingStyle: "RIGHT_HANDED"}

	cases := []struct {
		name      string
		mutate    func(in *service.PlayerInput)
		wantField string
	}{
		{"blank name", func(in *service.PlayerInput) { in.Name = "   " }, "name"},
		{"unknown role", func(in *service.PlayerInput) { in.Role = "CAPTAIN" }, "role"},
		{"unknown batting", func(in *service.PlayerInput) { in.BattingStyle = "BOTH" }, "battingStyle"},
		{"unknown bowling", func(in *service.PlayerInput) { in.BowlingStyle = str("UNDERARM") }, "bowlingStyle"},
		{"negative runs", func(in *service.PlayerInput) { in.Stats = &service.StatsInput{RunsScored: num(-1)} }, "stats.runsScored"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := ok
			tc.mutate(&in)
			_, err := env.players.CreatePlayer(context.Background(), in)
			requireFieldError(t, err, tc.wantField)
		})
	}
}

func TestPlayerService_CreatePlayer_Standalone(t *testing.T) {
	env := newEnv(t)
	out, err := env.players.CreatePlayer(context.Background(), service.PlayerInput{
		Name:         "  Free Agent ",
		Role:         "all_rounder",
		BattingStyle: "left_handed",
		BowlingStyle: str("left_arm_orthodox"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Free Agent", out.Name)
	assert.Nil(t, out.TeamName)
	assert.Equal(t, model.RoleAllRounder, out.Role)
	require.NotNil(t, out.BowlingStyle)
	assert.Equal(t, model.BowlingLeftArmOrthodox, *out.BowlingStyle)
	require.NotNil(t, out.Stats)
	assert.Equal(t, model.Stats{}, *out.Stats)
}

func TestPlayerService_CreatePlayer_StatsDefaultPerField(t *testing.T) {
	env := newEnv(t)
	out, err := env.players.CreatePlayer(context.Background(), service.PlayerInput{
		Name: "Bowler", Role: "BOWLER", BattingStyle: "RIGHT_HANDED",
		Stats: &service.StatsInput{WicketsTaken: num(12)},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Stats)
	assert.Equal(t, model.Stats{WicketsTaken: 12}, *out.Stats)
}

func TestPlayerService_CreatePlayer_JoinsRoster(t *testing.T) {
	env := newEnv(t)
	mi := env.team(t, "Mumbai Indians")
	rohit := env.player(t, "Rohit Sharma", "mumbai indians")

	require.NotNil(t, rohit.TeamName)
	assert.Equal(t, "Mumbai Indians", *rohit.TeamName)
	assert.Equal(t, []int64{rohit.ID}, env.rawTeam(t, mi.ID).PlayerIDs)
	assert.Equal(t, 1, env.rec.counts[service.RosterJoin])
	env.requireConsistent(t)
}

func TestPlayerService_CreatePlayer_UnknownTeam(t *testing.T) {
	env := newEnv(t)
	_, err := env.players.CreatePlayer(context.Background(), service.PlayerInput{
		Name: "Nobody", TeamName: "Ghosts", Role: "BATSMAN", BattingStyle: "RIGHT_HANDED",
	})
	requireRule(t, err, service.ErrInvalidTeam, "teamName")

	all, err := env.players.ListPlayers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPlayerService_RosterCapacity(t *testing.T) {
	env := newEnv(t)
	team := env.team(t, "Full House")
	for i := 1; i <= model.MaxRosterSize; i++ {
		env.player(t, fmt.Sprintf("Player %02d", i), "Full House")
	}
	assert.Len(t, env.rawTeam(t, team.ID).PlayerIDs, model.MaxRosterSize)

	_, err := env.players.CreatePlayer(context.Background(), service.PlayerInput{
		Name: "Twenty Six", TeamName: "Full House", Role: "BOWLER", BattingStyle: "LEFT_HANDED",
	})
	requireRule(t, err, service.ErrRosterFull, "teamName")

	// rejected create leaves no orphan record behind
	all, err := env.players.ListPlayers(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, model.MaxRosterSize)
	env.requireConsistent(t)
}

func TestPlayerService_DuplicateNameWithinTeam(t *testing.T) {
	env := newEnv(t)
	env.team(t, "Alpha")
	env.team(t, "Beta")
	env.player(t, "Rohit Sharma", "Alpha")

	_, err := env.players.CreatePlayer(context.Background(), service.PlayerInput{
		Name: "ROHIT sharma", TeamName: "Alpha", Role: "BATSMAN", BattingStyle: "RIGHT_HANDED",
	})
	requireRule(t, err, service.ErrDuplicateName, "name")

	other := env.player(t, "rohit sharma", "Beta")
	require.NotNil(t, other.TeamName)
	assert.Equal(t, "Beta", *other.TeamName)
}

func TestPlayerService_PatchTransfer(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	mi := env.team(t, "Mumbai Indians")
	csk := env.team(t, "Chennai Super Kings")
	rohit := env.player(t, "Rohit Sharma", "Mumbai Indians")
	require.Equal(t, []int64{rohit.ID}, env.rawTeam(t, mi.ID).PlayerIDs)

	out, err := env.players.PatchPlayer(ctx, rohit.ID, service.PlayerPatch{TeamName: model.Some("Chennai Super Kings")})
	require.NoError(t, err)
	require.NotNil(t, out.TeamName)
	assert.Equal(t, "Chennai Super Kings", *out.TeamName)

	assert.Empty(t, env.rawTeam(t, mi.ID).PlayerIDs)
	assert.Equal(t, []int64{rohit.ID}, env.rawTeam(t, csk.ID).PlayerIDs)
	p := env.rawPlayer(t, rohit.ID)
	require.NotNil(t, p.TeamID)
	assert.Equal(t, csk.ID, *p.TeamID)
	env.requireConsistent(t)
}

func TestPlayerService_PatchTransfer_ClearsCaptaincyAndRespectsCapacity(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.team(t, "Origin")
	full := env.team(t, "Packed")
	captain := env.player(t, "Skipper", "Origin")

	origin, err := env.stores.Teams.FindByName(ctx, "Origin")
	require.NoError(t, err)
	_, err = env.teams.PatchTeam(ctx, origin.ID, service.TeamPatch{CaptainID: model.Some(captain.ID)})
	require.NoError(t, err)

	for i := 0; i < model.MaxRosterSize; i++ {
		env.player(t, fmt.Sprintf("Packed %d", i), "Packed")
	}
	_, err = env.players.PatchPlayer(ctx, captain.ID, service.PlayerPatch{TeamName: model.Some("Packed")})
	requireRule(t, err, service.ErrRosterFull, "teamName")
	// the failed transfer rolled back: still captain of Origin
	require.NotNil(t, env.rawTeam(t, origin.ID).CaptainID)
	assert.Len(t, env.rawTeam(t, full.ID).PlayerIDs, model.MaxRosterSize)

	env.team(t, "Destination")
	_, err = env.players.PatchPlayer(ctx, captain.ID, service.PlayerPatch{TeamName: model.Some("Destination")})
	require.NoError(t, err)
	after := env.rawTeam(t, origin.ID)
	assert.Nil(t, after.CaptainID)
	assert.Empty(t, after.PlayerIDs)
	env.requireConsistent(t)
}

func TestPlayerService_PatchBowlingStyle(t *testing.T) {
	ctx := context.Background()
	seed := func(t *testing.T) (*testEnv, int64) {
		env := newEnv(t)
		out, err := env.players.CreatePlayer(ctx, service.PlayerInput{
			Name: "Spinner", Role: "BOWLER", BattingStyle: "RIGHT_HANDED", BowlingStyle: str("RIGHT_ARM_OFF_SPIN"),
		})
		require.NoError(t, err)
		return env, out.ID
	}

	cases := []struct {
		name  string
		patch model.Optional[string]
		want  *model.BowlingStyle
	}{
		{"absent keeps", model.Optional[string]{}, ptrBowling(model.BowlingRightArmOffSpin)},
		{"blank keeps", model.Some("  "), ptrBowling(model.BowlingRightArmOffSpin)},
		{"null clears", model.Null[string](), nil},
		{"value replaces", model.Some("left_arm_wrist_spin"), ptrBowling(model.BowlingLeftArmWristSpin)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, id := seed(t)
			out, err := env.players.PatchPlayer(ctx, id, service.PlayerPatch{BowlingStyle: tc.patch})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.BowlingStyle)
		})
	}
}

func ptrBowling(b model.BowlingStyle) *model.BowlingStyle { return &b }

func TestPlayerService_PatchIgnoresBlankAndNull(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.team(t, "Home")
	p := env.player(t, "Keeper", "Home")

	out, err := env.players.PatchPlayer(ctx, p.ID, service.PlayerPatch{
		Name:         model.Some(""),
		TeamName:     model.Null[string](),
		Role:         model.Some("   "),
		BattingStyle: model.Null[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, "Keeper", out.Name)
	require.NotNil(t, out.TeamName)
	assert.Equal(t, "Home", *out.TeamName)
	assert.Equal(t, model.RoleBatsman, out.Role)
	assert.Equal(t, model.BattingRightHanded, out.BattingStyle)
}

func TestPlayerService_PatchStatsMerge(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	created, err := env.players.CreatePlayer(ctx, service.PlayerInput{
		Name: "Allrounder", Role: "ALL_ROUNDER", BattingStyle: "LEFT_HANDED",
		Stats: &service.StatsInput{MatchesPlayed: num(10), RunsScored: num(300)},
	})
	require.NoError(t, err)

	out, err := env.players.PatchPlayer(ctx, created.ID, service.PlayerPatch{
		Stats: model.Some(service.StatsInput{RunsScored: num(350), CatchesTaken: num(4)}),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Stats)
	assert.Equal(t, model.Stats{MatchesPlayed: 10, RunsScored: 350, CatchesTaken: 4}, *out.Stats)

	// a player stored without stats gets a zeroed object to merge onto
	bare, err := env.players.UpdatePlayer(ctx, created.ID, service.PlayerInput{Name: "Allrounder", Role: "ALL_ROUNDER", BattingStyle: "LEFT_HANDED"})
	require.NoError(t, err)
	require.Nil(t, bare.Stats)
	out, err = env.players.PatchPlayer(ctx, created.ID, service.PlayerPatch{Stats: model.Some(service.StatsInput{WicketsTaken: num(1)})})
	require.NoError(t, err)
	assert.Equal(t, model.Stats{WicketsTaken: 1}, *out.Stats)
}

func TestPlayerService_PatchRenameDuplicate(t *testing.T) {
	env := newEnv(t)
	env.team(t, "Team")
	env.player(t, "Shubman Gill", "Team")
	p := env.player(t, "Ishan Kishan", "Team")

	_, err := env.players.PatchPlayer(context.Background(), p.ID, service.PlayerPatch{Name: model.Some("shubman GILL")})
	requireRule(t, err, service.ErrDuplicateName, "name")

	// renaming to its own name in another case is fine
	out, err := env.players.PatchPlayer(context.Background(), p.ID, service.PlayerPatch{Name: model.Some("ISHAN KISHAN")})
	require.NoError(t, err)
	assert.Equal(t, "ISHAN KISHAN", out.Name)
}

func TestPlayerService_RenameBumpsTeamVersion(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	team := env.team(t, "Lucknow")
	env.player(t, "KL Rahul", "Lucknow")
	p := env.player(t, "Nicholas Pooran", "Lucknow")
	stale := env.rawTeam(t, team.ID)

	_, err := env.players.PatchPlayer(ctx, p.ID, service.PlayerPatch{Name: model.Some("Quinton de Kock")})
	require.NoError(t, err)
	assert.Equal(t, stale.Version+1, env.rawTeam(t, team.ID).Version)

	// a writer that checked names against the old roster can no longer commit
	_, err = env.stores.Teams.Update(ctx, stale)
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = env.players.UpdatePlayer(ctx, p.ID, service.PlayerInput{
		Name: "Ayush Badoni", TeamName: "Lucknow", Role: "BATSMAN", BattingStyle: "RIGHT_HANDED",
	})
	require.NoError(t, err)
	assert.Equal(t, stale.Version+2, env.rawTeam(t, team.ID).Version)
	env.requireConsistent(t)
}

func TestPlayerService_UpdatePlayer_FullReplacement(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	a := env.team(t, "A")
	b := env.team(t, "B")
	p, err := env.players.CreatePlayer(ctx, service.PlayerInput{
		Name: "Mover", TeamName: "A", Role: "BOWLER", BattingStyle: "RIGHT_HANDED", BowlingStyle: str("RIGHT_ARM_FAST"),
		Stats: &service.StatsInput{MatchesPlayed: num(3)},
	})
	require.NoError(t, err)

	out, err := env.players.UpdatePlayer(ctx, p.ID, service.PlayerInput{
		Name: "Mover Renamed", TeamName: "B", Role: "BATSMAN", BattingStyle: "LEFT_HANDED",
		Stats: &service.StatsInput{RunsScored: num(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mover Renamed", out.Name)
	assert.Nil(t, out.BowlingStyle)
	assert.Equal(t, model.Stats{RunsScored: 5}, *out.Stats)
	assert.Empty(t, env.rawTeam(t, a.ID).PlayerIDs)
	assert.Equal(t, []int64{p.ID}, env.rawTeam(t, b.ID).PlayerIDs)

	// blank team name detaches
	out, err = env.players.UpdatePlayer(ctx, p.ID, service.PlayerInput{Name: "Mover Renamed", Role: "BATSMAN", BattingStyle: "LEFT_HANDED"})
	require.NoError(t, err)
	assert.Nil(t, out.TeamName)
	assert.Empty(t, env.rawTeam(t, b.ID).PlayerIDs)
	env.requireConsistent(t)
}

func TestPlayerService_UpdatePlayer_NotFound(t *testing.T) {
	env := newEnv(t)
	_, err := env.players.UpdatePlayer(context.Background(), 404, service.PlayerInput{Name: "X", Role: "BATSMAN", BattingStyle: "RIGHT_HANDED"})
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, "Player not found with id : '404'", err.Error())
}

func TestPlayerService_DeleteCaptain(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	team := env.team(t, "Royals")
	captain := env.player(t, "Sanju Samson", "Royals")
	mate := env.player(t, "Jos Buttler", "Royals")
	_, err := env.teams.PatchTeam(ctx, team.ID, service.TeamPatch{CaptainID: model.Some(captain.ID)})
	require.NoError(t, err)

	snap, err := env.players.DeletePlayer(ctx, captain.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sanju Samson", snap.Name)
	require.NotNil(t, snap.TeamName)
	assert.Equal(t, "Royals", *snap.TeamName)

	after := env.rawTeam(t, team.ID)
	assert.Nil(t, after.CaptainID)
	assert.Equal(t, []int64{mate.ID}, after.PlayerIDs)

	_, err = env.players.GetPlayer(ctx, captain.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	env.requireConsistent(t)
}

func TestPlayerService_GetPlayer_InvalidID(t *testing.T) {
	env := newEnv(t)
	_, err := env.players.GetPlayer(context.Background(), 0)
	requireFieldError(t, err, "id")
}
