package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

// Backend bundles one storage implementation. Ids are allocated by the caller through Seq.
type Backend struct {
	Teams   repository.TeamRepository
	Players repository.PlayerRepository
	Matches repository.MatchRepository
	Tx      repository.TxManager
	Seq     repository.SequenceAllocator
	Pinger  repository.Pinger
}

// Factory returns a clean backend and its cleanup.
type Factory func(t *testing.T) (Backend, func())

// RunAll executes every suite against the factory.
func RunAll(t *testing.T, makeBackend Factory) {
	t.Helper()
	t.Run("teams", func(t *testing.T) { RunTeamRepositoryContract(t, makeBackend) })
	t.Run("players", func(t *testing.T) { RunPlayerRepositoryContract(t, makeBackend) })
	t.Run("matches", func(t *testing.T) { RunMatchRepositoryContract(t, makeBackend) })
	t.Run("sequences", func(t *testing.T) { RunSequenceContract(t, makeBackend) })
	t.Run("tx", func(t *testing.T) { RunTxManagerContract(t, makeBackend) })
	t.Run("pinger", func(t *testing.T) { RunPingerContract(t, makeBackend) })
}

func nextID(t *testing.T, b Backend, seq string) int64 {
	t.Helper()
	id, err := b.Seq.Next(context.Background(), seq)
	if err != nil {
		t.Fatalf("allocate %s: %v", seq, err)
	}
	return id
}

func mkTeam(t *testing.T, b Backend, name string) model.Team {
	t.Helper()
	out, err := b.Teams.Create(context.Background(), model.Team{ID: nextID(t, b, repository.TeamSequence), TeamName: name})
	if err != nil {
		t.Fatalf("seed team %q: %v", name, err)
	}
	return out
}

func mkPlayer(t *testing.T, b Backend, name string, teamID *int64) model.Player {
	t.Helper()
	p := model.Player{
		ID:           nextID(t, b, repository.PlayerSequence),
		TeamID:       teamID,
		Name:         name,
		Role:         model.RoleBatsman,
		BattingStyle: model.BattingRightHanded,
	}
	out, err := b.Players.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("seed player %q: %v", name, err)
	}
	return out
}

func RunTeamRepositoryContract(t *testing.T, makeBackend Factory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created := mkTeam(t, b, "Mumbai Indians")
		if created.Version != 1 {
			t.Fatalf("expected version 1, got %d", created.Version)
		}
		if created.PlayerIDs == nil || len(created.PlayerIDs) != 0 {
			t.Fatalf("expected empty roster, got %v", created.PlayerIDs)
		}
		got, err := b.Teams.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.TeamName != created.TeamName {
			t.Fatalf("mismatch: %+v", got)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		_, err := b.Teams.GetByID(context.Background(), 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("find_by_name_case_insensitive", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		created := mkTeam(t, b, "Chennai Super Kings")
		got, err := b.Teams.FindByName(context.Background(), "chennai SUPER kings")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.ID != created.ID {
			t.Fatalf("expected id %d, got %d", created.ID, got.ID)
		}
		if _, err := b.Teams.FindByName(context.Background(), "Nobody"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("create_duplicate_name_conflict", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		mkTeam(t, b, "Dup")
		_, err := b.Teams.Create(context.Background(), model.Team{ID: nextID(t, b, repository.TeamSequence), TeamName: "DUP"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("update_bumps_version_and_rejects_stale", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		team := mkTeam(t, b, "Royals")
		captain := int64(7)
		team.PlayerIDs = []int64{7, 8}
		team.CaptainID = &captain
		updated, err := b.Teams.Update(ctx, team)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Version != team.Version+1 {
			t.Fatalf("expected version %d, got %d", team.Version+1, updated.Version)
		}
		if len(updated.PlayerIDs) != 2 || updated.PlayerIDs[0] != 7 || updated.PlayerIDs[1] != 8 {
			t.Fatalf("roster not persisted in order: %v", updated.PlayerIDs)
		}
		if updated.CaptainID == nil || *updated.CaptainID != 7 {
			t.Fatalf("captain not persisted: %v", updated.CaptainID)
		}
		// team still carries the old version
		if _, err := b.Teams.Update(ctx, team); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("update_missing_not_found", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		_, err := b.Teams.Update(context.Background(), model.Team{ID: 424242, TeamName: "Ghost", Version: 1})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete_and_list", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a := mkTeam(t, b, "A")
		c := mkTeam(t, b, "C")
		if err := b.Teams.Delete(ctx, a.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := b.Teams.Delete(ctx, a.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
		all, err := b.Teams.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 1 || all[0].ID != c.ID {
			t.Fatalf("unexpected list: %+v", all)
		}
	})
}

func RunPlayerRepositoryContract(t *testing.T, makeBackend Factory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		team := mkTeam(t, b, "Kings")
		bowling := model.BowlingRightArmFast
		p := model.Player{
			ID:           nextID(t, b, repository.PlayerSequence),
			TeamID:       &team.ID,
			Name:         "Jasprit Bumrah",
			Role:         model.RoleBowler,
			BattingStyle: model.BattingRightHanded,
			BowlingStyle: &bowling,
			Stats:        &model.Stats{MatchesPlayed: 3, WicketsTaken: 9},
		}
		created, err := b.Players.Create(ctx, p)
		if err != nil {
			t.Fatalf("create player: %v", err)
		}
		got, err := b.Players.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.TeamID == nil || *got.TeamID != team.ID {
			t.Fatalf("team mismatch: %+v", got)
		}
		if got.BowlingStyle == nil || *got.BowlingStyle != bowling {
			t.Fatalf("bowling style mismatch: %v", got.BowlingStyle)
		}
		if got.Stats == nil || got.Stats.WicketsTaken != 9 || got.Stats.MatchesPlayed != 3 {
			t.Fatalf("stats mismatch: %+v", got.Stats)
		}
	})

	t.Run("nil_stats_and_bowling_round_trip", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		created := mkPlayer(t, b, "Free Agent", nil)
		got, err := b.Players.GetByID(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.TeamID != nil || got.BowlingStyle != nil || got.Stats != nil {
			t.Fatalf("expected nil optional fields, got %+v", got)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		_, err := b.Players.GetByID(context.Background(), 42424242)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("get_by_ids_keeps_order_and_skips_missing", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		p1 := mkPlayer(t, b, "One", nil)
		p2 := mkPlayer(t, b, "Two", nil)
		got, err := b.Players.GetByIDs(context.Background(), []int64{p2.ID, 987654, p1.ID})
		if err != nil {
			t.Fatalf("get by ids: %v", err)
		}
		if len(got) != 2 || got[0].ID != p2.ID || got[1].ID != p1.ID {
			t.Fatalf("unexpected batch: %+v", got)
		}
	})

	t.Run("find_by_name_returns_all_matches", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		a := mkTeam(t, b, "A")
		c := mkTeam(t, b, "C")
		mkPlayer(t, b, "Rahul", &a.ID)
		mkPlayer(t, b, "RAHUL", &c.ID)
		mkPlayer(t, b, "Rohit", &c.ID)
		got, err := b.Players.FindByName(context.Background(), "rahul")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(got))
		}
	})

	t.Run("list_by_team", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		team := mkTeam(t, b, "Lakers")
		for _, n := range []string{"P1", "P2", "P3"} {
			mkPlayer(t, b, n, &team.ID)
		}
		mkPlayer(t, b, "Outsider", nil)
		res, err := b.Players.ListByTeam(ctx, team.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res) != 3 {
			t.Fatalf("expected 3 players, got %d", len(res))
		}
		all, err := b.Players.List(ctx)
		if err != nil {
			t.Fatalf("list all: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("expected 4 players, got %d", len(all))
		}
	})

	t.Run("update_version_guard_and_delete", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		p := mkPlayer(t, b, "Virat", nil)
		p.Stats = &model.Stats{RunsScored: 100}
		updated, err := b.Players.Update(ctx, p)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Version != p.Version+1 || updated.Stats == nil || updated.Stats.RunsScored != 100 {
			t.Fatalf("unexpected update result: %+v", updated)
		}
		if _, err := b.Players.Update(ctx, p); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if err := b.Players.Delete(ctx, p.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := b.Players.Delete(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunMatchRepositoryContract(t *testing.T, makeBackend Factory) {
	t.Helper()

	seed := func(t *testing.T, b Backend) model.Match {
		t.Helper()
		a := mkTeam(t, b, "Home")
		c := mkTeam(t, b, "Away")
		m := model.Match{
			ID:           nextID(t, b, repository.MatchSequence),
			Venue:        "Eden Gardens",
			Date:         time.Date(2025, 4, 1, 14, 0, 0, 0, time.UTC),
			FirstTeamID:  a.ID,
			SecondTeamID: c.ID,
			Status:       model.StatusScheduled,
		}
		out, err := b.Matches.Create(context.Background(), m)
		if err != nil {
			t.Fatalf("seed match: %v", err)
		}
		return out
	}

	t.Run("create_and_get", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		created := seed(t, b)
		got, err := b.Matches.GetByID(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Venue != "Eden Gardens" || got.Status != model.StatusScheduled || got.Result != nil {
			t.Fatalf("mismatch: %+v", got)
		}
		if !got.Date.Equal(created.Date) {
			t.Fatalf("date mismatch: %v vs %v", got.Date, created.Date)
		}
	})

	t.Run("complete_with_result", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		m := seed(t, b)
		m.Status = model.StatusCompleted
		m.Result = &model.Result{WinnerID: m.FirstTeamID, Margin: "5 wickets", ManOfTheMatchID: 11}
		updated, err := b.Matches.Update(ctx, m)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Result == nil || updated.Result.WinnerID != m.FirstTeamID || updated.Result.Margin != "5 wickets" {
			t.Fatalf("result not persisted: %+v", updated.Result)
		}
		if _, err := b.Matches.Update(ctx, m); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("delete_and_not_found", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		m := seed(t, b)
		if err := b.Matches.Delete(ctx, m.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := b.Matches.GetByID(ctx, m.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		all, err := b.Matches.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 0 {
			t.Fatalf("expected empty list, got %d", len(all))
		}
	})
}

func RunSequenceContract(t *testing.T, makeBackend Factory) {
	t.Helper()
	t.Run("monotonic_per_name", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		first, err := b.Seq.Next(ctx, "contract_seq")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		second, err := b.Seq.Next(ctx, "contract_seq")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if second != first+1 {
			t.Fatalf("expected %d, got %d", first+1, second)
		}
		other, err := b.Seq.Next(ctx, "contract_seq_other")
		if err != nil {
			t.Fatalf("next other: %v", err)
		}
		if other != 1 {
			t.Fatalf("expected fresh counter to start at 1, got %d", other)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeBackend Factory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := nextID(t, b, repository.TeamSequence)
		err := b.Tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := b.Teams.Create(ctx, model.Team{ID: id, TeamName: "TxCommit"})
			return err
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := b.Teams.GetByID(ctx, id); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := nextID(t, b, repository.TeamSequence)
		errMarker := errors.New("boom")
		err := b.Tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := b.Teams.Create(ctx, model.Team{ID: id, TeamName: "TxRollback"}); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := b.Teams.GetByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})

	t.Run("nested_joins_outer", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		outerID := nextID(t, b, repository.TeamSequence)
		innerID := nextID(t, b, repository.TeamSequence)
		errMarker := errors.New("outer failed")
		err := b.Tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := b.Teams.Create(ctx, model.Team{ID: outerID, TeamName: "Outer"}); err != nil {
				return err
			}
			if err := b.Tx.WithinTx(ctx, func(ctx context.Context) error {
				_, err := b.Teams.Create(ctx, model.Team{ID: innerID, TeamName: "Inner"})
				return err
			}); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		for _, id := range []int64{outerID, innerID} {
			if _, err := b.Teams.GetByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
				t.Fatalf("expected team %d rolled back, got %v", id, err)
			}
		}
	})
}

func RunPingerContract(t *testing.T, makeBackend Factory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		b, cleanup := makeBackend(t)
		t.Cleanup(cleanup)
		if err := b.Pinger.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
