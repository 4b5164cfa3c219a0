// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"time"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
)

// StatsInput carries optional counters; a nil field means "not supplied".
type StatsInput struct {
	MatchesPlayed *int `json:"matchesPlayed"`
	RunsScored    *int `json:"runsScored"`
	WicketsTaken  *int `json:"wicketsTaken"`
	CatchesTaken  *int `json:"catchesTaken"`
}

// PlayerInput is the full player payload for create and full update.
// A blank TeamName leaves the player without a team.
type PlayerInput struct {
	Name         string
	TeamName     string
	Role         string
	BattingStyle string
	BowlingStyle *string
	Stats        *StatsInput
}

// PlayerPatch carries the fields of a partial update. Blank or null values mean
// "no change", except BowlingStyle where an explicit null clears the style.
type PlayerPatch struct {
	Name         model.Optional[string]
	TeamName     model.Optional[string]
	Role         model.Optional[string]
	BattingStyle model.Optional[string]
	BowlingStyle model.Optional[string]
	Stats        model.Optional[StatsInput]
}

// TeamInput is the full team payload for create and full update.
type TeamInput struct {
	TeamName   string
	HomeGround string
	Coach      string
	CaptainID  *int64
	PlayerIDs  []int64
}

// TeamPatch merges only the non-null fields into the stored team.
type TeamPatch struct {
	TeamName   model.Optional[string]
	HomeGround model.Optional[string]
	Coach      model.Optional[string]
	CaptainID  model.Optional[int64]
	PlayerIDs  model.Optional[[]int64]
}

// ResultInput names the winner and man of the match; ids are resolved by the ResultResolver.
type ResultInput struct {
	Winner        string `json:"winner"`
	Margin        string `json:"margin"`
	ManOfTheMatch string `json:"manOfTheMatch"`
}

// MatchInput is the full match payload for create and full update.
type MatchInput struct {
	Venue          string
	Date           time.Time
	FirstTeamName  string
	SecondTeamName string
	Status         string
	Result         *ResultInput
}

// MatchPatch carries the independently optional fields of a match partial update.
type MatchPatch struct {
	Venue          model.Optional[string]
	Date           model.Optional[time.Time]
	FirstTeamName  model.Optional[string]
	SecondTeamName model.Optional[string]
	Status         model.Optional[string]
	Result         model.Optional[ResultInput]
}

// PlayerService defines player-oriented use cases.
type PlayerService interface {
	ListPlayers(ctx context.Context) ([]model.PlayerView, error)
	GetPlayer(ctx context.Context, id int64) (model.PlayerView, error)
	CreatePlayer(ctx context.Context, in PlayerInput) (model.PlayerView, error)
	UpdatePlayer(ctx context.Context, id int64, in PlayerInput) (model.PlayerView, error)
	PatchPlayer(ctx context.Context, id int64, patch PlayerPatch) (model.PlayerView, error)
	DeletePlayer(ctx context.Context, id int64) (model.PlayerView, error)
}

// TeamService defines team-oriented use cases.
type TeamService interface {
	ListTeams(ctx context.Context) ([]model.TeamView, error)
	GetTeam(ctx context.Context, id int64) (model.TeamView, error)
	GetTeamDetails(ctx context.Context, id int64) (model.TeamDetails, error)
	CreateTeam(ctx context.Context, in TeamInput) (model.TeamView, error)
	UpdateTeam(ctx context.Context, id int64, in TeamInput) (model.TeamView, error)
	PatchTeam(ctx context.Context, id int64, patch TeamPatch) (model.TeamView, error)
	DeleteTeam(ctx context.Context, id int64) (model.TeamView, error)
}

// MatchService defines match-oriented use cases.
type MatchService interface {
	ListMatches(ctx context.Context) ([]model.MatchView, error)
	GetMatch(ctx context.Context, id int64) (model.MatchView, error)
	CreateMatch(ctx context.Context, in MatchInput) (model.MatchView, error)
	UpdateMatch(ctx context.Context, id int64, in MatchInput) (model.MatchView, error)
	PatchMatch(ctx context.Context, id int64, patch MatchPatch) (model.MatchView, error)
	DeleteMatch(ctx context.Context, id int64) (model.MatchView, error)
}
