// Package model contains domain entities and DTOs used across layers.
package model

import "time"

// MaxRosterSize is the upper bound on Team.PlayerIDs.
const MaxRosterSize = 25

// Stats holds a player's career counters.
type Stats struct {
	MatchesPlayed int `json:"matchesPlayed"`
	RunsScored    int `json:"runsScored"`
	WicketsTaken  int `json:"wicketsTaken"`
	CatchesTaken  int `json:"catchesTaken"`
}

// Player is a cricketer. TeamID is a back-reference to the team whose roster lists the player.
type Player struct {
	ID           int64         `json:"id"`
	TeamID       *int64        `json:"teamId"`
	Name         string        `json:"name"`
	Role         PlayerRole    `json:"role"`
	BattingStyle BattingStyle  `json:"battingStyle"`
	BowlingStyle *BowlingStyle `json:"bowlingStyle"`
	Stats        *Stats        `json:"stats"`
	Version      int64         `json:"-"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Team owns its roster (PlayerIDs) and captain reference.
type Team struct {
	ID         int64     `json:"id"`
	TeamName   string    `json:"teamName"`
	HomeGround string    `json:"homeGround"`
	Coach      string    `json:"coach"`
	CaptainID  *int64    `json:"captainId"`
	PlayerIDs  []int64   `json:"playerIds"`
	Version    int64     `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// HasPlayer reports whether id is on the roster.
func (t Team) HasPlayer(id int64) bool {
	for _, pid := range t.PlayerIDs {
		if pid == id {
			return true
		}
	}
	return false
}

// Result is embedded in a completed Match.
type Result struct {
	WinnerID        int64  `json:"winnerId"`
	Margin          string `json:"margin"`
	ManOfTheMatchID int64  `json:"manOfTheMatchId"`
}

// Match is a fixture between two distinct teams.
type Match struct {
	ID           int64       `json:"id"`
	Venue        string      `json:"venue"`
	Date         time.Time   `json:"date"`
	FirstTeamID  int64       `json:"firstTeamId"`
	SecondTeamID int64       `json:"secondTeamId"`
	Status       MatchStatus `json:"status"`
	Result       *Result     `json:"result"`
	Version      int64       `json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Involves reports whether teamID plays in the match.
func (m Match) Involves(teamID int64) bool {
	return m.FirstTeamID == teamID || m.SecondTeamID == teamID
}

// PlayerView is the name-bearing representation returned to API clients.
type PlayerView struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	TeamName     *string       `json:"teamName"`
	Role         PlayerRole    `json:"role"`
	BattingStyle BattingStyle  `json:"battingStyle"`
	BowlingStyle *BowlingStyle `json:"bowlingStyle"`
	Stats        *Stats        `json:"stats"`
}

// TeamView is the team representation returned to API clients.
type TeamView struct {
	ID         int64   `json:"id"`
	TeamName   string  `json:"teamName"`
	HomeGround string  `json:"homeGround"`
	Coach      string  `json:"coach"`
	CaptainID  *int64  `json:"captainId"`
	PlayerIDs  []int64 `json:"playerIds"`
}

// TeamDetails is a read-only projection of a team with its captain and roster resolved.
type TeamDetails struct {
	TeamView
	Captain *PlayerView  `json:"captain"`
	Players []PlayerView `json:"players"`
}

// ResultView resolves Result ids to names.
type ResultView struct {
	Winner        string `json:"winner"`
	Margin        string `json:"margin"`
	ManOfTheMatch string `json:"manOfTheMatch"`
}

// MatchView is the name-bearing match representation returned to API clients.
type MatchView struct {
	ID         int64       `json:"id"`
	Venue      string      `json:"venue"`
	Date       time.Time   `json:"date"`
	FirstTeam  string      `json:"firstTeam"`
	SecondTeam string      `json:"secondTeam"`
	Status     MatchStatus `json:"status"`
	Result     *ResultView `json:"result"`
}
