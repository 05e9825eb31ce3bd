package models

import (
	"time"

	"github.com/danielhkuo/quickly-seed/ranking"
)

// Stage positions
const (
	StageMain    = 1
	StagePlayoff = 2
)

// Pairing strategies
const (
	PairingSwiss       = "swiss"
	PairingElimination = "elimination"
)

// Request types

type CreateTournamentRequest struct {
	Name        string `json:"name"`
	WithPlayoff bool   `json:"with_playoff"`
}

type AddPlayerRequest struct {
	Name string `json:"name"`
}

// Winner is a stage player id; empty records a tie. An empty PlayerTwo
// records a bye for PlayerOne.
type RecordMatchRequest struct {
	Round          int    `json:"round"`
	PlayerOne      string `json:"player_one"`
	PlayerTwo      string `json:"player_two,omitempty"`
	Winner         string `json:"winner,omitempty"`
	PlayerOneScore *int   `json:"player_one_score,omitempty"`
	PlayerTwoScore *int   `json:"player_two_score,omitempty"`
}

// Type "drop" replays a full drag gesture from Source to Target (no Target
// abandons it). "click" and "hover" act on Target. Both are selectors.
type ViewEventRequest struct {
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// Response types

type CreateTournamentResponse struct {
	TournamentID string  `json:"tournament_id"`
	AdminKey     string  `json:"admin_key"`
	Stages       []Stage `json:"stages"`
}

type AddPlayerResponse struct {
	PlayerID      string `json:"player_id"`
	StagePlayerID string `json:"stage_player_id"`
	Seed          int    `json:"seed"`
}

type RecordMatchResponse struct {
	MatchID string `json:"match_id"`
}

type SeedingResponse struct {
	StageID string        `json:"stage_id"`
	Players []StagePlayer `json:"players"`
}

type CriteriaResponse struct {
	StageID   string               `json:"stage_id"`
	Criteria  []ranking.Descriptor `json:"criteria"`
	Available []ranking.Criterion  `json:"available"`
}

type StandingsResponse struct {
	StageID   string     `json:"stage_id"`
	Criteria  []string   `json:"criteria"`
	Standings []Standing `json:"standings"`
}

// Domain types

type Tournament struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Stage struct {
	ID              string `json:"id"`
	TournamentID    string `json:"tournament_id"`
	Name            string `json:"name"`
	Order           int    `json:"order"`
	PairingStrategy string `json:"pairing_strategy"`
}

type Player struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	Name         string `json:"name"`
}

// StagePlayer is a player's entry in one stage. ID is the id used by the
// seeding list and match reports.
type StagePlayer struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seed     int    `json:"seed"`
}

type TournamentDetail struct {
	Tournament Tournament `json:"tournament"`
	Stages     []Stage    `json:"stages"`
	Players    []Player   `json:"players"`
}

type Match struct {
	ID             string  `json:"id"`
	StageID        string  `json:"stage_id"`
	Round          int     `json:"round"`
	PlayerOneID    string  `json:"player_one_id"`
	PlayerTwoID    *string `json:"player_two_id,omitempty"`
	WinnerID       *string `json:"winner_id,omitempty"`
	PlayerOneScore *int    `json:"player_one_score,omitempty"`
	PlayerTwoScore *int    `json:"player_two_score,omitempty"`
}

// Standings

type Standing struct {
	Rank               int     `json:"rank"`
	StagePlayerID      string  `json:"stage_player_id"`
	PlayerID           string  `json:"player_id"`
	Name               string  `json:"name"`
	Seed               int     `json:"seed"`
	Wins               int     `json:"wins"`
	Losses             int     `json:"losses"`
	Ties               int     `json:"ties"`
	Points             int     `json:"points"`
	StrengthOfSchedule float64 `json:"strength_of_schedule"`
	PlayerScore        int     `json:"player_score"`
	OpponentScore      int     `json:"opponent_score"`
	ScoreDifferential  int     `json:"score_differential"`
	GamesPlayed        int     `json:"games_played"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
