// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sort"

	"github.com/danielhkuo/quickly-seed/cliparse"
	"github.com/danielhkuo/quickly-seed/db"
	"github.com/danielhkuo/quickly-seed/middleware"
	"github.com/danielhkuo/quickly-seed/models"
	"github.com/danielhkuo/quickly-seed/ranking"
)

// matchRow is one reported match as stored
type matchRow struct {
	playerOne, playerTwo, winner string
	oneScore, twoScore           int
}

// ComputeStandings ranks the stage's players by its enabled criteria. random
// supplies the random tiebreaker; nil uses math/rand/v2.
func ComputeStandings(ctx context.Context, conn querier, stageID string, stageOrder int, random func() float64) ([]string, []models.Standing, error) {
	if random == nil {
		random = rand.Float64
	}

	criteria, err := loadCriteria(ctx, conn, stageID, stageOrder)
	if err != nil {
		return nil, nil, err
	}
	keys := ranking.EnabledKeys(criteria)

	players, err := loadStagePlayers(ctx, conn, stageID)
	if err != nil {
		return nil, nil, err
	}
	matches, err := loadMatches(ctx, conn, stageID)
	if err != nil {
		return nil, nil, err
	}

	standings := tally(players, matches)

	// One value per criterion per player, computed once so random draws stay
	// fixed during the sort.
	values := make(map[string][]float64, len(standings))
	for _, s := range standings {
		row := make([]float64, len(keys))
		for i, key := range keys {
			row[i] = criterionValue(key, s, random)
		}
		values[s.StagePlayerID] = row
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		va, vb := values[a.StagePlayerID], values[b.StagePlayerID]
		for k, key := range keys {
			if va[k] == vb[k] {
				continue
			}
			c, _ := ranking.Lookup(key)
			if c.Descending {
				return va[k] > vb[k]
			}
			return va[k] < vb[k]
		}

		// Lower seed, then id
		if a.Seed != b.Seed {
			return a.Seed < b.Seed
		}
		return a.StagePlayerID < b.StagePlayerID
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return keys, standings, nil
}

// tally aggregates match results per stage player
func tally(players []models.StagePlayer, matches []matchRow) []models.Standing {
	standings := make([]models.Standing, len(players))
	byID := make(map[string]*models.Standing, len(players))
	for i, p := range players {
		standings[i] = models.Standing{
			StagePlayerID: p.ID,
			PlayerID:      p.PlayerID,
			Name:          p.Name,
			Seed:          p.Seed,
		}
		byID[p.ID] = &standings[i]
	}

	opponents := make(map[string][]string, len(players))
	record := func(id, opponent, winner string, own, against int) {
		s, ok := byID[id]
		if !ok {
			return
		}
		s.GamesPlayed++
		s.PlayerScore += own
		s.OpponentScore += against
		switch winner {
		case "":
			s.Ties++
		case id:
			s.Wins++
		default:
			s.Losses++
		}
		if opponent != "" {
			opponents[id] = append(opponents[id], opponent)
		}
	}
	for _, m := range matches {
		record(m.playerOne, m.playerTwo, m.winner, m.oneScore, m.twoScore)
		if m.playerTwo != "" {
			record(m.playerTwo, m.playerOne, m.winner, m.twoScore, m.oneScore)
		}
	}

	for i := range standings {
		s := &standings[i]
		s.Points = 2*s.Wins + s.Ties
		s.ScoreDifferential = s.PlayerScore - s.OpponentScore
	}

	// Strength of schedule needs every player's points first
	for i := range standings {
		s := &standings[i]
		faced := opponents[s.StagePlayerID]
		if len(faced) == 0 {
			continue
		}
		total := 0
		for _, id := range faced {
			if o, ok := byID[id]; ok {
				total += o.Points
			}
		}
		s.StrengthOfSchedule = float64(total) / float64(len(faced))
	}
	return standings
}

func criterionValue(key string, s models.Standing, random func() float64) float64 {
	switch key {
	case ranking.Wins:
		return float64(s.Wins)
	case ranking.Losses:
		return float64(s.Losses)
	case ranking.Points:
		return float64(s.Points)
	case ranking.StrengthOfSchedule:
		return s.StrengthOfSchedule
	case ranking.Seed:
		return float64(s.Seed)
	case ranking.Random:
		return random()
	case ranking.PlayerScore:
		return float64(s.PlayerScore)
	case ranking.OpponentScore:
		return float64(s.OpponentScore)
	case ranking.ScoreDifferential:
		return float64(s.ScoreDifferential)
	case ranking.GamesPlayed:
		return float64(s.GamesPlayed)
	}
	// head_to_head and unknown keys never separate players
	return 0
}

// loadMatches retrieves every reported match of a stage
func loadMatches(ctx context.Context, q querier, stageID string) ([]matchRow, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT player_one_id, player_two_id, winner_id, player_one_score, player_two_score
		FROM match_result
		WHERE stage_id = ?
		ORDER BY round_number, reported_at
	`, stageID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []matchRow
	for rows.Next() {
		var m matchRow
		var two, winner sql.NullString
		var oneScore, twoScore sql.NullInt64
		if err := rows.Scan(&m.playerOne, &two, &winner, &oneScore, &twoScore); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.playerTwo = two.String
		m.winner = winner.String
		m.oneScore = int(oneScore.Int64)
		m.twoScore = int(twoScore.Int64)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

type StandingsHandler struct {
	db  *db.DB
	cfg cliparse.Config
	// random feeds the random tiebreaker; nil uses math/rand/v2
	random func() float64
}

func NewStandingsHandler(db *db.DB, cfg cliparse.Config) *StandingsHandler {
	return &StandingsHandler{db: db, cfg: cfg}
}

// GetStandings handles GET /stages/{id}/standings
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	keys, standings, err := ComputeStandings(r.Context(), h.db, stage.ID, stage.Order, h.random)
	if err != nil {
		slog.Error("failed to compute standings", "stage_id", stage.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute standings")
		return
	}
	if keys == nil {
		keys = []string{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.StandingsResponse{
		StageID:   stage.ID,
		Criteria:  keys,
		Standings: standings,
	})
}
