// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-seed/auth"
	"github.com/danielhkuo/quickly-seed/cliparse"
	"github.com/danielhkuo/quickly-seed/db"
	"github.com/danielhkuo/quickly-seed/models"
	"github.com/danielhkuo/quickly-seed/ranking"
)

// SetupTestDB opens a fresh SQLite database with the full schema. It is
// closed when the test ends.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	conn, err := db.Open(db.SQLite, "file:"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: db.SQLite,
		AdminKeySalt: "test-admin-salt",
		LogLevel:     "info",
		LogFormat:    "text",
		ViewTTL:      30 * time.Minute,
	}
}

// TestTournament holds what CreateTestTournament inserted
type TestTournament struct {
	ID          string
	AdminKey    string
	MainStageID string
	// PlayoffStageID is empty unless a playoff was requested
	PlayoffStageID string
}

// CreateTestTournament inserts a tournament with a main stage, and a playoff
// stage when withPlayoff is set, each with its default criteria.
func CreateTestTournament(t *testing.T, conn *db.DB, cfg cliparse.Config, withPlayoff bool) TestTournament {
	t.Helper()

	tt := TestTournament{}
	tt.ID, _ = auth.GenerateID(16)
	tt.AdminKey = auth.GenerateAdminKey(tt.ID, cfg.AdminKeySalt)

	_, err := conn.Exec(`
		INSERT INTO tournament (id, name, created_at) VALUES (?, 'Test Cup', ?)
	`, tt.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test tournament: %v", err)
	}

	tt.MainStageID = addTestStage(t, conn, tt.ID, "Main Stage", models.StageMain, models.PairingSwiss)
	if withPlayoff {
		tt.PlayoffStageID = addTestStage(t, conn, tt.ID, "Playoffs", models.StagePlayoff, models.PairingElimination)
	}
	return tt
}

func addTestStage(t *testing.T, conn *db.DB, tournamentID, name string, order int, pairing string) string {
	t.Helper()

	stageID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO stage (id, tournament_id, name, stage_order, pairing_strategy)
		VALUES (?, ?, ?, ?, ?)
	`, stageID, tournamentID, name, order, pairing)
	if err != nil {
		t.Fatalf("Failed to create test stage: %v", err)
	}

	for i, key := range ranking.EnabledKeys(ranking.DefaultsForStage(order)) {
		_, err := conn.Exec(`
			INSERT INTO stage_ranking_criteria (stage_id, criterion_key, criterion_order)
			VALUES (?, ?, ?)
		`, stageID, key, i+1)
		if err != nil {
			t.Fatalf("Failed to create test criteria: %v", err)
		}
	}
	return stageID
}

// AddTestPlayer adds a player to the tournament and enters them in stageID
// with the given seed. It returns the stage player ID.
func AddTestPlayer(t *testing.T, conn *db.DB, tournamentID, stageID, name string, seed int) string {
	t.Helper()

	playerID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO player (id, tournament_id, name, created_at) VALUES (?, ?, ?, ?)
	`, playerID, tournamentID, name, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test player: %v", err)
	}

	stagePlayerID, _ := auth.GenerateID(12)
	_, err = conn.Exec(`
		INSERT INTO stage_player (id, stage_id, player_id, seed) VALUES (?, ?, ?, ?)
	`, stagePlayerID, stageID, playerID, seed)
	if err != nil {
		t.Fatalf("Failed to enter test player: %v", err)
	}
	return stagePlayerID
}

// RecordTestMatch stores a round 1 result. An empty winner is a tie and an
// empty two is a bye.
func RecordTestMatch(t *testing.T, conn *db.DB, stageID, one, two, winner string, oneScore, twoScore int) string {
	t.Helper()

	matchID, _ := auth.GenerateID(12)
	var playerTwo, winnerID any
	if two != "" {
		playerTwo = two
	}
	if winner != "" {
		winnerID = winner
	}
	_, err := conn.Exec(`
		INSERT INTO match_result
			(id, stage_id, round_number, player_one_id, player_two_id, winner_id,
			 player_one_score, player_two_score, reported_at)
		VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?)
	`, matchID, stageID, one, playerTwo, winnerID, oneScore, twoScore, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to record test match: %v", err)
	}
	return matchID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
