package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	now := time.Now().Unix()
	groupID := uuid.NewString()
	_, err = db.Exec("INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)", groupID, "Seeder Group", now)
	if err != nil {
		log.Fatalf("Failed to insert seeder group: %s", err)
	}

	names := []string{"Seeder Player A", "Seeder Player B", "Seeder Player C", "Seeder Player D"}
	groupPlayerIDs := make([]string, len(names))
	for i, name := range names {
		groupPlayerIDs[i] = uuid.NewString()
		_, err := db.Exec(
			"INSERT INTO group_players (id, group_id, name, created_at) VALUES (?, ?, ?, ?)",
			groupPlayerIDs[i], groupID, name, now)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", name, err)
		}
	}
	log.Info("Ensured dummy players exist.")

	const batchSize = 100 // sessions per transaction batch
	const numSessions = 2000

	log.Info("Preparing to insert dummy sessions...", "total", numSessions, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	gameValues := make([]string, 0, batchSize*3)
	gameArgs := make([]interface{}, 0, batchSize*3*9)

	for i := 0; i < numSessions; i++ {
		sessionID := uuid.NewString()
		playedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour).Unix()
		_, err := tx.Exec(`
			INSERT INTO sessions (id, group_id, name, mode, court_cost, shuttle_cost, played_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, groupID, fmt.Sprintf("Seeded session %d", i+1), "doubles", 48000, 12000, playedAt, now)
		if err != nil {
			tx.Rollback()
			log.Fatalf("Failed to insert session: %s", err)
		}

		sessionPlayerIDs := make([]string, len(groupPlayerIDs))
		for j, gpID := range groupPlayerIDs {
			sessionPlayerIDs[j] = uuid.NewString()
			_, err := tx.Exec(
				"INSERT INTO session_players (id, session_id, group_player_id, name) VALUES (?, ?, ?, ?)",
				sessionPlayerIDs[j], sessionID, gpID, names[j])
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to insert session player: %s", err)
			}
		}

		// The three doubles pairings for a four-player roster.
		pairings := [][4]int{{0, 1, 2, 3}, {0, 2, 1, 3}, {0, 3, 1, 2}}
		for n, p := range pairings {
			teamA, _ := json.Marshal([]string{sessionPlayerIDs[p[0]], sessionPlayerIDs[p[1]]})
			teamB, _ := json.Marshal([]string{sessionPlayerIDs[p[2]], sessionPlayerIDs[p[3]]})

			winner := "A"
			scoreA, scoreB := 21, 10+rand.Intn(10)
			if rand.Intn(2) == 1 {
				winner = "B"
				scoreA, scoreB = scoreB, scoreA
			}

			gameValues = append(gameValues, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			gameArgs = append(gameArgs,
				uuid.NewString(), sessionID, n+1, string(teamA), string(teamB), winner, scoreA, scoreB, now)
		}

		if (i+1)%batchSize == 0 || (i+1) == numSessions {
			stmt := fmt.Sprintf(`
				INSERT INTO games (id, session_id, game_number, team_a_json, team_b_json, winning_team, team_a_score, team_b_score, created_at)
				VALUES %s;`, strings.Join(gameValues, ","))

			_, err := tx.Exec(stmt, gameArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			gameValues = make([]string, 0, batchSize*3)
			gameArgs = make([]interface{}, 0, batchSize*3*9)
			log.Info("Inserted batch", "completed", i+1, "total", numSessions)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy sessions.", "duration", duration)
}
