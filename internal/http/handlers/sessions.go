package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/crosscourt/shuttletrack/internal/club"
	"github.com/crosscourt/shuttletrack/internal/schedule"
)

// CreateSessionHandler creates a session with its roster and generates the
// round-robin game schedule for it in one shot.
func CreateSessionHandler(store club.ClubStore) http.HandlerFunc {
	type rosterEntry struct {
		Name          string  `json:"name"`
		GroupPlayerID *string `json:"group_player_id,omitempty"`
	}
	type request struct {
		GroupID     string        `json:"group_id"`
		Name        string        `json:"name"`
		Mode        string        `json:"mode"`
		CourtCost   int64         `json:"court_cost"`
		ShuttleCost int64         `json:"shuttle_cost"`
		PlayedAt    int64         `json:"played_at"`
		MaxGames    int           `json:"max_games"`
		Players     []rosterEntry `json:"players"`
	}
	type response struct {
		Session *club.Session        `json:"session"`
		Players []club.SessionPlayer `json:"players"`
		Games   []club.Game          `json:"games"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.GroupID == "" || req.Name == "" {
			http.Error(w, "group_id and name are required", http.StatusBadRequest)
			return
		}

		mode := schedule.Mode(req.Mode)
		if mode != schedule.ModeSingles && mode != schedule.ModeDoubles {
			http.Error(w, "mode must be 'singles' or 'doubles'", http.StatusBadRequest)
			return
		}
		if !schedule.SupportsPlayerCount(mode, len(req.Players)) {
			http.Error(w, "unsupported player count for mode", http.StatusBadRequest)
			return
		}

		group, err := store.GetGroup(req.GroupID)
		if err != nil {
			log.Error("Failed to load group", "group_id", req.GroupID, "error", err)
			http.Error(w, "Failed to load group", http.StatusInternalServerError)
			return
		}
		if group == nil {
			http.Error(w, "Group not found", http.StatusNotFound)
			return
		}

		session, err := store.CreateSession(req.GroupID, req.Name, req.Mode, req.CourtCost, req.ShuttleCost, req.PlayedAt)
		if err != nil {
			log.Error("Failed to create session", "group_id", req.GroupID, "error", err)
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		players := make([]club.SessionPlayer, 0, len(req.Players))
		playerIDs := make([]string, 0, len(req.Players))
		for _, entry := range req.Players {
			player, err := store.AddSessionPlayer(session.ID, entry.Name, entry.GroupPlayerID)
			if err != nil {
				log.Error("Failed to add session player", "session_id", session.ID, "name", entry.Name, "error", err)
				http.Error(w, "Failed to add session player", http.StatusInternalServerError)
				return
			}
			players = append(players, *player)
			playerIDs = append(playerIDs, player.ID)
		}

		scheduled := schedule.Generate(playerIDs, req.MaxGames, mode)
		games, err := store.CreateGames(session.ID, scheduled)
		if err != nil {
			log.Error("Failed to create games", "session_id", session.ID, "error", err)
			http.Error(w, "Failed to create games", http.StatusInternalServerError)
			return
		}

		log.Info("Created session", "session_id", session.ID, "mode", req.Mode, "players", len(players), "games", len(games))
		respondJSON(w, http.StatusCreated, response{Session: session, Players: players, Games: games})
	}
}

func ListSessionsHandler(store club.ClubStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		if groupID == "" {
			http.Error(w, "groupID is required", http.StatusBadRequest)
			return
		}
		sessions, err := store.ListSessions(groupID)
		if err != nil {
			log.Error("Failed to list sessions", "group_id", groupID, "error", err)
			http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
			return
		}
		if sessions == nil {
			sessions = []club.Session{}
		}
		respondJSON(w, http.StatusOK, sessions)
	}
}

// SessionCostHandler returns the per-player split of a session's costs.
func SessionCostHandler(store club.ClubStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")
		if sessionID == "" {
			http.Error(w, "sessionID is required", http.StatusBadRequest)
			return
		}
		cost, err := store.SessionCost(sessionID)
		if err != nil {
			log.Error("Failed to compute session cost", "session_id", sessionID, "error", err)
			http.Error(w, "Failed to compute session cost", http.StatusInternalServerError)
			return
		}
		if cost == nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, cost)
	}
}
