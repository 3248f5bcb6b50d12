package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/crosscourt/shuttletrack/internal/club"
)

// CreateGroupHandler creates a group and, optionally, its initial players.
func CreateGroupHandler(store club.ClubStore) http.HandlerFunc {
	type request struct {
		Name    string   `json:"name"`
		Players []string `json:"players"`
	}
	type response struct {
		Group   *club.Group        `json:"group"`
		Players []club.GroupPlayer `json:"players"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "Group name is required", http.StatusBadRequest)
			return
		}

		group, err := store.CreateGroup(req.Name)
		if err != nil {
			log.Error("Failed to create group", "error", err)
			http.Error(w, "Failed to create group", http.StatusInternalServerError)
			return
		}

		players := make([]club.GroupPlayer, 0, len(req.Players))
		for _, name := range req.Players {
			player, err := store.CreateGroupPlayer(group.ID, name)
			if err != nil {
				log.Error("Failed to create group player", "group_id", group.ID, "name", name, "error", err)
				http.Error(w, "Failed to create group player", http.StatusInternalServerError)
				return
			}
			players = append(players, *player)
		}

		log.Info("Created group", "group_id", group.ID, "name", group.Name, "players", len(players))
		respondJSON(w, http.StatusCreated, response{Group: group, Players: players})
	}
}

func ListGroupsHandler(store club.ClubStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := store.ListGroups()
		if err != nil {
			log.Error("Failed to list groups", "error", err)
			http.Error(w, "Failed to list groups", http.StatusInternalServerError)
			return
		}
		if groups == nil {
			groups = []club.Group{}
		}
		respondJSON(w, http.StatusOK, groups)
	}
}

// DeleteGroupHandler removes a group and everything owned by it.
func DeleteGroupHandler(store club.ClubStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		if groupID == "" {
			http.Error(w, "groupID is required", http.StatusBadRequest)
			return
		}
		if err := store.DeleteGroup(groupID); err != nil {
			log.Error("Failed to delete group", "group_id", groupID, "error", err)
			http.Error(w, "Failed to delete group", http.StatusInternalServerError)
			return
		}
		log.Info("Deleted group", "group_id", groupID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListGroupPlayersHandler returns the durable players of a group.
func ListGroupPlayersHandler(store club.ClubStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		if groupID == "" {
			http.Error(w, "groupID is required", http.StatusBadRequest)
			return
		}
		players, err := store.ListGroupPlayers(groupID)
		if err != nil {
			log.Error("Failed to list group players", "group_id", groupID, "error", err)
			http.Error(w, "Failed to list group players", http.StatusInternalServerError)
			return
		}
		if players == nil {
			players = []club.GroupPlayer{}
		}
		respondJSON(w, http.StatusOK, players)
	}
}

// PromotePlayerHandler turns a session guest into a durable group player and
// links the roster entry so future games count toward group stats.
func PromotePlayerHandler(store club.ClubStore) http.HandlerFunc {
	type request struct {
		GroupID         string `json:"group_id"`
		SessionPlayerID string `json:"session_player_id"`
		Name            string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.GroupID == "" || req.SessionPlayerID == "" || req.Name == "" {
			http.Error(w, "group_id, session_player_id and name are required", http.StatusBadRequest)
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

		player, err := store.CreateGroupPlayer(req.GroupID, req.Name)
		if err != nil {
			log.Error("Failed to create group player", "group_id", req.GroupID, "name", req.Name, "error", err)
			http.Error(w, "Failed to create group player", http.StatusInternalServerError)
			return
		}
		if err := store.LinkGroupPlayer(req.SessionPlayerID, player.ID); err != nil {
			log.Error("Failed to link session player", "session_player_id", req.SessionPlayerID, "group_player_id", player.ID, "error", err)
			http.Error(w, "Failed to link session player", http.StatusInternalServerError)
			return
		}

		log.Info("Promoted session player", "group_id", req.GroupID, "session_player_id", req.SessionPlayerID, "group_player_id", player.ID)
		respondJSON(w, http.StatusCreated, player)
	}
}
