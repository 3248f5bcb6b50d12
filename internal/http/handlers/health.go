package handlers

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/crosscourt/shuttletrack/internal/club"
)

func HealthCheckHandler(store club.ClubStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}
