package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fortuna/veto/internal/results"
	"github.com/fortuna/veto/internal/scrape"
	"github.com/fortuna/veto/internal/store"
)

const (
	defaultLimit = 5
	maxLimit     = 20
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	results *results.Service
	db      *store.Database
}

// NewHandler creates a new handler. db may be nil when the process runs
// without persistence.
func NewHandler(svc *results.Service, db *store.Database) *Handler {
	return &Handler{
		results: svc,
		db:      db,
	}
}

// matchDTO is the API shape of a match, with display sentinels applied
// to fields the scraper could not resolve.
type matchDTO struct {
	TeamA     string `json:"team_a"`
	TeamB     string `json:"team_b"`
	ScoreA    string `json:"score_a"`
	ScoreB    string `json:"score_b"`
	Event     string `json:"event"`
	Stage     string `json:"stage,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	URL       string `json:"url,omitempty"`
}

func toDTO(records []scrape.MatchRecord) []matchDTO {
	out := make([]matchDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, matchDTO{
			TeamA:     rec.TeamA.Or(scrape.UnknownTeam),
			TeamB:     rec.TeamB.Or(scrape.UnknownTeam),
			ScoreA:    rec.ScoreA.Or(scrape.UnknownScore),
			ScoreB:    rec.ScoreB.Or(scrape.UnknownScore),
			Event:     rec.Event.Or(scrape.UnknownEvent),
			Stage:     rec.Stage.Or(""),
			StartTime: rec.StartTime.Or(""),
			URL:       rec.URL,
		})
	}
	return out
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.results.Health().Snapshot()

	dbStatus := "disabled"
	if h.db != nil {
		dbStatus = "healthy"
		if err := h.db.HealthCheck(); err != nil {
			dbStatus = "unhealthy"
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"service":     "veto",
		"scrape":      snap,
		"database":    dbStatus,
		"cache_slots": h.results.CacheStats(),
	})
}

// GetRecentResults returns the latest completed matches
func (h *Handler) GetRecentResults(w http.ResponseWriter, r *http.Request) {
	records, err := h.results.Recent(r.Context(), limitParam(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch recent results", err)
		return
	}

	respondJSON(w, http.StatusOK, toDTO(records))
}

// GetUpcomingMatches returns the next scheduled matches
func (h *Handler) GetUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	records, err := h.results.UpcomingMatches(r.Context(), limitParam(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch upcoming matches", err)
		return
	}

	respondJSON(w, http.StatusOK, toDTO(records))
}

// GetTeamResults returns recent matches for one team. The path segment
// is resolved through the alias and fuzzy matcher, and the resolved
// name is echoed in the response.
func (h *Handler) GetTeamResults(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	records, resolved, err := h.results.ForTeam(r.Context(), name, limitParam(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch team results", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team":    resolved,
		"matches": toDTO(records),
	})
}

// GetEventResults returns recent matches for one tournament
func (h *Handler) GetEventResults(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	records, resolved, err := h.results.ForTournament(r.Context(), name, limitParam(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch event results", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event":   resolved,
		"matches": toDTO(records),
	})
}

// limitParam reads the limit query parameter, clamped to [1, maxLimit].
func limitParam(r *http.Request) int {
	limitStr := r.URL.Query().Get("limit")
	limit := defaultLimit
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
