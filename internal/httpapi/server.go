package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"coach-planner/internal/app"
	"coach-planner/internal/macros"
	"coach-planner/internal/planner"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxListLimit caps how many plans a list request returns.
const maxListLimit = 50

// Planner is the part of the app the API serves.
type Planner interface {
	GenerateWeekPlan(ctx context.Context, req app.GenerateRequest) (*app.GenerateResult, error)
	RecentPlans(ctx context.Context, clientID string, limit int) ([]planner.StoredPlan, error)
	LatestPlan(ctx context.Context, clientID string) (*planner.StoredPlan, error)
}

// Server is the JSON HTTP API.
type Server struct {
	planner Planner
	secret  []byte
	extra   map[string]http.Handler
}

// NewServer creates a Server. Routes under /api require a bearer token signed with secret.
func NewServer(p Planner, secret []byte) *Server {
	return &Server{planner: p, secret: secret, extra: make(map[string]http.Handler)}
}

// Mount adds an unauthenticated handler, such as the Telegram webhook.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.extra[pattern] = h
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	for pattern, h := range s.extra {
		r.Handle(pattern, h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireToken(s.secret))
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/clients/{clientID}/week-plans", func(r chi.Router) {
			r.Post("/", s.createWeekPlan)
			r.Get("/", s.listWeekPlans)
			r.Get("/latest", s.latestWeekPlan)
		})
	})
	return r
}

type createRequest struct {
	MealsPerDay  int    `json:"mealsPerDay"`
	VarietyLevel string `json:"varietyLevel"`
	Archive      bool   `json:"archive"`
	Note         bool   `json:"note"`
	Publish      bool   `json:"publish"`
}

type createResponse struct {
	ID             string            `json:"id"`
	Plan           *planner.WeekPlan `json:"plan"`
	ArchiveVersion string            `json:"archiveVersion,omitempty"`
	Note           string            `json:"note,omitempty"`
	PostURL        string            `json:"postUrl,omitempty"`
}

func (s *Server) createWeekPlan(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	prefs := planner.Preferences{MealsPerDay: macros.MealsPerDay(body.MealsPerDay)}
	if body.VarietyLevel != "" {
		level, err := planner.ParseVarietyLevel(body.VarietyLevel)
		if err != nil {
			writeError(w, err)
			return
		}
		prefs.VarietyLevel = level
	}

	clientID := chi.URLParam(r, "clientID")
	log.Printf("Week plan for client %s requested by %s", clientID, Subject(r.Context()))

	res, err := s.planner.GenerateWeekPlan(r.Context(), app.GenerateRequest{
		ClientID:    clientID,
		Preferences: prefs,
		Archive:     body.Archive,
		WithNote:    body.Note,
		Publish:     body.Publish,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := createResponse{
		ID:             res.PlanID,
		Plan:           res.Plan,
		ArchiveVersion: res.ArchiveVersion,
		Note:           res.Note,
	}
	if res.Post != nil {
		resp.PostURL = res.Post.URL
	}
	writeJSON(w, http.StatusCreated, resp)
}

type storedPlanResponse struct {
	ID           string          `json:"id"`
	GeneratedAt  time.Time       `json:"generatedAt"`
	MealsPerDay  int             `json:"mealsPerDay"`
	VarietyLevel string          `json:"varietyLevel"`
	Plan         json.RawMessage `json:"plan"`
}

func toStoredResponse(p planner.StoredPlan) storedPlanResponse {
	return storedPlanResponse{
		ID:           p.ID,
		GeneratedAt:  p.GeneratedAt,
		MealsPerDay:  p.MealsPerDay,
		VarietyLevel: p.VarietyLevel,
		Plan:         json.RawMessage(p.PlanData),
	}
}

func (s *Server) listWeekPlans(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	plans, err := s.planner.RecentPlans(r.Context(), chi.URLParam(r, "clientID"), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]storedPlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toStoredResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": out})
}

func (s *Server) latestWeekPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.planner.LatestPlan(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeJSONError(w, http.StatusNotFound, "no plans stored for this client")
		return
	}
	writeJSON(w, http.StatusOK, toStoredResponse(*p))
}

// writeError maps domain errors to status codes. Unknown errors are logged, not echoed.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrClientNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, macros.ErrUnsupportedMealsPerDay), errors.Is(err, planner.ErrUnknownVarietyLevel):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, planner.ErrNoMealsAvailable):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeJSONError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		log.Printf("API error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
