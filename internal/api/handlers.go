package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/moonlitlabs/oneiro/internal/journal"
	"github.com/moonlitlabs/oneiro/internal/types"
	"github.com/moonlitlabs/oneiro/internal/validation"
)

// DreamCounter provides the aggregate count for health reporting.
type DreamCounter interface {
	CountDreams(ctx context.Context) (int64, error)
}

// Handler implements the API handlers over the journal.
type Handler struct {
	journal  *journal.Journal
	counter  DreamCounter
	provider string
	apiKey   string
	version  string
}

// NewHandler creates a new Handler.
func NewHandler(j *journal.Journal, counter DreamCounter, provider, apiKey, version string) *Handler {
	return &Handler{
		journal:  j,
		counter:  counter,
		provider: provider,
		apiKey:   apiKey,
		version:  version,
	}
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.counter.CountDreams(r.Context())
	if err != nil {
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, types.HealthResponse{
		Status:     "healthy",
		Version:    h.version,
		Provider:   h.provider,
		DreamCount: count,
	})
}

// ListDreams handles GET /api/v1/dreams. The optional category and q query
// parameters set the journal's filters before the filtered view is returned.
func (h *Handler) ListDreams(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	category := r.URL.Query().Get("category")
	if err := validation.ValidateCategory("category", category); err != nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*err})
		return
	}

	if _, err := h.journal.FetchDreams(r.Context(), user); err != nil {
		slog.Error("fetch dreams failed", "error", err, "user", user)
		MapJournalError(w, r, err)
		return
	}

	h.journal.SetCategory(types.Category(category))
	h.journal.SetSearchQuery(r.URL.Query().Get("q"))

	respondJSON(w, http.StatusOK, types.DreamListResponse{Dreams: h.journal.FilteredDreams()})
}

// CreateDream handles POST /api/v1/dreams
func (h *Handler) CreateDream(w http.ResponseWriter, r *http.Request) {
	var req types.CreateDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateCreateDreamRequest(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	var dreamDate *time.Time
	if req.DreamDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DreamDate)
		if err != nil {
			WriteProblem(w, r, http.StatusBadRequest, "dream_date must be a YYYY-MM-DD date")
			return
		}
		dreamDate = &parsed
	}

	user := UserFromContext(r.Context())
	id, err := h.journal.AddDream(r.Context(), user, journal.AddDreamInput{
		Title:     req.Title,
		Content:   req.Content,
		Category:  types.Category(req.Category),
		Language:  req.Language,
		DreamDate: dreamDate,
	})
	if err != nil {
		slog.Error("create dream failed", "error", err, "user", user)
		MapJournalError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, types.CreateDreamResponse{ID: id})
}

// GetDream handles GET /api/v1/dreams/{id}
func (h *Handler) GetDream(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	dreamID := chi.URLParam(r, "id")

	dream, err := h.journal.FetchDreamByID(r.Context(), user, dreamID)
	if err != nil {
		MapJournalError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dream)
}

// DeleteDream handles DELETE /api/v1/dreams/{id}
func (h *Handler) DeleteDream(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	dreamID := chi.URLParam(r, "id")

	if err := h.journal.DeleteDream(r.Context(), user, dreamID); err != nil {
		MapJournalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateImage handles POST /api/v1/dreams/{id}/image
func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	dreamID := chi.URLParam(r, "id")

	dream, err := h.journal.FetchDreamByID(r.Context(), user, dreamID)
	if err != nil {
		MapJournalError(w, r, err)
		return
	}

	if err := h.journal.GenerateDreamImage(r.Context(), user, dreamID, dream.Content); err != nil {
		slog.Error("generate image failed", "error", err, "user", user, "dream_id", dreamID)
		MapJournalError(w, r, err)
		return
	}

	current := h.journal.CurrentDream()
	if current == nil {
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, types.GenerateImageResponse{ImageURL: current.ImageURL})
}

// Calendar handles GET /api/v1/calendar
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if _, err := h.journal.FetchDreams(r.Context(), user); err != nil {
		MapJournalError(w, r, err)
		return
	}

	if date := r.URL.Query().Get("date"); date != "" {
		respondJSON(w, http.StatusOK, types.DreamListResponse{Dreams: h.journal.DreamsOn(date)})
		return
	}

	respondJSON(w, http.StatusOK, types.CalendarResponse{Days: h.journal.CalendarMarks()})
}

// Stats handles GET /api/v1/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if _, err := h.journal.FetchDreams(r.Context(), user); err != nil {
		MapJournalError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, h.journal.Stats())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
