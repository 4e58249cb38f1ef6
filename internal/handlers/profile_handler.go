package handlers

import (
	"net/http"
	"strconv"

	"lingvocards/internal/models"
	"lingvocards/internal/service"
)

const recentResultsLimit = 10

// ProfileHandler serves the profile page data and the personal dictionary
type ProfileHandler struct {
	progressService *service.ProgressService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(progressService *service.ProgressService) *ProfileHandler {
	return &ProfileHandler{progressService: progressService}
}

// Profile handles GET /api/profile
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	stats, err := h.progressService.GetProfileStats(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, "Error loading profile stats", err)
		return
	}
	results, err := h.progressService.GetRecentResults(r.Context(), user.ID, recentResultsLimit)
	if err != nil {
		respondServiceError(w, "Error loading recent results", err)
		return
	}

	respondJSON(w, http.StatusOK, newProfileView(user, stats, results))
}

// Dictionary handles GET /api/dictionary?search=&topic=&status=
func (h *ProfileHandler) Dictionary(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	q := r.URL.Query()

	words, err := h.progressService.ListDictionary(r.Context(), user.ID, models.DictionaryFilter{
		Search:  q.Get("search"),
		TopicID: q.Get("topic"),
		Status:  q.Get("status"),
	})
	if err != nil {
		respondServiceError(w, "Error loading dictionary", err)
		return
	}

	views := make([]dictionaryWordView, 0, len(words))
	for _, dw := range words {
		views = append(views, dictionaryWordView{
			wordView:   newWordView(dw.Word),
			TopicTitle: dw.TopicTitle,
			Learned:    dw.Learned,
			IsFavorite: dw.IsFavorite,
			UpdatedAt:  dw.UpdatedAt,
		})
	}
	respondJSON(w, http.StatusOK, views)
}

// ToggleFavorite handles POST /api/dictionary/{itemId}/favorite
func (h *ProfileHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	wordID, err := strconv.ParseInt(r.PathValue("itemId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID", "", nil)
		return
	}

	fav, err := h.progressService.ToggleFavorite(r.Context(), user.ID, wordID)
	if err != nil {
		respondServiceError(w, "Error toggling favorite", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"item_id": wordID, "is_favorite": fav})
}
