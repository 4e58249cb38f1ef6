package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"lingvocards/internal/service"
)

// PracticeHandler exposes learning runs over HTTP
type PracticeHandler struct {
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

// StartRun handles POST /api/runs
func (h *PracticeHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		TopicID  string `json:"topic_id"`
		Modality string `json:"modality"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TopicID == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "topic_id is required", Field: "topic_id"})
		return
	}

	state, err := h.practiceService.StartRun(r.Context(), user.ID, req.TopicID, req.Modality)
	if err != nil {
		respondServiceError(w, "Error starting run", err)
		return
	}
	respondJSON(w, http.StatusCreated, state)
}

// GetRun handles GET /api/runs/{runId}
func (h *PracticeHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	state, err := h.practiceService.GetRun(r.Context(), user.ID, r.PathValue("runId"))
	if err != nil {
		respondServiceError(w, "Error loading run", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// ExitRun handles DELETE /api/runs/{runId}
func (h *PracticeHandler) ExitRun(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.practiceService.ExitRun(user.ID, r.PathValue("runId")); err != nil {
		respondServiceError(w, "Error exiting run", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type actionRequest struct {
	Answer string `json:"answer"`
	Key    string `json:"key"`
}

// Apply handles POST /api/runs/{runId}/{op}. The body is optional and only
// read by select (answer) and key (key).
func (h *PracticeHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	h.apply(w, r, service.Action{Op: service.Op(r.PathValue("op")), Answer: req.Answer, Key: req.Key})
}

// PressKey handles POST /api/runs/{runId}/keys
func (h *PracticeHandler) PressKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	h.apply(w, r, service.Action{Op: service.OpKey, Key: req.Key})
}

func (h *PracticeHandler) apply(w http.ResponseWriter, r *http.Request, action service.Action) {
	user := GetUserFromContext(r.Context())

	state, err := h.practiceService.Apply(r.Context(), user.ID, r.PathValue("runId"), action)
	if err != nil {
		respondServiceError(w, "Error applying "+string(action.Op), err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}
