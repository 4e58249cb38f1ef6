package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lingvocards/internal/service"
	"lingvocards/internal/session"
	"lingvocards/internal/validation"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

// respondServiceError maps a service error to a status. Unknown errors are
// logged and reported as 500 without detail.
func respondServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
		return
	}

	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, status, ErrInternalServerError, logMsg, err)
		return
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrTopicExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrRunNotFound),
		errors.Is(err, service.ErrTopicNotFound),
		errors.Is(err, service.ErrWordNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnsupportedOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrBlockedName),
		errors.Is(err, service.ErrBlockedTerm),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, session.ErrUnknownModality):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return false
	}
	return true
}
