package handlers

import (
	"net/http"
	"sort"
	"strings"

	"lingvocards/internal/security"
	"lingvocards/internal/service"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	appBaseURL           string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL, appBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		appBaseURL:           appBaseURL,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// signIn sets the session cookie and writes the user with a fresh CSRF token
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, status int, sessionID string) {
	user, err := h.authService.ValidateSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, "Error loading new session", err)
		return
	}
	token, err := h.csrf.GenerateToken(sessionID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error generating CSRF token", err)
		return
	}
	respondJSON(w, status, authResponse{User: newUserView(user), CSRFToken: token})
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name); err != nil {
		respondServiceError(w, "Error registering user", err)
		return
	}

	session, _, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, "Error logging in new user", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.ID, session.ExpiresAt))
	h.signIn(w, r, http.StatusCreated, session.ID)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, _, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, "Error logging in", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.ID, session.ExpiresAt))
	h.signIn(w, r, http.StatusOK, session.ID)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), GetSessionIDFromContext(r.Context())); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error logging out", err)
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newUserView(GetUserFromContext(r.Context())))
}

// UpdateMe handles PATCH /api/auth/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user := GetUserFromContext(r.Context())
	if err := h.authService.UpdateName(r.Context(), user.ID, req.Name); err != nil {
		respondServiceError(w, "Error updating name", err)
		return
	}

	updated := *user
	updated.Name = strings.TrimSpace(req.Name)
	respondJSON(w, http.StatusOK, newUserView(&updated))
}

// CSRFToken handles GET /api/csrf
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.GenerateToken(GetSessionIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, ErrAuthRequired, "", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

// RequestPasswordReset handles POST /api/auth/password-reset. The response
// is the same whether or not the email is registered.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error requesting password reset", err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "If the email is registered, a reset link has been sent"})
}

// CheckPasswordResetToken handles GET /api/auth/password-reset/{token}
func (h *AuthHandler) CheckPasswordResetToken(w http.ResponseWriter, r *http.Request) {
	valid, err := h.authService.ValidatePasswordResetToken(r.Context(), r.PathValue("token"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error checking reset token", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// ResetPassword handles POST /api/auth/password-reset/confirm
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondServiceError(w, "Error resetting password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Providers handles GET /api/auth/providers
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	views := h.oauthProviderViews()
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	respondJSON(w, http.StatusOK, views)
}
