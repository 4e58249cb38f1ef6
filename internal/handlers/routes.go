package handlers

import (
	"net/http"

	"lingvocards/internal/service"
)

// Routes bundles the handlers served by the API
type Routes struct {
	Middleware *Middleware
	Startup    *StartupStatus
	Auth       *AuthHandler
	Topics     *TopicHandler
	Practice   *PracticeHandler
	Profile    *ProfileHandler
	Admin      *AdminHandler
	AudioDir   string
}

// Handler builds the request multiplexer wrapped with request logging
func (rt *Routes) Handler() http.Handler {
	m := rt.Middleware
	mux := http.NewServeMux()

	if rt.AudioDir != "" {
		mux.Handle("GET "+service.AudioURLPrefix, http.StripPrefix(service.AudioURLPrefix, http.FileServer(http.Dir(rt.AudioDir))))
	}
	if rt.Startup != nil {
		mux.HandleFunc("GET /healthz", rt.Startup.Health)
	}

	// Identity
	mux.HandleFunc("POST /api/auth/register", m.RateLimit(rt.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", m.Protected(rt.Auth.Logout))
	mux.HandleFunc("GET /api/auth/me", m.RequireAuth(rt.Auth.Me))
	mux.HandleFunc("PATCH /api/auth/me", m.Protected(rt.Auth.UpdateMe))
	mux.HandleFunc("GET /api/auth/providers", rt.Auth.Providers)
	mux.HandleFunc("POST /api/auth/password-reset", m.RateLimit(rt.Auth.RequestPasswordReset))
	mux.HandleFunc("GET /api/auth/password-reset/{token}", rt.Auth.CheckPasswordResetToken)
	mux.HandleFunc("POST /api/auth/password-reset/confirm", m.RateLimit(rt.Auth.ResetPassword))
	mux.HandleFunc("GET /api/csrf", m.RequireAuth(rt.Auth.CSRFToken))
	mux.HandleFunc("GET /auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", rt.Auth.OAuthCallback)

	// Catalog
	mux.HandleFunc("GET /api/topics", m.RequireAuth(rt.Topics.ListTopics))
	mux.HandleFunc("GET /api/topics/{topicId}", m.RequireAuth(rt.Topics.GetTopic))

	// Learning runs
	mux.HandleFunc("POST /api/runs", m.Protected(rt.Practice.StartRun))
	mux.HandleFunc("GET /api/runs/{runId}", m.RequireAuth(rt.Practice.GetRun))
	mux.HandleFunc("DELETE /api/runs/{runId}", m.Protected(rt.Practice.ExitRun))
	mux.HandleFunc("POST /api/runs/{runId}/keys", m.Protected(rt.Practice.PressKey))
	mux.HandleFunc("POST /api/runs/{runId}/{op}", m.Protected(rt.Practice.Apply))

	// Progress
	mux.HandleFunc("GET /api/profile", m.RequireAuth(rt.Profile.Profile))
	mux.HandleFunc("GET /api/dictionary", m.RequireAuth(rt.Profile.Dictionary))
	mux.HandleFunc("POST /api/dictionary/{itemId}/favorite", m.Protected(rt.Profile.ToggleFavorite))

	// Admin
	if rt.Admin != nil {
		admin := func(h http.HandlerFunc) http.HandlerFunc { return m.RequireAdmin(m.CSRFProtect(h)) }
		mux.HandleFunc("POST /api/admin/topics", admin(rt.Admin.CreateTopic))
		mux.HandleFunc("POST /api/admin/topics/{topicId}/cards", admin(rt.Admin.AddCard))
		mux.HandleFunc("GET /api/admin/topics/{topicId}/questions", admin(rt.Admin.ListQuestions))
		mux.HandleFunc("POST /api/admin/topics/{topicId}/questions", admin(rt.Admin.AddQuestion))
		mux.HandleFunc("POST /api/admin/seed", admin(rt.Admin.SeedTopics))
		mux.HandleFunc("GET /api/admin/stats", admin(rt.Admin.Stats))
		mux.HandleFunc("GET /api/admin/backup", admin(rt.Admin.ExportDatabase))
		mux.HandleFunc("POST /api/admin/backup", admin(rt.Admin.ImportDatabase))
	}

	return Logging(mux)
}
