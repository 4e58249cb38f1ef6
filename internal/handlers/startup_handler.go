package handlers

import (
	"net/http"
	"sync"
)

// Startup steps reported by /healthz while the server initializes
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepServices   = "Initializing services"
	StepSeeding    = "Seeding default topics"
	StepAudio      = "Generating audio files"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	steps    []string
	complete map[string]bool
}

// NewStartupStatus creates a status tracker for the given steps
func NewStartupStatus(steps ...string) *StartupStatus {
	return &StartupStatus{
		current:  "Initializing...",
		steps:    steps,
		complete: make(map[string]bool, len(steps)),
	}
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed
func (s *StartupStatus) CompleteStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete[step] = true
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
	for _, step := range s.steps {
		s.complete[step] = true
	}
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *StartupStatus) progress() int {
	if len(s.steps) == 0 {
		if s.ready {
			return 100
		}
		return 0
	}
	done := 0
	for _, step := range s.steps {
		if s.complete[step] {
			done++
		}
	}
	return done * 100 / len(s.steps)
}

type healthResponse struct {
	Status   string `json:"status"`
	Current  string `json:"current"`
	Progress int    `json:"progress"`
}

// Health handles GET /healthz. It answers 503 until startup has finished.
func (s *StartupStatus) Health(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := healthResponse{Status: "starting", Current: s.current, Progress: s.progress()}
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Status = "ok"
	respondJSON(w, http.StatusOK, resp)
}
