package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"lingvocards/internal/models"
	"lingvocards/internal/service"
)

const maxBackupBytes = 50 << 20

// AdminHandler handles content authoring and maintenance requests
type AdminHandler struct {
	topicService    *service.TopicService
	practiceService *service.PracticeService
	backupService   *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(topicService *service.TopicService, practiceService *service.PracticeService, backupService *service.BackupService) *AdminHandler {
	return &AdminHandler{
		topicService:    topicService,
		practiceService: practiceService,
		backupService:   backupService,
	}
}

// CreateTopic handles POST /api/admin/topics
func (h *AdminHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Difficulty  string `json:"difficulty"`
		Icon        string `json:"icon"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	topic := &models.Topic{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Icon:        req.Icon,
	}
	if err := h.topicService.CreateTopic(r.Context(), topic); err != nil {
		respondServiceError(w, "Error creating topic", err)
		return
	}

	log.Printf("Topic %s created by %s", topic.ID, GetUserFromContext(r.Context()).Email)
	respondJSON(w, http.StatusCreated, newTopicView(models.TopicWithProgress{Topic: *topic}))
}

// AddCard handles POST /api/admin/topics/{topicId}/cards
func (h *AdminHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term          string `json:"term"`
		Translation   string `json:"translation"`
		Transcription string `json:"transcription"`
		PartOfSpeech  string `json:"part_of_speech"`
		Example       string `json:"example"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	word := &models.Word{
		Term:          req.Term,
		Translation:   req.Translation,
		Transcription: req.Transcription,
		PartOfSpeech:  req.PartOfSpeech,
		Example:       req.Example,
	}
	if err := h.topicService.AddCard(r.Context(), r.PathValue("topicId"), word); err != nil {
		respondServiceError(w, "Error adding card", err)
		return
	}
	respondJSON(w, http.StatusCreated, newWordView(*word))
}

// ListQuestions handles GET /api/admin/topics/{topicId}/questions. Unlike
// runs, this listing includes the correct answers.
func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.topicService.ResolveQuestions(r.Context(), r.PathValue("topicId"))
	if err != nil {
		respondServiceError(w, "Error listing questions", err)
		return
	}

	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, newQuestionView(q))
	}
	respondJSON(w, http.StatusOK, views)
}

// AddQuestion handles POST /api/admin/topics/{topicId}/questions
func (h *AdminHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WordID        int64    `json:"word_id"`
		Term          string   `json:"term"`
		CorrectAnswer string   `json:"correct_answer"`
		Options       []string `json:"options"`
		Explanation   string   `json:"explanation"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	q := &models.Question{
		WordID:        req.WordID,
		Term:          req.Term,
		CorrectAnswer: req.CorrectAnswer,
		Options:       req.Options,
		Explanation:   req.Explanation,
	}
	if err := h.topicService.AddQuestion(r.Context(), r.PathValue("topicId"), q); err != nil {
		respondServiceError(w, "Error adding question", err)
		return
	}
	respondJSON(w, http.StatusCreated, newQuestionView(*q))
}

// SeedTopics handles POST /api/admin/seed. Existing topics are left alone.
func (h *AdminHandler) SeedTopics(w http.ResponseWriter, r *http.Request) {
	if err := h.topicService.SeedDefaultTopics(r.Context()); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to seed topics", "Error seeding topics", err)
		return
	}
	if err := h.topicService.GenerateMissingAudio(r.Context()); err != nil {
		log.Printf("Warning: Failed to generate audio files: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{"active_runs": h.practiceService.ActiveRuns()})
}

// ExportDatabase handles GET /api/admin/backup
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.backupService.ExportToWriter(r.Context(), &buf); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export database", "Error exporting database", err)
		return
	}

	filename := fmt.Sprintf("lingvocards_backup_%s.json", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing backup: %v", err)
		return
	}

	log.Printf("Database exported by admin user %s", GetUserFromContext(r.Context()).Email)
}

// ImportDatabase handles POST /api/admin/backup?clear=true with a backup as
// the body
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if r.URL.Query().Get("clear") == "true" {
		log.Printf("Admin %s requested database clear before import", user.Email)
		if err := h.backupService.Clear(r.Context()); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to clear database", "Error clearing database", err)
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBackupBytes)
	if err := h.backupService.ImportFromReader(r.Context(), r.Body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import database", "Error importing database", err)
		return
	}

	log.Printf("Database imported by admin user %s", user.Email)
	w.WriteHeader(http.StatusNoContent)
}
