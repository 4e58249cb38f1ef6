package handlers

import (
	"net/http"

	"lingvocards/internal/service"
)

// TopicHandler serves the topic catalog
type TopicHandler struct {
	topicService *service.TopicService
}

// NewTopicHandler creates a new topic handler
func NewTopicHandler(topicService *service.TopicService) *TopicHandler {
	return &TopicHandler{topicService: topicService}
}

// ListTopics handles GET /api/topics?search=
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	topics, err := h.topicService.ListTopics(r.Context(), user.ID, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, "Error listing topics", err)
		return
	}

	views := make([]topicView, 0, len(topics))
	for _, t := range topics {
		views = append(views, newTopicView(t))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetTopic handles GET /api/topics/{topicId}
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	topicID := r.PathValue("topicId")

	topics, err := h.topicService.ListTopics(r.Context(), user.ID, "")
	if err != nil {
		respondServiceError(w, "Error loading topic", err)
		return
	}

	var detail *topicDetailView
	for _, t := range topics {
		if t.ID == topicID {
			detail = &topicDetailView{topicView: newTopicView(t)}
			break
		}
	}
	if detail == nil {
		respondServiceError(w, "", service.ErrTopicNotFound)
		return
	}

	words, err := h.topicService.ResolveCards(r.Context(), topicID)
	if err != nil {
		respondServiceError(w, "Error loading topic words", err)
		return
	}
	questions, err := h.topicService.ResolveQuestions(r.Context(), topicID)
	if err != nil {
		respondServiceError(w, "Error loading topic questions", err)
		return
	}

	detail.Words = make([]wordView, 0, len(words))
	for _, word := range words {
		detail.Words = append(detail.Words, newWordView(word))
	}
	detail.QuestionCount = len(questions)
	respondJSON(w, http.StatusOK, detail)
}
