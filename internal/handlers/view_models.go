package handlers

import (
	"time"

	"lingvocards/internal/models"
	"lingvocards/internal/service"
)

// JSON shapes returned by the API. Models stay free of wire tags.

type userView struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		OAuthProvider: u.OAuthProvider,
		CreatedAt:     u.CreatedAt,
	}
}

type authResponse struct {
	User      userView `json:"user"`
	CSRFToken string   `json:"csrf_token"`
}

type topicView struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Difficulty      string `json:"difficulty"`
	Icon            string `json:"icon"`
	WordCount       int    `json:"word_count"`
	LearnedCount    int    `json:"learned_count"`
	ProgressPercent int    `json:"progress_percent"`
}

func newTopicView(t models.TopicWithProgress) topicView {
	return topicView{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Difficulty:      t.Difficulty,
		Icon:            t.Icon,
		WordCount:       t.WordCount,
		LearnedCount:    t.LearnedCount,
		ProgressPercent: t.ProgressPercent(),
	}
}

type wordView struct {
	ID            int64  `json:"id"`
	TopicID       string `json:"topic_id"`
	Term          string `json:"term"`
	Translation   string `json:"translation"`
	Transcription string `json:"transcription,omitempty"`
	PartOfSpeech  string `json:"part_of_speech,omitempty"`
	Example       string `json:"example,omitempty"`
	AudioURL      string `json:"audio_url,omitempty"`
}

func newWordView(w models.Word) wordView {
	v := wordView{
		ID:            w.ID,
		TopicID:       w.TopicID,
		Term:          w.Term,
		Translation:   w.Translation,
		Transcription: w.Transcription,
		PartOfSpeech:  w.PartOfSpeech,
		Example:       w.Example,
	}
	if w.AudioFilename != "" {
		v.AudioURL = service.AudioURLPrefix + w.AudioFilename
	}
	return v
}

type topicDetailView struct {
	topicView
	Words         []wordView `json:"words"`
	QuestionCount int        `json:"question_count"`
}

type questionView struct {
	ID            int64    `json:"id"`
	WordID        int64    `json:"word_id"`
	Term          string   `json:"term"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options"`
	Explanation   string   `json:"explanation,omitempty"`
}

func newQuestionView(q models.Question) questionView {
	return questionView{
		ID:            q.ID,
		WordID:        q.WordID,
		Term:          q.Term,
		CorrectAnswer: q.CorrectAnswer,
		Options:       q.Options,
		Explanation:   q.Explanation,
	}
}

type dictionaryWordView struct {
	wordView
	TopicTitle string    `json:"topic_title"`
	Learned    bool      `json:"learned"`
	IsFavorite bool      `json:"is_favorite"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type achievementView struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

type resultView struct {
	ID          int64     `json:"id"`
	TopicID     string    `json:"topic_id"`
	Modality    string    `json:"modality"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completed_at"`
}

type profileView struct {
	User              userView          `json:"user"`
	WordsLearned      int               `json:"words_learned"`
	TopicsLearned     int               `json:"topics_learned"`
	StreakDays        int               `json:"streak_days"`
	Accuracy          int               `json:"accuracy"`
	AchievementsCount int               `json:"achievements_count"`
	Achievements      []achievementView `json:"achievements"`
	RecentResults     []resultView      `json:"recent_results"`
}

func newProfileView(u *models.User, stats *models.ProfileStats, results []models.ExerciseResult) profileView {
	v := profileView{
		User:              newUserView(u),
		WordsLearned:      stats.WordsLearned,
		TopicsLearned:     stats.TopicsLearned,
		StreakDays:        stats.StreakDays,
		Accuracy:          stats.Accuracy(),
		AchievementsCount: stats.EarnedCount(),
		Achievements:      make([]achievementView, 0, len(stats.Achievements)),
		RecentResults:     make([]resultView, 0, len(results)),
	}
	for _, a := range stats.Achievements {
		v.Achievements = append(v.Achievements, achievementView(a))
	}
	for _, r := range results {
		v.RecentResults = append(v.RecentResults, resultView{
			ID:          r.ID,
			TopicID:     r.TopicID,
			Modality:    r.Modality,
			Score:       r.Score,
			Total:       r.Total,
			CompletedAt: r.CompletedAt,
		})
	}
	return v
}

type oauthProviderView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	URL   string `json:"url"`
}
