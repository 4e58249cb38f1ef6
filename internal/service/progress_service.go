package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"lingvocards/internal/models"
	"lingvocards/internal/repository"
)

// ErrInvalidStatus is returned for an unknown dictionary status filter
var ErrInvalidStatus = errors.New("invalid status filter")

type achievementRule struct {
	key, name, description string
	earned                 func(s *models.ProfileStats) bool
}

var achievementRules = []achievementRule{
	{"first_steps", "Перші кроки", "Вивчено 10 слів", func(s *models.ProfileStats) bool { return s.WordsLearned >= 10 }},
	{"student", "Студент", "Вивчено 100 слів", func(s *models.ProfileStats) bool { return s.WordsLearned >= 100 }},
	{"explorer", "Дослідник", "Вивчено 5 тем", func(s *models.ProfileStats) bool { return s.TopicsLearned >= 5 }},
	{"master", "Майстер", "Вивчено 500 слів", func(s *models.ProfileStats) bool { return s.WordsLearned >= 500 }},
	{"polyglot", "Поліглот", "Вивчено 1000 слів", func(s *models.ProfileStats) bool { return s.WordsLearned >= 1000 }},
}

// ProgressService serves the profile and the personal dictionary
type ProgressService struct {
	progress *repository.ProgressRepository
	topics   *repository.TopicRepository
	now      func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(progress *repository.ProgressRepository, topics *repository.TopicRepository) *ProgressService {
	return &ProgressService{progress: progress, topics: topics, now: time.Now}
}

// GetProfileStats gathers the numbers shown on the profile page
func (s *ProgressService) GetProfileStats(ctx context.Context, userID int64) (*models.ProfileStats, error) {
	stats := &models.ProfileStats{}
	var err error

	if stats.WordsLearned, err = s.progress.CountLearnedWords(ctx, userID); err != nil {
		return nil, err
	}
	if stats.TopicsLearned, err = s.progress.CountLearnedTopics(ctx, userID); err != nil {
		return nil, err
	}
	if stats.QuizAnswers, stats.CorrectAnswers, err = s.progress.GetQuizAnswerCounts(ctx, userID); err != nil {
		return nil, err
	}

	times, err := s.progress.GetCompletionTimes(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.StreakDays = streakDays(times, s.now())

	for _, rule := range achievementRules {
		stats.Achievements = append(stats.Achievements, models.Achievement{
			Key:         rule.key,
			Name:        rule.name,
			Description: rule.description,
			Earned:      rule.earned(stats),
		})
	}
	return stats, nil
}

// GetRecentResults returns the user's latest finished runs
func (s *ProgressService) GetRecentResults(ctx context.Context, userID int64, limit int) ([]models.ExerciseResult, error) {
	return s.progress.GetResults(ctx, userID, limit)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// streakDays counts consecutive days with at least one finished run. The
// streak must end today or yesterday to count.
func streakDays(times []time.Time, now time.Time) int {
	days := make(map[time.Time]bool, len(times))
	for _, t := range times {
		days[dayOf(t)] = true
	}

	day := dayOf(now)
	if !days[day] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// ListDictionary returns the user's words matching filter. Search matches
// term and translation case-insensitively.
func (s *ProgressService) ListDictionary(ctx context.Context, userID int64, filter models.DictionaryFilter) ([]models.DictionaryWord, error) {
	switch filter.Status {
	case "":
		filter.Status = models.StatusAll
	case models.StatusAll, models.StatusLearned, models.StatusLearning, models.StatusFavorites:
	default:
		return nil, ErrInvalidStatus
	}

	words, err := s.progress.ListDictionary(ctx, userID, filter.TopicID, filter.Status)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return words, nil
	}

	filtered := words[:0]
	for _, w := range words {
		if strings.Contains(strings.ToLower(w.Term), search) || strings.Contains(strings.ToLower(w.Translation), search) {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}

// ToggleFavorite flips the favourite flag of a word and returns the new value
func (s *ProgressService) ToggleFavorite(ctx context.Context, userID, wordID int64) (bool, error) {
	word, err := s.topics.GetWord(ctx, wordID)
	if err != nil {
		return false, err
	}
	if word == nil {
		return false, ErrWordNotFound
	}

	fav, err := s.progress.IsFavorite(ctx, userID, wordID)
	if err != nil {
		return false, err
	}
	if err := s.progress.SetFavorite(ctx, userID, wordID, !fav); err != nil {
		return false, err
	}
	return !fav, nil
}
