package models

import "time"

// ExerciseResult is a finished practice run
type ExerciseResult struct {
	ID          int64
	UserID      int64
	TopicID     string
	Modality    string
	Score       int
	Total       int
	CompletedAt time.Time
}

// ItemResult is the outcome of one item in a finished run. Correct is nil
// for flashcards.
type ItemResult struct {
	ID               int64
	ExerciseResultID int64
	WordID           int64
	SelectedAnswer   string
	Correct          *bool
}

// Accuracy returns the percentage of correct answers
func (r ExerciseResult) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total) * 100
}

// DictionaryWord is a word in a user's personal dictionary
type DictionaryWord struct {
	Word
	TopicTitle string
	Learned    bool
	IsFavorite bool
	UpdatedAt  time.Time
}

// Dictionary status filters
const (
	StatusAll       = "all"
	StatusLearned   = "learned"
	StatusLearning  = "learning"
	StatusFavorites = "favorites"
)

// DictionaryFilter narrows a dictionary listing
type DictionaryFilter struct {
	Search  string
	TopicID string
	Status  string
}

// Achievement is a milestone shown on the profile page
type Achievement struct {
	Key         string
	Name        string
	Description string
	Earned      bool
}

// ProfileStats are the headline numbers of the profile page
type ProfileStats struct {
	WordsLearned   int
	TopicsLearned  int
	StreakDays     int
	QuizAnswers    int
	CorrectAnswers int
	Achievements   []Achievement
}

// Accuracy returns correct quiz answers as a whole percentage
func (s ProfileStats) Accuracy() int {
	if s.QuizAnswers == 0 {
		return 0
	}
	return s.CorrectAnswers * 100 / s.QuizAnswers
}

// EarnedCount returns how many achievements are earned
func (s ProfileStats) EarnedCount() int {
	n := 0
	for _, a := range s.Achievements {
		if a.Earned {
			n++
		}
	}
	return n
}
