package models

import "time"

// Difficulty levels a topic can be tagged with
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Topic is a themed set of words, e.g. "work" or "travel"
type Topic struct {
	ID          string // slug
	Title       string
	Description string
	Difficulty  string
	Icon        string
	Position    int
	WordCount   int
	CreatedAt   time.Time
}

// Word is a vocabulary entry of a topic. It is shown as a flashcard.
type Word struct {
	ID            int64
	TopicID       string
	Term          string
	Translation   string
	Transcription string
	PartOfSpeech  string
	Example       string
	AudioFilename string
	Position      int
	CreatedAt     time.Time
}

// Question is a multiple-choice translation question about a word
type Question struct {
	ID            int64
	TopicID       string
	WordID        int64
	Term          string
	CorrectAnswer string
	Options       []string
	Explanation   string
	Position      int
	CreatedAt     time.Time
}

// TopicWithProgress is a topic as listed for one user
type TopicWithProgress struct {
	Topic
	LearnedCount int
}

// ProgressPercent is the share of the topic's words the user has learned
func (t TopicWithProgress) ProgressPercent() int {
	if t.WordCount == 0 {
		return 0
	}
	p := t.LearnedCount * 100 / t.WordCount
	if p > 100 {
		return 100
	}
	return p
}
