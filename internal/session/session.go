// Package session holds the learning session engine: an ordered list of
// items, a cursor over them and the per-modality rules for moving through
// the list. Every operation is synchronous and returns a Snapshot.
package session

import (
	"errors"
	"fmt"
	"strings"
)

// Modality selects the exercise rules applied to a session.
type Modality string

const (
	// ModalityRecall is the flip-card exercise: free navigation, no scoring.
	ModalityRecall Modality = "flashcards"
	// ModalityQuiz is the multiple-choice exercise: answer-gated, scored.
	ModalityQuiz Modality = "translation"
)

// ErrUnknownModality is returned by ParseModality.
var ErrUnknownModality = errors.New("unknown modality")

// Disallowed transitions. They never escape as returned errors; they only
// label Snapshot.Rejected so callers can tell an absorbed call apart.
var (
	ErrEmpty           = errors.New("session has no items")
	ErrAlreadyAnswered = errors.New("current item already answered")
	ErrNotAnswered     = errors.New("current item not answered yet")
	ErrAtBoundary      = errors.New("cursor at boundary")
	ErrNotFound        = errors.New("topic not found")
	ErrReleased        = errors.New("key binding released")
	ErrUnboundKey      = errors.New("key not bound")
)

// ParseModality accepts the wire names plus a couple of aliases.
func ParseModality(s string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flashcards", "flashcard", "recall":
		return ModalityRecall, nil
	case "translation", "quiz":
		return ModalityQuiz, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModality, s)
}

// Card is the recall payload of a learning item.
type Card struct {
	ID            string
	Term          string
	Translation   string
	Transcription string
	Example       string
	AudioFile     string
}

// Question is the quiz payload of a learning item. Options are shown in
// stored order.
type Question struct {
	ID            string
	Term          string
	CorrectAnswer string
	Options       []string
	Explanation   string
}

// Controller is the part of a session shared by both modalities.
type Controller interface {
	Modality() Modality
	TopicID() string
	// Current returns the item at the cursor, or false when there are none.
	Current() (ItemView, bool)
	ProgressPercent() int
	Completed() bool
	Snapshot() Snapshot
	Advance() Snapshot
	Reset() Snapshot
	// Outcomes lists the per-item state in item order.
	Outcomes() []Outcome
}

// New builds the controller for modality. Cards are used for recall,
// questions for quiz.
func New(topicID string, modality Modality, cards []Card, questions []Question) (Controller, error) {
	switch modality {
	case ModalityRecall:
		return NewRecall(topicID, cards), nil
	case ModalityQuiz:
		return NewQuiz(topicID, questions), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModality, modality)
}

// NewNotFound builds an empty controller whose snapshots report
// StatusNotFound, for topics the catalog does not know.
func NewNotFound(topicID string, modality Modality) Controller {
	if modality == ModalityQuiz {
		q := NewQuiz(topicID, nil)
		q.notFound = true
		return q
	}
	r := NewRecall(topicID, nil)
	r.notFound = true
	return r
}

// cursor is the navigation shared by both engines.
type cursor struct {
	pos   int
	total int
}

func (c cursor) empty() bool { return c.total == 0 }

func (c cursor) last() bool { return c.total > 0 && c.pos == c.total-1 }

func (c *cursor) forward() bool {
	if c.empty() || c.last() {
		return false
	}
	c.pos++
	return true
}

func (c *cursor) back() bool {
	if c.pos == 0 {
		return false
	}
	c.pos--
	return true
}

// percent rounds half up.
func (c cursor) percent() int {
	if c.empty() {
		return 0
	}
	return (200*(c.pos+1) + c.total) / (2 * c.total)
}

func (c cursor) status(notFound, completed bool) Status {
	switch {
	case notFound:
		return StatusNotFound
	case c.empty():
		return StatusEmpty
	case completed:
		return StatusComplete
	}
	return StatusActive
}
