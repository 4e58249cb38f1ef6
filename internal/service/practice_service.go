package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"lingvocards/internal/models"
	"lingvocards/internal/session"

	"github.com/google/uuid"
)

var (
	ErrRunNotFound          = errors.New("run not found")
	ErrUnsupportedOperation = errors.New("operation not supported by this exercise")
)

// AudioURLPrefix is where word audio files are served
const AudioURLPrefix = "/static/audio/"

// Catalog resolves the items of a topic. Unknown topics yield ErrTopicNotFound.
type Catalog interface {
	ResolveCards(ctx context.Context, topicID string) ([]models.Word, error)
	ResolveQuestions(ctx context.Context, topicID string) ([]models.Question, error)
}

// ResultStore persists finished runs
type ResultStore interface {
	RecordRun(ctx context.Context, result *models.ExerciseResult, items []models.ItemResult, learned map[int64]bool) error
}

// Op is an operation applied to a run
type Op string

const (
	OpReveal  Op = "reveal"
	OpFlip    Op = "flip"
	OpAdvance Op = "advance"
	OpRetreat Op = "retreat"
	OpSelect  Op = "select"
	OpReset   Op = "reset"
	OpKey     Op = "key"
)

// Action is one request against a run. Answer is used by OpSelect, Key by OpKey.
type Action struct {
	Op     Op
	Answer string
	Key    string
}

// RunState is what callers get back after every operation
type RunState struct {
	RunID     string           `json:"run_id"`
	Snapshot  session.Snapshot `json:"snapshot"`
	Persisted bool             `json:"persisted"`
	ResultID  int64            `json:"result_id,omitempty"`
}

// run is one user's live exercise. The engine is not safe for concurrent
// use, so every access goes through mu.
type run struct {
	id         string
	userID     int64
	topicID    string
	mu         sync.Mutex
	ctrl       session.Controller
	keys       *session.KeyBinding
	wordIDs    map[string]int64
	lastActive time.Time
	persisted  bool
	resultID   int64
	closed     bool
}

func (r *run) state(snap session.Snapshot) *RunState {
	return &RunState{RunID: r.id, Snapshot: snap, Persisted: r.persisted, ResultID: r.resultID}
}

// release drops the key binding; callers hold r.mu
func (r *run) release() {
	r.keys.Close()
	r.closed = true
}

// PracticeService drives learning sessions for users and records the
// results of completed ones. Each user has at most one live run.
type PracticeService struct {
	catalog     Catalog
	results     ResultStore
	idleTimeout time.Duration
	now         func() time.Time

	mu     sync.Mutex
	runs   map[string]*run
	byUser map[int64]string
}

// NewPracticeService creates a new practice service
func NewPracticeService(catalog Catalog, results ResultStore, idleTimeout time.Duration) *PracticeService {
	return &PracticeService{
		catalog:     catalog,
		results:     results,
		idleTimeout: idleTimeout,
		now:         time.Now,
		runs:        make(map[string]*run),
		byUser:      make(map[int64]string),
	}
}

// StartRun builds a session for the topic and makes it the user's live run.
// Unknown topics produce a run in the not_found state rather than an error.
func (s *PracticeService) StartRun(ctx context.Context, userID int64, topicID, modality string) (*RunState, error) {
	mod, err := session.ParseModality(modality)
	if err != nil {
		return nil, err
	}

	r := &run{
		id:         uuid.New().String(),
		userID:     userID,
		topicID:    topicID,
		wordIDs:    make(map[string]int64),
		lastActive: s.now(),
	}

	r.ctrl, err = s.build(ctx, r, topicID, mod)
	if errors.Is(err, ErrTopicNotFound) {
		r.ctrl = session.NewNotFound(topicID, mod)
	} else if err != nil {
		return nil, err
	}
	if recall, ok := r.ctrl.(*session.Recall); ok {
		r.keys = session.Bind(recall)
	}

	s.mu.Lock()
	if prevID, ok := s.byUser[userID]; ok {
		s.dropLocked(prevID)
	}
	s.runs[r.id] = r
	s.byUser[userID] = r.id
	s.mu.Unlock()

	log.Printf("Started %s run %s on topic %s for user %d", mod, r.id, topicID, userID)
	return r.state(r.ctrl.Snapshot()), nil
}

func (s *PracticeService) build(ctx context.Context, r *run, topicID string, mod session.Modality) (session.Controller, error) {
	switch mod {
	case session.ModalityRecall:
		words, err := s.catalog.ResolveCards(ctx, topicID)
		if err != nil {
			return nil, err
		}
		cards := make([]session.Card, len(words))
		for i, w := range words {
			id := strconv.FormatInt(w.ID, 10)
			r.wordIDs[id] = w.ID
			cards[i] = session.Card{
				ID:            id,
				Term:          w.Term,
				Translation:   w.Translation,
				Transcription: w.Transcription,
				Example:       w.Example,
			}
			if w.AudioFilename != "" {
				cards[i].AudioFile = AudioURLPrefix + w.AudioFilename
			}
		}
		return session.NewRecall(topicID, cards), nil

	case session.ModalityQuiz:
		qs, err := s.catalog.ResolveQuestions(ctx, topicID)
		if err != nil {
			return nil, err
		}
		questions := make([]session.Question, len(qs))
		for i, q := range qs {
			id := strconv.FormatInt(q.ID, 10)
			r.wordIDs[id] = q.WordID
			questions[i] = session.Question{
				ID:            id,
				Term:          q.Term,
				CorrectAnswer: q.CorrectAnswer,
				Options:       q.Options,
				Explanation:   q.Explanation,
			}
		}
		return session.NewQuiz(topicID, questions), nil
	}
	return nil, fmt.Errorf("%w: %q", session.ErrUnknownModality, mod)
}

// lookup returns the user's live run with its lock held
func (s *PracticeService) lookup(userID int64, runID string) (*run, error) {
	s.mu.Lock()
	r, ok := s.runs[runID]
	s.mu.Unlock()
	if !ok || r.userID != userID {
		return nil, ErrRunNotFound
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRunNotFound
	}
	return r, nil
}

// GetRun returns the current state of a run
func (s *PracticeService) GetRun(ctx context.Context, userID int64, runID string) (*RunState, error) {
	r, err := s.lookup(userID, runID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	return r.state(r.ctrl.Snapshot()), nil
}

// Apply performs one operation on a run. The first snapshot carrying a
// completion payload is persisted; repeats of that payload are not.
func (s *PracticeService) Apply(ctx context.Context, userID int64, runID string, action Action) (*RunState, error) {
	r, err := s.lookup(userID, runID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	snap, err := apply(r, action)
	if err != nil {
		return nil, err
	}
	r.lastActive = s.now()

	if action.Op == OpReset {
		r.persisted = false
		r.resultID = 0
	}
	if h := snap.Handoff(); h != nil && !r.persisted {
		s.persist(ctx, r, h)
	}
	return r.state(snap), nil
}

func apply(r *run, action Action) (session.Snapshot, error) {
	switch action.Op {
	case OpAdvance:
		return r.ctrl.Advance(), nil
	case OpReset:
		return r.ctrl.Reset(), nil
	}

	switch ctrl := r.ctrl.(type) {
	case *session.Recall:
		switch action.Op {
		case OpReveal:
			return ctrl.Reveal(), nil
		case OpFlip:
			return ctrl.ToggleReveal(), nil
		case OpRetreat:
			return ctrl.Retreat(), nil
		case OpKey:
			return r.keys.Handle(session.ParseKey(action.Key)), nil
		}
	case *session.Quiz:
		if action.Op == OpSelect {
			return ctrl.Select(action.Answer), nil
		}
	}
	return session.Snapshot{}, fmt.Errorf("%w: %s on %s", ErrUnsupportedOperation, action.Op, r.ctrl.Modality())
}

// persist records the finished run. Failures are logged and retried the next
// time the completion payload is emitted.
func (s *PracticeService) persist(ctx context.Context, r *run, h *session.Result) {
	if s.results == nil {
		return
	}

	result := &models.ExerciseResult{
		UserID:      r.userID,
		TopicID:     r.topicID,
		Modality:    string(r.ctrl.Modality()),
		Score:       h.Score,
		Total:       h.Total,
		CompletedAt: s.now(),
	}

	var items []models.ItemResult
	learned := make(map[int64]bool)
	for _, o := range r.ctrl.Outcomes() {
		wordID := r.wordIDs[o.ID]
		if wordID == 0 {
			continue
		}
		items = append(items, models.ItemResult{WordID: wordID, SelectedAnswer: o.SelectedAnswer, Correct: o.Correct})
		if !o.Seen {
			continue
		}
		// a seen card counts as learned; a quiz item only when answered correctly
		ok := o.Correct == nil || *o.Correct
		learned[wordID] = learned[wordID] || ok
	}

	if err := s.results.RecordRun(ctx, result, items, learned); err != nil {
		log.Printf("Error recording run %s for user %d: %v", r.id, r.userID, err)
		return
	}
	r.persisted = true
	r.resultID = result.ID
	log.Printf("Recorded run %s: %s %d/%d", r.id, r.topicID, h.Score, h.Total)
}

// ExitRun discards a run and releases its key binding
func (s *PracticeService) ExitRun(userID int64, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[runID]
	if !ok || r.userID != userID {
		return ErrRunNotFound
	}
	s.dropLocked(runID)
	return nil
}

// dropLocked removes a run from the registry; callers hold s.mu
func (s *PracticeService) dropLocked(runID string) {
	r, ok := s.runs[runID]
	if !ok {
		return
	}
	delete(s.runs, runID)
	if s.byUser[r.userID] == runID {
		delete(s.byUser, r.userID)
	}
	r.mu.Lock()
	r.release()
	r.mu.Unlock()
}

// CleanupIdleRuns discards runs untouched for longer than the idle timeout
// and returns how many were removed
func (s *PracticeService) CleanupIdleRuns() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTimeout)
	var idle []string
	for id, r := range s.runs {
		r.mu.Lock()
		if r.lastActive.Before(cutoff) {
			idle = append(idle, id)
		}
		r.mu.Unlock()
	}
	for _, id := range idle {
		s.dropLocked(id)
	}
	return len(idle)
}

// ActiveRuns returns the number of live runs
func (s *PracticeService) ActiveRuns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}
