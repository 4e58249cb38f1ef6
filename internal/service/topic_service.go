package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"lingvocards/internal/audio"
	"lingvocards/internal/database"
	"lingvocards/internal/models"
	"lingvocards/internal/repository"
	"lingvocards/internal/validation"
)

var (
	ErrTopicNotFound = errors.New("topic not found")
	ErrWordNotFound  = errors.New("word not found")
	ErrTopicExists   = errors.New("topic already exists")
	ErrBlockedTerm   = errors.New("term contains blocked words")
)

// TopicService is the content catalog: topics, their cards and questions
type TopicService struct {
	db     *database.DB
	topics *repository.TopicRepository
	tts    *audio.TTSService
	filter WordFilter
}

// NewTopicService creates a new topic service. tts and filter may be nil.
func NewTopicService(db *database.DB, tts *audio.TTSService, filter WordFilter) *TopicService {
	return &TopicService{
		db:     db,
		topics: repository.NewTopicRepository(db),
		tts:    tts,
		filter: filter,
	}
}

// ListTopics returns the topics with the user's progress. search matches
// title and description case-insensitively.
func (s *TopicService) ListTopics(ctx context.Context, userID int64, search string) ([]models.TopicWithProgress, error) {
	topics, err := s.topics.ListTopicsWithProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return topics, nil
	}

	filtered := topics[:0]
	for _, t := range topics {
		if strings.Contains(strings.ToLower(t.Title), search) || strings.Contains(strings.ToLower(t.Description), search) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// GetTopic returns a topic or ErrTopicNotFound
func (s *TopicService) GetTopic(ctx context.Context, topicID string) (*models.Topic, error) {
	t, err := s.topics.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTopicNotFound
	}
	return t, nil
}

// ResolveCards returns the flashcards of a topic in display order
func (s *TopicService) ResolveCards(ctx context.Context, topicID string) ([]models.Word, error) {
	if _, err := s.GetTopic(ctx, topicID); err != nil {
		return nil, err
	}
	return s.topics.GetWords(ctx, topicID)
}

// ResolveQuestions returns the translation questions of a topic in display order
func (s *TopicService) ResolveQuestions(ctx context.Context, topicID string) ([]models.Question, error) {
	if _, err := s.GetTopic(ctx, topicID); err != nil {
		return nil, err
	}
	return s.topics.GetQuestions(ctx, topicID)
}

// CreateTopic adds an empty topic at the end of the list
func (s *TopicService) CreateTopic(ctx context.Context, t *models.Topic) error {
	if err := validation.ValidateTopicID(t.ID); err != nil {
		return err
	}
	if strings.TrimSpace(t.Title) == "" {
		return validation.ValidationError{Field: "title", Message: "title is required"}
	}
	switch t.Difficulty {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
	case "":
		t.Difficulty = models.DifficultyBeginner
	default:
		return validation.ValidationError{Field: "difficulty", Message: "unknown difficulty"}
	}

	exists, err := s.topics.TopicExists(ctx, t.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrTopicExists
	}
	return s.topics.CreateTopic(ctx, t)
}

func (s *TopicService) checkTerm(ctx context.Context, text string) error {
	if s.filter == nil {
		return nil
	}
	blocked, err := s.filter.BlockedWordsIn(ctx, text)
	if err != nil {
		log.Printf("Warning: blocked words check failed: %v", err)
		return nil
	}
	if len(blocked) > 0 {
		return ErrBlockedTerm
	}
	return nil
}

// AddCard validates and appends a word to a topic, generating its audio
func (s *TopicService) AddCard(ctx context.Context, topicID string, w *models.Word) error {
	w.Term = strings.TrimSpace(w.Term)
	w.Translation = strings.TrimSpace(w.Translation)
	if err := validation.ValidateCard(w.Term, w.Translation); err != nil {
		return err
	}
	if err := s.checkTerm(ctx, w.Term); err != nil {
		return err
	}
	if _, err := s.GetTopic(ctx, topicID); err != nil {
		return err
	}

	pos, err := s.topics.NextWordPosition(ctx, topicID)
	if err != nil {
		return err
	}
	w.TopicID = topicID
	w.Position = pos
	if err := s.topics.AddWord(ctx, w); err != nil {
		return err
	}

	s.generateAudio(ctx, w)
	return nil
}

// AddQuestion validates and appends a translation question about one of the
// topic's words. An empty term defaults to the word's term.
func (s *TopicService) AddQuestion(ctx context.Context, topicID string, q *models.Question) error {
	word, err := s.topics.GetWord(ctx, q.WordID)
	if err != nil {
		return err
	}
	if word == nil || word.TopicID != topicID {
		return ErrWordNotFound
	}
	if strings.TrimSpace(q.Term) == "" {
		q.Term = word.Term
	}
	if err := validation.ValidateQuestion(q.Term, q.CorrectAnswer, q.Options); err != nil {
		return err
	}

	pos, err := s.topics.NextQuestionPosition(ctx, topicID)
	if err != nil {
		return err
	}
	q.TopicID = topicID
	q.Position = pos
	return s.topics.AddQuestion(ctx, q)
}

// generateAudio logs failures and reports whether the word now has audio
func (s *TopicService) generateAudio(ctx context.Context, w *models.Word) bool {
	if s.tts == nil {
		return false
	}
	filename, err := s.tts.GenerateAudioFile(ctx, w.Term)
	if err != nil {
		log.Printf("Warning: Failed to generate audio for '%s': %v", w.Term, err)
		return false
	}
	if err := s.topics.UpdateWordAudio(ctx, w.ID, filename); err != nil {
		log.Printf("Warning: Failed to update audio filename for word %d: %v", w.ID, err)
		return false
	}
	w.AudioFilename = filename
	return true
}

// SeedDefaultTopics creates the built-in topics that do not exist yet
func (s *TopicService) SeedDefaultTopics(ctx context.Context) error {
	for i, seed := range defaultTopics {
		if err := s.seedTopic(ctx, i, seed); err != nil {
			return err
		}
	}
	return nil
}

func (s *TopicService) seedTopic(ctx context.Context, position int, seed seedTopic) error {
	exists, err := s.topics.TopicExists(ctx, seed.topic.ID)
	if err != nil {
		return fmt.Errorf("failed to check if topic %s exists: %w", seed.topic.ID, err)
	}
	if exists {
		log.Printf("Default topic '%s' already exists, skipping seed", seed.topic.ID)
		return nil
	}

	log.Printf("Creating default topic '%s' with %d words...", seed.topic.ID, len(seed.words))

	var words []models.Word
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		repo := repository.NewTopicRepository(tx)

		topic := seed.topic
		topic.Position = position
		if err := repo.CreateTopic(ctx, &topic); err != nil {
			return err
		}

		wordIDs := make(map[string]int64, len(seed.words))
		for i, sw := range seed.words {
			w := models.Word{
				TopicID:       topic.ID,
				Term:          sw.term,
				Translation:   sw.translation,
				Transcription: sw.transcription,
				PartOfSpeech:  sw.partOfSpeech,
				Example:       sw.example,
				Position:      i,
			}
			if err := repo.AddWord(ctx, &w); err != nil {
				return err
			}
			wordIDs[sw.term] = w.ID
			words = append(words, w)
		}

		for i, sq := range seed.questions {
			q := models.Question{
				TopicID:       topic.ID,
				WordID:        wordIDs[sq.term],
				Term:          sq.term,
				CorrectAnswer: sq.answer,
				Options:       sq.options,
				Explanation:   sq.explanation,
				Position:      i,
			}
			if err := validation.ValidateQuestion(q.Term, q.CorrectAnswer, q.Options); err != nil {
				return fmt.Errorf("invalid seed question %q: %w", sq.term, err)
			}
			if err := repo.AddQuestion(ctx, &q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed topic %s: %w", seed.topic.ID, err)
	}

	for i := range words {
		s.generateAudio(ctx, &words[i])
	}

	log.Printf("Successfully created default topic '%s'", seed.topic.ID)
	return nil
}

// GenerateMissingAudio regenerates audio for words whose file is missing
func (s *TopicService) GenerateMissingAudio(ctx context.Context) error {
	if s.tts == nil {
		return nil
	}
	words, err := s.topics.GetAllWords(ctx)
	if err != nil {
		return err
	}

	generated := 0
	for i := range words {
		if s.tts.Exists(words[i].AudioFilename) {
			continue
		}
		if s.generateAudio(ctx, &words[i]) {
			generated++
		}
	}
	if generated > 0 {
		log.Printf("Generated %d missing audio files", generated)
	}
	return nil
}

// CleanupOrphanedAudioFiles removes audio files no word refers to
func (s *TopicService) CleanupOrphanedAudioFiles(ctx context.Context) error {
	if s.tts == nil {
		return nil
	}
	keep, err := s.topics.GetAudioFilenames(ctx)
	if err != nil {
		return err
	}
	removed, err := s.tts.RemoveOrphans(keep)
	if err != nil {
		return fmt.Errorf("failed to cleanup audio files: %w", err)
	}
	if removed > 0 {
		log.Printf("Removed %d orphaned audio files", removed)
	}
	return nil
}
