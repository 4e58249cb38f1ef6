package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"lingvocards/internal/database"
	"lingvocards/internal/models"
)

// TopicRepository handles database operations for topics, words and questions
type TopicRepository struct {
	db database.DBTX
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db database.DBTX) *TopicRepository {
	return &TopicRepository{db: db}
}

const topicColumns = `t.id, t.title, t.description, t.difficulty, t.icon, t.position, t.created_at,
	(SELECT COUNT(*) FROM words w WHERE w.topic_id = t.id)`

func scanTopic(row interface{ Scan(...any) error }, extra ...any) (*models.Topic, error) {
	t := &models.Topic{}
	dest := []any{&t.ID, &t.Title, &t.Description, &t.Difficulty, &t.Icon, &t.Position, &t.CreatedAt, &t.WordCount}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTopic inserts a topic
func (r *TopicRepository) CreateTopic(ctx context.Context, t *models.Topic) error {
	query := `
		INSERT INTO topics (id, title, description, difficulty, icon, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Title, t.Description, t.Difficulty, t.Icon, t.Position); err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// TopicExists reports whether a topic with the given ID exists
func (r *TopicRepository) TopicExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM topics WHERE id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check topic: %w", err)
	}
	return count > 0, nil
}

// GetTopic retrieves a topic by ID, or nil when it does not exist
func (r *TopicRepository) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	t, err := scanTopic(r.db.QueryRowContext(ctx, "SELECT "+topicColumns+" FROM topics t WHERE t.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return t, nil
}

// ListTopics returns every topic in display order
func (r *TopicRepository) ListTopics(ctx context.Context) ([]models.Topic, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+topicColumns+" FROM topics t ORDER BY t.position, t.id")
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, *t)
	}
	return topics, rows.Err()
}

// ListTopicsWithProgress returns every topic with the number of its words
// the user has learned
func (r *TopicRepository) ListTopicsWithProgress(ctx context.Context, userID int64) ([]models.TopicWithProgress, error) {
	query := `
		SELECT ` + topicColumns + `,
			(SELECT COUNT(*) FROM learned_words lw
			 JOIN words w ON w.id = lw.word_id
			 WHERE w.topic_id = t.id AND lw.user_id = ? AND lw.learned = ?)
		FROM topics t
		ORDER BY t.position, t.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic progress: %w", err)
	}
	defer rows.Close()

	var topics []models.TopicWithProgress
	for rows.Next() {
		var learned int
		t, err := scanTopic(rows, &learned)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, models.TopicWithProgress{Topic: *t, LearnedCount: learned})
	}
	return topics, rows.Err()
}

// AddWord inserts a word and sets its ID
func (r *TopicRepository) AddWord(ctx context.Context, w *models.Word) error {
	query := `
		INSERT INTO words (topic_id, term, translation, transcription, part_of_speech, example, audio_filename, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, w.TopicID, w.Term, w.Translation, w.Transcription, w.PartOfSpeech, w.Example, w.AudioFilename, w.Position)
	if err != nil {
		return fmt.Errorf("failed to add word: %w", err)
	}
	w.ID = id
	return nil
}

// GetWord retrieves a word by ID, or nil when it does not exist
func (r *TopicRepository) GetWord(ctx context.Context, id int64) (*models.Word, error) {
	w, err := scanWord(r.db.QueryRowContext(ctx, "SELECT "+wordColumns+" FROM words WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return w, nil
}

const wordColumns = `id, topic_id, term, translation, transcription, part_of_speech, example, audio_filename, position, created_at`

func scanWord(row interface{ Scan(...any) error }) (*models.Word, error) {
	w := &models.Word{}
	err := row.Scan(&w.ID, &w.TopicID, &w.Term, &w.Translation, &w.Transcription, &w.PartOfSpeech, &w.Example, &w.AudioFilename, &w.Position, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *TopicRepository) queryWords(ctx context.Context, query string, args ...any) ([]models.Word, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, *w)
	}
	return words, rows.Err()
}

// GetWords returns the words of a topic in display order
func (r *TopicRepository) GetWords(ctx context.Context, topicID string) ([]models.Word, error) {
	return r.queryWords(ctx, "SELECT "+wordColumns+" FROM words WHERE topic_id = ? ORDER BY position, id", topicID)
}

// GetAllWords returns every word of every topic
func (r *TopicRepository) GetAllWords(ctx context.Context) ([]models.Word, error) {
	return r.queryWords(ctx, "SELECT "+wordColumns+" FROM words ORDER BY topic_id, position, id")
}

// NextWordPosition returns the position after the last word of a topic
func (r *TopicRepository) NextWordPosition(ctx context.Context, topicID string) (int, error) {
	var pos int
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM words WHERE topic_id = ?", topicID).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("failed to get next word position: %w", err)
	}
	return pos, nil
}

// UpdateWordAudio stores the audio filename of a word
func (r *TopicRepository) UpdateWordAudio(ctx context.Context, wordID int64, filename string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE words SET audio_filename = ? WHERE id = ?", filename, wordID); err != nil {
		return fmt.Errorf("failed to update word audio: %w", err)
	}
	return nil
}

// GetAudioFilenames returns the set of audio files referenced by words
func (r *TopicRepository) GetAudioFilenames(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT audio_filename FROM words WHERE audio_filename != ''")
	if err != nil {
		return nil, fmt.Errorf("failed to query audio filenames: %w", err)
	}
	defer rows.Close()

	files := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan audio filename: %w", err)
		}
		files[name] = true
	}
	return files, rows.Err()
}

// AddQuestion inserts a question and sets its ID. Options are stored as a
// JSON array in their given order.
func (r *TopicRepository) AddQuestion(ctx context.Context, q *models.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	query := `
		INSERT INTO questions (topic_id, word_id, term, correct_answer, options, explanation, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, q.TopicID, q.WordID, q.Term, q.CorrectAnswer, string(options), q.Explanation, q.Position)
	if err != nil {
		return fmt.Errorf("failed to add question: %w", err)
	}
	q.ID = id
	return nil
}

// GetQuestions returns the questions of a topic in display order
func (r *TopicRepository) GetQuestions(ctx context.Context, topicID string) ([]models.Question, error) {
	query := `
		SELECT id, topic_id, word_id, term, correct_answer, options, explanation, position, created_at
		FROM questions
		WHERE topic_id = ?
		ORDER BY position, id
	`
	rows, err := r.db.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var options string
		if err := rows.Scan(&q.ID, &q.TopicID, &q.WordID, &q.Term, &q.CorrectAnswer, &options, &q.Explanation, &q.Position, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options of question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// NextQuestionPosition returns the position after the last question of a topic
func (r *TopicRepository) NextQuestionPosition(ctx context.Context, topicID string) (int, error) {
	var pos int
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM questions WHERE topic_id = ?", topicID).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("failed to get next question position: %w", err)
	}
	return pos, nil
}
