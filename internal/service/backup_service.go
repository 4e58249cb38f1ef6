package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"lingvocards/internal/database"
)

const backupVersion = "2.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	DatabaseType string              `json:"database_type"`
	Users        []UserBackup        `json:"users"`
	Topics       []TopicBackup       `json:"topics"`
	Words        []WordBackup        `json:"words"`
	Questions    []QuestionBackup    `json:"questions"`
	Results      []ResultBackup      `json:"results"`
	ItemResults  []ItemResultBackup  `json:"item_results"`
	LearnedWords []LearnedWordBackup `json:"learned_words"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TopicBackup represents a topic for backup
type TopicBackup struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty"`
	Icon        string    `json:"icon"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// WordBackup represents a word for backup
type WordBackup struct {
	ID            int64     `json:"id"`
	TopicID       string    `json:"topic_id"`
	Term          string    `json:"term"`
	Translation   string    `json:"translation"`
	Transcription string    `json:"transcription"`
	PartOfSpeech  string    `json:"part_of_speech"`
	Example       string    `json:"example"`
	AudioFilename string    `json:"audio_filename"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuestionBackup represents a translation question for backup
type QuestionBackup struct {
	ID            int64           `json:"id"`
	TopicID       string          `json:"topic_id"`
	WordID        int64           `json:"word_id"`
	Term          string          `json:"term"`
	CorrectAnswer string          `json:"correct_answer"`
	Options       json.RawMessage `json:"options"`
	Explanation   string          `json:"explanation"`
	Position      int             `json:"position"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ResultBackup represents a finished run for backup
type ResultBackup struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	TopicID     string    `json:"topic_id"`
	Modality    string    `json:"modality"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completed_at"`
}

// ItemResultBackup represents one item outcome for backup
type ItemResultBackup struct {
	ID               int64  `json:"id"`
	ExerciseResultID int64  `json:"exercise_result_id"`
	WordID           int64  `json:"word_id"`
	SelectedAnswer   string `json:"selected_answer"`
	Correct          *bool  `json:"correct"`
}

// LearnedWordBackup represents a dictionary entry for backup
type LearnedWordBackup struct {
	UserID     int64     `json:"user_id"`
	WordID     int64     `json:"word_id"`
	Learned    bool      `json:"learned"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(ctx, file)
	if err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d users, %d topics, %d words, %d questions, %d results, %d dictionary entries",
		len(backup.Users), len(backup.Topics), len(backup.Words),
		len(backup.Questions), len(backup.Results), len(backup.LearnedWords))
	return nil
}

// ExportToWriter writes the backup as indented JSON to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
	}

	steps := []struct {
		name string
		fn   func(context.Context, *BackupData) error
	}{
		{"users", s.exportUsers},
		{"topics", s.exportTopics},
		{"words", s.exportWords},
		{"questions", s.exportQuestions},
		{"results", s.exportResults},
		{"item results", s.exportItemResults},
		{"learned words", s.exportLearnedWords},
	}
	for _, step := range steps {
		if err := step.fn(ctx, backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// clearTables lists user and content tables children first. Settings and
// blocked words are kept.
var clearTables = []string{
	"item_results",
	"exercise_results",
	"learned_words",
	"questions",
	"words",
	"topics",
	"password_reset_tokens",
	"sessions",
	"users",
}

// Clear deletes all users, content and progress in one transaction
func (s *BackupService) Clear(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, table := range clearTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
		}
		return nil
	})
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup read from r into an empty database.
// Everything is inserted in one transaction.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, u := range backup.Users {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
				u.ID, u.Email, u.PasswordHash, u.Name, nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.CreatedAt, u.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to import user %d: %w", u.ID, err)
			}
		}
		for _, t := range backup.Topics {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO topics (id, title, description, difficulty, icon, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
				t.ID, t.Title, t.Description, t.Difficulty, t.Icon, t.Position, t.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to import topic %s: %w", t.ID, err)
			}
		}
		for _, w := range backup.Words {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO words (id, topic_id, term, translation, transcription, part_of_speech, example, audio_filename, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				w.ID, w.TopicID, w.Term, w.Translation, w.Transcription, w.PartOfSpeech, w.Example, w.AudioFilename, w.Position, w.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to import word %d: %w", w.ID, err)
			}
		}
		for _, q := range backup.Questions {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO questions (id, topic_id, word_id, term, correct_answer, options, explanation, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				q.ID, q.TopicID, q.WordID, q.Term, q.CorrectAnswer, string(q.Options), q.Explanation, q.Position, q.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to import question %d: %w", q.ID, err)
			}
		}
		for _, res := range backup.Results {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO exercise_results (id, user_id, topic_id, modality, score, total, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
				res.ID, res.UserID, res.TopicID, res.Modality, res.Score, res.Total, res.CompletedAt)
			if err != nil {
				return fmt.Errorf("failed to import result %d: %w", res.ID, err)
			}
		}
		for _, it := range backup.ItemResults {
			var correct any
			if it.Correct != nil {
				correct = *it.Correct
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO item_results (id, exercise_result_id, word_id, selected_answer, correct) VALUES (?, ?, ?, ?, ?)",
				it.ID, it.ExerciseResultID, it.WordID, it.SelectedAnswer, correct)
			if err != nil {
				return fmt.Errorf("failed to import item result %d: %w", it.ID, err)
			}
		}
		for _, lw := range backup.LearnedWords {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO learned_words (user_id, word_id, learned, is_favorite, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
				lw.UserID, lw.WordID, lw.Learned, lw.IsFavorite, lw.CreatedAt, lw.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to import dictionary entry %d/%d: %w", lw.UserID, lw.WordID, err)
			}
		}
		return resetSequences(ctx, tx)
	})
	if err != nil {
		return err
	}

	log.Printf("Database import completed successfully: %d users, %d topics, %d words",
		len(backup.Users), len(backup.Topics), len(backup.Words))
	return nil
}

// resetSequences moves PostgreSQL serial sequences past the imported IDs.
// SQLite and MySQL track this on insert.
func resetSequences(ctx context.Context, tx *database.Tx) error {
	if tx.GetDialect().DriverName() != "postgres" {
		return nil
	}
	for _, table := range []string{"users", "words", "questions", "exercise_results", "item_results"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s", table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}

func (s *BackupService) exportUsers(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, email, password_hash, name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at FROM users ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportTopics(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, description, difficulty, icon, position, created_at FROM topics ORDER BY position, id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TopicBackup
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Difficulty, &t.Icon, &t.Position, &t.CreatedAt); err != nil {
			return err
		}
		backup.Topics = append(backup.Topics, t)
	}
	return rows.Err()
}

func (s *BackupService) exportWords(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, topic_id, term, translation, transcription, part_of_speech, example, audio_filename, position, created_at FROM words ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w WordBackup
		if err := rows.Scan(&w.ID, &w.TopicID, &w.Term, &w.Translation, &w.Transcription, &w.PartOfSpeech, &w.Example, &w.AudioFilename, &w.Position, &w.CreatedAt); err != nil {
			return err
		}
		backup.Words = append(backup.Words, w)
	}
	return rows.Err()
}

func (s *BackupService) exportQuestions(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, topic_id, word_id, term, correct_answer, options, explanation, position, created_at FROM questions ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var q QuestionBackup
		var options string
		if err := rows.Scan(&q.ID, &q.TopicID, &q.WordID, &q.Term, &q.CorrectAnswer, &options, &q.Explanation, &q.Position, &q.CreatedAt); err != nil {
			return err
		}
		q.Options = json.RawMessage(options)
		backup.Questions = append(backup.Questions, q)
	}
	return rows.Err()
}

func (s *BackupService) exportResults(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, user_id, topic_id, modality, score, total, completed_at FROM exercise_results ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r ResultBackup
		if err := rows.Scan(&r.ID, &r.UserID, &r.TopicID, &r.Modality, &r.Score, &r.Total, &r.CompletedAt); err != nil {
			return err
		}
		backup.Results = append(backup.Results, r)
	}
	return rows.Err()
}

func (s *BackupService) exportItemResults(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, exercise_result_id, word_id, selected_answer, correct FROM item_results ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it ItemResultBackup
		var correct sql.NullBool
		if err := rows.Scan(&it.ID, &it.ExerciseResultID, &it.WordID, &it.SelectedAnswer, &correct); err != nil {
			return err
		}
		if correct.Valid {
			c := correct.Bool
			it.Correct = &c
		}
		backup.ItemResults = append(backup.ItemResults, it)
	}
	return rows.Err()
}

func (s *BackupService) exportLearnedWords(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id, word_id, learned, is_favorite, created_at, updated_at FROM learned_words ORDER BY user_id, word_id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var lw LearnedWordBackup
		if err := rows.Scan(&lw.UserID, &lw.WordID, &lw.Learned, &lw.IsFavorite, &lw.CreatedAt, &lw.UpdatedAt); err != nil {
			return err
		}
		backup.LearnedWords = append(backup.LearnedWords, lw)
	}
	return rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
