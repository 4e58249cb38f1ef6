package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lingvocards/internal/database"
	"lingvocards/internal/models"
)

// ProgressRepository handles exercise results and the personal dictionary
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// RecordRun stores a finished run with its item outcomes and updates the
// user's dictionary in one transaction. learned maps word IDs to whether the
// word now counts as learned; a word already learned is never downgraded.
func (r *ProgressRepository) RecordRun(ctx context.Context, result *models.ExerciseResult, items []models.ItemResult, learned map[int64]bool) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := `
			INSERT INTO exercise_results (user_id, topic_id, modality, score, total, completed_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		id, err := tx.ExecReturningID(ctx, query, result.UserID, result.TopicID, result.Modality, result.Score, result.Total, result.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to insert exercise result: %w", err)
		}
		result.ID = id

		for i := range items {
			item := &items[i]
			item.ExerciseResultID = id
			var correct any
			if item.Correct != nil {
				correct = *item.Correct
			}
			itemID, err := tx.ExecReturningID(ctx,
				"INSERT INTO item_results (exercise_result_id, word_id, selected_answer, correct) VALUES (?, ?, ?, ?)",
				id, item.WordID, item.SelectedAnswer, correct)
			if err != nil {
				return fmt.Errorf("failed to insert item result: %w", err)
			}
			item.ID = itemID
		}

		insert := tx.GetDialect().Upsert("learned_words", []string{"user_id", "word_id"}, []string{"user_id", "word_id"}, nil)
		for wordID, isLearned := range learned {
			if _, err := tx.ExecContext(ctx, insert, result.UserID, wordID); err != nil {
				return fmt.Errorf("failed to add word %d to dictionary: %w", wordID, err)
			}
			if !isLearned {
				continue
			}
			_, err := tx.ExecContext(ctx,
				"UPDATE learned_words SET learned = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ? AND word_id = ?",
				true, result.UserID, wordID)
			if err != nil {
				return fmt.Errorf("failed to mark word %d learned: %w", wordID, err)
			}
		}
		return nil
	})
}

// GetResults returns a user's finished runs, newest first
func (r *ProgressRepository) GetResults(ctx context.Context, userID int64, limit int) ([]models.ExerciseResult, error) {
	query := `
		SELECT id, user_id, topic_id, modality, score, total, completed_at
		FROM exercise_results
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.ExerciseResult
	for rows.Next() {
		var res models.ExerciseResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.TopicID, &res.Modality, &res.Score, &res.Total, &res.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetCompletionTimes returns when each of a user's runs finished, newest first
func (r *ProgressRepository) GetCompletionTimes(ctx context.Context, userID int64) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT completed_at FROM exercise_results WHERE user_id = ? ORDER BY completed_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan completion time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// GetQuizAnswerCounts returns how many quiz answers a user gave and how many were correct
func (r *ProgressRepository) GetQuizAnswerCounts(ctx context.Context, userID int64) (answers, correct int, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN ir.correct = ? THEN 1 ELSE 0 END), 0)
		FROM item_results ir
		JOIN exercise_results er ON er.id = ir.exercise_result_id
		WHERE er.user_id = ? AND ir.correct IS NOT NULL
	`
	if err := r.db.QueryRowContext(ctx, query, true, userID).Scan(&answers, &correct); err != nil {
		return 0, 0, fmt.Errorf("failed to count quiz answers: %w", err)
	}
	return answers, correct, nil
}

// CountLearnedWords returns how many words a user has learned
func (r *ProgressRepository) CountLearnedWords(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM learned_words WHERE user_id = ? AND learned = ?", userID, true).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count learned words: %w", err)
	}
	return n, nil
}

// CountLearnedTopics returns how many non-empty topics have every word learned
func (r *ProgressRepository) CountLearnedTopics(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM topics t
		WHERE EXISTS (SELECT 1 FROM words w WHERE w.topic_id = t.id)
		AND NOT EXISTS (
			SELECT 1 FROM words w
			WHERE w.topic_id = t.id
			AND NOT EXISTS (
				SELECT 1 FROM learned_words lw
				WHERE lw.word_id = w.id AND lw.user_id = ? AND lw.learned = ?
			)
		)
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID, true).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count learned topics: %w", err)
	}
	return n, nil
}

// ListDictionary returns the words in a user's dictionary, filtered by topic
// and status. Text search is left to the caller.
func (r *ProgressRepository) ListDictionary(ctx context.Context, userID int64, topicID, status string) ([]models.DictionaryWord, error) {
	query := `
		SELECT w.id, w.topic_id, w.term, w.translation, w.transcription, w.part_of_speech, w.example,
			w.audio_filename, w.position, w.created_at, t.title, lw.learned, lw.is_favorite, lw.updated_at
		FROM learned_words lw
		JOIN words w ON w.id = lw.word_id
		JOIN topics t ON t.id = w.topic_id
		WHERE lw.user_id = ?
	`
	args := []any{userID}
	if topicID != "" && topicID != models.StatusAll {
		query += " AND w.topic_id = ?"
		args = append(args, topicID)
	}
	dialect := r.db.Dialect
	switch status {
	case models.StatusLearned:
		query += " AND lw.learned = " + dialect.BoolValue(true)
	case models.StatusLearning:
		query += " AND lw.learned = " + dialect.BoolValue(false)
	case models.StatusFavorites:
		query += " AND lw.is_favorite = " + dialect.BoolValue(true)
	}
	query += " ORDER BY t.position, w.position, w.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dictionary: %w", err)
	}
	defer rows.Close()

	var words []models.DictionaryWord
	for rows.Next() {
		var d models.DictionaryWord
		if err := rows.Scan(
			&d.ID, &d.TopicID, &d.Term, &d.Translation, &d.Transcription, &d.PartOfSpeech, &d.Example,
			&d.AudioFilename, &d.Position, &d.CreatedAt, &d.TopicTitle, &d.Learned, &d.IsFavorite, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dictionary word: %w", err)
		}
		words = append(words, d)
	}
	return words, rows.Err()
}

// SetFavorite flags or unflags a word, adding it to the dictionary if needed
func (r *ProgressRepository) SetFavorite(ctx context.Context, userID, wordID int64, favorite bool) error {
	query := r.db.Dialect.Upsert("learned_words",
		[]string{"user_id", "word_id", "is_favorite"},
		[]string{"user_id", "word_id"},
		[]string{"is_favorite"})
	if _, err := r.db.ExecContext(ctx, query, userID, wordID, favorite); err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}
	return nil
}

// IsFavorite reports whether a word is a favourite of the user
func (r *ProgressRepository) IsFavorite(ctx context.Context, userID, wordID int64) (bool, error) {
	var fav bool
	err := r.db.QueryRowContext(ctx, "SELECT is_favorite FROM learned_words WHERE user_id = ? AND word_id = ?", userID, wordID).Scan(&fav)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get favorite: %w", err)
	}
	return fav, nil
}
