package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"lingvocards/internal/repository"
)

func TestBackupRoundTrip(t *testing.T) {
	src := setupDB(t)
	ctx := context.Background()

	users := repository.NewUserRepository(src)
	user, _ := users.CreateUser(ctx, "learner@example.com", "hash", "Olena")
	topics := NewTopicService(src, nil, nil)
	if err := topics.SeedDefaultTopics(ctx); err != nil {
		t.Fatalf("SeedDefaultTopics() error = %v", err)
	}

	practice := NewPracticeService(topics, repository.NewProgressRepository(src), time.Hour)
	st, _ := practice.StartRun(ctx, user.ID, "travel", "translation")
	for _, answer := range []string{"Аеропорт", "Готель"} {
		mustApply(t, practice, user.ID, st.RunID, Action{Op: OpSelect, Answer: answer})
		mustApply(t, practice, user.ID, st.RunID, Action{Op: OpAdvance})
	}

	var buf bytes.Buffer
	exported, err := NewBackupService(src).ExportToWriter(ctx, &buf)
	if err != nil {
		t.Fatalf("ExportToWriter() error = %v", err)
	}
	if len(exported.Results) != 1 || len(exported.ItemResults) != 2 || len(exported.LearnedWords) != 2 {
		t.Fatalf("exported results=%d items=%d learned=%d", len(exported.Results), len(exported.ItemResults), len(exported.LearnedWords))
	}

	var decoded BackupData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	if decoded.Version != backupVersion {
		t.Errorf("Version = %q", decoded.Version)
	}

	dst := setupDB(t)
	if err := NewBackupService(dst).ImportFromReader(ctx, &buf); err != nil {
		t.Fatalf("ImportFromReader() error = %v", err)
	}

	questions, err := NewTopicService(dst, nil, nil).ResolveQuestions(ctx, "work")
	if err != nil || len(questions) != 3 || questions[0].Options[0] != "Зустріч" {
		t.Fatalf("restored questions = %+v, %v", questions, err)
	}
	stats, err := NewProgressService(repository.NewProgressRepository(dst), repository.NewTopicRepository(dst)).GetProfileStats(ctx, user.ID)
	if err != nil || stats.WordsLearned != 2 {
		t.Errorf("restored stats = %+v, %v", stats, err)
	}
}

func TestBackupClear(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	if _, err := users.CreateUser(ctx, "learner@example.com", "hash", "Olena"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := NewTopicService(db, nil, nil).SeedDefaultTopics(ctx); err != nil {
		t.Fatalf("SeedDefaultTopics() error = %v", err)
	}

	backup := NewBackupService(db)
	if err := backup.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	var buf bytes.Buffer
	data, err := backup.ExportToWriter(ctx, &buf)
	if err != nil {
		t.Fatalf("ExportToWriter() error = %v", err)
	}
	if len(data.Users) != 0 || len(data.Topics) != 0 || len(data.Words) != 0 {
		t.Errorf("after Clear: %d users, %d topics, %d words", len(data.Users), len(data.Topics), len(data.Words))
	}
}
