package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lingvocards/internal/database"
	"lingvocards/internal/repository"
	"lingvocards/internal/security"
	"lingvocards/internal/service"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type testServer struct {
	*httptest.Server
	t      *testing.T
	client *http.Client
	csrf   string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "handlers.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(ctx, "../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	authService := service.NewAuthService(repository.NewUserRepository(db), nil, nil, time.Hour)
	topicService := service.NewTopicService(db, nil, nil)
	if err := topicService.SeedDefaultTopics(ctx); err != nil {
		t.Fatalf("Failed to seed topics: %v", err)
	}
	progressRepo := repository.NewProgressRepository(db)
	practiceService := service.NewPracticeService(topicService, progressRepo, time.Hour)
	progressService := service.NewProgressService(progressRepo, repository.NewTopicRepository(db))
	csrf := security.NewCSRFGenerator("test-secret")

	startup := NewStartupStatus(StepDatabase)
	startup.MarkReady()

	routes := &Routes{
		Middleware: NewMiddleware(authService, csrf, nil, []string{"admin@example.com"}),
		Startup:    startup,
		Auth:       NewAuthHandler(authService, csrf, nil, "", "http://app.example.com"),
		Topics:     NewTopicHandler(topicService),
		Practice:   NewPracticeHandler(practiceService),
		Profile:    NewProfileHandler(progressService),
		Admin:      NewAdminHandler(topicService, practiceService, service.NewBackupService(db)),
	}

	srv := httptest.NewServer(routes.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &testServer{Server: srv, t: t, client: &http.Client{Jar: jar}}
}

// do sends body as JSON, decodes the response into out when given and
// returns the status code
func (s *testServer) do(method, path string, body, out any) int {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.csrf != "" {
		req.Header.Set(security.CSRFHeader, s.csrf)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			s.t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (s *testServer) register(email, name string) {
	s.t.Helper()
	var resp authResponse
	status := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": "password123", "name": name,
	}, &resp)
	if status != http.StatusCreated {
		s.t.Fatalf("register status = %d, want 201", status)
	}
	s.csrf = resp.CSRFToken
}

type runResponse struct {
	RunID     string `json:"run_id"`
	Persisted bool   `json:"persisted"`
	ResultID  int64  `json:"result_id"`
	Snapshot  struct {
		Event     string `json:"event"`
		Status    string `json:"status"`
		Cursor    int    `json:"cursor"`
		Total     int    `json:"total"`
		Completed bool   `json:"completed"`
		Revealed  bool   `json:"revealed"`
		SeenCount int    `json:"seen_count"`
		Answered  bool   `json:"answered"`
		Correct   *bool  `json:"correct"`
		Score     int    `json:"score"`
		Reason    string `json:"reason"`
		Result    *struct {
			Completed bool `json:"completed"`
			Score     int  `json:"score"`
			Total     int  `json:"total"`
		} `json:"result"`
		Item *struct {
			ID      string   `json:"id"`
			Term    string   `json:"term"`
			Options []string `json:"options"`
		} `json:"item"`
	} `json:"snapshot"`
}

func TestAuthEndpoints(t *testing.T) {
	s := setupServer(t)

	if status := s.do(http.MethodGet, "/api/auth/me", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("me without session = %d, want 401", status)
	}

	s.register("learner@example.com", "Olena")

	var me userView
	if status := s.do(http.MethodGet, "/api/auth/me", nil, &me); status != http.StatusOK || me.Name != "Olena" {
		t.Fatalf("me = %d %+v", status, me)
	}

	var dup errorResponse
	if status := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "learner@example.com", "password": "password123", "name": "Olena",
	}, &dup); status != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", status)
	}

	var invalid errorResponse
	if status := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "other@example.com", "password": "short", "name": "Ivan",
	}, &invalid); status != http.StatusBadRequest || invalid.Field != "password" {
		t.Errorf("short password = %d %+v", status, invalid)
	}

	if status := s.do(http.MethodPatch, "/api/auth/me", map[string]string{"name": " Olena K "}, &me); status != http.StatusOK || me.Name != "Olena K" {
		t.Errorf("update name = %d %+v", status, me)
	}

	var token map[string]string
	if status := s.do(http.MethodGet, "/api/csrf", nil, &token); status != http.StatusOK || token["csrf_token"] != s.csrf {
		t.Errorf("csrf = %d %v", status, token)
	}

	good := s.csrf
	s.csrf = ""
	if status := s.do(http.MethodPost, "/api/auth/logout", nil, nil); status != http.StatusForbidden {
		t.Errorf("logout without CSRF token = %d, want 403", status)
	}
	s.csrf = good
	if status := s.do(http.MethodPost, "/api/auth/logout", nil, nil); status != http.StatusNoContent {
		t.Errorf("logout = %d, want 204", status)
	}
	if status := s.do(http.MethodGet, "/api/auth/me", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want 401", status)
	}

	if status := s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "learner@example.com", "password": "wrong-password",
	}, nil); status != http.StatusUnauthorized {
		t.Errorf("login with wrong password = %d, want 401", status)
	}
	var login authResponse
	if status := s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "learner@example.com", "password": "password123",
	}, &login); status != http.StatusOK || login.CSRFToken == "" {
		t.Errorf("login = %d %+v", status, login)
	}

	var reset map[string]string
	if status := s.do(http.MethodPost, "/api/auth/password-reset", map[string]string{"email": "nobody@example.com"}, &reset); status != http.StatusAccepted {
		t.Errorf("password reset request = %d, want 202", status)
	}
	var valid map[string]bool
	if status := s.do(http.MethodGet, "/api/auth/password-reset/not-a-token", nil, &valid); status != http.StatusOK || valid["valid"] {
		t.Errorf("reset token check = %d %v", status, valid)
	}
}

func TestTopicEndpoints(t *testing.T) {
	s := setupServer(t)
	s.register("learner@example.com", "Olena")

	var topics []topicView
	if status := s.do(http.MethodGet, "/api/topics", nil, &topics); status != http.StatusOK || len(topics) != 6 {
		t.Fatalf("list topics = %d, %d topics", status, len(topics))
	}

	if status := s.do(http.MethodGet, "/api/topics?search=%D0%BF%D0%BE%D0%B4%D0%BE%D1%80%D0%BE%D0%B6", nil, &topics); status != http.StatusOK || len(topics) != 1 || topics[0].ID != "travel" {
		t.Errorf("search topics = %d %+v", status, topics)
	}

	var detail topicDetailView
	if status := s.do(http.MethodGet, "/api/topics/work", nil, &detail); status != http.StatusOK {
		t.Fatalf("get topic = %d", status)
	}
	if len(detail.Words) != 5 || detail.QuestionCount != 3 || detail.Words[0].Term != "Meeting" {
		t.Errorf("topic detail = %+v", detail)
	}

	if status := s.do(http.MethodGet, "/api/topics/space", nil, nil); status != http.StatusNotFound {
		t.Errorf("unknown topic = %d, want 404", status)
	}
}

func TestQuizRun(t *testing.T) {
	s := setupServer(t)
	s.register("learner@example.com", "Olena")

	var run runResponse
	if status := s.do(http.MethodPost, "/api/runs", map[string]string{"topic_id": "travel", "modality": "translation"}, &run); status != http.StatusCreated {
		t.Fatalf("start run = %d", status)
	}
	if run.Snapshot.Status != "active" || run.Snapshot.Total != 2 || run.Snapshot.Item.Options[0] != "Аеропорт" {
		t.Fatalf("started run = %+v", run.Snapshot)
	}
	path := "/api/runs/" + run.RunID

	s.do(http.MethodPost, path+"/advance", nil, &run)
	if run.Snapshot.Event != "ignored" || run.Snapshot.Cursor != 0 {
		t.Errorf("advance before answer = %+v", run.Snapshot)
	}

	s.do(http.MethodPost, path+"/select", map[string]string{"answer": "Аеропорт"}, &run)
	if !run.Snapshot.Answered || run.Snapshot.Correct == nil || !*run.Snapshot.Correct || run.Snapshot.Score != 1 {
		t.Fatalf("correct select = %+v", run.Snapshot)
	}

	s.do(http.MethodPost, path+"/select", map[string]string{"answer": "Автобус"}, &run)
	if run.Snapshot.Event != "ignored" || run.Snapshot.Score != 1 || run.Snapshot.Reason == "" {
		t.Errorf("re-select = %+v", run.Snapshot)
	}

	s.do(http.MethodPost, path+"/advance", nil, &run)
	s.do(http.MethodPost, path+"/select", map[string]string{"answer": "Хостел"}, &run)
	if *run.Snapshot.Correct {
		t.Errorf("wrong answer marked correct")
	}

	s.do(http.MethodPost, path+"/advance", nil, &run)
	if run.Snapshot.Status != "complete" || run.Snapshot.Result == nil || run.Snapshot.Result.Score != 1 || run.Snapshot.Result.Total != 2 {
		t.Fatalf("completion = %+v", run.Snapshot)
	}
	if !run.Persisted || run.ResultID == 0 {
		t.Errorf("completed run not persisted: %+v", run)
	}
	resultID := run.ResultID

	s.do(http.MethodPost, path+"/advance", nil, &run)
	if run.ResultID != resultID || run.Snapshot.Result == nil {
		t.Errorf("repeated completion = %+v", run)
	}

	if status := s.do(http.MethodPost, path+"/flip", nil, nil); status != http.StatusUnprocessableEntity {
		t.Errorf("flip on quiz = %d, want 422", status)
	}

	var profile profileView
	if status := s.do(http.MethodGet, "/api/profile", nil, &profile); status != http.StatusOK {
		t.Fatalf("profile = %d", status)
	}
	if profile.WordsLearned != 1 || profile.Accuracy != 50 || profile.StreakDays != 1 || len(profile.RecentResults) != 1 {
		t.Errorf("profile = %+v", profile)
	}

	var dict []dictionaryWordView
	if status := s.do(http.MethodGet, "/api/dictionary?status=learned", nil, &dict); status != http.StatusOK || len(dict) != 1 || dict[0].Term != "Airport" {
		t.Fatalf("learned words = %d %+v", status, dict)
	}

	var fav map[string]any
	if status := s.do(http.MethodPost, "/api/dictionary/"+jsonInt(dict[0].ID)+"/favorite", nil, &fav); status != http.StatusOK || fav["is_favorite"] != true {
		t.Errorf("toggle favorite = %d %v", status, fav)
	}
	if status := s.do(http.MethodPost, "/api/dictionary/abc/favorite", nil, nil); status != http.StatusBadRequest {
		t.Errorf("bad item id = %d, want 400", status)
	}
	if status := s.do(http.MethodGet, "/api/dictionary?status=mastered", nil, nil); status != http.StatusBadRequest {
		t.Errorf("bad status filter = %d, want 400", status)
	}
}

func TestFlashcardRunKeys(t *testing.T) {
	s := setupServer(t)
	s.register("learner@example.com", "Olena")

	var run runResponse
	s.do(http.MethodPost, "/api/runs", map[string]string{"topic_id": "work", "modality": "flashcards"}, &run)
	path := "/api/runs/" + run.RunID

	s.do(http.MethodPost, path+"/keys", map[string]string{"key": "Space"}, &run)
	if !run.Snapshot.Revealed || run.Snapshot.SeenCount != 1 {
		t.Errorf("space = %+v", run.Snapshot)
	}

	s.do(http.MethodPost, path+"/keys", map[string]string{"key": "Enter"}, &run)
	if run.Snapshot.Event != "ignored" {
		t.Errorf("unbound key event = %q", run.Snapshot.Event)
	}

	s.do(http.MethodPost, path+"/keys", map[string]string{"key": "ArrowRight"}, &run)
	if run.Snapshot.Cursor != 1 {
		t.Errorf("arrow right cursor = %d, want 1", run.Snapshot.Cursor)
	}
	s.do(http.MethodPost, path+"/retreat", nil, &run)
	if run.Snapshot.Cursor != 0 || !run.Snapshot.Revealed {
		t.Errorf("retreat = %+v", run.Snapshot)
	}

	if status := s.do(http.MethodPost, path+"/select", map[string]string{"answer": "x"}, nil); status != http.StatusUnprocessableEntity {
		t.Errorf("select on flashcards = %d, want 422", status)
	}

	if status := s.do(http.MethodDelete, path, nil, nil); status != http.StatusNoContent {
		t.Errorf("exit run = %d, want 204", status)
	}
	if status := s.do(http.MethodGet, path, nil, nil); status != http.StatusNotFound {
		t.Errorf("get exited run = %d, want 404", status)
	}
}

func TestRunEdgeCases(t *testing.T) {
	s := setupServer(t)
	s.register("learner@example.com", "Olena")

	var run runResponse
	if status := s.do(http.MethodPost, "/api/runs", map[string]string{"topic_id": "space", "modality": "flashcards"}, &run); status != http.StatusCreated {
		t.Fatalf("start unknown topic = %d", status)
	}
	if run.Snapshot.Status != "not_found" || run.Snapshot.Item != nil {
		t.Errorf("unknown topic snapshot = %+v", run.Snapshot)
	}

	if status := s.do(http.MethodPost, "/api/runs", map[string]string{"topic_id": "work", "modality": "crossword"}, nil); status != http.StatusBadRequest {
		t.Errorf("unknown modality = %d, want 400", status)
	}

	// a second user cannot touch the first user's run
	s.register("other@example.com", "Ivan")
	if status := s.do(http.MethodGet, "/api/runs/"+run.RunID, nil, nil); status != http.StatusNotFound {
		t.Errorf("foreign run = %d, want 404", status)
	}
}

func TestAdminEndpoints(t *testing.T) {
	s := setupServer(t)
	s.register("learner@example.com", "Olena")

	if status := s.do(http.MethodGet, "/api/admin/stats", nil, nil); status != http.StatusForbidden {
		t.Errorf("stats as learner = %d, want 403", status)
	}

	s.register("admin@example.com", "Admin")

	var stats map[string]int
	if status := s.do(http.MethodGet, "/api/admin/stats", nil, &stats); status != http.StatusOK {
		t.Errorf("stats as admin = %d", status)
	}

	if status := s.do(http.MethodPost, "/api/admin/topics", map[string]string{"id": "sport", "title": "Спорт"}, nil); status != http.StatusCreated {
		t.Fatalf("create topic = %d", status)
	}
	if status := s.do(http.MethodPost, "/api/admin/topics", map[string]string{"id": "sport", "title": "Спорт"}, nil); status != http.StatusConflict {
		t.Errorf("duplicate topic = %d, want 409", status)
	}

	var word wordView
	if status := s.do(http.MethodPost, "/api/admin/topics/sport/cards", map[string]string{"term": "Ball", "translation": "М'яч"}, &word); status != http.StatusCreated || word.ID == 0 {
		t.Fatalf("add card = %d %+v", status, word)
	}

	var bad errorResponse
	if status := s.do(http.MethodPost, "/api/admin/topics/sport/questions", map[string]any{
		"word_id": word.ID, "correct_answer": "М'яч", "options": []string{"Сітка", "Ворота"},
	}, &bad); status != http.StatusBadRequest || bad.Field != "options" {
		t.Errorf("question without answer = %d %+v", status, bad)
	}

	var q questionView
	if status := s.do(http.MethodPost, "/api/admin/topics/sport/questions", map[string]any{
		"word_id": word.ID, "correct_answer": "М'яч", "options": []string{"Сітка", "М'яч"},
	}, &q); status != http.StatusCreated || q.Term != "Ball" {
		t.Errorf("add question = %d %+v", status, q)
	}

	var questions []questionView
	if status := s.do(http.MethodGet, "/api/admin/topics/sport/questions", nil, &questions); status != http.StatusOK || len(questions) != 1 {
		t.Errorf("list questions = %d %+v", status, questions)
	}

	var backup service.BackupData
	if status := s.do(http.MethodGet, "/api/admin/backup", nil, &backup); status != http.StatusOK || len(backup.Topics) != 7 || len(backup.Users) != 2 {
		t.Errorf("backup = %d, %d topics, %d users", status, len(backup.Topics), len(backup.Users))
	}
}

func TestHealth(t *testing.T) {
	status := NewStartupStatus(StepDatabase, StepMigrations)
	status.CompleteStep(StepDatabase)

	rec := httptest.NewRecorder()
	status.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("health while starting = %d, want 503", rec.Code)
	}
	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Progress != 50 || body.Status != "starting" {
		t.Errorf("starting body = %+v", body)
	}

	status.MarkReady()
	rec = httptest.NewRecorder()
	status.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health when ready = %d, want 200", rec.Code)
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
