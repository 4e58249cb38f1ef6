package session

import (
	"errors"
	"reflect"
	"testing"
)

func twoQuestions() []Question {
	return []Question{
		{ID: "q1", Term: "meeting", CorrectAnswer: "X", Options: []string{"W", "X", "Z"}},
		{ID: "q2", Term: "deadline", CorrectAnswer: "Y", Options: []string{"Y", "Z", "W"}, Explanation: "fixed date"},
	}
}

func TestQuizScenarioTwoItems(t *testing.T) {
	z := NewQuiz("work", twoQuestions())

	snap := z.Select("X")
	if snap.Score != 1 || snap.Correct == nil || !*snap.Correct {
		t.Fatalf("after correct select: %+v", snap)
	}

	snap = z.Advance()
	if snap.Cursor != 1 || snap.Event != EventAdvanced {
		t.Fatalf("after advance: cursor=%d event=%q", snap.Cursor, snap.Event)
	}

	snap = z.Select("Z")
	if snap.Score != 1 {
		t.Errorf("score = %d, want 1", snap.Score)
	}
	if snap.Correct == nil || *snap.Correct {
		t.Errorf("second answer should be incorrect, got %v", snap.Correct)
	}

	snap = z.Advance()
	want := &Result{Completed: true, Score: 1, Total: 2}
	if !reflect.DeepEqual(snap.Result, want) {
		t.Fatalf("terminal result = %+v, want %+v", snap.Result, want)
	}
	if snap.Event != EventCompleted || snap.Status != StatusComplete {
		t.Errorf("event/status = %q/%q", snap.Event, snap.Status)
	}
}

func TestQuizTerminalIdempotent(t *testing.T) {
	z := NewQuiz("work", twoQuestions())
	z.Select("X")
	z.Advance()
	z.Select("Y")

	first := z.Advance()
	second := z.Advance()

	if !reflect.DeepEqual(first.Result, second.Result) {
		t.Errorf("terminal payload changed: %+v vs %+v", first.Result, second.Result)
	}
	if second.Cursor != 1 {
		t.Errorf("cursor moved past the end: %d", second.Cursor)
	}
}

func TestQuizSelectOnAnsweredItemIgnored(t *testing.T) {
	z := NewQuiz("work", twoQuestions())
	z.Select("W")

	snap := z.Select("X")

	if snap.Event != EventIgnored || !errors.Is(snap.Rejected, ErrAlreadyAnswered) {
		t.Fatalf("expected ignored re-select, got %q %v", snap.Event, snap.Rejected)
	}
	if snap.Score != 0 || snap.SelectedAnswer != "W" {
		t.Errorf("re-select changed state: score=%d selected=%q", snap.Score, snap.SelectedAnswer)
	}
}

func TestQuizAdvanceGatedOnAnswer(t *testing.T) {
	z := NewQuiz("work", twoQuestions())

	snap := z.Advance()

	if snap.Cursor != 0 || !errors.Is(snap.Rejected, ErrNotAnswered) {
		t.Errorf("advance before answer: cursor=%d rejected=%v", snap.Cursor, snap.Rejected)
	}
	if snap.Result != nil {
		t.Error("no result expected before answering")
	}
}

func TestQuizExactMatch(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"exact", "X", true},
		{"lower case", "x", false},
		{"trailing space", "X ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := NewQuiz("work", twoQuestions())
			snap := z.Select(tt.answer)
			if *snap.Correct != tt.correct {
				t.Errorf("Select(%q) correct = %v, want %v", tt.answer, *snap.Correct, tt.correct)
			}
		})
	}
}

func TestQuizHidesAnswerUntilAnswered(t *testing.T) {
	z := NewQuiz("work", twoQuestions())
	v, _ := z.Current()
	if v.CorrectAnswer != "" || v.Correct != nil {
		t.Fatalf("answer leaked before selection: %+v", v)
	}
	z.Select("X")
	v, _ = z.Current()
	if v.CorrectAnswer != "X" {
		t.Errorf("correct answer = %q after selection", v.CorrectAnswer)
	}
}

func TestQuizKeepsOptionOrder(t *testing.T) {
	qs := twoQuestions()
	z := NewQuiz("work", qs)
	qs[0].Options[0] = "mutated"

	v, _ := z.Current()
	if !reflect.DeepEqual(v.Options, []string{"W", "X", "Z"}) {
		t.Errorf("options = %v", v.Options)
	}
	v.Options[0] = "view edit"
	again, _ := z.Current()
	if again.Options[0] != "W" {
		t.Error("view shares option slice with the session")
	}
}

func TestQuizReset(t *testing.T) {
	z := NewQuiz("work", twoQuestions())
	z.Select("X")
	z.Advance()
	z.Select("Y")
	z.Advance()

	snap := z.Reset()

	if snap.Cursor != 0 || snap.Score != 0 || snap.Completed || snap.Result != nil {
		t.Errorf("reset left state behind: %+v", snap)
	}
	for i, it := range z.items {
		if it.answered || it.selected != "" {
			t.Errorf("item %d still answered", i)
		}
	}
}

func TestQuizCompletedOnceAllAnswered(t *testing.T) {
	z := NewQuiz("work", twoQuestions())
	z.Select("X")
	z.Advance()
	if z.Completed() {
		t.Fatal("completed with one question open")
	}
	snap := z.Select("Y")
	if !snap.Completed {
		t.Error("expected completed once every question is answered")
	}
	if snap.Handoff() != nil {
		t.Error("handoff should wait for the terminal advance")
	}
}

func TestQuizInvariants(t *testing.T) {
	ops := []func(z *Quiz) Snapshot{
		func(z *Quiz) Snapshot { return z.Select("X") },
		func(z *Quiz) Snapshot { return z.Advance() },
		func(z *Quiz) Snapshot { return z.Select("Y") },
		func(z *Quiz) Snapshot { return z.Select("X") },
		func(z *Quiz) Snapshot { return z.Advance() },
		func(z *Quiz) Snapshot { return z.Advance() },
		func(z *Quiz) Snapshot { return z.Reset() },
		func(z *Quiz) Snapshot { return z.Advance() },
	}

	z := NewQuiz("work", twoQuestions())
	prev := 0
	for i, op := range ops {
		snap := op(z)
		if snap.Score < 0 || snap.Score > snap.Total {
			t.Fatalf("op %d: score %d out of range", i, snap.Score)
		}
		if snap.Cursor < 0 || snap.Cursor >= snap.Total {
			t.Fatalf("op %d: cursor %d out of range", i, snap.Cursor)
		}
		if snap.Event != EventReset && snap.Score < prev {
			t.Fatalf("op %d: score decreased from %d to %d", i, prev, snap.Score)
		}
		prev = snap.Score
	}
}
