package session

import (
	"errors"
	"testing"
)

func threeCards() []Card {
	return []Card{
		{ID: "a", Term: "meeting", Translation: "встреча"},
		{ID: "b", Term: "deadline", Translation: "крайний срок"},
		{ID: "c", Term: "salary", Translation: "зарплата"},
	}
}

func TestRecallScenarioThreeItems(t *testing.T) {
	r := NewRecall("work", threeCards())

	r.ToggleReveal()
	r.Advance()
	snap := r.Advance()

	if snap.Cursor != 2 {
		t.Fatalf("cursor = %d, want 2", snap.Cursor)
	}
	wantRevealed := []bool{true, false, false}
	for i, want := range wantRevealed {
		if r.items[i].revealed != want {
			t.Errorf("item %d revealed = %v, want %v", i, r.items[i].revealed, want)
		}
	}
	if snap.Completed {
		t.Fatal("completed before every card was revealed")
	}

	r.Reveal()
	if r.Completed() {
		t.Fatal("completed while card b was never revealed")
	}
	r.Retreat()
	snap = r.Reveal()
	if !snap.Completed || snap.Status != StatusComplete {
		t.Fatalf("expected complete once every card was revealed, got %+v", snap)
	}
}

func TestRecallRevealIdempotent(t *testing.T) {
	r := NewRecall("work", threeCards())

	once := r.Reveal()
	twice := r.Reveal()

	if once.Revealed != twice.Revealed || once.SeenCount != twice.SeenCount || once.Cursor != twice.Cursor {
		t.Errorf("second Reveal changed state: %+v vs %+v", once, twice)
	}
	if twice.Event != EventRevealed {
		t.Errorf("event = %q, want %q", twice.Event, EventRevealed)
	}
}

func TestRecallToggleReveal(t *testing.T) {
	r := NewRecall("work", threeCards())

	if snap := r.ToggleReveal(); !snap.Revealed || snap.Event != EventRevealed {
		t.Fatalf("first toggle: %+v", snap)
	}
	snap := r.ToggleReveal()
	if snap.Revealed || snap.Event != EventHidden {
		t.Fatalf("second toggle: %+v", snap)
	}
	if !snap.Item.Seen || snap.SeenCount != 1 {
		t.Errorf("hiding a card should keep it seen, got %+v", snap.Item)
	}
}

func TestRecallClamping(t *testing.T) {
	tests := []struct {
		name   string
		moves  func(r *Recall) Snapshot
		cursor int
	}{
		{
			name:   "retreat at start",
			moves:  func(r *Recall) Snapshot { return r.Retreat() },
			cursor: 0,
		},
		{
			name: "advance at end",
			moves: func(r *Recall) Snapshot {
				r.Advance()
				r.Advance()
				return r.Advance()
			},
			cursor: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecall("work", threeCards())
			snap := tt.moves(r)
			if snap.Cursor != tt.cursor {
				t.Errorf("cursor = %d, want %d", snap.Cursor, tt.cursor)
			}
			if snap.Event != EventIgnored || !errors.Is(snap.Rejected, ErrAtBoundary) {
				t.Errorf("expected ignored at boundary, got %q %v", snap.Event, snap.Rejected)
			}
		})
	}
}

func TestRecallAdvanceKeepsRevealOfLeftCard(t *testing.T) {
	r := NewRecall("work", threeCards())
	r.Reveal()
	r.Advance()
	snap := r.Retreat()
	if !snap.Revealed {
		t.Error("card a should still be revealed after coming back")
	}
}

func TestRecallReset(t *testing.T) {
	r := NewRecall("work", threeCards())
	r.Reveal()
	r.Advance()
	r.Reveal()

	snap := r.Reset()

	if snap.Cursor != 0 || snap.SeenCount != 0 || snap.Revealed {
		t.Errorf("reset left state behind: %+v", snap)
	}
	if snap.Event != EventReset || snap.Status != StatusActive {
		t.Errorf("unexpected event/status %q/%q", snap.Event, snap.Status)
	}
	for i, it := range r.items {
		if it.revealed || it.seen {
			t.Errorf("item %d not cleared", i)
		}
	}
}

func TestRecallProgressPercent(t *testing.T) {
	r := NewRecall("work", threeCards())
	want := []int{33, 67, 100}
	for i, w := range want {
		if got := r.ProgressPercent(); got != w {
			t.Errorf("step %d: progress = %d, want %d", i, got, w)
		}
		r.Advance()
	}
}

func TestRecallCopiesInput(t *testing.T) {
	cards := threeCards()
	r := NewRecall("work", cards)
	cards[0].Term = "changed"

	v, ok := r.Current()
	if !ok || v.Term != "meeting" {
		t.Errorf("session shares caller slice, term = %q", v.Term)
	}
}
