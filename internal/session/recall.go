package session

type recallItem struct {
	card     Card
	revealed bool
	seen     bool
}

// Recall is the flip-card engine. The zero value is not usable; build one
// with NewRecall.
type Recall struct {
	topicID  string
	cards    []Card
	items    []recallItem
	cur      cursor
	notFound bool
}

// NewRecall copies cards into a fresh session.
func NewRecall(topicID string, cards []Card) *Recall {
	r := &Recall{
		topicID: topicID,
		cards:   append([]Card(nil), cards...),
	}
	r.rebuild()
	return r
}

func (r *Recall) rebuild() {
	r.items = make([]recallItem, len(r.cards))
	for i, c := range r.cards {
		r.items[i] = recallItem{card: c}
	}
	r.cur = cursor{total: len(r.items)}
}

func (r *Recall) Modality() Modality { return ModalityRecall }

func (r *Recall) TopicID() string { return r.topicID }

func (r *Recall) Current() (ItemView, bool) {
	if r.cur.empty() {
		return ItemView{}, false
	}
	it := r.items[r.cur.pos]
	return ItemView{
		ID:            it.card.ID,
		Term:          it.card.Term,
		Translation:   it.card.Translation,
		Transcription: it.card.Transcription,
		Example:       it.card.Example,
		AudioFile:     it.card.AudioFile,
		Revealed:      it.revealed,
		Seen:          it.seen,
	}, true
}

func (r *Recall) ProgressPercent() int { return r.cur.percent() }

// Completed reports whether every card has been shown at least once.
func (r *Recall) Completed() bool {
	if r.cur.empty() {
		return false
	}
	return r.seenCount() == len(r.items)
}

func (r *Recall) seenCount() int {
	n := 0
	for _, it := range r.items {
		if it.seen {
			n++
		}
	}
	return n
}

// Snapshot reports the current state without changing it.
func (r *Recall) Snapshot() Snapshot { return r.snapshot(EventStarted) }

func (r *Recall) snapshot(ev Event) Snapshot {
	completed := r.Completed()
	s := Snapshot{
		Event:           ev,
		Status:          r.cur.status(r.notFound, completed),
		Modality:        ModalityRecall,
		TopicID:         r.topicID,
		Total:           r.cur.total,
		ProgressPercent: r.cur.percent(),
		Completed:       completed,
		SeenCount:       r.seenCount(),
	}
	if v, ok := r.Current(); ok {
		s.Item = &v
		s.Cursor = r.cur.pos
		s.Revealed = v.Revealed
	}
	return s
}

func (r *Recall) ignored(err error) Snapshot {
	if r.notFound {
		err = ErrNotFound
	}
	return r.snapshot(EventIgnored).reject(err)
}

// Reveal shows the translation of the current card. Calling it again has no
// further effect.
func (r *Recall) Reveal() Snapshot {
	if r.cur.empty() {
		return r.ignored(ErrEmpty)
	}
	it := &r.items[r.cur.pos]
	it.revealed = true
	it.seen = true
	return r.snapshot(EventRevealed)
}

// ToggleReveal flips the current card either way.
func (r *Recall) ToggleReveal() Snapshot {
	if r.cur.empty() {
		return r.ignored(ErrEmpty)
	}
	it := &r.items[r.cur.pos]
	it.revealed = !it.revealed
	if it.revealed {
		it.seen = true
		return r.snapshot(EventRevealed)
	}
	return r.snapshot(EventHidden)
}

// Advance moves to the next card. It stops at the last card.
func (r *Recall) Advance() Snapshot {
	if r.cur.empty() {
		return r.ignored(ErrEmpty)
	}
	if !r.cur.forward() {
		return r.ignored(ErrAtBoundary)
	}
	return r.snapshot(EventAdvanced)
}

// Retreat moves to the previous card. It stops at the first card.
func (r *Recall) Retreat() Snapshot {
	if r.cur.empty() {
		return r.ignored(ErrEmpty)
	}
	if !r.cur.back() {
		return r.ignored(ErrAtBoundary)
	}
	return r.snapshot(EventRetreated)
}

// Reset starts over with the same cards and every card hidden.
func (r *Recall) Reset() Snapshot {
	r.rebuild()
	return r.snapshot(EventReset)
}

func (r *Recall) Outcomes() []Outcome {
	out := make([]Outcome, len(r.items))
	for i, it := range r.items {
		out[i] = Outcome{ID: it.card.ID, Seen: it.seen}
	}
	return out
}
