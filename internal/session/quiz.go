package session

type quizItem struct {
	question Question
	selected string
	answered bool
	correct  bool
}

// Quiz is the multiple-choice engine. Forward movement is gated on the
// current question being answered and there is no way back.
type Quiz struct {
	topicID   string
	questions []Question
	items     []quizItem
	cur       cursor
	score     int
	finalized bool
	notFound  bool
}

// NewQuiz copies questions into a fresh session. Option order is kept.
func NewQuiz(topicID string, questions []Question) *Quiz {
	qs := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}
	z := &Quiz{topicID: topicID, questions: qs}
	z.rebuild()
	return z
}

func (z *Quiz) rebuild() {
	z.items = make([]quizItem, len(z.questions))
	for i, q := range z.questions {
		z.items[i] = quizItem{question: q}
	}
	z.cur = cursor{total: len(z.items)}
	z.score = 0
	z.finalized = false
}

func (z *Quiz) Modality() Modality { return ModalityQuiz }

func (z *Quiz) TopicID() string { return z.topicID }

func (z *Quiz) Current() (ItemView, bool) {
	if z.cur.empty() {
		return ItemView{}, false
	}
	it := z.items[z.cur.pos]
	v := ItemView{
		ID:       it.question.ID,
		Term:     it.question.Term,
		Options:  append([]string(nil), it.question.Options...),
		Answered: it.answered,
	}
	if it.answered {
		correct := it.correct
		v.SelectedAnswer = it.selected
		v.Correct = &correct
		v.CorrectAnswer = it.question.CorrectAnswer
		v.Explanation = it.question.Explanation
	}
	return v, true
}

func (z *Quiz) ProgressPercent() int { return z.cur.percent() }

// Score is the number of questions answered correctly.
func (z *Quiz) Score() int { return z.score }

// Completed is true once every question is answered or the last one was
// finalized with Advance.
func (z *Quiz) Completed() bool {
	if z.cur.empty() {
		return false
	}
	if z.finalized {
		return true
	}
	for _, it := range z.items {
		if !it.answered {
			return false
		}
	}
	return true
}

func (z *Quiz) Snapshot() Snapshot { return z.snapshot(EventStarted) }

func (z *Quiz) snapshot(ev Event) Snapshot {
	completed := z.Completed()
	s := Snapshot{
		Event:           ev,
		Status:          z.cur.status(z.notFound, completed),
		Modality:        ModalityQuiz,
		TopicID:         z.topicID,
		Total:           z.cur.total,
		ProgressPercent: z.cur.percent(),
		Completed:       completed,
		Score:           z.score,
	}
	if v, ok := z.Current(); ok {
		s.Item = &v
		s.Cursor = z.cur.pos
		s.Answered = v.Answered
		s.SelectedAnswer = v.SelectedAnswer
		if v.Correct != nil {
			c := *v.Correct
			s.Correct = &c
		}
	}
	if z.finalized {
		s.Result = &Result{Completed: true, Score: z.score, Total: z.cur.total}
	}
	return s
}

func (z *Quiz) ignored(err error) Snapshot {
	if z.notFound {
		err = ErrNotFound
	}
	return z.snapshot(EventIgnored).reject(err)
}

// Select answers the current question. A second selection on the same
// question is ignored and leaves the first answer and the score alone.
func (z *Quiz) Select(answer string) Snapshot {
	if z.cur.empty() {
		return z.ignored(ErrEmpty)
	}
	it := &z.items[z.cur.pos]
	if it.answered {
		return z.ignored(ErrAlreadyAnswered)
	}
	it.selected = answer
	it.answered = true
	it.correct = answer == it.question.CorrectAnswer
	if it.correct {
		z.score++
	}
	return z.snapshot(EventAnswered)
}

// Advance moves to the next question once the current one is answered. On
// the last question it finalizes the run instead and every further call
// returns the same Result.
func (z *Quiz) Advance() Snapshot {
	if z.cur.empty() {
		return z.ignored(ErrEmpty)
	}
	if !z.items[z.cur.pos].answered {
		return z.ignored(ErrNotAnswered)
	}
	if z.cur.last() {
		z.finalized = true
		return z.snapshot(EventCompleted)
	}
	z.cur.forward()
	return z.snapshot(EventAdvanced)
}

// Reset clears every answer and the score and goes back to the first question.
func (z *Quiz) Reset() Snapshot {
	z.rebuild()
	return z.snapshot(EventReset)
}

func (z *Quiz) Outcomes() []Outcome {
	out := make([]Outcome, len(z.items))
	for i, it := range z.items {
		o := Outcome{ID: it.question.ID, Seen: it.answered, Answered: it.answered, SelectedAnswer: it.selected}
		if it.answered {
			correct := it.correct
			o.Correct = &correct
		}
		out[i] = o
	}
	return out
}
