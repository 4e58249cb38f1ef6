package session

// Event names the transition that produced a snapshot.
type Event string

const (
	EventStarted   Event = "started"
	EventRevealed  Event = "revealed"
	EventHidden    Event = "hidden"
	EventAdvanced  Event = "advanced"
	EventRetreated Event = "retreated"
	EventAnswered  Event = "answered"
	EventCompleted Event = "completed"
	EventReset     Event = "reset"
	EventIgnored   Event = "ignored"
)

// Status is the coarse state a view renders from.
type Status string

const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
	StatusEmpty    Status = "empty"
	StatusNotFound Status = "not_found"
)

// Result is the completion payload handed to the caller at the end of a run.
type Result struct {
	Completed bool `json:"completed"`
	Score     int  `json:"score"`
	Total     int  `json:"total"`
}

// Outcome is the state of one item, as persisted when a run completes.
// Correct is nil for recall items and unanswered questions.
type Outcome struct {
	ID             string
	Seen           bool
	Answered       bool
	SelectedAnswer string
	Correct        *bool
}

// ItemView is a read-only copy of the item at the cursor with its session
// state. Quiz answers and explanations stay blank until the item is answered.
type ItemView struct {
	ID   string `json:"id"`
	Term string `json:"term"`

	Translation   string `json:"translation,omitempty"`
	Transcription string `json:"transcription,omitempty"`
	Example       string `json:"example,omitempty"`
	AudioFile     string `json:"audio_file,omitempty"`
	Revealed      bool   `json:"revealed"`
	Seen          bool   `json:"seen"`

	Options        []string `json:"options,omitempty"`
	SelectedAnswer string   `json:"selected_answer,omitempty"`
	Answered       bool     `json:"answered"`
	Correct        *bool    `json:"correct,omitempty"`
	CorrectAnswer  string   `json:"correct_answer,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
}

// Snapshot is the state of a session after an operation.
type Snapshot struct {
	Event           Event     `json:"event"`
	Status          Status    `json:"status"`
	Modality        Modality  `json:"modality"`
	TopicID         string    `json:"topic_id"`
	Item            *ItemView `json:"item"`
	Cursor          int       `json:"cursor"`
	Total           int       `json:"total"`
	ProgressPercent int       `json:"progress_percent"`
	Completed       bool      `json:"completed"`

	// recall
	Revealed  bool `json:"revealed"`
	SeenCount int  `json:"seen_count"`

	// quiz
	Answered       bool    `json:"answered"`
	Correct        *bool   `json:"correct,omitempty"`
	SelectedAnswer string  `json:"selected_answer,omitempty"`
	Score          int     `json:"score"`
	Result         *Result `json:"result,omitempty"`

	// Rejected is set when the operation was absorbed as a no-op.
	Rejected error  `json:"-"`
	Reason   string `json:"reason,omitempty"`
}

func (s Snapshot) reject(err error) Snapshot {
	s.Event = EventIgnored
	s.Rejected = err
	s.Reason = err.Error()
	return s
}

// Handoff returns the completion payload a caller should persist, or nil.
// Recall runs hand off once every card was seen; quiz runs once the last
// item was finalized.
func (s Snapshot) Handoff() *Result {
	if s.Result != nil {
		r := *s.Result
		return &r
	}
	if s.Modality == ModalityRecall && s.Completed {
		return &Result{Completed: true, Score: s.SeenCount, Total: s.Total}
	}
	return nil
}
