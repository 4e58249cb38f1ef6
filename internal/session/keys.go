package session

import "strings"

// Key is a keyboard key as reported by the browser's KeyboardEvent.code.
type Key string

const (
	KeySpace      Key = "Space"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowLeft  Key = "ArrowLeft"
)

// ParseKey normalises the code and key spellings browsers send.
func ParseKey(s string) Key {
	switch strings.ToLower(s) {
	case " ", "space", "spacebar":
		return KeySpace
	case "arrowright", "right":
		return KeyArrowRight
	case "arrowleft", "left":
		return KeyArrowLeft
	}
	return Key(s)
}

// KeyBinding routes key presses to one recall session until it is closed.
type KeyBinding struct {
	target *Recall
	closed bool
}

// Bind subscribes keyboard input to r.
func Bind(r *Recall) *KeyBinding {
	return &KeyBinding{target: r}
}

// Active reports whether the binding still forwards keys.
func (b *KeyBinding) Active() bool { return b != nil && !b.closed }

// Handle applies the action bound to k. Unbound keys, and every key after
// Close, are absorbed without touching the session.
func (b *KeyBinding) Handle(k Key) Snapshot {
	if !b.Active() {
		return Snapshot{Event: EventIgnored, Modality: ModalityRecall}.reject(ErrReleased)
	}
	switch k {
	case KeySpace:
		return b.target.ToggleReveal()
	case KeyArrowRight:
		return b.target.Advance()
	case KeyArrowLeft:
		return b.target.Retreat()
	}
	return b.target.snapshot(EventIgnored).reject(ErrUnboundKey)
}

// Close releases the binding. It is safe to call more than once.
func (b *KeyBinding) Close() {
	if b == nil {
		return
	}
	b.closed = true
	b.target = nil
}
