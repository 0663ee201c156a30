package tutor

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger is the append-only, ordered transcript of one tutoring session.
// Learner messages are never deduplicated; tutor messages are suppressed when
// they repeat an already-seen text or the immediately preceding tutor entry.
type Ledger struct {
	mu       sync.Mutex
	messages []ChatMessage
	seen     map[string]struct{}
	now      func() time.Time
}

// NewLedger creates an empty session ledger.
func NewLedger() *Ledger {
	return &Ledger{
		seen: make(map[string]struct{}),
		now:  time.Now,
	}
}

func dedupKey(text string) string {
	return strings.TrimSpace(text)
}

// Restore seeds the ledger from persisted messages in their stored order and
// rebuilds the seen-set so dedup stays correct across session reloads.
func (l *Ledger) Restore(messages []ChatMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append([]ChatMessage(nil), messages...)
	l.seen = make(map[string]struct{}, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleTutor {
			l.seen[dedupKey(msg.Text)] = struct{}{}
		}
	}
}

// AppendLearner records a learner message. Repeats are legitimate and always
// appended.
func (l *Ledger) AppendLearner(text string) ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleLearner,
		Text:      text,
		Timestamp: l.now(),
	}
	l.messages = append(l.messages, msg)
	return msg
}

// AppendTutorIfUnique records a tutor message unless its normalized form has
// been seen before or matches the most recent tutor entry. The returned flag
// tells callers whether a genuinely new message was added, so notification
// side effects fire exactly once.
func (l *Ledger) AppendTutorIfUnique(text string) (ChatMessage, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := dedupKey(text)
	if _, dup := l.seen[key]; dup {
		return ChatMessage{}, false
	}
	if last, ok := l.lastTutorLocked(); ok && dedupKey(last.Text) == key {
		return ChatMessage{}, false
	}

	msg := ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleTutor,
		Text:      text,
		Timestamp: l.now(),
	}
	l.seen[key] = struct{}{}
	l.messages = append(l.messages, msg)
	return msg, true
}

func (l *Ledger) lastTutorLocked() (ChatMessage, bool) {
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].Role == RoleTutor {
			return l.messages[i], true
		}
	}
	return ChatMessage{}, false
}

// Messages returns a copy of the transcript in insertion order.
func (l *Ledger) Messages() []ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ChatMessage(nil), l.messages...)
}

// Len returns the number of recorded messages.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
