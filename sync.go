package dealz

import (
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultEchoWindow = 5 * time.Second

// TimelineItem is one entry in the day-grouped view of a conversation.
// It is either a day marker or a message.
type TimelineItem struct {
	Day     time.Time
	Message *Message
}

// IsDayMarker reports whether the item separates two calendar days.
func (ti TimelineItem) IsDayMarker() bool { return ti.Message == nil }

// Synchronizer merges the three message sources of a live conversation
// into one display list: the history fetch, optimistic local sends and
// incoming realtime or polled messages. Messages keep insertion order;
// the list is never re-sorted by timestamp.
//
// The same message can arrive more than once: the socket echoes a sent
// message back, and the poller refetches everything. An incoming message
// is dropped as a duplicate when it carries a server id the list already
// holds, or when the same sender sent the same content within the echo
// window. When the duplicate it matches is a pending local send, the
// pending message is upgraded to sent instead and adopts the server id.
type Synchronizer struct {
	mu         sync.Mutex
	selfID     int
	echoWindow time.Duration
	messages   []Message
}

// NewSynchronizer creates a synchronizer for a conversation viewed by
// selfID. A zero echoWindow selects the default.
func NewSynchronizer(selfID int, echoWindow time.Duration) *Synchronizer {
	if echoWindow <= 0 {
		echoWindow = defaultEchoWindow
	}
	return &Synchronizer{selfID: selfID, echoWindow: echoWindow}
}

// Seed replaces the list with fetched history. Pending local sends are
// dropped too; Seed is for opening a conversation, not refreshing one.
func (s *Synchronizer) Seed(msgs []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make([]Message, len(msgs))
	copy(s.messages, msgs)
	for i := range s.messages {
		if s.messages[i].Status == "" {
			s.messages[i].Status = StatusSent
		}
	}
}

// AppendOptimistic adds a local message in the pending state and returns
// a copy of it. The message carries a temporary id until the server
// confirms it.
func (s *Synchronizer) AppendOptimistic(content string, receiverID, chatID int) Message {
	msg := Message{
		TempID:     "temp-" + uuid.NewString(),
		SenderID:   s.selfID,
		ReceiverID: receiverID,
		ChatID:     chatID,
		Content:    content,
		Status:     StatusPendingSend,
	}
	msg.stampLocal(time.Now())

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return msg
}

// ReconcileIncoming merges a message from the socket, the poller or the
// send confirmation. It returns true when the list changed.
func (s *Synchronizer) ReconcileIncoming(incoming Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		existing := &s.messages[i]

		if incoming.ID != "" && existing.ID == incoming.ID {
			return false
		}
		if existing.Content == incoming.Content &&
			existing.SenderID == incoming.SenderID &&
			s.withinEchoWindow(existing, &incoming) {
			if existing.Status == StatusPendingSend {
				existing.Status = StatusSent
				if incoming.ID != "" {
					existing.ID = incoming.ID
				}
				return true
			}
			return false
		}
	}

	if incoming.Status == "" {
		incoming.Status = StatusSent
	}
	s.messages = append(s.messages, incoming)
	return true
}

// withinEchoWindow compares the send times of two messages. A message
// without a parseable timestamp matches unconditionally: local sends are
// stamped moments before the server echo comes back.
func (s *Synchronizer) withinEchoWindow(a, b *Message) bool {
	at, bt := a.SentAt(), b.SentAt()
	if at.IsZero() || bt.IsZero() {
		return true
	}
	d := at.Sub(bt)
	if d < 0 {
		d = -d
	}
	return d <= s.echoWindow
}

// MarkError flags a pending local send as failed. Unknown or already
// confirmed ids are ignored.
func (s *Synchronizer) MarkError(tempID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].TempID == tempID && s.messages[i].Status == StatusPendingSend {
			s.messages[i].Status = StatusDeliveryError
			return
		}
	}
}

// Messages returns a copy of the list in display order.
func (s *Synchronizer) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the list.
func (s *Synchronizer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// ByDay yields the display list with a day marker before the first
// message of each local calendar day. The snapshot is taken once, when
// iteration starts.
func (s *Synchronizer) ByDay() iter.Seq[TimelineItem] {
	msgs := s.Messages()
	return func(yield func(TimelineItem) bool) {
		var currentDay time.Time
		for i := range msgs {
			day := localDay(msgs[i].SentAt())
			if !day.IsZero() && !day.Equal(currentDay) {
				currentDay = day
				if !yield(TimelineItem{Day: day}) {
					return
				}
			}
			if !yield(TimelineItem{Message: &msgs[i]}) {
				return
			}
		}
	}
}

// localDay truncates t to midnight in the local time zone.
func localDay(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
