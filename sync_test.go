package dealz

import (
	"testing"
	"time"
)

func wireMsg(id string, sender int, content string, at time.Time) Message {
	m := Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: 99,
		ChatID:     7,
		Content:    content,
		Status:     StatusSent,
	}
	m.stampLocal(at)
	return m
}

// ============================================================================
// Reconciliation
// ============================================================================

func TestSynchronizerReconcile(t *testing.T) {
	now := time.Now()

	t.Run("duplicate server id dropped", func(t *testing.T) {
		s := NewSynchronizer(1, 0)
		s.Seed([]Message{wireMsg("10", 2, "hey", now)})

		if s.ReconcileIncoming(wireMsg("10", 2, "hey", now)) {
			t.Fatal("expected duplicate id to be dropped")
		}
		if s.Len() != 1 {
			t.Fatalf("expected 1 message, got %d", s.Len())
		}
	})

	t.Run("echo within window dropped", func(t *testing.T) {
		s := NewSynchronizer(1, 5*time.Second)
		s.Seed([]Message{wireMsg("10", 2, "hey", now)})

		echo := wireMsg("", 2, "hey", now.Add(2*time.Second))
		if s.ReconcileIncoming(echo) {
			t.Fatal("expected echo to be dropped")
		}
		if s.Len() != 1 {
			t.Fatalf("expected 1 message, got %d", s.Len())
		}
	})

	t.Run("same content outside window kept", func(t *testing.T) {
		s := NewSynchronizer(1, 5*time.Second)
		s.Seed([]Message{wireMsg("10", 2, "ok", now)})

		later := wireMsg("11", 2, "ok", now.Add(30*time.Second))
		if !s.ReconcileIncoming(later) {
			t.Fatal("expected repeated content outside the window to be kept")
		}
		if s.Len() != 2 {
			t.Fatalf("expected 2 messages, got %d", s.Len())
		}
	})

	t.Run("same content different sender kept", func(t *testing.T) {
		s := NewSynchronizer(1, 5*time.Second)
		s.Seed([]Message{wireMsg("10", 2, "hey", now)})

		if !s.ReconcileIncoming(wireMsg("11", 3, "hey", now)) {
			t.Fatal("expected message from a different sender to be kept")
		}
	})

	t.Run("pending upgraded on confirm", func(t *testing.T) {
		s := NewSynchronizer(1, 5*time.Second)
		pending := s.AppendOptimistic("selling my desk", 2, 7)

		if pending.Status != StatusPendingSend {
			t.Fatalf("expected pending status, got %q", pending.Status)
		}
		if pending.Key() != pending.TempID {
			t.Fatalf("expected temp id to be authoritative, got %q", pending.Key())
		}

		confirm := wireMsg("42", 1, "selling my desk", time.Now())
		if !s.ReconcileIncoming(confirm) {
			t.Fatal("expected confirm to change the list")
		}

		msgs := s.Messages()
		if len(msgs) != 1 {
			t.Fatalf("expected upgrade in place, got %d messages", len(msgs))
		}
		got := msgs[0]
		if got.Status != StatusSent {
			t.Fatalf("expected sent status, got %q", got.Status)
		}
		if got.ID != "42" {
			t.Fatalf("expected server id adopted, got %q", got.ID)
		}
		if got.Key() != "42" {
			t.Fatalf("expected server id authoritative, got %q", got.Key())
		}
	})

	t.Run("echo without id still upgrades pending", func(t *testing.T) {
		s := NewSynchronizer(1, 5*time.Second)
		pending := s.AppendOptimistic("is this available?", 2, 7)

		echo := wireMsg("", 1, "is this available?", time.Now())
		if !s.ReconcileIncoming(echo) {
			t.Fatal("expected pending upgrade")
		}

		got := s.Messages()[0]
		if got.Status != StatusSent {
			t.Fatalf("expected sent status, got %q", got.Status)
		}
		if got.Key() != pending.TempID {
			t.Fatalf("expected temp id kept until a server id arrives, got %q", got.Key())
		}
	})
}

func TestSynchronizerInsertionOrder(t *testing.T) {
	now := time.Now()
	s := NewSynchronizer(1, 0)

	// History arrives with timestamps out of order; display order must
	// still follow arrival order.
	s.Seed([]Message{
		wireMsg("1", 2, "first", now),
		wireMsg("2", 2, "second", now.Add(-time.Hour)),
	})
	s.ReconcileIncoming(wireMsg("3", 2, "third", now.Add(-2*time.Hour)))

	var got []string
	for _, m := range s.Messages() {
		got = append(got, m.Content)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSynchronizerMarkError(t *testing.T) {
	s := NewSynchronizer(1, 0)
	pending := s.AppendOptimistic("hello", 2, 7)

	s.MarkError(pending.TempID)
	if got := s.Messages()[0].Status; got != StatusDeliveryError {
		t.Fatalf("expected delivery-error, got %q", got)
	}

	// Failed messages stay visible.
	if s.Len() != 1 {
		t.Fatalf("expected failed message to remain, got %d", s.Len())
	}

	t.Run("sent messages untouched", func(t *testing.T) {
		s := NewSynchronizer(1, 0)
		p := s.AppendOptimistic("hi", 2, 7)
		s.ReconcileIncoming(wireMsg("5", 1, "hi", time.Now()))

		s.MarkError(p.TempID)
		if got := s.Messages()[0].Status; got != StatusSent {
			t.Fatalf("expected sent to survive MarkError, got %q", got)
		}
	})
}

// ============================================================================
// Day grouping
// ============================================================================

func TestSynchronizerByDay(t *testing.T) {
	day1 := time.Date(2026, 3, 9, 14, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)

	s := NewSynchronizer(1, 0)
	s.Seed([]Message{
		wireMsg("1", 2, "a", day1),
		wireMsg("2", 1, "b", day1.Add(time.Minute)),
		wireMsg("3", 2, "c", day2),
	})

	var items []TimelineItem
	for item := range s.ByDay() {
		items = append(items, item)
	}

	if len(items) != 5 {
		t.Fatalf("expected 2 markers + 3 messages, got %d items", len(items))
	}
	if !items[0].IsDayMarker() || !items[0].Day.Equal(localDay(day1)) {
		t.Fatalf("expected day marker for %v first, got %+v", day1, items[0])
	}
	if items[1].IsDayMarker() || items[1].Message.Content != "a" {
		t.Fatalf("expected message a, got %+v", items[1])
	}
	if items[2].IsDayMarker() || items[2].Message.Content != "b" {
		t.Fatalf("expected message b with no extra marker, got %+v", items[2])
	}
	if !items[3].IsDayMarker() || !items[3].Day.Equal(localDay(day2)) {
		t.Fatalf("expected day marker for %v, got %+v", day2, items[3])
	}
	if items[4].IsDayMarker() || items[4].Message.Content != "c" {
		t.Fatalf("expected message c, got %+v", items[4])
	}

	t.Run("unparseable timestamp gets no marker", func(t *testing.T) {
		s := NewSynchronizer(1, 0)
		s.Seed([]Message{{ID: "1", SenderID: 2, Content: "undated", Status: StatusSent}})

		var items []TimelineItem
		for item := range s.ByDay() {
			items = append(items, item)
		}
		if len(items) != 1 || items[0].IsDayMarker() {
			t.Fatalf("expected only the message, got %+v", items)
		}
	})

	t.Run("stops when yield returns false", func(t *testing.T) {
		count := 0
		for range s.ByDay() {
			count++
			break
		}
		if count != 1 {
			t.Fatalf("expected early stop after 1 item, got %d", count)
		}
	})
}
