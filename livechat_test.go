package dealz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

// chatBackend is a minimal in-memory server for one conversation.
type chatBackend struct {
	mu       sync.Mutex
	chatID   int
	messages []Message
	sendFail bool
	nextID   int
}

func newChatBackend(chatID int, history ...Message) *chatBackend {
	return &chatBackend{chatID: chatID, messages: history, nextID: 100}
}

func (b *chatBackend) addServerMessage(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	m.ID = strconv.Itoa(b.nextID)
	b.messages = append(b.messages, m)
}

func (b *chatBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chats/"+strconv.Itoa(b.chatID), func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		chat := Chat{ChatID: b.chatID, SenderID: 1, ReceiverID: 2, Messages: append([]Message{}, b.messages...)}
		b.mu.Unlock()
		writeJSON(t, w, chat)
	})
	mux.HandleFunc("GET /api/messages/chats/"+strconv.Itoa(b.chatID)+"/messages", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		msgs := append([]Message{}, b.messages...)
		b.mu.Unlock()
		writeJSON(t, w, msgs)
	})
	mux.HandleFunc("POST /api/messages/send", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.sendFail {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"send failed"}`)
			return
		}
		var m Message
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Errorf("decode send body: %v", err)
		}
		b.nextID++
		m.ID = strconv.Itoa(b.nextID)
		m.stampLocal(time.Now())
		b.messages = append(b.messages, m)
		writeJSON(t, w, m)
	})
	return mux
}

func openTestChat(t *testing.T, b *chatBackend, ft *fakeTransport) *LiveChat {
	t.Helper()
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)

	c := NewClient(&Session{Token: "tok", UserID: 1},
		WithBaseURL(srv.URL),
		WithRetryDelay(10*time.Millisecond),
		WithPollInterval(10*time.Millisecond),
	)
	c.Realtime().SetTransport(ft)

	lc, err := c.OpenChat(context.Background(), b.chatID)
	if err != nil {
		t.Fatalf("open chat: %v", err)
	}
	t.Cleanup(lc.Close)
	return lc
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestLiveChatOpen(t *testing.T) {
	history := Message{ID: "1", SenderID: 2, ReceiverID: 1, ChatID: 7, Content: "still available?"}
	history.stampLocal(time.Now().Add(-time.Hour))

	ft := newFakeTransport()
	lc := openTestChat(t, newChatBackend(7, history), ft)

	msgs := lc.Messages()
	if len(msgs) != 1 || msgs[0].Content != "still available?" {
		t.Fatalf("expected seeded history, got %+v", msgs)
	}

	conn := waitConn(t, ft)
	sub := waitFrame(t, conn)
	if sub.Destination != "/topic/chat/7" {
		t.Fatalf("expected subscription to chat 7, got %+v", sub)
	}
}

func TestLiveChatIncomingRealtime(t *testing.T) {
	ft := newFakeTransport()
	lc := openTestChat(t, newChatBackend(7), ft)

	updates := make(chan struct{}, 16)
	lc.OnUpdate(func() { updates <- struct{}{} })

	conn := waitConn(t, ft)
	waitFrame(t, conn)

	incoming := Message{ID: "50", SenderID: 2, ReceiverID: 1, ChatID: 7, Content: "yes, pick up tonight?"}
	incoming.stampLocal(time.Now())
	conn.push(t, incoming)

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("no update after incoming message")
	}
	msgs := lc.Messages()
	if len(msgs) != 1 || msgs[0].ID != "50" {
		t.Fatalf("expected the incoming message merged, got %+v", msgs)
	}

	// A frame for another chat is ignored.
	stray := Message{ID: "51", SenderID: 3, ReceiverID: 1, ChatID: 8, Content: "wrong room"}
	conn.push(t, stray)
	time.Sleep(50 * time.Millisecond)
	if got := lc.sync.Len(); got != 1 {
		t.Fatalf("expected stray frame dropped, got %d messages", got)
	}
}

func TestLiveChatSend(t *testing.T) {
	t.Run("confirmed send adopts the server id", func(t *testing.T) {
		ft := newFakeTransport()
		lc := openTestChat(t, newChatBackend(7), ft)
		conn := waitConn(t, ft)
		waitFrame(t, conn)

		sent, err := lc.Send(context.Background(), "I can do 20")
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if sent.ID == "" {
			t.Fatal("expected server id on the confirmed message")
		}

		msgs := lc.Messages()
		if len(msgs) != 1 {
			t.Fatalf("expected confirm to replace the pending entry, got %d messages", len(msgs))
		}
		if msgs[0].Status != StatusSent || msgs[0].ID != sent.ID {
			t.Fatalf("unexpected message state: %+v", msgs[0])
		}
	})

	t.Run("failed send stays visible as an error", func(t *testing.T) {
		b := newChatBackend(7)
		b.sendFail = true
		ft := newFakeTransport()
		lc := openTestChat(t, b, ft)
		conn := waitConn(t, ft)
		waitFrame(t, conn)

		if _, err := lc.Send(context.Background(), "hello?"); err == nil {
			t.Fatal("expected send error")
		}

		msgs := lc.Messages()
		if len(msgs) != 1 {
			t.Fatalf("expected the failed message to remain, got %d", len(msgs))
		}
		if msgs[0].Status != StatusDeliveryError {
			t.Fatalf("expected delivery-error, got %q", msgs[0].Status)
		}
	})

	t.Run("socket echo of own send is not duplicated", func(t *testing.T) {
		ft := newFakeTransport()
		lc := openTestChat(t, newChatBackend(7), ft)
		conn := waitConn(t, ft)
		waitFrame(t, conn)

		sent, err := lc.Send(context.Background(), "deal")
		if err != nil {
			t.Fatalf("send: %v", err)
		}

		echo := sent
		echo.Status = ""
		conn.push(t, echo)

		time.Sleep(50 * time.Millisecond)
		if got := len(lc.Messages()); got != 1 {
			t.Fatalf("expected echo deduplicated, got %d messages", got)
		}
	})
}

func TestLiveChatPollFallback(t *testing.T) {
	b := newChatBackend(7)
	ft := newFakeTransport()
	lc := openTestChat(t, b, ft)

	conn := waitConn(t, ft)
	waitFrame(t, conn)
	waitFor(t, "live socket", func() bool { return lc.ConnState() == StateConnected })
	if got := lc.poller.State(); got != PollerIdle {
		t.Fatalf("expected poller idle while live, got %q", got)
	}

	// Drop the socket and keep every redial failing. The poller takes
	// over and picks up messages the socket would have delivered.
	ft.mu.Lock()
	ft.failures = 1 << 20
	ft.mu.Unlock()
	conn.Close()

	waitFor(t, "poller start", func() bool { return lc.poller.State() == PollerRunning })

	polled := Message{SenderID: 2, ReceiverID: 1, ChatID: 7, Content: "sold to you"}
	polled.stampLocal(time.Now())
	b.addServerMessage(polled)

	waitFor(t, "polled message", func() bool {
		for _, m := range lc.Messages() {
			if m.Content == "sold to you" {
				return true
			}
		}
		return false
	})

	// Let the socket come back; polling must stop.
	ft.mu.Lock()
	ft.failures = 0
	ft.mu.Unlock()

	next := waitConn(t, ft)
	waitFrame(t, next)
	waitFor(t, "poller stop", func() bool { return lc.poller.State() == PollerIdle })
}
