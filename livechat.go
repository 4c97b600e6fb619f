package dealz

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"go.uber.org/zap"
)

// LiveChat is one open conversation. It owns the synchronizer holding the
// display list, keeps the realtime subscription pointed at the chat and
// runs the fallback poller whenever the socket is down.
//
// Close it when the user leaves the conversation; the client's realtime
// connection and the poller are torn down with it.
type LiveChat struct {
	client *Client
	chat   *Chat
	sync   *Synchronizer
	poller *Poller
	logger *zap.Logger

	mu       sync.Mutex
	onUpdate func()
	closed   bool
}

// OpenChat loads a conversation and brings it live: history is fetched
// and seeded, the realtime subscription switches to this chat, and the
// fallback poller stands by for socket outages. Only one chat is live
// per client; opening another one replaces the subscription.
func (c *Client) OpenChat(ctx context.Context, chatID int) (*LiveChat, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	chat, err := c.Chats().Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("open chat %d: %w", chatID, err)
	}

	lc := &LiveChat{
		client: c,
		chat:   chat,
		sync:   NewSynchronizer(c.session.UserID, c.echoWindow),
		logger: c.logger,
	}
	lc.sync.Seed(chat.Messages)

	lc.poller = NewPoller(c.pollInterval, c.logger,
		func(ctx context.Context) ([]Message, error) {
			return c.Messages().ListForChat(ctx, chatID)
		},
		lc.absorb,
	)

	rt := c.Realtime()
	rt.OnMessage(lc.handleIncoming)
	rt.OnStateChange(lc.handleConnState)
	if err := rt.Connect(ctx, chatID); err != nil {
		lc.poller.Shutdown()
		return nil, err
	}

	c.logger.Info("chat opened",
		zap.Int("chatId", chatID),
		zap.Int("history", len(chat.Messages)))
	return lc, nil
}

// Chat returns the conversation metadata loaded at open time.
func (lc *LiveChat) Chat() *Chat { return lc.chat }

// ConnState returns the realtime connection state.
func (lc *LiveChat) ConnState() ConnState { return lc.client.Realtime().State() }

// Messages returns the display list in insertion order.
func (lc *LiveChat) Messages() []Message { return lc.sync.Messages() }

// ByDay yields the display list with day markers.
func (lc *LiveChat) ByDay() iter.Seq[TimelineItem] { return lc.sync.ByDay() }

// OnUpdate registers a callback fired after the display list changes. It
// runs on whichever goroutine delivered the change; keep it short.
func (lc *LiveChat) OnUpdate(h func()) {
	lc.mu.Lock()
	lc.onUpdate = h
	lc.mu.Unlock()
}

// Send delivers a message through the REST send path. The message shows
// up in the list immediately as a pending send and is upgraded when the
// server confirms it. On failure it stays visible, flagged as failed,
// and the error is returned.
func (lc *LiveChat) Send(ctx context.Context, content string) (Message, error) {
	pending := lc.sync.AppendOptimistic(content, lc.chat.PeerID(lc.client.session.UserID), lc.chat.ChatID)
	lc.notify()

	sent, err := lc.client.Messages().Send(ctx, &pending)
	if err != nil {
		lc.sync.MarkError(pending.TempID)
		lc.notify()
		return pending, fmt.Errorf("send message: %w", err)
	}

	if lc.sync.ReconcileIncoming(*sent) {
		lc.notify()
	}
	return *sent, nil
}

// Close tears down the realtime subscription and the poller. Safe to call
// more than once.
func (lc *LiveChat) Close() {
	lc.mu.Lock()
	if lc.closed {
		lc.mu.Unlock()
		return
	}
	lc.closed = true
	lc.mu.Unlock()

	lc.client.Realtime().Disconnect()
	lc.poller.Shutdown()
}

// handleIncoming merges a socket message. Frames for other chats are
// possible right after switching conversations and are dropped.
func (lc *LiveChat) handleIncoming(msg Message) {
	if msg.ChatID != 0 && msg.ChatID != lc.chat.ChatID {
		return
	}
	if lc.sync.ReconcileIncoming(msg) {
		lc.notify()
	}
}

// handleConnState toggles the fallback poller: polling runs exactly when
// the socket is not delivering.
func (lc *LiveChat) handleConnState(s ConnState) {
	if s.Live() {
		lc.poller.Stop()
	} else {
		lc.poller.Start()
	}
	lc.notify()
}

// absorb merges a polled history fetch into the display list.
func (lc *LiveChat) absorb(msgs []Message) {
	changed := false
	for _, m := range msgs {
		if lc.sync.ReconcileIncoming(m) {
			changed = true
		}
	}
	if changed {
		lc.notify()
	}
}

func (lc *LiveChat) notify() {
	lc.mu.Lock()
	h := lc.onUpdate
	lc.mu.Unlock()
	if h != nil {
		h()
	}
}
