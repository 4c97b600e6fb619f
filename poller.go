package dealz

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultPollInterval = 10 * time.Second

// PollerState is the lifecycle state of a Poller.
type PollerState string

const (
	PollerIdle    PollerState = "idle"
	PollerRunning PollerState = "running"
	PollerStopped PollerState = "stopped"
)

// Poller refetches a conversation on a fixed interval while the realtime
// connection is down. It moves between idle and running as the socket
// drops and recovers; Shutdown ends it for good.
//
// Fetch errors are logged and swallowed. A tick that fires while the
// previous fetch is still in flight is skipped, and a tick that fires
// after Stop re-checks the state before touching the network.
type Poller struct {
	interval time.Duration
	logger   *zap.Logger
	fetch    func(ctx context.Context) ([]Message, error)
	sink     func([]Message)

	mu       sync.Mutex
	state    PollerState
	inFlight bool
	cancel   context.CancelFunc
}

// NewPoller creates a poller that delivers each successful fetch to sink.
// A zero interval selects the default.
func NewPoller(interval time.Duration, logger *zap.Logger, fetch func(ctx context.Context) ([]Message, error), sink func([]Message)) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		interval: interval,
		logger:   logger,
		fetch:    fetch,
		sink:     sink,
		state:    PollerIdle,
	}
}

// State returns the current lifecycle state.
func (p *Poller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start begins polling. It is a no-op when already running or shut down.
// The first fetch happens one interval in, not immediately: the caller
// seeds the conversation itself before starting the poller.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.state != PollerIdle {
		p.mu.Unlock()
		return
	}
	p.state = PollerRunning
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	go p.loop(ctx)
}

// Stop pauses polling, returning the poller to idle. A fetch already in
// flight finishes but its result is discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state != PollerRunning {
		p.mu.Unlock()
		return
	}
	p.state = PollerIdle
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
}

// Shutdown stops the poller permanently. Start becomes a no-op after.
func (p *Poller) Shutdown() {
	p.mu.Lock()
	p.state = PollerStopped
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go p.tick(ctx)
		}
	}
}

// tick runs one fetch. The state is re-checked at fire time: a Stop that
// raced the ticker wins.
func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	if p.state != PollerRunning || p.inFlight {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	msgs, err := p.fetch(ctx)
	if err != nil {
		p.logger.Warn("poll fetch failed", zap.Error(err))
		return
	}

	p.mu.Lock()
	discard := p.state != PollerRunning
	p.mu.Unlock()
	if discard {
		return
	}
	p.sink(msgs)
}
