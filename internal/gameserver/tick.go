package gameserver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/game/idle"
)

// TickSource delivers wall-clock ticks to the TickLoop.
type TickSource interface {
	// C returns the channel ticks arrive on.
	C() <-chan time.Time
	// Stop releases the source. Calling it twice is safe.
	Stop()
}

// TickerSource is a TickSource backed by time.Ticker.
type TickerSource struct {
	ticker *time.Ticker
	once   sync.Once
}

// NewTickerSource returns a TickSource firing every interval.
//
// Precondition: interval must be > 0.
func NewTickerSource(interval time.Duration) *TickerSource {
	if interval <= 0 {
		panic("gameserver.NewTickerSource: interval must be > 0")
	}
	return &TickerSource{ticker: time.NewTicker(interval)}
}

// C implements TickSource.
func (s *TickerSource) C() <-chan time.Time { return s.ticker.C }

// Stop implements TickSource.
func (s *TickerSource) Stop() { s.once.Do(s.ticker.Stop) }

// ManualSource is a TickSource driven by Fire. It is meant for tests and
// offline catch-up.
type ManualSource struct {
	ch   chan time.Time
	once sync.Once
	done chan struct{}
}

// NewManualSource returns an unfired ManualSource.
func NewManualSource() *ManualSource {
	return &ManualSource{ch: make(chan time.Time), done: make(chan struct{})}
}

// C implements TickSource.
func (s *ManualSource) C() <-chan time.Time { return s.ch }

// Stop implements TickSource. Pending and later Fire calls return false.
func (s *ManualSource) Stop() { s.once.Do(func() { close(s.done) }) }

// Fire delivers one tick, blocking until the loop receives it or ctx ends.
//
// Postcondition: returns true when the tick was received.
func (s *ManualSource) Fire(ctx context.Context) bool {
	select {
	case s.ch <- time.Now():
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// TickLoop applies one idle tick through the engine for every tick the
// source delivers and fans the reports out to subscribers.
type TickLoop struct {
	engine *Engine
	source TickSource
	logger *zap.Logger

	mu          sync.Mutex
	subscribers map[chan<- idle.Report]struct{}
}

// NewTickLoop creates a stopped TickLoop.
//
// Precondition: engine, source and logger must be non-nil.
func NewTickLoop(engine *Engine, source TickSource, logger *zap.Logger) *TickLoop {
	if engine == nil || source == nil || logger == nil {
		panic("gameserver.NewTickLoop: engine, source and logger must not be nil")
	}
	return &TickLoop{
		engine:      engine,
		source:      source,
		logger:      logger,
		subscribers: make(map[chan<- idle.Report]struct{}),
	}
}

// Subscribe registers ch to receive the report of each tick. A full channel
// drops the report for that subscriber.
//
// Precondition: ch must not be nil.
func (l *TickLoop) Subscribe(ch chan<- idle.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (l *TickLoop) Unsubscribe(ch chan<- idle.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.subscribers, ch)
}

// Run processes ticks until ctx is cancelled, then stops the source.
//
// Postcondition: every received tick has been applied and a save attempted;
// persistence failures are logged and do not stop the loop. Returns nil on
// cancellation.
func (l *TickLoop) Run(ctx context.Context) error {
	defer l.source.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.source.C():
			rep, err := l.engine.Tick(ctx)
			if err != nil {
				l.logger.Warn("persisting tick", zap.Error(err))
			}
			l.publish(rep)
		}
	}
}

func (l *TickLoop) publish(rep idle.Report) {
	l.mu.Lock()
	subs := make([]chan<- idle.Report, 0, len(l.subscribers))
	for ch := range l.subscribers {
		subs = append(subs, ch)
	}
	l.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- rep:
		default:
		}
	}
}
