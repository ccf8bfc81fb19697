// Package poller refreshes a snapshot on a fixed interval in the background.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultInterval = 5 * time.Second

// FetchFunc loads a complete snapshot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Snapshot is the latest successfully fetched value.
type Snapshot[T any] struct {
	Value     T
	FetchedAt time.Time
	// Err is the most recent fetch error, cleared by the next success.
	Err error
}

// Poller runs fetch every interval. Each result replaces the previous
// snapshot wholesale; a failed fetch keeps the last good value.
type Poller[T any] struct {
	fetch    FetchFunc[T]
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot[T]
	hasValue bool

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	updates chan struct{}
}

func New[T any](fetch FetchFunc[T], interval time.Duration, logger *slog.Logger) *Poller[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller[T]{
		fetch:    fetch,
		interval: interval,
		logger:   logger.With("component", "poller"),
		now:      time.Now,
		updates:  make(chan struct{}, 1),
	}
}

// Start fetches once immediately and then on every tick until Stop is called
// or ctx is cancelled. Starting a running poller is a no-op.
func (p *Poller[T]) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

func (p *Poller[T]) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Stop cancels the loop and waits for it to exit.
func (p *Poller[T]) Stop() {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller[T]) Running() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.cancel != nil
}

// Refresh fetches now. Concurrent refreshes may resolve out of order; the
// one that resolves last wins.
func (p *Poller[T]) Refresh(ctx context.Context) error {
	value, err := p.fetch(ctx)

	p.mu.Lock()
	if err != nil {
		p.snapshot.Err = err
		p.mu.Unlock()
		if ctx.Err() == nil {
			p.logger.Warn("Poll failed, keeping previous snapshot", "error", err)
		}
		return err
	}
	p.snapshot = Snapshot[T]{Value: value, FetchedAt: p.now()}
	p.hasValue = true
	p.mu.Unlock()

	select {
	case p.updates <- struct{}{}:
	default:
	}
	return nil
}

// Snapshot returns the latest snapshot and whether any fetch has succeeded.
func (p *Poller[T]) Snapshot() (Snapshot[T], bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot, p.hasValue
}

// Updates signals after each successful fetch. Signals coalesce.
func (p *Poller[T]) Updates() <-chan struct{} {
	return p.updates
}
