package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

const idlePollInterval = 50 * time.Millisecond

// idleTracker counts in-flight requests of one tab.
type idleTracker struct {
	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
}

func newIdleTracker() *idleTracker {
	return &idleTracker{
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
	}
}

// handle is registered as a target listener and must not block.
func (t *idleTracker) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.started(e.RequestID)
	case *network.EventLoadingFinished:
		t.finished(e.RequestID)
	case *network.EventLoadingFailed:
		t.finished(e.RequestID)
	}
}

func (t *idleTracker) started(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[id] = struct{}{}
	t.lastActivity = time.Now()
}

func (t *idleTracker) finished(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, id)
	t.lastActivity = time.Now()
}

func (t *idleTracker) idleFor() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inflight) > 0 {
		return 0, false
	}
	return time.Since(t.lastActivity), true
}

// wait blocks until no request has been in flight for quiet.
func (t *idleTracker) wait(ctx context.Context, quiet time.Duration) error {
	t.mu.Lock()
	t.lastActivity = time.Now()
	t.mu.Unlock()

	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for {
		if d, ok := t.idleFor(); ok && d >= quiet {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
