package presenter

import (
	"sync"
	"time"
)

// Redirect is a scheduled navigation to a product page. It fires at most
// once. Cancel is idempotent; once Cancel returns, the navigation either
// already ran (Fired reports true) or never will.
type Redirect struct {
	URL    string
	FireAt time.Time

	timer *time.Timer

	mu        sync.Mutex
	fired     bool
	cancelled bool
}

// Cancel stops the pending navigation. If the navigation is mid-flight,
// Cancel blocks until it finishes. Cancelling an already-fired or
// already-cancelled redirect is a no-op.
func (r *Redirect) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

// Fired reports whether the navigation ran.
func (r *Redirect) Fired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fired
}

// fire claims the single permitted firing and runs nav while still holding
// the lock. Holding the lock through nav is what lets Cancel promise that
// no navigation starts after it returns.
func (r *Redirect) fire(nav func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled || r.fired {
		return
	}
	r.fired = true
	nav()
}
