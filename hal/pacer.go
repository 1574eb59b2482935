package hal

import "sync"

// pacer queues animation frame callbacks until the host loop runs them.
type pacer struct {
	mu      sync.Mutex
	pending []func()
}

func (p *pacer) RequestAnimationFrame(cb func()) {
	if cb == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, cb)
	p.mu.Unlock()
}

func (p *pacer) hasPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending) > 0
}

// pump runs the callbacks queued before the call. Callbacks queued while
// running wait for the next pump. before runs once if anything is pending.
func (p *pacer) pump(before func()) int {
	p.mu.Lock()
	run := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(run) == 0 {
		return 0
	}
	if before != nil {
		before()
	}
	for _, cb := range run {
		cb()
	}
	return len(run)
}
