package storefront

import (
	"context"
	"sync"
	"time"
)

// Rescanner coalesces bursts of "content changed" signals into single
// scan passes. Storefront carts re-render via AJAX many times per
// second during updates; the worker runs at most one scan per debounce
// window, and a scan never overlaps another.
type Rescanner struct {
	scan     func(context.Context)
	debounce time.Duration

	signal chan struct{}
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewRescanner starts the worker. scan runs on the worker goroutine
// only, so it needs no internal locking.
func NewRescanner(debounce time.Duration, scan func(context.Context)) *Rescanner {
	r := &Rescanner{
		scan:     scan,
		debounce: debounce,
		signal:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.run()
	return r
}

// Request asks for a rescan. It never blocks; signals arriving while
// one is already pending are merged into it.
func (r *Rescanner) Request() {
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// Close stops the worker and waits for an in-flight scan to finish.
func (r *Rescanner) Close() {
	r.once.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Rescanner) run() {
	defer close(r.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-r.stop
		cancel()
	}()

	timer := time.NewTimer(r.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	pending := false
	for {
		select {
		case <-r.stop:
			return
		case <-r.signal:
			// Restart the window so a burst settles before scanning.
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(r.debounce)
			pending = true
		case <-timer.C:
			pending = false
			r.scan(ctx)
		}
	}
}
