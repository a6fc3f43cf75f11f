package repository

import (
	"context"
	"time"

	"github.com/Unleash/unleash-proxy-client-go/internal/model"
)

type poller struct {
	closer chan struct{}
	cancel context.CancelFunc
}

// StartPolling fetches every interval, using the context returned by contextFn at each tick. It returns
// false if polling was already running or the interval is not positive.
func (e *Engine) StartPolling(interval time.Duration, contextFn func() model.Context) bool {
	if interval <= 0 {
		return false
	}
	e.pollerLock.Lock()
	defer e.pollerLock.Unlock()
	if e.poller != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &poller{closer: make(chan struct{}), cancel: cancel}
	e.poller = p

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.Fetch(ctx, contextFn())
			case <-p.closer:
				return
			}
		}
	}()
	return true
}

// StopPolling stops the polling timer and cancels a fetch started by it. It does not wait for the timer
// goroutine, so it may be called from an Observer callback.
func (e *Engine) StopPolling() {
	e.pollerLock.Lock()
	p := e.poller
	e.poller = nil
	e.pollerLock.Unlock()
	if p == nil {
		return
	}
	close(p.closer)
	p.cancel()
}

// IsPolling returns true while the polling timer is running.
func (e *Engine) IsPolling() bool {
	e.pollerLock.Lock()
	defer e.pollerLock.Unlock()
	return e.poller != nil
}
