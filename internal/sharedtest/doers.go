package sharedtest

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// ErrNetworkUnavailable is returned by UnavailableDoer.
var ErrNetworkUnavailable = errors.New("network is unavailable")

// DoerFunc adapts a function to the HTTP transport interface used by the client.
type DoerFunc func(*http.Request) (*http.Response, error)

// Do calls the function.
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// UnavailableDoer fails every request with ErrNetworkUnavailable.
func UnavailableDoer() DoerFunc {
	return func(*http.Request) (*http.Response, error) {
		return nil, ErrNetworkUnavailable
	}
}

// CancelRecorder is a cancel factory that records which of the contexts it created were cancelled.
// Contexts are numbered from 1 in creation order.
type CancelRecorder struct {
	created   int
	cancelled []int
	lock      sync.Mutex
}

// Factory has the signature of the client's cancel factory.
func (r *CancelRecorder) Factory(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	r.lock.Lock()
	r.created++
	id := r.created
	r.lock.Unlock()
	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			r.lock.Lock()
			r.cancelled = append(r.cancelled, id)
			r.lock.Unlock()
		})
		cancel()
	}
}

// Created returns the number of contexts created so far.
func (r *CancelRecorder) Created() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.created
}

// Cancelled returns the numbers of the cancelled contexts, in the order they were cancelled.
func (r *CancelRecorder) Cancelled() []int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]int(nil), r.cancelled...)
}
