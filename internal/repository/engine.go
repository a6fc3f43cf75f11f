package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Unleash/unleash-proxy-client-go/internal/model"
	"github.com/Unleash/unleash-proxy-client-go/storage"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// HTTPDoer is the subset of *http.Client used to fetch toggles.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// CancelFactory derives a cancellable context for one fetch. The default is context.WithCancel.
type CancelFactory func(context.Context) (context.Context, context.CancelFunc)

// Observer receives fetch outcomes. Its methods are called without any Engine lock held, and never for
// a fetch that was superseded or cancelled.
type Observer interface {
	// OnStatus is called first for every response, before the toggles are reported.
	OnStatus(status int)
	// OnUpdate is called after a response with toggles replaced the table and was persisted.
	OnUpdate(toggles []model.Toggle)
	// OnError is called for transport errors, unexpected statuses, unreadable bodies and storage errors.
	OnError(err error)
}

// Params configures an Engine.
type Params struct {
	URL             url.URL
	ClientKey       string
	AppName         string
	ConnectionID    string
	HeaderName      string
	CustomHeaders   map[string]string
	UsePOSTRequests bool
	// TogglesStorageTTL enables the refresh record when positive.
	TogglesStorageTTL time.Duration
	// MaxResponseSize limits the decompressed response body; zero means no limit.
	MaxResponseSize int64
	// HTTPClient may be nil, in which case Fetch never makes a request.
	HTTPClient    HTTPDoer
	CancelFactory CancelFactory
	Storage       storage.Provider
}

// Engine holds the toggle table and performs fetches. At most one fetch is in flight; starting a fetch
// cancels the previous one, whose result is then discarded.
type Engine struct {
	params   Params
	observer Observer
	loggers  ldlog.Loggers
	now      func() time.Time

	toggles     []model.Toggle
	togglesLock sync.RWMutex

	etag        string
	fetched     bool
	generation  uint64
	cancel      context.CancelFunc
	lastRefresh *RefreshRecord
	fetchLock   sync.Mutex
	persistLock sync.Mutex

	poller     *poller
	pollerLock sync.Mutex
}

// NewEngine creates an Engine with an empty toggle table.
func NewEngine(params Params, observer Observer, loggers ldlog.Loggers) *Engine {
	if params.CancelFactory == nil {
		params.CancelFactory = context.WithCancel
	}
	if params.Storage == nil {
		params.Storage = storage.NewMemoryProvider()
	}
	e := &Engine{
		params:   params,
		observer: observer,
		loggers:  loggers,
		now:      time.Now,
		toggles:  []model.Toggle{},
	}
	e.loggers.SetPrefix("FetchEngine:")
	return e
}

// Toggles returns a copy of the toggle table.
func (e *Engine) Toggles() []model.Toggle {
	e.togglesLock.RLock()
	defer e.togglesLock.RUnlock()
	return model.CopyToggles(e.toggles)
}

// Toggle looks up one toggle by name.
func (e *Engine) Toggle(name string) (model.Toggle, bool) {
	e.togglesLock.RLock()
	defer e.togglesLock.RUnlock()
	for _, t := range e.toggles {
		if t.Name == name {
			return t, true
		}
	}
	return model.Toggle{}, false
}

// ReplaceToggles replaces the toggle table without persisting it.
func (e *Engine) ReplaceToggles(toggles []model.Toggle) {
	copied := model.CopyToggles(toggles)
	if copied == nil {
		copied = []model.Toggle{}
	}
	e.togglesLock.Lock()
	e.toggles = copied
	e.togglesLock.Unlock()
}

// StoreToggles replaces the toggle table and persists it under storage.KeyRepo.
func (e *Engine) StoreToggles(ctx context.Context, toggles []model.Toggle) error {
	e.ReplaceToggles(toggles)
	return storage.SaveJSON(ctx, e.params.Storage, storage.KeyRepo, e.Toggles())
}

// LoadStoredToggles reads the persisted toggle table. It does not modify the in-memory table.
func (e *Engine) LoadStoredToggles(ctx context.Context) ([]model.Toggle, error) {
	var toggles []model.Toggle
	if _, err := storage.GetJSON(ctx, e.params.Storage, storage.KeyRepo, &toggles); err != nil {
		return nil, err
	}
	return toggles, nil
}

// Fetched returns true once a fetch has returned toggles or MarkFetched has been called.
func (e *Engine) Fetched() bool {
	e.fetchLock.Lock()
	defer e.fetchLock.Unlock()
	return e.fetched
}

// MarkFetched records that the current toggles are as good as fetched, as when the storage TTL allows
// skipping the initial fetch.
func (e *Engine) MarkFetched() {
	e.fetchLock.Lock()
	e.fetched = true
	e.fetchLock.Unlock()
}

// ETag returns the entity tag of the last response that carried toggles.
func (e *Engine) ETag() string {
	e.fetchLock.Lock()
	defer e.fetchLock.Unlock()
	return e.etag
}

// Abort cancels the fetch in flight, if any. Its result will be discarded.
func (e *Engine) Abort() {
	e.fetchLock.Lock()
	defer e.fetchLock.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
		e.generation++
	}
}

func (e *Engine) begin(ctx context.Context) (context.Context, uint64, string) {
	e.fetchLock.Lock()
	defer e.fetchLock.Unlock()
	if e.cancel != nil {
		e.loggers.Debug("Cancelling previous fetch")
		e.cancel()
	}
	e.generation++
	fetchCtx, cancel := e.params.CancelFactory(ctx)
	e.cancel = cancel
	return fetchCtx, e.generation, e.etag
}

func (e *Engine) release(generation uint64) {
	e.fetchLock.Lock()
	defer e.fetchLock.Unlock()
	if e.generation == generation && e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) isCurrent(generation uint64) bool {
	e.fetchLock.Lock()
	defer e.fetchLock.Unlock()
	return e.generation == generation
}

// apply installs the result of a fetch if it is still the current one.
func (e *Engine) apply(generation uint64, etag string, toggles []model.Toggle) bool {
	e.fetchLock.Lock()
	defer e.fetchLock.Unlock()
	if e.generation != generation {
		return false
	}
	e.etag = etag
	e.fetched = true
	e.ReplaceToggles(toggles)
	return true
}

// Fetch requests the toggles for the given context and reports the outcome to the Observer. It returns
// when the fetch has completed, failed or been superseded.
func (e *Engine) Fetch(ctx context.Context, c model.Context) {
	if e.params.HTTPClient == nil {
		e.loggers.Debug("No HTTP client is available; not fetching toggles")
		return
	}

	fetchCtx, generation, etag := e.begin(ctx)
	defer e.release(generation)

	cancelled := func(err error) bool {
		if !e.isCurrent(generation) || errors.Is(err, context.Canceled) || fetchCtx.Err() != nil {
			e.loggers.Debugf("Fetch was cancelled: %s", err)
			return true
		}
		return false
	}

	req, err := e.makeRequest(fetchCtx, c, etag)
	if err != nil {
		e.observer.OnError(err)
		return
	}
	e.loggers.Debugf("Fetching toggles: %s %s", req.Method, req.URL.Redacted())

	resp, err := e.params.HTTPClient.Do(req)
	if err != nil {
		if !cancelled(err) {
			e.loggers.Errorf("Error fetching toggles: %s", err)
			e.observer.OnError(err)
		}
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300 && resp.StatusCode != http.StatusNotModified
	var toggles []model.Toggle
	if ok {
		toggles, err = e.readToggles(resp)
		if err != nil {
			if !cancelled(err) {
				e.loggers.Errorf("Invalid toggles response: %s", err)
				e.observer.OnError(err)
			}
			return
		}
		// persistLock keeps a superseded fetch from saving after the one that replaced it
		e.persistLock.Lock()
		if !e.apply(generation, resp.Header.Get("ETag"), toggles) {
			e.persistLock.Unlock()
			return
		}
		err = storage.SaveJSON(fetchCtx, e.params.Storage, storage.KeyRepo, toggles)
		e.persistLock.Unlock()
		if !e.isCurrent(generation) {
			e.loggers.Debug("Fetch was superseded after its toggles were applied")
			return
		}
	} else if !e.isCurrent(generation) {
		return
	}

	e.observer.OnStatus(resp.StatusCode)

	switch {
	case ok:
		if err != nil {
			if !cancelled(err) {
				e.loggers.Errorf("Unable to store toggles: %s", err)
				e.observer.OnError(err)
			}
			return
		}
		if !e.isCurrent(generation) {
			return
		}
		e.observer.OnUpdate(model.CopyToggles(toggles))
		if e.isCurrent(generation) {
			e.refreshed(fetchCtx, c)
		}
	case resp.StatusCode == http.StatusNotModified:
		e.loggers.Debug("Toggles not modified")
		e.refreshed(fetchCtx, c)
	default:
		e.loggers.Errorf("Unexpected response status %d when fetching toggles", resp.StatusCode)
		e.observer.OnError(model.HTTPError{Code: resp.StatusCode})
	}
}

func (e *Engine) refreshed(ctx context.Context, c model.Context) {
	if err := e.storeRefreshRecord(ctx, c); err != nil {
		e.loggers.Errorf("Unable to store refresh timestamp: %s", err)
	}
}
