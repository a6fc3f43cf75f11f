package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Unleash/unleash-proxy-client-go/internal/model"
	"github.com/Unleash/unleash-proxy-client-go/storage"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = time.Second * 5

var (
	testToggles = []model.Toggle{ //nolint:gochecknoglobals
		{Name: "algo", Enabled: true, Variant: model.Variant{Name: "disabled"}},
		{Name: "blue", Enabled: true, Variant: model.Variant{Name: "blue", Enabled: true,
			Payload: &model.Payload{Type: "string", Value: "b"}}, ImpressionData: true},
	}
	testContext = model.Context{AppName: "web", Environment: "default", UserID: "1233", //nolint:gochecknoglobals
		Properties: map[string]string{"tier": "gold"}}
)

type recordingObserver struct {
	statuses []int
	updates  [][]model.Toggle
	errs     []error
	lock     sync.Mutex
}

func (o *recordingObserver) OnStatus(status int) {
	o.lock.Lock()
	o.statuses = append(o.statuses, status)
	o.lock.Unlock()
}

func (o *recordingObserver) OnUpdate(toggles []model.Toggle) {
	o.lock.Lock()
	o.updates = append(o.updates, toggles)
	o.lock.Unlock()
}

func (o *recordingObserver) OnError(err error) {
	o.lock.Lock()
	o.errs = append(o.errs, err)
	o.lock.Unlock()
}

func (o *recordingObserver) snapshot() ([]int, [][]model.Toggle, []error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	return append([]int(nil), o.statuses...), append([][]model.Toggle(nil), o.updates...), append([]error(nil), o.errs...)
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func togglesHandler(toggles []model.Toggle, etag string) http.Handler {
	var headers http.Header
	if etag != "" {
		headers = http.Header{"ETag": []string{etag}}
	}
	return httphelpers.HandlerWithJSONResponse(model.TogglesResponse{Toggles: toggles}, headers)
}

func makeTestParams(t *testing.T, serverURL string) Params {
	u, err := url.Parse(serverURL)
	require.NoError(t, err)
	return Params{
		URL:          *u,
		ClientKey:    "client-key",
		AppName:      "web",
		ConnectionID: "conn-1",
		HTTPClient:   http.DefaultClient,
		Storage:      storage.NewMemoryProvider(),
	}
}

func withTestServer(t *testing.T, handler http.Handler, action func(Params, <-chan httphelpers.HTTPRequestInfo)) {
	recorder, requestsCh := httphelpers.RecordingHandler(handler)
	httphelpers.WithServer(recorder, func(server *httptest.Server) {
		action(makeTestParams(t, server.URL+"/proxy"), requestsCh)
	})
}

func TestFetchWithGET(t *testing.T) {
	withTestServer(t, togglesHandler(testToggles, ""), func(params Params, requestsCh <-chan httphelpers.HTTPRequestInfo) {
		obs := &recordingObserver{}
		e := NewEngine(params, obs, ldlog.NewDisabledLoggers())
		e.Fetch(context.Background(), testContext)

		r := <-requestsCh
		assert.Equal(t, "GET", r.Request.Method)
		assert.Equal(t, "/proxy", r.Request.URL.Path)
		q := r.Request.URL.Query()
		assert.Equal(t, "1233", q.Get("userId"))
		assert.Equal(t, "web", q.Get("appName"))
		assert.Equal(t, "gold", q.Get("properties[tier]"))
		assert.Equal(t, "client-key", r.Request.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Request.Header.Get("Accept"))
		assert.Equal(t, "conn-1", r.Request.Header.Get("Unleash-Connection-Id"))
		assert.Equal(t, "", r.Request.Header.Get("Content-Type"))
		assert.Equal(t, "", r.Request.Header.Get("If-None-Match"))

		statuses, updates, errs := obs.snapshot()
		assert.Equal(t, []int{200}, statuses)
		assert.Equal(t, [][]model.Toggle{testToggles}, updates)
		assert.Len(t, errs, 0)
		assert.Equal(t, testToggles, e.Toggles())
		assert.True(t, e.Fetched())

		stored, err := e.LoadStoredToggles(context.Background())
		require.NoError(t, err)
		assert.Equal(t, testToggles, stored)
	})
}

func TestFetchWithPOST(t *testing.T) {
	withTestServer(t, togglesHandler(testToggles, ""), func(params Params, requestsCh <-chan httphelpers.HTTPRequestInfo) {
		params.UsePOSTRequests = true
		e := NewEngine(params, &recordingObserver{}, ldlog.NewDisabledLoggers())
		e.Fetch(context.Background(), testContext)

		r := <-requestsCh
		assert.Equal(t, "POST", r.Request.Method)
		assert.Equal(t, "", r.Request.URL.RawQuery)
		assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"context":{"appName":"web","environment":"default","userId":"1233",`+
			`"properties":{"tier":"gold"}}}`, string(r.Body))
		assert.Equal(t, testToggles, e.Toggles())
	})
}

func TestETagIsSentOnNextFetch(t *testing.T) {
	handler := httphelpers.SequentialHandler(
		togglesHandler(testToggles, `"123a"`),
		httphelpers.HandlerWithStatus(http.StatusNotModified),
	)
	withTestServer(t, handler, func(params Params, requestsCh <-chan httphelpers.HTTPRequestInfo) {
		obs := &recordingObserver{}
		e := NewEngine(params, obs, ldlog.NewDisabledLoggers())

		e.Fetch(context.Background(), testContext)
		r1 := <-requestsCh
		assert.Equal(t, "", r1.Request.Header.Get("If-None-Match"))
		assert.Equal(t, `"123a"`, e.ETag())

		e.Fetch(context.Background(), testContext)
		r2 := <-requestsCh
		assert.Equal(t, `"123a"`, r2.Request.Header.Get("If-None-Match"))

		statuses, updates, errs := obs.snapshot()
		assert.Equal(t, []int{200, 304}, statuses)
		assert.Len(t, updates, 1)
		assert.Len(t, errs, 0)
		assert.Equal(t, testToggles, e.Toggles())
		assert.Equal(t, `"123a"`, e.ETag())
	})
}

func TestResponseWithoutETagClearsIt(t *testing.T) {
	handler := httphelpers.SequentialHandler(
		togglesHandler(testToggles, "abc"),
		togglesHandler(testToggles, ""),
	)
	withTestServer(t, handler, func(params Params, requestsCh <-chan httphelpers.HTTPRequestInfo) {
		e := NewEngine(params, &recordingObserver{}, ldlog.NewDisabledLoggers())
		e.Fetch(context.Background(), testContext)
		assert.Equal(t, "abc", e.ETag())
		e.Fetch(context.Background(), testContext)
		assert.Equal(t, "", e.ETag())
	})
}

func TestErrorStatusKeepsToggles(t *testing.T) {
	handler := httphelpers.SequentialHandler(
		togglesHandler(testToggles, ""),
		httphelpers.HandlerWithStatus(http.StatusNotFound),
	)
	withTestServer(t, handler, func(params Params, requestsCh <-chan httphelpers.HTTPRequestInfo) {
		obs := &recordingObserver{}
		mockLog := ldlogtest.NewMockLog()
		defer mockLog.DumpIfTestFailed(t)
		e := NewEngine(params, obs, mockLog.Loggers)

		e.Fetch(context.Background(), testContext)
		e.Fetch(context.Background(), testContext)

		statuses, updates, errs := obs.snapshot()
		assert.Equal(t, []int{200, 404}, statuses)
		assert.Len(t, updates, 1)
		assert.Equal(t, []error{model.HTTPError{Code: 404}}, errs)
		assert.Equal(t, testToggles, e.Toggles())
		mockLog.AssertMessageMatch(t, true, ldlog.Error, "Unexpected response status 404")
	})
}

func TestTransportError(t *testing.T) {
	fakeErr := errors.New("network down")
	params := makeTestParams(t, "http://localhost/proxy")
	params.HTTPClient = doerFunc(func(*http.Request) (*http.Response, error) { return nil, fakeErr })
	obs := &recordingObserver{}
	e := NewEngine(params, obs, ldlog.NewDisabledLoggers())

	e.Fetch(context.Background(), testContext)

	statuses, updates, errs := obs.snapshot()
	assert.Len(t, statuses, 0)
	assert.Len(t, updates, 0)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], fakeErr))
	assert.False(t, e.Fetched())
}

func TestInvalidResponseBody(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(http.StatusOK, nil, []byte("{not json"))
	withTestServer(t, handler, func(params Params, requestsCh <-chan httphelpers.HTTPRequestInfo) {
		obs := &recordingObserver{}
		e := NewEngine(params, obs, ldlog.NewDisabledLoggers())
		e.Fetch(context.Background(), testContext)

		_, updates, errs := obs.snapshot()
		assert.Len(t, updates, 0)
		assert.Len(t, errs, 1)
		assert.False(t, e.Fetched())
	})
}

func TestResponseOverMaximumSize(t *testing.T) {
	withTestServer(t, togglesHandler(testToggles, ""), func(params Params, requestsCh <-chan httphelpers.HTTPRequestInfo) {
		params.MaxResponseSize = 10
		obs := &recordingObserver{}
		e := NewEngine(params, obs, ldlog.NewDisabledLoggers())
		e.Fetch(context.Background(), testContext)

		_, updates, errs := obs.snapshot()
		assert.Len(t, updates, 0)
		assert.Len(t, errs, 1)
		assert.Equal(t, []model.Toggle{}, e.Toggles())
	})
}

func TestNoHTTPClientMeansNoRequest(t *testing.T) {
	params := makeTestParams(t, "http://localhost/proxy")
	params.HTTPClient = nil
	obs := &recordingObserver{}
	e := NewEngine(params, obs, ldlog.NewDisabledLoggers())
	e.Fetch(context.Background(), testContext)

	statuses, updates, errs := obs.snapshot()
	assert.Len(t, statuses, 0)
	assert.Len(t, updates, 0)
	assert.Len(t, errs, 0)
}

type failingStorage struct{ storage.Provider }

func (failingStorage) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestStorageErrorIsReported(t *testing.T) {
	withTestServer(t, togglesHandler(testToggles, ""), func(params Params, requestsCh <-chan httphelpers.HTTPRequestInfo) {
		params.Storage = failingStorage{storage.NewMemoryProvider()}
		obs := &recordingObserver{}
		e := NewEngine(params, obs, ldlog.NewDisabledLoggers())
		e.Fetch(context.Background(), testContext)

		_, updates, errs := obs.snapshot()
		assert.Len(t, updates, 0)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "disk full")
		assert.Equal(t, testToggles, e.Toggles())
	})
}

func TestSupersededFetchIsCancelledAndDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	var calls int
	var callsLock sync.Mutex
	params := makeTestParams(t, "http://localhost/proxy")
	params.HTTPClient = doerFunc(func(req *http.Request) (*http.Response, error) {
		callsLock.Lock()
		calls++
		n := calls
		callsLock.Unlock()
		if n == 1 {
			close(firstStarted)
			<-req.Context().Done()
			return nil, req.Context().Err()
		}
		data, _ := json.Marshal(model.TogglesResponse{Toggles: testToggles[1:]})
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(string(data))),
		}, nil
	})

	var cancelled []int
	var cancelLock sync.Mutex
	factoryCalls := 0
	params.CancelFactory = func(parent context.Context) (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(parent)
		factoryCalls++
		id := factoryCalls
		return ctx, func() {
			cancelLock.Lock()
			cancelled = append(cancelled, id)
			cancelLock.Unlock()
			cancel()
		}
	}

	obs := &recordingObserver{}
	e := NewEngine(params, obs, ldlog.NewDisabledLoggers())

	firstDone := make(chan struct{})
	go func() {
		e.Fetch(context.Background(), model.Context{AppName: "web", UserID: "first"})
		close(firstDone)
	}()
	<-firstStarted
	e.Fetch(context.Background(), model.Context{AppName: "web", UserID: "second"})
	select {
	case <-firstDone:
	case <-time.After(testTimeout):
		require.Fail(t, "first fetch was not cancelled")
	}

	cancelLock.Lock()
	assert.Equal(t, 1, cancelled[0])
	cancelLock.Unlock()

	statuses, updates, errs := obs.snapshot()
	assert.Equal(t, []int{200}, statuses)
	assert.Equal(t, [][]model.Toggle{testToggles[1:]}, updates)
	assert.Len(t, errs, 0)
	assert.Equal(t, testToggles[1:], e.Toggles())
}

func TestAbortCancelsFetchInFlight(t *testing.T) {
	started := make(chan struct{})
	params := makeTestParams(t, "http://localhost/proxy")
	params.HTTPClient = doerFunc(func(req *http.Request) (*http.Response, error) {
		close(started)
		<-req.Context().Done()
		return nil, req.Context().Err()
	})
	obs := &recordingObserver{}
	e := NewEngine(params, obs, ldlog.NewDisabledLoggers())

	done := make(chan struct{})
	go func() {
		e.Fetch(context.Background(), testContext)
		close(done)
	}()
	<-started
	e.Abort()
	<-done

	statuses, updates, errs := obs.snapshot()
	assert.Len(t, statuses, 0)
	assert.Len(t, updates, 0)
	assert.Len(t, errs, 0)
}

// slowStorage blocks the first save of the toggle table until release is closed.
type slowStorage struct {
	storage.Provider
	saving  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *slowStorage) Save(ctx context.Context, key string, value []byte) error {
	if key == storage.KeyRepo {
		first := false
		s.once.Do(func() { first = true })
		if first {
			close(s.saving)
			<-s.release
		}
	}
	return s.Provider.Save(ctx, key, value)
}

func TestFetchSupersededDuringSaveDoesNotPersistOrNotify(t *testing.T) {
	togglesA, togglesB := testToggles[:1], testToggles[1:]
	secondRequested := make(chan struct{})
	params := makeTestParams(t, "http://localhost/proxy")
	params.HTTPClient = doerFunc(func(req *http.Request) (*http.Response, error) {
		toggles := togglesA
		if req.URL.Query().Get("userId") == "second" {
			toggles = togglesB
			close(secondRequested)
		}
		data, _ := json.Marshal(model.TogglesResponse{Toggles: toggles})
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(string(data))),
		}, nil
	})
	store := &slowStorage{Provider: storage.NewMemoryProvider(), saving: make(chan struct{}), release: make(chan struct{})}
	params.Storage = store

	obs := &recordingObserver{}
	e := NewEngine(params, obs, ldlog.NewDisabledLoggers())

	firstDone, secondDone := make(chan struct{}), make(chan struct{})
	go func() {
		e.Fetch(context.Background(), model.Context{AppName: "web", UserID: "first"})
		close(firstDone)
	}()
	<-store.saving
	go func() {
		e.Fetch(context.Background(), model.Context{AppName: "web", UserID: "second"})
		close(secondDone)
	}()
	<-secondRequested
	close(store.release)
	for _, ch := range []chan struct{}{firstDone, secondDone} {
		select {
		case <-ch:
		case <-time.After(testTimeout):
			require.Fail(t, "timed out waiting for fetch")
		}
	}

	assert.Equal(t, togglesB, e.Toggles())
	stored, err := e.LoadStoredToggles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, togglesB, stored)

	_, updates, errs := obs.snapshot()
	assert.Equal(t, [][]model.Toggle{togglesB}, updates)
	assert.Len(t, errs, 0)
}

func TestStoreAndReplaceToggles(t *testing.T) {
	e := NewEngine(makeTestParams(t, "http://localhost"), &recordingObserver{}, ldlog.NewDisabledLoggers())

	e.ReplaceToggles(testToggles[:1])
	stored, err := e.LoadStoredToggles(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)

	require.NoError(t, e.StoreToggles(context.Background(), testToggles))
	stored, err = e.LoadStoredToggles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testToggles, stored)

	tg, ok := e.Toggle("blue")
	assert.True(t, ok)
	assert.Equal(t, "blue", tg.Variant.Name)
	_, ok = e.Toggle("unknown")
	assert.False(t, ok)
}

func TestTogglesReturnsCopy(t *testing.T) {
	e := NewEngine(makeTestParams(t, "http://localhost"), &recordingObserver{}, ldlog.NewDisabledLoggers())
	e.ReplaceToggles(testToggles)
	toggles := e.Toggles()
	toggles[1].Variant.Payload.Value = "changed"
	toggles[0].Enabled = false
	assert.Equal(t, testToggles, e.Toggles())
}
