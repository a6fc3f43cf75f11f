package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Unleash/unleash-proxy-client-go/internal/httpconfig"
	"github.com/Unleash/unleash-proxy-client-go/internal/model"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const metricsPath = "client/metrics"

// HTTPDoer is the subset of *http.Client used to send metrics.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Params configures an Aggregator.
type Params struct {
	// URL is the proxy base URL. Metrics are posted to URL + "/client/metrics".
	URL             url.URL
	ClientKey       string
	AppName         string
	ConnectionID    string
	HeaderName      string
	CustomHeaders   map[string]string
	Disabled        bool
	Interval        time.Duration
	IntervalInitial time.Duration
	// HTTPClient may be nil, in which case buckets are discarded without being sent.
	HTTPClient HTTPDoer
}

// Aggregator counts evaluations into the active bucket and periodically flushes it.
type Aggregator struct {
	params  Params
	loggers ldlog.Loggers
	onError func(error)
	onSent  func(Payload)
	now     func() time.Time

	bucket     Bucket
	bucketLock sync.Mutex

	run     *timerRun
	runLock sync.Mutex
}

type timerRun struct {
	closer chan struct{}
	cancel context.CancelFunc
}

// OptionType defines optional parameters for NewAggregator.
type OptionType interface {
	apply(*Aggregator) error
}

// OptionOnError sets a function to receive errors from sending metrics.
type OptionOnError func(error)

func (o OptionOnError) apply(a *Aggregator) error {
	a.onError = o
	return nil
}

// OptionOnSent sets a function to receive every payload that was delivered successfully.
type OptionOnSent func(Payload)

func (o OptionOnSent) apply(a *Aggregator) error {
	a.onSent = o
	return nil
}

// OptionClock replaces time.Now for bucket timestamps.
type OptionClock func() time.Time

func (o OptionClock) apply(a *Aggregator) error {
	a.now = o
	return nil
}

// NewAggregator creates an Aggregator. It does not start the timer.
func NewAggregator(params Params, loggers ldlog.Loggers, options ...OptionType) (*Aggregator, error) {
	a := &Aggregator{
		params:  params,
		loggers: loggers,
		onError: func(error) {},
		onSent:  func(Payload) {},
		now:     time.Now,
	}
	for _, o := range options {
		if err := o.apply(a); err != nil {
			return nil, err
		}
	}
	a.loggers.SetPrefix("Metrics:")
	a.bucket = newBucket(a.now())
	return a, nil
}

// Start begins periodic flushing. It returns false if metrics are disabled, or if there is no positive
// interval so no timer was started. Calling Start while the timer is running has no effect.
func (a *Aggregator) Start() bool {
	if a.params.Disabled || a.params.Interval <= 0 {
		return false
	}

	a.runLock.Lock()
	defer a.runLock.Unlock()
	if a.run != nil {
		return true
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &timerRun{closer: make(chan struct{}), cancel: cancel}
	a.run = run

	go func() {
		if a.params.IntervalInitial > 0 {
			initial := time.NewTimer(a.params.IntervalInitial)
			select {
			case <-initial.C:
				a.flush(ctx)
			case <-run.closer:
				initial.Stop()
				return
			}
		}
		ticker := time.NewTicker(a.params.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.flush(ctx)
			case <-run.closer:
				return
			}
		}
	}()
	return true
}

// Stop ends periodic flushing and cancels a flush in progress. Counts recorded so far stay in the active
// bucket. Start may be called again afterward.
func (a *Aggregator) Stop() {
	a.runLock.Lock()
	run := a.run
	a.run = nil
	a.runLock.Unlock()
	if run == nil {
		return
	}
	close(run.closer)
	run.cancel()
}

// Count records one evaluation of a toggle. It returns false if metrics are disabled.
func (a *Aggregator) Count(name string, enabled bool) bool {
	if a.params.Disabled {
		return false
	}
	a.bucketLock.Lock()
	tc := a.bucket.toggle(name)
	if enabled {
		tc.Yes++
	} else {
		tc.No++
	}
	a.bucketLock.Unlock()
	return true
}

// CountVariant records one resolution of a toggle to the named variant. It returns false if metrics are
// disabled.
func (a *Aggregator) CountVariant(name, variant string) bool {
	if a.params.Disabled {
		return false
	}
	a.bucketLock.Lock()
	a.bucket.toggle(name).Variants[variant]++
	a.bucketLock.Unlock()
	return true
}

func (a *Aggregator) swapBucket() Bucket {
	now := a.now()
	a.bucketLock.Lock()
	defer a.bucketLock.Unlock()
	old := a.bucket
	old.Stop = &now
	a.bucket = newBucket(now)
	return old
}

func (a *Aggregator) flush(ctx context.Context) {
	if err := a.SendMetrics(ctx); err != nil && ctx.Err() == nil {
		a.loggers.Warnf("Unable to send feature metrics: %s", err)
	}
}

// SendMetrics closes the active bucket and posts it. An empty bucket is discarded without any request.
// Failures are passed to the error handler, unless ctx was cancelled, as well as returned; the bucket is
// not retried.
func (a *Aggregator) SendMetrics(ctx context.Context) error {
	bucket := a.swapBucket()
	if bucket.IsEmpty() || a.params.HTTPClient == nil {
		return nil
	}
	payload := Payload{Bucket: bucket, AppName: a.params.AppName, InstanceID: InstanceID}
	if err := a.post(ctx, payload); err != nil {
		if ctx.Err() == nil {
			a.onError(err)
		}
		return err
	}
	a.onSent(payload)
	return nil
}

func (a *Aggregator) post(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	target := httpconfig.FormatURL(a.params.URL, metricsPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpconfig.ApplyHeaders(req, httpconfig.ParseHeaders(httpconfig.HeaderParams{
		ClientKey:     a.params.ClientKey,
		AppName:       a.params.AppName,
		ConnectionID:  a.params.ConnectionID,
		CustomHeaders: a.params.CustomHeaders,
		HeaderName:    a.params.HeaderName,
		IsPost:        true,
	}))
	a.loggers.Debugf("Sending metrics for %d toggles", len(payload.Bucket.Toggles))

	resp, err := a.params.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.HTTPError{Code: resp.StatusCode}
	}
	return nil
}
