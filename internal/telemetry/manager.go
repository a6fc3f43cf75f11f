package telemetry

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Unleash/unleash-proxy-client-go/config"
	"github.com/Unleash/unleash-proxy-client-go/internal/events"
	"github.com/Unleash/unleash-proxy-client-go/internal/util"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"go.opencensus.io/trace"
)

// HTTPDoer is the subset of *http.Client that the client uses for proxy requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Manager records measurements for one client instance and owns the exporters created for it.
type Manager struct {
	openCensusCtx context.Context
	exporters     exporterSet
	loggers       ldlog.Loggers
	closeOnce     sync.Once
}

// NewManager registers the views and creates every exporter enabled in the configuration. All
// measurements are tagged with the application and environment names.
func NewManager(tc config.TelemetryConfig, appName, envName string, loggers ldlog.Loggers) (*Manager, error) {
	return newManager(allExporterTypes(), tc, appName, envName, loggers)
}

func newManager(
	exporterTypes []exporterType,
	tc config.TelemetryConfig,
	appName, envName string,
	loggers ldlog.Loggers,
) (*Manager, error) {
	loggers.SetPrefix("Telemetry:")
	if err := registerViews(); err != nil {
		return nil, err
	}
	ctx, err := tag.New(context.Background(),
		tag.Insert(appNameTagKey, sanitizeTagValue(appName)),
		tag.Insert(envNameTagKey, sanitizeTagValue(envName)),
	)
	if err != nil {
		return nil, err
	}
	exporters, err := registerExporters(exporterTypes, tc, loggers)
	if err != nil {
		return nil, err
	}
	return &Manager{
		openCensusCtx: ctx,
		exporters:     exporters,
		loggers:       loggers,
	}, nil
}

// Close shuts down the exporters. Calling it more than once has no effect.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.exporters.close(m.loggers)
	})
}

// WrapDoer returns an HTTPDoer that counts and times each request and runs it inside a trace span.
func (m *Manager) WrapDoer(doer HTTPDoer) HTTPDoer {
	return &instrumentedDoer{doer: doer, manager: m}
}

// EventListeners returns a listener for each client event that is counted. The impression listener
// also records the evaluated toggle.
func (m *Manager) EventListeners() map[events.Name]events.Listener {
	ret := make(map[events.Name]events.Listener)
	for _, name := range []events.Name{
		events.EventInitialized,
		events.EventReady,
		events.EventUpdate,
		events.EventError,
		events.EventRecovered,
		events.EventSent,
		events.EventImpression,
	} {
		ret[name] = m.recordEvent
	}
	return ret
}

func (m *Manager) recordEvent(e events.Event) {
	m.withTags(func(ctx context.Context) {
		stats.Record(ctx, eventMeasure.M(1))
	}, tag.Insert(eventTagKey, sanitizeTagValue(string(e.Name))))

	if e.Impression != nil {
		m.withTags(func(ctx context.Context) {
			stats.Record(ctx, impressionMeasure.M(1))
		},
			tag.Insert(featureTagKey, sanitizeTagValue(e.Impression.FeatureName)),
			tag.Insert(eventTypeTagKey, sanitizeTagValue(e.Impression.EventType)),
			tag.Insert(enabledTagKey, strconv.FormatBool(e.Impression.Enabled)),
		)
	}
}

func (m *Manager) withTags(f func(context.Context), mutators ...tag.Mutator) {
	ctx, err := tag.New(m.openCensusCtx, mutators...)
	if err != nil {
		m.loggers.Errorf("Failed to create tags: %s", err)
		return
	}
	f(ctx)
}

type instrumentedDoer struct {
	doer    HTTPDoer
	manager *Manager
}

func (d *instrumentedDoer) Do(req *http.Request) (*http.Response, error) {
	route := sanitizeTagValue(path.Base(req.URL.Path))
	ctx, span := trace.StartSpan(req.Context(), "unleash/"+route, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("http.method", req.Method),
		trace.StringAttribute("http.url", util.RedactURL(req.URL.String())),
	)

	start := time.Now()
	resp, err := d.doer.Do(req.WithContext(ctx))
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	status := transportErrorTagValue
	if err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnavailable, Message: err.Error()})
	} else {
		status = strconv.Itoa(resp.StatusCode)
		span.AddAttributes(trace.Int64Attribute("http.status_code", int64(resp.StatusCode)))
	}

	d.manager.withTags(func(ctx context.Context) {
		stats.Record(ctx, requestMeasure.M(1), requestDurationMeasure.M(elapsed))
	},
		tag.Insert(routeTagKey, route),
		tag.Insert(methodTagKey, req.Method),
		tag.Insert(statusTagKey, status),
	)
	return resp, err
}

// Pad empty values to match tag keyset cardinality since empty strings are dropped.
func sanitizeTagValue(v string) string {
	if strings.TrimSpace(v) == "" || v == "/" || v == "." {
		return "_"
	}
	return strings.Replace(v, "/", "_", -1)
}
