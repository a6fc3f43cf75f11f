package telemetry

import (
	"net/http"
	"testing"

	"github.com/Unleash/unleash-proxy-client-go/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"

	"github.com/pborman/uuid"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Since the global OpenCensus state accumulates data from every test, each test uses a randomized
// application name to isolate its own rows.
func withTestManager(t *testing.T, action func(m *Manager, appName string, mockLog *ldlogtest.MockLog)) {
	mockLog := ldlogtest.NewMockLog()
	defer mockLog.DumpIfTestFailed(t)

	appName := "app-" + uuid.New()
	m, err := newManager(nil, config.TelemetryConfig{}, appName, "test-env", mockLog.Loggers)
	require.NoError(t, err)
	defer m.Close()

	action(m, appName, mockLog)
}

func rowsForApp(t *testing.T, v *view.View, appName string) []*view.Row {
	rows, err := view.RetrieveData(v.Name)
	require.NoError(t, err)
	var ret []*view.Row
	for _, r := range rows {
		if tagValue(r, appNameTagKey) == appName {
			ret = append(ret, r)
		}
	}
	return ret
}

func tagValue(r *view.Row, key tag.Key) string {
	for _, t := range r.Tags {
		if t.Key == key {
			return t.Value
		}
	}
	return ""
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

type testExporterTypeImpl struct {
	name            string
	checkEnabled    func(config.TelemetryConfig) bool
	errorOnCreate   error
	errorOnRegister error
	errorOnClose    error
	closeLog        *[]string
	created         []*testExporterImpl
}

type testExporterImpl struct {
	exporterType *testExporterTypeImpl
	registered   bool
	closed       bool
}

func (t *testExporterTypeImpl) getName() string {
	if t.name == "" {
		return "testExporter"
	}
	return t.name
}

func (t *testExporterTypeImpl) createExporterIfEnabled(
	tc config.TelemetryConfig,
	loggers ldlog.Loggers,
) (exporter, error) {
	if t.errorOnCreate != nil {
		return nil, t.errorOnCreate
	}
	if t.checkEnabled != nil && !t.checkEnabled(tc) {
		return nil, nil
	}
	impl := &testExporterImpl{exporterType: t}
	t.created = append(t.created, impl)
	return impl, nil
}

func (t *testExporterImpl) register() error {
	if t.exporterType.errorOnRegister == nil {
		t.registered = true
	}
	return t.exporterType.errorOnRegister
}

func (t *testExporterImpl) close() error {
	if t.exporterType.closeLog != nil {
		*t.exporterType.closeLog = append(*t.exporterType.closeLog, t.exporterType.getName())
	}
	if t.exporterType.errorOnClose == nil {
		t.closed = true
	}
	return t.exporterType.errorOnClose
}
