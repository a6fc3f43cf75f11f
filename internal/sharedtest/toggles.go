package sharedtest

import (
	"net/http"
	"strings"

	"github.com/Unleash/unleash-proxy-client-go/internal/model"

	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"
)

// Toggle fixtures.
var (
	ToggleAlgo = model.Toggle{ //nolint:gochecknoglobals
		Name:    "algo",
		Enabled: true,
		Variant: model.Variant{Name: "disabled", Enabled: false},
	}
	ToggleBlue = model.Toggle{ //nolint:gochecknoglobals
		Name:           "blue",
		Enabled:        true,
		Variant:        model.Variant{Name: "blue", Enabled: true, Payload: &model.Payload{Type: "string", Value: "b"}},
		ImpressionData: true,
	}
	ToggleOff = model.Toggle{ //nolint:gochecknoglobals
		Name:    "off",
		Enabled: false,
		Variant: model.Variant{Name: "disabled", Enabled: false},
	}
)

// AllToggles returns a new slice containing every toggle fixture.
func AllToggles() []model.Toggle {
	return []model.Toggle{ToggleAlgo, ToggleBlue, ToggleOff}
}

// TogglesHandler returns a handler that answers with the given toggles, and an ETag header if etag
// is non-empty.
func TogglesHandler(toggles []model.Toggle, etag string) http.Handler {
	var headers http.Header
	if etag != "" {
		headers = http.Header{"ETag": []string{etag}}
	}
	if toggles == nil {
		toggles = []model.Toggle{}
	}
	return httphelpers.HandlerWithJSONResponse(model.TogglesResponse{Toggles: toggles}, headers)
}

// ProxyHandler returns a handler that sends metrics posts to metricsHandler and everything else to
// togglesHandler.
func ProxyHandler(togglesHandler, metricsHandler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, MetricsPath) {
			metricsHandler.ServeHTTP(w, r)
			return
		}
		togglesHandler.ServeHTTP(w, r)
	})
}

// MetricsPath is the path suffix of the metrics endpoint.
const MetricsPath = "/client/metrics"
