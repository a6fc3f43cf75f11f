package telemetry

import (
	"github.com/Unleash/unleash-proxy-client-go/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	datadog "github.com/DataDog/opencensus-go-exporter-datadog"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"
)

var datadogExporterType exporterType = datadogExporterTypeImpl{} //nolint:gochecknoglobals

type datadogExporterTypeImpl struct{}

type datadogExporterImpl struct {
	exporter *datadog.Exporter
}

func (d datadogExporterTypeImpl) getName() string {
	return "Datadog"
}

func (d datadogExporterTypeImpl) createExporterIfEnabled(
	tc config.TelemetryConfig,
	loggers ldlog.Loggers,
) (exporter, error) {
	if !tc.Datadog.Enabled {
		return nil, nil
	}

	options := datadog.Options{
		Namespace: getPrefix(tc.Datadog.Prefix),
		Service:   getPrefix(tc.Datadog.Prefix),
		TraceAddr: tc.Datadog.TraceAddr,
		StatsAddr: tc.Datadog.StatsAddr,
		Tags:      tc.Datadog.Tag,
		OnError:   exporterErrorHandler(d, loggers),
	}
	e, err := datadog.NewExporter(options)
	if err != nil {
		return nil, err
	}
	return &datadogExporterImpl{exporter: e}, nil
}

func (d *datadogExporterImpl) register() error {
	view.RegisterExporter(d.exporter)
	trace.RegisterExporter(d.exporter)
	return nil
}

func (d *datadogExporterImpl) close() error {
	d.exporter.Stop()
	view.UnregisterExporter(d.exporter)
	trace.UnregisterExporter(d.exporter)
	return nil
}
