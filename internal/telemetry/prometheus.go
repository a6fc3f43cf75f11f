package telemetry

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Unleash/unleash-proxy-client-go/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats/view"
)

var prometheusExporterType exporterType = prometheusExporterTypeImpl{} //nolint:gochecknoglobals

type prometheusExporterTypeImpl struct{}

type prometheusExporterImpl struct {
	exporter *prometheus.Exporter
	server   *http.Server
	port     int
	loggers  ldlog.Loggers
}

func (p prometheusExporterTypeImpl) getName() string {
	return "Prometheus"
}

func (p prometheusExporterTypeImpl) createExporterIfEnabled(
	tc config.TelemetryConfig,
	loggers ldlog.Loggers,
) (exporter, error) {
	if !tc.Prometheus.Enabled {
		return nil, nil
	}

	port := tc.Prometheus.Port.GetOrElse(config.DefaultPrometheusPort)
	e, err := prometheus.NewExporter(prometheus.Options{
		Namespace: getPrefix(tc.Prometheus.Prefix),
		OnError:   exporterErrorHandler(p, loggers),
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e)
	return &prometheusExporterImpl{
		exporter: e,
		server:   &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux},
		port:     port,
		loggers:  loggers,
	}, nil
}

func (p *prometheusExporterImpl) register() error {
	go func() {
		p.loggers.Infof("Prometheus listening on port %d", p.port)
		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.loggers.Errorf("Failed to start Prometheus listener: %s", err)
		}
	}()
	view.RegisterExporter(p.exporter)
	return nil
}

func (p *prometheusExporterImpl) close() error {
	view.UnregisterExporter(p.exporter)
	return p.server.Close()
}
