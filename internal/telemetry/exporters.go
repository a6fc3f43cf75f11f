package telemetry

import (
	"strings"

	"github.com/Unleash/unleash-proxy-client-go/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

type exporterType interface {
	getName() string
	createExporterIfEnabled(config.TelemetryConfig, ldlog.Loggers) (exporter, error)
}

type exporter interface {
	register() error
	close() error
}

// registeredExporter pairs a running exporter with the type that created it.
type registeredExporter struct {
	exporterType exporterType
	exporter     exporter
}

// exporterSet holds the running exporters in registration order.
type exporterSet []registeredExporter

func allExporterTypes() []exporterType {
	return []exporterType{datadogExporterType, prometheusExporterType}
}

// exporterErrorHandler returns the OnError callback given to an OpenCensus exporter. Export failures
// happen on the exporter's own goroutines, so they can only be logged.
func exporterErrorHandler(t exporterType, loggers ldlog.Loggers) func(error) {
	return func(err error) {
		loggers.Errorf("%s exporter error: %s", t.getName(), err)
	}
}

// registerExporters creates and registers every enabled exporter. If any of them fails, the ones
// already registered are closed again and the error is returned.
func registerExporters(
	exporterTypes []exporterType,
	tc config.TelemetryConfig,
	loggers ldlog.Loggers,
) (exporterSet, error) {
	var set exporterSet
	for _, t := range exporterTypes {
		e, err := t.createExporterIfEnabled(tc, loggers)
		if err != nil {
			loggers.Errorf("Error creating %s metrics exporter: %s", t.getName(), err)
			set.close(loggers)
			return nil, err
		}
		if e == nil {
			continue
		}
		if err := e.register(); err != nil {
			loggers.Errorf("Error registering %s metrics exporter: %s", t.getName(), err)
			set.close(loggers)
			return nil, err
		}
		set = append(set, registeredExporter{exporterType: t, exporter: e})
	}
	if len(set) == 0 {
		loggers.Debug("No metrics exporters are enabled")
	} else {
		loggers.Infof("Registered metrics exporters: %s", strings.Join(set.names(), ", "))
	}
	return set, nil
}

func (s exporterSet) names() []string {
	ret := make([]string, 0, len(s))
	for _, r := range s {
		ret = append(ret, r.exporterType.getName())
	}
	return ret
}

// close shuts the exporters down in reverse order of registration. A failure is logged and does not
// stop the others from closing.
func (s exporterSet) close(loggers ldlog.Loggers) {
	for i := len(s) - 1; i >= 0; i-- {
		if err := s[i].exporter.close(); err != nil {
			loggers.Errorf("Error closing %s metrics exporter: %s", s[i].exporterType.getName(), err)
		}
	}
}

func getPrefix(prefix string) string {
	if prefix != "" {
		return prefix
	}
	return defaultMetricsPrefix
}
