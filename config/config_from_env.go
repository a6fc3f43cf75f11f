package config

import (
	"sort"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// LoadConfigFromEnvironment sets parameters in a Config struct from environment variables.
//
// The Config parameter should be initialized with default values first.
func LoadConfigFromEnvironment(c *Config, loggers ldlog.Loggers) error {
	return LoadConfigFromReader(c, ct.NewVarReaderFromEnvironment(), loggers)
}

// LoadConfigFromReader sets parameters in a Config struct from the variables of a VarReader. This is the
// same as LoadConfigFromEnvironment except that the variables can come from any source.
func LoadConfigFromReader(c *Config, reader *ct.VarReader, loggers ldlog.Loggers) error {
	reader.ReadStruct(&c.Main, false)
	reader.ReadStruct(&c.Refresh, false)
	reader.ReadStruct(&c.Metrics, false)
	reader.ReadStruct(&c.Bootstrap, false)
	reader.ReadStruct(&c.Context, false)
	reader.ReadStruct(&c.File, false)
	reader.ReadStruct(&c.Redis, false)
	reader.ReadStruct(&c.Consul, false)

	reader.Read("USE_DYNAMODB", &c.DynamoDB.Enabled)
	if c.DynamoDB.Enabled {
		reader.ReadStruct(&c.DynamoDB, false)
	}

	reader.Read("USE_DATADOG", &c.TelemetryConfig.Datadog.Enabled)
	if c.TelemetryConfig.Datadog.Enabled {
		reader.Read("DATADOG_PREFIX", &c.TelemetryConfig.Datadog.Prefix)
		reader.ReadStruct(&c.TelemetryConfig.Datadog, false)
		for tagName, tagVal := range reader.FindPrefixedValues("DATADOG_TAG_") {
			c.TelemetryConfig.Datadog.Tag = append(c.TelemetryConfig.Datadog.Tag, tagName+":"+tagVal)
		}
		sort.Strings(c.TelemetryConfig.Datadog.Tag) // for test determinacy
	}

	reader.Read("USE_PROMETHEUS", &c.TelemetryConfig.Prometheus.Enabled)
	if c.TelemetryConfig.Prometheus.Enabled {
		reader.Read("PROMETHEUS_PREFIX", &c.TelemetryConfig.Prometheus.Prefix)
		reader.ReadStruct(&c.TelemetryConfig.Prometheus, false)
	}

	reader.ReadStruct(&c.Proxy, false)
	reader.ReadStruct(&c.Server, false)

	if !reader.Result().OK() {
		return reader.Result().GetError()
	}

	return ValidateConfig(c, loggers)
}
