// Package telemetry records opencensus measurements for a client instance (outgoing proxy requests,
// client events and impressions) and registers the optional Prometheus and Datadog exporters.
package telemetry
