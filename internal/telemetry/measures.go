package telemetry

import (
	"go.opencensus.io/stats"
)

var (
	requestMeasure         = stats.Int64("requests", "Number of requests sent to the proxy", stats.UnitDimensionless)
	requestDurationMeasure = stats.Float64("request_duration", "Duration of requests sent to the proxy", stats.UnitMilliseconds)
	eventMeasure           = stats.Int64("events", "Number of client events emitted", stats.UnitDimensionless)
	impressionMeasure      = stats.Int64("impressions", "Number of toggle evaluations reported as impressions", stats.UnitDimensionless)
)
