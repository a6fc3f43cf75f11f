package telemetry

import (
	"go.opencensus.io/tag"
)

const (
	defaultMetricsPrefix = "unleash_proxy_client"

	transportErrorTagValue = "error"
)

var (
	appNameTagKey, _   = tag.NewKey("appName")
	envNameTagKey, _   = tag.NewKey("env")
	routeTagKey, _     = tag.NewKey("route")
	methodTagKey, _    = tag.NewKey("method")
	statusTagKey, _    = tag.NewKey("status")
	eventTagKey, _     = tag.NewKey("event")
	featureTagKey, _   = tag.NewKey("feature")
	eventTypeTagKey, _ = tag.NewKey("eventType")
	enabledTagKey, _   = tag.NewKey("enabled")

	requestTags    = []tag.Key{appNameTagKey, envNameTagKey, routeTagKey, methodTagKey, statusTagKey}
	eventTags      = []tag.Key{appNameTagKey, envNameTagKey, eventTagKey}
	impressionTags = []tag.Key{appNameTagKey, envNameTagKey, featureTagKey, eventTypeTagKey, enabledTagKey}
)
