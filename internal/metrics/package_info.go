// Package metrics aggregates toggle evaluation counts into time buckets and posts them to the proxy's
// client metrics endpoint.
package metrics
