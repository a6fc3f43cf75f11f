package unleash

import (
	"github.com/Unleash/unleash-proxy-client-go/internal/events"
	"github.com/Unleash/unleash-proxy-client-go/internal/metrics"
	"github.com/Unleash/unleash-proxy-client-go/internal/model"
	"github.com/Unleash/unleash-proxy-client-go/internal/repository"
)

type (
	// Toggle is a feature toggle as evaluated by the proxy.
	Toggle = model.Toggle
	// Variant is a named sub-configuration of a toggle.
	Variant = model.Variant
	// Payload is the optional data attached to a variant.
	Payload = model.Payload
	// Context is the set of attributes that toggles are evaluated against.
	Context = model.Context
	// HTTPError is reported when the proxy answers with an unexpected status.
	HTTPError = model.HTTPError

	// EventName identifies an event channel.
	EventName = events.Name
	// Event is passed to listeners.
	Event = events.Event
	// Listener receives events.
	Listener = events.Listener
	// Subscription identifies a registered listener.
	Subscription = events.Subscription
	// Impression describes one evaluation of a toggle.
	Impression = events.Impression

	// MetricsPayload is the document posted to the metrics endpoint.
	MetricsPayload = metrics.Payload

	// HTTPDoer is the transport used for all requests. *http.Client implements it.
	HTTPDoer = repository.HTTPDoer
	// CancelFactory derives the cancellable context used for one toggle fetch.
	CancelFactory = repository.CancelFactory
)

// Event names.
const (
	EventInitialized = events.EventInitialized
	EventReady       = events.EventReady
	EventUpdate      = events.EventUpdate
	EventError       = events.EventError
	EventImpression  = events.EventImpression
	EventSent        = events.EventSent
	EventRecovered   = events.EventRecovered
)

// Names of the context fields accepted by SetContextField and RemoveContextField. Any other name is
// treated as a custom property.
const (
	FieldUserID        = model.FieldUserID
	FieldSessionID     = model.FieldSessionID
	FieldRemoteAddress = model.FieldRemoteAddress
	FieldCurrentTime   = model.FieldCurrentTime
)

// DefaultVariant returns the variant reported for unknown toggles.
func DefaultVariant() Variant {
	return model.DefaultVariant()
}

// ContextString returns the canonical serialization of a context.
func ContextString(c Context) string {
	return model.ContextString(c)
}

// ComputeContextHash returns the hex-encoded SHA-256 digest of ContextString(c).
func ComputeContextHash(c Context) string {
	return model.ComputeContextHash(c)
}
