package events

import (
	"github.com/pborman/uuid"

	"github.com/Unleash/unleash-proxy-client-go/internal/model"
)

// Impression event types.
const (
	ImpressionIsEnabled  = "isEnabled"
	ImpressionGetVariant = "getVariant"
)

// Impression describes one evaluation of a toggle.
type Impression struct {
	EventType      string        `json:"eventType"`
	EventID        string        `json:"eventId"`
	Context        model.Context `json:"context"`
	Enabled        bool          `json:"enabled"`
	FeatureName    string        `json:"featureName"`
	ImpressionData bool          `json:"impressionData"`
	Variant        string        `json:"variant,omitempty"`
}

// NewIsEnabledImpression creates the impression for an IsEnabled call.
func NewIsEnabledImpression(ctx model.Context, enabled bool, featureName string, impressionData bool) Impression {
	return Impression{
		EventType:      ImpressionIsEnabled,
		EventID:        uuid.New(),
		Context:        ctx.Copy(),
		Enabled:        enabled,
		FeatureName:    featureName,
		ImpressionData: impressionData,
	}
}

// NewGetVariantImpression creates the impression for a GetVariant call.
func NewGetVariantImpression(
	ctx model.Context,
	enabled bool,
	featureName string,
	variant string,
	impressionData bool,
) Impression {
	ret := NewIsEnabledImpression(ctx, enabled, featureName, impressionData)
	ret.EventType = ImpressionGetVariant
	ret.Variant = variant
	return ret
}
