package model

// DefaultVariantName is the name of the variant returned for unknown toggles or toggles without a variant.
const DefaultVariantName = "disabled"

// Payload is the optional data attached to a variant.
type Payload struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Variant is a named sub-configuration of a toggle.
//
// FeatureEnabled is only set on values returned from a variant lookup, where it reports whether the
// parent toggle was enabled.
type Variant struct {
	Name           string   `json:"name"`
	Enabled        bool     `json:"enabled"`
	Payload        *Payload `json:"payload,omitempty"`
	FeatureEnabled bool     `json:"feature_enabled,omitempty"`
}

// Toggle is a single feature toggle as evaluated by the proxy for the current context.
type Toggle struct {
	Name           string  `json:"name"`
	Enabled        bool    `json:"enabled"`
	Variant        Variant `json:"variant"`
	ImpressionData bool    `json:"impressionData"`
}

// DefaultVariant returns the variant used when a toggle is unknown or has no variant.
func DefaultVariant() Variant {
	return Variant{Name: DefaultVariantName, Enabled: false}
}

// EffectiveVariant returns the toggle's variant, or the default variant if it has none.
func (t Toggle) EffectiveVariant() Variant {
	if t.Variant.Name == "" {
		return DefaultVariant()
	}
	v := t.Variant
	if v.Payload != nil {
		p := *v.Payload
		v.Payload = &p
	}
	return v
}

// CopyToggles returns a copy of the slice that shares no mutable state with the original.
func CopyToggles(toggles []Toggle) []Toggle {
	if toggles == nil {
		return nil
	}
	ret := make([]Toggle, len(toggles))
	for i, t := range toggles {
		ret[i] = t
		if t.Variant.Payload != nil {
			p := *t.Variant.Payload
			ret[i].Variant.Payload = &p
		}
	}
	return ret
}

// TogglesResponse is the body returned by the proxy's toggle endpoint.
type TogglesResponse struct {
	Toggles []Toggle `json:"toggles"`
}
