package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveVariant(t *testing.T) {
	assert.Equal(t, DefaultVariant(), Toggle{Name: "a", Enabled: true}.EffectiveVariant())

	payload := &Payload{Type: "string", Value: "x"}
	toggle := Toggle{Name: "b", Enabled: true, Variant: Variant{Name: "blue", Enabled: true, Payload: payload}}
	v := toggle.EffectiveVariant()
	assert.Equal(t, "blue", v.Name)
	v.Payload.Value = "changed"
	assert.Equal(t, "x", toggle.Variant.Payload.Value)
}

func TestCopyToggles(t *testing.T) {
	assert.Nil(t, CopyToggles(nil))

	original := []Toggle{{Name: "a", Variant: Variant{Name: "v", Payload: &Payload{Type: "json", Value: "{}"}}}}
	copied := CopyToggles(original)
	copied[0].Name = "b"
	copied[0].Variant.Payload.Value = "[]"
	assert.Equal(t, "a", original[0].Name)
	assert.Equal(t, "{}", original[0].Variant.Payload.Value)
}

func TestTogglesResponseParsesProxyBody(t *testing.T) {
	body := `{"toggles":[{"name":"maintenance","enabled":true,"impressionData":true,
		"variant":{"name":"NoMaintenance","enabled":true,"payload":{"type":"json","value":"{\"override\": false}"}}}]}`
	var resp TogglesResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Toggles, 1)
	assert.Equal(t, Toggle{
		Name:           "maintenance",
		Enabled:        true,
		ImpressionData: true,
		Variant: Variant{
			Name:    "NoMaintenance",
			Enabled: true,
			Payload: &Payload{Type: "json", Value: `{"override": false}`},
		},
	}, resp.Toggles[0])
}

func TestHTTPErrorJSON(t *testing.T) {
	data, err := json.Marshal(HTTPError{Code: 404})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"HttpError","code":404}`, string(data))
	assert.Equal(t, "unexpected HTTP status 404", HTTPError{Code: 404}.Error())
}
