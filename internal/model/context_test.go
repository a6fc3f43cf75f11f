package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextCopyIsDeep(t *testing.T) {
	c := Context{UserID: "u", Properties: map[string]string{"a": "1"}}
	c1 := c.Copy()
	c1.Properties["a"] = "2"
	assert.Equal(t, "1", c.Properties["a"])
}

func TestWithFieldSetsDefinedFieldsDirectly(t *testing.T) {
	c := Context{AppName: "app"}
	c = c.WithField(FieldUserID, "u1").
		WithField(FieldSessionID, "s1").
		WithField(FieldRemoteAddress, "10.0.0.1").
		WithField(FieldCurrentTime, "2023-01-01T00:00:00Z")
	assert.Equal(t, Context{
		AppName:       "app",
		UserID:        "u1",
		SessionID:     "s1",
		RemoteAddress: "10.0.0.1",
		CurrentTime:   "2023-01-01T00:00:00Z",
	}, c)
}

func TestWithFieldStoresUnknownNamesAsProperties(t *testing.T) {
	original := Context{}
	c := original.WithField("customerId", "c1")
	assert.Equal(t, map[string]string{"customerId": "c1"}, c.Properties)
	assert.Nil(t, original.Properties)
}

func TestWithoutField(t *testing.T) {
	c := Context{UserID: "u", Properties: map[string]string{"a": "1", "b": "2"}}

	c1 := c.WithoutField(FieldUserID)
	assert.Equal(t, "", c1.UserID)
	assert.Len(t, c1.Properties, 2)

	c2 := c.WithoutField("a")
	assert.Equal(t, map[string]string{"b": "2"}, c2.Properties)
	assert.Len(t, c.Properties, 2)

	c3 := c2.WithoutField("b")
	assert.Nil(t, c3.Properties)
}

func TestFieldClassification(t *testing.T) {
	for _, f := range []string{FieldUserID, FieldSessionID, FieldRemoteAddress, FieldCurrentTime} {
		assert.True(t, IsDefinedField(f), f)
		assert.False(t, IsStaticField(f), f)
	}
	assert.True(t, IsStaticField(FieldAppName))
	assert.True(t, IsStaticField(FieldEnvironment))
	assert.False(t, IsDefinedField("customerId"))
}

func TestContextString(t *testing.T) {
	t.Run("fields and properties are sorted separately", func(t *testing.T) {
		c := Context{
			UserID:      "123",
			AppName:     "web",
			Environment: "default",
			Properties:  map[string]string{"zeta": "z", "alpha": "a"},
		}
		assert.Equal(t,
			`[[["appName","web"],["environment","default"],["userId","123"]],[["alpha","a"],["zeta","z"]]]`,
			ContextString(c))
	})

	t.Run("empty context", func(t *testing.T) {
		assert.Equal(t, `[[],[]]`, ContextString(Context{}))
	})

	t.Run("html characters are not escaped", func(t *testing.T) {
		c := Context{Properties: map[string]string{"q": "a<b&c>"}}
		assert.Equal(t, `[[],[["q","a<b&c>"]]]`, ContextString(c))
	})

	t.Run("collation ignores case when ordering", func(t *testing.T) {
		c := Context{Properties: map[string]string{"b": "2", "A": "1", "c": "3"}}
		assert.Equal(t, `[[],[["A","1"],["b","2"],["c","3"]]]`, ContextString(c))
	})
}

func TestComputeContextHash(t *testing.T) {
	c1 := Context{UserID: "1", Properties: map[string]string{"x": "1", "y": "2"}}
	c2 := Context{UserID: "1", Properties: map[string]string{"y": "2", "x": "1"}}
	c3 := Context{UserID: "2"}

	h := ComputeContextHash(c1)
	require.Len(t, h, 64)
	assert.Equal(t, h, ComputeContextHash(c2))
	assert.NotEqual(t, h, ComputeContextHash(c3))
}
