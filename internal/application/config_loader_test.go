package application

import (
	"os"
	"path/filepath"
	"testing"

	unleash "github.com/Unleash/unleash-proxy-client-go"
	"github.com/Unleash/unleash-proxy-client-go/internal/sharedtest"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigFileContent = `
[Main]
URL = "http://localhost:4242/proxy"
ClientKey = "key"
AppName = "web"

[Refresh]
Interval = 15s
`

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	sharedtest.WithTempDir(func(dir string) {
		path := writeFile(t, dir, "test.conf", testConfigFileContent)
		c, err := LoadConfig(Options{ConfigFile: path}, ldlog.NewDisabledLoggers())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:4242/proxy", c.Main.URL.String())
		assert.Equal(t, "web", c.Main.AppName)
		assert.True(t, c.Bootstrap.Override.GetOrElse(false))
	})
}

func TestLoadConfigFromEnvironmentOverridesFile(t *testing.T) {
	sharedtest.WithTempDir(func(dir string) {
		path := writeFile(t, dir, "test.conf", testConfigFileContent)
		t.Setenv("UNLEASH_APP_NAME", "mobile")
		c, err := LoadConfig(Options{ConfigFile: path, UseEnvironment: true}, ldlog.NewDisabledLoggers())
		require.NoError(t, err)
		assert.Equal(t, "mobile", c.Main.AppName)
		assert.Equal(t, "key", c.Main.ClientKey)
	})
}

func TestLoadConfigValidates(t *testing.T) {
	sharedtest.WithTempDir(func(dir string) {
		path := writeFile(t, dir, "test.conf", "[Main]\nAppName = \"web\"\n")
		_, err := LoadConfig(Options{ConfigFile: path}, ldlog.NewDisabledLoggers())
		assert.Error(t, err)
	})
}

func TestLoadBootstrapFile(t *testing.T) {
	sharedtest.WithTempDir(func(dir string) {
		path := writeFile(t, dir, "bootstrap.json",
			`[{"name":"blue","enabled":true,"variant":{"name":"blue","enabled":true},"impressionData":true}]`)
		toggles, err := LoadBootstrapFile(path)
		require.NoError(t, err)
		assert.Equal(t, []unleash.Toggle{
			{Name: "blue", Enabled: true, Variant: unleash.Variant{Name: "blue", Enabled: true}, ImpressionData: true},
		}, toggles)

		_, err = LoadBootstrapFile(writeFile(t, dir, "bad.json", `{"toggles":[]}`))
		assert.Error(t, err)

		_, err = LoadBootstrapFile(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})
}

func TestLoadContextFile(t *testing.T) {
	sharedtest.WithTempDir(func(dir string) {
		path := writeFile(t, dir, "context.json", `{"userId":"u1","properties":{"tier":"gold"}}`)
		ctx, err := LoadContextFile(path)
		require.NoError(t, err)
		assert.Equal(t, unleash.Context{UserID: "u1", Properties: map[string]string{"tier": "gold"}}, ctx)

		_, err = LoadContextFile(writeFile(t, dir, "bad.json", `[]`))
		assert.Error(t, err)
	})
}
