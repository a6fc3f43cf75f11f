package unleash

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Unleash/unleash-proxy-client-go/config"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"

	"github.com/stretchr/testify/require"
)

const (
	testClientKey = "client-key"
	testAppName   = "web"
	timeout       = time.Second * 5
	noEventWait   = time.Millisecond * 100
)

func makeTestConfig(t *testing.T, proxyURL string) config.Config {
	c := config.DefaultConfig()
	u, err := ct.NewOptURLAbsoluteFromString(proxyURL)
	require.NoError(t, err)
	c.Main.URL = u
	c.Main.ClientKey = testClientKey
	c.Main.AppName = testAppName
	c.Refresh.Disabled = true
	c.Metrics.Disabled = true
	return c
}

func newTestClient(t *testing.T, c config.Config, loggers ldlog.Loggers, options ...OptionType) *Client {
	client, err := NewClient(c, loggers, options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// eventListener returns an option that registers a listener before initialization, and the channel
// that receives its events.
func eventListener(name EventName) (OptionEventListener, <-chan Event) {
	ch := make(chan Event, 100)
	return OptionEventListener{Name: name, Listener: func(e Event) { ch <- e }}, ch
}

func subscribe(client *Client, name EventName) <-chan Event {
	ch := make(chan Event, 100)
	client.On(name, func(e Event) { ch <- e })
	return ch
}

func withTestProxy(t *testing.T, handler http.Handler, action func(proxyURL string, requestsCh <-chan httphelpers.HTTPRequestInfo)) {
	recorder, requestsCh := httphelpers.RecordingHandler(handler)
	httphelpers.WithServer(recorder, func(server *httptest.Server) {
		action(server.URL+"/proxy", requestsCh)
	})
}
