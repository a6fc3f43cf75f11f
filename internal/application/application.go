package application

import (
	"context"
	"net/http"
	"time"

	unleash "github.com/Unleash/unleash-proxy-client-go"
	"github.com/Unleash/unleash-proxy-client-go/config"
	"github.com/Unleash/unleash-proxy-client-go/internal/httpconfig"
	"github.com/Unleash/unleash-proxy-client-go/internal/telemetry"
	"github.com/Unleash/unleash-proxy-client-go/internal/version"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// How long a context change from the watched file may wait for the client to become ready.
const contextUpdateTimeout = time.Minute

// Application runs one client for the command-line sidecar: it wires telemetry into the client's
// HTTP requests and events, applies the bootstrap and context files, and serves the status routes.
type Application struct {
	client    *unleash.Client
	telemetry *telemetry.Manager
	watcher   *ContextWatcher
	loggers   ldlog.Loggers
	version   string
}

// NewApplication creates the client described by the configuration. Additional client options are
// applied after the ones derived from the configuration, so they take precedence.
func NewApplication(c config.Config, loggers ldlog.Loggers, options ...unleash.OptionType) (*Application, error) {
	environment := c.Main.Environment
	if environment == "" {
		environment = config.DefaultEnvironment
	}

	tm, err := telemetry.NewManager(c.TelemetryConfig, c.Main.AppName, environment, loggers)
	if err != nil {
		return nil, err
	}

	httpConfig, err := httpconfig.NewHTTPConfig(c.Proxy, loggers)
	if err != nil {
		tm.Close()
		return nil, err
	}

	clientOptions := []unleash.OptionType{
		unleash.OptionHTTPClient{Client: tm.WrapDoer(httpConfig.Client())},
	}
	for name, listener := range tm.EventListeners() {
		clientOptions = append(clientOptions, unleash.OptionEventListener{Name: name, Listener: listener})
	}
	if c.Bootstrap.File != "" {
		toggles, err := LoadBootstrapFile(c.Bootstrap.File)
		if err != nil {
			tm.Close()
			return nil, err
		}
		if len(toggles) == 0 {
			loggers.Warnf("Bootstrap file %s has no toggles, ignoring it", c.Bootstrap.File)
		} else {
			loggers.Infof("Loaded %d bootstrap toggles from %s", len(toggles), c.Bootstrap.File)
			clientOptions = append(clientOptions, unleash.OptionBootstrap(toggles))
		}
	}
	clientOptions = append(clientOptions, options...)

	client, err := unleash.NewClient(c, loggers, clientOptions...)
	if err != nil {
		tm.Close()
		return nil, err
	}

	a := &Application{
		client:    client,
		telemetry: tm,
		loggers:   loggers,
		version:   version.Version,
	}

	if c.Context.File != "" {
		watcher, err := NewContextWatcher(c.Context.File, a.applyContext, loggers)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.watcher = watcher
	}

	return a, nil
}

func (a *Application) applyContext(newContext unleash.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), contextUpdateTimeout)
	defer cancel()
	a.client.UpdateContext(ctx, newContext)
}

// Client returns the underlying client.
func (a *Application) Client() *unleash.Client {
	return a.client
}

// Start starts the client's fetch and metrics timers.
func (a *Application) Start(ctx context.Context) {
	a.client.Start(ctx)
}

// Handler returns the HTTP handler for the status routes.
func (a *Application) Handler() http.Handler {
	return a.makeRouter()
}

// Close stops the context watcher, the client and the telemetry exporters.
func (a *Application) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if err := a.client.Close(); err != nil {
		a.loggers.Errorf("Error closing storage: %s", err)
	}
	a.telemetry.Close()
}
