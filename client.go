package unleash

import (
	"context"
	"io"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/Unleash/unleash-proxy-client-go/config"
	"github.com/Unleash/unleash-proxy-client-go/internal/events"
	"github.com/Unleash/unleash-proxy-client-go/internal/httpconfig"
	"github.com/Unleash/unleash-proxy-client-go/internal/logging"
	"github.com/Unleash/unleash-proxy-client-go/internal/metrics"
	"github.com/Unleash/unleash-proxy-client-go/internal/model"
	"github.com/Unleash/unleash-proxy-client-go/internal/repository"
	"github.com/Unleash/unleash-proxy-client-go/storage"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/pborman/uuid"
	"golang.org/x/sync/errgroup"
)

const maxSessionID = 1000000000

// Client is an Unleash proxy client.
//
// A Client is created with NewClient, which returns immediately while storage is read in the
// background. Start performs the first fetch and begins polling. All methods are safe for concurrent
// use. Listeners are called synchronously on the goroutine that produced the event, without any
// client lock held.
type Client struct {
	loggers           ldlog.Loggers
	storage           storage.Provider
	engine            *repository.Engine
	metrics           *metrics.Aggregator
	emitter           *events.Emitter
	refreshInterval   time.Duration
	impressionDataAll bool

	context      model.Context
	state        SdkState
	lastError    error
	started      bool
	runID        uint64
	readyEmitted bool
	readyCh      chan struct{}
	initCh       chan struct{}
	initErr      error
	lock         sync.RWMutex
}

// NewClient creates a Client from a configuration.
//
// The configuration is validated first; a missing URL, client key or app name is an error. Storage is
// taken from OptionStorage, or else built from the configuration (in memory if no backend is
// configured). If the HTTP transport can't be built from the Proxy section, the client is still
// created, but it logs the failure and never makes network calls.
//
// Bootstrap toggles are installed before NewClient returns, so they can be queried right away.
// Initialization (session id, stored toggles and persisting the bootstrap) runs on a separate
// goroutine. It emits EventInitialized when it completes, or EventError if storage fails.
func NewClient(c config.Config, loggers ldlog.Loggers, options ...OptionType) (*Client, error) {
	if err := config.ValidateConfig(&c, loggers); err != nil {
		return nil, err
	}

	var opts clientOptions
	for _, o := range options {
		if err := o.apply(&opts); err != nil {
			return nil, err
		}
	}

	loggers = logging.WithLevel(loggers, c.Main.LogLevel.GetOrElse(ldlog.None))
	clientLoggers := loggers
	clientLoggers.SetPrefix("UnleashClient:")

	store := opts.storage
	if store == nil {
		var err error
		if store, err = storage.NewProviderFromConfig(context.Background(), c, clientLoggers); err != nil {
			return nil, err
		}
	}

	var httpClient HTTPDoer
	if opts.hasHTTPClient {
		httpClient = opts.httpClient
	} else {
		httpConfig, err := httpconfig.NewHTTPConfig(c.Proxy, clientLoggers)
		if err != nil {
			clientLoggers.Errorf("Unable to create HTTP client, toggles will not be fetched: %s", err)
		} else {
			httpClient = httpConfig.Client()
		}
	}

	customHeaders, _ := config.ParseCustomHeaders(c.Main.CustomHeaders) // already validated
	baseURL := *c.Main.URL.Get()
	connectionID := uuid.New()

	environment := c.Main.Environment
	if environment == "" {
		environment = config.DefaultEnvironment
	}
	initialContext := contextFromConfig(c.Context)
	if opts.context != nil {
		initialContext = *opts.context
	}
	initialContext.AppName = c.Main.AppName
	initialContext.Environment = environment

	client := &Client{
		loggers:           clientLoggers,
		storage:           store,
		emitter:           events.NewEmitter(),
		impressionDataAll: c.Main.ImpressionDataAll,
		context:           initialContext,
		state:             StateInitializing,
		readyCh:           make(chan struct{}),
		initCh:            make(chan struct{}),
	}
	if !c.Refresh.Disabled {
		client.refreshInterval = c.Refresh.Interval.GetOrElse(config.DefaultRefreshInterval)
	}

	client.engine = repository.NewEngine(repository.Params{
		URL:               baseURL,
		ClientKey:         c.Main.ClientKey,
		AppName:           c.Main.AppName,
		ConnectionID:      connectionID,
		HeaderName:        c.Main.HeaderName,
		CustomHeaders:     customHeaders,
		UsePOSTRequests:   c.Main.UsePOSTRequests,
		TogglesStorageTTL: c.Refresh.TogglesStorageTTL.GetOrElse(0),
		MaxResponseSize:   int64(c.Main.MaxResponseSize.GetOrElse(0)),
		HTTPClient:        httpClient,
		CancelFactory:     opts.cancelFactory,
		Storage:           store,
	}, fetchObserver{client: client}, loggers)

	aggregator, err := metrics.NewAggregator(metrics.Params{
		URL:             baseURL,
		ClientKey:       c.Main.ClientKey,
		AppName:         c.Main.AppName,
		ConnectionID:    connectionID,
		HeaderName:      c.Main.HeaderName,
		CustomHeaders:   customHeaders,
		Disabled:        c.Metrics.Disabled,
		Interval:        c.Metrics.Interval.GetOrElse(config.DefaultMetricsInterval),
		IntervalInitial: c.Metrics.IntervalInitial.GetOrElse(config.DefaultMetricsIntervalInitial),
		HTTPClient:      httpClient,
	}, loggers,
		metrics.OptionOnError(client.setMetricsError),
		metrics.OptionOnSent(func(p metrics.Payload) { client.emitter.Emit(Event{Name: EventSent, Metrics: &p}) }),
	)
	if err != nil {
		return nil, err
	}
	client.metrics = aggregator

	for _, l := range opts.listeners {
		client.emitter.On(l.Name, l.Listener)
	}

	bootstrapOverride := c.Bootstrap.Override.GetOrElse(true)
	if opts.hasBootstrap {
		client.engine.ReplaceToggles(opts.bootstrap)
	}
	go client.initialize(opts.bootstrap, opts.hasBootstrap, bootstrapOverride)

	return client, nil
}

func contextFromConfig(cc config.ContextConfig) model.Context {
	props, _ := config.ParseContextProperties(cc.Properties) // already validated
	if len(props) == 0 {
		props = nil
	}
	return model.Context{
		UserID:        cc.UserID,
		SessionID:     cc.SessionID,
		RemoteAddress: cc.RemoteAddress,
		Properties:    props,
	}
}

// initialize reads the stored state and applies the bootstrap. Its outcome is recorded in initErr
// before initCh is closed, and Start proceeds either way.
func (c *Client) initialize(bootstrap []Toggle, hasBootstrap, override bool) {
	err := c.loadInitialState(context.Background(), bootstrap, hasBootstrap, override)

	c.lock.Lock()
	c.initErr = err
	if err != nil {
		c.state = StateError
		c.lastError = err
	} else if c.state == StateInitializing {
		c.state = StateHealthy
	}
	c.lock.Unlock()
	close(c.initCh)

	if err != nil {
		c.loggers.Errorf("Initialization failed: %s", err)
		c.emitter.Emit(Event{Name: EventError, Err: err})
		return
	}
	c.loggers.Debug("Initialized")
	c.emitter.Emit(Event{Name: EventInitialized})
}

func (c *Client) loadInitialState(ctx context.Context, bootstrap []Toggle, hasBootstrap, override bool) error {
	c.lock.RLock()
	configuredSessionID := c.context.SessionID
	c.lock.RUnlock()

	var (
		sessionID string
		stored    []Toggle
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sessionID, err = c.resolveSessionID(gctx, configuredSessionID)
		return err
	})
	g.Go(func() (err error) {
		stored, err = c.engine.LoadStoredToggles(gctx)
		return err
	})
	g.Go(func() error {
		return c.engine.LoadRefreshRecord(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.lock.Lock()
	if c.context.SessionID == "" {
		c.context.SessionID = sessionID
	}
	c.lock.Unlock()

	if !hasBootstrap || (!override && len(stored) > 0) {
		c.engine.ReplaceToggles(stored)
		return nil
	}
	c.loggers.Debugf("Using %d bootstrap toggles", len(bootstrap))
	if err := c.engine.StoreToggles(ctx, bootstrap); err != nil {
		return err
	}
	c.setReady()
	return nil
}

// resolveSessionID returns the configured session id, else the stored one, else a new random id
// which is then stored.
func (c *Client) resolveSessionID(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	var stored string
	found, err := storage.GetJSON(ctx, c.storage, storage.KeySessionID, &stored)
	if err != nil {
		return "", err
	}
	if found && stored != "" {
		return stored, nil
	}
	random := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // not a security token
	sessionID := strconv.Itoa(random.Intn(maxSessionID))
	if err := storage.SaveJSON(ctx, c.storage, storage.KeySessionID, sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Start waits for initialization, starts the metrics timer, fetches the toggles (unless the stored
// ones are still fresh) and then starts polling if refresh is enabled.
//
// Calling Start on a client that is already started logs a warning and does nothing; call Stop first
// to restart. If ctx is cancelled while waiting for initialization, Start returns without starting.
// If Stop is called before Start returns, the timers are not started.
func (c *Client) Start(ctx context.Context) {
	c.lock.Lock()
	if c.started {
		c.lock.Unlock()
		c.loggers.Warn("Client has already been started, call Stop before starting it again")
		return
	}
	c.started = true
	c.runID++
	run := c.runID
	c.lock.Unlock()

	select {
	case <-c.initCh:
	case <-ctx.Done():
		c.lock.Lock()
		if c.runID == run {
			c.started = false
		}
		c.lock.Unlock()
		return
	}
	c.lock.RLock()
	initErr := c.initErr
	c.lock.RUnlock()
	if initErr != nil {
		c.loggers.Warnf("Starting after failed initialization: %s", initErr)
	}

	if !c.whileRunning(run, func() { c.metrics.Start() }) {
		c.loggers.Debug("Client was stopped during startup")
		return
	}

	current := c.GetContext()
	if c.engine.IsFresh(current) {
		c.loggers.Info("Stored toggles are still fresh, skipping the initial fetch")
		c.engine.MarkFetched()
		c.setReady()
	} else {
		c.engine.Fetch(ctx, current)
	}

	if c.refreshInterval > 0 {
		if !c.whileRunning(run, func() { c.engine.StartPolling(c.refreshInterval, c.GetContext) }) {
			c.loggers.Debug("Client was stopped during startup")
		}
	}
}

// whileRunning calls fn with the client lock held, unless Stop has been called since the Start that
// owns run. Stop takes the same lock, so it always sees what fn started.
func (c *Client) whileRunning(run uint64, fn func()) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.started || c.runID != run {
		return false
	}
	fn()
	return true
}

// Stop stops polling and the metrics timer. The toggles and state are kept, so a stopped client still
// answers queries.
func (c *Client) Stop() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.started = false
	c.runID++
	c.engine.StopPolling()
	c.metrics.Stop()
}

// Close stops the client, cancels a fetch in flight and closes the storage provider if it holds
// connections.
func (c *Client) Close() error {
	c.Stop()
	c.engine.Abort()
	if closer, ok := c.storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// IsEnabled returns true if the named toggle is known and enabled. Every call is counted in the
// metrics, and emits EventImpression if the toggle has impression data or ImpressionDataAll is set.
func (c *Client) IsEnabled(name string) bool {
	toggle, found := c.engine.Toggle(name)
	enabled := found && toggle.Enabled
	c.metrics.Count(name, enabled)

	if (c.impressionDataAll || toggle.ImpressionData) && c.emitter.HasListeners(EventImpression) {
		impression := events.NewIsEnabledImpression(c.GetContext(), enabled, name, toggle.ImpressionData)
		c.emitter.Emit(Event{Name: EventImpression, Impression: &impression})
	}
	return enabled
}

// GetVariant returns the variant of the named toggle, or DefaultVariant if the toggle is unknown or
// has no variant. FeatureEnabled is set from the toggle's state.
func (c *Client) GetVariant(name string) Variant {
	toggle, found := c.engine.Toggle(name)
	enabled := found && toggle.Enabled
	variant := model.DefaultVariant()
	if found {
		variant = toggle.EffectiveVariant()
	}
	c.metrics.CountVariant(name, variant.Name)
	c.metrics.Count(name, enabled)

	if (c.impressionDataAll || toggle.ImpressionData) && c.emitter.HasListeners(EventImpression) {
		impression := events.NewGetVariantImpression(c.GetContext(), enabled, name, variant.Name,
			toggle.ImpressionData)
		c.emitter.Emit(Event{Name: EventImpression, Impression: &impression})
	}

	variant.FeatureEnabled = enabled
	return variant
}

// GetAllToggles returns a copy of the current toggles.
func (c *Client) GetAllToggles() []Toggle {
	return c.engine.Toggles()
}

// SendMetrics posts the current metrics bucket now, if it is not empty.
func (c *Client) SendMetrics(ctx context.Context) error {
	return c.metrics.SendMetrics(ctx)
}

// On registers a listener for an event. Listeners are called in the order they were added.
func (c *Client) On(name EventName, listener Listener) Subscription {
	return c.emitter.On(name, listener)
}

// Off removes a listener.
func (c *Client) Off(sub Subscription) {
	c.emitter.Off(sub)
}
