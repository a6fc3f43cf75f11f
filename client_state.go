package unleash

// SdkState is the health of a Client.
type SdkState string

const (
	// StateInitializing is the state until storage has been read and the bootstrap applied.
	StateInitializing SdkState = "initializing"
	// StateHealthy means that initialization succeeded and the last fetch did not fail.
	StateHealthy SdkState = "healthy"
	// StateError means that initialization or the last fetch failed. GetError returns the cause.
	StateError SdkState = "error"
)

// State returns the current SdkState.
func (c *Client) State() SdkState {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.state
}

// IsReady returns true once toggles are available from bootstrap, fresh storage or a fetch.
func (c *Client) IsReady() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.readyEmitted
}

// Ready returns a channel that is closed when the client becomes ready.
func (c *Client) Ready() <-chan struct{} {
	return c.readyCh
}

// GetError returns the last error from initialization, fetching or sending metrics, or nil. A metrics
// failure is recorded here without changing the State.
func (c *Client) GetError() error {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.lastError
}

// setReady closes the ready channel and emits EventReady, once.
func (c *Client) setReady() {
	c.lock.Lock()
	if c.readyEmitted {
		c.lock.Unlock()
		return
	}
	c.readyEmitted = true
	close(c.readyCh)
	c.lock.Unlock()
	c.emitter.Emit(Event{Name: EventReady})
}

func (c *Client) setError(err error) {
	c.lock.Lock()
	c.state = StateError
	c.lastError = err
	c.lock.Unlock()
	c.emitter.Emit(Event{Name: EventError, Err: err})
}

// setMetricsError records a failure to send metrics. Only fetching decides the State.
func (c *Client) setMetricsError(err error) {
	c.lock.Lock()
	c.lastError = err
	c.lock.Unlock()
	c.emitter.Emit(Event{Name: EventError, Err: err})
}

// fetchObserver receives the outcomes of the fetch engine on behalf of a Client.
type fetchObserver struct {
	client *Client
}

func (o fetchObserver) OnStatus(status int) {
	if status >= 400 {
		return
	}
	c := o.client
	c.lock.Lock()
	recovered := c.state == StateError
	if recovered {
		c.state = StateHealthy
	}
	c.lock.Unlock()
	if recovered {
		c.loggers.Info("Recovered from error state")
		c.emitter.Emit(Event{Name: EventRecovered})
	}
}

func (o fetchObserver) OnUpdate(toggles []Toggle) {
	c := o.client
	c.lock.Lock()
	c.state = StateHealthy
	c.lock.Unlock()
	c.loggers.Debugf("Received %d toggles", len(toggles))
	c.emitter.Emit(Event{Name: EventUpdate})
	c.setReady()
}

func (o fetchObserver) OnError(err error) {
	o.client.setError(err)
}
