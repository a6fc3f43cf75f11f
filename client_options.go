package unleash

import (
	"errors"

	"github.com/Unleash/unleash-proxy-client-go/internal/model"
	"github.com/Unleash/unleash-proxy-client-go/storage"
)

var (
	errNilStorage  = errors.New("storage provider must not be nil")
	errNilListener = errors.New("event listener must not be nil")
)

type clientOptions struct {
	storage       storage.Provider
	httpClient    HTTPDoer
	hasHTTPClient bool
	cancelFactory CancelFactory
	bootstrap     []Toggle
	hasBootstrap  bool
	context       *Context
	listeners     []OptionEventListener
}

// OptionType defines optional parameters for NewClient.
type OptionType interface {
	apply(*clientOptions) error
}

// OptionStorage sets the storage provider, overriding the storage sections of the configuration.
type OptionStorage struct {
	Provider storage.Provider
}

func (o OptionStorage) apply(opts *clientOptions) error {
	if o.Provider == nil {
		return errNilStorage
	}
	opts.storage = o.Provider
	return nil
}

// OptionHTTPClient sets the transport for toggle and metrics requests. A nil Client disables all
// network calls.
type OptionHTTPClient struct {
	Client HTTPDoer
}

func (o OptionHTTPClient) apply(opts *clientOptions) error {
	opts.httpClient = o.Client
	opts.hasHTTPClient = true
	return nil
}

// OptionCancelFactory sets the function that derives the cancellable context of each toggle fetch.
type OptionCancelFactory CancelFactory

func (o OptionCancelFactory) apply(opts *clientOptions) error {
	opts.cancelFactory = CancelFactory(o)
	return nil
}

// OptionBootstrap sets toggles to serve before the first fetch. Unless Bootstrap.Override is false in
// the configuration, they replace any stored toggles; otherwise they are used only if storage is empty.
// An empty list is ignored.
type OptionBootstrap []Toggle

func (o OptionBootstrap) apply(opts *clientOptions) error {
	if len(o) == 0 {
		return nil
	}
	opts.bootstrap = model.CopyToggles(o)
	opts.hasBootstrap = true
	return nil
}

// OptionContext sets the initial context, replacing the Context section of the configuration.
// AppName and Environment always come from the configuration.
type OptionContext Context

func (o OptionContext) apply(opts *clientOptions) error {
	c := Context(o).Copy()
	opts.context = &c
	return nil
}

// OptionEventListener registers a listener before initialization starts, so that it can observe
// EventInitialized and a bootstrap EventReady.
type OptionEventListener struct {
	Name     EventName
	Listener Listener
}

func (o OptionEventListener) apply(opts *clientOptions) error {
	if o.Listener == nil {
		return errNilListener
	}
	opts.listeners = append(opts.listeners, o)
	return nil
}
