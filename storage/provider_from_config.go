package storage

import (
	"context"

	"github.com/Unleash/unleash-proxy-client-go/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// NewProviderFromConfig returns the provider selected by the configuration. config.ValidateConfig has
// already ensured that at most one backend is enabled. With no backend configured, it returns a
// MemoryProvider.
func NewProviderFromConfig(ctx context.Context, c config.Config, loggers ldlog.Loggers) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch {
	case c.File.Dir != "":
		p, err = asProvider(NewFileProvider(c.File.Dir, "", loggers))
	case c.Redis.URL.IsDefined():
		p, err = asProvider(NewRedisProvider(ctx, c.Redis, true, loggers))
	case c.Consul.Host != "":
		p, err = asProvider(NewConsulProvider(c.Consul, loggers))
	case c.DynamoDB.Enabled:
		p, err = asProvider(NewDynamoDBProvider(ctx, c.DynamoDB, nil, loggers))
	default:
		p = NewMemoryProvider()
	}
	return p, err
}

// asProvider keeps a typed nil pointer from turning into a non-nil Provider.
func asProvider[T Provider](p T, err error) (Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
