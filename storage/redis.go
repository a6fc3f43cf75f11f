package storage

import (
	"context"
	"crypto/tls"

	"github.com/go-redis/redis/v8"

	"github.com/Unleash/unleash-proxy-client-go/config"
	"github.com/Unleash/unleash-proxy-client-go/internal/util"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// RedisProvider stores values as Redis strings under "<prefix>:<key>".
type RedisProvider struct {
	client  redis.UniversalClient
	prefix  string
	loggers ldlog.Loggers
}

// NewRedisProvider connects to the Redis server described by redisConfig. If checkOnStartup is true, the
// server is pinged and an error is returned if it can't be reached.
func NewRedisProvider(
	ctx context.Context,
	redisConfig config.RedisConfig,
	checkOnStartup bool,
	loggers ldlog.Loggers,
) (*RedisProvider, error) {
	parsed, err := redis.ParseURL(redisConfig.URL.String())
	if err != nil {
		return nil, err
	}
	opts := redis.UniversalOptions{
		Addrs:     []string{parsed.Addr},
		DB:        parsed.DB,
		Username:  parsed.Username,
		Password:  parsed.Password,
		TLSConfig: parsed.TLSConfig,
	}
	if redisConfig.Password != "" {
		opts.Password = redisConfig.Password
	}
	if redisConfig.TLS && opts.TLSConfig == nil {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12} //nolint:gosec // server name is filled in by go-redis
	}

	prefix := redisConfig.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	p := &RedisProvider{
		client:  redis.NewUniversalClient(&opts),
		prefix:  prefix,
		loggers: loggers,
	}
	p.loggers.SetPrefix("RedisStorage:")

	if checkOnStartup {
		if err := p.client.Ping(ctx).Err(); err != nil {
			_ = p.client.Close()
			return nil, err
		}
	}
	p.loggers.Infof("Using Redis storage at %s", util.RedactURL(redisConfig.URL.String()))
	return p, nil
}

func (p *RedisProvider) Save(ctx context.Context, key string, value []byte) error {
	return p.client.Set(ctx, prefixedKey(p.prefix, key), value, 0).Err()
}

func (p *RedisProvider) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := p.client.Get(ctx, prefixedKey(p.prefix, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// Close releases the connection pool.
func (p *RedisProvider) Close() error {
	return p.client.Close()
}
