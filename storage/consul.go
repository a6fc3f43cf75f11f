package storage

import (
	"context"

	"github.com/hashicorp/consul/api"

	"github.com/Unleash/unleash-proxy-client-go/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// ConsulProvider stores values in the Consul KV store under "<prefix>/<key>".
type ConsulProvider struct {
	kv      *api.KV
	prefix  string
	loggers ldlog.Loggers
}

// NewConsulProvider creates a Consul client for consulConfig.Host.
func NewConsulProvider(consulConfig config.ConsulConfig, loggers ldlog.Loggers) (*ConsulProvider, error) {
	apiConfig := api.DefaultConfig()
	if consulConfig.Host != "" {
		apiConfig.Address = consulConfig.Host
	}
	if consulConfig.Token != "" {
		apiConfig.Token = consulConfig.Token
	}
	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, err
	}
	prefix := consulConfig.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	p := &ConsulProvider{kv: client.KV(), prefix: prefix, loggers: loggers}
	p.loggers.SetPrefix("ConsulStorage:")
	p.loggers.Infof("Using Consul storage at %s", apiConfig.Address)
	return p, nil
}

func (p *ConsulProvider) key(key string) string {
	return p.prefix + "/" + key
}

func (p *ConsulProvider) Save(ctx context.Context, key string, value []byte) error {
	_, err := p.kv.Put(&api.KVPair{Key: p.key(key), Value: value}, (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (p *ConsulProvider) Get(ctx context.Context, key string) ([]byte, error) {
	pair, _, err := p.kv.Get(p.key(key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil || pair == nil {
		return nil, err
	}
	return pair.Value, nil
}
