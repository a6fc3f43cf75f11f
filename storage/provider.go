package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Unleash/unleash-proxy-client-go/config"
)

// Keys used by the client.
const (
	KeyRepo       = "repo"
	KeySessionID  = "sessionId"
	KeyLastUpdate = "repoLastUpdateTimestamp"
)

// DefaultPrefix is the namespace under which persistent providers store keys.
const DefaultPrefix = config.DefaultStoragePrefix

// Provider is a key-value store for client state.
//
// Get must return (nil, nil) for a key that has never been saved. Implementations must be safe for
// concurrent use, including by several clients sharing the same backing store.
type Provider interface {
	Save(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// SaveJSON marshals value and saves it under key.
func SaveJSON(ctx context.Context, p Provider, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("can't serialize value for key %q: %w", key, err)
	}
	return p.Save(ctx, key, data)
}

// GetJSON loads the value stored under key into target. It returns false if the key is not present.
func GetJSON(ctx context.Context, p Provider, key string, target interface{}) (bool, error) {
	data, err := p.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("malformed value stored for key %q: %w", key, err)
	}
	return true, nil
}

func prefixedKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
