package repository

import (
	"context"

	"github.com/Unleash/unleash-proxy-client-go/internal/model"
	"github.com/Unleash/unleash-proxy-client-go/storage"

	"github.com/launchdarkly/go-sdk-common/v3/ldtime"
)

// RefreshRecord is stored under storage.KeyLastUpdate when a storage TTL is configured. Key is the context
// hash that the toggles were fetched for.
type RefreshRecord struct {
	Key       string                     `json:"key"`
	Timestamp ldtime.UnixMillisecondTime `json:"timestamp"`
}

// LoadRefreshRecord reads the stored refresh record so that a later IsFresh call can use it.
func (e *Engine) LoadRefreshRecord(ctx context.Context) error {
	if e.params.TogglesStorageTTL <= 0 {
		return nil
	}
	var rec RefreshRecord
	found, err := storage.GetJSON(ctx, e.params.Storage, storage.KeyLastUpdate, &rec)
	if err != nil || !found {
		return err
	}
	e.fetchLock.Lock()
	e.lastRefresh = &rec
	e.fetchLock.Unlock()
	return nil
}

// IsFresh returns true if the stored toggles were fetched for the same context within the storage TTL.
func (e *Engine) IsFresh(c model.Context) bool {
	ttl := e.params.TogglesStorageTTL
	if ttl <= 0 {
		return false
	}
	e.fetchLock.Lock()
	rec := e.lastRefresh
	e.fetchLock.Unlock()
	if rec == nil || rec.Key != model.ComputeContextHash(c) {
		return false
	}
	age := int64(ldtime.UnixMillisFromTime(e.now())) - int64(rec.Timestamp)
	return age >= 0 && age <= ttl.Milliseconds()
}

func (e *Engine) storeRefreshRecord(ctx context.Context, c model.Context) error {
	if e.params.TogglesStorageTTL <= 0 {
		return nil
	}
	rec := RefreshRecord{Key: model.ComputeContextHash(c), Timestamp: ldtime.UnixMillisFromTime(e.now())}
	e.fetchLock.Lock()
	e.lastRefresh = &rec
	e.fetchLock.Unlock()
	return storage.SaveJSON(ctx, e.params.Storage, storage.KeyLastUpdate, rec)
}
