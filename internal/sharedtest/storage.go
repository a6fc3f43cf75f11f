package sharedtest

import (
	"context"
	"errors"
	"sync"

	"github.com/Unleash/unleash-proxy-client-go/storage"
)

// ErrStorageUnavailable is returned by FailingStorage.
var ErrStorageUnavailable = errors.New("storage is unavailable")

// FailingStorage is a storage provider whose operations always fail.
type FailingStorage struct{}

// Save fails.
func (FailingStorage) Save(context.Context, string, []byte) error {
	return ErrStorageUnavailable
}

// Get fails.
func (FailingStorage) Get(context.Context, string) ([]byte, error) {
	return nil, ErrStorageUnavailable
}

// ClosableStorage is an in-memory storage provider that records whether it was closed.
type ClosableStorage struct {
	*storage.MemoryProvider
	closed bool
	lock   sync.Mutex
}

// NewClosableStorage creates an empty ClosableStorage.
func NewClosableStorage() *ClosableStorage {
	return &ClosableStorage{MemoryProvider: storage.NewMemoryProvider()}
}

// Close marks the provider as closed.
func (s *ClosableStorage) Close() error {
	s.lock.Lock()
	s.closed = true
	s.lock.Unlock()
	return nil
}

// IsClosed returns true if Close has been called.
func (s *ClosableStorage) IsClosed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed
}
