package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// FileProvider stores each key as a JSON file in a directory. File names are derived from the prefixed
// key, so several clients with different prefixes can share a directory.
type FileProvider struct {
	dir     string
	prefix  string
	loggers ldlog.Loggers
	lock    sync.Mutex
}

// NewFileProvider creates the directory if necessary and returns a FileProvider for it. An empty prefix
// means DefaultPrefix.
func NewFileProvider(dir, prefix string, loggers ldlog.Loggers) (*FileProvider, error) {
	if dir == "" {
		return nil, errors.New("file storage directory must not be empty")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("can't create storage directory %q: %w", dir, err)
	}
	p := &FileProvider{dir: dir, prefix: prefix, loggers: loggers}
	p.loggers.SetPrefix("FileStorage:")
	p.loggers.Infof("Using storage directory %s", dir)
	return p, nil
}

func (p *FileProvider) path(key string) (string, error) {
	name := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(prefixedKey(p.prefix, key)) + ".json"
	return securejoin.SecureJoin(p.dir, name)
}

func (p *FileProvider) Save(ctx context.Context, key string, value []byte) error {
	path, err := p.path(key)
	if err != nil {
		return err
	}
	p.lock.Lock()
	defer p.lock.Unlock()

	tmp, err := os.CreateTemp(p.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	p.loggers.Debugf("Saved %d bytes to %s", len(value), filepath.Base(path))
	return nil
}

func (p *FileProvider) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := p.path(key)
	if err != nil {
		return nil, err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	data, err := os.ReadFile(path) //nolint:gosec // path is confined to the storage directory
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}
