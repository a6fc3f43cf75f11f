package application

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	unleash "github.com/Unleash/unleash-proxy-client-go"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/fsnotify/fsnotify"
)

const (
	logMsgContextReloaded    = "Reloaded context from %s"
	logMsgContextReloadError = "Failed to reload context file, keeping the current context: %s"
	logMsgContextFileRemoved = "Context file %s was removed, keeping the current context"
)

func errCreateContextWatcherFailed(path string, err error) error {
	return fmt.Errorf("unable to watch context file %q: %w", path, err)
}

// ContextWatcher reads a JSON context file and calls a handler with its contents whenever it changes.
//
// The directory containing the file is watched rather than the file itself, so that editors which
// replace the file by renaming a new one over it are detected.
type ContextWatcher struct {
	filePath     string
	handler      func(unleash.Context)
	lastFileInfo os.FileInfo
	watcher      *fsnotify.Watcher
	loggers      ldlog.Loggers
	closeCh      chan struct{}
	closeOnce    sync.Once
}

// NewContextWatcher reads the file, passes its context to the handler, and starts watching for changes.
// It returns an error if the initial file cannot be read.
func NewContextWatcher(filePath string, handler func(unleash.Context), loggers ldlog.Loggers) (*ContextWatcher, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, errCreateContextWatcherFailed(filePath, err)
	}
	cw := &ContextWatcher{
		filePath: absPath,
		handler:  handler,
		loggers:  loggers,
		closeCh:  make(chan struct{}),
	}
	cw.loggers.SetPrefix("ContextWatcher:")

	ctx, err := LoadContextFile(absPath)
	if err != nil {
		return nil, err
	}
	if cw.lastFileInfo, err = os.Stat(absPath); err != nil {
		return nil, errCreateContextWatcherFailed(filePath, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errCreateContextWatcherFailed(filePath, err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, errCreateContextWatcherFailed(filePath, err)
	}
	cw.watcher = watcher

	handler(ctx)
	go cw.run()

	return cw, nil
}

// Close stops watching the file.
func (cw *ContextWatcher) Close() {
	cw.closeOnce.Do(func() {
		close(cw.closeCh)
	})
}

func (cw *ContextWatcher) run() {
	for {
		select {
		case <-cw.closeCh:
			_ = cw.watcher.Close()
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.filePath {
				continue
			}
			cw.loggers.Debugf("Got file watcher event: %+v", event)
			// Writes usually arrive as several events; give the writer a moment and coalesce them.
			time.Sleep(10 * time.Millisecond)
			cw.consumeExtraEvents()
			cw.maybeReload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.loggers.Warnf("File watcher error: %s", err)
		}
	}
}

func (cw *ContextWatcher) consumeExtraEvents() {
	for {
		select {
		case <-cw.watcher.Events:
		default:
			return
		}
	}
}

func (cw *ContextWatcher) maybeReload() {
	info, err := os.Stat(cw.filePath)
	if err != nil {
		cw.loggers.Warnf(logMsgContextFileRemoved, cw.filePath)
		return
	}
	if !fileMayHaveChanged(info, cw.lastFileInfo) {
		cw.loggers.Debug("File has not changed")
		return
	}
	ctx, err := LoadContextFile(cw.filePath)
	if err != nil {
		cw.loggers.Warnf(logMsgContextReloadError, err)
		return
	}
	cw.lastFileInfo = info
	cw.loggers.Infof(logMsgContextReloaded, cw.filePath)
	cw.handler(ctx)
}

func fileMayHaveChanged(newInfo, oldInfo os.FileInfo) bool {
	return !newInfo.ModTime().Equal(oldInfo.ModTime()) || newInfo.Size() != oldInfo.Size()
}
