package application

import (
	"fmt"
	"net/http"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// StartHTTPServer starts the server. It returns immediately, starting the server on a separate
// goroutine; if the server fails to start up, it sends an error to the error channel.
func StartHTTPServer(port int, handler http.Handler, loggers ldlog.Loggers) (*http.Server, <-chan error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		loggers.Infof("Starting server listening on port %d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	return srv, errCh
}
