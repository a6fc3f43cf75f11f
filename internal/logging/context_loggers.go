package logging

import (
	"context"
	"net/http"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

type contextLoggersName string

const contextLoggersKey contextLoggersName = "ContextLoggers"

// GetContextLoggers returns the Loggers associated with this HTTP request. If no such context
// information was added to the request, it returns disabled loggers.
func GetContextLoggers(ctx context.Context) ldlog.Loggers {
	if value := ctx.Value(contextLoggersKey); value != nil {
		if l, ok := value.(ldlog.Loggers); ok {
			return l
		}
	}
	return ldlog.NewDisabledLoggers()
}

// ContextLoggersMiddleware attaches logging context to each HTTP request.
func ContextLoggersMiddleware(loggers ldlog.Loggers) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r1 := r.WithContext(context.WithValue(r.Context(), contextLoggersKey, loggers))
			next.ServeHTTP(w, r1)
		})
	}
}

// RequestLoggerMiddleware decorates a Handler with debug-level logging of all requests.
func RequestLoggerMiddleware(loggers ldlog.Loggers) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			wrapped := statusRecordingWriter{ResponseWriter: w}
			next.ServeHTTP(&wrapped, req)
			if wrapped.statusCode == 0 {
				wrapped.statusCode = http.StatusOK
			}
			loggers.Debugf("Request: method=%s url=%s status=%d bytes=%d",
				req.Method, req.URL, wrapped.statusCode, wrapped.bytesWritten)
		})
	}
}

type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten uint64
}

func (w *statusRecordingWriter) Write(data []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	w.bytesWritten += uint64(len(data))
	return w.ResponseWriter.Write(data)
}

func (w *statusRecordingWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
