package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggers(t *testing.T) {
	loggers := MakeDefaultLoggers()
	assert.Equal(t, ldlog.Info, loggers.GetMinLevel())
}

func TestWithLevel(t *testing.T) {
	loggers := MakeDefaultLoggers()
	assert.Equal(t, ldlog.Warn, WithLevel(loggers, ldlog.Warn).GetMinLevel())
	assert.Equal(t, ldlog.Info, WithLevel(loggers, ldlog.None).GetMinLevel())
}

func TestContextLoggers(t *testing.T) {
	assert.Equal(t, ldlog.NewDisabledLoggers(), GetContextLoggers(context.Background()))

	mockLog := ldlogtest.NewMockLog()
	req, _ := http.NewRequest("GET", "", nil)
	ContextLoggersMiddleware(mockLog.Loggers)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, mockLog.Loggers, GetContextLoggers(r.Context()))
	})).ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequestLoggerMiddleware(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	mockLog.Loggers.SetMinLevel(ldlog.Debug)
	req, _ := http.NewRequest("GET", "http://localhost/status", nil)
	handler := RequestLoggerMiddleware(mockLog.Loggers)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	mockLog.AssertMessageMatch(t, true, ldlog.Debug, "method=GET url=http://localhost/status status=418 bytes=2")
}
