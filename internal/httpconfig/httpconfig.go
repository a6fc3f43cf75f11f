package httpconfig

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Unleash/unleash-proxy-client-go/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// DefaultConnectTimeout is the dial timeout used when building a transport.
const DefaultConnectTimeout = 10 * time.Second

var errProxyAuthWithoutURL = errors.New("cannot specify proxy authentication without a proxy URL")

// HTTPConfig encapsulates ProxyConfig along with the http.Client built from it.
type HTTPConfig struct {
	config.ProxyConfig
	ProxyURL *url.URL
	client   *http.Client
}

// NewHTTPConfig validates all of the HTTP-related options and returns an HTTPConfig if successful.
func NewHTTPConfig(proxyConfig config.ProxyConfig, loggers ldlog.Loggers) (HTTPConfig, error) {
	ret := HTTPConfig{ProxyConfig: proxyConfig}

	if !proxyConfig.URL.IsDefined() && (proxyConfig.User != "" || proxyConfig.Password != "") {
		return ret, errProxyAuthWithoutURL
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DefaultConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if proxyConfig.URL.IsDefined() {
		u := *proxyConfig.URL.Get()
		if proxyConfig.User != "" {
			u.User = url.UserPassword(proxyConfig.User, proxyConfig.Password)
		}
		loggers.Infof("Using proxy server at %s", proxyConfig.URL.String())
		ret.ProxyURL = &u
		transport.Proxy = http.ProxyURL(&u)
	}

	if certFiles := proxyConfig.CACertFiles.Values(); len(certFiles) > 0 {
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		for _, filePath := range certFiles {
			if filePath == "" {
				continue
			}
			data, err := os.ReadFile(filePath) //nolint:gosec // path comes from configuration
			if err != nil {
				return ret, fmt.Errorf("can't read CA certificate file %q: %w", filePath, err)
			}
			if !pool.AppendCertsFromPEM(data) {
				return ret, fmt.Errorf("CA certificate file %q did not contain a valid certificate", filePath)
			}
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}

	ret.client = &http.Client{
		Transport: transport,
		Timeout:   proxyConfig.RequestTimeout.GetOrElse(0),
	}
	return ret, nil
}

// Client returns the HTTP client. All callers share the same transport.
func (c HTTPConfig) Client() *http.Client {
	if c.client == nil {
		return http.DefaultClient
	}
	return c.client
}
