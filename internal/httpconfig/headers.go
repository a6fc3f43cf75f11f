package httpconfig

import (
	"net/http"
	"strings"

	"github.com/Unleash/unleash-proxy-client-go/internal/version"
)

// Header names sent on every request. All names are lowercase; net/http canonicalizes them on the wire.
const (
	HeaderAccept       = "accept"
	HeaderContentType  = "content-type"
	HeaderIfNoneMatch  = "if-none-match"
	HeaderSDK          = "unleash-sdk"
	HeaderAppName      = "unleash-appname"
	HeaderConnectionID = "unleash-connection-id"

	DefaultHeaderName = "Authorization"

	jsonContentType = "application/json"
)

// SDKIdentifier is the value of the unleash-sdk header.
func SDKIdentifier() string {
	return "unleash-proxy-client-go:" + version.Version
}

// HeaderParams is the input to ParseHeaders.
type HeaderParams struct {
	ClientKey     string
	AppName       string
	ConnectionID  string
	CustomHeaders map[string]string
	// HeaderName is the header that carries ClientKey. Defaults to DefaultHeaderName.
	HeaderName string
	ETag       string
	IsPost     bool
}

// ParseHeaders builds the header map for a request to the proxy. Custom headers are applied after the
// preset ones, so they may override them, except for the connection id which is always set last.
func ParseHeaders(p HeaderParams) map[string]string {
	headerName := p.HeaderName
	if headerName == "" {
		headerName = DefaultHeaderName
	}

	headers := map[string]string{
		HeaderAccept:                jsonContentType,
		HeaderSDK:                   SDKIdentifier(),
		HeaderAppName:               p.AppName,
		strings.ToLower(headerName): p.ClientKey,
	}
	if p.IsPost {
		headers[HeaderContentType] = jsonContentType
	}
	if p.ETag != "" {
		headers[HeaderIfNoneMatch] = p.ETag
	}
	for name, value := range p.CustomHeaders {
		if name == "" || value == "" {
			continue
		}
		headers[strings.ToLower(name)] = value
	}
	headers[HeaderConnectionID] = p.ConnectionID
	return headers
}

// ApplyHeaders copies a header map produced by ParseHeaders into an outgoing request.
func ApplyHeaders(req *http.Request, headers map[string]string) {
	for name, value := range headers {
		req.Header.Set(name, value)
	}
}
