// Package httpconfig builds the HTTP client, request headers and request URLs used to talk to the
// Unleash proxy.
package httpconfig
