// Package unleash is a client for the Unleash proxy and frontend API.
//
// A Client fetches the toggles evaluated for its context, keeps them in memory and in a storage
// provider, and answers IsEnabled and GetVariant from that snapshot without blocking. Usage counts
// are aggregated and posted back to the proxy periodically.
//
// See the config package for the available configuration options, and the storage package for
// persistence backends.
package unleash
