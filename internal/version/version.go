// Package version contains the current version of the client library.
package version

// Version is the package version.
const Version = "1.0.0"
