// Package config contains the configuration types for the client and the logic for loading them from a
// configuration file or from environment variables.
package config
