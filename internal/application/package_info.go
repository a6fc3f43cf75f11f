// Package application contains the pieces of the standalone unleash-proxy-client command: command-line
// parsing, configuration loading, the status server and the context file watcher.
package application
