// Package sharedtest provides helper code and test data that may be used by tests in all client
// components.
//
// Non-test code should never import this package. To avoid circular references, it cannot reference
// the root unleash package.
package sharedtest
