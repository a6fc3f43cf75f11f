// Package storage defines the key-value persistence interface used by the Unleash client, along with
// in-memory, file, Redis, Consul and DynamoDB implementations.
//
// The client stores three keys: the last known toggle list (KeyRepo), the session id (KeySessionID), and,
// when a storage TTL is configured, the last refresh record (KeyLastUpdate). Values are JSON documents.
package storage
