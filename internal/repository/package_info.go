// Package repository owns the in-memory toggle table and the requests that keep it up to date: the
// conditional fetch, the polling timer and the storage TTL record.
package repository
