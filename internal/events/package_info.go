// Package events contains the client's event dispatch table and the impression event type.
package events
