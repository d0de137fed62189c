// Package engine drives the screening conversation: it classifies each
// inbound message against the current flow step, persists the state
// transition atomically, and queues the outbound replies. This file
// centralizes engine-level error values so callers (the webhook handler and
// the message bus adapter) can map them consistently.
package engine

import "errors"

var (
	// ErrEmptyIdentity is returned when a message arrives without a sender
	// identity.
	ErrEmptyIdentity = errors.New("identity is empty")

	// ErrMessageTooLong is returned when an inbound message exceeds the
	// configured rune limit.
	ErrMessageTooLong = errors.New("message too long")

	// ErrNoFlow is returned when the configuration snapshot has no steps to
	// run; the flow table was emptied without a replacement.
	ErrNoFlow = errors.New("screening flow has no steps")
)
