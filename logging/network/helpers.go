package network

import (
	"context"

	"volley/server/logging"
)

const (
	// EventSessionOpened is emitted when a websocket session is accepted.
	EventSessionOpened logging.EventType = "network.session_opened"
	// EventSessionClosed is emitted when a session goes away.
	EventSessionClosed logging.EventType = "network.session_closed"
)

// SessionClosedPayload captures why a session ended.
type SessionClosedPayload struct {
	Reason string `json:"reason"`
}

// SessionOpened publishes a session accept event.
func SessionOpened(ctx context.Context, pub logging.Publisher, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionOpened,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})
}

// SessionClosed publishes a session teardown event.
func SessionClosed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionClosedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionClosed,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}
