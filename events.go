package shopfront

import "time"

// EventKind identifies the type of state-change event published by the
// state managers.
type EventKind string

const (
	// EventSessionChanged is published when login, logout, restore, or a
	// profile refresh replaces session state.
	EventSessionChanged EventKind = "session.changed"

	// EventCartChanged is published after a cart read replaces the local
	// cart snapshot.
	EventCartChanged EventKind = "cart.changed"

	// EventNoticeShown is published when a notification becomes visible.
	EventNoticeShown EventKind = "notice.shown"

	// EventNoticeCleared is published when a notification is dismissed,
	// either explicitly or by timer expiry.
	EventNoticeCleared EventKind = "notice.cleared"

	// EventOpFailed is published when a session or cart operation fails.
	// The payload carries the operation name and the user-facing message.
	EventOpFailed EventKind = "op.failed"
)

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Event is a small, streamable record of a state change. Events carry
// display-safe payloads only; credentials are never included.
type Event struct {
	// Kind identifies the event type.
	Kind EventKind

	// Time is when the event occurred.
	Time time.Time

	// Payload holds event-specific fields.
	Payload map[string]any
}

// NewEvent creates an event of the given kind stamped with the current time.
func NewEvent(kind EventKind) Event {
	return Event{
		Kind:    kind,
		Time:    time.Now().UTC(),
		Payload: map[string]any{},
	}
}

// WithPayload returns a copy of the event with an added payload field.
func (e Event) WithPayload(key string, value any) Event {
	payload := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value
	e.Payload = payload
	return e
}

// Emitter receives state-change events. State managers publish through an
// Emitter and never block on consumers; a nil Emitter disables publishing.
type Emitter func(Event)

func emit(fn Emitter, e Event) {
	if fn != nil {
		fn(e)
	}
}
