package shopfront

import "testing"

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventCartChanged)
	if e.Kind != EventCartChanged {
		t.Errorf("got kind %v", e.Kind)
	}
	if e.Time.IsZero() {
		t.Error("expected a timestamp")
	}
	if e.Payload == nil {
		t.Error("expected an initialized payload")
	}
}

func TestEventWithPayload_CopyOnWrite(t *testing.T) {
	base := NewEvent(EventOpFailed).WithPayload("op", "login")
	derived := base.WithPayload("message", "nope")

	if _, present := base.Payload["message"]; present {
		t.Error("WithPayload mutated the original event")
	}
	if derived.Payload["op"] != "login" || derived.Payload["message"] != "nope" {
		t.Errorf("got payload %v", derived.Payload)
	}
}

func TestEmit_NilEmitterIsSafe(t *testing.T) {
	emit(nil, NewEvent(EventNoticeShown))

	var got Event
	emit(func(e Event) { got = e }, NewEvent(EventNoticeShown))
	if got.Kind != EventNoticeShown {
		t.Errorf("got %v", got.Kind)
	}
}
