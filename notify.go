package shopfront

import (
	"sync"
	"time"
)

// DefaultNoticeTTL is how long a notification stays visible before it
// auto-dismisses.
const DefaultNoticeTTL = 3 * time.Second

// NoticeKind classifies a notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a user-facing banner message. At most one is live at a time.
type Notice struct {
	Message string
	Kind    NoticeKind
}

// NotifierConfig configures a Notifier.
type NotifierConfig struct {
	// TTL overrides the auto-dismiss delay. Zero means DefaultNoticeTTL.
	TTL time.Duration

	// Emitter receives notice.shown and notice.cleared events. Optional.
	Emitter Emitter
}

// Notifier is the transient notification channel: a single slot with an
// auto-expiring timer. Show replaces the current notice and restarts the
// timer; Hide clears immediately. Neither can fail, and neither touches
// the backend.
//
// Each Show bumps a generation counter that the scheduled dismissal checks
// before clearing, so a superseded timer that fires anyway can never take
// down a newer notice.
type Notifier struct {
	ttl     time.Duration
	emitter Emitter

	mu      sync.Mutex
	current *Notice
	timer   *time.Timer
	gen     uint64
}

// NewNotifier creates an empty notification channel.
func NewNotifier(cfg NotifierConfig) *Notifier {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notifier{
		ttl:     ttl,
		emitter: cfg.Emitter,
	}
}

// Show displays a notification, silently replacing any current one and
// invalidating its pending dismissal.
func (n *Notifier) Show(message string, kind NoticeKind) {
	if kind == "" {
		kind = NoticeSuccess
	}

	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.current = &Notice{Message: message, Kind: kind}
	n.timer = time.AfterFunc(n.ttl, func() {
		n.expire(gen)
	})
	n.mu.Unlock()

	emit(n.emitter, NewEvent(EventNoticeShown).
		WithPayload("message", message).
		WithPayload("kind", string(kind)))
}

// ShowSuccess displays a success notification.
func (n *Notifier) ShowSuccess(message string) {
	n.Show(message, NoticeSuccess)
}

// ShowError displays an error notification.
func (n *Notifier) ShowError(message string) {
	n.Show(message, NoticeError)
}

// Hide clears the current notification immediately and cancels its
// pending dismissal.
func (n *Notifier) Hide() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	had := n.current != nil
	n.current = nil
	n.mu.Unlock()

	if had {
		emit(n.emitter, NewEvent(EventNoticeCleared).WithPayload("reason", "hide"))
	}
}

// Current returns the live notification, if any.
func (n *Notifier) Current() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notice{}, false
	}
	return *n.current, true
}

// expire clears the notice for the given generation. A stale generation
// means a newer Show or Hide already superseded this timer.
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen || n.current == nil {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	n.mu.Unlock()

	emit(n.emitter, NewEvent(EventNoticeCleared).WithPayload("reason", "expired"))
}
