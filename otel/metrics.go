// Package otel provides OpenTelemetry integration for shopfront state
// events. The API client traces its own HTTP requests; this package covers
// the aggregate view: counters over session changes, cart changes, notices,
// and failed operations.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/oakmart/shopfront"
	"github.com/oakmart/shopfront/bus"
)

// MetricsHandler translates shopfront state events into OpenTelemetry
// metrics.
type MetricsHandler struct {
	sessionChanges metric.Int64Counter
	cartChanges    metric.Int64Counter
	notices        metric.Int64Counter
	opFailures     metric.Int64Counter
}

// NewMetricsHandler creates a MetricsHandler that uses the given meter to
// create instruments for recording shopfront state metrics.
func NewMetricsHandler(meter metric.Meter) (*MetricsHandler, error) {
	sessionChanges, err := meter.Int64Counter("shopfront.session.changes",
		metric.WithDescription("Number of session state replacements"),
	)
	if err != nil {
		return nil, err
	}

	cartChanges, err := meter.Int64Counter("shopfront.cart.changes",
		metric.WithDescription("Number of cart snapshot replacements"),
	)
	if err != nil {
		return nil, err
	}

	notices, err := meter.Int64Counter("shopfront.notices",
		metric.WithDescription("Number of notifications shown"),
	)
	if err != nil {
		return nil, err
	}

	opFailures, err := meter.Int64Counter("shopfront.op.failures",
		metric.WithDescription("Number of failed session or cart operations"),
	)
	if err != nil {
		return nil, err
	}

	return &MetricsHandler{
		sessionChanges: sessionChanges,
		cartChanges:    cartChanges,
		notices:        notices,
		opFailures:     opFailures,
	}, nil
}

// Handle processes one state event and records the appropriate metrics.
func (h *MetricsHandler) Handle(e shopfront.Event) {
	ctx := context.Background()
	switch e.Kind {
	case shopfront.EventSessionChanged:
		h.sessionChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", payloadString(e, "reason")),
		))
	case shopfront.EventCartChanged:
		h.cartChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", payloadString(e, "reason")),
		))
	case shopfront.EventNoticeShown:
		h.notices.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", payloadString(e, "kind")),
		))
	case shopfront.EventOpFailed:
		h.opFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("op", payloadString(e, "op")),
		))
	}
}

// Attach subscribes the handler to every event on the bus and pumps events
// on a background goroutine until the subscription closes. The returned
// function detaches the handler.
func (h *MetricsHandler) Attach(b bus.EventBus) func() {
	sub := b.SubscribeAll()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range sub.Events() {
			h.Handle(e)
		}
	}()

	return func() {
		_ = sub.Close()
		<-done
	}
}

func payloadString(e shopfront.Event, key string) string {
	if e.Payload == nil {
		return ""
	}
	s, _ := e.Payload[key].(string)
	return s
}
