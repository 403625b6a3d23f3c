// Package events carries domain events from handlers to realtime subscribers
// and, when configured, to a message broker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Event is the envelope sent to websocket clients and published to the broker.
type Event struct {
	Topic      string          `json:"topic"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// New marshals payload into an Event stamped with the current time.
func New(topic, eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Topic:      topic,
		Type:       eventType,
		Payload:    data,
		OccurredAt: time.Now().UTC(),
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pinger is implemented by publishers backed by a connection that can drop.
type Pinger interface {
	Ping() error
}

// Ping checks every member that implements Pinger.
func (m Multi) Ping() error {
	var errs []error
	for _, p := range m {
		if pg, ok := p.(Pinger); ok {
			if err := pg.Ping(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
