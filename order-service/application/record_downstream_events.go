package application

import (
	"context"

	"github.com/draftea/order-system/shared/events"
	"github.com/pkg/errors"
)

// RecordDownstreamEvents appends events published by the inventory, payment
// and shipping services to the event store, keyed by their own aggregate.
// Together with the order lifecycle events this gives one audit trail per
// saga: every committed step and every compensation attempt is traceable.
type RecordDownstreamEvents struct {
	eventStore events.EventStore
}

// NewRecordDownstreamEvents creates a new RecordDownstreamEvents use case
func NewRecordDownstreamEvents(eventStore events.EventStore) *RecordDownstreamEvents {
	return &RecordDownstreamEvents{eventStore: eventStore}
}

// Execute appends one downstream event to its aggregate's stream.
func (uc *RecordDownstreamEvents) Execute(ctx context.Context, event *events.Event) error {
	if event == nil {
		return nil
	}

	// Order lifecycle events are appended by the orchestrator itself;
	// recording them again would double the stream.
	if event.Topic().Matches("order.*") {
		return nil
	}

	existing, err := uc.eventStore.GetEvents(ctx, event.AggregateID)
	if err != nil {
		return errors.Wrap(err, "failed to read event stream")
	}

	if err := uc.eventStore.SaveEvents(ctx, event.AggregateID, []*events.Event{event}, len(existing)); err != nil {
		return errors.Wrap(err, "failed to append downstream event")
	}

	return nil
}
