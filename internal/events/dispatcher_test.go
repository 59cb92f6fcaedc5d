package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryDispatcher(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.TicketID)
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketStatusChanged, func(_ context.Context, e Event) error {
		seen = append(seen, "status:"+e.TicketID)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t-1"})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first:t-1", "second:t-1"}, seen)
	assert.NoError(t, d.Publish(context.Background(), Event{Type: "unknown"}))
}
