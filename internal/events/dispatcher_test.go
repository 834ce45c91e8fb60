package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherRoutesByType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var assigned, closed int
	dispatcher.Subscribe(EventTicketAssigned, func(ctx context.Context, e Event) error {
		assigned++
		return nil
	})
	dispatcher.Subscribe(EventTicketStatusChanged, func(ctx context.Context, e Event) error {
		closed++
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketAssigned, TicketID: "t1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketAssigned, TicketID: "t2"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if assigned != 2 {
		t.Fatalf("expected 2 assigned deliveries, got %d", assigned)
	}
	if closed != 0 {
		t.Fatalf("status handler must not fire for assignment events, got %d", closed)
	}
}

func TestDispatcherFanOut(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var first, second bool
	dispatcher.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		first = true
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		second = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !first || !second {
		t.Fatalf("every subscriber must receive the event: first=%v second=%v", first, second)
	}
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var delivered bool
	dispatcher.Subscribe(EventTicketDeleted, func(ctx context.Context, e Event) error {
		return errors.New("observer blew up")
	})
	dispatcher.Subscribe(EventTicketDeleted, func(ctx context.Context, e Event) error {
		delivered = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketDeleted}); err != nil {
		t.Fatalf("handler errors must not surface: %v", err)
	}
	if !delivered {
		t.Fatal("a failing handler must not stop later handlers")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCommentAdded}); err != nil {
		t.Fatalf("publishing without subscribers must succeed: %v", err)
	}
}
