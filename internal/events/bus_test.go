package events_test

import (
	"testing"
	"time"

	"github.com/apexarb/apexarb/internal/events"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	bus.Publish(events.Now(events.KindScanTick, "tick 1", nil))

	for name, ch := range map[string]<-chan events.Event{"a": a, "b": b} {
		select {
		case ev := <-ch:
			if ev.Kind != events.KindScanTick {
				t.Errorf("subscriber %s: kind = %s, want %s", name, ev.Kind, events.KindScanTick)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s received nothing", name)
		}
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	// Subscriber that never reads.
	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			bus.Publish(events.Now(events.KindCountdown, "", nil))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestBusCancelClosesChannel(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// Publishing after cancel must not panic.
	bus.Publish(events.Now(events.KindScanTick, "", nil))
}

func TestBusCloseIsIdempotent(t *testing.T) {
	bus := events.NewBus()
	ch, _ := bus.Subscribe()

	bus.Close()
	bus.Close()

	if _, ok := <-ch; ok {
		t.Fatal("subscriber channel still open after close")
	}

	// Subscribe after close yields a closed channel.
	late, _ := bus.Subscribe()
	if _, ok := <-late; ok {
		t.Fatal("late subscriber channel should be closed")
	}
}
