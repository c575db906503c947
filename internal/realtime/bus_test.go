package realtime

import "testing"

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	ch1, cancel1 := bus.Subscribe()
	ch2, cancel2 := bus.Subscribe()
	defer cancel1()
	defer cancel2()

	bus.Publish()
	select {
	case <-ch1:
	default:
		t.Fatal("first subscriber missed signal")
	}
	select {
	case <-ch2:
	default:
		t.Fatal("second subscriber missed signal")
	}
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	// Undrained subscriber: repeated publishes must coalesce, not block.
	for i := 0; i < 10; i++ {
		bus.Publish()
	}
	<-ch
	select {
	case <-ch:
		t.Fatal("expected coalesced signal, got a second one")
	default:
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()
	cancel() // safe to call twice

	bus.Publish()
	select {
	case <-ch:
		t.Fatal("cancelled subscriber still received signal")
	default:
	}
	if bus.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", bus.SubscriberCount())
	}
}
