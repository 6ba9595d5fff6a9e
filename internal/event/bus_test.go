package event

import (
	"context"
	"testing"
	"time"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus()

	var got []Kind
	bus.Subscribe(func(e Event) {
		got = append(got, e.Kind)
	})

	ctx := context.Background()
	for _, k := range []Kind{KindDocumentSent, KindFieldFilled, KindSignerCompleted} {
		if err := bus.Publish(ctx, Event{Kind: k, DocumentID: "d1", OccurredAt: time.Now()}); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	want := []Kind{KindDocumentSent, KindFieldFilled, KindSignerCompleted}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBusFanoutToMultipleSubscribers(t *testing.T) {
	bus := NewBus()

	var first, second int
	bus.Subscribe(func(e Event) { first++ })
	bus.Subscribe(func(e Event) { second++ })

	_ = bus.Publish(context.Background(), Event{Kind: KindDocumentSent, DocumentID: "d1"})

	if first != 1 || second != 1 {
		t.Errorf("subscriber counts = %d/%d, want 1/1", first, second)
	}
}

func TestClosedBusDropsEvents(t *testing.T) {
	bus := NewBus()

	var delivered int
	bus.Subscribe(func(e Event) { delivered++ })

	if err := bus.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	_ = bus.Publish(context.Background(), Event{Kind: KindDocumentSent, DocumentID: "d1"})

	if delivered != 0 {
		t.Errorf("closed bus delivered %d events", delivered)
	}
}

func TestFanoutPublishesToAll(t *testing.T) {
	a, b := NewBus(), NewBus()

	var countA, countB int
	a.Subscribe(func(e Event) { countA++ })
	b.Subscribe(func(e Event) { countB++ })

	combined := Fanout(a, b)
	_ = combined.Publish(context.Background(), Event{Kind: KindDocumentCompleted, DocumentID: "d1"})

	if countA != 1 || countB != 1 {
		t.Errorf("fanout delivered %d/%d, want 1/1", countA, countB)
	}
}
