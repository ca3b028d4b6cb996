package console

import (
	"fmt"
	"testing"
)

func TestBus_Ordering(t *testing.T) {
	bus := NewBus()

	var got []string
	cancel := bus.Subscribe(func(msg Message) {
		got = append(got, msg.Text)
	})
	defer cancel()

	for i := 0; i < 5; i++ {
		bus.Broadcast(fmt.Sprintf("message %d", i))
	}

	if len(got) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(got))
	}
	for i, text := range got {
		want := fmt.Sprintf("message %d", i)
		if text != want {
			t.Errorf("message %d: expected %q, got %q", i, want, text)
		}
	}
}

func TestBus_DropWithoutListeners(t *testing.T) {
	bus := NewBus()

	// No listener mounted: messages are dropped, not buffered.
	bus.Broadcast("lost")

	var got []string
	cancel := bus.Subscribe(func(msg Message) {
		got = append(got, msg.Text)
	})
	defer cancel()

	if len(got) != 0 {
		t.Errorf("expected no replayed messages, got %d", len(got))
	}

	bus.Broadcast("kept")
	if len(got) != 1 || got[0] != "kept" {
		t.Errorf("expected only the post-subscribe message, got %v", got)
	}
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	bus := NewBus()

	count := 0
	cancel := bus.Subscribe(func(Message) { count++ })

	bus.Broadcast("one")
	cancel()
	bus.Broadcast("two")

	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}
}

func TestBus_MessageIdentity(t *testing.T) {
	bus := NewBus()

	var msgs []Message
	cancel := bus.Subscribe(func(msg Message) { msgs = append(msgs, msg) })
	defer cancel()

	bus.Broadcast("a")
	bus.Broadcast("b")

	if msgs[0].ID == msgs[1].ID {
		t.Error("messages must have distinct IDs")
	}
	if msgs[0].Timestamp.IsZero() || msgs[1].Timestamp.IsZero() {
		t.Error("messages must carry creation timestamps")
	}
}

func TestLog_UnreadCounter(t *testing.T) {
	log := NewLog()

	log.Append(Message{Text: "one"})
	log.Append(Message{Text: "two"})
	if log.Unread() != 2 {
		t.Errorf("expected 2 unread while collapsed, got %d", log.Unread())
	}

	// Expanding resets the counter.
	log.SetExpanded(true)
	if log.Unread() != 0 {
		t.Errorf("expected 0 unread after expand, got %d", log.Unread())
	}

	// Messages arriving while expanded stay read.
	log.Append(Message{Text: "three"})
	if log.Unread() != 0 {
		t.Errorf("expected 0 unread while expanded, got %d", log.Unread())
	}

	log.SetExpanded(false)
	log.Append(Message{Text: "four"})
	if log.Unread() != 1 {
		t.Errorf("expected 1 unread after collapse, got %d", log.Unread())
	}
}

func TestLog_Clear(t *testing.T) {
	log := NewLog()
	log.Append(Message{Text: "one"})
	log.Append(Message{Text: "two"})

	log.Clear()

	if log.Len() != 0 {
		t.Errorf("expected empty log after clear, got %d messages", log.Len())
	}
	if log.Unread() != 0 {
		t.Errorf("expected 0 unread after clear, got %d", log.Unread())
	}
}
