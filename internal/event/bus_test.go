package event

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/taskstack/internal/logging"
)

var at = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func captured(user string) TaskCapturedEvent {
	return NewTaskCapturedEvent(at, user, "task-1", "Buy milk", "Research – Shopping", 2)
}

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus(nil)

	var got Event
	id := bus.Subscribe(TypeTaskCaptured, func(e Event) { got = e })
	if id == "" {
		t.Fatal("Subscribe should return a non-empty id")
	}

	bus.Publish(NewTaskDeletedEvent(at, "task-1"))
	if got != nil {
		t.Fatal("handler should only see its own event type")
	}

	bus.Publish(captured("alice"))
	if got == nil || got.EventType() != TypeTaskCaptured || got.User() != "alice" {
		t.Fatalf("got %+v", got)
	}
	if !got.Timestamp().Equal(at) {
		t.Errorf("Timestamp = %v", got.Timestamp())
	}
}

func TestBus_WildcardRunsAfterSpecific(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "all") })
	bus.Subscribe(TypeSliceActed, func(Event) { order = append(order, "specific") })

	bus.Publish(NewSliceActedEvent(at, "demo", "t", "s", "done", "done: x", ""))

	if strings.Join(order, ",") != "specific,all" {
		t.Errorf("order = %v", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	first := bus.Subscribe(TypeTaskUpdated, func(Event) { calls++ })
	bus.Subscribe(TypeTaskUpdated, func(Event) { calls += 10 })

	if !bus.Unsubscribe(first) {
		t.Fatal("Unsubscribe should find the subscription")
	}
	if bus.Unsubscribe(first) {
		t.Error("second Unsubscribe should report false")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount = %d, want 1", bus.SubscriptionCount())
	}

	bus.Publish(NewTaskUpdatedEvent(at, "demo", "t", "x"))
	if calls != 10 {
		t.Errorf("calls = %d, want only the remaining handler", calls)
	}
}

func TestBus_HandlerPanicIsLogged(t *testing.T) {
	var logs bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&logs, logging.LevelDebug))

	calls := 0
	bus.SubscribeAll(func(Event) {
		calls++
		panic("boom")
	})
	bus.SubscribeAll(func(Event) { calls++ })

	bus.Publish(captured("demo"))

	if calls != 2 {
		t.Errorf("calls = %d, want both handlers to run", calls)
	}
	if !strings.Contains(logs.String(), "event handler panicked") || !strings.Contains(logs.String(), "boom") {
		t.Errorf("panic not logged: %s", logs.String())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	calls := 0
	bus.SubscribeAll(func(Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for _i := 0; _i < 100; _i++ {
		wg.Add(1)
		go func() { defer wg.Done(); bus.Publish(captured("demo")) }()
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("calls = %d, want 100", calls)
	}
}

func TestBus_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus(nil)

	var wg sync.WaitGroup
	for _i := 0; _i < 50; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := bus.SubscribeAll(func(Event) {})
			bus.Unsubscribe(id)
		}()
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount = %d, want 0", bus.SubscriptionCount())
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus(nil)
	seen := make(map[string]bool)
	for _i := 0; _i < 1000; _i++ {
		id := bus.SubscribeAll(func(Event) {})
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestBus_Channel(t *testing.T) {
	bus := NewBus(nil)
	events, cancel := bus.Channel(2)

	bus.Publish(captured("a"))
	bus.Publish(captured("b"))
	bus.Publish(captured("c")) // buffer full, dropped

	if got := (<-events).User(); got != "a" {
		t.Errorf("first event user = %q", got)
	}
	if got := (<-events).User(); got != "b" {
		t.Errorf("second event user = %q", got)
	}

	cancel()
	cancel()
	if _, ok := <-events; ok {
		t.Error("channel should be closed after cancel")
	}
	if bus.SubscriptionCount() != 0 {
		t.Error("cancel should unsubscribe")
	}

	// Publishing after cancel must not panic on the closed channel
	bus.Publish(captured("d"))
}

func TestEvent_JSON(t *testing.T) {
	data, err := json.Marshal(NewSliceActedEvent(at, "demo", "t1", "s1", "+15", "done: x (queued \"Continue: x\")", "s2"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type":"slice.acted"`, `"userId":"demo"`, `"sliceId":"s1"`, `"action":"+15"`, `"continuationId":"s2"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("json missing %s: %s", want, data)
		}
	}

	data, err = json.Marshal(NewTaskDeletedEvent(at, "t1"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "userId") {
		t.Errorf("deleted event should omit the user: %s", data)
	}
}
