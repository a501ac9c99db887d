// Package event is an in-process pub-sub bus for task and slice changes.
//
// The service layer publishes an [Event] after every successful write:
//
//   - [TaskCapturedEvent]: a task was decomposed and stored
//   - [TaskUpdatedEvent]: a task was edited
//   - [TaskDeletedEvent]: a task and its slices were removed
//   - [SliceActedEvent]: done, skip, snooze or +15 was applied to a slice
//
// Handlers run synchronously on the publishing goroutine, so they must be
// quick. Long-lived consumers such as the HTTP event stream use
// [Bus.Channel], which buffers and drops events for slow readers instead
// of blocking the writer.
//
//	bus := event.NewBus(logger)
//	events, cancel := bus.Channel(16)
//	defer cancel()
//	for ev := range events {
//		fmt.Println(ev.EventType(), ev.User())
//	}
package event
