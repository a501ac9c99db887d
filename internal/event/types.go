package event

import "time"

// Event type names, "subject.verb".
const (
	TypeTaskCaptured = "task.captured"
	TypeTaskUpdated  = "task.updated"
	TypeTaskDeleted  = "task.deleted"
	TypeSliceActed   = "slice.acted"
)

// Event is implemented by every published event.
type Event interface {
	EventType() string
	Timestamp() time.Time
	// User is the owning user id, empty when unknown.
	User() string
}

type baseEvent struct {
	Type   string    `json:"type"`
	At     time.Time `json:"at"`
	UserID string    `json:"userId,omitempty"`
}

func (e baseEvent) EventType() string    { return e.Type }
func (e baseEvent) Timestamp() time.Time { return e.At }
func (e baseEvent) User() string         { return e.UserID }

func newBaseEvent(eventType string, at time.Time, userID string) baseEvent {
	return baseEvent{Type: eventType, At: at, UserID: userID}
}

// TaskCapturedEvent is published after a task and its slices are stored.
type TaskCapturedEvent struct {
	baseEvent
	TaskID     string `json:"taskId"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	SliceCount int    `json:"sliceCount"`
}

// NewTaskCapturedEvent creates a TaskCapturedEvent.
func NewTaskCapturedEvent(at time.Time, userID, taskID, title, category string, sliceCount int) TaskCapturedEvent {
	return TaskCapturedEvent{
		baseEvent:  newBaseEvent(TypeTaskCaptured, at, userID),
		TaskID:     taskID,
		Title:      title,
		Category:   category,
		SliceCount: sliceCount,
	}
}

// TaskUpdatedEvent is published after a task edit.
type TaskUpdatedEvent struct {
	baseEvent
	TaskID string `json:"taskId"`
	Title  string `json:"title"`
}

// NewTaskUpdatedEvent creates a TaskUpdatedEvent.
func NewTaskUpdatedEvent(at time.Time, userID, taskID, title string) TaskUpdatedEvent {
	return TaskUpdatedEvent{
		baseEvent: newBaseEvent(TypeTaskUpdated, at, userID),
		TaskID:    taskID,
		Title:     title,
	}
}

// TaskDeletedEvent is published after a task is removed. The owner is
// not known at that point, so User is empty.
type TaskDeletedEvent struct {
	baseEvent
	TaskID string `json:"taskId"`
}

// NewTaskDeletedEvent creates a TaskDeletedEvent.
func NewTaskDeletedEvent(at time.Time, taskID string) TaskDeletedEvent {
	return TaskDeletedEvent{
		baseEvent: newBaseEvent(TypeTaskDeleted, at, ""),
		TaskID:    taskID,
	}
}

// SliceActedEvent is published after an action is persisted.
type SliceActedEvent struct {
	baseEvent
	TaskID         string `json:"taskId"`
	SliceID        string `json:"sliceId"`
	Action         string `json:"action"`
	Message        string `json:"message"`
	ContinuationID string `json:"continuationId,omitempty"`
}

// NewSliceActedEvent creates a SliceActedEvent.
func NewSliceActedEvent(at time.Time, userID, taskID, sliceID, action, message, continuationID string) SliceActedEvent {
	return SliceActedEvent{
		baseEvent:      newBaseEvent(TypeSliceActed, at, userID),
		TaskID:         taskID,
		SliceID:        sliceID,
		Action:         action,
		Message:        message,
		ContinuationID: continuationID,
	}
}
