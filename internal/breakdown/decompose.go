// Package breakdown turns a task title into an ordered list of 15-minute
// slices. Classification is keyword based, each category owns a fixed
// stage template, and every slice is a stage rendered against the title.
package breakdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/model"
	"github.com/Iron-Ham/taskstack/internal/scheduler"
)

// Input is a capture request before decomposition.
type Input struct {
	Title           string     `json:"title" yaml:"title"`
	Category        string     `json:"category,omitempty" yaml:"category,omitempty"`
	EstimateMinutes int        `json:"estimateMinutes,omitempty" yaml:"estimate_minutes,omitempty"`
	DueAt           *time.Time `json:"dueAt,omitempty" yaml:"due,omitempty"`
	Importance      int        `json:"importance,omitempty" yaml:"importance,omitempty"`
	UserID          string     `json:"userId,omitempty" yaml:"user_id,omitempty"`
	Notes           string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Link            string     `json:"link,omitempty" yaml:"link,omitempty"`
}

// Result is a new task with its generated slices.
type Result struct {
	Task   model.Task    `json:"task"`
	Slices []model.Slice `json:"slices"`
}

// Decomposer builds tasks and slices. The zero value is usable: it reads
// the system clock and generates random UUIDs.
type Decomposer struct {
	Clock scheduler.Clock
	NewID func() string

	// StrictCategories rejects explicit categories outside the catalog.
	StrictCategories bool
}

// SliceCount returns how many slices an estimate produces.
func SliceCount(estimateMinutes int) int {
	if estimateMinutes <= 0 {
		return 0
	}
	// Divide before rounding up so huge estimates cannot overflow
	n := estimateMinutes / model.SliceMinutes
	if estimateMinutes%model.SliceMinutes != 0 {
		n++
	}
	return min(n, model.MaxSlices)
}

// Decompose validates in, classifies it and generates its slices. Nothing
// is persisted; the caller appends the task and slices to its store.
func (d *Decomposer) Decompose(in Input) (Result, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Result{}, errors.NewValidationError("title is required").WithField("title")
	}

	explicit := strings.TrimSpace(in.Category)
	if d.StrictCategories && explicit != "" && !model.Category(explicit).Known() {
		return Result{}, errors.NewValidationError(fmt.Sprintf("category %q is not in the catalog", explicit)).
			WithField("category").WithCause(errors.ErrUnsupportedCategory)
	}
	category := Classify(title, explicit)
	tmpl := TemplateFor(category)

	estimate := in.EstimateMinutes
	switch {
	case estimate < 0:
		return Result{}, errors.NewValidationError("estimate must not be negative").
			WithField("estimateMinutes").WithValue(estimate)
	case estimate == 0:
		estimate = tmpl.DefaultEstimate
	}

	importance := in.Importance
	if importance == 0 {
		importance = model.DefaultImportance
	}
	if importance < model.MinImportance || importance > model.MaxImportance {
		return Result{}, errors.NewValidationError("importance must be between 1 and 5").
			WithField("importance").WithValue(importance)
	}

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = model.DefaultUserID
	}

	task := model.Task{
		ID:              d.newID(),
		UserID:          userID,
		Title:           title,
		Category:        category,
		Importance:      importance,
		EstimateMinutes: estimate,
		DueAt:           in.DueAt,
		Notes:           in.Notes,
		Link:            in.Link,
		CreatedAt:       scheduler.OrSystem(d.Clock).Now(),
	}

	count := SliceCount(estimate)
	slices := make([]model.Slice, count)
	for i := 0; i < count; i++ {
		stage := tmpl.Stages[i*len(tmpl.Stages)/count]
		slices[i] = model.Slice{
			ID:             d.newID(),
			TaskID:         task.ID,
			Title:          Materialize(stage, title),
			SequenceIndex:  float64(i + 1),
			PlannedMinutes: model.SliceMinutes,
			Status:         model.StatusTodo,
		}
	}

	return Result{Task: task, Slices: slices}, nil
}

func (d *Decomposer) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.New().String()
}
