// Package service is the application layer between the outer surfaces
// (HTTP API, CLI, TUI) and the engine. It loads snapshots from a
// store.Store, hands them to the decomposer, selector and action handler,
// and writes the results back.
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
	"github.com/Iron-Ham/taskstack/internal/config"
	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/event"
	"github.com/Iron-Ham/taskstack/internal/lifecycle"
	"github.com/Iron-Ham/taskstack/internal/logging"
	"github.com/Iron-Ham/taskstack/internal/model"
	"github.com/Iron-Ham/taskstack/internal/scheduler"
	"github.com/Iron-Ham/taskstack/internal/store"
)

// NoTasksMessage is shown when no slice is eligible.
const NoTasksMessage = "No tasks available. Great job! Time to add a new task or take a break."

// Options tunes engine behavior.
type Options struct {
	DefaultUser      string
	SnoozeMinutes    int
	StrictCategories bool
}

// OptionsFromConfig maps the engine section of the configuration.
func OptionsFromConfig(cfg config.EngineConfig) Options {
	return Options{
		DefaultUser:      cfg.DefaultUser,
		SnoozeMinutes:    cfg.SnoozeMinutes,
		StrictCategories: cfg.StrictCategories,
	}
}

// Service runs engine operations against a store.
type Service struct {
	store      store.Store
	clock      scheduler.Clock
	logger     *logging.Logger
	opts       Options
	decomposer *breakdown.Decomposer
	selector   *scheduler.Selector
	handler    *lifecycle.Handler
	bus        *event.Bus
}

// New creates a Service. A nil clock reads the system time and a nil
// logger discards output.
func New(st store.Store, clock scheduler.Clock, logger *logging.Logger, opts Options) *Service {
	clock = scheduler.OrSystem(clock)
	if logger == nil {
		logger = logging.NopLogger()
	}
	if opts.DefaultUser == "" {
		opts.DefaultUser = model.DefaultUserID
	}
	if opts.SnoozeMinutes <= 0 {
		opts.SnoozeMinutes = lifecycle.DefaultSnoozeMinutes
	}

	return &Service{
		store:  st,
		clock:  clock,
		logger: logger,
		opts:   opts,
		decomposer: &breakdown.Decomposer{
			Clock:            clock,
			StrictCategories: opts.StrictCategories,
		},
		selector: scheduler.NewSelector(clock),
		handler: &lifecycle.Handler{
			Clock:                clock,
			DefaultSnoozeMinutes: opts.SnoozeMinutes,
		},
		bus: event.NewBus(logger),
	}
}

// Events returns the bus that every successful write is published on.
func (s *Service) Events() *event.Bus {
	return s.bus
}

// Options returns the effective options.
func (s *Service) Options() Options {
	return s.opts
}

func (s *Service) user(userID string) string {
	if u := strings.TrimSpace(userID); u != "" {
		return u
	}
	return s.opts.DefaultUser
}

// Capture decomposes in and stores the task with its slices. If the
// slices cannot be stored the task is removed again.
func (s *Service) Capture(ctx context.Context, in breakdown.Input) (breakdown.Result, error) {
	in.UserID = s.user(in.UserID)
	log := s.logger.WithUser(in.UserID)

	res, err := s.decomposer.Decompose(in)
	if err != nil {
		log.Debug("capture rejected", "title", in.Title, "error", err)
		return breakdown.Result{}, err
	}

	if err := s.store.AppendTask(ctx, res.Task); err != nil {
		log.Error("failed to store task", "error", err)
		return breakdown.Result{}, err
	}
	if err := s.store.AppendSlices(ctx, res.Slices); err != nil {
		log.Error("failed to store slices", "task_id", res.Task.ID, "error", err)
		if derr := s.store.DeleteTask(ctx, res.Task.ID); derr != nil {
			log.Error("failed to roll back task", "task_id", res.Task.ID, "error", derr)
		}
		return breakdown.Result{}, err
	}

	log.WithTask(res.Task.ID).Info("captured task",
		"title", res.Task.Title,
		"category", string(res.Task.Category),
		"estimate_minutes", res.Task.EstimateMinutes,
		"slices", len(res.Slices),
	)
	s.bus.Publish(event.NewTaskCapturedEvent(s.clock.Now(), res.Task.UserID, res.Task.ID,
		res.Task.Title, string(res.Task.Category), len(res.Slices)))
	return res, nil
}

// BatchTask summarizes one captured task in a batch.
type BatchTask struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Category        model.Category `json:"category"`
	SliceCount      int            `json:"sliceCount"`
	EstimateMinutes int            `json:"estimateMinutes"`
}

// BatchError reports one rejected item in a batch.
type BatchError struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// BatchResult is the outcome of CaptureBatch. Success is false when any
// item failed.
type BatchResult struct {
	Success   bool         `json:"success"`
	Processed int          `json:"processed"`
	Tasks     []BatchTask  `json:"tasks"`
	Errors    []BatchError `json:"errors"`
}

// CaptureBatch captures every input independently for userID. A failing
// item is reported and does not stop the rest.
func (s *Service) CaptureBatch(ctx context.Context, userID string, inputs []breakdown.Input) BatchResult {
	userID = s.user(userID)
	result := BatchResult{
		Success: true,
		Tasks:   []BatchTask{},
		Errors:  []BatchError{},
	}

	for _, in := range inputs {
		in.UserID = userID
		res, err := s.Capture(ctx, in)
		if err != nil {
			title := strings.TrimSpace(in.Title)
			if title == "" {
				title = "Unknown"
			}
			result.Errors = append(result.Errors, BatchError{Title: title, Error: err.Error()})
			continue
		}
		result.Tasks = append(result.Tasks, BatchTask{
			ID:              res.Task.ID,
			Title:           res.Task.Title,
			Category:        res.Task.Category,
			SliceCount:      len(res.Slices),
			EstimateMinutes: res.Task.EstimateMinutes,
		})
		result.Processed++
	}

	if len(result.Errors) > 0 {
		result.Success = false
	}
	s.logger.WithUser(userID).Info("batch capture finished",
		"processed", result.Processed,
		"failed", len(result.Errors),
	)
	return result
}

// Next returns the slice the user should work on now, or nil when nothing
// is eligible.
func (s *Service) Next(ctx context.Context, userID string) (*scheduler.Ranked, error) {
	userID = s.user(userID)
	cands, err := s.store.ListSlices(ctx, store.Query{UserID: userID, TodoOnly: true})
	if err != nil {
		return nil, err
	}

	next, ok := s.selector.Next(cands)
	if !ok {
		s.logger.WithUser(userID).Debug("nothing eligible", "todo", len(cands))
		return nil, nil
	}
	s.logger.WithUser(userID).WithSlice(next.ID).Debug("selected next slice", "score", next.Score)
	return &next, nil
}

// Queue returns eligible slices in selection order. limit <= 0 returns all.
func (s *Service) Queue(ctx context.Context, userID string, limit int) ([]scheduler.Ranked, error) {
	cands, err := s.store.ListSlices(ctx, store.Query{UserID: s.user(userID), TodoOnly: true})
	if err != nil {
		return nil, err
	}
	ranked := s.selector.Rank(cands)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ActionResult describes an applied action.
type ActionResult struct {
	Action       lifecycle.Action `json:"action"`
	Slice        model.Candidate  `json:"slice"`
	Continuation *model.Slice     `json:"continuation,omitempty"`
	SnoozedUntil *time.Time       `json:"snoozedUntil,omitempty"`
	Message      string           `json:"message"`
}

// Act applies an action to a slice. An empty userID searches every user's
// slices.
func (s *Service) Act(ctx context.Context, userID string, req lifecycle.Request) (ActionResult, error) {
	if strings.TrimSpace(req.SliceID) == "" {
		return ActionResult{}, errors.NewValidationError("slice id is required").WithField("sliceId")
	}

	cands, err := s.store.ListSlices(ctx, store.Query{UserID: strings.TrimSpace(userID)})
	if err != nil {
		return ActionResult{}, err
	}

	out, err := s.handler.Apply(cands, req)
	if err != nil {
		return ActionResult{}, err
	}

	log := s.logger.WithUser(out.Slice.Task.UserID).WithTask(out.Slice.TaskID).WithSlice(out.Slice.ID)

	// The slice patch goes last. Earlier writes are undone if a later one
	// fails, so a failed action leaves the store as it was.
	var undo []func(context.Context) error
	fail := func(msg string, err error) (ActionResult, error) {
		log.Error(msg, "action", out.Action.String(), "error", err)
		s.rollback(ctx, log, undo)
		return ActionResult{}, err
	}

	if len(out.Renumber) > 0 {
		previous := make(map[string]float64, len(cands))
		for _, c := range cands {
			previous[c.ID] = c.SequenceIndex
		}
		for _, r := range out.Renumber {
			idx := r.SequenceIndex
			if err := s.store.PatchSlice(ctx, r.SliceID, store.SlicePatch{SequenceIndex: &idx}); err != nil {
				return fail("failed to renumber slice", err)
			}
			id, old := r.SliceID, previous[r.SliceID]
			undo = append(undo, func(ctx context.Context) error {
				return s.store.PatchSlice(ctx, id, store.SlicePatch{SequenceIndex: &old})
			})
		}
		log.Info("renumbered task slices", "count", len(out.Renumber))
	}

	if out.Continuation != nil {
		if err := s.store.AppendSlices(ctx, []model.Slice{*out.Continuation}); err != nil {
			return fail("failed to add continuation", err)
		}
		id := out.Continuation.ID
		undo = append(undo, func(ctx context.Context) error {
			return s.store.DeleteSlice(ctx, id)
		})
	}

	if out.SkipDelta != 0 {
		if err := s.store.IncrementSkipCount(ctx, out.Slice.ID, out.SkipDelta); err != nil {
			return fail("failed to record skip", err)
		}
	}

	if out.Patch != nil {
		patch := store.SlicePatch{
			Status:       out.Patch.Status,
			SnoozedUntil: out.Patch.SnoozedUntil,
			DoneAt:       out.Patch.DoneAt,
		}
		if err := s.store.PatchSlice(ctx, out.Slice.ID, patch); err != nil {
			return fail("failed to patch slice", err)
		}
	}

	result := ActionResult{
		Action:       out.Action,
		Slice:        out.Slice,
		Continuation: out.Continuation,
		Message:      out.Describe(),
	}
	if out.Patch != nil {
		result.SnoozedUntil = out.Patch.SnoozedUntil
	}
	log.Info("applied action", "action", out.Action.String())

	var continuationID string
	if out.Continuation != nil {
		continuationID = out.Continuation.ID
	}
	s.bus.Publish(event.NewSliceActedEvent(s.clock.Now(), out.Slice.Task.UserID, out.Slice.TaskID,
		out.Slice.ID, out.Action.String(), result.Message, continuationID))
	return result, nil
}

// rollback runs undo steps newest first. It keeps going after a failed
// step and ignores cancellation of ctx.
func (s *Service) rollback(ctx context.Context, log *logging.Logger, undo []func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](ctx); err != nil {
			log.Error("failed to roll back action", "error", err)
		}
	}
}

// TaskView is a task with its remaining todo slices.
type TaskView struct {
	model.Task
	Slices []model.Slice `json:"slices"`
}

// Tasks lists the user's tasks that still have todo slices, newest first,
// each with its slices in sequence order.
func (s *Service) Tasks(ctx context.Context, userID string) ([]TaskView, error) {
	cands, err := s.store.ListSlices(ctx, store.Query{UserID: s.user(userID), TodoOnly: true})
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	views := make([]TaskView, 0)
	for _, c := range cands {
		i, ok := index[c.TaskID]
		if !ok {
			i = len(views)
			index[c.TaskID] = i
			views = append(views, TaskView{Task: c.Task})
		}
		views[i].Slices = append(views[i].Slices, c.Slice)
	}

	for i := range views {
		model.SortBySequence(views[i].Slices)
	}
	sortViewsNewestFirst(views)
	return views, nil
}

// TaskEdit is a user edit of a task. Title is required. DueAt always
// overwrites the stored date, so nil clears it. Nil pointer fields are
// left unchanged.
type TaskEdit struct {
	Title           string
	Category        *string
	Importance      *int
	EstimateMinutes *int
	DueAt           *time.Time
	Notes           *string
	Link            *string
}

// UpdateTask applies an edit and returns the updated task.
func (s *Service) UpdateTask(ctx context.Context, id string, edit TaskEdit) (model.Task, error) {
	title := strings.TrimSpace(edit.Title)
	if title == "" {
		return model.Task{}, errors.NewValidationError("title is required").WithField("title")
	}

	patch := store.TaskPatch{
		Title:    &title,
		SetDueAt: true,
		DueAt:    edit.DueAt,
		Notes:    edit.Notes,
		Link:     edit.Link,
	}

	if edit.Category != nil {
		c := model.Category(strings.TrimSpace(*edit.Category))
		if c == "" {
			c = breakdown.Classify(title, "")
		} else if s.opts.StrictCategories && !c.Known() {
			return model.Task{}, errors.NewValidationError("category is not in the catalog").
				WithField("category").WithValue(string(c)).WithCause(errors.ErrUnsupportedCategory)
		}
		patch.Category = &c
	}

	if edit.Importance != nil {
		imp := *edit.Importance
		if imp < model.MinImportance || imp > model.MaxImportance {
			return model.Task{}, errors.NewValidationError("importance must be between 1 and 5").
				WithField("importance").WithValue(imp)
		}
		patch.Importance = &imp
	}

	if edit.EstimateMinutes != nil {
		est := *edit.EstimateMinutes
		if est <= 0 {
			return model.Task{}, errors.NewValidationError("estimate must be positive").
				WithField("estimateMinutes").WithValue(est)
		}
		patch.EstimateMinutes = &est
	}

	task, err := s.store.PatchTask(ctx, id, patch)
	if err != nil {
		return model.Task{}, err
	}
	s.logger.WithUser(task.UserID).WithTask(task.ID).Info("updated task", "title", task.Title)
	s.bus.Publish(event.NewTaskUpdatedEvent(s.clock.Now(), task.UserID, task.ID, task.Title))
	return task, nil
}

// DeleteTask removes a task and its slices.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.logger.WithTask(id).Info("deleted task")
	s.bus.Publish(event.NewTaskDeletedEvent(s.clock.Now(), id))
	return nil
}

// AllTasks lists every task for the user, including those with no todo
// slices left.
func (s *Service) AllTasks(ctx context.Context, userID string) ([]model.Task, error) {
	return s.store.ListTasks(ctx, s.user(userID))
}

func sortViewsNewestFirst(views []TaskView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}
