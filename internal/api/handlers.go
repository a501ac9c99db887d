package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/lifecycle"
	"github.com/Iron-Ham/taskstack/internal/service"
)

const maxBatchSize = 500

// captureRequest is the JSON body of a capture. Due dates arrive as strings
// so date-only and datetime-local values are accepted.
type captureRequest struct {
	Title           string `json:"title"`
	Category        string `json:"category"`
	EstimateMinutes int    `json:"estimateMinutes"`
	DueAt           string `json:"dueAt"`
	Importance      int    `json:"importance"`
	UserID          string `json:"userId"`
	Notes           string `json:"notes"`
	Link            string `json:"link"`
}

func (r captureRequest) input() (breakdown.Input, error) {
	due, err := breakdown.ParseDue(r.DueAt, nil)
	if err != nil {
		return breakdown.Input{}, err
	}
	return breakdown.Input{
		Title:           r.Title,
		Category:        r.Category,
		EstimateMinutes: r.EstimateMinutes,
		DueAt:           due,
		Importance:      r.Importance,
		UserID:          r.UserID,
		Notes:           r.Notes,
		Link:            r.Link,
	}, nil
}

type batchRequest struct {
	Tasks  *[]captureRequest `json:"tasks"`
	UserID string            `json:"userId"`
}

type actionRequest struct {
	SliceID       string `json:"sliceId"`
	Action        string `json:"action"`
	SnoozeMinutes int    `json:"snoozeMinutes"`
	UserID        string `json:"userId"`
}

type updateTaskRequest struct {
	Title           string  `json:"title"`
	Category        *string `json:"category"`
	Importance      *int    `json:"importance"`
	EstimateMinutes *int    `json:"estimateMinutes"`
	DueAt           string  `json:"dueAt"`
	Notes           *string `json:"notes"`
	Link            *string `json:"link"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCapture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	in, err := req.input()
	if err != nil {
		s.writeError(c, err)
		return
	}

	res, err := s.engine.Capture(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"task":   res.Task,
		"slices": res.Slices,
	})
}

func (s *Server) handleCaptureBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Tasks == nil {
		badRequest(c, "tasks array is required")
		return
	}
	if len(*req.Tasks) > maxBatchSize {
		badRequest(c, "batch exceeds maximum of "+strconv.Itoa(maxBatchSize)+" tasks")
		return
	}

	inputs := make([]breakdown.Input, 0, len(*req.Tasks))
	var rejected []service.BatchError
	for _, item := range *req.Tasks {
		in, err := item.input()
		if err != nil {
			rejected = append(rejected, service.BatchError{Title: batchTitle(item.Title), Error: err.Error()})
			continue
		}
		inputs = append(inputs, in)
	}

	result := s.engine.CaptureBatch(c.Request.Context(), req.UserID, inputs)
	if len(rejected) > 0 {
		result.Errors = append(result.Errors, rejected...)
		result.Success = false
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleNext(c *gin.Context) {
	next, err := s.engine.Next(c.Request.Context(), c.Query("userId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if next == nil {
		c.JSON(http.StatusOK, gin.H{"message": service.NoTasksMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"slice": next.Candidate,
		"score": next.Score,
	})
}

func (s *Server) handleQueue(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ranked, err := s.engine.Queue(c.Request.Context(), c.Query("userId"), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"slices": ranked,
		"count":  len(ranked),
	})
}

func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SliceID) == "" || strings.TrimSpace(req.Action) == "" {
		badRequest(c, "slice id and action are required")
		return
	}

	res, err := s.engine.Act(c.Request.Context(), req.UserID, lifecycle.Request{
		SliceID:       req.SliceID,
		Action:        lifecycle.Action(req.Action),
		SnoozeMinutes: req.SnoozeMinutes,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	body := gin.H{
		"success": true,
		"action":  res.Action,
		"message": res.Message,
	}
	if res.Continuation != nil {
		body["continuation"] = res.Continuation
	}
	if res.SnoozedUntil != nil {
		body["snoozedUntil"] = res.SnoozedUntil
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleTasks(c *gin.Context) {
	views, err := s.engine.Tasks(c.Request.Context(), c.Query("userId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": views})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	due, err := breakdown.ParseDue(req.DueAt, nil)
	if err != nil {
		s.writeError(c, err)
		return
	}

	task, err := s.engine.UpdateTask(c.Request.Context(), c.Param("id"), service.TaskEdit{
		Title:           req.Title,
		Category:        req.Category,
		Importance:      req.Importance,
		EstimateMinutes: req.EstimateMinutes,
		DueAt:           due,
		Notes:           req.Notes,
		Link:            req.Link,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.engine.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": breakdown.Catalog()})
}

// writeError maps engine errors onto HTTP statuses. Anything that is not
// a known user-facing error is logged and reported as a 500.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError || !errors.IsUserFacing(err) {
		s.logger.Error("request error",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func batchTitle(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return "Unknown"
}
