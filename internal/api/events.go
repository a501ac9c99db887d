package api

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// eventBuffer is how many events a stream holds for a slow client
// before dropping.
const eventBuffer = 64

// handleEvents streams engine events as server-sent events. With a
// userId query only that user's events are sent, plus events that carry
// no user such as task deletions. A "ready" event is sent once the
// subscription is live.
func (s *Server) handleEvents(c *gin.Context) {
	user := strings.TrimSpace(c.Query("userId"))

	events, cancel := s.engine.Events().Channel(eventBuffer)
	defer cancel()

	s.logger.Debug("event stream opened", "user_id", user)
	defer s.logger.Debug("event stream closed", "user_id", user)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("ready", gin.H{"userId": user})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if user != "" && ev.User() != "" && ev.User() != user {
				return true
			}
			c.SSEvent(ev.EventType(), ev)
			return true
		}
	})
}
