package breakdown

import (
	"strings"
	"time"

	"github.com/Iron-Ham/taskstack/internal/errors"
)

// dueLayouts are tried in order. The last two are what HTML date and
// datetime-local inputs submit.
var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDue parses a due date. Layouts without a zone are read in loc
// (UTC when nil). An empty string means no due date and returns nil.
func ParseDue(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, errors.NewValidationError("due date must be RFC 3339 or YYYY-MM-DD[ HH:MM]").
		WithField("dueAt").WithValue(s)
}
