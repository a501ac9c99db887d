package scheduler

import (
	"sort"
	"time"

	"github.com/Iron-Ham/taskstack/internal/model"
)

// Ranked is an eligible candidate with the score it was ranked by.
type Ranked struct {
	model.Candidate
	Score int `json:"score"`
}

// Selector picks the next slice from a caller-supplied snapshot.
type Selector struct {
	Clock Clock
}

// NewSelector creates a Selector reading time from clock.
func NewSelector(clock Clock) *Selector {
	return &Selector{Clock: OrSystem(clock)}
}

// Next returns the highest-priority eligible candidate. The boolean is
// false when nothing is eligible (empty input, or everything done or
// snoozed).
func (s *Selector) Next(cands []model.Candidate) (Ranked, bool) {
	ranked := s.Rank(cands)
	if len(ranked) == 0 {
		return Ranked{}, false
	}
	return ranked[0], true
}

// Rank returns every eligible candidate in selection order. The clock is
// read once so all candidates are scored against the same instant.
func (s *Selector) Rank(cands []model.Candidate) []Ranked {
	return RankAt(cands, OrSystem(s.Clock).Now())
}

// RankAt is Rank against an explicit instant.
func RankAt(cands []model.Candidate, now time.Time) []Ranked {
	out := make([]Ranked, 0, len(cands))
	for _, c := range cands {
		if !eligible(c.Slice, now) {
			continue
		}
		out = append(out, Ranked{Candidate: c, Score: Score(c.Slice, c.Task, now)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SequenceIndex < out[j].SequenceIndex
	})
	return out
}

// eligible filters out done slices and slices still snoozed at now.
// Storage normally only hands over todo slices; done ones are ignored
// here as well.
func eligible(s model.Slice, now time.Time) bool {
	if s.Status.IsTerminal() {
		return false
	}
	return !s.Snoozed(now)
}
