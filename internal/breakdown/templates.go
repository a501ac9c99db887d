package breakdown

import (
	"fmt"

	"github.com/Iron-Ham/taskstack/internal/model"
)

// Template is the ordered stage list and default estimate for a category.
type Template struct {
	Category        model.Category `json:"category" yaml:"category"`
	Stages          []string       `json:"stages" yaml:"stages"`
	DefaultEstimate int            `json:"default_estimate" yaml:"default_estimate"`
}

var catalog = []Template{
	{
		Category: model.CategoryAdmin,
		Stages: []string{
			"Setup & Access",
			"Gather Required Info",
			"Complete Core Action",
			"Review & Confirm Submission",
			"Archive Proof & Note Next",
		},
		DefaultEstimate: 60,
	},
	{
		Category: model.CategoryTravel,
		Stages: []string{
			"Define Trip Scope",
			"Gather Options",
			"Compare Shortlist",
			"Coordinate With Others",
			"Finalize & Book",
			"Confirm & Save Plans",
		},
		DefaultEstimate: 90,
	},
	{
		Category: model.CategoryShopping,
		Stages: []string{
			"Define Need & Constraints",
			"Gather Options",
			"Compare Key Features",
			"Decide on Best Option",
			"Purchase or Save",
			"Review or Return Outcome",
		},
		DefaultEstimate: 60,
	},
	{
		Category: model.CategoryReading,
		Stages: []string{
			"Setup & Access Material",
			"Preview Structure",
			"Read/Watch (Focused)",
			"Summarize Key Insights",
			"Apply or Log Learnings",
		},
		DefaultEstimate: 45,
	},
	{
		Category: model.CategoryTechnical,
		Stages: []string{
			"Setup & Clarify Goal",
			"Explore/Debug Context",
			"Implement Core Change",
			"Test & Verify",
			"Refactor or Polish",
			"Commit & Share Outcome",
		},
		DefaultEstimate: 60,
	},
	{
		Category: model.CategoryChores,
		Stages: []string{
			"Decide What's Needed",
			"Take Action",
			"Confirm & Log",
		},
		DefaultEstimate: 15,
	},
	{
		Category: model.CategoryGeneric,
		Stages: []string{
			`Clarify What "Done" Means`,
			"Take One Small Step",
			"Reflect & Plan Next",
		},
		DefaultEstimate: 30,
	},
}

// TemplateFor returns the template for category, or the Generic template
// when the category is not in the catalog. The returned stage slice is a
// copy.
func TemplateFor(category model.Category) Template {
	var generic Template
	for _, t := range catalog {
		if t.Category == category {
			return clone(t)
		}
		if t.Category == model.CategoryGeneric {
			generic = t
		}
	}
	return clone(generic)
}

// Catalog returns a copy of every template in catalog order.
func Catalog() []Template {
	out := make([]Template, len(catalog))
	for i, t := range catalog {
		out[i] = clone(t)
	}
	return out
}

func clone(t Template) Template {
	t.Stages = append([]string(nil), t.Stages...)
	return t
}

// phrasings renders a stage label for a given task title. A few stages
// read naturally without the title and ignore it.
var phrasings = map[string]func(title string) string{
	"Setup & Access":              func(t string) string { return "Open resources + define 'done' for: " + t },
	"Gather Required Info":        func(t string) string { return "Collect required docs/links for: " + t },
	"Complete Core Action":        func(t string) string { return "Do one concrete sub-action for: " + t },
	"Review & Confirm Submission": func(string) string { return "Review and submit; sanity-check" },
	"Archive Proof & Note Next":   func(string) string { return "Save confirmations + add reminder" },
	"Coordinate With Others":      func(string) string { return "Share shortlist; collect preferences" },
	"Define Trip Scope":           func(t string) string { return "Define trip scope for: " + t },
	"Gather Options":              func(t string) string { return "Research and gather options for: " + t },
	"Compare Shortlist":           func(t string) string { return "Compare shortlist options for: " + t },
	"Finalize & Book":             func(t string) string { return "Finalize and book for: " + t },
	"Confirm & Save Plans":        func(t string) string { return "Confirm and save plans for: " + t },
	"Define Need & Constraints":   func(t string) string { return "Define needs and constraints for: " + t },
	"Compare Key Features":        func(t string) string { return "Compare key features for: " + t },
	"Decide on Best Option":       func(t string) string { return "Decide on best option for: " + t },
	"Purchase or Save":            func(t string) string { return "Purchase or save decision for: " + t },
	"Review or Return Outcome":    func(t string) string { return "Review or return outcome for: " + t },
	"Setup & Access Material":     func(t string) string { return "Setup and access material for: " + t },
	"Preview Structure":           func(t string) string { return "Preview structure of: " + t },
	"Read/Watch (Focused)":        func(t string) string { return "Read/watch focused session: " + t },
	"Summarize Key Insights":      func(t string) string { return "Summarize key insights from: " + t },
	"Apply or Log Learnings":      func(t string) string { return "Apply or log learnings from: " + t },
	"Setup & Clarify Goal":        func(t string) string { return "Setup and clarify goal for: " + t },
	"Explore/Debug Context":       func(t string) string { return "Explore/debug context for: " + t },
	"Implement Core Change":       func(t string) string { return "Implement core change for: " + t },
	"Test & Verify":               func(t string) string { return "Test and verify: " + t },
	"Refactor or Polish":          func(t string) string { return "Refactor or polish: " + t },
	"Commit & Share Outcome":      func(t string) string { return "Commit and share outcome for: " + t },
	"Decide What's Needed":        func(t string) string { return "Decide what's needed for: " + t },
	"Take Action":                 func(t string) string { return "Take action on: " + t },
	"Confirm & Log":               func(t string) string { return "Confirm and log completion of: " + t },
	`Clarify What "Done" Means`:   func(t string) string { return `Clarify what "done" means for: ` + t },
	"Take One Small Step":         func(t string) string { return "Take one small step on: " + t },
	"Reflect & Plan Next":         func(t string) string { return "Reflect and plan next step for: " + t },
}

// Materialize renders stage into a concrete slice title for the task.
// Unknown stages fall back to "<stage> for: <title>".
func Materialize(stage, title string) string {
	if render, ok := phrasings[stage]; ok {
		return render(title)
	}
	return fmt.Sprintf("%s for: %s", stage, title)
}
