package breakdown

import (
	"strings"

	"github.com/Iron-Ham/taskstack/internal/model"
)

// rule maps a keyword set to a category.
type rule struct {
	keywords []string
	category model.Category
}

// rules are evaluated in order and the first match wins. Keyword sets
// overlap ("book" is both a travel and a reading word) so the order is
// part of the observable behavior.
var rules = []rule{
	{
		keywords: []string{"travel", "trip", "flight", "hotel", "vacation", "book", "reserve"},
		category: model.CategoryTravel,
	},
	{
		keywords: []string{"buy", "purchase", "shop", "order", "compare", "product", "review"},
		category: model.CategoryShopping,
	},
	{
		keywords: []string{"read", "learn", "study", "course", "book", "article", "tutorial", "watch"},
		category: model.CategoryReading,
	},
	{
		keywords: []string{"code", "develop", "build", "fix", "debug", "implement", "deploy", "test"},
		category: model.CategoryTechnical,
	},
	{
		keywords: []string{"admin", "paperwork", "form", "application", "submit", "register", "renew", "file"},
		category: model.CategoryAdmin,
	},
	{
		keywords: []string{"clean", "organize", "call", "email", "quick", "simple", "pay", "check"},
		category: model.CategoryChores,
	},
}

// Classify returns the category for a task title. A non-empty explicit
// category is returned verbatim without validation. Otherwise the
// lower-cased title is substring-matched against the keyword rules and
// the first matching rule decides; no match yields Generic.
func Classify(title, explicit string) model.Category {
	if explicit != "" {
		return model.Category(explicit)
	}

	lower := strings.ToLower(title)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return model.CategoryGeneric
}
