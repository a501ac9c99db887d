package model

// Category groups tasks that share a stage template.
type Category string

const (
	CategoryAdmin     Category = "Admin"
	CategoryTravel    Category = "Research – Travel"
	CategoryShopping  Category = "Research – Shopping"
	CategoryReading   Category = "Reading/Learning"
	CategoryTechnical Category = "Technical Execution"
	CategoryChores    Category = "Quick Chores"
	CategoryGeneric   Category = "Generic"
)

// Categories returns every known category in catalog order.
func Categories() []Category {
	return []Category{
		CategoryAdmin,
		CategoryTravel,
		CategoryShopping,
		CategoryReading,
		CategoryTechnical,
		CategoryChores,
		CategoryGeneric,
	}
}

// String returns the display name of the category.
func (c Category) String() string {
	return string(c)
}

// Known reports whether c is one of the catalog categories.
func (c Category) Known() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}
