package cmd

// Category groups shortcuts in the help legend.
type Category string

// Standard shortcut categories for organizing help display
const (
	CategoryNavigation Category = "Navigation"
	CategoryActions    Category = "Actions"
	CategoryFilters    Category = "Filters"
	CategorySystem     Category = "System"
	CategorySpecial    Category = "Special" // Hidden from the legend
)

// CategoryOrder defines the display order for help screens
var CategoryOrder = []Category{
	CategoryNavigation,
	CategoryActions,
	CategoryFilters,
	CategorySystem,
}

// GetCategoryPriority returns the display priority for a category (lower = higher priority)
func GetCategoryPriority(category Category) int {
	for i, cat := range CategoryOrder {
		if cat == category {
			return i
		}
	}
	return len(CategoryOrder) // Unknown categories go to the end
}

// IsHiddenCategory returns true if the category should be hidden from main help
func IsHiddenCategory(category Category) bool {
	return category == CategorySpecial
}
