package keys

import "sort"

// HelpCategory organizes application keys by function
type HelpCategory string

const (
	HelpCategoryNavigation HelpCategory = "Navigation"
	HelpCategoryDialogs    HelpCategory = "Dialogs"
	HelpCategoryForms      HelpCategory = "Forms"
	HelpCategoryOther      HelpCategory = "Other"
	HelpCategoryUncategory HelpCategory = "Uncategorized" // For keys without categories
)

// KeyHelpInfo adds extended help information to key bindings
type KeyHelpInfo struct {
	Description string
	Category    HelpCategory
}

// KeyHelpMap maps KeyNames to their help information
var KeyHelpMap = map[KeyName]KeyHelpInfo{
	KeyNextResource: {Description: "Switch to the next list screen", Category: HelpCategoryNavigation},
	KeyPrevResource: {Description: "Switch to the previous list screen", Category: HelpCategoryNavigation},
	KeyBack:         {Description: "Leave a detail or form view", Category: HelpCategoryNavigation},

	KeyConfirm:   {Description: "Confirm the pending action", Category: HelpCategoryDialogs},
	KeyCancel:    {Description: "Dismiss the confirmation", Category: HelpCategoryDialogs},
	KeyHelpClose: {Description: "Close the shortcuts overlay", Category: HelpCategoryDialogs},

	KeySubmit:    {Description: "Save the form", Category: HelpCategoryForms},
	KeyNextField: {Description: "Move to the next field", Category: HelpCategoryForms},
	KeyPrevField: {Description: "Move to the previous field", Category: HelpCategoryForms},

	KeyQuit: {Description: "Quit the application", Category: HelpCategoryOther},
}

// GetKeyHelp returns the help information for a key
func GetKeyHelp(keyName KeyName) KeyHelpInfo {
	info, exists := KeyHelpMap[keyName]
	if !exists {
		return KeyHelpInfo{
			Description: "No description",
			Category:    HelpCategoryUncategory,
		}
	}
	return info
}

// GetKeysInCategory returns all key names in a category, in declaration order.
func GetKeysInCategory(category HelpCategory) []KeyName {
	var names []KeyName
	for k, info := range KeyHelpMap {
		if info.Category == category {
			names = append(names, k)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
