package model

// Module is a learning module. Modules and their items are seeded by a
// migration and are read-only for the application.
type Module struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Items []ModuleItem `json:"items,omitempty"`
}

// ModuleItem is one checkable entry of a Module.
type ModuleItem struct {
	ID       int64  `json:"id"`
	ModuleID int64  `json:"moduleId"`
	Name     string `json:"name"`
}

// UserSelection records that a user has checked off a module item.
type UserSelection struct {
	UserID       string `json:"userId"`
	ModuleItemID int64  `json:"moduleItemId"`
}

// Progress splits the item catalog into what a user has and has not checked.
// Both lists hold item names in item ID order.
type Progress struct {
	Selected   []string
	Unselected []string
}
