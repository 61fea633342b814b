package transport

// UpsertEntryRequest contains the label and order of a catalog value.
type UpsertEntryRequest struct {
	Label     string `json:"label" validate:"required,min=1,max=200"`
	SortOrder int    `json:"sortOrder" validate:"min=0,max=10000"`
}

// EntryResponse is one catalog value.
type EntryResponse struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	SortOrder int    `json:"sortOrder"`
}

// GroupResponse is a whole catalog group.
type GroupResponse struct {
	Group   string          `json:"group"`
	Entries []EntryResponse `json:"entries"`
}

// GroupListResponse lists the known groups.
type GroupListResponse struct {
	Groups []string `json:"groups"`
}
