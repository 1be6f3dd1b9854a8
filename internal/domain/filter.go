package domain

// Filter is an immutable snapshot of the user's current category and search text.
// An empty Category means "all categories".
type Filter struct {
	Category string `json:"category,omitempty"`
	Search   string `json:"search,omitempty"`
}

// QueryToken identifies an issued query; a larger token supersedes every smaller one.
type QueryToken uint64
