package persistence

import "fmt"

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var allowedSorts = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// Normalize applies listing defaults and validates sort parameters against an allowlist.
func (o ListModelsOptions) Normalize() (ListModelsOptions, error) {
	if o.Limit <= 0 || o.Limit > MaxListLimit {
		o.Limit = DefaultListLimit
	}

	if o.Offset < 0 {
		o.Offset = 0
	}

	if o.SortBy == "" {
		o.SortBy = "created_at"
	}

	if o.SortOrder == "" {
		o.SortOrder = "desc"
	}

	if !allowedSorts[o.SortBy] {
		return o, fmt.Errorf("%w: %s", ErrInvalidSortField, o.SortBy)
	}

	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		return o, fmt.Errorf("%w: sort order %s", ErrInvalidSortField, o.SortOrder)
	}

	return o, nil
}
