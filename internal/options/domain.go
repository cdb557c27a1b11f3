package options

// EntityKind enumerates the entities the resolver can list. The set is
// closed; dispatch over it is an exhaustive switch with an error default.
type EntityKind string

const (
	KindCategory EntityKind = "category"
	KindProduct  EntityKind = "product"
	KindRegion   EntityKind = "region"
	KindCustomer EntityKind = "customer"
)

// Known reports whether the kind belongs to the closed enumeration.
func (k EntityKind) Known() bool {
	switch k {
	case KindCategory, KindProduct, KindRegion, KindCustomer:
		return true
	default:
		return false
	}
}

// Item is a single selectable option. ID is unique within one result set so
// consumers can deduplicate across pages.
type Item struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Value    any            `json:"value"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Disabled bool           `json:"disabled"`
}

// Page is one page of options plus continuation state.
// Invariant: HasMore == (NextCursor != "").
type Page struct {
	Items      []Item `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
	Total      int    `json:"total"`
}

// Query describes one resolver call.
type Query struct {
	Kind   EntityKind
	Search string
	Cursor string
	Limit  int
}

const (
	// DefaultLimit applies when the caller does not request a page size.
	DefaultLimit = 20
	// MaxLimit caps the page size; larger requests are clamped, not rejected.
	MaxLimit = 100
)
